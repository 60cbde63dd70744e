package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHashDeterminism(t *testing.T) {
	data := []byte("hello world")
	assert.Equal(t, ContentHash(data), ContentHash(data))
	assert.Len(t, ContentHash(data), 32, "xxh3-128 is 16 bytes, 32 hex characters")
}

func TestContentHashChangesWithInput(t *testing.T) {
	assert.NotEqual(t, ContentHash([]byte("a")), ContentHash([]byte("b")))
	assert.NotEqual(t, ContentHash(nil), ContentHash([]byte{0}))
}

func TestSameContent(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		want bool
	}{
		{"identical", []byte("test1"), []byte("test1"), true},
		{"different", []byte("test1"), []byte("test2"), false},
		{"different length", []byte("test"), []byte("test1"), false},
		{"nil and empty", nil, []byte{}, true},
		{"binary", []byte{0xff, 0x00}, []byte{0xff, 0x00}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameContent(tt.a, tt.b))
		})
	}
}
