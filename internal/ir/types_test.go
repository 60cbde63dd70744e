package ir

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVersion(sec int) Version {
	return Version{
		ID:   uuid.Must(uuid.NewV7()),
		Time: time.Date(2030, 1, 1, 0, 0, sec, 0, time.UTC),
	}
}

func TestFieldValid(t *testing.T) {
	assert.True(t, FieldData.Valid())
	assert.True(t, FieldPath.Valid())
	assert.True(t, FieldChildren.Valid())
	assert.False(t, Field("mode").Valid())
}

func TestChildrenModCopiesSet(t *testing.T) {
	id := uuid.Must(uuid.NewV7())
	set := NewIDSet(id)

	m := ChildrenMod(testVersion(1), set)
	set.Add(uuid.Must(uuid.NewV7()))

	assert.Equal(t, 1, m.Children.Cardinality(), "later edits to the source set must not leak into the Mod")
	assert.True(t, m.Children.Contains(id))
}

func TestChildrenModNilSet(t *testing.T) {
	m := ChildrenMod(testVersion(1), nil)
	require.NotNil(t, m.Children)
	assert.Equal(t, 0, m.Children.Cardinality())
}

func TestEntryLastChanged(t *testing.T) {
	init := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	e := &Entry{Init: init, Current: init}
	assert.True(t, e.LastChanged().Equal(init))

	v := testVersion(5)
	e.Append(DataMod(v, []byte("x")))
	assert.True(t, e.LastChanged().Equal(v.Time))
	assert.True(t, e.Current.Equal(v.Time))
}

func TestVersionString(t *testing.T) {
	v := testVersion(0)
	assert.Contains(t, v.String(), v.ID.String())
	assert.Contains(t, v.String(), "2030-01-01T00:00:00Z")
}

func TestSortedIDs(t *testing.T) {
	a, b, c := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())
	assert.Equal(t, []uuid.UUID{a, b, c}, SortedIDs(NewIDSet(c, a, b)))
	assert.Equal(t, []uuid.UUID{}, SortedIDs(nil))
}

func TestSameIDs(t *testing.T) {
	a, b := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())
	assert.True(t, SameIDs(NewIDSet(a, b), NewIDSet(b, a)))
	assert.False(t, SameIDs(NewIDSet(a), NewIDSet(a, b)))
	assert.True(t, SameIDs(nil, NewIDSet()))
}
