package store

import (
	"testing"

	"github.com/google/uuid"

	"github.com/roach88/gate/internal/ir"
)

func TestMarshalChildren_Sorted(t *testing.T) {
	a, b := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())

	got1, err := marshalChildren(ir.NewIDSet(a, b))
	if err != nil {
		t.Fatalf("marshalChildren() failed: %v", err)
	}
	got2, err := marshalChildren(ir.NewIDSet(b, a))
	if err != nil {
		t.Fatalf("marshalChildren() failed: %v", err)
	}
	if got1 != got2 {
		t.Errorf("same set encoded differently: %s vs %s", got1, got2)
	}
	want := `["` + a.String() + `","` + b.String() + `"]`
	if got1 != want {
		t.Errorf("marshalChildren() = %s, want %s", got1, want)
	}
}

func TestMarshalChildren_Empty(t *testing.T) {
	got, err := marshalChildren(nil)
	if err != nil {
		t.Fatalf("marshalChildren() failed: %v", err)
	}
	if got != "[]" {
		t.Errorf("marshalChildren(nil) = %s, want []", got)
	}
}

func TestUnmarshalChildren_Invalid(t *testing.T) {
	if _, err := unmarshalChildren(`["not-a-uuid"]`); err == nil {
		t.Error("expected error for invalid identifier")
	}
	if _, err := unmarshalChildren(`{`); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestUnmarshalModValue_UnknownField(t *testing.T) {
	if _, err := unmarshalModValue(testVersion(1), ir.Field("mode"), nil); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestModValue_DataIsCopied(t *testing.T) {
	raw := []byte("abc")
	m, err := unmarshalModValue(testVersion(1), ir.FieldData, raw)
	if err != nil {
		t.Fatalf("unmarshalModValue() failed: %v", err)
	}
	raw[0] = 'x'
	if string(m.Data) != "abc" {
		t.Errorf("mod data aliased the scan buffer: %q", m.Data)
	}
}

func TestTimeNanos(t *testing.T) {
	ts := testTime(42).Add(123)
	if got := fromNanos(toNanos(ts)); !got.Equal(ts) {
		t.Errorf("fromNanos(toNanos(%v)) = %v", ts, got)
	}
}
