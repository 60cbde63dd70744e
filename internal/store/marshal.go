package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/gate/internal/ir"
)

// marshalChildren converts a child set to a JSON array of identifiers.
// Members are sorted so the same set always produces the same text.
func marshalChildren(s ir.IDSet) (string, error) {
	ids := ir.SortedIDs(s)
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	data, err := json.Marshal(strs)
	if err != nil {
		return "", fmt.Errorf("marshal children: %w", err)
	}
	return string(data), nil
}

// unmarshalChildren parses a JSON array of identifiers into a child set.
func unmarshalChildren(data string) (ir.IDSet, error) {
	if data == "" || data == "[]" {
		return ir.NewIDSet(), nil
	}
	var strs []string
	if err := json.Unmarshal([]byte(data), &strs); err != nil {
		return nil, fmt.Errorf("unmarshal children: %w", err)
	}
	set := ir.NewIDSet()
	for _, s := range strs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("unmarshal children: %w", err)
		}
		set.Add(id)
	}
	return set, nil
}

// marshalModValue encodes the value column of a mod row.
//   - data: raw bytes
//   - path: UTF-8 path text
//   - children: JSON array (see marshalChildren)
func marshalModValue(m ir.Mod) ([]byte, error) {
	switch m.Field {
	case ir.FieldData:
		if m.Data == nil {
			return []byte{}, nil
		}
		return m.Data, nil
	case ir.FieldPath:
		return []byte(m.Path), nil
	case ir.FieldChildren:
		s, err := marshalChildren(m.Children)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	default:
		return nil, fmt.Errorf("marshal mod: unknown field %q", m.Field)
	}
}

// unmarshalModValue decodes a mod row's value column for the given field.
func unmarshalModValue(v ir.Version, field ir.Field, value []byte) (ir.Mod, error) {
	switch field {
	case ir.FieldData:
		data := make([]byte, len(value))
		copy(data, value)
		return ir.DataMod(v, data), nil
	case ir.FieldPath:
		return ir.PathMod(v, string(value)), nil
	case ir.FieldChildren:
		set, err := unmarshalChildren(string(value))
		if err != nil {
			return ir.Mod{}, err
		}
		return ir.Mod{Version: v, Field: ir.FieldChildren, Children: set}, nil
	default:
		return ir.Mod{}, fmt.Errorf("unmarshal mod: unknown field %q", field)
	}
}

// toNanos converts a time to its stored form.
func toNanos(t time.Time) int64 {
	return t.UnixNano()
}

// fromNanos converts a stored time back, without a monotonic reading.
func fromNanos(n int64) time.Time {
	return time.Unix(0, n)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
