package model

import (
	"fmt"
	"sort"
)

// NormalizeOrder returns a copy of fields sorted by their current Order
// (ties keep their relative position) with Order rewritten densely from 0.
func NormalizeOrder(fields []Field) []Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return reindex(out)
}

// AddField appends field at the end of the sequence.
func AddField(fields []Field, field Field) ([]Field, error) {
	for _, existing := range fields {
		if existing.FieldID == field.FieldID {
			return nil, fmt.Errorf("model: field %q already present", field.FieldID)
		}
	}
	out := make([]Field, 0, len(fields)+1)
	out = append(out, fields...)
	out = append(out, field)
	return reindex(out), nil
}

// RemoveField drops the field with the given id and closes the gap in
// Order. Conditions on other fields that reference the removed id are kept;
// they evaluate against an absent answer.
func RemoveField(fields []Field, id string) ([]Field, error) {
	index := indexOf(fields, id)
	if index < 0 {
		return nil, fmt.Errorf("model: field %q not found", id)
	}
	out := make([]Field, 0, len(fields)-1)
	out = append(out, fields[:index]...)
	out = append(out, fields[index+1:]...)
	return reindex(out), nil
}

// MoveField moves the field with the given id to position to, shifting the
// fields in between.
func MoveField(fields []Field, id string, to int) ([]Field, error) {
	from := indexOf(fields, id)
	if from < 0 {
		return nil, fmt.Errorf("model: field %q not found", id)
	}
	if to < 0 || to >= len(fields) {
		return nil, fmt.Errorf("model: position %d out of range [0,%d)", to, len(fields))
	}
	out := make([]Field, 0, len(fields))
	out = append(out, fields[:from]...)
	out = append(out, fields[from+1:]...)
	moved := fields[from]
	out = append(out[:to], append([]Field{moved}, out[to:]...)...)
	return reindex(out), nil
}

func reindex(fields []Field) []Field {
	for i := range fields {
		fields[i].Order = i
	}
	return fields
}

func indexOf(fields []Field, id string) int {
	for i, field := range fields {
		if field.FieldID == id {
			return i
		}
	}
	return -1
}
