package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func orderOf(fields []Field) map[string]int {
	out := make(map[string]int, len(fields))
	for _, field := range fields {
		out[field.FieldID] = field.Order
	}
	return out
}

func idsOf(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.FieldID)
	}
	return out
}

func TestNormalizeOrder(t *testing.T) {
	t.Parallel()

	fields := []Field{
		{FieldID: "c", Order: 9},
		{FieldID: "a", Order: 2},
		{FieldID: "b", Order: 2},
	}
	got := NormalizeOrder(fields)

	if diff := cmp.Diff([]string{"a", "b", "c"}, idsOf(got)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"a": 0, "b": 1, "c": 2}, orderOf(got)); diff != "" {
		t.Fatalf("dense order mismatch (-want +got):\n%s", diff)
	}
	if fields[0].Order != 9 {
		t.Fatalf("input must not be mutated")
	}
}

func TestAddRemoveMoveKeepDenseOrder(t *testing.T) {
	t.Parallel()

	var fields []Field
	var err error
	for _, id := range []string{"a", "b", "c", "d"} {
		fields, err = AddField(fields, Field{FieldID: id})
		if err != nil {
			t.Fatalf("AddField(%s): %v", id, err)
		}
	}
	if _, err := AddField(fields, Field{FieldID: "a"}); err == nil {
		t.Fatalf("expected duplicate id error")
	}

	fields, err = RemoveField(fields, "b")
	if err != nil {
		t.Fatalf("RemoveField: %v", err)
	}
	if diff := cmp.Diff(map[string]int{"a": 0, "c": 1, "d": 2}, orderOf(fields)); diff != "" {
		t.Fatalf("order after remove (-want +got):\n%s", diff)
	}

	fields, err = MoveField(fields, "d", 0)
	if err != nil {
		t.Fatalf("MoveField: %v", err)
	}
	if diff := cmp.Diff([]string{"d", "a", "c"}, idsOf(fields)); diff != "" {
		t.Fatalf("sequence after move (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"d": 0, "a": 1, "c": 2}, orderOf(fields)); diff != "" {
		t.Fatalf("order after move (-want +got):\n%s", diff)
	}

	fields, err = MoveField(fields, "d", 2)
	if err != nil {
		t.Fatalf("MoveField: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "c", "d"}, idsOf(fields)); diff != "" {
		t.Fatalf("sequence after move to end (-want +got):\n%s", diff)
	}

	if _, err := MoveField(fields, "a", 3); err == nil {
		t.Fatalf("expected out of range error")
	}
	if _, err := RemoveField(fields, "zzz"); err == nil {
		t.Fatalf("expected not found error")
	}
}
