package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestAnswersUnmarshalJSON(t *testing.T) {
	t.Parallel()

	var answers Answers
	payload := `{"role":"Developer","skills":["Go","SQL"],"blank":"","none":[],"skipped":null}`
	if err := json.Unmarshal([]byte(payload), &answers); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := Answers{
		"role":    Text("Developer"),
		"skills":  List("Go", "SQL"),
		"blank":   Text(""),
		"none":    List(),
		"skipped": {},
	}
	if diff := cmp.Diff(want, answers); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
	if answers.Get("skipped").Present() || answers.Get("missing").Present() {
		t.Fatalf("null and missing answers should be absent")
	}
}

func TestAnswersRejectInvalidShapes(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{
		`{"n":5}`,
		`{"b":true}`,
		`{"o":{"a":"b"}}`,
		`{"l":[1,2]}`,
	} {
		var answers Answers
		if err := json.Unmarshal([]byte(payload), &answers); err == nil {
			t.Fatalf("expected error for %s", payload)
		}
	}
}

func TestAnswerMarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Answers{"a": Text("x"), "b": List(), "c": {}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `{"a":"x","b":[],"c":null}`; got != want {
		t.Fatalf("marshal = %s, want %s", got, want)
	}
}

func TestAnswersUnmarshalYAML(t *testing.T) {
	t.Parallel()

	doc := `
role: Developer
years: 5
skills: [Go, SQL]
skipped: ~
`
	var answers Answers
	if err := yaml.Unmarshal([]byte(doc), &answers); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := Answers{
		"role":    Text("Developer"),
		"years":   Text("5"),
		"skills":  List("Go", "SQL"),
		"skipped": {},
	}
	if diff := cmp.Diff(want, answers); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
}

func TestAnswerAccessors(t *testing.T) {
	t.Parallel()

	list := List("a", "b")
	values, ok := list.AsList()
	if !ok || len(values) != 2 {
		t.Fatalf("AsList = %v, %v", values, ok)
	}
	values[0] = "mutated"
	if !list.Contains("a") {
		t.Fatalf("AsList must return a copy")
	}
	if _, ok := list.AsText(); ok {
		t.Fatalf("list answer should not report text")
	}
	if Text("a").Contains("a") {
		t.Fatalf("text answers never contain values")
	}
	if !Text(" ").Present() || Text(" ").Empty() {
		t.Fatalf("whitespace is a present, non-empty value")
	}
	if !(Answer{}).Empty() || !Text("").Empty() || !List().Empty() {
		t.Fatalf("absent, empty string and empty list are empty")
	}
}
