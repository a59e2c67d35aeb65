package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// AnswerKind identifies the shape of an Answer.
type AnswerKind uint8

const (
	// AnswerAbsent is the zero value: nothing was entered.
	AnswerAbsent AnswerKind = iota
	// AnswerText holds a single string, possibly empty.
	AnswerText
	// AnswerList holds a list of strings, possibly empty.
	AnswerList
)

var errAnswerShape = errors.New("model: answer must be a string or a list of strings")

// Answer is the value a respondent entered for one field. The zero value is
// absent, which never equals any string, including "".
type Answer struct {
	kind AnswerKind
	text string
	list []string
}

// Text builds a single string answer.
func Text(value string) Answer {
	return Answer{kind: AnswerText, text: value}
}

// List builds a list answer. Calling List with no values yields an empty
// list, not an absent answer.
func List(values ...string) Answer {
	out := make([]string, len(values))
	copy(out, values)
	return Answer{kind: AnswerList, list: out}
}

// Kind returns the answer shape.
func (a Answer) Kind() AnswerKind { return a.kind }

// Present reports whether the answer exists at all.
func (a Answer) Present() bool { return a.kind != AnswerAbsent }

// AsText returns the text value when the answer is a single string.
func (a Answer) AsText() (string, bool) {
	if a.kind != AnswerText {
		return "", false
	}
	return a.text, true
}

// AsList returns a copy of the list when the answer is list shaped.
func (a Answer) AsList() ([]string, bool) {
	if a.kind != AnswerList {
		return nil, false
	}
	return slices.Clone(a.list), true
}

// Contains reports whether a list answer has value as a member. Text and
// absent answers never contain anything.
func (a Answer) Contains(value string) bool {
	return a.kind == AnswerList && slices.Contains(a.list, value)
}

// Empty reports whether the answer counts as missing for a required field:
// absent, the empty string, or a list with no elements. Whitespace is a
// value.
func (a Answer) Empty() bool {
	switch a.kind {
	case AnswerText:
		return a.text == ""
	case AnswerList:
		return len(a.list) == 0
	default:
		return true
	}
}

// Equal reports whether a and other have the same shape and contents.
func (a Answer) Equal(other Answer) bool {
	if a.kind != other.kind {
		return false
	}
	switch a.kind {
	case AnswerText:
		return a.text == other.text
	case AnswerList:
		return slices.Equal(a.list, other.list)
	default:
		return true
	}
}

// MarshalJSON encodes absent as null, text as a string and lists as arrays.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AnswerText:
		return json.Marshal(a.text)
	case AnswerList:
		if a.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.list)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, a string, or an array of strings.
func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = Answer{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return fmt.Errorf("model: decode answer: %w", err)
		}
		*a = Text(text)
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return errAnswerShape
		}
		*a = List(list...)
		return nil
	default:
		return errAnswerShape
	}
}

// MarshalYAML mirrors MarshalJSON.
func (a Answer) MarshalYAML() (any, error) {
	switch a.kind {
	case AnswerText:
		return a.text, nil
	case AnswerList:
		if a.list == nil {
			return []string{}, nil
		}
		return a.list, nil
	default:
		return nil, nil
	}
}

// UnmarshalYAML accepts null, any scalar (kept as its literal text), or a
// sequence of scalars.
func (a *Answer) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*a = Answer{}
			return nil
		}
		*a = Text(node.Value)
		return nil
	case yaml.SequenceNode:
		list := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode || item.Tag == "!!null" {
				return errAnswerShape
			}
			list = append(list, item.Value)
		}
		*a = List(list...)
		return nil
	default:
		return errAnswerShape
	}
}

// Answers maps field ids to the current answer for that field.
type Answers map[string]Answer

// Get returns the answer for id, or an absent answer.
func (a Answers) Get(id string) Answer {
	if a == nil {
		return Answer{}
	}
	return a[id]
}

// Clone returns a shallow copy safe to mutate.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for key, value := range a {
		out[key] = value
	}
	return out
}
