// Package record shapes accepted answers into the field map Airtable expects
// when creating a record.
package record

import (
	"strings"

	"github.com/goliatone/go-airforms/pkg/model"
	"github.com/goliatone/go-airforms/pkg/visibility"
)

// Attachment is the Airtable attachment reference written for each uploaded
// file URL.
type Attachment struct {
	URL string `json:"url"`
}

// Build returns the Airtable `fields` object for the fields currently
// visible under answers. Hidden fields and empty answers are omitted; keys
// are the Airtable column names (FieldName).
func Build(fields []model.Field, answers model.Answers) map[string]any {
	return FromVisible(visibility.VisibleFields(fields, answers), answers)
}

// FromVisible shapes answers for an already filtered field list.
func FromVisible(visible []model.Field, answers model.Answers) map[string]any {
	out := make(map[string]any, len(visible))
	for _, field := range visible {
		answer := answers.Get(field.FieldID)
		if answer.Empty() {
			continue
		}
		if value, ok := shape(field.Type, answer); ok {
			out[field.FieldName] = value
		}
	}
	return out
}

func shape(kind model.FieldType, answer model.Answer) (any, bool) {
	values := listOf(answer)
	switch kind {
	case model.FieldTypeMultiSelect:
		return values, len(values) > 0
	case model.FieldTypeAttachment:
		attachments := make([]Attachment, 0, len(values))
		for _, value := range values {
			if url := strings.TrimSpace(value); url != "" {
				attachments = append(attachments, Attachment{URL: url})
			}
		}
		return attachments, len(attachments) > 0
	default:
		if text, ok := answer.AsText(); ok {
			return text, true
		}
		return strings.Join(values, ", "), len(values) > 0
	}
}

func listOf(answer model.Answer) []string {
	if list, ok := answer.AsList(); ok {
		return list
	}
	if text, ok := answer.AsText(); ok {
		return []string{text}
	}
	return nil
}
