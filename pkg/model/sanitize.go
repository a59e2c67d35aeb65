package model

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeForm strips markup from the display text of a form (its name and
// question labels) and returns the cleaned copy. Field ids, field names,
// options and condition values are left untouched since they must match
// Airtable and answer data exactly.
func SanitizeForm(form Form) Form {
	form.Name = sanitizeText(form.Name)
	if len(form.Fields) == 0 {
		return form
	}
	fields := make([]Field, len(form.Fields))
	for i, field := range form.Fields {
		field.QuestionLabel = sanitizeText(field.QuestionLabel)
		fields[i] = field
	}
	form.Fields = fields
	return form
}

// sanitizeText drops tags but keeps entities readable ("R&D" stays "R&D").
func sanitizeText(value string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(value)))
}
