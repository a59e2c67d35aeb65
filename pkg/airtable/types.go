package airtable

import (
	"fmt"

	"github.com/goliatone/go-airforms/pkg/model"
)

// Base is an Airtable base the token can see.
type Base struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PermissionLevel string `json:"permissionLevel,omitempty"`
}

// Table is a table schema as returned by the metadata API.
type Table struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	PrimaryFieldID string       `json:"primaryFieldId,omitempty"`
	Fields         []TableField `json:"fields"`
}

// TableField is a raw column definition.
type TableField struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Type    string        `json:"type"`
	Options *FieldOptions `json:"options,omitempty"`
}

// FieldOptions holds the select choices of a column.
type FieldOptions struct {
	Choices []Choice `json:"choices,omitempty"`
}

// Choice is one select option.
type Choice struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Field is a column a form can collect, with its Airtable type mapped onto
// the form's field types.
type Field struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Type    model.FieldType `json:"type"`
	Options []string        `json:"options"`
}

// Record is a created Airtable record.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

// Identity is the token owner reported by /meta/whoami.
type Identity struct {
	ID     string   `json:"id"`
	Email  string   `json:"email,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
}

// APIError is a non-2xx Airtable response.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("airtable: %d %s: %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("airtable: %d %s", e.Status, e.Type)
}

var supportedTypes = map[string]model.FieldType{
	"singleLineText":      model.FieldTypeShortText,
	"multilineText":       model.FieldTypeLongText,
	"singleSelect":        model.FieldTypeSingleSelect,
	"multipleSelects":     model.FieldTypeMultiSelect,
	"multipleAttachments": model.FieldTypeAttachment,
}

// SupportedFields maps a table's columns to form fields, dropping column
// types forms cannot collect.
func SupportedFields(table Table) []Field {
	out := make([]Field, 0, len(table.Fields))
	for _, column := range table.Fields {
		kind, ok := supportedTypes[column.Type]
		if !ok {
			continue
		}
		options := []string{}
		if column.Options != nil {
			for _, choice := range column.Options.Choices {
				options = append(options, choice.Name)
			}
		}
		out = append(out, Field{
			ID:      column.ID,
			Name:    column.Name,
			Type:    kind,
			Options: options,
		})
	}
	return out
}
