package model

import "time"

// FieldType is the closed set of Airtable column kinds a form can collect.
type FieldType string

const (
	FieldTypeShortText    FieldType = "short_text"
	FieldTypeLongText     FieldType = "long_text"
	FieldTypeSingleSelect FieldType = "single_select"
	FieldTypeMultiSelect  FieldType = "multi_select"
	FieldTypeAttachment   FieldType = "attachment"
)

// Valid reports whether t belongs to the supported set.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeShortText, FieldTypeLongText, FieldTypeSingleSelect, FieldTypeMultiSelect, FieldTypeAttachment:
		return true
	default:
		return false
	}
}

// Multi reports whether answers for t are list shaped.
func (t FieldType) Multi() bool {
	return t == FieldTypeMultiSelect || t == FieldTypeAttachment
}

// Mode combines the results of a rule's conditions.
type Mode string

const (
	ModeAll Mode = "all"
	ModeAny Mode = "any"
)

// Operator compares a referenced answer against a literal value.
type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorNotEquals   Operator = "not_equals"
	OperatorIncludes    Operator = "includes"
	OperatorNotIncludes Operator = "not_includes"
)

// Known reports whether op is one of the four supported operators.
func (op Operator) Known() bool {
	switch op {
	case OperatorEquals, OperatorNotEquals, OperatorIncludes, OperatorNotIncludes:
		return true
	default:
		return false
	}
}

// Condition is one atomic comparison against another field's answer.
type Condition struct {
	FieldID  string   `json:"fieldId" yaml:"fieldId"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    string   `json:"value" yaml:"value"`
}

// VisibilityRule decides when a field is shown. A nil rule, or one without
// conditions, always shows the field.
type VisibilityRule struct {
	Mode       Mode        `json:"mode,omitempty" yaml:"mode,omitempty"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}

// Field is one form question bound to one Airtable column.
type Field struct {
	FieldID       string          `json:"fieldId" yaml:"fieldId"`
	FieldName     string          `json:"fieldName" yaml:"fieldName"`
	QuestionLabel string          `json:"questionLabel" yaml:"questionLabel"`
	Type          FieldType       `json:"type" yaml:"type"`
	Required      bool            `json:"required" yaml:"required"`
	Options       []string        `json:"options,omitempty" yaml:"options,omitempty"`
	Order         int             `json:"order" yaml:"order"`
	ShowWhen      *VisibilityRule `json:"showWhen,omitempty" yaml:"showWhen,omitempty"`
}

// Conditional reports whether the field carries at least one condition.
func (f Field) Conditional() bool {
	return f.ShowWhen != nil && len(f.ShowWhen.Conditions) > 0
}

// Form is the persisted form document.
type Form struct {
	ID        string    `json:"id" yaml:"id"`
	OwnerID   string    `json:"ownerId" yaml:"ownerId"`
	Name      string    `json:"name" yaml:"name"`
	BaseID    string    `json:"baseId" yaml:"baseId"`
	BaseName  string    `json:"baseName" yaml:"baseName"`
	TableID   string    `json:"tableId" yaml:"tableId"`
	TableName string    `json:"tableName" yaml:"tableName"`
	Fields    []Field   `json:"fields" yaml:"fields"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt,omitempty"`
}

// Field returns the field with the given id.
func (f Form) Field(id string) (Field, bool) {
	for _, field := range f.Fields {
		if field.FieldID == id {
			return field, true
		}
	}
	return Field{}, false
}

// Submission records an accepted response and the Airtable record it created.
type Submission struct {
	ID        string    `json:"id"`
	FormID    string    `json:"formId"`
	RecordID  string    `json:"airtableRecordId"`
	Payload   Answers   `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is an account connected through Airtable OAuth.
type User struct {
	ID             string    `json:"id"`
	AirtableUserID string    `json:"airtableUserId"`
	Email          string    `json:"email,omitempty"`
	Name           string    `json:"name,omitempty"`
	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
	TokenType      string    `json:"-"`
	Scope          string    `json:"scope,omitempty"`
	TokenExpiresAt time.Time `json:"tokenExpiresAt,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the form so stores and caches can hand it out
// without sharing field slices or rules.
func (f Form) Clone() Form {
	out := f
	if f.Fields == nil {
		return out
	}
	out.Fields = make([]Field, len(f.Fields))
	for i, field := range f.Fields {
		if field.Options != nil {
			field.Options = append([]string(nil), field.Options...)
		}
		if field.ShowWhen != nil {
			rule := *field.ShowWhen
			rule.Conditions = append([]Condition(nil), rule.Conditions...)
			field.ShowWhen = &rule
		}
		out.Fields[i] = field
	}
	return out
}
