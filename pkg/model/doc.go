// Package model defines the form document shared by the authoring flow, the
// public submission path, and the visibility evaluator. A Form binds an
// ordered list of Fields to one Airtable table; each Field may carry a
// VisibilityRule (`showWhen`) made of Conditions that reference other fields
// by id. Answers holds the values a respondent has entered so far, keyed by
// field id, where each Answer is absent, a single string, or a list of
// strings. JSON and YAML tags follow the stored document shape
// (`fieldId`, `questionLabel`, `showWhen`, ...) so forms round-trip through
// the HTTP API, the Postgres store, and CLI fixtures unchanged.
package model
