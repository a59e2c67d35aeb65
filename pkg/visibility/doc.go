// Package visibility decides which form fields are shown for a partial set
// of answers and which shown, required fields are still missing a value.
//
// Both operations are pure and safe for concurrent use: the live preview
// calls VisibleFields on every answer change and the submission path calls
// Validate once before writing to Airtable, so a field shown in preview is
// exactly the field validated and written on submit.
package visibility
