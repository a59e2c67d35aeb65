package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-airforms/pkg/model"
)

func formFields() []model.Field {
	return []model.Field{
		{FieldID: "fldRole", FieldName: "Role", QuestionLabel: "Role", Type: model.FieldTypeSingleSelect},
		{FieldID: "fldBio", FieldName: "Bio", QuestionLabel: "Bio", Type: model.FieldTypeLongText},
		{FieldID: "fldSkills", FieldName: "Skills", QuestionLabel: "Skills", Type: model.FieldTypeMultiSelect},
		{FieldID: "fldCV", FieldName: "CV", QuestionLabel: "CV", Type: model.FieldTypeAttachment},
		{
			FieldID: "fldTeam", FieldName: "Team", QuestionLabel: "Team", Type: model.FieldTypeShortText,
			ShowWhen: &model.VisibilityRule{Conditions: []model.Condition{{FieldID: "fldRole", Operator: model.OperatorEquals, Value: "Manager"}}},
		},
	}
}

func TestBuildShapesByType(t *testing.T) {
	t.Parallel()

	answers := model.Answers{
		"fldRole":   model.Text("Developer"),
		"fldBio":    model.Text("  hi  "),
		"fldSkills": model.List("Go", "SQL"),
		"fldCV":     model.List("https://files.example/cv.pdf", " "),
	}

	want := map[string]any{
		"Role":   "Developer",
		"Bio":    "  hi  ",
		"Skills": []string{"Go", "SQL"},
		"CV":     []Attachment{{URL: "https://files.example/cv.pdf"}},
	}
	if diff := cmp.Diff(want, Build(formFields(), answers)); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildWrapsScalarsForMultiValuedTypes(t *testing.T) {
	t.Parallel()

	answers := model.Answers{
		"fldSkills": model.Text("Go"),
		"fldCV":     model.Text("https://files.example/a.png"),
	}
	want := map[string]any{
		"Skills": []string{"Go"},
		"CV":     []Attachment{{URL: "https://files.example/a.png"}},
	}
	if diff := cmp.Diff(want, Build(formFields(), answers)); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDropsHiddenAndEmpty(t *testing.T) {
	t.Parallel()

	answers := model.Answers{
		"fldRole":   model.Text("Developer"),
		"fldTeam":   model.Text("Platform"),
		"fldBio":    model.Text(""),
		"fldSkills": model.List(),
	}
	want := map[string]any{"Role": "Developer"}
	if diff := cmp.Diff(want, Build(formFields(), answers)); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	answers["fldRole"] = model.Text("Manager")
	want = map[string]any{"Role": "Manager", "Team": "Platform"}
	if diff := cmp.Diff(want, Build(formFields(), answers)); diff != "" {
		t.Fatalf("record mismatch once visible (-want +got):\n%s", diff)
	}
}

func TestBuildJoinsListForTextColumns(t *testing.T) {
	t.Parallel()

	got := Build(formFields()[:2], model.Answers{"fldBio": model.List("a", "b")})
	if diff := cmp.Diff(map[string]any{"Bio": "a, b"}, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}
