package airforms

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-airforms/pkg/record"
)

func TestEvaluateFixture(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	form, err := LoadForm(ctx, "pkg/formfile/testdata/applicants.yaml")
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	answers, err := LoadAnswers(ctx, "pkg/formfile/testdata/answers.json")
	if err != nil {
		t.Fatalf("load answers: %v", err)
	}

	got := Evaluate(form, answers)
	if got.Hidden != 0 {
		t.Fatalf("hidden = %d, want 0", got.Hidden)
	}
	wantErrors := Errors{"github": "GitHub URL is required", "portfolio": "Portfolio is required"}
	if diff := cmp.Diff(wantErrors, got.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	wantRecord := map[string]any{"Role": "Engineer", "Skills": []string{"go", "figma"}}
	if diff := cmp.Diff(wantRecord, got.Record); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(record.Build(form.Fields, answers), got.Record); diff != "" {
		t.Fatalf("record should match record.Build (-want +got):\n%s", diff)
	}
}

func TestLoadFormRejectsEmptyLocation(t *testing.T) {
	t.Parallel()

	if _, err := LoadForm(context.Background(), ""); err == nil {
		t.Fatalf("expected error")
	}
}
