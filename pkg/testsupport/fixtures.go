// Package testsupport holds fixture and golden-file helpers shared by tests.
package testsupport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-airforms/pkg/formfile"
	"github.com/goliatone/go-airforms/pkg/model"
)

// MustLoadForm reads a YAML or JSON form fixture.
func MustLoadForm(t *testing.T, path string) model.Form {
	t.Helper()

	form, err := formfile.New().LoadForm(Context(), formfile.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// MustLoadAnswers reads a YAML or JSON answers fixture.
func MustLoadAnswers(t *testing.T, path string) model.Answers {
	t.Helper()

	answers, err := formfile.New().LoadAnswers(Context(), formfile.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load answers: %v", err)
	}
	return answers
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareGoldenJSON round-trips got through JSON and diffs it against the
// golden file at path. Both sides are compared as generic JSON values.
func CompareGoldenJSON(t *testing.T, path string, got any) string {
	t.Helper()

	WriteGolden(t, path, got)

	var want any
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("decode golden: %v", err)
	}
	payload, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	var normalized any
	if err := json.Unmarshal(payload, &normalized); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	return cmp.Diff(want, normalized)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
