package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-airforms/pkg/formfile"
	"github.com/goliatone/go-airforms/pkg/tui"
)

type scriptedDriver struct {
	inputs  []string
	selects []int
	multis  [][]int
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	out := d.inputs[0]
	d.inputs = d.inputs[1:]
	return out, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	out := d.selects[0]
	d.selects = d.selects[1:]
	return out, nil
}

func (d *scriptedDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) {
	if len(d.multis) == 0 {
		return nil, errors.New("no multiselect scripted")
	}
	out := d.multis[0]
	d.multis = d.multis[1:]
	return out, nil
}

func (d *scriptedDriver) TextArea(context.Context, tui.TextAreaConfig) (string, error) {
	return "", nil
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func run(t *testing.T, driver tui.PromptDriver, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	e := env{
		stdout: &out,
		driver: func(io.Writer) tui.PromptDriver { return driver },
		loader: formfile.New(),
	}
	cmd := newRootCmd(e)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEvalText(t *testing.T) {
	t.Parallel()

	out, err := run(t, nil, "eval", "--form", "testdata/applicants.yaml", "--answers", "testdata/engineer.yaml")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	want := strings.Join([]string{
		"visible: role, github, skills",
		"hidden: 1",
		"errors:",
		"  github: GitHub URL is required",
		"",
	}, "\n")
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestEvalJSONAndStrict(t *testing.T) {
	t.Parallel()

	out, err := run(t, nil, "eval", "--form", "testdata/applicants.yaml", "-o", "json", "--strict")
	if !errors.Is(err, errInvalidAnswers) {
		t.Fatalf("expected strict failure, got %v", err)
	}
	var report evalReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if diff := cmp.Diff([]string{"role", "skills"}, report.Visible); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
	if report.Hidden != 2 {
		t.Fatalf("hidden = %d, want 2", report.Hidden)
	}
}

func TestEvalRequiresForm(t *testing.T) {
	t.Parallel()

	if _, err := run(t, nil, "eval"); err == nil {
		t.Fatalf("expected missing flag error")
	}
	if _, err := run(t, nil, "eval", "--form", "testdata/missing.yaml"); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestPreviewWalkthrough(t *testing.T) {
	t.Parallel()

	driver := &scriptedDriver{
		selects: []int{1},
		multis:  [][]int{{2}},
		inputs:  []string{"https://files.test/portfolio.pdf"},
	}
	out, err := run(t, driver, "preview", "--form", "testdata/applicants.yaml")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	for _, want := range []string{
		"visible: role, skills, portfolio",
		"hidden: 1",
		"errors: none",
		`"Role": "Designer"`,
		`"url": "https://files.test/portfolio.pdf"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
