package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-airforms/pkg/model"
	"github.com/goliatone/go-airforms/pkg/visibility"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	textAreas    []string
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	multiPos     int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func applicantForm() model.Form {
	engineer := &model.VisibilityRule{Mode: model.ModeAll, Conditions: []model.Condition{
		{FieldID: "role", Operator: model.OperatorEquals, Value: "Engineer"},
	}}
	return model.Form{
		Name: "Applicants",
		Fields: []model.Field{
			{FieldID: "role", FieldName: "Role", QuestionLabel: "Role", Type: model.FieldTypeSingleSelect, Required: true, Options: []string{"Engineer", "Designer"}, Order: 0},
			{FieldID: "github", FieldName: "GitHub", QuestionLabel: "GitHub URL", Type: model.FieldTypeShortText, Required: true, Order: 1, ShowWhen: engineer},
			{FieldID: "skills", FieldName: "Skills", QuestionLabel: "Skills", Type: model.FieldTypeMultiSelect, Options: []string{"go", "sql"}, Order: 2},
			{FieldID: "bio", FieldName: "Bio", QuestionLabel: "Bio", Type: model.FieldTypeLongText, Order: 3},
		},
	}
}

func TestWalkthroughAsksRevealedFields(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		selectIdx: []int{0},
		inputs:    []string{"https://github.com/ada"},
		multiIdx:  [][]int{{0, 1}},
		textAreas: []string{""},
	}
	result, err := New(WithPromptDriver(driver)).Run(context.Background(), applicantForm(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	wantPrompts := []string{"Role *", "GitHub URL *", "Skills", "Bio"}
	if diff := cmp.Diff(wantPrompts, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if !result.Answers.Get("github").Equal(model.Text("https://github.com/ada")) {
		t.Fatalf("github answer = %+v", result.Answers.Get("github"))
	}
	if !result.Answers.Get("skills").Equal(model.List("go", "sql")) {
		t.Fatalf("skills answer = %+v", result.Answers.Get("skills"))
	}
	if result.Answers.Get("bio").Present() {
		t.Fatalf("skipped bio should be absent")
	}
	if result.Hidden != 0 || !result.Errors.Empty() {
		t.Fatalf("hidden=%d errors=%v", result.Hidden, result.Errors)
	}
	if diff := cmp.Diff([]string{"0 of 4 fields hidden"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkthroughSkipsHiddenFields(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		selectIdx: []int{1},
		multiIdx:  [][]int{nil},
		textAreas: []string{"hello"},
	}
	result, err := New(WithPromptDriver(driver)).Run(context.Background(), applicantForm(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"Role *", "Skills", "Bio"}, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if result.Hidden != 1 {
		t.Fatalf("hidden = %d, want 1", result.Hidden)
	}
	if len(driver.infoMessages) != 0 {
		t.Fatalf("unexpected info: %v", driver.infoMessages)
	}
}

func TestWalkthroughRepromptsRequiredMultiSelect(t *testing.T) {
	t.Parallel()

	form := model.Form{Fields: []model.Field{
		{FieldID: "tags", FieldName: "Tags", QuestionLabel: "Tags", Type: model.FieldTypeMultiSelect, Required: true, Options: []string{"a", "b"}},
	}}
	driver := &stubDriver{multiIdx: [][]int{{}, {1}}}
	result, err := New(WithPromptDriver(driver)).Run(context.Background(), form, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"Tags is required"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if !result.Answers.Get("tags").Equal(model.List("b")) {
		t.Fatalf("tags = %+v", result.Answers.Get("tags"))
	}
}

func TestWalkthroughReportsRequiredErrors(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{selectIdx: []int{0}, inputs: []string{""}, multiIdx: [][]int{nil}, textAreas: []string{""}}
	result, err := New(WithPromptDriver(driver)).Run(context.Background(), applicantForm(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := visibility.Errors{"github": "GitHub URL is required"}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkthroughAttachmentURLs(t *testing.T) {
	t.Parallel()

	form := model.Form{Fields: []model.Field{
		{FieldID: "cv", FieldName: "CV", QuestionLabel: "CV", Type: model.FieldTypeAttachment},
	}}
	driver := &stubDriver{inputs: []string{" https://a.test/cv.pdf, ,https://b.test/x.png"}}
	result, err := New(WithPromptDriver(driver)).Run(context.Background(), form, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Answers.Get("cv").Equal(model.List("https://a.test/cv.pdf", "https://b.test/x.png")) {
		t.Fatalf("cv = %+v", result.Answers.Get("cv"))
	}
}

func TestWalkthroughPropagatesDriverErrors(t *testing.T) {
	t.Parallel()

	_, err := New(WithPromptDriver(&stubDriver{})).Run(context.Background(), applicantForm(), nil)
	if err == nil {
		t.Fatalf("expected error from exhausted driver")
	}
	if _, err := New().Run(context.Background(), applicantForm(), nil); !errors.Is(err, ErrNoDriver) {
		t.Fatalf("expected ErrNoDriver, got %v", err)
	}
}

func TestRequiredValidator(t *testing.T) {
	t.Parallel()

	optional := requiredValidator(model.Field{QuestionLabel: "Name"}, nonEmpty)
	if optional != nil {
		t.Fatalf("optional fields should not validate")
	}
	validate := requiredValidator(model.Field{QuestionLabel: "Name", Required: true}, nonEmpty)
	if err := validate(""); err == nil || err.Error() != "Name is required" {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validate(" "); err != nil {
		t.Fatalf("whitespace is a value: %v", err)
	}
}
