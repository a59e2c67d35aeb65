package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-airforms/pkg/formfile"
	"github.com/goliatone/go-airforms/pkg/model"
	"github.com/goliatone/go-airforms/pkg/visibility"
)

var errInvalidAnswers = errors.New("answers failed validation")

// evalReport is the machine readable output of eval.
type evalReport struct {
	Visible []string          `json:"visible"`
	Hidden  int               `json:"hidden"`
	Errors  visibility.Errors `json:"errors"`
}

func newEvalCmd(e env) *cobra.Command {
	var (
		formPath    string
		answersPath string
		output      string
		strict      bool
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate visibility and required checks for a set of answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form, err := loadForm(cmd, e.loader, formPath)
			if err != nil {
				return err
			}
			answers := model.Answers{}
			if answersPath != "" {
				src, err := formfile.ParseSource(answersPath)
				if err != nil {
					return err
				}
				if answers, err = e.loader.LoadAnswers(ctx, src); err != nil {
					return err
				}
			}

			report := buildReport(form, answers)
			if err := writeReport(cmd.OutOrStdout(), output, report); err != nil {
				return err
			}
			if strict && !report.Errors.Empty() {
				return errInvalidAnswers
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&formPath, "form", "", "form document (YAML/JSON path or URL)")
	cmd.Flags().StringVar(&answersPath, "answers", "", "answers document (YAML/JSON path or URL)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when required visible fields are missing")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}

func loadForm(cmd *cobra.Command, loader *formfile.Loader, location string) (model.Form, error) {
	src, err := formfile.ParseSource(location)
	if err != nil {
		return model.Form{}, err
	}
	form, err := loader.LoadForm(cmd.Context(), src)
	if err != nil {
		return model.Form{}, err
	}
	if err := model.ValidateFields(form.Fields); err != nil {
		return model.Form{}, err
	}
	return form, nil
}

func buildReport(form model.Form, answers model.Answers) evalReport {
	visible := visibility.VisibleFields(form.Fields, answers)
	ids := make([]string, 0, len(visible))
	for _, field := range visible {
		ids = append(ids, field.FieldID)
	}
	return evalReport{
		Visible: ids,
		Hidden:  len(form.Fields) - len(visible),
		Errors:  visibility.Validate(form.Fields, answers),
	}
}

func writeReport(w io.Writer, format string, report evalReport) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "text", "":
		var b strings.Builder
		fmt.Fprintf(&b, "visible: %s\n", strings.Join(report.Visible, ", "))
		fmt.Fprintf(&b, "hidden: %d\n", report.Hidden)
		if report.Errors.Empty() {
			b.WriteString("errors: none\n")
		} else {
			b.WriteString("errors:\n")
			for _, id := range report.Errors.FieldIDs() {
				fmt.Fprintf(&b, "  %s: %s\n", id, report.Errors[id])
			}
		}
		_, err := io.WriteString(w, b.String())
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
