package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-airforms/pkg/formfile"
	"github.com/goliatone/go-airforms/pkg/model"
	"github.com/goliatone/go-airforms/pkg/record"
	"github.com/goliatone/go-airforms/pkg/tui"
)

func newPreviewCmd(e env) *cobra.Command {
	var (
		formPath    string
		answersPath string
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Fill in a form interactively, asking only visible questions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form, err := loadForm(cmd, e.loader, formPath)
			if err != nil {
				return err
			}
			seed := model.Answers{}
			if answersPath != "" {
				src, err := formfile.ParseSource(answersPath)
				if err != nil {
					return err
				}
				if seed, err = e.loader.LoadAnswers(ctx, src); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			walk := tui.New(tui.WithPromptDriver(e.driver(out)))
			result, err := walk.Run(ctx, form, seed)
			if err != nil {
				return err
			}

			if err := writeReport(out, "text", buildReport(form, result.Answers)); err != nil {
				return err
			}
			payload, err := json.MarshalIndent(record.FromVisible(result.Visible, result.Answers), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "record:\n%s\n", payload)
			return err
		},
	}
	cmd.Flags().StringVar(&formPath, "form", "", "form document (YAML/JSON path or URL)")
	cmd.Flags().StringVar(&answersPath, "answers", "", "initial answers (YAML/JSON path or URL)")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}
