package main

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-airforms/pkg/formfile"
	"github.com/goliatone/go-airforms/pkg/tui"
)

// env carries the process dependencies commands use so tests can swap them.
type env struct {
	stdout io.Writer
	driver func(out io.Writer) tui.PromptDriver
	loader *formfile.Loader
}

func defaultEnv() env {
	return env{
		stdout: os.Stdout,
		driver: tui.NewSurveyDriver,
		loader: formfile.New(
			formfile.WithHTTPClient(http.DefaultClient),
			formfile.WithRequestTimeout(15*time.Second),
		),
	}
}

func newRootCmd(e env) *cobra.Command {
	root := &cobra.Command{
		Use:           "airforms",
		Short:         "Airtable-backed forms with conditional questions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(e.stdout)

	root.AddCommand(newServeCmd())
	root.AddCommand(newEvalCmd(e))
	root.AddCommand(newPreviewCmd(e))
	return root
}
