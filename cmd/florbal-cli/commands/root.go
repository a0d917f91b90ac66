package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
	"github.com/fortuna/florbal-stats/internal/logging"
)

type options struct {
	gateway  string
	json     bool
	logLevel string
}

// NewRootCommand builds the florbal-cli command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "florbal-cli",
		Short:         "florbal-cli looks up teams, fixtures and match rosters on ceskyflorbal.cz.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.gateway, "gateway", getEnv("FLORBAL_GATEWAY", florbal.UpstreamBaseURL),
		"Base URL to fetch pages from, e.g. http://localhost:8080/api/florbal")
	flags.BoolVar(&opts.json, "json", false, "Print the tagged result as JSON.")
	flags.StringVar(&opts.logLevel, "log-level", getEnv("LOG_LEVEL", "warn"), "Log level.")

	rootCmd.AddCommand(
		newSearchCommand(opts),
		newMatchesCommand(opts),
		newRosterCommand(opts),
	)
	return rootCmd
}

// ExecuteContext runs the CLI and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) client() *florbal.Client {
	log := logging.Setup(o.logLevel, "text")
	log.SetOutput(os.Stderr)
	return florbal.NewClient(florbal.NewGatewayFetcher(o.gateway), florbal.WithLogger(log))
}

// render prints res as JSON or hands the data to table. A failed result becomes
// the command error.
func render[T any](cmd *cobra.Command, o *options, res florbal.Result[T], toTable func(table.Writer, T)) error {
	out := cmd.OutOrStdout()

	if o.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
		return res.Err()
	}

	if !res.OK {
		logrus.WithField("kind", res.Kind).Debug("request failed")
		return fmt.Errorf("%s (%s)", res.Error, res.Kind)
	}

	t := newTable(out)
	toTable(t, res.Data)
	t.Render()
	return nil
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
