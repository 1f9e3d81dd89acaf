package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/five82/inkwell/internal/app"
	"github.com/five82/inkwell/internal/history"
)

func newHistoryCmd(opts *app.Options) *cobra.Command {
	var q history.Query

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent integration executions.",
		Long: heredoc.Doc(`
			Prints the most recent items sent to integrations, newest first.

			Example:
			  inkwell history --failed --limit 20
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(*opts)
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer func() { _ = store.Close() }()

			entries, err := store.Recent(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No executions recorded.")
				return nil
			}

			now := time.Now()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tINTEGRATION\tRESULT\tITEM")
			for _, e := range entries {
				result := "ok"
				if !e.OK {
					result = "failed"
				}
				if e.Status != 0 {
					result = fmt.Sprintf("%s (%d)", result, e.Status)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", humanize.RelTime(e.CreatedAt, now, "ago", "from now"), e.IntegrationName, result, e.ItemTitle)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&q.FailedOnly, "failed", false, "only show failed executions")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "maximum entries to show (default 50)")
	return cmd
}
