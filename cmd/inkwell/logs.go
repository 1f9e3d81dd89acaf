package main

import (
	"fmt"
	"log/slog"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/five82/inkwell/internal/app"
	"github.com/five82/inkwell/internal/logtail"
)

func newLogsCmd(opts *app.Options) *cobra.Command {
	var (
		tail  logtail.Options
		level string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print recent log records.",
		Long: heredoc.Doc(`
			Prints the end of the inkwell log file. The UI writes its logs
			there while it owns the terminal.

			Example:
			  inkwell logs --level warn --grep favorite
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(*opts)
			if err != nil {
				return err
			}
			if err := tail.MinLevel.UnmarshalText([]byte(level)); err != nil {
				return fmt.Errorf("invalid --level %q: %w", level, err)
			}
			lines, err := logtail.Tail(cfg.LogFile, tail)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No log records in %s.\n", cfg.LogFile)
				return nil
			}
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&tail.Lines, "lines", "n", 100, "number of records to show")
	cmd.Flags().StringVar(&level, "level", slog.LevelDebug.String(), "minimum level (debug, info, warn, error)")
	cmd.Flags().StringVar(&tail.Match, "grep", "", "only records containing this text")
	return cmd
}
