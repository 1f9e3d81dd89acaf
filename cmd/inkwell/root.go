package main

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/five82/inkwell/internal/app"
)

func newRootCmd() *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:   "inkwell",
		Short: "Terminal client for a self-hosted feed reader.",
		Long: heredoc.Doc(`
			inkwell browses the items of a feed reader server in the terminal.

			Items are marked read as they scroll past, or after hovering over
			them with the mouse. Favorites, feed edits and thumbnail retries
			apply immediately and are rolled back if the server rejects them.

			Settings are read from ~/.config/inkwell/config.toml and display
			preferences are kept in ~/.config/inkwell/prefs.toml.
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "override config path")
	flags.StringVar(&opts.APIURL, "api", "", "reader server URL (overrides api_url)")
	cmd.Flags().StringVar(&opts.PrefsPath, "prefs", "", "override preferences path")
	cmd.Flags().IntVar(&opts.PollEvery, "poll", 0, "feed count refresh interval in seconds")

	cmd.AddCommand(newFeedsCmd(&opts), newHistoryCmd(&opts), newLogsCmd(&opts))
	return cmd
}
