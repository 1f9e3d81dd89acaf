package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/app"
)

func newFeedsCmd(opts *app.Options) *cobra.Command {
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "List subscribed feeds with unread counts.",
		Long: heredoc.Doc(`
			Prints every subscribed feed with its unread count and exits.

			Example:
			  inkwell feeds --unread
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(*opts)
			if err != nil {
				return err
			}
			client, err := api.NewClient(cfg.APIURL, cfg.RequestTimeout)
			if err != nil {
				return fmt.Errorf("init api client: %w", err)
			}
			list, err := client.ListFeeds(cmd.Context())
			if err != nil {
				return fmt.Errorf("list feeds: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUNREAD\tTITLE\tURL")
			for _, feed := range list.Feeds {
				if unreadOnly && feed.UnreadCount == 0 {
					continue
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", feed.ID, feed.UnreadCount, feed.Title, feed.URL)
			}
			fmt.Fprintf(w, "\t%d\ttotal\t\n", list.TotalUnread)
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only show feeds with unread items")
	return cmd
}
