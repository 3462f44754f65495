package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archiveFlags struct {
	countryCode int
	count       int
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Store finished matches from the live feed once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.close()

		archived, err := a.history.ArchiveFinished(ctx, a.feedQuery(archiveFlags.countryCode, archiveFlags.count))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d finished matches archived\n", archived)
		return nil
	},
}

func init() {
	archiveCmd.Flags().IntVar(&archiveFlags.countryCode, "country-code", 0, "Feed country code (defaults to configuration)")
	archiveCmd.Flags().IntVar(&archiveFlags.count, "count", 0, "Number of matches requested from the feed")
}
