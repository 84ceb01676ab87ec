package main

import (
	"fmt"

	"github.com/celerix-dev/celerix-records/internal/boot"
	"github.com/celerix-dev/celerix-records/internal/engine"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	GroupID: "maintenance",
	Short:   "Copy all data between the json and sqlite backends",
	Long: `Copy every persona, app and key from one backend to the other inside the
data directory. Switch the backend setting afterwards to use the copy.

Example:
  records migrate --from json --to sqlite`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		if from == to {
			return fmt.Errorf("source and destination are both %q", from)
		}

		src, err := boot.OpenBackend(from, cfg.DataDir, log)
		if err != nil {
			return err
		}
		defer src.Close()
		dst, err := boot.OpenBackend(to, cfg.DataDir, log)
		if err != nil {
			return err
		}
		defer dst.Close()

		n, err := engine.Migrate(src.Store, dst.Store)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("copied %d keys from %s to %s", n, from, to)))
		return nil
	},
}

func init() {
	migrateCmd.Flags().String("from", "json", "source backend")
	migrateCmd.Flags().String("to", "sqlite", "destination backend")
	rootCmd.AddCommand(migrateCmd)
}
