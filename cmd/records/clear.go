package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:     "clear",
	GroupID: "maintenance",
	Short:   "Remove every entity from every collection",
	Long: `Empty all collections. The empty state is saved, so sample data is not
restored on the next run. Export first if you may want the data back.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := confirm(cmd, "Clear all data?", "Every student, grade, attendance record, movie and invoice will be deleted.")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("cancelled"))
			return nil
		}

		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.App.ClearAll(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("all data cleared"))
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}
