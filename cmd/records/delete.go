package main

import (
	"fmt"
	"sort"

	"github.com/celerix-dev/celerix-records/pkg/schema"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <kind> <id>",
	Aliases: []string{"rm"},
	GroupID: "data",
	Short:   "Delete an entity and whatever references it",
	Long: `Delete one entity. Deleting a student also deletes the student's grades
and attendance records.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := schema.ParseKind(args[0])
		if err != nil {
			return err
		}
		id := args[1]

		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		desc := ""
		if kind == schema.KindStudent {
			desc = fmt.Sprintf("%s and all of their grades and attendance will be removed.", rt.App.StudentName(id))
		}
		ok, err := confirm(cmd, fmt.Sprintf("Delete %s %s?", kind, id), desc)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("cancelled"))
			return nil
		}

		rep, err := rt.App.Delete(kind, id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !rep.Removed {
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("no %s with id %s", kind, id)))
		} else {
			fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("deleted %s %s", kind, id)))
		}
		names := make([]string, 0, len(rep.Cascaded))
		for name := range rep.Cascaded {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if n := rep.Cascaded[name]; n > 0 {
				fmt.Fprintf(out, "  also removed %d %s\n", n, name)
			}
		}
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
