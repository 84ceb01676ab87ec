package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "maintenance",
	Short:   "Write every collection to one JSON document",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		doc, err := rt.App.Export()
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("output")
		if out == "" || out == "-" {
			_, err = cmd.OutOrStdout().Write(append(doc, '\n'))
			return err
		}
		if err := os.WriteFile(out, doc, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), okStyle.Render("exported to "+out))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:     "import <file|->",
	GroupID: "maintenance",
	Short:   "Replace collections with the ones in an export document",
	Long: `Import an export document. Each collection present in the document
replaces the stored one; collections it omits are left alone. Nothing is
changed if any collection fails validation. Reading from stdin requires --yes
since the prompt cannot share it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var file string
		if args[0] != "-" {
			file = args[0]
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if file == "" && !yes {
			return errors.New("--yes is required when importing from stdin")
		}
		doc, err := readInput(cmd, args, file)
		if err != nil {
			return err
		}
		ok, err := confirm(cmd, "Import "+args[0]+"?", "Every collection in the document replaces the stored one.")
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

		res, err := rt.App.Import(doc)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range rt.App.Collections() {
			if n, ok := res.Replaced[c.Name()]; ok {
				fmt.Fprintf(out, "%-12s %d\n", c.Name(), n)
			}
		}
		for _, key := range res.Ignored {
			fmt.Fprintln(out, mutedStyle.Render("ignored unknown key "+key))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
	importCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(exportCmd, importCmd)
}
