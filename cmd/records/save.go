package main

import (
	"errors"
	"io"
	"os"

	"github.com/celerix-dev/celerix-records/pkg/schema"
	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:     "save <kind> [json]",
	Aliases: []string{"add"},
	GroupID: "data",
	Short:   "Create an entity, or update it when the JSON carries an id",
	Long: `Save one entity from inline JSON, --file, or stdin ("-").

Examples:
  records add student '{"firstName":"Ava","lastName":"Lee"}'
  records save grade --file grade.json
  echo '{"title":"Heat","genre":["Crime"]}' | records add movie -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := schema.ParseKind(args[0])
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")
		raw, err := readInput(cmd, args[1:], file)
		if err != nil {
			return err
		}
		draft, err := schema.DecodeDraft(kind, raw)
		if err != nil {
			return err
		}

		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		saved, err := rt.App.Save(draft)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), saved)
	},
}

func init() {
	saveCmd.Flags().StringP("file", "f", "", "read the entity from a file")
	rootCmd.AddCommand(saveCmd)
}

// readInput returns the inline argument, the file contents, or stdin for "-".
func readInput(cmd *cobra.Command, args []string, file string) ([]byte, error) {
	switch {
	case file != "":
		return os.ReadFile(file)
	case len(args) == 1 && args[0] == "-":
		return io.ReadAll(cmd.InOrStdin())
	case len(args) == 1:
		return []byte(args[0]), nil
	}
	return nil, errors.New("provide the entity as an argument, with --file, or on stdin with -")
}
