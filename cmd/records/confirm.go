package main

import (
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// confirm asks before a destructive step. --yes answers for the user.
func confirm(cmd *cobra.Command, title, description string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}
