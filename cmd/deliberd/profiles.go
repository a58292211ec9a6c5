package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/deliberd/internal/participant"
)

// profilesCmd lists the built-in participant profiles
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the built-in participant profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, p := range participant.BuiltinProfiles() {
			fmt.Printf("%s\t%s (%s)\n\t%s\n", p.ID, p.Name, p.Persona, p.Description)
		}
		return nil
	},
}
