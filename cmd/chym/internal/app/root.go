// Package app wires chym's cobra subcommands together, following the
// teacher's cmd/spectool/main.go layout (flag-parsed subcommands
// driving core.Spec loading) one level up: each subcommand here loads
// a config.JoinConfig and drives the real core.Activate instead of
// just round-tripping YAML/JSON.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chym",
	Short: "Inspect and activate chym join definitions",
	Long:  "chym loads a declarative join definition (molecules + reactions, YAML) and validates, activates, or documents it against the real chemical-machine engine.",
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
