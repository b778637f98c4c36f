package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <join.yaml>",
	Short: "Parse and build a join definition without activating it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, reactions, err := loadConfig(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ok: %d reaction(s) built\n", len(reactions))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
