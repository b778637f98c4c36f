package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chymrt/chym/audit"
	"github.com/chymrt/chym/core"
	"github.com/chymrt/chym/pool"
)

var (
	activateDecisionPoolSize int
	activateReactionPoolSize int
	activateAuditFile        string
)

var activateCmd = &cobra.Command{
	Use:   "activate <join.yaml>",
	Short: "Activate a join definition and print its warnings/errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, reactions, err := loadConfig(args[0])
		if err != nil {
			return err
		}

		decisionPool := pool.NewFixed(activateDecisionPoolSize)
		reactionPool := pool.NewBlockingAware(activateReactionPoolSize)

		jd, wae, activateErr := core.Activate(reactions, decisionPool, reactionPool)

		if activateAuditFile != "" {
			rec := audit.NewRecorder(activateAuditFile)
			if openErr := rec.Open(); openErr == nil {
				_ = rec.RecordActivation(args[0], wae, activateErr)
				_ = rec.Close()
			} else {
				fmt.Fprintf(os.Stderr, "warning: couldn't open audit file %s: %v\n", activateAuditFile, openErr)
			}
		}

		for _, w := range wae.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		if activateErr != nil {
			for _, e := range wae.Errors {
				fmt.Printf("error: %s\n", e)
			}
			return activateErr
		}

		fmt.Printf("activated %d reaction(s)\n", len(reactions))
		fmt.Print(jd.LogSoup())
		return nil
	},
}

func init() {
	activateCmd.Flags().IntVar(&activateDecisionPoolSize, "decision-pool", 4, "decision pool worker count")
	activateCmd.Flags().IntVar(&activateReactionPoolSize, "reaction-pool", 8, "reaction pool worker count")
	activateCmd.Flags().StringVar(&activateAuditFile, "audit-file", "", "optional BoltDB file to append activation diagnostics to")
	rootCmd.AddCommand(activateCmd)
}
