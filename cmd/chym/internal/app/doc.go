package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chymrt/chym/docgen"
)

var (
	docOutFile string
	docFormat  string
)

var docCmd = &cobra.Command{
	Use:   "doc <join.yaml>",
	Short: "Render a join definition's reactions to HTML or Graphviz dot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, reactions, err := loadConfig(args[0])
		if err != nil {
			return err
		}

		out := os.Stdout
		if docOutFile != "" {
			f, err := os.Create(docOutFile)
			if err != nil {
				return fmt.Errorf("creating %s: %w", docOutFile, err)
			}
			defer f.Close()
			out = f
		}

		switch docFormat {
		case "html":
			return docgen.RenderReactionsPage(args[0], reactions, out, nil)
		case "dot":
			return docgen.RenderReactionsDot(reactions, out)
		default:
			return fmt.Errorf("unknown --format %q (want html or dot)", docFormat)
		}
	},
}

func init() {
	docCmd.Flags().StringVar(&docOutFile, "out", "", "output file (default stdout)")
	docCmd.Flags().StringVar(&docFormat, "format", "html", "output format: html or dot")
	rootCmd.AddCommand(docCmd)
}
