// Command chym is a developer CLI around package config: validate a
// declarative join definition, activate it against the real engine
// and print any warnings or errors, or render its reactions to HTML —
// the role the teacher's cmd/spectool plays for a core.Spec, built on
// cobra instead of the flag package because chym has more than one
// subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/chymrt/chym/cmd/chym/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
