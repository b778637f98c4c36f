// Package noop implements core.Interpreter by returning its input
// Bindings unmodified. It's a placeholder interpreter useful in tests
// and as a default when no script interpreter is configured.
package noop

import (
	"context"
	"log"

	"github.com/chymrt/chym/core"
)

// Interpreter is a core.Interpreter which just returns the bindings
// without modification.
type Interpreter struct {
	// Silent, if false, will log a warning on every call.
	Silent bool
}

// NewInterpreter makes an Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: using noop.Interpreter for compilation")
	}
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, bs core.Bindings, props core.Props, code interface{}, compiled interface{}) (*core.Execution, error) {
	if !i.Silent {
		log.Printf("warning: using noop.Interpreter for execution")
	}
	return core.NewExecution(bs), nil
}
