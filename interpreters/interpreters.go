// Package interpreters assembles the set of core.Interpreter
// implementations this module ships, keyed by the name a
// core.ScriptSource.Interpreter field would reference.
package interpreters

import (
	"github.com/chymrt/chym/core"
	"github.com/chymrt/chym/interpreters/goja"
	"github.com/chymrt/chym/interpreters/noop"
)

// Standard returns the interpreter set wired into config.Load and
// cmd/chym by default: "goja" for ECMAScript guards/bodies, "noop"
// as an inert placeholder.
func Standard() map[string]core.Interpreter {
	is := make(map[string]core.Interpreter, 2)
	is["goja"] = goja.NewInterpreter()
	is["noop"] = noop.NewInterpreter()
	return is
}
