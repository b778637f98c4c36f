package core

import (
	"context"
	"errors"
)

// InterpreterNotFound occurs when a ScriptSource names an Interpreter
// that isn't registered.
var InterpreterNotFound = errors.New("interpreter not found")

// DefaultInterpreters is used by ScriptSource.Compile when no
// interpreter map is given explicitly.
var DefaultInterpreters = make(map[string]Interpreter)

// Interpreter can compile and execute guard/body source code written
// in some scripting language (ECMAScript via goja, for example). It
// is the scripted alternative to writing a GuardFunc/BodyFunc in Go.
type Interpreter interface {
	// Compile can precompile the code into whatever representation
	// speeds up repeated Exec calls.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec runs the code against the current Bindings, returning
	// updated Bindings plus anything emitted or traced.
	Exec(ctx context.Context, bs Bindings, props Props, code interface{}, compiled interface{}) (*Execution, error)
}

// ScriptFunc wraps a compiled script so it can be called like a
// native GuardFunc/BodyFunc.
type ScriptFunc struct {
	F func(ctx context.Context, bs Bindings, props Props) (*Execution, error)
}

func (a *ScriptFunc) Exec(ctx context.Context, bs Bindings, props Props) (*Execution, error) {
	if a == nil {
		return NewExecution(bs), nil
	}
	return a.F(ctx, bs, props)
}

// ScriptSource names an Interpreter and the source it should compile
// and run. A reaction's guard or body can be given as a ScriptSource
// instead of a native Go function, mirroring the teacher's
// ActionSource/Interpreter split.
type ScriptSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`
	Source      interface{} `json:"source" yaml:"source"`
}

// Compile resolves this ScriptSource into a callable ScriptFunc using
// the given interpreters (or DefaultInterpreters if nil).
func (a *ScriptSource) Compile(ctx context.Context, interpreters map[string]Interpreter) (*ScriptFunc, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	interp, have := interpreters[a.Interpreter]
	if !have {
		return nil, InterpreterNotFound
	}

	compiled, err := interp.Compile(ctx, a.Source)
	if err != nil {
		return nil, err
	}

	return &ScriptFunc{
		F: func(ctx context.Context, bs Bindings, props Props) (*Execution, error) {
			return interp.Exec(ctx, bs, props, a.Source, compiled)
		},
	}, nil
}
