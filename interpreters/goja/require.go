package goja

import (
	"context"
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// InlineRequires attempts to generate new source code that replaces
// top-level require() calls with code that those calls reference.
//
// Originally, this code processed and emitted Goja abstract syntax
// trees (ASTs) (see github.com/dop251/goja/ast).  An emitted tree was
// a modified version of the input tree.  Each library was either
// pre-parsed, pre-compiled, or plain source. But Goja can't currently
// support (easily) modification of ASTs or Programs; therefore, the
// current implementation rewrites the given source based on
// processing of the given source's AST.
//
// An alternative approach is simply to define a require() function
// and put that function in the runtime's environment. However, that
// approach would require the use of eval at runtime, which would
// prevent precompilation. With the current implementation, actions
// and guards can be precompiled when a machine specification is
// compiled. That precompilation can given substantial runtime
// performance benefits when libraries are large.
func InlineRequires(ctx context.Context, src string, provider func(context.Context, string) (string, error)) (string, error) {

	// Parse src as a function body, which is how Compile runs it, so
	// that a top-level return statement is accepted here too.
	const prefix = "function inlineRequires() {\n"
	p, err := parser.ParseFile(nil, "", prefix+src+"\n}", 0)
	if err != nil {
		return "", err
	}
	if len(p.Body) != 1 {
		return "", fmt.Errorf("bad source: %q", src)
	}
	fn, is := p.Body[0].(*ast.FunctionDeclaration)
	if !is {
		return "", fmt.Errorf("bad source: %q", src)
	}

	type Required struct {
		Idx0 int
		Idx1 int
		Name string
	}

	requires := make([]Required, 0, 8)

	for _, s := range fn.Function.Body.List {
		exps, is := s.(*ast.ExpressionStatement)
		if !is {
			continue
		}

		call, is := exps.Expression.(*ast.CallExpression)
		if !is {
			continue
		}

		id, is := call.Callee.(*ast.Identifier)
		if !is {
			continue
		}
		if id.Name != "require" {
			continue
		}
		if len(call.ArgumentList) != 1 {
			return "", fmt.Errorf("bad require args: %#v", call.ArgumentList)
		}

		arg := call.ArgumentList[0]
		lit, is := arg.(*ast.StringLiteral)
		if !is {
			return "", fmt.Errorf("bad require arg: %#v", arg)
		}

		s := string(lit.Value)
		requires = append(requires, Required{
			Idx0: int(exps.Idx0()) - len(prefix),
			Idx1: int(exps.Idx1()) - len(prefix),
			Name: s,
		})
	}

	var inlined string
	switch len(requires) {
	case 0:
		inlined = src
	default:
		inlined = src[0 : requires[0].Idx0-1]
		for i, r := range requires {
			lib, err := provider(ctx, r.Name)
			if err != nil {
				return "", err
			}

			inlined += lib

			to := len(src)
			if i < len(requires)-1 {
				to = requires[i+1].Idx0 - 1
			}
			inlined += src[requires[i].Idx1:to]
		}
	}

	return inlined, nil
}
