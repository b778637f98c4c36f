package config

import (
	"context"
	"fmt"

	"github.com/chymrt/chym/core"
)

func buildReaction(rc ReactionConfig, reg *Registry, interpreters map[string]core.Interpreter) (*core.ReactionDescriptor, error) {
	inputs := make([]core.Input, 0, len(rc.Inputs))
	for _, ic := range rc.Inputs {
		id := reg.Id(ic.Molecule)
		if id == nil {
			return nil, fmt.Errorf("input references undeclared molecule %q", ic.Molecule)
		}
		m, err := buildMatcher(ic)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, core.Input{Mol: id, Matcher: m})
	}

	outputs := make([]core.MoleculeId, 0, len(rc.Outputs))
	for _, name := range rc.Outputs {
		id := reg.Id(name)
		if id == nil {
			return nil, fmt.Errorf("output references undeclared molecule %q", name)
		}
		outputs = append(outputs, id)
	}

	var guard core.GuardFunc
	if rc.Guard != nil {
		g, err := compileGuard(rc.Guard, interpreters)
		if err != nil {
			return nil, fmt.Errorf("guard: %w", err)
		}
		guard = g
	}

	body, err := compileBody(rc.Body, reg, interpreters)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}

	r := core.NewReaction(rc.Name, inputs, guard, body, outputs...)
	r.Doc = rc.Doc
	r.Retry = rc.Retry
	return r, nil
}

// compileGuard adapts a core.ScriptSource into a core.GuardFunc. The
// convention is that the script returns its (possibly-updated)
// bindings with an additional boolean "guard" key; anything else
// (an execution error, a missing or non-bool "guard" key) is treated
// as a failed guard rather than propagated, since GuardFunc has no
// error return.
func compileGuard(src *core.ScriptSource, interpreters map[string]core.Interpreter) (core.GuardFunc, error) {
	fn, err := src.Compile(context.Background(), interpreters)
	if err != nil {
		return nil, err
	}
	return func(bs core.Bindings) bool {
		exe, err := fn.Exec(context.Background(), bs, nil)
		if err != nil || exe == nil || exe.Bs == nil {
			return false
		}
		ok, _ := exe.Bs["guard"].(bool)
		return ok
	}, nil
}

// compileBody adapts a core.ScriptSource into a core.BodyFunc. The
// script emits work by calling its interpreter's emission primitive
// (e.g. goja's _.out()) with a map shaped either
// {"emit": "<molecule>", "value": v} to emit a fresh non-blocking
// molecule, or {"reply": "<molecule>", "value": v} to reply to the
// blocking molecule of that name consumed by this invocation.
func compileBody(src core.ScriptSource, reg *Registry, interpreters map[string]core.Interpreter) (core.BodyFunc, error) {
	fn, err := src.Compile(context.Background(), interpreters)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, bs core.Bindings, replies map[core.MoleculeId]*core.ReplyHandle) error {
		exe, err := fn.Exec(ctx, bs, nil)
		if err != nil {
			return err
		}

		for _, emitted := range exe.Emitted {
			action, ok := emitted.(map[string]interface{})
			if !ok {
				continue
			}

			if name, has := action["reply"]; has {
				replyName, _ := name.(string)
				id := reg.Id(replyName)
				handle := replies[id]
				if handle == nil {
					return fmt.Errorf("body tried to reply to %q, which it did not consume", replyName)
				}
				if err := handle.Reply(action["value"]); err != nil {
					return err
				}
				continue
			}

			if name, has := action["emit"]; has {
				emitName, _ := name.(string)
				if err := reg.Emit(emitName, action["value"]); err != nil {
					return err
				}
				continue
			}
		}

		return nil
	}, nil
}
