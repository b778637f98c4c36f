package config

import (
	"context"
	"testing"
	"time"

	"github.com/chymrt/chym/core"
	"github.com/chymrt/chym/interpreters/goja"
	"github.com/chymrt/chym/pool"
)

func counterConfig() *JoinConfig {
	return &JoinConfig{
		Molecules: []MoleculeConfig{
			{Name: "counter"},
			{Name: "decr"},
			{Name: "fetch", Blocking: true},
		},
		Reactions: []ReactionConfig{
			{
				Name: "fetch-reacts",
				Inputs: []InputConfig{
					{Molecule: "counter", Kind: "var", Var: "n"},
					{Molecule: "fetch", Kind: "wildcard"},
				},
				Body: core.ScriptSource{
					Interpreter: "goja",
					Source:      `_.out({emit:"counter", value:_.bindings.n}); _.out({reply:"fetch", value:_.bindings.n}); return {};`,
				},
				Outputs: []string{"counter"},
			},
			{
				Name: "decr-reacts",
				Inputs: []InputConfig{
					{Molecule: "counter", Kind: "var", Var: "n"},
					{Molecule: "decr", Kind: "wildcard"},
				},
				Body: core.ScriptSource{
					Interpreter: "goja",
					Source:      `_.out({emit:"counter", value:_.bindings.n-1}); return {};`,
				},
				Outputs: []string{"counter"},
			},
		},
	}
}

func TestBuildAndActivateCounter(t *testing.T) {
	interpreters := map[string]core.Interpreter{"goja": goja.NewInterpreter()}

	reg, reactions, err := Build(counterConfig(), interpreters)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	decisionPool := pool.NewFixed(4)
	reactionPool := pool.NewBlockingAware(4)

	jd, wae, err := core.Activate(reactions, decisionPool, reactionPool)
	if err != nil {
		t.Fatalf("Activate: %v (warnings/errors: %+v)", err, wae)
	}
	_ = jd

	if err := reg.Emit("counter", 3); err != nil {
		t.Fatalf("emit counter: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := reg.Emit("decr", nil); err != nil {
			t.Fatalf("emit decr: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reply, timedOut, err := reg.BlockingInjector("fetch").Emit(ctx, nil, 2*time.Second)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if timedOut {
		t.Fatal("fetch timed out")
	}

	n, ok := reply.(int64)
	if !ok {
		if f, isFloat := reply.(float64); isFloat {
			n = int64(f)
		} else {
			t.Fatalf("reply %#v is a %T, not a number", reply, reply)
		}
	}
	if n != 0 {
		t.Fatalf("fetch reply = %v, want 0", n)
	}
}

func TestBuildRejectsUndeclaredMolecule(t *testing.T) {
	jc := &JoinConfig{
		Molecules: []MoleculeConfig{{Name: "a"}},
		Reactions: []ReactionConfig{
			{
				Name:   "r",
				Inputs: []InputConfig{{Molecule: "ghost", Kind: "wildcard"}},
				Body:   core.ScriptSource{Interpreter: "goja", Source: `return {};`},
			},
		},
	}
	if _, _, err := Build(jc, map[string]core.Interpreter{"goja": goja.NewInterpreter()}); err == nil {
		t.Fatal("expected an error for an undeclared molecule reference")
	}
}

func TestParseJoinConfigYAML(t *testing.T) {
	data := []byte(`
molecules:
  - name: a
  - name: b
    blocking: true
reactions:
  - name: r
    inputs:
      - molecule: a
        kind: wildcard
      - molecule: b
        kind: wildcard
    body:
      interpreter: goja
      source: "return {};"
`)
	jc, err := ParseJoinConfig(data)
	if err != nil {
		t.Fatalf("ParseJoinConfig: %v", err)
	}
	if len(jc.Molecules) != 2 || len(jc.Reactions) != 1 {
		t.Fatalf("unexpected parse result: %+v", jc)
	}
	if !jc.Molecules[1].Blocking {
		t.Fatalf("expected molecule %q to be blocking", jc.Molecules[1].Name)
	}
}
