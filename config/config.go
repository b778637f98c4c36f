package config

import (
	"fmt"

	"github.com/jsccast/yaml"

	"github.com/chymrt/chym/core"
)

// MoleculeConfig declares one molecule: its display name and whether
// emitting it suspends the caller for a reply.
type MoleculeConfig struct {
	Name     string `json:"name" yaml:",omitempty"`
	Blocking bool   `json:"blocking,omitempty" yaml:",omitempty"`
}

// InputConfig is one reaction input pattern. Kind is one of
// "wildcard", "var", or "const"; core.Arbitrary has no declarative
// form here since its predicate is native Go code — reactions that
// need it are built with core.NewReaction directly instead of
// through this package.
type InputConfig struct {
	Molecule string      `json:"molecule" yaml:",omitempty"`
	Kind     string      `json:"kind,omitempty" yaml:",omitempty"`
	Var      string      `json:"var,omitempty" yaml:",omitempty"`
	Value    interface{} `json:"value,omitempty" yaml:",omitempty"`
}

// ReactionConfig is one declarative reaction. Guard, if given, must
// compile to a script that returns its bindings with an added
// boolean "guard" key — see compileGuard. Body's script emits further
// molecules or replies by calling the interpreter's emission primitive
// (goja's _.out()) with a map shaped {"emit": name, "value": v} or
// {"reply": name, "value": v} — see compileBody.
type ReactionConfig struct {
	Name    string             `json:"name" yaml:",omitempty"`
	Doc     string             `json:"doc,omitempty" yaml:",omitempty"`
	Inputs  []InputConfig      `json:"inputs" yaml:",omitempty"`
	Guard   *core.ScriptSource `json:"guard,omitempty" yaml:",omitempty"`
	Body    core.ScriptSource  `json:"body" yaml:",omitempty"`
	Outputs []string           `json:"outputs,omitempty" yaml:",omitempty"`
	Retry   bool               `json:"retry,omitempty" yaml:",omitempty"`
}

// JoinConfig is the declarative form of one join definition: the
// molecules it introduces plus the reactions that bind them.
type JoinConfig struct {
	Molecules []MoleculeConfig `json:"molecules" yaml:",omitempty"`
	Reactions []ReactionConfig `json:"reactions" yaml:",omitempty"`
}

// Registry holds the runtime molecule handles a JoinConfig declared,
// keyed by name, plus the means to emit them without compile-time
// knowledge of their value type.
type Registry struct {
	ids         map[string]core.MoleculeId
	nonBlocking map[string]*core.Injector[interface{}]
	blocking    map[string]*core.BlockingInjector[interface{}, interface{}]
}

func newRegistry() *Registry {
	return &Registry{
		ids:         make(map[string]core.MoleculeId),
		nonBlocking: make(map[string]*core.Injector[interface{}]),
		blocking:    make(map[string]*core.BlockingInjector[interface{}, interface{}]),
	}
}

// Id returns the MoleculeId bound to name, or nil if name was never
// declared.
func (r *Registry) Id(name string) core.MoleculeId {
	return r.ids[name]
}

// Emit emits value on the non-blocking molecule named name.
func (r *Registry) Emit(name string, value interface{}) error {
	inj, have := r.nonBlocking[name]
	if !have {
		return fmt.Errorf("config: %q is not a declared non-blocking molecule", name)
	}
	return inj.Emit(value)
}

// BlockingInjector returns the injector of the blocking molecule named
// name, or nil if name was not declared as a blocking molecule.
// Callers emit through it and wait for the reply; reactions built by
// this package reply through the conventions documented on
// ReactionConfig.Body.
func (r *Registry) BlockingInjector(name string) *core.BlockingInjector[interface{}, interface{}] {
	return r.blocking[name]
}

// ParseJoinConfig unmarshals a JoinConfig from YAML (or
// YAML-compatible JSON) source.
func ParseJoinConfig(data []byte) (*JoinConfig, error) {
	var jc JoinConfig
	if err := yaml.Unmarshal(data, &jc); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &jc, nil
}

// Load parses data as a JoinConfig and builds it into a Registry plus
// the []*core.ReactionDescriptor ready for core.Activate. interpreters
// resolves each ScriptSource.Interpreter name; nil uses
// core.DefaultInterpreters.
func Load(data []byte, interpreters map[string]core.Interpreter) (*Registry, []*core.ReactionDescriptor, error) {
	jc, err := ParseJoinConfig(data)
	if err != nil {
		return nil, nil, err
	}
	return Build(jc, interpreters)
}

// Build declares jc's molecules into a fresh Registry and compiles
// its reactions against them.
func Build(jc *JoinConfig, interpreters map[string]core.Interpreter) (*Registry, []*core.ReactionDescriptor, error) {
	reg := newRegistry()

	for _, mc := range jc.Molecules {
		if _, dup := reg.ids[mc.Name]; dup {
			return nil, nil, fmt.Errorf("config: molecule %q declared twice", mc.Name)
		}
		if mc.Blocking {
			inj := core.DeclareBlocking[interface{}, interface{}](mc.Name)
			reg.blocking[mc.Name] = inj
			reg.ids[mc.Name] = inj.Id()
		} else {
			inj := core.DeclareNonBlocking[interface{}](mc.Name)
			reg.nonBlocking[mc.Name] = inj
			reg.ids[mc.Name] = inj.Id()
		}
	}

	reactions := make([]*core.ReactionDescriptor, 0, len(jc.Reactions))
	for _, rc := range jc.Reactions {
		r, err := buildReaction(rc, reg, interpreters)
		if err != nil {
			return nil, nil, fmt.Errorf("config: reaction %q: %w", rc.Name, err)
		}
		reactions = append(reactions, r)
	}

	return reg, reactions, nil
}

func buildMatcher(ic InputConfig) (core.Matcher, error) {
	switch ic.Kind {
	case "", "wildcard":
		return core.Matcher{Kind: core.Wildcard}, nil
	case "var":
		if ic.Var == "" {
			return core.Matcher{}, fmt.Errorf("input on %q: kind \"var\" needs a var name", ic.Molecule)
		}
		return core.Matcher{Kind: core.SimpleVar, Var: ic.Var}, nil
	case "const":
		return core.Matcher{Kind: core.Constant, Value: ic.Value}, nil
	default:
		return core.Matcher{}, fmt.Errorf("input on %q: unknown matcher kind %q", ic.Molecule, ic.Kind)
	}
}
