package docgen

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/chymrt/chym/core"
)

// matcherLabel is what goes on the edge from a molecule node to a
// reaction node: the pattern that input applies, YAML-encoded the
// same way the teacher's tools.Dot encodes a branch's Pattern for its
// edge labels (yaml over json because it renders shorter and quotes
// less for the simple scalars a Matcher carries).
func matcherLabel(m core.Matcher) string {
	var v interface{}
	switch m.Kind {
	case core.Wildcard:
		v = "_"
	case core.SimpleVar:
		v = "?" + m.Var
	case core.Constant:
		v = m.Value
	case core.Arbitrary:
		if m.Var != "" {
			v = "?" + m.Var + " (guarded)"
		} else {
			v = "(guarded)"
		}
	default:
		v = "?"
	}
	bs, err := yaml.Marshal(v)
	if err != nil {
		return err.Error()
	}
	label := strings.TrimRight(string(bs), "\n")
	return strings.Replace(label, "\n", `\l`, -1)
}

// RenderReactionsDot renders a reaction set as a Graphviz dot graph:
// one ellipse node per molecule (a doublecircle when blocking), one
// note-shaped node per reaction, an edge from each input molecule to
// its reaction labeled with the input's matcher, and an edge from a
// reaction to each declared output molecule. Grounded on the
// teacher's tools.Dot (Spec.Nodes/Branches walked into
// digraph-with-labeled-edges), narrowed from a state-machine graph to
// a bipartite molecule/reaction graph since a JoinDefinition has no
// notion of "current node".
func RenderReactionsDot(reactions []*core.ReactionDescriptor, out io.Writer) error {
	fmt.Fprintf(out, "digraph G {\n")
	fmt.Fprintf(out, "  graph [rankdir=LR, nodesep=0.3, ranksep=0.6]\n")
	fmt.Fprintf(out, "  node [fontsize=10]\n")

	molSeen := make(map[core.MoleculeId]bool)
	molNode := func(id core.MoleculeId) string {
		name := core.Name(id)
		if !molSeen[id] {
			molSeen[id] = true
			shape := "ellipse"
			if core.IsBlocking(id) {
				shape = "doublecircle"
			}
			fmt.Fprintf(out, "  %q [shape=%s, style=filled, fillcolor=\"#99ddc8\", label=%q]\n", name, shape, name)
		}
		return name
	}

	for i, r := range reactions {
		rname := fmt.Sprintf("reaction_%d", i)
		fmt.Fprintf(out, "  %q [shape=note, style=filled, fillcolor=\"#2d93ad\", label=%q]\n", rname, r.Name)

		for _, in := range r.Inputs {
			mname := molNode(in.Mol)
			fmt.Fprintf(out, "  %q -> %q [label=%q]\n", mname, rname, matcherLabel(in.Matcher))
		}
		for _, o := range r.Outputs {
			mname := molNode(o)
			fmt.Fprintf(out, "  %q -> %q\n", rname, mname)
		}
	}

	fmt.Fprintf(out, "}\n")
	return nil
}
