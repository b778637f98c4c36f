package docgen

import (
	"fmt"
	"io"

	blackfriday "github.com/russross/blackfriday/v2"

	"github.com/chymrt/chym/core"
)

// RenderReactionsHTML renders reactions as a sequence of fragments,
// one per reaction: its name, its Doc run through blackfriday, a
// table of input patterns, its declared outputs, and whether it
// retries on a protocol fault — the ReactionDescriptor analogue of
// the teacher's RenderSpecHTML walking a core.Spec's Nodes.
func RenderReactionsHTML(reactions []*core.ReactionDescriptor, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="reactions"><table>`)
	for _, r := range reactions {
		f(`<tr class="reaction"><td><span id="%s" class="reactionName">%s</span></td><td>`, r.Name, r.Name)

		if r.Doc != "" {
			f(`<div class="reactionDoc doc">%s</div>`, string(blackfriday.Run([]byte(r.Doc))))
		}

		f(`<div class="inputs"><table>`)
		for _, in := range r.Inputs {
			f(`<tr><td><code>%s</code></td><td>%s</td></tr>`, core.Name(in.Mol), matcherDescription(in.Matcher))
		}
		f(`</table></div>`)

		if r.Guard != nil {
			f(`<div class="guard">guarded</div>`)
		}

		if len(r.Outputs) > 0 {
			f(`<div class="outputs">outputs: `)
			for i, o := range r.Outputs {
				if i > 0 {
					f(`, `)
				}
				f(`<a href="#%s"><code>%s</code></a>`, core.Name(o), core.Name(o))
			}
			f(`</div>`)
		}

		if r.Retry {
			f(`<div class="retry">retries on protocol fault</div>`)
		}

		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

func matcherDescription(m core.Matcher) string {
	switch m.Kind {
	case core.Wildcard:
		return "_"
	case core.SimpleVar:
		return "?" + m.Var
	case core.Constant:
		return fmt.Sprintf("%v", m.Value)
	case core.Arbitrary:
		if m.Var != "" {
			return "?" + m.Var + " (guarded)"
		}
		return "(guarded)"
	default:
		return "?"
	}
}

// RenderReactionsPage wraps RenderReactionsHTML in a standalone HTML
// document, mirroring the teacher's RenderSpecPage.
func RenderReactionsPage(title string, reactions []*core.ReactionDescriptor, out io.Writer, cssFiles []string) error {
	fmt.Fprintf(out, "<!DOCTYPE html>\n<meta charset=\"utf-8\">\n<html>\n  <head>\n  <title>%s</title>\n", title)
	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}
	fmt.Fprintf(out, "  </head>\n  <body>\n    <h1>%s</h1>\n", title)

	if err := RenderReactionsHTML(reactions, out); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  </body>\n</html>\n")
	return nil
}
