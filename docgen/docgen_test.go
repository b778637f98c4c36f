package docgen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chymrt/chym/core"
)

func TestRenderReactionsHTML(t *testing.T) {
	a := core.DeclareNonBlocking[int]("a")
	b := core.DeclareNonBlocking[int]("b")

	r2 := core.NewReaction(
		"sum2",
		[]core.Input{
			{Mol: a.Id(), Matcher: core.Matcher{Kind: core.SimpleVar, Var: "x"}},
			{Mol: b.Id(), Matcher: core.Matcher{Kind: core.Wildcard}},
		},
		nil,
		nil,
		b.Id(),
	)
	r2.Doc = "adds **x** to the soup"

	var buf bytes.Buffer
	if err := RenderReactionsHTML([]*core.ReactionDescriptor{r2}, &buf); err != nil {
		t.Fatalf("RenderReactionsHTML: %v", err)
	}

	html := buf.String()
	if !strings.Contains(html, "sum2") {
		t.Fatalf("rendered HTML missing reaction name: %s", html)
	}
	if !strings.Contains(html, "<strong>x</strong>") {
		t.Fatalf("rendered HTML did not run Doc through markdown: %s", html)
	}
	if !strings.Contains(html, "?x") {
		t.Fatalf("rendered HTML missing SimpleVar pattern: %s", html)
	}
}
