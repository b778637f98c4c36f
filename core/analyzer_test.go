package core

import (
	"context"
	"strings"
	"testing"
)

func noopBody(ctx context.Context, bs Bindings, replies map[MoleculeId]*ReplyHandle) error {
	return nil
}

func TestAnalyzeDetectsShadowing(t *testing.T) {
	a := DeclareNonBlocking[int]("a")

	specific := NewReaction("specific",
		[]Input{{Mol: a.Id(), Matcher: Matcher{Kind: Constant, Value: 1}}},
		nil, noopBody)
	general := NewReaction("general",
		[]Input{{Mol: a.Id(), Matcher: Matcher{Kind: Wildcard}}},
		nil, noopBody)

	_, _, err := Activate([]*ReactionDescriptor{specific, general}, testPool{}, testPool{})
	if err == nil {
		t.Fatal("expected a fatal shadowing error")
	}
	if !strings.Contains(err.Error(), "Unavoidable indeterminism") {
		t.Fatalf("expected shadowing message, got: %v", err)
	}
	if !strings.Contains(err.Error(), "In Join{") {
		t.Fatalf("expected the stable \"In Join{...}: \" prefix, got: %v", err)
	}
}

func TestAnalyzeDetectsUnavoidableLivelock(t *testing.T) {
	loop := DeclareNonBlocking[int]("loop")

	r := NewReaction("spin",
		[]Input{{Mol: loop.Id(), Matcher: Matcher{Kind: SimpleVar, Var: "?n"}}},
		nil, noopBody, loop.Id())

	_, _, err := Activate([]*ReactionDescriptor{r}, testPool{}, testPool{})
	if err == nil {
		t.Fatal("expected a fatal unavoidable-livelock error")
	}
	if !strings.Contains(err.Error(), "Unavoidable livelock") {
		t.Fatalf("expected livelock message, got: %v", err)
	}
	if !strings.Contains(err.Error(), "In Join{") {
		t.Fatalf("expected the stable \"In Join{...}: \" prefix, got: %v", err)
	}
}

// TestAnalyzeWarnsPossibleDeadlock exercises the cross-reaction,
// output-order-sensitive shape: producer consumes blocking f and
// non-blocking a in one JoinDefinition; consumer, activated
// afterward in a separate JoinDefinition, emits f and then a in that
// order. Firing consumer blocks on f's reply before a is ever
// emitted, but producer (f's own consumer) needs a to proceed — the
// two can deadlock.
func TestAnalyzeWarnsPossibleDeadlock(t *testing.T) {
	f := DeclareBlocking[int, int]("f")
	a := DeclareNonBlocking[int]("a")
	c := DeclareNonBlocking[int]("c")

	producer := NewReaction("producer",
		[]Input{
			{Mol: f.Id(), Matcher: Matcher{Kind: Wildcard}},
			{Mol: a.Id(), Matcher: Matcher{Kind: Wildcard}},
		},
		nil, noopBody, a.Id())

	if _, _, err := Activate([]*ReactionDescriptor{producer}, testPool{}, testPool{}); err != nil {
		t.Fatalf("activating producer join definition: %v", err)
	}

	consumer := NewReaction("consumer",
		[]Input{{Mol: c.Id(), Matcher: Matcher{Kind: Wildcard}}},
		nil, noopBody, f.Id(), a.Id())

	_, wae, err := Activate([]*ReactionDescriptor{consumer}, testPool{}, testPool{})
	if err != nil {
		t.Fatalf("expected activation to succeed with only a warning, got: %v", err)
	}
	found := false
	for _, w := range wae.Warnings {
		if strings.Contains(w, "Possible deadlock") && strings.Contains(w, "f") && strings.Contains(w, "consumer") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a possible-deadlock warning, got: %v", wae.Warnings)
	}
}
