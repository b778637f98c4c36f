package goja

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chymrt/chym/core"
)

func TestActionsSimple(t *testing.T) {
	code := `return {likes:"chips"};`

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Testing = true
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	exe, err := i.Exec(ctx, nil, nil, code, compiled)
	if err != nil {
		t.Fatal(err)
	}
	x, have := exe.Bs["likes"]
	if !have {
		t.Fatalf("nothing liked in %#v", exe.Bs)
	}
	s, is := x.(string)
	if !is {
		t.Fatalf("liked %#v is a %T, not a %T", x, x, s)
	}
	if s != "chips" {
		t.Fatalf("didn't want %q", s)
	}
}

func TestActionsParam(t *testing.T) {
	code := `return {machineId:_.props.mid};`
	props := core.Props{"mid": "simpsons"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Testing = true
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	exe, err := i.Exec(ctx, nil, props, code, compiled)
	if err != nil {
		t.Fatal(err)
	}
	x, have := exe.Bs["machineId"]
	if !have {
		t.Fatalf("no machineId in %#v", exe.Bs)
	}
	s, is := x.(string)
	if !is {
		t.Fatalf("machineId %#v is a %T, not a %T", x, x, s)
	}
	if s != "simpsons" {
		t.Fatalf("didn't want %q", s)
	}
}

func TestActionsTimeout(t *testing.T) {
	code := `for (;;) { sleep(10); } null;`

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Testing = true
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = i.Exec(ctx, nil, nil, code, compiled); err == nil {
		t.Fatal("didn't timeout")
	}
	msg := err.Error()
	if msg != InterruptedMessage {
		t.Fatalf("surprised by %q", msg)
	}
}

func TestActionsError(t *testing.T) {
	code := `likes + tacos; null;`

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = i.Exec(ctx, nil, nil, code, compiled); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestActionsCronNextGood(t *testing.T) {
	cronExpr := "* 0 * * *"
	code := fmt.Sprintf(`({next: _.cronNext("%s")});`, cronExpr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = i.Exec(ctx, nil, nil, code, compiled); err != nil {
		t.Fatal(err)
	}
}

func TestActionsCronNextBad(t *testing.T) {
	cronExpr := "bad"
	code := fmt.Sprintf(`({next: _.cronNext("%s")});`, cronExpr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := i.Exec(ctx, nil, nil, code, compiled); err == nil {
		t.Fatal("didn't protest")
	}
}

// TestActionsAsReactionGuard exercises a ScriptSource wired up exactly
// as a reaction's Guard would use it: compile once, then evaluate
// repeatedly against different Bindings produced by a match.
func TestActionsAsReactionGuard(t *testing.T) {
	src := &core.ScriptSource{
		Interpreter: "goja",
		Source:      `return {pass: _.bindings.n > 10};`,
	}

	interps := map[string]core.Interpreter{"goja": NewInterpreter()}

	fn, err := src.Compile(context.Background(), interps)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		n    int
		pass bool
	}{
		{n: 3, pass: false},
		{n: 11, pass: true},
	} {
		exe, err := fn.Exec(context.Background(), core.Bindings{"n": tc.n}, nil)
		if err != nil {
			t.Fatal(err)
		}
		got, _ := exe.Bs["pass"].(bool)
		if got != tc.pass {
			t.Fatalf("n=%d: expected pass=%v, got %v", tc.n, tc.pass, got)
		}
	}
}

func TestActionsRequireSimple(t *testing.T) {
	code := map[string]interface{}{
		"requires": []interface{}{"foo", "bar"},
		"code":     `return {likes: foo()}`,
	}

	i := NewInterpreter()
	i.Testing = true

	i.LibraryProvider = MakeMapLibraryProvider(map[string]string{
		"foo": `
function foo() {
  var acc = [];
  for (var i = 0; i < 10; i++) {
      acc.push(i);
  }
  return "chips";
}
`,
		"bar": `
function bar() { return "queso"}
`,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	exe, err := i.Exec(ctx, nil, nil, code, compiled)
	if err != nil {
		t.Fatal(err)
	}
	x, have := exe.Bs["likes"]
	if !have {
		t.Fatalf("nothing liked in %#v", exe.Bs)
	}
	s, is := x.(string)
	if !is {
		t.Fatalf("liked %#v is a %T, not a %T", x, x, s)
	}
	if s != "chips" {
		t.Fatalf("didn't want %q", s)
	}
}

// TestActionsRequireInline exercises InlineRequires: a top-level
// require("name") call written directly in the code, as opposed to
// the "requires" source property TestActionsRequireSimple covers.
func TestActionsRequireInline(t *testing.T) {
	code := `
require("greeting");
return {msg: greet()};
`

	i := NewInterpreter()
	i.Testing = true
	i.LibraryProvider = MakeMapLibraryProvider(map[string]string{
		"greeting": `function greet() { return "hi"; }`,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	exe, err := i.Exec(ctx, nil, nil, code, compiled)
	if err != nil {
		t.Fatal(err)
	}
	x, have := exe.Bs["msg"]
	if !have {
		t.Fatalf("no msg in %#v", exe.Bs)
	}
	s, is := x.(string)
	if !is {
		t.Fatalf("msg %#v is a %T, not a %T", x, x, s)
	}
	if s != "hi" {
		t.Fatalf("expected hi, got %q", s)
	}
}

func TestActionsRequireHTTP(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `
function foo() { return "queso"; }
`)
	})

	server := httptest.NewServer(handler)
	defer server.Close()

	code := map[string]interface{}{
		"requires": []interface{}{server.URL},
		"code":     `return {wants: foo()}`,
	}

	i := NewInterpreter()
	i.Testing = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	exe, err := i.Exec(ctx, nil, nil, code, compiled)
	if err != nil {
		t.Fatal(err)
	}
	x, have := exe.Bs["wants"]
	if !have {
		t.Fatalf("nothing wanted in %#v", exe.Bs)
	}
	s, is := x.(string)
	if !is {
		t.Fatalf("wants %#v is a %T, not a %T", x, x, s)
	}
	if s != "queso" {
		t.Fatalf("wanted something wrong: %q", s)
	}
}

func benchmarkCompiling(b *testing.B, compiling bool) {
	// Pretend we have a large library, but we only do a little
	// actual computation.
	code := `
function radians (num) {
  return num * Math.PI / 180;
}

function haversine (lon1,lat1,lon2,lat2) {
  var R = 6371;
  var dLat = radians(lat2-lat1);
  var dLon = radians(lon2-lon1);
  var lat1 = radians(lat1);
  var lat2 = radians(lat2);
  var a = Math.sin(dLat/2) * Math.sin(dLat/2) + Math.sin(dLon/2) * Math.sin(dLon/2) * Math.cos(lat1) * Math.cos(lat2);
  var c = 2 * Math.atan2(Math.sqrt(a), Math.sqrt(1-a));
  var d = R * c;
  return d;
}

function bar() { return "chips"; }

({likes:bar()});
`

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Testing = true

	var compiled interface{}
	if compiling {
		var err error
		if compiled, err = i.Compile(ctx, code); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()

	for n := 0; n < b.N; n++ {
		if _, err := i.Exec(context.Background(), nil, nil, code, compiled); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPrecompile(b *testing.B) {
	benchmarkCompiling(b, true)
}

func BenchmarkNoPrecompile(b *testing.B) {
	benchmarkCompiling(b, false)
}
