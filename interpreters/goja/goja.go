// Package goja implements core.Interpreter using the pure-Go
// ECMAScript 5.1+ engine of the same name, so that reaction guards
// and bodies can be written as scripts instead of Go functions.
package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chymrt/chym/core"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)

	// IgnoreExit will prevent the Goja function "exit" from
	// terminating the process. Being able to halt the process
	// from Goja is useful for some tests and utilities. Maybe.
	IgnoreExit = false
)

// init registers this Interpreter under "goja" in core.DefaultInterpreters.
func init() {
	core.DefaultInterpreters["goja"] = NewInterpreter()
}

// Interpreter implements core.Interpreter using Goja.
//
// See https://github.com/dop251/goja.
type Interpreter struct {

	// Testing exposes some runtime capabilities (sleep, exit) that
	// are only safe to enable in tests.
	Testing bool

	// LibraryProvider resolves a "requires" entry to source code.
	// DefaultLibraryProvider is used when this is nil.
	LibraryProvider func(ctx context.Context, i *Interpreter, libraryName string) (string, error)
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) provideLibrary(ctx context.Context, name string) (string, error) {
	if i.LibraryProvider != nil {
		return i.LibraryProvider(ctx, i, name)
	}
	return DefaultLibraryProvider(ctx, i, name)
}

var DefaultLibraryProvider = MakeFileLibraryProvider(".")

// MakeFileLibraryProvider makes a LibraryProvider that resolves
// "file://", "http://", and "https://" library names relative to
// dir for file links.
func MakeFileLibraryProvider(dir string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		parts := strings.SplitN(name, "://", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("bad link %q", name)
		}
		switch parts[0] {
		case "file":
			filename := parts[1]
			bs, err := ioutil.ReadFile(dir + "/" + filename)
			if err != nil {
				return "", err
			}
			return string(bs), nil
		case "http", "https":
			req, err := http.NewRequestWithContext(ctx, "GET", name, nil)
			if err != nil {
				return "", err
			}
			client := http.Client{}
			resp, err := client.Do(req)
			if err != nil {
				return "", err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return "", fmt.Errorf("library fetch status %s %d", resp.Status, resp.StatusCode)
			}
			bs, err := ioutil.ReadAll(resp.Body)
			if err != nil {
				return "", err
			}
			return string(bs), nil
		default:
			return "", fmt.Errorf("unknown protocol %q", parts[0])
		}
	}
}

// MakeMapLibraryProvider makes a LibraryProvider backed by an
// in-memory map, handy for tests.
func MakeMapLibraryProvider(srcs map[string]string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library %q", name)
		}
		return src, nil
	}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// parseSource looks for "code" and "requires" properties in a
// Goja ScriptSource's Source map.
func parseSource(vv map[string]interface{}) (code string, libs []string, err error) {
	if x, have := vv["code"]; have {
		s, is := x.(string)
		if !is {
			return "", nil, errors.New("bad goja source code")
		}
		code = s
	}

	switch x := vv["requires"].(type) {
	case string:
		libs = []string{x}
	case []string:
		libs = x
	case []interface{}:
		libs = make([]string, 0, len(x))
		for _, e := range x {
			s, is := e.(string)
			if !is {
				return "", nil, errors.New("bad library name")
			}
			libs = append(libs, s)
		}
	}

	return code, libs, nil
}

// AsSource normalizes a ScriptSource.Source into code plus required
// library names.
func AsSource(src interface{}) (code string, libs []string, err error) {
	switch vv := src.(type) {
	case string:
		return vv, nil, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			str, ok := k.(string)
			if !ok {
				return "", nil, fmt.Errorf("bad source key (%T)", k)
			}
			m[str] = v
		}
		return parseSource(m)
	case map[string]interface{}:
		return parseSource(vv)
	default:
		return "", nil, fmt.Errorf("bad goja source (%T)", src)
	}
}

// Compile resolves requires, wraps the code as a single function,
// and parses it with Goja. It can block if LibraryProvider blocks.
//
// Two ways to pull in a library are supported. A "requires" property
// on the source (see AsSource/parseSource) prepends libraries ahead
// of the whole compiled function. A top-level require("name") call
// written directly in the code is inlined in place by InlineRequires,
// using the same provider — this is the sheens-style alternative to
// defining a require() runtime function and eval-ing it, which would
// defeat precompilation.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	code, libs, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	code, err = InlineRequires(ctx, code, i.provideLibrary)
	if err != nil {
		return nil, err
	}

	code = wrapSrc(code)

	var libsSrc string
	for _, lib := range libs {
		libSrc, err := i.provideLibrary(ctx, lib)
		if err != nil {
			return nil, err
		}
		libsSrc += libSrc + "\n"
	}
	code = libsSrc + code

	obj, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}
	return obj, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// Exec runs compiled script code against the current Bindings and
// Props.
//
// The script sees its environment at global `_`, with `_.bindings`
// and `_.props`. Utilities available to scripts, as properties of `_`
// (call them as `_.out(obj)` and so on):
//
//	out(obj)    add obj to the list of emitted values
//	gensym()    a random string
//	esc(s)      URL query-escape s
//	cronNext(e) the next time cron expression e fires, RFC3339Nano
//	log(x)      log x as JSON
//
// The global sleep(ms) and `_.exit(code, msg)` are available only when
// Testing is set.
func (i *Interpreter) Exec(ctx context.Context, bs core.Bindings, props core.Props, src interface{}, compiled interface{}) (*core.Execution, error) {
	exe := core.NewExecution(bs)

	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return exe, err
		}
	}
	p, is := compiled.(*goja.Program)
	if !is {
		return exe, fmt.Errorf("goja: bad compilation: %T", compiled)
	}

	env := map[string]interface{}{"ctx": ctx}
	if props != nil {
		env["props"] = map[string]interface{}(props.Copy())
	} else {
		env["props"] = map[string]interface{}{}
	}
	if bs != nil {
		env["bindings"] = map[string]interface{}(bs.Copy())
	}

	o := goja.New()
	o.Set("_", env)

	if i.Testing {
		o.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	env["gensym"] = func() interface{} { return core.Gensym(32) }

	env["cronNext"] = func(x interface{}) interface{} {
		if vv, is := x.(goja.Value); is {
			x = vv.Export()
		}
		expr, is := x.(string)
		if !is {
			protest(o, "not a string")
		}
		c, err := cronexpr.Parse(expr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	env["esc"] = func(x interface{}) interface{} {
		if vv, is := x.(goja.Value); is {
			x = vv.Export()
		}
		s, is := x.(string)
		if !is {
			panic("not a string")
		}
		return url.QueryEscape(s)
	}

	if i.Testing {
		env["exit"] = func(n interface{}, msg interface{}) interface{} {
			if vv, is := msg.(goja.Value); is {
				msg = vv.Export()
			}
			s, is := msg.(string)
			if !is {
				panic("not a string")
			}
			if vv, is := n.(goja.Value); is {
				n = vv.Export()
			}
			ec, is := n.(int64)
			if !is {
				panic(fmt.Sprintf("a %T is not an int64", n))
			}
			log.Println(s)
			if !IgnoreExit {
				os.Exit(int(ec))
			}
			return msg
		}
	}

	env["out"] = func(x interface{}) interface{} {
		if vv, is := x.(goja.Value); is {
			x = vv.Export()
		}
		y, err := canonicalize(x)
		if err != nil {
			panic(err)
		}
		exe.AddEmitted(y)
		return y
	}

	env["log"] = func(x interface{}) interface{} {
		if vv, is := x.(goja.Value); is {
			x = vv.Export()
		}
		js, err := json.Marshal(&x)
		if err != nil {
			log.Println("goja.log (can't marshal: " + err.Error() + ")")
		} else {
			log.Println(string(js))
		}
		return x
	}

	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	x := v.Export()
	switch vv := x.(type) {
	case map[string]interface{}:
		exe.Bs = core.Bindings(vv)
	case core.Bindings:
		exe.Bs = vv
	case nil:
	default:
		return nil, fmt.Errorf("%#v (%T) isn't Bindings", x, x)
	}

	return exe, nil
}

func canonicalize(x interface{}) (interface{}, error) {
	js, err := json.Marshal(&x)
	if err != nil {
		return nil, err
	}
	var y interface{}
	if err = json.Unmarshal(js, &y); err != nil {
		return nil, err
	}
	return y, nil
}
