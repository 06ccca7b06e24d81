// Package engine provides the Lisp evaluation engine for aircraft
// definitions. It wraps zygomys in a sandboxed environment and produces a
// document.Document from user source code.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/aerogeom/pkg/document"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a problem in the user's source: a parse error or a form that
// failed while running. Line is 0 when the interpreter did not report one.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine runs aircraft definitions in zygomys. Engines hold no state
// between calls, so one Engine serves any number of goroutines.
type Engine struct {
	timeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides EvalTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine returns an Engine using EvalTimeout unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate is EvaluateContext without a caller deadline.
func (e *Engine) Evaluate(source string) (*document.Document, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext turns source into a Document. The document is not
// validated; document.Store.Add does that.
//
// Source errors (parse errors, failing forms) come back as EvalErrors with a
// nil document and nil error. A timeout, a cancelled ctx or a panic in the
// interpreter is returned as the error. An evaluation abandoned that way
// keeps running in the background and its result is dropped.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*document.Document, []EvalError, error) {
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		d, evalErrs, err := e.evaluate(source)
		ch <- evalResult{doc: d, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ctx, ch, e.timeout)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*document.Document, []EvalError, error) {
	// Empty source is a valid program that produces an empty document.
	if strings.TrimSpace(source) == "" {
		return document.New(""), nil, nil
	}

	// no filesystem or syscalls from user code
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	doc := document.New("")
	registerBuiltins(env, doc)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	return doc, nil, nil
}

// linePattern matches "Error on line N: ..." messages.
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches the bare "line N: ..." form.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError turns an interpreter error into EvalErrors, keeping the
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
