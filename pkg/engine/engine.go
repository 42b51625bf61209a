// Package engine provides the Lisp evaluation engine for Tangent.
// It wraps zygomys in a sandboxed environment and produces a spline Network
// from user source code.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/tangent/pkg/network"
	"github.com/chazu/tangent/pkg/settings"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
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

// EvalWarning represents a non-fatal warning produced during evaluation,
// such as a rejected junction merge.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	Spline  string
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Network  *network.Network
	Errors   []EvalError
	Warnings []EvalWarning
}

// Option configures an Engine.
type Option func(*Engine)

// WithLibrary resolves use-settings against lib, so asset flags are sized
// and unknown bundle names are reported.
func WithLibrary(lib *settings.Library) Option {
	return func(e *Engine) { e.lib = lib }
}

// WithLogger sets the logger handed to every evaluated network.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine wraps the zygomys interpreter for Tangent evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	lib *settings.Library
	log *slog.Logger
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces a new Network.
//
// Return semantics:
//   - On success: returns network + nil errors + nil error
//   - On parse/eval failure: returns nil network + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*network.Network, []EvalError, error) {
	res, err := e.Run(source)
	return res.Network, res.Errors, err
}

// Run is Evaluate with warnings.
func (e *Engine) Run(source string) (EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res := e.evaluate(source)
		ch <- evalResult{res: res}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) EvalResult {
	net := network.New(network.WithLogger(e.log))

	// Empty source is a valid program that produces an empty network.
	if strings.TrimSpace(source) == "" {
		return EvalResult{Network: net}
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := &builder{net: net, lib: e.lib}
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return EvalResult{Errors: parseZygomysError(err), Warnings: b.warnings}
	}
	if _, err := env.Run(); err != nil {
		return EvalResult{Errors: parseZygomysError(err), Warnings: b.warnings}
	}

	net.Rebuild()
	return EvalResult{Network: net, Warnings: b.warnings}
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
