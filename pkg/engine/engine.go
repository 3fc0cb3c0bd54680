// Package engine provides the Lisp problem language for geoproof.
// It wraps zygomys in a sandboxed environment and produces a Problem
// from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

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

// Engine wraps the zygomys interpreter for problem evaluation.
// Each call to Evaluate creates a fresh sandboxed environment for
// determinism. A call that starts while another is still running
// supersedes it; use one Engine per concurrent caller.
type Engine struct {
	// Timeout bounds a single evaluation. Zero means EvalTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{Timeout: EvalTimeout}
}

// Evaluate takes Lisp source code and produces a new Problem.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns problem + nil errors + nil error
//   - On parse/eval failure: returns nil problem + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Problem, []EvalError, error) {
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

		p, evalErrs, err := e.evaluate(source)
		ch <- evalResult{problem: p, errors: evalErrs, err: err}
	}()

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = EvalTimeout
	}
	return waitWithTimeout(ch, gen, timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Problem, []EvalError, error) {
	p := newProblem()

	// Empty source is a valid program that produces an empty problem.
	if strings.TrimSpace(source) == "" {
		return p, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, p)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	return p, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, pattern := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := pattern.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
