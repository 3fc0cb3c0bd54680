// Package prover orchestrates the derivation of target theorems: it feeds
// verified facts to the tracker and normalizer, collects rule strategy and
// subtheorem output into a knowledge base, and resolves the targets.
package prover

import (
	"errors"

	"github.com/chazu/geoproof/pkg/derive"
	"github.com/chazu/geoproof/pkg/geom"
	"github.com/chazu/geoproof/pkg/normalize"
	"github.com/chazu/geoproof/pkg/theorem"
)

// ErrMalformedInput wraps programming errors detected while proving.
var ErrMalformedInput = errors.New("malformed input")

// Implication is one output of a strategy: Implied follows from Premises.
type Implication struct {
	Premises []theorem.Theorem
	Implied  theorem.Theorem
}

// Strategy derives implications from the known theorems. Derive must be
// pure with respect to its input.
type Strategy interface {
	Name() string
	Derive(known []theorem.Theorem) []Implication
}

// Template is a configuration with theorems already proved for it.
type Template struct {
	Name          string
	Configuration *geom.Configuration
	Theorems      []theorem.Theorem
}

// Types returns the distinct theorem types of the template's theorems.
func (t Template) Types() []theorem.Type {
	seen := make(map[theorem.Type]bool)
	var out []theorem.Type
	for _, th := range t.Theorems {
		if !seen[th.Type] {
			seen[th.Type] = true
			out = append(out, th.Type)
		}
	}
	return out
}

// Match is one instance of a template theorem in the examined
// configuration, with the facts the instance relies on.
type Match struct {
	Template   theorem.Theorem
	Examined   theorem.Theorem
	Equalities []theorem.Theorem
	Incidences []theorem.Theorem
	Others     []theorem.Theorem
}

// Needs returns every fact the match relies on.
func (m Match) Needs() []theorem.Theorem {
	var out []theorem.Theorem
	out = append(out, m.Equalities...)
	out = append(out, m.Incidences...)
	return append(out, m.Others...)
}

// SubtheoremMatcher finds instances of template theorems among the
// examined theorems.
type SubtheoremMatcher interface {
	Match(examined []theorem.Theorem, template Template) []Match
}

// Input is one problem.
type Input struct {
	Configuration *geom.Configuration
	// Verifier checks new facts. When nil, the facts below are the only
	// true statements.
	Verifier normalize.Verifier
	// Facts are verified ground theorems of the configuration.
	Facts []theorem.Theorem
	// Trivial are facts that hold in every configuration.
	Trivial []theorem.Theorem
	// Smaller are facts already proved in a smaller configuration.
	Smaller []theorem.Theorem
	Targets []theorem.Theorem
}

// Output holds the resolved targets. Proven and Unproven follow target
// order; Discovered lists the unresolved non-target premises.
type Output struct {
	Proven     []*derive.Proof
	Unproven   []derive.Unresolved
	Discovered []derive.Unresolved
}

// Proof returns the proof of t, or nil.
func (o *Output) Proof(t theorem.Theorem) *derive.Proof {
	k := t.Key()
	for _, p := range o.Proven {
		if p.Theorem.Key() == k {
			return p
		}
	}
	return nil
}

// IsProven reports whether t is a proven target.
func (o *Output) IsProven(t theorem.Theorem) bool {
	return o.Proof(t) != nil
}

// Attempts returns the attempts at an unproven target or discovered
// theorem.
func (o *Output) Attempts(t theorem.Theorem) ([]*derive.Attempt, bool) {
	k := t.Key()
	for _, list := range [][]derive.Unresolved{o.Unproven, o.Discovered} {
		for _, u := range list {
			if u.Theorem.Key() == k {
				return u.Attempts, true
			}
		}
	}
	return nil, false
}
