// Package derive stores derivation records, decides which theorems they
// prove, and builds justification trees.
package derive

import (
	"fmt"

	"github.com/chazu/geoproof/pkg/theorem"
)

// Rule names the inference pattern behind a record. The set of rules is
// closed: every variant is declared in this file.
type Rule interface {
	// Explanation is a short human-readable description of the rule.
	Explanation() string
	rule()
}

// TrivialTheorem marks facts that hold in every configuration.
type TrivialTheorem struct{}

// TrueInSmallerConfiguration marks facts already proved for a
// subconfiguration.
type TrueInSmallerConfiguration struct{}

// Subtheorem marks a match against a theorem of a template configuration.
type Subtheorem struct {
	Template string          `json:"template" yaml:"template"`
	Theorem  theorem.Theorem `json:"theorem" yaml:"theorem"`
}

// Strategy marks the output of a named rule strategy.
type Strategy struct {
	Name string `json:"name" yaml:"name"`
}

// Transitivity marks a chain of equalities or parallels.
type Transitivity struct{}

// Reformulation marks a theorem rewritten over new normal versions.
type Reformulation struct{}

// Congruence marks an equality of constructed objects whose arguments
// became equal.
type Congruence struct{}

// IncidenceSubstitution marks an incidence moved along an equality.
type IncidenceSubstitution struct{}

// EqualityClosure marks an equality implied by two merged groups.
type EqualityClosure struct{}

func (TrivialTheorem) Explanation() string { return "trivial theorem" }

func (TrueInSmallerConfiguration) Explanation() string {
	return "true in a smaller configuration"
}

func (r Subtheorem) Explanation() string {
	if r.Template == "" {
		return fmt.Sprintf("subtheorem of %s", r.Theorem)
	}
	return fmt.Sprintf("subtheorem of %s in %s", r.Theorem, r.Template)
}

func (r Strategy) Explanation() string { return "strategy " + r.Name }

func (Transitivity) Explanation() string { return "transitivity" }

func (Reformulation) Explanation() string { return "reformulation over equal objects" }

func (Congruence) Explanation() string { return "congruence of constructions" }

func (IncidenceSubstitution) Explanation() string { return "substitution of equal objects in an incidence" }

func (EqualityClosure) Explanation() string { return "transitive closure of equalities" }

func (TrivialTheorem) rule()             {}
func (TrueInSmallerConfiguration) rule() {}
func (Subtheorem) rule()                 {}
func (Strategy) rule()                   {}
func (Transitivity) rule()               {}
func (Reformulation) rule()              {}
func (Congruence) rule()                 {}
func (IncidenceSubstitution) rule()      {}
func (EqualityClosure) rule()            {}

// IsTransitivity reports whether r is the Transitivity rule.
func IsTransitivity(r Rule) bool {
	_, ok := r.(Transitivity)
	return ok
}
