// Package verify answers verification queries from a table of facts that
// were already checked against the configuration's numeric realizations.
package verify

import "github.com/chazu/geoproof/pkg/theorem"

// Table is a fact-table verifier. The zero value holds no facts.
type Table struct {
	facts map[string]bool
}

// NewTable returns a table holding facts.
func NewTable(facts ...theorem.Theorem) *Table {
	t := &Table{}
	for _, f := range facts {
		t.Add(f)
	}
	return t
}

// Add records f as verified.
func (t *Table) Add(f theorem.Theorem) {
	if t.facts == nil {
		t.facts = make(map[string]bool)
	}
	t.facts[f.Key()] = true
}

// IsTrue reports whether th was recorded. An object always equals itself.
func (t *Table) IsTrue(th theorem.Theorem) bool {
	if a, b, ok := th.EqualityPair(); ok && a == b {
		return true
	}
	return t.facts[th.Key()]
}

// Len returns the number of distinct facts.
func (t *Table) Len() int { return len(t.facts) }
