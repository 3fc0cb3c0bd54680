package derive

import (
	"strings"

	"github.com/chazu/geoproof/pkg/theorem"
)

// Record is a derivation hyperedge: Theorem follows from Premises by Rule.
// A record without premises makes its theorem an axiom.
type Record struct {
	Theorem  theorem.Theorem
	Rule     Rule
	Premises []theorem.Theorem
}

type record struct {
	Record
	index   int
	key     string
	pending int
}

// KnowledgeBase holds derivation records and maintains the set of proven
// theorems incrementally: every record counts its unproven premises, and a
// theorem is proven by the first record whose count drops to zero. Cyclic
// records therefore never prove a theorem through themselves.
//
// A KnowledgeBase is not safe for concurrent use.
type KnowledgeBase struct {
	records    []*record
	signatures map[string]bool
	byTheorem  map[string][]*record
	dependants map[string][]*record
	theorems   map[string]theorem.Theorem
	order      []string
	proof      map[string]*record
	wanted     []string
	isWanted   map[string]bool
}

// NewKnowledgeBase returns an empty knowledge base.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		signatures: make(map[string]bool),
		byTheorem:  make(map[string][]*record),
		dependants: make(map[string][]*record),
		theorems:   make(map[string]theorem.Theorem),
		proof:      make(map[string]*record),
		isWanted:   make(map[string]bool),
	}
}

func (kb *KnowledgeBase) intern(t theorem.Theorem) string {
	k := t.Key()
	if _, ok := kb.theorems[k]; !ok {
		kb.theorems[k] = t
		kb.order = append(kb.order, k)
	}
	return k
}

// AddAxiom records t as true without premises.
func (kb *KnowledgeBase) AddAxiom(t theorem.Theorem, rule Rule) bool {
	return kb.AddDerivation(t, rule)
}

// AddDerivation records that t follows from premises by rule. It returns
// false for a duplicate record. Premises not yet proven are queued as
// wanted.
func (kb *KnowledgeBase) AddDerivation(t theorem.Theorem, rule Rule, premises ...theorem.Theorem) bool {
	key := kb.intern(t)
	pkeys := make([]string, len(premises))
	for i, p := range premises {
		pkeys[i] = kb.intern(p)
	}
	sig := key + "<-" + rule.Explanation() + ":" + strings.Join(pkeys, ";")
	if kb.signatures[sig] {
		return false
	}
	kb.signatures[sig] = true

	r := &record{
		Record: Record{Theorem: t, Rule: rule, Premises: append([]theorem.Theorem(nil), premises...)},
		index:  len(kb.records),
		key:    key,
	}
	kb.records = append(kb.records, r)
	kb.byTheorem[key] = append(kb.byTheorem[key], r)

	counted := make(map[string]bool, len(pkeys))
	for _, pk := range pkeys {
		if counted[pk] || kb.proof[pk] != nil {
			continue
		}
		counted[pk] = true
		r.pending++
		kb.dependants[pk] = append(kb.dependants[pk], r)
		if !kb.isWanted[pk] {
			kb.isWanted[pk] = true
			kb.wanted = append(kb.wanted, pk)
		}
	}
	if r.pending == 0 {
		kb.fire(r)
	}
	return true
}

// fire marks the record's theorem proven, if it was not, and propagates
// to the records waiting on it.
func (kb *KnowledgeBase) fire(r *record) {
	queue := []*record{r}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		if kb.proof[r.key] != nil {
			continue
		}
		kb.proof[r.key] = r
		for _, d := range kb.dependants[r.key] {
			d.pending--
			if d.pending == 0 {
				queue = append(queue, d)
			}
		}
		delete(kb.dependants, r.key)
	}
}

// IsProven reports whether some record proves t.
func (kb *KnowledgeBase) IsProven(t theorem.Theorem) bool {
	return kb.proof[t.Key()] != nil
}

// Has reports whether t appears in any record.
func (kb *KnowledgeBase) Has(t theorem.Theorem) bool {
	_, ok := kb.theorems[t.Key()]
	return ok
}

// Wanted returns the premises that are still unproven, in the order they
// were first needed.
func (kb *KnowledgeBase) Wanted() []theorem.Theorem {
	var out []theorem.Theorem
	for _, k := range kb.wanted {
		if kb.proof[k] == nil {
			out = append(out, kb.theorems[k])
		}
	}
	return out
}

// Theorems returns every theorem mentioned by a record, in first-seen order.
func (kb *KnowledgeBase) Theorems() []theorem.Theorem {
	out := make([]theorem.Theorem, len(kb.order))
	for i, k := range kb.order {
		out[i] = kb.theorems[k]
	}
	return out
}

// Records returns the records deriving t in insertion order.
func (kb *KnowledgeBase) Records(t theorem.Theorem) []Record {
	rs := kb.byTheorem[t.Key()]
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = r.Record
	}
	return out
}

// Len returns the number of records.
func (kb *KnowledgeBase) Len() int { return len(kb.records) }
