package derive

import "github.com/chazu/geoproof/pkg/theorem"

// Proof is a well-founded justification tree.
type Proof struct {
	Theorem  theorem.Theorem
	Rule     Rule
	Premises []*Proof
}

// Leaves returns the axioms the proof bottoms out at, depth first.
func (p *Proof) Leaves() []*Proof {
	if len(p.Premises) == 0 {
		return []*Proof{p}
	}
	var out []*Proof
	for _, q := range p.Premises {
		out = append(out, q.Leaves()...)
	}
	return out
}

// Depth is the length of the longest path to an axiom.
func (p *Proof) Depth() int {
	d := 0
	for _, q := range p.Premises {
		d = max(d, q.Depth()+1)
	}
	return d
}

// Attempt materializes one record: the premises already proven and, for
// each unproven premise, the attempts at it.
type Attempt struct {
	Theorem  theorem.Theorem
	Rule     Rule
	Proven   []*Proof
	Unproven []Unresolved
}

// Successful reports whether no premise is left unproven.
func (a *Attempt) Successful() bool {
	return len(a.Unproven) == 0
}

// Unresolved is an unproven premise with the attempts made at it.
type Unresolved struct {
	Theorem  theorem.Theorem
	Attempts []*Attempt
}

// GetProof returns the proof of t, or nil when t is not proven. Each
// theorem is justified by the first record that proved it, so the tree is
// finite and acyclic.
func (kb *KnowledgeBase) GetProof(t theorem.Theorem) *Proof {
	return kb.proofOf(t.Key(), make(map[string]*Proof))
}

func (kb *KnowledgeBase) proofOf(key string, memo map[string]*Proof) *Proof {
	if p, ok := memo[key]; ok {
		return p
	}
	r := kb.proof[key]
	if r == nil {
		return nil
	}
	p := &Proof{Theorem: kb.theorems[key], Rule: r.Rule}
	for _, prem := range r.Premises {
		p.Premises = append(p.Premises, kb.proofOf(prem.Key(), memo))
	}
	memo[key] = p
	return p
}

// GetDerivationAttempts returns one attempt per record deriving t,
// satisfied or not. A premise already being expanded higher up yields an
// unresolved entry with no attempts.
func (kb *KnowledgeBase) GetDerivationAttempts(t theorem.Theorem) []*Attempt {
	e := &expander{
		kb:     kb,
		proofs: make(map[string]*Proof),
		memo:   make(map[string][]*Attempt),
		active: make(map[string]bool),
	}
	attempts, _ := e.attempts(t.Key())
	return attempts
}

type expander struct {
	kb     *KnowledgeBase
	proofs map[string]*Proof
	memo   map[string][]*Attempt
	active map[string]bool
}

// attempts expands key. cut reports whether the result was truncated at a
// theorem being expanded by a caller; such results depend on the path and
// are not memoized.
func (e *expander) attempts(key string) (out []*Attempt, cut bool) {
	if as, ok := e.memo[key]; ok {
		return as, false
	}
	e.active[key] = true
	defer delete(e.active, key)

	for _, r := range e.kb.byTheorem[key] {
		a := &Attempt{Theorem: r.Theorem, Rule: r.Rule}
		for _, prem := range r.Premises {
			pk := prem.Key()
			if p := e.kb.proofOf(pk, e.proofs); p != nil {
				a.Proven = append(a.Proven, p)
				continue
			}
			u := Unresolved{Theorem: prem}
			if e.active[pk] {
				cut = true
			} else {
				var c bool
				u.Attempts, c = e.attempts(pk)
				cut = cut || c
			}
			a.Unproven = append(a.Unproven, u)
		}
		out = append(out, a)
	}
	if !cut {
		e.memo[key] = out
	}
	return out, cut
}
