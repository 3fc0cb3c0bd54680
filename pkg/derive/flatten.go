package derive

// FlattenTransitivity collapses every chain of nested Transitivity steps
// into a single Transitivity node whose premises are the non-transitive
// leaves of the chain. Leaves are deduplicated by canonical key, and the
// conclusion itself is never its own premise.
func FlattenTransitivity(p *Proof) *Proof {
	if p == nil {
		return nil
	}
	premises := make([]*Proof, len(p.Premises))
	for i, q := range p.Premises {
		premises[i] = FlattenTransitivity(q)
	}
	if !IsTransitivity(p.Rule) {
		return &Proof{Theorem: p.Theorem, Rule: p.Rule, Premises: premises}
	}
	seen := map[string]bool{p.Theorem.Key(): true}
	var leaves []*Proof
	add := func(q *Proof) {
		if k := q.Theorem.Key(); !seen[k] {
			seen[k] = true
			leaves = append(leaves, q)
		}
	}
	for _, q := range premises {
		if IsTransitivity(q.Rule) {
			for _, leaf := range q.Premises {
				add(leaf)
			}
			continue
		}
		add(q)
	}
	return &Proof{Theorem: p.Theorem, Rule: p.Rule, Premises: leaves}
}

// FlattenAttempt flattens an attempt the way FlattenTransitivity flattens
// a proof. An unproven premise whose every attempt is a Transitivity step
// is replaced by the premises of its first such attempt.
func FlattenAttempt(a *Attempt) *Attempt {
	if a == nil {
		return nil
	}
	out := &Attempt{Theorem: a.Theorem, Rule: a.Rule}
	if !IsTransitivity(a.Rule) {
		for _, p := range a.Proven {
			out.Proven = append(out.Proven, FlattenTransitivity(p))
		}
		for _, u := range a.Unproven {
			out.Unproven = append(out.Unproven, flattenUnresolved(u))
		}
		return out
	}

	seen := map[string]bool{a.Theorem.Key(): true}
	addProven := func(p *Proof) {
		if k := p.Theorem.Key(); !seen[k] {
			seen[k] = true
			out.Proven = append(out.Proven, p)
		}
	}
	addUnproven := func(u Unresolved) {
		if k := u.Theorem.Key(); !seen[k] {
			seen[k] = true
			out.Unproven = append(out.Unproven, u)
		}
	}
	for _, p := range a.Proven {
		p = FlattenTransitivity(p)
		if IsTransitivity(p.Rule) {
			for _, leaf := range p.Premises {
				addProven(leaf)
			}
			continue
		}
		addProven(p)
	}
	for _, u := range a.Unproven {
		if inner := onlyTransitivity(u.Attempts); inner != nil {
			inner = FlattenAttempt(inner)
			for _, p := range inner.Proven {
				addProven(p)
			}
			for _, v := range inner.Unproven {
				addUnproven(v)
			}
			continue
		}
		addUnproven(flattenUnresolved(u))
	}
	return out
}

func flattenUnresolved(u Unresolved) Unresolved {
	out := Unresolved{Theorem: u.Theorem}
	for _, a := range u.Attempts {
		out.Attempts = append(out.Attempts, FlattenAttempt(a))
	}
	return out
}

// onlyTransitivity returns the first attempt when every attempt is a
// Transitivity step.
func onlyTransitivity(attempts []*Attempt) *Attempt {
	if len(attempts) == 0 {
		return nil
	}
	for _, a := range attempts {
		if !IsTransitivity(a.Rule) {
			return nil
		}
	}
	return attempts[0]
}
