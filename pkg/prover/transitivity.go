package prover

import (
	"go.uber.org/zap"

	"github.com/chazu/geoproof/pkg/derive"
	"github.com/chazu/geoproof/pkg/theorem"
	"github.com/chazu/geoproof/pkg/tracker"
)

// registerTransitivity makes every pairwise statement of a transitive
// relation derivable from the two others of each triple, and moves every
// incidence along the equalities known for its point and its line or
// circle. Statements already in the knowledge base count as discovered.
func (r *run) registerTransitivity() {
	before := r.kb.Len()
	statements := theorem.NewSet(r.pool.Items()...)
	for _, t := range r.kb.Theorems() {
		statements.Add(t)
	}

	discovered := tracker.New()
	for _, t := range statements.Items() {
		switch t.Type {
		case theorem.EqualObjects:
			if a, b, _ := t.EqualityPair(); a != b {
				discovered.MarkEquality(t)
			}
		case theorem.Incidence:
			if _, _, ok := t.IncidencePair(); ok {
				discovered.MarkIncidence(t)
			}
		}
	}

	for _, group := range discovered.Groups() {
		kind, _ := discovered.Kind(group[0])
		objs := make([]theorem.Object, len(group))
		for i, id := range group {
			objs[i] = theorem.ExplicitObject(kind, id)
		}
		r.registerTriples(theorem.EqualObjects, objs)
	}
	for _, inc := range discovered.Incidences() {
		p, lc, _ := inc.IncidencePair()
		kind := inc.Objects[1].Kind
		for _, q := range discovered.EqualityGroup(p) {
			if q != p {
				r.kb.AddDerivation(theorem.IncidenceOf(q, kind, lc), derive.IncidenceSubstitution{},
					inc, theorem.Equality(theorem.PointKind, p, q))
			}
		}
		for _, m := range discovered.EqualityGroup(lc) {
			if m != lc {
				r.kb.AddDerivation(theorem.IncidenceOf(p, kind, m), derive.IncidenceSubstitution{},
					inc, theorem.Equality(kind, lc, m))
			}
		}
	}

	for _, typ := range []theorem.Type{theorem.ParallelLines, theorem.EqualLineSegments} {
		for _, component := range components(typ, statements.Items()) {
			r.registerTriples(typ, component)
		}
	}
	r.logger.Debug("transitivity registered", zap.Int("records", r.kb.Len()-before))
}

// registerTriples records, for every triple x, y, z of objects related by
// typ, each pairwise statement as following from the other two.
func (r *run) registerTriples(typ theorem.Type, objs []theorem.Object) {
	rel := func(a, b theorem.Object) theorem.Theorem { return theorem.New(typ, a, b) }
	for i := range objs {
		for j := i + 1; j < len(objs); j++ {
			for k := j + 1; k < len(objs); k++ {
				x, y, z := objs[i], objs[j], objs[k]
				r.kb.AddDerivation(rel(x, z), derive.Transitivity{}, rel(x, y), rel(y, z))
				r.kb.AddDerivation(rel(x, y), derive.Transitivity{}, rel(x, z), rel(z, y))
				r.kb.AddDerivation(rel(y, z), derive.Transitivity{}, rel(y, x), rel(x, z))
			}
		}
	}
}

// components groups the objects of the binary statements of typ into
// connected components, in order of first appearance.
func components(typ theorem.Type, statements []theorem.Theorem) [][]theorem.Object {
	index := make(map[string]int)
	var objs []theorem.Object
	var parent []int
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	id := func(o theorem.Object) int {
		k := o.Key()
		if i, ok := index[k]; ok {
			return i
		}
		index[k] = len(objs)
		objs = append(objs, o)
		parent = append(parent, len(parent))
		return index[k]
	}
	for _, t := range statements {
		if t.Type != typ || len(t.Objects) != 2 || t.IsDegenerate() {
			continue
		}
		a, b := find(id(t.Objects[0])), find(id(t.Objects[1]))
		if a != b {
			parent[b] = a
		}
	}

	slot := make(map[int]int)
	var out [][]theorem.Object
	for i, o := range objs {
		root := find(i)
		s, ok := slot[root]
		if !ok {
			s = len(out)
			slot[root] = s
			out = append(out, nil)
		}
		out[s] = append(out[s], o)
	}
	var kept [][]theorem.Object
	for _, c := range out {
		if len(c) >= 3 {
			kept = append(kept, c)
		}
	}
	return kept
}
