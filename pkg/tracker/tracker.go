// Package tracker maintains the transitive closure of object equality and
// point incidence, emitting every newly implied fact together with the
// facts it was derived from.
package tracker

import (
	"fmt"

	"github.com/chazu/geoproof/pkg/geom"
	"github.com/chazu/geoproof/pkg/theorem"
)

// MalformedInputError reports a theorem of the wrong type or shape passed to
// a tracker operation. It is raised as a panic value.
type MalformedInputError struct {
	Op      string
	Theorem theorem.Theorem
	Reason  string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("tracker: %s(%s): %s", e.Op, e.Theorem, e.Reason)
}

func malformed(op string, t theorem.Theorem, format string, args ...any) {
	panic(&MalformedInputError{Op: op, Theorem: t, Reason: fmt.Sprintf(format, args...)})
}

// Derived is a fact implied by a marked one.
type Derived struct {
	Theorem theorem.Theorem
	// Base is the incidence a derived incidence was substituted from. It is
	// nil for derived equalities.
	Base *theorem.Theorem
	// Equalities are the equalities used, the triggering one included.
	Equalities []theorem.Theorem
}

// Premises returns the base incidence, if any, followed by the equalities.
func (d Derived) Premises() []theorem.Theorem {
	var ps []theorem.Theorem
	if d.Base != nil {
		ps = append(ps, *d.Base)
	}
	return append(ps, d.Equalities...)
}

type incidence struct {
	point, lc geom.ObjectID
}

// Tracker is not safe for concurrent use.
type Tracker struct {
	groups     map[geom.ObjectID]*[]geom.ObjectID
	kinds      map[geom.ObjectID]theorem.Kind
	incidences map[incidence]bool
	through    map[geom.ObjectID][]geom.ObjectID
	on         map[geom.ObjectID][]geom.ObjectID

	order          []geom.ObjectID
	incidenceOrder []incidence
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{
		groups:     make(map[geom.ObjectID]*[]geom.ObjectID),
		kinds:      make(map[geom.ObjectID]theorem.Kind),
		incidences: make(map[incidence]bool),
		through:    make(map[geom.ObjectID][]geom.ObjectID),
		on:         make(map[geom.ObjectID][]geom.ObjectID),
	}
}

// EqualityGroup returns every object known equal to id, id included, in
// the order they joined the group.
func (tr *Tracker) EqualityGroup(id geom.ObjectID) []geom.ObjectID {
	g, ok := tr.groups[id]
	if !ok {
		return []geom.ObjectID{id}
	}
	return append([]geom.ObjectID(nil), *g...)
}

// Equal reports whether a and b are in one equality group.
func (tr *Tracker) Equal(a, b geom.ObjectID) bool {
	if a == b {
		return true
	}
	ga, ok := tr.groups[a]
	return ok && ga == tr.groups[b]
}

// LinesAndCirclesThrough returns the lines and circles known to pass
// through point.
func (tr *Tracker) LinesAndCirclesThrough(point geom.ObjectID) []geom.ObjectID {
	return append([]geom.ObjectID(nil), tr.through[point]...)
}

// PointsOn returns the points known to lie on the line or circle lc.
func (tr *Tracker) PointsOn(lc geom.ObjectID) []geom.ObjectID {
	return append([]geom.ObjectID(nil), tr.on[lc]...)
}

// HasIncidence reports whether point is known to lie on lc.
func (tr *Tracker) HasIncidence(point, lc geom.ObjectID) bool {
	return tr.incidences[incidence{point, lc}]
}

// MarkEquality merges the groups of the two objects of eq. It returns every
// newly implied equality between the two former groups, except eq itself,
// followed by the incidences obtained by substituting across the merge.
// Marking a known equality returns nothing.
func (tr *Tracker) MarkEquality(eq theorem.Theorem) []Derived {
	a, b, ok := eq.EqualityPair()
	if !ok {
		malformed("MarkEquality", eq, "not an explicit equality")
	}
	if err := eq.Check(); err != nil {
		malformed("MarkEquality", eq, "%v", err)
	}
	kind := eq.Objects[0].Kind
	tr.setKind("MarkEquality", eq, a, kind)
	tr.setKind("MarkEquality", eq, b, kind)
	if tr.Equal(a, b) {
		return nil
	}

	ga, gb := tr.EqualityGroup(a), tr.EqualityGroup(b)
	var out []Derived
	for _, x := range ga {
		for _, y := range gb {
			if x == a && y == b {
				continue
			}
			var used []theorem.Theorem
			if x != a {
				used = append(used, theorem.Equality(kind, x, a))
			}
			used = append(used, eq)
			if y != b {
				used = append(used, theorem.Equality(kind, b, y))
			}
			out = append(out, Derived{Theorem: theorem.Equality(kind, x, y), Equalities: used})
		}
	}

	// Incidences are closed under equality, so every member of a group
	// shares the incidences of its first member.
	out = append(out, tr.substitute(kind, a, gb)...)
	out = append(out, tr.substitute(kind, b, ga)...)

	merged := append(ga, gb...)
	for _, id := range merged {
		if _, ok := tr.groups[id]; !ok {
			tr.order = append(tr.order, id)
		}
		tr.groups[id] = &merged
	}
	return out
}

// substitute copies the incidences of from onto every member of targets.
func (tr *Tracker) substitute(kind theorem.Kind, from geom.ObjectID, targets []geom.ObjectID) []Derived {
	var out []Derived
	if kind == theorem.PointKind {
		for _, lc := range tr.LinesAndCirclesThrough(from) {
			base := theorem.IncidenceOf(from, tr.kinds[lc], lc)
			for _, y := range targets {
				if tr.record(y, lc) {
					out = append(out, Derived{
						Theorem:    theorem.IncidenceOf(y, tr.kinds[lc], lc),
						Base:       &base,
						Equalities: []theorem.Theorem{theorem.Equality(kind, from, y)},
					})
				}
			}
		}
		return out
	}
	for _, p := range tr.PointsOn(from) {
		base := theorem.IncidenceOf(p, kind, from)
		for _, y := range targets {
			if tr.record(p, y) {
				out = append(out, Derived{
					Theorem:    theorem.IncidenceOf(p, kind, y),
					Base:       &base,
					Equalities: []theorem.Theorem{theorem.Equality(kind, from, y)},
				})
			}
		}
	}
	return out
}

// MarkIncidence records that a point lies on a line or circle and expands
// it over both equality groups. Each derived incidence cites at most two
// equalities. Marking a known incidence returns nothing.
func (tr *Tracker) MarkIncidence(inc theorem.Theorem) []Derived {
	p, lc, ok := inc.IncidencePair()
	if !ok {
		malformed("MarkIncidence", inc, "not an explicit incidence")
	}
	if err := inc.Check(); err != nil {
		malformed("MarkIncidence", inc, "%v", err)
	}
	kind := inc.Objects[1].Kind
	tr.setKind("MarkIncidence", inc, p, theorem.PointKind)
	tr.setKind("MarkIncidence", inc, lc, kind)
	if !tr.record(p, lc) {
		return nil
	}

	var out []Derived
	for _, x := range tr.EqualityGroup(p) {
		for _, y := range tr.EqualityGroup(lc) {
			if !tr.record(x, y) {
				continue
			}
			var used []theorem.Theorem
			if x != p {
				used = append(used, theorem.Equality(theorem.PointKind, p, x))
			}
			if y != lc {
				used = append(used, theorem.Equality(kind, lc, y))
			}
			base := inc
			out = append(out, Derived{Theorem: theorem.IncidenceOf(x, kind, y), Base: &base, Equalities: used})
		}
	}
	return out
}

// record adds an incidence and reports whether it was new.
func (tr *Tracker) record(point, lc geom.ObjectID) bool {
	key := incidence{point, lc}
	if tr.incidences[key] {
		return false
	}
	tr.incidences[key] = true
	tr.incidenceOrder = append(tr.incidenceOrder, key)
	tr.through[point] = append(tr.through[point], lc)
	tr.on[lc] = append(tr.on[lc], point)
	return true
}

func (tr *Tracker) setKind(op string, t theorem.Theorem, id geom.ObjectID, kind theorem.Kind) {
	if prev, ok := tr.kinds[id]; ok && prev != kind {
		malformed(op, t, "object %s is a %s, not a %s", id, prev, kind)
	}
	tr.kinds[id] = kind
}

// Groups returns every equality group with more than one member, in the
// order the groups were formed.
func (tr *Tracker) Groups() [][]geom.ObjectID {
	var out [][]geom.ObjectID
	seen := make(map[*[]geom.ObjectID]bool)
	for _, id := range tr.order {
		g := tr.groups[id]
		if g == nil || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, append([]geom.ObjectID(nil), *g...))
	}
	return out
}

// Incidences returns every recorded incidence in insertion order.
func (tr *Tracker) Incidences() []theorem.Theorem {
	out := make([]theorem.Theorem, 0, len(tr.incidenceOrder))
	for _, inc := range tr.incidenceOrder {
		out = append(out, theorem.IncidenceOf(inc.point, tr.kinds[inc.lc], inc.lc))
	}
	return out
}

// Kind returns the kind recorded for id.
func (tr *Tracker) Kind(id geom.ObjectID) (theorem.Kind, bool) {
	k, ok := tr.kinds[id]
	return k, ok
}
