// Package rules ships reference rule strategies for the prover.
package rules

import (
	"github.com/chazu/geoproof/pkg/geom"
	"github.com/chazu/geoproof/pkg/prover"
	"github.com/chazu/geoproof/pkg/theorem"
)

// Default returns every strategy in this package.
func Default() []prover.Strategy {
	return []prover.Strategy{
		PerpendicularToParallel{},
		CollinearFromIncidence{},
		ConcyclicFromIncidence{},
	}
}

// Lookup returns the strategy with the given name, or nil.
func Lookup(name string) prover.Strategy {
	for _, s := range Default() {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// PerpendicularToParallel derives l ∥ n from l ⟂ m and m ⟂ n.
type PerpendicularToParallel struct{}

func (PerpendicularToParallel) Name() string { return "perpendicular-to-parallel" }

func (PerpendicularToParallel) Derive(known []theorem.Theorem) []prover.Implication {
	var perps []theorem.Theorem
	for _, t := range known {
		if t.Type == theorem.PerpendicularLines && !t.IsDegenerate() {
			perps = append(perps, t)
		}
	}
	var out []prover.Implication
	for i, a := range perps {
		for _, b := range perps[i+1:] {
			for _, pa := range [2]int{0, 1} {
				for _, pb := range [2]int{0, 1} {
					if a.Objects[pa].Key() != b.Objects[pb].Key() {
						continue
					}
					l, n := a.Objects[1-pa], b.Objects[1-pb]
					if l.Key() == n.Key() {
						continue
					}
					out = append(out, prover.Implication{
						Premises: []theorem.Theorem{a, b},
						Implied:  theorem.New(theorem.ParallelLines, l, n),
					})
				}
			}
		}
	}
	return out
}

// CollinearFromIncidence derives collinearity of any three points known
// to lie on one line.
type CollinearFromIncidence struct{}

func (CollinearFromIncidence) Name() string { return "collinear-from-incidence" }

func (CollinearFromIncidence) Derive(known []theorem.Theorem) []prover.Implication {
	var out []prover.Implication
	for _, on := range incidencesBy(theorem.LineKind, known) {
		choose(len(on.points), 3, func(idx []int) {
			var pts []geom.ObjectID
			var premises []theorem.Theorem
			for _, i := range idx {
				pts = append(pts, on.points[i])
				premises = append(premises, on.premises[i])
			}
			out = append(out, prover.Implication{Premises: premises, Implied: theorem.Collinear(pts...)})
		})
	}
	return out
}

// ConcyclicFromIncidence derives concyclicity of any four points known to
// lie on one circle.
type ConcyclicFromIncidence struct{}

func (ConcyclicFromIncidence) Name() string { return "concyclic-from-incidence" }

func (ConcyclicFromIncidence) Derive(known []theorem.Theorem) []prover.Implication {
	var out []prover.Implication
	for _, on := range incidencesBy(theorem.CircleKind, known) {
		choose(len(on.points), 4, func(idx []int) {
			var pts []geom.ObjectID
			var premises []theorem.Theorem
			for _, i := range idx {
				pts = append(pts, on.points[i])
				premises = append(premises, on.premises[i])
			}
			out = append(out, prover.Implication{Premises: premises, Implied: theorem.Concyclic(pts...)})
		})
	}
	return out
}

type pointsOn struct {
	points   []geom.ObjectID
	premises []theorem.Theorem
}

// incidencesBy groups explicit incidences on objects of kind by that
// object, in order of first appearance.
func incidencesBy(kind theorem.Kind, known []theorem.Theorem) []*pointsOn {
	index := make(map[geom.ObjectID]*pointsOn)
	seen := make(map[string]bool)
	var out []*pointsOn
	for _, t := range known {
		p, lc, ok := t.IncidencePair()
		if !ok || t.Objects[1].Kind != kind || seen[t.Key()] {
			continue
		}
		seen[t.Key()] = true
		on, ok := index[lc]
		if !ok {
			on = &pointsOn{}
			index[lc] = on
			out = append(out, on)
		}
		on.points = append(on.points, p)
		on.premises = append(on.premises, t)
	}
	return out
}

// choose calls f with every k-subset of 0..n-1 in lexicographic order.
func choose(n, k int, f func([]int)) {
	idx := make([]int, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			f(append([]int(nil), idx...))
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			idx[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
}
