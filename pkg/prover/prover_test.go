package prover

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/geoproof/pkg/derive"
	"github.com/chazu/geoproof/pkg/geom"
	"github.com/chazu/geoproof/pkg/normalize"
	"github.com/chazu/geoproof/pkg/theorem"
)

func newConfig(t *testing.T, points ...string) (*geom.Configuration, []geom.ObjectID) {
	t.Helper()
	cfg := geom.NewConfiguration()
	ids := make([]geom.ObjectID, len(points))
	for i, name := range points {
		o, err := cfg.AddSource(geom.Point, name)
		require.NoError(t, err)
		ids[i] = o.ID
	}
	return cfg, ids
}

func addLine(t *testing.T, cfg *geom.Configuration, name string) geom.ObjectID {
	t.Helper()
	o, err := cfg.AddSource(geom.Line, name)
	require.NoError(t, err)
	return o.ID
}

func premiseKeys(p *derive.Proof) []string {
	out := make([]string, len(p.Premises))
	for i, q := range p.Premises {
		out[i] = q.Theorem.Key()
	}
	return out
}

func TestTransitivityOfEqualSegments(t *testing.T) {
	cfg, ids := newConfig(t, "P", "Q", "R")
	p, q, r := ids[0], ids[1], ids[2]
	pq, qr, rp := theorem.Segment(p, q), theorem.Segment(q, r), theorem.Segment(r, p)
	s1 := theorem.New(theorem.EqualLineSegments, pq, qr)
	s2 := theorem.New(theorem.EqualLineSegments, qr, rp)
	target := theorem.New(theorem.EqualLineSegments, pq, rp)

	out, err := New(Config{FlattenTransitivity: true, AuditProofs: true}).Prove(Input{
		Configuration: cfg,
		Trivial:       []theorem.Theorem{s1, s2},
		Targets:       []theorem.Theorem{target},
	})
	require.NoError(t, err)
	proof := out.Proof(target)
	require.NotNil(t, proof)
	assert.Equal(t, derive.Transitivity{}, proof.Rule)
	assert.ElementsMatch(t, []string{s1.Key(), s2.Key()}, premiseKeys(proof))
	assert.Empty(t, out.Unproven)
}

func TestIncidenceSubstitutionEitherOrder(t *testing.T) {
	for _, equalityFirst := range []bool{false, true} {
		cfg, ids := newConfig(t, "P", "Q")
		l := addLine(t, cfg, "l")
		p, q := ids[0], ids[1]
		inc := theorem.IncidenceOf(p, theorem.LineKind, l)
		eq := theorem.Equality(theorem.PointKind, p, q)
		trivial := []theorem.Theorem{inc, eq}
		if equalityFirst {
			trivial = []theorem.Theorem{eq, inc}
		}
		target := theorem.IncidenceOf(q, theorem.LineKind, l)

		out, err := New(Config{}).Prove(Input{Configuration: cfg, Trivial: trivial, Targets: []theorem.Theorem{target}})
		require.NoError(t, err)
		proof := out.Proof(target)
		require.NotNil(t, proof, "equality first: %t", equalityFirst)
		assert.Equal(t, derive.IncidenceSubstitution{}, proof.Rule)

		equalities := 0
		for _, prem := range proof.Premises {
			if prem.Theorem.Type == theorem.EqualObjects {
				equalities++
			}
		}
		assert.Equal(t, 1, equalities)
	}
}

func TestImplicitLineIncidence(t *testing.T) {
	cfg, ids := newConfig(t, "A", "B", "P")
	a, b, p := ids[0], ids[1], ids[2]
	inc := theorem.New(theorem.Incidence, theorem.PointObject(p), theorem.LineThrough(a, b))
	require.NoError(t, inc.Check())

	tests := []struct {
		name   string
		in     Input
		proven bool
	}{
		{"fact", Input{Facts: []theorem.Theorem{inc}}, false},
		{"trivial", Input{Trivial: []theorem.Theorem{inc}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			in.Configuration = cfg
			in.Targets = []theorem.Theorem{inc}
			out, err := New(Config{AuditProofs: true}).Prove(in)
			require.NoError(t, err)
			assert.Equal(t, tt.proven, out.IsProven(inc))
			if tt.proven {
				assert.Equal(t, derive.TrivialTheorem{}, out.Proof(inc).Rule)
			}
		})
	}
}

func TestRejectedFactIsNotTracked(t *testing.T) {
	cfg, ids := newConfig(t, "P", "Q")
	l := addLine(t, cfg, "l")
	p, q := ids[0], ids[1]
	rejected := theorem.IncidenceOf(p, theorem.LineKind, l)
	eq := theorem.Equality(theorem.PointKind, p, q)
	target := theorem.IncidenceOf(q, theorem.LineKind, l)

	out, err := New(Config{}).Prove(Input{
		Configuration: cfg,
		Trivial:       []theorem.Theorem{eq},
		Facts:         []theorem.Theorem{rejected},
		Targets:       []theorem.Theorem{target},
		Verifier: normalize.VerifierFunc(func(th theorem.Theorem) bool {
			return th.Key() != rejected.Key()
		}),
	})
	require.NoError(t, err)
	assert.False(t, out.IsProven(target))
	attempts, ok := out.Attempts(target)
	require.True(t, ok)
	assert.Empty(t, attempts)
}

func TestCongruenceOfConstructions(t *testing.T) {
	cfg, ids := newConfig(t, "A", "B", "C")
	a, b, c := ids[0], ids[1], ids[2]
	m, err := cfg.AddConstructed("M", geom.Midpoint, geom.GroupOf(a, b))
	require.NoError(t, err)
	n, err := cfg.AddConstructed("N", geom.Midpoint, geom.GroupOf(a, c))
	require.NoError(t, err)

	bc := theorem.Equality(theorem.PointKind, b, c)
	target := theorem.Equality(theorem.PointKind, m.ID, n.ID)
	out, err := New(Config{AuditProofs: true}).Prove(Input{
		Configuration: cfg,
		Trivial:       []theorem.Theorem{bc},
		Targets:       []theorem.Theorem{target},
	})
	require.NoError(t, err)
	proof := out.Proof(target)
	require.NotNil(t, proof)
	assert.Equal(t, derive.Congruence{}, proof.Rule)
	assert.Equal(t, []string{bc.Key()}, premiseKeys(proof))
}

func TestStrategiesFeedTheKnowledgeBase(t *testing.T) {
	cfg, _ := newConfig(t)
	l, m, n := addLine(t, cfg, "l"), addLine(t, cfg, "m"), addLine(t, cfg, "n")
	line := func(id geom.ObjectID) theorem.Object { return theorem.ExplicitObject(theorem.LineKind, id) }
	perp1 := theorem.New(theorem.PerpendicularLines, line(l), line(m))
	perp2 := theorem.New(theorem.PerpendicularLines, line(m), line(n))
	target := theorem.New(theorem.ParallelLines, line(l), line(n))

	out, err := New(Config{Strategies: []Strategy{perpendicularStrategy{}}}).Prove(Input{
		Configuration: cfg,
		Trivial:       []theorem.Theorem{perp1, perp2},
		Targets:       []theorem.Theorem{target},
	})
	require.NoError(t, err)
	proof := out.Proof(target)
	require.NotNil(t, proof)
	assert.Equal(t, derive.Strategy{Name: "perp"}, proof.Rule)
}

// perpendicularStrategy pairs the first two perpendicularities it sees.
type perpendicularStrategy struct{}

func (perpendicularStrategy) Name() string { return "perp" }

func (perpendicularStrategy) Derive(known []theorem.Theorem) []Implication {
	var perps []theorem.Theorem
	for _, t := range known {
		if t.Type == theorem.PerpendicularLines {
			perps = append(perps, t)
		}
	}
	if len(perps) < 2 {
		return nil
	}
	return []Implication{{
		Premises: perps[:2],
		Implied:  theorem.New(theorem.ParallelLines, perps[0].Objects[0], perps[1].Objects[1]),
	}}
}

type fixedStrategy struct {
	imps []Implication
}

func (fixedStrategy) Name() string                          { return "fixed" }
func (s fixedStrategy) Derive([]theorem.Theorem) []Implication { return s.imps }

func TestUnprovenAndDiscovered(t *testing.T) {
	cfg, ids := newConfig(t, "A", "B", "C", "D")
	target := theorem.Collinear(ids[0], ids[1], ids[2])
	missing := theorem.Collinear(ids[1], ids[2], ids[3])
	out, err := New(Config{Strategies: []Strategy{fixedStrategy{imps: []Implication{
		{Premises: []theorem.Theorem{missing}, Implied: target},
	}}}}).Prove(Input{Configuration: cfg, Targets: []theorem.Theorem{target}})
	require.NoError(t, err)

	assert.Empty(t, out.Proven)
	require.Len(t, out.Unproven, 1)
	attempts, ok := out.Attempts(target)
	require.True(t, ok)
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].Successful())

	require.Len(t, out.Discovered, 1)
	assert.Equal(t, missing.Key(), out.Discovered[0].Theorem.Key())
	assert.Empty(t, out.Discovered[0].Attempts)
}

type fakeMatcher struct {
	calls   map[string]int
	matches func(examined []theorem.Theorem, tpl Template) []Match
}

func (m *fakeMatcher) Match(examined []theorem.Theorem, tpl Template) []Match {
	m.calls[tpl.Name]++
	return m.matches(examined, tpl)
}

func TestSecondSubtheoremPassRetriesOpenTemplates(t *testing.T) {
	cfg, ids := newConfig(t, "A", "B", "C", "D")
	target := theorem.Collinear(ids[0], ids[1], ids[2])
	cyclic := theorem.Concyclic(ids...)

	matcher := &fakeMatcher{calls: make(map[string]int)}
	matcher.matches = func(examined []theorem.Theorem, tpl Template) []Match {
		switch tpl.Name {
		case "circle":
			for _, e := range examined {
				if e.Key() == cyclic.Key() {
					return []Match{{Template: tpl.Theorems[0], Examined: cyclic}}
				}
			}
		case "line":
			return []Match{{Template: tpl.Theorems[0], Examined: target, Others: []theorem.Theorem{cyclic}}}
		}
		return nil
	}
	templates := []Template{
		{Name: "circle", Theorems: []theorem.Theorem{theorem.Concyclic(1, 2, 3, 4)}},
		{Name: "line", Theorems: []theorem.Theorem{theorem.Collinear(1, 2, 3)}},
		{Name: "parallel", Theorems: []theorem.Theorem{theorem.New(theorem.ParallelLines, theorem.LineThrough(1, 2), theorem.LineThrough(3, 4))}},
	}

	out, err := New(Config{Matcher: matcher, Templates: templates}).Prove(Input{
		Configuration: cfg,
		Targets:       []theorem.Theorem{target},
	})
	require.NoError(t, err)
	assert.True(t, out.IsProven(target))
	assert.Equal(t, map[string]int{"circle": 2, "line": 2, "parallel": 1}, matcher.calls)

	proof := out.Proof(target)
	sub, ok := proof.Rule.(derive.Subtheorem)
	require.True(t, ok)
	assert.Equal(t, "line", sub.Template)
}

func TestSinglePassMissesLateTemplates(t *testing.T) {
	cfg, ids := newConfig(t, "A", "B", "C", "D")
	target := theorem.Collinear(ids[0], ids[1], ids[2])
	cyclic := theorem.Concyclic(ids...)
	matcher := &fakeMatcher{calls: make(map[string]int), matches: func(examined []theorem.Theorem, tpl Template) []Match {
		if tpl.Name == "circle" {
			for _, e := range examined {
				if e.Key() == cyclic.Key() {
					return []Match{{Template: tpl.Theorems[0], Examined: cyclic}}
				}
			}
			return nil
		}
		return []Match{{Template: tpl.Theorems[0], Examined: target, Others: []theorem.Theorem{cyclic}}}
	}}
	templates := []Template{
		{Name: "circle", Theorems: []theorem.Theorem{theorem.Concyclic(1, 2, 3, 4)}},
		{Name: "line", Theorems: []theorem.Theorem{theorem.Collinear(1, 2, 3)}},
	}
	out, err := New(Config{Matcher: matcher, Templates: templates, SubtheoremPasses: 1}).Prove(Input{
		Configuration: cfg,
		Targets:       []theorem.Theorem{target},
	})
	require.NoError(t, err)
	assert.False(t, out.IsProven(target))
}

func TestMalformedInput(t *testing.T) {
	cfg, ids := newConfig(t, "A", "B")
	l := addLine(t, cfg, "l")

	tests := []struct {
		name string
		in   Input
	}{
		{"no configuration", Input{}},
		{"unknown object", Input{Configuration: cfg, Targets: []theorem.Theorem{theorem.Collinear(ids[0], ids[1], 99)}}},
		{"bad shape", Input{Configuration: cfg, Targets: []theorem.Theorem{theorem.Collinear(ids[0], ids[1])}}},
		{"kind mismatch", Input{Configuration: cfg, Facts: []theorem.Theorem{theorem.Equality(theorem.PointKind, ids[0], l)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New(Config{}).Prove(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput), "got %v", err)
			assert.Nil(t, out)
		})
	}
}

func TestOutputOrderFollowsTargets(t *testing.T) {
	cfg, ids := newConfig(t, "A", "B", "C", "D")
	t1 := theorem.Collinear(ids[0], ids[1], ids[2])
	t2 := theorem.Collinear(ids[1], ids[2], ids[3])
	t3 := theorem.Collinear(ids[0], ids[2], ids[3])
	out, err := New(Config{}).Prove(Input{
		Configuration: cfg,
		Trivial:       []theorem.Theorem{t3, t1},
		Targets:       []theorem.Theorem{t1, t2, t3},
	})
	require.NoError(t, err)
	var proven []string
	for _, p := range out.Proven {
		proven = append(proven, p.Theorem.Key())
	}
	assert.Empty(t, cmp.Diff([]string{t1.Key(), t3.Key()}, proven))
	require.Len(t, out.Unproven, 1)
	assert.Equal(t, t2.Key(), out.Unproven[0].Theorem.Key())
	assert.Empty(t, out.Unproven[0].Attempts)
}
