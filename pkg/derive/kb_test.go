package derive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/geoproof/pkg/geom"
	"github.com/chazu/geoproof/pkg/theorem"
)

func eq(a, b geom.ObjectID) theorem.Theorem {
	return theorem.Equality(theorem.PointKind, a, b)
}

func keysOf(ts []theorem.Theorem) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Key()
	}
	return out
}

func TestAxiomAndChain(t *testing.T) {
	kb := NewKnowledgeBase()
	a, b, c := eq(1, 2), eq(2, 3), eq(1, 3)

	assert.True(t, kb.AddDerivation(c, Transitivity{}, a, b))
	assert.False(t, kb.IsProven(c))
	assert.Empty(t, cmp.Diff(keysOf([]theorem.Theorem{a, b}), keysOf(kb.Wanted())))

	kb.AddAxiom(a, TrivialTheorem{})
	assert.False(t, kb.IsProven(c))
	kb.AddAxiom(b, TrueInSmallerConfiguration{})
	assert.True(t, kb.IsProven(c))
	assert.Empty(t, kb.Wanted())
}

func TestDuplicateRecordsAreIgnored(t *testing.T) {
	kb := NewKnowledgeBase()
	assert.True(t, kb.AddDerivation(eq(1, 3), Transitivity{}, eq(1, 2), eq(2, 3)))
	assert.False(t, kb.AddDerivation(eq(3, 1), Transitivity{}, eq(2, 1), eq(3, 2)))
	assert.True(t, kb.AddDerivation(eq(1, 3), Strategy{Name: "x"}, eq(1, 2), eq(2, 3)))
	assert.Equal(t, 2, kb.Len())
	assert.Len(t, kb.Records(eq(1, 3)), 2)
}

func TestCycleIsNotProven(t *testing.T) {
	kb := NewKnowledgeBase()
	a, b := eq(1, 2), eq(3, 4)
	kb.AddDerivation(a, Strategy{Name: "s"}, b)
	kb.AddDerivation(b, Strategy{Name: "s"}, a)
	assert.False(t, kb.IsProven(a))
	assert.False(t, kb.IsProven(b))
	assert.Nil(t, kb.GetProof(a))

	attempts := kb.GetDerivationAttempts(a)
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].Successful())
	require.Len(t, attempts[0].Unproven, 1)
	inner := attempts[0].Unproven[0]
	assert.Equal(t, b.Key(), inner.Theorem.Key())
	require.Len(t, inner.Attempts, 1)
	require.Len(t, inner.Attempts[0].Unproven, 1)
	assert.Equal(t, a.Key(), inner.Attempts[0].Unproven[0].Theorem.Key())
	assert.Empty(t, inner.Attempts[0].Unproven[0].Attempts, "recursion stops at the theorem being expanded")
}

func TestCycleWithEscapeIsWellFounded(t *testing.T) {
	kb := NewKnowledgeBase()
	a, b, c := eq(1, 2), eq(3, 4), eq(5, 6)
	kb.AddDerivation(a, Strategy{Name: "s"}, b)
	kb.AddDerivation(b, Strategy{Name: "s"}, a)
	kb.AddDerivation(b, Strategy{Name: "t"}, c)
	kb.AddAxiom(c, TrivialTheorem{})

	require.True(t, kb.IsProven(a))
	require.True(t, kb.IsProven(b))
	proof := kb.GetProof(a)
	require.NotNil(t, proof)
	assert.Equal(t, 2, proof.Depth())
	for _, leaf := range proof.Leaves() {
		assert.Empty(t, leaf.Premises)
		assert.Equal(t, c.Key(), leaf.Theorem.Key())
	}
	assert.Equal(t, Strategy{Name: "t"}, proof.Premises[0].Rule)

	attempts := kb.GetDerivationAttempts(b)
	require.Len(t, attempts, 2)
	assert.True(t, attempts[0].Successful())
	assert.True(t, attempts[1].Successful())
}

func TestFirstFiredRecordIsTheProof(t *testing.T) {
	kb := NewKnowledgeBase()
	a := eq(1, 2)
	kb.AddDerivation(a, Strategy{Name: "late"}, eq(3, 4))
	kb.AddAxiom(a, TrivialTheorem{})
	kb.AddAxiom(eq(3, 4), TrivialTheorem{})
	assert.Equal(t, TrivialTheorem{}, kb.GetProof(a).Rule)
}

func TestRuleExplanations(t *testing.T) {
	rules := []Rule{
		TrivialTheorem{},
		TrueInSmallerConfiguration{},
		Subtheorem{Template: "midline", Theorem: eq(1, 2)},
		Strategy{Name: "perpendicular-to-parallel"},
		Transitivity{},
		Reformulation{},
		Congruence{},
		IncidenceSubstitution{},
		EqualityClosure{},
	}
	seen := make(map[string]bool)
	for _, r := range rules {
		e := r.Explanation()
		assert.NotEmpty(t, e)
		assert.False(t, seen[e], "explanation %q repeats", e)
		seen[e] = true
	}
	assert.True(t, IsTransitivity(Transitivity{}))
	assert.False(t, IsTransitivity(Congruence{}))
}
