package geom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgumentKeyIgnoresGroupOrder(t *testing.T) {
	tests := []struct {
		name string
		a, b Argument
		same bool
	}{
		{"single", Obj(1), Obj(1), true},
		{"different single", Obj(1), Obj(2), false},
		{"group order", GroupOf(1, 2), GroupOf(2, 1), true},
		{"nested group order", Group(GroupOf(1, 2), Obj(3)), Group(Obj(3), GroupOf(2, 1)), true},
		{"group vs single", GroupOf(1), Obj(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.same, tt.a.Key() == tt.b.Key())
		})
	}
}

func TestArgumentMapAndObjects(t *testing.T) {
	arg := Group(GroupOf(1, 2), Obj(3))
	assert.Equal(t, []ObjectID{1, 2, 3}, arg.Objects())

	mapped := arg.Map(func(id ObjectID) ObjectID { return id * 10 })
	assert.Equal(t, []ObjectID{10, 20, 30}, mapped.Objects())
	assert.Equal(t, []ObjectID{1, 2, 3}, arg.Objects(), "Map must not mutate the receiver")
}

func TestArenaHashConsing(t *testing.T) {
	a := NewArena()
	p := a.NewSource(Point, "P")
	q := a.NewSource(Point, "Q")

	m1, created, err := a.Construct(Midpoint, []Argument{GroupOf(p.ID, q.ID)})
	require.NoError(t, err)
	assert.True(t, created)

	m2, created, err := a.Construct(Midpoint, []Argument{GroupOf(q.ID, p.ID)})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, m1, m2)

	found, ok := a.Find(Midpoint, []Argument{GroupOf(p.ID, q.ID)})
	require.True(t, ok)
	assert.Same(t, m1, found)

	assert.Equal(t, 3, a.Len())
	assert.Nil(t, a.Get(NoObject))
	assert.Nil(t, a.Get(4))
}

func TestConstructionCheck(t *testing.T) {
	a := NewArena()
	p := a.NewSource(Point, "P")
	q := a.NewSource(Point, "Q")
	l := a.NewSource(Line, "l")

	tests := []struct {
		name string
		con  *Construction
		args []Argument
		want string
	}{
		{"wrong arity", Midpoint, []Argument{Obj(p.ID), Obj(q.ID)}, "expected 1 arguments"},
		{"group expected", Midpoint, []Argument{Obj(p.ID)}, "expected a group"},
		{"single expected", PerpendicularLine, []Argument{GroupOf(p.ID, q.ID), Obj(l.ID)}, "expected a single"},
		{"wrong type", Midpoint, []Argument{GroupOf(p.ID, l.ID)}, "expected a point"},
		{"repeated member", Midpoint, []Argument{GroupOf(p.ID, p.ID)}, "repeats"},
		{"unknown object", CenterOfCircle, []Argument{Obj(99)}, "unknown object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := a.Construct(tt.con, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	o, _, err := a.Construct(PerpendicularLine, []Argument{Obj(p.ID), Obj(l.ID)})
	require.NoError(t, err)
	assert.Equal(t, Line, o.Type)
	assert.Equal(t, []ObjectID{p.ID, l.ID}, o.Dependencies())
}

func TestConstructionCatalogue(t *testing.T) {
	names := ConstructionNames()
	require.NotEmpty(t, names)
	for _, name := range names {
		c := LookupConstruction(name)
		require.NotNil(t, c, name)
		assert.Equal(t, name, c.Name)
	}
	assert.Nil(t, LookupConstruction("trisection"))
}

func TestConfiguration(t *testing.T) {
	c := NewConfiguration()
	a, err := c.AddSource(Point, "A")
	require.NoError(t, err)
	b, err := c.AddSource(Point, "B")
	require.NoError(t, err)

	_, err = c.AddSource(Line, "A")
	assert.Error(t, err, "duplicate name")

	m, err := c.AddConstructed("M", Midpoint, GroupOf(a.ID, b.ID))
	require.NoError(t, err)
	assert.True(t, c.IsOriginal(m.ID))
	assert.Same(t, m, c.MustLookup("M"))
	assert.Equal(t, "M", c.Name(m.ID))

	_, err = c.AddConstructed("N", Midpoint, GroupOf(b.ID, a.ID))
	assert.ErrorContains(t, err, "duplicates")

	h := c.Arena().NewSource(Point, "")
	assert.False(t, c.IsOriginal(h.ID))
	_, err = c.AddConstructed("X", Midpoint, GroupOf(a.ID, h.ID))
	assert.ErrorContains(t, err, "not part of the configuration")

	assert.Equal(t, 3, c.Len())
	assert.Len(t, c.Sources(), 2)
	assert.Nil(t, c.Lookup("X"))
	assert.Panics(t, func() { c.MustLookup("X") })
}

func TestObjectString(t *testing.T) {
	c := NewConfiguration()
	a, _ := c.AddSource(Point, "A")
	b, _ := c.AddSource(Point, "")
	m := c.Arena().MustConstruct(Midpoint, GroupOf(a.ID, b.ID))

	assert.Equal(t, "A", a.String())
	assert.Equal(t, "point#2", b.String())
	assert.Equal(t, "midpoint({1,2})", m.String())
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func findingsContaining(findings []ValidationError, substr string) []ValidationError {
	var out []ValidationError
	for _, f := range findings {
		if strings.Contains(f.Message, substr) {
			out = append(out, f)
		}
	}
	return out
}

func TestValidateCleanConfiguration(t *testing.T) {
	c := NewConfiguration()
	a, _ := c.AddSource(Point, "A")
	b, _ := c.AddSource(Point, "B")
	l, _ := c.AddSource(Line, "l")
	_, err := c.AddConstructed("M", Midpoint, GroupOf(a.ID, b.ID))
	require.NoError(t, err)
	_, err = c.AddConstructed("p", PerpendicularLine, Obj(a.ID), Obj(l.ID))
	require.NoError(t, err)

	findings := Validate(c)
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %v", findings)
	}
	assert.False(t, HasErrors(findings))
}

func TestValidateUnnamedSourceWarns(t *testing.T) {
	c := NewConfiguration()
	_, _ = c.AddSource(Point, "")

	findings := Validate(c)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
	assert.False(t, HasErrors(findings))
}

func TestValidateForeignArgument(t *testing.T) {
	c := NewConfiguration()
	a, _ := c.AddSource(Point, "A")
	h := c.Arena().NewSource(Point, "H")
	o := c.Arena().MustConstruct(Midpoint, GroupOf(a.ID, h.ID))
	o.Name = "M"
	c.register(o)

	findings := Validate(c)
	assert.True(t, HasErrors(findings))
	got := findingsContaining(findings, "not part of the configuration")
	require.Len(t, got, 1)
	assert.Equal(t, o.ID, got[0].Object)
}

func TestValidateArgumentOrder(t *testing.T) {
	c := NewConfiguration()
	a, _ := c.AddSource(Point, "A")
	b, _ := c.AddSource(Point, "B")
	m, err := c.AddConstructed("M", Midpoint, GroupOf(a.ID, b.ID))
	require.NoError(t, err)
	late, _ := c.AddSource(Point, "C")
	m.Args = []Argument{GroupOf(a.ID, late.ID)}

	findings := Validate(c)
	assert.True(t, HasErrors(findings))
	assert.Len(t, findingsContaining(findings, "created after"), 1)
}

func TestValidateSignature(t *testing.T) {
	c := NewConfiguration()
	a, _ := c.AddSource(Point, "A")
	l, _ := c.AddSource(Line, "l")
	b, _ := c.AddSource(Point, "B")
	m, err := c.AddConstructed("M", Midpoint, GroupOf(a.ID, b.ID))
	require.NoError(t, err)
	m.Args = []Argument{GroupOf(a.ID, l.ID)}

	findings := Validate(c)
	got := findingsContaining(findings, "expected a point")
	require.Len(t, got, 1)
	assert.Equal(t, SeverityError, got[0].Severity)
}

func TestValidateNameIndex(t *testing.T) {
	c := NewConfiguration()
	a, _ := c.AddSource(Point, "A")
	c.names["ghost"] = a.ID

	findings := Validate(c)
	assert.Len(t, findingsContaining(findings, `"ghost"`), 1)
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Object: 3, Message: "broken", Severity: SeverityError}
	s := e.Error()
	assert.Contains(t, s, "#3")
	assert.Contains(t, s, "broken")
}
