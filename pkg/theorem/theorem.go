// Package theorem defines geometric statements over configuration objects
// and their canonical, order-insensitive keys.
package theorem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/geoproof/pkg/geom"
)

// Type is the closed set of statement kinds.
type Type int

const (
	CollinearPoints Type = iota
	ConcyclicPoints
	ParallelLines
	PerpendicularLines
	EqualLineSegments
	ConcurrentLines
	TangentCircles
	LineTangentToCircle
	Incidence
	EqualObjects
)

var typeNames = [...]string{
	CollinearPoints:     "collinear-points",
	ConcyclicPoints:     "concyclic-points",
	ParallelLines:       "parallel-lines",
	PerpendicularLines:  "perpendicular-lines",
	EqualLineSegments:   "equal-line-segments",
	ConcurrentLines:     "concurrent-lines",
	TangentCircles:      "tangent-circles",
	LineTangentToCircle: "line-tangent-to-circle",
	Incidence:           "incidence",
	EqualObjects:        "equal-objects",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType returns the type with the given name.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown theorem type %q", name)
}

// Types returns every theorem type in declaration order.
func Types() []Type {
	types := make([]Type, len(typeNames))
	for i := range typeNames {
		types[i] = Type(i)
	}
	return types
}

// Symmetric reports whether the order of the theorem objects is irrelevant.
func (t Type) Symmetric() bool {
	return t != Incidence && t != LineTangentToCircle
}

// Transitive reports whether two statements sharing an object imply the
// statement over the other two objects.
func (t Type) Transitive() bool {
	return t == ParallelLines || t == EqualLineSegments || t == EqualObjects
}

// shape describes the objects a theorem type takes.
type shape struct {
	min, max int
	kinds    []Kind // allowed kinds per position; the last entry repeats
}

var shapes = map[Type]shape{
	CollinearPoints:     {3, -1, []Kind{PointKind}},
	ConcyclicPoints:     {4, -1, []Kind{PointKind}},
	ParallelLines:       {2, 2, []Kind{LineKind}},
	PerpendicularLines:  {2, 2, []Kind{LineKind}},
	EqualLineSegments:   {2, 2, []Kind{SegmentKind}},
	ConcurrentLines:     {3, 3, []Kind{LineKind}},
	TangentCircles:      {2, 2, []Kind{CircleKind}},
	LineTangentToCircle: {2, 2, []Kind{LineKind, CircleKind}},
}

// Theorem is a typed statement over theorem objects.
type Theorem struct {
	Type    Type     `json:"type" yaml:"type"`
	Objects []Object `json:"objects" yaml:"objects"`
}

// New builds a theorem.
func New(t Type, objects ...Object) Theorem {
	return Theorem{Type: t, Objects: objects}
}

// Collinear states that the points lie on one line.
func Collinear(points ...geom.ObjectID) Theorem {
	return New(CollinearPoints, pointObjects(points)...)
}

// Concyclic states that the points lie on one circle.
func Concyclic(points ...geom.ObjectID) Theorem {
	return New(ConcyclicPoints, pointObjects(points)...)
}

func pointObjects(points []geom.ObjectID) []Object {
	objs := make([]Object, len(points))
	for i, p := range points {
		objs[i] = PointObject(p)
	}
	return objs
}

// Equality states that two configuration objects of the given kind coincide.
func Equality(kind Kind, a, b geom.ObjectID) Theorem {
	return New(EqualObjects, ExplicitObject(kind, a), ExplicitObject(kind, b))
}

// IncidenceOf states that point lies on the explicit line or circle lc.
func IncidenceOf(point geom.ObjectID, kind Kind, lc geom.ObjectID) Theorem {
	return New(Incidence, PointObject(point), ExplicitObject(kind, lc))
}

// Check validates the theorem shape. A failing check means malformed input.
func (t Theorem) Check() error {
	switch t.Type {
	case Incidence:
		if len(t.Objects) != 2 {
			return fmt.Errorf("%s takes 2 objects, got %d", t.Type, len(t.Objects))
		}
		if t.Objects[0].Kind != PointKind {
			return fmt.Errorf("%s: first object must be a point", t.Type)
		}
		if k := t.Objects[1].Kind; k != LineKind && k != CircleKind {
			return fmt.Errorf("%s: second object must be a line or circle", t.Type)
		}
	case EqualObjects:
		if len(t.Objects) != 2 {
			return fmt.Errorf("%s takes 2 objects, got %d", t.Type, len(t.Objects))
		}
		if t.Objects[0].Kind != t.Objects[1].Kind {
			return fmt.Errorf("%s: objects have different kinds", t.Type)
		}
		for _, o := range t.Objects {
			if !o.IsExplicit() {
				return fmt.Errorf("%s: objects must be explicit", t.Type)
			}
		}
	default:
		s, ok := shapes[t.Type]
		if !ok {
			return fmt.Errorf("unknown theorem type %s", t.Type)
		}
		if len(t.Objects) < s.min || (s.max >= 0 && len(t.Objects) > s.max) {
			return fmt.Errorf("%s: wrong number of objects %d", t.Type, len(t.Objects))
		}
		for i, o := range t.Objects {
			want := s.kinds[min(i, len(s.kinds)-1)]
			if o.Kind != want {
				return fmt.Errorf("%s: object %d is a %s, expected a %s", t.Type, i, o.Kind, want)
			}
		}
	}
	for _, o := range t.Objects {
		if err := o.check(); err != nil {
			return fmt.Errorf("%s: %w", t.Type, err)
		}
	}
	return nil
}

// Key returns the canonical encoding of the theorem. For symmetric types the
// object order is irrelevant, and implicit objects ignore point order, so
// geometrically identical restatements share a key.
func (t Theorem) Key() string {
	keys := make([]string, len(t.Objects))
	for i, o := range t.Objects {
		keys[i] = o.Key()
	}
	if t.Type.Symmetric() {
		sort.Strings(keys)
	}
	return t.Type.String() + "[" + strings.Join(keys, " ") + "]"
}

// Equal reports whether two theorems have the same canonical key.
func (t Theorem) Equal(other Theorem) bool {
	return t.Key() == other.Key()
}

// ConfigurationObjects returns the distinct configuration objects referenced
// by the theorem.
func (t Theorem) ConfigurationObjects() []geom.ObjectID {
	seen := make(map[geom.ObjectID]bool)
	var ids []geom.ObjectID
	for _, o := range t.Objects {
		for _, id := range o.Objects() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Remap returns a copy with every configuration object replaced by f(object).
func (t Theorem) Remap(f func(geom.ObjectID) geom.ObjectID) Theorem {
	objs := make([]Object, len(t.Objects))
	for i, o := range t.Objects {
		objs[i] = o.Remap(f)
	}
	return Theorem{Type: t.Type, Objects: objs}
}

// IsDegenerate reports whether the statement became trivial or meaningless,
// typically after objects were identified: repeated defining points, two
// identical objects in a symmetric relation, or an incidence of a defining
// point.
func (t Theorem) IsDegenerate() bool {
	for _, o := range t.Objects {
		if o.degenerate() {
			return true
		}
	}
	if t.Type.Symmetric() {
		seen := make(map[string]bool, len(t.Objects))
		for _, o := range t.Objects {
			k := o.Key()
			if seen[k] {
				return true
			}
			seen[k] = true
		}
	}
	if t.Type == Incidence && len(t.Objects) == 2 {
		for _, p := range t.Objects[1].Points {
			if p == t.Objects[0].Explicit {
				return true
			}
		}
	}
	return false
}

// EqualityPair returns the two objects of an explicit equality.
func (t Theorem) EqualityPair() (a, b geom.ObjectID, ok bool) {
	if t.Type != EqualObjects || len(t.Objects) != 2 || !t.Objects[0].IsExplicit() || !t.Objects[1].IsExplicit() {
		return geom.NoObject, geom.NoObject, false
	}
	return t.Objects[0].Explicit, t.Objects[1].Explicit, true
}

// IncidencePair returns the point and the explicit line or circle of an
// incidence.
func (t Theorem) IncidencePair() (point, lc geom.ObjectID, ok bool) {
	if t.Type != Incidence || len(t.Objects) != 2 || !t.Objects[0].IsExplicit() || !t.Objects[1].IsExplicit() {
		return geom.NoObject, geom.NoObject, false
	}
	return t.Objects[0].Explicit, t.Objects[1].Explicit, true
}

func (t Theorem) String() string {
	return t.Format(func(id geom.ObjectID) string { return id.String() })
}

// Format renders the theorem with object names resolved by name.
func (t Theorem) Format(name func(geom.ObjectID) string) string {
	parts := make([]string, len(t.Objects))
	for i, o := range t.Objects {
		parts[i] = o.format(name)
	}
	return t.Type.String() + "(" + strings.Join(parts, ", ") + ")"
}
