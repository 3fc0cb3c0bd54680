package theorem

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/chazu/geoproof/pkg/geom"
)

// Kind distinguishes theorem objects.
type Kind int

const (
	PointKind Kind = iota
	LineKind
	CircleKind
	SegmentKind
)

func (k Kind) String() string {
	switch k {
	case PointKind:
		return "point"
	case LineKind:
		return "line"
	case CircleKind:
		return "circle"
	case SegmentKind:
		return "segment"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// definingPoints is the number of points that determine an implicit object.
func (k Kind) definingPoints() int {
	switch k {
	case LineKind, SegmentKind:
		return 2
	case CircleKind:
		return 3
	default:
		return 0
	}
}

// KindOf maps a configuration object type to the theorem object kind that
// wraps it explicitly.
func KindOf(t geom.ObjectType) Kind {
	switch t {
	case geom.Line:
		return LineKind
	case geom.Circle:
		return CircleKind
	default:
		return PointKind
	}
}

// Object is a theorem object: a point, a line or circle given explicitly or
// by its defining points, or a segment given by its endpoints.
type Object struct {
	Kind     Kind            `json:"kind" yaml:"kind"`
	Explicit geom.ObjectID   `json:"explicit,omitempty" yaml:"explicit,omitempty"`
	Points   []geom.ObjectID `json:"points,omitempty" yaml:"points,omitempty"`
}

// PointObject wraps a point.
func PointObject(id geom.ObjectID) Object {
	return Object{Kind: PointKind, Explicit: id}
}

// ExplicitObject wraps a configuration object of the given kind.
func ExplicitObject(kind Kind, id geom.ObjectID) Object {
	return Object{Kind: kind, Explicit: id}
}

// LineThrough is the line given implicitly by two points.
func LineThrough(a, b geom.ObjectID) Object {
	return Object{Kind: LineKind, Points: []geom.ObjectID{a, b}}
}

// CircleThrough is the circle given implicitly by three points.
func CircleThrough(a, b, c geom.ObjectID) Object {
	return Object{Kind: CircleKind, Points: []geom.ObjectID{a, b, c}}
}

// Segment is the segment between two points.
func Segment(a, b geom.ObjectID) Object {
	return Object{Kind: SegmentKind, Points: []geom.ObjectID{a, b}}
}

// IsExplicit reports whether the object wraps a configuration object
// rather than being given by points.
func (o Object) IsExplicit() bool {
	return !o.Explicit.IsZero()
}

// Key returns the canonical encoding. Implicit objects are keyed by their
// sorted defining points.
func (o Object) Key() string {
	prefix := [...]string{"P", "L", "C", "S"}[o.Kind]
	if o.IsExplicit() {
		return prefix + strconv.Itoa(int(o.Explicit))
	}
	pts := make([]int, len(o.Points))
	for i, p := range o.Points {
		pts[i] = int(p)
	}
	sort.Ints(pts)
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = strconv.Itoa(p)
	}
	return prefix + "(" + strings.Join(parts, ",") + ")"
}

// Objects returns every configuration object the theorem object references.
func (o Object) Objects() []geom.ObjectID {
	var ids []geom.ObjectID
	if o.IsExplicit() {
		ids = append(ids, o.Explicit)
	}
	return append(ids, o.Points...)
}

// Remap returns a copy with every configuration object replaced by f(object).
func (o Object) Remap(f func(geom.ObjectID) geom.ObjectID) Object {
	out := Object{Kind: o.Kind}
	if o.IsExplicit() {
		out.Explicit = f(o.Explicit)
	}
	if o.Points != nil {
		out.Points = make([]geom.ObjectID, len(o.Points))
		for i, p := range o.Points {
			out.Points[i] = f(p)
		}
	}
	return out
}

// check validates the shape of the object.
func (o Object) check() error {
	if o.IsExplicit() {
		if len(o.Points) > 0 {
			return fmt.Errorf("%s object is both explicit and given by points", o.Kind)
		}
		if o.Kind == SegmentKind {
			return fmt.Errorf("segment must be given by its endpoints")
		}
		return nil
	}
	n := o.Kind.definingPoints()
	if n == 0 {
		return fmt.Errorf("%s object must be explicit", o.Kind)
	}
	if len(o.Points) != n {
		return fmt.Errorf("%s given by %d points, expected %d", o.Kind, len(o.Points), n)
	}
	return nil
}

// degenerate reports whether the defining points repeat.
func (o Object) degenerate() bool {
	seen := make(map[geom.ObjectID]bool, len(o.Points))
	for _, p := range o.Points {
		if seen[p] {
			return true
		}
		seen[p] = true
	}
	return false
}

func (o Object) format(name func(geom.ObjectID) string) string {
	if o.IsExplicit() {
		return name(o.Explicit)
	}
	parts := make([]string, len(o.Points))
	for i, p := range o.Points {
		parts[i] = name(p)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
