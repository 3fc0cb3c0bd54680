package geom

import (
	"fmt"
	"sort"
)

// Parameter describes one argument slot of a construction signature: a
// single object of Type, or an unordered group of nested parameters.
type Parameter struct {
	Type  ObjectType  `json:"type"`
	Group []Parameter `json:"group,omitempty"`
}

// Param returns a single-object parameter.
func Param(t ObjectType) Parameter {
	return Parameter{Type: t}
}

// GroupParam returns a group of n parameters of type t.
func GroupParam(t ObjectType, n int) Parameter {
	items := make([]Parameter, n)
	for i := range items {
		items[i] = Param(t)
	}
	return Parameter{Group: items}
}

// IsGroup reports whether the parameter is a group.
func (p Parameter) IsGroup() bool {
	return p.Group != nil
}

// Construction is a named, fixed-arity recipe producing one object.
type Construction struct {
	Name   string      `json:"name"`
	Output ObjectType  `json:"output"`
	Params []Parameter `json:"params"`
}

// Check validates args against the construction signature. typeOf resolves
// the type of a referenced object and reports false for unknown objects.
func (c *Construction) Check(args []Argument, typeOf func(ObjectID) (ObjectType, bool)) error {
	if len(args) != len(c.Params) {
		return fmt.Errorf("%s: expected %d arguments, got %d", c.Name, len(c.Params), len(args))
	}
	for i, arg := range args {
		if err := checkArgument(c.Params[i], arg, typeOf); err != nil {
			return fmt.Errorf("%s: argument %d: %w", c.Name, i, err)
		}
	}
	return nil
}

func checkArgument(p Parameter, a Argument, typeOf func(ObjectID) (ObjectType, bool)) error {
	if p.IsGroup() != a.IsGroup() {
		if p.IsGroup() {
			return fmt.Errorf("expected a group of %d", len(p.Group))
		}
		return fmt.Errorf("expected a single %s", p.Type)
	}
	if !p.IsGroup() {
		t, ok := typeOf(a.Object)
		if !ok {
			return fmt.Errorf("unknown object %s", a.Object)
		}
		if t != p.Type {
			return fmt.Errorf("object %s is a %s, expected a %s", a.Object, t, p.Type)
		}
		return nil
	}
	if len(p.Group) != len(a.Group) {
		return fmt.Errorf("expected a group of %d, got %d", len(p.Group), len(a.Group))
	}
	// Group members must be pairwise distinct.
	seen := make(map[string]bool, len(a.Group))
	for _, item := range a.Group {
		k := item.Key()
		if seen[k] {
			return fmt.Errorf("group repeats %s", k)
		}
		seen[k] = true
	}
	for i, item := range a.Group {
		if err := checkArgument(p.Group[i], item, typeOf); err != nil {
			return err
		}
	}
	return nil
}

// Predefined constructions.
var (
	Midpoint = &Construction{
		Name:   "midpoint",
		Output: Point,
		Params: []Parameter{GroupParam(Point, 2)},
	}
	LineFromPoints = &Construction{
		Name:   "line-from-points",
		Output: Line,
		Params: []Parameter{GroupParam(Point, 2)},
	}
	CircleFromPoints = &Construction{
		Name:   "circle-from-points",
		Output: Circle,
		Params: []Parameter{GroupParam(Point, 3)},
	}
	Circumcenter = &Construction{
		Name:   "circumcenter",
		Output: Point,
		Params: []Parameter{GroupParam(Point, 3)},
	}
	IntersectionOfLines = &Construction{
		Name:   "intersection-of-lines",
		Output: Point,
		Params: []Parameter{GroupParam(Line, 2)},
	}
	PerpendicularLine = &Construction{
		Name:   "perpendicular-line",
		Output: Line,
		Params: []Parameter{Param(Point), Param(Line)},
	}
	ParallelLine = &Construction{
		Name:   "parallel-line",
		Output: Line,
		Params: []Parameter{Param(Point), Param(Line)},
	}
	PerpendicularProjection = &Construction{
		Name:   "perpendicular-projection",
		Output: Point,
		Params: []Parameter{Param(Point), Param(Line)},
	}
	CenterOfCircle = &Construction{
		Name:   "center-of-circle",
		Output: Point,
		Params: []Parameter{Param(Circle)},
	}
)

var catalogue = map[string]*Construction{}

func init() {
	for _, c := range []*Construction{
		Midpoint, LineFromPoints, CircleFromPoints, Circumcenter,
		IntersectionOfLines, PerpendicularLine, ParallelLine,
		PerpendicularProjection, CenterOfCircle,
	} {
		catalogue[c.Name] = c
	}
}

// LookupConstruction returns the predefined construction with the given
// name, or nil.
func LookupConstruction(name string) *Construction {
	return catalogue[name]
}

// ConstructionNames returns the names of all predefined constructions, sorted.
func ConstructionNames() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
