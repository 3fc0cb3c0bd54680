package geom

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ObjectID is an opaque handle into an Arena. IDs are assigned in creation
// order, so an object's arguments always have smaller IDs than the object.
type ObjectID int

// NoObject is the zero handle. It never refers to an object.
const NoObject ObjectID = 0

// IsZero reports whether id is the zero handle.
func (id ObjectID) IsZero() bool {
	return id == NoObject
}

func (id ObjectID) String() string {
	return "#" + strconv.Itoa(int(id))
}

// ObjectType enumerates the geometric entity types.
type ObjectType int

const (
	Point ObjectType = iota
	Line
	Circle
)

func (t ObjectType) String() string {
	switch t {
	case Point:
		return "point"
	case Line:
		return "line"
	case Circle:
		return "circle"
	default:
		return fmt.Sprintf("ObjectType(%d)", int(t))
	}
}

// Argument is one argument slot of a construction. It holds either a single
// object or an unordered group of nested arguments.
type Argument struct {
	Object ObjectID   `json:"object,omitempty"`
	Group  []Argument `json:"group,omitempty"`
}

// Obj returns a single-object argument.
func Obj(id ObjectID) Argument {
	return Argument{Object: id}
}

// Group returns an unordered group argument.
func Group(items ...Argument) Argument {
	return Argument{Group: items}
}

// GroupOf returns an unordered group of single-object arguments.
func GroupOf(ids ...ObjectID) Argument {
	items := make([]Argument, len(ids))
	for i, id := range ids {
		items[i] = Obj(id)
	}
	return Group(items...)
}

// IsGroup reports whether the argument is a group.
func (a Argument) IsGroup() bool {
	return a.Group != nil
}

// Objects returns every object referenced by the argument, depth first.
func (a Argument) Objects() []ObjectID {
	if !a.IsGroup() {
		return []ObjectID{a.Object}
	}
	var ids []ObjectID
	for _, item := range a.Group {
		ids = append(ids, item.Objects()...)
	}
	return ids
}

// Map returns a copy of the argument with every object replaced by f(object).
func (a Argument) Map(f func(ObjectID) ObjectID) Argument {
	if !a.IsGroup() {
		return Obj(f(a.Object))
	}
	items := make([]Argument, len(a.Group))
	for i, item := range a.Group {
		items[i] = item.Map(f)
	}
	return Group(items...)
}

// Key returns the canonical encoding of the argument. Group members are
// sorted, so two groups with the same members in different order share a key.
func (a Argument) Key() string {
	if !a.IsGroup() {
		return strconv.Itoa(int(a.Object))
	}
	keys := make([]string, len(a.Group))
	for i, item := range a.Group {
		keys[i] = item.Key()
	}
	sort.Strings(keys)
	return "{" + strings.Join(keys, ",") + "}"
}

// Object is a configuration object: a point, line or circle. Source objects
// have a nil Construction; derived objects apply Construction to Args.
type Object struct {
	ID           ObjectID      `json:"id"`
	Type         ObjectType    `json:"type"`
	Name         string        `json:"name,omitempty"`
	Construction *Construction `json:"-"`
	Args         []Argument    `json:"args,omitempty"`
}

// IsSource reports whether the object is a free parameter of the configuration.
func (o *Object) IsSource() bool {
	return o.Construction == nil
}

// Dependencies returns the distinct objects the object is built from, in
// argument order.
func (o *Object) Dependencies() []ObjectID {
	seen := make(map[ObjectID]bool)
	var deps []ObjectID
	for _, arg := range o.Args {
		for _, id := range arg.Objects() {
			if !seen[id] {
				seen[id] = true
				deps = append(deps, id)
			}
		}
	}
	return deps
}

// Key returns the structural key of the object. Source objects are keyed by
// their ID; derived objects by construction name and argument keys.
func (o *Object) Key() string {
	if o.IsSource() {
		return "free" + o.ID.String()
	}
	return StructuralKey(o.Construction, o.Args)
}

func (o *Object) String() string {
	if o.Name != "" {
		return o.Name
	}
	if o.IsSource() {
		return o.Type.String() + o.ID.String()
	}
	parts := make([]string, len(o.Args))
	for i, arg := range o.Args {
		parts[i] = arg.Key()
	}
	return fmt.Sprintf("%s(%s)", o.Construction.Name, strings.Join(parts, ", "))
}

// StructuralKey encodes a construction applied to arguments.
func StructuralKey(c *Construction, args []Argument) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(arg.Key())
	}
	b.WriteByte(')')
	return b.String()
}
