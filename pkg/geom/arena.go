package geom

import "fmt"

// Arena owns every object created for one configuration. Derived objects
// are hash-consed: constructing the same structure twice returns the
// existing handle. Objects are never freed; callers track liveness.
type Arena struct {
	objects []*Object
	byKey   map[string]ObjectID
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{byKey: make(map[string]ObjectID)}
}

// NewSource creates a free object of the given type.
func (a *Arena) NewSource(t ObjectType, name string) *Object {
	o := &Object{
		ID:   ObjectID(len(a.objects) + 1),
		Type: t,
		Name: name,
	}
	a.objects = append(a.objects, o)
	return o
}

// Construct applies c to args. It returns the existing object when the same
// structure was constructed before, with created reporting whether a new
// object was allocated.
func (a *Arena) Construct(c *Construction, args []Argument) (o *Object, created bool, err error) {
	if err := c.Check(args, a.typeOf); err != nil {
		return nil, false, err
	}
	key := StructuralKey(c, args)
	if id, ok := a.byKey[key]; ok {
		return a.objects[id-1], false, nil
	}
	o = &Object{
		ID:           ObjectID(len(a.objects) + 1),
		Type:         c.Output,
		Construction: c,
		Args:         args,
	}
	a.objects = append(a.objects, o)
	a.byKey[key] = o.ID
	return o, true, nil
}

// MustConstruct is like Construct but panics on a signature mismatch.
func (a *Arena) MustConstruct(c *Construction, args ...Argument) *Object {
	o, _, err := a.Construct(c, args)
	if err != nil {
		panic(fmt.Sprintf("geom: %v", err))
	}
	return o
}

// Find returns the object with the given structure, if it was constructed.
func (a *Arena) Find(c *Construction, args []Argument) (*Object, bool) {
	id, ok := a.byKey[StructuralKey(c, args)]
	if !ok {
		return nil, false
	}
	return a.objects[id-1], true
}

// Get returns the object with the given ID, or nil.
func (a *Arena) Get(id ObjectID) *Object {
	if id <= 0 || int(id) > len(a.objects) {
		return nil
	}
	return a.objects[id-1]
}

// Len returns the number of objects ever created.
func (a *Arena) Len() int {
	return len(a.objects)
}

func (a *Arena) typeOf(id ObjectID) (ObjectType, bool) {
	o := a.Get(id)
	if o == nil {
		return 0, false
	}
	return o.Type, true
}
