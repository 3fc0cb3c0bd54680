package geom

import "fmt"

// Configuration is the set of original objects of one problem: the free
// source objects and the objects constructed from them at load time.
// Original objects are never destroyed.
type Configuration struct {
	arena    *Arena
	objects  []ObjectID
	original map[ObjectID]bool
	names    map[string]ObjectID
}

// NewConfiguration creates an empty configuration with its own arena.
func NewConfiguration() *Configuration {
	return &Configuration{
		arena:    NewArena(),
		original: make(map[ObjectID]bool),
		names:    make(map[string]ObjectID),
	}
}

// Arena returns the arena that owns the configuration's objects. Objects
// created later (normal versions, hypotheses) live in the same arena.
func (c *Configuration) Arena() *Arena {
	return c.arena
}

// AddSource adds a free object. Names must be unique; an empty name is allowed.
func (c *Configuration) AddSource(t ObjectType, name string) (*Object, error) {
	if err := c.checkName(name); err != nil {
		return nil, err
	}
	o := c.arena.NewSource(t, name)
	c.register(o)
	return o, nil
}

// AddConstructed adds an object built by con from original objects.
func (c *Configuration) AddConstructed(name string, con *Construction, args ...Argument) (*Object, error) {
	if err := c.checkName(name); err != nil {
		return nil, err
	}
	for _, arg := range args {
		for _, id := range arg.Objects() {
			if !c.original[id] {
				return nil, fmt.Errorf("%s: argument %s is not part of the configuration", con.Name, id)
			}
		}
	}
	o, created, err := c.arena.Construct(con, args)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("%s duplicates object %s", StructuralKey(con, args), o)
	}
	o.Name = name
	c.register(o)
	return o, nil
}

func (c *Configuration) checkName(name string) error {
	if name == "" {
		return nil
	}
	if _, exists := c.names[name]; exists {
		return fmt.Errorf("object name %q already defined", name)
	}
	return nil
}

func (c *Configuration) register(o *Object) {
	c.objects = append(c.objects, o.ID)
	c.original[o.ID] = true
	if o.Name != "" {
		c.names[o.Name] = o.ID
	}
}

// Lookup returns the original object with the given name, or nil.
func (c *Configuration) Lookup(name string) *Object {
	id, ok := c.names[name]
	if !ok {
		return nil
	}
	return c.arena.Get(id)
}

// MustLookup returns the object with the given name, or panics.
func (c *Configuration) MustLookup(name string) *Object {
	o := c.Lookup(name)
	if o == nil {
		panic(fmt.Sprintf("geom: no object named %q", name))
	}
	return o
}

// Get returns the object with the given ID from the arena, or nil.
func (c *Configuration) Get(id ObjectID) *Object {
	return c.arena.Get(id)
}

// IsOriginal reports whether id belongs to the loaded configuration.
func (c *Configuration) IsOriginal(id ObjectID) bool {
	return c.original[id]
}

// Objects returns the original objects in load order.
func (c *Configuration) Objects() []*Object {
	objs := make([]*Object, 0, len(c.objects))
	for _, id := range c.objects {
		objs = append(objs, c.arena.Get(id))
	}
	return objs
}

// Sources returns the free objects in load order.
func (c *Configuration) Sources() []*Object {
	var objs []*Object
	for _, id := range c.objects {
		if o := c.arena.Get(id); o.IsSource() {
			objs = append(objs, o)
		}
	}
	return objs
}

// Len returns the number of original objects.
func (c *Configuration) Len() int {
	return len(c.objects)
}

// Name returns a printable name for id: the object name if set.
func (c *Configuration) Name(id ObjectID) string {
	if o := c.arena.Get(id); o != nil {
		return o.String()
	}
	return id.String()
}
