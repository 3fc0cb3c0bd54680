package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/geoproof/pkg/geom"
	"github.com/chazu/geoproof/pkg/theorem"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpObject refers to a configuration object.
type sexpObject struct {
	id   geom.ObjectID
	name string
}

func (o *sexpObject) SexpString(ps *zygo.PrintState) string {
	if o.name != "" {
		return fmt.Sprintf("(obj %q)", o.name)
	}
	return fmt.Sprintf("(obj %s)", o.id)
}
func (o *sexpObject) Type() *zygo.RegisteredType { return nil }

// sexpArgument wraps a construction argument, usually a group.
type sexpArgument struct {
	arg geom.Argument
}

func (a *sexpArgument) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(argument %s)", a.arg.Key())
}
func (a *sexpArgument) Type() *zygo.RegisteredType { return nil }

// sexpTheoremObject wraps an object given by points, such as a segment.
type sexpTheoremObject struct {
	obj theorem.Object
}

func (o *sexpTheoremObject) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %s)", o.obj.Kind, o.obj.Key())
}
func (o *sexpTheoremObject) Type() *zygo.RegisteredType { return nil }

// sexpTheorem wraps a checked theorem.
type sexpTheorem struct {
	thm theorem.Theorem
}

func (t *sexpTheorem) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(theorem %s)", t.thm)
}
func (t *sexpTheorem) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword arguments
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok && !strings.HasPrefix(str.S, kwPrefix) {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_midpoint) and plain strings ("midpoint").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// lookupObject resolves an object reference or an object name.
func lookupObject(p *Problem, s zygo.Sexp) (*geom.Object, error) {
	if ref, ok := s.(*sexpObject); ok {
		return p.Configuration.Get(ref.id), nil
	}
	name, err := toString(s)
	if err != nil {
		return nil, fmt.Errorf("expected object or object name: %w", err)
	}
	o := p.Configuration.Lookup(name)
	if o == nil {
		return nil, fmt.Errorf("no object named %q", name)
	}
	return o, nil
}

func lookupPoint(p *Problem, s zygo.Sexp) (geom.ObjectID, error) {
	o, err := lookupObject(p, s)
	if err != nil {
		return geom.NoObject, err
	}
	if o.Type != geom.Point {
		return geom.NoObject, fmt.Errorf("%s is a %s, expected a point", describe(o), o.Type)
	}
	return o.ID, nil
}

func toArgument(p *Problem, s zygo.Sexp) (geom.Argument, error) {
	if a, ok := s.(*sexpArgument); ok {
		return a.arg, nil
	}
	o, err := lookupObject(p, s)
	if err != nil {
		return geom.Argument{}, err
	}
	return geom.Obj(o.ID), nil
}

// toTheoremObject accepts objects given by points and plain configuration
// objects, which are used explicitly.
func toTheoremObject(p *Problem, s zygo.Sexp) (theorem.Object, error) {
	if o, ok := s.(*sexpTheoremObject); ok {
		return o.obj, nil
	}
	o, err := lookupObject(p, s)
	if err != nil {
		return theorem.Object{}, err
	}
	return theorem.ExplicitObject(theorem.KindOf(o.Type), o.ID), nil
}

func toTheorem(s zygo.Sexp) (theorem.Theorem, error) {
	if t, ok := s.(*sexpTheorem); ok {
		return t.thm, nil
	}
	return theorem.Theorem{}, fmt.Errorf("expected theorem, got %T (%s)", s, s.SexpString(nil))
}

func describe(o *geom.Object) string {
	if o.Name != "" {
		return fmt.Sprintf("%q", o.Name)
	}
	return o.ID.String()
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the problem builtins into a zygomys environment.
// The builtins operate on the provided Problem, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals and
// kebab-case names match the underscore registrations below.
func registerBuiltins(env *zygo.Zlisp, p *Problem) {

	// (problem "name")
	env.AddFunction("problem", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("problem requires a name argument")
		}
		s, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("problem: name: %w", err)
		}
		p.Name = s
		return zygo.SexpNull, nil
	})

	// (point "A"), (free-line "l"), (free-circle "w")
	for builtin, t := range map[string]geom.ObjectType{
		"point":       geom.Point,
		"free_line":   geom.Line,
		"free_circle": geom.Circle,
	} {
		display := strings.ReplaceAll(builtin, "_", "-")
		env.AddFunction(builtin, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires a name argument", display)
			}
			objName, err := toString(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: name: %w", display, err)
			}
			o, err := p.Configuration.AddSource(t, objName)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", display, err)
			}
			return &sexpObject{id: o.ID, name: o.Name}, nil
		})
	}

	// (obj "A")
	env.AddFunction("obj", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("obj requires exactly 1 argument, got %d", len(args))
		}
		o, err := lookupObject(p, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("obj: %w", err)
		}
		return &sexpObject{id: o.ID, name: o.Name}, nil
	})

	// (group "A" "B")
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		items := make([]geom.Argument, 0, len(args))
		for i, arg := range args {
			a, err := toArgument(p, arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("group: member %d: %w", i+1, err)
			}
			items = append(items, a)
		}
		return &sexpArgument{arg: geom.Group(items...)}, nil
	})

	// (construct "M" :midpoint (group "A" "B"))
	env.AddFunction("construct", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("construct requires a name and a construction")
		}
		objName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("construct: name: %w", err)
		}
		conName, err := toKeywordString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("construct: construction: %w", err)
		}
		con := geom.LookupConstruction(conName)
		if con == nil {
			return zygo.SexpNull, fmt.Errorf("construct: unknown construction %q, expected one of %s",
				conName, strings.Join(geom.ConstructionNames(), ", "))
		}
		conArgs := make([]geom.Argument, 0, len(args)-2)
		for i, arg := range args[2:] {
			a, err := toArgument(p, arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("construct %q: argument %d: %w", objName, i+1, err)
			}
			conArgs = append(conArgs, a)
		}
		o, err := p.Configuration.AddConstructed(objName, con, conArgs...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("construct %q: %w", objName, err)
		}
		return &sexpObject{id: o.ID, name: o.Name}, nil
	})

	// (segment "A" "B"), (line-through "A" "B"), (circle-through "A" "B" "C")
	for builtin, build := range map[string]func(ids []geom.ObjectID) theorem.Object{
		"segment":        func(ids []geom.ObjectID) theorem.Object { return theorem.Segment(ids[0], ids[1]) },
		"line_through":   func(ids []geom.ObjectID) theorem.Object { return theorem.LineThrough(ids[0], ids[1]) },
		"circle_through": func(ids []geom.ObjectID) theorem.Object { return theorem.CircleThrough(ids[0], ids[1], ids[2]) },
	} {
		display := strings.ReplaceAll(builtin, "_", "-")
		arity := 2
		if builtin == "circle_through" {
			arity = 3
		}
		env.AddFunction(builtin, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != arity {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly %d points, got %d", display, arity, len(args))
			}
			ids := make([]geom.ObjectID, arity)
			for i, arg := range args {
				id, err := lookupPoint(p, arg)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", display, err)
				}
				ids[i] = id
			}
			return &sexpTheoremObject{obj: build(ids)}, nil
		})
	}

	// (theorem :collinear-points "A" "M" "B")
	env.AddFunction("theorem", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("theorem requires a type")
		}
		typeName, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("theorem: type: %w", err)
		}
		typ, err := theorem.ParseType(typeName)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("theorem: %w", err)
		}
		objs := make([]theorem.Object, 0, len(args)-1)
		for i, arg := range args[1:] {
			o, err := toTheoremObject(p, arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("theorem %s: object %d: %w", typ, i+1, err)
			}
			objs = append(objs, o)
		}
		t := theorem.New(typ, objs...)
		if err := t.Check(); err != nil {
			return zygo.SexpNull, fmt.Errorf("theorem: %w", err)
		}
		return &sexpTheorem{thm: t}, nil
	})

	// (fact T...), (trivial T...), (assume T...), (target T...)
	for builtin, dst := range map[string]*[]theorem.Theorem{
		"fact":    &p.Facts,
		"trivial": &p.Trivial,
		"assume":  &p.Assumed,
		"target":  &p.Targets,
	} {
		env.AddFunction(builtin, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) == 0 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least one theorem", builtin)
			}
			for i, arg := range args {
				t, err := toTheorem(arg)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: argument %d: %w", builtin, i+1, err)
				}
				*dst = append(*dst, t)
			}
			return zygo.SexpNull, nil
		})
	}
}
