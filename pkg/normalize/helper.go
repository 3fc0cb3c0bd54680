// Package normalize keeps a canonical normal version for every known
// configuration object and every proved theorem while equalities are
// discovered. Merges are verified before they are committed; the induced
// congruences are closed over every constructed object.
package normalize

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/geoproof/pkg/geom"
	"github.com/chazu/geoproof/pkg/theorem"
)

// Verifier decides whether a theorem holds in the configuration's numeric
// realizations. Implementations must be pure.
type Verifier interface {
	IsTrue(t theorem.Theorem) bool
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(t theorem.Theorem) bool

func (f VerifierFunc) IsTrue(t theorem.Theorem) bool { return f(t) }

// MalformedInputError reports a programming error: a theorem of the wrong
// type, an unknown object, or an object without a normal version. It is
// raised as a panic value.
type MalformedInputError struct {
	Op     string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("normalize: %s: %s", e.Op, e.Reason)
}

func malformed(op, format string, args ...any) {
	panic(&MalformedInputError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// Change records that a class's normal version moved.
type Change struct {
	From geom.ObjectID `json:"from" yaml:"from"`
	To   geom.ObjectID `json:"to" yaml:"to"`
}

// Reformulation is a proved theorem rewritten after a merge, with the
// equalities used by the rewrite.
type Reformulation struct {
	Original   theorem.Theorem
	Normalized theorem.Theorem
	Equalities []theorem.Theorem
}

// EqualityResult is the outcome of MarkProvedEquality.
type EqualityResult struct {
	// Valid is false when verification rejected the equality.
	Valid bool
	// New is false when the objects were already equal.
	New bool
	// Added are objects that became normal versions.
	Added []geom.ObjectID
	// Removed are former normal versions retired by the merge.
	Removed []geom.ObjectID
	Changed []Change
	// Retracted are proved theorems whose normal form changed.
	Retracted    []theorem.Theorem
	Reformulated []Reformulation
	// Congruences are equalities between former and new normal versions,
	// each following from the marked equality.
	Congruences []theorem.Theorem
	// Degenerate are normal versions kept over arguments that are no
	// longer normal because rebuilding them failed, such as the midpoint
	// of two points that were just merged.
	Degenerate []geom.ObjectID
}

// TheoremResult is the outcome of MarkProvedNonequality.
type TheoremResult struct {
	Valid bool
	New   bool
	// Theorem is the normalized form that was recorded.
	Theorem theorem.Theorem
	// Equalities are the rewrite equalities used to normalize.
	Equalities []theorem.Theorem
}

// RemovalResult is the outcome of RemoveIntroducedObject.
type RemovalResult struct {
	// Kept is true when the object coincides with an original object and
	// nothing was removed.
	Kept     bool
	Objects  []geom.ObjectID
	Theorems []theorem.Theorem
}

// Helper is the normalization state of one configuration. It is not safe
// for concurrent use.
type Helper struct {
	cfg      *geom.Configuration
	arena    *geom.Arena
	verifier Verifier
	logger   *zap.Logger

	known      []geom.ObjectID
	normal     map[geom.ObjectID]geom.ObjectID
	classes    map[geom.ObjectID][]geom.ObjectID
	introduced map[geom.ObjectID]bool
	proved     *theorem.Set
}

// New creates a helper in which every original object is its own normal
// version. A nil logger disables logging.
func New(cfg *geom.Configuration, verifier Verifier, logger *zap.Logger) *Helper {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Helper{
		cfg:        cfg,
		arena:      cfg.Arena(),
		verifier:   verifier,
		logger:     logger,
		normal:     make(map[geom.ObjectID]geom.ObjectID),
		classes:    make(map[geom.ObjectID][]geom.ObjectID),
		introduced: make(map[geom.ObjectID]bool),
		proved:     theorem.NewSet(),
	}
	for _, o := range cfg.Objects() {
		h.addKnown(o.ID)
	}
	return h
}

func (h *Helper) addKnown(id geom.ObjectID) {
	h.known = append(h.known, id)
	h.normal[id] = id
	h.classes[id] = []geom.ObjectID{id}
}

// IsKnown reports whether id has a normal version.
func (h *Helper) IsKnown(id geom.ObjectID) bool {
	_, ok := h.normal[id]
	return ok
}

// NormalVersion returns the canonical representative of id's class.
func (h *Helper) NormalVersion(id geom.ObjectID) geom.ObjectID {
	n, ok := h.normal[id]
	if !ok {
		malformed("NormalVersion", "object %s has no normal version", id)
	}
	return n
}

// Class returns the members of id's class in the order they became known.
func (h *Helper) Class(id geom.ObjectID) []geom.ObjectID {
	return append([]geom.ObjectID(nil), h.classes[h.NormalVersion(id)]...)
}

// IsNormal reports whether id is the normal version of its class.
func (h *Helper) IsNormal(id geom.ObjectID) bool {
	n, ok := h.normal[id]
	return ok && n == id
}

// ProvedTheorems returns the recorded normal theorems in insertion order.
func (h *Helper) ProvedTheorems() []theorem.Theorem {
	return h.proved.Items()
}

// IsProved reports whether the normal form of t was recorded.
func (h *Helper) IsProved(t theorem.Theorem) bool {
	nt, _ := h.Normalize(t)
	return h.proved.Has(nt)
}

func (h *Helper) kindOf(id geom.ObjectID) theorem.Kind {
	o := h.arena.Get(id)
	if o == nil {
		malformed("kindOf", "object %s does not exist", id)
	}
	return theorem.KindOf(o.Type)
}

// Normalize rewrites every object of t to its normal version. It returns
// the rewritten theorem and the equalities object = normal version used.
func (h *Helper) Normalize(t theorem.Theorem) (theorem.Theorem, []theorem.Theorem) {
	var used []theorem.Theorem
	seen := make(map[geom.ObjectID]bool)
	nt := t.Remap(func(id geom.ObjectID) geom.ObjectID {
		n := h.NormalVersion(id)
		if n != id && !seen[id] {
			seen[id] = true
			used = append(used, theorem.Equality(h.kindOf(id), id, n))
		}
		return n
	})
	return nt, used
}

// AssumeTheorem records a ground theorem without verification. It returns
// false when the normal form is degenerate or already recorded.
func (h *Helper) AssumeTheorem(t theorem.Theorem) bool {
	h.checkTheorem("AssumeTheorem", t)
	if t.Type == theorem.EqualObjects {
		malformed("AssumeTheorem", "%s is an equality", t)
	}
	nt, _ := h.Normalize(t)
	if nt.IsDegenerate() {
		return false
	}
	return h.proved.Add(nt)
}

// MarkProvedNonequality verifies and records a theorem other than an
// equality.
func (h *Helper) MarkProvedNonequality(t theorem.Theorem) TheoremResult {
	h.checkTheorem("MarkProvedNonequality", t)
	if t.Type == theorem.EqualObjects {
		malformed("MarkProvedNonequality", "%s is an equality", t)
	}
	nt, used := h.Normalize(t)
	if nt.IsDegenerate() {
		return TheoremResult{Theorem: nt}
	}
	if h.proved.Has(nt) {
		return TheoremResult{Valid: true, Theorem: nt, Equalities: used}
	}
	if !h.verifier.IsTrue(t) {
		h.logger.Debug("theorem rejected by verifier", zap.Stringer("theorem", t))
		return TheoremResult{Theorem: nt}
	}
	h.proved.Add(nt)
	return TheoremResult{Valid: true, New: true, Theorem: nt, Equalities: used}
}

func (h *Helper) checkTheorem(op string, t theorem.Theorem) {
	if err := t.Check(); err != nil {
		malformed(op, "%v", err)
	}
	for _, id := range t.ConfigurationObjects() {
		if !h.IsKnown(id) {
			malformed(op, "%s references unknown object %s", t, id)
		}
	}
}

// MarkProvedEquality merges the classes of the two objects of eq.
//
// When exactly one side is known the other becomes an alias of it. When
// both are known with different normal versions the merge is closed under
// congruence, new normal versions are rebuilt, and proved theorems are
// re-normalized. Nothing changes when verification fails.
func (h *Helper) MarkProvedEquality(eq theorem.Theorem) EqualityResult {
	const op = "MarkProvedEquality"
	a, b, ok := eq.EqualityPair()
	if !ok {
		malformed(op, "%s is not an explicit equality", eq)
	}
	if err := eq.Check(); err != nil {
		malformed(op, "%v", err)
	}
	kind := eq.Objects[0].Kind
	for _, id := range []geom.ObjectID{a, b} {
		if h.kindOf(id) != kind {
			malformed(op, "object %s is not a %s", id, kind)
		}
	}

	knownA, knownB := h.IsKnown(a), h.IsKnown(b)
	switch {
	case !knownA && !knownB:
		malformed(op, "neither %s nor %s is known", a, b)
	case knownA != knownB:
		known, alias := a, b
		if knownB {
			known, alias = b, a
		}
		return h.alias(eq, known, alias)
	case h.normal[a] == h.normal[b]:
		return EqualityResult{Valid: true}
	}

	if !h.verifier.IsTrue(eq) {
		h.logger.Debug("equality rejected by verifier", zap.Stringer("equality", eq))
		return EqualityResult{}
	}
	return h.merge(eq, a, b)
}

// alias makes the unknown object alias share the normal version of known.
func (h *Helper) alias(eq theorem.Theorem, known, alias geom.ObjectID) EqualityResult {
	o := h.arena.Get(alias)
	implied := false
	if !o.IsSource() {
		args := make([]geom.Argument, len(o.Args))
		for i, arg := range o.Args {
			for _, id := range arg.Objects() {
				if !h.IsKnown(id) {
					malformed("MarkProvedEquality", "argument %s of %s is unknown", id, alias)
				}
			}
			args[i] = arg.Map(h.NormalVersion)
		}
		if rewritten, ok := h.arena.Find(o.Construction, args); ok && h.IsKnown(rewritten.ID) {
			implied = h.normal[rewritten.ID] == h.normal[known]
		}
	}
	if !implied && !h.verifier.IsTrue(eq) {
		h.logger.Debug("alias rejected by verifier", zap.Stringer("equality", eq))
		return EqualityResult{}
	}
	n := h.normal[known]
	h.known = append(h.known, alias)
	h.normal[alias] = n
	h.classes[n] = append(h.classes[n], alias)
	h.logger.Debug("object aliased",
		zap.Stringer("object", alias),
		zap.Stringer("normal", n),
		zap.Bool("implied", implied))
	return EqualityResult{Valid: true, New: true}
}
