package normalize

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/chazu/geoproof/pkg/geom"
	"github.com/chazu/geoproof/pkg/theorem"
)

// merge performs the congruence closure for a verified equality between
// two classes.
func (h *Helper) merge(eq theorem.Theorem, a, b geom.ObjectID) EqualityResult {
	uf := newUnionFind()
	for _, id := range h.known {
		uf.add(id)
	}
	for _, id := range h.known {
		uf.union(id, h.normal[id])
	}
	uf.union(a, b)
	h.saturate(uf)

	oldNormal := make(map[geom.ObjectID]geom.ObjectID, len(h.normal))
	for id, n := range h.normal {
		oldNormal[id] = n
	}
	wasNormal := func(id geom.ObjectID) bool { return oldNormal[id] == id }

	rebuilt, degenerate := h.rebuild(uf, wasNormal)

	var res EqualityResult
	res.Valid, res.New = true, true
	res.Degenerate = degenerate
	newClasses := make(map[geom.ObjectID][]geom.ObjectID)
	changedFrom := make(map[geom.ObjectID]bool)
	for _, members := range uf.components() {
		n := rebuilt[uf.find(members[0])]
		for _, id := range members {
			if old := oldNormal[id]; old != n && !changedFrom[old] {
				changedFrom[old] = true
				res.Changed = append(res.Changed, Change{From: old, To: n})
			}
			h.normal[id] = n
		}
		if !slices.Contains(members, n) {
			members = append(members, n)
			h.known = append(h.known, n)
			h.normal[n] = n
		}
		newClasses[n] = members
	}
	for _, id := range h.known {
		if _, ok := oldNormal[id]; ok && wasNormal(id) && h.normal[id] != id {
			res.Removed = append(res.Removed, id)
		}
		if h.normal[id] == id && !wasNormal(id) {
			res.Added = append(res.Added, id)
		}
	}
	h.classes = newClasses

	for _, c := range res.Changed {
		cong := theorem.Equality(h.kindOf(c.From), c.From, c.To)
		if cong.Key() != eq.Key() {
			res.Congruences = append(res.Congruences, cong)
		}
	}

	for _, t := range h.proved.Items() {
		nt, used := h.Normalize(t)
		if nt.Key() == t.Key() {
			continue
		}
		h.proved.Remove(t)
		res.Retracted = append(res.Retracted, t)
		if !nt.IsDegenerate() && h.proved.Add(nt) {
			res.Reformulated = append(res.Reformulated, Reformulation{Original: t, Normalized: nt, Equalities: used})
		}
	}

	h.logger.Debug("classes merged",
		zap.Stringer("equality", eq),
		zap.Int("changed", len(res.Changed)),
		zap.Int("added", len(res.Added)),
		zap.Int("removed", len(res.Removed)),
		zap.Int("retracted", len(res.Retracted)),
		zap.Int("degenerate", len(res.Degenerate)))
	return res
}

// saturate closes uf under congruence: two constructed objects whose
// arguments are pairwise in one set join the same set. Every productive
// round merges two sets, so at most one round per known object can be
// productive.
func (h *Helper) saturate(uf *unionFind) {
	var constructed []*geom.Object
	for _, id := range h.known {
		if o := h.arena.Get(id); !o.IsSource() {
			constructed = append(constructed, o)
		}
	}
	limit := len(h.known) + 1
	for round := 0; ; round++ {
		if round > limit {
			panic(fmt.Sprintf("normalize: congruence closure did not converge after %d rounds", limit))
		}
		merged := false
		signatures := make(map[string]geom.ObjectID, len(constructed))
		for _, o := range constructed {
			args := make([]geom.Argument, len(o.Args))
			for i, arg := range o.Args {
				args[i] = arg.Map(uf.find)
			}
			key := geom.StructuralKey(o.Construction, args)
			if prev, ok := signatures[key]; ok {
				if uf.union(prev, o.ID) {
					merged = true
				}
				continue
			}
			signatures[key] = o.ID
		}
		if !merged {
			return
		}
	}
}

// rebuild picks a pre-normal candidate for every set of uf, in dependency
// order, and rebuilds it over the new normal versions of its arguments.
// A set waits while its most preferred member still has unresolved
// arguments. When no set can settle that way, the first set with a ready
// member settles on its best ready member and the strict order resumes.
// It returns the new normal version per set root and the candidates kept
// because their rewritten arguments no longer fit their construction.
func (h *Helper) rebuild(uf *unionFind, wasNormal func(geom.ObjectID) bool) (map[geom.ObjectID]geom.ObjectID, []geom.ObjectID) {
	components := uf.components()
	resolved := make(map[geom.ObjectID]geom.ObjectID, len(components))
	var degenerate []geom.ObjectID
	ready := func(id geom.ObjectID) bool {
		for _, arg := range h.arena.Get(id).Args {
			for _, a := range arg.Objects() {
				if _, ok := resolved[uf.find(a)]; !ok {
					return false
				}
			}
		}
		return true
	}
	settle := func(pending [][]geom.ObjectID, strict bool) [][]geom.ObjectID {
		var next [][]geom.ObjectID
		settled := false
		for _, members := range pending {
			if !strict && settled {
				next = append(next, members)
				continue
			}
			var best, cand geom.ObjectID
			for _, id := range members {
				if best.IsZero() || h.prefer(id, best, wasNormal) {
					best = id
				}
				if ready(id) && (cand.IsZero() || h.prefer(id, cand, wasNormal)) {
					cand = id
				}
			}
			if cand.IsZero() || strict && cand != best {
				next = append(next, members)
				continue
			}
			n, ok := h.rebuildOne(cand, func(id geom.ObjectID) geom.ObjectID {
				return resolved[uf.find(id)]
			})
			if !ok {
				degenerate = append(degenerate, cand)
			}
			resolved[uf.find(cand)] = n
			settled = true
		}
		return next
	}

	pending := components
	for len(pending) > 0 {
		next := settle(pending, true)
		if len(next) == len(pending) {
			next = settle(pending, false)
		}
		if len(next) == len(pending) {
			panic("normalize: no class has a candidate with resolved arguments")
		}
		pending = next
	}
	return resolved, degenerate
}

// prefer orders pre-normal candidates: original objects, then free
// objects, then previous normal versions, then the earliest created.
func (h *Helper) prefer(x, y geom.ObjectID, wasNormal func(geom.ObjectID) bool) bool {
	rank := func(id geom.ObjectID) int {
		r := 0
		if h.cfg.IsOriginal(id) {
			r += 4
		}
		if h.arena.Get(id).IsSource() {
			r += 2
		}
		if wasNormal(id) {
			r++
		}
		return r
	}
	if rx, ry := rank(x), rank(y); rx != ry {
		return rx > ry
	}
	return x < y
}

// rebuildOne rebuilds cand over the normal versions of its arguments. It
// reports false when the rewritten arguments no longer fit the
// construction, for instance a midpoint of two merged points; cand is
// then kept as it is.
func (h *Helper) rebuildOne(cand geom.ObjectID, normalOf func(geom.ObjectID) geom.ObjectID) (geom.ObjectID, bool) {
	o := h.arena.Get(cand)
	if o.IsSource() {
		return cand, true
	}
	args := make([]geom.Argument, len(o.Args))
	for i, arg := range o.Args {
		args[i] = arg.Map(normalOf)
	}
	rebuilt, _, err := h.arena.Construct(o.Construction, args)
	if err != nil {
		h.logger.Debug("candidate kept without rebuild", zap.Stringer("object", cand), zap.Error(err))
		return cand, false
	}
	return rebuilt.ID, true
}
