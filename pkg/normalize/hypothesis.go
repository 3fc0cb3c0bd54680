package normalize

import (
	"go.uber.org/zap"

	"github.com/chazu/geoproof/pkg/geom"
)

// IntroduceNewObject adds a hypothetical object as its own normal version.
// Its arguments must be normal versions. It returns false when the object
// is already known.
func (h *Helper) IntroduceNewObject(o *geom.Object) bool {
	if h.IsKnown(o.ID) {
		return false
	}
	for _, id := range o.Dependencies() {
		if !h.IsNormal(id) {
			malformed("IntroduceNewObject", "argument %s of %s is not a normal version", id, o)
		}
	}
	h.addKnown(o.ID)
	h.introduced[o.ID] = true
	h.logger.Debug("object introduced", zap.Stringer("object", o.ID))
	return true
}

// RemoveIntroducedObject removes a hypothetical object, every object equal
// to or built from it, and every proved theorem mentioning a removed
// object. Nothing is removed when the object's class contains an original
// object.
func (h *Helper) RemoveIntroducedObject(id geom.ObjectID) RemovalResult {
	if !h.IsKnown(id) {
		malformed("RemoveIntroducedObject", "object %s is unknown", id)
	}
	if h.hasOriginal(h.classes[h.normal[id]]) {
		return RemovalResult{Kept: true}
	}

	removed := make(map[geom.ObjectID]bool)
	for _, m := range h.classes[h.normal[id]] {
		removed[m] = true
	}
	// Every pass removes at least one object or stops.
	for changed := true; changed; {
		changed = false
		for _, k := range h.known {
			if removed[k] {
				continue
			}
			n := h.normal[k]
			if h.dependsOn(k, removed) || removed[n] && !h.hasOriginal(h.classes[n]) {
				removed[k] = true
				changed = true
			}
		}
	}

	var res RemovalResult
	var known []geom.ObjectID
	for _, k := range h.known {
		if removed[k] {
			res.Objects = append(res.Objects, k)
			continue
		}
		known = append(known, k)
	}
	h.known = known

	// Rebuild classes, re-picking normal versions that were removed.
	classes := make(map[geom.ObjectID][]geom.ObjectID)
	var order []geom.ObjectID
	for _, k := range h.known {
		n := h.normal[k]
		if _, ok := classes[n]; !ok {
			order = append(order, n)
		}
		classes[n] = append(classes[n], k)
	}
	for _, k := range res.Objects {
		delete(h.normal, k)
		delete(h.introduced, k)
	}
	h.classes = make(map[geom.ObjectID][]geom.ObjectID, len(classes))
	isNormal := func(x geom.ObjectID) bool { return h.normal[x] == x }
	for _, n := range order {
		members := classes[n]
		if !removed[n] {
			h.classes[n] = members
			continue
		}
		best := members[0]
		for _, m := range members[1:] {
			if h.prefer(m, best, isNormal) {
				best = m
			}
		}
		for _, m := range members {
			h.normal[m] = best
		}
		h.classes[best] = members
	}

	for _, t := range h.proved.Items() {
		for _, o := range t.ConfigurationObjects() {
			if removed[o] {
				h.proved.Remove(t)
				res.Theorems = append(res.Theorems, t)
				break
			}
		}
	}
	h.logger.Debug("introduced object removed",
		zap.Stringer("object", id),
		zap.Int("objects", len(res.Objects)),
		zap.Int("theorems", len(res.Theorems)))
	return res
}

func (h *Helper) hasOriginal(members []geom.ObjectID) bool {
	for _, m := range members {
		if h.cfg.IsOriginal(m) {
			return true
		}
	}
	return false
}

func (h *Helper) dependsOn(id geom.ObjectID, removed map[geom.ObjectID]bool) bool {
	for _, d := range h.arena.Get(id).Dependencies() {
		if removed[d] {
			return true
		}
	}
	return false
}
