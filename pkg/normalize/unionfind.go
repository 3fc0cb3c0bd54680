package normalize

import "github.com/chazu/geoproof/pkg/geom"

// unionFind is a scratch disjoint-set over object handles with path
// compression and union by rank. Elements are remembered in insertion
// order so components come out deterministically.
type unionFind struct {
	parent map[geom.ObjectID]geom.ObjectID
	rank   map[geom.ObjectID]int
	order  []geom.ObjectID
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[geom.ObjectID]geom.ObjectID),
		rank:   make(map[geom.ObjectID]int),
	}
}

func (uf *unionFind) add(x geom.ObjectID) {
	if _, ok := uf.parent[x]; ok {
		return
	}
	uf.parent[x] = x
	uf.order = append(uf.order, x)
}

func (uf *unionFind) find(x geom.ObjectID) geom.ObjectID {
	p, ok := uf.parent[x]
	if !ok {
		uf.add(x)
		return x
	}
	if p != x {
		uf.parent[x] = uf.find(p)
	}
	return uf.parent[x]
}

// union merges the sets of x and y and reports whether they were disjoint.
func (uf *unionFind) union(x, y geom.ObjectID) bool {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return false
	}
	switch {
	case uf.rank[rx] < uf.rank[ry]:
		uf.parent[rx] = ry
	case uf.rank[rx] > uf.rank[ry]:
		uf.parent[ry] = rx
	default:
		uf.parent[ry] = rx
		uf.rank[rx]++
	}
	return true
}

func (uf *unionFind) connected(x, y geom.ObjectID) bool {
	return uf.find(x) == uf.find(y)
}

// components returns the sets in order of their first inserted member;
// members keep insertion order.
func (uf *unionFind) components() [][]geom.ObjectID {
	index := make(map[geom.ObjectID]int)
	var out [][]geom.ObjectID
	for _, x := range uf.order {
		root := uf.find(x)
		i, ok := index[root]
		if !ok {
			i = len(out)
			index[root] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], x)
	}
	return out
}
