package gig

import "github.com/rawblock/zzcore/pkg/lit"

// dedupeUF is a weighted union-find with path compression, adapted from the
// teacher's heuristics.ClusterEngine (Common-Input-Ownership address
// clustering) onto structural-equivalence classes instead of addresses:
// two gates merge when they carry the same canonical (type, fanin) key,
// exactly the invariant the Strash gob already maintains incrementally.
// Dedupe gives free-form-mode netlists (no Strash attached, so structural
// duplicates can arise from direct Add calls) a one-shot equivalent of that
// invariant.
type dedupeUF struct {
	parent map[uint32]uint32
	rank   map[uint32]int
}

func newDedupeUF() *dedupeUF {
	return &dedupeUF{parent: make(map[uint32]uint32), rank: make(map[uint32]int)}
}

func (u *dedupeUF) find(x uint32) uint32 {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		return x
	}
	if u.parent[x] != x {
		u.parent[x] = u.find(u.parent[x])
	}
	return u.parent[x]
}

func (u *dedupeUF) union(a, b uint32) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}

// Dedupe scans every And, Xor, Mux and Maj gate (Lut4 gates are not
// scanned) for duplicate canonical fanin
// tuples and merges duplicates onto a single representative (the
// lowest-numbered id in each class), redirecting fanouts via the
// substitute listener event and removing the redundant gates. Returns the
// number of gates removed.
func (n *Netlist) Dedupe() int {
	uf := newDedupeUF()
	seen := make(map[strashKey]uint32)

	for _, t := range []GateType{GateAnd, GateXor, GateMux, GateMaj} {
		for _, w := range n.IterType(t) {
			k := canonicalKey(n, t, w)
			if rep, ok := seen[k]; ok {
				uf.union(rep, w.Id())
			} else {
				seen[k] = w.Id()
			}
		}
	}

	groups := flattenGroups(uf)
	subst := make(map[uint32]lit.Lit, len(groups))
	for id, root := range groups {
		if id != root {
			subst[id] = lit.Mk(root, false)
		}
	}
	if len(subst) == 0 {
		return 0
	}

	// Redirect every surviving gate's fanins away from a to-be-removed id
	// before removing it, so no dangling reference remains.
	for _, w := range n.All() {
		g := &n.gates[w.Id()]
		for i := 0; i < g.Arity(); i++ {
			child := n.fanin(g, i)
			if child.IsNull() {
				continue
			}
			if rep, ok := subst[child.Id()]; ok {
				nw := rep.XorSign(child.Sign())
				if g.external {
					n.arena[g.finOff+int32(i)] = nw
				} else {
					g.inlineFanin[i] = nw
				}
			}
		}
	}

	removed := 0
	for id, rep := range subst {
		w := lit.Mk(id, false)
		n.notify(Event{Kind: EvSubstitute, Wire: w, Subst: rep})
		if err := n.Remove(w, false); err == nil {
			removed++
		}
	}
	return removed
}

func canonicalKey(n *Netlist, t GateType, w lit.Lit) strashKey {
	fins := n.Fanins(w)
	switch t {
	case GateAnd, GateXor:
		a, b := fins[0], fins[1]
		if lit.Less(b, a) {
			a, b = b, a
		}
		return strashKey{typ: t, a: a, b: b}
	case GateMaj:
		arr := []lit.Lit{fins[0], fins[1], fins[2]}
		for i := 1; i < len(arr); i++ {
			for j := i; j > 0 && lit.Less(arr[j], arr[j-1]); j-- {
				arr[j], arr[j-1] = arr[j-1], arr[j]
			}
		}
		return strashKey{typ: t, a: arr[0], b: arr[1], c: arr[2]}
	default: // Mux: not commutative, keep pin order
		return strashKey{typ: t, a: fins[0], b: fins[1], c: fins[2]}
	}
}

func flattenGroups(u *dedupeUF) map[uint32]uint32 {
	out := make(map[uint32]uint32, len(u.parent))
	for id := range u.parent {
		out[id] = u.find(id)
	}
	return out
}
