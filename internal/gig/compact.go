package gig

import "github.com/rawblock/zzcore/pkg/lit"

// Compact rewrites identifiers to a dense range, optionally ordered by
// order (e.g. a topological order), updates every attached gob via Remap,
// and returns the old->new wire table. Every previously-held wire must be
// translated through this table; doing so twice is idempotent (property
// 1): applying the second Compact's identity-shaped remap changes nothing.
func (n *Netlist) Compact(order []lit.Lit) []lit.Lit {
	live := order
	if live == nil {
		live = n.All()
	}

	remap := make([]lit.Lit, len(n.gates))
	newGates := make([]Gate, 0, len(live)+lit.IdReset+1)

	// The reserved ids (null, error, const, reset) keep their slots.
	var newByType [numGateTypes][]uint32
	for id := uint32(0); id <= lit.IdReset; id++ {
		g := n.gates[id]
		newGates = append(newGates, g)
		if !g.tombstone {
			remap[id] = lit.Mk(id, false)
			newByType[g.typ] = append(newByType[g.typ], id)
		}
	}
	for _, w := range live {
		oldID := w.Id()
		if oldID <= lit.IdReset || n.gates[oldID].tombstone {
			continue
		}
		newID := uint32(len(newGates))
		g := n.gates[oldID]
		newGates = append(newGates, g)
		remap[oldID] = lit.Mk(newID, false)
		newByType[g.typ] = append(newByType[g.typ], newID)
	}

	// Rewrite fanins of every surviving gate through remap. External fanins
	// stay in the same arena (offsets unaffected by identifier renumbering);
	// only the identifiers packed into each lit.Lit change.
	for id := uint32(1); id < uint32(len(newGates)); id++ {
		g := &newGates[id]
		for i := 0; i < g.Arity(); i++ {
			old := n.fanin(g, i)
			if old.IsNull() {
				continue
			}
			nw := remapLit(remap, old)
			if g.external {
				n.arena[g.finOff+int32(i)] = nw
			} else {
				g.inlineFanin[i] = nw
			}
		}
	}

	n.gates = newGates
	n.byType = newByType
	n.freeSlots = nil
	n.remapGobs(remap)
	n.notify(Event{Kind: EvCompact, Remap: remap})
	return remap
}
