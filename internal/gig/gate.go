package gig

import "github.com/rawblock/zzcore/pkg/lit"

const inlineFanins = 3

// attr holds the type-dependent attribute. Only one
// field is meaningful at a time, selected by the gate's AttrKind.
type attr struct {
	number   int32  // PI/PO/Flop stable external identity
	ftb4     uint16 // Lut4 truth table
	ftb6Idx  uint32 // index into the netlist's out-of-band 64-bit ftb6 table
	npn4Cls  uint32 // Npn4 equivalence-class index
	memoryID uint32 // Uif/memory descriptor id
}

// Gate is one node of the GIG. Gates with at most 3 fanins (fixed or
// dynamic arity alike) use inlineFanin; gates with more allocate from the
// netlist's fanin arena (Netlist.arena) and record offset/length here instead.
type Gate struct {
	typ GateType

	// Inline storage, valid when !external.
	inlineFanin [inlineFanins]lit.Lit
	ninline     uint8

	// External storage, valid when external.
	external bool
	finOff   int32
	finLen   int32

	at attr

	// tombstone marks a removed, recyclable slot.
	tombstone bool
}

// Type returns the gate's type, or GateNull for a tombstoned slot.
func (g *Gate) Type() GateType {
	if g.tombstone {
		return GateNull
	}
	return g.typ
}

// Arity returns the number of fanin pins currently stored on g.
func (g *Gate) Arity() int {
	if g.external {
		return int(g.finLen)
	}
	return int(g.ninline)
}

// fanin reads pin i directly from inline storage or via the netlist arena.
func (n *Netlist) fanin(g *Gate, i int) lit.Lit {
	if i < 0 || i >= g.Arity() {
		return lit.Nil
	}
	if g.external {
		return n.arena[g.finOff+int32(i)]
	}
	return g.inlineFanin[i]
}

// setFanins stores fins on g, choosing inline or external (arena-backed)
// storage based on count.
func (n *Netlist) setFanins(g *Gate, fins []lit.Lit) {
	if len(fins) <= inlineFanins {
		g.external = false
		g.ninline = uint8(len(fins))
		for i, f := range fins {
			g.inlineFanin[i] = f
		}
		return
	}
	g.external = true
	g.finOff = int32(len(n.arena))
	g.finLen = int32(len(fins))
	n.arena = append(n.arena, fins...)
}
