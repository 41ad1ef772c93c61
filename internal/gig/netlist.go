// Package gig implements the gate-inverter-graph netlist: gate storage,
// structural hashing, fanout indexes, topological traversal, and the
// gate-object ("gob"/"pob") side-table machinery.
package gig

import (
	"fmt"

	"github.com/rawblock/zzcore/pkg/lit"
)

// EventKind is one of the five netlist event kinds a Listener can subscribe
// to (design note "Listener/observer bus → typed event channel").
type EventKind uint8

const (
	EvAdd EventKind = 1 << iota
	EvRemove
	EvUpdate
	EvCompact
	EvSubstitute

	EvAll = EvAdd | EvRemove | EvUpdate | EvCompact | EvSubstitute
)

// Event is delivered synchronously, in registration order, during the
// mutating call that produced it.
type Event struct {
	Kind    EventKind
	Wire    lit.Lit   // subject gate, for Add/Remove/Update/Substitute
	OldType GateType  // previous type, for Update (change is remove+add)
	Remap   []lit.Lit // old id -> new wire, indexed by old id, for Compact
	Subst   lit.Lit   // replacement literal, for Substitute
}

// Listener receives netlist events it registered for.
type Listener interface {
	Notify(ev Event)
}

type listenerReg struct {
	l    Listener
	mask EventKind
}

// Netlist is the gate store: identifier allocation, fanin storage, and the
// notification bus that keeps gobs (strash, fanouts, ...) consistent.
type Netlist struct {
	mode   Mode
	gates  []Gate      // dense, id-indexed; gates[0] is the reserved null slot
	arena  []lit.Lit   // external fanin pool
	ftb6   []uint64    // out-of-band 6-LUT truth tables
	byType [numGateTypes][]uint32

	freeSlots []uint32 // recycled tombstoned ids

	listeners []listenerReg
	frozen    bool

	gobs map[gobTag]gob
}

// New creates a netlist in the given mode with the reserved identifiers
// (null, error, const, reset) populated at construction.
func New(mode Mode) *Netlist {
	n := &Netlist{mode: mode, gobs: make(map[gobTag]gob)}
	// id 0: null
	n.gates = append(n.gates, Gate{typ: GateNull, tombstone: true})
	// id 1: error
	n.gates = append(n.gates, Gate{typ: GateNull, tombstone: true})
	// id 2: Const (constant-0; constant-1 is lit.Mk(2,true))
	n.gates = append(n.gates, Gate{typ: GateConst})
	n.byType[GateConst] = append(n.byType[GateConst], lit.IdConst)
	// id 3: Seq pseudo-gate standing in for the reset condition
	n.gates = append(n.gates, Gate{typ: GateSeq})
	n.byType[GateSeq] = append(n.byType[GateSeq], lit.IdReset)
	return n
}

// Mode returns the netlist's active mode.
func (n *Netlist) Mode() Mode { return n.mode }

// Const0 / Const1 are the reserved constant literals.
func (n *Netlist) Const0() lit.Lit { return lit.Mk(lit.IdConst, false) }
func (n *Netlist) Const1() lit.Lit { return lit.Mk(lit.IdConst, true) }

// AddListener registers l to receive events in mask, in call order.
func (n *Netlist) AddListener(l Listener, mask EventKind) {
	n.listeners = append(n.listeners, listenerReg{l: l, mask: mask})
}

// RemoveListener deregisters l.
func (n *Netlist) RemoveListener(l Listener) {
	out := n.listeners[:0]
	for _, r := range n.listeners {
		if r.l != l {
			out = append(out, r)
		}
	}
	n.listeners = out
}

func (n *Netlist) notify(ev Event) {
	for _, r := range n.listeners {
		if r.mask&ev.Kind != 0 {
			r.l.Notify(ev)
		}
	}
}

// Freeze forbids structural edits, required before building the static
// fanout index.
func (n *Netlist) Freeze() { n.frozen = true }

// Unfreeze re-enables structural edits.
func (n *Netlist) Unfreeze() { n.frozen = false }

// Frozen reports whether the netlist currently forbids edits.
func (n *Netlist) Frozen() bool { return n.frozen }

func (n *Netlist) allocID() uint32 {
	if k := len(n.freeSlots); k > 0 {
		id := n.freeSlots[k-1]
		n.freeSlots = n.freeSlots[:k-1]
		return id
	}
	id := uint32(len(n.gates))
	n.gates = append(n.gates, Gate{})
	return id
}

// Add allocates a new gate of type t with the given fanins, failing with
// *ModeViolationError if t isn't permitted by the active mode or is
// strash-owned while a Strash gob is attached, and *ArityMismatchError if the fanin count doesn't match
// the type's fixed arity.
func (n *Netlist) Add(t GateType, fanins []lit.Lit, attribute int32) (lit.Lit, error) {
	if n.frozen {
		return lit.Nil, fmt.Errorf("gig: Add on frozen netlist: %w", errFrozen)
	}
	if t.IsStrashOwned() {
		if _, ok := n.gobs[tagStrash]; ok {
			return lit.Nil, &ModeViolationError{Mode: GateType(n.mode), Type: t}
		}
	}
	if !n.mode.Allows(t) {
		return lit.Nil, &ModeViolationError{Mode: GateType(n.mode), Type: t}
	}
	_, arity, _, dynamic := Info(t)
	if !dynamic && len(fanins) != arity {
		return lit.Nil, &ArityMismatchError{Type: t, Want: arity, Got: len(fanins)}
	}

	id := n.allocID()
	g := &n.gates[id]
	g.typ = t
	g.tombstone = false
	g.at = attr{number: attribute}
	n.setFanins(g, fanins)
	n.byType[t] = append(n.byType[t], id)

	w := lit.Mk(id, false)
	n.notify(Event{Kind: EvAdd, Wire: w})
	return w, nil
}

// Change replaces the gate at wire's identifier with a new type/fanin,
// preserving the identifier (equivalent to remove-and-recreate at
// the same identifier"). Listeners see a Remove followed by an Add.
func (n *Netlist) Change(w lit.Lit, newType GateType, fanins []lit.Lit, attribute int32) error {
	if n.frozen {
		return fmt.Errorf("gig: Change on frozen netlist: %w", errFrozen)
	}
	_, arity, _, dynamic := Info(newType)
	if !dynamic && len(fanins) != arity {
		return &ArityMismatchError{Type: newType, Want: arity, Got: len(fanins)}
	}

	id := w.Id()
	g := &n.gates[id]
	oldType := g.typ
	n.removeFromTypeBlock(oldType, id)
	n.notify(Event{Kind: EvRemove, Wire: w, OldType: oldType})

	g.typ = newType
	g.at = attr{number: attribute}
	n.setFanins(g, fanins)
	n.byType[newType] = append(n.byType[newType], id)
	n.notify(Event{Kind: EvAdd, Wire: w})
	return nil
}

// Remove tombstones the gate at w. When debug is true, it refuses
// with *LiveFaninError if fc reports a nonzero fanout count; callers that
// want the release-mode "trust the caller" behavior should remove the
// fanout-count gob first.
func (n *Netlist) Remove(w lit.Lit, debug bool) error {
	if n.frozen {
		return fmt.Errorf("gig: Remove on frozen netlist: %w", errFrozen)
	}
	id := w.Id()
	if debug {
		if fc, ok := n.gobs[tagFanoutCount]; ok {
			if fc.(*FanoutCount).Count(w) > 0 {
				return &LiveFaninError{Wire: w}
			}
		}
	}
	g := &n.gates[id]
	oldType := g.typ
	n.removeFromTypeBlock(oldType, id)
	g.tombstone = true
	n.freeSlots = append(n.freeSlots, id)
	n.notify(Event{Kind: EvRemove, Wire: w, OldType: oldType})
	return nil
}

func (n *Netlist) removeFromTypeBlock(t GateType, id uint32) {
	blk := n.byType[t]
	for i, x := range blk {
		if x == id {
			n.byType[t] = append(blk[:i], blk[i+1:]...)
			return
		}
	}
}

// Fanin returns pin i of the gate at w, applying w's own sign to nothing
// (the sign governs how *this* wire is consumed by its parent, not its
// children).
func (n *Netlist) Fanin(w lit.Lit, i int) lit.Lit {
	return n.fanin(&n.gates[w.Id()], i)
}

// Fanins returns every pin of the gate at w.
func (n *Netlist) Fanins(w lit.Lit) []lit.Lit {
	g := &n.gates[w.Id()]
	out := make([]lit.Lit, g.Arity())
	for i := range out {
		out[i] = n.fanin(g, i)
	}
	return out
}

// TypeOf returns the gate type at w (GateNull if w is a tombstone or the
// null/error reserved ids).
func (n *Netlist) TypeOf(w lit.Lit) GateType {
	if int(w.Id()) >= len(n.gates) {
		return GateNull
	}
	return n.gates[w.Id()].Type()
}

// Number returns the PI/PO/Flop "number" attribute at w.
func (n *Netlist) Number(w lit.Lit) int32 { return n.gates[w.Id()].at.number }

// Ftb4 returns the Lut4 truth table at w.
func (n *Netlist) Ftb4(w lit.Lit) uint16 { return n.gates[w.Id()].at.ftb4 }

// SetFtb4 assigns the Lut4 truth table at w. Callers must not retarget the
// ftb of a gate already installed in a Strash unique table (StrashLut4 keys
// on fanins+ftb together); doing so would desynchronize the table from the
// gate's actual function. StrashLut4 itself only calls this on a
// freshly-allocated gate, before insertion.
func (n *Netlist) SetFtb4(w lit.Lit, ftb uint16) { n.gates[w.Id()].at.ftb4 = ftb }

// Ftb6 returns the Lut6 truth table at w via the out-of-band table.
func (n *Netlist) Ftb6(w lit.Lit) uint64 {
	idx := n.gates[w.Id()].at.ftb6Idx
	if int(idx) >= len(n.ftb6) {
		return 0
	}
	return n.ftb6[idx]
}

// SetFtb6 assigns the Lut6 truth table at w, allocating a new out-of-band
// slot if needed.
func (n *Netlist) SetFtb6(w lit.Lit, ftb uint64) {
	g := &n.gates[w.Id()]
	n.ftb6 = append(n.ftb6, ftb)
	g.at.ftb6Idx = uint32(len(n.ftb6) - 1)
}

// NumIds returns 1 + the highest identifier ever allocated (including
// tombstones); callers iterating "every wire" should bound on this.
func (n *Netlist) NumIds() int { return len(n.gates) }

// IterType returns every live gate of type t, a single linear scan over its
// type-keyed block rather than the whole netlist.
func (n *Netlist) IterType(t GateType) []lit.Lit {
	blk := n.byType[t]
	out := make([]lit.Lit, 0, len(blk))
	for _, id := range blk {
		out = append(out, lit.Mk(id, false))
	}
	return out
}

// All returns every live gate in identifier order, skipping tombstones.
func (n *Netlist) All() []lit.Lit {
	out := make([]lit.Lit, 0, len(n.gates))
	for id := uint32(0); id < uint32(len(n.gates)); id++ {
		if !n.gates[id].tombstone && n.gates[id].typ != GateNull {
			out = append(out, lit.Mk(id, false))
		}
	}
	return out
}
