package gig

import (
	"errors"

	"github.com/rawblock/zzcore/pkg/lit"
)

var errFrozen = errors.New("netlist is frozen")

// gobTag is the fixed registry key a gate-object is stored under: a
// sparse array of named attached objects keyed by a fixed
// registry of tags").
type gobTag int

const (
	tagStrash gobTag = iota
	tagFanouts
	tagFanoutCount
	tagDynFanouts
	tagTopoOrder
	tagFlopInit
	tagProperties
	tagConstraints
	tagFairProperties
	tagFairConstraints
	tagInitBad
	tagMemoryInfo
)

// gob is the common lifecycle every attached object implements: it is
// created on demand, persists until explicitly removed, and must survive
// compaction via Remap.
type gob interface {
	// Remap rewrites any identifier this gob holds using the old->new wire
	// table produced by Netlist.Compact. Entries for removed gates carry
	// lit.Nil in remap.
	Remap(remap []lit.Lit)
}

// Attach installs g under tag, replacing any existing object there.
func (n *Netlist) attach(tag gobTag, g gob) { n.gobs[tag] = g }

// Detach removes the gob at tag, if any.
func (n *Netlist) detach(tag gobTag) { delete(n.gobs, tag) }

func (n *Netlist) remapGobs(remap []lit.Lit) {
	for _, g := range n.gobs {
		g.Remap(remap)
	}
}

// --- FlopInit ---------------------------------------------------------

// FlopValue is the tri-plus-conflict lattice used for flop initial values.
type FlopValue uint8

const (
	FlopUnknown FlopValue = iota
	Flop0
	Flop1
	FlopConflict
)

// FlopInit maps a flop wire to its declared initial value.
type FlopInit struct {
	vals map[uint32]FlopValue
}

// NewFlopInit attaches a fresh FlopInit gob to n.
func (n *Netlist) NewFlopInit() *FlopInit {
	fi := &FlopInit{vals: make(map[uint32]FlopValue)}
	n.attach(tagFlopInit, fi)
	return fi
}

// FlopInitGob returns the attached FlopInit gob, or nil if none is attached.
func (n *Netlist) FlopInitGob() *FlopInit {
	g, ok := n.gobs[tagFlopInit]
	if !ok {
		return nil
	}
	return g.(*FlopInit)
}

// Set records the initial value of flop w, merging to FlopConflict if a
// different value was already recorded.
func (fi *FlopInit) Set(w lit.Lit, v FlopValue) {
	if old, ok := fi.vals[w.Id()]; ok && old != FlopUnknown && old != v {
		fi.vals[w.Id()] = FlopConflict
		return
	}
	fi.vals[w.Id()] = v
}

// Get returns the recorded initial value of flop w.
func (fi *FlopInit) Get(w lit.Lit) FlopValue {
	return fi.vals[w.Id()]
}

func (fi *FlopInit) Remap(remap []lit.Lit) {
	next := make(map[uint32]FlopValue, len(fi.vals))
	for id, v := range fi.vals {
		if int(id) < len(remap) && !remap[id].IsNull() {
			next[remap[id].Id()] = v
		}
	}
	fi.vals = next
}

// --- designated wire sets: Properties/Constraints/FairProperties/------
// --- FairConstraints/InitBad -------------------------------------------

// WireSet is a named, ordered set of wires used by verification engines
// external to the core (properties, constraints, fair-properties,
// fair-constraints, init-bad).
type WireSet struct {
	order []lit.Lit
	index map[uint32]int
}

func newWireSet() *WireSet {
	return &WireSet{index: make(map[uint32]int)}
}

// Add appends w if not already present.
func (ws *WireSet) Add(w lit.Lit) {
	if _, ok := ws.index[w.Id()]; ok {
		return
	}
	ws.index[w.Id()] = len(ws.order)
	ws.order = append(ws.order, w)
}

// Wires returns the set's members in insertion order.
func (ws *WireSet) Wires() []lit.Lit { return ws.order }

func (ws *WireSet) Remap(remap []lit.Lit) {
	next := newWireSet()
	for _, w := range ws.order {
		if int(w.Id()) < len(remap) && !remap[w.Id()].IsNull() {
			next.Add(remap[w.Id()].XorSign(w.Sign()))
		}
	}
	*ws = *next
}

func (n *Netlist) wireSet(tag gobTag) *WireSet {
	g, ok := n.gobs[tag]
	if !ok {
		ws := newWireSet()
		n.attach(tag, ws)
		return ws
	}
	return g.(*WireSet)
}

func (n *Netlist) Properties() *WireSet     { return n.wireSet(tagProperties) }
func (n *Netlist) Constraints() *WireSet    { return n.wireSet(tagConstraints) }
func (n *Netlist) FairProperties() *WireSet { return n.wireSet(tagFairProperties) }
func (n *Netlist) FairConstraints() *WireSet {
	return n.wireSet(tagFairConstraints)
}
func (n *Netlist) InitBad() *WireSet { return n.wireSet(tagInitBad) }

// ClearConstraints removes the constraints and fair-constraints gobs
// entirely. Exposed for the ZZ_IGNORE_CONSTRAINTS startup behavior
// described below and grounded in the reference Main_gig.cc sources.
func (n *Netlist) ClearConstraints() {
	n.detach(tagConstraints)
	n.detach(tagFairConstraints)
}

// --- MemoryInfo ---------------------------------------------------------

// MemoryDescriptor describes a Uif memory gate's shape.
type MemoryDescriptor struct {
	AddrWidth, DataWidth int
}

// MemoryInfo maps memory-id (Gate.at.memoryID) to its descriptor.
type MemoryInfo struct {
	descs map[uint32]MemoryDescriptor
}

func (n *Netlist) MemoryInfoGob() *MemoryInfo {
	g, ok := n.gobs[tagMemoryInfo]
	if !ok {
		mi := &MemoryInfo{descs: make(map[uint32]MemoryDescriptor)}
		n.attach(tagMemoryInfo, mi)
		return mi
	}
	return g.(*MemoryInfo)
}

func (mi *MemoryInfo) Set(id uint32, d MemoryDescriptor) { mi.descs[id] = d }
func (mi *MemoryInfo) Get(id uint32) MemoryDescriptor    { return mi.descs[id] }

func (mi *MemoryInfo) Remap(remap []lit.Lit) {
	next := make(map[uint32]MemoryDescriptor, len(mi.descs))
	for id, d := range mi.descs {
		if int(id) < len(remap) && !remap[id].IsNull() {
			next[remap[id].Id()] = d
		}
	}
	mi.descs = next
}
