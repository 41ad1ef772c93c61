// Package simulate implements the ternary (3-valued) counter-example
// simulator of spec §4.8: it replays a per-frame input trace over a
// netlist's up-order, verifying a declared property output against the
// stated value at the stated frame, and supports incremental
// commit/undo replay around a single flipped bit.
package simulate

import (
	"fmt"

	"github.com/rawblock/zzcore/internal/gig"
	"github.com/rawblock/zzcore/pkg/lit"
)

// Tri is the three-valued algebra {0, 1, X} used by the simulator.
type Tri uint8

const (
	TriX Tri = iota
	Tri0
	Tri1
)

func (t Tri) String() string {
	switch t {
	case Tri0:
		return "0"
	case Tri1:
		return "1"
	default:
		return "X"
	}
}

// Defined reports whether t carries a known (non-X) value.
func (t Tri) Defined() bool { return t != TriX }

// Bool converts a defined Tri to a Go bool; callers must check Defined
// first, as TriX converts to false.
func (t Tri) Bool() bool { return t == Tri1 }

// TriOf lifts a Go bool to a defined Tri.
func TriOf(b bool) Tri {
	if b {
		return Tri1
	}
	return Tri0
}

// XorSign applies a literal's sign to a Tri value: NOT under Kleene logic
// (NOT X = X).
func (t Tri) XorSign(sign bool) Tri {
	if !sign || t == TriX {
		return t
	}
	if t == Tri0 {
		return Tri1
	}
	return Tri0
}

// triEval evaluates an arbitrary boolean function fn over inputs that may
// carry TriX by brute-force case-splitting every X input across both its
// 0 and 1 corners (the "hi/lo lattice interpretation" of spec §4.8): the
// result is defined only if every consistent corner agrees, and X
// otherwise. This is the general form of the hi/lo rule spec.md states
// specifically for Npn4's 16-bit table; the same rule is correct for
// And, Xor, Mux, Maj, and the Lut4/Lut6 truth tables, so one routine
// serves all of them.
func triEval(inputs []Tri, fn func(bits uint) bool) Tri {
	var sawTrue, sawFalse bool
	var rec func(idx int, acc uint)
	rec = func(idx int, acc uint) {
		if sawTrue && sawFalse {
			return
		}
		if idx == len(inputs) {
			if fn(acc) {
				sawTrue = true
			} else {
				sawFalse = true
			}
			return
		}
		switch inputs[idx] {
		case Tri1:
			rec(idx+1, acc|(1<<uint(idx)))
		case Tri0:
			rec(idx+1, acc)
		default:
			rec(idx+1, acc)
			rec(idx+1, acc|(1<<uint(idx)))
		}
	}
	rec(0, 0)
	switch {
	case sawTrue && sawFalse:
		return TriX
	case sawTrue:
		return Tri1
	default:
		return Tri0
	}
}

func andTable(bits uint) bool { return bits&1 != 0 && bits&2 != 0 }
func xorTable(bits uint) bool { return (bits&1 != 0) != (bits&2 != 0) }
func muxTable(bits uint) bool {
	sel, d1, d0 := bits&1 != 0, bits&2 != 0, bits&4 != 0
	if sel {
		return d1
	}
	return d0
}
func majTable(bits uint) bool {
	n := 0
	for i := 0; i < 3; i++ {
		if bits&(1<<uint(i)) != 0 {
			n++
		}
	}
	return n >= 2
}

// Frame is one simulation step's externally supplied inputs: PI values
// keyed by each PI gate's stable "number" attribute, and — for frame 0
// only — flop initial values keyed by each Flop's number.
type Frame struct {
	PI       map[int32]Tri
	FlopInit map[int32]Tri
}

// Simulator replays a per-frame trace over netlist n's up-order.
type Simulator struct {
	n    *gig.Netlist
	topo []lit.Lit

	piByNumber  map[int32]lit.Lit
	flopByNum   map[int32]lit.Lit

	cur  []Tri // current frame's per-id values
	prev []Tri // previous frame's per-id values (flop propagation source)
}

// New builds a simulator over n, computing its up-order once (the
// netlist's structure must not change across the simulator's lifetime;
// build a fresh Simulator after any structural edit).
func New(n *gig.Netlist) *Simulator {
	s := &Simulator{n: n, piByNumber: make(map[int32]lit.Lit), flopByNum: make(map[int32]lit.Lit)}
	s.topo = n.TopoAll()
	s.cur = make([]Tri, n.NumIds())
	s.prev = make([]Tri, n.NumIds())
	for _, w := range n.IterType(gig.GatePI) {
		s.piByNumber[n.Number(w)] = w
	}
	for _, w := range n.IterType(gig.GateFlop) {
		s.flopByNum[n.Number(w)] = w
	}
	return s
}

func (s *Simulator) valAt(vals []Tri, w lit.Lit) Tri {
	if w.IsNull() {
		return TriX
	}
	return vals[w.Id()].XorSign(w.Sign())
}

// Run propagates every frame in order, frame 0 taking flop values from
// Frame.FlopInit and every later frame propagating the flop's own
// combinational input from the previous frame, and returns a snapshot
// (per-id Tri values) for each frame.
func (s *Simulator) Run(frames []Frame) []*Snapshot {
	out := make([]*Snapshot, len(frames))
	for d, f := range frames {
		s.cur[lit.IdConst] = Tri0 // the topo order omits Const, so set it here
		for num, w := range s.piByNumber {
			v, ok := f.PI[num]
			if !ok {
				v = TriX
			}
			s.cur[w.Id()] = v
		}
		for num, w := range s.flopByNum {
			if d == 0 {
				v, ok := f.FlopInit[num]
				if !ok {
					v = TriX
				}
				s.cur[w.Id()] = v
			} else {
				finID := s.n.Fanin(w, 0)
				s.cur[w.Id()] = s.valAt(s.prev, finID)
			}
		}
		for _, w := range s.topo {
			if s.n.TypeOf(w) == gig.GatePI || s.n.TypeOf(w) == gig.GateFlop {
				continue
			}
			s.cur[w.Id()] = s.evalGate(s.cur, w)
		}
		snap := &Snapshot{vals: append([]Tri(nil), s.cur...)}
		out[d] = snap
		s.prev, s.cur = append([]Tri(nil), s.cur...), s.prev
	}
	return out
}

func (s *Simulator) evalGate(vals []Tri, w lit.Lit) Tri {
	n := s.n
	switch n.TypeOf(w) {
	case gig.GateConst:
		return Tri0 // constant gate id; sign applied by caller distinguishes 0/1
	case gig.GateBuf, gig.GatePO, gig.GateSO, gig.GateSeq:
		return s.valAt(vals, n.Fanin(w, 0))
	case gig.GateNot:
		return s.valAt(vals, n.Fanin(w, 0)).XorSign(true)
	case gig.GateAnd:
		a := s.valAt(vals, n.Fanin(w, 0))
		b := s.valAt(vals, n.Fanin(w, 1))
		return triEval([]Tri{a, b}, andTable)
	case gig.GateXor:
		a := s.valAt(vals, n.Fanin(w, 0))
		b := s.valAt(vals, n.Fanin(w, 1))
		return triEval([]Tri{a, b}, xorTable)
	case gig.GateEquiv:
		a := s.valAt(vals, n.Fanin(w, 0))
		b := s.valAt(vals, n.Fanin(w, 1))
		return triEval([]Tri{a, b}, xorTable).XorSign(true)
	case gig.GateMux:
		sel := s.valAt(vals, n.Fanin(w, 0))
		d1 := s.valAt(vals, n.Fanin(w, 1))
		d0 := s.valAt(vals, n.Fanin(w, 2))
		return triEval([]Tri{sel, d1, d0}, muxTable)
	case gig.GateMaj:
		a := s.valAt(vals, n.Fanin(w, 0))
		b := s.valAt(vals, n.Fanin(w, 1))
		c := s.valAt(vals, n.Fanin(w, 2))
		return triEval([]Tri{a, b, c}, majTable)
	case gig.GateConj:
		res := Tri1
		for _, fi := range n.Fanins(w) {
			res = triEval([]Tri{res, s.valAt(vals, fi)}, andTable)
		}
		return res
	case gig.GateOr, gig.GateDisj:
		// De Morgan: OR(a,b) = NOT(AND(NOT a, NOT b)).
		res := Tri0
		for _, fi := range n.Fanins(w) {
			a, b := res.XorSign(true), s.valAt(vals, fi).XorSign(true)
			res = triEval([]Tri{a, b}, andTable).XorSign(true)
		}
		return res
	case gig.GateLut4:
		ins := make([]Tri, 4)
		for i := range ins {
			ins[i] = s.valAt(vals, n.Fanin(w, i))
		}
		ftb := n.Ftb4(w)
		return triEval(ins, func(bits uint) bool { return (ftb>>bits)&1 != 0 })
	case gig.GateLut6:
		ins := make([]Tri, 6)
		for i := range ins {
			ins[i] = s.valAt(vals, n.Fanin(w, i))
		}
		ftb := n.Ftb6(w)
		return triEval(ins, func(bits uint) bool { return (ftb>>bits)&1 != 0 })
	case gig.GateNpn4, gig.GateUif:
		// No NPN4 class table or uninterpreted-function semantics in this
		// core (spec.md §1 Non-goals); X is the only sound answer.
		return TriX
	default:
		return TriX
	}
}

// Snapshot is one frame's per-gate value vector, keyed by wire id.
type Snapshot struct {
	vals []Tri
}

// Value returns the simulated value of wire w in this snapshot.
func (snap *Snapshot) Value(w lit.Lit) Tri {
	if int(w.Id()) >= len(snap.vals) {
		return TriX
	}
	return snap.vals[w.Id()].XorSign(w.Sign())
}

// CheckProperty reports whether the property output po evaluates to want
// at the given frame's snapshot, per spec §4.8's stated purpose ("verify
// that a declared property-output evaluates to the stated value at the
// stated frame").
func CheckProperty(snapshots []*Snapshot, frame int, po lit.Lit, want Tri) (bool, error) {
	if frame < 0 || frame >= len(snapshots) {
		return false, fmt.Errorf("simulate: frame %d out of range [0,%d)", frame, len(snapshots))
	}
	got := snapshots[frame].Value(po)
	return got == want, nil
}

// ShadowReplay supports the incremental interface of §4.8:
// Propagate(one_change)/Commit/Undo around a single flipped bit, backed by
// a per-gate before-value stack. It operates on one frame's worth of
// already-simulated values (typically the last Snapshot of a Run), not a
// full multi-frame trace, grounded in the teacher's shadow-evaluator
// begin/end bracketing around a single comparison pass
// (internal/shadow/evaluator.go), generalized here from "one evaluation"
// to "one incremental re-simulation".
type ShadowReplay struct {
	s      *Simulator
	vals   []Tri
	before []beforeEntry
}

type beforeEntry struct {
	id  uint32
	val Tri
}

// NewShadowReplay starts an incremental replay session seeded from base.
func NewShadowReplay(s *Simulator, base *Snapshot) *ShadowReplay {
	return &ShadowReplay{s: s, vals: append([]Tri(nil), base.vals...)}
}

// Propagate flips wire w's value to v and re-evaluates every gate in
// topological order whose value actually changes as a result, recording
// each touched gate's prior value on the before-value stack so Undo can
// restore it.
func (r *ShadowReplay) Propagate(w lit.Lit, v Tri) {
	id := w.Id()
	nv := v.XorSign(w.Sign())
	if r.vals[id] == nv {
		return
	}
	r.before = append(r.before, beforeEntry{id: id, val: r.vals[id]})
	r.vals[id] = nv
	for _, g := range r.s.topo {
		if r.s.n.TypeOf(g) == gig.GatePI || r.s.n.TypeOf(g) == gig.GateFlop {
			continue
		}
		nv := r.s.evalGate(r.vals, g)
		if nv != r.vals[g.Id()] {
			r.before = append(r.before, beforeEntry{id: g.Id(), val: r.vals[g.Id()]})
			r.vals[g.Id()] = nv
		}
	}
}

// Commit discards the before-value stack, keeping the flipped state as the
// new baseline.
func (r *ShadowReplay) Commit() { r.before = r.before[:0] }

// Undo restores every value touched since the last Commit (or session
// start), in reverse order.
func (r *ShadowReplay) Undo() {
	for i := len(r.before) - 1; i >= 0; i-- {
		e := r.before[i]
		r.vals[e.id] = e.val
	}
	r.before = r.before[:0]
}

// Value returns the replay session's current value for w.
func (r *ShadowReplay) Value(w lit.Lit) Tri { return r.vals[w.Id()].XorSign(w.Sign()) }
