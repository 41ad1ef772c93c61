// Package clausify translates netlist cones into CNF for the SAT solver
// core: it recognizes the MUX pattern among AND gates, collects chains of ANDs into a
// single k-ary clause set, and memoizes one solver literal per visited
// gate so repeated sinks share their shared sub-cones.
package clausify

import (
	"log"

	"github.com/rawblock/zzcore/internal/gig"
	"github.com/rawblock/zzcore/internal/proof"
	"github.com/rawblock/zzcore/internal/satcore"
	"github.com/rawblock/zzcore/pkg/lit"
)

// KeepFunc reports whether a gate must be Tseitin-encoded on its own
// (fanout > 1, or the caller otherwise wants a named literal for it)
// rather than absorbed into its parent's k-ary conjunction collection.
type KeepFunc func(w lit.Lit) bool

// VisitFunc is invoked once per gate the clausifier assigns a fresh solver
// literal to, in the order visited — the "visited-callback" of §4.5.
type VisitFunc func(w lit.Lit, l lit.Lit)

// Clausifier walks cones of a Netlist and emits CNF into a Solver,
// memoizing one solver literal per gate id so a wire shared by several
// sinks is clausified exactly once.
type Clausifier struct {
	n *gig.Netlist
	s *satcore.Solver

	memo map[uint32]lit.Lit

	simpleTseitin bool
	keep          KeepFunc
	onVisit       VisitFunc
}

// New builds a clausifier over netlist n emitting into solver s.
func New(n *gig.Netlist, s *satcore.Solver) *Clausifier {
	return &Clausifier{n: n, s: s, memo: make(map[uint32]lit.Lit)}
}

// SetSimpleTseitin disables AND pattern recognition (MUX detection and
// k-ary conjunction collection), falling back to a plain binary Tseitin
// encoding for every AND gate.
func (c *Clausifier) SetSimpleTseitin(b bool) { c.simpleTseitin = b }

// SetKeeper installs the "keep" heuristic consulted by conjunction
// collection. The default (nil) keeps any gate referenced elsewhere in the
// memo already (i.e. only ever descends through gates first reached during
// this same collection walk).
func (c *Clausifier) SetKeeper(k KeepFunc) { c.keep = k }

// SetVisitCallback installs the per-gate visited callback.
func (c *Clausifier) SetVisitCallback(f VisitFunc) { c.onVisit = f }

// Clausify walks the cone of every sink, emitting CNF, and returns the
// solver literal for each sink in the same order.
func (c *Clausifier) Clausify(sinks []lit.Lit) []lit.Lit {
	out := make([]lit.Lit, len(sinks))
	for i, w := range sinks {
		out[i] = c.literal(w)
	}
	return out
}

// Literal returns the memoized solver literal for w, clausifying its cone
// first if this is the first time w is reached.
func (c *Clausifier) Literal(w lit.Lit) lit.Lit { return c.literal(w) }

// HasLiteral reports whether w has already been clausified, without
// triggering a new visit.
func (c *Clausifier) HasLiteral(w lit.Lit) (lit.Lit, bool) {
	m, ok := c.memo[w.Id()]
	if !ok {
		return lit.Nil, false
	}
	return m.XorSign(w.Sign()), true
}

// Clear discards the memo map and clears the bound solver in place (per
// §4.5: "the map's lifetime is bound to the clausifier; clearing the map
// is an explicit operation that also clears the solver"), rebinding the
// solver to proof log pf (nil disables proof logging).
func (c *Clausifier) Clear(pf *proof.Log) {
	c.memo = make(map[uint32]lit.Lit)
	c.s.Clear(pf)
}

func (c *Clausifier) freshVar() lit.Lit {
	v, err := c.s.AddVariable()
	if err != nil {
		log.Printf("[clausify] out of solver variables: %v", err)
		return lit.ErrorLit
	}
	return satcore.MkLit(v, false)
}

// literal computes (memoizing) the base, unsigned-id solver literal for
// w.Id(), then applies w's own sign on the way out.
func (c *Clausifier) literal(w lit.Lit) lit.Lit {
	id := w.Id()
	if base, ok := c.memo[id]; ok {
		return base.XorSign(w.Sign())
	}

	var base lit.Lit
	switch {
	case id == lit.IdConst:
		base = c.freshVar()
		c.s.AddClause([]lit.Lit{base.Neg()}) // the unsigned Const id is constant-0
	default:
		base = c.clausifyGate(w)
	}

	c.memo[id] = base
	if c.onVisit != nil {
		c.onVisit(lit.Mk(id, false), base)
	}
	return base.XorSign(w.Sign())
}

func (c *Clausifier) clausifyGate(w lit.Lit) lit.Lit {
	n := c.n
	switch n.TypeOf(w) {
	case gig.GatePI, gig.GateFlop:
		return c.freshVar()

	case gig.GateBuf:
		return c.literal(n.Fanin(w, 0))

	case gig.GateNot:
		return c.literal(n.Fanin(w, 0)).Neg()

	case gig.GatePO, gig.GateSO, gig.GateSeq:
		return c.literal(n.Fanin(w, 0))

	case gig.GateAnd:
		if c.simpleTseitin {
			return c.clausifyAndSimple(w)
		}
		if sel, d1, d0, ok := c.detectMux(w); ok {
			return c.clausifyMuxLit(sel, d1, d0)
		}
		return c.clausifyConjunction(w)

	case gig.GateConj:
		return c.clausifyKAnd(n.Fanins(w))

	case gig.GateOr, gig.GateDisj:
		return c.clausifyKOr(n.Fanins(w))

	case gig.GateXor:
		return c.clausifyXor(n.Fanin(w, 0), n.Fanin(w, 1))

	case gig.GateEquiv:
		a, b := c.literal(n.Fanin(w, 0)), c.literal(n.Fanin(w, 1))
		return c.clausifyXor2Lits(a, b).Neg()

	case gig.GateMux:
		return c.clausifyMuxLit(n.Fanin(w, 0), n.Fanin(w, 1), n.Fanin(w, 2))

	case gig.GateMaj:
		a := c.literal(n.Fanin(w, 0))
		b := c.literal(n.Fanin(w, 1))
		d := c.literal(n.Fanin(w, 2))
		ret := c.freshVar()
		c.tseitinTruthTable([]lit.Lit{a, b, d}, ret, func(bits uint) bool {
			return popcount3(bits) >= 2
		})
		return ret

	case gig.GateLut4:
		ins := make([]lit.Lit, 4)
		for i := range ins {
			ins[i] = c.literal(n.Fanin(w, i))
		}
		ftb := n.Ftb4(w)
		ret := c.freshVar()
		c.tseitinTruthTable(ins, ret, func(bits uint) bool { return (ftb>>bits)&1 != 0 })
		return ret

	case gig.GateLut6:
		ins := make([]lit.Lit, 6)
		for i := range ins {
			ins[i] = c.literal(n.Fanin(w, i))
		}
		ftb := n.Ftb6(w)
		ret := c.freshVar()
		c.tseitinTruthTable(ins, ret, func(bits uint) bool { return (ftb>>bits)&1 != 0 })
		return ret

	case gig.GateNpn4:
		// The NPN4 canonical-function tables are an explicit Non-goal of
		// this core (spec.md §1); without them an Npn4 gate's function
		// cannot be materialized here, so it clausifies as an opaque free
		// variable — sound for any cone that doesn't rely on its internal
		// structure, same treatment as Uif below.
		log.Printf("[clausify] Npn4 gate %s clausified as free variable (no NPN4 table)", w)
		return c.freshVar()

	case gig.GateUif:
		return c.freshVar()

	default:
		log.Printf("[clausify] unsupported gate type %s at %s, using free variable", n.TypeOf(w), w)
		return c.freshVar()
	}
}

// clausifyAndSimple is the plain two-clause-per-input Tseitin encoding used
// when SetSimpleTseitin(true) disables pattern recognition.
func (c *Clausifier) clausifyAndSimple(w lit.Lit) lit.Lit {
	a := c.literal(c.n.Fanin(w, 0))
	b := c.literal(c.n.Fanin(w, 1))
	return c.clausifyAnd2Lits(a, b)
}

func (c *Clausifier) clausifyAnd2Lits(a, b lit.Lit) lit.Lit {
	ret := c.freshVar()
	c.s.AddClause([]lit.Lit{ret.Neg(), a})
	c.s.AddClause([]lit.Lit{ret.Neg(), b})
	c.s.AddClause([]lit.Lit{a.Neg(), b.Neg(), ret})
	return ret
}

// detectMux recognizes the four-granchild AND-of-two-ANDs MUX pattern:
// w = AND(~AND(sel,~d1), ~AND(~sel,~d0)), i.e. w = ~(sel&~d1) & ~(~sel&~d0),
// equivalently w = ite(sel, d1, d0). Returns ok=false if w doesn't match.
func (c *Clausifier) detectMux(w lit.Lit) (sel, d1, d0 lit.Lit, ok bool) {
	n := c.n
	if n.TypeOf(w) != gig.GateAnd {
		return lit.Nil, lit.Nil, lit.Nil, false
	}
	w1, w2 := n.Fanin(w, 0), n.Fanin(w, 1)
	if !w1.Sign() || !w2.Sign() {
		return lit.Nil, lit.Nil, lit.Nil, false
	}
	a1, a2 := w1.Neg(), w2.Neg() // the unnegated AND gates
	if n.TypeOf(a1) != gig.GateAnd || n.TypeOf(a2) != gig.GateAnd {
		return lit.Nil, lit.Nil, lit.Nil, false
	}
	s1, nd1 := n.Fanin(a1, 0), n.Fanin(a1, 1)
	s2, nd0 := n.Fanin(a2, 0), n.Fanin(a2, 1)
	// Try both fanin orderings of each inner AND (commutative).
	for _, p1 := range [][2]lit.Lit{{s1, nd1}, {nd1, s1}} {
		for _, p2 := range [][2]lit.Lit{{s2, nd0}, {nd0, s2}} {
			sA, d1cand := p1[0], p1[1]
			sB, d0cand := p2[0], p2[1]
			if sA.Id() == sB.Id() && sA.Sign() != sB.Sign() {
				return sA, d1cand.Neg(), d0cand.Neg(), true
			}
		}
	}
	return lit.Nil, lit.Nil, lit.Nil, false
}

func (c *Clausifier) clausifyMuxLit(sel, d1, d0 lit.Lit) lit.Lit {
	s := c.literal(sel)
	t := c.literal(d1)
	e := c.literal(d0)
	ret := c.freshVar()
	c.s.AddClause([]lit.Lit{s.Neg(), t.Neg(), ret})
	c.s.AddClause([]lit.Lit{s.Neg(), t, ret.Neg()})
	c.s.AddClause([]lit.Lit{s, e.Neg(), ret})
	c.s.AddClause([]lit.Lit{s, e, ret.Neg()})
	return ret
}

func (c *Clausifier) clausifyXor(a, b lit.Lit) lit.Lit {
	la, lb := c.literal(a), c.literal(b)
	return c.clausifyXor2Lits(la, lb)
}

func (c *Clausifier) clausifyXor2Lits(a, b lit.Lit) lit.Lit {
	ret := c.freshVar()
	c.s.AddClause([]lit.Lit{a.Neg(), b.Neg(), ret.Neg()})
	c.s.AddClause([]lit.Lit{a, b, ret.Neg()})
	c.s.AddClause([]lit.Lit{a, b.Neg(), ret})
	c.s.AddClause([]lit.Lit{a.Neg(), b, ret})
	return ret
}

// defaultKeep keeps a gate only if it has already been memoized (reached
// from some other path), the conservative stand-in for an external
// fanout-count gob: without one attached, "shared" can only be observed as
// "already visited".
func (c *Clausifier) defaultKeep(w lit.Lit) bool {
	if c.keep != nil {
		return c.keep(w)
	}
	_, already := c.memo[w.Id()]
	return already
}

// clausifyConjunction implements the conjunction-collection policy of
// §4.5: walk down through positive-phase AND gates that aren't "kept",
// collecting leaf literals, then emit the k-ary clause set for
// ret <-> AND(l_i): (~ret | l_i) for each i, plus (~l_1 | ... | ~l_n | ret).
// Duplicates are removed; if a literal and its negation both occur, the
// gate is provably false and a single unit clause suffices.
func (c *Clausifier) clausifyConjunction(w lit.Lit) lit.Lit {
	var leaves []lit.Lit
	var collect func(w lit.Lit)
	collect = func(w lit.Lit) {
		if !w.Sign() && c.n.TypeOf(w) == gig.GateAnd && !c.defaultKeep(w) {
			for _, fi := range c.n.Fanins(w) {
				collect(fi)
			}
			return
		}
		leaves = append(leaves, c.literal(w))
	}
	for _, fi := range c.n.Fanins(w) {
		collect(fi)
	}
	return c.kAndFromLits(dedupLits(leaves))
}

// clausifyKAnd converts each of rawFanins (netlist wires) to a solver
// literal and emits ret <-> AND(fanins).
func (c *Clausifier) clausifyKAnd(rawFanins []lit.Lit) lit.Lit {
	lits := make([]lit.Lit, len(rawFanins))
	for i, fi := range rawFanins {
		lits[i] = c.literal(fi)
	}
	return c.kAndFromLits(dedupLits(lits))
}

// kAndFromLits emits ret <-> AND(lits) (lits already solver literals) using
// the per-input plus single big-clause encoding, short-circuiting to a unit
// false clause when a literal and its complement both occur.
func (c *Clausifier) kAndFromLits(lits []lit.Lit) lit.Lit {
	ret := c.freshVar()
	if hasComplementaryPair(lits) {
		c.s.AddClause([]lit.Lit{ret.Neg()})
		return ret
	}
	big := make([]lit.Lit, 0, len(lits)+1)
	for _, l := range lits {
		c.s.AddClause([]lit.Lit{ret.Neg(), l})
		big = append(big, l.Neg())
	}
	big = append(big, ret)
	c.s.AddClause(big)
	return ret
}

// clausifyKOr emits ret <-> OR(fanins), the De Morgan dual of clausifyKAnd.
func (c *Clausifier) clausifyKOr(rawFanins []lit.Lit) lit.Lit {
	lits := make([]lit.Lit, len(rawFanins))
	for i, fi := range rawFanins {
		lits[i] = c.literal(fi)
	}
	lits = dedupLits(lits)

	ret := c.freshVar()
	if hasComplementaryPair(lits) {
		c.s.AddClause([]lit.Lit{ret})
		return ret
	}
	big := make([]lit.Lit, 0, len(lits)+1)
	for _, l := range lits {
		c.s.AddClause([]lit.Lit{l.Neg(), ret})
		big = append(big, l)
	}
	big = append(big, ret.Neg())
	c.s.AddClause(big)
	return ret
}

func dedupLits(in []lit.Lit) []lit.Lit {
	seen := make(map[uint32]bool, len(in))
	out := in[:0]
	for _, l := range in {
		if seen[l.Bits()] {
			continue
		}
		seen[l.Bits()] = true
		out = append(out, l)
	}
	return out
}

func hasComplementaryPair(lits []lit.Lit) bool {
	byID := make(map[uint32]bool, len(lits))
	for _, l := range lits {
		byID[l.Bits()] = true
	}
	for _, l := range lits {
		if byID[l.Neg().Bits()] {
			return true
		}
	}
	return false
}

// tseitinTruthTable emits the general, always-correct Tseitin encoding of
// ret <-> truth(inputs) for an arbitrary boolean function given as a
// brute-force truth table: one forbidding clause per input row that
// disagrees with the claimed ret value. Used for Maj, Lut4, and Lut6,
// where a hand-specialized pattern (as given for MUX/XOR) isn't worth
// maintaining separately from the gate's own stored truth table.
func (c *Clausifier) tseitinTruthTable(inputs []lit.Lit, ret lit.Lit, truth func(bits uint) bool) {
	n := len(inputs)
	rows := uint(1) << uint(n)
	for row := uint(0); row < rows; row++ {
		want := truth(row)
		clause := make([]lit.Lit, 0, n+1)
		for i, in := range inputs {
			if row&(1<<uint(i)) != 0 {
				clause = append(clause, in.Neg())
			} else {
				clause = append(clause, in)
			}
		}
		if want {
			clause = append(clause, ret)
		} else {
			clause = append(clause, ret.Neg())
		}
		c.s.AddClause(clause)
	}
}

func popcount3(bits uint) int {
	n := 0
	for i := 0; i < 3; i++ {
		if bits&(1<<uint(i)) != 0 {
			n++
		}
	}
	return n
}
