package satcore

import (
	"math/rand"
	"sort"

	"github.com/rawblock/zzcore/internal/proof"
	"github.com/rawblock/zzcore/pkg/lit"
)

// watcher is one entry of a per-literal watch list: the watched clause plus
// a blocking literal used to short-circuit an already-satisfied clause
// without touching the clause body.
type watcher struct {
	cref    ClauseRef
	blocker lit.Lit
}

// Solver is a single proof-logging CDCL core. It is not safe for concurrent
// use; the only suspension point is the timeout callback installed with
// SetTimeoutCB.
type Solver struct {
	ok bool

	db *clauseDB

	watches map[uint32][]watcher

	assigns    []LBool
	varLevel   []int
	varReason  []ClauseRef
	activity   []float64
	polarity   []bool
	freeVars   []Var
	nextVar    Var

	trail    []lit.Lit
	trailLim []int
	qhead    int

	order *varHeap

	varDecay, claDecay float64
	varInc, claInc     float64

	randVarFreq float64
	rng         *rand.Rand

	pf           *proof.Log
	proofEnabled bool
	emptyClause  proof.ClauseID
	hasEmpty     bool
	unitProof    map[Var]proof.ClauseID

	vt                 uint64
	timeoutQuantum     uint64
	timeoutCB          func(delta uint64) bool
	lastTimeoutVT      uint64
	conflictsThisSolve int

	conflictLimit int

	assumptions    []lit.Lit
	assumeIdx      int
	conflictAssumps []lit.Lit

	restartLog []int
}

// New creates a solver. If pf is non-nil, root clauses and learnt clauses
// are logged to it (proof-logging mode); otherwise clause deletion is
// immediate with no proof bookkeeping.
func New(pf *proof.Log) *Solver {
	s := &Solver{}
	s.Clear(pf)
	return s
}

// Clear resets the solver to a fresh, empty state bound to pf (which may be
// nil to disable proof logging), discarding every clause, assignment, and
// variable. Per spec §7's error-propagation policy, a solver left unusable
// by resource exhaustion (ErrUnusable) is only recoverable through Clear;
// it is also the solver-side half of the clausifier's "clearing the memo
// map is an explicit operation that also clears the solver" contract.
func (s *Solver) Clear(pf *proof.Log) {
	*s = Solver{
		db:             newClauseDB(),
		watches:        make(map[uint32][]watcher),
		varDecay:       0.95,
		claDecay:       0.999,
		varInc:         1,
		claInc:         1,
		randVarFreq:    0.02,
		rng:            rand.New(rand.NewSource(1)),
		pf:             pf,
		proofEnabled:   pf != nil,
		timeoutQuantum: 100000,
		ok:             true,
		unitProof:      make(map[Var]proof.ClauseID),
	}
	s.order = newVarHeap(func(v Var) float64 { return s.activity[v] })

	// Reserve var 0 (null, never assigned) and var 1 (tied true at level 0).
	s.growTo(2)
	s.nextVar = 2
	s.assigns[VarTrue] = LTrue
	s.varLevel[VarTrue] = 0
	s.varReason[VarTrue] = nilRef
	s.trail = append(s.trail, MkLit(VarTrue, false))
	if s.proofEnabled {
		id := s.pf.AddRoot([]lit.Lit{MkLit(VarTrue, false)})
		_ = id
	}
}

// ClearClauses resets all clauses, assignments, and activities (rebinding
// proof logging to pf) while keeping the variable pool — nextVar and the
// free-variable list — intact, the MST trace's "clear(1)" verb (spec §6.4);
// "clear(0)" is the full reset already provided by Clear.
func (s *Solver) ClearClauses(pf *proof.Log) {
	nv, fv := s.nextVar, append([]Var(nil), s.freeVars...)
	s.Clear(pf)
	s.growTo(int(nv))
	s.nextVar = nv
	s.freeVars = fv
	free := make(map[Var]bool, len(fv))
	for _, v := range fv {
		free[v] = true
	}
	for v := Var(2); v < nv; v++ {
		if !free[v] {
			s.order.Insert(v)
		}
	}
}

func (s *Solver) growTo(n int) {
	for len(s.assigns) < n {
		s.assigns = append(s.assigns, LUndef)
		s.varLevel = append(s.varLevel, -1)
		s.varReason = append(s.varReason, nilRef)
		s.activity = append(s.activity, 0)
		s.polarity = append(s.polarity, true)
	}
}

// AddVariable recycles a freed variable id or extends storage, returning
// ErrOutOfVars if the 2^31-1 id cap would be exceeded.
func (s *Solver) AddVariable() (Var, error) {
	if n := len(s.freeVars); n > 0 {
		v := s.freeVars[n-1]
		s.freeVars = s.freeVars[:n-1]
		s.assigns[v] = LUndef
		s.varLevel[v] = -1
		s.varReason[v] = nilRef
		s.activity[v] = 0
		s.polarity[v] = true
		s.order.Insert(v)
		return v, nil
	}
	if uint32(s.nextVar) > lit.MaxID {
		return 0, ErrOutOfVars{}
	}
	v := s.nextVar
	s.nextVar++
	s.growTo(int(v) + 1)
	s.order.Insert(v)
	return v, nil
}

func (s *Solver) decisionLevel() int { return len(s.trailLim) }

func (s *Solver) value(l lit.Lit) LBool {
	a := s.assigns[varOf(l)]
	if a == LUndef {
		return LUndef
	}
	if l.Sign() {
		return a.Not()
	}
	return a
}

func (s *Solver) enqueue(l lit.Lit, reason ClauseRef) bool {
	v := varOf(l)
	cur := s.value(l)
	if cur != LUndef {
		return cur == LTrue
	}
	s.assigns[v] = boolToLBool(!l.Sign())
	s.varLevel[v] = s.decisionLevel()
	s.varReason[v] = reason
	s.polarity[v] = !l.Sign()
	s.trail = append(s.trail, l)
	s.order.Remove(v)
	return true
}

// cancelUntil backtracks to the given decision level, undoing assignments
// made above it and reinstating their variables in the decision heap.
func (s *Solver) cancelUntil(level int) {
	if s.decisionLevel() <= level {
		return
	}
	start := s.trailLim[level]
	for i := len(s.trail) - 1; i >= start; i-- {
		v := varOf(s.trail[i])
		s.polarity[v] = s.assigns[v] == LTrue
		s.assigns[v] = LUndef
		s.varReason[v] = nilRef
		s.order.Insert(v)
	}
	s.trail = s.trail[:start]
	s.trailLim = s.trailLim[:level]
	if s.qhead > len(s.trail) {
		s.qhead = len(s.trail)
	}
}

// Assume opens a new decision level and enqueues literal l as a decision.
// Returns false if l is already falsified (immediate conflict).
func (s *Solver) Assume(l lit.Lit) bool {
	s.trailLim = append(s.trailLim, len(s.trail))
	return s.enqueue(l, nilRef)
}

func sortLits(lits []lit.Lit) {
	sort.Slice(lits, func(i, j int) bool { return lit.Less(lits[i], lits[j]) })
}

// simplifyClause removes duplicate literals, drops level-0-false literals,
// and reports whether the clause is trivially satisfied (a tautology or a
// literal already true at level 0).
func (s *Solver) simplifyClause(lits []lit.Lit) (out []lit.Lit, trivial bool) {
	cp := append([]lit.Lit(nil), lits...)
	sortLits(cp)
	out = cp[:0]
	var prev lit.Lit
	havePrev := false
	for _, l := range cp {
		if havePrev && l.Id() == prev.Id() {
			if l.Sign() != prev.Sign() {
				return nil, true // p and ~p
			}
			continue // duplicate
		}
		if s.decisionLevel() == 0 {
			switch s.value(l) {
			case LTrue:
				return nil, true
			case LFalse:
				prev, havePrev = l, true
				continue
			}
		}
		out = append(out, l)
		prev, havePrev = l, true
	}
	return out, false
}

// AddClause installs a clause, performing top-level simplification,
// tautology/duplicate removal, and unit/empty-clause handling. When
// proof-logging is enabled the (possibly simplified) root clause is
// recorded and tied to the returned ref's proof id. It first backtracks to
// decision level 0, discarding any model a previous Solve left in place.
func (s *Solver) AddClause(lits []lit.Lit) (ClauseRef, error) {
	if !s.ok {
		return nilRef, ErrUnusable{}
	}
	s.cancelUntil(0)
	out, trivial := s.simplifyClause(lits)
	if trivial {
		return nilRef, nil
	}

	var pid proof.ClauseID
	if s.proofEnabled {
		pid = s.pf.AddRoot(out)
	}

	switch len(out) {
	case 0:
		s.ok = false
		s.hasEmpty = true
		s.emptyClause = pid
		return nilRef, nil
	case 1:
		if !s.enqueue(out[0], nilRef) {
			s.ok = false
			s.hasEmpty = true
			s.emptyClause = pid
		} else if s.proofEnabled {
			s.unitProof[varOf(out[0])] = pid
		}
		return nilRef, nil
	default:
		ref := s.db.alloc(out, false, pid)
		c := s.db.get(ref)
		s.watches[c.lits[0].Neg().Bits()] = append(s.watches[c.lits[0].Neg().Bits()], watcher{cref: ref, blocker: c.lits[1]})
		s.watches[c.lits[1].Neg().Bits()] = append(s.watches[c.lits[1].Neg().Bits()], watcher{cref: ref, blocker: c.lits[0]})
		return ref, nil
	}
}

// Propagate processes the propagation queue via two-watched-literal
// unit propagation with blocking-literal short-circuiting and lazy watcher
// replacement. Returns the conflicting clause ref, or nilRef if the queue
// drains cleanly.
func (s *Solver) Propagate() ClauseRef {
	confl := nilRef
	for s.qhead < len(s.trail) {
		p := s.trail[s.qhead]
		s.qhead++
		s.vt++
		// Watchers of a literal are stored under its negation, so the clauses
		// watching the now-false literal ~p live under p's own key.
		wkey := p.Bits()
		ws := s.watches[wkey]
		j := 0
		for i := 0; i < len(ws); i++ {
			w := ws[i]
			s.vt++
			if s.value(w.blocker) == LTrue {
				ws[j] = w
				j++
				continue
			}
			c := s.db.get(w.cref)
			if c.lits[0].Bits() == p.Neg().Bits() {
				c.lits[0], c.lits[1] = c.lits[1], c.lits[0]
			}
			first := c.lits[0]
			newW := watcher{cref: w.cref, blocker: first}
			if first.Bits() != w.blocker.Bits() && s.value(first) == LTrue {
				ws[j] = newW
				j++
				continue
			}
			foundNew := false
			for k := 2; k < len(c.lits); k++ {
				if s.value(c.lits[k]) != LFalse {
					c.lits[1], c.lits[k] = c.lits[k], c.lits[1]
					nb := c.lits[1].Neg().Bits()
					s.watches[nb] = append(s.watches[nb], watcher{cref: w.cref, blocker: first})
					foundNew = true
					break
				}
			}
			if foundNew {
				continue
			}
			ws[j] = newW
			j++
			if s.value(first) == LFalse {
				confl = w.cref
				s.qhead = len(s.trail)
				for k := i + 1; k < len(ws); k++ {
					ws[j] = ws[k]
					j++
				}
				break
			}
			s.enqueue(first, w.cref)
		}
		s.watches[wkey] = ws[:j]
		if confl != nilRef {
			break
		}
	}
	return confl
}

// Value reports the current assignment of a wire/variable literal as seen
// by callers outside the package (e.g. the clausifier reading a model).
func (s *Solver) Value(l lit.Lit) LBool { return s.value(l) }

// Ok reports whether the solver is still usable (no top-level conflict and
// no unrecovered resource exhaustion).
func (s *Solver) Ok() bool { return s.ok }
