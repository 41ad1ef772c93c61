package satcore

import (
	"sort"

	"github.com/rawblock/zzcore/internal/proof"
	"github.com/rawblock/zzcore/pkg/lit"
)

// Result is the outcome of a Solve call.
type Result int

const (
	ResultUndef Result = iota
	ResultSAT
	ResultUnsat
)

type searchStatus int

const (
	statusSAT searchStatus = iota
	statusUnsat
	statusUnsatAssumption
	statusRestart
	statusAborted
)

type branchResult int

const (
	branchDecision branchResult = iota
	branchSAT
	branchAssumeConflict
)

// SetConflictLim caps the total conflicts across the next Solve call only;
// 0 means unlimited.
func (s *Solver) SetConflictLim(n int) { s.conflictLimit = n }

// SetTimeoutCB installs the work-budget callback, invoked roughly every
// timeoutQuantum clause-literal inspections (virtual time units). Returning
// false aborts the in-progress Solve with ResultUndef.
func (s *Solver) SetTimeoutCB(quantum uint64, cb func(delta uint64) bool) {
	if quantum > 0 {
		s.timeoutQuantum = quantum
	}
	s.timeoutCB = cb
}

// Solve searches for a satisfying assignment under the given assumptions,
// repeatedly calling search with a Luby-scheduled (multiplier 2, unit 100)
// conflict budget and restarting to decision level 0 between attempts. On
// ResultSAT the satisfying assignment stays on the trail for Value to read;
// the next Solve, AddClause or RemoveVars backtracks to level 0.
func (s *Solver) Solve(assumptions []lit.Lit) Result {
	if !s.ok {
		return ResultUnsat
	}
	s.cancelUntil(0)
	s.assumptions = assumptions
	s.assumeIdx = 0
	s.conflictAssumps = nil
	s.conflictsThisSolve = 0
	s.lastTimeoutVT = s.vt

	restarts := newLubyRestart(100)
	learntBase := len(s.db.clauses)/3 + 16
	prevConflicts := s.conflictsThisSolve

	for {
		budget := restarts.Next()
		status := s.search(budget, learntBase+len(s.db.learnts))
		switch status {
		case statusSAT:
			return ResultSAT
		case statusUnsat:
			s.ok = false
			return ResultUnsat
		case statusUnsatAssumption:
			return ResultUnsat
		case statusAborted:
			return ResultUndef
		case statusRestart:
			s.restartLog = append(s.restartLog, s.conflictsThisSolve-prevConflicts)
			prevConflicts = s.conflictsThisSolve
			s.cancelUntil(0)
		}
	}
}

// RestartIntervals returns the conflict count consumed between each
// recorded restart (in chronological order, across every Solve call since
// the solver was last Clear'd), feeding internal/metrics' restart-interval
// distribution reporting.
func (s *Solver) RestartIntervals() []int { return append([]int(nil), s.restartLog...) }

// search runs propagate/analyze/decide until it hits SAT, UNSAT, the
// assumption set is contradictory, the conflict budget for this attempt is
// exhausted (restart needed), or the cooperative timeout callback aborts.
func (s *Solver) search(confBudget, learntBudget int) searchStatus {
	for {
		confl := s.Propagate()
		if confl != nilRef {
			if s.decisionLevel() == 0 {
				return statusUnsat
			}
			s.conflictsThisSolve++
			learnt, btLevel, pid := s.analyze(confl)
			s.cancelUntil(btLevel)
			s.addLearnt(learnt, pid)
			s.decayVarActivity()
			s.decayClauseActivity()

			if s.conflictLimit > 0 && s.conflictsThisSolve >= s.conflictLimit {
				return statusAborted
			}
			confBudget--
			if confBudget <= 0 {
				return statusRestart
			}
			continue
		}

		if s.vt-s.lastTimeoutVT >= s.timeoutQuantum {
			delta := s.vt - s.lastTimeoutVT
			s.lastTimeoutVT = s.vt
			if s.timeoutCB != nil && !s.timeoutCB(delta) {
				return statusAborted
			}
		}

		if len(s.db.learnts) >= learntBudget {
			s.reduceDB()
		}

		next, res := s.pickBranchLit()
		switch res {
		case branchSAT:
			return statusSAT
		case branchAssumeConflict:
			s.conflictAssumps = s.analyzeFinal(next.Neg())
			return statusUnsatAssumption
		default:
			s.Assume(next)
		}
	}
}

func (s *Solver) pickBranchLit() (lit.Lit, branchResult) {
	for s.assumeIdx < len(s.assumptions) {
		a := s.assumptions[s.assumeIdx]
		s.assumeIdx++
		switch s.value(a) {
		case LTrue:
			continue
		case LFalse:
			return a, branchAssumeConflict
		default:
			return a, branchDecision
		}
	}
	if s.order.Len() == 0 {
		return lit.Nil, branchSAT
	}
	var v Var
	if s.rng.Float64() < s.randVarFreq {
		v = s.order.heap[s.rng.Intn(s.order.Len())]
	} else {
		v = s.order.heap[0]
	}
	return MkLit(v, !s.polarity[v]), branchDecision
}

// analyzeFinal computes a minimal subset of the input assumptions
// sufficient to derive false, given p (the negation of the conflicting
// assumption, already on the trail) as the seed. This is the standard
// trail-walking derivation for the final conflict clause under
// assumptions.
func (s *Solver) analyzeFinal(p lit.Lit) []lit.Lit {
	out := []lit.Lit{p.Neg()}
	if s.decisionLevel() == 0 {
		return out
	}
	seen := make(map[Var]bool)
	seen[varOf(p)] = true
	for i := len(s.trail) - 1; i >= 0; i-- {
		x := s.trail[i]
		v := varOf(x)
		if !seen[v] {
			continue
		}
		if s.varReason[v] == nilRef {
			if s.varLevel[v] > 0 {
				out = append(out, x)
			}
		} else {
			c := s.db.get(s.varReason[v])
			for _, q := range c.lits[1:] {
				if s.varLevel[varOf(q)] > 0 {
					seen[varOf(q)] = true
				}
			}
		}
		seen[v] = false
	}
	return out
}

// ConflictAssumptions returns the minimized assumption subset that proved
// UNSAT, valid after a Solve call returns ResultUnsat under non-empty
// assumptions.
func (s *Solver) ConflictAssumptions() []lit.Lit { return s.conflictAssumps }

func (s *Solver) addLearnt(lits []lit.Lit, pid proof.ClauseID) ClauseRef {
	if len(lits) == 1 {
		s.enqueue(lits[0], nilRef)
		if s.proofEnabled {
			s.unitProof[varOf(lits[0])] = pid
		}
		return nilRef
	}
	ref := s.db.alloc(lits, true, pid)
	c := s.db.get(ref)
	s.watches[c.lits[0].Neg().Bits()] = append(s.watches[c.lits[0].Neg().Bits()], watcher{cref: ref, blocker: c.lits[1]})
	s.watches[c.lits[1].Neg().Bits()] = append(s.watches[c.lits[1].Neg().Bits()], watcher{cref: ref, blocker: c.lits[0]})
	s.enqueue(c.lits[0], ref)
	s.bumpClauseActivity(c)
	return ref
}

func (s *Solver) removeWatch(l lit.Lit, ref ClauseRef) {
	ws := s.watches[l.Bits()]
	for i, w := range ws {
		if w.cref == ref {
			ws[i] = ws[len(ws)-1]
			ws = ws[:len(ws)-1]
			break
		}
	}
	s.watches[l.Bits()] = ws
}

func (s *Solver) locked(ref ClauseRef) bool {
	c := s.db.get(ref)
	if len(c.lits) == 0 {
		return false
	}
	return s.varReason[varOf(c.lits[0])] == ref
}

// reduceDB sorts learnt clauses by activity and discards the less active
// half that are neither binary nor locked as a current propagation reason,
// then removes any remaining learnt clause below extra_lim = claInc /
// nLearnts.
func (s *Solver) reduceDB() {
	learnts := append([]ClauseRef(nil), s.db.learnts...)
	sort.Slice(learnts, func(i, j int) bool {
		return s.db.get(learnts[i]).activity < s.db.get(learnts[j]).activity
	})
	n := len(learnts)
	if n == 0 {
		return
	}
	removed := make(map[ClauseRef]bool)
	extraLim := s.claInc / float64(n)
	half := n / 2
	for i := 0; i < half; i++ {
		ref := learnts[i]
		c := s.db.get(ref)
		if len(c.lits) > 2 && !s.locked(ref) {
			s.eraseClauseHard(ref)
			removed[ref] = true
		}
	}
	for i := half; i < n; i++ {
		ref := learnts[i]
		if removed[ref] {
			continue
		}
		c := s.db.get(ref)
		if len(c.lits) > 2 && !s.locked(ref) && c.activity < extraLim {
			s.eraseClauseHard(ref)
			removed[ref] = true
		}
	}
	kept := s.db.learnts[:0]
	for _, ref := range s.db.learnts {
		if !removed[ref] {
			kept = append(kept, ref)
		}
	}
	s.db.learnts = kept
	if s.db.needsCompact() {
		s.compact()
	}
}

// SimplifyDB drops problem and learnt clauses already satisfied by a
// level-0 assignment, the MST trace's "simplifyDB()" verb (spec §6.4). Only
// meaningful at decision level 0; a no-op otherwise, matching MiniSat's own
// refusal to simplify under an open decision.
func (s *Solver) SimplifyDB() {
	if s.decisionLevel() != 0 || !s.ok {
		return
	}
	for ref, c := range s.db.clauses {
		r := ClauseRef(ref)
		if c == nil || c.freed || s.locked(r) {
			continue
		}
		satisfied := false
		for _, l := range c.lits {
			if s.value(l) == LTrue && s.varLevel[varOf(l)] == 0 {
				satisfied = true
				break
			}
		}
		if satisfied {
			s.eraseClauseHard(r)
		}
	}
	kept := s.db.learnts[:0]
	for _, ref := range s.db.learnts {
		if c := s.db.get(ref); c != nil && !c.freed {
			kept = append(kept, ref)
		}
	}
	s.db.learnts = kept
}

// ClearLearnts discards every learnt clause that is not currently locked as
// a propagation reason, the MST
// trace's "clearLearnts()" verb.
func (s *Solver) ClearLearnts() {
	for _, ref := range append([]ClauseRef(nil), s.db.learnts...) {
		if c := s.db.get(ref); c != nil && !c.freed && !s.locked(ref) {
			s.eraseClauseHard(ref)
		}
	}
	kept := s.db.learnts[:0]
	for _, ref := range s.db.learnts {
		if c := s.db.get(ref); c != nil && !c.freed {
			kept = append(kept, ref)
		}
	}
	s.db.learnts = kept
}

func (s *Solver) eraseClauseHard(ref ClauseRef) {
	c := s.db.clauses[ref]
	if c == nil || c.freed {
		return
	}
	if len(c.lits) >= 2 {
		s.removeWatch(c.lits[0].Neg(), ref)
		s.removeWatch(c.lits[1].Neg(), ref)
	}
	if s.proofEnabled {
		s.pf.Deleted(c.proofID)
	}
	s.db.release(ref)
}

// compact reclaims literal storage for freed clauses. This store recycles
// ClauseRef slots via a freelist rather than packing a flat byte pool with
// hand-rewritten offsets, so compaction here drops freed clauses' backing
// slices for the garbage collector and resets the freed-byte counter.
func (s *Solver) compact() {
	for _, ref := range s.db.free {
		c := s.db.clauses[ref]
		if c != nil && c.freed {
			c.lits = nil
		}
	}
	s.db.freedWords = 0
}

// RemoveVars deletes every clause referencing a variable in vars (and
// recycles those ids), returning the subset that could not be removed. In
// proof-logging mode a clause stays (and its variables are reported as
// kept) when its proof record is still referenced after dereferencing —
// i.e. some resolution chain still needs it — mirroring the "stuck"
// semantics of proof-aware variable deletion. In non-proof mode every
// matching clause is deleted unconditionally.
func (s *Solver) RemoveVars(vars []Var) []Var {
	s.cancelUntil(0)
	removeSet := make(map[Var]bool, len(vars))
	for _, v := range vars {
		removeSet[v] = true
	}
	stuckSet := make(map[Var]bool)
	var stuck []Var

	for ref := range s.db.clauses {
		c := s.db.clauses[ref]
		if c == nil || c.freed {
			continue
		}
		refersRemoved := false
		for _, l := range c.lits {
			if removeSet[varOf(l)] {
				refersRemoved = true
				break
			}
		}
		if !refersRemoved {
			continue
		}
		if s.proofEnabled {
			s.pf.Deleted(c.proofID)
			if s.pf.Refcount(c.proofID) > 0 {
				for _, l := range c.lits {
					v := varOf(l)
					if removeSet[v] && !stuckSet[v] {
						stuckSet[v] = true
						stuck = append(stuck, v)
					}
				}
				continue
			}
		}
		s.eraseClauseHardNoProof(ClauseRef(ref))
	}

	for _, v := range vars {
		if stuckSet[v] {
			continue
		}
		s.freeVar(v)
	}
	return stuck
}

// eraseClauseHardNoProof erases watcher/storage bookkeeping for a clause
// whose proof record has already been dereferenced by the caller (or there
// is no proof log).
func (s *Solver) eraseClauseHardNoProof(ref ClauseRef) {
	c := s.db.clauses[ref]
	if c == nil || c.freed {
		return
	}
	if len(c.lits) >= 2 {
		s.removeWatch(c.lits[0].Neg(), ref)
		s.removeWatch(c.lits[1].Neg(), ref)
	}
	s.db.release(ref)
}

func (s *Solver) freeVar(v Var) {
	s.order.Remove(v)
	s.assigns[v] = LUndef
	s.varReason[v] = nilRef
	s.varLevel[v] = -1
	delete(s.unitProof, v)
	s.freeVars = append(s.freeVars, v)
}
