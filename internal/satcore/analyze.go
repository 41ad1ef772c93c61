package satcore

import (
	"github.com/rawblock/zzcore/internal/proof"
	"github.com/rawblock/zzcore/pkg/lit"
)

func (s *Solver) reasonProofID(v Var) proof.ClauseID {
	if r := s.varReason[v]; r != nilRef {
		return s.db.get(r).proofID
	}
	return s.unitProof[v]
}

// analyze performs first-UIP conflict analysis starting from the
// conflicting clause confl: it walks back along the trail, resolving the
// running clause against each assigned variable's reason until exactly one
// literal from the current decision level remains (the UIP), then puts the
// second-highest-level literal at position 1 so the learnt clause is ready
// to be watched immediately. Level-0 literals are resolved out of the
// learnt clause entirely (they are implied unconditionally) but, in
// proof-logging mode, still contribute a resolution step so the chain
// remains complete. Conflict-clause minimization drops any learnt literal
// whose negation is already implied by the reasons of the other learnt
// literals.
func (s *Solver) analyze(confl ClauseRef) ([]lit.Lit, int, proof.ClauseID) {
	seen := make(map[Var]bool)
	learnt := []lit.Lit{lit.Nil}
	pathC := 0
	index := len(s.trail) - 1

	var cb *proof.ChainBuilder
	if s.proofEnabled {
		cb = s.pf.BeginChain(s.db.get(confl).proofID)
	}

	reasonRef := confl
	var p lit.Lit
	first := true

	for {
		c := s.db.get(reasonRef)
		start := 0
		if !first {
			start = 1 // lits[0] is the literal the reason clause implied, i.e. p
		}
		for j := start; j < len(c.lits); j++ {
			q := c.lits[j]
			v := varOf(q)
			if seen[v] {
				continue
			}
			if s.varLevel[v] == 0 {
				seen[v] = true
				if s.proofEnabled {
					cb.Resolve(s.reasonProofID(v), q)
				}
				continue
			}
			seen[v] = true
			s.bumpVarActivity(v)
			if s.varLevel[v] >= s.decisionLevel() {
				pathC++
			} else {
				learnt = append(learnt, q)
			}
		}

		for !seen[varOf(s.trail[index])] {
			index--
		}
		p = s.trail[index]
		pv := varOf(p)
		index--
		seen[pv] = false
		pathC--
		if pathC <= 0 {
			break
		}
		reasonRef = s.varReason[pv]
		if s.proofEnabled {
			cb.Resolve(s.db.get(reasonRef).proofID, p)
		}
		first = false
	}
	learnt[0] = p.Neg()

	learnt = s.minimize(learnt, seen)

	backtrackLevel := 0
	if len(learnt) > 1 {
		maxI := 1
		for i := 2; i < len(learnt); i++ {
			if s.varLevel[varOf(learnt[i])] > s.varLevel[varOf(learnt[maxI])] {
				maxI = i
			}
		}
		learnt[1], learnt[maxI] = learnt[maxI], learnt[1]
		backtrackLevel = s.varLevel[varOf(learnt[1])]
	}

	var pid proof.ClauseID
	if s.proofEnabled {
		pid = cb.End()
	}
	return learnt, backtrackLevel, pid
}

// minimize drops a learnt literal l when every literal in l's reason clause
// besides l itself is already seen (i.e. already implied by the rest of
// the learnt clause or fixed at level 0). Only l's own reason clause is
// checked; reason chains are not followed any further. This is the
// self-subsuming-resolution style minimization, not the original's full
// recorded-pruning proof variant (which would additionally log each drop as
// a resolution step); this module performs the simplification without
// extending the proof chain for it, trading a slightly larger proof for a
// simpler implementation.
func (s *Solver) minimize(learnt []lit.Lit, seen map[Var]bool) []lit.Lit {
	out := learnt[:1]
	for _, l := range learnt[1:] {
		if s.litRedundant(l, seen) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (s *Solver) litRedundant(l lit.Lit, seen map[Var]bool) bool {
	v := varOf(l)
	reason := s.varReason[v]
	if reason == nilRef {
		return false
	}
	c := s.db.get(reason)
	for _, q := range c.lits[1:] {
		qv := varOf(q)
		if seen[qv] || s.varLevel[qv] == 0 {
			continue
		}
		return false
	}
	return true
}

func (s *Solver) bumpVarActivity(v Var) {
	s.activity[v] += s.varInc
	if s.activity[v] > 1e100 {
		for i := range s.activity {
			s.activity[i] *= 1e-100
		}
		s.varInc *= 1e-100
	}
	if s.order.Contains(v) {
		s.order.Update(v)
	}
}

func (s *Solver) decayVarActivity() { s.varInc /= s.varDecay }

func (s *Solver) bumpClauseActivity(c *clause) {
	c.activity += s.claInc
	if c.activity > 1e100 {
		for _, ref := range s.db.learnts {
			s.db.get(ref).activity *= 1e-100
		}
		s.claInc *= 1e-100
	}
}

func (s *Solver) decayClauseActivity() { s.claInc /= s.claDecay }
