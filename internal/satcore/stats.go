package satcore

import (
	"github.com/rawblock/zzcore/internal/proof"
	"github.com/rawblock/zzcore/pkg/lit"
)

// NumVars reports how many variable ids have ever been allocated (not
// counting the reserved null/true pair).
func (s *Solver) NumVars() int {
	if s.nextVar < 2 {
		return 0
	}
	return int(s.nextVar) - 2
}

// NumClauses reports the live problem-clause count (learnt clauses
// excluded).
func (s *Solver) NumClauses() int {
	n := 0
	for _, c := range s.db.clauses {
		if c != nil && !c.freed && !c.learnt {
			n++
		}
	}
	return n
}

// NumLearnts reports the live learnt-clause count.
func (s *Solver) NumLearnts() int { return len(s.db.learnts) }

// DecisionLevel exposes the current decision level for driver code that
// wants to checkpoint (e.g. before calling RemoveVars).
func (s *Solver) DecisionLevel() int { return s.decisionLevel() }

// VirtualTime reports the cumulative clause-literal inspection counter.
func (s *Solver) VirtualTime() uint64 { return s.vt }

// ConflictCount reports the number of conflicts encountered during the most
// recent Solve call.
func (s *Solver) ConflictCount() int { return s.conflictsThisSolve }

// ActivityOf returns v's current decision-heap activity.
func (s *Solver) ActivityOf(v Var) float64 {
	if int(v) >= len(s.activity) {
		return 0
	}
	return s.activity[v]
}

// ExportClauses returns every live (non-freed) clause's literals, problem
// and learnt alike, as a DIMACS-shaped matrix.
func (s *Solver) ExportClauses() [][]lit.Lit {
	out := make([][]lit.Lit, 0, len(s.db.clauses))
	for _, c := range s.db.clauses {
		if c == nil || c.freed {
			continue
		}
		out = append(out, append([]lit.Lit(nil), c.lits...))
	}
	return out
}

// ProofID returns the proof-log id tied to a clause ref returned by
// AddClause, valid only when the solver was constructed with proof logging
// enabled.
func (s *Solver) ProofID(ref ClauseRef) proof.ClauseID {
	if ref == nilRef {
		return 0
	}
	return s.db.get(ref).proofID
}
