package satcore

import (
	"testing"

	"github.com/rawblock/zzcore/internal/proof"
	"github.com/rawblock/zzcore/pkg/lit"
)

func TestTwoVariableUnsat(t *testing.T) {
	s := New(proof.New())
	v1, _ := s.AddVariable()
	v2, _ := s.AddVariable()

	if _, err := s.AddClause([]lit.Lit{MkLit(v1, false), MkLit(v2, false)}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddClause([]lit.Lit{MkLit(v1, true)}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddClause([]lit.Lit{MkLit(v2, true)}); err != nil {
		t.Fatal(err)
	}

	if got := s.Solve(nil); got != ResultUnsat {
		t.Fatalf("Solve() = %v, want ResultUnsat", got)
	}
}

func TestAssumptionRetraction(t *testing.T) {
	s := New(nil)
	x, _ := s.AddVariable()
	y, _ := s.AddVariable()
	if _, err := s.AddClause([]lit.Lit{MkLit(x, false), MkLit(y, false)}); err != nil {
		t.Fatal(err)
	}

	if got := s.Solve([]lit.Lit{MkLit(x, false)}); got != ResultSAT {
		t.Fatalf("Solve({x}) = %v, want ResultSAT", got)
	}
	if s.Value(MkLit(x, false)) != LTrue {
		t.Error("x should be assigned true under the assumption")
	}

	if got := s.Solve([]lit.Lit{MkLit(x, true), MkLit(y, true)}); got != ResultUnsat {
		t.Fatalf("Solve({-x,-y}) = %v, want ResultUnsat", got)
	}

	if got := s.Solve(nil); got != ResultSAT {
		t.Fatalf("Solve({}) after retracting assumptions = %v, want ResultSAT", got)
	}
}

func TestRemoveVarsStuckUnderProof(t *testing.T) {
	pf := proof.New()
	s := New(pf)
	x1, _ := s.AddVariable()
	x2, _ := s.AddVariable()

	c1, err := s.AddClause([]lit.Lit{MkLit(x1, false), MkLit(x2, false)})
	if err != nil {
		t.Fatal(err)
	}
	c2, err := s.AddClause([]lit.Lit{MkLit(x1, false), MkLit(x2, true)})
	if err != nil {
		t.Fatal(err)
	}

	// Derive the unit {x1} by resolving c1 and c2 on x2, mirroring what
	// analyze would produce from a real conflict.
	cb := pf.BeginChain(s.ProofID(c1))
	cb.Resolve(s.ProofID(c2), MkLit(x2, false))
	_ = cb.End()

	kept := s.RemoveVars([]Var{x2})
	found := false
	for _, v := range kept {
		if v == x2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected x2 in kept_vars (still referenced by the derived chain), got %v", kept)
	}
	if !s.Ok() {
		t.Error("solver should remain usable after a stuck remove_vars")
	}

	if _, err := s.AddClause([]lit.Lit{MkLit(x1, false)}); err != nil {
		t.Fatal(err)
	}
	if got := s.Solve(nil); got != ResultSAT {
		t.Fatalf("Solve({}) = %v, want ResultSAT", got)
	}
	if s.Value(MkLit(x1, false)) != LTrue {
		t.Error("x1 should be true")
	}
}

func TestRemoveVarsWithoutProofDeletesUnconditionally(t *testing.T) {
	s := New(nil)
	x1, _ := s.AddVariable()
	x2, _ := s.AddVariable()
	if _, err := s.AddClause([]lit.Lit{MkLit(x1, false), MkLit(x2, false)}); err != nil {
		t.Fatal(err)
	}
	before := s.NumClauses()
	kept := s.RemoveVars([]Var{x2})
	if len(kept) != 0 {
		t.Fatalf("non-proof remove_vars should never report stuck vars, got %v", kept)
	}
	if s.NumClauses() >= before {
		t.Error("clause referencing the removed variable should be gone")
	}
}

func TestLubySequence(t *testing.T) {
	// Known prefix of the base-2 Luby sequence.
	want := []int{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8}
	for i, w := range want {
		if got := lubyUnit(i + 1); got != w {
			t.Errorf("lubyUnit(%d) = %d, want %d", i+1, got, w)
		}
	}
}

func TestAddClauseTautologyIsNoOp(t *testing.T) {
	s := New(nil)
	v, _ := s.AddVariable()
	ref, err := s.AddClause([]lit.Lit{MkLit(v, false), MkLit(v, true)})
	if err != nil {
		t.Fatal(err)
	}
	if ref != nilRef {
		t.Error("tautological clause should not be stored")
	}
	if s.NumClauses() != 0 {
		t.Error("tautological clause must not count as a stored clause")
	}
}

func TestAddClauseEmptyMarksUnsat(t *testing.T) {
	s := New(proof.New())
	v, _ := s.AddVariable()
	if _, err := s.AddClause([]lit.Lit{MkLit(v, false)}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddClause([]lit.Lit{MkLit(v, true)}); err != nil {
		t.Fatal(err)
	}
	if s.Ok() {
		t.Fatal("contradictory unit clauses at level 0 should mark the solver unsat")
	}
}
