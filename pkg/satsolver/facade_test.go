package satsolver

import (
	"testing"

	"github.com/rawblock/zzcore/pkg/lit"
)

func TestCoreAdapterSolvesThroughInterface(t *testing.T) {
	var s Solver = NewCoreAdapter(nil)
	v1, err := s.AddVariable()
	if err != nil {
		t.Fatal(err)
	}
	v2, err := s.AddVariable()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddClause([]lit.Lit{s.AddLit(v1, false), s.AddLit(v2, false)}); err != nil {
		t.Fatal(err)
	}
	if got := s.Solve(nil); got != Sat {
		t.Fatalf("Solve() = %v, want Sat", got)
	}
}

func TestExportCNFReflectsAddedClauses(t *testing.T) {
	a := NewCoreAdapter(nil)
	v1, _ := a.AddVariable()
	v2, _ := a.AddVariable()
	if err := a.AddClause([]lit.Lit{a.AddLit(v1, false), a.AddLit(v2, true)}); err != nil {
		t.Fatal(err)
	}
	cnf := a.ExportCNF()
	if len(cnf) != 1 || len(cnf[0]) != 2 {
		t.Fatalf("ExportCNF() = %v, want one 2-literal clause", cnf)
	}
}
