package mst

import (
	"strings"
	"testing"

	"github.com/rawblock/zzcore/internal/satcore"
)

const trace = `# a tiny trace exercising most verbs (not addVar or clear)
addVars(3)
addClause({1; 2})
addClause({-1; 2})
addClause({1; -2})
solve({})
simplifyDB()
clearLearnts()
removeVars({3})
`

func TestRunReplaysTrace(t *testing.T) {
	s := satcore.New(nil)
	p := NewPlayer(s, nil)
	results, err := Run(p, strings.NewReader(trace))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var sawSolve bool
	for _, r := range results {
		if strings.HasPrefix(r.Call, "solve(") {
			sawSolve = true
			if r.Result != satcore.ResultSAT {
				t.Errorf("solve() = %v, want SAT", r.Result)
			}
		}
	}
	if !sawSolve {
		t.Fatal("expected a solve() call result in the trace")
	}
}

func TestRunDetectsUnrecognizedCall(t *testing.T) {
	s := satcore.New(nil)
	p := NewPlayer(s, nil)
	_, err := Run(p, strings.NewReader("bogusCall()\n"))
	if err == nil {
		t.Fatal("expected error for unrecognized call")
	}
	var pe ParseError
	if perr, ok := err.(ParseError); ok {
		pe = perr
	} else {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if pe.Line != 1 {
		t.Errorf("error line = %d, want 1", pe.Line)
	}
}

func TestClearZeroResetsVariableNumbering(t *testing.T) {
	s := satcore.New(nil)
	p := NewPlayer(s, nil)
	if _, err := p.Step("addVars(2)"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Step("clear(0)"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Step("addClause({1})"); err != nil {
		t.Fatal(err)
	}
	if got := s.Solve(nil); got != satcore.ResultSAT {
		t.Fatalf("Solve() after clear(0) = %v, want SAT", got)
	}
}

func TestClearOneKeepsVariablePool(t *testing.T) {
	s := satcore.New(nil)
	p := NewPlayer(s, nil)
	if _, err := p.Step("addVars(2)"); err != nil {
		t.Fatal(err)
	}
	before := s.NumVars()
	if _, err := p.Step("clear(1)"); err != nil {
		t.Fatal(err)
	}
	if got := s.NumVars(); got != before {
		t.Errorf("NumVars() after clear(1) = %d, want %d (unchanged)", got, before)
	}
}
