package dimacs

import (
	"strings"
	"testing"

	"github.com/rawblock/zzcore/internal/satcore"
)

const sample = `c a trivial satisfiable instance
p cnf 2 3
1 2 0
-1 2 0
1 -2 0
`

func TestReadParsesHeaderAndClauses(t *testing.T) {
	doc, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.NumVars != 2 || doc.NumClauses != 3 {
		t.Fatalf("header = %d vars, %d clauses; want 2, 3", doc.NumVars, doc.NumClauses)
	}
	if len(doc.Clauses) != 3 {
		t.Fatalf("got %d clauses, want 3", len(doc.Clauses))
	}
	want := [][]int{{1, 2}, {-1, 2}, {1, -2}}
	for i, c := range doc.Clauses {
		if len(c) != len(want[i]) {
			t.Fatalf("clause %d = %v, want %v", i, c, want[i])
		}
		for j := range c {
			if c[j] != want[i][j] {
				t.Errorf("clause %d[%d] = %d, want %d", i, j, c[j], want[i][j])
			}
		}
	}
}

func TestReadRejectsMissingHeader(t *testing.T) {
	_, err := Read(strings.NewReader("1 2 0\n"))
	if err == nil {
		t.Fatal("expected error for clause line before problem line")
	}
	var pe ParseError
	if !errorsAs(err, &pe) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
}

func TestReadRejectsMalformedHeader(t *testing.T) {
	_, err := Read(strings.NewReader("p wcnf 2 3\n"))
	if err == nil {
		t.Fatal("expected error for non-cnf problem type")
	}
}

func errorsAs(err error, target *ParseError) bool {
	if pe, ok := err.(ParseError); ok {
		*target = pe
		return true
	}
	return false
}

func TestLoadIntoBuildsSolverAndSolves(t *testing.T) {
	s := satcore.New(nil)
	if _, err := LoadInto(s, strings.NewReader(sample)); err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	// This CNF is satisfiable (x1=true, x2=true works).
	if got := s.Solve(nil); got != satcore.ResultSAT {
		t.Fatalf("Solve() = %v, want SAT", got)
	}
}

func TestLoadIntoUnsat(t *testing.T) {
	const unsat = `p cnf 1 2
1 0
-1 0
`
	s := satcore.New(nil)
	if _, err := LoadInto(s, strings.NewReader(unsat)); err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	if got := s.Solve(nil); got != satcore.ResultUnsat {
		t.Fatalf("Solve() = %v, want UNSAT", got)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	s := satcore.New(nil)
	varOf, err := LoadInto(s, strings.NewReader(sample))
	if err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	clauses := s.ExportClauses()
	var maxVar int
	for _, v := range varOf {
		if int(v) > maxVar {
			maxVar = int(v)
		}
	}
	var buf strings.Builder
	if err := Write(&buf, maxVar, clauses); err != nil {
		t.Fatalf("Write: %v", err)
	}
	reparsed, err := Read(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Read of written output: %v", err)
	}
	if reparsed.NumClauses != len(clauses) {
		t.Errorf("round-tripped clause count = %d, want %d", reparsed.NumClauses, len(clauses))
	}
}
