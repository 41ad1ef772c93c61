// Package dimacs reads and writes the DIMACS cnf format used by the SAT
// driver (spec §6.3): "c" comment lines, a "p cnf <vars> <clauses>" header,
// and clauses as zero-terminated space-separated integers.
package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rawblock/zzcore/internal/satcore"
	"github.com/rawblock/zzcore/pkg/lit"
)

// ParseError reports a malformed DIMACS file, with the 1-based line number
// where the problem was found.
type ParseError struct {
	Line int
	Msg  string
}

func (e ParseError) Error() string { return fmt.Sprintf("dimacs: line %d: %s", e.Line, e.Msg) }

// CNF is a parsed DIMACS document: the declared variable/clause counts from
// the header, and the clauses themselves as DIMACS-style signed ints
// (positive k means variable k true, negative -k means variable k false;
// variable numbering is 1-based as DIMACS requires).
type CNF struct {
	NumVars    int
	NumClauses int
	Clauses    [][]int
}

// Read parses a DIMACS cnf stream. Only the "cnf" problem type is
// supported; "wcnf" (weighted, MaxSAT) is explicitly out of scope for this
// core per spec §6.3.
func Read(r io.Reader) (*CNF, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	doc := &CNF{}
	sawHeader := false
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "p") {
			if sawHeader {
				return nil, ParseError{lineNo, "duplicate problem line"}
			}
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[1] != "cnf" {
				return nil, ParseError{lineNo, fmt.Sprintf("malformed problem line %q (want 'p cnf <vars> <clauses>')", line)}
			}
			nv, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, ParseError{lineNo, "invalid variable count: " + fields[2]}
			}
			nc, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, ParseError{lineNo, "invalid clause count: " + fields[3]}
			}
			doc.NumVars, doc.NumClauses = nv, nc
			sawHeader = true
			continue
		}
		if !sawHeader {
			return nil, ParseError{lineNo, "clause line before problem line"}
		}
		fields := strings.Fields(line)
		clause := make([]int, 0, len(fields))
		for _, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, ParseError{lineNo, "invalid literal: " + f}
			}
			if v == 0 {
				break
			}
			clause = append(clause, v)
		}
		doc.Clauses = append(doc.Clauses, clause)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dimacs: %w", err)
	}
	if !sawHeader {
		return nil, ParseError{lineNo, "missing problem line"}
	}
	return doc, nil
}

// ToLits converts a parsed clause (DIMACS signed ints) to solver literals,
// allocating fresh solver variables as higher variable numbers are first
// seen. varOf maps a DIMACS variable number to its satcore.Var once
// allocated.
func ToLits(s *satcore.Solver, varOf map[int]satcore.Var, clause []int) ([]lit.Lit, error) {
	out := make([]lit.Lit, 0, len(clause))
	for _, d := range clause {
		n := d
		neg := n < 0
		if neg {
			n = -n
		}
		v, ok := varOf[n]
		if !ok {
			var err error
			v, err = s.AddVariable()
			if err != nil {
				return nil, fmt.Errorf("dimacs: variable %d: %w", n, err)
			}
			varOf[n] = v
		}
		out = append(out, satcore.MkLit(v, neg))
	}
	return out, nil
}

// LoadInto parses r as DIMACS cnf and adds every clause to s, returning the
// DIMACS-variable-number-to-solver-variable mapping it built along the way.
func LoadInto(s *satcore.Solver, r io.Reader) (map[int]satcore.Var, error) {
	doc, err := Read(r)
	if err != nil {
		return nil, err
	}
	varOf := make(map[int]satcore.Var, doc.NumVars)
	for _, clause := range doc.Clauses {
		lits, err := ToLits(s, varOf, clause)
		if err != nil {
			return nil, err
		}
		if _, err := s.AddClause(lits); err != nil {
			return nil, err
		}
	}
	return varOf, nil
}

// Write emits clauses (each a slice of solver literals) as a DIMACS cnf
// document. numVars is the declared variable count for the header; it must
// be at least the highest variable id referenced by clauses.
func Write(w io.Writer, numVars int, clauses [][]lit.Lit) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", numVars, len(clauses)); err != nil {
		return err
	}
	for _, c := range clauses {
		for _, l := range c {
			n := int(l.Id())
			if l.Sign() {
				n = -n
			}
			if _, err := fmt.Fprintf(bw, "%d ", n); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("0\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
