// Package mst replays a MiniSat-style call trace against a satcore.Solver,
// per spec §6.4: one call per line — addVar(), addVars(N),
// addClause({lits}), solve({assumps}), simplifyDB(), removeVars({vars}),
// clear(0|1), clearLearnts() — with "#" introducing a line comment and
// deterministic re-execution of the recorded calls.
package mst

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rawblock/zzcore/internal/proof"
	"github.com/rawblock/zzcore/internal/satcore"
	"github.com/rawblock/zzcore/pkg/lit"
)

// ParseError reports a malformed trace line, with its 1-based line number.
type ParseError struct {
	Line int
	Msg  string
}

func (e ParseError) Error() string { return fmt.Sprintf("mst: line %d: %s", e.Line, e.Msg) }

// CallResult records one trace line's effect, for callers that want to
// verify a replay matches a recorded expectation (the "replay-mismatch"
// exit status of spec §6.5).
type CallResult struct {
	Line int
	Call string
	// Result is set for solve() calls.
	Result satcore.Result
}

// Player replays a trace against a bound solver, translating the trace's
// own 1-based variable numbering to solver Vars as new variables are
// introduced, the same numbering contract internal/dimacs uses.
type Player struct {
	s     *satcore.Solver
	pf    *proof.Log
	varOf map[int]satcore.Var
}

// NewPlayer binds a trace player to s, whose proof log (if any) is pf —
// needed so Clear(0)/clear(1) calls in the trace can rebind proof logging
// the same way a fresh satcore.New(pf) call would.
func NewPlayer(s *satcore.Solver, pf *proof.Log) *Player {
	return &Player{s: s, pf: pf, varOf: make(map[int]satcore.Var)}
}

func (p *Player) varFor(n int) (satcore.Var, error) {
	if v, ok := p.varOf[n]; ok {
		return v, nil
	}
	v, err := p.s.AddVariable()
	if err != nil {
		return 0, err
	}
	p.varOf[n] = v
	return v, nil
}

func (p *Player) litFor(d int) (lit.Lit, error) {
	neg := d < 0
	n := d
	if neg {
		n = -n
	}
	v, err := p.varFor(n)
	if err != nil {
		return 0, err
	}
	return satcore.MkLit(v, neg), nil
}

// litsIn parses a "{a; b; c}" brace-delimited, semicolon-separated
// literal list.
func (p *Player) litsIn(body string) ([]lit.Lit, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}
	parts := strings.Split(body, ";")
	out := make([]lit.Lit, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid literal %q: %w", part, err)
		}
		l, err := p.litFor(d)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// varsIn parses a "{a; b; c}" list of (unsigned) trace variable numbers.
func (p *Player) varsIn(body string) ([]satcore.Var, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}
	parts := strings.Split(body, ";")
	out := make([]satcore.Var, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid variable %q: %w", part, err)
		}
		v, err := p.varFor(n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func braceBody(call string) (string, bool) {
	open := strings.IndexByte(call, '{')
	close := strings.LastIndexByte(call, '}')
	if open < 0 || close < open {
		return "", false
	}
	return call[open+1 : close], true
}

func parenArg(call string) (string, bool) {
	open := strings.IndexByte(call, '(')
	close := strings.LastIndexByte(call, ')')
	if open < 0 || close < open {
		return "", false
	}
	return strings.TrimSpace(call[open+1 : close]), true
}

// Step executes one trace call (already stripped of comment and
// whitespace) against the bound solver.
func (p *Player) Step(call string) (CallResult, error) {
	res := CallResult{Call: call}
	switch {
	case call == "addVar()":
		if _, err := p.s.AddVariable(); err != nil {
			return res, err
		}
	case strings.HasPrefix(call, "addVars("):
		arg, _ := parenArg(call)
		n, err := strconv.Atoi(arg)
		if err != nil {
			return res, fmt.Errorf("addVars: invalid count %q: %w", arg, err)
		}
		for i := 0; i < n; i++ {
			if _, err := p.s.AddVariable(); err != nil {
				return res, err
			}
		}
	case strings.HasPrefix(call, "addClause("):
		body, ok := braceBody(call)
		if !ok {
			return res, fmt.Errorf("addClause: missing {..} body")
		}
		lits, err := p.litsIn(body)
		if err != nil {
			return res, fmt.Errorf("addClause: %w", err)
		}
		if _, err := p.s.AddClause(lits); err != nil {
			return res, err
		}
	case strings.HasPrefix(call, "solve("):
		body, _ := braceBody(call)
		assumps, err := p.litsIn(body)
		if err != nil {
			return res, fmt.Errorf("solve: %w", err)
		}
		res.Result = p.s.Solve(assumps)
	case call == "simplifyDB()":
		p.s.SimplifyDB()
	case strings.HasPrefix(call, "removeVars("):
		body, ok := braceBody(call)
		if !ok {
			return res, fmt.Errorf("removeVars: missing {..} body")
		}
		vars, err := p.varsIn(body)
		if err != nil {
			return res, fmt.Errorf("removeVars: %w", err)
		}
		p.s.RemoveVars(vars)
	case strings.HasPrefix(call, "clear("):
		arg, _ := parenArg(call)
		switch arg {
		case "0":
			p.s.Clear(p.pf)
			p.varOf = make(map[int]satcore.Var)
		case "1":
			p.s.ClearClauses(p.pf)
		default:
			return res, fmt.Errorf("clear: invalid argument %q (want 0 or 1)", arg)
		}
	case call == "clearLearnts()":
		p.s.ClearLearnts()
	default:
		return res, fmt.Errorf("unrecognized call %q", call)
	}
	return res, nil
}

// Run replays every line of a trace in order, stopping at the first error.
func Run(p *Player, r io.Reader) ([]CallResult, error) {
	sc := bufio.NewScanner(r)
	var out []CallResult
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		res, err := p.Step(line)
		if err != nil {
			return out, ParseError{lineNo, err.Error()}
		}
		res.Line = lineNo
		out = append(out, res)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("mst: %w", err)
	}
	return out, nil
}
