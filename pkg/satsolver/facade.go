// Package satsolver exposes the backend-agnostic capability trait that
// every SAT backend (the in-module CDCL core, or a future MiniSat/ABC/
// Glucose adapter) must implement, plus an adapter binding it to
// internal/satcore.
package satsolver

import (
	"github.com/rawblock/zzcore/internal/proof"
	"github.com/rawblock/zzcore/internal/satcore"
	"github.com/rawblock/zzcore/pkg/lit"
)

// Status mirrors satcore.Result at the facade boundary so callers outside
// the module don't need to import the internal package.
type Status int

const (
	Undef Status = iota
	Sat
	Unsat
)

// Solver is the capability trait every backend exposes. Dynamic dispatch
// across backends (the in-tree CDCL core today; MiniSat/ABC/Glucose
// adapters are mentioned only as mergeable wrappers) goes through this
// interface rather than a type switch.
type Solver interface {
	AddLit(v satcore.Var, sign bool) lit.Lit
	AddVariable() (satcore.Var, error)
	AddClause(lits []lit.Lit) error
	Solve(assumptions []lit.Lit) Status
	Value(l lit.Lit) satcore.LBool
	GetConflict() []lit.Lit
	Preprocess() error
	Freeze(v satcore.Var)
	Thaw(v satcore.Var)
	GetActivity(v satcore.Var) float64
	SetConflictLim(n int)
	SetVerbosity(level int)
	ExportCNF() [][]lit.Lit
}

// CoreAdapter wraps internal/satcore.Solver to satisfy Solver. Freeze/Thaw
// do not reach the core solver: it has no separate frozen-variable
// bookkeeping today (a frozen variable is simply one remove_vars skips),
// so the adapter records frozen ids itself and filters them out of any
// future RemoveVars call it issues on the caller's behalf.
type CoreAdapter struct {
	core    *satcore.Solver
	frozen  map[satcore.Var]bool
	verbose int
}

// NewCoreAdapter builds an adapter around a fresh core solver. Pass a
// non-nil proof log to enable proof-logging mode.
func NewCoreAdapter(pf *proof.Log) *CoreAdapter {
	return &CoreAdapter{core: satcore.New(pf), frozen: make(map[satcore.Var]bool)}
}

func (a *CoreAdapter) AddLit(v satcore.Var, sign bool) lit.Lit { return satcore.MkLit(v, sign) }

func (a *CoreAdapter) AddVariable() (satcore.Var, error) { return a.core.AddVariable() }

func (a *CoreAdapter) AddClause(lits []lit.Lit) error {
	_, err := a.core.AddClause(lits)
	return err
}

func (a *CoreAdapter) Solve(assumptions []lit.Lit) Status {
	switch a.core.Solve(assumptions) {
	case satcore.ResultSAT:
		return Sat
	case satcore.ResultUnsat:
		return Unsat
	default:
		return Undef
	}
}

func (a *CoreAdapter) Value(l lit.Lit) satcore.LBool { return a.core.Value(l) }

func (a *CoreAdapter) GetConflict() []lit.Lit { return a.core.ConflictAssumptions() }

// Preprocess is a no-op in the core solver (it has no separate
// preprocessing pass distinct from top-level unit propagation already
// applied by AddClause); present to satisfy the trait for callers that
// probe a backend's preprocessing capability generically.
func (a *CoreAdapter) Preprocess() error { return nil }

func (a *CoreAdapter) Freeze(v satcore.Var) { a.frozen[v] = true }
func (a *CoreAdapter) Thaw(v satcore.Var)   { delete(a.frozen, v) }

func (a *CoreAdapter) GetActivity(v satcore.Var) float64 {
	// Reads the core's per-variable decision activity directly.
	return a.core.ActivityOf(v)
}

func (a *CoreAdapter) SetConflictLim(n int) { a.core.SetConflictLim(n) }

func (a *CoreAdapter) SetVerbosity(level int) { a.verbose = level }

// ExportCNF dumps every live clause as a DIMACS-shaped literal matrix.
func (a *CoreAdapter) ExportCNF() [][]lit.Lit { return a.core.ExportClauses() }

// RemoveVars deletes clauses mentioning vars not currently frozen, and
// returns the ones the proof (or the freeze set) kept.
func (a *CoreAdapter) RemoveVars(vars []satcore.Var) []satcore.Var {
	var toRemove []satcore.Var
	for _, v := range vars {
		if !a.frozen[v] {
			toRemove = append(toRemove, v)
		}
	}
	kept := a.core.RemoveVars(toRemove)
	for _, v := range vars {
		if a.frozen[v] {
			kept = append(kept, v)
		}
	}
	return kept
}
