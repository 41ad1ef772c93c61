// Package satcore implements the proof-logging CDCL SAT solver core: two-
// watched-literal propagation, 1-UIP conflict analysis with clause
// minimization, a Luby restart schedule, activity-based clause database
// reduction, and proof-aware variable deletion.
package satcore

import "github.com/rawblock/zzcore/pkg/lit"

// Var is a solver-internal variable index, sharing the same packed id space
// as lit.Lit (a Var's literal is lit.Mk(uint32(v), sign)). Variable 0 is
// reserved null; variable 1 is permanently tied true.
type Var uint32

const (
	VarNull Var = 0
	VarTrue Var = 1
)

// MaxVar mirrors lit.MaxID: the variable id space is a 31-bit range.
const MaxVar = lit.MaxID

// LBool is a tri-valued assignment: true, false, or undetermined.
type LBool int8

const (
	LFalse LBool = -1
	LUndef LBool = 0
	LTrue  LBool = 1
)

func boolToLBool(b bool) LBool {
	if b {
		return LTrue
	}
	return LFalse
}

// Not flips a determined value; LUndef.Not() is still LUndef.
func (b LBool) Not() LBool { return -b }

// MkLit builds the literal for variable v.
func MkLit(v Var, sign bool) lit.Lit { return lit.Mk(uint32(v), sign) }

// varOf extracts the variable a literal refers to.
func varOf(l lit.Lit) Var { return Var(l.Id()) }
