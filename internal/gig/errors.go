package gig

import (
	"fmt"

	"github.com/rawblock/zzcore/pkg/lit"
)

// ModeViolationError is returned by Add when the requested gate type is not
// permitted by the netlist's active mode, or is strash-owned and must be
// created through the strash factory instead.
type ModeViolationError struct {
	Mode GateType
	Type GateType
}

func (e *ModeViolationError) Error() string {
	return fmt.Sprintf("gig: mode violation: cannot add %s gate directly (strash-owned or mode-restricted)", e.Type)
}

// LiveFaninError is returned by Remove (in debug mode) when the gate being
// removed still has a nonzero fanout count.
type LiveFaninError struct {
	Wire lit.Lit
}

func (e *LiveFaninError) Error() string {
	return fmt.Sprintf("gig: cannot remove gate %s: still referenced by live fanin", e.Wire)
}

// ArityMismatchError is returned when a fixed-arity type is given the wrong
// fanin count.
type ArityMismatchError struct {
	Type     GateType
	Want     int
	Got      int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("gig: %s expects arity %d, got %d", e.Type, e.Want, e.Got)
}
