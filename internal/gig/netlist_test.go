package gig

import (
	"testing"

	"github.com/rawblock/zzcore/pkg/lit"
)

func TestAddAndFanin(t *testing.T) {
	n := New(ModeFreeForm)
	pi0, _ := n.Add(GatePI, nil, 0)
	pi1, _ := n.Add(GatePI, nil, 1)
	and, err := n.Add(GateAnd, []lit.Lit{pi0, pi1.Neg()}, 0)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := n.Fanin(and, 0); got != pi0 {
		t.Errorf("fanin 0 = %v, want %v", got, pi0)
	}
	if got := n.Fanin(and, 1); got != pi1.Neg() {
		t.Errorf("fanin 1 = %v, want %v", got, pi1.Neg())
	}
}

func TestArityMismatch(t *testing.T) {
	n := New(ModeFreeForm)
	pi0, _ := n.Add(GatePI, nil, 0)
	_, err := n.Add(GateAnd, []lit.Lit{pi0}, 0)
	if err == nil {
		t.Fatal("expected arity mismatch error")
	}
	var ae *ArityMismatchError
	if !asArity(err, &ae) {
		t.Fatalf("expected *ArityMismatchError, got %T: %v", err, err)
	}
}

func asArity(err error, target **ArityMismatchError) bool {
	e, ok := err.(*ArityMismatchError)
	if ok {
		*target = e
	}
	return ok
}

func TestModeViolation(t *testing.T) {
	n := New(ModeAIG)
	pi0, _ := n.Add(GatePI, nil, 0)
	pi1, _ := n.Add(GatePI, nil, 1)
	if _, err := n.Add(GateXor, []lit.Lit{pi0, pi1}, 0); err == nil {
		t.Fatal("expected ModeViolationError for Xor in AIG mode")
	}
}

func TestRemoveLiveFanin(t *testing.T) {
	n := New(ModeFreeForm)
	n.NewFanoutCount()
	pi0, _ := n.Add(GatePI, nil, 0)
	pi1, _ := n.Add(GatePI, nil, 1)
	n.Add(GateAnd, []lit.Lit{pi0, pi1}, 0)

	if err := n.Remove(pi0, true); err == nil {
		t.Fatal("expected LiveFaninError")
	}
}

func TestCompactIdempotent(t *testing.T) {
	n := New(ModeFreeForm)
	pi0, _ := n.Add(GatePI, nil, 0)
	pi1, _ := n.Add(GatePI, nil, 1)
	and, _ := n.Add(GateAnd, []lit.Lit{pi0, pi1}, 0)
	n.Add(GatePO, []lit.Lit{and}, 0)

	n.Remove(pi1, false) // leaves a tombstone; pi1 no longer live, and's fanin now dangles in test data only
	_ = pi1

	remap1 := n.Compact(nil)
	remap2 := n.Compact(nil)

	// Second compact on an already-dense netlist should be an identity
	// remap for every still-live wire.
	for id := uint32(1); id < uint32(len(remap2)); id++ {
		if remap2[id].IsNull() {
			continue
		}
		if remap2[id].Id() != id {
			t.Errorf("second compact changed id %d -> %d", id, remap2[id].Id())
		}
	}
	_ = remap1
}

func TestTopoOrderInputFirst(t *testing.T) {
	n := New(ModeFreeForm)
	pi0, _ := n.Add(GatePI, nil, 0)
	pi1, _ := n.Add(GatePI, nil, 1)
	and, _ := n.Add(GateAnd, []lit.Lit{pi0, pi1}, 0)
	po, _ := n.Add(GatePO, []lit.Lit{and}, 0)

	order := n.TopoFromSinks([]lit.Lit{po})
	pos := make(map[uint32]int)
	for i, w := range order {
		pos[w.Id()] = i
	}
	if pos[pi0.Id()] >= pos[and.Id()] {
		t.Error("pi0 must precede and")
	}
	if pos[and.Id()] >= pos[po.Id()] {
		t.Error("and must precede po")
	}
}

func TestFlopBreaksCycle(t *testing.T) {
	n := New(ModeFreeForm)
	flop, _ := n.Add(GateFlop, []lit.Lit{lit.Nil}, 0)
	not, _ := n.Add(GateNot, []lit.Lit{flop}, 0)
	n.Change(flop, GateFlop, []lit.Lit{not}, 0)
	po, _ := n.Add(GatePO, []lit.Lit{flop}, 0)

	order := n.TopoFromSinks([]lit.Lit{po})
	if len(order) == 0 {
		t.Fatal("expected nonempty topo order")
	}
}

func TestDedupeMerges(t *testing.T) {
	n := New(ModeFreeForm)
	pi0, _ := n.Add(GatePI, nil, 0)
	pi1, _ := n.Add(GatePI, nil, 1)
	a1, _ := n.Add(GateAnd, []lit.Lit{pi0, pi1}, 0)
	a2, _ := n.Add(GateAnd, []lit.Lit{pi0, pi1}, 0)
	po, _ := n.Add(GatePO, []lit.Lit{a2}, 0)

	removed := n.Dedupe()
	if removed != 1 {
		t.Fatalf("expected 1 gate removed, got %d", removed)
	}
	if got := n.Fanin(po, 0); got.Id() != a1.Id() {
		t.Errorf("PO fanin not redirected to surviving representative: got %v want %v", got, a1)
	}
	if n.TypeOf(a2) != GateNull {
		t.Error("duplicate gate should be tombstoned")
	}
}
