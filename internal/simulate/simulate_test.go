package simulate

import (
	"testing"

	"github.com/rawblock/zzcore/internal/gig"
	"github.com/rawblock/zzcore/pkg/lit"
)

func TestRunAndBasic(t *testing.T) {
	n := gig.New(gig.ModeFreeForm)
	a, _ := n.Add(gig.GatePI, nil, 1)
	b, _ := n.Add(gig.GatePI, nil, 2)
	and, _ := n.Add(gig.GateAnd, []lit.Lit{a, b}, 0)
	po, _ := n.Add(gig.GatePO, []lit.Lit{and}, 1)

	s := New(n)
	frames := []Frame{{PI: map[int32]Tri{1: Tri1, 2: Tri1}}}
	snaps := s.Run(frames)
	if got := snaps[0].Value(po); got != Tri1 {
		t.Errorf("AND(1,1) at PO = %v, want 1", got)
	}

	frames = []Frame{{PI: map[int32]Tri{1: Tri1, 2: Tri0}}}
	snaps = s.Run(frames)
	if got := snaps[0].Value(po); got != Tri0 {
		t.Errorf("AND(1,0) at PO = %v, want 0", got)
	}
}

func TestRunUndefinedInputYieldsX(t *testing.T) {
	n := gig.New(gig.ModeFreeForm)
	a, _ := n.Add(gig.GatePI, nil, 1)
	b, _ := n.Add(gig.GatePI, nil, 2)
	and, _ := n.Add(gig.GateAnd, []lit.Lit{a, b}, 0)
	po, _ := n.Add(gig.GatePO, []lit.Lit{and}, 1)

	s := New(n)
	// a=0 forces AND=0 regardless of b, even though b is X.
	frames := []Frame{{PI: map[int32]Tri{1: Tri0, 2: TriX}}}
	snaps := s.Run(frames)
	if got := snaps[0].Value(po); got != Tri0 {
		t.Errorf("AND(0,X) at PO = %v, want 0 (controlling value)", got)
	}

	// a=1,b=X is genuinely undetermined.
	frames = []Frame{{PI: map[int32]Tri{1: Tri1, 2: TriX}}}
	snaps = s.Run(frames)
	if got := snaps[0].Value(po); got != TriX {
		t.Errorf("AND(1,X) at PO = %v, want X", got)
	}
}

func TestRunFlopPropagatesAcrossFrames(t *testing.T) {
	n := gig.New(gig.ModeFreeForm)
	pi, _ := n.Add(gig.GatePI, nil, 1)
	flop, _ := n.Add(gig.GateFlop, []lit.Lit{pi}, 1)
	po, _ := n.Add(gig.GatePO, []lit.Lit{flop}, 1)

	s := New(n)
	frames := []Frame{
		{FlopInit: map[int32]Tri{1: Tri0}, PI: map[int32]Tri{1: Tri1}},
		{PI: map[int32]Tri{1: Tri0}},
		{PI: map[int32]Tri{1: Tri0}},
	}
	snaps := s.Run(frames)
	if got := snaps[0].Value(po); got != Tri0 {
		t.Errorf("frame 0 PO = %v, want 0 (flop init)", got)
	}
	if got := snaps[1].Value(po); got != Tri1 {
		t.Errorf("frame 1 PO = %v, want 1 (frame 0's PI)", got)
	}
	if got := snaps[2].Value(po); got != Tri0 {
		t.Errorf("frame 2 PO = %v, want 0 (frame 1's PI)", got)
	}
}

func TestCheckProperty(t *testing.T) {
	n := gig.New(gig.ModeFreeForm)
	a, _ := n.Add(gig.GatePI, nil, 1)
	po, _ := n.Add(gig.GatePO, []lit.Lit{a}, 1)
	s := New(n)
	snaps := s.Run([]Frame{{PI: map[int32]Tri{1: Tri1}}})

	ok, err := CheckProperty(snaps, 0, po, Tri1)
	if err != nil || !ok {
		t.Fatalf("CheckProperty = %v, %v; want true, nil", ok, err)
	}
	ok, err = CheckProperty(snaps, 0, po, Tri0)
	if err != nil || ok {
		t.Fatalf("CheckProperty = %v, %v; want false, nil", ok, err)
	}
	if _, err := CheckProperty(snaps, 5, po, Tri1); err == nil {
		t.Error("expected out-of-range frame to error")
	}
}

func TestMonotonicityNeverTogglesDefinedBit(t *testing.T) {
	// Property 6: replacing a defined bit with X only makes outputs more-X.
	n := gig.New(gig.ModeFreeForm)
	a, _ := n.Add(gig.GatePI, nil, 1)
	b, _ := n.Add(gig.GatePI, nil, 2)
	c, _ := n.Add(gig.GatePI, nil, 3)
	xo, _ := n.Add(gig.GateXor, []lit.Lit{a, b}, 0)
	mux, _ := n.Add(gig.GateMux, []lit.Lit{c, xo, a}, 0)
	po, _ := n.Add(gig.GatePO, []lit.Lit{mux}, 1)

	s := New(n)
	full := map[int32]Tri{1: Tri1, 2: Tri0, 3: Tri1}
	defSnaps := s.Run([]Frame{{PI: full}})
	defVal := defSnaps[0].Value(po)

	for flipped := int32(1); flipped <= 3; flipped++ {
		partial := map[int32]Tri{}
		for k, v := range full {
			partial[k] = v
		}
		partial[flipped] = TriX
		snaps := s.Run([]Frame{{PI: partial}})
		got := snaps[0].Value(po)
		if defVal.Defined() && got.Defined() && got != defVal {
			t.Errorf("flipping PI %d to X toggled output %v -> %v", flipped, defVal, got)
		}
	}
}

func TestShadowReplayCommitAndUndo(t *testing.T) {
	n := gig.New(gig.ModeFreeForm)
	a, _ := n.Add(gig.GatePI, nil, 1)
	b, _ := n.Add(gig.GatePI, nil, 2)
	and, _ := n.Add(gig.GateAnd, []lit.Lit{a, b}, 0)
	po, _ := n.Add(gig.GatePO, []lit.Lit{and}, 1)

	s := New(n)
	snaps := s.Run([]Frame{{PI: map[int32]Tri{1: Tri1, 2: Tri1}}})
	if got := snaps[0].Value(po); got != Tri1 {
		t.Fatalf("baseline PO = %v, want 1", got)
	}

	r := NewShadowReplay(s, snaps[0])
	r.Propagate(b, Tri0)
	if got := r.Value(po); got != Tri0 {
		t.Errorf("after flipping b to 0, PO = %v, want 0", got)
	}
	r.Undo()
	if got := r.Value(po); got != Tri1 {
		t.Errorf("after Undo, PO = %v, want 1 (restored)", got)
	}

	r.Propagate(b, Tri0)
	r.Commit()
	if got := r.Value(po); got != Tri0 {
		t.Errorf("after Commit, PO = %v, want 0", got)
	}
	r.Undo() // no-op: nothing pending since the last Commit
	if got := r.Value(po); got != Tri0 {
		t.Errorf("Undo after Commit should not revert committed state, got %v", got)
	}
}

func TestTriEvalHiLoLattice(t *testing.T) {
	if got := triEval([]Tri{Tri1, TriX}, andTable); got != TriX {
		t.Errorf("AND(1,X) = %v, want X", got)
	}
	if got := triEval([]Tri{Tri0, TriX}, andTable); got != Tri0 {
		t.Errorf("AND(0,X) = %v, want 0 (controlling value)", got)
	}
	if got := triEval([]Tri{TriX, TriX}, xorTable); got != TriX {
		t.Errorf("XOR(X,X) = %v, want X", got)
	}
}
