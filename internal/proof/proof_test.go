package proof

import (
	"testing"

	"github.com/rawblock/zzcore/pkg/lit"
)

func mkLit(id uint32, sign bool) lit.Lit { return lit.Mk(id, sign) }

type recording struct {
	roots  map[ClauseID][]lit.Lit
	chains map[ClauseID]bool
}

func newRecording() *recording {
	return &recording{roots: make(map[ClauseID][]lit.Lit), chains: make(map[ClauseID]bool)}
}

func (r *recording) Root(id ClauseID, clause []lit.Lit) { r.roots[id] = clause }
func (r *recording) Chain(id ClauseID, initial ClauseID, steps []struct {
	Pivot lit.Lit
	C     ClauseID
}) {
	r.chains[id] = true
}

func TestAddRootRoundTrip(t *testing.T) {
	l := New()
	lits := []lit.Lit{mkLit(4, false), mkLit(7, true), mkLit(12, false)}
	id := l.AddRoot(lits)
	if l.Refcount(id) != 1 {
		t.Fatalf("refcount = %d, want 1", l.Refcount(id))
	}

	rec := newRecording()
	l.Iterate(id, rec)
	got := rec.roots[id]
	if len(got) != len(lits) {
		t.Fatalf("len = %d, want %d", len(got), len(lits))
	}
	for i := range lits {
		if got[i] != lits[i] {
			t.Errorf("lit %d = %v, want %v", i, got[i], lits[i])
		}
	}
}

func TestEndChainZeroStepsShortCircuits(t *testing.T) {
	l := New()
	root := l.AddRoot([]lit.Lit{mkLit(1, false)})
	cb := l.BeginChain(root)
	id := cb.End()
	if id != root {
		t.Fatalf("zero-step chain should return the initial id unchanged, got %v want %v", id, root)
	}
	if l.Refcount(root) != 1 {
		t.Fatalf("refcount must be unaffected by a short-circuited chain, got %d", l.Refcount(root))
	}
}

func TestChainReferencesBumpRefcount(t *testing.T) {
	l := New()
	c0 := l.AddRoot([]lit.Lit{mkLit(1, false), mkLit(2, false)})
	c1 := l.AddRoot([]lit.Lit{mkLit(1, true), mkLit(3, false)})

	cb := l.BeginChain(c0)
	cb.Resolve(c1, mkLit(1, false))
	chain := cb.End()

	if l.Refcount(c0) != 2 {
		t.Errorf("c0 refcount = %d, want 2", l.Refcount(c0))
	}
	if l.Refcount(c1) != 2 {
		t.Errorf("c1 refcount = %d, want 2", l.Refcount(c1))
	}
	if l.Refcount(chain) != 1 {
		t.Errorf("chain refcount = %d, want 1", l.Refcount(chain))
	}
}

func TestDeletedRecursivelyDereferencesDescendants(t *testing.T) {
	l := New()
	c0 := l.AddRoot([]lit.Lit{mkLit(1, false)})
	c1 := l.AddRoot([]lit.Lit{mkLit(2, false)})

	cb := l.BeginChain(c0)
	cb.Resolve(c1, mkLit(1, false))
	chain := cb.End()

	l.Deleted(chain)
	if l.Refcount(c0) != 1 {
		t.Errorf("c0 refcount after chain deletion = %d, want 1", l.Refcount(c0))
	}
	if l.Refcount(c1) != 1 {
		t.Errorf("c1 refcount after chain deletion = %d, want 1", l.Refcount(c1))
	}

	l.Deleted(c0)
	l.Deleted(c1)
	if l.Refcount(c0) != 0 || l.Refcount(c1) != 0 {
		t.Error("roots should be fully dereferenced")
	}
}

func TestIterateSkipsAlreadyProcessed(t *testing.T) {
	l := New()
	c0 := l.AddRoot([]lit.Lit{mkLit(1, false)})
	c1 := l.AddRoot([]lit.Lit{mkLit(2, false)})
	cb := l.BeginChain(c0)
	cb.Resolve(c1, mkLit(1, false))
	chain := cb.End()

	rec := newRecording()
	l.Iterate(chain, rec)
	if len(rec.roots) != 2 || !rec.chains[chain] {
		t.Fatalf("first iterate incomplete: roots=%d chains=%v", len(rec.roots), rec.chains)
	}

	rec2 := newRecording()
	l.Iterate(chain, rec2)
	if len(rec2.roots) != 0 {
		t.Fatalf("second iterate should skip already-processed ids: got %d", len(rec2.roots))
	}
}

func TestRecycledIDIsTreatedAsNewClause(t *testing.T) {
	l := New()
	c0 := l.AddRoot([]lit.Lit{mkLit(1, false)})

	rec := newRecording()
	l.Iterate(c0, rec)
	if len(rec.roots[c0]) != 1 {
		t.Fatalf("expected first root payload recorded")
	}

	l.Deleted(c0)
	c0b := l.AddRoot([]lit.Lit{mkLit(5, false), mkLit(6, true)})
	if c0b != c0 {
		t.Skip("id was not recycled onto the same slot; nothing to verify here")
	}

	rec2 := newRecording()
	l.Iterate(c0b, rec2)
	if len(rec2.roots[c0b]) != 2 {
		t.Fatalf("recycled id must replay as the new clause, got %d literals", len(rec2.roots[c0b]))
	}
}

func TestVarintRoundTrip(t *testing.T) {
	vals := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40}
	var buf []byte
	offs := make([]int, len(vals))
	for i, v := range vals {
		offs[i] = len(buf)
		buf = appendUvarint(buf, v)
	}
	off := 0
	for i, v := range vals {
		if off != offs[i] {
			t.Fatalf("offset mismatch at %d", i)
		}
		got, next := readUvarint(buf, off)
		if got != v {
			t.Errorf("readUvarint(%d) = %d, want %d", i, got, v)
		}
		off = next
	}
}

func TestZigzagRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 2, -2, 1 << 30, -(1 << 30)} {
		if got := zigzagDecode(zigzagEncode(v)); got != v {
			t.Errorf("zigzag round trip for %d got %d", v, got)
		}
	}
}
