package gig

// ScopedFanoutCount is a "scoped pob" guard, acquiring a
// original_source's Gig/Macros.hh: it builds a FanoutCount gob on
// construction if none exists, and removes it again on Close if it was the
// one that created it. Grounded on the teacher's deferred-cleanup idiom
// (e.g. internal/db/postgres.go's `defer func() { _ = tx.Rollback(ctx) }()`),
// generalized into a reusable guard value instead of an ad hoc defer.
type ScopedFanoutCount struct {
	n       *Netlist
	owned   bool
	fc      *FanoutCount
}

// NewScopedFanoutCount acquires (or reuses) the netlist's FanoutCount gob.
// Callers should `defer guard.Close()`.
func NewScopedFanoutCount(n *Netlist) *ScopedFanoutCount {
	if g, ok := n.gobs[tagFanoutCount]; ok {
		return &ScopedFanoutCount{n: n, fc: g.(*FanoutCount), owned: false}
	}
	fc := n.NewFanoutCount()
	return &ScopedFanoutCount{n: n, fc: fc, owned: true}
}

// Get returns the guarded FanoutCount gob.
func (s *ScopedFanoutCount) Get() *FanoutCount { return s.fc }

// Close releases the gob if this guard created it; a borrowed gob is left
// alone so concurrent scopes don't fight over ownership.
func (s *ScopedFanoutCount) Close() {
	if s.owned {
		s.n.detach(tagFanoutCount)
	}
}

// AutoTopoOrder is the same pattern applied to the cached topological-order
// gob: it is built (if absent) on construction and torn down on Close,
// regardless of which code path the caller returns through.
type AutoTopoOrder struct {
	n     *Netlist
	owned bool
	order []uint32
}

// NewAutoTopoOrder computes (or reuses) the up-order over every global sink.
func NewAutoTopoOrder(n *Netlist) *AutoTopoOrder {
	if g, ok := n.gobs[tagTopoOrder]; ok {
		return &AutoTopoOrder{n: n, order: g.(*topoOrderGob).ids, owned: false}
	}
	order := computeTopoOrder(n, nil, nil, false)
	n.attach(tagTopoOrder, &topoOrderGob{ids: order})
	return &AutoTopoOrder{n: n, order: order, owned: true}
}

// Order returns the cached identifier sequence, input-first.
func (a *AutoTopoOrder) Order() []uint32 { return a.order }

// Close tears down the gob if this guard created it.
func (a *AutoTopoOrder) Close() {
	if a.owned {
		a.n.detach(tagTopoOrder)
	}
}
