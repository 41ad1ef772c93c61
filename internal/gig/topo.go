package gig

import "github.com/rawblock/zzcore/pkg/lit"

type topoOrderGob struct {
	ids []uint32
}

func (t *topoOrderGob) Remap(remap []lit.Lit) {
	next := make([]uint32, 0, len(t.ids))
	for _, id := range t.ids {
		if int(id) < len(remap) && !remap[id].IsNull() {
			next = append(next, remap[id].Id())
		}
	}
	t.ids = next
}

// stopAt, if non-nil, returns true for a wire the traversal must not cross
// (it is emitted but not expanded further).
type stopAtFunc func(lit.Lit) bool

// computeTopoOrder performs an up-order traversal (combinational inputs to
// designated sinks, stopping at sequential elements) using an explicit
// work-stack to avoid recursion. If sinks is nil, every global
// sink (PO, SO, Flop-input) is used as a root. Every node, Flops included,
// is emitted exactly once whatever flopAtOutput says; a Flop never appears
// a second time at its output position.
func computeTopoOrder(n *Netlist, sinks []lit.Lit, stop stopAtFunc, flopAtOutput bool) []uint32 {
	if sinks == nil {
		sinks = globalSinks(n)
	}

	const (
		white = iota // unvisited
		gray         // on stack, children not yet emitted
		black        // emitted
	)
	color := make(map[uint32]int)
	var order []uint32

	type frame struct {
		w        lit.Lit
		childIdx int
	}

	for _, root := range sinks {
		if color[root.Id()] == black {
			continue
		}
		stack := []frame{{w: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			id := top.w.Id()
			if color[id] == white {
				color[id] = gray
			}
			t := n.TypeOf(top.w)
			if t == GateConst {
				color[id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			crossBoundary := t == GateFlop && stop == nil
			if stop != nil && stop(top.w) {
				crossBoundary = true
			}

			g := &n.gates[id]
			arity := g.Arity()
			if crossBoundary {
				arity = 0 // don't descend past a sequential / stop boundary
			}

			if top.childIdx < arity {
				child := n.fanin(g, top.childIdx)
				top.childIdx++
				if child.IsNull() || color[child.Id()] == black {
					continue
				}
				if color[child.Id()] == gray {
					continue // cycle guard: must already pass through a flop
				}
				stack = append(stack, frame{w: child})
				continue
			}

			// All children emitted (or none): emit this node. A node turns
			// black only here, so both branches append it exactly once.
			color[id] = black
			if t != GateFlop || flopAtOutput {
				order = append(order, id)
			} else if _, seen := seenSet(order, id); !seen {
				order = append(order, id)
			}
			stack = stack[:len(stack)-1]
		}
	}
	return order
}

func seenSet(order []uint32, id uint32) (int, bool) {
	for i, v := range order {
		if v == id {
			return i, true
		}
	}
	return -1, false
}

func globalSinks(n *Netlist) []lit.Lit {
	var out []lit.Lit
	out = append(out, n.IterType(GatePO)...)
	out = append(out, n.IterType(GateSO)...)
	for _, w := range n.IterType(GateFlop) {
		out = append(out, n.Fanin(w, 0))
	}
	return out
}

// TopoFromSinks computes the up-order rooted at the given sinks.
func (n *Netlist) TopoFromSinks(sinks []lit.Lit) []lit.Lit {
	ids := computeTopoOrder(n, sinks, nil, false)
	return idsToLits(ids)
}

// TopoAll computes the up-order rooted at every global sink.
func (n *Netlist) TopoAll() []lit.Lit {
	ids := computeTopoOrder(n, nil, nil, false)
	return idsToLits(ids)
}

// TopoWithStop computes the up-order rooted at sinks, treating any wire for
// which stop returns true as a traversal boundary (not descended past).
func (n *Netlist) TopoWithStop(sinks []lit.Lit, stop func(lit.Lit) bool) []lit.Lit {
	ids := computeTopoOrder(n, sinks, stop, false)
	return idsToLits(ids)
}

func idsToLits(ids []uint32) []lit.Lit {
	out := make([]lit.Lit, len(ids))
	for i, id := range ids {
		out[i] = lit.Mk(id, false)
	}
	return out
}
