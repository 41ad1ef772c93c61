package gig

import "github.com/rawblock/zzcore/pkg/lit"

// FanoutEdge is a single reverse edge: parent's pin index consumes the
// owning gate's output.
type FanoutEdge struct {
	Parent lit.Lit
	Pin    int
}

// Fanouts is the immutable, static reverse-edge index built once over a
// frozen netlist. Each gate gets either an inline single
// fanout or an offset+length into a shared pool.
type Fanouts struct {
	inline   map[uint32]FanoutEdge
	poolOff  map[uint32]int
	poolLen  map[uint32]int
	pool     []FanoutEdge
}

// NewFanouts builds the static fanout index. The netlist must be frozen.
func (n *Netlist) NewFanouts() (*Fanouts, error) {
	if !n.frozen {
		return nil, errNotFrozen
	}
	byChild := make(map[uint32][]FanoutEdge)
	for _, w := range n.All() {
		g := &n.gates[w.Id()]
		for i := 0; i < g.Arity(); i++ {
			child := n.fanin(g, i)
			if child.IsNull() {
				continue
			}
			byChild[child.Id()] = append(byChild[child.Id()], FanoutEdge{Parent: w, Pin: i})
		}
	}
	f := &Fanouts{
		inline:  make(map[uint32]FanoutEdge),
		poolOff: make(map[uint32]int),
		poolLen: make(map[uint32]int),
	}
	for id, edges := range byChild {
		if len(edges) == 1 {
			f.inline[id] = edges[0]
			continue
		}
		f.poolOff[id] = len(f.pool)
		f.poolLen[id] = len(edges)
		f.pool = append(f.pool, edges...)
	}
	n.attach(tagFanouts, f)
	return f, nil
}

// Of returns every fanout edge of w.
func (f *Fanouts) Of(w lit.Lit) []FanoutEdge {
	if e, ok := f.inline[w.Id()]; ok {
		return []FanoutEdge{e}
	}
	if off, ok := f.poolOff[w.Id()]; ok {
		return f.pool[off : off+f.poolLen[w.Id()]]
	}
	return nil
}

func (f *Fanouts) Remap(remap []lit.Lit) {
	// Static fanouts require rebuilding after compaction; callers rebuild
	// by calling NewFanouts again once the netlist is refrozen.
}

var errNotFrozen = errFanoutsNeedFrozen{}

type errFanoutsNeedFrozen struct{}

func (errFanoutsNeedFrozen) Error() string { return "gig: static fanouts require a frozen netlist" }

// --- Dynamic fanouts ----------------------------------------------------

// dynEdges holds one gate's reverse edges in a single slice, together with
// how many of them are stale.
type dynEdges struct {
	edges []FanoutEdge
	stale int // count of lazily-deleted (not yet trimmed) entries
}

// DynFanouts is the listener-driven reverse-edge index that stays correct
// across Add/Remove/Compact. Lazy deletion leaves stale
// entries in place; Trim() rewrites to drop them once the stale fraction
// crosses the threshold, mirroring original_source/Netlist/DynFanouts.cc's
// amortized compaction instead of rebuilding on every edit.
type DynFanouts struct {
	n      *Netlist
	byGate map[uint32]*dynEdges
	count  map[uint32]int // exact, separate from the possibly-stale list
}

const trimStaleThreshold = 0.25

// NewDynFanouts attaches a DynFanouts gob, back-filling from the netlist's
// current contents.
func (n *Netlist) NewDynFanouts() *DynFanouts {
	df := &DynFanouts{n: n, byGate: make(map[uint32]*dynEdges), count: make(map[uint32]int)}
	for _, w := range n.All() {
		g := &n.gates[w.Id()]
		for i := 0; i < g.Arity(); i++ {
			child := n.fanin(g, i)
			if !child.IsNull() {
				df.push(child.Id(), FanoutEdge{Parent: w, Pin: i})
			}
		}
	}
	n.attach(tagDynFanouts, df)
	n.AddListener(df, EvAdd|EvRemove|EvCompact)
	return df
}

func (df *DynFanouts) push(childID uint32, e FanoutEdge) {
	de, ok := df.byGate[childID]
	if !ok {
		de = &dynEdges{}
		df.byGate[childID] = de
	}
	de.edges = append(de.edges, e)
	df.count[childID]++
}

// Notify implements Listener: on Add it records new edges from the newly
// added gate's fanins; on Remove it marks this gate's incoming edges stale
// and decrements the exact count at each child; on Compact it rebuilds.
func (df *DynFanouts) Notify(ev Event) {
	switch ev.Kind {
	case EvAdd:
		g := &df.n.gates[ev.Wire.Id()]
		for i := 0; i < g.Arity(); i++ {
			child := df.n.fanin(g, i)
			if !child.IsNull() {
				df.push(child.Id(), FanoutEdge{Parent: ev.Wire, Pin: i})
			}
		}
	case EvRemove:
		g := &df.n.gates[ev.Wire.Id()]
		for i := 0; i < g.Arity(); i++ {
			if child := df.n.fanin(g, i); !child.IsNull() {
				df.count[child.Id()]--
			}
		}
		for _, de := range df.byGate {
			for i := range de.edges {
				if de.edges[i].Parent.Id() == ev.Wire.Id() {
					de.stale++
				}
			}
		}
		if de, ok := df.count[ev.Wire.Id()]; ok && de >= 0 {
			delete(df.count, ev.Wire.Id())
			delete(df.byGate, ev.Wire.Id())
		}
	case EvCompact:
		df.Remap(ev.Remap)
	}
}

// List returns w's fanout edges, possibly including stale entries not yet
// trimmed.
func (df *DynFanouts) List(w lit.Lit) []FanoutEdge {
	de, ok := df.byGate[w.Id()]
	if !ok {
		return nil
	}
	return de.edges
}

// Count returns the exact, always-current fanout count of w.
func (df *DynFanouts) Count(w lit.Lit) int { return df.count[w.Id()] }

// Trim rewrites every gate's edge list to drop stale entries and shrink
// capacity, but only where the stale fraction exceeds trimStaleThreshold —
// an amortized sweep rather than a rebuild on every edit.
func (df *DynFanouts) Trim() {
	for id, de := range df.byGate {
		if len(de.edges) == 0 || float64(de.stale)/float64(len(de.edges)) < trimStaleThreshold {
			continue
		}
		live := make([]FanoutEdge, 0, len(de.edges)-de.stale)
		for _, e := range de.edges {
			if df.n.gates[e.Parent.Id()].tombstone {
				continue
			}
			live = append(live, e)
		}
		df.byGate[id] = &dynEdges{edges: live}
	}
}

func (df *DynFanouts) Remap(remap []lit.Lit) {
	next := make(map[uint32]*dynEdges, len(df.byGate))
	nextCount := make(map[uint32]int, len(df.count))
	for id, de := range df.byGate {
		if int(id) >= len(remap) || remap[id].IsNull() {
			continue
		}
		newID := remap[id].Id()
		live := make([]FanoutEdge, 0, len(de.edges))
		for _, e := range de.edges {
			if int(e.Parent.Id()) >= len(remap) || remap[e.Parent.Id()].IsNull() {
				continue
			}
			live = append(live, FanoutEdge{Parent: remap[e.Parent.Id()].XorSign(e.Parent.Sign()), Pin: e.Pin})
		}
		next[newID] = &dynEdges{edges: live}
		nextCount[newID] = len(live)
	}
	df.byGate = next
	df.count = nextCount
}

// --- FanoutCount ----------------------------------------------------------

// FanoutCount is a standalone maintained counter per gate, cheaper than a
// full DynFanouts when callers only need "is this gate still referenced".
type FanoutCount struct {
	n     *Netlist
	count map[uint32]int
}

// NewFanoutCount attaches a FanoutCount gob, back-filling from current
// contents.
func (n *Netlist) NewFanoutCount() *FanoutCount {
	fc := &FanoutCount{n: n, count: make(map[uint32]int)}
	for _, w := range n.All() {
		g := &n.gates[w.Id()]
		for i := 0; i < g.Arity(); i++ {
			if child := n.fanin(g, i); !child.IsNull() {
				fc.count[child.Id()]++
			}
		}
	}
	n.attach(tagFanoutCount, fc)
	n.AddListener(fc, EvAdd|EvRemove|EvCompact)
	return fc
}

func (fc *FanoutCount) Count(w lit.Lit) int { return fc.count[w.Id()] }

func (fc *FanoutCount) Notify(ev Event) {
	switch ev.Kind {
	case EvAdd:
		g := &fc.n.gates[ev.Wire.Id()]
		for i := 0; i < g.Arity(); i++ {
			if child := fc.n.fanin(g, i); !child.IsNull() {
				fc.count[child.Id()]++
			}
		}
	case EvRemove:
		g := &fc.n.gates[ev.Wire.Id()]
		for i := 0; i < g.Arity(); i++ {
			if child := fc.n.fanin(g, i); !child.IsNull() {
				fc.count[child.Id()]--
			}
		}
		delete(fc.count, ev.Wire.Id())
	case EvCompact:
		fc.Remap(ev.Remap)
	}
}

func (fc *FanoutCount) Remap(remap []lit.Lit) {
	next := make(map[uint32]int, len(fc.count))
	for id, c := range fc.count {
		if int(id) < len(remap) && !remap[id].IsNull() {
			next[remap[id].Id()] = c
		}
	}
	fc.count = next
}
