// Package proof implements the append-only resolution-proof log from spec
// root clauses and resolution chains encoded as a compressed byte
// stream, refcounted garbage collection, and a topological replay iterator.
package proof

import "github.com/rawblock/zzcore/pkg/lit"

// ClauseID is a 31-bit index into the proof store. Ids are recycled when
// their refcount drops to zero.
type ClauseID uint32

// Clause is a sorted literal vector plus the O(1) non-subsumption
// abstraction bitmask.
type Clause struct {
	Lits        []lit.Lit
	Abstraction uint64
}

// Abstraction computes the bitmask: bit i set iff some literal's id ≡ i
// (mod 64).
func Abstraction(lits []lit.Lit) uint64 {
	var a uint64
	for _, l := range lits {
		a |= 1 << (l.Id() % 64)
	}
	return a
}

type recKind uint8

const (
	recRoot recKind = iota
	recChain
)

type header struct {
	kind   recKind
	off    int
	length int
	freed  bool
}

// Log is the append-only proof store.
type Log struct {
	data    []byte
	headers []header
	refs    []int
	gen     []int
	free    []ClauseID

	replayed map[ClauseID]int

	liveBytes  int
	freedBytes int
}

// New creates an empty proof log.
func New() *Log {
	return &Log{replayed: make(map[ClauseID]int)}
}

func (l *Log) allocID() ClauseID {
	if n := len(l.free); n > 0 {
		id := l.free[n-1]
		l.free = l.free[:n-1]
		return id
	}
	id := ClauseID(len(l.headers))
	l.headers = append(l.headers, header{})
	l.refs = append(l.refs, 0)
	l.gen = append(l.gen, 0)
	return id
}

// AddRoot stores a root clause and returns its id with refcount 1. Literals
// must already be sorted ascending (the caller, typically the SAT solver's
// add_clause, sorts before logging).
func (l *Log) AddRoot(lits []lit.Lit) ClauseID {
	id := l.allocID()
	start := len(l.data)
	l.data = appendUvarint(l.data, uint64(len(lits)))
	var prev uint32
	for i, lt := range lits {
		if i == 0 {
			l.data = appendUvarint(l.data, uint64(lt.Bits()))
		} else {
			l.data = appendUvarint(l.data, zigzagEncode(int64(lt.Bits())-int64(prev)))
		}
		prev = lt.Bits()
	}
	n := len(l.data) - start
	l.headers[id] = header{kind: recRoot, off: start, length: n}
	l.refs[id] = 1
	l.liveBytes += n
	return id
}

// chainStep is one resolution step: resolve the running clause with c on
// pivot.
type chainStep struct {
	pivot lit.Lit
	c     ClauseID
}

// ChainBuilder accumulates the steps of a resolution chain before it is
// materialized by End.
type ChainBuilder struct {
	log     *Log
	initial ClauseID
	steps   []chainStep
}

// BeginChain starts a resolution chain rooted at initial.
func (l *Log) BeginChain(initial ClauseID) *ChainBuilder {
	return &ChainBuilder{log: l, initial: initial}
}

// Resolve appends a resolution step against next on pivot.
func (cb *ChainBuilder) Resolve(next ClauseID, pivot lit.Lit) {
	cb.steps = append(cb.steps, chainStep{pivot: pivot, c: next})
}

// End materializes the chain. A zero-length chain is short-circuited: the
// initial id is returned unchanged (no new record, no refcount change).
func (cb *ChainBuilder) End() ClauseID {
	l := cb.log
	if len(cb.steps) == 0 {
		return cb.initial
	}
	id := l.allocID()
	start := len(l.data)
	l.data = appendUvarint(l.data, uint64(len(cb.steps)))
	l.data = appendUvarint(l.data, uint64(cb.initial))
	for _, s := range cb.steps {
		l.data = appendUvarint(l.data, uint64(s.pivot.Bits()))
		l.data = appendUvarint(l.data, uint64(s.c))
	}
	n := len(l.data) - start
	l.headers[id] = header{kind: recChain, off: start, length: n}
	l.refs[id] = 1
	l.liveBytes += n

	l.refs[cb.initial]++
	for _, s := range cb.steps {
		l.refs[s.c]++
	}
	return id
}

// decodeRoot parses the literal vector stored for a root header.
func (l *Log) decodeRoot(h header) []lit.Lit {
	off := h.off
	n, off2 := readUvarint(l.data, off)
	off = off2
	lits := make([]lit.Lit, n)
	var prev uint32
	for i := uint64(0); i < n; i++ {
		if i == 0 {
			v, no := readUvarint(l.data, off)
			off = no
			prev = uint32(v)
		} else {
			d, no := readUvarint(l.data, off)
			off = no
			prev = uint32(int64(prev) + zigzagDecode(d))
		}
		lits[i] = lit.FromBits(prev)
	}
	return lits
}

type decodedChain struct {
	initial ClauseID
	steps   []chainStep
}

func (l *Log) decodeChain(h header) decodedChain {
	off := h.off
	k, off2 := readUvarint(l.data, off)
	off = off2
	c0, off3 := readUvarint(l.data, off)
	off = off3
	dc := decodedChain{initial: ClauseID(c0)}
	for i := uint64(0); i < k; i++ {
		pv, o1 := readUvarint(l.data, off)
		off = o1
		cn, o2 := readUvarint(l.data, off)
		off = o2
		dc.steps = append(dc.steps, chainStep{pivot: lit.FromBits(uint32(pv)), c: ClauseID(cn)})
	}
	return dc
}

// Deleted decrements id's refcount; when it reaches zero, its descendants
// (for a chain: the initial clause and every step's referenced clause) are
// recursively dereferenced and id is pushed onto the freelist. If the
// freed byte count then exceeds the live byte count, Compact runs.
func (l *Log) Deleted(id ClauseID) {
	l.refs[id]--
	if l.refs[id] > 0 {
		return
	}
	h := l.headers[id]
	if h.kind == recChain && !h.freed {
		dc := l.decodeChain(h)
		l.Deleted(dc.initial)
		for _, s := range dc.steps {
			l.Deleted(s.c)
		}
	}
	if !h.freed {
		l.headers[id].freed = true
		l.liveBytes -= h.length
		l.freedBytes += h.length
		l.gen[id]++
		l.free = append(l.free, id)
	}
	if l.freedBytes > l.liveBytes {
		l.Compact()
	}
}

// Refcount returns id's current refcount (0 if freed).
func (l *Log) Refcount(id ClauseID) int {
	if int(id) >= len(l.refs) {
		return 0
	}
	return l.refs[id]
}

// Compact packs live payloads to the head of the byte stream and rewrites
// every header's offset.
func (l *Log) Compact() {
	newData := make([]byte, 0, l.liveBytes)
	for i := range l.headers {
		h := &l.headers[i]
		if h.freed || h.length == 0 {
			continue
		}
		newOff := len(newData)
		newData = append(newData, l.data[h.off:h.off+h.length]...)
		h.off = newOff
	}
	l.data = newData
	l.freedBytes = 0
}

// Visitor receives replayed proof records in dependency order.
type Visitor interface {
	Root(id ClauseID, clause []lit.Lit)
	Chain(id ClauseID, initial ClauseID, steps []struct {
		Pivot lit.Lit
		C     ClauseID
	})
}

// Iterate topologically replays the proof from roots to goal, calling
// visitor.Root/Chain once per id. Already-processed ids are skipped
// incrementally across calls to the same Log — but if an id was freed and
// its slot recycled for a different clause since the last Iterate call,
// the generation counter forces it to be treated as new, per the
// explicit warning that a repeated id is a new clause after recycling.
func (l *Log) Iterate(goal ClauseID, visitor Visitor) {
	var visit func(id ClauseID)
	visit = func(id ClauseID) {
		if l.replayed[id] == l.gen[id]+1 {
			return
		}
		h := l.headers[id]
		switch h.kind {
		case recRoot:
			visitor.Root(id, l.decodeRoot(h))
		case recChain:
			dc := l.decodeChain(h)
			visit(dc.initial)
			for _, s := range dc.steps {
				visit(s.c)
			}
			steps := make([]struct {
				Pivot lit.Lit
				C     ClauseID
			}, len(dc.steps))
			for i, s := range dc.steps {
				steps[i] = struct {
					Pivot lit.Lit
					C     ClauseID
				}{Pivot: s.pivot, C: s.c}
			}
			visitor.Chain(id, dc.initial, steps)
		}
		l.replayed[id] = l.gen[id] + 1
	}
	visit(goal)
}
