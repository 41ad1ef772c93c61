package gig

import "github.com/rawblock/zzcore/pkg/lit"

// strashKey is the canonicalized fanin tuple used to hash AND/XOR/MUX/MAJ/
// LUT4 gates. Commutative operands are sorted by lit.Less before hashing so
// strash_and(x, y) and strash_and(y, x) collide.
type strashKey struct {
	typ        GateType
	a, b, c, d lit.Lit // unused slots carry lit.Nil
	ftb        uint16  // Lut4 truth table; zero for every other type
}

// Strash is the structural-hash gob: a unique-table over canonical fanin
// tuples for strash-owned gate types, consulted by StrashAnd/StrashXor/
// StrashMux/StrashMaj/StrashLut4 to canonicalize on insertion.
type Strash struct {
	n     *Netlist
	table map[strashKey]lit.Lit
}

// NewStrash attaches a Strash gob to n. Once attached, Add refuses
// strash-owned types (they must go through the Strash* factory methods).
func (n *Netlist) NewStrash() *Strash {
	s := &Strash{n: n, table: make(map[strashKey]lit.Lit)}
	n.attach(tagStrash, s)
	n.AddListener(s, EvRemove|EvCompact)
	return s
}

func (s *Strash) Notify(ev Event) {
	switch ev.Kind {
	case EvRemove:
		s.evict(ev.Wire)
	case EvCompact:
		s.rehash(ev.Remap)
	}
}

func (s *Strash) evict(w lit.Lit) {
	for k, v := range s.table {
		if v.Id() == w.Id() {
			delete(s.table, k)
			return
		}
	}
}

func (s *Strash) rehash(remap []lit.Lit) {
	next := make(map[strashKey]lit.Lit, len(s.table))
	for k, v := range s.table {
		if int(v.Id()) >= len(remap) || remap[v.Id()].IsNull() {
			continue
		}
		nk := k
		nk.a = remapLit(remap, k.a)
		nk.b = remapLit(remap, k.b)
		nk.c = remapLit(remap, k.c)
		nk.d = remapLit(remap, k.d)
		next[nk] = remap[v.Id()].XorSign(v.Sign())
	}
	s.table = next
}

func remapLit(remap []lit.Lit, l lit.Lit) lit.Lit {
	if l.IsNull() {
		return lit.Nil
	}
	if int(l.Id()) >= len(remap) || remap[l.Id()].IsNull() {
		return lit.Nil
	}
	return remap[l.Id()].XorSign(l.Sign())
}

// Remap is a no-op; rehashing happens via the EvCompact notification, which
// carries the same remap table gobs receive directly.
func (s *Strash) Remap(remap []lit.Lit) {}

func (s *Strash) lookup(k strashKey) (lit.Lit, bool) {
	v, ok := s.table[k]
	return v, ok
}

func (s *Strash) insert(k strashKey, w lit.Lit) {
	s.table[k] = w
}

// StrashAnd canonicalizes and returns the 2-input AND of a, b: commutative
// ordering, constant simplification (x&1=x, x&0=0, x&x=x, x&~x=0), and
// unique-table lookup/insert.
func (s *Strash) StrashAnd(a, b lit.Lit) lit.Lit {
	n := s.n
	c0, c1 := n.Const0(), n.Const1()
	switch {
	case a == c1:
		return b
	case b == c1:
		return a
	case a == c0 || b == c0:
		return c0
	case a.Id() == b.Id():
		if a.Sign() == b.Sign() {
			return a
		}
		return c0
	}
	if lit.Less(b, a) {
		a, b = b, a
	}
	k := strashKey{typ: GateAnd, a: a, b: b}
	if w, ok := s.lookup(k); ok {
		return w
	}
	w, err := rawAdd(n, GateAnd, []lit.Lit{a, b})
	if err != nil {
		return lit.ErrorLit
	}
	s.insert(k, w)
	return w
}

// StrashOr is derived from StrashAnd via De Morgan: a|b = ~(~a & ~b).
func (s *Strash) StrashOr(a, b lit.Lit) lit.Lit {
	return s.StrashAnd(a.Neg(), b.Neg()).Neg()
}

// StrashXor canonicalizes and returns the 2-input XOR of a, b.
func (s *Strash) StrashXor(a, b lit.Lit) lit.Lit {
	n := s.n
	c0, c1 := n.Const0(), n.Const1()
	if a.Id() == b.Id() {
		if a.Sign() == b.Sign() {
			return c0
		}
		return c1
	}
	// Pull any negation out to the result sign, then order operands.
	sign := false
	if a.Sign() {
		a = a.Neg()
		sign = !sign
	}
	if b.Sign() {
		b = b.Neg()
		sign = !sign
	}
	if a == c0 {
		return b.XorSign(sign)
	}
	if b == c0 {
		return a.XorSign(sign)
	}
	if lit.Less(b, a) {
		a, b = b, a
	}
	k := strashKey{typ: GateXor, a: a, b: b}
	w, ok := s.lookup(k)
	if !ok {
		var err error
		w, err = rawAdd(n, GateXor, []lit.Lit{a, b})
		if err != nil {
			return lit.ErrorLit
		}
		s.insert(k, w)
	}
	return w.XorSign(sign)
}

// StrashMux canonicalizes and returns select-then-else mux(s, d1, d0):
// mux(s,d,d)=d, and constant/selector simplifications (property
// 2's strash_mux(s, d, d) == d).
func (s *Strash) StrashMux(sel, d1, d0 lit.Lit) lit.Lit {
	n := s.n
	if d1.Id() == d0.Id() && d1.Sign() == d0.Sign() {
		return d1
	}
	if sel == n.Const1() {
		return d1
	}
	if sel == n.Const0() {
		return d0
	}
	// Canonical form: pull a negation on sel out by swapping branches;
	// pull a negation on d1 out to the result sign.
	sign := false
	if sel.Sign() {
		sel = sel.Neg()
		d1, d0 = d0, d1
	}
	if d1.Sign() {
		d1 = d1.Neg()
		d0 = d0.Neg()
		sign = !sign
	}
	k := strashKey{typ: GateMux, a: sel, b: d1, c: d0}
	w, ok := s.lookup(k)
	if !ok {
		var err error
		w, err = rawAdd(n, GateMux, []lit.Lit{sel, d1, d0})
		if err != nil {
			return lit.ErrorLit
		}
		s.insert(k, w)
	}
	return w.XorSign(sign)
}

// StrashMaj canonicalizes and returns the 3-input majority of a, b, c.
func (s *Strash) StrashMaj(a, b, c lit.Lit) lit.Lit {
	n := s.n
	lits := []lit.Lit{a, b, c}
	// sort ascending by (id, sign) for commutative canonicalization
	for i := 1; i < len(lits); i++ {
		for j := i; j > 0 && lit.Less(lits[j], lits[j-1]); j-- {
			lits[j], lits[j-1] = lits[j-1], lits[j]
		}
	}
	a, b, c = lits[0], lits[1], lits[2]
	if a.Id() == b.Id() {
		if a.Sign() == b.Sign() {
			return a
		}
		return c // a and ~a cancel: majority reduces to c
	}
	if b.Id() == c.Id() {
		if b.Sign() == c.Sign() {
			return b
		}
		return a
	}
	_ = n
	k := strashKey{typ: GateMaj, a: a, b: b, c: c}
	if w, ok := s.lookup(k); ok {
		return w
	}
	w, err := rawAdd(s.n, GateMaj, []lit.Lit{a, b, c})
	if err != nil {
		return lit.ErrorLit
	}
	s.insert(k, w)
	return w
}

// StrashLut4 canonicalizes a 4-input lookup table by ftb, reusing an
// existing gate with the same (fanin, ftb) tuple; fanins are keyed in the
// order given, not sorted. The truth table is
// part of the key itself, so two Lut4s with identical fanins but different
// ftb never alias onto the same unique-table entry.
func (s *Strash) StrashLut4(fanins [4]lit.Lit, ftb uint16) lit.Lit {
	k := strashKey{typ: GateLut4, a: fanins[0], b: fanins[1], c: fanins[2], d: fanins[3], ftb: ftb}
	if w, ok := s.lookup(k); ok {
		return w
	}
	w, err := rawAdd(s.n, GateLut4, fanins[:])
	if err != nil {
		return lit.ErrorLit
	}
	s.n.SetFtb4(w, ftb)
	s.insert(k, w)
	return w
}

// rawAdd bypasses Add's strash-ownership guard for use by the strash
// factory methods themselves.
func rawAdd(n *Netlist, t GateType, fanins []lit.Lit) (lit.Lit, error) {
	if n.frozen {
		return lit.Nil, errFrozen
	}
	id := n.allocID()
	g := &n.gates[id]
	g.typ = t
	g.tombstone = false
	n.setFanins(g, fanins)
	n.byType[t] = append(n.byType[t], id)
	w := lit.Mk(id, false)
	n.notify(Event{Kind: EvAdd, Wire: w})
	return w, nil
}
