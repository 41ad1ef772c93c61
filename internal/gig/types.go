package gig

// GateType is the closed enumeration of gate kinds a netlist can hold.
type GateType uint8

const (
	GateNull GateType = iota
	GateConst
	GatePI
	GatePO
	GateFlop
	GateAnd
	GateXor
	GateMux
	GateMaj
	GateOr
	GateBuf
	GateNot
	GateEquiv
	GateConj
	GateDisj
	GateLut4
	GateNpn4
	GateLut6
	GateSO
	GateSeq
	GateUif
	numGateTypes
)

// AttrKind classifies the optional attribute a gate of a given type carries.
type AttrKind uint8

const (
	AttrNone AttrKind = iota
	AttrNumber
	AttrFtb4
	AttrFtb6
	AttrNpn4
	AttrMemory
)

// typeInfo holds the per-type metadata: arity (or dynamic),
// attribute kind, and whether the type sinks/sources combinational signals.
type typeInfo struct {
	name     string
	arity    int // -1 means dynamic arity
	attr     AttrKind
	isSource bool // e.g. PI, Flop, Const: produces a value with no (or cut) fanin
	isSink   bool // e.g. PO, SO: consumes but produces nothing externally useful
	strashed bool // owned by the strash factory in strashed modes
}

var typeTable = [numGateTypes]typeInfo{
	GateNull:  {name: "Null", arity: 0},
	GateConst: {name: "Const", arity: 0, isSource: true},
	GatePI:    {name: "PI", arity: 0, attr: AttrNumber, isSource: true},
	GatePO:    {name: "PO", arity: 1, attr: AttrNumber, isSink: true},
	GateFlop:  {name: "Flop", arity: 1, attr: AttrNumber, isSource: true},
	GateAnd:   {name: "And", arity: 2, strashed: true},
	GateXor:   {name: "Xor", arity: 2, strashed: true},
	GateMux:   {name: "Mux", arity: 3, strashed: true},
	GateMaj:   {name: "Maj", arity: 3, strashed: true},
	GateOr:    {name: "Or", arity: -1},
	GateBuf:   {name: "Buf", arity: 1},
	GateNot:   {name: "Not", arity: 1},
	GateEquiv: {name: "Equiv", arity: 2},
	GateConj:  {name: "Conj", arity: -1},
	GateDisj:  {name: "Disj", arity: -1},
	GateLut4:  {name: "Lut4", arity: 4, attr: AttrFtb4, strashed: true},
	GateNpn4:  {name: "Npn4", arity: 4, attr: AttrNpn4},
	GateLut6:  {name: "Lut6", arity: 6, attr: AttrFtb6},
	GateSO:    {name: "SO", arity: 1, isSink: true},
	GateSeq:   {name: "Seq", arity: 1},
	GateUif:   {name: "Uif", arity: -1, attr: AttrMemory},
}

// Info exposes the per-type metadata used by Netlist.Add to validate arity
// and mode membership.
func Info(t GateType) (name string, arity int, attr AttrKind, dynamic bool) {
	ti := typeTable[t]
	return ti.name, ti.arity, ti.attr, ti.arity < 0
}

func (t GateType) String() string {
	if int(t) >= len(typeTable) {
		return "?"
	}
	return typeTable[t].name
}

// IsStrashOwned reports whether t must be created through the strash
// factory in a strashed-mode netlist.
func (t GateType) IsStrashOwned() bool { return typeTable[t].strashed }

// IsSource / IsSink classify combinational direction.
func (t GateType) IsSource() bool { return typeTable[t].isSource }
func (t GateType) IsSink() bool   { return typeTable[t].isSink }

// Mode is one of the six permitted gate-type subsets.
type Mode uint8

const (
	ModeFreeForm Mode = iota
	ModeAIG
	ModeXIG
	ModeNpn4
	ModeLut4
	ModeLut6
)

var modeMasks = map[Mode]map[GateType]bool{
	ModeAIG: {GateConst: true, GatePI: true, GatePO: true, GateFlop: true, GateAnd: true},
	ModeXIG: {GateConst: true, GatePI: true, GatePO: true, GateFlop: true,
		GateAnd: true, GateXor: true, GateMux: true, GateMaj: true},
	ModeNpn4: {GateConst: true, GatePI: true, GatePO: true, GateFlop: true, GateNpn4: true},
	ModeLut4: {GateConst: true, GatePI: true, GatePO: true, GateFlop: true, GateLut4: true},
	ModeLut6: {GateConst: true, GatePI: true, GatePO: true, GateFlop: true, GateLut6: true},
}

// Allows reports whether t may be created directly in mode m. ModeFreeForm
// permits every type.
func (m Mode) Allows(t GateType) bool {
	if m == ModeFreeForm {
		return true
	}
	mask, ok := modeMasks[m]
	if !ok {
		return true
	}
	return mask[t]
}
