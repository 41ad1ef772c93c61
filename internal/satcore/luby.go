package satcore

// lubyUnit computes the x-th (1-indexed) term of the base-2 Luby sequence:
// 1,1,2,1,1,2,4,1,1,2,1,1,2,4,8,... This is the standard iterative
// derivation (no recursion, no table), grounded in the restart schedule
// description: multiplier 2, unit 100.
func lubyUnit(x int) int {
	x-- // the derivation below works on 0-based positions
	size, seq := 1, 0
	for size < x+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != x {
		size = (size - 1) / 2
		seq--
		x = x % size
	}
	return 1 << uint(seq)
}

// lubyRestart is the luby struct used by search's outer driver loop to
// compute the next conflict budget: restartUnit * lubyUnit(index).
type lubyRestart struct {
	unit  int
	index int
}

func newLubyRestart(unit int) *lubyRestart { return &lubyRestart{unit: unit} }

// Next advances to the next term and returns its scaled budget.
func (l *lubyRestart) Next() int {
	l.index++
	return l.unit * lubyUnit(l.index)
}
