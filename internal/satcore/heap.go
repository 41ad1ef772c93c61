package satcore

// varHeap is an indexed binary max-heap over variable activity, used to pick
// the next decision variable. Grounded in the original_source's activity-
// ordered variable selection; ids are sparse and recyclable (variables are
// freed by remove_vars) so positions are tracked by map rather than a dense
// array indexed by Var.
type varHeap struct {
	act  func(Var) float64
	heap []Var
	pos  map[Var]int
}

func newVarHeap(act func(Var) float64) *varHeap {
	return &varHeap{act: act, pos: make(map[Var]int)}
}

func (h *varHeap) Len() int { return len(h.heap) }

func (h *varHeap) Contains(v Var) bool {
	_, ok := h.pos[v]
	return ok
}

func (h *varHeap) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.pos[h.heap[i]] = i
	h.pos[h.heap[j]] = j
}

func (h *varHeap) up(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if h.act(h.heap[p]) >= h.act(h.heap[i]) {
			break
		}
		h.swap(p, i)
		i = p
	}
}

func (h *varHeap) down(i int) {
	n := len(h.heap)
	for {
		l, r := 2*i+1, 2*i+2
		largest := i
		if l < n && h.act(h.heap[l]) > h.act(h.heap[largest]) {
			largest = l
		}
		if r < n && h.act(h.heap[r]) > h.act(h.heap[largest]) {
			largest = r
		}
		if largest == i {
			break
		}
		h.swap(i, largest)
		i = largest
	}
}

// Insert adds v to the heap if not already present.
func (h *varHeap) Insert(v Var) {
	if h.Contains(v) {
		return
	}
	h.heap = append(h.heap, v)
	i := len(h.heap) - 1
	h.pos[v] = i
	h.up(i)
}

// Update re-heapifies around v after its activity changed.
func (h *varHeap) Update(v Var) {
	i, ok := h.pos[v]
	if !ok {
		return
	}
	h.up(i)
	h.down(i)
}

// Remove drops v from the heap if present (used when a variable is
// assigned or deleted).
func (h *varHeap) Remove(v Var) {
	i, ok := h.pos[v]
	if !ok {
		return
	}
	last := len(h.heap) - 1
	h.swap(i, last)
	h.heap = h.heap[:last]
	delete(h.pos, v)
	if i < len(h.heap) {
		h.up(i)
		h.down(i)
	}
}

// Pop removes and returns the highest-activity variable.
func (h *varHeap) Pop() Var {
	top := h.heap[0]
	h.Remove(top)
	return top
}
