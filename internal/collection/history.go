package collection

// action is one reversible mutation: added, edited or deleted.
type action interface {
	recordID() int
}

// added records a new id. Undo removes the record if it is still present.
type added struct {
	id int
}

// edited holds the record as it was before the edit.
type edited[R any] struct {
	id    int
	prior R
}

// deleted holds the removed record.
type deleted[R any] struct {
	id    int
	prior R
}

func (a added) recordID() int      { return a.id }
func (a edited[R]) recordID() int  { return a.id }
func (a deleted[R]) recordID() int { return a.id }

// history is a fixed-capacity ring of actions. Pushing onto a full ring
// evicts the oldest entry.
type history struct {
	buf   []action
	start int
	n     int
}

func newHistory(depth int) *history {
	return &history{buf: make([]action, depth)}
}

func (h *history) push(a action) {
	if h.n < len(h.buf) {
		h.buf[(h.start+h.n)%len(h.buf)] = a
		h.n++
		return
	}
	h.buf[h.start] = a
	h.start = (h.start + 1) % len(h.buf)
}

func (h *history) pop() (action, bool) {
	if h.n == 0 {
		return nil, false
	}
	i := (h.start + h.n - 1) % len(h.buf)
	a := h.buf[i]
	h.buf[i] = nil
	h.n--
	return a, true
}

func (h *history) len() int { return h.n }
