package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshot returns the retained actions, oldest first.
func (h *history) snapshot() []action {
	out := make([]action, 0, h.n)
	for i := 0; i < h.n; i++ {
		out = append(out, h.buf[(h.start+i)%len(h.buf)])
	}
	return out
}

func TestHistoryRing(t *testing.T) {
	h := newHistory(2)
	h.push(added{id: 1})
	h.push(added{id: 2})
	h.push(added{id: 3})

	assert.Equal(t, 2, h.len())
	assert.Equal(t, []action{added{id: 2}, added{id: 3}}, h.snapshot())

	a, ok := h.pop()
	require.True(t, ok)
	assert.Equal(t, 3, a.recordID())
	h.push(added{id: 4})
	assert.Equal(t, []action{added{id: 2}, added{id: 4}}, h.snapshot())
}
