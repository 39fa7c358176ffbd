package collection

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Ptr constrains R to *T where *T implements types.Record[P].
type Ptr[T any, P any] interface {
	*T
	types.Record[P]
}

// Options configures a Collection. Zero values select defaults.
type Options struct {
	Kind      string           // Record kind used in messages, e.g. "contact".
	UndoDepth int              // Maximum retained undo entries.
	Logger    *slog.Logger     // Nil discards log output.
	Now       func() time.Time // Clock for creation and load timestamps.
}

func (o Options) withDefaults() Options {
	if o.Kind == "" {
		o.Kind = "record"
	}
	if o.UndoDepth <= 0 {
		o.UndoDepth = types.DefaultUndoDepth
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Collection is a keyed store of records of one kind. Iteration order is
// insertion order. Not safe for concurrent use.
type Collection[T any, P any, R Ptr[T, P]] struct {
	opts    Options
	log     *slog.Logger
	records map[int]R
	order   []int
	maxID   int
	history *history
}

// New returns an empty collection.
func New[T any, P any, R Ptr[T, P]](opts Options) *Collection[T, P, R] {
	opts = opts.withDefaults()
	return &Collection[T, P, R]{
		opts:    opts,
		log:     opts.Logger.With("kind", opts.Kind),
		records: make(map[int]R),
		history: newHistory(opts.UndoDepth),
	}
}

// Kind returns the record kind name.
func (c *Collection[T, P, R]) Kind() string { return c.opts.Kind }

// Len returns the number of records.
func (c *Collection[T, P, R]) Len() int { return len(c.records) }

// MaxID returns the highest id ever assigned or loaded. Ids are never reused.
func (c *Collection[T, P, R]) MaxID() int { return c.maxID }

// UndoDepth returns the maximum number of retained undo entries.
func (c *Collection[T, P, R]) UndoDepth() int { return c.opts.UndoDepth }

// UndoLen returns the number of undo entries currently retained.
func (c *Collection[T, P, R]) UndoLen() int { return c.history.len() }

// Create builds a record from fields and adds it. Field validation errors
// are returned unchanged and nothing is added.
func (c *Collection[T, P, R]) Create(fields P) (int, error) {
	r := R(new(T))
	if err := r.Build(fields, c.opts.Now()); err != nil {
		return 0, err
	}
	return c.Add(r)
}

// Add inserts r. A zero id is replaced by MaxID()+1; an explicit id must be
// positive and unused.
func (c *Collection[T, P, R]) Add(r R) (int, error) {
	id := r.RecordID()
	switch {
	case id < 0:
		return 0, &types.ValidationError{Field: "id", Value: fmt.Sprint(id), Reason: "must not be negative"}
	case id == 0:
		id = c.maxID + 1
		r.SetRecordID(id)
	case c.Contains(id):
		return 0, &types.ValidationError{Field: "id", Value: fmt.Sprint(id), Reason: "already in use"}
	}
	c.maxID = max(c.maxID, id)
	c.history.push(added{id: id})
	c.put(id, r)
	c.log.Debug("record added", "id", id)
	return id, nil
}

// Contains reports whether a record with id exists.
func (c *Collection[T, P, R]) Contains(id int) bool {
	_, ok := c.records[id]
	return ok
}

// Get returns the record with id, or a *types.NotFoundError.
func (c *Collection[T, P, R]) Get(id int) (R, error) {
	r, ok := c.records[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: c.opts.Kind, ID: id}
	}
	return r, nil
}

// All returns every record in insertion order.
func (c *Collection[T, P, R]) All() []R {
	out := make([]R, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.records[id])
	}
	return out
}

// Filter returns the records satisfying keep, in insertion order.
func (c *Collection[T, P, R]) Filter(keep func(R) bool) []R {
	var out []R
	for _, id := range c.order {
		if r := c.records[id]; keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the records matching query, in insertion order.
func (c *Collection[T, P, R]) Find(query string) []R {
	return c.Filter(func(r R) bool { return r.Matches(query) })
}

// Edit applies patch to the record with id. The patch is validated against
// a copy first; a rejected patch leaves the record and the undo history
// untouched.
func (c *Collection[T, P, R]) Edit(id int, patch P) error {
	live, err := c.Get(id)
	if err != nil {
		return err
	}
	prior, err := c.clone(live)
	if err != nil {
		return fmt.Errorf("snapshot %s %d: %w", c.opts.Kind, id, err)
	}
	scratch, err := c.clone(live)
	if err != nil {
		return fmt.Errorf("snapshot %s %d: %w", c.opts.Kind, id, err)
	}
	if err := scratch.Apply(patch); err != nil {
		return err
	}
	c.history.push(edited[R]{id: id, prior: prior})
	*live = *scratch
	c.log.Debug("record edited", "id", id)
	return nil
}

// Delete removes the record with id. It reports false, recording nothing,
// when the record does not exist.
func (c *Collection[T, P, R]) Delete(id int) bool {
	r, ok := c.records[id]
	if !ok {
		return false
	}
	c.history.push(deleted[R]{id: id, prior: r})
	c.remove(id)
	c.log.Debug("record deleted", "id", id)
	return true
}

// Undo reverses the most recent recorded action and describes what it did.
// An empty history is not an error.
func (c *Collection[T, P, R]) Undo() string {
	a, ok := c.history.pop()
	if !ok {
		return "nothing to undo"
	}
	var msg string
	switch a := a.(type) {
	case added:
		if c.Contains(a.id) {
			c.remove(a.id)
		}
		msg = fmt.Sprintf("undid add of %s %d", c.opts.Kind, a.id)
	case deleted[R]:
		c.put(a.id, a.prior)
		msg = fmt.Sprintf("restored deleted %s %d", c.opts.Kind, a.id)
	case edited[R]:
		c.put(a.id, a.prior)
		msg = fmt.Sprintf("reverted edit of %s %d", c.opts.Kind, a.id)
	}
	c.log.Debug("undo", "id", a.recordID(), "result", msg)
	return msg
}

// put inserts or replaces a record. New ids go to the end of the order.
func (c *Collection[T, P, R]) put(id int, r R) {
	if !c.Contains(id) {
		c.order = append(c.order, id)
	}
	c.records[id] = r
}

func (c *Collection[T, P, R]) remove(id int) {
	delete(c.records, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

// clone deep-copies r through its serialized form.
func (c *Collection[T, P, R]) clone(r R) (R, error) {
	data, err := r.MarshalRecord()
	if err != nil {
		return nil, err
	}
	out := R(new(T))
	if err := out.UnmarshalRecord(data, &types.DecodeContext{Now: c.opts.Now()}); err != nil {
		return nil, err
	}
	return out, nil
}
