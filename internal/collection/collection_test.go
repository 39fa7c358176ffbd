package collection

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

type (
	contacts = Collection[types.Contact, types.ContactPatch, *types.Contact]
	notes    = Collection[types.Note, types.NotePatch, *types.Note]
)

var testClock = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.Local)

func newContacts(depth int) *contacts {
	return New[types.Contact, types.ContactPatch](Options{
		Kind:      "contact",
		UndoDepth: depth,
		Now:       func() time.Time { return testClock },
	})
}

func newNotes(depth int) *notes {
	return New[types.Note, types.NotePatch](Options{
		Kind:      "note",
		UndoDepth: depth,
		Now:       func() time.Time { return testClock },
	})
}

func str(s string) *string       { return &s }
func strs(s ...string) *[]string { return &s }
func ints(ids ...int) *[]int     { return &ids }

func contactFields(name, phone string) types.ContactPatch {
	p := types.ContactPatch{Name: str(name)}
	if phone != "" {
		p.Phones = strs(phone)
	}
	return p
}

func ids[R interface{ RecordID() int }](records []R) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.RecordID())
	}
	return out
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	c := newContacts(10)

	for want := 1; want <= 3; want++ {
		id, err := c.Create(contactFields(fmt.Sprintf("person %d", want), ""))
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 3, c.MaxID())
	assert.Equal(t, 3, c.UndoLen())
}

func TestCreateNormalizesFields(t *testing.T) {
	c := newContacts(10)

	id, err := c.Create(contactFields("jane doe", "0501234567"))
	require.NoError(t, err)

	got, err := c.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, []string{"+380501234567"}, got.Phones)
}

func TestCreateValidationFailureAddsNothing(t *testing.T) {
	c := newContacts(10)

	_, err := c.Create(contactFields("jane", "12345"))
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.MaxID())
	assert.Equal(t, 0, c.UndoLen())
}

func TestAddExplicitIDs(t *testing.T) {
	c := newContacts(10)

	id, err := c.Add(&types.Contact{ID: 5, Name: "Five"})
	require.NoError(t, err)
	assert.Equal(t, 5, id)
	assert.Equal(t, 5, c.MaxID())

	id, err = c.Add(&types.Contact{Name: "Next"})
	require.NoError(t, err)
	assert.Equal(t, 6, id)

	_, err = c.Add(&types.Contact{ID: 5, Name: "Clash"})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = c.Add(&types.Contact{ID: -1, Name: "Negative"})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Equal(t, 2, c.Len())
}

func TestGetNotFound(t *testing.T) {
	c := newContacts(10)

	_, err := c.Get(42)
	require.ErrorIs(t, err, types.ErrNotFound)
	var nf *types.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "contact", nf.Kind)
	assert.Equal(t, 42, nf.ID)
}

func TestFindIsCaseInsensitiveInInsertionOrder(t *testing.T) {
	c := newContacts(10)
	for _, name := range []string{"zoe adams", "adam smith", "bob jones", "Madam X"} {
		_, err := c.Create(contactFields(name, ""))
		require.NoError(t, err)
	}

	assert.Equal(t, []int{1, 2, 4}, ids(c.Find("ADAM")))
	assert.Empty(t, c.Find("nobody"))
	assert.Equal(t, []int{1, 2, 3, 4}, ids(c.Find("")))
}

func TestFindMatchesPhoneSubstring(t *testing.T) {
	c := newContacts(10)
	_, err := c.Create(contactFields("jane doe", "0501234567"))
	require.NoError(t, err)

	found := c.Find("501234")
	require.Len(t, found, 1)
	assert.Equal(t, "+380501234567", found[0].Phones[0])
}

func TestEditAppliesPatchInPlace(t *testing.T) {
	c := newContacts(10)
	id, err := c.Create(contactFields("jane doe", "0501234567"))
	require.NoError(t, err)
	live, err := c.Get(id)
	require.NoError(t, err)

	require.NoError(t, c.Edit(id, types.ContactPatch{Emails: strs("jane@example.com")}))

	assert.Equal(t, []string{"jane@example.com"}, live.Emails, "held pointer sees the edit")
	assert.Equal(t, "Jane Doe", live.Name)
	assert.Equal(t, 2, c.UndoLen())
}

func TestEditRejectedPatchRecordsNothing(t *testing.T) {
	c := newContacts(10)
	id, err := c.Create(contactFields("jane doe", "0501234567"))
	require.NoError(t, err)

	err = c.Edit(id, types.ContactPatch{Name: str("Janet"), Phones: strs("bad")})
	assert.ErrorIs(t, err, types.ErrValidation)

	got, err := c.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name, "no partial application")
	assert.Equal(t, 1, c.UndoLen(), "only the create is recorded")
}

func TestEditNotFound(t *testing.T) {
	c := newContacts(10)
	err := c.Edit(9, types.ContactPatch{Name: str("x")})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, 0, c.UndoLen())
}

func TestDelete(t *testing.T) {
	c := newContacts(10)
	id, err := c.Create(contactFields("jane", ""))
	require.NoError(t, err)

	assert.True(t, c.Delete(id))
	assert.False(t, c.Contains(id))
	assert.Equal(t, 2, c.UndoLen())

	assert.False(t, c.Delete(id))
	assert.Equal(t, 2, c.UndoLen(), "missing id records nothing")
}

func TestUndoEmpty(t *testing.T) {
	c := newContacts(10)
	assert.Equal(t, "nothing to undo", c.Undo())
}

func TestUndoCreate(t *testing.T) {
	c := newContacts(10)
	id, err := c.Create(contactFields("jane", ""))
	require.NoError(t, err)

	assert.Equal(t, "undid add of contact 1", c.Undo())
	_, err = c.Get(id)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, 1, c.MaxID(), "counter is not rolled back")
}

func TestUndoDeleteRestoresAllFields(t *testing.T) {
	c := newContacts(10)
	id, err := c.Create(types.ContactPatch{
		Name:     str("jane doe"),
		Phones:   strs("0501234567", "0671112233"),
		Emails:   strs("jane@example.com"),
		Birthday: str("15.03.1990"),
	})
	require.NoError(t, err)
	before, err := c.Get(id)
	require.NoError(t, err)
	snapshot := *before

	require.True(t, c.Delete(id))
	assert.Equal(t, "restored deleted contact 1", c.Undo())

	after, err := c.Get(id)
	require.NoError(t, err)
	assert.Equal(t, snapshot, *after)
}

func TestUndoDeleteAppendsToOrder(t *testing.T) {
	c := newContacts(10)
	for _, name := range []string{"a", "b", "c"} {
		_, err := c.Create(contactFields(name, ""))
		require.NoError(t, err)
	}

	require.True(t, c.Delete(1))
	c.Undo()
	assert.Equal(t, []int{2, 3, 1}, ids(c.All()))
}

func TestUndoEditRestoresEveryField(t *testing.T) {
	c := newNotes(10)
	id, err := c.Create(types.NotePatch{Text: str("buy milk"), Tags: strs("shop"), ContactIDs: ints(1)})
	require.NoError(t, err)
	before, err := c.Get(id)
	require.NoError(t, err)
	snapshot := *before

	require.NoError(t, c.Edit(id, types.NotePatch{Text: str("buy bread"), Tags: strs("bakery", "pinned"), ContactIDs: ints()}))
	assert.Equal(t, "reverted edit of note 1", c.Undo())

	after, err := c.Get(id)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Text, after.Text)
	assert.Equal(t, snapshot.Tags, after.Tags)
	assert.Equal(t, snapshot.ContactIDs, after.ContactIDs)
	assert.True(t, snapshot.CreatedAt.Equal(after.CreatedAt))
}

func TestUndoEditKeepsOrder(t *testing.T) {
	c := newNotes(10)
	for _, text := range []string{"one", "two", "three"} {
		_, err := c.Create(types.NotePatch{Text: str(text)})
		require.NoError(t, err)
	}

	require.NoError(t, c.Edit(2, types.NotePatch{Text: str("TWO")}))
	c.Undo()
	assert.Equal(t, []int{1, 2, 3}, ids(c.All()))
}

func TestIDsAreNeverReused(t *testing.T) {
	c := newContacts(10)
	for _, name := range []string{"a", "b", "c"} {
		_, err := c.Create(contactFields(name, ""))
		require.NoError(t, err)
	}

	require.True(t, c.Delete(3))
	id, err := c.Create(contactFields("d", ""))
	require.NoError(t, err)
	assert.Equal(t, 4, id)

	c.Undo() // removes 4
	c.Undo() // restores 3
	assert.True(t, c.Contains(3))

	id, err = c.Create(contactFields("e", ""))
	require.NoError(t, err)
	assert.Equal(t, 5, id)
}

func TestUndoHistoryEvictsOldest(t *testing.T) {
	c := newContacts(3)
	for i := 1; i <= 5; i++ {
		_, err := c.Create(contactFields(fmt.Sprintf("p%d", i), ""))
		require.NoError(t, err)
		assert.LessOrEqual(t, c.UndoLen(), 3)
	}

	assert.Equal(t, "undid add of contact 5", c.Undo())
	assert.Equal(t, "undid add of contact 4", c.Undo())
	assert.Equal(t, "undid add of contact 3", c.Undo())
	assert.Equal(t, "nothing to undo", c.Undo())
	assert.Equal(t, []int{1, 2}, ids(c.All()))
}

func TestPropertyUndoBoundAndMonotonicIDs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		depth := rapid.IntRange(1, 6).Draw(t, "depth")
		c := newNotes(depth)
		last := 0
		seen := map[int]bool{}

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				id, err := c.Create(types.NotePatch{Text: str(fmt.Sprintf("note %d", i))})
				if err != nil {
					t.Fatalf("create: %v", err)
				}
				if id <= last || seen[id] {
					t.Fatalf("id %d reused or not increasing (last %d)", id, last)
				}
				last = id
				seen[id] = true
			case 1:
				if c.MaxID() > 0 {
					c.Delete(rapid.IntRange(1, c.MaxID()).Draw(t, "delete"))
				}
			case 2:
				if c.MaxID() > 0 {
					id := rapid.IntRange(1, c.MaxID()).Draw(t, "edit")
					err := c.Edit(id, types.NotePatch{Tags: strs("t")})
					if err != nil && c.Contains(id) {
						t.Fatalf("edit existing %d: %v", id, err)
					}
				}
			case 3:
				c.Undo()
			}
			if c.UndoLen() > depth {
				t.Fatalf("undo history %d exceeds depth %d", c.UndoLen(), depth)
			}
			if c.MaxID() != last {
				t.Fatalf("max id %d, want %d", c.MaxID(), last)
			}
			for _, n := range c.All() {
				if n.ID > c.MaxID() {
					t.Fatalf("record %d above max id %d", n.ID, c.MaxID())
				}
			}
		}
	})
}

func TestPropertyCreateRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := newNotes(10)
		text := rapid.StringMatching(`[a-z][a-z ]{0,20}`).Draw(t, "text")
		tags := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,8}`), 0, 4, rapid.ID[string]).Draw(t, "tags")
		links := rapid.SliceOfNDistinct(rapid.IntRange(1, 50), 0, 4, rapid.ID[int]).Draw(t, "links")

		id, err := c.Create(types.NotePatch{Text: &text, Tags: &tags, ContactIDs: &links})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		n, err := c.Get(id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		data, err := n.MarshalRecord()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back types.Note
		if err := back.UnmarshalRecord(data, nil); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if back.ID != n.ID || back.Text != n.Text || !back.CreatedAt.Equal(n.CreatedAt) {
			t.Fatalf("round trip changed note: %+v -> %+v", n, back)
		}
		assert.Equal(t, n.Tags, back.Tags)
		assert.Equal(t, n.ContactIDs, back.ContactIDs)
	})
}
