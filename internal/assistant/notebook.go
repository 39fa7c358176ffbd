package assistant

import (
	"slices"

	"cloud.google.com/go/civil"

	"github.com/mesh-intelligence/rolodex/internal/collection"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Notes is the collection engine instantiated for notes.
type Notes = collection.Collection[types.Note, types.NotePatch, *types.Note]

// Notebook is the notes collection plus tag, date and link queries.
type Notebook struct {
	*Notes
}

// SortByDate returns all notes ordered by creation time, oldest first.
func (b Notebook) SortByDate() []*types.Note {
	out := b.All()
	slices.SortStableFunc(out, func(x, y *types.Note) int {
		return x.CreatedAt.Compare(y.CreatedAt)
	})
	return out
}

// FindByTag returns notes with a tag containing tag, ignoring case.
func (b Notebook) FindByTag(tag string) []*types.Note {
	return b.Filter(func(n *types.Note) bool {
		return slices.ContainsFunc(n.Tags, func(t string) bool {
			return types.Contains(t, tag)
		})
	})
}

// FindByDate returns notes created on the calendar day given as YYYY-MM-DD.
func (b Notebook) FindByDate(day string) ([]*types.Note, error) {
	d, err := types.ParseDate(day)
	if err != nil {
		return nil, err
	}
	return b.Filter(func(n *types.Note) bool {
		return civil.DateOf(n.CreatedAt) == d
	}), nil
}

// FindByContact returns notes that reference contact id.
func (b Notebook) FindByContact(contactID int) []*types.Note {
	return b.Filter(func(n *types.Note) bool { return n.Links(contactID) })
}

// Pinned returns the notes carrying the pinned tag.
func (b Notebook) Pinned() []*types.Note {
	return b.Filter((*types.Note).Pinned)
}
