package assistant

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// DeleteReport describes what DeleteContactWithPolicy did.
type DeleteReport struct {
	ContactID     int                `json:"contact_id"`
	Policy        types.DeletePolicy `json:"policy"`
	DeletedNotes  []int              `json:"deleted_notes,omitempty"`  // Set under DeleteCascade.
	DetachedNotes []int              `json:"detached_notes,omitempty"` // Set under DeleteDetach.
}

// NotesForContact returns the notes that reference contactID.
func (a *Assistant) NotesForContact(contactID int) []*types.Note {
	return a.Notes.FindByContact(contactID)
}

// CreateLinkedNote creates a note linked to an existing contact.
func (a *Assistant) CreateLinkedNote(contactID int, text string, tags []string) (int, error) {
	if !a.Contacts.Contains(contactID) {
		return 0, &types.NotFoundError{Kind: a.Contacts.Kind(), ID: contactID}
	}
	return a.Notes.Create(types.NotePatch{
		Text:       &text,
		Tags:       &tags,
		ContactIDs: &[]int{contactID},
	})
}

// DeleteContactWithPolicy deletes a contact and resolves the notes linked to
// it. An empty policy selects the configured default. Each note change and
// the contact deletion land in their own collection's undo history.
func (a *Assistant) DeleteContactWithPolicy(contactID int, policy types.DeletePolicy) (DeleteReport, error) {
	if policy == "" {
		policy = a.cfg.DeletePolicy
	}
	policy, err := types.ParseDeletePolicy(string(policy))
	if err != nil {
		return DeleteReport{}, err
	}
	if !a.Contacts.Contains(contactID) {
		return DeleteReport{}, &types.NotFoundError{Kind: a.Contacts.Kind(), ID: contactID}
	}

	report := DeleteReport{ContactID: contactID, Policy: policy}
	for _, n := range a.NotesForContact(contactID) {
		switch policy {
		case types.DeleteCascade:
			a.Notes.Delete(n.ID)
			report.DeletedNotes = append(report.DeletedNotes, n.ID)
		case types.DeleteDetach:
			ids := slices.DeleteFunc(slices.Clone(n.ContactIDs), func(id int) bool { return id == contactID })
			if err := a.Notes.Edit(n.ID, types.NotePatch{ContactIDs: &ids}); err != nil {
				return report, fmt.Errorf("detaching note %d: %w", n.ID, err)
			}
			report.DetachedNotes = append(report.DetachedNotes, n.ID)
		}
	}
	a.Contacts.Delete(contactID)
	a.log.Debug("contact deleted", "id", contactID, "policy", policy,
		"deleted_notes", len(report.DeletedNotes), "detached_notes", len(report.DetachedNotes))
	return report, nil
}

// LinkedContacts returns the contacts a note references, skipping ids that
// no longer exist.
func (a *Assistant) LinkedContacts(n *types.Note) []*types.Contact {
	var out []*types.Contact
	for _, id := range n.ContactIDs {
		if c, err := a.Contacts.Get(id); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// SearchNotes returns notes matching query on their own fields or on any
// searchable field of a linked contact.
func (a *Assistant) SearchNotes(query string) []*types.Note {
	return a.Notes.Filter(func(n *types.Note) bool {
		if n.Matches(query) {
			return true
		}
		return slices.ContainsFunc(a.LinkedContacts(n), func(c *types.Contact) bool {
			return c.Matches(query)
		})
	})
}

// DanglingLinks maps note ids to the contact ids they reference that do not
// exist. Notes without dangling links are omitted.
func (a *Assistant) DanglingLinks() map[int][]int {
	out := make(map[int][]int)
	for _, n := range a.Notes.All() {
		for _, id := range n.ContactIDs {
			if !a.Contacts.Contains(id) {
				out[n.ID] = append(out[n.ID], id)
			}
		}
	}
	return out
}

// PinNote adds the pinned tag to a note. Pinning a pinned note changes
// nothing and records no undo entry.
func (a *Assistant) PinNote(noteID int) error {
	n, err := a.Notes.Get(noteID)
	if err != nil {
		return err
	}
	if n.Pinned() {
		return nil
	}
	tags := append(slices.Clone(n.Tags), types.PinnedTag)
	return a.Notes.Edit(noteID, types.NotePatch{Tags: &tags})
}

// UnpinNote removes the pinned tag from a note.
func (a *Assistant) UnpinNote(noteID int) error {
	n, err := a.Notes.Get(noteID)
	if err != nil {
		return err
	}
	if !n.Pinned() {
		return nil
	}
	tags := slices.DeleteFunc(slices.Clone(n.Tags), func(t string) bool {
		return types.SameTag(t, types.PinnedTag)
	})
	return a.Notes.Edit(noteID, types.NotePatch{Tags: &tags})
}
