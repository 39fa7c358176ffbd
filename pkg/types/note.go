package types

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// PinnedTag marks a note as pinned.
const PinnedTag = "pinned"

// Note is a free-text entry in the notebook, optionally linked to contacts.
type Note struct {
	ID         int       // Assigned by the collection; 0 until added.
	Text       string    // Trimmed, non-empty.
	Tags       []string  // Ordered, case-insensitively unique.
	ContactIDs []int     // Linked contact ids; may reference deleted contacts.
	CreatedAt  time.Time // Whole seconds, local time.
}

// NotePatch is the closed set of patchable Note fields. A nil field is left
// unchanged. CreatedAt is not patchable.
type NotePatch struct {
	Text       *string
	Tags       *[]string
	ContactIDs *[]int
}

// noteJSON is the durable form of a Note.
type noteJSON struct {
	ID         int      `json:"id"`
	Text       string   `json:"text"`
	Tags       []string `json:"tags"`
	ContactIDs []int    `json:"contact_ids"`
	CreatedAt  string   `json:"created_at"`
}

// RecordID returns the note id.
func (n *Note) RecordID() int { return n.ID }

// SetRecordID sets the note id.
func (n *Note) SetRecordID(id int) { n.ID = id }

// Build initializes n from fields with CreatedAt set to now. Text is required.
func (n *Note) Build(fields NotePatch, now time.Time) error {
	if fields.Text == nil {
		return invalid("text", "", "required")
	}
	*n = Note{
		Tags:       []string{},
		ContactIDs: []int{},
		CreatedAt:  now.Local().Truncate(time.Second),
	}
	return n.Apply(fields)
}

// Apply changes the fields present in p.
func (n *Note) Apply(p NotePatch) error {
	if p.Text != nil {
		text, err := NormalizeText(*p.Text)
		if err != nil {
			return err
		}
		n.Text = text
	}
	if p.Tags != nil {
		tags, err := NormalizeTags(*p.Tags)
		if err != nil {
			return err
		}
		n.Tags = tags
	}
	if p.ContactIDs != nil {
		ids, err := NormalizeContactIDs(*p.ContactIDs)
		if err != nil {
			return err
		}
		n.ContactIDs = ids
	}
	return nil
}

// Matches tests query against the text and tags.
func (n *Note) Matches(query string) bool {
	if Contains(n.Text, query) {
		return true
	}
	for _, t := range n.Tags {
		if Contains(t, query) {
			return true
		}
	}
	return false
}

// HasTag reports whether the note carries tag, ignoring case.
func (n *Note) HasTag(tag string) bool {
	key := fold(tag)
	for _, t := range n.Tags {
		if fold(t) == key {
			return true
		}
	}
	return false
}

// Pinned reports whether the note carries PinnedTag.
func (n *Note) Pinned() bool {
	return n.HasTag(PinnedTag)
}

// Links reports whether the note references contact id.
func (n *Note) Links(contactID int) bool {
	return slices.Contains(n.ContactIDs, contactID)
}

// MarshalRecord returns the durable JSON form.
func (n *Note) MarshalRecord() ([]byte, error) {
	rec := noteJSON{
		ID:         n.ID,
		Text:       n.Text,
		Tags:       n.Tags,
		ContactIDs: n.ContactIDs,
		CreatedAt:  n.CreatedAt.Local().Format(TimestampLayout),
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if rec.ContactIDs == nil {
		rec.ContactIDs = []int{}
	}
	return json.Marshal(rec)
}

// UnmarshalRecord decodes the durable JSON form. Stored values that no
// longer pass validation are kept as stored and reported through dc as
// FormatError values. A missing or malformed created_at falls back to the
// decode clock; the malformed case is reported too.
func (n *Note) UnmarshalRecord(data []byte, dc *DecodeContext) error {
	var rec noteJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("decoding note: %w", err)
	}
	text := recoverString("text", rec.Text, NormalizeText, dc)
	tags := recoverStrings("tag", rec.Tags, NormalizeTag, dc)
	ids := recoverIDs(rec.ContactIDs, dc)
	created := dc.now().Local().Truncate(time.Second)
	if rec.CreatedAt != "" {
		t, err := time.ParseInLocation(TimestampLayout, rec.CreatedAt, time.Local)
		if err != nil {
			dc.Warn(&FormatError{Field: "created_at", Value: rec.CreatedAt, Err: err})
		} else {
			created = t
		}
	}
	*n = Note{ID: rec.ID, Text: text, Tags: tags, ContactIDs: ids, CreatedAt: created}
	return nil
}

// MarshalJSON encodes the durable form.
func (n *Note) MarshalJSON() ([]byte, error) {
	return n.MarshalRecord()
}

// UnmarshalJSON decodes the durable form, dropping recoverable problems.
func (n *Note) UnmarshalJSON(data []byte) error {
	return n.UnmarshalRecord(data, nil)
}
