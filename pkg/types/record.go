package types

import (
	"fmt"
	"time"
)

// Record is the capability set every record kind stored in a collection
// exposes. P is the kind's field patch: a closed struct of optional fields.
type Record[P any] interface {
	// RecordID returns the identity assigned by the owning collection.
	// Zero means the record has not been assigned an id yet.
	RecordID() int

	// SetRecordID assigns the identity. Only collections call it.
	SetRecordID(id int)

	// Build initializes a fresh record from fields. Required fields must be
	// present. now supplies creation timestamps.
	Build(fields P, now time.Time) error

	// Apply changes only the fields present in patch, re-validating each
	// one. On error the receiver may be partially modified; collections
	// apply patches to a scratch copy first.
	Apply(patch P) error

	// Matches reports whether query occurs, case-insensitively, in any of
	// the record's searchable fields.
	Matches(query string) bool

	// MarshalRecord returns the durable serialized form.
	MarshalRecord() ([]byte, error)

	// UnmarshalRecord replaces the receiver with the record in data.
	// Recoverable problems are reported through dc and do not fail.
	UnmarshalRecord(data []byte, dc *DecodeContext) error
}

// DecodeContext carries the load clock and collects recoverable problems
// (FormatError values) found while decoding persisted records.
type DecodeContext struct {
	Now      time.Time
	Warnings []error
}

// Warn records a recoverable decode problem. Safe on a nil receiver.
func (dc *DecodeContext) Warn(err error) {
	if dc == nil {
		return
	}
	dc.Warnings = append(dc.Warnings, err)
}

func (dc *DecodeContext) now() time.Time {
	if dc == nil || dc.Now.IsZero() {
		return time.Now()
	}
	return dc.Now
}

// recoverString normalizes a stored scalar. A value norm rejects is kept as
// stored and reported through dc.
func recoverString(field, raw string, norm func(string) (string, error), dc *DecodeContext) string {
	v, err := norm(raw)
	if err != nil {
		dc.Warn(&FormatError{Field: field, Value: raw, Err: err})
		return raw
	}
	return v
}

// recoverStrings normalizes each stored element. Elements norm rejects are
// kept as stored and reported through dc; empty results are dropped and
// case-insensitive duplicates removed. The result is never nil.
func recoverStrings(field string, raw []string, norm func(string) (string, error), dc *DecodeContext) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		v, err := norm(r)
		if err != nil {
			dc.Warn(&FormatError{Field: field, Value: r, Err: err})
			v = r
		}
		if v == "" || seen[fold(v)] {
			continue
		}
		seen[fold(v)] = true
		out = append(out, v)
	}
	return out
}

// recoverIDs keeps stored contact ids in order, dropping duplicates. Ids
// that are not positive are kept and reported through dc.
func recoverIDs(raw []int, dc *DecodeContext) []int {
	out := make([]int, 0, len(raw))
	seen := make(map[int]bool, len(raw))
	for _, id := range raw {
		if seen[id] {
			continue
		}
		if id <= 0 {
			dc.Warn(&FormatError{Field: "contact_ids", Value: fmt.Sprint(id), Err: ErrValidation})
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
