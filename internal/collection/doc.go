// Package collection implements the generic record-collection engine shared
// by the address book and the notebook: identity assignment, a bounded undo
// history, case-insensitive search, and whole-file JSON persistence.
//
// A Collection keeps a single undo history for all of its records. Undo
// reverses the most recent recorded action in the collection, whichever
// record it touched; there is no per-record history.
package collection
