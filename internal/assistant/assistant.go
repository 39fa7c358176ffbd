// Package assistant ties the contacts and notes collections together. It
// loads and saves both files, answers the queries that span the two, and
// applies the delete policy when a linked contact goes away.
package assistant

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"

	"github.com/mesh-intelligence/rolodex/internal/collection"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Assistant owns an address book and a notebook backed by two JSON files.
// Not safe for concurrent use.
type Assistant struct {
	Contacts AddressBook
	Notes    Notebook

	cfg      types.Config
	log      *slog.Logger
	now      func() time.Time
	warnings error
	closed   bool
}

// Open validates cfg, loads both collections and returns the assistant.
// Missing or damaged files never fail Open; the problems are logged and
// available from LoadWarnings.
func Open(cfg types.Config, opts ...Option) (*Assistant, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	contacts, cw := collection.Load[types.Contact, types.ContactPatch](cfg.ContactsPath(), collection.Options{
		Kind:      "contact",
		UndoDepth: cfg.UndoDepth,
		Logger:    o.logger,
		Now:       o.now,
	})
	notes, nw := collection.Load[types.Note, types.NotePatch](cfg.NotesPath(), collection.Options{
		Kind:      "note",
		UndoDepth: cfg.UndoDepth,
		Logger:    o.logger,
		Now:       o.now,
	})

	a := &Assistant{
		Contacts: AddressBook{contacts},
		Notes:    Notebook{notes},
		cfg:      cfg,
		log:      o.logger,
		now:      o.now,
		warnings: errors.Join(cw, nw),
	}
	a.log.Info("assistant opened",
		"contacts", contacts.Len(), "notes", notes.Len(), "data_dir", cfg.DataDir)
	return a, nil
}

// Config returns the effective configuration, defaults applied.
func (a *Assistant) Config() types.Config { return a.cfg }

// LoadWarnings returns the joined warnings produced while loading, or nil.
func (a *Assistant) LoadWarnings() error { return a.warnings }

// Now returns the current time from the assistant's clock.
func (a *Assistant) Now() time.Time { return a.now() }

// Today returns the current calendar date in local time.
func (a *Assistant) Today() civil.Date {
	return civil.DateOf(a.now().Local())
}

// Save writes both collections. Both files are attempted even when the
// first fails.
func (a *Assistant) Save() error {
	if a.closed {
		return types.ErrClosed
	}
	return errors.Join(
		a.Contacts.Save(a.cfg.ContactsPath()),
		a.Notes.Save(a.cfg.NotesPath()),
	)
}

// Close marks the assistant closed. It does not save. Calling Close twice
// is harmless.
func (a *Assistant) Close() error {
	if !a.closed {
		a.closed = true
		a.log.Debug("assistant closed")
	}
	return nil
}
