// Package sqlite writes a read-only SQLite snapshot of the contacts and
// notes collections. The JSON files stay the source of truth; the snapshot
// exists for ad hoc SQL queries and for handing data to other tools.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// ExportSummary describes a finished snapshot.
type ExportSummary struct {
	ExportID   string    `json:"export_id"`
	ExportedAt time.Time `json:"exported_at"`
	Path       string    `json:"path"`
	Contacts   int       `json:"contacts"`
	Notes      int       `json:"notes"`
	Phones     int       `json:"phones"`
	Emails     int       `json:"emails"`
	Tags       int       `json:"tags"`
	Links      int       `json:"links"`
}

// Export writes contacts and notes to a new SQLite database at path, stamped
// with exportedAt. An existing file at path is replaced only after the
// snapshot is complete.
func Export(ctx context.Context, path string, contacts []*types.Contact, notes []*types.Note, exportedAt time.Time) (ExportSummary, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return ExportSummary{}, fmt.Errorf("generating export id: %w", err)
	}
	sum := ExportSummary{
		ExportID:   id.String(),
		ExportedAt: exportedAt.Truncate(time.Second),
		Path:       path,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return sum, fmt.Errorf("creating export directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return sum, fmt.Errorf("removing stale export: %w", err)
	}

	if err := writeSnapshot(ctx, tmp, contacts, notes, &sum); err != nil {
		os.Remove(tmp)
		return sum, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return sum, fmt.Errorf("replacing %s: %w", path, err)
	}
	return sum, nil
}

func writeSnapshot(ctx context.Context, path string, contacts []*types.Contact, notes []*types.Note, sum *ExportSummary) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing snapshot: %w", cerr)
		}
	}()

	for _, ddl := range slices.Concat(schemaDDL, indexDDL) {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range contacts {
		if err := insertContact(ctx, tx, c, sum); err != nil {
			return fmt.Errorf("exporting contact %d: %w", c.ID, err)
		}
	}
	for _, n := range notes {
		if err := insertNote(ctx, tx, n, sum); err != nil {
			return fmt.Errorf("exporting note %d: %w", n.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO export_meta (export_id, exported_at, contacts, notes) VALUES (?, ?, ?, ?)`,
		sum.ExportID, sum.ExportedAt.Format(time.RFC3339), sum.Contacts, sum.Notes,
	)
	if err != nil {
		return fmt.Errorf("writing export metadata: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

func insertContact(ctx context.Context, tx *sql.Tx, c *types.Contact, sum *ExportSummary) error {
	var birthday sql.NullString
	if c.Birthday != nil {
		birthday = sql.NullString{String: c.Birthday.String(), Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO contacts (contact_id, name, birthday) VALUES (?, ?, ?)`,
		c.ID, c.Name, birthday,
	); err != nil {
		return err
	}
	for i, p := range c.Phones {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contact_phones (contact_id, ordinal, phone) VALUES (?, ?, ?)`,
			c.ID, i, p,
		); err != nil {
			return err
		}
	}
	for i, e := range c.Emails {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contact_emails (contact_id, ordinal, email) VALUES (?, ?, ?)`,
			c.ID, i, e,
		); err != nil {
			return err
		}
	}
	sum.Contacts++
	sum.Phones += len(c.Phones)
	sum.Emails += len(c.Emails)
	return nil
}

func insertNote(ctx context.Context, tx *sql.Tx, n *types.Note, sum *ExportSummary) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO notes (note_id, text, created_at) VALUES (?, ?, ?)`,
		n.ID, n.Text, n.CreatedAt.Format(types.TimestampLayout),
	); err != nil {
		return err
	}
	for i, t := range n.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO note_tags (note_id, ordinal, tag) VALUES (?, ?, ?)`,
			n.ID, i, t,
		); err != nil {
			return err
		}
	}
	for _, id := range n.ContactIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO note_contacts (note_id, contact_id) VALUES (?, ?)`,
			n.ID, id,
		); err != nil {
			return err
		}
	}
	sum.Notes++
	sum.Tags += len(n.Tags)
	sum.Links += len(n.ContactIDs)
	return nil
}
