package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

var (
	created  = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.Local)
	exported = time.Date(2026, time.March, 11, 18, 0, 0, 0, time.Local)
)

func contact(t *testing.T, id int, name string, phones, emails []string, birthday string) *types.Contact {
	t.Helper()
	c := &types.Contact{}
	p := types.ContactPatch{Name: &name, Phones: &phones, Emails: &emails}
	if birthday != "" {
		p.Birthday = &birthday
	}
	require.NoError(t, c.Build(p, created))
	c.SetRecordID(id)
	return c
}

func note(t *testing.T, id int, text string, tags []string, contactIDs []int) *types.Note {
	t.Helper()
	n := &types.Note{}
	require.NoError(t, n.Build(types.NotePatch{Text: &text, Tags: &tags, ContactIDs: &contactIDs}, created))
	n.SetRecordID(id)
	return n
}

func fixture(t *testing.T) ([]*types.Contact, []*types.Note) {
	contacts := []*types.Contact{
		contact(t, 1, "Jane Doe", []string{"0501234567", "+380671112233"}, []string{"jane@example.com"}, "15.03.1990"),
		contact(t, 3, "John Roe", nil, nil, ""),
	}
	notes := []*types.Note{
		note(t, 2, "buy milk", []string{"shop", "pinned"}, []int{1}),
		note(t, 5, "orphan link", nil, []int{1, 9}),
	}
	return contacts, notes
}

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestExportWritesAllTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "snapshot.db")
	contacts, notes := fixture(t)

	sum, err := Export(context.Background(), path, contacts, notes, exported)
	require.NoError(t, err)

	assert.Equal(t, path, sum.Path)
	assert.Equal(t, 2, sum.Contacts)
	assert.Equal(t, 2, sum.Notes)
	assert.Equal(t, 2, sum.Phones)
	assert.Equal(t, 1, sum.Emails)
	assert.Equal(t, 2, sum.Tags)
	assert.Equal(t, 3, sum.Links)
	assert.NoFileExists(t, path+".tmp")

	db := openDB(t, path)
	assert.Equal(t, 2, count(t, db, "contacts"))
	assert.Equal(t, 2, count(t, db, "contact_phones"))
	assert.Equal(t, 1, count(t, db, "contact_emails"))
	assert.Equal(t, 2, count(t, db, "notes"))
	assert.Equal(t, 2, count(t, db, "note_tags"))
	assert.Equal(t, 3, count(t, db, "note_contacts"))
	assert.Equal(t, 1, count(t, db, "export_meta"))

	var name string
	var birthday sql.NullString
	require.NoError(t, db.QueryRow(
		"SELECT name, birthday FROM contacts WHERE contact_id = 1").Scan(&name, &birthday))
	assert.Equal(t, "Jane Doe", name)
	assert.Equal(t, "1990-03-15", birthday.String)

	require.NoError(t, db.QueryRow(
		"SELECT birthday FROM contacts WHERE contact_id = 3").Scan(&birthday))
	assert.False(t, birthday.Valid)

	var phone string
	require.NoError(t, db.QueryRow(
		"SELECT phone FROM contact_phones WHERE contact_id = 1 AND ordinal = 0").Scan(&phone))
	assert.Equal(t, "+380501234567", phone)

	var createdAt string
	require.NoError(t, db.QueryRow(
		"SELECT created_at FROM notes WHERE note_id = 2").Scan(&createdAt))
	assert.Equal(t, "2026-03-10 09:30:00", createdAt)
}

func TestExportMetaRecordsRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	contacts, notes := fixture(t)

	sum, err := Export(context.Background(), path, contacts, notes, exported)
	require.NoError(t, err)

	id, err := uuid.Parse(sum.ExportID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	assert.True(t, sum.ExportedAt.Equal(exported))

	db := openDB(t, path)
	var exportID, exportedAt string
	var nContacts, nNotes int
	require.NoError(t, db.QueryRow(
		"SELECT export_id, exported_at, contacts, notes FROM export_meta").Scan(&exportID, &exportedAt, &nContacts, &nNotes))
	assert.Equal(t, sum.ExportID, exportID)
	assert.Equal(t, exported.Format(time.RFC3339), exportedAt)
	assert.Equal(t, 2, nContacts)
	assert.Equal(t, 2, nNotes)
}

func TestExportDanglingLinkIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	contacts, notes := fixture(t)

	_, err := Export(context.Background(), path, contacts, notes, exported)
	require.NoError(t, err)

	db := openDB(t, path)
	var n int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM note_contacts nc
		 LEFT JOIN contacts c ON c.contact_id = nc.contact_id
		 WHERE c.contact_id IS NULL`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestExportReplacesPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	contacts, notes := fixture(t)

	first, err := Export(context.Background(), path, contacts, notes, exported)
	require.NoError(t, err)
	second, err := Export(context.Background(), path, contacts[:1], nil, exported)
	require.NoError(t, err)
	assert.NotEqual(t, first.ExportID, second.ExportID)

	db := openDB(t, path)
	assert.Equal(t, 1, count(t, db, "contacts"))
	assert.Equal(t, 0, count(t, db, "notes"))
	assert.Equal(t, 1, count(t, db, "export_meta"))
}

func TestExportCanceledKeepsPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	contacts, notes := fixture(t)

	_, err := Export(context.Background(), path, contacts, notes, exported)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Export(ctx, path, nil, nil, exported)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, path+".tmp")

	db := openDB(t, path)
	assert.Equal(t, 2, count(t, db, "contacts"))
}

func TestExportEmptyCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")

	sum, err := Export(context.Background(), path, nil, nil, exported)
	require.NoError(t, err)
	assert.Zero(t, sum.Contacts)
	assert.Zero(t, sum.Notes)

	db := openDB(t, path)
	assert.Equal(t, 0, count(t, db, "contacts"))
	assert.Equal(t, 1, count(t, db, "export_meta"))
}
