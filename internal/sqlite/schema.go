package sqlite

// Snapshot table DDL. Records keep the ids they have in the JSON files.
const (
	createContacts = `CREATE TABLE contacts (
    contact_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    birthday TEXT
);`

	createContactPhones = `CREATE TABLE contact_phones (
    contact_id INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    phone TEXT NOT NULL,
    PRIMARY KEY (contact_id, ordinal),
    FOREIGN KEY (contact_id) REFERENCES contacts(contact_id)
);`

	createContactEmails = `CREATE TABLE contact_emails (
    contact_id INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    email TEXT NOT NULL,
    PRIMARY KEY (contact_id, ordinal),
    FOREIGN KEY (contact_id) REFERENCES contacts(contact_id)
);`

	createNotes = `CREATE TABLE notes (
    note_id INTEGER PRIMARY KEY,
    text TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createNoteTags = `CREATE TABLE note_tags (
    note_id INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (note_id, ordinal),
    FOREIGN KEY (note_id) REFERENCES notes(note_id)
);`

	// contact_id has no foreign key: notes may reference deleted contacts.
	createNoteContacts = `CREATE TABLE note_contacts (
    note_id INTEGER NOT NULL,
    contact_id INTEGER NOT NULL,
    PRIMARY KEY (note_id, contact_id),
    FOREIGN KEY (note_id) REFERENCES notes(note_id)
);`

	createExportMeta = `CREATE TABLE export_meta (
    export_id TEXT PRIMARY KEY,
    exported_at TEXT NOT NULL,
    contacts INTEGER NOT NULL,
    notes INTEGER NOT NULL
);`
)

// Index DDL for the lookups the snapshot is meant for.
const (
	idxNoteContactsContact = `CREATE INDEX idx_note_contacts_contact ON note_contacts(contact_id);`
	idxNoteTagsTag         = `CREATE INDEX idx_note_tags_tag ON note_tags(tag COLLATE NOCASE);`
	idxNotesCreated        = `CREATE INDEX idx_notes_created ON notes(created_at);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createContacts,
	createContactPhones,
	createContactEmails,
	createNotes,
	createNoteTags,
	createNoteContacts,
	createExportMeta,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxNoteContactsContact,
	idxNoteTagsTag,
	idxNotesCreated,
}
