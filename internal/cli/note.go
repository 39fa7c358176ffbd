package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

func newNoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes", "n"},
		Short:   "Manage notes",
	}
	cmd.AddCommand(
		newNoteAddCmd(a),
		a.noteQuery("list", "List all notes", cobra.NoArgs, func(args []string) ([]*types.Note, error) {
			return a.sess.asst.Notes.All(), nil
		}),
		withStore(&cobra.Command{
			Use:   "show <id>",
			Short: "Show a note and the contacts it links",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				n, err := a.sess.asst.Notes.Get(id)
				if err != nil {
					return err
				}
				return a.printer(cmd).noteDetail(n, a.sess.asst.LinkedContacts(n))
			},
		}),
		a.noteQuery("search <query>", "Find notes by text, tag or linked contact details", cobra.ExactArgs(1), func(args []string) ([]*types.Note, error) {
			return a.sess.asst.SearchNotes(args[0]), nil
		}),
		newNoteEditCmd(a),
		withStore(&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a note",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if !a.sess.asst.Notes.Delete(id) {
					return &types.NotFoundError{Kind: a.sess.asst.Notes.Kind(), ID: id}
				}
				a.sess.markDirty()
				return a.printer(cmd).done(map[string]int{"deleted": id}, "Deleted note %d", id)
			},
		}),
		a.noteQuery("sorted", "List notes oldest first", cobra.NoArgs, func(args []string) ([]*types.Note, error) {
			return a.sess.asst.Notes.SortByDate(), nil
		}),
		a.noteQuery("tag <tag>", "List notes with a matching tag", cobra.ExactArgs(1), func(args []string) ([]*types.Note, error) {
			return a.sess.asst.Notes.FindByTag(args[0]), nil
		}),
		a.noteQuery("date <YYYY-MM-DD>", "List notes created on a day", cobra.ExactArgs(1), func(args []string) ([]*types.Note, error) {
			return a.sess.asst.Notes.FindByDate(args[0])
		}),
		a.noteQuery("pinned", "List pinned notes", cobra.NoArgs, func(args []string) ([]*types.Note, error) {
			return a.sess.asst.Notes.Pinned(), nil
		}),
		a.notePin("pin", "Pin a note", true),
		a.notePin("unpin", "Unpin a note", false),
		newNoteDanglingCmd(a),
		withStore(&cobra.Command{
			Use:   "undo",
			Short: "Undo the last note change",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				before := a.sess.asst.Notes.UndoLen()
				msg := a.sess.asst.Notes.Undo()
				if a.sess.asst.Notes.UndoLen() < before {
					a.sess.markDirty()
				}
				return a.printer(cmd).done(map[string]string{"result": msg}, "%s", msg)
			},
		}),
	)
	return cmd
}

// noteQuery builds a read-only command that prints a list of notes.
func (a *app) noteQuery(use, short string, args cobra.PositionalArgs, query func([]string) ([]*types.Note, error)) *cobra.Command {
	return withStore(&cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := query(args)
			if err != nil {
				return err
			}
			return a.printer(cmd).notes(notes)
		},
	})
}

func (a *app) notePin(use, short string, pin bool) *cobra.Command {
	return withStore(&cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			before := a.sess.asst.Notes.UndoLen()
			if pin {
				err = a.sess.asst.PinNote(id)
			} else {
				err = a.sess.asst.UnpinNote(id)
			}
			if err != nil {
				return err
			}
			if a.sess.asst.Notes.UndoLen() != before {
				a.sess.markDirty()
			}
			n, err := a.sess.asst.Notes.Get(id)
			if err != nil {
				return err
			}
			state := "Unpinned"
			if n.Pinned() {
				state = "Pinned"
			}
			return a.printer(cmd).done(n, "%s note %d", state, id)
		},
	})
}

// noteFlags holds the field flags shared by add and edit.
type noteFlags struct {
	text          string
	tags          []string
	contacts      []int
	clearTags     bool
	clearContacts bool
}

func (f *noteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.text, "text", "", "note text")
	cmd.Flags().StringArrayVar(&f.tags, "tag", nil, "tag, at most 32 characters (repeatable)")
	cmd.Flags().IntSliceVar(&f.contacts, "contact", nil, "linked contact id (repeatable)")
}

func newNoteAddCmd(a *app) *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a note",
		Long: `Add creates a note. Linked contacts must exist.

Example:
  rolodex note add --text "buy milk" --tag shop
  rolodex note add --text "call back" --contact 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, cid := range f.contacts {
				if !a.sess.asst.Contacts.Contains(cid) {
					return &types.NotFoundError{Kind: a.sess.asst.Contacts.Kind(), ID: cid}
				}
			}
			tags := nonNil(f.tags)
			contacts := nonNil(f.contacts)
			var (
				id  int
				err error
			)
			if len(contacts) == 1 {
				id, err = a.sess.asst.CreateLinkedNote(contacts[0], f.text, tags)
			} else {
				id, err = a.sess.asst.Notes.Create(types.NotePatch{Text: &f.text, Tags: &tags, ContactIDs: &contacts})
			}
			if err != nil {
				return err
			}
			a.sess.markDirty()
			n, err := a.sess.asst.Notes.Get(id)
			if err != nil {
				return err
			}
			return a.printer(cmd).done(n, "Created note %d", id)
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("text")
	return withStore(cmd)
}

func newNoteEditCmd(a *app) *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change note fields",
		Long: `Edit replaces the fields given as flags and leaves the rest alone.
Repeated --tag or --contact flags replace the whole list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var p types.NotePatch
			if cmd.Flags().Changed("text") {
				p.Text = &f.text
			}
			switch {
			case f.clearTags:
				p.Tags = &[]string{}
			case cmd.Flags().Changed("tag"):
				p.Tags = &f.tags
			}
			switch {
			case f.clearContacts:
				p.ContactIDs = &[]int{}
			case cmd.Flags().Changed("contact"):
				missing := slices.IndexFunc(f.contacts, func(cid int) bool { return !a.sess.asst.Contacts.Contains(cid) })
				if missing >= 0 {
					return &types.NotFoundError{Kind: a.sess.asst.Contacts.Kind(), ID: f.contacts[missing]}
				}
				p.ContactIDs = &f.contacts
			}
			if p == (types.NotePatch{}) {
				return usageError("nothing to change; pass at least one of --text, --tag, --contact, --clear-tags, --clear-contacts")
			}
			if err := a.sess.asst.Notes.Edit(id, p); err != nil {
				return err
			}
			a.sess.markDirty()
			n, err := a.sess.asst.Notes.Get(id)
			if err != nil {
				return err
			}
			return a.printer(cmd).done(n, "Updated note %d", id)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.clearTags, "clear-tags", false, "remove all tags")
	cmd.Flags().BoolVar(&f.clearContacts, "clear-contacts", false, "unlink all contacts")
	cmd.MarkFlagsMutuallyExclusive("tag", "clear-tags")
	cmd.MarkFlagsMutuallyExclusive("contact", "clear-contacts")
	return withStore(cmd)
}

// danglingEntry is the JSON shape of one "note dangling" result.
type danglingEntry struct {
	NoteID     int   `json:"note_id"`
	ContactIDs []int `json:"contact_ids"`
}

func newNoteDanglingCmd(a *app) *cobra.Command {
	return withStore(&cobra.Command{
		Use:   "dangling",
		Short: "List notes linked to contacts that no longer exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			links := a.sess.asst.DanglingLinks()
			ids := make([]int, 0, len(links))
			for id := range links {
				ids = append(ids, id)
			}
			slices.Sort(ids)

			p := a.printer(cmd)
			if p.jsonMode {
				out := make([]danglingEntry, 0, len(ids))
				for _, id := range ids {
					out = append(out, danglingEntry{NoteID: id, ContactIDs: links[id]})
				}
				return p.writeJSON(out)
			}
			if len(ids) == 0 {
				fmt.Fprintln(p.out, p.muted.Render("No dangling links."))
				return nil
			}
			for _, id := range ids {
				fmt.Fprintf(p.out, "note %d -> missing contact(s) %s\n", id, joinInts(links[id]))
			}
			return nil
		},
	})
}
