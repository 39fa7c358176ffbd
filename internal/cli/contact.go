package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/internal/assistant"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

func newContactCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contact",
		Aliases: []string{"contacts", "c"},
		Short:   "Manage contacts",
	}
	cmd.AddCommand(
		newContactAddCmd(a),
		withStore(&cobra.Command{
			Use:   "list",
			Short: "List all contacts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.printer(cmd).contacts(a.sess.asst.Contacts.All())
			},
		}),
		withStore(&cobra.Command{
			Use:   "show <id>",
			Short: "Show a contact and its notes",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				c, err := a.sess.asst.Contacts.Get(id)
				if err != nil {
					return err
				}
				return a.printer(cmd).contactDetail(c, a.sess.asst.NotesForContact(id), a.sess.asst.Today())
			},
		}),
		withStore(&cobra.Command{
			Use:   "search <query>",
			Short: "Find contacts by name, phone, email or birthday",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.printer(cmd).contacts(a.sess.asst.Contacts.Find(args[0]))
			},
		}),
		newContactEditCmd(a),
		newContactDeleteCmd(a),
		newContactBirthdaysCmd(a),
		withStore(&cobra.Command{
			Use:   "undo",
			Short: "Undo the last contact change",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				before := a.sess.asst.Contacts.UndoLen()
				msg := a.sess.asst.Contacts.Undo()
				if a.sess.asst.Contacts.UndoLen() < before {
					a.sess.markDirty()
				}
				return a.printer(cmd).done(map[string]string{"result": msg}, "%s", msg)
			},
		}),
	)
	return cmd
}

// contactFlags holds the field flags shared by add and edit.
type contactFlags struct {
	name     string
	phones   []string
	emails   []string
	birthday string
}

func (f *contactFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "full name")
	cmd.Flags().StringArrayVar(&f.phones, "phone", nil, "phone number, +380XXXXXXXXX or 0XXXXXXXXX (repeatable)")
	cmd.Flags().StringArrayVar(&f.emails, "email", nil, "email address (repeatable)")
	cmd.Flags().StringVar(&f.birthday, "birthday", "", "birthday, DD.MM.YYYY or YYYY-MM-DD")
}

// patch builds a ContactPatch from the flags the user actually set.
func (f *contactFlags) patch(cmd *cobra.Command) types.ContactPatch {
	var p types.ContactPatch
	if cmd.Flags().Changed("name") {
		p.Name = &f.name
	}
	if cmd.Flags().Changed("phone") {
		p.Phones = &f.phones
	}
	if cmd.Flags().Changed("email") {
		p.Emails = &f.emails
	}
	if cmd.Flags().Changed("birthday") {
		p.Birthday = &f.birthday
	}
	return p
}

func newContactAddCmd(a *app) *cobra.Command {
	var (
		f        contactFlags
		noteText string
		noteTags []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		Long: `Add creates a contact. Phone numbers are stored as +380XXXXXXXXX.
With --note, a note linked to the new contact is created as well.

Example:
  rolodex contact add --name "Jane Doe" --phone 0501234567
  rolodex contact add --name "John Roe" --email john@example.com --birthday 15.03.1990
  rolodex contact add --name "Ann Lee" --note "met at the conference" --note-tag work`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			withNote := cmd.Flags().Changed("note")
			if withNote {
				if _, err := types.NormalizeText(noteText); err != nil {
					return err
				}
				if _, err := types.NormalizeTags(noteTags); err != nil {
					return err
				}
			} else if cmd.Flags().Changed("note-tag") {
				return usageError("--note-tag needs --note")
			}

			id, err := a.sess.asst.Contacts.Create(f.patch(cmd))
			if err != nil {
				return err
			}
			a.sess.markDirty()
			c, err := a.sess.asst.Contacts.Get(id)
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			if !withNote {
				return p.done(c, "Created contact %d: %s", id, c.Name)
			}
			noteID, err := a.sess.asst.CreateLinkedNote(id, noteText, nonNil(noteTags))
			if err != nil {
				return err
			}
			return p.done(newContactDetail(c, a.sess.asst.NotesForContact(id), a.sess.asst.Today()),
				"Created contact %d: %s with note %d", id, c.Name, noteID)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&noteText, "note", "", "text of a note linked to the new contact")
	cmd.Flags().StringArrayVar(&noteTags, "note-tag", nil, "tag for the linked note (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return withStore(cmd)
}

func newContactEditCmd(a *app) *cobra.Command {
	var f contactFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change contact fields",
		Long: `Edit replaces the fields given as flags and leaves the rest alone.
Repeated --phone or --email flags replace the whole list; --birthday ""
clears the birthday.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p := f.patch(cmd)
			if p == (types.ContactPatch{}) {
				return usageError("nothing to change; pass at least one of --name, --phone, --email, --birthday")
			}
			if err := a.sess.asst.Contacts.Edit(id, p); err != nil {
				return err
			}
			a.sess.markDirty()
			c, err := a.sess.asst.Contacts.Get(id)
			if err != nil {
				return err
			}
			return a.printer(cmd).done(c, "Updated contact %d", id)
		},
	}
	f.register(cmd)
	return withStore(cmd)
}

func newContactDeleteCmd(a *app) *cobra.Command {
	var policy string
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact and resolve its linked notes",
		Long: `Delete removes a contact. Notes linked to it are either detached
(the contact id is removed from them) or deleted with it (cascade).
The default comes from delete_policy in config.yaml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			report, err := a.sess.asst.DeleteContactWithPolicy(id, types.DeletePolicy(policy))
			if err != nil {
				return err
			}
			a.sess.markDirty()
			return a.printer(cmd).done(report, "%s", describeDelete(report))
		},
	}
	cmd.Flags().StringVar(&policy, "policy", "", "linked note handling: detach or cascade")
	return withStore(cmd)
}

func describeDelete(r assistant.DeleteReport) string {
	switch {
	case len(r.DeletedNotes) > 0:
		return fmt.Sprintf("Deleted contact %d and %d linked note(s)", r.ContactID, len(r.DeletedNotes))
	case len(r.DetachedNotes) > 0:
		return fmt.Sprintf("Deleted contact %d; detached %d note(s)", r.ContactID, len(r.DetachedNotes))
	default:
		return fmt.Sprintf("Deleted contact %d", r.ContactID)
	}
}

// birthdayEntry is the JSON shape of one "contact birthdays" result.
type birthdayEntry struct {
	Contact *types.Contact `json:"contact"`
	Days    int            `json:"days"`
}

func newContactBirthdaysCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "birthdays",
		Short: "List birthdays in the coming days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window := a.sess.cfg.BirthdayWindow
			if cmd.Flags().Changed("days") {
				if days <= 0 {
					return usageError("--days must be positive")
				}
				window = days
			}
			upcoming := a.sess.asst.Contacts.UpcomingBirthdays(window, a.sess.asst.Today())

			p := a.printer(cmd)
			if p.jsonMode {
				out := make([]birthdayEntry, 0, len(upcoming))
				for _, u := range upcoming {
					out = append(out, birthdayEntry{Contact: u.Contact, Days: u.Days})
				}
				return p.writeJSON(out)
			}
			if len(upcoming) == 0 {
				fmt.Fprintln(p.out, p.muted.Render(fmt.Sprintf("No birthdays in the next %d days.", window)))
				return nil
			}
			for _, u := range upcoming {
				fmt.Fprintf(p.out, "%s  %s  %s\n", u.Contact.BirthdayString(), u.Contact.Name, whenLabel(u.Days))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "window in days (default: birthday_window from config)")
	return withStore(cmd)
}

func whenLabel(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
