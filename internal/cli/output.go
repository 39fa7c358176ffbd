package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// printer writes command results as text or JSON. Styling is dropped
// automatically when out is not a terminal.
type printer struct {
	out      io.Writer
	jsonMode bool
	heading  lipgloss.Style
	muted    lipgloss.Style
	success  lipgloss.Style
}

func (a *app) printer(cmd *cobra.Command) *printer {
	out := cmd.OutOrStdout()
	r := lipgloss.NewRenderer(out)
	return &printer{
		out:      out,
		jsonMode: a.flags.jsonMode,
		heading:  r.NewStyle().Bold(true),
		muted:    r.NewStyle().Faint(true),
		success:  r.NewStyle().Foreground(lipgloss.Color("#2CD7C7")),
	}
}

// writeJSON writes v as indented JSON.
func (p *printer) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(p.out, string(data))
	return err
}

// done reports a completed action. In JSON mode v is written instead.
func (p *printer) done(v any, format string, args ...any) error {
	if p.jsonMode {
		return p.writeJSON(v)
	}
	fmt.Fprintln(p.out, p.success.Render(fmt.Sprintf(format, args...)))
	return nil
}

func (p *printer) contacts(cs []*types.Contact) error {
	if p.jsonMode {
		return p.writeJSON(nonNil(cs))
	}
	if len(cs) == 0 {
		fmt.Fprintln(p.out, p.muted.Render("No contacts."))
		return nil
	}
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPHONES\tEMAILS\tBIRTHDAY")
	for _, c := range cs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, strings.Join(c.Phones, ", "), strings.Join(c.Emails, ", "), orDash(c.BirthdayString()))
	}
	return w.Flush()
}

func (p *printer) notes(ns []*types.Note) error {
	if p.jsonMode {
		return p.writeJSON(nonNil(ns))
	}
	if len(ns) == 0 {
		fmt.Fprintln(p.out, p.muted.Render("No notes."))
		return nil
	}
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTAGS\tCONTACTS\tTEXT")
	for _, n := range ns {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			n.ID, n.CreatedAt.Format(types.TimestampLayout), orDash(strings.Join(n.Tags, ", ")),
			orDash(joinInts(n.ContactIDs)), truncate(n.Text, 60))
	}
	return w.Flush()
}

// contactDetail is the JSON shape of "contact show". Age and DaysToBirthday
// are null when no birthday is set.
type contactDetail struct {
	Contact        *types.Contact `json:"contact"`
	Age            *int           `json:"age"`
	DaysToBirthday *int           `json:"days_to_birthday"`
	Notes          []*types.Note  `json:"notes"`
}

func newContactDetail(c *types.Contact, notes []*types.Note, today civil.Date) contactDetail {
	d := contactDetail{Contact: c, Notes: nonNil(notes)}
	if age, ok := c.Age(today); ok {
		d.Age = &age
	}
	if days, ok := c.DaysToBirthday(today); ok {
		d.DaysToBirthday = &days
	}
	return d
}

func (p *printer) contactDetail(c *types.Contact, notes []*types.Note, today civil.Date) error {
	d := newContactDetail(c, notes, today)
	if p.jsonMode {
		return p.writeJSON(d)
	}
	fmt.Fprintln(p.out, p.heading.Render(fmt.Sprintf("Contact %d: %s", c.ID, c.Name)))
	fmt.Fprintf(p.out, "  Phones:   %s\n", orDash(strings.Join(c.Phones, ", ")))
	fmt.Fprintf(p.out, "  Emails:   %s\n", orDash(strings.Join(c.Emails, ", ")))
	fmt.Fprintf(p.out, "  Birthday: %s\n", orDash(c.BirthdayString()))
	fmt.Fprintf(p.out, "  Age:      %s\n", orDashInt(d.Age))
	fmt.Fprintf(p.out, "  Next bday: %s\n", daysUntil(d.DaysToBirthday))
	fmt.Fprintf(p.out, "  Notes:    %d\n", len(notes))
	for _, n := range notes {
		fmt.Fprintf(p.out, "    #%d %s\n", n.ID, truncate(n.Text, 60))
	}
	return nil
}

// noteDetail is the JSON shape of "note show".
type noteDetail struct {
	Note     *types.Note      `json:"note"`
	Contacts []*types.Contact `json:"contacts"`
}

func (p *printer) noteDetail(n *types.Note, contacts []*types.Contact) error {
	if p.jsonMode {
		return p.writeJSON(noteDetail{Note: n, Contacts: nonNil(contacts)})
	}
	title := fmt.Sprintf("Note %d", n.ID)
	if n.Pinned() {
		title += " (pinned)"
	}
	fmt.Fprintln(p.out, p.heading.Render(title))
	fmt.Fprintf(p.out, "  Created:  %s\n", n.CreatedAt.Format(types.TimestampLayout))
	fmt.Fprintf(p.out, "  Tags:     %s\n", orDash(strings.Join(n.Tags, ", ")))
	names := make([]string, 0, len(contacts))
	for _, c := range contacts {
		names = append(names, fmt.Sprintf("%s (#%d)", c.Name, c.ID))
	}
	fmt.Fprintf(p.out, "  Contacts: %s\n", orDash(strings.Join(names, ", ")))
	fmt.Fprintf(p.out, "\n%s\n", n.Text)
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orDashInt(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func daysUntil(days *int) string {
	switch {
	case days == nil:
		return "-"
	case *days == 0:
		return "today"
	case *days == 1:
		return "in 1 day"
	}
	return fmt.Sprintf("in %d days", *days)
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

// truncate shortens s to limit runes on a single line.
func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
