package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Contact is a person in the address book.
type Contact struct {
	ID       int         // Assigned by the collection; 0 until added.
	Name     string      // Title-cased, non-empty.
	Phones   []string    // Canonical +380XXXXXXXXX form.
	Emails   []string    // Validated addresses.
	Birthday *civil.Date // Optional.
}

// ContactPatch is the closed set of patchable Contact fields. A nil field is
// left unchanged. Birthday "" clears the birthday.
type ContactPatch struct {
	Name     *string
	Phones   *[]string
	Emails   *[]string
	Birthday *string
}

// contactJSON is the durable form of a Contact.
type contactJSON struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Phones   []string `json:"phones"`
	Emails   []string `json:"emails"`
	Birthday *string  `json:"birthday"`
}

// RecordID returns the contact id.
func (c *Contact) RecordID() int { return c.ID }

// SetRecordID sets the contact id.
func (c *Contact) SetRecordID(id int) { c.ID = id }

// Build initializes c from fields. Name is required.
func (c *Contact) Build(fields ContactPatch, _ time.Time) error {
	if fields.Name == nil {
		return invalid("name", "", "required")
	}
	*c = Contact{Phones: []string{}, Emails: []string{}}
	return c.Apply(fields)
}

// Apply changes the fields present in p.
func (c *Contact) Apply(p ContactPatch) error {
	if p.Name != nil {
		name, err := NormalizeName(*p.Name)
		if err != nil {
			return err
		}
		c.Name = name
	}
	if p.Phones != nil {
		phones, err := NormalizePhones(*p.Phones)
		if err != nil {
			return err
		}
		c.Phones = phones
	}
	if p.Emails != nil {
		emails, err := NormalizeEmails(*p.Emails)
		if err != nil {
			return err
		}
		c.Emails = emails
	}
	if p.Birthday != nil {
		if strings.TrimSpace(*p.Birthday) == "" {
			c.Birthday = nil
		} else {
			d, err := ParseBirthday(*p.Birthday)
			if err != nil {
				return err
			}
			c.Birthday = &d
		}
	}
	return nil
}

// Matches tests query against name, phones, emails and birthday.
func (c *Contact) Matches(query string) bool {
	if Contains(c.Name, query) {
		return true
	}
	for _, p := range c.Phones {
		if strings.Contains(p, strings.TrimSpace(query)) {
			return true
		}
	}
	for _, e := range c.Emails {
		if Contains(e, query) {
			return true
		}
	}
	if c.Birthday != nil {
		return strings.Contains(c.BirthdayString(), query) ||
			strings.Contains(c.Birthday.String(), query)
	}
	return false
}

// BirthdayString formats the birthday as DD.MM.YYYY, or "" when unset.
func (c *Contact) BirthdayString() string {
	if c.Birthday == nil {
		return ""
	}
	return c.Birthday.In(time.UTC).Format(BirthdayInputLayout)
}

// DaysToBirthday returns the days from today to the next birthday, zero
// when it is today. ok is false when no birthday is set.
func (c *Contact) DaysToBirthday(today civil.Date) (days int, ok bool) {
	if c.Birthday == nil {
		return 0, false
	}
	next := anniversary(*c.Birthday, today.Year)
	if next.Before(today) {
		next = anniversary(*c.Birthday, today.Year+1)
	}
	return next.DaysSince(today), true
}

// Age returns the completed years at today. ok is false when no birthday
// is set.
func (c *Contact) Age(today civil.Date) (age int, ok bool) {
	if c.Birthday == nil {
		return 0, false
	}
	b := *c.Birthday
	age = today.Year - b.Year
	if today.Month < b.Month || (today.Month == b.Month && today.Day < b.Day) {
		age--
	}
	return age, true
}

// anniversary places birthday b in year. 29 February falls on 1 March in
// non-leap years.
func anniversary(b civil.Date, year int) civil.Date {
	if b.Month == time.February && b.Day == 29 && !isLeap(year) {
		return civil.Date{Year: year, Month: time.March, Day: 1}
	}
	return civil.Date{Year: year, Month: b.Month, Day: b.Day}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// MarshalRecord returns the durable JSON form.
func (c *Contact) MarshalRecord() ([]byte, error) {
	rec := contactJSON{
		ID:     c.ID,
		Name:   c.Name,
		Phones: c.Phones,
		Emails: c.Emails,
	}
	if rec.Phones == nil {
		rec.Phones = []string{}
	}
	if rec.Emails == nil {
		rec.Emails = []string{}
	}
	if c.Birthday != nil {
		s := c.Birthday.String()
		rec.Birthday = &s
	}
	return json.Marshal(rec)
}

// UnmarshalRecord decodes the durable JSON form. Stored values that no
// longer pass validation are kept as stored and reported through dc as
// FormatError values; a malformed birthday is reported and left unset.
func (c *Contact) UnmarshalRecord(data []byte, dc *DecodeContext) error {
	var rec contactJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("decoding contact: %w", err)
	}
	name := recoverString("name", rec.Name, NormalizeName, dc)
	phones := recoverStrings("phone", rec.Phones, NormalizePhone, dc)
	emails := recoverStrings("email", rec.Emails, NormalizeEmail, dc)
	out := Contact{ID: rec.ID, Name: name, Phones: phones, Emails: emails}
	if rec.Birthday != nil && *rec.Birthday != "" {
		d, err := ParseBirthday(*rec.Birthday)
		if err != nil {
			dc.Warn(&FormatError{Field: "birthday", Value: *rec.Birthday, Err: err})
		} else {
			out.Birthday = &d
		}
	}
	*c = out
	return nil
}

// MarshalJSON encodes the durable form.
func (c *Contact) MarshalJSON() ([]byte, error) {
	return c.MarshalRecord()
}

// UnmarshalJSON decodes the durable form, dropping recoverable problems.
func (c *Contact) UnmarshalJSON(data []byte) error {
	return c.UnmarshalRecord(data, nil)
}
