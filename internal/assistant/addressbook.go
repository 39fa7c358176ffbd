package assistant

import (
	"cmp"
	"slices"

	"cloud.google.com/go/civil"

	"github.com/mesh-intelligence/rolodex/internal/collection"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Contacts is the collection engine instantiated for contacts.
type Contacts = collection.Collection[types.Contact, types.ContactPatch, *types.Contact]

// AddressBook is the contacts collection plus birthday queries.
type AddressBook struct {
	*Contacts
}

// UpcomingBirthday pairs a contact with the days left to its birthday.
type UpcomingBirthday struct {
	Contact *types.Contact
	Days    int
}

// UpcomingBirthdays returns contacts whose next birthday is less than days
// away from today, soonest first; ties keep id order.
func (b AddressBook) UpcomingBirthdays(days int, today civil.Date) []UpcomingBirthday {
	var out []UpcomingBirthday
	for _, c := range b.All() {
		d, ok := c.DaysToBirthday(today)
		if ok && d < days {
			out = append(out, UpcomingBirthday{Contact: c, Days: d})
		}
	}
	slices.SortStableFunc(out, func(a, b UpcomingBirthday) int {
		return cmp.Or(cmp.Compare(a.Days, b.Days), cmp.Compare(a.Contact.ID, b.Contact.ID))
	})
	return out
}
