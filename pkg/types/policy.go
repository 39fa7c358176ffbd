package types

import (
	"fmt"
	"strings"
)

// DeletePolicy decides what happens to notes linked to a deleted contact.
type DeletePolicy string

// Delete policies.
const (
	// DeleteCascade deletes every linked note.
	DeleteCascade DeletePolicy = "cascade"
	// DeleteDetach strips the contact id from each linked note.
	DeleteDetach DeletePolicy = "detach"
)

// ParseDeletePolicy parses a policy name, ignoring case.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case DeleteCascade:
		return DeleteCascade, nil
	case DeleteDetach:
		return DeleteDetach, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: cascade, detach)", ErrInvalidPolicy, s)
	}
}

func (p DeletePolicy) String() string {
	return string(p)
}
