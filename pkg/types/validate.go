package types

import (
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Date and timestamp layouts of the durable format and accepted input.
const (
	DateLayout          = "2006-01-02"
	BirthdayInputLayout = "02.01.2006"
	TimestampLayout     = "2006-01-02 15:04:05"
)

// MaxTagLength is the longest tag, in runes, a note accepts.
const MaxTagLength = 32

// Accepted phone shapes after separators are stripped.
var (
	phoneIntl     = regexp.MustCompile(`^\+380\d{9}$`)
	phoneNational = regexp.MustCompile(`^0\d{9}$`)
)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// fieldValidate checks single values against validator rules. A Validate
// instance is safe for concurrent use.
var fieldValidate = validator.New()

// NormalizePhone accepts "+380XXXXXXXXX" or "0XXXXXXXXX" (separators
// allowed) and returns the canonical international form.
func NormalizePhone(raw string) (string, error) {
	s := phoneSeparators.Replace(strings.TrimSpace(raw))
	switch {
	case phoneIntl.MatchString(s):
	case phoneNational.MatchString(s):
		s = "+38" + s
	default:
		return "", invalid("phone", raw, "want +380XXXXXXXXX or 0XXXXXXXXX")
	}
	if err := fieldValidate.Var(s, "e164"); err != nil {
		return "", invalid("phone", raw, "not an E.164 number")
	}
	return s, nil
}

// NormalizePhones normalizes each phone and drops duplicates, keeping the
// first occurrence. The result is never nil.
func NormalizePhones(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		p, err := NormalizePhone(r)
		if err != nil {
			return nil, err
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}

// NormalizeEmail trims raw and checks it against the address grammar.
func NormalizeEmail(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", invalid("email", raw, "must not be empty")
	}
	if err := fieldValidate.Var(s, "email"); err != nil {
		return "", invalid("email", raw, "not a valid address")
	}
	return s, nil
}

// NormalizeEmails validates each address and drops case-insensitive
// duplicates. The result is never nil.
func NormalizeEmails(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		e, err := NormalizeEmail(r)
		if err != nil {
			return nil, err
		}
		key := fold(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out, nil
}

// NormalizeName trims, collapses inner whitespace, and title-cases each word.
func NormalizeName(raw string) (string, error) {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return "", invalid("name", raw, "must not be empty")
	}
	return cases.Title(language.Und).String(strings.Join(words, " ")), nil
}

// ParseBirthday accepts "DD.MM.YYYY" or "YYYY-MM-DD".
func ParseBirthday(raw string) (civil.Date, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range []string{BirthdayInputLayout, DateLayout} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, invalid("birthday", raw, "want DD.MM.YYYY or YYYY-MM-DD")
}

// ParseDate accepts only "YYYY-MM-DD".
func ParseDate(raw string) (civil.Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return civil.Date{}, invalid("date", raw, "want YYYY-MM-DD")
	}
	return civil.DateOf(t), nil
}

// NormalizeText trims raw and rejects empty text.
func NormalizeText(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", invalid("text", raw, "must not be empty")
	}
	return s, nil
}

// NormalizeTag trims raw and enforces MaxTagLength. A blank tag yields "".
func NormalizeTag(raw string) (string, error) {
	t := strings.TrimSpace(raw)
	if len([]rune(t)) > MaxTagLength {
		return "", invalid("tag", raw, "longer than 32 characters")
	}
	return t, nil
}

// NormalizeTags trims tags, drops empty ones, and removes case-insensitive
// duplicates keeping the first spelling. The result is never nil.
func NormalizeTags(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		t, err := NormalizeTag(r)
		if err != nil {
			return nil, err
		}
		if t == "" {
			continue
		}
		key := fold(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out, nil
}

// NormalizeContactIDs rejects non-positive ids and drops duplicates keeping
// order. The result is never nil.
func NormalizeContactIDs(raw []int) ([]int, error) {
	out := make([]int, 0, len(raw))
	seen := make(map[int]bool, len(raw))
	for _, id := range raw {
		if id <= 0 {
			return nil, &ValidationError{Field: "contact_ids", Reason: "ids must be positive"}
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// fold returns the case-folded form used for case-insensitive matching.
func fold(s string) string {
	return cases.Fold().String(s)
}

// SameTag reports whether two tags are equal ignoring case.
func SameTag(a, b string) bool {
	return fold(a) == fold(b)
}

// Contains reports whether needle occurs in haystack ignoring case.
func Contains(haystack, needle string) bool {
	return strings.Contains(fold(haystack), fold(needle))
}
