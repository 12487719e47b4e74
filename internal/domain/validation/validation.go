// Package validation holds the pure field predicates shared by the record
// screens: name/description length, email shape and the CPF checksum.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Length rules, in characters after trimming.
const (
	MinNameLength        = 3
	MinDescriptionLength = 5
)

const cpfLength = 11

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// IsValidName reports whether s has at least MinNameLength characters once trimmed.
func IsValidName(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= MinNameLength
}

// IsValidDescription reports whether s has at least MinDescriptionLength characters once trimmed.
func IsValidDescription(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= MinDescriptionLength
}

// IsValidEmail reports whether the trimmed s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return emailPattern.MatchString(s)
}

// DigitsOnly strips every character that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// IsValidCPF validates a Brazilian CPF. Punctuation is ignored; the result
// must be 11 digits, not all identical, with both check digits matching.
func IsValidCPF(s string) bool {
	num := DigitsOnly(s)
	if len(num) != cpfLength {
		return false
	}
	if strings.Count(num, num[:1]) == cpfLength {
		return false
	}
	return cpfCheckDigit(num, 9) == int(num[9]-'0') &&
		cpfCheckDigit(num, 10) == int(num[10]-'0')
}

// cpfCheckDigit weights the first n digits by n+1 down to 2.
func cpfCheckDigit(num string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(num[i]-'0') * (n + 1 - i)
	}
	if r := sum % 11; r >= 2 {
		return 11 - r
	}
	return 0
}

// ErrInvalid is matched by errors.Is on any Errors value.
var ErrInvalid = errors.New("invalid input")

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects per-field failures. A nil or empty Errors means valid.
type Errors []FieldError

// Check appends a failure for field when ok is false.
func (e *Errors) Check(ok bool, field, message string) {
	if !ok {
		*e = append(*e, FieldError{Field: field, Message: message})
	}
}

// Has reports whether field failed.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Err returns e as an error, or nil when nothing failed.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalid) match.
func (e Errors) Is(target error) bool {
	return target == ErrInvalid
}
