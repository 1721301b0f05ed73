package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateSetID checks that id is a canonical candidate-set identifier.
// Identifiers double as file names in the file store, so anything that is not
// a plain UUID is rejected before it reaches a backend.
func ValidateSetID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "candidate set id cannot be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Wrap(ErrCodeInvalidID, err, "invalid candidate set id %q", id)
	}
	if parsed.String() != strings.ToLower(id) {
		return New(ErrCodeInvalidID, "candidate set id %q is not in canonical form", id)
	}
	return nil
}

// ValidateLocale performs a cheap sanity check on a BCP 47 tag before it is
// handed to the language parser.
func ValidateLocale(tag string) error {
	if tag == "" {
		return New(ErrCodeInvalidInput, "locale cannot be empty")
	}
	if len(tag) > 35 {
		return New(ErrCodeInvalidInput, "locale %q too long", tag)
	}
	for _, r := range tag {
		if r != '-' && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return New(ErrCodeInvalidInput, "locale %q contains invalid characters", tag)
		}
	}
	return nil
}
