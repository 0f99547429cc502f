// Package domain contains core concepts of the chat client.
// This file defines Participant names and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"chat-client/errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const maxUsernameLength = 64

var validate = validator.New()

// ValidateUsername checks a name can travel as one word of a command line.
func ValidateUsername(name string) error {
	if err := validate.Var(name, fmt.Sprintf("required,max=%d", maxUsernameLength)); err != nil {
		return fmt.Errorf("%w: %q: %v", errors.ErrInvalidUsername, name, err)
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("%w: %q contains whitespace", errors.ErrInvalidUsername, name)
	}
	return nil
}
