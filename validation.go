package goTodo

import (
	"errors"
	"net/mail"

	"github.com/google/uuid"
)

var errEmailShape = errors.New("email is not a valid address")

// validateEmail accepts a bare address only: no display name, no angle
// brackets, nothing around it.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return errEmailShape
	}
	if addr.Name != "" || addr.Address != email {
		return errEmailShape
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}
