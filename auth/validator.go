package auth

import (
	"chat-core/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterRequest struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=6"`
	FirstName string `validate:"min=1,max=50"`
	LastName  string `validate:"min=1,max=50"`
}

// ValidateRegister maps the first failing field to its specific error.
func ValidateRegister(req RegisterRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRegister, err)
	}
	switch fieldErrs[0].Field() {
	case "Email":
		return errors.ErrInvalidEmail
	case "Password":
		return errors.ErrInvalidPassword
	default:
		return errors.ErrInvalidName
	}
}

// ValidateEmail checks the same email rule as registration.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return errors.ErrInvalidEmail
	}
	return nil
}

// ValidateName checks a first or last name.
func ValidateName(name string) error {
	if err := validate.Var(name, "min=1,max=50"); err != nil {
		return errors.ErrInvalidName
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if err := validate.Var(password, "min=6"); err != nil {
		return errors.ErrInvalidPassword
	}
	return nil
}

// ValidateHandle checks a user chosen handle: 3 to 20 alphanumeric characters.
func ValidateHandle(handle string) error {
	if err := validate.Var(handle, "min=3,max=20,alphanum"); err != nil {
		return errors.ErrInvalidHandle
	}
	return nil
}

// ValidateChannelName checks the 1 to 20 character channel name bound.
func ValidateChannelName(name string) error {
	if err := validate.Var(name, "min=1,max=20"); err != nil {
		return errors.ErrInvalidChannelName
	}
	return nil
}
