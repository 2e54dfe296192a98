package session

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type loginForm struct {
	Email    string
	Password string
}

func (f *loginForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Email, validation.Required, is.EmailFormat),
		validation.Field(&f.Password, validation.Required),
	)
}

type registerForm struct {
	Email     string
	FirstName string
	Password  string
}

func (f *registerForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Email, validation.Required, is.EmailFormat),
		validation.Field(&f.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&f.Password, validation.Required, validation.Length(8, 128)),
	)
}

// ValidateLogin checks login credentials before they leave the client.
func ValidateLogin(email, password string) error {
	return (&loginForm{Email: email, Password: password}).Validate()
}

// ValidateRegister checks the registration form before it leaves the client.
func ValidateRegister(email, firstName, password string) error {
	return (&registerForm{Email: email, FirstName: firstName, Password: password}).Validate()
}
