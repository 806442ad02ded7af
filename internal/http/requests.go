package httpx

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// updateUserRequest is a partial update; nil fields stay untouched.
type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// normalize treats explicit empty strings as absent. Validation rules skip
// empty values, so without this a blank name or email would slip past them
// and wipe the stored field.
func (r *updateUserRequest) normalize() {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		r.Name = nil
	}
	if r.Email != nil && strings.TrimSpace(*r.Email) == "" {
		r.Email = nil
	}
}

func (r updateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(2, 200)),
		validation.Field(&r.Email, is.Email),
	)
}
