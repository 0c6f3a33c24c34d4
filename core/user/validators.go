package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maendeleo/core"
)

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=teacher student mentor"`
	Batch    string `json:"batch"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Batch = core.CleanString(nu.Batch)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Email)
}

// UpdateProfile defines what information a user may change on their own profile.
type UpdateProfile struct {
	Name        string `json:"name"`
	Email       string `json:"email" validate:"omitempty,email"`
	Bio         string `json:"bio"`
	LinkedIn    string `json:"linkedin"`
	Description string `json:"description"`
}

func (up *UpdateProfile) Validate(origUsr User, validate *validator.Validate, svc Service) error {
	name := core.CleanString(up.Name)
	if name != "" {
		up.Name = name
	} else {
		up.Name = origUsr.Name
	}

	email := core.CleanString(up.Email, true /* lower */)
	if email != "" {
		up.Email = email
	} else {
		up.Email = origUsr.Email
	}

	up.Bio = core.CleanString(up.Bio)
	up.LinkedIn = core.CleanString(up.LinkedIn)
	up.Description = core.CleanString(up.Description)

	if err := validate.Struct(up); err != nil {
		return err
	}
	return svc.CheckUniqueness(up.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}
