package user

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		CreateUser(usr User) (User, error)
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		QueryStudents() ([]User, error)
		UpdateUser(usr User) (User, error)
		SetUserPassword(id, hash string) error
	}

	Service interface {
		Register(nu NewUser) (User, error)
		// Authenticate verifies credentials. Lookup misses and password
		// mismatches are indistinguishable to the caller.
		Authenticate(email, pwd string) (User, error)
		GetByID(id string) (User, error)
		GetByEmail(email string) (User, error)
		QueryStudents() ([]User, error)
		UpdateProfile(id string, up UpdateProfile) (User, error)
		CheckUniqueness(email string, excludedUsers ...User) error
		RequestPasswordReset(email string) error
		ResetPassword(rp ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) CheckUniqueness(email string, excludedUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(email, excludedUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Register(nu NewUser) (User, error) {
	usr := User{
		ID:        uuid.New().String(),
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		Batch:     nu.Batch,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(usr)
}

func (svc *service) Authenticate(email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}

	if usr.HasLegacyPassword() {
		// legacy plaintext credential: compare directly, then hash and
		// persist the replacement so the plaintext never survives a login.
		if usr.Password != pwd {
			return User{}, ErrInvalidCredentials
		}
		if err = usr.SetPassword(pwd); err != nil {
			return User{}, errors.Wrap(err, "hashing legacy password")
		}
		if err = svc.repo.SetUserPassword(usr.ID, usr.Password); err != nil {
			return User{}, errors.Wrap(err, "migrating legacy password")
		}
		return usr, nil
	}

	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

func (svc *service) QueryStudents() ([]User, error) {
	return svc.repo.QueryStudents()
}

func (svc *service) UpdateProfile(id string, up UpdateProfile) (User, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	usr.Name = up.Name
	usr.Email = up.Email
	usr.Bio = up.Bio
	usr.LinkedIn = up.LinkedIn
	usr.Description = up.Description
	return svc.repo.UpdateUser(usr)
}

func (svc *service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) sendPasswordResetMail(usr User) {
	token, err := MakeToken(usr, svc.conf)
	if err != nil {
		return
	}
	url := fmt.Sprintf("%s/reset-password?uid=%s&token=%s", svc.conf.FrontendBaseURL, EncodeUID(usr), token)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Password reset",
		Body: fmt.Sprintf(
			"Hi %s,\r\n\r\nA password reset was requested for your account. "+
				"Follow the link below to choose a new password:\r\n\r\n%s\r\n\r\n"+
				"If you did not request this, you can safely ignore this email.", usr.Name, url),
	})
}

func (svc *service) ResetPassword(rp ResetUserPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err = verifyToken(usr, rp.Token, svc.conf); err != nil {
		return core.NewValidationError(err)
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.SetUserPassword(usr.ID, usr.Password)
}
