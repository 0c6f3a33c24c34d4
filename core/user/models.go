package user

import (
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleMentor  = "mentor"
)

var AllRoles = []string{RoleTeacher, RoleStudent, RoleMentor}

// legacy (pre-hashing) credentials are anything that does not look like a
// bcrypt digest; they are re-hashed transparently on the next login.
var bcryptHashRegex = regexp.MustCompile(`^\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}$`)

type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Password    string    `json:"-"` // bcrypt digest at rest
	Role        string    `json:"role"`
	Batch       string    `json:"batch,omitempty"` // student cohort label
	Bio         string    `json:"bio,omitempty"`
	LinkedIn    string    `json:"linkedin,omitempty"`    // mentor profile
	Description string    `json:"description,omitempty"` // mentor profile
	CreatedAt   time.Time `json:"created_at"`            // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(pwd))
}

func (u *User) HasLegacyPassword() bool {
	return !bcryptHashRegex.MatchString(u.Password)
}

func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsMentor() bool  { return u.Role == RoleMentor }
