package user

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
)

// Roles
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleDeleted = "deleted" // soft-deleted student
)

// DefaultStudentPassword is used when a student is registered without a password.
const DefaultStudentPassword = "student123"

var AllRoles = []string{RoleTeacher, RoleStudent}

// User is the record returned on authentication and kept as the client session.
type User struct {
	ID           int    `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	Role         string `json:"role" db:"role"`
	FirstName    string `json:"firstName" db:"first_name"`
	LastName     string `json:"lastName" db:"last_name"`
	PasswordHash []byte `json:"-" db:"password_hash"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }
func (u User) IsDeleted() bool { return u.Role == RoleDeleted }

func (u User) FullName() string { return core.FullName(u.FirstName, u.LastName) }

// Student is a roster entry as seen by teachers.
type Student struct {
	ID        int    `json:"id" db:"id"`
	Email     string `json:"email" db:"email"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
}

func (s Student) FullName() string { return core.FullName(s.FirstName, s.LastName) }

// Credentials are submitted on login.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	if err := validate.Struct(c); err != nil {
		return core.NewValidationError(ErrCredentialsRequired)
	}
	return nil
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	FirstName string   `json:"firstName" validate:"notblank"`
	LastName  string   `json:"lastName" validate:"notblank"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password"`
	ClassID   null.Int `json:"classId"`
}

// UnmarshalJSON accepts classId as a number, a numeric string, null or "" (no class).
func (ns *NewStudent) UnmarshalJSON(data []byte) error {
	type newStudent NewStudent
	aux := struct {
		*newStudent
		ClassID json.RawMessage `json:"classId"`
	}{newStudent: (*newStudent)(ns)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	ns.ClassID = null.Int{}
	raw := bytes.TrimSpace(aux.ClassID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return err
		}
		if str = strings.TrimSpace(str); str == "" {
			return nil
		}
		raw = []byte(str)
	}
	id, err := strconv.Atoi(string(raw))
	if err != nil {
		return core.NewValidationError(ErrClassIDInvalid, core.FieldError{Field: "classId", Error: ErrClassIDInvalid.Error()})
	}
	ns.ClassID = null.IntFrom(id)
	return nil
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	if ns.Password == "" {
		ns.Password = DefaultStudentPassword
	}
	return validate.Struct(ns)
}

// NewUser is used by the admin tooling to register teachers (or students).
type NewUser struct {
	FirstName string `json:"firstName" validate:"notblank"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=teacher student"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return validate.Struct(nu)
}

// StudentFilter narrows the roster; a null ClassID lists every student.
type StudentFilter struct {
	ClassID null.Int
}
