package user

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
)

var (
	// errors
	ErrNotFound            = errors.New("user not found")
	ErrEmailExists         = errors.New("a user with this email already exists")
	ErrInvalidCredentials  = errors.New("Неверный email или пароль")
	ErrCredentialsRequired = errors.New("Email и пароль обязательны")
	ErrAccountDeleted      = errors.New("Учетная запись удалена")
	ErrClassIDInvalid      = errors.New("classId must be an integer")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// CreateStudent creates a student and enrolls them in classID when set.
		CreateStudent(ctx context.Context, usr User, classID null.Int) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		QueryStudents(ctx context.Context, filter StudentFilter) ([]Student, error)
		UpdatePassword(ctx context.Context, id int, hash []byte) error
		SetRole(ctx context.Context, id int, role string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return errors.Wrap(err, "checking email uniqueness")
	}
	return nil
}

// Authenticate returns the User matching the credentials.
// Soft-deleted accounts cannot log in.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(creds.Email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if usr.IsDeleted() {
		return User{}, ErrAccountDeleted
	}
	return usr, nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.checkUniqueness(ctx, nu.Email); err != nil {
		return User{}, err
	}
	usr := User{
		Email:     nu.Email,
		Role:      nu.Role,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (User, error) {
	if err := svc.checkUniqueness(ctx, ns.Email); err != nil {
		return User{}, err
	}
	pwd := ns.Password
	if pwd == "" {
		pwd = DefaultStudentPassword
	}
	usr := User{
		Email:     ns.Email,
		Role:      RoleStudent,
		FirstName: ns.FirstName,
		LastName:  ns.LastName,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateStudent(ctx, usr, ns.ClassID)
}

func (svc *Service) QueryStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// DeleteStudent soft-deletes a student: grades and enrollments are kept.
func (svc *Service) DeleteStudent(ctx context.Context, id int) error {
	return svc.repo.SetRole(ctx, id, RoleDeleted)
}

func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.UpdatePassword(ctx, usr.ID, usr.PasswordHash)
}
