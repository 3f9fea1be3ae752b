package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

const uniqueViolation = "23505"

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email); err != nil {
		return errors.Wrap(err, "checking email")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) insert(ctx context.Context, q sqlx.QueryerContext, usr user.User) (user.User, error) {
	err := sqlx.GetContext(ctx, q, &usr.ID, `
		INSERT INTO users (email, password_hash, role, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		usr.Email, usr.PasswordHash, usr.Role, usr.FirstName, usr.LastName,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	return repo.insert(ctx, repo.db, usr)
}

func (repo *userRepository) CreateStudent(ctx context.Context, usr user.User, classID null.Int) (user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	usr.Role = user.RoleStudent
	if usr, err = repo.insert(ctx, tx, usr); err != nil {
		return user.User{}, err
	}
	if classID.Valid {
		if _, err = tx.ExecContext(ctx, `INSERT INTO class_students (class_id, student_id) VALUES ($1, $2)`, classID.Int, usr.ID); err != nil {
			return user.User{}, errors.Wrap(err, "enrolling student")
		}
	}
	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing transaction")
	}
	return usr, nil
}

const selectUser = `SELECT id, email, role, first_name, last_name, password_hash FROM users`

func (repo *userRepository) get(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, selectUser+" WHERE "+where, arg); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.get(ctx, "id = $1", id)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.get(ctx, "email = $1", email)
}

func (repo *userRepository) QueryStudents(ctx context.Context, filter user.StudentFilter) ([]user.Student, error) {
	students := make([]user.Student, 0)
	var err error
	if filter.ClassID.Valid {
		err = repo.db.SelectContext(ctx, &students, `
			SELECT u.id, u.email, u.first_name, u.last_name
			FROM users u
			JOIN class_students cs ON u.id = cs.student_id
			WHERE cs.class_id = $1 AND u.role = $2
			ORDER BY u.id`,
			filter.ClassID.Int, user.RoleStudent,
		)
	} else {
		err = repo.db.SelectContext(ctx, &students, `
			SELECT id, email, first_name, last_name
			FROM users
			WHERE role = $1
			ORDER BY id`,
			user.RoleStudent,
		)
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return students, nil
}

func (repo *userRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) UpdatePassword(ctx context.Context, id int, hash []byte) error {
	return repo.exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
}

func (repo *userRepository) SetRole(ctx context.Context, id int, role string) error {
	return repo.exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
}
