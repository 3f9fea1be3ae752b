package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) findByEmail(email string) *user.User {
	for _, usr := range repo.db.users {
		if usr.Email == email {
			return usr
		}
	}
	return nil
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.findByEmail(email) != nil {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) insert(usr user.User) (user.User, error) {
	if repo.findByEmail(usr.Email) != nil {
		return user.User{}, user.ErrEmailExists
	}
	usr.ID = repo.db.nextID("users")
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	return repo.insert(usr)
}

func (repo *userRepository) CreateStudent(_ context.Context, usr user.User, classID null.Int) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.Role = user.RoleStudent
	usr, err := repo.insert(usr)
	if err != nil {
		return user.User{}, err
	}
	if classID.Valid {
		if _, ok := repo.db.classes[classID.Int]; ok {
			if repo.db.enrollment[classID.Int] == nil {
				repo.db.enrollment[classID.Int] = make(map[int]bool)
			}
			repo.db.enrollment[classID.Int][usr.ID] = true
		}
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id int) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr := repo.findByEmail(email); usr != nil {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryStudents(_ context.Context, filter user.StudentFilter) ([]user.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]user.Student, 0)
	for _, usr := range repo.db.users {
		if !usr.IsStudent() {
			continue
		}
		if filter.ClassID.Valid && !repo.db.enrollment[filter.ClassID.Int][usr.ID] {
			continue
		}
		students = append(students, user.Student{
			ID:        usr.ID,
			Email:     usr.Email,
			FirstName: usr.FirstName,
			LastName:  usr.LastName,
		})
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *userRepository) UpdatePassword(_ context.Context, id int, hash []byte) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.PasswordHash = hash
	return nil
}

func (repo *userRepository) SetRole(_ context.Context, id int, role string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.Role = role
	return nil
}
