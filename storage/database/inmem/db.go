package inmemdb

import (
	"sync"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

type (
	// DB is an in-memory stand-in for the postgres schema.
	// A single lock guards every table since reads join across them.
	DB struct {
		sync.RWMutex

		users      map[int]*user.User
		subjects   map[int]school.Subject
		classes    map[int]*classRecord
		enrollment map[int]map[int]bool // {classID: {studentID}}
		grades     map[int]*gradeRecord
		schedule   map[int]*scheduleRecord

		pk map[string]int
	}

	classRecord struct {
		id        int
		name      string
		teacherID int
	}

	gradeRecord struct {
		school.NewGrade
		id int
	}

	scheduleRecord struct {
		school.NewScheduleItem
		id int
	}
)

// DefaultSubjects mirrors the seeded subjects migration.
var DefaultSubjects = []school.Subject{
	{ID: 1, Name: "Математика"},
	{ID: 2, Name: "Русский язык"},
	{ID: 3, Name: "Литература"},
	{ID: 4, Name: "Физика"},
	{ID: 5, Name: "История"},
	{ID: 6, Name: "Английский язык"},
}

func Open() (*DB, error) {
	db := &DB{
		users:      make(map[int]*user.User),
		subjects:   make(map[int]school.Subject),
		classes:    make(map[int]*classRecord),
		enrollment: make(map[int]map[int]bool),
		grades:     make(map[int]*gradeRecord),
		schedule:   make(map[int]*scheduleRecord),
		pk:         make(map[string]int),
	}
	for _, s := range DefaultSubjects {
		db.subjects[s.ID] = s
	}
	return db, nil
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int {
	db.pk[table]++
	return db.pk[table]
}
