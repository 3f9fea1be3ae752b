package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) toClass(rec *classRecord) school.Class {
	cls := school.Class{
		ID:           rec.id,
		Name:         rec.name,
		TeacherID:    rec.teacherID,
		StudentCount: len(repo.db.enrollment[rec.id]),
	}
	if teacher, ok := repo.db.users[rec.teacherID]; ok {
		cls.TeacherFirstName = teacher.FirstName
		cls.TeacherLastName = teacher.LastName
	}
	return cls
}

func (repo *schoolRepository) QueryClasses(_ context.Context, teacherID null.Int) ([]school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]school.Class, 0, len(repo.db.classes))
	for _, rec := range repo.db.classes {
		if teacherID.Valid && rec.teacherID != teacherID.Int {
			continue
		}
		classes = append(classes, repo.toClass(rec))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (repo *schoolRepository) GetClass(_ context.Context, id int) (school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.classes[id]; ok {
		return repo.toClass(rec), nil
	}
	return school.Class{}, school.ErrClassNotFound
}

func (repo *schoolRepository) CreateClass(_ context.Context, nc school.NewClass) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	id := repo.db.nextID("classes")
	repo.db.classes[id] = &classRecord{id: id, name: nc.Name, teacherID: nc.TeacherID}
	return id, nil
}

func (repo *schoolRepository) DeleteClass(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.classes, id)
	delete(repo.db.enrollment, id)
	for sid, item := range repo.db.schedule {
		if item.ClassID == id {
			delete(repo.db.schedule, sid)
		}
	}
	return nil
}

func (repo *schoolRepository) GetSubject(_ context.Context, id int) (school.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if subject, ok := repo.db.subjects[id]; ok {
		return subject, nil
	}
	return school.Subject{}, school.ErrSubjectNotFound
}

func (repo *schoolRepository) StudentExists(_ context.Context, id int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	usr, ok := repo.db.users[id]
	return ok && usr.IsStudent(), nil
}

func (repo *schoolRepository) QueryGrades(_ context.Context, studentID int) ([]school.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grades := make([]school.Grade, 0)
	for _, rec := range repo.db.grades {
		if rec.StudentID != studentID {
			continue
		}
		grades = append(grades, school.Grade{
			ID:          rec.id,
			Grade:       rec.Grade,
			Date:        rec.Date,
			Comment:     rec.Comment,
			SubjectName: repo.db.subjects[rec.SubjectID].Name,
		})
	}
	// most recent first; dates are YYYY-MM-DD so they sort lexically
	sort.Slice(grades, func(i, j int) bool {
		if grades[i].Date != grades[j].Date {
			return grades[i].Date > grades[j].Date
		}
		return grades[i].ID > grades[j].ID
	})
	return grades, nil
}

func (repo *schoolRepository) CreateGrade(_ context.Context, ng school.NewGrade) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	id := repo.db.nextID("grades")
	repo.db.grades[id] = &gradeRecord{NewGrade: ng, id: id}
	return id, nil
}

func (repo *schoolRepository) QuerySchedule(_ context.Context, classID int) ([]school.ScheduleItem, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	items := make([]school.ScheduleItem, 0)
	for _, rec := range repo.db.schedule {
		if rec.ClassID != classID {
			continue
		}
		items = append(items, school.ScheduleItem{
			ID:          rec.id,
			DayOfWeek:   rec.DayOfWeek,
			TimeStart:   rec.TimeStart,
			TimeEnd:     rec.TimeEnd,
			Room:        rec.Room,
			SubjectName: repo.db.subjects[rec.SubjectID].Name,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.TimeStart != b.TimeStart {
			return a.TimeStart < b.TimeStart
		}
		return a.ID < b.ID
	})
	return items, nil
}

func (repo *schoolRepository) CreateScheduleItem(_ context.Context, ns school.NewScheduleItem) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	id := repo.db.nextID("schedule")
	repo.db.schedule[id] = &scheduleRecord{NewScheduleItem: ns, id: id}
	return id, nil
}
