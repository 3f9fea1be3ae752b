package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
)

// PlaceholderSubjectID is the subject every grade and schedule entry is created with:
// the subject typed by the teacher is not mapped to an identifier.
const PlaceholderSubjectID = 1

// DateLayout is the wire format of Grade dates.
const DateLayout = "2006-01-02"

type Subject struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Class is a teacher-owned roster container.
type Class struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	TeacherID        int    `json:"teacherId"`
	TeacherFirstName string `json:"teacherFirstName"`
	TeacherLastName  string `json:"teacherLastName"`
	StudentCount     int    `json:"studentCount"`
}

type NewClass struct {
	Name      string `json:"name" validate:"notblank"`
	TeacherID int    `json:"teacherId" validate:"required"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// Grade is a single mark. StudentName is only set by roster-wide aggregation.
type Grade struct {
	ID          int    `json:"id" db:"id"`
	Grade       int    `json:"grade" db:"grade"`
	Date        string `json:"date" db:"date"`
	Comment     string `json:"comment" db:"comment"`
	SubjectName string `json:"subjectName" db:"subject_name"`
	StudentName string `json:"studentName,omitempty" db:"-"`
}

// GradeReport is a student's grades, most recent first, with their average.
type GradeReport struct {
	Grades       []Grade `json:"grades"`
	AverageGrade float64 `json:"averageGrade"`
}

type NewGrade struct {
	StudentID int    `json:"studentId" validate:"required"`
	SubjectID int    `json:"subjectId" validate:"required"`
	Grade     int    `json:"grade" validate:"min=1,max=5"`
	Comment   string `json:"comment"`
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (ng *NewGrade) Validate(validate *validator.Validate, now time.Time) error {
	ng.Comment = core.CleanString(ng.Comment)
	if ng.Date == "" {
		ng.Date = now.Format(DateLayout)
	}
	return validate.Struct(ng)
}

// ScheduleItem is one lesson of a class's weekly timetable.
type ScheduleItem struct {
	ID          int    `json:"id" db:"id"`
	DayOfWeek   int    `json:"dayOfWeek" db:"day_of_week"`
	TimeStart   string `json:"timeStart" db:"time_start"`
	TimeEnd     string `json:"timeEnd" db:"time_end"`
	Room        string `json:"room" db:"room"`
	SubjectName string `json:"subjectName" db:"subject_name"`
}

type NewScheduleItem struct {
	ClassID   int    `json:"classId" validate:"required"`
	SubjectID int    `json:"subjectId" validate:"required"`
	DayOfWeek int    `json:"dayOfWeek" validate:"dayofweek"`
	TimeStart string `json:"timeStart" validate:"clocktime"`
	TimeEnd   string `json:"timeEnd" validate:"clocktime"`
	Room      string `json:"room"`
}

func (ns *NewScheduleItem) Validate(validate *validator.Validate) error {
	ns.Room = core.CleanString(ns.Room)
	if err := validate.Struct(ns); err != nil {
		return err
	}
	ns.TimeStart, _ = core.NormalizeClock(ns.TimeStart)
	ns.TimeEnd, _ = core.NormalizeClock(ns.TimeEnd)
	if ns.TimeEnd <= ns.TimeStart {
		return core.NewValidationError(nil, core.FieldError{Field: "timeEnd", Error: "timeEnd must be after timeStart"})
	}
	return nil
}

// Created is the acknowledgement returned by create endpoints.
type Created struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

// Message is the acknowledgement returned by delete endpoints.
type Message struct {
	Message string `json:"message"`
}
