package school

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrClassNotFound   = errors.New("class not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrStudentNotFound = errors.New("student not found")
)

type (
	Repository interface {
		// QueryClasses lists classes with their teacher and student count; a null teacherID lists all of them.
		QueryClasses(ctx context.Context, teacherID null.Int) ([]Class, error)
		GetClass(ctx context.Context, id int) (Class, error)
		CreateClass(ctx context.Context, nc NewClass) (int, error)
		// DeleteClass removes a class along with its enrollments and timetable.
		DeleteClass(ctx context.Context, id int) error

		GetSubject(ctx context.Context, id int) (Subject, error)
		// StudentExists reports whether id belongs to a user with the student role.
		StudentExists(ctx context.Context, id int) (bool, error)

		// QueryGrades lists a student's grades, most recent first.
		QueryGrades(ctx context.Context, studentID int) ([]Grade, error)
		CreateGrade(ctx context.Context, ng NewGrade) (int, error)

		// QuerySchedule lists a class's lessons ordered by day of week then start time.
		QuerySchedule(ctx context.Context, classID int) ([]ScheduleItem, error)
		CreateScheduleItem(ctx context.Context, ns NewScheduleItem) (int, error)
	}

	Service struct {
		repo    Repository
		reports *cache.Cache // {studentID: GradeReport}
	}
)

// NewService returns a school Service. Grade reports are cached for reportTTL; a zero TTL disables caching.
func NewService(repo Repository, reportTTL time.Duration) *Service {
	svc := &Service{repo: repo}
	if reportTTL > 0 {
		svc.reports = cache.New(reportTTL, 2*reportTTL)
	}
	return svc
}

func (svc *Service) QueryClasses(ctx context.Context, teacherID null.Int) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, teacherID)
}

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (int, error) {
	return svc.repo.CreateClass(ctx, nc)
}

func (svc *Service) DeleteClass(ctx context.Context, id int) error {
	return svc.repo.DeleteClass(ctx, id)
}

// GradeReport returns the grades of a student with their average rounded to 2 decimals (0 without grades).
func (svc *Service) GradeReport(ctx context.Context, studentID int) (GradeReport, error) {
	key := strconv.Itoa(studentID)
	if svc.reports != nil {
		if report, ok := svc.reports.Get(key); ok {
			return report.(GradeReport), nil
		}
	}

	grades, err := svc.repo.QueryGrades(ctx, studentID)
	if err != nil {
		return GradeReport{}, errors.Wrap(err, "querying grades")
	}
	if grades == nil {
		grades = []Grade{}
	}
	report := GradeReport{Grades: grades, AverageGrade: Average(grades)}

	if svc.reports != nil {
		svc.reports.Set(key, report, cache.DefaultExpiration)
	}
	return report, nil
}

func (svc *Service) CreateGrade(ctx context.Context, ng NewGrade) (int, error) {
	if err := svc.checkSubject(ctx, ng.SubjectID); err != nil {
		return 0, err
	}
	ok, err := svc.repo.StudentExists(ctx, ng.StudentID)
	if err != nil {
		return 0, errors.Wrap(err, "finding student")
	}
	if !ok {
		return 0, core.NewValidationError(ErrStudentNotFound, core.FieldError{Field: "studentId", Error: ErrStudentNotFound.Error()})
	}
	id, err := svc.repo.CreateGrade(ctx, ng)
	if err != nil {
		return 0, err
	}
	if svc.reports != nil {
		svc.reports.Delete(strconv.Itoa(ng.StudentID))
	}
	return id, nil
}

func (svc *Service) QuerySchedule(ctx context.Context, classID int) ([]ScheduleItem, error) {
	return svc.repo.QuerySchedule(ctx, classID)
}

func (svc *Service) CreateScheduleItem(ctx context.Context, ns NewScheduleItem) (int, error) {
	if _, err := svc.repo.GetClass(ctx, ns.ClassID); err != nil {
		if errors.Cause(err) == ErrClassNotFound {
			return 0, core.NewValidationError(err, core.FieldError{Field: "classId", Error: err.Error()})
		}
		return 0, errors.Wrap(err, "finding class")
	}
	if err := svc.checkSubject(ctx, ns.SubjectID); err != nil {
		return 0, err
	}
	return svc.repo.CreateScheduleItem(ctx, ns)
}

func (svc *Service) checkSubject(ctx context.Context, id int) error {
	if _, err := svc.repo.GetSubject(ctx, id); err != nil {
		if errors.Cause(err) == ErrSubjectNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "subjectId", Error: err.Error()})
		}
		return errors.Wrap(err, "finding subject")
	}
	return nil
}

// Today returns the current date in DateLayout.
func Today() string {
	return nowFunc().Format(DateLayout)
}

// Now returns the current time.
func Now() time.Time {
	return nowFunc()
}

// Average is the mean grade rounded half away from zero to 2 decimals.
func Average(grades []Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum int
	for _, g := range grades {
		sum += g.Grade
	}
	avg := float64(sum) / float64(len(grades))
	return math.Round(avg*100) / 100
}
