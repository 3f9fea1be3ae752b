package dashboard

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/sync/errgroup"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/client/session"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

// Loaders fetch one list each and replace it in the state. Failures are logged and returned
// without a notice; the previous list is kept. Results that arrive after the session changed
// are discarded with ErrStale.

// LoadStudents replaces the roster with every student.
func (d *Dashboard) LoadStudents() error {
	t, err := d.teacherTicket()
	if err != nil {
		return err
	}
	students, err := d.api.Students(t.Ctx, null.Int{})
	if err != nil {
		return d.loadFailed(t, "loading students", err)
	}
	return d.update(t.Gen, func(s *State) { s.Students = students })
}

// LoadClasses replaces the class list with the classes of the logged-in teacher.
func (d *Dashboard) LoadClasses() error {
	t, err := d.teacherTicket()
	if err != nil {
		return err
	}
	classes, err := d.api.Classes(t.Ctx, null.IntFrom(t.User.ID))
	if err != nil {
		return d.loadFailed(t, "loading classes", err)
	}
	return d.update(t.Gen, func(s *State) { s.Classes = classes })
}

// LoadStudentData replaces the grade list and average with the report of studentID.
func (d *Dashboard) LoadStudentData(studentID int) error {
	t := d.session.Ticket()
	if !t.LoggedIn {
		return ErrNotLoggedIn
	}
	report, err := d.api.Grades(t.Ctx, studentID)
	if err != nil {
		return d.loadFailed(t, fmt.Sprintf("loading grades of student %d", studentID), err)
	}
	return d.update(t.Gen, func(s *State) {
		s.Grades = report.Grades
		s.AverageGrade = report.AverageGrade
	})
}

// LoadSchedule replaces the schedule with the timetable of classID.
func (d *Dashboard) LoadSchedule(classID int) error {
	t := d.session.Ticket()
	if !t.LoggedIn {
		return ErrNotLoggedIn
	}
	items, err := d.api.Schedule(t.Ctx, classID)
	if err != nil {
		return d.loadFailed(t, fmt.Sprintf("loading schedule of class %d", classID), err)
	}
	return d.update(t.Gen, func(s *State) { s.Schedule = items })
}

// SelectStudent marks studentID as the target of grade entry and loads its report.
func (d *Dashboard) SelectStudent(studentID int) error {
	if _, err := d.teacherTicket(); err != nil {
		return err
	}
	d.mu.Lock()
	d.state.SelectedStudentID = null.IntFrom(studentID)
	d.mu.Unlock()
	return d.LoadStudentData(studentID)
}

// SelectClass marks classID as the target of schedule entry and loads its timetable.
func (d *Dashboard) SelectClass(classID int) error {
	if _, err := d.teacherTicket(); err != nil {
		return err
	}
	d.mu.Lock()
	d.state.SelectedClassID = null.IntFrom(classID)
	d.mu.Unlock()
	return d.LoadSchedule(classID)
}

// LoadAllGrades replaces the grade list with the grades of every loaded student, each labelled
// with its student's name. Requests run concurrently, bounded by the fan-out limit, and results
// are merged in roster order. A student whose request fails is skipped.
func (d *Dashboard) LoadAllGrades() error {
	t, err := d.teacherTicket()
	if err != nil {
		return err
	}
	students := d.Snapshot().Students

	reports := make([][]school.Grade, len(students))
	g, ctx := errgroup.WithContext(t.Ctx)
	g.SetLimit(d.fanOutLimit)
	for i, st := range students {
		i, st := i, st
		g.Go(func() error {
			report, err := d.api.Grades(ctx, st.ID)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				d.logger.Error(fmt.Sprintf("loading grades of student %d", st.ID), err, t.User)
				return nil
			}
			reports[i] = labelGrades(report.Grades, st)
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		if !d.session.IsCurrent(t.Gen) {
			return ErrStale
		}
		return errors.Wrap(err, "loading all grades")
	}

	all := make([]school.Grade, 0)
	for _, grades := range reports {
		all = append(all, grades...)
	}
	return d.update(t.Gen, func(s *State) {
		s.Grades = all
		s.AverageGrade = school.Average(all)
	})
}

func labelGrades(grades []school.Grade, st user.Student) []school.Grade {
	name := st.FullName()
	labelled := make([]school.Grade, len(grades))
	for i, g := range grades {
		g.StudentName = name
		labelled[i] = g
	}
	return labelled
}

func (d *Dashboard) loadFailed(t session.Ticket, op string, err error) error {
	if !d.session.IsCurrent(t.Gen) {
		return ErrStale
	}
	err = errors.Wrap(err, op)
	d.logger.Error(err.Error(), err, t.User)
	return err
}
