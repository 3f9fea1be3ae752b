package dashboard

import (
	"github.com/pkg/errors"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/client/session"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

// Mutations notify the outcome, success or failure, and reload the affected list on success.
// A failure is never rolled back.

// NewGradeInput is the grade form. Subject is shown to the teacher but every grade is
// recorded under school.PlaceholderSubjectID.
type NewGradeInput struct {
	Grade   int
	Comment string
	Subject string
}

// NewScheduleInput is the schedule form. Subject is not mapped to an identifier either.
type NewScheduleInput struct {
	DayOfWeek int
	TimeStart string
	TimeEnd   string
	Room      string
	Subject   string
}

// DefaultScheduleInput is the initial state of the schedule form: Monday, first lesson.
func DefaultScheduleInput() NewScheduleInput {
	return NewScheduleInput{DayOfWeek: 1, TimeStart: "09:00", TimeEnd: "09:45"}
}

type mutation struct {
	op         string
	title      string
	desc       string
	failedDesc string
}

var (
	addClassMutation      = mutation{"creating class", MsgClassCreated, MsgClassCreatedDesc, MsgClassCreateFailed}
	deleteClassMutation   = mutation{"deleting class", MsgClassDeleted, MsgClassDeletedDesc, MsgClassDeleteFailed}
	addStudentMutation    = mutation{"creating student", MsgStudentCreated, MsgStudentCreatedDesc, MsgStudentCreateFailed}
	deleteStudentMutation = mutation{"deleting student", MsgStudentDeleted, MsgStudentDeletedDesc, MsgStudentDeleteFailed}
	addGradeMutation      = mutation{"creating grade", MsgGradeCreated, MsgGradeCreatedDesc, MsgGradeCreateFailed}
	addScheduleMutation   = mutation{"creating schedule item", MsgScheduleCreated, MsgScheduleCreatedDesc, MsgScheduleCreateFailed}
)

// finish notifies the outcome of m and, on success, runs reload.
func (d *Dashboard) finish(t session.Ticket, m mutation, err error, reload func() error) error {
	if err != nil {
		if !d.session.IsCurrent(t.Gen) {
			return ErrStale
		}
		err = errors.Wrap(err, m.op)
		d.logger.Error(err.Error(), err, t.User)
		d.notifyError(MsgError, d.msgs.Text(m.failedDesc))
		return err
	}
	d.notify(m.title, d.msgs.Text(m.desc))
	if reload == nil {
		return nil
	}
	return reload()
}

// AddClass creates a class owned by the logged-in teacher.
func (d *Dashboard) AddClass(name string) error {
	t, err := d.teacherTicket()
	if err != nil {
		return err
	}
	_, err = d.api.AddClass(t.Ctx, school.NewClass{Name: name, TeacherID: t.User.ID})
	return d.finish(t, addClassMutation, err, d.LoadClasses)
}

func (d *Dashboard) DeleteClass(id int) error {
	t, err := d.teacherTicket()
	if err != nil {
		return err
	}
	err = d.api.DeleteClass(t.Ctx, id)
	return d.finish(t, deleteClassMutation, err, d.LoadClasses)
}

// AddStudent registers a student; an empty password becomes user.DefaultStudentPassword.
func (d *Dashboard) AddStudent(ns user.NewStudent) error {
	t, err := d.teacherTicket()
	if err != nil {
		return err
	}
	if ns.Password == "" {
		ns.Password = user.DefaultStudentPassword
	}
	_, err = d.api.AddStudent(t.Ctx, ns)
	return d.finish(t, addStudentMutation, err, d.LoadStudents)
}

func (d *Dashboard) DeleteStudent(id int) error {
	t, err := d.teacherTicket()
	if err != nil {
		return err
	}
	err = d.api.DeleteStudent(t.Ctx, id)
	return d.finish(t, deleteStudentMutation, err, d.LoadStudents)
}

// AddGrade grades the selected student today and reloads its report.
func (d *Dashboard) AddGrade(in NewGradeInput) error {
	t, err := d.teacherTicket()
	if err != nil {
		return err
	}
	selected := d.Snapshot().SelectedStudentID
	if !selected.Valid {
		return ErrNoStudentSelected
	}

	_, err = d.api.AddGrade(t.Ctx, school.NewGrade{
		StudentID: selected.Int,
		SubjectID: school.PlaceholderSubjectID,
		Grade:     in.Grade,
		Comment:   in.Comment,
		Date:      nowFunc().Format(school.DateLayout),
	})
	return d.finish(t, addGradeMutation, err, func() error { return d.LoadStudentData(selected.Int) })
}

// AddScheduleItem adds a lesson to the selected class. The schedule is not reloaded.
func (d *Dashboard) AddScheduleItem(in NewScheduleInput) error {
	t, err := d.teacherTicket()
	if err != nil {
		return err
	}
	selected := d.Snapshot().SelectedClassID
	if !selected.Valid {
		return ErrNoClassSelected
	}

	_, err = d.api.AddScheduleItem(t.Ctx, school.NewScheduleItem{
		ClassID:   selected.Int,
		SubjectID: school.PlaceholderSubjectID,
		DayOfWeek: in.DayOfWeek,
		TimeStart: in.TimeStart,
		TimeEnd:   in.TimeEnd,
		Room:      in.Room,
	})
	return d.finish(t, addScheduleMutation, err, nil)
}
