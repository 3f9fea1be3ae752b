// Package dashboard holds the view state of the gradebook client: which view to render,
// the loaded lists, and the handlers that load and mutate them.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/client"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/client/session"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

// DefaultFanOutLimit bounds the concurrent grade requests of LoadAllGrades.
const DefaultFanOutLimit = 4

var (
	nowFunc = time.Now // mockable

	// errors
	ErrBusy              = errors.New("a login is already in progress")
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrTeacherOnly       = errors.New("only teachers can do this")
	ErrStale             = errors.New("session changed while loading")
	ErrNoStudentSelected = errors.New("no student selected")
	ErrNoClassSelected   = errors.New("no class selected")
)

// View is the rendering chosen from the session.
type View int

const (
	ViewLogin View = iota
	ViewTeacher
	ViewStudent
)

func (v View) String() string {
	switch v {
	case ViewTeacher:
		return "teacher"
	case ViewStudent:
		return "student"
	default:
		return "login"
	}
}

type (
	// API is the subset of the gradebook endpoints the dashboard calls. *client.Client implements it.
	API interface {
		Login(ctx context.Context, email, password string) (user.User, error)
		Students(ctx context.Context, classID null.Int) ([]user.Student, error)
		AddStudent(ctx context.Context, ns user.NewStudent) (school.Created, error)
		DeleteStudent(ctx context.Context, id int) error
		Grades(ctx context.Context, studentID int) (school.GradeReport, error)
		AddGrade(ctx context.Context, ng school.NewGrade) (school.Created, error)
		Schedule(ctx context.Context, classID int) ([]school.ScheduleItem, error)
		AddScheduleItem(ctx context.Context, ns school.NewScheduleItem) (school.Created, error)
		Classes(ctx context.Context, teacherID null.Int) ([]school.Class, error)
		AddClass(ctx context.Context, nc school.NewClass) (school.Created, error)
		DeleteClass(ctx context.Context, id int) error
	}

	Deps struct {
		API         API
		Session     *session.Manager
		Notifier    Notifier
		Messages    *Messages
		Logger      core.Logger
		FanOutLimit int
	}

	// State is a copy of everything the views render.
	State struct {
		User     user.User
		LoggedIn bool
		Loading  bool

		Students     []user.Student
		Classes      []school.Class
		Grades       []school.Grade
		AverageGrade float64
		Schedule     []school.ScheduleItem

		SelectedStudentID null.Int
		SelectedClassID   null.Int
	}

	Dashboard struct {
		mu    sync.Mutex
		state State

		api         API
		session     *session.Manager
		notifier    Notifier
		msgs        *Messages
		logger      core.Logger
		fanOutLimit int
	}
)

func (s State) View() View {
	switch {
	case !s.LoggedIn:
		return ViewLogin
	case s.User.IsTeacher():
		return ViewTeacher
	default:
		return ViewStudent
	}
}

func New(deps Deps) *Dashboard {
	limit := deps.FanOutLimit
	if limit <= 0 {
		limit = DefaultFanOutLimit
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}
	return &Dashboard{
		api:         deps.API,
		session:     deps.Session,
		notifier:    notifier,
		msgs:        deps.Messages,
		logger:      deps.Logger,
		fanOutLimit: limit,
	}
}

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.state
	s.Students = append([]user.Student(nil), d.state.Students...)
	s.Classes = append([]school.Class(nil), d.state.Classes...)
	s.Grades = append([]school.Grade(nil), d.state.Grades...)
	s.Schedule = append([]school.ScheduleItem(nil), d.state.Schedule...)
	return s
}

func (d *Dashboard) View() View {
	return d.Snapshot().View()
}

// update applies fn to the state unless the session moved past gen.
func (d *Dashboard) update(gen session.Generation, fn func(s *State)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.session.IsCurrent(gen) {
		return ErrStale
	}
	fn(&d.state)
	return nil
}

// reset clears every list and selection and adopts usr.
func (d *Dashboard) reset(usr user.User, loggedIn bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	loading := d.state.Loading
	d.state = State{User: usr, LoggedIn: loggedIn, Loading: loading}
}

// Restore adopts the stored session, if any, and runs the initial loads of its role.
func (d *Dashboard) Restore() (bool, error) {
	ok, err := d.Resume()
	if err != nil || !ok {
		return false, err
	}
	d.initialLoad()
	return true, nil
}

// Resume adopts the stored session, if any, leaving every list empty.
func (d *Dashboard) Resume() (bool, error) {
	usr, ok, err := d.session.Restore()
	if err != nil || !ok {
		return false, err
	}
	d.reset(usr, true)
	return true, nil
}

// Login authenticates, adopts the user as the session and runs the initial loads of its role.
// A second call while one is running fails with ErrBusy.
func (d *Dashboard) Login(ctx context.Context, email, password string) error {
	d.mu.Lock()
	if d.state.Loading {
		d.mu.Unlock()
		return ErrBusy
	}
	d.state.Loading = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.state.Loading = false
		d.mu.Unlock()
	}()

	usr, err := d.api.Login(ctx, email, password)
	if err != nil {
		if apiErr, ok := client.IsAPIError(err); ok {
			d.notifyError(MsgLoginFailed, apiErr.Message)
		} else {
			d.notifyError(MsgError, d.msgs.Text(MsgLoginUnreachable))
		}
		return errors.Wrap(err, "logging in")
	}

	if _, err = d.session.Login(usr); err != nil {
		// the session still works for this run
		d.logger.Warn("could not persist session", err, usr)
	}
	d.reset(usr, true)
	d.notify(MsgLoginSuccess, d.msgs.Text(MsgLoginWelcome, usr.FirstName))

	d.initialLoad()
	return nil
}

// Logout clears the session, its storage entry and every loaded list.
func (d *Dashboard) Logout() error {
	err := d.session.Logout()
	d.reset(user.User{}, false)
	return err
}

func (d *Dashboard) initialLoad() {
	t := d.session.Ticket()
	if !t.LoggedIn {
		return
	}
	if t.User.IsTeacher() {
		_ = d.LoadStudents()
		_ = d.LoadClasses()
		return
	}
	_ = d.LoadStudentData(t.User.ID)
}

func (d *Dashboard) teacherTicket() (session.Ticket, error) {
	t := d.session.Ticket()
	if !t.LoggedIn {
		return t, ErrNotLoggedIn
	}
	if !t.User.IsTeacher() {
		return t, ErrTeacherOnly
	}
	return t, nil
}

func (d *Dashboard) notify(titleKey, desc string) {
	d.notifier.Notify(Notice{Title: d.msgs.Text(titleKey), Description: desc})
}

func (d *Dashboard) notifyError(titleKey, desc string) {
	d.notifier.Notify(Notice{Title: d.msgs.Text(titleKey), Description: desc, Destructive: true})
}
