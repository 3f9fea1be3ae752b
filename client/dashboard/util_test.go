package dashboard

import (
	"context"
	"io"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/client/session"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
	logsvc "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/services/logger"
)

var (
	teacher = user.User{ID: 1, Email: "teacher@school.ru", Role: user.RoleTeacher, FirstName: "Мария", LastName: "Иванова"}
	pupil   = user.User{ID: 2, Email: "ivan@school.ru", Role: user.RoleStudent, FirstName: "Ivan", LastName: "Petrov"}
)

// fakeAPI serves canned data and records what it was asked.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	loginUser user.User
	loginErr  error
	loginGate chan struct{}

	students     []user.Student
	studentsGate chan struct{}
	classes      []school.Class
	reports      map[int]school.GradeReport
	gradesErr    map[int]error
	gradesDelay  time.Duration
	schedule     []school.ScheduleItem
	mutationErr  error

	inFlight, maxInFlight int32

	newClasses  []school.NewClass
	newStudents []user.NewStudent
	newGrades   []school.NewGrade
	newItems    []school.NewScheduleItem
}

var _ API = (*fakeAPI)(nil) // interface compliance check

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (user.User, error) {
	f.record("login")
	if f.loginGate != nil {
		<-f.loginGate
	}
	return f.loginUser, f.loginErr
}

func (f *fakeAPI) Students(_ context.Context, _ null.Int) ([]user.Student, error) {
	f.record("students")
	if f.studentsGate != nil {
		<-f.studentsGate
	}
	return append([]user.Student(nil), f.students...), nil
}

func (f *fakeAPI) AddStudent(_ context.Context, ns user.NewStudent) (school.Created, error) {
	f.record("addStudent")
	f.mu.Lock()
	f.newStudents = append(f.newStudents, ns)
	f.mu.Unlock()
	return school.Created{ID: 10}, f.mutationErr
}

func (f *fakeAPI) DeleteStudent(_ context.Context, _ int) error {
	f.record("deleteStudent")
	return f.mutationErr
}

func (f *fakeAPI) Grades(_ context.Context, studentID int) (school.GradeReport, error) {
	f.record("grades")
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&f.maxInFlight)
		if n <= peak || atomic.CompareAndSwapInt32(&f.maxInFlight, peak, n) {
			break
		}
	}
	time.Sleep(f.gradesDelay)

	if err := f.gradesErr[studentID]; err != nil {
		return school.GradeReport{}, err
	}
	return f.reports[studentID], nil
}

func (f *fakeAPI) AddGrade(_ context.Context, ng school.NewGrade) (school.Created, error) {
	f.record("addGrade")
	f.mu.Lock()
	f.newGrades = append(f.newGrades, ng)
	f.mu.Unlock()
	return school.Created{ID: 20}, f.mutationErr
}

func (f *fakeAPI) Schedule(_ context.Context, _ int) ([]school.ScheduleItem, error) {
	f.record("schedule")
	return f.schedule, nil
}

func (f *fakeAPI) AddScheduleItem(_ context.Context, ns school.NewScheduleItem) (school.Created, error) {
	f.record("addScheduleItem")
	f.mu.Lock()
	f.newItems = append(f.newItems, ns)
	f.mu.Unlock()
	return school.Created{ID: 30}, f.mutationErr
}

func (f *fakeAPI) Classes(_ context.Context, _ null.Int) ([]school.Class, error) {
	f.record("classes")
	return f.classes, nil
}

func (f *fakeAPI) AddClass(_ context.Context, nc school.NewClass) (school.Created, error) {
	f.record("addClass")
	f.mu.Lock()
	f.newClasses = append(f.newClasses, nc)
	f.mu.Unlock()
	return school.Created{ID: 40}, f.mutationErr
}

func (f *fakeAPI) DeleteClass(_ context.Context, _ int) error {
	f.record("deleteClass")
	return f.mutationErr
}

// noticeLog collects notices.
type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *noticeLog) Notify(n Notice) {
	l.mu.Lock()
	l.notices = append(l.notices, n)
	l.mu.Unlock()
}

func (l *noticeLog) All() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notice(nil), l.notices...)
}

func (l *noticeLog) Last() Notice {
	all := l.All()
	if len(all) == 0 {
		return Notice{}
	}
	return all[len(all)-1]
}

func testLogger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), &core.Config{Env: "TEST", TestMode: true})
}

type testDashboard struct {
	*Dashboard
	api     *fakeAPI
	storage *session.MemoryStorage
	session *session.Manager
	notices *noticeLog
}

func setup(t *testing.T, api *fakeAPI, fanOut int) *testDashboard {
	t.Helper()

	msgs, err := NewMessages("ru")
	require.NoError(t, err)

	logger := testLogger()
	storage := session.NewMemoryStorage()
	mgr := session.NewManager(storage, logger)
	notices := &noticeLog{}

	return &testDashboard{
		Dashboard: New(Deps{
			API:         api,
			Session:     mgr,
			Notifier:    notices,
			Messages:    msgs,
			Logger:      logger,
			FanOutLimit: fanOut,
		}),
		api:     api,
		storage: storage,
		session: mgr,
		notices: notices,
	}
}

// loggedIn returns a dashboard whose session is usr, without going through Login.
func loggedIn(t *testing.T, api *fakeAPI, usr user.User) *testDashboard {
	t.Helper()
	td := setup(t, api, 0)
	_, err := td.session.Login(usr)
	require.NoError(t, err)
	td.reset(usr, true)
	return td
}

func ctx() context.Context { return context.Background() }

func itoa(i int) string { return strconv.Itoa(i) }
