package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	echoapi "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/apps/api/echo"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/client/dashboard"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
	logsvc "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/services/logger"
	inmemdb "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/storage/database/inmem"
)

// setup starts an in-memory API with one teacher and returns a config pointing at it.
func setup(t *testing.T) *core.Config {
	t.Helper()

	conf := &core.Config{
		Env:      "TEST",
		AppName:  "Электронный журнал",
		TestMode: true,
		Locale:   "ru",
		Server:   core.ServerConfig{DisableReqLogs: true},
	}
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)

	db, err := inmemdb.Open()
	require.NoError(t, err)
	usrSvc := user.NewService(inmemdb.NewUserRepository(db))
	_, err = usrSvc.Create(context.Background(), user.NewUser{
		FirstName: "Мария",
		LastName:  "Иванова",
		Email:     "teacher@school.ru",
		Password:  "teacher123",
		Role:      user.RoleTeacher,
	})
	require.NoError(t, err)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		SchoolSvc:  school.NewService(inmemdb.NewSchoolRepository(db), 0),
		Validate:   validate,
		Translator: translator,
		Registerer: prometheus.NewRegistry(),
	})
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })
	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)

	conf.Client = core.ClientConfig{
		BaseURL:        srv.URL,
		SessionFile:    filepath.Join(t.TempDir(), "storage.json"),
		RequestTimeout: 5 * time.Second,
		FanOutLimit:    2,
	}
	return conf
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    []string
	extra      interface{}
}

type extra struct {
	pwd string
}

func mockPassword(tt cliTest) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		if extra, ok := tt.extra.(extra); ok {
			return []byte(extra.pwd), nil
		}
		return nil, nil
	}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.ErrorIs(t, err, tt.wantErr)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), tt.wantErrStr)
		}
	default:
		assert.NoError(t, err)
	}
}

func run(conf *core.Config, args ...string) (string, error) {
	var out bytes.Buffer
	a := newApp(conf, &out, &out)
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func runCLITests(t *testing.T, conf *core.Config, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(tt)
			out, err := run(conf, tt.args...)
			checkErr(t, tt, err)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

func Test_gradebook(t *testing.T) {
	conf := setup(t)
	xlsxPath := filepath.Join(t.TempDir(), "grades.xlsx")

	runCLITests(t, conf, []cliTest{
		{name: "not logged in", args: []string{"whoami"}, wantErr: errNotLoggedIn},
		{name: "wrong password", args: []string{"login", "teacher@school.ru", "-p", "wrong"}, wantErrStr: "Неверный email или пароль", wantOut: []string{"Ошибка входа: Неверный email или пароль"}},
		{name: "teacher login", args: []string{"login", "teacher@school.ru"}, extra: extra{pwd: "teacher123"}, wantOut: []string{"Успешный вход: Добро пожаловать, Мария!"}},
		{name: "whoami", args: []string{"whoami"}, wantOut: []string{"Мария Иванова <teacher@school.ru> (teacher)"}},
		{name: "add class", args: []string{"classes", "add", "10А"}, wantOut: []string{"Класс создан: Новый класс успешно добавлен", "10А", "Мария Иванова"}},
		{name: "add student", args: []string{"students", "add", "--first", "Ivan", "--last", "Petrov", "--email", "ivan@school.ru", "--class", "1"}, wantOut: []string{"Ученик добавлен", "Ivan Petrov", "ivan@school.ru"}},
		{name: "add student missing flag", args: []string{"students", "add", "--first", "Anna"}, wantErrStr: `required flag(s) "email", "last" not set`},
		{name: "classes", args: []string{"classes"}, wantOut: []string{"10А", "1"}},
		{name: "teacher grades need a student", args: []string{"grades"}, wantErrStr: "must name the student"},
		{name: "add grade", args: []string{"grades", "add", "2", "5", "--comment", "Отлично"}, wantOut: []string{"Оценка добавлена", "Математика", "5 (good)", "Отлично", "Средний балл: 5.00"}},
		{name: "invalid grade", args: []string{"grades", "add", "2", "five"}, wantErrStr: `invalid grade "five"`},
		{name: "all grades", args: []string{"grades", "all"}, wantOut: []string{"УЧЕНИК", "Ivan Petrov", "Математика"}},
		{name: "all grades to xlsx", args: []string{"grades", "all", "--xlsx", xlsxPath}},
		{name: "add lesson", args: []string{"schedule", "add", "1", "--room", "101"}, wantOut: []string{"Расписание добавлено: Урок успешно добавлен в расписание"}},
		{name: "schedule", args: []string{"schedule", "1"}, wantOut: []string{"Понедельник", "09:00-09:45", "101"}},
		{name: "invalid id", args: []string{"classes", "delete", "abc"}, wantErrStr: `invalid id "abc"`},
		{name: "logout", args: []string{"logout"}},
		{name: "logged out", args: []string{"classes"}, wantErr: errNotLoggedIn},
		{name: "student login", args: []string{"login", "ivan@school.ru", "-p", user.DefaultStudentPassword}, wantOut: []string{"Добро пожаловать, Ivan!"}},
		{name: "student grades", args: []string{"grades"}, wantOut: []string{"Математика", "Средний балл: 5.00"}},
		{name: "student schedule", args: []string{"schedule", "1"}, wantOut: []string{"Понедельник"}},
		{name: "student cannot list classes", args: []string{"classes"}, wantErr: dashboard.ErrTeacherOnly},
	})

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Оценки")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Ivan Petrov", "Математика", "5"}, rows[1][:3])
}
