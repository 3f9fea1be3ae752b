package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	. "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/apps/api/echo"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
	logsvc "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/services/logger"
	inmemdb "github.com/pr-poehali-dev/elektronnyy-zhurnal-1/storage/database/inmem"
)

type testApp struct {
	Server
	usrSvc    *user.Service
	schoolSvc *school.Service
	registry  *prometheus.Registry
}

func setup(t *testing.T, opts ...func(*ServerDeps)) *testApp {
	t.Helper()

	conf := &core.Config{
		Env:      "TEST",
		AppName:  "Электронный журнал",
		TestMode: true,
		Server:   core.ServerConfig{DisableReqLogs: true},
	}
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)

	db, err := inmemdb.Open()
	require.NoError(t, err)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	app := &testApp{
		usrSvc:    user.NewService(inmemdb.NewUserRepository(db)),
		schoolSvc: school.NewService(inmemdb.NewSchoolRepository(db), 0),
		registry:  prometheus.NewRegistry(),
	}
	deps := ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    app.usrSvc,
		SchoolSvc:  app.schoolSvc,
		Validate:   validate,
		Translator: translator,
		Registerer: app.registry,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	app.Server = NewServer(deps)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

func (app *testApp) createTeacher(t *testing.T, first, last, email string) user.User {
	t.Helper()
	usr, err := app.usrSvc.Create(context.Background(), user.NewUser{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  "secret",
		Role:      user.RoleTeacher,
	})
	require.NoError(t, err)
	return usr
}

func (app *testApp) createStudent(t *testing.T, first, last, email string, classID ...int) user.User {
	t.Helper()
	ns := user.NewStudent{FirstName: first, LastName: last, Email: email}
	if len(classID) > 0 {
		ns.ClassID.SetValid(classID[0])
	}
	usr, err := app.usrSvc.CreateStudent(context.Background(), ns)
	require.NoError(t, err)
	return usr
}

func (app *testApp) createClass(t *testing.T, name string, teacherID int) int {
	t.Helper()
	id, err := app.schoolSvc.CreateClass(context.Background(), school.NewClass{Name: name, TeacherID: teacherID})
	require.NoError(t, err)
	return id
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "code")
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func itoa(i int) string { return strconv.Itoa(i) }

func nullInt(i int) null.Int { return null.IntFrom(i) }
