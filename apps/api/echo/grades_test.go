package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
)

func postGrade(t *testing.T, app *testApp, ng school.NewGrade) school.Created {
	t.Helper()
	req, rec := newRequest(http.MethodPost, "/grades", marchallObj(t, ng))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created school.Created
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Оценка добавлена", created.Message)
	return created
}

func Test_gradeApi(t *testing.T) {
	app := setup(t)
	ivan := app.createStudent(t, "Ivan", "Petrov", "ivan@school.ru")
	olga := app.createStudent(t, "Olga", "Sidorova", "olga@school.ru")

	g1 := postGrade(t, app, school.NewGrade{StudentID: ivan.ID, SubjectID: 1, Grade: 5, Comment: "Отлично", Date: "2024-09-02"})
	g2 := postGrade(t, app, school.NewGrade{StudentID: ivan.ID, SubjectID: 2, Grade: 3, Date: "2024-09-10"})
	g3 := postGrade(t, app, school.NewGrade{StudentID: ivan.ID, SubjectID: 1, Grade: 3, Date: "2024-09-02"})

	runHTTPTests(t, app, []httpTest{
		{
			name:     "most recent first with average",
			method:   http.MethodGet,
			path:     "/grades?studentId=" + itoa(ivan.ID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, school.GradeReport{
				Grades: []school.Grade{
					{ID: g2.ID, Grade: 3, Date: "2024-09-10", SubjectName: "Русский язык"},
					{ID: g3.ID, Grade: 3, Date: "2024-09-02", SubjectName: "Математика"},
					{ID: g1.ID, Grade: 5, Date: "2024-09-02", Comment: "Отлично", SubjectName: "Математика"},
				},
				AverageGrade: 3.67,
			}),
		},
		{
			name:     "no grades",
			method:   http.MethodGet,
			path:     "/grades?studentId=" + itoa(olga.ID),
			wantCode: http.StatusOK,
			wantData: []byte(`{"grades": [], "averageGrade": 0}`),
		},
		{
			name:     "missing student id",
			method:   http.MethodGet,
			path:     "/grades",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "studentId required"}),
		},
		{
			name:     "grade out of range",
			method:   http.MethodPost,
			path:     "/grades",
			body:     marchallObj(t, school.NewGrade{StudentID: ivan.ID, SubjectID: 1, Grade: 6}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad date",
			method:   http.MethodPost,
			path:     "/grades",
			body:     marchallObj(t, school.NewGrade{StudentID: ivan.ID, SubjectID: 1, Grade: 4, Date: "02.09.2024"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown subject",
			method:   http.MethodPost,
			path:     "/grades",
			body:     marchallObj(t, school.NewGrade{StudentID: ivan.ID, SubjectID: 99, Grade: 4}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error": "subject not found", "fields": {"subjectId": "subject not found"}}`),
		},
		{
			name:     "unknown student",
			method:   http.MethodPost,
			path:     "/grades",
			body:     marchallObj(t, school.NewGrade{StudentID: 999, SubjectID: 1, Grade: 4}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error": "student not found", "fields": {"studentId": "student not found"}}`),
		},
	})

	t.Run("date defaults to today", func(t *testing.T) {
		created := postGrade(t, app, school.NewGrade{StudentID: olga.ID, SubjectID: 1, Grade: 4})

		report, err := app.schoolSvc.GradeReport(context.Background(), olga.ID)
		require.NoError(t, err)
		require.Len(t, report.Grades, 1)
		assert.Equal(t, created.ID, report.Grades[0].ID)
		assert.Equal(t, school.Today(), report.Grades[0].Date)
		assert.Equal(t, 4.0, report.AverageGrade)
	})
}
