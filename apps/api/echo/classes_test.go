package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
)

func Test_classApi(t *testing.T) {
	app := setup(t)
	maria := app.createTeacher(t, "Мария", "Иванова", "maria@school.ru")
	anna := app.createTeacher(t, "Анна", "Смирнова", "anna@school.ru")
	annaClass := app.createClass(t, "9В", anna.ID)

	class10A := func(id, count int) school.Class {
		return school.Class{
			ID: id, Name: "10А", TeacherID: maria.ID,
			TeacherFirstName: "Мария", TeacherLastName: "Иванова", StudentCount: count,
		}
	}
	class9B := school.Class{
		ID: annaClass, Name: "9В", TeacherID: anna.ID,
		TeacherFirstName: "Анна", TeacherLastName: "Смирнова",
	}
	newID := annaClass + 1

	runHTTPTests(t, app, []httpTest{
		{
			name:     "create",
			method:   http.MethodPost,
			path:     "/classes",
			body:     marchallObj(t, school.NewClass{Name: " 10А ", TeacherID: maria.ID}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, school.Created{ID: newID, Message: "Класс создан"}),
		},
		{
			name:     "blank name",
			method:   http.MethodPost,
			path:     "/classes",
			body:     marchallObj(t, school.NewClass{Name: "  ", TeacherID: maria.ID}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error": "name: this field cannot be blank", "fields": {"name": "this field cannot be blank"}}`),
		},
		{
			name:     "by teacher",
			method:   http.MethodGet,
			path:     "/classes?teacherId=" + itoa(maria.ID),
			wantCode: http.StatusOK,
			wantData: marchallList(t, class10A(newID, 0)),
		},
		{
			name:     "all",
			method:   http.MethodGet,
			path:     "/classes",
			wantCode: http.StatusOK,
			wantData: marchallList(t, class9B, class10A(newID, 0)),
		},
	})

	app.createStudent(t, "Ivan", "Petrov", "ivan@school.ru", newID)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "student count",
			method:   http.MethodGet,
			path:     "/classes?teacherId=" + itoa(maria.ID),
			wantCode: http.StatusOK,
			wantData: marchallList(t, class10A(newID, 1)),
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     "/classes?id=" + itoa(newID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, school.Message{Message: "Класс удален"}),
		},
		{
			name:     "delete again",
			method:   http.MethodDelete,
			path:     "/classes?id=" + itoa(newID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, school.Message{Message: "Класс удален"}),
		},
		{
			name:     "deleted",
			method:   http.MethodGet,
			path:     "/classes?teacherId=" + itoa(maria.ID),
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
		{
			name:     "delete without id",
			method:   http.MethodDelete,
			path:     "/classes",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "id required"}),
		},
	})
}
