package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

const (
	msgStudentCreated = "Ученик создан"
	msgStudentDeleted = "Ученик удален"
)

type studentApi struct {
	svc      *user.Service
	validate *validator.Validate
}

func registerStudentAPI(e *echo.Echo, svc *user.Service, validate *validator.Validate) {
	api := studentApi{svc: svc, validate: validate}

	g := e.Group("/students")
	g.GET("", api.query)
	g.POST("", api.create)
	g.DELETE("", api.destroy)
}

func (api *studentApi) query(ctx echo.Context) error {
	classID, err := queryInt(ctx, "classId")
	if err != nil {
		return err
	}
	students, err := api.svc.QueryStudents(ctx.Request().Context(), user.StudentFilter{ClassID: classID})
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data user.NewStudent
	if err := ctx.Bind(&data); err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, school.Created{ID: usr.ID, Message: msgStudentCreated})
}

// destroy soft-deletes the student.
func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := requiredQueryInt(ctx, "id", errIDRequired)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteStudent(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting student")
	}
	return ctx.JSON(http.StatusOK, school.Message{Message: msgStudentDeleted})
}
