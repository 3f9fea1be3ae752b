package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
)

const msgGradeCreated = "Оценка добавлена"

type gradeApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerGradeAPI(e *echo.Echo, svc *school.Service, validate *validator.Validate) {
	api := gradeApi{svc: svc, validate: validate}

	g := e.Group("/grades")
	g.GET("", api.report)
	g.POST("", api.create)
}

func (api *gradeApi) report(ctx echo.Context) error {
	studentID, err := requiredQueryInt(ctx, "studentId", errStudentIDRequired)
	if err != nil {
		return err
	}
	report, err := api.svc.GradeReport(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "building grade report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *gradeApi) create(ctx echo.Context) error {
	var data school.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.validate, school.Now()); err != nil {
		return err
	}

	id, err := api.svc.CreateGrade(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, school.Created{ID: id, Message: msgGradeCreated})
}
