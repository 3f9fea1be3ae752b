package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
)

const (
	msgClassCreated = "Класс создан"
	msgClassDeleted = "Класс удален"
)

type classApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerClassAPI(e *echo.Echo, svc *school.Service, validate *validator.Validate) {
	api := classApi{svc: svc, validate: validate}

	g := e.Group("/classes")
	g.GET("", api.query)
	g.POST("", api.create)
	g.DELETE("", api.destroy)
}

func (api *classApi) query(ctx echo.Context) error {
	teacherID, err := queryInt(ctx, "teacherId")
	if err != nil {
		return err
	}
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), teacherID)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) create(ctx echo.Context) error {
	var data school.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	id, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, school.Created{ID: id, Message: msgClassCreated})
}

// destroy succeeds even when the class is already gone.
func (api *classApi) destroy(ctx echo.Context) error {
	id, err := requiredQueryInt(ctx, "id", errIDRequired)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteClass(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.JSON(http.StatusOK, school.Message{Message: msgClassDeleted})
}
