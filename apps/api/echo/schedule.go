package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
)

const msgScheduleCreated = "Расписание добавлено"

type scheduleApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerScheduleAPI(e *echo.Echo, svc *school.Service, validate *validator.Validate) {
	api := scheduleApi{svc: svc, validate: validate}

	g := e.Group("/schedule")
	g.GET("", api.query)
	g.POST("", api.create)
}

func (api *scheduleApi) query(ctx echo.Context) error {
	classID, err := requiredQueryInt(ctx, "classId", errClassIDRequired)
	if err != nil {
		return err
	}
	items, err := api.svc.QuerySchedule(ctx.Request().Context(), classID)
	if err != nil {
		return errors.Wrap(err, "querying schedule")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *scheduleApi) create(ctx echo.Context) error {
	var data school.NewScheduleItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScheduleItem")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	id, err := api.svc.CreateScheduleItem(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating schedule item")
	}
	return ctx.JSON(http.StatusCreated, school.Created{ID: id, Message: msgScheduleCreated})
}
