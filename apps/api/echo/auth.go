package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

type authApi struct {
	svc      *user.Service
	validate *validator.Validate
}

func registerAuthAPI(e *echo.Echo, svc *user.Service, validate *validator.Validate) {
	api := authApi{svc: svc, validate: validate}
	e.POST("/auth", api.login)
}

// login answers with the bare user record: the client keeps it as its session.
func (api *authApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return core.NewValidationError(user.ErrCredentialsRequired)
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	return ctx.JSON(http.StatusOK, usr)
}
