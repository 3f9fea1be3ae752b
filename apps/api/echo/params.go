package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/volatiletech/null/v8"
)

// queryInt reads an optional integer query parameter. A missing or empty parameter yields a null Int.
func queryInt(ctx echo.Context, name string) (null.Int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return null.Int{}, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return null.Int{}, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer").SetInternal(err)
	}
	return null.IntFrom(val), nil
}

// requiredQueryInt reads a mandatory integer query parameter, failing with missingErr when absent.
func requiredQueryInt(ctx echo.Context, name string, missingErr error) (int, error) {
	val, err := queryInt(ctx, name)
	if err != nil {
		return 0, err
	}
	if !val.Valid {
		return 0, missingErr
	}
	return val.Int, nil
}
