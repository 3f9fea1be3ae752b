package echoapi

import (
	"fmt"
	"net/http"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/user"
)

var (
	errStudentIDRequired = echo.NewHTTPError(http.StatusBadRequest, "studentId required")
	errClassIDRequired   = echo.NewHTTPError(http.StatusBadRequest, "classId required")
	errIDRequired        = echo.NewHTTPError(http.StatusBadRequest, "id required")
	errHttpNotFound      = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var resp ErrorResponse

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			resp.Error = fmt.Sprint(origErr.Message)
		case validator.ValidationErrors:
			resp.Fields = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				resp.Fields[vErr.Field()] = vErr.Translate(translator)
			}
			resp.Error = firstFieldError(resp.Fields)
			code = http.StatusBadRequest
		case *core.ValidationError:
			if len(origErr.Fields) > 0 {
				resp.Fields = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					resp.Fields[fErr.Field] = fErr.Error
				}
			}
			resp.Error = origErr.Error()
			code = http.StatusBadRequest
		default:
			switch origErr {
			case user.ErrInvalidCredentials:
				code = http.StatusUnauthorized
				resp.Error = origErr.Error()
			case user.ErrAccountDeleted:
				code = http.StatusForbidden
				resp.Error = origErr.Error()
			case user.ErrEmailExists:
				code = http.StatusBadRequest
				resp.Error = origErr.Error()
			case user.ErrNotFound, school.ErrClassNotFound:
				code = http.StatusNotFound
				resp.Error = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				resp.Error = msg

				logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{
					"requestId": ctx.Response().Header().Get(echo.HeaderXRequestID),
					"method":    ctx.Request().Method,
					"path":      ctx.Request().URL.Path,
				})
				if ctx.Echo().Debug {
					resp.Error = err.Error()
				}

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// firstFieldError renders the alphabetically first field error as "<field>: <message>".
func firstFieldError(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return http.StatusText(http.StatusBadRequest)
	}
	return names[0] + ": " + fields[names[0]]
}
