package routes

import (
	"context"
	"errors"
	"net/http"

	"formconsult/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type ErrorReporter interface {
	Report(ctx context.Context, err error, extras map[string]any)
}

// NewHTTPErrorHandler renders errors escaping handlers with the same JSON body
// the services use. Unknown errors are logged, reported and hidden behind a
// generic 500.
func NewHTTPErrorHandler(reporter ErrorReporter) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var body apierror.ErrorResponse
		var apiErr apierror.ErrorResponse
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &apiErr):
			body = apiErr
		case errors.As(err, &httpErr):
			msg := http.StatusText(httpErr.Code)
			if m, ok := httpErr.Message.(string); ok {
				msg = m
			}
			body = apierror.NewSimple(httpErr.Code, msg)
		default:
			log.Errorf("unhandled error on %s %s: %v", c.Request().Method, c.Path(), err)
			reporter.Report(c.Request().Context(), err, map[string]any{
				"method":     c.Request().Method,
				"path":       c.Path(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			})
			body = apierror.InternalServerError
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(body.Code())
		} else {
			err = c.JSON(body.Code(), body)
		}
		if err != nil {
			log.Errorf("failed to write error response: %v", err)
		}
	}
}
