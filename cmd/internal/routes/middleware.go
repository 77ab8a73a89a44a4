package routes

import (
	"context"
	"errors"
	"net/http"

	"formconsult/cmd/internal/utils"
	"formconsult/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// Authenticator turns a bearer token into the subject it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the token subject for utils.ParseTokenDataCtx.
func AuthMiddleware(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := utils.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			sub, err := auth.Authenticate(c.Request().Context(), token)
			if errors.Is(err, utils.ErrInvalidToken) {
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}
			if err != nil {
				log.Errorf("failed to authenticate request: %v", err)
				return c.JSON(http.StatusInternalServerError, apierror.InternalServerError)
			}

			utils.SetTokenDataCtx(c, &utils.TokenData{Sub: sub})
			return next(c)
		}
	}
}
