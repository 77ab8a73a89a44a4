package routes

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"formconsult/cmd/internal/service"
	"formconsult/cmd/internal/utils"
	"formconsult/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type NotificationService interface {
	GetNotifications(ctx context.Context, sub string, unreadOnly bool) ([]*service.NotificationResponse, apierror.ErrorResponse)
	MarkRead(ctx context.Context, id, sub string) apierror.ErrorResponse
	MarkAllRead(ctx context.Context, sub string) (*service.MarkAllReadResponse, apierror.ErrorResponse)
}

type DefaultNotificationRoute struct {
	NotificationService NotificationService
}

func NewNotificationDefault(notifService NotificationService) *DefaultNotificationRoute {
	return &DefaultNotificationRoute{NotificationService: notifService}
}

func (n *DefaultNotificationRoute) GetNotifications(c echo.Context) error {
	unreadOnly := false
	if raw := c.QueryParam("unread"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, apierror.NewInvalidParamTypeError("unread", "boolean"))
		}
		unreadOnly = parsed
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	notifs, apierr := n.NotificationService.GetNotifications(c.Request().Context(), data.Sub, unreadOnly)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"notifications": notifs}
	return c.JSON(http.StatusOK, &resp)
}

func (n *DefaultNotificationRoute) MarkRead(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	if apierr := n.NotificationService.MarkRead(c.Request().Context(), id, data.Sub); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (n *DefaultNotificationRoute) MarkAllRead(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	resp, apierr := n.NotificationService.MarkAllRead(c.Request().Context(), data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}
