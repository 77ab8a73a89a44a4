package routes

import "github.com/labstack/echo/v4"

type Handlers struct {
	Appointments  *DefaultAppointmentRoute
	Users         *DefaultUserRoute
	Notifications *DefaultNotificationRoute
}

// Register mounts every authenticated endpoint under /api.
func Register(e *echo.Echo, auth Authenticator, h Handlers) {
	api := e.Group("/api", AuthMiddleware(auth))

	api.GET("/appointments", h.Appointments.GetAppointments)
	api.POST("/appointments", h.Appointments.CreateAppointment)
	api.GET("/appointments/:id", h.Appointments.GetAppointment)
	api.PATCH("/appointments/:id", h.Appointments.UpdateAppointment)
	api.DELETE("/appointments/:id", h.Appointments.DeleteAppointment)
	api.GET("/calendar", h.Appointments.GetCalendar)

	api.GET("/users", h.Users.GetUsers)
	api.GET("/users/:id", h.Users.GetUser)

	api.GET("/notifications", h.Notifications.GetNotifications)
	api.PATCH("/notifications/:id/read", h.Notifications.MarkRead)
	api.POST("/notifications/read-all", h.Notifications.MarkAllRead)
}
