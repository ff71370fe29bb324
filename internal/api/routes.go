package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.HandleHealth)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.HandleRegister)
	auth.Post("/login", handler.HandleLogin)
	auth.Get("/me", handler.RequireAuth, handler.HandleCurrentUser)

	checkIns := api.Group("/checkins", handler.RequireAuth)
	checkIns.Post("", handler.HandleCreateCheckIn)
	checkIns.Get("", handler.HandleListCheckIns)
	checkIns.Get("/today", handler.HandleTodayStatus)
	checkIns.Get("/:id", handler.HandleGetCheckIn)
	checkIns.Put("/:id", handler.HandleUpdateCheckIn)
	checkIns.Delete("/:id", handler.HandleDeleteCheckIn)

	notifications := api.Group("/notifications", handler.RequireAuth)
	notifications.Get("", handler.HandleListNotifications)
	notifications.Get("/unread-count", handler.HandleUnreadCount)
	notifications.Get("/stats", handler.HandleNotificationStats)
	notifications.Post("/test-reminder", handler.HandleTestReminder)
	notifications.Get("/:id", handler.HandleGetNotification)
	notifications.Put("/read-all", handler.HandleMarkAllNotificationsRead)
	notifications.Put("/:id/read", handler.HandleMarkNotificationRead)
	notifications.Delete("/bulk", handler.HandleBulkDeleteNotifications)
	notifications.Delete("/:id", handler.HandleDeleteNotification)

	stats := api.Group("/stats", handler.RequireAuth)
	stats.Get("/overview", handler.HandleOverview)
	stats.Get("/me", handler.HandleUserStats)
	stats.Get("/monthly-report", handler.HandleMonthlyReport)
	stats.Get("/yearly-report", handler.HandleYearlyReport)
	stats.Get("/trends", handler.HandleTrends)
	stats.Get("/achievements", handler.HandleAchievements)

	settings := api.Group("/settings", handler.RequireAuth)
	settings.Get("", handler.HandleGetSettings)
	settings.Put("/profile", handler.HandleUpdateProfile)
	settings.Put("/notifications", handler.HandleUpdateNotificationSettings)
	settings.Put("/password", handler.HandleChangePassword)

	users := api.Group("/users", handler.RequireAuth)
	users.Get("/emergency-contacts", handler.HandleListContacts)
	users.Post("/emergency-contacts", handler.HandleAddContact)
	users.Put("/emergency-contacts/:id", handler.HandleUpdateContact)
	users.Delete("/emergency-contacts/:id", handler.HandleDeleteContact)
	users.Delete("/account", handler.HandleDeactivateAccount)

	data := api.Group("/data", handler.RequireAuth)
	data.Delete("/clear-all", handler.HandleClearAllData)
}

func (handler *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
