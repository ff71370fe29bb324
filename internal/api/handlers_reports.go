package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) HandleOverview(c *fiber.Ctx) error {
	overview, err := handler.reports.Overview(currentUserID(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, overview)
}

func (handler *Handler) HandleMonthlyReport(c *fiber.Ctx) error {
	now := time.Now().In(handler.location)
	year := queryInt(c, "year", now.Year())
	month := queryInt(c, "month", int(now.Month()))

	report, err := handler.reports.MonthlyReport(currentUserID(c), year, month)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, report)
}

func (handler *Handler) HandleYearlyReport(c *fiber.Ctx) error {
	now := time.Now().In(handler.location)
	year := queryInt(c, "year", now.Year())

	report, err := handler.reports.YearlyReport(currentUserID(c), year)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, report)
}

func (handler *Handler) HandleTrends(c *fiber.Ctx) error {
	trends, err := handler.reports.Trends(currentUserID(c), queryInt(c, "days", 0))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, trends)
}

func (handler *Handler) HandleAchievements(c *fiber.Ctx) error {
	report, err := handler.reports.Achievements(currentUserID(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, report)
}
