package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sileme/sileme/internal/models"
	"github.com/sileme/sileme/internal/services"
)

const defaultPageSize = 20

type checkInRequest struct {
	Mood     string                  `json:"mood"`
	Note     string                  `json:"note"`
	Location *models.GeoPoint        `json:"location"`
	Weather  *models.WeatherSnapshot `json:"weather"`
	Tags     []string                `json:"tags"`
	IsPublic bool                    `json:"isPublic"`
}

type checkInUpdateRequest struct {
	Mood     *string   `json:"mood"`
	Note     *string   `json:"note"`
	Tags     *[]string `json:"tags"`
	IsPublic *bool     `json:"isPublic"`
}

func (handler *Handler) HandleCreateCheckIn(c *fiber.Ctx) error {
	request := checkInRequest{}
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry, stats, err := handler.checkIns.CreateCheckIn(c.Context(), currentUserID(c), services.CheckInInput{
		Mood:     request.Mood,
		Note:     request.Note,
		Location: request.Location,
		Weather:  request.Weather,
		Tags:     request.Tags,
		IsPublic: request.IsPublic,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusCreated, fiber.Map{"checkIn": entry, "stats": stats})
}

func (handler *Handler) HandleListCheckIns(c *fiber.Ctx) error {
	query := models.CheckInListQuery{
		Mood:   c.Query("mood"),
		Tag:    c.Query("tag"),
		Limit:  queryInt(c, "limit", defaultPageSize),
		Offset: queryInt(c, "offset", 0),
	}
	if from, ok := queryDay(c, "from", handler.location); ok {
		start, _ := services.DayRange(from, handler.location)
		query.FromStart = &start
	}
	if to, ok := queryDay(c, "to", handler.location); ok {
		_, end := services.DayRange(to, handler.location)
		query.ToEnd = &end
	}

	entries, total, err := handler.checkIns.ListCheckIns(currentUserID(c), query)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"checkIns": entries, "total": total})
}

func (handler *Handler) HandleGetCheckIn(c *fiber.Ctx) error {
	checkInID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid check-in id")
	}

	entry, err := handler.checkIns.GetCheckIn(currentUserID(c), checkInID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, entry)
}

func (handler *Handler) HandleUpdateCheckIn(c *fiber.Ctx) error {
	checkInID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid check-in id")
	}

	request := checkInUpdateRequest{}
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := handler.checkIns.UpdateCheckIn(currentUserID(c), checkInID, services.CheckInUpdateInput{
		Mood:     request.Mood,
		Note:     request.Note,
		Tags:     request.Tags,
		IsPublic: request.IsPublic,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, entry)
}

func (handler *Handler) HandleDeleteCheckIn(c *fiber.Ctx) error {
	checkInID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid check-in id")
	}

	stats, err := handler.checkIns.DeleteCheckIn(currentUserID(c), checkInID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"stats": stats})
}

func (handler *Handler) HandleTodayStatus(c *fiber.Ctx) error {
	checkedIn, entry, err := handler.checkIns.TodayStatus(currentUserID(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"checkedIn": checkedIn, "checkIn": entry})
}

func (handler *Handler) HandleUserStats(c *fiber.Ctx) error {
	stats, err := handler.checkIns.GetUserStats(currentUserID(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, stats)
}

func pathID(c *fiber.Ctx, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func queryInt(c *fiber.Ctx, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func queryDay(c *fiber.Ctx, name string, location *time.Location) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", raw, location)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
