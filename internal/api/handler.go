package api

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sileme/sileme/internal/models"
	"github.com/sileme/sileme/internal/services"
	"go.uber.org/zap"
)

const defaultAuthTokenTTL = 7 * 24 * time.Hour

// Handler carries every dependency the HTTP layer needs. One instance
// serves all routes.
type Handler struct {
	auth          *services.AuthService
	settings      *services.SettingsService
	checkIns      *services.CheckInService
	notifications *services.NotificationStore
	reports       *services.ReportService
	contacts      *services.ContactService
	data          *services.DataService

	secretKey []byte
	location  *time.Location
	logger    *zap.Logger
}

type HandlerDeps struct {
	Auth          *services.AuthService
	Settings      *services.SettingsService
	CheckIns      *services.CheckInService
	Notifications *services.NotificationStore
	Reports       *services.ReportService
	Contacts      *services.ContactService
	Data          *services.DataService
	SecretKey     string
	Location      *time.Location
	Logger        *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	location := deps.Location
	if location == nil {
		location = time.Local
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		auth:          deps.Auth,
		settings:      deps.Settings,
		checkIns:      deps.CheckIns,
		notifications: deps.Notifications,
		reports:       deps.Reports,
		contacts:      deps.Contacts,
		data:          deps.Data,
		secretKey:     []byte(deps.SecretKey),
		location:      location,
		logger:        logger,
	}
}

type authClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

func (handler *Handler) buildToken(user *models.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = defaultAuthTokenTTL
	}
	now := time.Now()

	claims := authClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}
