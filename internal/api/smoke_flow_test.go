package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sileme/sileme/internal/db"
	"github.com/sileme/sileme/internal/services"
)

func newTestApp(t *testing.T) (*fiber.App, *services.MemoryDeliverySink) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "sileme-test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	repositories := db.NewRepositories(database)
	sink := services.NewMemoryDeliverySink()

	notificationStore := services.NewNotificationStore(
		repositories.Notifications,
		repositories.Users,
		services.NotificationStoreConfig{Location: time.UTC},
	)
	checkInService := services.NewCheckInService(
		repositories.CheckIns,
		repositories.Users,
		notificationStore,
		sink,
		services.CheckInServiceConfig{Location: time.UTC},
		nil,
	)
	reportService := services.NewReportService(
		repositories.CheckIns,
		repositories.Users,
		notificationStore,
		services.ReportServiceConfig{Location: time.UTC},
	)

	handler := NewHandler(HandlerDeps{
		Auth:          services.NewAuthService(repositories.Users, nil),
		Settings:      services.NewSettingsService(repositories.Users),
		CheckIns:      checkInService,
		Notifications: notificationStore,
		Reports:       reportService,
		Contacts:      services.NewContactService(repositories.Contacts),
		Data: services.NewDataService(
			repositories.CheckIns,
			repositories.Notifications,
			repositories.Contacts,
			repositories.Users,
		),
		SecretKey:     "smoke-test-secret",
		Location:      time.UTC,
	})

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	RegisterRoutes(app, handler)
	return app, sink
}

func jsonRequest(t *testing.T, app *fiber.App, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	decoded := map[string]any{}
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return response.StatusCode, decoded
}

func registerTestUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	status, body := jsonRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse-42",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected register status 201, got %d (%v)", status, body)
	}
	data := body["data"].(map[string]any)
	token, ok := data["token"].(string)
	if !ok || token == "" {
		t.Fatalf("expected a token in register response, got %v", data)
	}
	return token
}

func TestCheckInDailyFlow(t *testing.T) {
	app, sink := newTestApp(t)
	token := registerTestUser(t, app, "flowuser")

	status, body := jsonRequest(t, app, http.MethodGet, "/api/checkins/today", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected today status 200, got %d", status)
	}
	if checkedIn := body["data"].(map[string]any)["checkedIn"].(bool); checkedIn {
		t.Fatal("expected a fresh user to not be checked in")
	}

	status, body = jsonRequest(t, app, http.MethodPost, "/api/checkins", token, map[string]any{
		"mood": "happy",
		"note": "first day",
		"tags": []string{"morning"},
	})
	if status != http.StatusCreated {
		t.Fatalf("expected check-in status 201, got %d (%v)", status, body)
	}
	stats := body["data"].(map[string]any)["stats"].(map[string]any)
	if got := stats["currentStreak"].(float64); got != 1 {
		t.Fatalf("expected current streak 1, got %v", got)
	}
	if got := stats["totalCheckIns"].(float64); got != 1 {
		t.Fatalf("expected total 1, got %v", got)
	}

	status, body = jsonRequest(t, app, http.MethodPost, "/api/checkins", token, map[string]any{
		"mood": "neutral",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected duplicate check-in status 409, got %d (%v)", status, body)
	}

	status, body = jsonRequest(t, app, http.MethodGet, "/api/checkins/today", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected today status 200, got %d", status)
	}
	today := body["data"].(map[string]any)
	if !today["checkedIn"].(bool) {
		t.Fatal("expected today to report checked in")
	}

	status, body = jsonRequest(t, app, http.MethodGet, "/api/checkins", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected list status 200, got %d", status)
	}
	if total := body["data"].(map[string]any)["total"].(float64); total != 1 {
		t.Fatalf("expected 1 check-in listed, got %v", total)
	}

	// The successful check-in also lands a success notification and a
	// realtime event for the owner.
	status, body = jsonRequest(t, app, http.MethodGet, "/api/notifications/unread-count", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected unread-count status 200, got %d", status)
	}
	if unread := body["data"].(map[string]any)["unread"].(float64); unread < 1 {
		t.Fatalf("expected at least one unread notification, got %v", unread)
	}
	if events := sink.Events(1); len(events) == 0 {
		t.Fatal("expected a delivery event for the check-in")
	}

	status, _ = jsonRequest(t, app, http.MethodPut, "/api/notifications/read-all", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected read-all status 200, got %d", status)
	}
	status, body = jsonRequest(t, app, http.MethodGet, "/api/notifications/unread-count", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected unread-count status 200, got %d", status)
	}
	if unread := body["data"].(map[string]any)["unread"].(float64); unread != 0 {
		t.Fatalf("expected 0 unread after read-all, got %v", unread)
	}

	status, body = jsonRequest(t, app, http.MethodGet, "/api/stats/overview", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected overview status 200, got %d (%v)", status, body)
	}
	overview := body["data"].(map[string]any)
	if thisWeek := overview["thisWeek"].(float64); thisWeek != 1 {
		t.Fatalf("expected thisWeek 1, got %v", thisWeek)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	app, _ := newTestApp(t)
	registerTestUser(t, app, "taken")

	status, body := jsonRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "taken",
		"email":    "other@example.com",
		"password": "correct-horse-42",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected duplicate username status 409, got %d (%v)", status, body)
	}
}

func TestLoginFlow(t *testing.T) {
	app, _ := newTestApp(t)
	registerTestUser(t, app, "loginuser")

	status, body := jsonRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"identifier": "loginuser@example.com",
		"password":   "correct-horse-42",
	})
	if status != http.StatusOK {
		t.Fatalf("expected login status 200, got %d (%v)", status, body)
	}
	token := body["data"].(map[string]any)["token"].(string)

	status, body = jsonRequest(t, app, http.MethodGet, "/api/auth/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected me status 200, got %d", status)
	}
	user := body["data"].(map[string]any)
	if user["username"].(string) != "loginuser" {
		t.Fatalf("expected username loginuser, got %v", user["username"])
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatal("expected password hash to be absent from the response")
	}

	status, body = jsonRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"identifier": "loginuser",
		"password":   "wrong-password",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected bad password status 401, got %d (%v)", status, body)
	}
}

func TestAuthRequiredOnProtectedRoutes(t *testing.T) {
	app, _ := newTestApp(t)

	for _, path := range []string{"/api/checkins", "/api/notifications", "/api/stats/overview", "/api/settings"} {
		status, _ := jsonRequest(t, app, http.MethodGet, path, "", nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("expected %s without token to be 401, got %d", path, status)
		}
	}

	status, _ := jsonRequest(t, app, http.MethodGet, "/api/checkins", "not-a-token", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected malformed token to be 401, got %d", status)
	}
}

func TestSettingsUpdateFlow(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerTestUser(t, app, "tuner")

	status, body := jsonRequest(t, app, http.MethodPut, "/api/settings/notifications", token, map[string]any{
		"checkInReminder": false,
		"reminderTime":    "21:30",
	})
	if status != http.StatusOK {
		t.Fatalf("expected settings update status 200, got %d (%v)", status, body)
	}

	status, body = jsonRequest(t, app, http.MethodGet, "/api/settings", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected settings status 200, got %d", status)
	}
	settings := body["data"].(map[string]any)
	if settings["reminderTime"].(string) != "21:30" {
		t.Fatalf("expected reminder time 21:30, got %v", settings["reminderTime"])
	}
	if settings["checkInReminder"].(bool) {
		t.Fatal("expected check-in reminder disabled")
	}

	status, body = jsonRequest(t, app, http.MethodPut, "/api/settings/notifications", token, map[string]any{
		"reminderTime": "25:00",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected invalid reminder time status 400, got %d (%v)", status, body)
	}
}

func TestEmergencyContactFlow(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerTestUser(t, app, "guardian")

	status, body := jsonRequest(t, app, http.MethodPost, "/api/users/emergency-contacts", token, map[string]any{
		"name":         "Ada",
		"phone":        "13800000001",
		"relationship": "sister",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected contact status 201, got %d (%v)", status, body)
	}
	contactID := body["data"].(map[string]any)["id"].(float64)

	status, body = jsonRequest(t, app, http.MethodPost, "/api/users/emergency-contacts", token, map[string]any{
		"name":  "Ada Again",
		"phone": "13800000001",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected duplicate phone status 409, got %d (%v)", status, body)
	}

	status, body = jsonRequest(t, app, http.MethodPost, "/api/users/emergency-contacts", token, map[string]any{
		"name": "Nobody Reachable",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected contact without phone or email to be 400, got %d (%v)", status, body)
	}

	path := fmt.Sprintf("/api/users/emergency-contacts/%.0f", contactID)
	status, body = jsonRequest(t, app, http.MethodPut, path, token, map[string]any{
		"name":  "Ada L.",
		"phone": "13800000001",
	})
	if status != http.StatusOK {
		t.Fatalf("expected contact update status 200, got %d (%v)", status, body)
	}

	status, body = jsonRequest(t, app, http.MethodGet, "/api/users/emergency-contacts", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected contact list status 200, got %d", status)
	}
	contacts := body["data"].(map[string]any)["contacts"].([]any)
	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(contacts))
	}
	if name := contacts[0].(map[string]any)["name"].(string); name != "Ada L." {
		t.Fatalf("expected renamed contact, got %q", name)
	}

	status, _ = jsonRequest(t, app, http.MethodDelete, path, token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected contact delete status 200, got %d", status)
	}
	status, _ = jsonRequest(t, app, http.MethodDelete, path, token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected repeat delete status 404, got %d", status)
	}
}

func TestClearAllDataFlow(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerTestUser(t, app, "wiper")

	status, body := jsonRequest(t, app, http.MethodPost, "/api/checkins", token, map[string]any{"mood": "happy"})
	if status != http.StatusCreated {
		t.Fatalf("expected check-in status 201, got %d (%v)", status, body)
	}

	status, body = jsonRequest(t, app, http.MethodDelete, "/api/data/clear-all", token, map[string]any{
		"confirm": "yes please",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected bad confirm token status 400, got %d (%v)", status, body)
	}

	status, body = jsonRequest(t, app, http.MethodDelete, "/api/data/clear-all", token, map[string]any{
		"confirm": "DELETE_ALL_DATA",
	})
	if status != http.StatusOK {
		t.Fatalf("expected clear-all status 200, got %d (%v)", status, body)
	}
	result := body["data"].(map[string]any)
	if deleted := result["checkInsDeleted"].(float64); deleted != 1 {
		t.Fatalf("expected 1 check-in deleted, got %v", deleted)
	}

	status, body = jsonRequest(t, app, http.MethodGet, "/api/checkins", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected list status 200, got %d", status)
	}
	if total := body["data"].(map[string]any)["total"].(float64); total != 0 {
		t.Fatalf("expected no check-ins after the wipe, got %v", total)
	}

	status, body = jsonRequest(t, app, http.MethodGet, "/api/stats/yearly-report", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected yearly report status 200, got %d (%v)", status, body)
	}
	report := body["data"].(map[string]any)
	if total := report["totalCheckIns"].(float64); total != 0 {
		t.Fatalf("expected an empty yearly report after the wipe, got %v", total)
	}
}

func TestDeactivatedAccountCannotLogin(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerTestUser(t, app, "leaver")

	status, body := jsonRequest(t, app, http.MethodDelete, "/api/users/account", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected deactivation status 200, got %d (%v)", status, body)
	}

	status, body = jsonRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"identifier": "leaver",
		"password":   "correct-horse-42",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected login after deactivation to fail with 401, got %d (%v)", status, body)
	}

	// The freed username can be registered again.
	registerTestUser(t, app, "leaver")
}

func TestCheckInValidationViolations(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerTestUser(t, app, "sloppy")

	status, body := jsonRequest(t, app, http.MethodPost, "/api/checkins", token, map[string]any{
		"mood": "ecstatic-beyond-scale",
		"note": fmt.Sprintf("%0*d", 600, 0),
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected validation status 400, got %d (%v)", status, body)
	}
	violations := body["error"].(map[string]any)["violations"].([]any)
	if len(violations) < 2 {
		t.Fatalf("expected at least 2 violations, got %d", len(violations))
	}
}
