package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mergington-api/internal/catalog"
	"github.com/noah-isme/mergington-api/internal/dto"
	"github.com/noah-isme/mergington-api/internal/handler"
	"github.com/noah-isme/mergington-api/internal/repository"
	"github.com/noah-isme/mergington-api/internal/service"
)

type activityPayload struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

func newActivityApp(t *testing.T) *fiber.App {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())

	loader, err := catalog.NewLoader(validate)
	require.NoError(t, err)
	activities, err := loader.Default()
	require.NoError(t, err)
	repo, err := repository.NewActivityRepository(activities)
	require.NoError(t, err)

	svc := service.NewActivityService(repo, validate, zerolog.Nop(), service.ActivityServiceConfig{})

	app := fiber.New()
	handler.NewActivityHandler(svc, zerolog.Nop()).Register(app.Group("/activities"))
	return app
}

func signupPath(activity, email string) string {
	return "/activities/" + url.PathEscape(activity) + "/signup?email=" + url.QueryEscape(email)
}

func doRequest(t *testing.T, app *fiber.App, method, target string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil), -1)
	require.NoError(t, err)
	return resp
}

func listActivities(t *testing.T, app *fiber.App) map[string]activityPayload {
	t.Helper()
	resp := doRequest(t, app, http.MethodGet, "/activities")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload map[string]activityPayload
	decodeResponse(t, resp, &payload)
	return payload
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func TestActivityHandler_ListReturnsSeededCatalog(t *testing.T) {
	app := newActivityApp(t)

	activities := listActivities(t, app)
	require.Len(t, activities, 9)

	basketball, ok := activities["Basketball Team"]
	require.True(t, ok)
	require.NotEmpty(t, basketball.Description)
	require.NotEmpty(t, basketball.Schedule)
	require.Positive(t, basketball.MaxParticipants)
	require.NotNil(t, basketball.Participants)

	chess := activities["Chess Club"]
	require.Contains(t, chess.Participants, "michael@mergington.edu")
	require.Contains(t, chess.Participants, "daniel@mergington.edu")
}

func TestActivityHandler_ListPreservesCatalogOrder(t *testing.T) {
	app := newActivityApp(t)

	resp := doRequest(t, app, http.MethodGet, "/activities")
	decoder := json.NewDecoder(resp.Body)
	defer resp.Body.Close()

	token, err := decoder.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('{'), token)

	first, err := decoder.Token()
	require.NoError(t, err)
	require.Equal(t, "Chess Club", first)
}

func TestActivityHandler_SignupAddsParticipant(t *testing.T) {
	app := newActivityApp(t)

	resp := doRequest(t, app, http.MethodPost, signupPath("Soccer Club", "bob@mergington.edu"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.MessageResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "Signed up bob@mergington.edu for Soccer Club", body.Message)

	require.Contains(t, listActivities(t, app)["Soccer Club"].Participants, "bob@mergington.edu")
}

func TestActivityHandler_SignupDuplicate(t *testing.T) {
	app := newActivityApp(t)

	resp := doRequest(t, app, http.MethodPost, signupPath("Chess Club", "michael@mergington.edu"))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "Student already signed up for this activity", body.Detail)
}

func TestActivityHandler_SignupUnknownActivity(t *testing.T) {
	app := newActivityApp(t)

	resp := doRequest(t, app, http.MethodPost, signupPath("Underwater Basket Weaving", "alice@mergington.edu"))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body dto.ErrorResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "Activity not found", body.Detail)
}

func TestActivityHandler_SignupMissingEmail(t *testing.T) {
	app := newActivityApp(t)

	resp := doRequest(t, app, http.MethodPost, "/activities/Chess%20Club/signup")
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body dto.ErrorResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, handler.DetailEmailRequired, body.Detail)
}

func TestActivityHandler_MissingOrBlankEmailIs422(t *testing.T) {
	app := newActivityApp(t)

	cases := []struct {
		name   string
		method string
		target string
	}{
		{name: "signup blank", method: http.MethodPost, target: "/activities/Chess%20Club/signup?email=%20%20"},
		{name: "signup empty", method: http.MethodPost, target: "/activities/Chess%20Club/signup?email="},
		{name: "unregister missing", method: http.MethodDelete, target: "/activities/Chess%20Club/signup"},
		{name: "unregister blank", method: http.MethodDelete, target: "/activities/Chess%20Club/signup?email=%20%20"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, app, tc.method, tc.target)
			require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

			var body dto.ErrorResponse
			decodeResponse(t, resp, &body)
			require.Equal(t, handler.DetailEmailRequired, body.Detail)
		})
	}

	participants := listActivities(t, app)["Chess Club"].Participants
	require.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, participants)
}

func TestActivityHandler_StoredEmailSurvivesLaterRequests(t *testing.T) {
	app := newActivityApp(t)

	resp := doRequest(t, app, http.MethodPost, signupPath("Soccer Club", "alice@mergington.edu"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	// Same-length emails land at the same offsets of a reused request buffer.
	for i := 0; i < 200; i++ {
		resp = doRequest(t, app, http.MethodPost, signupPath("Soccer Club", "XXXXX@mergington.edu"))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NoError(t, resp.Body.Close())

		resp = doRequest(t, app, http.MethodDelete, signupPath("Soccer Club", "XXXXX@mergington.edu"))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NoError(t, resp.Body.Close())
	}

	participants := listActivities(t, app)["Soccer Club"].Participants
	require.Contains(t, participants, "alice@mergington.edu")
	require.NotContains(t, participants, "XXXXX@mergington.edu")

	resp = doRequest(t, app, http.MethodPost, signupPath("Soccer Club", "alice@mergington.edu"))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestActivityHandler_UnregisterRemovesParticipant(t *testing.T) {
	app := newActivityApp(t)

	resp := doRequest(t, app, http.MethodDelete, signupPath("Chess Club", "michael@mergington.edu"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.MessageResponse
	decodeResponse(t, resp, &body)
	require.Contains(t, body.Message, "michael@mergington.edu")

	participants := listActivities(t, app)["Chess Club"].Participants
	require.NotContains(t, participants, "michael@mergington.edu")
	require.Contains(t, participants, "daniel@mergington.edu")
}

func TestActivityHandler_UnregisterUnknownActivity(t *testing.T) {
	app := newActivityApp(t)

	resp := doRequest(t, app, http.MethodDelete, signupPath("Nonexistent Club", "alice@mergington.edu"))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body dto.ErrorResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "Activity not found", body.Detail)
}

func TestActivityHandler_UnregisterNotSignedUp(t *testing.T) {
	app := newActivityApp(t)

	resp := doRequest(t, app, http.MethodDelete, signupPath("Basketball Team", "notregistered@mergington.edu"))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body dto.ErrorResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "Student not signed up for this activity", body.Detail)
}

func TestActivityHandler_SignupThenUnregisterRoundTrip(t *testing.T) {
	app := newActivityApp(t)

	resp := doRequest(t, app, http.MethodPost, signupPath("Drama Club", "carol@mergington.edu"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = doRequest(t, app, http.MethodPost, signupPath("Drama Club", "carol@mergington.edu"))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp = doRequest(t, app, http.MethodDelete, signupPath("Drama Club", "carol@mergington.edu"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = doRequest(t, app, http.MethodDelete, signupPath("Drama Club", "carol@mergington.edu"))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestActivityHandler_HistoryWithoutAuditStore(t *testing.T) {
	app := newActivityApp(t)

	resp := doRequest(t, app, http.MethodGet, "/activities/Chess%20Club/history")
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/activities/Nonexistent%20Club/history")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/activities/Chess%20Club/history?limit=lots")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

type failingActivityService struct{}

func (failingActivityService) List(context.Context) dto.ActivityCatalogResponse {
	return dto.NewActivityCatalogResponse(nil)
}

func (failingActivityService) Signup(context.Context, dto.SignupRequest) (dto.MessageResponse, error) {
	return dto.MessageResponse{}, errors.New("boom")
}

func (failingActivityService) Unregister(context.Context, dto.SignupRequest) (dto.MessageResponse, error) {
	return dto.MessageResponse{}, errors.New("boom")
}

func (failingActivityService) History(context.Context, string, int) (dto.ActivityHistoryResponse, error) {
	return dto.ActivityHistoryResponse{}, errors.New("boom")
}

func TestActivityHandler_UnexpectedErrorIs500(t *testing.T) {
	app := fiber.New()
	handler.NewActivityHandler(failingActivityService{}, zerolog.Nop()).Register(app.Group("/activities"))

	resp := doRequest(t, app, http.MethodPost, signupPath("Chess Club", "alice@mergington.edu"))
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body dto.ErrorResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, handler.DetailInternal, body.Detail)

	resp = doRequest(t, app, http.MethodGet, "/activities")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var empty map[string]interface{}
	decodeResponse(t, resp, &empty)
	require.Empty(t, empty)
}

func TestActivityHandler_MutatingMiddlewareRunsOnlyOnWrites(t *testing.T) {
	calls := 0
	counter := func(c *fiber.Ctx) error {
		calls++
		return c.Next()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	loader, err := catalog.NewLoader(validate)
	require.NoError(t, err)
	activities, err := loader.Default()
	require.NoError(t, err)
	repo, err := repository.NewActivityRepository(activities)
	require.NoError(t, err)
	svc := service.NewActivityService(repo, validate, zerolog.Nop(), service.ActivityServiceConfig{})

	app := fiber.New()
	handler.NewActivityHandler(svc, zerolog.Nop()).Register(app.Group("/activities"), counter)

	doRequest(t, app, http.MethodGet, "/activities")
	require.Equal(t, 0, calls)

	doRequest(t, app, http.MethodPost, signupPath("Art Club", "zoe@mergington.edu"))
	doRequest(t, app, http.MethodDelete, signupPath("Art Club", "zoe@mergington.edu"))
	require.Equal(t, 2, calls)
}
