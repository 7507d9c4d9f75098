package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mergington-api/internal/dto"
	"github.com/noah-isme/mergington-api/internal/service"
	"github.com/noah-isme/mergington-api/internal/utils"
)

// Fixed error details returned to clients.
const (
	DetailActivityNotFound   = "Activity not found"
	DetailAlreadySignedUp    = "Student already signed up for this activity"
	DetailNotSignedUp        = "Student not signed up for this activity"
	DetailEmailRequired      = "email query parameter is required"
	DetailHistoryUnavailable = "Roster history is not available"
	DetailInternal           = "internal server error"
)

// ActivityHandler exposes the activity catalog and signup endpoints.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity routes to the router group. The optional handlers
// run before the mutating endpoints only.
func (h *ActivityHandler) Register(router fiber.Router, mutating ...fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:name/history", h.history)
	router.Post("/:name/signup", chain(mutating, h.signup)...)
	router.Delete("/:name/signup", chain(mutating, h.unregister)...)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.service.List(c.UserContext()))
}

func (h *ActivityHandler) signup(c *fiber.Ctx) error {
	req, err := signupRequestFromContext(c)
	if err != nil {
		return utils.SendDetail(c, fiber.StatusNotFound, DetailActivityNotFound)
	}

	response, err := h.service.Signup(c.UserContext(), req)
	if err != nil {
		return h.writeError(c, err)
	}

	return utils.SendMessage(c, response.Message)
}

func (h *ActivityHandler) unregister(c *fiber.Ctx) error {
	req, err := signupRequestFromContext(c)
	if err != nil {
		return utils.SendDetail(c, fiber.StatusNotFound, DetailActivityNotFound)
	}

	response, err := h.service.Unregister(c.UserContext(), req)
	if err != nil {
		return h.writeError(c, err)
	}

	return utils.SendMessage(c, response.Message)
}

func (h *ActivityHandler) history(c *fiber.Ctx) error {
	name, err := activityNameParam(c)
	if err != nil {
		return utils.SendDetail(c, fiber.StatusNotFound, DetailActivityNotFound)
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendDetail(c, fiber.StatusBadRequest, "invalid limit")
	}

	response, err := h.service.History(c.UserContext(), name, limit)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

func (h *ActivityHandler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		return utils.SendDetail(c, fiber.StatusNotFound, DetailActivityNotFound)
	case errors.Is(err, service.ErrAlreadySignedUp):
		return utils.SendDetail(c, fiber.StatusBadRequest, DetailAlreadySignedUp)
	case errors.Is(err, service.ErrNotSignedUp):
		return utils.SendDetail(c, fiber.StatusNotFound, DetailNotSignedUp)
	case errors.Is(err, service.ErrHistoryUnavailable):
		return utils.SendDetail(c, fiber.StatusServiceUnavailable, DetailHistoryUnavailable)
	case isValidationError(err):
		return utils.SendDetail(c, fiber.StatusUnprocessableEntity, DetailEmailRequired)
	default:
		requestLogger(h.logger, c).Error().Err(err).Str("route", c.Path()).Msg("activity request failed")
		return utils.SendDetail(c, fiber.StatusInternalServerError, DetailInternal)
	}
}

func chain(before []fiber.Handler, last fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(before)+1)
	handlers = append(handlers, before...)
	return append(handlers, last)
}

func signupRequestFromContext(c *fiber.Ctx) (dto.SignupRequest, error) {
	name, err := activityNameParam(c)
	if err != nil {
		return dto.SignupRequest{}, err
	}
	// Query values alias fasthttp's request buffer; the registry keeps the email.
	return dto.SignupRequest{Activity: name, Email: fiberutils.CopyString(c.Query("email"))}, nil
}
