package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/mergington-api/internal/dto"
	"github.com/noah-isme/mergington-api/internal/middleware"
	"github.com/noah-isme/mergington-api/internal/models"
	"github.com/noah-isme/mergington-api/internal/observability"
	"github.com/noah-isme/mergington-api/internal/repository"
)

const maxHistoryLimit = 200

var (
	// ErrActivityNotFound indicates the activity does not exist.
	ErrActivityNotFound = repository.ErrActivityNotFound
	// ErrAlreadySignedUp indicates a duplicate signup.
	ErrAlreadySignedUp = repository.ErrAlreadySignedUp
	// ErrNotSignedUp indicates the student is not on the roster.
	ErrNotSignedUp = repository.ErrNotSignedUp
	// ErrHistoryUnavailable indicates no audit store is configured.
	ErrHistoryUnavailable = errors.New("roster history is not available")
)

// ActivityService exposes the activity catalog and roster operations.
type ActivityService interface {
	List(ctx context.Context) dto.ActivityCatalogResponse
	Signup(ctx context.Context, req dto.SignupRequest) (dto.MessageResponse, error)
	Unregister(ctx context.Context, req dto.SignupRequest) (dto.MessageResponse, error)
	History(ctx context.Context, activity string, limit int) (dto.ActivityHistoryResponse, error)
}

// ActivityServiceConfig tunes optional collaborators of the activity service.
type ActivityServiceConfig struct {
	Audit        repository.RosterChangeRepository
	Publisher    RosterPublisher
	HistoryLimit int
}

type activityService struct {
	repo         repository.ActivityRepository
	audit        repository.RosterChangeRepository
	publisher    RosterPublisher
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
	historyLimit int
}

// NewActivityService constructs the activity service.
func NewActivityService(repo repository.ActivityRepository, validate *validator.Validate, logger zerolog.Logger, cfg ActivityServiceConfig) ActivityService {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 || historyLimit > maxHistoryLimit {
		historyLimit = 50
	}

	svc := &activityService{
		repo:         repo,
		audit:        cfg.Audit,
		publisher:    cfg.Publisher,
		validator:    validate,
		logger:       logger.With().Str("component", "activity_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/mergington-api/internal/service/activity"),
		historyLimit: historyLimit,
	}

	for _, activity := range repo.List(context.Background()) {
		observability.Participants().WithLabelValues(activity.Name).Set(float64(len(activity.Participants)))
	}

	return svc
}

func (s *activityService) List(ctx context.Context) dto.ActivityCatalogResponse {
	_, span := s.tracer.Start(ctx, "activities.list")
	defer span.End()

	activities := s.repo.List(ctx)
	span.SetAttributes(attribute.Int("activities.count", len(activities)))
	return dto.NewActivityCatalogResponse(activities)
}

func (s *activityService) Signup(ctx context.Context, req dto.SignupRequest) (dto.MessageResponse, error) {
	req = normalizeSignupRequest(req)
	if err := s.validator.Struct(req); err != nil {
		observability.Signups().WithLabelValues("invalid").Inc()
		return dto.MessageResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "activities.signup", trace.WithAttributes(attribute.String("activity.name", req.Activity)))
	defer span.End()

	activity, err := s.repo.AddParticipant(spanCtx, req.Activity, req.Email)
	if err != nil {
		observability.Signups().WithLabelValues(resultLabel(err)).Inc()
		span.SetStatus(codes.Error, err.Error())
		return dto.MessageResponse{}, err
	}

	observability.Signups().WithLabelValues("success").Inc()
	s.afterChange(spanCtx, models.RosterActionSignup, EventMemberJoined, activity, req.Email)

	return dto.MessageResponse{Message: fmt.Sprintf("Signed up %s for %s", req.Email, activity.Name)}, nil
}

func (s *activityService) Unregister(ctx context.Context, req dto.SignupRequest) (dto.MessageResponse, error) {
	req = normalizeSignupRequest(req)
	if err := s.validator.Struct(req); err != nil {
		observability.Unregistrations().WithLabelValues("invalid").Inc()
		return dto.MessageResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "activities.unregister", trace.WithAttributes(attribute.String("activity.name", req.Activity)))
	defer span.End()

	activity, err := s.repo.RemoveParticipant(spanCtx, req.Activity, req.Email)
	if err != nil {
		observability.Unregistrations().WithLabelValues(resultLabel(err)).Inc()
		span.SetStatus(codes.Error, err.Error())
		return dto.MessageResponse{}, err
	}

	observability.Unregistrations().WithLabelValues("success").Inc()
	s.afterChange(spanCtx, models.RosterActionUnregister, EventMemberLeft, activity, req.Email)

	return dto.MessageResponse{Message: fmt.Sprintf("Unregistered %s from %s", req.Email, activity.Name)}, nil
}

func (s *activityService) History(ctx context.Context, activity string, limit int) (dto.ActivityHistoryResponse, error) {
	if _, err := s.repo.Get(ctx, activity); err != nil {
		return dto.ActivityHistoryResponse{}, err
	}
	if s.audit == nil {
		return dto.ActivityHistoryResponse{}, ErrHistoryUnavailable
	}

	if limit <= 0 {
		limit = s.historyLimit
	} else if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	spanCtx, span := s.tracer.Start(ctx, "activities.history", trace.WithAttributes(attribute.String("activity.name", activity)))
	defer span.End()

	entries, err := s.audit.List(spanCtx, repository.RosterChangeFilter{Activity: activity, Limit: limit})
	if err != nil {
		span.RecordError(err)
		return dto.ActivityHistoryResponse{}, err
	}

	items := make([]dto.RosterChangeResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewRosterChangeResponse(entry))
	}

	return dto.ActivityHistoryResponse{Activity: activity, Items: items}, nil
}

// afterChange updates gauges and fans the change out to the audit log and brokers.
// Neither side effect can fail the roster change itself.
func (s *activityService) afterChange(ctx context.Context, action, eventType string, activity models.Activity, email string) {
	observability.Participants().WithLabelValues(activity.Name).Set(float64(len(activity.Participants)))

	correlationID := middleware.CorrelationIDFromContext(ctx)
	logger := s.logger.With().
		Str("activity", activity.Name).
		Str("action", action).
		Str("correlation_id", correlationID).
		Logger()

	if s.audit != nil {
		entry := models.RosterChange{
			Activity:      activity.Name,
			Email:         email,
			Action:        action,
			CorrelationID: correlationID,
			Metadata: datatypes.JSONMap{
				"roster_size":      len(activity.Participants),
				"max_participants": activity.MaxParticipants,
			},
		}
		if err := s.audit.Create(ctx, &entry); err != nil {
			logger.Error().Err(err).Msg("failed to persist roster change")
		}
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, RosterEvent{
			Type:       eventType,
			Activity:   activity.Name,
			Email:      email,
			OccurredAt: time.Now().UTC(),
		})
	}

	logger.Info().Int("roster_size", len(activity.Participants)).Msg("roster updated")
}

func normalizeSignupRequest(req dto.SignupRequest) dto.SignupRequest {
	req.Email = strings.TrimSpace(req.Email)
	return req
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrActivityNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadySignedUp):
		return "duplicate"
	case errors.Is(err, ErrNotSignedUp):
		return "not_signed_up"
	default:
		return "error"
	}
}
