package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mergington-api/internal/observability"
)

// Roster event types.
const (
	EventMemberJoined = "activity.member.joined"
	EventMemberLeft   = "activity.member.left"
)

// RosterEvent is the broker payload emitted after a roster change.
type RosterEvent struct {
	Type       string    `json:"type"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RosterPublisher fans roster events out to the configured brokers.
type RosterPublisher interface {
	Publish(ctx context.Context, event RosterEvent)
}

type rosterPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	nodeID       string
	logger       zerolog.Logger
}

// NewRosterPublisher builds a publisher. Either client may be nil.
func NewRosterPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) RosterPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":roster"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".roster"
	}

	return &rosterPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		nodeID:       uuid.NewString(),
		logger:       logger.With().Str("component", "roster_publisher").Logger(),
	}
}

func (p *rosterPublisher) Publish(ctx context.Context, event RosterEvent) {
	if event.Source == "" {
		event.Source = p.nodeID
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode roster event")
		return
	}

	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			observability.RosterEvents().WithLabelValues("redis", "error").Inc()
			p.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to publish roster event to redis")
		} else {
			observability.RosterEvents().WithLabelValues("redis", "published").Inc()
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			observability.RosterEvents().WithLabelValues("nats", "error").Inc()
			p.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to publish roster event to nats")
		} else {
			observability.RosterEvents().WithLabelValues("nats", "published").Inc()
		}
	}
}
