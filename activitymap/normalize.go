package activitymap

import (
	"context"
	"strings"
	"time"

	"github.com/zelvyn/zelvyn-api"
)

const (
	// MetadataKeyEmail holds the account email when the event carries one
	MetadataKeyEmail = "email"
	// MetadataKeyRole holds the account role, ARTIST or CUSTOMER
	MetadataKeyRole = "role"
)

const (
	defaultChannel    = "auth"
	defaultObjectType = "user"
	defaultActorID    = "anonymous"
)

// Normalized is a transport agnostic activity record for downstream systems
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	objectType    string
	actorFallback string
	now           auth.Clock
}

// Normalize converts an auth.ActivityEvent into a Normalized record. Failed
// logins have no user, so the actor falls back to "anonymous" and the email
// moves into the metadata.
func Normalize(event auth.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	userID := strings.TrimSpace(event.UserID)
	actorID := userID
	if actorID == "" {
		actorID = options.actorFallback
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = options.now().UTC()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: options.objectType,
		ObjectID:   userID,
		Channel:    options.channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// WithDefaultChannel sets the channel of normalized records
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		opts.channel = strings.TrimSpace(channel)
	}
}

func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithActorFallback sets the actor id used when the event has no user
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// WithClock sets the time used for events without OccurredAt
func WithClock(now auth.Clock) Option {
	return func(opts *normalizeOptions) {
		if now != nil {
			opts.now = now
		}
	}
}

// Sink returns an auth.ActivitySink that hands each normalized record to
// record.
func Sink(record func(ctx context.Context, n Normalized) error, opts ...Option) auth.ActivitySink {
	return auth.ActivitySinkFunc(func(ctx context.Context, event auth.ActivityEvent) error {
		return record(ctx, Normalize(event, opts...))
	})
}

// LogSink logs every normalized record at info level
func LogSink(logger auth.Logger, opts ...Option) auth.ActivitySink {
	return Sink(func(_ context.Context, n Normalized) error {
		logger.Info("activity",
			"actor_id", n.ActorID,
			"verb", n.Verb,
			"object_type", n.ObjectType,
			"object_id", n.ObjectID,
			"channel", n.Channel,
			"metadata", n.Metadata,
			"occurred_at", n.OccurredAt,
		)
		return nil
	}, opts...)
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
		now:           time.Now,
	}
}

func normalizeMetadata(event auth.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	metadata = withDefault(metadata, MetadataKeyEmail, strings.TrimSpace(event.Email))
	metadata = withDefault(metadata, MetadataKeyRole, strings.TrimSpace(event.Role))
	return metadata
}

// withDefault sets key unless value is empty or key is already present
func withDefault(metadata map[string]any, key, value string) map[string]any {
	if value == "" {
		return metadata
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	if _, exists := metadata[key]; !exists {
		metadata[key] = value
	}
	return metadata
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
