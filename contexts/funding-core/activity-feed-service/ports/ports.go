package ports

import (
	"context"
	"time"

	"fundry/contexts/funding-core/activity-feed-service/domain/entities"
	sharedevents "fundry/internal/shared/events"
)

// FeedRepository stores projected activity entries in arrival order.
type FeedRepository interface {
	AppendEntry(ctx context.Context, entry entities.ActivityEntry) error
	ListEntries(ctx context.Context, campaignID int64, limit int, offset int) ([]entities.ActivityEntry, error)
	CountEntries(ctx context.Context, campaignID int64) (int64, error)
}

type EventEnvelope = sharedevents.Envelope

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

// EventDedupStore reserves an event id for processing. A true result means
// the event was already handled and must be skipped.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

type Clock interface {
	Now() time.Time
}
