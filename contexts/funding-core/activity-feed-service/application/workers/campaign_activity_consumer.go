package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "fundry/contexts/funding-core/activity-feed-service/application"
	"fundry/contexts/funding-core/activity-feed-service/domain/entities"
	"fundry/contexts/funding-core/activity-feed-service/ports"
)

const defaultActivityConsumerGroup = "activity-feed-cg"

// CampaignActivityTopics lists every notification topic the campaign-service
// emits; the consumer subscribes to all of them with one handler.
var CampaignActivityTopics = []string{
	"campaign.created",
	"campaign.contribution_recorded",
	"campaign.voting_started",
	"campaign.vote_cast",
	"campaign.funds_released",
	"campaign.refund_issued",
	"campaign.milestone_completed",
}

// CampaignActivityConsumer projects campaign notification events into the
// per-campaign activity feed.
type CampaignActivityConsumer struct {
	Subscriber    ports.EventSubscriber
	Feed          ports.FeedRepository
	Dedup         ports.EventDedupStore
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func (c CampaignActivityConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("campaign activity consumer disabled by feature flag",
			"event", "activity_consumer_disabled",
			"module", "funding-core/activity-feed-service",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultActivityConsumerGroup
	}
	for _, topic := range CampaignActivityTopics {
		if err := c.Subscriber.Subscribe(ctx, topic, group, c.handleCampaignEvent); err != nil {
			return err
		}
	}
	return nil
}

func (c CampaignActivityConsumer) handleCampaignEvent(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}

	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), now.Add(c.dedupTTL()))
	if err != nil {
		logger.Error("campaign activity dedupe failed",
			"event", "activity_dedupe_failed",
			"module", "funding-core/activity-feed-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("campaign activity event already processed",
			"event", "activity_event_replayed",
			"module", "funding-core/activity-feed-service",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	var payload struct {
		OperationKind   string `json:"operation_kind"`
		CampaignID      int64  `json:"campaign_id"`
		Actor           string `json:"actor"`
		Amount          *int64 `json:"amount"`
		ResultingStatus string `json:"resulting_status"`
		OccurredAt      string `json:"occurred_at"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode campaign notification payload: %w", err)
	}
	if strings.TrimSpace(payload.OperationKind) == "" {
		return fmt.Errorf("campaign notification payload missing operation_kind")
	}

	occurredAt := event.OccurredAt.UTC()
	if parsed, err := time.Parse(time.RFC3339, payload.OccurredAt); err == nil {
		occurredAt = parsed.UTC()
	}
	if occurredAt.IsZero() {
		occurredAt = now
	}

	entry := entities.ActivityEntry{
		EntryID:         event.EventID,
		CampaignID:      payload.CampaignID,
		OperationKind:   payload.OperationKind,
		Actor:           payload.Actor,
		Amount:          payload.Amount,
		ResultingStatus: payload.ResultingStatus,
		OccurredAt:      occurredAt,
		RecordedAt:      now,
		SourceEventID:   event.EventID,
	}
	if err := c.Feed.AppendEntry(ctx, entry); err != nil {
		logger.Error("campaign activity projection failed",
			"event", "activity_projection_failed",
			"module", "funding-core/activity-feed-service",
			"layer", "worker",
			"event_id", event.EventID,
			"campaign_id", payload.CampaignID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("campaign activity projected",
		"event", "activity_projected",
		"module", "funding-core/activity-feed-service",
		"layer", "worker",
		"event_id", event.EventID,
		"campaign_id", payload.CampaignID,
		"operation_kind", payload.OperationKind,
		"resulting_status", payload.ResultingStatus,
	)
	return nil
}

func (c CampaignActivityConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
