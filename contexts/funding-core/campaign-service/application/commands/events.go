package commands

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"fundry/contexts/funding-core/campaign-service/domain/entities"
	"fundry/contexts/funding-core/campaign-service/ports"
)

func newCampaignEnvelope(
	eventID string,
	eventType string,
	campaignID int64,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Events are partitioned by campaign for stable ordering on
	// campaign-scoped consumers.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "campaign-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "campaign_id",
		PartitionKey:     strconv.FormatInt(campaignID, 10),
		Data:             payload,
	}, nil
}

// appendNotification writes the structured notification every mutating
// operation emits for the activity-feed collaborator. A nil outbox is a
// no-op so pure read/test wiring stays light.
func appendNotification(
	ctx context.Context,
	outbox ports.OutboxWriter,
	idGen ports.IDGenerator,
	eventType string,
	operationKind string,
	campaignID int64,
	actor string,
	amount *int64,
	resulting entities.CampaignStatus,
	occurredAt time.Time,
) error {
	if outbox == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"operation_kind":   operationKind,
		"campaign_id":      campaignID,
		"actor":            actor,
		"resulting_status": string(resulting),
		"occurred_at":      occurredAt.UTC().Format(time.RFC3339),
	}
	if amount != nil {
		data["amount"] = *amount
	}
	envelope, err := newCampaignEnvelope(eventID, eventType, campaignID, occurredAt, data)
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, envelope)
}

// settleCampaign materializes the time-driven transitions a touching call is
// responsible for: the deadline transition and the voting-window expiry.
// Callers persist the campaign when this reports a change, even when the
// touching operation itself is later rejected.
func settleCampaign(campaign *entities.Campaign, now time.Time) bool {
	changed := campaign.SettleStatus(now)
	if campaign.VotingEnabled && !campaign.VotingClosed && now.After(campaign.VotingEndTime) {
		campaign.FinalizeVoting()
		changed = true
	}
	return changed
}
