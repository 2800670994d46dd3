package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"fundry/contexts/funding-core/activity-feed-service/adapters/memory"
	"fundry/contexts/funding-core/activity-feed-service/ports"
)

// captureSubscriber hands the registered handler back to the test so events
// can be delivered synchronously.
type captureSubscriber struct {
	topics   []string
	handlers []func(context.Context, ports.EventEnvelope) error
}

func (s *captureSubscriber) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	s.topics = append(s.topics, topic)
	s.handlers = append(s.handlers, handler)
	return nil
}

func contributionEvent(t *testing.T, eventID string, campaignID int64) ports.EventEnvelope {
	t.Helper()
	occurred := time.Date(2026, time.May, 2, 10, 30, 0, 0, time.UTC)
	amount := int64(250)
	data, err := json.Marshal(map[string]any{
		"operation_kind":   "contribute",
		"campaign_id":      campaignID,
		"actor":            "backer-1",
		"amount":           amount,
		"resulting_status": "active",
		"occurred_at":      occurred.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return ports.EventEnvelope{
		EventID:      eventID,
		EventType:    "campaign.contribution_recorded",
		OccurredAt:   occurred,
		PartitionKey: "7",
		Data:         data,
	}
}

func TestStartSubscribesToEveryCampaignTopic(t *testing.T) {
	subscriber := &captureSubscriber{}
	consumer := CampaignActivityConsumer{
		Subscriber: subscriber,
		Feed:       memory.NewStore(),
		Dedup:      memory.NewStore(),
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start consumer: %v", err)
	}
	if len(subscriber.topics) != len(CampaignActivityTopics) {
		t.Fatalf("expected %d subscriptions, got %d", len(CampaignActivityTopics), len(subscriber.topics))
	}
	for i, topic := range CampaignActivityTopics {
		if subscriber.topics[i] != topic {
			t.Fatalf("expected topic %s at %d, got %s", topic, i, subscriber.topics[i])
		}
	}
}

func TestDisabledConsumerNeverSubscribes(t *testing.T) {
	subscriber := &captureSubscriber{}
	consumer := CampaignActivityConsumer{
		Subscriber: subscriber,
		Feed:       memory.NewStore(),
		Dedup:      memory.NewStore(),
		Disabled:   true,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start consumer: %v", err)
	}
	if len(subscriber.topics) != 0 {
		t.Fatalf("disabled consumer must not subscribe, got %v", subscriber.topics)
	}
}

func TestHandlerProjectsEventIntoFeed(t *testing.T) {
	store := memory.NewStore()
	subscriber := &captureSubscriber{}
	consumer := CampaignActivityConsumer{
		Subscriber: subscriber,
		Feed:       store,
		Dedup:      store,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start consumer: %v", err)
	}

	event := contributionEvent(t, "evt-1", 7)
	if err := subscriber.handlers[0](context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	entries, err := store.ListEntries(context.Background(), 7, 10, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.OperationKind != "contribute" || entry.Actor != "backer-1" {
		t.Fatalf("unexpected projection: %+v", entry)
	}
	if entry.Amount == nil || *entry.Amount != 250 {
		t.Fatalf("expected amount 250, got %v", entry.Amount)
	}
	if !entry.OccurredAt.Equal(event.OccurredAt) {
		t.Fatalf("expected payload timestamp, got %v", entry.OccurredAt)
	}
}

func TestHandlerSkipsReplayedEvent(t *testing.T) {
	store := memory.NewStore()
	subscriber := &captureSubscriber{}
	consumer := CampaignActivityConsumer{
		Subscriber: subscriber,
		Feed:       store,
		Dedup:      store,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start consumer: %v", err)
	}

	event := contributionEvent(t, "evt-1", 7)
	for i := 0; i < 3; i++ {
		if err := subscriber.handlers[0](context.Background(), event); err != nil {
			t.Fatalf("handle event attempt %d: %v", i, err)
		}
	}
	count, err := store.CountEntries(context.Background(), 7)
	if err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 1 {
		t.Fatalf("replays must project exactly once, got %d", count)
	}
}

func TestHandlerRejectsMalformedPayload(t *testing.T) {
	store := memory.NewStore()
	subscriber := &captureSubscriber{}
	consumer := CampaignActivityConsumer{
		Subscriber: subscriber,
		Feed:       store,
		Dedup:      store,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start consumer: %v", err)
	}

	event := ports.EventEnvelope{
		EventID:   "evt-bad",
		EventType: "campaign.created",
		Data:      json.RawMessage(`{"campaign_id": 1}`),
	}
	if err := subscriber.handlers[0](context.Background(), event); err == nil {
		t.Fatalf("expected error for payload without operation_kind")
	}
	count, _ := store.CountEntries(context.Background(), 1)
	if count != 0 {
		t.Fatalf("malformed payload must not project, got %d entries", count)
	}
}
