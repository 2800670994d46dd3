package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"fundry/contexts/funding-core/campaign-service/adapters/memory"
	"fundry/contexts/funding-core/campaign-service/ports"
)

type recordingPublisher struct {
	topics  []string
	events  []ports.EventEnvelope
	failAt  int
	failErr error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.failErr != nil && len(p.topics) == p.failAt {
		return p.failErr
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func seedOutbox(t *testing.T, store *memory.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
			EventID:      id,
			EventType:    "campaign.created",
			PartitionKey: "0",
			OccurredAt:   time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("seed outbox %s: %v", id, err)
		}
	}
}

func TestRunOncePublishesPendingAndMarksThem(t *testing.T) {
	store := memory.NewStore()
	seedOutbox(t, store, "evt-1", "evt-2")
	publisher := &recordingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(publisher.topics) != 2 || publisher.topics[0] != "campaign.created" {
		t.Fatalf("unexpected publishes: %v", publisher.topics)
	}
	if publisher.events[0].EventID != "evt-1" || publisher.events[1].EventID != "evt-2" {
		t.Fatalf("expected envelopes in append order, got %+v", publisher.events)
	}
	if got := store.PendingOutboxCount(); got != 0 {
		t.Fatalf("expected empty outbox after relay, got %d pending", got)
	}

	// An empty cycle is a no-op.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("idle run once: %v", err)
	}
	if len(publisher.topics) != 2 {
		t.Fatalf("idle cycle must not republish, got %v", publisher.topics)
	}
}

func TestRunOnceStopsOnFirstPublishFailure(t *testing.T) {
	store := memory.NewStore()
	seedOutbox(t, store, "evt-1", "evt-2", "evt-3")
	boom := errors.New("broker unavailable")
	publisher := &recordingPublisher{failAt: 1, failErr: boom}
	relay := OutboxRelay{Outbox: store, Publisher: publisher}

	if err := relay.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected publish failure, got %v", err)
	}
	// The first row landed and was marked; the failed one and everything
	// after it stay pending for the next cycle.
	if got := store.PendingOutboxCount(); got != 2 {
		t.Fatalf("expected 2 rows still pending, got %d", got)
	}

	publisher.failErr = nil
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("retry cycle: %v", err)
	}
	if got := store.PendingOutboxCount(); got != 0 {
		t.Fatalf("expected retry to drain the outbox, got %d pending", got)
	}
}

func TestRunOnceHonorsBatchSize(t *testing.T) {
	store := memory.NewStore()
	seedOutbox(t, store, "evt-1", "evt-2", "evt-3")
	publisher := &recordingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 2}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(publisher.topics) != 2 {
		t.Fatalf("expected 2 publishes in one batch, got %d", len(publisher.topics))
	}
	if got := store.PendingOutboxCount(); got != 1 {
		t.Fatalf("expected 1 row left for the next batch, got %d", got)
	}
}
