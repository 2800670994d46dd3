package ports

import (
	"context"
	"time"

	"fundry/contexts/funding-core/campaign-service/domain/entities"
	sharedevents "fundry/internal/shared/events"
)

// CampaignRepository owns the canonical campaign records. CreateCampaign
// assigns the next dense, zero-based id; ids are never reused.
type CampaignRepository interface {
	CreateCampaign(ctx context.Context, campaign entities.Campaign) (int64, error)
	SaveCampaign(ctx context.Context, campaign entities.Campaign) error
	GetCampaign(ctx context.Context, campaignID int64) (entities.Campaign, error)
	CountCampaigns(ctx context.Context) (int64, error)
	ListCampaignsByCreator(ctx context.Context, creator string) ([]entities.Campaign, error)
	ListCampaignsByBacker(ctx context.Context, backer string) ([]entities.Campaign, error)
}

// ContributionRepository stores append-only ledger entries. An empty backer
// filter lists every entry of the campaign in append order.
type ContributionRepository interface {
	AppendContribution(ctx context.Context, contribution entities.Contribution) error
	ListContributions(ctx context.Context, campaignID int64, backer string) ([]entities.Contribution, error)
	// SetContributionsRefunded flips only entries whose flag differs and
	// returns the affected sum. The false direction exists solely so a failed
	// transfer can roll its own marks back.
	SetContributionsRefunded(ctx context.Context, campaignID int64, backer string, refunded bool) (int64, error)
}

type VoteRepository interface {
	SaveVote(ctx context.Context, vote entities.Vote) error
	GetVote(ctx context.Context, campaignID int64, voter string) (entities.Vote, bool, error)
	ListVotes(ctx context.Context, campaignID int64) ([]entities.Vote, error)
}

// Transfer is one value movement instruction in the smallest currency unit.
type Transfer struct {
	To     string
	Amount int64
}

// Treasury executes a disbursement batch all-or-nothing: either every
// transfer lands or none does. Bookkeeping is always committed before
// Disburse is called.
type Treasury interface {
	Disburse(ctx context.Context, campaignID int64, transfers []Transfer) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = sharedevents.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
