package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"fundry/contexts/funding-core/campaign-service/domain/entities"
	domainerrors "fundry/contexts/funding-core/campaign-service/domain/errors"
	"fundry/contexts/funding-core/campaign-service/ports"

	"github.com/google/uuid"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

// Store is the in-memory registry used by tests and default wiring. It owns
// the canonical records and hands out detached snapshots only. The mutex
// protects the maps; operation-level serialization is the execution
// substrate's job, not the store's.
type Store struct {
	mu sync.RWMutex

	nextID        int64
	campaigns     map[int64]entities.Campaign
	contributions map[int64][]entities.Contribution
	votes         map[int64]map[string]entities.Vote
	outbox        map[string]outboxRecord
	outboxOrder   []string

	now *time.Time
}

func NewStore() *Store {
	return &Store{
		campaigns:     make(map[int64]entities.Campaign),
		contributions: make(map[int64][]entities.Contribution),
		votes:         make(map[int64]map[string]entities.Vote),
		outbox:        make(map[string]outboxRecord),
	}
}

// SetNow pins the clock for deterministic deadline/window tests. A zero
// store keeps real time.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pinned := now.UTC()
	s.now = &pinned
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now != nil {
		return *s.now
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) CreateCampaign(_ context.Context, campaign entities.Campaign) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaign.CampaignID = s.nextID
	s.campaigns[campaign.CampaignID] = campaign.Clone()
	s.nextID++
	return campaign.CampaignID, nil
}

func (s *Store) SaveCampaign(_ context.Context, campaign entities.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[campaign.CampaignID]; !ok {
		return domainerrors.ErrCampaignNotFound
	}
	s.campaigns[campaign.CampaignID] = campaign.Clone()
	return nil
}

func (s *Store) GetCampaign(_ context.Context, campaignID int64) (entities.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	campaign, ok := s.campaigns[campaignID]
	if !ok {
		return entities.Campaign{}, domainerrors.ErrCampaignNotFound
	}
	return campaign.Clone(), nil
}

func (s *Store) CountCampaigns(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID, nil
}

func (s *Store) ListCampaignsByCreator(_ context.Context, creator string) ([]entities.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Campaign, 0)
	for id := int64(0); id < s.nextID; id++ {
		if campaign, ok := s.campaigns[id]; ok && campaign.Creator == creator {
			items = append(items, campaign.Clone())
		}
	}
	return items, nil
}

func (s *Store) ListCampaignsByBacker(_ context.Context, backer string) ([]entities.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Campaign, 0)
	for id := int64(0); id < s.nextID; id++ {
		if campaign, ok := s.campaigns[id]; ok && campaign.HasBacker(backer) {
			items = append(items, campaign.Clone())
		}
	}
	return items, nil
}

func (s *Store) AppendContribution(_ context.Context, contribution entities.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[contribution.CampaignID]; !ok {
		return domainerrors.ErrCampaignNotFound
	}
	s.contributions[contribution.CampaignID] = append(s.contributions[contribution.CampaignID], contribution)
	return nil
}

func (s *Store) ListContributions(_ context.Context, campaignID int64, backer string) ([]entities.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Contribution, 0)
	for _, entry := range s.contributions[campaignID] {
		if backer == "" || entry.Backer == backer {
			items = append(items, entry)
		}
	}
	return items, nil
}

func (s *Store) SetContributionsRefunded(_ context.Context, campaignID int64, backer string, refunded bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	entries := s.contributions[campaignID]
	for index := range entries {
		if entries[index].Backer != backer || entries[index].Refunded == refunded {
			continue
		}
		entries[index].Refunded = refunded
		affected += entries[index].Amount
	}
	return affected, nil
}

func (s *Store) SaveVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byVoter, ok := s.votes[vote.CampaignID]
	if !ok {
		byVoter = make(map[string]entities.Vote)
		s.votes[vote.CampaignID] = byVoter
	}
	byVoter[vote.Voter] = vote
	return nil
}

func (s *Store) GetVote(_ context.Context, campaignID int64, voter string) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vote, ok := s.votes[campaignID][voter]
	return vote, ok, nil
}

func (s *Store) ListVotes(_ context.Context, campaignID int64) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Vote, 0, len(s.votes[campaignID]))
	for _, vote := range s.votes[campaignID] {
		items = append(items, vote)
	}
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	record := outboxRecord{
		Message: ports.OutboxMessage{
			OutboxID:     envelope.EventID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt,
		},
		Status: outboxStatusPending,
	}
	s.outbox[envelope.EventID] = record
	s.outboxOrder = append(s.outboxOrder, envelope.EventID)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, id := range s.outboxOrder {
		record := s.outbox[id]
		if record.Status != outboxStatusPending {
			continue
		}
		items = append(items, record.Message)
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.outbox[outboxID]
	if !ok {
		return domainerrors.ErrCampaignNotFound
	}
	record.Status = outboxStatusPublished
	record.PublishedAt = &publishedAt
	s.outbox[outboxID] = record
	return nil
}

// PendingOutboxCount supports tests asserting notification emission.
func (s *Store) PendingOutboxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.outbox {
		if record.Status == outboxStatusPending {
			count++
		}
	}
	return count
}
