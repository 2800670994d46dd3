package queries

import (
	"context"
	"log/slog"
	"time"

	"fundry/contexts/funding-core/campaign-service/domain/entities"
	"fundry/contexts/funding-core/campaign-service/ports"
)

// VotingStatus is the read model the UI polls while a disposition vote runs.
// Closed and CurrentMode reflect window expiry even before a mutating call
// has persisted it.
type VotingStatus struct {
	CampaignID    int64
	VotingEnabled bool
	VotingClosed  bool
	VotingEndTime time.Time
	TotalVotes    int
	RequiredVotes int
	CurrentMode   entities.FundingMode
	Status        entities.CampaignStatus
	ModeTallies   map[entities.FundingMode]int64
}

type GetVotingStatusUseCase struct {
	Campaigns ports.CampaignRepository
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (uc GetVotingStatusUseCase) Execute(ctx context.Context, campaignID int64) (VotingStatus, error) {
	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return VotingStatus{}, err
	}
	deriveSnapshot(&campaign, uc.Clock.Now().UTC())
	return VotingStatus{
		CampaignID:    campaign.CampaignID,
		VotingEnabled: campaign.VotingEnabled,
		VotingClosed:  campaign.VotingClosed,
		VotingEndTime: campaign.VotingEndTime,
		TotalVotes:    campaign.TotalVotes,
		RequiredVotes: campaign.RequiredVotes,
		CurrentMode:   campaign.CurrentMode,
		Status:        campaign.Status,
		ModeTallies:   campaign.ModeTallies,
	}, nil
}
