package queries

import (
	"context"
	"log/slog"
	"time"

	"fundry/contexts/funding-core/campaign-service/domain/entities"
	"fundry/contexts/funding-core/campaign-service/ports"
)

type GetCampaignUseCase struct {
	Campaigns ports.CampaignRepository
	Clock     ports.Clock
	Logger    *slog.Logger
}

// Execute returns a full read snapshot. Time-driven transitions are derived
// on the snapshot only; queries never persist them, so the stored status stays
// stale until the next mutating call touches the campaign.
func (uc GetCampaignUseCase) Execute(ctx context.Context, campaignID int64) (entities.Campaign, error) {
	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return entities.Campaign{}, err
	}
	deriveSnapshot(&campaign, uc.Clock.Now().UTC())
	return campaign, nil
}

// deriveSnapshot mirrors the lazy transitions on a detached copy.
func deriveSnapshot(campaign *entities.Campaign, now time.Time) {
	campaign.SettleStatus(now)
	if campaign.VotingEnabled && !campaign.VotingClosed && now.After(campaign.VotingEndTime) {
		campaign.FinalizeVoting()
	}
}
