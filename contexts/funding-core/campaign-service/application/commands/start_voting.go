package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "fundry/contexts/funding-core/campaign-service/application"
	"fundry/contexts/funding-core/campaign-service/domain/entities"
	domainerrors "fundry/contexts/funding-core/campaign-service/domain/errors"
	"fundry/contexts/funding-core/campaign-service/ports"
)

const defaultVotingWindow = 72 * time.Hour

type StartVotingCommand struct {
	CampaignID int64
	Caller     string
}

type StartVotingUseCase struct {
	Campaigns    ports.CampaignRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	VotingWindow time.Duration
	Logger       *slog.Logger
}

// Execute opens the disposition vote. The headcount quorum
// (floor(backers/2)) decides when the vote may close early; the weighted
// tally decides the winner. The two metrics are intentionally distinct.
func (uc StartVotingUseCase) Execute(ctx context.Context, cmd StartVotingCommand) (entities.Campaign, error) {
	logger := application.ResolveLogger(uc.Logger)
	campaign, err := uc.Campaigns.GetCampaign(ctx, cmd.CampaignID)
	if err != nil {
		return entities.Campaign{}, err
	}
	now := uc.Clock.Now().UTC()
	if settleCampaign(&campaign, now) {
		if err := uc.Campaigns.SaveCampaign(ctx, campaign); err != nil {
			return entities.Campaign{}, err
		}
	}

	if strings.TrimSpace(cmd.Caller) != campaign.Creator {
		return entities.Campaign{}, domainerrors.ErrNotCreator
	}
	if campaign.VotingEnabled {
		return entities.Campaign{}, domainerrors.ErrVotingAlreadyStarted
	}
	if campaign.RaisedAmount < campaign.TargetAmount && now.Before(campaign.Deadline) {
		return entities.Campaign{}, domainerrors.ErrVotingNotAvailable
	}

	window := uc.VotingWindow
	if window <= 0 {
		window = defaultVotingWindow
	}
	campaign.VotingEnabled = true
	campaign.VotingClosed = false
	campaign.VotingEndTime = now.Add(window)
	campaign.TotalVotes = 0
	campaign.RequiredVotes = campaign.BackersCount / 2
	campaign.UpdatedAt = now
	if err := uc.Campaigns.SaveCampaign(ctx, campaign); err != nil {
		return entities.Campaign{}, err
	}

	if err := appendNotification(ctx, uc.Outbox, uc.IDGen,
		"campaign.voting_started", "start_voting",
		campaign.CampaignID, campaign.Creator, nil, campaign.Status, now,
	); err != nil {
		return entities.Campaign{}, err
	}

	logger.Info("voting started",
		"event", "campaign_voting_started",
		"module", "funding-core/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"voting_end_time", campaign.VotingEndTime,
		"required_votes", campaign.RequiredVotes,
	)
	return campaign, nil
}
