package commands

import (
	"context"
	"log/slog"
	"strings"

	application "fundry/contexts/funding-core/campaign-service/application"
	"fundry/contexts/funding-core/campaign-service/domain/entities"
	domainerrors "fundry/contexts/funding-core/campaign-service/domain/errors"
	"fundry/contexts/funding-core/campaign-service/ports"
)

type CompleteMilestoneCommand struct {
	CampaignID int64
	Caller     string
	Index      int
}

type CompleteMilestoneUseCase struct {
	Campaigns ports.CampaignRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute marks one milestone of a milestone-based campaign as completed.
func (uc CompleteMilestoneUseCase) Execute(ctx context.Context, cmd CompleteMilestoneCommand) (entities.Campaign, error) {
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
	if cmd.Index < 0 || cmd.Index >= len(campaign.Milestones) {
		return entities.Campaign{}, domainerrors.ErrMilestoneNotFound
	}
	if campaign.Milestones[cmd.Index].Completed {
		return entities.Campaign{}, domainerrors.ErrMilestoneCompleted
	}

	campaign.Milestones[cmd.Index].Completed = true
	campaign.UpdatedAt = now
	if err := uc.Campaigns.SaveCampaign(ctx, campaign); err != nil {
		return entities.Campaign{}, err
	}

	amount := campaign.Milestones[cmd.Index].Amount
	if err := appendNotification(ctx, uc.Outbox, uc.IDGen,
		"campaign.milestone_completed", "complete_milestone",
		campaign.CampaignID, campaign.Creator, &amount, campaign.Status, now,
	); err != nil {
		return entities.Campaign{}, err
	}

	logger.Info("milestone completed",
		"event", "campaign_milestone_completed",
		"module", "funding-core/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"milestone_index", cmd.Index,
	)
	return campaign, nil
}
