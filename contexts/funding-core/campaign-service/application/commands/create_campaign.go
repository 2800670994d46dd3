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

type MilestoneInput struct {
	Description string
	Amount      int64
	Deadline    time.Time
}

type CreateCampaignCommand struct {
	Creator         string
	Name            string
	Description     string
	DriveLink       string
	TargetAmount    int64
	Deadline        time.Time
	AllowedModes    []entities.FundingMode
	MinContribution int64
	MaxContribution int64
	Milestones      []MilestoneInput
}

type CreateCampaignUseCase struct {
	Campaigns ports.CampaignRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute validates and creates a campaign all-or-nothing: on any violation
// the call fails and no partial record is ever visible. The repository
// assigns the next dense id.
func (uc CreateCampaignUseCase) Execute(ctx context.Context, cmd CreateCampaignCommand) (entities.Campaign, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.Clock.Now().UTC()

	if strings.TrimSpace(cmd.Creator) == "" {
		return entities.Campaign{}, domainerrors.ErrInvalidParameters
	}

	milestones := make([]entities.Milestone, 0, len(cmd.Milestones))
	for _, input := range cmd.Milestones {
		milestones = append(milestones, entities.Milestone{
			Description: strings.TrimSpace(input.Description),
			Amount:      input.Amount,
			Deadline:    input.Deadline.UTC(),
		})
	}

	campaign := entities.Campaign{
		Creator:          strings.TrimSpace(cmd.Creator),
		Name:             strings.TrimSpace(cmd.Name),
		Description:      strings.TrimSpace(cmd.Description),
		DriveLink:        strings.TrimSpace(cmd.DriveLink),
		TargetAmount:     cmd.TargetAmount,
		Deadline:         cmd.Deadline.UTC(),
		OriginalDeadline: cmd.Deadline.UTC(),
		AllowedModes:     append([]entities.FundingMode(nil), cmd.AllowedModes...),
		Status:           entities.StatusActive,
		MinContribution:  cmd.MinContribution,
		MaxContribution:  cmd.MaxContribution,
		ModeTallies:      make(map[entities.FundingMode]int64, len(entities.FundingModes)),
		Milestones:       milestones,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if len(campaign.AllowedModes) == 1 {
		campaign.CurrentMode = campaign.AllowedModes[0]
	}
	if !campaign.ValidateBasics(now) {
		return entities.Campaign{}, domainerrors.ErrInvalidParameters
	}

	campaignID, err := uc.Campaigns.CreateCampaign(ctx, campaign)
	if err != nil {
		return entities.Campaign{}, err
	}
	campaign.CampaignID = campaignID

	if err := appendNotification(ctx, uc.Outbox, uc.IDGen,
		"campaign.created", "create_campaign",
		campaignID, campaign.Creator, nil, campaign.Status, now,
	); err != nil {
		return entities.Campaign{}, err
	}

	logger.Info("campaign created",
		"event", "campaign_created",
		"module", "funding-core/campaign-service",
		"layer", "application",
		"campaign_id", campaignID,
		"creator", campaign.Creator,
		"target_amount", campaign.TargetAmount,
	)
	return campaign, nil
}
