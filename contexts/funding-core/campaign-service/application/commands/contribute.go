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

type ContributeCommand struct {
	CampaignID int64
	Backer     string
	Amount     int64
	Mode       entities.FundingMode
}

type ContributeUseCase struct {
	Campaigns     ports.CampaignRepository
	Contributions ports.ContributionRepository
	Outbox        ports.OutboxWriter
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

// Execute appends a ledger entry and updates the campaign totals. Backer
// membership is deduplicated on identity, not per contribution. Reaching the
// target completes the campaign immediately and collapses the effective
// deadline to now.
func (uc ContributeUseCase) Execute(ctx context.Context, cmd ContributeCommand) (entities.Campaign, error) {
	logger := application.ResolveLogger(uc.Logger)
	backer := strings.TrimSpace(cmd.Backer)
	if backer == "" || cmd.Amount <= 0 {
		return entities.Campaign{}, domainerrors.ErrInvalidParameters
	}

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

	// Settle runs first, so an active campaign is always inside its
	// deadline here. The missed-deadline statuses report the deadline; the
	// terminal ones report the status.
	switch campaign.Status {
	case entities.StatusActive:
	case entities.StatusUnderVoting, entities.StatusExpired:
		return entities.Campaign{}, domainerrors.ErrDeadlinePassed
	default:
		return entities.Campaign{}, domainerrors.ErrCampaignInactive
	}
	if cmd.Amount < campaign.MinContribution {
		return entities.Campaign{}, domainerrors.ErrBelowMinimum
	}
	if cmd.Amount > campaign.MaxContribution {
		return entities.Campaign{}, domainerrors.ErrAboveMaximum
	}
	if !campaign.AllowsMode(cmd.Mode) {
		return entities.Campaign{}, domainerrors.ErrModeNotAllowed
	}

	existing, err := uc.Contributions.ListContributions(ctx, campaign.CampaignID, backer)
	if err != nil {
		return entities.Campaign{}, err
	}

	if err := uc.Contributions.AppendContribution(ctx, entities.Contribution{
		CampaignID:    campaign.CampaignID,
		Backer:        backer,
		Amount:        cmd.Amount,
		Mode:          cmd.Mode,
		ContributedAt: now,
	}); err != nil {
		return entities.Campaign{}, err
	}

	campaign.RaisedAmount += cmd.Amount
	if len(existing) == 0 {
		campaign.Backers = append(campaign.Backers, backer)
		campaign.BackersCount++
	}
	if campaign.RaisedAmount >= campaign.TargetAmount {
		campaign.Status = entities.StatusCompleted
		campaign.Deadline = now
	}
	campaign.UpdatedAt = now
	if err := uc.Campaigns.SaveCampaign(ctx, campaign); err != nil {
		return entities.Campaign{}, err
	}

	amount := cmd.Amount
	if err := appendNotification(ctx, uc.Outbox, uc.IDGen,
		"campaign.contribution_recorded", "contribute",
		campaign.CampaignID, backer, &amount, campaign.Status, now,
	); err != nil {
		return entities.Campaign{}, err
	}

	logger.Info("contribution recorded",
		"event", "campaign_contribution_recorded",
		"module", "funding-core/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"backer", backer,
		"amount", cmd.Amount,
		"mode", string(cmd.Mode),
		"raised_amount", campaign.RaisedAmount,
		"status", string(campaign.Status),
	)
	return campaign, nil
}
