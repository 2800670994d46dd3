package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "fundry/contexts/funding-core/campaign-service/application"
	"fundry/contexts/funding-core/campaign-service/domain/entities"
	domainerrors "fundry/contexts/funding-core/campaign-service/domain/errors"
	"fundry/contexts/funding-core/campaign-service/ports"
)

type RefundCommand struct {
	CampaignID int64
	Caller     string
}

type RefundResult struct {
	Campaign entities.Campaign
	Amount   int64
}

type RefundUseCase struct {
	Campaigns     ports.CampaignRepository
	Contributions ports.ContributionRepository
	Treasury      ports.Treasury
	Outbox        ports.OutboxWriter
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

// Execute refunds the caller's entire non-refunded balance all-or-nothing:
// entries are marked refunded and the raised amount decremented before the
// transfer; a failed transfer restores both.
func (uc RefundUseCase) Execute(ctx context.Context, cmd RefundCommand) (RefundResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	if caller == "" {
		return RefundResult{}, domainerrors.ErrInvalidParameters
	}

	campaign, err := uc.Campaigns.GetCampaign(ctx, cmd.CampaignID)
	if err != nil {
		return RefundResult{}, err
	}
	now := uc.Clock.Now().UTC()
	if settleCampaign(&campaign, now) {
		if err := uc.Campaigns.SaveCampaign(ctx, campaign); err != nil {
			return RefundResult{}, err
		}
	}

	if !campaign.RefundsAvailable() {
		return RefundResult{}, domainerrors.ErrRefundsNotAvailable
	}

	refunded, err := uc.Contributions.SetContributionsRefunded(ctx, campaign.CampaignID, caller, true)
	if err != nil {
		return RefundResult{}, err
	}
	if refunded <= 0 {
		return RefundResult{}, domainerrors.ErrNoRefundableAmount
	}

	campaign.RaisedAmount -= refunded
	campaign.UpdatedAt = now
	if err := uc.Campaigns.SaveCampaign(ctx, campaign); err != nil {
		return RefundResult{}, err
	}

	if err := uc.Treasury.Disburse(ctx, campaign.CampaignID, []ports.Transfer{
		{To: caller, Amount: refunded},
	}); err != nil {
		campaign.RaisedAmount += refunded
		if saveErr := uc.Campaigns.SaveCampaign(ctx, campaign); saveErr != nil {
			return RefundResult{}, saveErr
		}
		if _, unmarkErr := uc.Contributions.SetContributionsRefunded(ctx, campaign.CampaignID, caller, false); unmarkErr != nil {
			return RefundResult{}, unmarkErr
		}
		logger.Error("refund transfer failed",
			"event", "campaign_refund_transfer_failed",
			"module", "funding-core/campaign-service",
			"layer", "application",
			"campaign_id", campaign.CampaignID,
			"backer", caller,
			"error", err.Error(),
		)
		return RefundResult{}, fmt.Errorf("%w: %v", domainerrors.ErrTransferFailed, err)
	}

	if err := appendNotification(ctx, uc.Outbox, uc.IDGen,
		"campaign.refund_issued", "refund",
		campaign.CampaignID, caller, &refunded, campaign.Status, now,
	); err != nil {
		return RefundResult{}, err
	}

	logger.Info("refund issued",
		"event", "campaign_refund_issued",
		"module", "funding-core/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"backer", caller,
		"amount", refunded,
		"raised_amount", campaign.RaisedAmount,
	)
	return RefundResult{Campaign: campaign, Amount: refunded}, nil
}
