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

type ReleaseFundsCommand struct {
	CampaignID int64
	Caller     string
}

type ReleaseFundsResult struct {
	Campaign entities.Campaign
	Payout   int64
	Fee      int64
}

type ReleaseFundsUseCase struct {
	Campaigns    ports.CampaignRepository
	Treasury     ports.Treasury
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	FeeRateBps   int64
	AdminAccount string
	Logger       *slog.Logger
}

// Execute disburses the raised amount to the creator minus the platform
// fee. FundsReleased is persisted true before any transfer, so a reentrant
// call observes the flag and is rejected; a failed disbursement rolls the
// flag back and leaves no partially-paid state.
func (uc ReleaseFundsUseCase) Execute(ctx context.Context, cmd ReleaseFundsCommand) (ReleaseFundsResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	campaign, err := uc.Campaigns.GetCampaign(ctx, cmd.CampaignID)
	if err != nil {
		return ReleaseFundsResult{}, err
	}
	now := uc.Clock.Now().UTC()
	if settleCampaign(&campaign, now) {
		if err := uc.Campaigns.SaveCampaign(ctx, campaign); err != nil {
			return ReleaseFundsResult{}, err
		}
	}

	if strings.TrimSpace(cmd.Caller) != campaign.Creator {
		return ReleaseFundsResult{}, domainerrors.ErrNotCreator
	}
	if campaign.Status != entities.StatusCompleted {
		return ReleaseFundsResult{}, domainerrors.ErrNotCompleted
	}
	if campaign.FundsReleased {
		return ReleaseFundsResult{}, domainerrors.ErrAlreadyReleased
	}

	fee := campaign.RaisedAmount * uc.FeeRateBps / 10000
	payout := campaign.RaisedAmount - fee

	campaign.FundsReleased = true
	campaign.UpdatedAt = now
	if err := uc.Campaigns.SaveCampaign(ctx, campaign); err != nil {
		return ReleaseFundsResult{}, err
	}

	transfers := []ports.Transfer{{To: campaign.Creator, Amount: payout}}
	if fee > 0 {
		transfers = append(transfers, ports.Transfer{To: uc.AdminAccount, Amount: fee})
	}
	if err := uc.Treasury.Disburse(ctx, campaign.CampaignID, transfers); err != nil {
		campaign.FundsReleased = false
		if saveErr := uc.Campaigns.SaveCampaign(ctx, campaign); saveErr != nil {
			return ReleaseFundsResult{}, saveErr
		}
		logger.Error("funds release transfer failed",
			"event", "campaign_release_transfer_failed",
			"module", "funding-core/campaign-service",
			"layer", "application",
			"campaign_id", campaign.CampaignID,
			"error", err.Error(),
		)
		return ReleaseFundsResult{}, fmt.Errorf("%w: %v", domainerrors.ErrTransferFailed, err)
	}

	if err := appendNotification(ctx, uc.Outbox, uc.IDGen,
		"campaign.funds_released", "release_funds",
		campaign.CampaignID, campaign.Creator, &payout, campaign.Status, now,
	); err != nil {
		return ReleaseFundsResult{}, err
	}

	logger.Info("funds released",
		"event", "campaign_funds_released",
		"module", "funding-core/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"payout", payout,
		"fee", fee,
	)
	return ReleaseFundsResult{Campaign: campaign, Payout: payout, Fee: fee}, nil
}
