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

type CastVoteCommand struct {
	CampaignID int64
	Voter      string
	Mode       entities.FundingMode
}

type CastVoteUseCase struct {
	Campaigns     ports.CampaignRepository
	Contributions ports.ContributionRepository
	Votes         ports.VoteRepository
	Outbox        ports.OutboxWriter
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

// Execute casts a weighted vote. The weight is the voter's non-refunded
// total snapshotted now; later contributions never update it. When the
// headcount quorum is reached the vote closes immediately without waiting
// for the window to expire.
func (uc CastVoteUseCase) Execute(ctx context.Context, cmd CastVoteCommand) (entities.Campaign, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(cmd.Voter)
	if voter == "" {
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

	if !campaign.VotingEnabled {
		return entities.Campaign{}, domainerrors.ErrVotingNotStarted
	}
	if campaign.VotingClosed || now.After(campaign.VotingEndTime) {
		return entities.Campaign{}, domainerrors.ErrVotingClosed
	}
	if !campaign.AllowsMode(cmd.Mode) {
		return entities.Campaign{}, domainerrors.ErrModeNotAllowed
	}
	if _, voted, err := uc.Votes.GetVote(ctx, campaign.CampaignID, voter); err != nil {
		return entities.Campaign{}, err
	} else if voted {
		return entities.Campaign{}, domainerrors.ErrAlreadyVoted
	}

	contributions, err := uc.Contributions.ListContributions(ctx, campaign.CampaignID, voter)
	if err != nil {
		return entities.Campaign{}, err
	}
	weight := entities.NonRefundedTotal(contributions)
	if weight <= 0 {
		return entities.Campaign{}, domainerrors.ErrNoContribution
	}

	if err := uc.Votes.SaveVote(ctx, entities.Vote{
		CampaignID: campaign.CampaignID,
		Voter:      voter,
		Mode:       cmd.Mode,
		Weight:     weight,
		CastAt:     now,
	}); err != nil {
		return entities.Campaign{}, err
	}

	campaign.ModeTallies[cmd.Mode] += weight
	campaign.TotalVotes++
	if campaign.TotalVotes >= campaign.RequiredVotes {
		campaign.FinalizeVoting()
	}
	campaign.UpdatedAt = now
	if err := uc.Campaigns.SaveCampaign(ctx, campaign); err != nil {
		return entities.Campaign{}, err
	}

	voteWeight := weight
	if err := appendNotification(ctx, uc.Outbox, uc.IDGen,
		"campaign.vote_cast", "vote",
		campaign.CampaignID, voter, &voteWeight, campaign.Status, now,
	); err != nil {
		return entities.Campaign{}, err
	}

	logger.Info("vote cast",
		"event", "campaign_vote_cast",
		"module", "funding-core/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"voter", voter,
		"mode", string(cmd.Mode),
		"weight", weight,
		"total_votes", campaign.TotalVotes,
		"voting_closed", campaign.VotingClosed,
		"status", string(campaign.Status),
	)
	return campaign, nil
}
