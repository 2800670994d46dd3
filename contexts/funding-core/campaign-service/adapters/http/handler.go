package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"fundry/contexts/funding-core/campaign-service/application/commands"
	"fundry/contexts/funding-core/campaign-service/application/queries"
	"fundry/contexts/funding-core/campaign-service/domain/entities"
	domainerrors "fundry/contexts/funding-core/campaign-service/domain/errors"
	httptransport "fundry/contexts/funding-core/campaign-service/transport/http"
)

type Handler struct {
	CreateCampaign    commands.CreateCampaignUseCase
	Contribute        commands.ContributeUseCase
	StartVoting       commands.StartVotingUseCase
	CastVote          commands.CastVoteUseCase
	ReleaseFunds      commands.ReleaseFundsUseCase
	Refund            commands.RefundUseCase
	CompleteMilestone commands.CompleteMilestoneUseCase
	GetCampaign       queries.GetCampaignUseCase
	GetCampaignCount  queries.GetCampaignCountUseCase
	ListByCreator     queries.ListCampaignsByCreatorUseCase
	ListByBacker      queries.ListCampaignsByBackerUseCase
	GetVotingStatus   queries.GetVotingStatusUseCase
	GetContributions  queries.GetContributionsUseCase
	Logger            *slog.Logger
}

func (h Handler) CreateCampaignHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateCampaignRequest,
) (httptransport.CampaignResponse, error) {
	deadline, err := parseTimestamp(req.Deadline)
	if err != nil {
		return httptransport.CampaignResponse{}, domainerrors.ErrInvalidParameters
	}
	modes, err := parseModes(req.AllowedModes)
	if err != nil {
		return httptransport.CampaignResponse{}, err
	}
	milestones := make([]commands.MilestoneInput, 0, len(req.Milestones))
	for _, m := range req.Milestones {
		milestoneDeadline, err := parseTimestamp(m.Deadline)
		if err != nil {
			return httptransport.CampaignResponse{}, domainerrors.ErrInvalidParameters
		}
		milestones = append(milestones, commands.MilestoneInput{
			Description: m.Description,
			Amount:      m.Amount,
			Deadline:    milestoneDeadline,
		})
	}

	campaign, err := h.CreateCampaign.Execute(ctx, commands.CreateCampaignCommand{
		Creator:         userID,
		Name:            req.Name,
		Description:     req.Description,
		DriveLink:       req.DriveLink,
		TargetAmount:    req.TargetAmount,
		Deadline:        deadline,
		AllowedModes:    modes,
		MinContribution: req.MinContribution,
		MaxContribution: req.MaxContribution,
		Milestones:      milestones,
	})
	if err != nil {
		return httptransport.CampaignResponse{}, err
	}
	return toCampaignDTO(campaign), nil
}

func (h Handler) ContributeHandler(
	ctx context.Context,
	userID string,
	campaignID int64,
	req httptransport.ContributeRequest,
) (httptransport.CampaignResponse, error) {
	mode, ok := entities.ParseFundingMode(req.Mode)
	if !ok {
		return httptransport.CampaignResponse{}, domainerrors.ErrModeNotAllowed
	}
	campaign, err := h.Contribute.Execute(ctx, commands.ContributeCommand{
		CampaignID: campaignID,
		Backer:     userID,
		Amount:     req.Amount,
		Mode:       mode,
	})
	if err != nil {
		return httptransport.CampaignResponse{}, err
	}
	return toCampaignDTO(campaign), nil
}

func (h Handler) StartVotingHandler(ctx context.Context, userID string, campaignID int64) (httptransport.CampaignResponse, error) {
	campaign, err := h.StartVoting.Execute(ctx, commands.StartVotingCommand{
		CampaignID: campaignID,
		Caller:     userID,
	})
	if err != nil {
		return httptransport.CampaignResponse{}, err
	}
	return toCampaignDTO(campaign), nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	userID string,
	campaignID int64,
	req httptransport.CastVoteRequest,
) (httptransport.CampaignResponse, error) {
	mode, ok := entities.ParseFundingMode(req.Mode)
	if !ok {
		return httptransport.CampaignResponse{}, domainerrors.ErrModeNotAllowed
	}
	campaign, err := h.CastVote.Execute(ctx, commands.CastVoteCommand{
		CampaignID: campaignID,
		Voter:      userID,
		Mode:       mode,
	})
	if err != nil {
		return httptransport.CampaignResponse{}, err
	}
	return toCampaignDTO(campaign), nil
}

func (h Handler) ReleaseFundsHandler(ctx context.Context, userID string, campaignID int64) (httptransport.ReleaseFundsResponse, error) {
	result, err := h.ReleaseFunds.Execute(ctx, commands.ReleaseFundsCommand{
		CampaignID: campaignID,
		Caller:     userID,
	})
	if err != nil {
		return httptransport.ReleaseFundsResponse{}, err
	}
	return httptransport.ReleaseFundsResponse{
		Campaign: toCampaignDTO(result.Campaign),
		Payout:   result.Payout,
		Fee:      result.Fee,
	}, nil
}

func (h Handler) RefundHandler(ctx context.Context, userID string, campaignID int64) (httptransport.RefundResponse, error) {
	result, err := h.Refund.Execute(ctx, commands.RefundCommand{
		CampaignID: campaignID,
		Caller:     userID,
	})
	if err != nil {
		return httptransport.RefundResponse{}, err
	}
	return httptransport.RefundResponse{
		Campaign: toCampaignDTO(result.Campaign),
		Amount:   result.Amount,
	}, nil
}

func (h Handler) CompleteMilestoneHandler(ctx context.Context, userID string, campaignID int64, index int) (httptransport.CampaignResponse, error) {
	campaign, err := h.CompleteMilestone.Execute(ctx, commands.CompleteMilestoneCommand{
		CampaignID: campaignID,
		Caller:     userID,
		Index:      index,
	})
	if err != nil {
		return httptransport.CampaignResponse{}, err
	}
	return toCampaignDTO(campaign), nil
}

func (h Handler) GetCampaignHandler(ctx context.Context, campaignID int64) (httptransport.CampaignResponse, error) {
	campaign, err := h.GetCampaign.Execute(ctx, campaignID)
	if err != nil {
		return httptransport.CampaignResponse{}, err
	}
	return toCampaignDTO(campaign), nil
}

func (h Handler) CampaignCountHandler(ctx context.Context) (httptransport.CampaignCountResponse, error) {
	count, err := h.GetCampaignCount.Execute(ctx)
	if err != nil {
		return httptransport.CampaignCountResponse{}, err
	}
	return httptransport.CampaignCountResponse{Count: count}, nil
}

func (h Handler) ListByCreatorHandler(ctx context.Context, creator string) (httptransport.CampaignListResponse, error) {
	campaigns, err := h.ListByCreator.Execute(ctx, creator)
	if err != nil {
		return httptransport.CampaignListResponse{}, err
	}
	return toCampaignListDTO(campaigns), nil
}

func (h Handler) ListByBackerHandler(ctx context.Context, backer string) (httptransport.CampaignListResponse, error) {
	campaigns, err := h.ListByBacker.Execute(ctx, backer)
	if err != nil {
		return httptransport.CampaignListResponse{}, err
	}
	return toCampaignListDTO(campaigns), nil
}

func (h Handler) VotingStatusHandler(ctx context.Context, campaignID int64) (httptransport.VotingStatusResponse, error) {
	status, err := h.GetVotingStatus.Execute(ctx, campaignID)
	if err != nil {
		return httptransport.VotingStatusResponse{}, err
	}
	tallies := make(map[string]int64, len(status.ModeTallies))
	for mode, weight := range status.ModeTallies {
		tallies[string(mode)] = weight
	}
	resp := httptransport.VotingStatusResponse{
		CampaignID:    status.CampaignID,
		VotingEnabled: status.VotingEnabled,
		VotingClosed:  status.VotingClosed,
		TotalVotes:    status.TotalVotes,
		RequiredVotes: status.RequiredVotes,
		CurrentMode:   string(status.CurrentMode),
		Status:        string(status.Status),
		ModeTallies:   tallies,
	}
	if !status.VotingEndTime.IsZero() {
		resp.VotingEndTime = status.VotingEndTime.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

func (h Handler) ContributionsHandler(ctx context.Context, campaignID int64, backer string) (httptransport.ContributionListResponse, error) {
	items, err := h.GetContributions.Execute(ctx, campaignID, backer)
	if err != nil {
		return httptransport.ContributionListResponse{}, err
	}
	resp := httptransport.ContributionListResponse{
		CampaignID: campaignID,
		Items:      make([]httptransport.ContributionDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, httptransport.ContributionDTO{
			Backer:        item.Backer,
			Amount:        item.Amount,
			Mode:          string(item.Mode),
			ContributedAt: item.ContributedAt.UTC().Format(time.RFC3339),
			Refunded:      item.Refunded,
		})
	}
	return resp, nil
}

func parseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

func parseModes(values []string) ([]entities.FundingMode, error) {
	modes := make([]entities.FundingMode, 0, len(values))
	for _, value := range values {
		mode, ok := entities.ParseFundingMode(value)
		if !ok {
			return nil, domainerrors.ErrInvalidParameters
		}
		modes = append(modes, mode)
	}
	return modes, nil
}

func toCampaignDTO(campaign entities.Campaign) httptransport.CampaignResponse {
	modes := make([]string, 0, len(campaign.AllowedModes))
	for _, mode := range campaign.AllowedModes {
		modes = append(modes, string(mode))
	}
	milestones := make([]httptransport.MilestoneDTO, 0, len(campaign.Milestones))
	for i, milestone := range campaign.Milestones {
		milestones = append(milestones, httptransport.MilestoneDTO{
			Index:       i,
			Description: milestone.Description,
			Amount:      milestone.Amount,
			Deadline:    milestone.Deadline.UTC().Format(time.RFC3339),
			Completed:   milestone.Completed,
		})
	}
	return httptransport.CampaignResponse{
		CampaignID:      campaign.CampaignID,
		Creator:         campaign.Creator,
		Name:            campaign.Name,
		Description:     campaign.Description,
		DriveLink:       campaign.DriveLink,
		TargetAmount:    campaign.TargetAmount,
		Deadline:        campaign.Deadline.UTC().Format(time.RFC3339),
		RaisedAmount:    campaign.RaisedAmount,
		FundsReleased:   campaign.FundsReleased,
		AllowedModes:    modes,
		CurrentMode:     string(campaign.CurrentMode),
		Status:          string(campaign.Status),
		MinContribution: campaign.MinContribution,
		MaxContribution: campaign.MaxContribution,
		BackersCount:    campaign.BackersCount,
		Milestones:      milestones,
		CreatedAt:       campaign.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toCampaignListDTO(campaigns []entities.Campaign) httptransport.CampaignListResponse {
	resp := httptransport.CampaignListResponse{
		Items: make([]httptransport.CampaignResponse, 0, len(campaigns)),
	}
	for _, campaign := range campaigns {
		resp.Items = append(resp.Items, toCampaignDTO(campaign))
	}
	return resp
}
