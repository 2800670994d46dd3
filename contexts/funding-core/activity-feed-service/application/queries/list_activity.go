package queries

import (
	"context"
	"log/slog"

	"fundry/contexts/funding-core/activity-feed-service/domain/entities"
	domainerrors "fundry/contexts/funding-core/activity-feed-service/domain/errors"
	"fundry/contexts/funding-core/activity-feed-service/ports"
)

const defaultPageSize = 50

type ActivityPage struct {
	CampaignID int64
	Total      int64
	Items      []entities.ActivityEntry
}

type ListActivityUseCase struct {
	Feed   ports.FeedRepository
	Logger *slog.Logger
}

// Execute pages through a campaign's activity trail in arrival order.
func (uc ListActivityUseCase) Execute(ctx context.Context, campaignID int64, limit int, offset int) (ActivityPage, error) {
	if campaignID < 0 || limit < 0 || offset < 0 {
		return ActivityPage{}, domainerrors.ErrInvalidParameters
	}
	if limit == 0 {
		limit = defaultPageSize
	}
	total, err := uc.Feed.CountEntries(ctx, campaignID)
	if err != nil {
		return ActivityPage{}, err
	}
	items, err := uc.Feed.ListEntries(ctx, campaignID, limit, offset)
	if err != nil {
		return ActivityPage{}, err
	}
	return ActivityPage{
		CampaignID: campaignID,
		Total:      total,
		Items:      items,
	}, nil
}
