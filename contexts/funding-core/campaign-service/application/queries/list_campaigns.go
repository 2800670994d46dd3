package queries

import (
	"context"
	"log/slog"
	"strings"

	"fundry/contexts/funding-core/campaign-service/domain/entities"
	domainerrors "fundry/contexts/funding-core/campaign-service/domain/errors"
	"fundry/contexts/funding-core/campaign-service/ports"
)

type GetCampaignCountUseCase struct {
	Campaigns ports.CampaignRepository
	Logger    *slog.Logger
}

// Execute reports the number of successful creations; ids are dense and
// zero-based, so the count is also the next id.
func (uc GetCampaignCountUseCase) Execute(ctx context.Context) (int64, error) {
	return uc.Campaigns.CountCampaigns(ctx)
}

type ListCampaignsByCreatorUseCase struct {
	Campaigns ports.CampaignRepository
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (uc ListCampaignsByCreatorUseCase) Execute(ctx context.Context, creator string) ([]entities.Campaign, error) {
	creator = strings.TrimSpace(creator)
	if creator == "" {
		return nil, domainerrors.ErrInvalidParameters
	}
	items, err := uc.Campaigns.ListCampaignsByCreator(ctx, creator)
	if err != nil {
		return nil, err
	}
	now := uc.Clock.Now().UTC()
	for index := range items {
		deriveSnapshot(&items[index], now)
	}
	return items, nil
}

type ListCampaignsByBackerUseCase struct {
	Campaigns ports.CampaignRepository
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (uc ListCampaignsByBackerUseCase) Execute(ctx context.Context, backer string) ([]entities.Campaign, error) {
	backer = strings.TrimSpace(backer)
	if backer == "" {
		return nil, domainerrors.ErrInvalidParameters
	}
	items, err := uc.Campaigns.ListCampaignsByBacker(ctx, backer)
	if err != nil {
		return nil, err
	}
	now := uc.Clock.Now().UTC()
	for index := range items {
		deriveSnapshot(&items[index], now)
	}
	return items, nil
}
