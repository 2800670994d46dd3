package queries

import (
	"context"
	"log/slog"
	"strings"

	"fundry/contexts/funding-core/campaign-service/domain/entities"
	"fundry/contexts/funding-core/campaign-service/ports"
)

type GetContributionsUseCase struct {
	Contributions ports.ContributionRepository
	Logger        *slog.Logger
}

// Execute lists ledger entries in append order; an empty backer returns the
// whole campaign ledger.
func (uc GetContributionsUseCase) Execute(ctx context.Context, campaignID int64, backer string) ([]entities.Contribution, error) {
	return uc.Contributions.ListContributions(ctx, campaignID, strings.TrimSpace(backer))
}
