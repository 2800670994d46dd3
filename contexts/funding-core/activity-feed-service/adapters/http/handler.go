package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"fundry/contexts/funding-core/activity-feed-service/application/queries"
	httptransport "fundry/contexts/funding-core/activity-feed-service/transport/http"
)

type Handler struct {
	ListActivity queries.ListActivityUseCase
	Logger       *slog.Logger
}

func (h Handler) CampaignActivityHandler(
	ctx context.Context,
	campaignID int64,
	limit int,
	offset int,
) (httptransport.ActivityPageResponse, error) {
	page, err := h.ListActivity.Execute(ctx, campaignID, limit, offset)
	if err != nil {
		return httptransport.ActivityPageResponse{}, err
	}
	resp := httptransport.ActivityPageResponse{
		CampaignID: page.CampaignID,
		Total:      page.Total,
		Items:      make([]httptransport.ActivityEntryDTO, 0, len(page.Items)),
	}
	for _, item := range page.Items {
		resp.Items = append(resp.Items, httptransport.ActivityEntryDTO{
			EntryID:         item.EntryID,
			CampaignID:      item.CampaignID,
			OperationKind:   item.OperationKind,
			Actor:           item.Actor,
			Amount:          item.Amount,
			ResultingStatus: item.ResultingStatus,
			OccurredAt:      item.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}
