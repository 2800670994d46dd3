package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ActivityEntryDTO struct {
	EntryID         string `json:"entry_id"`
	CampaignID      int64  `json:"campaign_id"`
	OperationKind   string `json:"operation_kind"`
	Actor           string `json:"actor"`
	Amount          *int64 `json:"amount,omitempty"`
	ResultingStatus string `json:"resulting_status"`
	OccurredAt      string `json:"occurred_at"`
}

type ActivityPageResponse struct {
	CampaignID int64              `json:"campaign_id"`
	Total      int64              `json:"total"`
	Items      []ActivityEntryDTO `json:"items"`
}
