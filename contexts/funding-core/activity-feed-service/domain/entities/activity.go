package entities

import "time"

// ActivityEntry is one row of a campaign's audit trail, projected from the
// notification events the campaign-service emits.
type ActivityEntry struct {
	EntryID         string
	CampaignID      int64
	OperationKind   string
	Actor           string
	Amount          *int64
	ResultingStatus string
	OccurredAt      time.Time
	RecordedAt      time.Time
	SourceEventID   string
}
