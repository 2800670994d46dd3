package entities

import "time"

// Contribution is one ledger entry for a (campaign, backer) pair. Once
// refunded an entry is immutable and excluded from the raised amount and
// from vote weight.
type Contribution struct {
	CampaignID    int64
	Backer        string
	Amount        int64
	Mode          FundingMode
	ContributedAt time.Time
	Refunded      bool
}

// Vote records a backer's single disposition choice. Weight is the voter's
// total non-refunded contribution snapshotted at vote time; later
// contributions do not update it.
type Vote struct {
	CampaignID int64
	Voter      string
	Mode       FundingMode
	Weight     int64
	CastAt     time.Time
}

// NonRefundedTotal sums the live entries of a contribution list.
func NonRefundedTotal(contributions []Contribution) int64 {
	var total int64
	for _, entry := range contributions {
		if !entry.Refunded {
			total += entry.Amount
		}
	}
	return total
}
