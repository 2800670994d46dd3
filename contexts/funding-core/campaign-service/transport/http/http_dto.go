package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MilestoneRequest struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Deadline    string `json:"deadline"`
}

type CreateCampaignRequest struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	DriveLink       string             `json:"drive_link,omitempty"`
	TargetAmount    int64              `json:"target_amount"`
	Deadline        string             `json:"deadline"`
	AllowedModes    []string           `json:"allowed_modes"`
	MinContribution int64              `json:"min_contribution"`
	MaxContribution int64              `json:"max_contribution"`
	Milestones      []MilestoneRequest `json:"milestones,omitempty"`
}

type MilestoneDTO struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Deadline    string `json:"deadline"`
	Completed   bool   `json:"completed"`
}

type CampaignResponse struct {
	CampaignID      int64          `json:"campaign_id"`
	Creator         string         `json:"creator"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	DriveLink       string         `json:"drive_link,omitempty"`
	TargetAmount    int64          `json:"target_amount"`
	Deadline        string         `json:"deadline"`
	RaisedAmount    int64          `json:"raised_amount"`
	FundsReleased   bool           `json:"funds_released"`
	AllowedModes    []string       `json:"allowed_modes"`
	CurrentMode     string         `json:"current_mode,omitempty"`
	Status          string         `json:"status"`
	MinContribution int64          `json:"min_contribution"`
	MaxContribution int64          `json:"max_contribution"`
	BackersCount    int            `json:"backers_count"`
	Milestones      []MilestoneDTO `json:"milestones,omitempty"`
	CreatedAt       string         `json:"created_at"`
}

type CampaignListResponse struct {
	Items []CampaignResponse `json:"items"`
}

type CampaignCountResponse struct {
	Count int64 `json:"count"`
}

type ContributeRequest struct {
	Amount int64  `json:"amount"`
	Mode   string `json:"mode"`
}

type ContributionDTO struct {
	Backer        string `json:"backer"`
	Amount        int64  `json:"amount"`
	Mode          string `json:"mode"`
	ContributedAt string `json:"contributed_at"`
	Refunded      bool   `json:"refunded"`
}

type ContributionListResponse struct {
	CampaignID int64             `json:"campaign_id"`
	Items      []ContributionDTO `json:"items"`
}

type CastVoteRequest struct {
	Mode string `json:"mode"`
}

type VotingStatusResponse struct {
	CampaignID    int64            `json:"campaign_id"`
	VotingEnabled bool             `json:"voting_enabled"`
	VotingClosed  bool             `json:"voting_closed"`
	VotingEndTime string           `json:"voting_end_time,omitempty"`
	TotalVotes    int              `json:"total_votes"`
	RequiredVotes int              `json:"required_votes"`
	CurrentMode   string           `json:"current_mode,omitempty"`
	Status        string           `json:"status"`
	ModeTallies   map[string]int64 `json:"mode_tallies"`
}

type ReleaseFundsResponse struct {
	Campaign CampaignResponse `json:"campaign"`
	Payout   int64            `json:"payout"`
	Fee      int64            `json:"fee"`
}

type RefundResponse struct {
	Campaign CampaignResponse `json:"campaign"`
	Amount   int64            `json:"amount"`
}
