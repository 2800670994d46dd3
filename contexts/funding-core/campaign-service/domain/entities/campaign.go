package entities

import (
	"strings"
	"time"
)

type FundingMode string
type CampaignStatus string

const (
	ModeDonation       FundingMode = "donation"
	ModeAllOrNothing   FundingMode = "all_or_nothing"
	ModeKeepItAll      FundingMode = "keep_it_all"
	ModeMilestoneBased FundingMode = "milestone_based"

	StatusActive      CampaignStatus = "active"
	StatusCompleted   CampaignStatus = "completed"
	StatusUnderVoting CampaignStatus = "under_voting"
	StatusExpired     CampaignStatus = "expired"
	StatusFailed      CampaignStatus = "failed"
)

// FundingModes is the canonical ordinal order. Vote tallies are scanned in
// this order and exact ties resolve to the lower ordinal.
var FundingModes = []FundingMode{
	ModeDonation,
	ModeAllOrNothing,
	ModeKeepItAll,
	ModeMilestoneBased,
}

func ParseFundingMode(value string) (FundingMode, bool) {
	mode := FundingMode(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range FundingModes {
		if mode == known {
			return known, true
		}
	}
	return "", false
}

func (m FundingMode) Ordinal() int {
	for index, known := range FundingModes {
		if m == known {
			return index
		}
	}
	return -1
}

// Milestone is a funding checkpoint for milestone-based campaigns.
// Amounts across a campaign's milestones sum exactly to the target.
type Milestone struct {
	Description string
	Amount      int64
	Deadline    time.Time
	Completed   bool
	Votes       int64
	Approved    bool
}

type Campaign struct {
	CampaignID       int64
	Creator          string
	Name             string
	Description      string
	DriveLink        string
	TargetAmount     int64
	Deadline         time.Time
	OriginalDeadline time.Time
	RaisedAmount     int64
	FundsReleased    bool
	AllowedModes     []FundingMode
	Status           CampaignStatus
	MinContribution  int64
	MaxContribution  int64
	BackersCount     int
	Backers          []string
	VotingEnabled    bool
	VotingClosed     bool
	VotingEndTime    time.Time
	CurrentMode      FundingMode
	TotalVotes       int
	RequiredVotes    int
	ModeTallies      map[FundingMode]int64
	Milestones       []Milestone
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (c Campaign) AllowsMode(mode FundingMode) bool {
	for _, allowed := range c.AllowedModes {
		if allowed == mode {
			return true
		}
	}
	return false
}

func (c Campaign) HasBacker(identity string) bool {
	for _, backer := range c.Backers {
		if backer == identity {
			return true
		}
	}
	return false
}

// ValidateBasics checks the all-or-nothing creation preconditions. Callers
// must reject the whole request when this returns false.
func (c Campaign) ValidateBasics(now time.Time) bool {
	if strings.TrimSpace(c.Name) == "" {
		return false
	}
	if c.TargetAmount <= 0 {
		return false
	}
	if !c.Deadline.After(now) {
		return false
	}
	if len(c.AllowedModes) == 0 {
		return false
	}
	seen := make(map[FundingMode]bool, len(c.AllowedModes))
	for _, mode := range c.AllowedModes {
		if mode.Ordinal() < 0 || seen[mode] {
			return false
		}
		seen[mode] = true
	}
	if c.MinContribution < 0 || c.MaxContribution <= 0 {
		return false
	}
	if c.MinContribution > c.MaxContribution {
		return false
	}
	return c.validateMilestones()
}

// Milestone deadlines must be non-decreasing and never exceed the campaign
// deadline; amounts must sum exactly to the target. Milestones are required
// exactly when the milestone-based mode is among the allowed modes.
func (c Campaign) validateMilestones() bool {
	if !c.AllowsMode(ModeMilestoneBased) {
		return len(c.Milestones) == 0
	}
	if len(c.Milestones) == 0 {
		return false
	}
	var total int64
	previous := time.Time{}
	for _, milestone := range c.Milestones {
		if milestone.Amount <= 0 {
			return false
		}
		if milestone.Deadline.Before(previous) || milestone.Deadline.After(c.Deadline) {
			return false
		}
		previous = milestone.Deadline
		total += milestone.Amount
	}
	return total == c.TargetAmount
}

// SettleStatus applies the lazy, caller-triggered deadline transition and
// reports whether the status changed. There is no background scheduler; the
// persisted status may be stale until the next touching call.
func (c *Campaign) SettleStatus(now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if now.Before(c.Deadline) || c.RaisedAmount >= c.TargetAmount {
		return false
	}
	if c.AllowsMode(ModeAllOrNothing) {
		c.Status = StatusUnderVoting
	} else {
		c.Status = StatusExpired
	}
	return true
}

// WinningMode scans modes in canonical ordinal order and keeps the strictly
// greatest accumulated weight, so exact ties go to the lower ordinal.
func (c Campaign) WinningMode() FundingMode {
	winner := FundingModes[0]
	best := c.ModeTallies[winner]
	for _, mode := range FundingModes[1:] {
		if c.ModeTallies[mode] > best {
			winner = mode
			best = c.ModeTallies[mode]
		}
	}
	return winner
}

// FinalizeVoting closes the vote, records the winning mode, and resolves the
// under-voting status: an all-or-nothing win with a shortfall fails the
// campaign, every other outcome accepts the raised funds.
func (c *Campaign) FinalizeVoting() {
	winner := c.WinningMode()
	c.CurrentMode = winner
	c.VotingClosed = true
	if c.Status != StatusUnderVoting {
		return
	}
	if winner == ModeAllOrNothing && c.RaisedAmount < c.TargetAmount {
		c.Status = StatusFailed
	} else {
		c.Status = StatusCompleted
	}
}

func (c Campaign) RefundsAvailable() bool {
	return c.Status == StatusFailed ||
		(c.Status == StatusExpired && c.RaisedAmount < c.TargetAmount)
}

// Clone returns a detached read snapshot. The repository owns the canonical
// record; collaborators only ever see copies.
func (c Campaign) Clone() Campaign {
	snapshot := c
	snapshot.AllowedModes = append([]FundingMode(nil), c.AllowedModes...)
	snapshot.Backers = append([]string(nil), c.Backers...)
	snapshot.Milestones = append([]Milestone(nil), c.Milestones...)
	snapshot.ModeTallies = make(map[FundingMode]int64, len(c.ModeTallies))
	for mode, weight := range c.ModeTallies {
		snapshot.ModeTallies[mode] = weight
	}
	return snapshot
}
