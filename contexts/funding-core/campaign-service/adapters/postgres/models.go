package postgresadapter

import (
	"encoding/json"
	"time"

	"fundry/contexts/funding-core/campaign-service/domain/entities"
)

type campaignCounterModel struct {
	ID             int64 `gorm:"column:id;primaryKey"`
	NextCampaignID int64 `gorm:"column:next_campaign_id"`
}

func (campaignCounterModel) TableName() string { return "campaign_counters" }

type campaignModel struct {
	ID               int64     `gorm:"column:id;primaryKey"`
	Creator          string    `gorm:"column:creator;index"`
	Name             string    `gorm:"column:name"`
	Description      string    `gorm:"column:description"`
	DriveLink        string    `gorm:"column:drive_link"`
	TargetAmount     int64     `gorm:"column:target_amount"`
	Deadline         time.Time `gorm:"column:deadline"`
	OriginalDeadline time.Time `gorm:"column:original_deadline"`
	RaisedAmount     int64     `gorm:"column:raised_amount"`
	FundsReleased    bool      `gorm:"column:funds_released"`
	AllowedModes     []byte    `gorm:"column:allowed_modes"`
	Status           string    `gorm:"column:status;index"`
	MinContribution  int64     `gorm:"column:min_contribution"`
	MaxContribution  int64     `gorm:"column:max_contribution"`
	BackersCount     int       `gorm:"column:backers_count"`
	Backers          []byte    `gorm:"column:backers"`
	VotingEnabled    bool      `gorm:"column:voting_enabled"`
	VotingClosed     bool      `gorm:"column:voting_closed"`
	VotingEndTime    time.Time `gorm:"column:voting_end_time"`
	CurrentMode      string    `gorm:"column:current_mode"`
	TotalVotes       int       `gorm:"column:total_votes"`
	RequiredVotes    int       `gorm:"column:required_votes"`
	ModeTallies      []byte    `gorm:"column:mode_tallies"`
	Milestones       []byte    `gorm:"column:milestones"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (campaignModel) TableName() string { return "campaigns" }

type contributionModel struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CampaignID    int64     `gorm:"column:campaign_id;index:idx_contributions_campaign_backer"`
	Backer        string    `gorm:"column:backer;index:idx_contributions_campaign_backer"`
	Amount        int64     `gorm:"column:amount"`
	Mode          string    `gorm:"column:mode"`
	ContributedAt time.Time `gorm:"column:contributed_at"`
	Refunded      bool      `gorm:"column:refunded"`
}

func (contributionModel) TableName() string { return "contributions" }

type voteModel struct {
	CampaignID int64     `gorm:"column:campaign_id;primaryKey;autoIncrement:false"`
	Voter      string    `gorm:"column:voter;primaryKey"`
	Mode       string    `gorm:"column:mode"`
	Weight     int64     `gorm:"column:weight"`
	CastAt     time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string { return "campaign_votes" }

type outboxModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	EventType    string     `gorm:"column:event_type;index"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "campaign_outbox" }

func campaignModelFromEntity(campaign entities.Campaign) (campaignModel, error) {
	modes, err := json.Marshal(campaign.AllowedModes)
	if err != nil {
		return campaignModel{}, err
	}
	backers, err := json.Marshal(campaign.Backers)
	if err != nil {
		return campaignModel{}, err
	}
	milestones, err := json.Marshal(campaign.Milestones)
	if err != nil {
		return campaignModel{}, err
	}
	tallies, err := json.Marshal(campaign.ModeTallies)
	if err != nil {
		return campaignModel{}, err
	}
	return campaignModel{
		ID:               campaign.CampaignID,
		Creator:          campaign.Creator,
		Name:             campaign.Name,
		Description:      campaign.Description,
		DriveLink:        campaign.DriveLink,
		TargetAmount:     campaign.TargetAmount,
		Deadline:         campaign.Deadline,
		OriginalDeadline: campaign.OriginalDeadline,
		RaisedAmount:     campaign.RaisedAmount,
		FundsReleased:    campaign.FundsReleased,
		AllowedModes:     modes,
		Status:           string(campaign.Status),
		MinContribution:  campaign.MinContribution,
		MaxContribution:  campaign.MaxContribution,
		BackersCount:     campaign.BackersCount,
		Backers:          backers,
		VotingEnabled:    campaign.VotingEnabled,
		VotingClosed:     campaign.VotingClosed,
		VotingEndTime:    campaign.VotingEndTime,
		CurrentMode:      string(campaign.CurrentMode),
		TotalVotes:       campaign.TotalVotes,
		RequiredVotes:    campaign.RequiredVotes,
		ModeTallies:      tallies,
		Milestones:       milestones,
		CreatedAt:        campaign.CreatedAt,
		UpdatedAt:        campaign.UpdatedAt,
	}, nil
}

func (m campaignModel) toEntity() (entities.Campaign, error) {
	var modes []entities.FundingMode
	if len(m.AllowedModes) > 0 {
		if err := json.Unmarshal(m.AllowedModes, &modes); err != nil {
			return entities.Campaign{}, err
		}
	}
	var backers []string
	if len(m.Backers) > 0 {
		if err := json.Unmarshal(m.Backers, &backers); err != nil {
			return entities.Campaign{}, err
		}
	}
	var milestones []entities.Milestone
	if len(m.Milestones) > 0 {
		if err := json.Unmarshal(m.Milestones, &milestones); err != nil {
			return entities.Campaign{}, err
		}
	}
	tallies := map[entities.FundingMode]int64{}
	if len(m.ModeTallies) > 0 {
		if err := json.Unmarshal(m.ModeTallies, &tallies); err != nil {
			return entities.Campaign{}, err
		}
	}
	return entities.Campaign{
		CampaignID:       m.ID,
		Creator:          m.Creator,
		Name:             m.Name,
		Description:      m.Description,
		DriveLink:        m.DriveLink,
		TargetAmount:     m.TargetAmount,
		Deadline:         m.Deadline,
		OriginalDeadline: m.OriginalDeadline,
		RaisedAmount:     m.RaisedAmount,
		FundsReleased:    m.FundsReleased,
		AllowedModes:     modes,
		Status:           entities.CampaignStatus(m.Status),
		MinContribution:  m.MinContribution,
		MaxContribution:  m.MaxContribution,
		BackersCount:     m.BackersCount,
		Backers:          backers,
		VotingEnabled:    m.VotingEnabled,
		VotingClosed:     m.VotingClosed,
		VotingEndTime:    m.VotingEndTime,
		CurrentMode:      entities.FundingMode(m.CurrentMode),
		TotalVotes:       m.TotalVotes,
		RequiredVotes:    m.RequiredVotes,
		ModeTallies:      tallies,
		Milestones:       milestones,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}

func rowsToEntities(rows []campaignModel) ([]entities.Campaign, error) {
	items := make([]entities.Campaign, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
