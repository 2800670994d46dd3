package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"fundry/contexts/funding-core/campaign-service/domain/entities"
	domainerrors "fundry/contexts/funding-core/campaign-service/domain/errors"
	"fundry/contexts/funding-core/campaign-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// AutoMigrate creates the campaign-service tables, including the single-row
// counter that backs dense id allocation.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&campaignCounterModel{},
		&campaignModel{},
		&contributionModel{},
		&voteModel{},
		&outboxModel{},
	)
}

// CreateCampaign allocates the next dense id under a row lock so ids stay
// gapless and monotonic even though the underlying sequence machinery is
// not.
func (r *Repository) CreateCampaign(ctx context.Context, campaign entities.Campaign) (int64, error) {
	var assigned int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter campaignCounterModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", 1).
			First(&counter).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			counter = campaignCounterModel{ID: 1, NextCampaignID: 0}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		}

		assigned = counter.NextCampaignID
		campaign.CampaignID = assigned
		row, err := campaignModelFromEntity(campaign)
		if err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrInvalidParameters
			}
			return err
		}

		return tx.Model(&campaignCounterModel{}).
			Where("id = ?", 1).
			Update("next_campaign_id", assigned+1).Error
	})
	if err != nil {
		return 0, r.logError("campaign_repo_create_failed", err, "creator", campaign.Creator)
	}
	return assigned, nil
}

func (r *Repository) SaveCampaign(ctx context.Context, campaign entities.Campaign) error {
	row, err := campaignModelFromEntity(campaign)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&campaignModel{}).
		Where("id = ?", campaign.CampaignID).
		Select("*").
		Omit("id", "created_at").
		Updates(&row)
	if result.Error != nil {
		return r.logError("campaign_repo_save_failed", result.Error, "campaign_id", campaign.CampaignID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCampaignNotFound
	}
	return nil
}

func (r *Repository) GetCampaign(ctx context.Context, campaignID int64) (entities.Campaign, error) {
	var row campaignModel
	err := r.db.WithContext(ctx).Where("id = ?", campaignID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Campaign{}, domainerrors.ErrCampaignNotFound
		}
		return entities.Campaign{}, r.logError("campaign_repo_get_failed", err, "campaign_id", campaignID)
	}
	return row.toEntity()
}

func (r *Repository) CountCampaigns(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&campaignModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("campaign_repo_count_failed", err)
	}
	return count, nil
}

func (r *Repository) ListCampaignsByCreator(ctx context.Context, creator string) ([]entities.Campaign, error) {
	var rows []campaignModel
	err := r.db.WithContext(ctx).
		Where("creator = ?", creator).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("campaign_repo_list_by_creator_failed", err, "creator", creator)
	}
	return rowsToEntities(rows)
}

func (r *Repository) ListCampaignsByBacker(ctx context.Context, backer string) ([]entities.Campaign, error) {
	var rows []campaignModel
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&contributionModel{}).
			Select("DISTINCT campaign_id").
			Where("backer = ?", backer)).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("campaign_repo_list_by_backer_failed", err, "backer", backer)
	}
	return rowsToEntities(rows)
}

func (r *Repository) AppendContribution(ctx context.Context, contribution entities.Contribution) error {
	row := contributionModel{
		CampaignID:    contribution.CampaignID,
		Backer:        contribution.Backer,
		Amount:        contribution.Amount,
		Mode:          string(contribution.Mode),
		ContributedAt: contribution.ContributedAt,
		Refunded:      contribution.Refunded,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("campaign_repo_append_contribution_failed", err,
			"campaign_id", contribution.CampaignID,
			"backer", contribution.Backer,
		)
	}
	return nil
}

func (r *Repository) ListContributions(ctx context.Context, campaignID int64, backer string) ([]entities.Contribution, error) {
	query := r.db.WithContext(ctx).Where("campaign_id = ?", campaignID)
	if backer != "" {
		query = query.Where("backer = ?", backer)
	}
	var rows []contributionModel
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, r.logError("campaign_repo_list_contributions_failed", err, "campaign_id", campaignID)
	}
	items := make([]entities.Contribution, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Contribution{
			CampaignID:    row.CampaignID,
			Backer:        row.Backer,
			Amount:        row.Amount,
			Mode:          entities.FundingMode(row.Mode),
			ContributedAt: row.ContributedAt,
			Refunded:      row.Refunded,
		})
	}
	return items, nil
}

func (r *Repository) SetContributionsRefunded(ctx context.Context, campaignID int64, backer string, refunded bool) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []contributionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("campaign_id = ? AND backer = ? AND refunded = ?", campaignID, backer, !refunded).
			Order("id asc").
			Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			affected += row.Amount
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Model(&contributionModel{}).
			Where("campaign_id = ? AND backer = ? AND refunded = ?", campaignID, backer, !refunded).
			Update("refunded", refunded).Error
	})
	if err != nil {
		return 0, r.logError("campaign_repo_set_refunded_failed", err,
			"campaign_id", campaignID,
			"backer", backer,
		)
	}
	return affected, nil
}

func (r *Repository) SaveVote(ctx context.Context, vote entities.Vote) error {
	row := voteModel{
		CampaignID: vote.CampaignID,
		Voter:      vote.Voter,
		Mode:       string(vote.Mode),
		Weight:     vote.Weight,
		CastAt:     vote.CastAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyVoted
		}
		return r.logError("campaign_repo_save_vote_failed", err,
			"campaign_id", vote.CampaignID,
			"voter", vote.Voter,
		)
	}
	return nil
}

func (r *Repository) GetVote(ctx context.Context, campaignID int64, voter string) (entities.Vote, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND voter = ?", campaignID, voter).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("campaign_repo_get_vote_failed", err,
			"campaign_id", campaignID,
			"voter", voter,
		)
	}
	return entities.Vote{
		CampaignID: row.CampaignID,
		Voter:      row.Voter,
		Mode:       entities.FundingMode(row.Mode),
		Weight:     row.Weight,
		CastAt:     row.CastAt,
	}, true, nil
}

func (r *Repository) ListVotes(ctx context.Context, campaignID int64) ([]entities.Vote, error) {
	var rows []voteModel
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("cast_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("campaign_repo_list_votes_failed", err, "campaign_id", campaignID)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Vote{
			CampaignID: row.CampaignID,
			Voter:      row.Voter,
			Mode:       entities.FundingMode(row.Mode),
			Weight:     row.Weight,
			CastAt:     row.CastAt,
		})
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		ID:           envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("campaign_repo_append_outbox_failed", err, "event_id", envelope.EventID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("campaign_repo_list_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.ID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt,
		})
	if result.Error != nil {
		return r.logError("campaign_repo_mark_outbox_failed", result.Error, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "funding-core/campaign-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("campaign repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
