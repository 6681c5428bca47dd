package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stars-workflow-api/internal/domain"
)

// SettlementFilter narrows ListSettlements. Nil fields are ignored.
type SettlementFilter struct {
	UserID        *uuid.UUID
	QuarterYear   *int
	QuarterNumber *int
	Status        *domain.SettlementStatus
}

// SettlementAggregate is one (type, status) bucket of a quarter summary
type SettlementAggregate struct {
	Type   domain.SettlementType
	Status domain.SettlementStatus
	Count  int64
	Total  decimal.Decimal
}

// SettlementRepository defines the interface for settlement data access.
// Every status update is guarded on the expected current status, so a COMPLETED row is never written again.
type SettlementRepository interface {
	Create(ctx context.Context, settlement *domain.Settlement) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Settlement, error)
	List(ctx context.Context, filter SettlementFilter) ([]*domain.Settlement, error)
	AssignRound(ctx context.Context, id uuid.UUID, round domain.SettlementRound) error
	FindPendingIDs(ctx context.Context, year, quarter int, round domain.SettlementRound) ([]uuid.UUID, error)
	Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	ReleaseStaleClaims(ctx context.Context, year, quarter int, round domain.SettlementRound, cutoff time.Time) (int64, error)
	ReleaseClaim(ctx context.Context, id uuid.UUID, cutoff time.Time) error
	MarkCompleted(ctx context.Context, id uuid.UUID, now time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, now time.Time) error
	ResetFailed(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context, year, quarter int) ([]SettlementAggregate, error)
	CountByStatus(ctx context.Context, status domain.SettlementStatus) (int64, error)
}

type settlementRepositoryImpl struct {
	db *gorm.DB
}

// NewSettlementRepository creates a new instance of SettlementRepository
func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepositoryImpl{db: db}
}

func (r *settlementRepositoryImpl) Create(ctx context.Context, settlement *domain.Settlement) error {
	return r.db.WithContext(ctx).Create(settlement).Error
}

func (r *settlementRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Settlement, error) {
	var settlement domain.Settlement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&settlement).Error; err != nil {
		return nil, err
	}
	return &settlement, nil
}

// List returns settlements newest first
func (r *settlementRepositoryImpl) List(ctx context.Context, filter SettlementFilter) ([]*domain.Settlement, error) {
	query := r.db.WithContext(ctx).Model(&domain.Settlement{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.QuarterYear != nil {
		query = query.Where("quarter_year = ?", *filter.QuarterYear)
	}
	if filter.QuarterNumber != nil {
		query = query.Where("quarter_number = ?", *filter.QuarterNumber)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var settlements []*domain.Settlement
	if err := query.Order("created_at DESC").Find(&settlements).Error; err != nil {
		return nil, err
	}
	return settlements, nil
}

// AssignRound sets the disbursement round of a PENDING settlement
func (r *settlementRepositoryImpl) AssignRound(ctx context.Context, id uuid.UUID, round domain.SettlementRound) error {
	return r.guardedUpdate(ctx, id, domain.SettlementStatusPending, map[string]interface{}{
		"settlement_round": round,
	})
}

// FindPendingIDs returns the ids of PENDING settlements in the batch key
func (r *settlementRepositoryImpl) FindPendingIDs(ctx context.Context, year, quarter int, round domain.SettlementRound) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&domain.Settlement{}).
		Where("quarter_year = ? AND quarter_number = ? AND settlement_round = ? AND status = ?",
			year, quarter, round, domain.SettlementStatusPending).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Claim moves a PENDING settlement to PROCESSING. False means another run holds it.
func (r *settlementRepositoryImpl) Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Settlement{}).
		Where("id = ? AND status = ?", id, domain.SettlementStatusPending).
		Updates(map[string]interface{}{
			"status":     domain.SettlementStatusProcessing,
			"claimed_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseStaleClaims returns PROCESSING rows of the batch key claimed before cutoff to PENDING.
// Such rows belong to a run that died between claim and outcome.
func (r *settlementRepositoryImpl) ReleaseStaleClaims(ctx context.Context, year, quarter int, round domain.SettlementRound, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Settlement{}).
		Where("quarter_year = ? AND quarter_number = ? AND settlement_round = ? AND status = ?",
			year, quarter, round, domain.SettlementStatusProcessing).
		Where("(claimed_at IS NULL OR claimed_at < ?)", cutoff).
		Updates(map[string]interface{}{
			"status":     domain.SettlementStatusPending,
			"claimed_at": nil,
		})
	return result.RowsAffected, result.Error
}

// ReleaseClaim returns one PROCESSING row claimed before cutoff to PENDING
func (r *settlementRepositoryImpl) ReleaseClaim(ctx context.Context, id uuid.UUID, cutoff time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Settlement{}).
		Where("id = ? AND status = ?", id, domain.SettlementStatusProcessing).
		Where("(claimed_at IS NULL OR claimed_at < ?)", cutoff).
		Updates(map[string]interface{}{
			"status":     domain.SettlementStatusPending,
			"claimed_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *settlementRepositoryImpl) MarkCompleted(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.guardedUpdate(ctx, id, domain.SettlementStatusProcessing, map[string]interface{}{
		"status":         domain.SettlementStatusCompleted,
		"processed_at":   now,
		"failure_reason": "",
	})
}

func (r *settlementRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	return r.guardedUpdate(ctx, id, domain.SettlementStatusProcessing, map[string]interface{}{
		"status":         domain.SettlementStatusFailed,
		"processed_at":   now,
		"failure_reason": reason,
	})
}

// ResetFailed returns a FAILED settlement to PENDING so the next round picks it up
func (r *settlementRepositoryImpl) ResetFailed(ctx context.Context, id uuid.UUID) error {
	return r.guardedUpdate(ctx, id, domain.SettlementStatusFailed, map[string]interface{}{
		"status":       domain.SettlementStatusPending,
		"processed_at": nil,
		"claimed_at":   nil,
	})
}

func (r *settlementRepositoryImpl) guardedUpdate(ctx context.Context, id uuid.UUID, from domain.SettlementStatus, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Settlement{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// Summary groups a quarter by type and status
func (r *settlementRepositoryImpl) Summary(ctx context.Context, year, quarter int) ([]SettlementAggregate, error) {
	var rows []struct {
		Type   domain.SettlementType
		Status domain.SettlementStatus
		Count  int64
		Total  decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).
		Model(&domain.Settlement{}).
		Select("type, status, COUNT(*) AS count, SUM(amount) AS total").
		Where("quarter_year = ? AND quarter_number = ?", year, quarter).
		Group("type, status").
		Order("type, status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	aggregates := make([]SettlementAggregate, 0, len(rows))
	for _, row := range rows {
		total := decimal.Zero
		if row.Total.Valid {
			total = row.Total.Decimal.Round(2)
		}
		aggregates = append(aggregates, SettlementAggregate{
			Type:   row.Type,
			Status: row.Status,
			Count:  row.Count,
			Total:  total,
		})
	}
	return aggregates, nil
}

func (r *settlementRepositoryImpl) CountByStatus(ctx context.Context, status domain.SettlementStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Settlement{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
