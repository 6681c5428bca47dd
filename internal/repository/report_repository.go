package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stars-workflow-api/internal/domain"
)

// UserActivity is a read projection of a user's footprint across the workflow
type UserActivity struct {
	Assignments       int64
	Submissions       int64
	FeedbacksGiven    int64
	Settlements       int64
	CompletedEarnings decimal.Decimal
}

// ReportRepository serves aggregate read projections
type ReportRepository interface {
	UserActivity(ctx context.Context, userID uuid.UUID) (*UserActivity, error)
	CountRequestsByStatus(ctx context.Context, status domain.RequestStatus) (int64, error)
}

type reportRepositoryImpl struct {
	db *gorm.DB
}

// NewReportRepository creates a new instance of ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepositoryImpl{db: db}
}

func (r *reportRepositoryImpl) UserActivity(ctx context.Context, userID uuid.UUID) (*UserActivity, error) {
	db := r.db.WithContext(ctx)
	activity := &UserActivity{CompletedEarnings: decimal.Zero}

	if err := db.Model(&domain.ProjectAssignment{}).Where("freelancer_id = ?", userID).Count(&activity.Assignments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Submission{}).Where("user_id = ?", userID).Count(&activity.Submissions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Feedback{}).Where("user_id = ?", userID).Count(&activity.FeedbacksGiven).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Settlement{}).Where("user_id = ?", userID).Count(&activity.Settlements).Error; err != nil {
		return nil, err
	}

	var earnings decimal.NullDecimal
	if err := db.Model(&domain.Settlement{}).
		Select("SUM(amount)").
		Where("user_id = ? AND status = ? AND type IN ?", userID, domain.SettlementStatusCompleted,
			[]domain.SettlementType{domain.SettlementTypePayout, domain.SettlementTypeBonus}).
		Scan(&earnings).Error; err != nil {
		return nil, err
	}
	if earnings.Valid {
		activity.CompletedEarnings = earnings.Decimal.Round(2)
	}
	return activity, nil
}

func (r *reportRepositoryImpl) CountRequestsByStatus(ctx context.Context, status domain.RequestStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.ProjectRequest{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
