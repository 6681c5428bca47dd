package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stars-workflow-api/internal/domain"
)

// FeedbackRepository defines the interface for feedback data access
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Feedback, error)
	ListBySubmission(ctx context.Context, submissionID uuid.UUID, status *domain.FeedbackStatus) ([]*domain.Feedback, error)
	Resolve(ctx context.Context, id, resolverID uuid.UUID, outcome domain.FeedbackStatus, now time.Time) error
	UpdatePending(ctx context.Context, id, authorID uuid.UUID, updates map[string]interface{}) error
}

type feedbackRepositoryImpl struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new instance of FeedbackRepository
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepositoryImpl{db: db}
}

func (r *feedbackRepositoryImpl) Create(ctx context.Context, feedback *domain.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Feedback, error) {
	var feedback domain.Feedback
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&feedback).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

// ListBySubmission returns feedback in creation order, optionally narrowed by status
func (r *feedbackRepositoryImpl) ListBySubmission(ctx context.Context, submissionID uuid.UUID, status *domain.FeedbackStatus) ([]*domain.Feedback, error) {
	query := r.db.WithContext(ctx).Where("submission_id = ?", submissionID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var feedbacks []*domain.Feedback
	if err := query.Order("created_at ASC").Find(&feedbacks).Error; err != nil {
		return nil, err
	}
	return feedbacks, nil
}

// Resolve closes a PENDING feedback. Time bounds and annotations are left untouched.
func (r *feedbackRepositoryImpl) Resolve(ctx context.Context, id, resolverID uuid.UUID, outcome domain.FeedbackStatus, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Where("id = ? AND status = ?", id, domain.FeedbackStatusPending).
		Updates(map[string]interface{}{
			"status":      outcome,
			"resolved_by": resolverID,
			"resolved_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// UpdatePending edits the author's own feedback while it is still PENDING
func (r *feedbackRepositoryImpl) UpdatePending(ctx context.Context, id, authorID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Where("id = ? AND user_id = ? AND status = ?", id, authorID, domain.FeedbackStatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}
