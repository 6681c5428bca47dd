package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stars-workflow-api/internal/domain"
)

// SubmissionRepository defines the interface for submission data access
type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	Supersede(ctx context.Context, priorID uuid.UUID, next *domain.Submission, now time.Time) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from []domain.SubmissionStatus, to domain.SubmissionStatus, reviewerID *uuid.UUID, now time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	FindActiveInSlot(ctx context.Context, slotKey string, slot int) (*domain.Submission, error)
	ListSlotHistory(ctx context.Context, slotKey string, slot int) ([]*domain.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID, activeOnly bool) ([]*domain.Submission, error)
	ListActiveByAssignmentIDs(ctx context.Context, assignmentIDs []uuid.UUID) ([]*domain.Submission, error)
}

type submissionRepositoryImpl struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new instance of SubmissionRepository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepositoryImpl{db: db}
}

// Create inserts the first version of a slot. A concurrent insert of the same
// (slot, version) loses on the unique index and yields ErrDuplicate.
func (r *submissionRepositoryImpl) Create(ctx context.Context, submission *domain.Submission) error {
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Supersede retires the active REJECTED row and inserts its successor in one transaction.
// The retire step is guarded on is_active, so of two racing resubmits only one proceeds.
func (r *submissionRepositoryImpl) Supersede(ctx context.Context, priorID uuid.UUID, next *domain.Submission, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Submission{}).
			Where("id = ? AND is_active = ? AND status = ?", priorID, true, domain.SubmissionStatusRejected).
			Updates(map[string]interface{}{
				"is_active":     false,
				"status":        domain.SubmissionStatusRevised,
				"superseded_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleState
		}

		if err := tx.Create(next).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		return nil
	})
}

// TransitionStatus applies a review edge to an active row currently in one of `from`
func (r *submissionRepositoryImpl) TransitionStatus(ctx context.Context, id uuid.UUID, from []domain.SubmissionStatus, to domain.SubmissionStatus, reviewerID *uuid.UUID, now time.Time) error {
	updates := map[string]interface{}{"status": to}
	if to.IsReviewDecision() {
		updates["reviewed_at"] = now
		updates["reviewed_by"] = reviewerID
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("id = ? AND is_active = ? AND status IN ?", id, true, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// FindByID finds a submission by ID
func (r *submissionRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	var submission domain.Submission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// FindActiveInSlot returns nil, nil when the slot is empty
func (r *submissionRepositoryImpl) FindActiveInSlot(ctx context.Context, slotKey string, slot int) (*domain.Submission, error) {
	var submission domain.Submission
	if err := r.db.WithContext(ctx).
		Where("slot_key = ? AND version_slot = ? AND is_active = ?", slotKey, slot, true).
		First(&submission).Error; err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// ListSlotHistory returns every version of a slot, newest first
func (r *submissionRepositoryImpl) ListSlotHistory(ctx context.Context, slotKey string, slot int) ([]*domain.Submission, error) {
	var submissions []*domain.Submission
	if err := r.db.WithContext(ctx).
		Where("slot_key = ? AND version_slot = ?", slotKey, slot).
		Order("version DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// ListByAssignment returns the assignment's submissions ordered by slot then version
func (r *submissionRepositoryImpl) ListByAssignment(ctx context.Context, assignmentID uuid.UUID, activeOnly bool) ([]*domain.Submission, error) {
	query := r.db.WithContext(ctx).Where("assignment_id = ?", assignmentID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var submissions []*domain.Submission
	if err := query.Order("version_slot ASC, version DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// ListActiveByAssignmentIDs returns the active rows of many assignments at once
func (r *submissionRepositoryImpl) ListActiveByAssignmentIDs(ctx context.Context, assignmentIDs []uuid.UUID) ([]*domain.Submission, error) {
	if len(assignmentIDs) == 0 {
		return []*domain.Submission{}, nil
	}

	var submissions []*domain.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id IN ? AND is_active = ?", assignmentIDs, true).
		Order("version_slot ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}
