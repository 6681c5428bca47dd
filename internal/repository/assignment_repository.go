package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stars-workflow-api/internal/domain"
)

// AssignmentRepository defines the interface for assignment data access.
// Accept and Cancel touch the request counter and the assignment row in one transaction.
type AssignmentRepository interface {
	Accept(ctx context.Context, requestID, freelancerID uuid.UUID, now time.Time) (*domain.ProjectAssignment, error)
	Cancel(ctx context.Context, id uuid.UUID, now time.Time) (*domain.ProjectAssignment, error)
	Advance(ctx context.Context, id uuid.UUID, from, to domain.AssignmentStatus, now time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProjectAssignment, error)
	FindByRequestAndFreelancer(ctx context.Context, requestID, freelancerID uuid.UUID) (*domain.ProjectAssignment, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*domain.ProjectAssignment, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.ProjectAssignment, error)
}

type assignmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepositoryImpl{db: db}
}

// Accept reserves a seat on the request and records the assignment.
//
// The seat is taken with a single compare-and-increment on the request row,
// so concurrent callers can never push current_assignees past max_assignees.
// The pair check runs after the increment; a duplicate rolls the increment back.
// A previously CANCELLED pair is reactivated since the pair is unique.
func (r *assignmentRepositoryImpl) Accept(ctx context.Context, requestID, freelancerID uuid.UUID, now time.Time) (*domain.ProjectAssignment, error) {
	var assignment *domain.ProjectAssignment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.ProjectRequest{}).
			Where("id = ? AND status = ? AND current_assignees < max_assignees", requestID, domain.RequestStatusOpen).
			Updates(map[string]interface{}{
				"current_assignees": gorm.Expr("current_assignees + 1"),
				"status": gorm.Expr("CASE WHEN current_assignees + 1 >= max_assignees THEN ? ELSE status END",
					string(domain.RequestStatusFull)),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCapacityExceeded
		}

		var existing domain.ProjectAssignment
		err := tx.Where("request_id = ? AND freelancer_id = ?", requestID, freelancerID).First(&existing).Error
		switch {
		case err == nil && existing.Status != domain.AssignmentStatusCancelled:
			return ErrDuplicate
		case err == nil:
			result := tx.Model(&domain.ProjectAssignment{}).
				Where("id = ? AND status = ?", existing.ID, domain.AssignmentStatusCancelled).
				Updates(map[string]interface{}{
					"status":       domain.AssignmentStatusAccepted,
					"accepted_at":  now,
					"cancelled_at": nil,
					"completed_at": nil,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrDuplicate
			}
			existing.Status = domain.AssignmentStatusAccepted
			existing.AcceptedAt = now
			existing.CancelledAt = nil
			existing.CompletedAt = nil
			assignment = &existing
			return nil
		case !IsNotFound(err):
			return err
		}

		created := &domain.ProjectAssignment{
			RequestID:    requestID,
			FreelancerID: freelancerID,
			Status:       domain.AssignmentStatusAccepted,
			AcceptedAt:   now,
		}
		if err := tx.Create(created).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		assignment = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// Cancel marks a non-terminal assignment CANCELLED and releases its seat.
// A FULL request reopens; CLOSED and CANCELLED requests keep their status.
func (r *assignmentRepositoryImpl) Cancel(ctx context.Context, id uuid.UUID, now time.Time) (*domain.ProjectAssignment, error) {
	var assignment domain.ProjectAssignment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&assignment).Error; err != nil {
			return err
		}

		result := tx.Model(&domain.ProjectAssignment{}).
			Where("id = ? AND status NOT IN ?", id, []domain.AssignmentStatus{
				domain.AssignmentStatusCompleted, domain.AssignmentStatusCancelled,
			}).
			Updates(map[string]interface{}{
				"status":       domain.AssignmentStatusCancelled,
				"cancelled_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleState
		}

		if err := tx.Model(&domain.ProjectRequest{}).
			Where("id = ? AND current_assignees > 0", assignment.RequestID).
			Updates(map[string]interface{}{
				"current_assignees": gorm.Expr("current_assignees - 1"),
				"status": gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END",
					string(domain.RequestStatusFull), string(domain.RequestStatusOpen)),
			}).Error; err != nil {
			return err
		}

		assignment.Status = domain.AssignmentStatusCancelled
		assignment.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Advance moves the assignment along one work-state edge, guarded on the current state
func (r *assignmentRepositoryImpl) Advance(ctx context.Context, id uuid.UUID, from, to domain.AssignmentStatus, now time.Time) error {
	updates := map[string]interface{}{"status": to}
	if to == domain.AssignmentStatusCompleted {
		updates["completed_at"] = now
	}

	result := r.db.WithContext(ctx).
		Model(&domain.ProjectAssignment{}).
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

// FindByID finds an assignment by ID
func (r *assignmentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProjectAssignment, error) {
	var assignment domain.ProjectAssignment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindByRequestAndFreelancer returns nil, nil when the pair has no row
func (r *assignmentRepositoryImpl) FindByRequestAndFreelancer(ctx context.Context, requestID, freelancerID uuid.UUID) (*domain.ProjectAssignment, error) {
	var assignment domain.ProjectAssignment
	if err := r.db.WithContext(ctx).
		Where("request_id = ? AND freelancer_id = ?", requestID, freelancerID).
		First(&assignment).Error; err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// ListByFreelancer returns the freelancer's assignments, most recently accepted first
func (r *assignmentRepositoryImpl) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*domain.ProjectAssignment, error) {
	var assignments []*domain.ProjectAssignment
	if err := r.db.WithContext(ctx).
		Where("freelancer_id = ?", freelancerID).
		Order("accepted_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListByRequest returns every assignment of a request in acceptance order
func (r *assignmentRepositoryImpl) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.ProjectAssignment, error) {
	var assignments []*domain.ProjectAssignment
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("accepted_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
