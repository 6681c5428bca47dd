package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stars-workflow-api/internal/domain"
)

// ProjectRequestFilter narrows ListProjectRequests
type ProjectRequestFilter struct {
	Status    *domain.RequestStatus
	CreatedBy *uuid.UUID
}

// ProjectRequestRepository defines the interface for project request data access
type ProjectRequestRepository interface {
	Create(ctx context.Context, req *domain.ProjectRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProjectRequest, error)
	List(ctx context.Context, filter ProjectRequestFilter) ([]*domain.ProjectRequest, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from []domain.RequestStatus, to domain.RequestStatus) error
	CancelWithAssignments(ctx context.Context, id uuid.UUID, now time.Time) (int64, error)
}

// projectRequestRepositoryImpl is the GORM implementation of ProjectRequestRepository
type projectRequestRepositoryImpl struct {
	db *gorm.DB
}

// NewProjectRequestRepository creates a new instance of ProjectRequestRepository
func NewProjectRequestRepository(db *gorm.DB) ProjectRequestRepository {
	return &projectRequestRepositoryImpl{db: db}
}

// Create creates a new project request
func (r *projectRequestRepositoryImpl) Create(ctx context.Context, req *domain.ProjectRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// FindByID finds a project request by ID
func (r *projectRequestRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProjectRequest, error) {
	var req domain.ProjectRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns project requests newest first
func (r *projectRequestRepositoryImpl) List(ctx context.Context, filter ProjectRequestFilter) ([]*domain.ProjectRequest, error) {
	query := r.db.WithContext(ctx).Model(&domain.ProjectRequest{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}

	var reqs []*domain.ProjectRequest
	if err := query.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// TransitionStatus moves the request to `to` only if it is currently in one of `from`
func (r *projectRequestRepositoryImpl) TransitionStatus(ctx context.Context, id uuid.UUID, from []domain.RequestStatus, to domain.RequestStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.ProjectRequest{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// CancelWithAssignments cancels an OPEN/FULL request and every non-terminal
// assignment under it in one transaction. Returns the number of assignments cancelled.
func (r *projectRequestRepositoryImpl) CancelWithAssignments(ctx context.Context, id uuid.UUID, now time.Time) (int64, error) {
	var cancelled int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.ProjectRequest{}).
			Where("id = ? AND status IN ?", id, []domain.RequestStatus{domain.RequestStatusOpen, domain.RequestStatusFull}).
			Update("status", domain.RequestStatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleState
		}

		result = tx.Model(&domain.ProjectAssignment{}).
			Where("request_id = ? AND status NOT IN ?", id, []domain.AssignmentStatus{
				domain.AssignmentStatusCompleted, domain.AssignmentStatusCancelled,
			}).
			Updates(map[string]interface{}{
				"status":       domain.AssignmentStatusCancelled,
				"cancelled_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		cancelled = result.RowsAffected

		if cancelled > 0 {
			if err := tx.Model(&domain.ProjectRequest{}).
				Where("id = ?", id).
				Update("current_assignees", gorm.Expr("current_assignees - ?", cancelled)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cancelled, nil
}
