package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *domain.User) error
	FindByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	SetActiveFunc   func(ctx context.Context, id uuid.UUID, active bool) error
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active)
	}
	return nil
}

// MockProjectRequestRepository is a mock implementation of ProjectRequestRepository
type MockProjectRequestRepository struct {
	CreateFunc                func(ctx context.Context, req *domain.ProjectRequest) error
	FindByIDFunc              func(ctx context.Context, id uuid.UUID) (*domain.ProjectRequest, error)
	ListFunc                  func(ctx context.Context, filter repository.ProjectRequestFilter) ([]*domain.ProjectRequest, error)
	TransitionStatusFunc      func(ctx context.Context, id uuid.UUID, from []domain.RequestStatus, to domain.RequestStatus) error
	CancelWithAssignmentsFunc func(ctx context.Context, id uuid.UUID, now time.Time) (int64, error)
}

func (m *MockProjectRequestRepository) Create(ctx context.Context, req *domain.ProjectRequest) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil
}

func (m *MockProjectRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProjectRequest, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockProjectRequestRepository) List(ctx context.Context, filter repository.ProjectRequestFilter) ([]*domain.ProjectRequest, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockProjectRequestRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []domain.RequestStatus, to domain.RequestStatus) error {
	if m.TransitionStatusFunc != nil {
		return m.TransitionStatusFunc(ctx, id, from, to)
	}
	return nil
}

func (m *MockProjectRequestRepository) CancelWithAssignments(ctx context.Context, id uuid.UUID, now time.Time) (int64, error) {
	if m.CancelWithAssignmentsFunc != nil {
		return m.CancelWithAssignmentsFunc(ctx, id, now)
	}
	return 0, nil
}

// MockAssignmentRepository is a mock implementation of AssignmentRepository
type MockAssignmentRepository struct {
	AcceptFunc                     func(ctx context.Context, requestID, freelancerID uuid.UUID, now time.Time) (*domain.ProjectAssignment, error)
	CancelFunc                     func(ctx context.Context, id uuid.UUID, now time.Time) (*domain.ProjectAssignment, error)
	AdvanceFunc                    func(ctx context.Context, id uuid.UUID, from, to domain.AssignmentStatus, now time.Time) error
	FindByIDFunc                   func(ctx context.Context, id uuid.UUID) (*domain.ProjectAssignment, error)
	FindByRequestAndFreelancerFunc func(ctx context.Context, requestID, freelancerID uuid.UUID) (*domain.ProjectAssignment, error)
	ListByFreelancerFunc           func(ctx context.Context, freelancerID uuid.UUID) ([]*domain.ProjectAssignment, error)
	ListByRequestFunc              func(ctx context.Context, requestID uuid.UUID) ([]*domain.ProjectAssignment, error)
}

func (m *MockAssignmentRepository) Accept(ctx context.Context, requestID, freelancerID uuid.UUID, now time.Time) (*domain.ProjectAssignment, error) {
	if m.AcceptFunc != nil {
		return m.AcceptFunc(ctx, requestID, freelancerID, now)
	}
	return nil, nil
}

func (m *MockAssignmentRepository) Cancel(ctx context.Context, id uuid.UUID, now time.Time) (*domain.ProjectAssignment, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, id, now)
	}
	return nil, nil
}

func (m *MockAssignmentRepository) Advance(ctx context.Context, id uuid.UUID, from, to domain.AssignmentStatus, now time.Time) error {
	if m.AdvanceFunc != nil {
		return m.AdvanceFunc(ctx, id, from, to, now)
	}
	return nil
}

func (m *MockAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProjectAssignment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockAssignmentRepository) FindByRequestAndFreelancer(ctx context.Context, requestID, freelancerID uuid.UUID) (*domain.ProjectAssignment, error) {
	if m.FindByRequestAndFreelancerFunc != nil {
		return m.FindByRequestAndFreelancerFunc(ctx, requestID, freelancerID)
	}
	return nil, nil
}

func (m *MockAssignmentRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*domain.ProjectAssignment, error) {
	if m.ListByFreelancerFunc != nil {
		return m.ListByFreelancerFunc(ctx, freelancerID)
	}
	return nil, nil
}

func (m *MockAssignmentRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.ProjectAssignment, error) {
	if m.ListByRequestFunc != nil {
		return m.ListByRequestFunc(ctx, requestID)
	}
	return nil, nil
}

// MockSettlementRepository is a mock implementation of SettlementRepository
type MockSettlementRepository struct {
	CreateFunc         func(ctx context.Context, settlement *domain.Settlement) error
	FindByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.Settlement, error)
	ListFunc           func(ctx context.Context, filter repository.SettlementFilter) ([]*domain.Settlement, error)
	AssignRoundFunc    func(ctx context.Context, id uuid.UUID, round domain.SettlementRound) error
	FindPendingIDsFunc func(ctx context.Context, year, quarter int, round domain.SettlementRound) ([]uuid.UUID, error)
	ClaimFunc          func(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	ReleaseStaleFunc   func(ctx context.Context, year, quarter int, round domain.SettlementRound, cutoff time.Time) (int64, error)
	ReleaseClaimFunc   func(ctx context.Context, id uuid.UUID, cutoff time.Time) error
	MarkCompletedFunc  func(ctx context.Context, id uuid.UUID, now time.Time) error
	MarkFailedFunc     func(ctx context.Context, id uuid.UUID, reason string, now time.Time) error
	ResetFailedFunc    func(ctx context.Context, id uuid.UUID) error
	SummaryFunc        func(ctx context.Context, year, quarter int) ([]repository.SettlementAggregate, error)
	CountByStatusFunc  func(ctx context.Context, status domain.SettlementStatus) (int64, error)
}

func (m *MockSettlementRepository) Create(ctx context.Context, settlement *domain.Settlement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, settlement)
	}
	return nil
}

func (m *MockSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Settlement, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockSettlementRepository) List(ctx context.Context, filter repository.SettlementFilter) ([]*domain.Settlement, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockSettlementRepository) AssignRound(ctx context.Context, id uuid.UUID, round domain.SettlementRound) error {
	if m.AssignRoundFunc != nil {
		return m.AssignRoundFunc(ctx, id, round)
	}
	return nil
}

func (m *MockSettlementRepository) FindPendingIDs(ctx context.Context, year, quarter int, round domain.SettlementRound) ([]uuid.UUID, error) {
	if m.FindPendingIDsFunc != nil {
		return m.FindPendingIDsFunc(ctx, year, quarter, round)
	}
	return nil, nil
}

func (m *MockSettlementRepository) Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, id, now)
	}
	return true, nil
}

func (m *MockSettlementRepository) ReleaseStaleClaims(ctx context.Context, year, quarter int, round domain.SettlementRound, cutoff time.Time) (int64, error) {
	if m.ReleaseStaleFunc != nil {
		return m.ReleaseStaleFunc(ctx, year, quarter, round, cutoff)
	}
	return 0, nil
}

func (m *MockSettlementRepository) ReleaseClaim(ctx context.Context, id uuid.UUID, cutoff time.Time) error {
	if m.ReleaseClaimFunc != nil {
		return m.ReleaseClaimFunc(ctx, id, cutoff)
	}
	return nil
}

func (m *MockSettlementRepository) MarkCompleted(ctx context.Context, id uuid.UUID, now time.Time) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(ctx, id, now)
	}
	return nil
}

func (m *MockSettlementRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id, reason, now)
	}
	return nil
}

func (m *MockSettlementRepository) ResetFailed(ctx context.Context, id uuid.UUID) error {
	if m.ResetFailedFunc != nil {
		return m.ResetFailedFunc(ctx, id)
	}
	return nil
}

func (m *MockSettlementRepository) Summary(ctx context.Context, year, quarter int) ([]repository.SettlementAggregate, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, year, quarter)
	}
	return nil, nil
}

func (m *MockSettlementRepository) CountByStatus(ctx context.Context, status domain.SettlementStatus) (int64, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, status)
	}
	return 0, nil
}

// MockRoundLocker is a mock implementation of lock.RoundLocker
type MockRoundLocker struct {
	AcquireFunc func(ctx context.Context, year, quarter int, round string) (func(), error)
}

func (m *MockRoundLocker) Acquire(ctx context.Context, year, quarter int, round string) (func(), error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, year, quarter, round)
	}
	return func() {}, nil
}

// MockDisburser is a mock implementation of Disburser
type MockDisburser struct {
	DisburseFunc func(ctx context.Context, settlement *domain.Settlement) error
}

func (m *MockDisburser) Disburse(ctx context.Context, settlement *domain.Settlement) error {
	if m.DisburseFunc != nil {
		return m.DisburseFunc(ctx, settlement)
	}
	return nil
}
