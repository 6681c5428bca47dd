package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/repository"
	"stars-workflow-api/internal/response"
)

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestMatchingService_AcceptAssignment(t *testing.T) {
	requestID := uuid.New()
	freelancerID := uuid.New()

	openRequest := func(ctx context.Context, id uuid.UUID) (*domain.ProjectRequest, error) {
		return &domain.ProjectRequest{
			BaseModel:    domain.BaseModel{ID: id},
			Status:       domain.RequestStatusOpen,
			MaxAssignees: 2,
		}, nil
	}
	activeUser := func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
		return &domain.User{BaseModel: domain.BaseModel{ID: id}, IsActive: true}, nil
	}

	tests := []struct {
		name        string
		mockRequest func(*MockProjectRequestRepository)
		mockUser    func(*MockUserRepository)
		mockAssign  func(*MockAssignmentRepository)
		wantErrCode string
	}{
		{
			name:        "성공: 좌석이 남은 요청 수락",
			mockRequest: func(m *MockProjectRequestRepository) { m.FindByIDFunc = openRequest },
			mockUser:    func(m *MockUserRepository) { m.FindByIDFunc = activeUser },
			mockAssign: func(m *MockAssignmentRepository) {
				m.AcceptFunc = func(ctx context.Context, rID, fID uuid.UUID, now time.Time) (*domain.ProjectAssignment, error) {
					return &domain.ProjectAssignment{
						BaseModel:    domain.BaseModel{ID: uuid.New()},
						RequestID:    rID,
						FreelancerID: fID,
						Status:       domain.AssignmentStatusAccepted,
						AcceptedAt:   now,
					}, nil
				}
			},
		},
		{
			name:        "실패: 요청이 존재하지 않음",
			mockRequest: func(m *MockProjectRequestRepository) {},
			mockUser:    func(m *MockUserRepository) { m.FindByIDFunc = activeUser },
			mockAssign:  func(m *MockAssignmentRepository) {},
			wantErrCode: response.ErrCodeNotFound,
		},
		{
			name:        "실패: 비활성 사용자",
			mockRequest: func(m *MockProjectRequestRepository) { m.FindByIDFunc = openRequest },
			mockUser: func(m *MockUserRepository) {
				m.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
					return &domain.User{BaseModel: domain.BaseModel{ID: id}, IsActive: false}, nil
				}
			},
			mockAssign:  func(m *MockAssignmentRepository) {},
			wantErrCode: response.ErrCodeValidation,
		},
		{
			name: "실패: FULL 상태 요청",
			mockRequest: func(m *MockProjectRequestRepository) {
				m.FindByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.ProjectRequest, error) {
					return &domain.ProjectRequest{BaseModel: domain.BaseModel{ID: id}, Status: domain.RequestStatusFull}, nil
				}
			},
			mockUser:    func(m *MockUserRepository) { m.FindByIDFunc = activeUser },
			mockAssign:  func(m *MockAssignmentRepository) {},
			wantErrCode: response.ErrCodeCapacityExceeded,
		},
		{
			name:        "실패: 동시 수락으로 좌석 소진",
			mockRequest: func(m *MockProjectRequestRepository) { m.FindByIDFunc = openRequest },
			mockUser:    func(m *MockUserRepository) { m.FindByIDFunc = activeUser },
			mockAssign: func(m *MockAssignmentRepository) {
				m.AcceptFunc = func(ctx context.Context, rID, fID uuid.UUID, now time.Time) (*domain.ProjectAssignment, error) {
					return nil, repository.ErrCapacityExceeded
				}
			},
			wantErrCode: response.ErrCodeCapacityExceeded,
		},
		{
			name:        "실패: 이미 배정된 프리랜서",
			mockRequest: func(m *MockProjectRequestRepository) { m.FindByIDFunc = openRequest },
			mockUser:    func(m *MockUserRepository) { m.FindByIDFunc = activeUser },
			mockAssign: func(m *MockAssignmentRepository) {
				m.AcceptFunc = func(ctx context.Context, rID, fID uuid.UUID, now time.Time) (*domain.ProjectAssignment, error) {
					return nil, repository.ErrDuplicate
				}
			},
			wantErrCode: response.ErrCodeDuplicateAssignment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests := &MockProjectRequestRepository{}
			users := &MockUserRepository{}
			assignments := &MockAssignmentRepository{}
			tt.mockRequest(requests)
			tt.mockUser(users)
			tt.mockAssign(assignments)

			svc := NewMatchingService(requests, assignments, users, nil, nil, zap.NewNop())
			resp, err := svc.AcceptAssignment(context.Background(), requestID, freelancerID)

			if tt.wantErrCode != "" {
				assertAppErrorCode(t, err, tt.wantErrCode)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, requestID, resp.RequestID)
			assert.Equal(t, freelancerID, resp.FreelancerID)
			assert.Equal(t, string(domain.AssignmentStatusAccepted), resp.Status)
		})
	}
}

func TestMatchingService_CancelAssignment(t *testing.T) {
	tests := []struct {
		name        string
		status      domain.AssignmentStatus
		cancelErr   error
		wantErrCode string
	}{
		{name: "성공: 진행 중인 배정 취소", status: domain.AssignmentStatusInProgress},
		{name: "실패: 완료된 배정", status: domain.AssignmentStatusCompleted, wantErrCode: response.ErrCodeInvalidTransition},
		{name: "실패: 이미 취소된 배정", status: domain.AssignmentStatusCancelled, wantErrCode: response.ErrCodeInvalidTransition},
		{name: "실패: 동시 변경으로 상태 불일치", status: domain.AssignmentStatusAccepted, cancelErr: repository.ErrStaleState, wantErrCode: response.ErrCodeInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignmentID := uuid.New()
			assignments := &MockAssignmentRepository{
				FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.ProjectAssignment, error) {
					return &domain.ProjectAssignment{BaseModel: domain.BaseModel{ID: id}, Status: tt.status}, nil
				},
				CancelFunc: func(ctx context.Context, id uuid.UUID, now time.Time) (*domain.ProjectAssignment, error) {
					if tt.cancelErr != nil {
						return nil, tt.cancelErr
					}
					return &domain.ProjectAssignment{BaseModel: domain.BaseModel{ID: id}, Status: domain.AssignmentStatusCancelled, CancelledAt: &now}, nil
				},
			}

			svc := NewMatchingService(&MockProjectRequestRepository{}, assignments, &MockUserRepository{}, nil, nil, zap.NewNop())
			resp, err := svc.CancelAssignment(context.Background(), assignmentID)

			if tt.wantErrCode != "" {
				assertAppErrorCode(t, err, tt.wantErrCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(domain.AssignmentStatusCancelled), resp.Status)
			assert.NotNil(t, resp.CancelledAt)
		})
	}
}

func TestMatchingService_AdvanceAssignment(t *testing.T) {
	tests := []struct {
		name        string
		from        domain.AssignmentStatus
		to          domain.AssignmentStatus
		wantErrCode string
	}{
		{name: "성공: ACCEPTED → IN_PROGRESS", from: domain.AssignmentStatusAccepted, to: domain.AssignmentStatusInProgress},
		{name: "성공: SUBMITTED → COMPLETED", from: domain.AssignmentStatusSubmitted, to: domain.AssignmentStatusCompleted},
		{name: "실패: 단계 건너뛰기", from: domain.AssignmentStatusAccepted, to: domain.AssignmentStatusCompleted, wantErrCode: response.ErrCodeInvalidTransition},
		{name: "실패: 취소는 별도 경로", from: domain.AssignmentStatusAccepted, to: domain.AssignmentStatusCancelled, wantErrCode: response.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.from
			assignments := &MockAssignmentRepository{
				FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.ProjectAssignment, error) {
					return &domain.ProjectAssignment{BaseModel: domain.BaseModel{ID: id}, Status: status}, nil
				},
				AdvanceFunc: func(ctx context.Context, id uuid.UUID, from, to domain.AssignmentStatus, now time.Time) error {
					if from != status {
						return repository.ErrStaleState
					}
					status = to
					return nil
				},
			}

			svc := NewMatchingService(&MockProjectRequestRepository{}, assignments, &MockUserRepository{}, nil, nil, zap.NewNop())
			resp, err := svc.AdvanceAssignment(context.Background(), uuid.New(), tt.to)

			if tt.wantErrCode != "" {
				assertAppErrorCode(t, err, tt.wantErrCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(tt.to), resp.Status)
		})
	}
}
