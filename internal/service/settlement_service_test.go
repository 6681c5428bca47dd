package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/lock"
	"stars-workflow-api/internal/repository"
	"stars-workflow-api/internal/response"
)

func TestSettlementService_RecordSettlement(t *testing.T) {
	userID := uuid.New()
	users := &MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			if id != userID {
				return nil, gorm.ErrRecordNotFound
			}
			return &domain.User{BaseModel: domain.BaseModel{ID: id}, IsActive: true}, nil
		},
	}

	tests := []struct {
		name        string
		req         dto.RecordSettlementRequest
		wantErrCode string
	}{
		{
			name: "성공: 양수 지급",
			req:  dto.RecordSettlementRequest{UserID: userID, Amount: decimal.RequireFromString("150000.00"), Type: "PAYOUT", QuarterYear: 2025, QuarterNumber: 1},
		},
		{
			name: "성공: 0원 보너스",
			req:  dto.RecordSettlementRequest{UserID: userID, Amount: decimal.Zero, Type: "BONUS", QuarterYear: 2025, QuarterNumber: 2},
		},
		{
			name: "성공: 음수 공제",
			req:  dto.RecordSettlementRequest{UserID: userID, Amount: decimal.RequireFromString("-5000"), Type: "DEDUCTION", QuarterYear: 2025, QuarterNumber: 4},
		},
		{
			name:        "실패: 음수 지급",
			req:         dto.RecordSettlementRequest{UserID: userID, Amount: decimal.RequireFromString("-1"), Type: "PAYOUT", QuarterYear: 2025, QuarterNumber: 1},
			wantErrCode: response.ErrCodeSignMismatch,
		},
		{
			name:        "실패: 양수 공제",
			req:         dto.RecordSettlementRequest{UserID: userID, Amount: decimal.RequireFromString("0.01"), Type: "DEDUCTION", QuarterYear: 2025, QuarterNumber: 1},
			wantErrCode: response.ErrCodeSignMismatch,
		},
		{
			name:        "실패: 소수점 셋째 자리 금액",
			req:         dto.RecordSettlementRequest{UserID: userID, Amount: decimal.RequireFromString("10.005"), Type: "PAYOUT", QuarterYear: 2025, QuarterNumber: 1},
			wantErrCode: response.ErrCodeValidation,
		},
		{
			name: "성공: 소수점 둘째 자리 금액은 그대로 저장",
			req:  dto.RecordSettlementRequest{UserID: userID, Amount: decimal.RequireFromString("10.05"), Type: "PAYOUT", QuarterYear: 2025, QuarterNumber: 1},
		},
		{
			name:        "실패: 분기 범위 초과",
			req:         dto.RecordSettlementRequest{UserID: userID, Amount: decimal.NewFromInt(1), Type: "PAYOUT", QuarterYear: 2025, QuarterNumber: 5},
			wantErrCode: response.ErrCodeValidation,
		},
		{
			name:        "실패: 연도 범위 초과",
			req:         dto.RecordSettlementRequest{UserID: userID, Amount: decimal.NewFromInt(1), Type: "PAYOUT", QuarterYear: 1999, QuarterNumber: 1},
			wantErrCode: response.ErrCodeValidation,
		},
		{
			name:        "실패: 존재하지 않는 사용자",
			req:         dto.RecordSettlementRequest{UserID: uuid.New(), Amount: decimal.NewFromInt(1), Type: "PAYOUT", QuarterYear: 2025, QuarterNumber: 1},
			wantErrCode: response.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *domain.Settlement
			settlements := &MockSettlementRepository{
				CreateFunc: func(ctx context.Context, s *domain.Settlement) error {
					s.ID = uuid.New()
					created = s
					return nil
				},
			}
			svc := NewSettlementService(settlements, users, nil, nil, 1, nil, zap.NewNop())

			resp, err := svc.RecordSettlement(context.Background(), &tt.req)
			if tt.wantErrCode != "" {
				assertAppErrorCode(t, err, tt.wantErrCode)
				assert.Nil(t, created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(domain.SettlementStatusPending), resp.Status)
			assert.True(t, tt.req.Amount.Equal(resp.Amount))
			assert.True(t, tt.req.Amount.Equal(created.Amount))
		})
	}
}

func TestSettlementService_ProcessRound_LeaseHeld(t *testing.T) {
	locker := &MockRoundLocker{
		AcquireFunc: func(ctx context.Context, year, quarter int, round string) (func(), error) {
			return nil, lock.ErrLeaseHeld
		},
	}
	settlements := &MockSettlementRepository{
		FindPendingIDsFunc: func(ctx context.Context, year, quarter int, round domain.SettlementRound) ([]uuid.UUID, error) {
			t.Fatal("must not select settlements without the lease")
			return nil, nil
		},
	}
	svc := NewSettlementService(settlements, &MockUserRepository{}, locker, nil, 2, nil, zap.NewNop())

	_, err := svc.ProcessRound(context.Background(), 2025, 1, domain.SettlementRoundPrimary)
	assertAppErrorCode(t, err, response.ErrCodeRoundInProgress)

	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.Retryable)
}

func TestSettlementService_ProcessRound_PerItemOutcomes(t *testing.T) {
	completedID := uuid.New()
	takenID := uuid.New()
	badSignID := uuid.New()
	bouncedID := uuid.New()

	rows := map[uuid.UUID]*domain.Settlement{
		completedID: {BaseModel: domain.BaseModel{ID: completedID}, Type: domain.SettlementTypePayout, Amount: decimal.NewFromInt(100)},
		takenID:     {BaseModel: domain.BaseModel{ID: takenID}, Type: domain.SettlementTypePayout, Amount: decimal.NewFromInt(100)},
		badSignID:   {BaseModel: domain.BaseModel{ID: badSignID}, Type: domain.SettlementTypeDeduction, Amount: decimal.NewFromInt(100)},
		bouncedID:   {BaseModel: domain.BaseModel{ID: bouncedID}, Type: domain.SettlementTypeBonus, Amount: decimal.NewFromInt(5)},
	}

	var mu sync.Mutex
	failed := make(map[uuid.UUID]string)
	var completed []uuid.UUID
	released := false

	settlements := &MockSettlementRepository{
		FindPendingIDsFunc: func(ctx context.Context, year, quarter int, round domain.SettlementRound) ([]uuid.UUID, error) {
			return []uuid.UUID{completedID, takenID, badSignID, bouncedID}, nil
		},
		ClaimFunc: func(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
			return id != takenID, nil
		},
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Settlement, error) {
			return rows[id], nil
		},
		MarkCompletedFunc: func(ctx context.Context, id uuid.UUID, now time.Time) error {
			mu.Lock()
			defer mu.Unlock()
			completed = append(completed, id)
			return nil
		},
		MarkFailedFunc: func(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
			mu.Lock()
			defer mu.Unlock()
			failed[id] = reason
			return nil
		},
	}
	locker := &MockRoundLocker{
		AcquireFunc: func(ctx context.Context, year, quarter int, round string) (func(), error) {
			return func() { released = true }, nil
		},
	}
	disburser := &MockDisburser{
		DisburseFunc: func(ctx context.Context, s *domain.Settlement) error {
			if s.ID == bouncedID {
				return errors.New("bank rejected transfer")
			}
			return nil
		},
	}

	svc := NewSettlementService(settlements, &MockUserRepository{}, locker, disburser, 3, nil, zap.NewNop())
	report, err := svc.ProcessRound(context.Background(), 2025, 1, domain.SettlementRoundPrimary)
	require.NoError(t, err)

	assert.True(t, released)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []uuid.UUID{completedID}, completed)
	assert.Equal(t, reasonSignMismatch, failed[badSignID])
	assert.Equal(t, "bank rejected transfer", failed[bouncedID])

	// results keep selection order
	require.Len(t, report.Results, 4)
	assert.Equal(t, completedID, report.Results[0].SettlementID)
	assert.Equal(t, ItemSkipped, report.Results[1].Status)
}

func TestSettlementService_RetrySettlement(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-DefaultClaimTimeout - time.Minute)
	fresh := now.Add(-time.Minute)

	tests := []struct {
		name        string
		status      domain.SettlementStatus
		claimedAt   *time.Time
		wantErrCode string
	}{
		{name: "성공: FAILED → PENDING", status: domain.SettlementStatusFailed},
		{name: "성공: 만료된 PROCESSING 점유 해제", status: domain.SettlementStatusProcessing, claimedAt: &expired},
		{name: "실패: 진행 중인 PROCESSING 정산", status: domain.SettlementStatusProcessing, claimedAt: &fresh, wantErrCode: response.ErrCodeInvalidTransition},
		{name: "실패: COMPLETED 정산은 변경 불가", status: domain.SettlementStatusCompleted, wantErrCode: response.ErrCodeInvalidTransition},
		{name: "실패: PENDING 정산", status: domain.SettlementStatusPending, wantErrCode: response.ErrCodeInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.status
			claimedAt := tt.claimedAt
			settlements := &MockSettlementRepository{
				FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Settlement, error) {
					return &domain.Settlement{BaseModel: domain.BaseModel{ID: id}, Status: status, ClaimedAt: claimedAt}, nil
				},
				ResetFailedFunc: func(ctx context.Context, id uuid.UUID) error {
					if status != domain.SettlementStatusFailed {
						return repository.ErrStaleState
					}
					status = domain.SettlementStatusPending
					return nil
				},
				ReleaseClaimFunc: func(ctx context.Context, id uuid.UUID, cutoff time.Time) error {
					if status != domain.SettlementStatusProcessing || !claimedAt.Before(cutoff) {
						return repository.ErrStaleState
					}
					status = domain.SettlementStatusPending
					claimedAt = nil
					return nil
				},
			}
			svc := NewSettlementService(settlements, &MockUserRepository{}, nil, nil, 1, nil, zap.NewNop())
			svc.(*settlementServiceImpl).now = func() time.Time { return now }

			resp, err := svc.RetrySettlement(context.Background(), uuid.New())
			if tt.wantErrCode != "" {
				assertAppErrorCode(t, err, tt.wantErrCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(domain.SettlementStatusPending), resp.Status)
		})
	}
}

func TestSettlementService_QuarterSummary(t *testing.T) {
	settlements := &MockSettlementRepository{
		SummaryFunc: func(ctx context.Context, year, quarter int) ([]repository.SettlementAggregate, error) {
			return []repository.SettlementAggregate{
				{Type: domain.SettlementTypePayout, Status: domain.SettlementStatusCompleted, Count: 2, Total: decimal.RequireFromString("300.50")},
				{Type: domain.SettlementTypePayout, Status: domain.SettlementStatusPending, Count: 1, Total: decimal.RequireFromString("99.50")},
				{Type: domain.SettlementTypeDeduction, Status: domain.SettlementStatusCompleted, Count: 1, Total: decimal.RequireFromString("-20")},
			}, nil
		},
	}
	svc := NewSettlementService(settlements, &MockUserRepository{}, nil, nil, 1, nil, zap.NewNop())

	summary, err := svc.QuarterSummary(context.Background(), 2025, 1)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(400).Equal(summary.TotalsByType["PAYOUT"]))
	assert.True(t, decimal.NewFromInt(-20).Equal(summary.TotalsByType["DEDUCTION"]))
	assert.Equal(t, int64(3), summary.CountByStatus["COMPLETED"])
	assert.Equal(t, int64(1), summary.CountByStatus["PENDING"])
	assert.Len(t, summary.Buckets, 3)

	_, err = svc.QuarterSummary(context.Background(), 2025, 0)
	assertAppErrorCode(t, err, response.ErrCodeValidation)
}

func TestSettlementService_ProcessRound_OutcomeSurvivesCancellation(t *testing.T) {
	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var markedReason string
	var markCtxErr error
	settlements := &MockSettlementRepository{
		FindPendingIDsFunc: func(ctx context.Context, year, quarter int, round domain.SettlementRound) ([]uuid.UUID, error) {
			return []uuid.UUID{id}, nil
		},
		FindByIDFunc: func(ctx context.Context, sid uuid.UUID) (*domain.Settlement, error) {
			return &domain.Settlement{BaseModel: domain.BaseModel{ID: sid}, Type: domain.SettlementTypePayout, Amount: decimal.NewFromInt(10)}, nil
		},
		MarkFailedFunc: func(ctx context.Context, sid uuid.UUID, reason string, now time.Time) error {
			markCtxErr = ctx.Err()
			markedReason = reason
			return ctx.Err()
		},
	}
	disburser := &MockDisburser{
		DisburseFunc: func(dctx context.Context, s *domain.Settlement) error {
			cancel()
			return dctx.Err()
		},
	}

	svc := NewSettlementService(settlements, &MockUserRepository{}, nil, disburser, 1, nil, zap.NewNop())
	report, err := svc.ProcessRound(ctx, 2025, 1, domain.SettlementRoundPrimary)
	require.NoError(t, err)

	assert.NoError(t, markCtxErr)
	assert.Equal(t, context.Canceled.Error(), markedReason)
	assert.Equal(t, 1, report.Failed)
}

func TestSettlementService_ProcessRound_ReleasesExpiredClaimsFirst(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	var calls []string
	var gotCutoff time.Time

	settlements := &MockSettlementRepository{
		ReleaseStaleFunc: func(ctx context.Context, year, quarter int, round domain.SettlementRound, cutoff time.Time) (int64, error) {
			calls = append(calls, "release")
			gotCutoff = cutoff
			return 2, nil
		},
		FindPendingIDsFunc: func(ctx context.Context, year, quarter int, round domain.SettlementRound) ([]uuid.UUID, error) {
			calls = append(calls, "select")
			return nil, nil
		},
	}
	svc := NewSettlementService(settlements, &MockUserRepository{}, nil, nil, 1, nil, zap.NewNop())
	svc.(*settlementServiceImpl).now = func() time.Time { return now }

	_, err := svc.ProcessRound(context.Background(), 2025, 1, domain.SettlementRoundPrimary)
	require.NoError(t, err)
	assert.Equal(t, []string{"release", "select"}, calls)
	assert.Equal(t, now.Add(-DefaultClaimTimeout), gotCutoff)
}
