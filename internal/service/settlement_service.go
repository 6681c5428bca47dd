package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/lock"
	"stars-workflow-api/internal/metrics"
	"stars-workflow-api/internal/repository"
	"stars-workflow-api/internal/response"
)

// Per-item outcomes reported in a RoundReport
const (
	ItemCompleted = "COMPLETED"
	ItemFailed    = "FAILED"
	ItemSkipped   = "SKIPPED"
)

const reasonSignMismatch = "amount sign does not match settlement type"

const (
	// DefaultClaimTimeout is how long a PROCESSING claim may sit without an outcome
	// before it is released back to PENDING.
	DefaultClaimTimeout = 15 * time.Minute

	// outcomeWriteTimeout bounds the COMPLETED/FAILED write after a claim.
	// That write is detached from the caller's cancellation.
	outcomeWriteTimeout = 10 * time.Second
)

// Disburser hands a claimed settlement to the external payment system
type Disburser interface {
	Disburse(ctx context.Context, settlement *domain.Settlement) error
}

// NoopDisburser accepts every settlement without moving money
type NoopDisburser struct{}

func (NoopDisburser) Disburse(context.Context, *domain.Settlement) error { return nil }

// SettlementListParams narrows ListSettlements
type SettlementListParams struct {
	UserID        *uuid.UUID
	QuarterYear   *int
	QuarterNumber *int
	Status        *string
}

// SettlementService defines the interface for the settlement ledger
type SettlementService interface {
	RecordSettlement(ctx context.Context, req *dto.RecordSettlementRequest) (*dto.SettlementResponse, error)
	AssignRound(ctx context.Context, settlementID uuid.UUID, round domain.SettlementRound) (*dto.SettlementResponse, error)
	ProcessRound(ctx context.Context, year, quarter int, round domain.SettlementRound) (*dto.RoundReport, error)
	RetrySettlement(ctx context.Context, settlementID uuid.UUID) (*dto.SettlementResponse, error)
	GetSettlement(ctx context.Context, settlementID uuid.UUID) (*dto.SettlementResponse, error)
	ListSettlements(ctx context.Context, params SettlementListParams) ([]*dto.SettlementResponse, error)
	QuarterSummary(ctx context.Context, year, quarter int) (*dto.QuarterSummaryResponse, error)
}

// settlementServiceImpl is the implementation of SettlementService
type settlementServiceImpl struct {
	settlementRepo repository.SettlementRepository
	userRepo       repository.UserRepository
	locker         lock.RoundLocker
	disburser      Disburser
	concurrency    int
	claimTimeout   time.Duration
	metrics        *metrics.Metrics
	logger         *zap.Logger
	now            Clock
}

// NewSettlementService creates a new instance of SettlementService.
// A nil locker or disburser falls back to the no-op implementation.
func NewSettlementService(
	settlementRepo repository.SettlementRepository,
	userRepo repository.UserRepository,
	locker lock.RoundLocker,
	disburser Disburser,
	concurrency int,
	m *metrics.Metrics,
	logger *zap.Logger,
) SettlementService {
	if locker == nil {
		locker = lock.NoopRoundLocker{}
	}
	if disburser == nil {
		disburser = NoopDisburser{}
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &settlementServiceImpl{
		settlementRepo: settlementRepo,
		userRepo:       userRepo,
		locker:         locker,
		disburser:      disburser,
		concurrency:    concurrency,
		claimTimeout:   DefaultClaimTimeout,
		metrics:        m,
		logger:         logger,
		now:            defaultClock,
	}
}

// RecordSettlement writes a PENDING ledger entry
func (s *settlementServiceImpl) RecordSettlement(ctx context.Context, req *dto.RecordSettlementRequest) (*dto.SettlementResponse, error) {
	settlementType := domain.SettlementType(req.Type)
	if !settlementType.IsValid() {
		return nil, response.NewValidationError("Invalid settlement type", req.Type)
	}
	if !domain.ValidQuarter(req.QuarterYear, req.QuarterNumber) {
		return nil, response.NewValidationError("Invalid quarter", "")
	}
	var round *domain.SettlementRound
	if req.Round != nil {
		r := domain.SettlementRound(*req.Round)
		if !r.IsValid() {
			return nil, response.NewValidationError("Invalid settlement round", *req.Round)
		}
		round = &r
	}

	amount := req.Amount
	if !amount.Equal(amount.Round(2)) {
		return nil, response.NewValidationError("Amount must have at most 2 decimal places", amount.String())
	}
	if !settlementType.SignMatches(amount) {
		return nil, response.NewSignMismatchError(reasonSignMismatch, amount.String()+" "+req.Type)
	}

	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		return nil, lookupError(err, "User", req.UserID)
	}

	year, quarter := req.QuarterYear, req.QuarterNumber
	settlement := &domain.Settlement{
		UserID:        req.UserID,
		SubmissionID:  req.SubmissionID,
		Amount:        amount,
		Type:          settlementType,
		Round:         round,
		Status:        domain.SettlementStatusPending,
		QuarterYear:   &year,
		QuarterNumber: &quarter,
		Description:   req.Description,
	}
	if err := s.settlementRepo.Create(ctx, settlement); err != nil {
		return nil, response.NewInternalError("Failed to record settlement", err.Error())
	}

	s.metrics.IncrementSettlementRecorded(string(settlementType))
	s.logger.Info("Settlement recorded",
		zap.String("settlement_id", settlement.ID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.String("type", req.Type),
		zap.String("amount", amount.StringFixed(2)))
	return toSettlementResponse(settlement), nil
}

// AssignRound sets the round of a PENDING settlement
func (s *settlementServiceImpl) AssignRound(ctx context.Context, settlementID uuid.UUID, round domain.SettlementRound) (*dto.SettlementResponse, error) {
	if !round.IsValid() {
		return nil, response.NewValidationError("Invalid settlement round", string(round))
	}
	current, err := s.settlementRepo.FindByID(ctx, settlementID)
	if err != nil {
		return nil, lookupError(err, "Settlement", settlementID)
	}
	if current.Status != domain.SettlementStatusPending {
		return nil, response.NewInvalidTransitionError(settlementID.String(), string(current.Status), string(domain.SettlementStatusPending))
	}

	if err := s.settlementRepo.AssignRound(ctx, settlementID, round); err != nil {
		return nil, s.staleSettlementError(ctx, err, settlementID, domain.SettlementStatusPending)
	}
	return s.GetSettlement(ctx, settlementID)
}

// ProcessRound disburses every PENDING settlement of the batch key.
//
// Items are claimed one by one, so a second run over the same key only sees
// what the first has not claimed yet. A failing item never fails the batch.
func (s *settlementServiceImpl) ProcessRound(ctx context.Context, year, quarter int, round domain.SettlementRound) (*dto.RoundReport, error) {
	if !domain.ValidQuarter(year, quarter) {
		return nil, response.NewValidationError("Invalid quarter", "")
	}
	if !round.IsValid() {
		return nil, response.NewValidationError("Invalid settlement round", string(round))
	}

	release, err := s.locker.Acquire(ctx, year, quarter, string(round))
	if err != nil {
		if errors.Is(err, lock.ErrLeaseHeld) {
			return nil, response.NewRoundInProgressError(lock.RoundKey(year, quarter, string(round)))
		}
		return nil, response.NewInternalError("Failed to acquire round lease", err.Error())
	}
	defer release()

	start := time.Now()
	cutoff := s.now().Add(-s.claimTimeout)
	if released, err := s.settlementRepo.ReleaseStaleClaims(ctx, year, quarter, round, cutoff); err != nil {
		s.logger.Warn("Failed to release stale settlement claims",
			zap.String("round_key", lock.RoundKey(year, quarter, string(round))),
			zap.Error(err))
	} else if released > 0 {
		s.logger.Info("Released stale settlement claims",
			zap.String("round_key", lock.RoundKey(year, quarter, string(round))),
			zap.Int64("released", released))
	}

	ids, err := s.settlementRepo.FindPendingIDs(ctx, year, quarter, round)
	if err != nil {
		return nil, response.NewInternalError("Failed to select settlements", err.Error())
	}

	results := make([]dto.SettlementItemResult, len(ids))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = s.processOne(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	report := &dto.RoundReport{
		QuarterYear:   year,
		QuarterNumber: quarter,
		Round:         string(round),
		Total:         len(ids),
		Results:       results,
	}
	for _, r := range results {
		switch r.Status {
		case ItemCompleted:
			report.Completed++
		case ItemFailed:
			report.Failed++
		default:
			report.Skipped++
		}
	}

	elapsed := time.Since(start)
	s.metrics.RecordSettlementRound(report.Completed, report.Failed, elapsed)
	s.logger.Info("Settlement round processed",
		zap.Int("year", year),
		zap.Int("quarter", quarter),
		zap.String("round", string(round)),
		zap.Int("total", report.Total),
		zap.Int("completed", report.Completed),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Duration("duration", elapsed))
	return report, nil
}

func (s *settlementServiceImpl) processOne(ctx context.Context, id uuid.UUID) dto.SettlementItemResult {
	result := dto.SettlementItemResult{SettlementID: id, Status: ItemSkipped}

	if err := ctx.Err(); err != nil {
		result.Reason = err.Error()
		return result
	}

	claimed, err := s.settlementRepo.Claim(ctx, id, s.now())
	if err != nil {
		s.logger.Warn("Failed to claim settlement", zap.String("settlement_id", id.String()), zap.Error(err))
		result.Reason = err.Error()
		return result
	}
	if !claimed {
		result.Reason = "claimed by another run"
		return result
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), outcomeWriteTimeout)
	defer cancel()

	settlement, err := s.settlementRepo.FindByID(writeCtx, id)
	if err != nil {
		return s.fail(writeCtx, id, "failed to reload settlement: "+err.Error())
	}
	if !settlement.Type.SignMatches(settlement.Amount) {
		return s.fail(writeCtx, id, reasonSignMismatch)
	}
	if err := s.disburser.Disburse(ctx, settlement); err != nil {
		return s.fail(writeCtx, id, err.Error())
	}

	if err := s.settlementRepo.MarkCompleted(writeCtx, id, s.now()); err != nil {
		s.logger.Error("Failed to mark settlement completed",
			zap.String("settlement_id", id.String()),
			zap.Error(err))
		return dto.SettlementItemResult{SettlementID: id, Status: ItemSkipped, Reason: "outcome not recorded, claim left to expire: " + err.Error()}
	}
	return dto.SettlementItemResult{SettlementID: id, Status: ItemCompleted}
}

// fail records FAILED for a claimed row. If the write itself fails the row is
// still PROCESSING, so the item is reported as skipped until its claim expires.
func (s *settlementServiceImpl) fail(ctx context.Context, id uuid.UUID, reason string) dto.SettlementItemResult {
	if err := s.settlementRepo.MarkFailed(ctx, id, reason, s.now()); err != nil {
		s.logger.Error("Failed to mark settlement failed",
			zap.String("settlement_id", id.String()),
			zap.String("reason", reason),
			zap.Error(err))
		return dto.SettlementItemResult{SettlementID: id, Status: ItemSkipped, Reason: "outcome not recorded, claim left to expire: " + reason}
	}
	s.logger.Warn("Settlement failed", zap.String("settlement_id", id.String()), zap.String("reason", reason))
	return dto.SettlementItemResult{SettlementID: id, Status: ItemFailed, Reason: reason}
}

// RetrySettlement returns a FAILED settlement, or one whose PROCESSING claim
// has expired, to PENDING
func (s *settlementServiceImpl) RetrySettlement(ctx context.Context, settlementID uuid.UUID) (*dto.SettlementResponse, error) {
	current, err := s.settlementRepo.FindByID(ctx, settlementID)
	if err != nil {
		return nil, lookupError(err, "Settlement", settlementID)
	}
	if current.Status == domain.SettlementStatusProcessing {
		return s.releaseExpiredClaim(ctx, current)
	}
	if !current.Status.CanTransitionTo(domain.SettlementStatusPending) {
		return nil, response.NewInvalidTransitionError(settlementID.String(), string(current.Status), string(domain.SettlementStatusPending))
	}

	if err := s.settlementRepo.ResetFailed(ctx, settlementID); err != nil {
		return nil, s.staleSettlementError(ctx, err, settlementID, domain.SettlementStatusPending)
	}
	s.logger.Info("Settlement reset for retry", zap.String("settlement_id", settlementID.String()))
	return s.GetSettlement(ctx, settlementID)
}

func (s *settlementServiceImpl) releaseExpiredClaim(ctx context.Context, current *domain.Settlement) (*dto.SettlementResponse, error) {
	cutoff := s.now().Add(-s.claimTimeout)
	if current.ClaimedAt != nil && !current.ClaimedAt.Before(cutoff) {
		return nil, response.NewInvalidTransitionError(current.ID.String(), string(current.Status), string(domain.SettlementStatusPending))
	}

	if err := s.settlementRepo.ReleaseClaim(ctx, current.ID, cutoff); err != nil {
		return nil, s.staleSettlementError(ctx, err, current.ID, domain.SettlementStatusPending)
	}
	s.logger.Info("Expired settlement claim released", zap.String("settlement_id", current.ID.String()))
	return s.GetSettlement(ctx, current.ID)
}

func (s *settlementServiceImpl) staleSettlementError(ctx context.Context, err error, settlementID uuid.UUID, to domain.SettlementStatus) error {
	if !errors.Is(err, repository.ErrStaleState) {
		return response.NewInternalError("Failed to update settlement", err.Error())
	}
	from := "UNKNOWN"
	if latest, findErr := s.settlementRepo.FindByID(ctx, settlementID); findErr == nil {
		from = string(latest.Status)
	}
	return response.NewInvalidTransitionError(settlementID.String(), from, string(to))
}

// GetSettlement retrieves a settlement by ID
func (s *settlementServiceImpl) GetSettlement(ctx context.Context, settlementID uuid.UUID) (*dto.SettlementResponse, error) {
	settlement, err := s.settlementRepo.FindByID(ctx, settlementID)
	if err != nil {
		return nil, lookupError(err, "Settlement", settlementID)
	}
	return toSettlementResponse(settlement), nil
}

// ListSettlements returns settlements newest first
func (s *settlementServiceImpl) ListSettlements(ctx context.Context, params SettlementListParams) ([]*dto.SettlementResponse, error) {
	filter := repository.SettlementFilter{
		UserID:        params.UserID,
		QuarterYear:   params.QuarterYear,
		QuarterNumber: params.QuarterNumber,
	}
	if params.Status != nil && *params.Status != "" {
		st := domain.SettlementStatus(*params.Status)
		if !st.IsValid() {
			return nil, response.NewValidationError("Invalid settlement status", *params.Status)
		}
		filter.Status = &st
	}

	settlements, err := s.settlementRepo.List(ctx, filter)
	if err != nil {
		return nil, response.NewInternalError("Failed to fetch settlements", err.Error())
	}
	responses := make([]*dto.SettlementResponse, len(settlements))
	for i, st := range settlements {
		responses[i] = toSettlementResponse(st)
	}
	return responses, nil
}

// QuarterSummary totals the quarter per type and counts it per status
func (s *settlementServiceImpl) QuarterSummary(ctx context.Context, year, quarter int) (*dto.QuarterSummaryResponse, error) {
	if !domain.ValidQuarter(year, quarter) {
		return nil, response.NewValidationError("Invalid quarter", "")
	}

	buckets, err := s.settlementRepo.Summary(ctx, year, quarter)
	if err != nil {
		return nil, response.NewInternalError("Failed to summarize settlements", err.Error())
	}

	summary := &dto.QuarterSummaryResponse{
		QuarterYear:   year,
		QuarterNumber: quarter,
		TotalsByType:  make(map[string]decimal.Decimal),
		CountByStatus: make(map[string]int64),
		Buckets:       make([]dto.SettlementBucket, 0, len(buckets)),
	}
	for _, b := range buckets {
		total, ok := summary.TotalsByType[string(b.Type)]
		if !ok {
			total = decimal.Zero
		}
		summary.TotalsByType[string(b.Type)] = total.Add(b.Total)
		summary.CountByStatus[string(b.Status)] += b.Count
		summary.Buckets = append(summary.Buckets, dto.SettlementBucket{
			Type:   string(b.Type),
			Status: string(b.Status),
			Count:  b.Count,
			Total:  b.Total,
		})
	}
	return summary, nil
}
