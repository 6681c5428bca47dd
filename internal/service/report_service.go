package service

import (
	"context"

	"github.com/google/uuid"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/metrics"
	"stars-workflow-api/internal/repository"
	"stars-workflow-api/internal/response"
)

// ReportService serves read projections across the workflow
type ReportService interface {
	UserActivity(ctx context.Context, userID uuid.UUID) (*dto.UserActivityResponse, error)
}

type reportServiceImpl struct {
	reportRepo repository.ReportRepository
	userRepo   repository.UserRepository
}

// NewReportService creates a new instance of ReportService
func NewReportService(reportRepo repository.ReportRepository, userRepo repository.UserRepository) ReportService {
	return &reportServiceImpl{reportRepo: reportRepo, userRepo: userRepo}
}

func (s *reportServiceImpl) UserActivity(ctx context.Context, userID uuid.UUID) (*dto.UserActivityResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, lookupError(err, "User", userID)
	}

	activity, err := s.reportRepo.UserActivity(ctx, userID)
	if err != nil {
		return nil, response.NewInternalError("Failed to build user activity", err.Error())
	}
	return &dto.UserActivityResponse{
		UserID:            userID,
		Assignments:       activity.Assignments,
		Submissions:       activity.Submissions,
		FeedbacksGiven:    activity.FeedbacksGiven,
		Settlements:       activity.Settlements,
		CompletedEarnings: activity.CompletedEarnings,
	}, nil
}

// workflowStats feeds the business gauges from the report and settlement stores
type workflowStats struct {
	reportRepo     repository.ReportRepository
	settlementRepo repository.SettlementRepository
}

// NewWorkflowStatsSource returns the source the business metrics collector polls
func NewWorkflowStatsSource(reportRepo repository.ReportRepository, settlementRepo repository.SettlementRepository) metrics.BusinessStatsSource {
	return &workflowStats{reportRepo: reportRepo, settlementRepo: settlementRepo}
}

func (w *workflowStats) CountOpenRequests(ctx context.Context) (int64, error) {
	return w.reportRepo.CountRequestsByStatus(ctx, domain.RequestStatusOpen)
}

func (w *workflowStats) CountPendingSettlements(ctx context.Context) (int64, error) {
	return w.settlementRepo.CountByStatus(ctx, domain.SettlementStatusPending)
}
