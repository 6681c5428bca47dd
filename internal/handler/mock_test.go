package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/service"
)

// setupTestRouter returns a gin engine in test mode.
// When actingUser is non-nil it is injected the way the auth middleware does.
func setupTestRouter(actingUser *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if actingUser != nil {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", *actingUser)
			c.Next()
		})
	}
	return router
}

// MockCatalogService is a mock implementation of CatalogService
type MockCatalogService struct {
	CreateUserFunc           func(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetUserFunc              func(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	DeactivateUserFunc       func(ctx context.Context, userID uuid.UUID) error
	CreateProjectRequestFunc func(ctx context.Context, creatorID uuid.UUID, req *dto.CreateProjectRequestBody) (*dto.ProjectRequestResponse, error)
	GetProjectRequestFunc    func(ctx context.Context, requestID uuid.UUID) (*dto.ProjectRequestResponse, error)
	ListProjectRequestsFunc  func(ctx context.Context, status *string, createdBy *uuid.UUID) ([]*dto.ProjectRequestResponse, error)
	CloseProjectRequestFunc  func(ctx context.Context, requestID uuid.UUID) (*dto.ProjectRequestResponse, error)
	CancelProjectRequestFunc func(ctx context.Context, requestID uuid.UUID) (*dto.CancelProjectRequestResponse, error)
	CreateProjectFunc        func(ctx context.Context, ownerID uuid.UUID, req *dto.CreateProjectBody) (*dto.ProjectResponse, error)
	GetProjectFunc           func(ctx context.Context, projectID uuid.UUID) (*dto.ProjectResponse, error)
	ListProjectsFunc         func(ctx context.Context, ownerID uuid.UUID) ([]*dto.ProjectResponse, error)
}

func (m *MockCatalogService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, req)
	}
	return &dto.UserResponse{}, nil
}

func (m *MockCatalogService) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, userID)
	}
	return &dto.UserResponse{ID: userID}, nil
}

func (m *MockCatalogService) DeactivateUser(ctx context.Context, userID uuid.UUID) error {
	if m.DeactivateUserFunc != nil {
		return m.DeactivateUserFunc(ctx, userID)
	}
	return nil
}

func (m *MockCatalogService) CreateProjectRequest(ctx context.Context, creatorID uuid.UUID, req *dto.CreateProjectRequestBody) (*dto.ProjectRequestResponse, error) {
	if m.CreateProjectRequestFunc != nil {
		return m.CreateProjectRequestFunc(ctx, creatorID, req)
	}
	return &dto.ProjectRequestResponse{}, nil
}

func (m *MockCatalogService) GetProjectRequest(ctx context.Context, requestID uuid.UUID) (*dto.ProjectRequestResponse, error) {
	if m.GetProjectRequestFunc != nil {
		return m.GetProjectRequestFunc(ctx, requestID)
	}
	return &dto.ProjectRequestResponse{ID: requestID}, nil
}

func (m *MockCatalogService) ListProjectRequests(ctx context.Context, status *string, createdBy *uuid.UUID) ([]*dto.ProjectRequestResponse, error) {
	if m.ListProjectRequestsFunc != nil {
		return m.ListProjectRequestsFunc(ctx, status, createdBy)
	}
	return []*dto.ProjectRequestResponse{}, nil
}

func (m *MockCatalogService) CloseProjectRequest(ctx context.Context, requestID uuid.UUID) (*dto.ProjectRequestResponse, error) {
	if m.CloseProjectRequestFunc != nil {
		return m.CloseProjectRequestFunc(ctx, requestID)
	}
	return &dto.ProjectRequestResponse{ID: requestID}, nil
}

func (m *MockCatalogService) CancelProjectRequest(ctx context.Context, requestID uuid.UUID) (*dto.CancelProjectRequestResponse, error) {
	if m.CancelProjectRequestFunc != nil {
		return m.CancelProjectRequestFunc(ctx, requestID)
	}
	return &dto.CancelProjectRequestResponse{}, nil
}

func (m *MockCatalogService) CreateProject(ctx context.Context, ownerID uuid.UUID, req *dto.CreateProjectBody) (*dto.ProjectResponse, error) {
	if m.CreateProjectFunc != nil {
		return m.CreateProjectFunc(ctx, ownerID, req)
	}
	return &dto.ProjectResponse{}, nil
}

func (m *MockCatalogService) GetProject(ctx context.Context, projectID uuid.UUID) (*dto.ProjectResponse, error) {
	if m.GetProjectFunc != nil {
		return m.GetProjectFunc(ctx, projectID)
	}
	return &dto.ProjectResponse{ID: projectID}, nil
}

func (m *MockCatalogService) ListProjects(ctx context.Context, ownerID uuid.UUID) ([]*dto.ProjectResponse, error) {
	if m.ListProjectsFunc != nil {
		return m.ListProjectsFunc(ctx, ownerID)
	}
	return []*dto.ProjectResponse{}, nil
}

// MockMatchingService is a mock implementation of MatchingService
type MockMatchingService struct {
	AcceptAssignmentFunc            func(ctx context.Context, requestID, freelancerID uuid.UUID) (*dto.AssignmentResponse, error)
	CancelAssignmentFunc            func(ctx context.Context, assignmentID uuid.UUID) (*dto.AssignmentResponse, error)
	AdvanceAssignmentFunc           func(ctx context.Context, assignmentID uuid.UUID, to domain.AssignmentStatus) (*dto.AssignmentResponse, error)
	GetAssignmentFunc               func(ctx context.Context, assignmentID uuid.UUID) (*dto.AssignmentResponse, error)
	ListAssignmentsByFreelancerFunc func(ctx context.Context, freelancerID uuid.UUID) ([]*dto.MyAssignmentResponse, error)
	ListAssignmentsByRequestFunc    func(ctx context.Context, requestID uuid.UUID) ([]*dto.AssignmentResponse, error)
}

func (m *MockMatchingService) AcceptAssignment(ctx context.Context, requestID, freelancerID uuid.UUID) (*dto.AssignmentResponse, error) {
	if m.AcceptAssignmentFunc != nil {
		return m.AcceptAssignmentFunc(ctx, requestID, freelancerID)
	}
	return &dto.AssignmentResponse{RequestID: requestID, FreelancerID: freelancerID}, nil
}

func (m *MockMatchingService) CancelAssignment(ctx context.Context, assignmentID uuid.UUID) (*dto.AssignmentResponse, error) {
	if m.CancelAssignmentFunc != nil {
		return m.CancelAssignmentFunc(ctx, assignmentID)
	}
	return &dto.AssignmentResponse{ID: assignmentID}, nil
}

func (m *MockMatchingService) AdvanceAssignment(ctx context.Context, assignmentID uuid.UUID, to domain.AssignmentStatus) (*dto.AssignmentResponse, error) {
	if m.AdvanceAssignmentFunc != nil {
		return m.AdvanceAssignmentFunc(ctx, assignmentID, to)
	}
	return &dto.AssignmentResponse{ID: assignmentID, Status: string(to)}, nil
}

func (m *MockMatchingService) GetAssignment(ctx context.Context, assignmentID uuid.UUID) (*dto.AssignmentResponse, error) {
	if m.GetAssignmentFunc != nil {
		return m.GetAssignmentFunc(ctx, assignmentID)
	}
	return &dto.AssignmentResponse{ID: assignmentID}, nil
}

func (m *MockMatchingService) ListAssignmentsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*dto.MyAssignmentResponse, error) {
	if m.ListAssignmentsByFreelancerFunc != nil {
		return m.ListAssignmentsByFreelancerFunc(ctx, freelancerID)
	}
	return []*dto.MyAssignmentResponse{}, nil
}

func (m *MockMatchingService) ListAssignmentsByRequest(ctx context.Context, requestID uuid.UUID) ([]*dto.AssignmentResponse, error) {
	if m.ListAssignmentsByRequestFunc != nil {
		return m.ListAssignmentsByRequestFunc(ctx, requestID)
	}
	return []*dto.AssignmentResponse{}, nil
}

// MockSubmissionService is a mock implementation of SubmissionService
type MockSubmissionService struct {
	CreateSubmissionFunc            func(ctx context.Context, userID uuid.UUID, req *dto.CreateSubmissionRequest) (*dto.SubmissionResponse, error)
	ResubmitFunc                    func(ctx context.Context, submissionID, userID uuid.UUID, req *dto.ResubmitRequest) (*dto.SubmissionResponse, error)
	StartReviewFunc                 func(ctx context.Context, submissionID uuid.UUID) (*dto.SubmissionResponse, error)
	ReviewFunc                      func(ctx context.Context, submissionID, reviewerID uuid.UUID, decision domain.SubmissionStatus) (*dto.SubmissionResponse, error)
	GetSubmissionFunc               func(ctx context.Context, submissionID uuid.UUID) (*dto.SubmissionResponse, error)
	ListSlotHistoryFunc             func(ctx context.Context, assignmentID uuid.UUID, slot int) ([]dto.SubmissionResponse, error)
	ListSubmissionsByAssignmentFunc func(ctx context.Context, assignmentID uuid.UUID, activeOnly bool) ([]dto.SubmissionResponse, error)
	RequestUploadURLFunc            func(ctx context.Context, userID uuid.UUID, req *dto.UploadURLRequest) (*dto.UploadURLResponse, error)
}

func (m *MockSubmissionService) CreateSubmission(ctx context.Context, userID uuid.UUID, req *dto.CreateSubmissionRequest) (*dto.SubmissionResponse, error) {
	if m.CreateSubmissionFunc != nil {
		return m.CreateSubmissionFunc(ctx, userID, req)
	}
	return &dto.SubmissionResponse{UserID: userID, VersionSlot: req.VersionSlot, Version: 1}, nil
}

func (m *MockSubmissionService) Resubmit(ctx context.Context, submissionID, userID uuid.UUID, req *dto.ResubmitRequest) (*dto.SubmissionResponse, error) {
	if m.ResubmitFunc != nil {
		return m.ResubmitFunc(ctx, submissionID, userID, req)
	}
	return &dto.SubmissionResponse{UserID: userID, Version: 2}, nil
}

func (m *MockSubmissionService) StartReview(ctx context.Context, submissionID uuid.UUID) (*dto.SubmissionResponse, error) {
	if m.StartReviewFunc != nil {
		return m.StartReviewFunc(ctx, submissionID)
	}
	return &dto.SubmissionResponse{ID: submissionID}, nil
}

func (m *MockSubmissionService) Review(ctx context.Context, submissionID, reviewerID uuid.UUID, decision domain.SubmissionStatus) (*dto.SubmissionResponse, error) {
	if m.ReviewFunc != nil {
		return m.ReviewFunc(ctx, submissionID, reviewerID, decision)
	}
	return &dto.SubmissionResponse{ID: submissionID, Status: string(decision)}, nil
}

func (m *MockSubmissionService) GetSubmission(ctx context.Context, submissionID uuid.UUID) (*dto.SubmissionResponse, error) {
	if m.GetSubmissionFunc != nil {
		return m.GetSubmissionFunc(ctx, submissionID)
	}
	return &dto.SubmissionResponse{ID: submissionID}, nil
}

func (m *MockSubmissionService) ListSlotHistory(ctx context.Context, assignmentID uuid.UUID, slot int) ([]dto.SubmissionResponse, error) {
	if m.ListSlotHistoryFunc != nil {
		return m.ListSlotHistoryFunc(ctx, assignmentID, slot)
	}
	return []dto.SubmissionResponse{}, nil
}

func (m *MockSubmissionService) ListSubmissionsByAssignment(ctx context.Context, assignmentID uuid.UUID, activeOnly bool) ([]dto.SubmissionResponse, error) {
	if m.ListSubmissionsByAssignmentFunc != nil {
		return m.ListSubmissionsByAssignmentFunc(ctx, assignmentID, activeOnly)
	}
	return []dto.SubmissionResponse{}, nil
}

func (m *MockSubmissionService) RequestUploadURL(ctx context.Context, userID uuid.UUID, req *dto.UploadURLRequest) (*dto.UploadURLResponse, error) {
	if m.RequestUploadURLFunc != nil {
		return m.RequestUploadURLFunc(ctx, userID, req)
	}
	return &dto.UploadURLResponse{}, nil
}

// MockFeedbackService is a mock implementation of FeedbackService
type MockFeedbackService struct {
	AddFeedbackFunc    func(ctx context.Context, submissionID, reviewerID uuid.UUID, req *dto.AddFeedbackRequest) (*dto.FeedbackResponse, error)
	ResolveFunc        func(ctx context.Context, feedbackID, resolverID uuid.UUID, outcome domain.FeedbackStatus) (*dto.FeedbackResponse, error)
	UpdateFeedbackFunc func(ctx context.Context, feedbackID, authorID uuid.UUID, req *dto.UpdateFeedbackRequest) (*dto.FeedbackResponse, error)
	GetFeedbackFunc    func(ctx context.Context, feedbackID uuid.UUID) (*dto.FeedbackResponse, error)
	ListFeedbackFunc   func(ctx context.Context, submissionID uuid.UUID, status *string) ([]*dto.FeedbackResponse, error)
}

func (m *MockFeedbackService) AddFeedback(ctx context.Context, submissionID, reviewerID uuid.UUID, req *dto.AddFeedbackRequest) (*dto.FeedbackResponse, error) {
	if m.AddFeedbackFunc != nil {
		return m.AddFeedbackFunc(ctx, submissionID, reviewerID, req)
	}
	return &dto.FeedbackResponse{}, nil
}

func (m *MockFeedbackService) Resolve(ctx context.Context, feedbackID, resolverID uuid.UUID, outcome domain.FeedbackStatus) (*dto.FeedbackResponse, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, feedbackID, resolverID, outcome)
	}
	return &dto.FeedbackResponse{ID: feedbackID, Status: string(outcome)}, nil
}

func (m *MockFeedbackService) UpdateFeedback(ctx context.Context, feedbackID, authorID uuid.UUID, req *dto.UpdateFeedbackRequest) (*dto.FeedbackResponse, error) {
	if m.UpdateFeedbackFunc != nil {
		return m.UpdateFeedbackFunc(ctx, feedbackID, authorID, req)
	}
	return &dto.FeedbackResponse{ID: feedbackID}, nil
}

func (m *MockFeedbackService) GetFeedback(ctx context.Context, feedbackID uuid.UUID) (*dto.FeedbackResponse, error) {
	if m.GetFeedbackFunc != nil {
		return m.GetFeedbackFunc(ctx, feedbackID)
	}
	return &dto.FeedbackResponse{ID: feedbackID}, nil
}

func (m *MockFeedbackService) ListFeedback(ctx context.Context, submissionID uuid.UUID, status *string) ([]*dto.FeedbackResponse, error) {
	if m.ListFeedbackFunc != nil {
		return m.ListFeedbackFunc(ctx, submissionID, status)
	}
	return []*dto.FeedbackResponse{}, nil
}

// MockSettlementService is a mock implementation of SettlementService
type MockSettlementService struct {
	RecordSettlementFunc func(ctx context.Context, req *dto.RecordSettlementRequest) (*dto.SettlementResponse, error)
	AssignRoundFunc      func(ctx context.Context, settlementID uuid.UUID, round domain.SettlementRound) (*dto.SettlementResponse, error)
	ProcessRoundFunc     func(ctx context.Context, year, quarter int, round domain.SettlementRound) (*dto.RoundReport, error)
	RetrySettlementFunc  func(ctx context.Context, settlementID uuid.UUID) (*dto.SettlementResponse, error)
	GetSettlementFunc    func(ctx context.Context, settlementID uuid.UUID) (*dto.SettlementResponse, error)
	ListSettlementsFunc  func(ctx context.Context, params service.SettlementListParams) ([]*dto.SettlementResponse, error)
	QuarterSummaryFunc   func(ctx context.Context, year, quarter int) (*dto.QuarterSummaryResponse, error)
}

func (m *MockSettlementService) RecordSettlement(ctx context.Context, req *dto.RecordSettlementRequest) (*dto.SettlementResponse, error) {
	if m.RecordSettlementFunc != nil {
		return m.RecordSettlementFunc(ctx, req)
	}
	return &dto.SettlementResponse{UserID: req.UserID, Amount: req.Amount, Type: req.Type}, nil
}

func (m *MockSettlementService) AssignRound(ctx context.Context, settlementID uuid.UUID, round domain.SettlementRound) (*dto.SettlementResponse, error) {
	if m.AssignRoundFunc != nil {
		return m.AssignRoundFunc(ctx, settlementID, round)
	}
	r := string(round)
	return &dto.SettlementResponse{ID: settlementID, Round: &r}, nil
}

func (m *MockSettlementService) ProcessRound(ctx context.Context, year, quarter int, round domain.SettlementRound) (*dto.RoundReport, error) {
	if m.ProcessRoundFunc != nil {
		return m.ProcessRoundFunc(ctx, year, quarter, round)
	}
	return &dto.RoundReport{QuarterYear: year, QuarterNumber: quarter, Round: string(round)}, nil
}

func (m *MockSettlementService) RetrySettlement(ctx context.Context, settlementID uuid.UUID) (*dto.SettlementResponse, error) {
	if m.RetrySettlementFunc != nil {
		return m.RetrySettlementFunc(ctx, settlementID)
	}
	return &dto.SettlementResponse{ID: settlementID}, nil
}

func (m *MockSettlementService) GetSettlement(ctx context.Context, settlementID uuid.UUID) (*dto.SettlementResponse, error) {
	if m.GetSettlementFunc != nil {
		return m.GetSettlementFunc(ctx, settlementID)
	}
	return &dto.SettlementResponse{ID: settlementID}, nil
}

func (m *MockSettlementService) ListSettlements(ctx context.Context, params service.SettlementListParams) ([]*dto.SettlementResponse, error) {
	if m.ListSettlementsFunc != nil {
		return m.ListSettlementsFunc(ctx, params)
	}
	return []*dto.SettlementResponse{}, nil
}

func (m *MockSettlementService) QuarterSummary(ctx context.Context, year, quarter int) (*dto.QuarterSummaryResponse, error) {
	if m.QuarterSummaryFunc != nil {
		return m.QuarterSummaryFunc(ctx, year, quarter)
	}
	return &dto.QuarterSummaryResponse{}, nil
}

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	UserActivityFunc func(ctx context.Context, userID uuid.UUID) (*dto.UserActivityResponse, error)
}

func (m *MockReportService) UserActivity(ctx context.Context, userID uuid.UUID) (*dto.UserActivityResponse, error) {
	if m.UserActivityFunc != nil {
		return m.UserActivityFunc(ctx, userID)
	}
	return &dto.UserActivityResponse{}, nil
}
