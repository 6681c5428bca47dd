package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/metrics"
	"stars-workflow-api/internal/repository"
	"stars-workflow-api/internal/response"
)

// CatalogService defines the interface for users, project requests and projects
type CatalogService interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	DeactivateUser(ctx context.Context, userID uuid.UUID) error

	CreateProjectRequest(ctx context.Context, creatorID uuid.UUID, req *dto.CreateProjectRequestBody) (*dto.ProjectRequestResponse, error)
	GetProjectRequest(ctx context.Context, requestID uuid.UUID) (*dto.ProjectRequestResponse, error)
	ListProjectRequests(ctx context.Context, status *string, createdBy *uuid.UUID) ([]*dto.ProjectRequestResponse, error)
	CloseProjectRequest(ctx context.Context, requestID uuid.UUID) (*dto.ProjectRequestResponse, error)
	CancelProjectRequest(ctx context.Context, requestID uuid.UUID) (*dto.CancelProjectRequestResponse, error)

	CreateProject(ctx context.Context, ownerID uuid.UUID, req *dto.CreateProjectBody) (*dto.ProjectResponse, error)
	GetProject(ctx context.Context, projectID uuid.UUID) (*dto.ProjectResponse, error)
	ListProjects(ctx context.Context, ownerID uuid.UUID) ([]*dto.ProjectResponse, error)
}

// catalogServiceImpl is the implementation of CatalogService
type catalogServiceImpl struct {
	userRepo    repository.UserRepository
	requestRepo repository.ProjectRequestRepository
	projectRepo repository.ProjectRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         Clock
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	userRepo repository.UserRepository,
	requestRepo repository.ProjectRequestRepository,
	projectRepo repository.ProjectRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) CatalogService {
	return &catalogServiceImpl{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		projectRepo: projectRepo,
		metrics:     m,
		logger:      logger,
		now:         defaultClock,
	}
}

// CreateUser registers a user. Email is unique.
func (s *catalogServiceImpl) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	role := domain.UserRole(req.Role)
	if !role.IsValid() {
		return nil, response.NewValidationError("Invalid user role", req.Role)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, response.NewInternalError("Failed to check email", err.Error())
	}
	if existing != nil {
		return nil, response.NewAppError(response.ErrCodeAlreadyExists, "Email already registered", email)
	}

	user := &domain.User{
		Email:    email,
		Name:     strings.TrimSpace(req.Name),
		Role:     role,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, response.NewAppError(response.ErrCodeAlreadyExists, "Email already registered", email)
		}
		return nil, response.NewInternalError("Failed to create user", err.Error())
	}

	s.logger.Info("User created", zap.String("user_id", user.ID.String()), zap.String("role", string(role)))
	return toUserResponse(user), nil
}

// GetUser retrieves a user by ID
func (s *catalogServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "User", userID)
	}
	return toUserResponse(user), nil
}

// DeactivateUser blocks the user from taking new assignments
func (s *catalogServiceImpl) DeactivateUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.SetActive(ctx, userID, false); err != nil {
		return lookupError(err, "User", userID)
	}
	s.logger.Info("User deactivated", zap.String("user_id", userID.String()))
	return nil
}

// CreateProjectRequest opens a request for freelancers
func (s *catalogServiceImpl) CreateProjectRequest(ctx context.Context, creatorID uuid.UUID, req *dto.CreateProjectRequestBody) (*dto.ProjectRequestResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, creatorID); err != nil {
		return nil, lookupError(err, "User", creatorID)
	}

	assignmentType := domain.AssignmentTypeMultiple
	if req.AssignmentType != nil {
		assignmentType = domain.AssignmentType(*req.AssignmentType)
		if !assignmentType.IsValid() {
			return nil, response.NewValidationError("Invalid assignment type", *req.AssignmentType)
		}
	}

	maxAssignees := 1
	if req.MaxAssignees != nil {
		maxAssignees = *req.MaxAssignees
	}
	if maxAssignees < 1 {
		return nil, response.NewValidationError("maxAssignees must be at least 1", "")
	}
	if assignmentType == domain.AssignmentTypeSingle {
		maxAssignees = 1
	}

	var budget decimal.NullDecimal
	if req.EstimatedBudget != nil {
		if req.EstimatedBudget.IsNegative() {
			return nil, response.NewValidationError("estimatedBudget must not be negative", req.EstimatedBudget.String())
		}
		budget = decimal.NewNullDecimal(req.EstimatedBudget.Round(2))
	}

	categories := req.Categories
	if categories == nil {
		categories = []string{}
	}

	projectRequest := &domain.ProjectRequest{
		CreatedBy:         creatorID,
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Categories:        datatypes.NewJSONSlice(categories),
		Deadline:          req.Deadline.UTC(),
		AssignmentType:    assignmentType,
		MaxAssignees:      maxAssignees,
		CurrentAssignees:  0,
		Status:            domain.RequestStatusOpen,
		EstimatedBudget:   budget,
		TargetCounselorID: req.TargetCounselorID,
	}
	if err := s.requestRepo.Create(ctx, projectRequest); err != nil {
		return nil, response.NewInternalError("Failed to create project request", err.Error())
	}

	s.logger.Info("Project request created",
		zap.String("request_id", projectRequest.ID.String()),
		zap.String("assignment_type", string(assignmentType)),
		zap.Int("max_assignees", maxAssignees))
	return toProjectRequestResponse(projectRequest), nil
}

// GetProjectRequest retrieves a project request by ID
func (s *catalogServiceImpl) GetProjectRequest(ctx context.Context, requestID uuid.UUID) (*dto.ProjectRequestResponse, error) {
	projectRequest, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, lookupError(err, "Project request", requestID)
	}
	return toProjectRequestResponse(projectRequest), nil
}

// ListProjectRequests returns requests newest first
func (s *catalogServiceImpl) ListProjectRequests(ctx context.Context, status *string, createdBy *uuid.UUID) ([]*dto.ProjectRequestResponse, error) {
	filter := repository.ProjectRequestFilter{CreatedBy: createdBy}
	if status != nil && *status != "" {
		st := domain.RequestStatus(*status)
		if !st.IsValid() {
			return nil, response.NewValidationError("Invalid request status", *status)
		}
		filter.Status = &st
	}

	requests, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, response.NewInternalError("Failed to fetch project requests", err.Error())
	}

	responses := make([]*dto.ProjectRequestResponse, len(requests))
	for i, r := range requests {
		responses[i] = toProjectRequestResponse(r)
	}
	return responses, nil
}

// CloseProjectRequest stops a request from taking further assignments
func (s *catalogServiceImpl) CloseProjectRequest(ctx context.Context, requestID uuid.UUID) (*dto.ProjectRequestResponse, error) {
	current, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, lookupError(err, "Project request", requestID)
	}
	if !current.Status.CanTransitionTo(domain.RequestStatusClosed) {
		return nil, response.NewInvalidTransitionError(requestID.String(), string(current.Status), string(domain.RequestStatusClosed))
	}

	err = s.requestRepo.TransitionStatus(ctx, requestID,
		[]domain.RequestStatus{domain.RequestStatusOpen, domain.RequestStatusFull}, domain.RequestStatusClosed)
	if err != nil {
		return nil, s.requestTransitionError(ctx, err, requestID, domain.RequestStatusClosed)
	}

	s.logger.Info("Project request closed", zap.String("request_id", requestID.String()))
	return s.GetProjectRequest(ctx, requestID)
}

// CancelProjectRequest cancels the request together with its non-terminal assignments
func (s *catalogServiceImpl) CancelProjectRequest(ctx context.Context, requestID uuid.UUID) (*dto.CancelProjectRequestResponse, error) {
	current, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, lookupError(err, "Project request", requestID)
	}
	if !current.Status.CanTransitionTo(domain.RequestStatusCancelled) {
		return nil, response.NewInvalidTransitionError(requestID.String(), string(current.Status), string(domain.RequestStatusCancelled))
	}

	cancelled, err := s.requestRepo.CancelWithAssignments(ctx, requestID, s.now())
	if err != nil {
		return nil, s.requestTransitionError(ctx, err, requestID, domain.RequestStatusCancelled)
	}
	for i := int64(0); i < cancelled; i++ {
		s.metrics.IncrementAssignmentCancelled()
	}

	s.logger.Info("Project request cancelled",
		zap.String("request_id", requestID.String()),
		zap.Int64("cancelled_assignments", cancelled))

	updated, err := s.GetProjectRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return &dto.CancelProjectRequestResponse{Request: updated, CancelledAssignments: cancelled}, nil
}

// requestTransitionError re-reads the row after a lost guarded update so the error names the real state
func (s *catalogServiceImpl) requestTransitionError(ctx context.Context, err error, requestID uuid.UUID, to domain.RequestStatus) error {
	if !errors.Is(err, repository.ErrStaleState) {
		return response.NewInternalError("Failed to update project request", err.Error())
	}
	from := "UNKNOWN"
	if latest, findErr := s.requestRepo.FindByID(ctx, requestID); findErr == nil {
		from = string(latest.Status)
	}
	return response.NewInvalidTransitionError(requestID.String(), from, string(to))
}

// CreateProject creates a project aggregate owned by ownerID
func (s *catalogServiceImpl) CreateProject(ctx context.Context, ownerID uuid.UUID, req *dto.CreateProjectBody) (*dto.ProjectResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, ownerID); err != nil {
		return nil, lookupError(err, "User", ownerID)
	}

	var budget decimal.NullDecimal
	if req.Budget != nil {
		if req.Budget.IsNegative() {
			return nil, response.NewValidationError("budget must not be negative", req.Budget.String())
		}
		budget = decimal.NewNullDecimal(req.Budget.Round(2))
	}

	project := &domain.Project{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Budget:      budget,
		Deadline:    req.Deadline,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, response.NewInternalError("Failed to create project", err.Error())
	}
	return toProjectResponse(project), nil
}

// GetProject retrieves a project by ID
func (s *catalogServiceImpl) GetProject(ctx context.Context, projectID uuid.UUID) (*dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, lookupError(err, "Project", projectID)
	}
	return toProjectResponse(project), nil
}

// ListProjects returns the owner's projects newest first
func (s *catalogServiceImpl) ListProjects(ctx context.Context, ownerID uuid.UUID) ([]*dto.ProjectResponse, error) {
	projects, err := s.projectRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, response.NewInternalError("Failed to fetch projects", err.Error())
	}
	responses := make([]*dto.ProjectResponse, len(projects))
	for i, p := range projects {
		responses[i] = toProjectResponse(p)
	}
	return responses, nil
}
