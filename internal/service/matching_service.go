package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/metrics"
	"stars-workflow-api/internal/repository"
	"stars-workflow-api/internal/response"
)

// Rejection reasons recorded on the assignments_rejected metric
const (
	rejectReasonCapacity  = "capacity"
	rejectReasonDuplicate = "duplicate"
	rejectReasonInactive  = "inactive_user"
)

// MatchingService defines the interface for freelancer/request matching
type MatchingService interface {
	AcceptAssignment(ctx context.Context, requestID, freelancerID uuid.UUID) (*dto.AssignmentResponse, error)
	CancelAssignment(ctx context.Context, assignmentID uuid.UUID) (*dto.AssignmentResponse, error)
	AdvanceAssignment(ctx context.Context, assignmentID uuid.UUID, to domain.AssignmentStatus) (*dto.AssignmentResponse, error)
	GetAssignment(ctx context.Context, assignmentID uuid.UUID) (*dto.AssignmentResponse, error)
	ListAssignmentsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*dto.MyAssignmentResponse, error)
	ListAssignmentsByRequest(ctx context.Context, requestID uuid.UUID) ([]*dto.AssignmentResponse, error)
}

// matchingServiceImpl is the implementation of MatchingService
type matchingServiceImpl struct {
	requestRepo    repository.ProjectRequestRepository
	assignmentRepo repository.AssignmentRepository
	userRepo       repository.UserRepository
	submissionRepo repository.SubmissionRepository
	metrics        *metrics.Metrics
	logger         *zap.Logger
	now            Clock
}

// NewMatchingService creates a new instance of MatchingService
func NewMatchingService(
	requestRepo repository.ProjectRequestRepository,
	assignmentRepo repository.AssignmentRepository,
	userRepo repository.UserRepository,
	submissionRepo repository.SubmissionRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) MatchingService {
	return &matchingServiceImpl{
		requestRepo:    requestRepo,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		submissionRepo: submissionRepo,
		metrics:        m,
		logger:         logger,
		now:            defaultClock,
	}
}

// AcceptAssignment binds the freelancer to the request if a seat is free.
//
// The pre-checks only produce better errors; the seat itself is taken by the
// repository's compare-and-increment, which is what keeps the counter bounded.
func (s *matchingServiceImpl) AcceptAssignment(ctx context.Context, requestID, freelancerID uuid.UUID) (*dto.AssignmentResponse, error) {
	projectRequest, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, lookupError(err, "Project request", requestID)
	}

	freelancer, err := s.userRepo.FindByID(ctx, freelancerID)
	if err != nil {
		return nil, lookupError(err, "User", freelancerID)
	}
	if !freelancer.IsActive {
		s.metrics.IncrementAssignmentRejected(rejectReasonInactive)
		return nil, response.NewValidationError("Inactive users cannot accept assignments", freelancerID.String())
	}

	if projectRequest.Status != domain.RequestStatusOpen {
		s.metrics.IncrementAssignmentRejected(rejectReasonCapacity)
		return nil, response.NewCapacityExceededError(requestID.String())
	}

	assignment, err := s.assignmentRepo.Accept(ctx, requestID, freelancerID, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityExceeded):
			s.metrics.IncrementAssignmentRejected(rejectReasonCapacity)
			return nil, response.NewCapacityExceededError(requestID.String())
		case errors.Is(err, repository.ErrDuplicate):
			s.metrics.IncrementAssignmentRejected(rejectReasonDuplicate)
			return nil, response.NewDuplicateAssignmentError(requestID.String())
		}
		s.logger.Error("Failed to accept assignment",
			zap.String("request_id", requestID.String()),
			zap.String("freelancer_id", freelancerID.String()),
			zap.Error(err))
		return nil, response.NewInternalError("Failed to accept assignment", err.Error())
	}

	s.metrics.IncrementAssignmentAccepted()
	s.logger.Info("Assignment accepted",
		zap.String("assignment_id", assignment.ID.String()),
		zap.String("request_id", requestID.String()),
		zap.String("freelancer_id", freelancerID.String()))

	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

// CancelAssignment cancels a non-terminal assignment and frees its seat
func (s *matchingServiceImpl) CancelAssignment(ctx context.Context, assignmentID uuid.UUID) (*dto.AssignmentResponse, error) {
	current, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, lookupError(err, "Assignment", assignmentID)
	}
	if current.Status.IsTerminal() {
		return nil, response.NewInvalidTransitionError(assignmentID.String(), string(current.Status), string(domain.AssignmentStatusCancelled))
	}

	assignment, err := s.assignmentRepo.Cancel(ctx, assignmentID, s.now())
	if err != nil {
		return nil, s.assignmentTransitionError(ctx, err, assignmentID, domain.AssignmentStatusCancelled)
	}

	s.metrics.IncrementAssignmentCancelled()
	s.logger.Info("Assignment cancelled",
		zap.String("assignment_id", assignmentID.String()),
		zap.String("request_id", assignment.RequestID.String()))

	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

// AdvanceAssignment moves the assignment one step along ACCEPTED→IN_PROGRESS→SUBMITTED→COMPLETED
func (s *matchingServiceImpl) AdvanceAssignment(ctx context.Context, assignmentID uuid.UUID, to domain.AssignmentStatus) (*dto.AssignmentResponse, error) {
	if !to.IsValid() || to == domain.AssignmentStatusCancelled || to == domain.AssignmentStatusAccepted {
		return nil, response.NewValidationError("Invalid target status", string(to))
	}

	current, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, lookupError(err, "Assignment", assignmentID)
	}
	if !current.Status.CanTransitionTo(to) {
		return nil, response.NewInvalidTransitionError(assignmentID.String(), string(current.Status), string(to))
	}

	if err := s.assignmentRepo.Advance(ctx, assignmentID, current.Status, to, s.now()); err != nil {
		return nil, s.assignmentTransitionError(ctx, err, assignmentID, to)
	}

	s.logger.Info("Assignment advanced",
		zap.String("assignment_id", assignmentID.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(to)))
	return s.GetAssignment(ctx, assignmentID)
}

func (s *matchingServiceImpl) assignmentTransitionError(ctx context.Context, err error, assignmentID uuid.UUID, to domain.AssignmentStatus) error {
	if !errors.Is(err, repository.ErrStaleState) {
		return response.NewInternalError("Failed to update assignment", err.Error())
	}
	from := "UNKNOWN"
	if latest, findErr := s.assignmentRepo.FindByID(ctx, assignmentID); findErr == nil {
		from = string(latest.Status)
	}
	return response.NewInvalidTransitionError(assignmentID.String(), from, string(to))
}

// GetAssignment retrieves an assignment by ID
func (s *matchingServiceImpl) GetAssignment(ctx context.Context, assignmentID uuid.UUID) (*dto.AssignmentResponse, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, lookupError(err, "Assignment", assignmentID)
	}
	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

// ListAssignmentsByFreelancer returns the freelancer's assignments with their
// request and the active version of every slot
func (s *matchingServiceImpl) ListAssignmentsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*dto.MyAssignmentResponse, error) {
	assignments, err := s.assignmentRepo.ListByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, response.NewInternalError("Failed to fetch assignments", err.Error())
	}

	ids := make([]uuid.UUID, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID
	}
	active, err := s.submissionRepo.ListActiveByAssignmentIDs(ctx, ids)
	if err != nil {
		return nil, response.NewInternalError("Failed to fetch submissions", err.Error())
	}
	byAssignment := make(map[uuid.UUID][]dto.SubmissionResponse, len(assignments))
	for _, sub := range active {
		if sub.AssignmentID == nil {
			continue
		}
		byAssignment[*sub.AssignmentID] = append(byAssignment[*sub.AssignmentID], toSubmissionResponse(sub))
	}

	requests := make(map[uuid.UUID]*dto.ProjectRequestResponse)
	responses := make([]*dto.MyAssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		req, ok := requests[a.RequestID]
		if !ok {
			found, err := s.requestRepo.FindByID(ctx, a.RequestID)
			if err != nil {
				s.logger.Warn("Failed to load request for assignment",
					zap.String("assignment_id", a.ID.String()),
					zap.String("request_id", a.RequestID.String()),
					zap.Error(err))
			} else {
				req = toProjectRequestResponse(found)
			}
			requests[a.RequestID] = req
		}

		subs := byAssignment[a.ID]
		if subs == nil {
			subs = []dto.SubmissionResponse{}
		}
		responses = append(responses, &dto.MyAssignmentResponse{
			AssignmentResponse: toAssignmentResponse(a),
			Request:            req,
			ActiveSubmissions:  subs,
		})
	}
	return responses, nil
}

// ListAssignmentsByRequest returns every assignment of the request in acceptance order
func (s *matchingServiceImpl) ListAssignmentsByRequest(ctx context.Context, requestID uuid.UUID) ([]*dto.AssignmentResponse, error) {
	if _, err := s.requestRepo.FindByID(ctx, requestID); err != nil {
		return nil, lookupError(err, "Project request", requestID)
	}

	assignments, err := s.assignmentRepo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, response.NewInternalError("Failed to fetch assignments", err.Error())
	}
	responses := make([]*dto.AssignmentResponse, len(assignments))
	for i, a := range assignments {
		resp := toAssignmentResponse(a)
		responses[i] = &resp
	}
	return responses, nil
}
