package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/metrics"
	"stars-workflow-api/internal/repository"
	"stars-workflow-api/internal/response"
)

// FeedbackService defines the interface for time-anchored review feedback
type FeedbackService interface {
	AddFeedback(ctx context.Context, submissionID, reviewerID uuid.UUID, req *dto.AddFeedbackRequest) (*dto.FeedbackResponse, error)
	Resolve(ctx context.Context, feedbackID, resolverID uuid.UUID, outcome domain.FeedbackStatus) (*dto.FeedbackResponse, error)
	UpdateFeedback(ctx context.Context, feedbackID, authorID uuid.UUID, req *dto.UpdateFeedbackRequest) (*dto.FeedbackResponse, error)
	GetFeedback(ctx context.Context, feedbackID uuid.UUID) (*dto.FeedbackResponse, error)
	ListFeedback(ctx context.Context, submissionID uuid.UUID, status *string) ([]*dto.FeedbackResponse, error)
}

// feedbackServiceImpl is the implementation of FeedbackService
type feedbackServiceImpl struct {
	feedbackRepo   repository.FeedbackRepository
	submissionRepo repository.SubmissionRepository
	userRepo       repository.UserRepository
	metrics        *metrics.Metrics
	logger         *zap.Logger
	now            Clock
}

// NewFeedbackService creates a new instance of FeedbackService
func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	submissionRepo repository.SubmissionRepository,
	userRepo repository.UserRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) FeedbackService {
	return &feedbackServiceImpl{
		feedbackRepo:   feedbackRepo,
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		metrics:        m,
		logger:         logger,
		now:            defaultClock,
	}
}

// validateTimeRange checks the media offsets of a feedback
func validateTimeRange(startTime, endTime, timestamp *float64) error {
	offsets := []struct {
		name  string
		value *float64
	}{{"startTime", startTime}, {"endTime", endTime}, {"timestamp", timestamp}}
	for _, o := range offsets {
		if o.value != nil && *o.value < 0 {
			return response.NewInvalidRangeError(o.name+" must not be negative", fmt.Sprintf("%g", *o.value))
		}
	}
	if startTime != nil && endTime != nil && *startTime > *endTime {
		return response.NewInvalidRangeError("startTime must not be after endTime",
			fmt.Sprintf("%g > %g", *startTime, *endTime))
	}
	return nil
}

func validateAnnotations(annotations []domain.Annotation) error {
	for i, a := range annotations {
		if !a.Kind.IsValid() {
			return response.NewValidationError("Invalid annotation kind", fmt.Sprintf("annotations[%d].kind=%s", i, a.Kind))
		}
	}
	return nil
}

// AddFeedback attaches a PENDING feedback to a submission
func (s *feedbackServiceImpl) AddFeedback(ctx context.Context, submissionID, reviewerID uuid.UUID, req *dto.AddFeedbackRequest) (*dto.FeedbackResponse, error) {
	if err := validateTimeRange(req.StartTime, req.EndTime, req.Timestamp); err != nil {
		return nil, err
	}
	if err := validateAnnotations(req.Annotations); err != nil {
		return nil, err
	}

	priority := domain.FeedbackPriorityNormal
	if req.Priority != "" {
		priority = domain.FeedbackPriority(req.Priority)
		if !priority.IsValid() {
			return nil, response.NewValidationError("Invalid feedback priority", req.Priority)
		}
	}

	if _, err := s.submissionRepo.FindByID(ctx, submissionID); err != nil {
		return nil, lookupError(err, "Submission", submissionID)
	}
	if _, err := s.userRepo.FindByID(ctx, reviewerID); err != nil {
		return nil, lookupError(err, "User", reviewerID)
	}

	annotations := req.Annotations
	if annotations == nil {
		annotations = []domain.Annotation{}
	}
	feedback := &domain.Feedback{
		SubmissionID: submissionID,
		UserID:       reviewerID,
		Content:      req.Content,
		FeedbackType: req.FeedbackType,
		Priority:     priority,
		Status:       domain.FeedbackStatusPending,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Timestamp:    req.Timestamp,
		Annotations:  datatypes.NewJSONSlice(annotations),
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, response.NewInternalError("Failed to create feedback", err.Error())
	}

	s.metrics.IncrementFeedbackCreated()
	s.logger.Info("Feedback added",
		zap.String("feedback_id", feedback.ID.String()),
		zap.String("submission_id", submissionID.String()))
	return toFeedbackResponse(feedback), nil
}

// Resolve closes a PENDING feedback as RESOLVED or WONTFIX
func (s *feedbackServiceImpl) Resolve(ctx context.Context, feedbackID, resolverID uuid.UUID, outcome domain.FeedbackStatus) (*dto.FeedbackResponse, error) {
	current, err := s.feedbackRepo.FindByID(ctx, feedbackID)
	if err != nil {
		return nil, lookupError(err, "Feedback", feedbackID)
	}
	if !current.Status.CanTransitionTo(outcome) {
		return nil, response.NewInvalidTransitionError(feedbackID.String(), string(current.Status), string(outcome))
	}

	if err := s.feedbackRepo.Resolve(ctx, feedbackID, resolverID, outcome, s.now()); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, response.NewInvalidTransitionError(feedbackID.String(), string(domain.FeedbackStatusPending), string(outcome))
		}
		return nil, response.NewInternalError("Failed to resolve feedback", err.Error())
	}

	s.metrics.IncrementFeedbackResolved(string(outcome))
	s.logger.Info("Feedback resolved",
		zap.String("feedback_id", feedbackID.String()),
		zap.String("outcome", string(outcome)))
	return s.GetFeedback(ctx, feedbackID)
}

// UpdateFeedback edits a PENDING feedback on behalf of its author
func (s *feedbackServiceImpl) UpdateFeedback(ctx context.Context, feedbackID, authorID uuid.UUID, req *dto.UpdateFeedbackRequest) (*dto.FeedbackResponse, error) {
	current, err := s.feedbackRepo.FindByID(ctx, feedbackID)
	if err != nil {
		return nil, lookupError(err, "Feedback", feedbackID)
	}
	if current.UserID != authorID {
		return nil, response.NewForbiddenError("Only the author can edit feedback", feedbackID.String())
	}
	if current.Status != domain.FeedbackStatusPending {
		return nil, response.NewInvalidTransitionError(feedbackID.String(), string(current.Status), string(current.Status))
	}

	updates := make(map[string]interface{})
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Priority != nil {
		priority := domain.FeedbackPriority(*req.Priority)
		if !priority.IsValid() {
			return nil, response.NewValidationError("Invalid feedback priority", *req.Priority)
		}
		updates["priority"] = priority
	}
	if req.FeedbackType != nil {
		updates["feedback_type"] = *req.FeedbackType
	}
	if len(updates) == 0 {
		return toFeedbackResponse(current), nil
	}

	if err := s.feedbackRepo.UpdatePending(ctx, feedbackID, authorID, updates); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, response.NewInvalidTransitionError(feedbackID.String(), "RESOLVED", string(domain.FeedbackStatusPending))
		}
		return nil, response.NewInternalError("Failed to update feedback", err.Error())
	}
	return s.GetFeedback(ctx, feedbackID)
}

// GetFeedback retrieves a feedback by ID
func (s *feedbackServiceImpl) GetFeedback(ctx context.Context, feedbackID uuid.UUID) (*dto.FeedbackResponse, error) {
	feedback, err := s.feedbackRepo.FindByID(ctx, feedbackID)
	if err != nil {
		return nil, lookupError(err, "Feedback", feedbackID)
	}
	return toFeedbackResponse(feedback), nil
}

// ListFeedback returns the submission's feedback in creation order
func (s *feedbackServiceImpl) ListFeedback(ctx context.Context, submissionID uuid.UUID, status *string) ([]*dto.FeedbackResponse, error) {
	var filter *domain.FeedbackStatus
	if status != nil && *status != "" {
		st := domain.FeedbackStatus(*status)
		if st != domain.FeedbackStatusPending && st != domain.FeedbackStatusResolved && st != domain.FeedbackStatusWontFix {
			return nil, response.NewValidationError("Invalid feedback status", *status)
		}
		filter = &st
	}

	if _, err := s.submissionRepo.FindByID(ctx, submissionID); err != nil {
		return nil, lookupError(err, "Submission", submissionID)
	}

	feedbacks, err := s.feedbackRepo.ListBySubmission(ctx, submissionID, filter)
	if err != nil {
		return nil, response.NewInternalError("Failed to fetch feedback", err.Error())
	}
	responses := make([]*dto.FeedbackResponse, len(feedbacks))
	for i, f := range feedbacks {
		responses[i] = toFeedbackResponse(f)
	}
	return responses, nil
}
