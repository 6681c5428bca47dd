package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stars-workflow-api/internal/client"
	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/metrics"
	"stars-workflow-api/internal/repository"
	"stars-workflow-api/internal/response"
)

// SubmissionOptions holds the limits the submission service enforces
type SubmissionOptions struct {
	MaxVersionSlots int
	UploadExpiry    time.Duration
}

// SubmissionService defines the interface for versioned submissions and their review
type SubmissionService interface {
	CreateSubmission(ctx context.Context, userID uuid.UUID, req *dto.CreateSubmissionRequest) (*dto.SubmissionResponse, error)
	Resubmit(ctx context.Context, submissionID, userID uuid.UUID, req *dto.ResubmitRequest) (*dto.SubmissionResponse, error)
	StartReview(ctx context.Context, submissionID uuid.UUID) (*dto.SubmissionResponse, error)
	Review(ctx context.Context, submissionID, reviewerID uuid.UUID, decision domain.SubmissionStatus) (*dto.SubmissionResponse, error)
	GetSubmission(ctx context.Context, submissionID uuid.UUID) (*dto.SubmissionResponse, error)
	ListSlotHistory(ctx context.Context, assignmentID uuid.UUID, slot int) ([]dto.SubmissionResponse, error)
	ListSubmissionsByAssignment(ctx context.Context, assignmentID uuid.UUID, activeOnly bool) ([]dto.SubmissionResponse, error)
	RequestUploadURL(ctx context.Context, userID uuid.UUID, req *dto.UploadURLRequest) (*dto.UploadURLResponse, error)
}

// submissionServiceImpl is the implementation of SubmissionService
type submissionServiceImpl struct {
	submissionRepo repository.SubmissionRepository
	assignmentRepo repository.AssignmentRepository
	projectRepo    repository.ProjectRepository
	s3Client       client.S3ClientInterface
	opts           SubmissionOptions
	metrics        *metrics.Metrics
	logger         *zap.Logger
	now            Clock
}

// NewSubmissionService creates a new instance of SubmissionService
func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	assignmentRepo repository.AssignmentRepository,
	projectRepo repository.ProjectRepository,
	s3Client client.S3ClientInterface,
	opts SubmissionOptions,
	m *metrics.Metrics,
	logger *zap.Logger,
) SubmissionService {
	if opts.MaxVersionSlots < 1 {
		opts.MaxVersionSlots = 5
	}
	if opts.UploadExpiry <= 0 {
		opts.UploadExpiry = 5 * time.Minute
	}
	return &submissionServiceImpl{
		submissionRepo: submissionRepo,
		assignmentRepo: assignmentRepo,
		projectRepo:    projectRepo,
		s3Client:       s3Client,
		opts:           opts,
		metrics:        m,
		logger:         logger,
		now:            defaultClock,
	}
}

// CreateSubmission uploads version 1 into an empty slot
func (s *submissionServiceImpl) CreateSubmission(ctx context.Context, userID uuid.UUID, req *dto.CreateSubmissionRequest) (*dto.SubmissionResponse, error) {
	if (req.AssignmentID == nil) == (req.ProjectID == nil) {
		return nil, response.NewValidationError("Exactly one of assignmentId or projectId is required", "")
	}
	if req.VersionSlot < 1 || req.VersionSlot > s.opts.MaxVersionSlots {
		return nil, response.NewValidationError("versionSlot out of range", "")
	}

	if req.AssignmentID != nil {
		assignment, err := s.assignmentRepo.FindByID(ctx, *req.AssignmentID)
		if err != nil {
			return nil, lookupError(err, "Assignment", *req.AssignmentID)
		}
		if assignment.FreelancerID != userID {
			return nil, response.NewForbiddenError("Only the assignee can submit to this assignment", assignment.ID.String())
		}
		if !assignment.AcceptsSubmissions() {
			return nil, response.NewInvalidTransitionError(assignment.ID.String(), string(assignment.Status), "SUBMISSION")
		}
	} else if _, err := s.projectRepo.FindByID(ctx, *req.ProjectID); err != nil {
		return nil, lookupError(err, "Project", *req.ProjectID)
	}

	slotKey := domain.SlotKeyFor(req.AssignmentID, req.ProjectID, userID)
	active, err := s.submissionRepo.FindActiveInSlot(ctx, slotKey, req.VersionSlot)
	if err != nil {
		return nil, response.NewInternalError("Failed to check version slot", err.Error())
	}
	if active != nil {
		return nil, response.NewSlotOccupiedError(slotKey)
	}

	title := strings.TrimSpace(req.VersionTitle)
	submission := &domain.Submission{
		SlotKey:      slotKey,
		VersionSlot:  req.VersionSlot,
		Version:      1,
		IsActive:     true,
		AssignmentID: req.AssignmentID,
		ProjectID:    req.ProjectID,
		UserID:       userID,
		VersionTitle: title,
		VideoURL:     req.VideoURL,
		FileKey:      req.FileKey,
		ThumbnailURL: req.ThumbnailURL,
		Duration:     req.Duration,
		Notes:        req.Notes,
		Status:       domain.SubmissionStatusPending,
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, response.NewSlotOccupiedError(slotKey)
		}
		return nil, response.NewInternalError("Failed to create submission", err.Error())
	}

	s.metrics.IncrementSubmissionCreated("initial")
	s.logger.Info("Submission created",
		zap.String("submission_id", submission.ID.String()),
		zap.String("slot_key", slotKey),
		zap.Int("version_slot", req.VersionSlot))

	resp := toSubmissionResponse(submission)
	return &resp, nil
}

// Resubmit supersedes the active REJECTED version of a slot with version+1
func (s *submissionServiceImpl) Resubmit(ctx context.Context, submissionID, userID uuid.UUID, req *dto.ResubmitRequest) (*dto.SubmissionResponse, error) {
	prior, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, lookupError(err, "Submission", submissionID)
	}
	if prior.UserID != userID {
		return nil, response.NewForbiddenError("Only the submitter can resubmit", submissionID.String())
	}
	if !prior.IsActive || !prior.Status.CanTransitionTo(domain.SubmissionStatusRevised) {
		return nil, response.NewInvalidTransitionError(submissionID.String(), string(prior.Status), string(domain.SubmissionStatusRevised))
	}

	if prior.AssignmentID != nil {
		assignment, err := s.assignmentRepo.FindByID(ctx, *prior.AssignmentID)
		if err != nil {
			return nil, lookupError(err, "Assignment", *prior.AssignmentID)
		}
		if !assignment.AcceptsSubmissions() {
			return nil, response.NewInvalidTransitionError(assignment.ID.String(), string(assignment.Status), "SUBMISSION")
		}
	}

	title := prior.VersionTitle
	if req.VersionTitle != nil {
		title = strings.TrimSpace(*req.VersionTitle)
	}
	next := &domain.Submission{
		SlotKey:      prior.SlotKey,
		VersionSlot:  prior.VersionSlot,
		Version:      prior.Version + 1,
		IsActive:     true,
		AssignmentID: prior.AssignmentID,
		ProjectID:    prior.ProjectID,
		UserID:       prior.UserID,
		VersionTitle: title,
		VideoURL:     req.VideoURL,
		FileKey:      req.FileKey,
		ThumbnailURL: req.ThumbnailURL,
		Duration:     req.Duration,
		Notes:        req.Notes,
		Status:       domain.SubmissionStatusPending,
	}

	if err := s.submissionRepo.Supersede(ctx, prior.ID, next, s.now()); err != nil {
		if errors.Is(err, repository.ErrStaleState) || errors.Is(err, repository.ErrDuplicate) {
			return nil, response.NewSlotOccupiedError(prior.SlotKey)
		}
		return nil, response.NewInternalError("Failed to resubmit", err.Error())
	}

	s.metrics.IncrementSubmissionCreated("resubmission")
	s.logger.Info("Submission resubmitted",
		zap.String("prior_id", prior.ID.String()),
		zap.String("submission_id", next.ID.String()),
		zap.Int("version", next.Version))

	resp := toSubmissionResponse(next)
	return &resp, nil
}

// StartReview marks a PENDING submission as being reviewed
func (s *submissionServiceImpl) StartReview(ctx context.Context, submissionID uuid.UUID) (*dto.SubmissionResponse, error) {
	return s.transition(ctx, submissionID, domain.SubmissionStatusInReview, nil)
}

// Review records a reviewer decision on the active version
func (s *submissionServiceImpl) Review(ctx context.Context, submissionID, reviewerID uuid.UUID, decision domain.SubmissionStatus) (*dto.SubmissionResponse, error) {
	if !decision.IsReviewDecision() {
		return nil, response.NewValidationError("Decision must be APPROVED or REJECTED", string(decision))
	}
	resp, err := s.transition(ctx, submissionID, decision, &reviewerID)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementSubmissionReviewed(string(decision))
	return resp, nil
}

func (s *submissionServiceImpl) transition(ctx context.Context, submissionID uuid.UUID, to domain.SubmissionStatus, reviewerID *uuid.UUID) (*dto.SubmissionResponse, error) {
	current, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, lookupError(err, "Submission", submissionID)
	}
	if !current.IsActive || !current.Status.CanTransitionTo(to) {
		return nil, response.NewInvalidTransitionError(submissionID.String(), string(current.Status), string(to))
	}

	from := []domain.SubmissionStatus{current.Status}
	if err := s.submissionRepo.TransitionStatus(ctx, submissionID, from, to, reviewerID, s.now()); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			latest := "UNKNOWN"
			if reread, findErr := s.submissionRepo.FindByID(ctx, submissionID); findErr == nil {
				latest = string(reread.Status)
			}
			return nil, response.NewInvalidTransitionError(submissionID.String(), latest, string(to))
		}
		return nil, response.NewInternalError("Failed to update submission", err.Error())
	}

	s.logger.Info("Submission status changed",
		zap.String("submission_id", submissionID.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(to)))
	return s.GetSubmission(ctx, submissionID)
}

// GetSubmission retrieves a submission by ID
func (s *submissionServiceImpl) GetSubmission(ctx context.Context, submissionID uuid.UUID) (*dto.SubmissionResponse, error) {
	submission, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, lookupError(err, "Submission", submissionID)
	}
	resp := toSubmissionResponse(submission)
	return &resp, nil
}

// ListSlotHistory returns every version of one slot of an assignment, newest first
func (s *submissionServiceImpl) ListSlotHistory(ctx context.Context, assignmentID uuid.UUID, slot int) ([]dto.SubmissionResponse, error) {
	if _, err := s.assignmentRepo.FindByID(ctx, assignmentID); err != nil {
		return nil, lookupError(err, "Assignment", assignmentID)
	}
	history, err := s.submissionRepo.ListSlotHistory(ctx, domain.SlotKeyFor(&assignmentID, nil, uuid.Nil), slot)
	if err != nil {
		return nil, response.NewInternalError("Failed to fetch slot history", err.Error())
	}
	return toSubmissionResponses(history), nil
}

// ListSubmissionsByAssignment returns the assignment's submissions ordered by slot then version
func (s *submissionServiceImpl) ListSubmissionsByAssignment(ctx context.Context, assignmentID uuid.UUID, activeOnly bool) ([]dto.SubmissionResponse, error) {
	if _, err := s.assignmentRepo.FindByID(ctx, assignmentID); err != nil {
		return nil, lookupError(err, "Assignment", assignmentID)
	}
	submissions, err := s.submissionRepo.ListByAssignment(ctx, assignmentID, activeOnly)
	if err != nil {
		return nil, response.NewInternalError("Failed to fetch submissions", err.Error())
	}
	return toSubmissionResponses(submissions), nil
}

// RequestUploadURL returns a presigned PUT URL for submission media
func (s *submissionServiceImpl) RequestUploadURL(ctx context.Context, userID uuid.UUID, req *dto.UploadURLRequest) (*dto.UploadURLResponse, error) {
	if s.s3Client == nil {
		return nil, response.NewInternalError("Media storage is not configured", "")
	}

	kind := req.Kind
	if kind == "" {
		kind = client.MediaKindSubmissions
	}
	contentType := strings.ToLower(req.ContentType)
	if !strings.HasPrefix(contentType, "video/") && !strings.HasPrefix(contentType, "image/") {
		return nil, response.NewValidationError("Only video and image uploads are accepted", req.ContentType)
	}
	if filepath.Ext(req.FileName) == "" {
		return nil, response.NewValidationError("File name must have an extension", req.FileName)
	}

	uploadURL, fileKey, err := s.s3Client.GeneratePresignedURL(ctx, kind, userID.String(), req.FileName, contentType)
	if err != nil {
		s.logger.Error("Failed to generate upload URL",
			zap.String("user_id", userID.String()),
			zap.String("file_name", req.FileName),
			zap.Error(err))
		return nil, response.NewInternalError("Failed to generate upload URL", err.Error())
	}

	return &dto.UploadURLResponse{
		UploadURL: uploadURL,
		FileKey:   fileKey,
		FileURL:   s.s3Client.GetFileURL(fileKey),
		ExpiresIn: int(s.opts.UploadExpiry.Seconds()),
	}, nil
}

func toSubmissionResponses(submissions []*domain.Submission) []dto.SubmissionResponse {
	responses := make([]dto.SubmissionResponse, len(submissions))
	for i, sub := range submissions {
		responses[i] = toSubmissionResponse(sub)
	}
	return responses
}
