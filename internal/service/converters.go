package service

import (
	"github.com/shopspring/decimal"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
)

func nullDecimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func toUserResponse(user *domain.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

func toProjectRequestResponse(r *domain.ProjectRequest) *dto.ProjectRequestResponse {
	categories := []string(r.Categories)
	if categories == nil {
		categories = []string{}
	}
	return &dto.ProjectRequestResponse{
		ID:                r.ID,
		CreatedBy:         r.CreatedBy,
		Title:             r.Title,
		Description:       r.Description,
		Categories:        categories,
		Deadline:          r.Deadline,
		AssignmentType:    string(r.AssignmentType),
		MaxAssignees:      r.MaxAssignees,
		CurrentAssignees:  r.CurrentAssignees,
		Status:            string(r.Status),
		EstimatedBudget:   nullDecimalPtr(r.EstimatedBudget),
		TargetCounselorID: r.TargetCounselorID,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toProjectResponse(p *domain.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Title:       p.Title,
		Description: p.Description,
		Budget:      nullDecimalPtr(p.Budget),
		Deadline:    p.Deadline,
		CreatedAt:   p.CreatedAt,
	}
}

func toAssignmentResponse(a *domain.ProjectAssignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:           a.ID,
		RequestID:    a.RequestID,
		FreelancerID: a.FreelancerID,
		Status:       string(a.Status),
		AcceptedAt:   a.AcceptedAt,
		CancelledAt:  a.CancelledAt,
		CompletedAt:  a.CompletedAt,
	}
}

func toSubmissionResponse(s *domain.Submission) dto.SubmissionResponse {
	return dto.SubmissionResponse{
		ID:           s.ID,
		AssignmentID: s.AssignmentID,
		ProjectID:    s.ProjectID,
		UserID:       s.UserID,
		VersionSlot:  s.VersionSlot,
		Version:      s.Version,
		VersionTitle: s.VersionTitle,
		IsActive:     s.IsActive,
		VideoURL:     s.VideoURL,
		FileKey:      s.FileKey,
		ThumbnailURL: s.ThumbnailURL,
		Duration:     s.Duration,
		Notes:        s.Notes,
		Status:       string(s.Status),
		ReviewedBy:   s.ReviewedBy,
		ReviewedAt:   s.ReviewedAt,
		SupersededAt: s.SupersededAt,
		CreatedAt:    s.CreatedAt,
	}
}

func toFeedbackResponse(f *domain.Feedback) *dto.FeedbackResponse {
	annotations := []domain.Annotation(f.Annotations)
	if annotations == nil {
		annotations = []domain.Annotation{}
	}
	return &dto.FeedbackResponse{
		ID:           f.ID,
		SubmissionID: f.SubmissionID,
		UserID:       f.UserID,
		Content:      f.Content,
		FeedbackType: f.FeedbackType,
		Priority:     string(f.Priority),
		Status:       string(f.Status),
		StartTime:    f.StartTime,
		EndTime:      f.EndTime,
		Timestamp:    f.Timestamp,
		Annotations:  annotations,
		ResolvedBy:   f.ResolvedBy,
		ResolvedAt:   f.ResolvedAt,
		CreatedAt:    f.CreatedAt,
	}
}

func toSettlementResponse(s *domain.Settlement) *dto.SettlementResponse {
	var round *string
	if s.Round != nil {
		r := string(*s.Round)
		round = &r
	}
	return &dto.SettlementResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		SubmissionID:  s.SubmissionID,
		Amount:        s.Amount,
		Type:          string(s.Type),
		Round:         round,
		Status:        string(s.Status),
		QuarterYear:   s.QuarterYear,
		QuarterNumber: s.QuarterNumber,
		Description:   s.Description,
		FailureReason: s.FailureReason,
		ClaimedAt:     s.ClaimedAt,
		ProcessedAt:   s.ProcessedAt,
		CreatedAt:     s.CreatedAt,
	}
}
