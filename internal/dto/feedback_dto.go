package dto

import (
	"time"

	"github.com/google/uuid"

	"stars-workflow-api/internal/domain"
)

// AddFeedbackRequest represents a time-anchored review comment
// @Description startTime/endTime/timestamp are media offsets in seconds
// @Description startTime must not be after endTime when both are given
type AddFeedbackRequest struct {
	Content      string              `json:"content" binding:"required,min=1,max=5000" example:"Logo appears too early"`
	Priority     string              `json:"priority,omitempty" example:"HIGH"`
	FeedbackType string              `json:"feedbackType,omitempty" binding:"max=50" example:"visual"`
	StartTime    *float64            `json:"startTime,omitempty" example:"2.0"`
	EndTime      *float64            `json:"endTime,omitempty" example:"5.0"`
	Timestamp    *float64            `json:"timestamp,omitempty" example:"3.5"`
	Annotations  []domain.Annotation `json:"annotations,omitempty"`
}

// UpdateFeedbackRequest edits a PENDING feedback; only the author may do so
type UpdateFeedbackRequest struct {
	Content      *string `json:"content,omitempty" binding:"omitempty,min=1,max=5000"`
	Priority     *string `json:"priority,omitempty"`
	FeedbackType *string `json:"feedbackType,omitempty" binding:"omitempty,max=50"`
}

// ResolveFeedbackRequest closes a feedback
type ResolveFeedbackRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=RESOLVED WONTFIX" example:"RESOLVED"`
}

// FeedbackResponse represents a feedback entry
type FeedbackResponse struct {
	ID           uuid.UUID           `json:"feedbackId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	SubmissionID uuid.UUID           `json:"submissionId"`
	UserID       uuid.UUID           `json:"userId"`
	Content      string              `json:"content"`
	FeedbackType string              `json:"feedbackType,omitempty"`
	Priority     string              `json:"priority" example:"NORMAL"`
	Status       string              `json:"status" example:"PENDING"`
	StartTime    *float64            `json:"startTime,omitempty"`
	EndTime      *float64            `json:"endTime,omitempty"`
	Timestamp    *float64            `json:"timestamp,omitempty"`
	Annotations  []domain.Annotation `json:"annotations"`
	ResolvedBy   *uuid.UUID          `json:"resolvedBy,omitempty"`
	ResolvedAt   *time.Time          `json:"resolvedAt,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
}
