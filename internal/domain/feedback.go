package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type FeedbackPriority string

const (
	FeedbackPriorityLow    FeedbackPriority = "LOW"
	FeedbackPriorityNormal FeedbackPriority = "NORMAL"
	FeedbackPriorityHigh   FeedbackPriority = "HIGH"
	FeedbackPriorityUrgent FeedbackPriority = "URGENT"
)

func (p FeedbackPriority) IsValid() bool {
	switch p {
	case FeedbackPriorityLow, FeedbackPriorityNormal, FeedbackPriorityHigh, FeedbackPriorityUrgent:
		return true
	}
	return false
}

type FeedbackStatus string

const (
	FeedbackStatusPending  FeedbackStatus = "PENDING"
	FeedbackStatusResolved FeedbackStatus = "RESOLVED"
	FeedbackStatusWontFix  FeedbackStatus = "WONTFIX"
)

// CanTransitionTo reports whether next is a legal edge from s. Both outcomes are terminal.
func (s FeedbackStatus) CanTransitionTo(next FeedbackStatus) bool {
	return s == FeedbackStatusPending && (next == FeedbackStatusResolved || next == FeedbackStatusWontFix)
}

// AnnotationKind tags the shape of an on-screen annotation
type AnnotationKind string

const (
	AnnotationKindPoint    AnnotationKind = "point"
	AnnotationKindRect     AnnotationKind = "rect"
	AnnotationKindCircle   AnnotationKind = "circle"
	AnnotationKindArrow    AnnotationKind = "arrow"
	AnnotationKindFreehand AnnotationKind = "freehand"
	AnnotationKindRange    AnnotationKind = "range"
)

func (k AnnotationKind) IsValid() bool {
	switch k {
	case AnnotationKindPoint, AnnotationKindRect, AnnotationKindCircle,
		AnnotationKindArrow, AnnotationKindFreehand, AnnotationKindRange:
		return true
	}
	return false
}

// Point is a normalized screen coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AnnotationStyle is presentation-only data stored as given
type AnnotationStyle struct {
	Color       string  `json:"color,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Annotation is a tagged shape drawn over the media. Only Kind is checked;
// geometry is stored for the client to render.
type Annotation struct {
	Kind   AnnotationKind   `json:"kind"`
	X      *float64         `json:"x,omitempty"`
	Y      *float64         `json:"y,omitempty"`
	Width  *float64         `json:"width,omitempty"`
	Height *float64         `json:"height,omitempty"`
	Radius *float64         `json:"radius,omitempty"`
	EndX   *float64         `json:"endX,omitempty"`
	EndY   *float64         `json:"endY,omitempty"`
	Points []Point          `json:"points,omitempty"`
	Start  *float64         `json:"start,omitempty"`
	End    *float64         `json:"end,omitempty"`
	Text   string           `json:"text,omitempty"`
	Style  *AnnotationStyle `json:"style,omitempty"`
}

// Feedback is a time-anchored review comment on a submission
type Feedback struct {
	BaseModel
	SubmissionID uuid.UUID                       `gorm:"type:uuid;not null;index:idx_feedbacks_submission_id" json:"submissionId"`
	UserID       uuid.UUID                       `gorm:"type:uuid;not null;index:idx_feedbacks_user_id" json:"userId"`
	Content      string                          `gorm:"type:text;not null" json:"content"`
	FeedbackType string                          `gorm:"type:varchar(50)" json:"feedbackType,omitempty"`
	Priority     FeedbackPriority                `gorm:"type:varchar(20);not null" json:"priority"`
	Status       FeedbackStatus                  `gorm:"type:varchar(20);not null;index:idx_feedbacks_status" json:"status"`
	StartTime    *float64                        `json:"startTime,omitempty"`
	EndTime      *float64                        `json:"endTime,omitempty"`
	Timestamp    *float64                        `json:"timestamp,omitempty"`
	Annotations  datatypes.JSONSlice[Annotation] `json:"annotations"`
	ResolvedBy   *uuid.UUID                      `gorm:"type:uuid" json:"resolvedBy,omitempty"`
	ResolvedAt   *time.Time                      `json:"resolvedAt,omitempty"`
}

// TableName specifies the table name for Feedback
func (Feedback) TableName() string {
	return "feedbacks"
}
