package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus is the review state of a Submission
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "PENDING"
	SubmissionStatusInReview SubmissionStatus = "IN_REVIEW"
	SubmissionStatusApproved SubmissionStatus = "APPROVED"
	SubmissionStatusRejected SubmissionStatus = "REJECTED"
	SubmissionStatusRevised  SubmissionStatus = "REVISED"
)

var submissionTransitions = map[SubmissionStatus][]SubmissionStatus{
	SubmissionStatusPending:  {SubmissionStatusInReview, SubmissionStatusApproved, SubmissionStatusRejected},
	SubmissionStatusInReview: {SubmissionStatusApproved, SubmissionStatusRejected},
	SubmissionStatusRejected: {SubmissionStatusRevised},
}

func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusInReview, SubmissionStatusApproved,
		SubmissionStatusRejected, SubmissionStatusRevised:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal edge from s
func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	return containsStatus(submissionTransitions[s], next)
}

// IsReviewDecision reports whether s is an outcome a reviewer may choose
func (s SubmissionStatus) IsReviewDecision() bool {
	return s == SubmissionStatusApproved || s == SubmissionStatusRejected
}

// Submission is one version of the content uploaded into a slot.
//
// Rows are never overwritten on resubmission: the previous version is marked
// inactive (superseded) and a new row with version+1 is inserted. SlotKey
// identifies the owner of the slot (an assignment, or a project/user pair for
// project-direct uploads) and (slot_key, version_slot, version) is unique.
type Submission struct {
	BaseModel
	SlotKey      string           `gorm:"type:varchar(100);not null;uniqueIndex:uq_submissions_slot_version,priority:1;index:idx_submissions_slot_active,priority:1" json:"-"`
	VersionSlot  int              `gorm:"not null;uniqueIndex:uq_submissions_slot_version,priority:2;index:idx_submissions_slot_active,priority:2" json:"versionSlot"`
	Version      int              `gorm:"not null;uniqueIndex:uq_submissions_slot_version,priority:3" json:"version"`
	IsActive     bool             `gorm:"not null;index:idx_submissions_slot_active,priority:3" json:"isActive"`
	AssignmentID *uuid.UUID       `gorm:"type:uuid;index:idx_submissions_assignment_id" json:"assignmentId,omitempty"`
	ProjectID    *uuid.UUID       `gorm:"type:uuid;index:idx_submissions_project_id" json:"projectId,omitempty"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index:idx_submissions_user_id" json:"userId"`
	VersionTitle string           `gorm:"type:varchar(200)" json:"versionTitle"`
	VideoURL     string           `gorm:"type:text;not null" json:"videoUrl"`
	FileKey      string           `gorm:"type:text" json:"fileKey,omitempty"`
	ThumbnailURL string           `gorm:"type:text" json:"thumbnailUrl,omitempty"`
	Duration     *float64         `json:"duration,omitempty"`
	Notes        string           `gorm:"type:text" json:"notes,omitempty"`
	Status       SubmissionStatus `gorm:"type:varchar(20);not null;index:idx_submissions_status" json:"status"`
	ReviewedBy   *uuid.UUID       `gorm:"type:uuid" json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time       `json:"reviewedAt,omitempty"`
	SupersededAt *time.Time       `json:"supersededAt,omitempty"`
}

// TableName specifies the table name for Submission
func (Submission) TableName() string {
	return "submissions"
}

// SlotKeyFor returns the slot owner key. Assignment-scoped slots take precedence
// over project-direct ones.
func SlotKeyFor(assignmentID, projectID *uuid.UUID, userID uuid.UUID) string {
	if assignmentID != nil {
		return "a:" + assignmentID.String()
	}
	if projectID != nil {
		return fmt.Sprintf("p:%s:%s", projectID.String(), userID.String())
	}
	return ""
}
