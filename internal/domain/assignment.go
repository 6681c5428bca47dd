package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus is the work state of a ProjectAssignment
type AssignmentStatus string

const (
	AssignmentStatusAccepted   AssignmentStatus = "ACCEPTED"
	AssignmentStatusInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentStatusSubmitted  AssignmentStatus = "SUBMITTED"
	AssignmentStatusCompleted  AssignmentStatus = "COMPLETED"
	AssignmentStatusCancelled  AssignmentStatus = "CANCELLED"
)

var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentStatusAccepted:   {AssignmentStatusInProgress, AssignmentStatusCancelled},
	AssignmentStatusInProgress: {AssignmentStatusSubmitted, AssignmentStatusCancelled},
	AssignmentStatusSubmitted:  {AssignmentStatusCompleted, AssignmentStatusCancelled},
}

func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusAccepted, AssignmentStatusInProgress, AssignmentStatusSubmitted,
		AssignmentStatusCompleted, AssignmentStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further edges leave s
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentStatusCompleted || s == AssignmentStatusCancelled
}

// CanTransitionTo reports whether next is a legal edge from s
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	return containsStatus(assignmentTransitions[s], next)
}

// ProjectAssignment binds one freelancer to one ProjectRequest.
// The (request_id, freelancer_id) pair is unique; a cancelled row is reactivated on re-accept.
type ProjectAssignment struct {
	BaseModel
	RequestID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_assignments_request_freelancer" json:"requestId"`
	FreelancerID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_assignments_request_freelancer;index:idx_assignments_freelancer_id" json:"freelancerId"`
	Status       AssignmentStatus `gorm:"type:varchar(20);not null;index:idx_assignments_status" json:"status"`
	AcceptedAt   time.Time        `gorm:"not null" json:"acceptedAt"`
	CancelledAt  *time.Time       `json:"cancelledAt,omitempty"`
	CompletedAt  *time.Time       `json:"completedAt,omitempty"`
}

// TableName specifies the table name for ProjectAssignment
func (ProjectAssignment) TableName() string {
	return "project_assignments"
}

// AcceptsSubmissions reports whether new submissions may be attached
func (a *ProjectAssignment) AcceptsSubmissions() bool {
	return !a.Status.IsTerminal()
}
