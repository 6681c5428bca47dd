package dto

import (
	"time"

	"github.com/google/uuid"
)

// AdvanceAssignmentRequest moves an assignment along its work states
type AdvanceAssignmentRequest struct {
	Status string `json:"status" binding:"required,oneof=IN_PROGRESS SUBMITTED COMPLETED" example:"IN_PROGRESS"`
}

// AssignmentResponse represents a freelancer's assignment to a request
type AssignmentResponse struct {
	ID           uuid.UUID  `json:"assignmentId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	RequestID    uuid.UUID  `json:"requestId" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	FreelancerID uuid.UUID  `json:"freelancerId" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Status       string     `json:"status" example:"ACCEPTED"`
	AcceptedAt   time.Time  `json:"acceptedAt" example:"2025-01-15T10:30:00Z"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// MyAssignmentResponse is an assignment with its request and the active version of each slot
type MyAssignmentResponse struct {
	AssignmentResponse
	Request           *ProjectRequestResponse `json:"request,omitempty"`
	ActiveSubmissions []SubmissionResponse    `json:"activeSubmissions"`
}
