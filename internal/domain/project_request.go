package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AssignmentType decides how many freelancers a request takes
type AssignmentType string

const (
	AssignmentTypeSingle   AssignmentType = "SINGLE"
	AssignmentTypeMultiple AssignmentType = "MULTIPLE"
)

func (t AssignmentType) IsValid() bool {
	return t == AssignmentTypeSingle || t == AssignmentTypeMultiple
}

// RequestStatus is the lifecycle state of a ProjectRequest
type RequestStatus string

const (
	RequestStatusOpen      RequestStatus = "OPEN"
	RequestStatusFull      RequestStatus = "FULL"
	RequestStatusClosed    RequestStatus = "CLOSED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusOpen: {RequestStatusFull, RequestStatusClosed, RequestStatusCancelled},
	RequestStatusFull: {RequestStatusOpen, RequestStatusClosed, RequestStatusCancelled},
}

func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusOpen, RequestStatusFull, RequestStatusClosed, RequestStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal edge from s
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return containsStatus(requestTransitions[s], next)
}

// ProjectRequest is an open call for freelancers, owned by its creator
type ProjectRequest struct {
	BaseModel
	CreatedBy         uuid.UUID                  `gorm:"type:uuid;not null;index:idx_project_requests_created_by" json:"createdBy"`
	Title             string                     `gorm:"type:varchar(200);not null" json:"title"`
	Description       string                     `gorm:"type:text" json:"description"`
	Categories        datatypes.JSONSlice[string] `json:"categories"`
	Deadline          time.Time                  `gorm:"not null" json:"deadline"`
	AssignmentType    AssignmentType             `gorm:"type:varchar(20);not null" json:"assignmentType"`
	MaxAssignees      int                        `gorm:"not null" json:"maxAssignees"`
	CurrentAssignees  int                        `gorm:"not null" json:"currentAssignees"`
	Status            RequestStatus              `gorm:"type:varchar(20);not null;index:idx_project_requests_status" json:"status"`
	EstimatedBudget   decimal.NullDecimal        `gorm:"type:numeric(14,2)" json:"estimatedBudget"`
	TargetCounselorID *uuid.UUID                 `gorm:"type:uuid" json:"targetCounselorId,omitempty"`
}

// TableName specifies the table name for ProjectRequest
func (ProjectRequest) TableName() string {
	return "project_requests"
}

// HasCapacity reports whether another assignment can be accepted
func (r *ProjectRequest) HasCapacity() bool {
	return r.Status == RequestStatusOpen && r.CurrentAssignees < r.MaxAssignees
}
