package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateUserRequest represents the request to register a platform user
type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email,max=255" example:"star@example.com"`
	Name  string `json:"name" binding:"required,min=1,max=100" example:"Kim Star"`
	Role  string `json:"role" binding:"required" example:"STAR"`
}

// UserResponse represents a platform user
type UserResponse struct {
	ID        uuid.UUID `json:"userId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	Email     string    `json:"email" example:"star@example.com"`
	Name      string    `json:"name" example:"Kim Star"`
	Role      string    `json:"role" example:"STAR"`
	IsActive  bool      `json:"isActive" example:"true"`
	CreatedAt time.Time `json:"createdAt" example:"2025-01-15T10:30:00Z"`
}

// CreateProjectRequestBody represents the request to open a new project request
// @Description assignmentType defaults to MULTIPLE and maxAssignees to 1
// @Description SINGLE requests always accept exactly one freelancer
type CreateProjectRequestBody struct {
	Title             string           `json:"title" binding:"required,min=2,max=200" example:"Spring campaign teaser"`
	Description       string           `json:"description" binding:"max=5000" example:"30 second vertical teaser"`
	Categories        []string         `json:"categories" binding:"omitempty,dive,min=1,max=50" example:"beauty,short-form"`
	Deadline          time.Time        `json:"deadline" binding:"required" example:"2025-03-31T23:59:59Z"`
	AssignmentType    *string          `json:"assignmentType,omitempty" example:"MULTIPLE"`
	MaxAssignees      *int             `json:"maxAssignees,omitempty" example:"3"`
	EstimatedBudget   *decimal.Decimal `json:"estimatedBudget,omitempty" swaggertype:"string" example:"1500000.00"`
	TargetCounselorID *uuid.UUID       `json:"targetCounselorId,omitempty" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
}

// ProjectRequestResponse represents a project request with its live capacity
type ProjectRequestResponse struct {
	ID                uuid.UUID        `json:"requestId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	CreatedBy         uuid.UUID        `json:"createdBy" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Title             string           `json:"title" example:"Spring campaign teaser"`
	Description       string           `json:"description" example:"30 second vertical teaser"`
	Categories        []string         `json:"categories"`
	Deadline          time.Time        `json:"deadline" example:"2025-03-31T23:59:59Z"`
	AssignmentType    string           `json:"assignmentType" example:"MULTIPLE"`
	MaxAssignees      int              `json:"maxAssignees" example:"3"`
	CurrentAssignees  int              `json:"currentAssignees" example:"1"`
	Status            string           `json:"status" example:"OPEN"`
	EstimatedBudget   *decimal.Decimal `json:"estimatedBudget,omitempty" swaggertype:"string" example:"1500000.00"`
	TargetCounselorID *uuid.UUID       `json:"targetCounselorId,omitempty"`
	CreatedAt         time.Time        `json:"createdAt" example:"2025-01-15T10:30:00Z"`
	UpdatedAt         time.Time        `json:"updatedAt" example:"2025-01-15T14:20:00Z"`
}

// CancelProjectRequestResponse reports how many assignments were cancelled with the request
type CancelProjectRequestResponse struct {
	Request              *ProjectRequestResponse `json:"request"`
	CancelledAssignments int64                   `json:"cancelledAssignments" example:"2"`
}

// CreateProjectBody represents the request to create a project aggregate
type CreateProjectBody struct {
	Title       string           `json:"title" binding:"required,min=2,max=200" example:"Brand film 2025"`
	Description string           `json:"description" binding:"max=5000" example:"Yearly brand film"`
	Budget      *decimal.Decimal `json:"budget,omitempty" swaggertype:"string" example:"5000000.00"`
	Deadline    *time.Time       `json:"deadline,omitempty" example:"2025-06-30T23:59:59Z"`
}

// ProjectResponse represents a project
type ProjectResponse struct {
	ID          uuid.UUID        `json:"projectId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	OwnerID     uuid.UUID        `json:"ownerId" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Title       string           `json:"title" example:"Brand film 2025"`
	Description string           `json:"description" example:"Yearly brand film"`
	Budget      *decimal.Decimal `json:"budget,omitempty" swaggertype:"string" example:"5000000.00"`
	Deadline    *time.Time       `json:"deadline,omitempty" example:"2025-06-30T23:59:59Z"`
	CreatedAt   time.Time        `json:"createdAt" example:"2025-01-15T10:30:00Z"`
}
