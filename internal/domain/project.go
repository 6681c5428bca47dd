package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Project is a direct production engagement owned by a user.
// Submissions may attach to a Project without going through an assignment.
type Project struct {
	BaseModel
	OwnerID     uuid.UUID           `gorm:"type:uuid;not null;index:idx_projects_owner_id" json:"ownerId"`
	Title       string              `gorm:"type:varchar(200);not null" json:"title"`
	Description string              `gorm:"type:text" json:"description"`
	Budget      decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"budget"`
	Deadline    *time.Time          `json:"deadline,omitempty"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}
