package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserActivityResponse is a read projection of a user's workflow footprint
type UserActivityResponse struct {
	UserID            uuid.UUID       `json:"userId"`
	Assignments       int64           `json:"assignments" example:"4"`
	Submissions       int64           `json:"submissions" example:"9"`
	FeedbacksGiven    int64           `json:"feedbacksGiven" example:"0"`
	Settlements       int64           `json:"settlements" example:"3"`
	CompletedEarnings decimal.Decimal `json:"completedEarnings" swaggertype:"string" example:"450000.00"`
}
