package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordSettlementRequest represents a ledger entry computed for a user
// @Description amount is a decimal string; PAYOUT and BONUS must be >= 0, DEDUCTION <= 0
type RecordSettlementRequest struct {
	UserID        uuid.UUID       `json:"userId" binding:"required" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"150000.00"`
	Type          string          `json:"type" binding:"required,oneof=PAYOUT DEDUCTION BONUS" example:"PAYOUT"`
	QuarterYear   int             `json:"quarterYear" binding:"required" example:"2025"`
	QuarterNumber int             `json:"quarterNumber" binding:"required" example:"1"`
	Round         *string         `json:"settlementRound,omitempty" example:"PRIMARY"`
	SubmissionID  *uuid.UUID      `json:"submissionId,omitempty"`
	Description   string          `json:"description,omitempty" binding:"max=1000"`
}

// AssignRoundRequest sets the disbursement round of a PENDING settlement
type AssignRoundRequest struct {
	Round string `json:"settlementRound" binding:"required,oneof=PRIMARY SECONDARY" example:"SECONDARY"`
}

// ProcessRoundRequest triggers a settlement round
type ProcessRoundRequest struct {
	QuarterYear   int    `json:"quarterYear" binding:"required" example:"2025"`
	QuarterNumber int    `json:"quarterNumber" binding:"required" example:"1"`
	Round         string `json:"settlementRound" binding:"required,oneof=PRIMARY SECONDARY" example:"PRIMARY"`
}

// SettlementResponse represents a ledger entry
type SettlementResponse struct {
	ID            uuid.UUID       `json:"settlementId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	UserID        uuid.UUID       `json:"userId"`
	SubmissionID  *uuid.UUID      `json:"submissionId,omitempty"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"150000.00"`
	Type          string          `json:"type" example:"PAYOUT"`
	Round         *string         `json:"settlementRound,omitempty" example:"PRIMARY"`
	Status        string          `json:"status" example:"PENDING"`
	QuarterYear   *int            `json:"quarterYear,omitempty" example:"2025"`
	QuarterNumber *int            `json:"quarterNumber,omitempty" example:"1"`
	Description   string          `json:"description,omitempty"`
	FailureReason string          `json:"failureReason,omitempty"`
	ClaimedAt     *time.Time      `json:"claimedAt,omitempty"`
	ProcessedAt   *time.Time      `json:"processedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// SettlementItemResult is the outcome of one settlement within a round
type SettlementItemResult struct {
	SettlementID uuid.UUID `json:"settlementId"`
	Status       string    `json:"status" example:"COMPLETED"`
	Reason       string    `json:"reason,omitempty"`
}

// RoundReport summarizes a processed round. Skipped items were claimed by another run.
type RoundReport struct {
	QuarterYear   int                    `json:"quarterYear" example:"2025"`
	QuarterNumber int                    `json:"quarterNumber" example:"1"`
	Round         string                 `json:"settlementRound" example:"PRIMARY"`
	Total         int                    `json:"total" example:"100"`
	Completed     int                    `json:"completed" example:"97"`
	Failed        int                    `json:"failed" example:"3"`
	Skipped       int                    `json:"skipped" example:"0"`
	Results       []SettlementItemResult `json:"results"`
}

// SettlementBucket is one (type, status) line of a quarter summary
type SettlementBucket struct {
	Type   string          `json:"type" example:"PAYOUT"`
	Status string          `json:"status" example:"COMPLETED"`
	Count  int64           `json:"count" example:"97"`
	Total  decimal.Decimal `json:"total" swaggertype:"string" example:"14550000.00"`
}

// QuarterSummaryResponse totals a quarter per type and counts per status
type QuarterSummaryResponse struct {
	QuarterYear   int                        `json:"quarterYear" example:"2025"`
	QuarterNumber int                        `json:"quarterNumber" example:"1"`
	TotalsByType  map[string]decimal.Decimal `json:"totalsByType" swaggertype:"object,string"`
	CountByStatus map[string]int64           `json:"countByStatus"`
	Buckets       []SettlementBucket         `json:"buckets"`
}
