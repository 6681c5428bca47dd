package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SettlementType string

const (
	SettlementTypePayout    SettlementType = "PAYOUT"
	SettlementTypeDeduction SettlementType = "DEDUCTION"
	SettlementTypeBonus     SettlementType = "BONUS"
)

func (t SettlementType) IsValid() bool {
	return t == SettlementTypePayout || t == SettlementTypeDeduction || t == SettlementTypeBonus
}

// SignMatches reports whether amount carries the sign convention of t:
// payouts and bonuses are >= 0, deductions are <= 0.
func (t SettlementType) SignMatches(amount decimal.Decimal) bool {
	switch t {
	case SettlementTypePayout, SettlementTypeBonus:
		return !amount.IsNegative()
	case SettlementTypeDeduction:
		return !amount.IsPositive()
	}
	return false
}

// SettlementRound is a disbursement pass within a quarter
type SettlementRound string

const (
	SettlementRoundPrimary   SettlementRound = "PRIMARY"
	SettlementRoundSecondary SettlementRound = "SECONDARY"
)

func (r SettlementRound) IsValid() bool {
	return r == SettlementRoundPrimary || r == SettlementRoundSecondary
}

type SettlementStatus string

const (
	SettlementStatusPending    SettlementStatus = "PENDING"
	SettlementStatusProcessing SettlementStatus = "PROCESSING"
	SettlementStatusCompleted  SettlementStatus = "COMPLETED"
	SettlementStatusFailed     SettlementStatus = "FAILED"
)

var settlementTransitions = map[SettlementStatus][]SettlementStatus{
	SettlementStatusPending:    {SettlementStatusProcessing},
	SettlementStatusProcessing: {SettlementStatusCompleted, SettlementStatusFailed},
	SettlementStatusFailed:     {SettlementStatusPending},
}

func (s SettlementStatus) IsValid() bool {
	switch s {
	case SettlementStatusPending, SettlementStatusProcessing, SettlementStatusCompleted, SettlementStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal edge from s. COMPLETED has no outgoing edges.
func (s SettlementStatus) CanTransitionTo(next SettlementStatus) bool {
	return containsStatus(settlementTransitions[s], next)
}

const (
	MinQuarterYear = 2000
	MaxQuarterYear = 9999
)

// ValidQuarter reports whether (year, quarter) is a usable batching key
func ValidQuarter(year, quarter int) bool {
	return year >= MinQuarterYear && year <= MaxQuarterYear && quarter >= 1 && quarter <= 4
}

// QuarterOf returns the calendar quarter key containing t
func QuarterOf(t time.Time) (int, int) {
	return t.Year(), (int(t.Month())-1)/3 + 1
}

// Settlement is a ledger entry. It references user and submission by id only
// and outlives the submission it was computed from.
type Settlement struct {
	BaseModel
	UserID        uuid.UUID        `gorm:"type:uuid;not null;index:idx_settlements_user_id" json:"userId"`
	SubmissionID  *uuid.UUID       `gorm:"type:uuid;index:idx_settlements_submission_id" json:"submissionId,omitempty"`
	Amount        decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"amount"`
	Type          SettlementType   `gorm:"type:varchar(20);not null" json:"type"`
	Round         *SettlementRound `gorm:"column:settlement_round;type:varchar(20);index:idx_settlements_batch,priority:3" json:"settlementRound,omitempty"`
	Status        SettlementStatus `gorm:"type:varchar(20);not null;index:idx_settlements_batch,priority:4" json:"status"`
	QuarterYear   *int             `gorm:"index:idx_settlements_batch,priority:1" json:"quarterYear,omitempty"`
	QuarterNumber *int             `gorm:"index:idx_settlements_batch,priority:2" json:"quarterNumber,omitempty"`
	Description   string           `gorm:"type:text" json:"description,omitempty"`
	FailureReason string           `gorm:"type:text" json:"failureReason,omitempty"`
	ClaimedAt     *time.Time       `json:"claimedAt,omitempty"`
	ProcessedAt   *time.Time       `json:"processedAt,omitempty"`
}

// TableName specifies the table name for Settlement
func (Settlement) TableName() string {
	return "settlements"
}
