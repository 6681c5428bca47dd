package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrCapacityExceeded is returned when the compare-and-increment on a request matched no row
	ErrCapacityExceeded = errors.New("project request has no remaining capacity")
	// ErrDuplicate is returned when a unique constraint rejected the write
	ErrDuplicate = errors.New("duplicate row")
	// ErrStaleState is returned when a guarded update found the row in a different state
	ErrStaleState = errors.New("row is not in the expected state")
)

// isUniqueViolation reports whether err is a unique constraint failure.
// TranslateError covers postgres and sqlite; the string check covers drivers without a translator.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// IsNotFound reports whether err means the row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
