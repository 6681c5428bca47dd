package service

import (
	"time"

	"github.com/google/uuid"

	"stars-workflow-api/internal/repository"
	"stars-workflow-api/internal/response"
)

// Clock returns the current time. Services stamp every state change with it.
type Clock func() time.Time

func defaultClock() time.Time {
	return time.Now().UTC()
}

// lookupError converts a repository read failure into an AppError
func lookupError(err error, entity string, id uuid.UUID) error {
	if repository.IsNotFound(err) {
		return response.NewNotFoundError(entity+" not found", id.String())
	}
	return response.NewInternalError("Failed to load "+entity, err.Error())
}
