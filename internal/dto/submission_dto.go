package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateSubmissionRequest represents the first upload into a version slot
// @Description Exactly one of assignmentId or projectId must be set
// @Description versionSlot is 1-based and bounded by the configured slot count
type CreateSubmissionRequest struct {
	AssignmentID *uuid.UUID `json:"assignmentId,omitempty" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	ProjectID    *uuid.UUID `json:"projectId,omitempty"`
	VersionSlot  int        `json:"versionSlot" binding:"required,min=1" example:"1"`
	VersionTitle string     `json:"versionTitle" binding:"max=200" example:"Version A"`
	VideoURL     string     `json:"videoUrl" binding:"required,url" example:"https://cdn.example.com/v/a.mp4"`
	FileKey      string     `json:"fileKey,omitempty" example:"workflow/submissions/b2c3/2025/01/uuid_1736900000.mp4"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty" binding:"omitempty,url"`
	Duration     *float64   `json:"duration,omitempty" binding:"omitempty,gte=0" example:"31.5"`
	Notes        string     `json:"notes,omitempty" binding:"max=2000"`
}

// ResubmitRequest represents a new version uploaded over a REJECTED one
type ResubmitRequest struct {
	VersionTitle *string  `json:"versionTitle,omitempty" binding:"omitempty,max=200"`
	VideoURL     string   `json:"videoUrl" binding:"required,url" example:"https://cdn.example.com/v/a2.mp4"`
	FileKey      string   `json:"fileKey,omitempty"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty" binding:"omitempty,url"`
	Duration     *float64 `json:"duration,omitempty" binding:"omitempty,gte=0"`
	Notes        string   `json:"notes,omitempty" binding:"max=2000"`
}

// ReviewSubmissionRequest carries a reviewer decision
type ReviewSubmissionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED" example:"REJECTED"`
}

// UploadURLRequest asks for a presigned upload URL
type UploadURLRequest struct {
	FileName    string `json:"fileName" binding:"required,max=255" example:"teaser_v1.mp4"`
	ContentType string `json:"contentType" binding:"required" example:"video/mp4"`
	Kind        string `json:"kind" binding:"omitempty,oneof=submissions thumbnails" example:"submissions"`
}

// UploadURLResponse carries the presigned PUT URL and where the object will live
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey" example:"workflow/submissions/b2c3/2025/01/uuid_1736900000.mp4"`
	FileURL   string `json:"fileUrl"`
	ExpiresIn int    `json:"expiresIn" example:"300"`
}

// SubmissionResponse represents one version of a slot
type SubmissionResponse struct {
	ID           uuid.UUID  `json:"submissionId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	AssignmentID *uuid.UUID `json:"assignmentId,omitempty"`
	ProjectID    *uuid.UUID `json:"projectId,omitempty"`
	UserID       uuid.UUID  `json:"userId"`
	VersionSlot  int        `json:"versionSlot" example:"1"`
	Version      int        `json:"version" example:"2"`
	VersionTitle string     `json:"versionTitle" example:"Version A"`
	IsActive     bool       `json:"isActive" example:"true"`
	VideoURL     string     `json:"videoUrl"`
	FileKey      string     `json:"fileKey,omitempty"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	Duration     *float64   `json:"duration,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Status       string     `json:"status" example:"PENDING"`
	ReviewedBy   *uuid.UUID `json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time `json:"reviewedAt,omitempty"`
	SupersededAt *time.Time `json:"supersededAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
