package model

import "time"

// ResourceStatus enumerates reading resource states.
type ResourceStatus string

const (
	ResourceStatusActive   ResourceStatus = "A"
	ResourceStatusInactive ResourceStatus = "I"
)

// Resource is a reading item owned by a club, the source material for a quiz.
// URL points to the stored document in object storage.
type Resource struct {
	ID          int64          `json:"id"`
	ClubID      int64          `json:"club_id"`
	Title       string         `json:"title"`
	Author      string         `json:"author"`
	BiblioRef   string         `json:"biblio_ref"`
	Description string         `json:"description"`
	URL         string         `json:"url"`
	Status      ResourceStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// UploadResourceRequest is the multipart form payload accompanying a
// resource file upload.
type UploadResourceRequest struct {
	Title       string `form:"title" binding:"required,min=1,max=100"`
	Author      string `form:"author" binding:"required,max=100"`
	BiblioRef   string `form:"biblio_ref" binding:"max=100"`
	Description string `form:"description" binding:"max=255"`
}
