package model

import "time"

// ClubStatus enumerates the possible states of a club.
type ClubStatus string

const (
	ClubStatusActive   ClubStatus = "A"
	ClubStatusInactive ClubStatus = "I"
)

// Club represents a reading club.
type Club struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsPrivate   bool       `json:"is_private"`
	IsAcademic  bool       `json:"is_academic"`
	Status      ClubStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateClubRequest is the payload for creating a new club. The creating
// user becomes the club's founder.
type CreateClubRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=60"`
	Nickname    string `json:"nickname" binding:"omitempty,max=50"`
	Description string `json:"description" binding:"max=255"`
	IsPrivate   bool   `json:"is_private"`
	IsAcademic  bool   `json:"is_academic"`
}

// UpdateClubRequest is the payload for updating an existing club.
type UpdateClubRequest struct {
	Name        string `json:"name" binding:"omitempty,min=3,max=60"`
	Description string `json:"description" binding:"omitempty,max=255"`
	IsPrivate   *bool  `json:"is_private" binding:"omitempty"`
	IsAcademic  *bool  `json:"is_academic" binding:"omitempty"`
}
