package model

import "time"

// Role enumerates club roles. The founder generates and regenerates quizzes
// and sees correct answers; members only take quizzes.
type Role string

const (
	RoleFounder Role = "FOUNDER"
	RoleMember  Role = "MEMBER"
)

// ParticipantStatus enumerates membership states.
type ParticipantStatus string

const (
	ParticipantStatusActive  ParticipantStatus = "A"
	ParticipantStatusRemoved ParticipantStatus = "R"
)

// Participant is a user's membership in a club, with the running counters
// the stats worker maintains after each graded submission.
type Participant struct {
	ClubID            int64             `json:"club_id"`
	UserID            int64             `json:"user_id"`
	Role              Role              `json:"role"`
	Nickname          string            `json:"nickname"`
	QuizzesSolved     int               `json:"quantity_quizzes_solved"`
	QuestionsAnswered int               `json:"quantity_questions_answered"`
	PerfectQuizzes    int               `json:"quantity_perfect_quizzes"`
	ResourcesRead     int               `json:"quantity_resources_read"`
	TotalScore        float64           `json:"total_score"`
	Status            ParticipantStatus `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
}

// RequestStatus enumerates membership request states.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// MembershipRequest is a user's pending request to join a private club.
type MembershipRequest struct {
	ClubID      int64         `json:"club_id"`
	UserID      int64         `json:"user_id"`
	Status      RequestStatus `json:"status"`
	RequestedAt time.Time     `json:"requested_at"`
}

// JoinClubRequest is the payload for requesting club membership.
type JoinClubRequest struct {
	Nickname string `json:"nickname" binding:"omitempty,max=50"`
}
