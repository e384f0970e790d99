package model

// ClubRankingEntry is one row of a club's member ranking, ordered by
// accumulated score across all quizzes in the club.
type ClubRankingEntry struct {
	UserID     int64   `json:"user_id"`
	Nickname   string  `json:"nickname"`
	TotalScore float64 `json:"total_score"`
}

// ResourceRankingEntry is one row of a per-resource ranking, ordered by
// the score achieved on that resource's quiz.
type ResourceRankingEntry struct {
	UserID    int64   `json:"user_id"`
	Nickname  string  `json:"nickname"`
	Score     float64 `json:"score"`
	TimeSpent float64 `json:"time_spent"`
}

// RankingUpdate is broadcast over the club ranking channel whenever a
// submission is graded.
type RankingUpdate struct {
	ClubID  int64              `json:"club_id"`
	Entries []ClubRankingEntry `json:"entries"`
}
