package model

import "time"

// OptionsPerQuestion is the fixed number of options every question carries.
const OptionsPerQuestion = 4

// DefaultMinutesToAnswer is used when the generator omits a time allowance.
const DefaultMinutesToAnswer = 10

// Quiz is the canonical stored quiz for a reading resource.
// Questions, Options and CorrectAnswers always have the same length,
// equal to QuantityQuestions.
type Quiz struct {
	ID                int64      `json:"id"`
	ResourceID        int64      `json:"resource_id"`
	Questions         []string   `json:"questions"`
	Options           [][]string `json:"options"`
	CorrectAnswers    []string   `json:"correct_answers"`
	QuantityQuestions int        `json:"quantity_questions"`
	MinutesToAnswer   int        `json:"minutes_to_answer"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// MemberQuiz is the quiz as shown to club members: the correct-answer
// sequence is never included.
type MemberQuiz struct {
	ID                int64      `json:"id"`
	ResourceID        int64      `json:"resource_id"`
	Questions         []string   `json:"questions"`
	Options           [][]string `json:"options"`
	QuantityQuestions int        `json:"quantity_questions"`
	MinutesToAnswer   int        `json:"minutes_to_answer"`
}

// ForMember strips the correct answers from a quiz.
func (q *Quiz) ForMember() *MemberQuiz {
	return &MemberQuiz{
		ID:                q.ID,
		ResourceID:        q.ResourceID,
		Questions:         q.Questions,
		Options:           q.Options,
		QuantityQuestions: q.QuantityQuestions,
		MinutesToAnswer:   q.MinutesToAnswer,
	}
}

// QuizContent is a normalized quiz payload that has not been persisted yet.
// It is what the normalizer produces from a raw generator response.
type QuizContent struct {
	Questions         []string   `json:"questions"`
	Options           [][]string `json:"options"`
	CorrectAnswers    []string   `json:"correct_answers"`
	QuantityQuestions int        `json:"quantity_questions"`
	MinutesToAnswer   int        `json:"minutes_to_answer"`
}

// SubmitQuizRequest is the payload for submitting quiz answers.
// Answers are chosen option labels ("A".."D"), one per question in
// question order. TimeSpent is elapsed seconds.
type SubmitQuizRequest struct {
	Answers   []string `json:"answers" binding:"required,min=1,dive,required"`
	TimeSpent float64  `json:"time_spent" binding:"gte=0"`
}

// Result is the stored outcome of a graded submission. One row exists per
// (user, club, quiz) triple, ever; rows are never updated or deleted.
type Result struct {
	UserID                 int64     `json:"user_id"`
	ClubID                 int64     `json:"club_id"`
	QuizID                 int64     `json:"quiz_id"`
	Role                   Role      `json:"role"`
	QuantityCorrectAnswers int       `json:"quantity_correct_answers"`
	Score                  float64   `json:"score"`
	TimeSpent              float64   `json:"time_spent"`
	CreatedAt              time.Time `json:"created_at"`
}

// SubmissionOutcome is returned to the caller after a submission. It always
// reveals the correct answers, even to members: submission confirmation is
// the one place answers become visible post-hoc.
type SubmissionOutcome struct {
	CorrectAnswers         []string `json:"correct_answers"`
	Score                  float64  `json:"score"`
	QuantityCorrectAnswers int      `json:"quantity_correct_answers"`
	AlreadyAnswered        bool     `json:"already_answered"`
}
