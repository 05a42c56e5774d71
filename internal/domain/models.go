package domain

import "time"

// Topic groups catalog questions by theme.
type Topic string

const (
	TopicDailyLife      Topic = "DAILY_LIFE"
	TopicHolyCity       Topic = "HOLY_CITY"
	TopicThreeReligions Topic = "THREE_RELIGIONS"
	TopicWarsHistory    Topic = "WARS_HISTORY"
)

// Answer is one candidate answer of a question.
type Answer struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is an immutable catalog entry. CorrectAnswerID never leaves the server.
type Question struct {
	ID              string   `json:"id"`
	Topic           Topic    `json:"topic"`
	Difficulty      int      `json:"difficulty"`
	Prompt          string   `json:"question"`
	Answers         []Answer `json:"answers"`
	CorrectAnswerID string   `json:"correctAnswerId"`
	TimeLimitSec    int      `json:"timeLimitSec"`
	Explanation     string   `json:"explanation"`
	Tags            []string `json:"tags"`
	ImageURL        string   `json:"imageUrl,omitempty"`
}

// SanitizedQuestion is the client-safe view of a question: at most three shuffled answers and
// no correctness marker.
type SanitizedQuestion struct {
	ID           string   `json:"id"`
	Topic        Topic    `json:"topic"`
	Difficulty   int      `json:"difficulty"`
	Prompt       string   `json:"question"`
	Answers      []Answer `json:"answers"`
	TimeLimitSec int      `json:"timeLimitSec"`
	Tags         []string `json:"tags"`
	ImageURL     string   `json:"imageUrl"`
}

// AnswerRecord is one entry of a session's append-only answer log.
type AnswerRecord struct {
	QuestionID string `json:"questionId"`
	AnswerID   string `json:"answerId"`
	TimeMs     int64  `json:"timeMs"`
	Correct    bool   `json:"correct"`
}

// GameSession binds a player to the questions drawn for one playthrough.
type GameSession struct {
	ID          string
	PlayerID    string
	QuestionIDs []string
	Answers     []AnswerRecord
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Completed reports whether the session has been finalized.
func (s GameSession) Completed() bool {
	return s.CompletedAt != nil
}

// HasQuestion reports whether questionID was drawn for this session.
func (s GameSession) HasQuestion(questionID string) bool {
	for _, id := range s.QuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

// Answered reports whether the log already holds an answer for questionID.
func (s GameSession) Answered(questionID string) bool {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return true
		}
	}
	return false
}

// Player holds the registration data and the stats of the most recently completed game.
type Player struct {
	ID             string
	Name           string
	Score          int
	CorrectAnswers int
	TotalQuestions int
	TimeSeconds    int
	Badges         []string
	CreatedAt      time.Time
}

// FinalResult is what completing a session produces.
type FinalResult struct {
	Score          int      `json:"score"`
	CorrectAnswers int      `json:"correctAnswers"`
	TotalQuestions int      `json:"totalQuestions"`
	TimeSeconds    int      `json:"timeSeconds"`
	Badges         []string `json:"badges"`
}

// AnswerVerdict is returned to the client after each submitted answer.
type AnswerVerdict struct {
	Correct         bool   `json:"correct"`
	CorrectAnswerID string `json:"correctAnswerId"`
	Explanation     string `json:"explanation"`
}

// StartedGame is returned when a session begins.
type StartedGame struct {
	SessionID string              `json:"sessionId"`
	Questions []SanitizedQuestion `json:"questions"`
}

// LeaderboardEntry is a snapshot-friendly view of a player.
type LeaderboardEntry struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	TimeSeconds int    `json:"timeSeconds"`
}

// Leaderboard captures the ordered scoreboard pushed to feed subscribers.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// NewLeaderboard builds a feed snapshot from already ordered players.
func NewLeaderboard(players []Player, at time.Time) Leaderboard {
	entries := make([]LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, LeaderboardEntry{
			PlayerID:    p.ID,
			Name:        p.Name,
			Score:       p.Score,
			TimeSeconds: p.TimeSeconds,
		})
	}
	return Leaderboard{Entries: entries, UpdatedAt: at}
}

// AnswerSubmission models the answer signal from clients.
type AnswerSubmission struct {
	QuestionID string
	AnswerID   string
	TimeMs     int64
}
