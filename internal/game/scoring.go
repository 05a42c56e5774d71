package game

import (
	"math"

	"jerusalem-quest/internal/domain"
)

const (
	// BasePoints is awarded for every correct answer.
	BasePoints = 10
	// SpeedBonus is added when a correct answer took less than half the time limit.
	SpeedBonus = 5
)

// MaxAnswerMs is the longest elapsed time a single answer may report.
const MaxAnswerMs int64 = math.MaxInt32

// QuestionInfo is the slice of catalog data scoring and badges need.
type QuestionInfo struct {
	Topic        domain.Topic
	TimeLimitSec int
}

// Tally is the outcome of scoring an answer log.
type Tally struct {
	Score          int
	CorrectAnswers int
	TotalAnswers   int
	TimeSeconds    int
}

// Score computes points and elapsed time for an answer log. Entries whose question is not in
// questions earn base points only. Elapsed times are clamped to [0, MaxAnswerMs]. It has no
// side effects.
func Score(answers []domain.AnswerRecord, questions map[string]QuestionInfo) Tally {
	var (
		t       Tally
		totalMs int64
	)
	for _, a := range answers {
		elapsed := clampElapsed(a.TimeMs)
		totalMs += elapsed
		if !a.Correct {
			continue
		}
		t.CorrectAnswers++
		t.Score += BasePoints
		if info, ok := questions[a.QuestionID]; ok && fastEnough(elapsed, info.TimeLimitSec) {
			t.Score += SpeedBonus
		}
	}
	t.TotalAnswers = len(answers)
	t.TimeSeconds = roundSeconds(totalMs)
	return t
}

// fastEnough reports elapsedMs < timeLimitSec*1000/2 without scaling elapsedMs.
func fastEnough(elapsedMs int64, timeLimitSec int) bool {
	return elapsedMs < (int64(timeLimitSec)*1000+1)/2
}

func clampElapsed(ms int64) int64 {
	switch {
	case ms < 0:
		return 0
	case ms > MaxAnswerMs:
		return MaxAnswerMs
	}
	return ms
}

// roundSeconds converts non-negative milliseconds to seconds rounding half up.
func roundSeconds(ms int64) int {
	return int((ms + 500) / 1000)
}
