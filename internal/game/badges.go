package game

import "jerusalem-quest/internal/domain"

// Badge names, in award order.
const (
	BadgeParticipationHero = "Participation Hero"
	BadgeBeginnerExplorer  = "Beginner Explorer"
	BadgeJerusalemChampion = "Jerusalem Champion"
	BadgeLightningFast     = "Lightning Fast"
	BadgeHistoryStar       = "History Star"
)

const (
	explorerMinCorrect  = 5
	lightningMaxSeconds = 120
	historyTopic        = domain.TopicWarsHistory
)

// Badges evaluates every badge rule independently over a completed session.
func Badges(answers []domain.AnswerRecord, questions map[string]QuestionInfo, totalSeconds int) []string {
	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}

	badges := []string{BadgeParticipationHero}
	if correct >= explorerMinCorrect {
		badges = append(badges, BadgeBeginnerExplorer)
	}
	if len(answers) > 0 && correct == len(answers) {
		badges = append(badges, BadgeJerusalemChampion)
	}
	if totalSeconds < lightningMaxSeconds {
		badges = append(badges, BadgeLightningFast)
	}
	if historyPerfect(answers, questions) {
		badges = append(badges, BadgeHistoryStar)
	}
	return badges
}

// historyPerfect is false when no history question was answered.
func historyPerfect(answers []domain.AnswerRecord, questions map[string]QuestionInfo) bool {
	seen := 0
	for _, a := range answers {
		if info, ok := questions[a.QuestionID]; !ok || info.Topic != historyTopic {
			continue
		}
		if !a.Correct {
			return false
		}
		seen++
	}
	return seen > 0
}
