// Package catalog ships the bundled question bank and the structural checks every
// catalog source must pass.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"jerusalem-quest/internal/domain"
)

//go:embed data/questions.json
var bundledJSON []byte

type bank struct {
	Questions []domain.Question `json:"questions"`
}

// Bundled decodes the question bank compiled into the binary.
func Bundled() ([]domain.Question, error) {
	return Parse(bundledJSON)
}

// Parse decodes a question bank document and validates it.
func Parse(data []byte) ([]domain.Question, error) {
	var b bank
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	if err := Validate(b.Questions); err != nil {
		return nil, err
	}
	return b.Questions, nil
}

// Validate checks that ids are unique and that every question has exactly one correct
// answer plus at least two wrong ones.
func Validate(questions []domain.Question) error {
	ids := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question without id", domain.ErrDataIntegrity)
		}
		if _, dup := ids[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %s", domain.ErrDataIntegrity, q.ID)
		}
		ids[q.ID] = struct{}{}

		correct, wrong := 0, 0
		answerIDs := make(map[string]struct{}, len(q.Answers))
		for _, a := range q.Answers {
			if _, dup := answerIDs[a.ID]; dup {
				return fmt.Errorf("%w: question %s repeats answer id %s", domain.ErrDataIntegrity, q.ID, a.ID)
			}
			answerIDs[a.ID] = struct{}{}
			if a.ID == q.CorrectAnswerID {
				correct++
			} else {
				wrong++
			}
		}
		if correct != 1 || wrong < 2 {
			return fmt.Errorf("%w: question %s has %d correct and %d wrong answers", domain.ErrDataIntegrity, q.ID, correct, wrong)
		}
		if q.TimeLimitSec <= 0 {
			return fmt.Errorf("%w: question %s has no time limit", domain.ErrDataIntegrity, q.ID)
		}
	}
	return nil
}
