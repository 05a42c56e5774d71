package game

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"jerusalem-quest/internal/domain"
)

func TestSanitizeKeepsCorrectPlusTwoWrong(t *testing.T) {
	s := NewSanitizerWithSeed(1, 2)
	q := sampleQuestion("q001", "c")

	for i := 0; i < 200; i++ {
		sq, err := s.Sanitize(q)
		if err != nil {
			t.Fatalf("sanitize: %v", err)
		}
		if len(sq.Answers) != OptionsPerQuestion {
			t.Fatalf("expected %d answers, got %d", OptionsPerQuestion, len(sq.Answers))
		}
		seen := map[string]bool{}
		hasCorrect := false
		for _, a := range sq.Answers {
			if seen[a.ID] {
				t.Fatalf("duplicate answer %s in %+v", a.ID, sq.Answers)
			}
			seen[a.ID] = true
			if a.ID == "c" {
				hasCorrect = true
			}
		}
		if !hasCorrect {
			t.Fatalf("correct answer missing from %+v", sq.Answers)
		}
	}
}

func TestSanitizedPayloadHidesCorrectAnswer(t *testing.T) {
	s := NewSanitizerWithSeed(3, 4)
	q := sampleQuestion("q002", "a")
	q.Explanation = "Because a is right"

	sq, err := s.Sanitize(q)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	raw, err := json.Marshal(sq)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	if strings.Contains(body, "correctAnswerId") {
		t.Fatalf("payload leaks correct answer id: %s", body)
	}
	if strings.Contains(body, "Because a is right") {
		t.Fatalf("payload leaks explanation: %s", body)
	}
	if sq.ImageURL != "/images/questions/q002.png" {
		t.Fatalf("unexpected image url %q", sq.ImageURL)
	}
}

func TestSanitizeShufflesPosition(t *testing.T) {
	s := NewSanitizerWithSeed(5, 6)
	q := sampleQuestion("q003", "a")

	positions := map[int]int{}
	for i := 0; i < 300; i++ {
		sq, err := s.Sanitize(q)
		if err != nil {
			t.Fatalf("sanitize: %v", err)
		}
		for idx, a := range sq.Answers {
			if a.ID == "a" {
				positions[idx]++
			}
		}
	}
	if len(positions) != OptionsPerQuestion {
		t.Fatalf("correct answer should land in every slot, got %v", positions)
	}
}

func TestSanitizeRejectsBrokenQuestions(t *testing.T) {
	s := NewSanitizerWithSeed(7, 8)

	tooFew := domain.Question{
		ID:              "q004",
		Answers:         []domain.Answer{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
		CorrectAnswerID: "a",
	}
	if _, err := s.Sanitize(tooFew); !errors.Is(err, domain.ErrDataIntegrity) {
		t.Fatalf("expected data integrity error, got %v", err)
	}

	missingCorrect := sampleQuestion("q005", "z")
	if _, err := s.Sanitize(missingCorrect); !errors.Is(err, domain.ErrDataIntegrity) {
		t.Fatalf("expected data integrity error, got %v", err)
	}

	if _, err := s.SanitizeAll([]domain.Question{sampleQuestion("q006", "a"), tooFew}); !errors.Is(err, domain.ErrDataIntegrity) {
		t.Fatalf("expected SanitizeAll to fail fast, got %v", err)
	}
}

func TestSanitizeExactlyThreeAnswers(t *testing.T) {
	s := NewSanitizerWithSeed(9, 10)
	q := domain.Question{
		ID:              "q007",
		Answers:         []domain.Answer{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}, {ID: "c", Text: "C"}},
		CorrectAnswerID: "b",
	}
	sq, err := s.Sanitize(q)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if len(sq.Answers) != 3 {
		t.Fatalf("expected all three answers, got %+v", sq.Answers)
	}
}

func TestDrawWithoutReplacement(t *testing.T) {
	s := NewSanitizerWithSeed(11, 12)
	catalog := make([]domain.Question, 0, 25)
	for i := 0; i < 25; i++ {
		catalog = append(catalog, sampleQuestion(string(rune('A'+i)), "a"))
	}

	drawn := s.Draw(catalog, 10)
	if len(drawn) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(drawn))
	}
	seen := map[string]bool{}
	for _, q := range drawn {
		if seen[q.ID] {
			t.Fatalf("question %s drawn twice", q.ID)
		}
		seen[q.ID] = true
	}

	small := s.Draw(catalog[:4], 10)
	if len(small) != 4 {
		t.Fatalf("expected whole small catalog, got %d", len(small))
	}
	if got := s.Draw(nil, 10); len(got) != 0 {
		t.Fatalf("expected nothing from empty catalog, got %d", len(got))
	}
}

func sampleQuestion(id, correct string) domain.Question {
	return domain.Question{
		ID:         id,
		Topic:      domain.TopicHolyCity,
		Difficulty: 1,
		Prompt:     "Which gate?",
		Answers: []domain.Answer{
			{ID: "a", Text: "Jaffa Gate"},
			{ID: "b", Text: "Damascus Gate"},
			{ID: "c", Text: "Zion Gate"},
			{ID: "d", Text: "Lions' Gate"},
		},
		CorrectAnswerID: correct,
		TimeLimitSec:    20,
		Tags:            []string{"gates"},
	}
}
