package game

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"jerusalem-quest/internal/domain"
)

// OptionsPerQuestion is how many answers a client sees for each question.
const OptionsPerQuestion = 3

// Sanitizer draws questions for a session and strips them down to client-safe payloads.
// It is safe for concurrent use.
type Sanitizer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSanitizer returns a Sanitizer seeded from the clock.
func NewSanitizer() *Sanitizer {
	now := uint64(time.Now().UnixNano())
	return NewSanitizerWithSeed(now, now>>32)
}

// NewSanitizerWithSeed is used by tests that need a reproducible sequence.
func NewSanitizerWithSeed(seed1, seed2 uint64) *Sanitizer {
	return &Sanitizer{rnd: rand.New(rand.NewPCG(seed1, seed2))}
}

// Draw picks min(n, len(catalog)) questions uniformly at random without replacement.
func (s *Sanitizer) Draw(catalog []domain.Question, n int) []domain.Question {
	if n > len(catalog) {
		n = len(catalog)
	}
	if n <= 0 {
		return nil
	}

	s.mu.Lock()
	perm := s.rnd.Perm(len(catalog))
	s.mu.Unlock()

	drawn := make([]domain.Question, 0, n)
	for _, idx := range perm[:n] {
		drawn = append(drawn, catalog[idx])
	}
	return drawn
}

// Sanitize reduces q to the correct answer plus two random wrong ones in shuffled order.
// The returned payload carries no field identifying the correct answer.
func (s *Sanitizer) Sanitize(q domain.Question) (domain.SanitizedQuestion, error) {
	var correct *domain.Answer
	wrong := make([]domain.Answer, 0, len(q.Answers))
	for i := range q.Answers {
		if q.Answers[i].ID == q.CorrectAnswerID {
			if correct != nil {
				return domain.SanitizedQuestion{}, fmt.Errorf("%w: question %s lists answer %s twice", domain.ErrDataIntegrity, q.ID, q.CorrectAnswerID)
			}
			correct = &q.Answers[i]
			continue
		}
		wrong = append(wrong, q.Answers[i])
	}
	if correct == nil {
		return domain.SanitizedQuestion{}, fmt.Errorf("%w: question %s has no answer with id %q", domain.ErrDataIntegrity, q.ID, q.CorrectAnswerID)
	}
	if len(wrong) < OptionsPerQuestion-1 {
		return domain.SanitizedQuestion{}, fmt.Errorf("%w: question %s has %d wrong answers, need %d", domain.ErrDataIntegrity, q.ID, len(wrong), OptionsPerQuestion-1)
	}

	picked := make([]domain.Answer, 0, OptionsPerQuestion)
	picked = append(picked, *correct)

	s.mu.Lock()
	// partial Fisher-Yates: the first two slots end up a uniform sample of the wrong answers
	for i := 0; i < OptionsPerQuestion-1; i++ {
		j := i + s.rnd.IntN(len(wrong)-i)
		wrong[i], wrong[j] = wrong[j], wrong[i]
	}
	picked = append(picked, wrong[:OptionsPerQuestion-1]...)
	s.rnd.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	s.mu.Unlock()

	tags := make([]string, len(q.Tags))
	copy(tags, q.Tags)

	return domain.SanitizedQuestion{
		ID:           q.ID,
		Topic:        q.Topic,
		Difficulty:   q.Difficulty,
		Prompt:       q.Prompt,
		Answers:      picked,
		TimeLimitSec: q.TimeLimitSec,
		Tags:         tags,
		ImageURL:     ImageURL(q.ID),
	}, nil
}

// SanitizeAll sanitizes every question, failing on the first integrity violation.
func (s *Sanitizer) SanitizeAll(questions []domain.Question) ([]domain.SanitizedQuestion, error) {
	out := make([]domain.SanitizedQuestion, 0, len(questions))
	for _, q := range questions {
		sq, err := s.Sanitize(q)
		if err != nil {
			return nil, err
		}
		out = append(out, sq)
	}
	return out, nil
}

// ImageURL is the static asset path of a question's illustration.
func ImageURL(questionID string) string {
	return "/images/questions/" + questionID + ".png"
}
