package memory

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"jerusalem-quest/internal/domain"
)

const catalogKey = "catalog"

// QuestionLoader fetches the question catalog from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository caches the catalog with TTL to avoid repeated DB hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.RWMutex
	questions []domain.Question
	byID      map[string]domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
	}
}

// Questions returns the whole catalog.
func (r *QuestionRepository) Questions(ctx context.Context) ([]domain.Question, error) {
	if questions, _, ok := r.cached(); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		if questions, _, ok := r.cached(); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		byID := make(map[string]domain.Question, len(questions))
		for _, q := range questions {
			byID[q.ID] = q
		}
		r.mu.Lock()
		r.questions = questions
		r.byID = byID
		r.expiresAt = r.clock().Add(r.ttlWithJitter())
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Question looks a single catalog entry up by id.
func (r *QuestionRepository) Question(ctx context.Context, id string) (domain.Question, error) {
	_, byID, ok := r.cached()
	if !ok {
		if _, err := r.Questions(ctx); err != nil {
			return domain.Question{}, err
		}
		r.mu.RLock()
		byID = r.byID
		r.mu.RUnlock()
	}
	q, found := byID[id]
	if !found {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (r *QuestionRepository) cached() ([]domain.Question, map[string]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.byID == nil || !r.expiresAt.After(r.clock()) {
		return nil, nil, false
	}
	return r.questions, r.byID, true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int64N(jitterMax+1))
}

// StaticQuestionLoader serves a fixed catalog (the bundled bank, tests, demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return l.questions, nil
}
