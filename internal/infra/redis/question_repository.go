package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"jerusalem-quest/internal/domain"
)

// CatalogKey holds the cached catalog: HSET catalog:questions {questionID} {question JSON}
const CatalogKey = "catalog:questions"

// QuestionLoader fetches the question catalog from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository caches the catalog in a Redis hash and falls back to a loader on cache miss.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (r *QuestionRepository) Questions(ctx context.Context) ([]domain.Question, error) {
	fields, err := r.client.HGetAll(ctx, CatalogKey).Result()
	if err == nil && len(fields) > 0 {
		return decodeCatalog(fields)
	}

	result, err, _ := r.sf.Do(CatalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		fields, err := r.client.HGetAll(ctx, CatalogKey).Result()
		if err == nil && len(fields) > 0 {
			return decodeCatalog(fields)
		}

		questions, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		r.fill(ctx, questions)
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) Question(ctx context.Context, id string) (domain.Question, error) {
	raw, err := r.client.HGet(ctx, CatalogKey, id).Result()
	if err == nil {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return domain.Question{}, fmt.Errorf("decode cached question %s: %w", id, err)
		}
		return q, nil
	}
	if !errors.Is(err, redis.Nil) {
		// Redis trouble: serve from the loader rather than failing the game.
		return r.fromLoader(ctx, id)
	}

	// Either the id is unknown or the cache expired; Questions refills it.
	questions, err := r.Questions(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	for _, q := range questions {
		if q.ID == id {
			return q, nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (r *QuestionRepository) fromLoader(ctx context.Context, id string) (domain.Question, error) {
	questions, err := r.loader.LoadQuestions(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	for _, q := range questions {
		if q.ID == id {
			return q, nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

// fill is best effort; a failed write only costs another loader round trip.
func (r *QuestionRepository) fill(ctx context.Context, questions []domain.Question) {
	if len(questions) == 0 {
		return
	}
	values := make(map[string]interface{}, len(questions))
	for _, q := range questions {
		data, err := json.Marshal(q)
		if err != nil {
			return
		}
		values[q.ID] = data
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, CatalogKey)
	pipe.HSet(ctx, CatalogKey, values)
	if ttl := r.ttlWithJitter(); ttl > 0 {
		pipe.Expire(ctx, CatalogKey, ttl)
	}
	_, _ = pipe.Exec(ctx)
}

func decodeCatalog(fields map[string]string) ([]domain.Question, error) {
	questions := make([]domain.Question, 0, len(fields))
	for id, raw := range fields {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, fmt.Errorf("decode cached question %s: %w", id, err)
		}
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int64N(jitterMax+1))
}
