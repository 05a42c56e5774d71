package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"jerusalem-quest/internal/domain"
)

// QuestionLoader reads the catalog from the questions table.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, topic, difficulty, question, answers, correct_answer_id,
		       time_limit_sec, explanation, tags, image_url
		FROM questions
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q        domain.Question
			topic    string
			answers  []byte
			imageURL *string
		)
		if err := rows.Scan(
			&q.ID, &topic, &q.Difficulty, &q.Prompt, &answers, &q.CorrectAnswerID,
			&q.TimeLimitSec, &q.Explanation, &q.Tags, &imageURL,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(answers, &q.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers of %s: %w", q.ID, err)
		}
		q.Topic = domain.Topic(topic)
		if imageURL != nil {
			q.ImageURL = *imageURL
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return questions, nil
}

// SeedQuestions inserts questions that are not stored yet and reports how many were added.
// Existing rows are left untouched.
func SeedQuestions(ctx context.Context, transactor *Transactor, questions []domain.Question) (int, error) {
	inserted := 0
	err := transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, q := range questions {
			answers, err := json.Marshal(q.Answers)
			if err != nil {
				return fmt.Errorf("marshal answers of %s: %w", q.ID, err)
			}
			tags := q.Tags
			if tags == nil {
				tags = []string{}
			}
			var imageURL *string
			if q.ImageURL != "" {
				imageURL = &q.ImageURL
			}
			tag, err := tx.Exec(ctx, `
				INSERT INTO questions (
					id, topic, difficulty, question, answers, correct_answer_id,
					time_limit_sec, explanation, tags, image_url
				) VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10)
				ON CONFLICT (id) DO NOTHING
			`, q.ID, string(q.Topic), q.Difficulty, q.Prompt, string(answers), q.CorrectAnswerID,
				q.TimeLimitSec, q.Explanation, tags, imageURL)
			if err != nil {
				return fmt.Errorf("insert question %s: %w", q.ID, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
