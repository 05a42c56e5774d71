package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"jerusalem-quest/internal/app"
	"jerusalem-quest/internal/domain"
)

// SessionRepository stores game sessions; the answer log is an ordered JSONB array.
type SessionRepository struct {
	db         *pgxpool.Pool
	transactor *Transactor
}

func NewSessionRepository(db *pgxpool.Pool, transactor *Transactor) *SessionRepository {
	return &SessionRepository{db: db, transactor: transactor}
}

func (r *SessionRepository) Create(ctx context.Context, session domain.GameSession) error {
	answers, err := json.Marshal(nonNilAnswers(session.Answers))
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO game_sessions (id, player_id, question_ids, answers, started_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)
	`, session.ID, session.PlayerID, session.QuestionIDs, string(answers), session.StartedAt)
	if err != nil {
		return fmt.Errorf("create game session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (domain.GameSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.GameSession{}, domain.ErrSessionNotFound
	}
	return scanSession(r.db.QueryRow(ctx, selectSession+` WHERE id = $1`, id))
}

// AppendAnswer adds the record unless the session is completed or the question already has an
// answer. Both conditions are part of the UPDATE so concurrent writers cannot slip past them.
func (r *SessionRepository) AppendAnswer(ctx context.Context, sessionID string, record domain.AnswerRecord) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return domain.ErrSessionNotFound
	}
	entry, err := json.Marshal([]domain.AnswerRecord{record})
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	probe, err := json.Marshal([]map[string]string{{"questionId": record.QuestionID}})
	if err != nil {
		return fmt.Errorf("marshal answer probe: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE game_sessions
		SET answers = answers || $2::jsonb
		WHERE id = $1 AND completed_at IS NULL AND NOT answers @> $3::jsonb
	`, sessionID, string(entry), string(probe))
	if err != nil {
		return fmt.Errorf("append answer: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var completed bool
	err = r.db.QueryRow(ctx, `SELECT completed_at IS NOT NULL FROM game_sessions WHERE id = $1`, sessionID).Scan(&completed)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrSessionNotFound
	case err != nil:
		return fmt.Errorf("check session state: %w", err)
	case completed:
		return domain.ErrSessionCompleted
	default:
		return domain.ErrAlreadyAnswered
	}
}

// Complete locks the session row, scores it and writes the player stats in one transaction.
func (r *SessionRepository) Complete(ctx context.Context, sessionID string, at time.Time, score app.ScoreFunc) (domain.FinalResult, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return domain.FinalResult{}, domain.ErrSessionNotFound
	}

	var result domain.FinalResult
	err := r.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		session, err := scanSession(tx.QueryRow(ctx, selectSession+` WHERE id = $1 FOR UPDATE`, sessionID))
		if err != nil {
			return err
		}
		if session.Completed() {
			return domain.ErrSessionCompleted
		}

		result = score(session)
		if err := applyResult(ctx, tx, session.PlayerID, result); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE game_sessions SET completed_at = $2
			WHERE id = $1 AND completed_at IS NULL
		`, sessionID, at)
		if err != nil {
			return fmt.Errorf("stamp completion: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrSessionCompleted
		}
		return nil
	})
	if err != nil {
		return domain.FinalResult{}, err
	}
	return result, nil
}

const selectSession = `
	SELECT id::text, player_id::text, question_ids, answers, started_at, completed_at
	FROM game_sessions`

func scanSession(row pgx.Row) (domain.GameSession, error) {
	var (
		s       domain.GameSession
		answers []byte
	)
	err := row.Scan(&s.ID, &s.PlayerID, &s.QuestionIDs, &answers, &s.StartedAt, &s.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.GameSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.GameSession{}, fmt.Errorf("get game session: %w", err)
	}
	if err := json.Unmarshal(answers, &s.Answers); err != nil {
		return domain.GameSession{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	s.Answers = nonNilAnswers(s.Answers)
	return s, nil
}

func nonNilAnswers(answers []domain.AnswerRecord) []domain.AnswerRecord {
	if answers == nil {
		return []domain.AnswerRecord{}
	}
	return answers
}
