package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"jerusalem-quest/internal/domain"
)

const playerColumns = `id::text, name, score, correct_answers, total_questions, time_seconds, badges, created_at`

// PlayerRepository provides access to registered players.
type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Create(ctx context.Context, player domain.Player) error {
	badges := player.Badges
	if badges == nil {
		badges = []string{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO players (
			id, name, score, correct_answers, total_questions, time_seconds, badges, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		player.ID,
		player.Name,
		player.Score,
		player.CorrectAnswers,
		player.TotalQuestions,
		player.TimeSeconds,
		badges,
		player.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (domain.Player, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Player{}, domain.ErrPlayerNotFound
	}

	row := r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	player, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	if err != nil {
		return domain.Player{}, fmt.Errorf("get player: %w", err)
	}
	return player, nil
}

func (r *PlayerRepository) NamesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT name FROM players WHERE starts_with(name, $1)`, prefix)
	if err != nil {
		return nil, fmt.Errorf("select names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *PlayerRepository) Leaderboard(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+playerColumns+`
		FROM players
		ORDER BY score DESC, time_seconds ASC, created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	defer rows.Close()

	players := []domain.Player{}
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

// applyResult overwrites the stats of the last completed game inside tx.
func applyResult(ctx context.Context, tx pgx.Tx, playerID string, result domain.FinalResult) error {
	badges := result.Badges
	if badges == nil {
		badges = []string{}
	}
	tag, err := tx.Exec(ctx, `
		UPDATE players
		SET score = $2, correct_answers = $3, total_questions = $4, time_seconds = $5, badges = $6
		WHERE id = $1
	`, playerID, result.Score, result.CorrectAnswers, result.TotalQuestions, result.TimeSeconds, badges)
	if err != nil {
		return fmt.Errorf("update player stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func scanPlayer(row pgx.Row) (domain.Player, error) {
	var p domain.Player
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Score,
		&p.CorrectAnswers,
		&p.TotalQuestions,
		&p.TimeSeconds,
		&p.Badges,
		&p.CreatedAt,
	)
	if p.Badges == nil {
		p.Badges = []string{}
	}
	return p, err
}
