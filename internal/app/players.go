package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jerusalem-quest/internal/domain"
	"jerusalem-quest/internal/naming"
)

// RegisterPlayer validates the display name and stores a new player. A taken name gets the
// smallest free numeric suffix instead of an error.
func (s *QuizService) RegisterPlayer(ctx context.Context, name string) (domain.Player, error) {
	normalized, err := naming.Normalize(name)
	if err != nil {
		return domain.Player{}, err
	}

	taken, err := s.players.NamesWithPrefix(ctx, normalized)
	if err != nil {
		return domain.Player{}, fmt.Errorf("lookup names: %w", err)
	}

	player := domain.Player{
		ID:             uuid.NewString(),
		Name:           naming.Unique(normalized, taken),
		TotalQuestions: s.perGame,
		Badges:         []string{},
		CreatedAt:      s.now(),
	}
	if err := s.players.Create(ctx, player); err != nil {
		return domain.Player{}, fmt.Errorf("create player: %w", err)
	}

	s.log.Info("player registered", zap.String("player_id", player.ID), zap.String("name", player.Name))
	return player, nil
}

// Player returns a registered player.
func (s *QuizService) Player(ctx context.Context, id string) (domain.Player, error) {
	return s.players.Get(ctx, id)
}

// Leaderboard lists all players, best first.
func (s *QuizService) Leaderboard(ctx context.Context) ([]domain.Player, error) {
	return s.players.Leaderboard(ctx)
}

// SubscribeLeaderboard returns the current standings plus a channel of later updates.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) SubscribeLeaderboard(ctx context.Context) (domain.Leaderboard, <-chan domain.Leaderboard, func(), error) {
	updates, cancel, err := s.feed.Subscribe(ctx)
	if err != nil {
		return domain.Leaderboard{}, nil, nil, err
	}
	players, err := s.players.Leaderboard(ctx)
	if err != nil {
		cancel()
		return domain.Leaderboard{}, nil, nil, err
	}
	return domain.NewLeaderboard(players, s.now()), updates, cancel, nil
}
