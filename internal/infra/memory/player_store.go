package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"jerusalem-quest/internal/domain"
)

// PlayerStore is an in-memory implementation of app.PlayerRepository.
type PlayerStore struct {
	mu      sync.RWMutex
	players map[string]domain.Player
}

func NewPlayerStore() *PlayerStore {
	return &PlayerStore{
		players: make(map[string]domain.Player),
	}
}

func (s *PlayerStore) Create(_ context.Context, player domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = clonePlayer(player)
	return nil
}

func (s *PlayerStore) Get(_ context.Context, id string) (domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return clonePlayer(player), nil
}

func (s *PlayerStore) NamesWithPrefix(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for _, p := range s.players {
		if strings.HasPrefix(p.Name, prefix) {
			names = append(names, p.Name)
		}
	}
	return names, nil
}

func (s *PlayerStore) Leaderboard(_ context.Context) ([]domain.Player, error) {
	s.mu.RLock()
	players := make([]domain.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, clonePlayer(p))
	}
	s.mu.RUnlock()

	sort.Slice(players, func(i, j int) bool {
		if players[i].Score != players[j].Score {
			return players[i].Score > players[j].Score
		}
		if players[i].TimeSeconds != players[j].TimeSeconds {
			return players[i].TimeSeconds < players[j].TimeSeconds
		}
		if !players[i].CreatedAt.Equal(players[j].CreatedAt) {
			return players[i].CreatedAt.Before(players[j].CreatedAt)
		}
		return players[i].ID < players[j].ID
	})
	return players, nil
}

// applyResult overwrites the stats of the last completed game.
func (s *PlayerStore) applyResult(id string, result domain.FinalResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	player.Score = result.Score
	player.CorrectAnswers = result.CorrectAnswers
	player.TotalQuestions = result.TotalQuestions
	player.TimeSeconds = result.TimeSeconds
	player.Badges = append([]string(nil), result.Badges...)
	s.players[id] = player
	return nil
}

func clonePlayer(p domain.Player) domain.Player {
	p.Badges = append([]string{}, p.Badges...)
	return p
}
