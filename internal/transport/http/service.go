package http

import (
	"context"

	"jerusalem-quest/internal/domain"
)

// QuizService is the set of use cases the HTTP layer exposes; *app.QuizService implements it.
type QuizService interface {
	RegisterPlayer(ctx context.Context, name string) (domain.Player, error)
	Player(ctx context.Context, id string) (domain.Player, error)
	Leaderboard(ctx context.Context) ([]domain.Player, error)
	StartGame(ctx context.Context, playerID string) (domain.StartedGame, error)
	SubmitAnswer(ctx context.Context, sessionID string, submission domain.AnswerSubmission) (domain.AnswerVerdict, error)
	CompleteGame(ctx context.Context, sessionID string) (domain.FinalResult, error)
	SubscribeLeaderboard(ctx context.Context) (domain.Leaderboard, <-chan domain.Leaderboard, func(), error)
}
