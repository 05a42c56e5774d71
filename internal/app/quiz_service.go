package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jerusalem-quest/internal/domain"
	"jerusalem-quest/internal/game"
)

// DefaultQuestionsPerSession is the size of one game.
const DefaultQuestionsPerSession = 10

// QuestionRepository serves catalog content (from cache/backing store).
type QuestionRepository interface {
	Questions(ctx context.Context) ([]domain.Question, error)
	Question(ctx context.Context, id string) (domain.Question, error)
}

// PlayerRepository stores registered players.
type PlayerRepository interface {
	Create(ctx context.Context, player domain.Player) error
	Get(ctx context.Context, id string) (domain.Player, error)
	NamesWithPrefix(ctx context.Context, prefix string) ([]string, error)
	// Leaderboard returns all players by score descending, then time ascending.
	Leaderboard(ctx context.Context) ([]domain.Player, error)
}

// ScoreFunc turns a locked, not yet completed session into its final result.
type ScoreFunc func(session domain.GameSession) domain.FinalResult

// SessionRepository abstracts how game sessions are stored (in-memory, Postgres).
type SessionRepository interface {
	Create(ctx context.Context, session domain.GameSession) error
	Get(ctx context.Context, id string) (domain.GameSession, error)
	// AppendAnswer fails with ErrSessionCompleted or ErrAlreadyAnswered without writing.
	AppendAnswer(ctx context.Context, sessionID string, record domain.AnswerRecord) error
	// Complete runs score and writes its result onto the owning player, then stamps the
	// session. The whole step is atomic per session; a loser observes ErrSessionCompleted.
	Complete(ctx context.Context, sessionID string, at time.Time, score ScoreFunc) (domain.FinalResult, error)
}

// LeaderboardFeed fans leaderboard snapshots out to subscribers.
// The caller must invoke the returned cancel function to avoid leaks.
type LeaderboardFeed interface {
	Publish(ctx context.Context, lb domain.Leaderboard) error
	Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error)
}

// Config tunes game rules.
type Config struct {
	QuestionsPerSession int
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	players   PlayerRepository
	sessions  SessionRepository
	questions QuestionRepository
	feed      LeaderboardFeed
	sanitizer *game.Sanitizer
	perGame   int
	now       func() time.Time
	log       *zap.Logger
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithSanitizer swaps the random source used for drawing and shuffling.
func WithSanitizer(sanitizer *game.Sanitizer) Option {
	return func(s *QuizService) { s.sanitizer = sanitizer }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *QuizService) { s.log = log }
}

func NewQuizService(
	players PlayerRepository,
	sessions SessionRepository,
	questions QuestionRepository,
	feed LeaderboardFeed,
	cfg Config,
	opts ...Option,
) *QuizService {
	perGame := cfg.QuestionsPerSession
	if perGame <= 0 {
		perGame = DefaultQuestionsPerSession
	}
	s := &QuizService{
		players:   players,
		sessions:  sessions,
		questions: questions,
		feed:      feed,
		sanitizer: game.NewSanitizer(),
		perGame:   perGame,
		now:       time.Now,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartGame draws a fresh question set for a player and opens a session for it.
func (s *QuizService) StartGame(ctx context.Context, playerID string) (domain.StartedGame, error) {
	if playerID == "" {
		return domain.StartedGame{}, domain.NewValidationError("playerId is required")
	}
	if _, err := s.players.Get(ctx, playerID); err != nil {
		return domain.StartedGame{}, err
	}

	catalog, err := s.questions.Questions(ctx)
	if err != nil {
		return domain.StartedGame{}, fmt.Errorf("load catalog: %w", err)
	}
	if len(catalog) == 0 {
		return domain.StartedGame{}, domain.ErrCatalogEmpty
	}

	drawn := s.sanitizer.Draw(catalog, s.perGame)
	// Sanitize before writing anything so a broken question leaves no orphan session.
	payload, err := s.sanitizer.SanitizeAll(drawn)
	if err != nil {
		return domain.StartedGame{}, err
	}

	ids := make([]string, 0, len(drawn))
	for _, q := range drawn {
		ids = append(ids, q.ID)
	}
	session := domain.GameSession{
		ID:          uuid.NewString(),
		PlayerID:    playerID,
		QuestionIDs: ids,
		Answers:     []domain.AnswerRecord{},
		StartedAt:   s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return domain.StartedGame{}, fmt.Errorf("create session: %w", err)
	}

	s.log.Info("game started",
		zap.String("session_id", session.ID),
		zap.String("player_id", playerID),
		zap.Int("questions", len(ids)),
	)
	return domain.StartedGame{SessionID: session.ID, Questions: payload}, nil
}

// SubmitAnswer checks one answer against the catalog and appends it to the session log.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID string, submission domain.AnswerSubmission) (domain.AnswerVerdict, error) {
	if submission.QuestionID == "" || submission.AnswerID == "" {
		return domain.AnswerVerdict{}, domain.NewValidationError("questionId, answerId, and timeMs are required")
	}
	if submission.TimeMs < 0 {
		return domain.AnswerVerdict{}, domain.NewValidationError("timeMs must not be negative")
	}
	if submission.TimeMs > game.MaxAnswerMs {
		return domain.AnswerVerdict{}, domain.NewValidationError("timeMs is too large")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.AnswerVerdict{}, err
	}
	if session.Completed() {
		return domain.AnswerVerdict{}, domain.ErrSessionCompleted
	}

	question, err := s.questions.Question(ctx, submission.QuestionID)
	if err != nil {
		return domain.AnswerVerdict{}, err
	}
	if !session.HasQuestion(question.ID) {
		return domain.AnswerVerdict{}, domain.NewValidationError("Question is not part of this game session")
	}
	if session.Answered(question.ID) {
		return domain.AnswerVerdict{}, domain.ErrAlreadyAnswered
	}

	record := domain.AnswerRecord{
		QuestionID: question.ID,
		AnswerID:   submission.AnswerID,
		TimeMs:     submission.TimeMs,
		Correct:    question.CorrectAnswerID == submission.AnswerID,
	}
	if err := s.sessions.AppendAnswer(ctx, sessionID, record); err != nil {
		return domain.AnswerVerdict{}, err
	}

	return domain.AnswerVerdict{
		Correct:         record.Correct,
		CorrectAnswerID: question.CorrectAnswerID,
		Explanation:     question.Explanation,
	}, nil
}

// CompleteGame scores the session, awards badges and overwrites the player's stats.
func (s *QuizService) CompleteGame(ctx context.Context, sessionID string) (domain.FinalResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.FinalResult{}, err
	}
	if session.Completed() {
		return domain.FinalResult{}, domain.ErrSessionCompleted
	}

	info, err := s.questionInfo(ctx, session.QuestionIDs)
	if err != nil {
		return domain.FinalResult{}, err
	}

	result, err := s.sessions.Complete(ctx, sessionID, s.now(), func(locked domain.GameSession) domain.FinalResult {
		tally := game.Score(locked.Answers, info)
		return domain.FinalResult{
			Score:          tally.Score,
			CorrectAnswers: tally.CorrectAnswers,
			TotalQuestions: tally.TotalAnswers,
			TimeSeconds:    tally.TimeSeconds,
			Badges:         game.Badges(locked.Answers, info, tally.TimeSeconds),
		}
	})
	if err != nil {
		return domain.FinalResult{}, err
	}

	s.log.Info("game completed",
		zap.String("session_id", sessionID),
		zap.String("player_id", session.PlayerID),
		zap.Int("score", result.Score),
		zap.Strings("badges", result.Badges),
	)
	s.publishLeaderboard(ctx)
	return result, nil
}

// questionInfo resolves topics and time limits; questions since removed from the catalog are skipped.
func (s *QuizService) questionInfo(ctx context.Context, ids []string) (map[string]game.QuestionInfo, error) {
	info := make(map[string]game.QuestionInfo, len(ids))
	for _, id := range ids {
		q, err := s.questions.Question(ctx, id)
		if errors.Is(err, domain.ErrQuestionNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load question %s: %w", id, err)
		}
		info[id] = game.QuestionInfo{Topic: q.Topic, TimeLimitSec: q.TimeLimitSec}
	}
	return info, nil
}

// publishLeaderboard is best effort; a completed game never fails because the feed is down.
func (s *QuizService) publishLeaderboard(ctx context.Context) {
	players, err := s.players.Leaderboard(ctx)
	if err != nil {
		s.log.Warn("leaderboard snapshot failed", zap.Error(err))
		return
	}
	if err := s.feed.Publish(ctx, domain.NewLeaderboard(players, s.now())); err != nil {
		s.log.Warn("leaderboard publish failed", zap.Error(err))
	}
}
