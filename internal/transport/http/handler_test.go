package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jerusalem-quest/internal/domain"
)

type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) RegisterPlayer(ctx context.Context, name string) (domain.Player, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Player), args.Error(1)
}

func (m *MockQuizService) Player(ctx context.Context, id string) (domain.Player, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Player), args.Error(1)
}

func (m *MockQuizService) Leaderboard(ctx context.Context) ([]domain.Player, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Player), args.Error(1)
}

func (m *MockQuizService) StartGame(ctx context.Context, playerID string) (domain.StartedGame, error) {
	args := m.Called(ctx, playerID)
	return args.Get(0).(domain.StartedGame), args.Error(1)
}

func (m *MockQuizService) SubmitAnswer(ctx context.Context, sessionID string, submission domain.AnswerSubmission) (domain.AnswerVerdict, error) {
	args := m.Called(ctx, sessionID, submission)
	return args.Get(0).(domain.AnswerVerdict), args.Error(1)
}

func (m *MockQuizService) CompleteGame(ctx context.Context, sessionID string) (domain.FinalResult, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.FinalResult), args.Error(1)
}

func (m *MockQuizService) SubscribeLeaderboard(ctx context.Context) (domain.Leaderboard, <-chan domain.Leaderboard, func(), error) {
	args := m.Called(ctx)
	if args.Get(1) == nil {
		return args.Get(0).(domain.Leaderboard), nil, nil, args.Error(3)
	}
	return args.Get(0).(domain.Leaderboard), args.Get(1).(<-chan domain.Leaderboard), args.Get(2).(func()), args.Error(3)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRegisterPlayer(t *testing.T) {
	service := new(MockQuizService)
	router := NewRouter(service, zap.NewNop(), []string{"http://localhost:3000"})
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("created", func(t *testing.T) {
		service.On("RegisterPlayer", mock.Anything, "Dana").Return(domain.Player{
			ID: "p1", Name: "Dana", TotalQuestions: 10, Badges: []string{}, CreatedAt: created,
		}, nil).Once()

		rec := perform(router, http.MethodPost, "/api/players", `{"name":"Dana"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "p1", body["id"])
		require.Equal(t, "Dana", body["name"])
		require.Equal(t, float64(10), body["totalQuestions"])
		require.Equal(t, []any{}, body["badges"])
		service.AssertExpectations(t)
	})

	t.Run("missing name", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"name":""}`, `{"name":42}`} {
			rec := perform(router, http.MethodPost, "/api/players", body)

			require.Equal(t, http.StatusBadRequest, rec.Code, body)
			require.JSONEq(t, `{"error":"Name is required"}`, rec.Body.String(), body)
		}
		service.AssertNotCalled(t, "RegisterPlayer", mock.Anything, "")
	})

	t.Run("blank name", func(t *testing.T) {
		service.On("RegisterPlayer", mock.Anything, "   ").Return(domain.Player{}, domain.NewValidationError("Name cannot be empty")).Once()

		rec := perform(router, http.MethodPost, "/api/players", `{"name":"   "}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error":"Name cannot be empty"}`, rec.Body.String())
		service.AssertExpectations(t)
	})
}

func TestGetPlayerNotFound(t *testing.T) {
	service := new(MockQuizService)
	router := NewRouter(service, zap.NewNop(), nil)
	service.On("Player", mock.Anything, "nope").Return(domain.Player{}, domain.ErrPlayerNotFound).Once()

	rec := perform(router, http.MethodGet, "/api/players/nope", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"Player not found"}`, rec.Body.String())
	service.AssertExpectations(t)
}

func TestStartGame(t *testing.T) {
	service := new(MockQuizService)
	router := NewRouter(service, zap.NewNop(), nil)

	t.Run("missing player id", func(t *testing.T) {
		rec := perform(router, http.MethodPost, "/api/games/start", `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error":"playerId is required"}`, rec.Body.String())
	})

	t.Run("payload has no answer key", func(t *testing.T) {
		service.On("StartGame", mock.Anything, "p1").Return(domain.StartedGame{
			SessionID: "s1",
			Questions: []domain.SanitizedQuestion{{
				ID:           "q001",
				Topic:        domain.TopicHolyCity,
				Prompt:       "Where?",
				Answers:      []domain.Answer{{ID: "b", Text: "B"}, {ID: "a", Text: "A"}, {ID: "d", Text: "D"}},
				TimeLimitSec: 20,
				Tags:         []string{},
				ImageURL:     "/images/questions/q001.png",
			}},
		}, nil).Once()

		rec := perform(router, http.MethodPost, "/api/games/start", `{"playerId":"p1"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotContains(t, rec.Body.String(), "correctAnswerId")
		require.NotContains(t, rec.Body.String(), "explanation")
		require.Contains(t, rec.Body.String(), `"sessionId":"s1"`)
		service.AssertExpectations(t)
	})

	t.Run("empty catalog", func(t *testing.T) {
		service.On("StartGame", mock.Anything, "p2").Return(domain.StartedGame{}, domain.ErrCatalogEmpty).Once()

		rec := perform(router, http.MethodPost, "/api/games/start", `{"playerId":"p2"}`)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.JSONEq(t, `{"error":"No questions available"}`, rec.Body.String())
	})

	t.Run("unexpected error is opaque", func(t *testing.T) {
		service.On("StartGame", mock.Anything, "p3").Return(domain.StartedGame{}, errors.New("connection refused")).Once()

		rec := perform(router, http.MethodPost, "/api/games/start", `{"playerId":"p3"}`)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	})
}

func TestSubmitAnswer(t *testing.T) {
	service := new(MockQuizService)
	router := NewRouter(service, zap.NewNop(), nil)

	t.Run("missing time", func(t *testing.T) {
		rec := perform(router, http.MethodPost, "/api/games/s1/answer", `{"questionId":"q1","answerId":"a"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error":"questionId, answerId, and timeMs are required"}`, rec.Body.String())
	})

	t.Run("zero time is accepted", func(t *testing.T) {
		sub := domain.AnswerSubmission{QuestionID: "q1", AnswerID: "a", TimeMs: 0}
		service.On("SubmitAnswer", mock.Anything, "s1", sub).Return(domain.AnswerVerdict{
			Correct: true, CorrectAnswerID: "a", Explanation: "Because.",
		}, nil).Once()

		rec := perform(router, http.MethodPost, "/api/games/s1/answer", `{"questionId":"q1","answerId":"a","timeMs":0}`)

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"correct":true,"correctAnswerId":"a","explanation":"Because."}`, rec.Body.String())
		service.AssertExpectations(t)
	})

	t.Run("completed session", func(t *testing.T) {
		sub := domain.AnswerSubmission{QuestionID: "q2", AnswerID: "b", TimeMs: 100}
		service.On("SubmitAnswer", mock.Anything, "s1", sub).Return(domain.AnswerVerdict{}, domain.ErrSessionCompleted).Once()

		rec := perform(router, http.MethodPost, "/api/games/s1/answer", `{"questionId":"q2","answerId":"b","timeMs":100}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error":"Game session already completed"}`, rec.Body.String())
	})

	t.Run("unknown session", func(t *testing.T) {
		sub := domain.AnswerSubmission{QuestionID: "q1", AnswerID: "a", TimeMs: 5}
		service.On("SubmitAnswer", mock.Anything, "gone", sub).Return(domain.AnswerVerdict{}, domain.ErrSessionNotFound).Once()

		rec := perform(router, http.MethodPost, "/api/games/gone/answer", `{"questionId":"q1","answerId":"a","timeMs":5}`)

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.JSONEq(t, `{"error":"Game session not found"}`, rec.Body.String())
	})
}

func TestCompleteGame(t *testing.T) {
	service := new(MockQuizService)
	router := NewRouter(service, zap.NewNop(), nil)
	service.On("CompleteGame", mock.Anything, "s1").Return(domain.FinalResult{
		Score: 70, CorrectAnswers: 5, TotalQuestions: 10, TimeSeconds: 52,
		Badges: []string{"Participation Hero", "Beginner Explorer", "Lightning Fast"},
	}, nil).Once()
	service.On("CompleteGame", mock.Anything, "s1").Return(domain.FinalResult{}, domain.ErrSessionCompleted).Once()

	rec := perform(router, http.MethodPost, "/api/games/s1/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"score":70,"correctAnswers":5,"totalQuestions":10,"timeSeconds":52,
		"badges":["Participation Hero","Beginner Explorer","Lightning Fast"]}`, rec.Body.String())

	rec = perform(router, http.MethodPost, "/api/games/s1/complete", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertExpectations(t)
}

func TestLeaderboardAndHealth(t *testing.T) {
	service := new(MockQuizService)
	router := NewRouter(service, zap.NewNop(), nil)
	service.On("Leaderboard", mock.Anything).Return([]domain.Player{
		{ID: "p1", Name: "Top", Score: 120},
		{ID: "p2", Name: "Next", Score: 70},
	}, nil).Once()

	rec := perform(router, http.MethodGet, "/api/leaderboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var players []playerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Len(t, players, 2)
	require.Equal(t, "Top", players[0].Name)

	rec = perform(router, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	router := NewRouter(new(MockQuizService), zap.NewNop(), []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodOptions, "/api/leaderboard", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func perform(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
