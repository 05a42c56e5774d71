package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"jerusalem-quest/internal/app"
	"jerusalem-quest/internal/domain"
	"jerusalem-quest/internal/infra/memory"
)

func TestLeaderboardFeedPushesCompletions(t *testing.T) {
	ctx := context.Background()
	players := memory.NewPlayerStore()
	questions := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(sampleQuestions()), time.Minute)
	service := app.NewQuizService(players, memory.NewSessionStore(players), questions, memory.NewFeed(), app.Config{})

	player, err := service.RegisterPlayer(ctx, "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	server := httptest.NewServer(NewRouter(service, zap.NewNop(), []string{"http://localhost:3000"}))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the current standings first.
	initial := readLeaderboard(t, conn)
	if len(initial.Entries) != 1 || initial.Entries[0].Score != 0 {
		t.Fatalf("unexpected initial leaderboard %+v", initial)
	}

	started, err := service.StartGame(ctx, player.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.SubmitAnswer(ctx, started.SessionID, domain.AnswerSubmission{
		QuestionID: "q1",
		AnswerID:   "a",
		TimeMs:     3000,
	}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := service.CompleteGame(ctx, started.SessionID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	update := readLeaderboard(t, conn)
	if len(update.Entries) != 1 || update.Entries[0].PlayerID != player.ID || update.Entries[0].Score != 15 {
		t.Fatalf("expected pushed score 15, got %+v", update)
	}
}

func readLeaderboard(t *testing.T, conn *websocket.Conn) domain.Leaderboard {
	t.Helper()
	var msg struct {
		Type    string             `json:"type"`
		Payload domain.Leaderboard `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected type leaderboard, got %s", msg.Type)
	}
	return msg.Payload
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:     "q1",
			Topic:  domain.TopicHolyCity,
			Prompt: "Which gate faces the Mount of Olives?",
			Answers: []domain.Answer{
				{ID: "a", Text: "Lions' Gate"},
				{ID: "b", Text: "Jaffa Gate"},
				{ID: "c", Text: "Zion Gate"},
			},
			CorrectAnswerID: "a",
			TimeLimitSec:    20,
		},
	}
}
