package memory

import (
	"context"
	"sync"
	"time"

	"jerusalem-quest/internal/app"
	"jerusalem-quest/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Completion writes through to the PlayerStore while holding the session lock.
type SessionStore struct {
	players *PlayerStore

	mu       sync.Mutex
	sessions map[string]domain.GameSession
}

func NewSessionStore(players *PlayerStore) *SessionStore {
	return &SessionStore{
		players:  players,
		sessions: make(map[string]domain.GameSession),
	}
}

func (s *SessionStore) Create(_ context.Context, session domain.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.GameSession{}, domain.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *SessionStore) AppendAnswer(_ context.Context, sessionID string, record domain.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if session.Completed() {
		return domain.ErrSessionCompleted
	}
	if session.Answered(record.QuestionID) {
		return domain.ErrAlreadyAnswered
	}
	session.Answers = append(session.Answers, record)
	s.sessions[sessionID] = session
	return nil
}

func (s *SessionStore) Complete(_ context.Context, sessionID string, at time.Time, score app.ScoreFunc) (domain.FinalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.FinalResult{}, domain.ErrSessionNotFound
	}
	if session.Completed() {
		return domain.FinalResult{}, domain.ErrSessionCompleted
	}

	result := score(cloneSession(session))
	if err := s.players.applyResult(session.PlayerID, result); err != nil {
		return domain.FinalResult{}, err
	}
	session.CompletedAt = &at
	s.sessions[sessionID] = session
	return result, nil
}

func cloneSession(s domain.GameSession) domain.GameSession {
	s.QuestionIDs = append([]string(nil), s.QuestionIDs...)
	s.Answers = append([]domain.AnswerRecord{}, s.Answers...)
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		s.CompletedAt = &at
	}
	return s
}
