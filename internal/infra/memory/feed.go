package memory

import (
	"context"
	"sync"

	"jerusalem-quest/internal/domain"
)

// Feed is an in-process app.LeaderboardFeed for single-instance deployments.
type Feed struct {
	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewFeed() *Feed {
	return &Feed{
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

func (f *Feed) Publish(_ context.Context, lb domain.Leaderboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- lb:
		default:
			// slow subscriber: drop its oldest update instead of blocking the publisher
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
	return nil
}

func (f *Feed) Subscribe(_ context.Context) (<-chan domain.Leaderboard, func(), error) {
	ch := make(chan domain.Leaderboard, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel, nil
}
