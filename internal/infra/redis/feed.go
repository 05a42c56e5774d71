package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"jerusalem-quest/internal/domain"
)

// LeaderboardChannel is the pub/sub channel carrying leaderboard snapshots as JSON.
const LeaderboardChannel = "leaderboard:updates"

// Feed shares leaderboard updates between instances through Redis pub/sub.
type Feed struct {
	client  *redis.Client
	channel string
}

func NewFeed(client *redis.Client) *Feed {
	return &Feed{client: client, channel: LeaderboardChannel}
}

func (f *Feed) Publish(ctx context.Context, lb domain.Leaderboard) error {
	data, err := json.Marshal(lb)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel, data).Err()
}

// Subscribe returns a channel of snapshots published by any instance.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *Feed) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	pubsub := f.client.Subscribe(ctx, f.channel)
	// Wait for the confirmation so no publish after Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", f.channel, err)
	}

	out := make(chan domain.Leaderboard, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(out)
		for msg := range pubsub.Channel() {
			var lb domain.Leaderboard
			if err := json.Unmarshal([]byte(msg.Payload), &lb); err != nil {
				continue
			}
			select {
			case out <- lb:
			default:
				// this goroutine is the only writer, so the retry cannot block
				select {
				case <-out:
				default:
				}
				out <- lb
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = pubsub.Close()
			<-done
		})
	}
	return out, cancel, nil
}
