// Package events publishes sync notifications on Redis Pub/Sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelOpportunitiesSynced carries one message per finished sync run.
const ChannelOpportunitiesSynced = "EVENT_OPPORTUNITIES_SYNCED"

// Synced is the payload published after a sync run.
type Synced struct {
	Type           string    `json:"type"`
	RunID          string    `json:"runId"`
	Trigger        string    `json:"trigger"`
	Category       string    `json:"category"`
	Outcome        string    `json:"outcome"`
	Fetched        int       `json:"fetched"`
	Saved          int       `json:"saved"`
	Skipped        int       `json:"skipped"`
	Errors         int       `json:"errors"`
	DeletedExpired int64     `json:"deletedExpired"`
	At             time.Time `json:"at"`
}

// Publisher sends events to Redis. A Publisher without a client drops
// events silently, which is how the service runs when REDIS_URL is unset.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// PublishSynced publishes ev on ChannelOpportunitiesSynced.
func (p *Publisher) PublishSynced(ctx context.Context, ev Synced) error {
	if p.rdb == nil {
		return nil
	}
	ev.Type = ChannelOpportunitiesSynced
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	if err := p.rdb.Publish(ctx, ChannelOpportunitiesSynced, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}
