// Package cache records the per-session action history in Redis: an
// append-only list for replay plus a pub/sub channel for live observers.
// Publishing is best-effort; a session never fails because history could not
// be written.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// GameActionRecord is one entry of a session's action history.
type GameActionRecord struct {
	SessionID   uuid.UUID      `json:"sessionId"`
	ActionIndex int            `json:"actionIndex"`
	Actor       string         `json:"actor"`
	ActionType  string         `json:"actionType"`
	Payload     map[string]any `json:"payload"`
	Timestamp   int64          `json:"timestamp"`
}

// Action types, one per observable turn event.
const (
	ActionTurnStart        = "turn_start"
	ActionMove             = "move"
	ActionHypothesis       = "hypothesis"
	ActionQuestion         = "question"
	ActionReveal           = "reveal"
	ActionNoReveal         = "no_reveal"
	ActionRepeatHypothesis = "repeat_hypothesis"
)

// HistoryKey returns the Redis list key holding a session's action history.
func HistoryKey(session uuid.UUID) string {
	return fmt.Sprintf("limier:history:%s", session)
}

// ChannelKey returns the pub/sub channel for a session's live action feed.
func ChannelKey(session uuid.UUID) string {
	return fmt.Sprintf("limier:actions:%s", session)
}

// Publisher appends action records to a session's history. A nil Publisher
// or a Publisher over a nil client silently drops records, so callers never
// guard their logging sites.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher wraps an existing Redis client; nil is allowed and disables
// publishing.
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Connect dials Redis and verifies connectivity.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// Publish appends the record to the session history list and announces it on
// the session channel.
func (p *Publisher) Publish(ctx context.Context, rec GameActionRecord) error {
	if p == nil || p.rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling action record: %w", err)
	}
	if err := p.rdb.RPush(ctx, HistoryKey(rec.SessionID), data).Err(); err != nil {
		return fmt.Errorf("appending action %d: %w", rec.ActionIndex, err)
	}
	if err := p.rdb.Publish(ctx, ChannelKey(rec.SessionID), data).Err(); err != nil {
		return fmt.Errorf("announcing action %d: %w", rec.ActionIndex, err)
	}
	return nil
}

// History returns a session's full recorded action list in append order.
func (p *Publisher) History(ctx context.Context, session uuid.UUID) ([]GameActionRecord, error) {
	if p == nil || p.rdb == nil {
		return nil, nil
	}
	raw, err := p.rdb.LRange(ctx, HistoryKey(session), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	out := make([]GameActionRecord, 0, len(raw))
	for _, item := range raw {
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decoding history entry: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
