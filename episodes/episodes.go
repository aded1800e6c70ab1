// Package episodes records the outcome of each resolution attempt in Redis so
// the assistant's behaviour can be inspected after the fact. Records are
// observational only — resolution never reads them back to influence matching.
package episodes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

// Episode is one resolution attempt, start to finish.
type Episode struct {
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Outcome   string    `json:"outcome"` // activated, not_found, ambiguous, session_lost
	Tier      string    `json:"tier,omitempty"`
	Title     string    `json:"title,omitempty"`
	Score     float64   `json:"score,omitempty"`
	Scrolls   int       `json:"scrolls"`
	Duration  string    `json:"duration"`
}

// Recorder appends episodes to a capped Redis list.
type Recorder struct {
	client  *redis.Client
	key     string
	maxKeep int64
}

func NewRecorder(redisAddr, key string) *Recorder {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	return &Recorder{client: rdb, key: key, maxKeep: 500}
}

// Record pushes one episode, trimming the list to the newest entries.
func (r *Recorder) Record(ep Episode) error {
	if ep.Timestamp.IsZero() {
		ep.Timestamp = time.Now()
	}
	data, err := json.Marshal(ep)
	if err != nil {
		return fmt.Errorf("error marshalling episode: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.key, data)
	pipe.LTrim(ctx, r.key, 0, r.maxKeep-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns up to n newest episodes, newest first.
func (r *Recorder) Recent(n int64) ([]Episode, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("error loading episodes: %w", err)
	}
	out := make([]Episode, 0, len(raw))
	for _, item := range raw {
		var ep Episode
		if err := json.Unmarshal([]byte(item), &ep); err != nil {
			continue
		}
		out = append(out, ep)
	}
	return out, nil
}

// Close releases the Redis connection.
func (r *Recorder) Close() error {
	return r.client.Close()
}
