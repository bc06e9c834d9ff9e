package dispatch

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commentloop/commentloop/internal/channel"
	redis "github.com/redis/go-redis/v9"
)

const deferredKey = "dispatch:deferred_dm"

// Message is a direct message scheduled for later delivery. The ledger
// records the handoff as successful at enqueue time; delivery outcomes
// are reported out of band.
type Message struct {
	ID           string           `json:"id"`
	AccountID    snowflake.ID     `json:"account_id"`
	AutomationID snowflake.ID     `json:"automation_id"`
	CommentID    string           `json:"comment_id"`
	CommenterID  string           `json:"commenter_id"`
	Text         string           `json:"text"`
	Buttons      []channel.Button `json:"buttons,omitempty"`
	DueAt        time.Time        `json:"due_at"`
}

// Queue is the durable deferred-delivery channel.
type Queue interface {
	Enqueue(ctx context.Context, msg Message) error
	// PopDue atomically removes and returns up to limit messages whose
	// due time has passed.
	PopDue(ctx context.Context, now time.Time, limit int) ([]Message, error)
}

// Members due at or before ARGV[1] are claimed and removed in one
// script so concurrent dispatchers never deliver the same message.
const popDueScript = `
local due = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1], "LIMIT", 0, tonumber(ARGV[2]))
if #due > 0 then
  redis.call("ZREM", KEYS[1], unpack(due))
end
return due
`

type RedisQueue struct {
	client *redis.Client
	pop    *redis.Script
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{
		client: client,
		pop:    redis.NewScript(popDueScript),
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.client.ZAdd(ctx, deferredKey, redis.Z{
		Score:  float64(msg.DueAt.UnixMilli()),
		Member: payload,
	}).Err()
}

func (q *RedisQueue) PopDue(ctx context.Context, now time.Time, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 25
	}
	raw, err := q.pop.Run(ctx, q.client, []string{deferredKey}, now.UnixMilli(), limit).StringSlice()
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

var _ Queue = (*RedisQueue)(nil)

// MemoryQueue is a process-local Queue for tests.
type MemoryQueue struct {
	mu       sync.Mutex
	messages []Message
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Enqueue(_ context.Context, msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, msg)
	return nil
}

func (q *MemoryQueue) PopDue(_ context.Context, now time.Time, limit int) ([]Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if limit <= 0 {
		limit = 25
	}

	sort.SliceStable(q.messages, func(i, j int) bool {
		return q.messages[i].DueAt.Before(q.messages[j].DueAt)
	})

	due := make([]Message, 0)
	rest := make([]Message, 0, len(q.messages))
	for _, msg := range q.messages {
		if len(due) < limit && !msg.DueAt.After(now) {
			due = append(due, msg)
			continue
		}
		rest = append(rest, msg)
	}
	q.messages = rest
	return due, nil
}

func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

var _ Queue = (*MemoryQueue)(nil)
