package access

import (
	"context"
	"fmt"
	"time"

	"ai-docchat-be/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Verifier enforces per-user daily usage limits with Redis counters.
// Keys are scoped to the calendar day so they reset naturally at midnight.
type Verifier struct {
	client     *redis.Client
	dailyLimit int
}

// NewVerifier creates a new usage verifier. A dailyLimit below zero means
// unlimited.
func NewVerifier(client *redis.Client, dailyLimit int) *Verifier {
	return &Verifier{
		client:     client,
		dailyLimit: dailyLimit,
	}
}

func (v *Verifier) usageKey(userId uuid.UUID, kind string, now time.Time) string {
	return fmt.Sprintf("usage:%s:%s:%s", kind, userId.String(), now.Format("2006-01-02"))
}

// VerifyChatLimit checks the user's chat counter against the daily limit.
// Returns *dto.LimitExceededError when the quota is spent.
func (v *Verifier) VerifyChatLimit(ctx context.Context, userId uuid.UUID) error {
	return v.verify(ctx, userId, "chat")
}

// VerifySearchLimit checks the user's search counter against the daily limit.
func (v *Verifier) VerifySearchLimit(ctx context.Context, userId uuid.UUID) error {
	return v.verify(ctx, userId, "search")
}

func (v *Verifier) verify(ctx context.Context, userId uuid.UUID, kind string) error {
	if v.dailyLimit < 0 {
		return nil
	}

	now := time.Now()
	used, err := v.client.Get(ctx, v.usageKey(userId, kind, now)).Int()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("read usage counter: %w", err)
	}

	if used >= v.dailyLimit {
		resetTime := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		return &dto.LimitExceededError{
			Limit:      v.dailyLimit,
			Used:       used,
			ResetAfter: resetTime,
		}
	}

	return nil
}

// IncrementChatUsage bumps the user's chat counter for today.
func (v *Verifier) IncrementChatUsage(ctx context.Context, userId uuid.UUID) error {
	return v.increment(ctx, userId, "chat")
}

// IncrementSearchUsage bumps the user's search counter for today.
func (v *Verifier) IncrementSearchUsage(ctx context.Context, userId uuid.UUID) error {
	return v.increment(ctx, userId, "search")
}

func (v *Verifier) increment(ctx context.Context, userId uuid.UUID, kind string) error {
	now := time.Now()
	key := v.usageKey(userId, kind, now)

	pipe := v.client.TxPipeline()
	pipe.Incr(ctx, key)
	// 48h TTL keeps yesterday's key around for debugging, then drops it
	pipe.Expire(ctx, key, 48*time.Hour)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("increment usage counter: %w", err)
	}
	return nil
}
