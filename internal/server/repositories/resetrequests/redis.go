package resetrequests

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "festivio:reset"

// expiredRetention keeps a record around after ExpiresAt so lookups can tell
// "expired" from "never issued".
const expiredRetention = time.Minute

// RedisRepository keeps reset requests as JSON values keyed by the SHA-256 of
// the token. Keys expire on their own shortly after ExpiresAt.
type RedisRepository struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisRepository builds a RedisRepository. An empty prefix selects the default.
func NewRedisRepository(client redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisRepository{redis: client, prefix: prefix, now: time.Now}
}

type redisRecord struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *RedisRepository) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.prefix + ":" + hex.EncodeToString(sum[:])
}

func (r *RedisRepository) Create(ctx context.Context, req *models.ResetPasswordRequest) error {
	now := r.now()
	req.ID = uuid.NewString()
	req.CreatedAt = now

	data, err := json.Marshal(redisRecord{
		ID: req.ID, Token: req.Token, UserID: req.UserID, ExpiresAt: req.ExpiresAt, CreatedAt: req.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode reset request: %w", err)
	}

	ttl := req.ExpiresAt.Sub(now)
	if ttl < 0 {
		ttl = 0
	}
	ttl += expiredRetention

	ok, err := r.redis.SetNX(ctx, r.key(req.Token), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if !ok {
		return common.ErrResetTokenExists
	}
	return nil
}

func (r *RedisRepository) Find(ctx context.Context, token string) (*models.ResetPasswordRequest, error) {
	data, err := r.redis.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode reset request: %w", err)
	}
	if rec.Token != token {
		return nil, common.ErrorNotFound
	}

	return &models.ResetPasswordRequest{
		ID: rec.ID, Token: rec.Token, UserID: rec.UserID, ExpiresAt: rec.ExpiresAt, CreatedAt: rec.CreatedAt,
	}, nil
}

// Delete relies on DEL reporting the number of removed keys, which makes the
// removal a single atomic step across concurrent consumers.
func (r *RedisRepository) Delete(ctx context.Context, token string) error {
	n, err := r.redis.Del(ctx, r.key(token)).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
