package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"fairybook-api/internal/domain/entity"
	"fairybook-api/internal/domain/repository"
	apperrors "fairybook-api/pkg/errors"
	"fairybook-api/pkg/tracer"
)

const tokenMaxRetries = 8

// TokenRepository 额度以 JSON 存于单个键，WATCH/MULTI 保证同一用户的读-改-写原子
type TokenRepository struct {
	client *Client
}

func NewTokenRepository(client *Client) *TokenRepository {
	return &TokenRepository{client: client}
}

var _ repository.TokenRepository = (*TokenRepository)(nil)

func tokenKey(uid string) string {
	return redisKey("tokens", uid)
}

func (r *TokenRepository) Get(ctx context.Context, uid string) (*entity.GenerationTokenStatus, error) {
	ctx, span := tracer.Start(ctx, "tokens.Get")
	defer span.End()

	raw, err := r.client.rdb.Get(ctx, tokenKey(uid)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}
	return decodeStatus(uid, raw)
}

// Update 乐观事务；键在读取后被修改时重新执行 mutate
func (r *TokenRepository) Update(ctx context.Context, uid string, mutate repository.TokenMutation) (*entity.GenerationTokenStatus, error) {
	ctx, span := tracer.Start(ctx, "tokens.Update")
	defer span.End()

	key := tokenKey(uid)
	for attempt := 1; attempt <= tokenMaxRetries; attempt++ {
		var result *entity.GenerationTokenStatus
		err := r.client.rdb.Watch(ctx, func(tx *redis.Tx) error {
			var current *entity.GenerationTokenStatus
			raw, err := tx.Get(ctx, key).Bytes()
			switch {
			case err == redis.Nil:
			case err != nil:
				return err
			default:
				if current, err = decodeStatus(uid, raw); err != nil {
					return err
				}
			}

			next, err := mutate(current.Clone())
			if err != nil {
				return err
			}
			if next == nil {
				result = current
				return nil
			}

			next = next.Clone()
			next.UID = uid
			payload, err := json.Marshal(next)
			if err != nil {
				return err
			}
			if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, 0)
				return nil
			}); err != nil {
				return err
			}
			result = next
			return nil
		}, key)

		if err == nil {
			span.SetAttributes(attribute.Int("tokens.attempts", attempt))
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			tracer.RecordError(span, err)
			return nil, err
		}
	}
	return nil, apperrors.New(apperrors.CodeCacheError, "token update conflicted too many times")
}

func decodeStatus(uid string, raw []byte) (*entity.GenerationTokenStatus, error) {
	var st entity.GenerationTokenStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	st.UID = uid
	return &st, nil
}
