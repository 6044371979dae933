// Package redis 基于 Redis 的会话存储
package redis

import (
	"context"
	"time"

	"github.com/wyfcoding/storefront/internal/users/domain"
	"github.com/wyfcoding/storefront/pkg/cache"
)

const sessionKeyPrefix = "session:"

// store 会话存储所需的缓存操作子集
type store interface {
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, expiration time.Duration) error
}

type sessionRepository struct {
	cache store
	ttl   time.Duration
}

// NewSessionRepository 创建会话存储，ttl 为会话存活时间
func NewSessionRepository(c *cache.RedisCache, ttl time.Duration) domain.SessionRepository {
	return &sessionRepository{cache: c, ttl: ttl}
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	return r.cache.SetJSON(ctx, sessionKeyPrefix+session.Token, session, r.ttl)
}

func (r *sessionRepository) Get(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session
	found, err := r.cache.GetJSON(ctx, sessionKeyPrefix+token, &session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrSessionNotFound
	}

	// 滑动续期：每次读取都重置存活时间，活跃会话不过期
	if err := r.cache.Expire(ctx, sessionKeyPrefix+token, r.ttl); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	return r.cache.Delete(ctx, sessionKeyPrefix+token)
}
