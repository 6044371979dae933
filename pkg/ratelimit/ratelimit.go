// Package ratelimit 基于 Redis 的分布式限流，采用 GCRA 算法
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// Limit 限流规则
type Limit struct {
	// 每个周期允许的请求数
	Rate int
	// 统计周期
	Period time.Duration
	// 突发容量
	Burst int
}

// Result 单次限流判定结果
type Result struct {
	// 是否放行
	Allowed bool
	// 当前周期剩余配额
	Remaining int
	// 配额完全恢复所需时间
	ResetAfter time.Duration
	// 被拒绝后建议的重试等待时间
	RetryAfter time.Duration
}

// RateLimiter 限流器接口
type RateLimiter interface {
	// Allow 判定 key 对应的一次请求是否放行
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

// RedisRateLimiter 基于 redis_rate 的限流器实现
type RedisRateLimiter struct {
	limiter *redis_rate.Limiter
}

// NewRedisRateLimiter 创建 Redis 限流器
func NewRedisRateLimiter(rdb *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{limiter: redis_rate.NewLimiter(rdb)}
}

// Allow 执行限流判定
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	res, err := r.limiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   limit.Rate,
		Period: limit.Period,
		Burst:  limit.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		ResetAfter: res.ResetAfter,
		RetryAfter: res.RetryAfter,
	}, nil
}
