package retry

import (
	"context"
	"time"
)

// Policy 重试策略
type Policy struct {
	MaxAttempts int                             // 总尝试次数，含第一次
	Backoff     func(attempt int) time.Duration // 第 attempt 次失败后的等待时间
	Retryable   func(err error) bool            // 为空时所有错误都重试
	OnRetry     func(attempt int, err error)    // 可选，用于记录日志
}

// Linear 线性退避 delay*attempt
func Linear(delay time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return delay * time.Duration(attempt)
	}
}

// Exponential 指数退避，max 为上限
func Exponential(base, max time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt; i++ {
			d *= 2
			if d >= max {
				return max
			}
		}
		if d > max {
			return max
		}
		return d
	}
}

// Do 按策略执行 fn，耗尽后返回最后一次的错误
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context, attempt int) (struct{}, error) {
		return struct{}{}, fn(ctx, attempt)
	})
	return err
}

// DoValue 带返回值的 Do
func DoValue[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err = fn(ctx, attempt)
		if err == nil {
			return result, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return result, err
		}
		if attempt == attempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if err := sleep(ctx, wait); err != nil {
			return result, err
		}
	}
	return result, err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
