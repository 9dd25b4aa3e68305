package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/lending/internal/domain/book"
	apperrors "github.com/xiebiao/lending/pkg/errors"
)

// AvailabilityCache 图书可借情况缓存（Cache-Aside）
// 设计说明：
// 1. Key设计：lending:availability:{book_id}，值为JSON
// 2. 只缓存读结果；借出、归还提交之后删除对应Key，下次读取时回源
// 3. 缓存不是数据来源，任何缓存错误都不影响借还本身
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache 创建可借情况缓存
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AvailabilityCache{client: client, ttl: ttl}
}

func availabilityKey(bookID uint) string {
	return fmt.Sprintf("lending:availability:%d", bookID)
}

// Get 读取缓存，未命中时返回(nil, false, nil)
func (c *AvailabilityCache) Get(ctx context.Context, bookID uint) (*book.Availability, bool, error) {
	data, err := c.client.Get(ctx, availabilityKey(bookID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.ErrRedisError.WithErr(err)
	}

	var a book.Availability
	if err := json.Unmarshal(data, &a); err != nil {
		// 脏数据直接当作未命中
		return nil, false, nil
	}
	return &a, true, nil
}

// Set 写入缓存
func (c *AvailabilityCache) Set(ctx context.Context, a *book.Availability) error {
	data, err := json.Marshal(a)
	if err != nil {
		return apperrors.Wrap(err, "序列化可借情况失败")
	}
	if err := c.client.Set(ctx, availabilityKey(a.BookID), data, c.ttl).Err(); err != nil {
		return apperrors.ErrRedisError.WithErr(err)
	}
	return nil
}

// Invalidate 删除缓存（借还提交后调用）
func (c *AvailabilityCache) Invalidate(ctx context.Context, bookID uint) error {
	if err := c.client.Del(ctx, availabilityKey(bookID)).Err(); err != nil {
		return apperrors.ErrRedisError.WithErr(err)
	}
	return nil
}
