package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// 保留期标识到天数的映射。indefinite-forever 表示永不清理。
const (
	RetentionSevenDays         = "7-days"
	RetentionThirtyDays        = "30-days"
	RetentionNinetyDays        = "90-days"
	RetentionIndefinite84      = "indefinite-84"
	RetentionIndefiniteForever = "indefinite-forever"
)

// RetentionDays 把保留期标识翻译成天数。
// 第二个返回值为 false 时表示永久保留，不应执行清理。
func RetentionDays(period string) (int, bool) {
	switch period {
	case RetentionSevenDays:
		return 7, true
	case RetentionThirtyDays:
		return 30, true
	case RetentionNinetyDays:
		return 90, true
	case RetentionIndefinite84:
		return 84, true
	case RetentionIndefiniteForever:
		return 0, false
	default:
		return 30, true
	}
}

// CleanupResult 汇总一次清理删除的行数。
type CleanupResult struct {
	Conversations int64
	Messages      int64
	MemoryLinks   int64
	Memories      int64
}

// Cleanup 删除 olderThan 之前未活跃的会话及其附属数据，
// 以及不再被任何会话引用的孤儿记忆。各表的清扫并发执行。
func (s *Store) Cleanup(ctx context.Context, olderThan time.Time) (CleanupResult, error) {
	var stale []string
	err := s.db.WithContext(ctx).
		Model(&Conversation{}).
		Where("updated_at < ?", olderThan).
		Pluck("id", &stale).Error
	if err != nil {
		return CleanupResult{}, fmt.Errorf("list stale conversations: %w", err)
	}

	var result CleanupResult
	if len(stale) > 0 {
		var msgCount, linkCount atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			res := s.db.WithContext(gctx).
				Where("conversation_id IN ?", stale).
				Delete(&ChatMessage{})
			msgCount.Store(res.RowsAffected)
			return res.Error
		})
		g.Go(func() error {
			res := s.db.WithContext(gctx).
				Where("conversation_id IN ?", stale).
				Delete(&InjectedMemory{})
			linkCount.Store(res.RowsAffected)
			return res.Error
		})
		if err := g.Wait(); err != nil {
			return result, fmt.Errorf("sweep conversation data: %w", err)
		}
		result.Messages = msgCount.Load()
		result.MemoryLinks = linkCount.Load()

		res := s.db.WithContext(ctx).Where("id IN ?", stale).Delete(&Conversation{})
		if res.Error != nil {
			return result, fmt.Errorf("delete stale conversations: %w", res.Error)
		}
		result.Conversations = res.RowsAffected
	}

	// 孤儿记忆：没有任何注入链接指向的记忆
	res := s.db.WithContext(ctx).
		Where("id NOT IN (?)", s.db.Model(&InjectedMemory{}).Select("memory_id")).
		Delete(&Memory{})
	if res.Error != nil && res.Error != gorm.ErrRecordNotFound {
		return result, fmt.Errorf("delete orphan memories: %w", res.Error)
	}
	result.Memories = res.RowsAffected

	s.logger.Info("store cleanup complete",
		zap.Time("older_than", olderThan),
		zap.Int64("conversations", result.Conversations),
		zap.Int64("messages", result.Messages),
		zap.Int64("memory_links", result.MemoryLinks),
		zap.Int64("memories", result.Memories))
	return result, nil
}

// CleanupByRetention 按保留期标识执行清理；永久保留时直接返回零值。
func (s *Store) CleanupByRetention(ctx context.Context, period string) (CleanupResult, error) {
	days, ok := RetentionDays(period)
	if !ok {
		return CleanupResult{}, nil
	}
	return s.Cleanup(ctx, time.Now().AddDate(0, 0, -days))
}
