package service

import (
	"context"
	"quiz_engine_backend/internal/repository"
	"quiz_engine_backend/internal/util"
	"time"
)

// StreakService 连续学习天数追踪。日期按 UTC 自然日比较，
// 与一天 24 小时的间隔无关。
type StreakService struct {
	StreakRepo *repository.StreakRepository
}

func NewStreakService(streakRepo *repository.StreakRepository) *StreakService {
	return &StreakService{StreakRepo: streakRepo}
}

// UpdateStreak 记录一次测验提交并返回新的连续天数。
// 状态转移：首次 -> 1；同日 -> 不变；恰好次日 -> +1；更大间隔 -> 重置为 1。
func (s *StreakService) UpdateStreak(ctx context.Context, userID uint, at time.Time) (int, error) {
	today := util.DateUTC(at)

	return s.StreakRepo.Mutate(ctx, userID, func(lastDate string, count int) (string, int) {
		if lastDate == "" {
			return today, 1
		}

		switch daysBetween(lastDate, today) {
		case 0:
			return today, count
		case 1:
			return today, count + 1
		default:
			return today, 1
		}
	})
}

// GetCurrentStreak 只读视图。距最近一次测验超过一天时返回 0，
// 但不持久化该归零，存储值保留到下次写入。
func (s *StreakService) GetCurrentStreak(ctx context.Context, userID uint, now time.Time) (int, error) {
	lastDate, count, err := s.StreakRepo.Read(ctx, userID)
	if err != nil {
		return 0, err
	}
	if lastDate == "" {
		return 0, nil
	}
	if daysBetween(lastDate, util.DateUTC(now)) > 1 {
		return 0, nil
	}
	return count, nil
}

// daysBetween 两个 yyyy-mm-dd 日期相差的自然日数。
// 解析失败按足够大的间隔处理，使连击重置。
func daysBetween(from, to string) int {
	a, errA := time.ParseInLocation(util.DateFormat, from, time.UTC)
	b, errB := time.ParseInLocation(util.DateFormat, to, time.UTC)
	if errA != nil || errB != nil {
		return int(^uint(0) >> 1)
	}
	return int(b.Sub(a).Hours() / 24)
}
