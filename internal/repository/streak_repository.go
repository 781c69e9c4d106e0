package repository

import (
	"context"
	"strconv"
)

// StreakRepository 连击追踪器的两个标量：最近一次测验日期
// 与当前连续天数。两个键在同一把锁下更新。
type StreakRepository struct {
	Store KVStore
	Locks *KeyMutex
}

func NewStreakRepository(store KVStore, locks *KeyMutex) *StreakRepository {
	return &StreakRepository{Store: store, Locks: locks}
}

// Read 返回 (最近测验日期 yyyy-mm-dd, 连续天数)。从未记录时日期为空串。
func (r *StreakRepository) Read(ctx context.Context, userID uint) (string, int, error) {
	raw, err := r.Store.MGet(ctx, LastQuizDateKey(userID), StreakCountKey(userID))
	if err != nil {
		return "", 0, err
	}

	lastDate := raw[LastQuizDateKey(userID)]
	count := 0
	if c, ok := raw[StreakCountKey(userID)]; ok {
		count, _ = strconv.Atoi(c)
	}
	return lastDate, count, nil
}

// Mutate 在锁内应用状态转移并持久化新状态，返回新的连续天数
func (r *StreakRepository) Mutate(ctx context.Context, userID uint, fn func(lastDate string, count int) (string, int)) (int, error) {
	unlock := r.Locks.Lock(StreakCountKey(userID))
	defer unlock()

	lastDate, count, err := r.Read(ctx, userID)
	if err != nil {
		return 0, err
	}

	newDate, newCount := fn(lastDate, count)

	if err := r.Store.Set(ctx, LastQuizDateKey(userID), newDate); err != nil {
		return 0, err
	}
	if err := r.Store.Set(ctx, StreakCountKey(userID), strconv.Itoa(newCount)); err != nil {
		return 0, err
	}
	return newCount, nil
}
