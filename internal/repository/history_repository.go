package repository

import (
	"context"
	"quiz_engine_backend/internal/model"
)

// HistoryRepository 测验历史列表，最新在前，只增不改
type HistoryRepository struct {
	Store KVStore
	Locks *KeyMutex
}

func NewHistoryRepository(store KVStore, locks *KeyMutex) *HistoryRepository {
	return &HistoryRepository{Store: store, Locks: locks}
}

// Append 将结果插入历史头部。已有条目不会被修改。
func (r *HistoryRepository) Append(ctx context.Context, userID uint, result model.ProcessedQuizResult) error {
	key := HistoryKey(userID)
	unlock := r.Locks.Lock(key)
	defer unlock()

	var history []model.ProcessedQuizResult
	if _, err := getJSON(ctx, r.Store, key, &history); err != nil {
		return err
	}

	history = append([]model.ProcessedQuizResult{result}, history...)
	return setJSON(ctx, r.Store, key, history)
}

func (r *HistoryRepository) List(ctx context.Context, userID uint) ([]model.ProcessedQuizResult, error) {
	var history []model.ProcessedQuizResult
	if _, err := getJSON(ctx, r.Store, HistoryKey(userID), &history); err != nil {
		return nil, err
	}
	if history == nil {
		history = []model.ProcessedQuizResult{}
	}
	return history, nil
}
