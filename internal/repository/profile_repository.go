package repository

import (
	"context"
	"quiz_engine_backend/internal/model"
)

// ProfileRepository 用户档案 blob。档案在首次读取时以默认值创建，
// 所有修改都在档案键锁内完成。
type ProfileRepository struct {
	Store KVStore
	Locks *KeyMutex
}

func NewProfileRepository(store KVStore, locks *KeyMutex) *ProfileRepository {
	return &ProfileRepository{Store: store, Locks: locks}
}

func (r *ProfileRepository) Get(ctx context.Context, userID uint) (*model.UserProfile, error) {
	profile := model.NewUserProfile()
	if _, err := getJSON(ctx, r.Store, ProfileKey(userID), profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Mutate 在锁内读取、修改并写回档案。fn 返回错误时放弃写回。
func (r *ProfileRepository) Mutate(ctx context.Context, userID uint, fn func(*model.UserProfile) error) (*model.UserProfile, error) {
	key := ProfileKey(userID)
	unlock := r.Locks.Lock(key)
	defer unlock()

	profile := model.NewUserProfile()
	if _, err := getJSON(ctx, r.Store, key, profile); err != nil {
		return nil, err
	}

	if err := fn(profile); err != nil {
		return nil, err
	}

	if err := setJSON(ctx, r.Store, key, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
