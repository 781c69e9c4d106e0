package repository

import (
	"context"
	"errors"
	"quiz_engine_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MySQLKV gorm 实现的键值存储，用于没有 Redis 的部署
type MySQLKV struct {
	DB *gorm.DB
}

func NewMySQLKV(db *gorm.DB) *MySQLKV {
	return &MySQLKV{DB: db}
}

func (s *MySQLKV) Get(ctx context.Context, key string) (string, bool, error) {
	var entry model.KVEntry
	err := s.DB.WithContext(ctx).Where("k = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.V, true, nil
}

func (s *MySQLKV) Set(ctx context.Context, key, value string) error {
	entry := model.KVEntry{K: key, V: value}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v", "updated_at"}),
	}).Create(&entry).Error
}

func (s *MySQLKV) MGet(ctx context.Context, keys ...string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	var entries []model.KVEntry
	if err := s.DB.WithContext(ctx).Where("k IN ?", keys).Find(&entries).Error; err != nil {
		return nil, err
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.K] = e.V
	}
	return out, nil
}

func (s *MySQLKV) KeysByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.DB.WithContext(ctx).Model(&model.KVEntry{}).
		Where("k LIKE ?", prefix+"%").
		Pluck("k", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *MySQLKV) DeleteByPrefix(ctx context.Context, prefix string) error {
	return s.DB.WithContext(ctx).Where("k LIKE ?", prefix+"%").Delete(&model.KVEntry{}).Error
}
