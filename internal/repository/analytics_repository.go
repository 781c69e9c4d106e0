package repository

import (
	"context"
	"quiz_engine_backend/internal/model"
	"strings"
)

// AnalyticsRepository 四个粒度的聚合行。每次修改都是锁内的
// 读-改-写循环，行缺失时以零值默认行起步。
type AnalyticsRepository struct {
	Store KVStore
	Locks *KeyMutex
}

func NewAnalyticsRepository(store KVStore, locks *KeyMutex) *AnalyticsRepository {
	return &AnalyticsRepository{Store: store, Locks: locks}
}

func (r *AnalyticsRepository) GetSubject(ctx context.Context, userID uint, subjectID string) (*model.SubjectAnalytics, error) {
	row := &model.SubjectAnalytics{SubjectID: subjectID}
	if _, err := getJSON(ctx, r.Store, SubjectAnalyticsKey(userID, subjectID), row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *AnalyticsRepository) MutateSubject(ctx context.Context, userID uint, subjectID string, fn func(*model.SubjectAnalytics)) (*model.SubjectAnalytics, error) {
	key := SubjectAnalyticsKey(userID, subjectID)
	unlock := r.Locks.Lock(key)
	defer unlock()

	row := &model.SubjectAnalytics{SubjectID: subjectID}
	if _, err := getJSON(ctx, r.Store, key, row); err != nil {
		return nil, err
	}
	fn(row)
	if err := setJSON(ctx, r.Store, key, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *AnalyticsRepository) GetTopic(ctx context.Context, userID uint, topicID string) (*model.TopicAnalytics, error) {
	row := &model.TopicAnalytics{TopicID: topicID}
	if _, err := getJSON(ctx, r.Store, TopicAnalyticsKey(userID, topicID), row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *AnalyticsRepository) MutateTopic(ctx context.Context, userID uint, topicID string, fn func(*model.TopicAnalytics)) (*model.TopicAnalytics, error) {
	key := TopicAnalyticsKey(userID, topicID)
	unlock := r.Locks.Lock(key)
	defer unlock()

	row := &model.TopicAnalytics{TopicID: topicID}
	if _, err := getJSON(ctx, r.Store, key, row); err != nil {
		return nil, err
	}
	fn(row)
	if err := setJSON(ctx, r.Store, key, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *AnalyticsRepository) GetQuestion(ctx context.Context, userID uint, questionID string) (*model.QuestionAnalytics, error) {
	row := &model.QuestionAnalytics{QuestionID: questionID, DifficultyRating: 3}
	if _, err := getJSON(ctx, r.Store, QuestionAnalyticsKey(userID, questionID), row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *AnalyticsRepository) MutateQuestion(ctx context.Context, userID uint, questionID string, fn func(*model.QuestionAnalytics)) (*model.QuestionAnalytics, error) {
	key := QuestionAnalyticsKey(userID, questionID)
	unlock := r.Locks.Lock(key)
	defer unlock()

	row := &model.QuestionAnalytics{QuestionID: questionID, DifficultyRating: 3}
	if _, err := getJSON(ctx, r.Store, key, row); err != nil {
		return nil, err
	}
	fn(row)
	if err := setJSON(ctx, r.Store, key, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *AnalyticsRepository) GetDaily(ctx context.Context, userID uint, date string) (*model.DailyStats, error) {
	row := &model.DailyStats{Date: date}
	if _, err := getJSON(ctx, r.Store, DailyStatsKey(userID, date), row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *AnalyticsRepository) MutateDaily(ctx context.Context, userID uint, date string, fn func(*model.DailyStats)) (*model.DailyStats, error) {
	key := DailyStatsKey(userID, date)
	unlock := r.Locks.Lock(key)
	defer unlock()

	row := &model.DailyStats{Date: date}
	if _, err := getJSON(ctx, r.Store, key, row); err != nil {
		return nil, err
	}
	fn(row)
	if err := setJSON(ctx, r.Store, key, row); err != nil {
		return nil, err
	}
	return row, nil
}

// MGetDaily 批量读取多日统计，缺失的日期补零值行
func (r *AnalyticsRepository) MGetDaily(ctx context.Context, userID uint, dates []string) ([]model.DailyStats, error) {
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = DailyStatsKey(userID, d)
	}

	raw, err := r.Store.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}

	out := make([]model.DailyStats, len(dates))
	for i, d := range dates {
		row := model.DailyStats{Date: d}
		if blob, ok := raw[keys[i]]; ok {
			if err := decodeJSON(blob, &row); err != nil {
				return nil, err
			}
		}
		out[i] = row
	}
	return out, nil
}

// ListQuestionAnalytics 该用户全部按题聚合行
func (r *AnalyticsRepository) ListQuestionAnalytics(ctx context.Context, userID uint) ([]model.QuestionAnalytics, error) {
	keys, err := r.Store.KeysByPrefix(ctx, userPrefix(userID)+"questionAnalytics:")
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	raw, err := r.Store.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}

	out := make([]model.QuestionAnalytics, 0, len(raw))
	for _, blob := range raw {
		var row model.QuestionAnalytics
		if err := decodeJSON(blob, &row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// ListSubjectIDs 出现过聚合行的学科 ID 列表
func (r *AnalyticsRepository) ListSubjectIDs(ctx context.Context, userID uint) ([]string, error) {
	prefix := userPrefix(userID) + "subjectAnalytics:"
	keys, err := r.Store.KeysByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	return ids, nil
}
