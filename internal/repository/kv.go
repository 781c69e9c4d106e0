package repository

import (
	"context"
	"fmt"
)

// KVStore 测验引擎状态的持久化存储。值为字符串（JSON blob），
// 不提供事务，跨键一致性由上层流水线保证。
type KVStore interface {
	// Get 返回键对应的值；键不存在时 ok 为 false 且不报错
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// MGet 批量读取，缺失的键不出现在结果中
	MGet(ctx context.Context, keys ...string) (map[string]string, error)
	KeysByPrefix(ctx context.Context, prefix string) ([]string, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// 持久化键布局。所有引擎状态按用户前缀隔离，
// 与移动端的本地存储键一一对应。
func userPrefix(userID uint) string {
	return fmt.Sprintf("u:%d:", userID)
}

func HistoryKey(userID uint) string {
	return userPrefix(userID) + "history"
}

func SubjectAnalyticsKey(userID uint, subjectID string) string {
	return userPrefix(userID) + "subjectAnalytics:" + subjectID
}

func TopicAnalyticsKey(userID uint, topicID string) string {
	return userPrefix(userID) + "topicAnalytics:" + topicID
}

func QuestionAnalyticsKey(userID uint, questionID string) string {
	return userPrefix(userID) + "questionAnalytics:" + questionID
}

func DailyStatsKey(userID uint, date string) string {
	return userPrefix(userID) + "dailyStats:" + date
}

func ProfileKey(userID uint) string {
	return userPrefix(userID) + "userProfile"
}

func StreakCountKey(userID uint) string {
	return userPrefix(userID) + "streakCount"
}

func LastQuizDateKey(userID uint) string {
	return userPrefix(userID) + "lastQuizDate"
}
