package model

import "time"

// UserStats 用户累计统计，只由引擎各阶段修改，整体持久化为一个 blob
// swagger:model UserStats
type UserStats struct {
	TotalQuizzes   int     `json:"totalQuizzes"`
	TotalQuestions int     `json:"totalQuestions"`
	CorrectAnswers int     `json:"correctAnswers"`
	TotalTimeHours float64 `json:"totalTimeHours"`
	// 各项准确率通过增量均值维护，分数只在结果处理器计算一次
	OverallAccuracy  float64 `json:"overallAccuracy"`
	PracticeQuizzes  int     `json:"practiceQuizzes"`
	PracticeAccuracy float64 `json:"practiceAccuracy"`
	TestQuizzes      int     `json:"testQuizzes"`
	TestAccuracy     float64 `json:"testAccuracy"`
	// Streak 以日为粒度的连续学习天数，由连击追踪器维护
	Streak int `json:"streak"`
	// WeeklyQuizzes 归属于 WeekOf 标注的 ISO 周，跨周后清零
	WeeklyQuizzes int    `json:"weeklyQuizzes"`
	WeekOf        string `json:"weekOf"`
	XP            int    `json:"xp"`
}

// UserAward 单个成就。解锁是单调的：一旦解锁不会回退，
// UnlockedAt 只在首次解锁时写入。
// swagger:model UserAward
type UserAward struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
	Progress    int        `json:"progress,omitempty"`
	MaxProgress int        `json:"maxProgress,omitempty"`
}

// UserProfile 用户档案单例，首次读取时以默认值惰性创建
// swagger:model UserProfile
type UserProfile struct {
	Stats         UserStats   `json:"stats"`
	Level         int         `json:"level"`
	LevelProgress int         `json:"levelProgress"`
	Awards        []UserAward `json:"awards"`
}

// NewUserProfile 默认档案
func NewUserProfile() *UserProfile {
	return &UserProfile{Level: 1}
}

// Award 按 ID 查找成就，未找到返回 nil
func (p *UserProfile) Award(id string) *UserAward {
	for i := range p.Awards {
		if p.Awards[i].ID == id {
			return &p.Awards[i]
		}
	}
	return nil
}
