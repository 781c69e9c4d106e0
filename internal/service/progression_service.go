package service

import (
	"context"
	"math"
	"quiz_engine_backend/internal/model"
	"quiz_engine_backend/internal/repository"
	"quiz_engine_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// xpPerLevel 每 100 XP 升一级
const xpPerLevel = 100

// XPMirror 将档案中的 XP 同步到关系库，供排行榜查询
type XPMirror interface {
	SetXP(userID uint, xp int) error
}

// ProgressionService 经验值与等级引擎。
// 这是唯一计算和累加 XP 的地方，其他组件不得自行加 XP。
type ProgressionService struct {
	ProfileRepo *repository.ProfileRepository
	Streaks     *StreakService
	Mirror      XPMirror
}

func NewProgressionService(profileRepo *repository.ProfileRepository, streaks *StreakService, mirror XPMirror) *ProgressionService {
	return &ProgressionService{
		ProfileRepo: profileRepo,
		Streaks:     streaks,
		Mirror:      mirror,
	}
}

// ComputeXP 纯函数形式的 XP 公式，按固定顺序应用：
// 基础分 -> 难度系数 -> 测验模式系数 -> 满分奖励 -> 速度奖励 -> 连击系数 -> 四舍五入
func ComputeXP(correct, total int, timeSpentSec float64, mode model.QuizMode, difficulty model.Difficulty, streak int) int {
	xp := float64(correct * 10)

	switch difficulty {
	case model.DifficultyEasy:
		xp *= 0.8
	case model.DifficultyHard:
		xp *= 1.5
	}

	if mode == model.ModeTest {
		xp *= 1.2
	}

	if total > 0 && correct == total {
		xp += 20
	}

	if total > 0 && correct > 0 && timeSpentSec/float64(total) < 15 {
		xp += 5
	}

	if streak > 3 {
		multiplier := 1 + float64(streak-3)*0.1
		if multiplier > 2.0 {
			multiplier = 2.0
		}
		xp *= multiplier
	}

	return int(math.Round(xp))
}

// LevelForXP 等级与级内进度
func LevelForXP(xp int) (level, progress int) {
	return xp/xpPerLevel + 1, xp % xpPerLevel
}

// UpdateUserXP 结算一次测验的经验值并重算等级
func (s *ProgressionService) UpdateUserXP(ctx context.Context, userID uint, correct, total int, timeSpentSec float64, mode model.QuizMode, difficulty model.Difficulty) (*model.XPUpdate, error) {
	streak, err := s.Streaks.GetCurrentStreak(ctx, userID, time.Now())
	if err != nil {
		// 连击读取失败按 0 处理，不阻塞 XP 结算
		logger.Log.Warn("read streak for xp failed", zap.Uint("userId", userID), zap.Error(err))
		streak = 0
	}

	gained := ComputeXP(correct, total, timeSpentSec, mode, difficulty, streak)

	var update model.XPUpdate
	_, err = s.ProfileRepo.Mutate(ctx, userID, func(p *model.UserProfile) error {
		oldXP := p.Stats.XP
		oldLevel, _ := LevelForXP(oldXP)

		newXP := oldXP + gained
		newLevel, progress := LevelForXP(newXP)

		p.Stats.XP = newXP
		p.Level = newLevel
		p.LevelProgress = progress

		update = model.XPUpdate{
			OldXP:     oldXP,
			NewXP:     newXP,
			XPGained:  gained,
			OldLevel:  oldLevel,
			NewLevel:  newLevel,
			LeveledUp: newLevel > oldLevel,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Mirror != nil {
		if err := s.Mirror.SetXP(userID, update.NewXP); err != nil {
			logger.Log.Warn("mirror xp to users table failed", zap.Uint("userId", userID), zap.Error(err))
		}
	}

	return &update, nil
}
