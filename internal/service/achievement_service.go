package service

import (
	"context"

	"quiz_engine_backend/internal/model"
	"quiz_engine_backend/internal/repository"
	"quiz_engine_backend/internal/util"

	"go.uber.org/zap"
)

// AchievementService 成就引擎：在每次提交后评估全部成就规则。
// 规则相互独立，单条规则异常不影响其余规则。
type AchievementService struct {
	ProfileRepo   *repository.ProfileRepository
	AnalyticsRepo *repository.AnalyticsRepository
	UserRepo      *repository.UserRepository
	Streaks       *StreakService
	Logger        *zap.Logger
}

func NewAchievementService(profiles *repository.ProfileRepository, analytics *repository.AnalyticsRepository, users *repository.UserRepository, streaks *StreakService, logger *zap.Logger) *AchievementService {
	return &AchievementService{
		ProfileRepo:   profiles,
		AnalyticsRepo: analytics,
		UserRepo:      users,
		Streaks:       streaks,
		Logger:        logger,
	}
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	UserID uint   `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
}

// CheckAchievements 先推进连击，再对目录中的每条成就评估一次。
// 返回本次新解锁的成就，档案中缺失的目录条目会被补种。
// 已解锁状态不可逆，连击类进度允许随连击中断回落。
func (s *AchievementService) CheckAchievements(ctx context.Context, userID uint, facts AttemptFacts) ([]model.UserAward, error) {
	streak, err := s.Streaks.UpdateStreak(ctx, userID, facts.At)
	if err != nil {
		s.Logger.Warn("连击更新失败", zap.Uint("userId", userID), zap.Error(err))
		streak = 0
	}

	subjectIDs, err := s.AnalyticsRepo.ListSubjectIDs(ctx, userID)
	if err != nil {
		s.Logger.Warn("读取学科列表失败", zap.Uint("userId", userID), zap.Error(err))
	}

	todayQuizzes := 0
	if daily, err := s.AnalyticsRepo.GetDaily(ctx, userID, util.DateUTC(facts.At)); err != nil {
		s.Logger.Warn("读取当日统计失败", zap.Uint("userId", userID), zap.Error(err))
	} else {
		todayQuizzes = daily.TotalQuizzes
	}

	var unlocked []model.UserAward
	_, err = s.ProfileRepo.Mutate(ctx, userID, func(p *model.UserProfile) error {
		p.Stats.Streak = streak
		ec := &evalContext{
			Stats:        p.Stats,
			Level:        p.Level,
			Attempt:      facts,
			Streak:       streak,
			SubjectCount: len(subjectIDs),
			TodayQuizzes: todayQuizzes,
		}
		unlocked = evaluateAwards(p, ec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unlocked, nil
}

// evaluateAwards 按目录逐条更新档案中的成就，返回新解锁的条目
func evaluateAwards(p *model.UserProfile, ec *evalContext) []model.UserAward {
	var unlocked []model.UserAward
	for _, def := range awardCatalog() {
		award := p.Award(def.ID)
		if award == nil {
			p.Awards = append(p.Awards, model.UserAward{
				ID:          def.ID,
				Name:        def.Name,
				Description: def.Description,
				Icon:        def.Icon,
				MaxProgress: def.MaxProgress,
			})
			award = p.Award(def.ID)
		}

		switch def.Kind {
		case kindUnlock:
			if !award.Unlocked && def.Unlock(ec) {
				unlock(award, ec)
				unlocked = append(unlocked, *award)
			}
		case kindTrack:
			award.Progress = def.Track(ec)
			if award.Progress > def.MaxProgress {
				award.Progress = def.MaxProgress
			}
			if !award.Unlocked && award.Progress >= def.MaxProgress {
				unlock(award, ec)
				unlocked = append(unlocked, *award)
			}
		case kindCount:
			award.Progress += def.Count(ec)
			if award.Progress > def.MaxProgress {
				award.Progress = def.MaxProgress
			}
			if !award.Unlocked && award.Progress >= def.MaxProgress {
				unlock(award, ec)
				unlocked = append(unlocked, *award)
			}
		}
	}
	return unlocked
}

func unlock(award *model.UserAward, ec *evalContext) {
	award.Unlocked = true
	at := ec.Attempt.At
	award.UnlockedAt = &at
	if award.MaxProgress > 0 {
		award.Progress = award.MaxProgress
	}
}

// GetUserAchievements 返回用户的成就列表，缺失的目录条目以零进度补齐
func (s *AchievementService) GetUserAchievements(ctx context.Context, userID uint) ([]model.UserAward, error) {
	p, err := s.ProfileRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	awards := make([]model.UserAward, 0, len(awardCatalog()))
	for _, def := range awardCatalog() {
		if a := p.Award(def.ID); a != nil {
			awards = append(awards, *a)
			continue
		}
		awards = append(awards, model.UserAward{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			MaxProgress: def.MaxProgress,
		})
	}
	return awards, nil
}

// GetLeaderboard 按经验值取前 limit 名
func (s *AchievementService) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	users, err := s.UserRepo.FindTopByXP(limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		level, _ := LevelForXP(u.XP)
		entries = append(entries, LeaderboardEntry{
			UserID: u.ID,
			Name:   u.Name,
			Avatar: u.Avatar,
			XP:     u.XP,
			Level:  level,
		})
	}
	return entries, nil
}
