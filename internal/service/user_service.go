package service

import (
	"context"
	"time"

	"quiz_engine_backend/internal/model"
	"quiz_engine_backend/internal/repository"
	"quiz_engine_backend/internal/util"
	"quiz_engine_backend/pkg/logger"

	"go.uber.org/zap"
)

type UserService struct {
	UserRepo    *repository.UserRepository
	ProfileRepo *repository.ProfileRepository
	Streaks     *StreakService
}

func NewUserService(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository, streaks *StreakService) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		ProfileRepo: profileRepo,
		Streaks:     streaks,
	}
}

// GetProfile 返回用户档案。连击与周计数按当前时间惰性校正后
// 返回，校正只影响展示，不回写存储。
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*model.UserProfile, error) {
	p, err := s.ProfileRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	streak, err := s.Streaks.GetCurrentStreak(ctx, userID, now)
	if err != nil {
		logger.Log.Warn("读取连击失败", zap.Uint("userId", userID), zap.Error(err))
	} else {
		p.Stats.Streak = streak
	}
	if p.Stats.WeekOf != util.WeekLabel(now) {
		p.Stats.WeeklyQuizzes = 0
	}
	return p, nil
}

func (s *UserService) GetUser(userID uint) (*model.User, error) {
	return s.UserRepo.FindByID(userID)
}

// UpdateName 修改展示名称
func (s *UserService) UpdateName(userID uint, name string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SetAvatar(userID uint, url string) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return err
	}
	user.Avatar = url
	return s.UserRepo.Update(user)
}

// GetStreak 返回当前连击天数
func (s *UserService) GetStreak(ctx context.Context, userID uint) (int, error) {
	return s.Streaks.GetCurrentStreak(ctx, userID, time.Now().UTC())
}

// ResetStaleWeeklyCounters 把归属于过往 ISO 周的周计数清零。
// 由后台定时任务调用，提交路径上的惰性清零仍然是权威逻辑，
// 这里只是让不再提交的用户档案也能归零。
func (s *UserService) ResetStaleWeeklyCounters(ctx context.Context) {
	ids, err := s.UserRepo.ListIDs()
	if err != nil {
		logger.Log.Error("遍历用户失败", zap.Error(err))
		return
	}
	week := util.WeekLabel(time.Now().UTC())
	for _, id := range ids {
		_, err := s.ProfileRepo.Mutate(ctx, id, func(p *model.UserProfile) error {
			if p.Stats.WeekOf != week && p.Stats.WeeklyQuizzes != 0 {
				p.Stats.WeekOf = week
				p.Stats.WeeklyQuizzes = 0
			}
			return nil
		})
		if err != nil {
			logger.Log.Warn("周计数清零失败", zap.Uint("userId", id), zap.Error(err))
		}
	}
}
