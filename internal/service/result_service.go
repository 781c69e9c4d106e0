package service

import (
	"context"
	"fmt"
	"time"

	"quiz_engine_backend/internal/model"
	"quiz_engine_backend/internal/repository"
	"quiz_engine_backend/internal/util"
	"quiz_engine_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fastAnswerMs 判定"闪答"的单题用时上限
const fastAnswerMs = 5000

// SubmitQuizRequest 提交一次完成测验的请求体
// swagger:model SubmitQuizRequest
type SubmitQuizRequest struct {
	SubjectID    string                  `json:"subjectId" binding:"required"`
	SubjectTitle string                  `json:"subjectTitle" binding:"required"`
	TopicID      string                  `json:"topicId"`
	TopicTitle   string                  `json:"topicTitle"`
	Mode         model.QuizMode          `json:"mode" binding:"required,oneof=practice test"`
	Difficulty   model.Difficulty        `json:"difficulty" binding:"required,oneof=easy medium hard"`
	DurationMs   int64                   `json:"durationMs" binding:"gte=0"`
	Attempts     []model.QuestionAttempt `json:"attempts"`
}

// SubmitQuizResponse 提交处理完成后的汇总结果
// swagger:model SubmitQuizResponse
type SubmitQuizResponse struct {
	Result          *model.ProcessedQuizResult `json:"result"`
	XP              *model.XPUpdate            `json:"xp,omitempty"`
	NewAchievements []model.UserAward          `json:"newAchievements"`
}

// ResultService 结果处理器：按固定顺序驱动历史、聚合、档案、
// 经验与成就各阶段。得分只在这里计算一次，后续阶段复用。
type ResultService struct {
	HistoryRepo  *repository.HistoryRepository
	ProfileRepo  *repository.ProfileRepository
	Analytics    *AnalyticsService
	Progression  *ProgressionService
	Achievements *AchievementService
	Bus          *EventBus
	Logger       *zap.Logger
}

func NewResultService(history *repository.HistoryRepository, profiles *repository.ProfileRepository, analytics *AnalyticsService, progression *ProgressionService, achievements *AchievementService, bus *EventBus, logger *zap.Logger) *ResultService {
	return &ResultService{
		HistoryRepo:  history,
		ProfileRepo:  profiles,
		Analytics:    analytics,
		Progression:  progression,
		Achievements: achievements,
		Bus:          bus,
		Logger:       logger,
	}
}

// Process 处理一次测验提交。历史写入失败是唯一的致命错误，
// 之后任何阶段失败都只记录并继续，保证响应总能给出测验结果。
func (s *ResultService) Process(ctx context.Context, userID uint, req *SubmitQuizRequest) (*SubmitQuizResponse, error) {
	if len(req.Attempts) == 0 {
		return nil, util.ErrEmptyAttempts
	}
	for _, a := range req.Attempts {
		if a.QuestionID == "" || a.CorrectOptionID == "" {
			return nil, util.ErrInvalidAttempt
		}
	}

	now := time.Now().UTC()
	total := len(req.Attempts)
	correct := 0
	fastCorrect := 0
	for _, a := range req.Attempts {
		if a.Correct() {
			correct++
			if a.TimeSpentMs > 0 && a.TimeSpentMs < fastAnswerMs {
				fastCorrect++
			}
		}
	}
	score := 100 * float64(correct) / float64(total)

	result := &model.ProcessedQuizResult{
		ID:             uuid.NewString(),
		SubjectID:      req.SubjectID,
		SubjectTitle:   req.SubjectTitle,
		TopicID:        req.TopicID,
		TopicTitle:     req.TopicTitle,
		Mode:           req.Mode,
		Difficulty:     req.Difficulty,
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: total,
		DurationMs:     req.DurationMs,
		Attempts:       req.Attempts,
		CreatedAt:      now,
	}

	if err := s.HistoryRepo.Append(ctx, userID, *result); err != nil {
		monitoring.PipelineStageFailures.WithLabelValues("history").Inc()
		return nil, fmt.Errorf("%w: %v", util.ErrHistoryWrite, err)
	}
	monitoring.QuizSubmissions.Inc()

	avgTimePerQuestionMs := float64(req.DurationMs) / float64(total)
	timeSpentSec := float64(req.DurationMs) / 1000

	s.stage(userID, "subject_analytics", func() error {
		return s.Analytics.UpdateSubject(ctx, userID, req.SubjectID, req.SubjectTitle, correct, total, avgTimePerQuestionMs, req.Mode, score, now)
	})
	if req.TopicID != "" {
		s.stage(userID, "topic_analytics", func() error {
			return s.Analytics.UpdateTopic(ctx, userID, req.TopicID, req.TopicTitle, req.SubjectID, correct, total, avgTimePerQuestionMs, req.Mode, score, now)
		})
	}
	s.stage(userID, "question_analytics", func() error {
		return s.Analytics.UpdateQuestions(ctx, userID, req.Attempts, req.SubjectID, req.TopicID, now)
	})
	s.stage(userID, "daily_stats", func() error {
		return s.Analytics.UpdateDaily(ctx, userID, util.DateUTC(now), 1, total, correct, req.DurationMs, req.SubjectID)
	})

	s.stage(userID, "user_stats", func() error {
		_, err := s.ProfileRepo.Mutate(ctx, userID, func(p *model.UserProfile) error {
			applyAttemptToStats(&p.Stats, req.Mode, correct, total, req.DurationMs, score, now)
			return nil
		})
		return err
	})

	var xp *model.XPUpdate
	s.stage(userID, "xp", func() error {
		var err error
		xp, err = s.Progression.UpdateUserXP(ctx, userID, correct, total, timeSpentSec, req.Mode, req.Difficulty)
		return err
	})
	if xp != nil {
		monitoring.XPGranted.Observe(float64(xp.XPGained))
	}

	newAwards := []model.UserAward{}
	s.stage(userID, "achievements", func() error {
		awards, err := s.Achievements.CheckAchievements(ctx, userID, AttemptFacts{
			Correct:      correct,
			Total:        total,
			TimeSpentSec: timeSpentSec,
			Mode:         req.Mode,
			Difficulty:   req.Difficulty,
			Score:        score,
			FastCorrect:  fastCorrect,
			At:           now,
		})
		if err != nil {
			return err
		}
		newAwards = awards
		return nil
	})

	s.Bus.Notify(userID)

	return &SubmitQuizResponse{
		Result:          result,
		XP:              xp,
		NewAchievements: newAwards,
	}, nil
}

// stage 执行一个非致命阶段，失败只记录日志并计数
func (s *ResultService) stage(userID uint, name string, fn func() error) {
	if err := fn(); err != nil {
		monitoring.PipelineStageFailures.WithLabelValues(name).Inc()
		s.Logger.Error("提交流水线阶段失败",
			zap.Uint("userId", userID),
			zap.String("stage", name),
			zap.Error(err))
	}
}

// applyAttemptToStats 把一次提交并入累计统计。准确率按增量均值
// 维护，周计数跨 ISO 周时先清零再累加。
func applyAttemptToStats(st *model.UserStats, mode model.QuizMode, correct, total int, durationMs int64, score float64, now time.Time) {
	st.TotalQuizzes++
	st.TotalQuestions += total
	st.CorrectAnswers += correct
	st.TotalTimeHours += float64(durationMs) / float64(time.Hour/time.Millisecond)
	st.OverallAccuracy += (score - st.OverallAccuracy) / float64(st.TotalQuizzes)

	switch mode {
	case model.ModePractice:
		st.PracticeQuizzes++
		st.PracticeAccuracy += (score - st.PracticeAccuracy) / float64(st.PracticeQuizzes)
	case model.ModeTest:
		st.TestQuizzes++
		st.TestAccuracy += (score - st.TestAccuracy) / float64(st.TestQuizzes)
	}

	week := util.WeekLabel(now)
	if st.WeekOf != week {
		st.WeekOf = week
		st.WeeklyQuizzes = 0
	}
	st.WeeklyQuizzes++
}
