package service

import (
	"context"
	"math"
	"quiz_engine_backend/internal/model"
	"quiz_engine_backend/internal/repository"
	"quiz_engine_backend/internal/util"
	"sort"
	"time"
)

// AnalyticsService 增量统计引擎，维护学科/知识点/题目/日 四个粒度的聚合行
type AnalyticsService struct {
	AnalyticsRepo *repository.AnalyticsRepository
	HistoryRepo   *repository.HistoryRepository
}

func NewAnalyticsService(analyticsRepo *repository.AnalyticsRepository, historyRepo *repository.HistoryRepository) *AnalyticsService {
	return &AnalyticsService{
		AnalyticsRepo: analyticsRepo,
		HistoryRepo:   historyRepo,
	}
}

// incrementalAvg 增量均值：n 为累加后的样本数
func incrementalAvg(oldAvg, n int, newValue float64) int {
	if n <= 0 {
		return 0
	}
	return int(math.Round((float64(oldAvg)*float64(n-1) + newValue) / float64(n)))
}

// difficultyRating 由累计正确率推导 1-5 难度，无作答时默认 3
func difficultyRating(correct, total int) int {
	if total == 0 {
		return 3
	}
	rate := float64(correct) / float64(total)
	rating := int(math.Round(5 - rate*4))
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	return rating
}

// UpdateSubject 把一次测验并入学科聚合行
func (s *AnalyticsService) UpdateSubject(ctx context.Context, userID uint, subjectID, title string, correct, total int, avgTimePerQuestionMs float64, mode model.QuizMode, score float64, at time.Time) error {
	_, err := s.AnalyticsRepo.MutateSubject(ctx, userID, subjectID, func(row *model.SubjectAnalytics) {
		row.SubjectTitle = title
		row.TotalQuizzes++
		n := row.TotalQuizzes
		row.TotalQuestions += total
		row.CorrectAnswers += correct
		row.AverageScore = incrementalAvg(row.AverageScore, n, score)
		row.AverageTimePerQuestionMs = incrementalAvg(row.AverageTimePerQuestionMs, n, avgTimePerQuestionMs)
		if mode == model.ModeTest {
			row.TestCount++
		} else {
			row.PracticeCount++
		}
		row.LastAttempted = at
	})
	return err
}

// UpdateTopic 把一次测验并入知识点聚合行
func (s *AnalyticsService) UpdateTopic(ctx context.Context, userID uint, topicID, title, subjectID string, correct, total int, avgTimePerQuestionMs float64, mode model.QuizMode, score float64, at time.Time) error {
	_, err := s.AnalyticsRepo.MutateTopic(ctx, userID, topicID, func(row *model.TopicAnalytics) {
		row.TopicTitle = title
		row.SubjectID = subjectID
		row.TotalQuizzes++
		n := row.TotalQuizzes
		row.TotalQuestions += total
		row.CorrectAnswers += correct
		row.AverageScore = incrementalAvg(row.AverageScore, n, score)
		row.AverageTimePerQuestionMs = incrementalAvg(row.AverageTimePerQuestionMs, n, avgTimePerQuestionMs)
		if mode == model.ModeTest {
			row.TestCount++
		} else {
			row.PracticeCount++
		}
		row.LastAttempted = at
	})
	return err
}

// UpdateQuestions 按题更新聚合行，每道题一次读-改-写
func (s *AnalyticsService) UpdateQuestions(ctx context.Context, userID uint, attempts []model.QuestionAttempt, subjectID, topicID string, at time.Time) error {
	for _, attempt := range attempts {
		_, err := s.AnalyticsRepo.MutateQuestion(ctx, userID, attempt.QuestionID, func(row *model.QuestionAnalytics) {
			row.SubjectID = subjectID
			row.TopicID = topicID
			row.TotalAttempts++
			if attempt.Correct() {
				row.CorrectAttempts++
			}
			row.AverageTimeMs = incrementalAvg(row.AverageTimeMs, row.TotalAttempts, float64(attempt.TimeSpentMs))
			row.DifficultyRating = difficultyRating(row.CorrectAttempts, row.TotalAttempts)
			row.LastAttempted = at
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateDaily 并入当日汇总，首个测验创建当日行
func (s *AnalyticsService) UpdateDaily(ctx context.Context, userID uint, date string, quizzes, questions, correct int, timeMs int64, subjectID string) error {
	_, err := s.AnalyticsRepo.MutateDaily(ctx, userID, date, func(row *model.DailyStats) {
		row.TotalQuizzes += quizzes
		row.TotalQuestions += questions
		row.CorrectAnswers += correct
		row.TotalTimeMs += timeMs
		row.AddSubject(subjectID)
	})
	return err
}

func (s *AnalyticsService) GetSubjectAnalytics(ctx context.Context, userID uint, subjectID string) (*model.SubjectAnalytics, error) {
	return s.AnalyticsRepo.GetSubject(ctx, userID, subjectID)
}

func (s *AnalyticsService) GetTopicAnalytics(ctx context.Context, userID uint, topicID string) (*model.TopicAnalytics, error) {
	return s.AnalyticsRepo.GetTopic(ctx, userID, topicID)
}

func (s *AnalyticsService) GetQuestionAnalytics(ctx context.Context, userID uint, questionID string) (*model.QuestionAnalytics, error) {
	return s.AnalyticsRepo.GetQuestion(ctx, userID, questionID)
}

func (s *AnalyticsService) GetDailyStats(ctx context.Context, userID uint, date string) (*model.DailyStats, error) {
	return s.AnalyticsRepo.GetDaily(ctx, userID, date)
}

func (s *AnalyticsService) GetQuizHistory(ctx context.Context, userID uint) ([]model.ProcessedQuizResult, error) {
	return s.HistoryRepo.List(ctx, userID)
}

// GetWeeklyStats 最近 7 天的日统计，缺少的日期补零值行
func (s *AnalyticsService) GetWeeklyStats(ctx context.Context, userID uint, now time.Time) (*model.WeeklyStats, error) {
	dates := make([]string, 7)
	for i := 0; i < 7; i++ {
		dates[i] = util.DateUTC(now.AddDate(0, 0, -(6 - i)))
	}

	days, err := s.AnalyticsRepo.MGetDaily(ctx, userID, dates)
	if err != nil {
		return nil, err
	}

	weekly := &model.WeeklyStats{Days: days}
	for _, d := range days {
		weekly.TotalQuizzes += d.TotalQuizzes
		weekly.TotalQuestions += d.TotalQuestions
		weekly.CorrectAnswers += d.CorrectAnswers
		weekly.TotalTimeMs += d.TotalTimeMs
	}
	return weekly, nil
}

// GetMostDifficultQuestions 按难度评分降序（同分时按正确率升序）返回答过的题目
func (s *AnalyticsService) GetMostDifficultQuestions(ctx context.Context, userID uint, limit int) ([]model.QuestionAnalytics, error) {
	rows, err := s.AnalyticsRepo.ListQuestionAnalytics(ctx, userID)
	if err != nil {
		return nil, err
	}

	attempted := rows[:0]
	for _, row := range rows {
		if row.TotalAttempts > 0 {
			attempted = append(attempted, row)
		}
	}

	sort.Slice(attempted, func(i, j int) bool {
		if attempted[i].DifficultyRating != attempted[j].DifficultyRating {
			return attempted[i].DifficultyRating > attempted[j].DifficultyRating
		}
		return attempted[i].SuccessRate() < attempted[j].SuccessRate()
	})

	if limit > 0 && len(attempted) > limit {
		attempted = attempted[:limit]
	}
	return attempted, nil
}

// GetMostImprovedTopics 按知识点比较近半段与前半段的平均分差。
// 至少 4 次记录的知识点才参与排序。
func (s *AnalyticsService) GetMostImprovedTopics(ctx context.Context, userID uint, limit int) ([]model.TopicImprovement, error) {
	history, err := s.HistoryRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	type topicScores struct {
		title  string
		scores []float64 // 按时间从旧到新
	}
	byTopic := make(map[string]*topicScores)

	// 历史最新在前，倒序遍历得到时间正序
	for i := len(history) - 1; i >= 0; i-- {
		r := history[i]
		if r.TopicID == "" {
			continue
		}
		ts, ok := byTopic[r.TopicID]
		if !ok {
			ts = &topicScores{}
			byTopic[r.TopicID] = ts
		}
		ts.title = r.TopicTitle
		ts.scores = append(ts.scores, r.Score)
	}

	var improvements []model.TopicImprovement
	for topicID, ts := range byTopic {
		if len(ts.scores) < 4 {
			continue
		}
		half := len(ts.scores) / 2
		earlier := mean(ts.scores[:half])
		recent := mean(ts.scores[half:])
		improvements = append(improvements, model.TopicImprovement{
			TopicID:     topicID,
			TopicTitle:  ts.title,
			Attempts:    len(ts.scores),
			Improvement: recent - earlier,
		})
	}

	sort.Slice(improvements, func(i, j int) bool {
		return improvements[i].Improvement > improvements[j].Improvement
	})

	if limit > 0 && len(improvements) > limit {
		improvements = improvements[:limit]
	}
	return improvements, nil
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
