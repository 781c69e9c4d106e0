package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"quiz_engine_backend/internal/model"
)

func strPtr(s string) *string { return &s }

func TestIncrementalAvgMatchesRunningMean(t *testing.T) {
	// 逐个并入与一次性求均值（各步四舍五入）结果一致
	avg := 0
	values := []float64{80, 60, 100, 40, 90}
	for i, v := range values {
		avg = incrementalAvg(avg, i+1, v)
	}
	// (80+60)/2=70, (140+100)/3=round(80)=80, (240+40)/4=70, (280+90)/5=74
	if avg != 74 {
		t.Errorf("running avg = %d, want 74", avg)
	}
}

func TestDifficultyRating(t *testing.T) {
	tests := []struct {
		correct, total int
		want           int
	}{
		{0, 0, 3},   // 无作答默认
		{10, 10, 1}, // 全对 -> 最低难度
		{0, 10, 5},  // 全错 -> 最高难度
		{5, 10, 3},
		{3, 4, 2},
	}
	for _, tt := range tests {
		if got := difficultyRating(tt.correct, tt.total); got != tt.want {
			t.Errorf("difficultyRating(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestUpdateSubjectAccumulates(t *testing.T) {
	repos := newTestRepos()
	svc := NewAnalyticsService(repos.analytics, repos.history)
	ctx := context.Background()
	const userID = 1
	at := day("2026-03-01")

	if err := svc.UpdateSubject(ctx, userID, "math", "数学", 8, 10, 6000, model.ModePractice, 80, at); err != nil {
		t.Fatalf("UpdateSubject: %v", err)
	}
	if err := svc.UpdateSubject(ctx, userID, "math", "数学", 6, 10, 8000, model.ModeTest, 60, at.Add(time.Hour)); err != nil {
		t.Fatalf("UpdateSubject: %v", err)
	}

	row, err := svc.GetSubjectAnalytics(ctx, userID, "math")
	if err != nil {
		t.Fatalf("GetSubjectAnalytics: %v", err)
	}
	if row.TotalQuizzes != 2 || row.TotalQuestions != 20 || row.CorrectAnswers != 14 {
		t.Errorf("totals = %d/%d/%d, want 2/20/14", row.TotalQuizzes, row.TotalQuestions, row.CorrectAnswers)
	}
	if row.AverageScore != 70 {
		t.Errorf("avg score = %d, want 70", row.AverageScore)
	}
	if row.AverageTimePerQuestionMs != 7000 {
		t.Errorf("avg time = %d, want 7000", row.AverageTimePerQuestionMs)
	}
	if row.PracticeCount != 1 || row.TestCount != 1 {
		t.Errorf("mode counts = %d/%d, want 1/1", row.PracticeCount, row.TestCount)
	}
}

func TestGetSubjectAnalyticsZeroDefault(t *testing.T) {
	repos := newTestRepos()
	svc := NewAnalyticsService(repos.analytics, repos.history)

	row, err := svc.GetSubjectAnalytics(context.Background(), 1, "never-studied")
	if err != nil {
		t.Fatalf("GetSubjectAnalytics: %v", err)
	}
	if row.TotalQuizzes != 0 || row.AverageScore != 0 {
		t.Errorf("expected zero-value row, got %+v", row)
	}
}

func TestUpdateQuestionsDerivesDifficulty(t *testing.T) {
	repos := newTestRepos()
	svc := NewAnalyticsService(repos.analytics, repos.history)
	ctx := context.Background()
	const userID = 1
	at := day("2026-03-01")

	attempts := []model.QuestionAttempt{
		{QuestionID: "q1", SelectedOptionID: strPtr("a"), CorrectOptionID: "a", TimeSpentMs: 4000},
		{QuestionID: "q2", SelectedOptionID: strPtr("b"), CorrectOptionID: "c", TimeSpentMs: 9000},
		{QuestionID: "q3", IsSkipped: true, CorrectOptionID: "a"},
	}
	if err := svc.UpdateQuestions(ctx, userID, attempts, "math", "algebra", at); err != nil {
		t.Fatalf("UpdateQuestions: %v", err)
	}

	q1, _ := svc.GetQuestionAnalytics(ctx, userID, "q1")
	if q1.TotalAttempts != 1 || q1.CorrectAttempts != 1 {
		t.Errorf("q1 attempts = %d/%d, want 1/1", q1.TotalAttempts, q1.CorrectAttempts)
	}
	if q1.DifficultyRating != 1 {
		t.Errorf("q1 rating = %d, want 1", q1.DifficultyRating)
	}

	q2, _ := svc.GetQuestionAnalytics(ctx, userID, "q2")
	if q2.CorrectAttempts != 0 || q2.DifficultyRating != 5 {
		t.Errorf("q2 = correct %d rating %d, want 0/5", q2.CorrectAttempts, q2.DifficultyRating)
	}

	// 跳过的题也计一次作答
	q3, _ := svc.GetQuestionAnalytics(ctx, userID, "q3")
	if q3.TotalAttempts != 1 || q3.CorrectAttempts != 0 {
		t.Errorf("q3 attempts = %d/%d, want 1/0", q3.TotalAttempts, q3.CorrectAttempts)
	}

	// 未作答的题保持默认难度
	unseen, _ := svc.GetQuestionAnalytics(ctx, userID, "q99")
	if unseen.DifficultyRating != 3 {
		t.Errorf("unseen rating = %d, want 3", unseen.DifficultyRating)
	}
}

func TestGetWeeklyStatsZeroFills(t *testing.T) {
	repos := newTestRepos()
	svc := NewAnalyticsService(repos.analytics, repos.history)
	ctx := context.Background()
	const userID = 1
	now := day("2026-03-07")

	// 只有两天有记录
	svc.UpdateDaily(ctx, userID, "2026-03-05", 1, 10, 8, 60000, "math")
	svc.UpdateDaily(ctx, userID, "2026-03-07", 2, 20, 15, 120000, "physics")

	weekly, err := svc.GetWeeklyStats(ctx, userID, now)
	if err != nil {
		t.Fatalf("GetWeeklyStats: %v", err)
	}
	if len(weekly.Days) != 7 {
		t.Fatalf("days = %d, want 7", len(weekly.Days))
	}
	if weekly.Days[0].Date != "2026-03-01" || weekly.Days[6].Date != "2026-03-07" {
		t.Errorf("date range = %s..%s, want 2026-03-01..2026-03-07", weekly.Days[0].Date, weekly.Days[6].Date)
	}
	if weekly.Days[0].TotalQuizzes != 0 {
		t.Errorf("missing day should be zero, got %d", weekly.Days[0].TotalQuizzes)
	}
	if weekly.TotalQuizzes != 3 || weekly.TotalQuestions != 30 || weekly.CorrectAnswers != 23 {
		t.Errorf("totals = %d/%d/%d, want 3/30/23", weekly.TotalQuizzes, weekly.TotalQuestions, weekly.CorrectAnswers)
	}
}

func TestGetMostImprovedTopics(t *testing.T) {
	repos := newTestRepos()
	svc := NewAnalyticsService(repos.analytics, repos.history)
	ctx := context.Background()
	const userID = 1

	// 按时间顺序追加：早期低分，近期高分
	scores := []float64{40, 50, 80, 90}
	for i, score := range scores {
		repos.history.Append(ctx, userID, model.ProcessedQuizResult{
			ID: "r" + string(rune('0'+i)), SubjectID: "math", TopicID: "algebra", TopicTitle: "代数",
			Score: score, CreatedAt: day("2026-03-01").AddDate(0, 0, i),
		})
	}
	// 少于 4 次的知识点不参与
	repos.history.Append(ctx, userID, model.ProcessedQuizResult{
		ID: "r9", SubjectID: "math", TopicID: "geometry", Score: 100,
	})

	improved, err := svc.GetMostImprovedTopics(ctx, userID, 5)
	if err != nil {
		t.Fatalf("GetMostImprovedTopics: %v", err)
	}
	if len(improved) != 1 {
		t.Fatalf("topics = %d, want 1", len(improved))
	}
	top := improved[0]
	if top.TopicID != "algebra" || top.Attempts != 4 {
		t.Errorf("top = %+v, want algebra with 4 attempts", top)
	}
	// 近半 (80+90)/2 - 前半 (40+50)/2 = 40
	if top.Improvement != 40 {
		t.Errorf("improvement = %f, want 40", top.Improvement)
	}
}

func TestConcurrentSubjectUpdatesDoNotLoseIncrements(t *testing.T) {
	repos := newTestRepos()
	svc := NewAnalyticsService(repos.analytics, repos.history)
	ctx := context.Background()
	const userID = 1
	const workers = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.UpdateSubject(ctx, userID, "math", "数学", 5, 10, 5000, model.ModePractice, 50, time.Now()); err != nil {
				t.Errorf("UpdateSubject: %v", err)
			}
		}()
	}
	wg.Wait()

	row, err := svc.GetSubjectAnalytics(ctx, userID, "math")
	if err != nil {
		t.Fatalf("GetSubjectAnalytics: %v", err)
	}
	if row.TotalQuizzes != workers {
		t.Errorf("quizzes = %d, want %d", row.TotalQuizzes, workers)
	}
	if row.TotalQuestions != workers*10 {
		t.Errorf("questions = %d, want %d", row.TotalQuestions, workers*10)
	}
}
