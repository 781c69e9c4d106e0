package service

import (
	"context"
	"errors"
	"testing"

	"quiz_engine_backend/internal/model"
	"quiz_engine_backend/internal/util"

	"go.uber.org/zap"
)

func newResultService(repos *testRepos, mirror XPMirror, bus *EventBus) *ResultService {
	streaks := NewStreakService(repos.streak)
	analytics := NewAnalyticsService(repos.analytics, repos.history)
	progression := NewProgressionService(repos.profile, streaks, mirror)
	achievements := NewAchievementService(repos.profile, repos.analytics, nil, streaks, zap.NewNop())
	return NewResultService(repos.history, repos.profile, analytics, progression, achievements, bus, zap.NewNop())
}

func perfectSubmission() *SubmitQuizRequest {
	sel := func(s string) *string { return &s }
	return &SubmitQuizRequest{
		SubjectID:    "math",
		SubjectTitle: "数学",
		TopicID:      "algebra",
		TopicTitle:   "代数",
		Mode:         model.ModePractice,
		Difficulty:   model.DifficultyMedium,
		DurationMs:   60000,
		Attempts: []model.QuestionAttempt{
			{QuestionID: "q1", SelectedOptionID: sel("a"), CorrectOptionID: "a", TimeSpentMs: 12000},
			{QuestionID: "q2", SelectedOptionID: sel("b"), CorrectOptionID: "b", TimeSpentMs: 12000},
			{QuestionID: "q3", SelectedOptionID: sel("c"), CorrectOptionID: "c", TimeSpentMs: 12000},
			{QuestionID: "q4", SelectedOptionID: sel("d"), CorrectOptionID: "d", TimeSpentMs: 12000},
			{QuestionID: "q5", SelectedOptionID: sel("a"), CorrectOptionID: "a", TimeSpentMs: 12000},
		},
	}
}

func TestProcessRejectsInvalidSubmissions(t *testing.T) {
	repos := newTestRepos()
	svc := newResultService(repos, newFakeXPMirror(), NewEventBus())
	ctx := context.Background()

	_, err := svc.Process(ctx, 1, &SubmitQuizRequest{SubjectID: "math", SubjectTitle: "数学", Mode: model.ModePractice, Difficulty: model.DifficultyMedium})
	if !errors.Is(err, util.ErrEmptyAttempts) {
		t.Errorf("empty attempts err = %v, want ErrEmptyAttempts", err)
	}

	req := perfectSubmission()
	req.Attempts[2].QuestionID = ""
	_, err = svc.Process(ctx, 1, req)
	if !errors.Is(err, util.ErrInvalidAttempt) {
		t.Errorf("invalid attempt err = %v, want ErrInvalidAttempt", err)
	}

	// 被拒绝的提交不写历史
	history, _ := repos.history.List(ctx, 1)
	if len(history) != 0 {
		t.Errorf("history = %d entries after rejected submissions, want 0", len(history))
	}
}

func TestProcessFirstSubmissionEndToEnd(t *testing.T) {
	repos := newTestRepos()
	mirror := newFakeXPMirror()
	bus := NewEventBus()
	var notified []uint
	bus.Register(func(userID uint) { notified = append(notified, userID) })

	svc := newResultService(repos, mirror, bus)
	ctx := context.Background()
	const userID = 1

	resp, err := svc.Process(ctx, userID, perfectSubmission())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	// 结果：得分只算一次
	if resp.Result.Score != 100 || resp.Result.CorrectAnswers != 5 || resp.Result.TotalQuestions != 5 {
		t.Errorf("result = %+v, want 5/5 score 100", resp.Result)
	}
	if resp.Result.ID == "" {
		t.Error("result should carry a generated id")
	}

	// 历史追加一条
	history, _ := repos.history.List(ctx, userID)
	if len(history) != 1 {
		t.Fatalf("history = %d entries, want 1", len(history))
	}
	if history[0].ID != resp.Result.ID {
		t.Error("history head should be the processed result")
	}

	// XP：50 基础 + 20 满分 + 5 速度（12s/题），首次提交无连击倍率
	if resp.XP == nil || resp.XP.XPGained != 75 {
		t.Fatalf("xp = %+v, want gained 75", resp.XP)
	}
	if mirror.calls[userID] != 75 {
		t.Errorf("mirror xp = %d, want 75", mirror.calls[userID])
	}

	// 成就：首次测验与满分
	got := make(map[string]bool)
	for _, a := range resp.NewAchievements {
		got[a.ID] = true
	}
	if !got["first_quiz"] || !got["perfect_score"] {
		t.Errorf("new achievements = %v, want first_quiz and perfect_score", got)
	}

	// 累计统计
	p, _ := repos.profile.Get(ctx, userID)
	if p.Stats.TotalQuizzes != 1 || p.Stats.CorrectAnswers != 5 || p.Stats.OverallAccuracy != 100 {
		t.Errorf("stats = %+v, want 1 quiz, 5 correct, accuracy 100", p.Stats)
	}
	if p.Stats.Streak != 1 {
		t.Errorf("streak = %d, want 1", p.Stats.Streak)
	}
	if p.Stats.WeeklyQuizzes != 1 || p.Stats.WeekOf == "" {
		t.Errorf("weekly = %d (%q), want 1 with week label", p.Stats.WeeklyQuizzes, p.Stats.WeekOf)
	}

	// 聚合行
	subject, _ := repos.analytics.GetSubject(ctx, userID, "math")
	if subject.TotalQuizzes != 1 || subject.AverageScore != 100 {
		t.Errorf("subject = %+v, want 1 quiz avg 100", subject)
	}
	topic, _ := repos.analytics.GetTopic(ctx, userID, "algebra")
	if topic.TotalQuizzes != 1 || topic.SubjectID != "math" {
		t.Errorf("topic = %+v, want linked to math", topic)
	}

	// 事件总线在流水线末尾收到该用户
	if len(notified) != 1 || notified[0] != userID {
		t.Errorf("notified = %v, want [%d]", notified, userID)
	}
}

func TestProcessSecondQuizAccumulatesAccuracy(t *testing.T) {
	repos := newTestRepos()
	svc := newResultService(repos, newFakeXPMirror(), NewEventBus())
	ctx := context.Background()
	const userID = 1

	if _, err := svc.Process(ctx, userID, perfectSubmission()); err != nil {
		t.Fatalf("Process: %v", err)
	}

	// 第二次 3/5
	req := perfectSubmission()
	req.Attempts[0].IsSkipped = true
	req.Attempts[1].SelectedOptionID = nil
	if _, err := svc.Process(ctx, userID, req); err != nil {
		t.Fatalf("Process: %v", err)
	}

	p, _ := repos.profile.Get(ctx, userID)
	if p.Stats.TotalQuizzes != 2 || p.Stats.CorrectAnswers != 8 {
		t.Errorf("stats = %d quizzes %d correct, want 2/8", p.Stats.TotalQuizzes, p.Stats.CorrectAnswers)
	}
	// (100 + 60) / 2
	if p.Stats.OverallAccuracy != 80 {
		t.Errorf("accuracy = %f, want 80", p.Stats.OverallAccuracy)
	}
	if p.Stats.PracticeQuizzes != 2 || p.Stats.TestQuizzes != 0 {
		t.Errorf("mode counts = %d/%d, want 2/0", p.Stats.PracticeQuizzes, p.Stats.TestQuizzes)
	}

	history, _ := repos.history.List(ctx, userID)
	if len(history) != 2 {
		t.Fatalf("history = %d, want 2", len(history))
	}
	// 最新在前
	if history[0].CorrectAnswers != 3 || history[1].CorrectAnswers != 5 {
		t.Errorf("history order = %d then %d, want 3 then 5", history[0].CorrectAnswers, history[1].CorrectAnswers)
	}
}

func TestProcessHistoryWriteFailureIsFatal(t *testing.T) {
	repos := newTestRepos()
	repos.kv.failSet = true
	svc := newResultService(repos, newFakeXPMirror(), NewEventBus())

	_, err := svc.Process(context.Background(), 1, perfectSubmission())
	if !errors.Is(err, util.ErrHistoryWrite) {
		t.Errorf("err = %v, want ErrHistoryWrite", err)
	}
}

func TestProcessContinuesPastStageFailure(t *testing.T) {
	repos := newTestRepos()
	// 学科聚合写入失败，流水线其余阶段照常执行
	repos.kv.failPrefix = "u:1:subjectAnalytics:"
	mirror := newFakeXPMirror()
	bus := NewEventBus()
	notified := 0
	bus.Register(func(uint) { notified++ })

	svc := newResultService(repos, mirror, bus)
	ctx := context.Background()

	resp, err := svc.Process(ctx, 1, perfectSubmission())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	history, _ := repos.history.List(ctx, 1)
	if len(history) != 1 {
		t.Errorf("history = %d, want 1", len(history))
	}
	if resp.XP == nil || resp.XP.XPGained != 75 {
		t.Errorf("xp = %+v, want 75 gained despite subject stage failure", resp.XP)
	}
	if mirror.calls[1] != 75 {
		t.Errorf("mirrored xp = %d, want 75", mirror.calls[1])
	}
	if notified != 1 {
		t.Errorf("notified = %d, want 1", notified)
	}

	subject, err := repos.analytics.GetSubject(ctx, 1, "math")
	if err != nil {
		t.Fatalf("GetSubject: %v", err)
	}
	if subject.TotalQuizzes != 0 {
		t.Errorf("subject row survived a failed write: %+v", subject)
	}
}
