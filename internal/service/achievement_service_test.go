package service

import (
	"context"
	"testing"
	"time"

	"quiz_engine_backend/internal/model"

	"go.uber.org/zap"
)

func newAchievementService(repos *testRepos) *AchievementService {
	streaks := NewStreakService(repos.streak)
	return NewAchievementService(repos.profile, repos.analytics, nil, streaks, zap.NewNop())
}

func practiceFacts(correct, total int, at time.Time) AttemptFacts {
	return AttemptFacts{
		Correct:      correct,
		Total:        total,
		TimeSpentSec: float64(total) * 30,
		Mode:         model.ModePractice,
		Difficulty:   model.DifficultyMedium,
		Score:        100 * float64(correct) / float64(total),
		At:           at,
	}
}

func TestAwardCatalogComplete(t *testing.T) {
	defs := awardCatalog()
	if len(defs) != 60 {
		t.Fatalf("catalog size = %d, want 60", len(defs))
	}

	seen := make(map[string]bool)
	for _, def := range defs {
		if def.ID == "" || def.Name == "" {
			t.Errorf("award missing id or name: %+v", def)
		}
		if seen[def.ID] {
			t.Errorf("duplicate award id %q", def.ID)
		}
		seen[def.ID] = true

		switch def.Kind {
		case kindUnlock:
			if def.Unlock == nil {
				t.Errorf("%s: unlock award without condition", def.ID)
			}
		case kindTrack:
			if def.Track == nil || def.MaxProgress <= 0 {
				t.Errorf("%s: track award missing tracker or max", def.ID)
			}
		case kindCount:
			if def.Count == nil || def.MaxProgress <= 0 {
				t.Errorf("%s: count award missing counter or max", def.ID)
			}
		}
	}
}

func TestFirstQuizAndPerfectScoreUnlock(t *testing.T) {
	repos := newTestRepos()
	svc := newAchievementService(repos)
	ctx := context.Background()
	const userID = 1
	at := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) // 周一中午，避开时段和周末成就

	// 成就评估读取的是已更新的累计统计
	repos.profile.Mutate(ctx, userID, func(p *model.UserProfile) error {
		p.Stats.TotalQuizzes = 1
		p.Stats.TotalQuestions = 5
		p.Stats.CorrectAnswers = 5
		return nil
	})

	unlocked, err := svc.CheckAchievements(ctx, userID, practiceFacts(5, 5, at))
	if err != nil {
		t.Fatalf("CheckAchievements: %v", err)
	}

	got := make(map[string]bool)
	for _, a := range unlocked {
		got[a.ID] = true
	}
	if !got["first_quiz"] {
		t.Error("first_quiz should unlock on first submission")
	}
	if !got["perfect_score"] {
		t.Error("perfect_score should unlock on 5/5")
	}

	// 再次提交不重复解锁
	repos.profile.Mutate(ctx, userID, func(p *model.UserProfile) error {
		p.Stats.TotalQuizzes = 2
		return nil
	})
	unlocked, _ = svc.CheckAchievements(ctx, userID, practiceFacts(5, 5, at.Add(time.Hour)))
	for _, a := range unlocked {
		if a.ID == "first_quiz" || a.ID == "perfect_score" {
			t.Errorf("%s unlocked twice", a.ID)
		}
	}
}

func TestStreakAwardProgressFallsButStaysUnlocked(t *testing.T) {
	repos := newTestRepos()
	svc := newAchievementService(repos)
	ctx := context.Background()
	const userID = 1

	// 连续三天提交，streak_3 解锁
	var lastUnlocked []model.UserAward
	for i := 0; i < 3; i++ {
		at := day("2026-03-01").AddDate(0, 0, i)
		var err error
		lastUnlocked, err = svc.CheckAchievements(ctx, userID, practiceFacts(3, 5, at))
		if err != nil {
			t.Fatalf("CheckAchievements: %v", err)
		}
	}
	found := false
	for _, a := range lastUnlocked {
		if a.ID == "streak_3" {
			found = true
		}
	}
	if !found {
		t.Fatal("streak_3 should unlock on third consecutive day")
	}

	// 中断后的提交：连击重置为 1，进度回落但保持已解锁
	svc.CheckAchievements(ctx, userID, practiceFacts(3, 5, day("2026-03-10")))

	p, err := repos.profile.Get(ctx, userID)
	if err != nil {
		t.Fatalf("profile get: %v", err)
	}
	award := p.Award("streak_3")
	if award == nil {
		t.Fatal("streak_3 missing from profile")
	}
	if !award.Unlocked {
		t.Error("streak_3 must stay unlocked after the streak breaks")
	}
	if award.Progress != 1 {
		t.Errorf("streak_3 progress = %d, want 1 after reset", award.Progress)
	}
	if p.Stats.Streak != 1 {
		t.Errorf("stats streak = %d, want 1", p.Stats.Streak)
	}

	// streak_7 进度同样回落且未解锁
	if a := p.Award("streak_7"); a == nil || a.Unlocked || a.Progress != 1 {
		t.Errorf("streak_7 = %+v, want locked with progress 1", a)
	}
}

func TestCountAwardsAccumulatePerSubmission(t *testing.T) {
	repos := newTestRepos()
	svc := newAchievementService(repos)
	ctx := context.Background()
	const userID = 1
	at := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	// 5 次满分解锁 perfects_5
	var unlocked []model.UserAward
	for i := 0; i < 5; i++ {
		unlocked, _ = svc.CheckAchievements(ctx, userID, practiceFacts(5, 5, at.Add(time.Duration(i)*time.Hour)))
	}

	found := false
	for _, a := range unlocked {
		if a.ID == "perfects_5" {
			found = true
		}
	}
	if !found {
		t.Error("perfects_5 should unlock after five perfect submissions")
	}

	p, _ := repos.profile.Get(ctx, userID)
	if a := p.Award("perfects_25"); a == nil || a.Progress != 5 {
		t.Errorf("perfects_25 progress = %+v, want 5", a)
	}
	if a := p.Award("practice_10"); a == nil || a.Progress != 5 {
		t.Errorf("practice_10 progress = %+v, want 5", a)
	}
	if a := p.Award("tests_10"); a == nil || a.Progress != 0 {
		t.Errorf("tests_10 progress = %+v, want 0", a)
	}
}

func TestGetUserAchievementsBackfillsCatalog(t *testing.T) {
	repos := newTestRepos()
	svc := newAchievementService(repos)

	awards, err := svc.GetUserAchievements(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetUserAchievements: %v", err)
	}
	if len(awards) != 60 {
		t.Fatalf("awards = %d, want full catalog of 60", len(awards))
	}
	for _, a := range awards {
		if a.Unlocked {
			t.Errorf("%s unlocked for a fresh user", a.ID)
		}
	}
}
