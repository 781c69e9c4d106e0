package service

import (
	"context"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestUpdateStreakTransitions(t *testing.T) {
	repos := newTestRepos()
	svc := NewStreakService(repos.streak)
	ctx := context.Background()
	const userID = 1

	// 首次提交
	got, err := svc.UpdateStreak(ctx, userID, day("2026-03-01"))
	if err != nil {
		t.Fatalf("UpdateStreak: %v", err)
	}
	if got != 1 {
		t.Errorf("first submission streak = %d, want 1", got)
	}

	// 同日再次提交不变
	got, _ = svc.UpdateStreak(ctx, userID, day("2026-03-01"))
	if got != 1 {
		t.Errorf("same day streak = %d, want 1", got)
	}

	// 次日 +1
	got, _ = svc.UpdateStreak(ctx, userID, day("2026-03-02"))
	if got != 2 {
		t.Errorf("next day streak = %d, want 2", got)
	}
	got, _ = svc.UpdateStreak(ctx, userID, day("2026-03-03"))
	if got != 3 {
		t.Errorf("third day streak = %d, want 3", got)
	}

	// 隔两天重置为 1
	got, _ = svc.UpdateStreak(ctx, userID, day("2026-03-06"))
	if got != 1 {
		t.Errorf("after gap streak = %d, want 1", got)
	}
}

func TestGetCurrentStreakLazyInvalidation(t *testing.T) {
	repos := newTestRepos()
	svc := NewStreakService(repos.streak)
	ctx := context.Background()
	const userID = 7

	// 无记录时为 0
	got, err := svc.GetCurrentStreak(ctx, userID, day("2026-03-01"))
	if err != nil {
		t.Fatalf("GetCurrentStreak: %v", err)
	}
	if got != 0 {
		t.Errorf("empty streak = %d, want 0", got)
	}

	svc.UpdateStreak(ctx, userID, day("2026-03-01"))
	svc.UpdateStreak(ctx, userID, day("2026-03-02"))

	// 当天和次日读取保持 2
	if got, _ = svc.GetCurrentStreak(ctx, userID, day("2026-03-02")); got != 2 {
		t.Errorf("same day view = %d, want 2", got)
	}
	if got, _ = svc.GetCurrentStreak(ctx, userID, day("2026-03-03")); got != 2 {
		t.Errorf("next day view = %d, want 2", got)
	}

	// 超过一天后视图归零，但存储不被改写
	if got, _ = svc.GetCurrentStreak(ctx, userID, day("2026-03-05")); got != 0 {
		t.Errorf("lapsed view = %d, want 0", got)
	}

	// 下一次提交仍按存储日期正确重置
	if got, _ = svc.UpdateStreak(ctx, userID, day("2026-03-05")); got != 1 {
		t.Errorf("submission after lapse = %d, want 1", got)
	}
}
