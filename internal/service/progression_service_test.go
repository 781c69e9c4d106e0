package service

import (
	"context"
	"testing"

	"quiz_engine_backend/internal/model"
)

func TestComputeXP(t *testing.T) {
	tests := []struct {
		name       string
		correct    int
		total      int
		timeSec    float64
		mode       model.QuizMode
		difficulty model.Difficulty
		streak     int
		want       int
	}{
		{
			// 5*10 基础 + 20 满分 + 5 速度(12s/题 < 15s)
			name: "perfect practice medium", correct: 5, total: 5, timeSec: 60,
			mode: model.ModePractice, difficulty: model.DifficultyMedium, streak: 0,
			want: 75,
		},
		{
			// 30*0.8=24，无奖励
			name: "easy multiplier", correct: 3, total: 10, timeSec: 300,
			mode: model.ModePractice, difficulty: model.DifficultyEasy, streak: 0,
			want: 24,
		},
		{
			// 40*1.5=60，60*1.2=72，+5 速度
			name: "hard test with speed", correct: 4, total: 10, timeSec: 100,
			mode: model.ModeTest, difficulty: model.DifficultyHard, streak: 0,
			want: 77,
		},
		{
			// 连击 5 -> 1.2 倍：(50+20+5)*1.2=90
			name: "streak multiplier", correct: 5, total: 5, timeSec: 60,
			mode: model.ModePractice, difficulty: model.DifficultyMedium, streak: 5,
			want: 90,
		},
		{
			// 连击 100 -> 封顶 2 倍
			name: "streak multiplier capped", correct: 5, total: 5, timeSec: 60,
			mode: model.ModePractice, difficulty: model.DifficultyMedium, streak: 100,
			want: 150,
		},
		{
			// 连击 3 不触发倍率
			name: "streak at threshold", correct: 5, total: 5, timeSec: 60,
			mode: model.ModePractice, difficulty: model.DifficultyMedium, streak: 3,
			want: 75,
		},
		{
			// 全错：无基础分也无速度奖励
			name: "all wrong", correct: 0, total: 5, timeSec: 10,
			mode: model.ModePractice, difficulty: model.DifficultyMedium, streak: 0,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeXP(tt.correct, tt.total, tt.timeSec, tt.mode, tt.difficulty, tt.streak)
			if got != tt.want {
				t.Errorf("ComputeXP() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp           int
		wantLevel    int
		wantProgress int
	}{
		{0, 1, 0},
		{99, 1, 99},
		{100, 2, 0},
		{250, 3, 50},
		{1000, 11, 0},
	}
	for _, tt := range tests {
		level, progress := LevelForXP(tt.xp)
		if level != tt.wantLevel || progress != tt.wantProgress {
			t.Errorf("LevelForXP(%d) = (%d, %d), want (%d, %d)", tt.xp, level, progress, tt.wantLevel, tt.wantProgress)
		}
	}
}

func TestUpdateUserXPAccumulatesAndLevels(t *testing.T) {
	repos := newTestRepos()
	mirror := newFakeXPMirror()
	streaks := NewStreakService(repos.streak)
	svc := NewProgressionService(repos.profile, streaks, mirror)

	ctx := context.Background()
	const userID = 1

	// 第一次：75 XP，仍为 1 级
	update, err := svc.UpdateUserXP(ctx, userID, 5, 5, 60, model.ModePractice, model.DifficultyMedium)
	if err != nil {
		t.Fatalf("UpdateUserXP: %v", err)
	}
	if update.XPGained != 75 || update.NewXP != 75 {
		t.Errorf("first update = %+v, want gained 75, newXp 75", update)
	}
	if update.LeveledUp {
		t.Error("should not level up at 75 XP")
	}

	// 第二次：跨过 100 升到 2 级
	update, err = svc.UpdateUserXP(ctx, userID, 5, 5, 60, model.ModePractice, model.DifficultyMedium)
	if err != nil {
		t.Fatalf("UpdateUserXP: %v", err)
	}
	if update.OldXP != 75 || update.NewXP != 150 {
		t.Errorf("second update = %+v, want oldXp 75, newXp 150", update)
	}
	if !update.LeveledUp || update.NewLevel != 2 {
		t.Errorf("expected level up to 2, got %+v", update)
	}

	// 镜像写入了最新值
	if mirror.calls[userID] != 150 {
		t.Errorf("mirror xp = %d, want 150", mirror.calls[userID])
	}

	// 档案与结算结果一致
	p, err := repos.profile.Get(ctx, userID)
	if err != nil {
		t.Fatalf("profile get: %v", err)
	}
	if p.Stats.XP != 150 || p.Level != 2 || p.LevelProgress != 50 {
		t.Errorf("profile = xp %d level %d progress %d, want 150/2/50", p.Stats.XP, p.Level, p.LevelProgress)
	}
}
