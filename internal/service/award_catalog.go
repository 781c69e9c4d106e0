package service

import (
	"quiz_engine_backend/internal/model"
	"time"
)

// AttemptFacts 本次提交用于成就判定的事实，由结果处理器提供
type AttemptFacts struct {
	Correct     int
	Total       int
	TimeSpentSec float64
	Mode        model.QuizMode
	Difficulty  model.Difficulty
	Score       float64
	// FastCorrect 本次测验中 5 秒内答对的题数
	FastCorrect int
	At          time.Time
}

// Perfect 本次是否满分
func (f AttemptFacts) Perfect() bool {
	return f.Total > 0 && f.Correct == f.Total
}

// evalContext 成就规则的输入快照。Stats 为本次提交各阶段更新后的值。
type evalContext struct {
	Stats        model.UserStats
	Level        int
	Attempt      AttemptFacts
	Streak       int
	SubjectCount int
	TodayQuizzes int
}

type awardKind int

const (
	// kindUnlock 布尔条件成立即解锁
	kindUnlock awardKind = iota
	// kindTrack 进度直接跟踪某个统计值，达到上限解锁。
	// 连击类进度跟踪当前连击，是唯一允许下降的进度。
	kindTrack
	// kindCount 每次提交最多累加一次的计数进度
	kindCount
)

type awardDef struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Kind        awardKind
	MaxProgress int

	// Unlock 仅 kindUnlock：条件成立即解锁
	Unlock func(ec *evalContext) bool
	// Track 仅 kindTrack：返回进度的当前绝对值
	Track func(ec *evalContext) int
	// Count 仅 kindCount：返回本次提交应累加的增量
	Count func(ec *evalContext) int
}

// awardCatalog 全量成就目录。目录在首次读取档案时整体播种，
// 规则相互独立。
func awardCatalog() []awardDef {
	defs := []awardDef{
		// ---- 一次性解锁 ----
		{
			ID: "first_quiz", Name: "初出茅庐", Icon: "sparkles",
			Description: "完成第一次测验",
			Kind:        kindUnlock,
			Unlock:      func(ec *evalContext) bool { return ec.Stats.TotalQuizzes == 1 },
		},
		{
			ID: "perfect_score", Name: "满分时刻", Icon: "star",
			Description: "在不少于 5 题的测验中拿到满分",
			Kind:        kindUnlock,
			Unlock:      func(ec *evalContext) bool { return ec.Attempt.Perfect() && ec.Attempt.Total >= 5 },
		},
		{
			ID: "speed_demon", Name: "风驰电掣", Icon: "zap",
			Description: "2 分钟内完成不少于 5 题且正确率不低于 70%",
			Kind:        kindUnlock,
			Unlock: func(ec *evalContext) bool {
				return ec.Attempt.TimeSpentSec < 120 && ec.Attempt.Total >= 5 && ec.Attempt.Score >= 70
			},
		},
		{
			ID: "early_bird", Name: "早起之鸟", Icon: "sunrise",
			Description: "在早上 8 点前完成一次测验",
			Kind:        kindUnlock,
			Unlock:      func(ec *evalContext) bool { return ec.Attempt.At.Hour() < 8 },
		},
		{
			ID: "night_owl", Name: "夜猫子", Icon: "moon",
			Description: "在晚上 10 点后完成一次测验",
			Kind:        kindUnlock,
			Unlock:      func(ec *evalContext) bool { return ec.Attempt.At.Hour() >= 22 },
		},
		{
			ID: "test_ace", Name: "考试王牌", Icon: "medal",
			Description: "测试模式下不少于 10 题且得分超过 90%",
			Kind:        kindUnlock,
			Unlock: func(ec *evalContext) bool {
				return ec.Attempt.Mode == model.ModeTest && ec.Attempt.Total >= 10 && ec.Attempt.Score > 90
			},
		},
		{
			ID: "weekend_warrior", Name: "周末战士", Icon: "shield",
			Description: "在周末完成一次测验",
			Kind:        kindUnlock,
			Unlock: func(ec *evalContext) bool {
				wd := ec.Attempt.At.Weekday()
				return wd == time.Saturday || wd == time.Sunday
			},
		},
		{
			ID: "hard_hitter", Name: "迎难而上", Icon: "flame",
			Description: "困难难度下正确率不低于 80%",
			Kind:        kindUnlock,
			Unlock: func(ec *evalContext) bool {
				return ec.Attempt.Difficulty == model.DifficultyHard && ec.Attempt.Score >= 80
			},
		},
		{
			ID: "marathon_runner", Name: "马拉松选手", Icon: "timer",
			Description: "单次测验完成不少于 20 题",
			Kind:        kindUnlock,
			Unlock:      func(ec *evalContext) bool { return ec.Attempt.Total >= 20 },
		},
		{
			ID: "flawless_test", Name: "无懈可击", Icon: "crown",
			Description: "测试模式下不少于 5 题拿到满分",
			Kind:        kindUnlock,
			Unlock: func(ec *evalContext) bool {
				return ec.Attempt.Mode == model.ModeTest && ec.Attempt.Perfect() && ec.Attempt.Total >= 5
			},
		},
		{
			ID: "quick_thinker", Name: "思如泉涌", Icon: "brain",
			Description: "平均每题不到 10 秒完成不少于 5 题且正确率过半",
			Kind:        kindUnlock,
			Unlock: func(ec *evalContext) bool {
				return ec.Attempt.Total >= 5 &&
					ec.Attempt.TimeSpentSec/float64(ec.Attempt.Total) < 10 &&
					ec.Attempt.Score >= 50
			},
		},
		{
			ID: "sharpshooter", Name: "神射手", Icon: "target",
			Description: "不少于 15 题的测验正确率不低于 95%",
			Kind:        kindUnlock,
			Unlock: func(ec *evalContext) bool {
				return ec.Attempt.Total >= 15 && ec.Attempt.Score >= 95
			},
		},
	}

	// ---- 跟踪累计测验次数 ----
	quizzes := func(ec *evalContext) int { return ec.Stats.TotalQuizzes }
	defs = append(defs,
		awardDef{ID: "quizzes_10", Name: "小试牛刀", Icon: "pencil", Description: "累计完成 10 次测验", Kind: kindTrack, MaxProgress: 10, Track: quizzes},
		awardDef{ID: "quizzes_50", Name: "勤学苦练", Icon: "pencil", Description: "累计完成 50 次测验", Kind: kindTrack, MaxProgress: 50, Track: quizzes},
		awardDef{ID: "quizzes_100", Name: "百炼成钢", Icon: "pencil", Description: "累计完成 100 次测验", Kind: kindTrack, MaxProgress: 100, Track: quizzes},
		awardDef{ID: "quizzes_250", Name: "学海无涯", Icon: "pencil", Description: "累计完成 250 次测验", Kind: kindTrack, MaxProgress: 250, Track: quizzes},
		awardDef{ID: "quizzes_500", Name: "一代宗师", Icon: "pencil", Description: "累计完成 500 次测验", Kind: kindTrack, MaxProgress: 500, Track: quizzes},
	)

	// ---- 跟踪累计答对题数 ----
	correct := func(ec *evalContext) int { return ec.Stats.CorrectAnswers }
	defs = append(defs,
		awardDef{ID: "correct_100", Name: "百发百中", Icon: "check", Description: "累计答对 100 题", Kind: kindTrack, MaxProgress: 100, Track: correct},
		awardDef{ID: "correct_500", Name: "五百壮题", Icon: "check", Description: "累计答对 500 题", Kind: kindTrack, MaxProgress: 500, Track: correct},
		awardDef{ID: "correct_1000", Name: "千题斩", Icon: "check", Description: "累计答对 1000 题", Kind: kindTrack, MaxProgress: 1000, Track: correct},
		awardDef{ID: "correct_2500", Name: "题库克星", Icon: "check", Description: "累计答对 2500 题", Kind: kindTrack, MaxProgress: 2500, Track: correct},
		awardDef{ID: "correct_5000", Name: "万无一失", Icon: "check", Description: "累计答对 5000 题", Kind: kindTrack, MaxProgress: 5000, Track: correct},
	)

	// ---- 跟踪累计经验值 ----
	xp := func(ec *evalContext) int { return ec.Stats.XP }
	defs = append(defs,
		awardDef{ID: "xp_500", Name: "崭露头角", Icon: "gem", Description: "累计获得 500 经验", Kind: kindTrack, MaxProgress: 500, Track: xp},
		awardDef{ID: "xp_1000", Name: "渐入佳境", Icon: "gem", Description: "累计获得 1000 经验", Kind: kindTrack, MaxProgress: 1000, Track: xp},
		awardDef{ID: "xp_2500", Name: "炉火纯青", Icon: "gem", Description: "累计获得 2500 经验", Kind: kindTrack, MaxProgress: 2500, Track: xp},
		awardDef{ID: "xp_5000", Name: "出类拔萃", Icon: "gem", Description: "累计获得 5000 经验", Kind: kindTrack, MaxProgress: 5000, Track: xp},
		awardDef{ID: "xp_10000", Name: "登峰造极", Icon: "gem", Description: "累计获得 10000 经验", Kind: kindTrack, MaxProgress: 10000, Track: xp},
		awardDef{ID: "xp_25000", Name: "传奇学者", Icon: "gem", Description: "累计获得 25000 经验", Kind: kindTrack, MaxProgress: 25000, Track: xp},
	)

	// ---- 跟踪等级 ----
	level := func(ec *evalContext) int { return ec.Level }
	defs = append(defs,
		awardDef{ID: "level_5", Name: "五级学员", Icon: "arrow-up", Description: "达到 5 级", Kind: kindTrack, MaxProgress: 5, Track: level},
		awardDef{ID: "level_10", Name: "十级学者", Icon: "arrow-up", Description: "达到 10 级", Kind: kindTrack, MaxProgress: 10, Track: level},
		awardDef{ID: "level_20", Name: "二十级大师", Icon: "arrow-up", Description: "达到 20 级", Kind: kindTrack, MaxProgress: 20, Track: level},
		awardDef{ID: "level_35", Name: "三十五级宗师", Icon: "arrow-up", Description: "达到 35 级", Kind: kindTrack, MaxProgress: 35, Track: level},
		awardDef{ID: "level_50", Name: "五十级巅峰", Icon: "arrow-up", Description: "达到 50 级", Kind: kindTrack, MaxProgress: 50, Track: level},
	)

	// ---- 跟踪当前连击（进度随连击中断而回落）----
	streak := func(ec *evalContext) int { return ec.Streak }
	defs = append(defs,
		awardDef{ID: "streak_3", Name: "三日之约", Icon: "flame", Description: "连续学习 3 天", Kind: kindTrack, MaxProgress: 3, Track: streak},
		awardDef{ID: "streak_7", Name: "七日不辍", Icon: "flame", Description: "连续学习 7 天", Kind: kindTrack, MaxProgress: 7, Track: streak},
		awardDef{ID: "streak_14", Name: "两周坚持", Icon: "flame", Description: "连续学习 14 天", Kind: kindTrack, MaxProgress: 14, Track: streak},
		awardDef{ID: "streak_30", Name: "三十而立", Icon: "flame", Description: "连续学习 30 天", Kind: kindTrack, MaxProgress: 30, Track: streak},
		awardDef{ID: "streak_60", Name: "持之以恒", Icon: "flame", Description: "连续学习 60 天", Kind: kindTrack, MaxProgress: 60, Track: streak},
		awardDef{ID: "streak_100", Name: "百日筑基", Icon: "flame", Description: "连续学习 100 天", Kind: kindTrack, MaxProgress: 100, Track: streak},
	)

	// ---- 跟踪累计学习时长（小时）----
	hours := func(ec *evalContext) int { return int(ec.Stats.TotalTimeHours) }
	defs = append(defs,
		awardDef{ID: "hours_1", Name: "一小时俱乐部", Icon: "clock", Description: "累计学习 1 小时", Kind: kindTrack, MaxProgress: 1, Track: hours},
		awardDef{ID: "hours_10", Name: "十小时打卡", Icon: "clock", Description: "累计学习 10 小时", Kind: kindTrack, MaxProgress: 10, Track: hours},
		awardDef{ID: "hours_50", Name: "五十小时沉淀", Icon: "clock", Description: "累计学习 50 小时", Kind: kindTrack, MaxProgress: 50, Track: hours},
		awardDef{ID: "hours_100", Name: "百小时磨砺", Icon: "clock", Description: "累计学习 100 小时", Kind: kindTrack, MaxProgress: 100, Track: hours},
	)

	// ---- 跟踪涉猎学科数 ----
	subjects := func(ec *evalContext) int { return ec.SubjectCount }
	defs = append(defs,
		awardDef{ID: "subjects_3", Name: "三栖学习者", Icon: "book", Description: "在 3 个学科留下记录", Kind: kindTrack, MaxProgress: 3, Track: subjects},
		awardDef{ID: "subjects_5", Name: "博览群书", Icon: "book", Description: "在 5 个学科留下记录", Kind: kindTrack, MaxProgress: 5, Track: subjects},
		awardDef{ID: "subjects_10", Name: "全能选手", Icon: "book", Description: "在 10 个学科留下记录", Kind: kindTrack, MaxProgress: 10, Track: subjects},
	)

	// ---- 跟踪单日测验次数 ----
	daily := func(ec *evalContext) int { return ec.TodayQuizzes }
	defs = append(defs,
		awardDef{ID: "daily_5", Name: "今日份努力", Icon: "calendar", Description: "一天内完成 5 次测验", Kind: kindTrack, MaxProgress: 5, Track: daily},
		awardDef{ID: "daily_10", Name: "今日超额", Icon: "calendar", Description: "一天内完成 10 次测验", Kind: kindTrack, MaxProgress: 10, Track: daily},
	)

	// ---- 每次提交累加的计数 ----
	perfectOnce := func(ec *evalContext) int {
		if ec.Attempt.Perfect() {
			return 1
		}
		return 0
	}
	practiceOnce := func(ec *evalContext) int {
		if ec.Attempt.Mode == model.ModePractice {
			return 1
		}
		return 0
	}
	testOnce := func(ec *evalContext) int {
		if ec.Attempt.Mode == model.ModeTest {
			return 1
		}
		return 0
	}
	fast := func(ec *evalContext) int { return ec.Attempt.FastCorrect }
	defs = append(defs,
		awardDef{ID: "perfects_5", Name: "完美主义者", Icon: "star", Description: "拿到 5 次满分", Kind: kindCount, MaxProgress: 5, Count: perfectOnce},
		awardDef{ID: "perfects_25", Name: "满分收藏家", Icon: "star", Description: "拿到 25 次满分", Kind: kindCount, MaxProgress: 25, Count: perfectOnce},
		awardDef{ID: "perfects_100", Name: "满分传说", Icon: "star", Description: "拿到 100 次满分", Kind: kindCount, MaxProgress: 100, Count: perfectOnce},
		awardDef{ID: "practice_10", Name: "练习生", Icon: "repeat", Description: "完成 10 次练习模式", Kind: kindCount, MaxProgress: 10, Count: practiceOnce},
		awardDef{ID: "practice_50", Name: "熟能生巧", Icon: "repeat", Description: "完成 50 次练习模式", Kind: kindCount, MaxProgress: 50, Count: practiceOnce},
		awardDef{ID: "practice_200", Name: "练习狂人", Icon: "repeat", Description: "完成 200 次练习模式", Kind: kindCount, MaxProgress: 200, Count: practiceOnce},
		awardDef{ID: "tests_10", Name: "应试新秀", Icon: "clipboard", Description: "完成 10 次测试模式", Kind: kindCount, MaxProgress: 10, Count: testOnce},
		awardDef{ID: "tests_50", Name: "考场常客", Icon: "clipboard", Description: "完成 50 次测试模式", Kind: kindCount, MaxProgress: 50, Count: testOnce},
		awardDef{ID: "tests_200", Name: "身经百战", Icon: "clipboard", Description: "完成 200 次测试模式", Kind: kindCount, MaxProgress: 200, Count: testOnce},
		awardDef{ID: "lightning_50", Name: "闪电反应", Icon: "zap", Description: "5 秒内答对 50 题", Kind: kindCount, MaxProgress: 50, Count: fast},
		awardDef{ID: "lightning_250", Name: "疾如闪电", Icon: "zap", Description: "5 秒内答对 250 题", Kind: kindCount, MaxProgress: 250, Count: fast},
		awardDef{ID: "lightning_1000", Name: "光速大脑", Icon: "zap", Description: "5 秒内答对 1000 题", Kind: kindCount, MaxProgress: 1000, Count: fast},
	)

	return defs
}
