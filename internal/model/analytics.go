package model

import "time"

// SubjectAnalytics 按学科累计的统计行
// swagger:model SubjectAnalytics
type SubjectAnalytics struct {
	SubjectID    string `json:"subjectId"`
	SubjectTitle string `json:"subjectTitle"`
	TotalQuizzes int    `json:"totalQuizzes"`
	// 累计题数与答对数，任何时刻满足 CorrectAnswers <= TotalQuestions
	TotalQuestions int `json:"totalQuestions"`
	CorrectAnswers int `json:"correctAnswers"`
	// 逐次增量更新的平均值（见分析引擎的增量均值公式）
	AverageScore             int       `json:"averageScore"`
	AverageTimePerQuestionMs int       `json:"averageTimePerQuestionMs"`
	PracticeCount            int       `json:"practiceCount"`
	TestCount                int       `json:"testCount"`
	LastAttempted            time.Time `json:"lastAttempted"`
}

// TopicAnalytics 按知识点累计的统计行。知识点可选，
// 学科计数与其下知识点计数是相互独立的计数器，不构成严格汇总。
// swagger:model TopicAnalytics
type TopicAnalytics struct {
	TopicID                  string    `json:"topicId"`
	TopicTitle               string    `json:"topicTitle"`
	SubjectID                string    `json:"subjectId"`
	TotalQuizzes             int       `json:"totalQuizzes"`
	TotalQuestions           int       `json:"totalQuestions"`
	CorrectAnswers           int       `json:"correctAnswers"`
	AverageScore             int       `json:"averageScore"`
	AverageTimePerQuestionMs int       `json:"averageTimePerQuestionMs"`
	PracticeCount            int       `json:"practiceCount"`
	TestCount                int       `json:"testCount"`
	LastAttempted            time.Time `json:"lastAttempted"`
}

// QuestionAnalytics 按题目累计的统计行
// swagger:model QuestionAnalytics
type QuestionAnalytics struct {
	QuestionID      string    `json:"questionId"`
	SubjectID       string    `json:"subjectId"`
	TopicID         string    `json:"topicId,omitempty"`
	TotalAttempts   int       `json:"totalAttempts"`
	CorrectAttempts int       `json:"correctAttempts"`
	AverageTimeMs   int       `json:"averageTimeMs"`
	// 1-5，由累计正确率推导；无作答记录时默认 3（中等）
	DifficultyRating int       `json:"difficultyRating"`
	LastAttempted    time.Time `json:"lastAttempted"`
}

// SuccessRate 累计正确率，无作答时为 0
func (q QuestionAnalytics) SuccessRate() float64 {
	if q.TotalAttempts == 0 {
		return 0
	}
	return float64(q.CorrectAttempts) / float64(q.TotalAttempts)
}

// DailyStats 按自然日（UTC）汇总的统计
// swagger:model DailyStats
type DailyStats struct {
	Date            string   `json:"date"` // yyyy-mm-dd
	TotalQuizzes    int      `json:"totalQuizzes"`
	TotalQuestions  int      `json:"totalQuestions"`
	CorrectAnswers  int      `json:"correctAnswers"`
	TotalTimeMs     int64    `json:"totalTimeMs"`
	SubjectsStudied []string `json:"subjectsStudied"`
}

// AddSubject 将学科并入当日已学习集合
func (d *DailyStats) AddSubject(subjectID string) {
	for _, s := range d.SubjectsStudied {
		if s == subjectID {
			return
		}
	}
	d.SubjectsStudied = append(d.SubjectsStudied, subjectID)
}

// WeeklyStats 最近 7 天的日统计与合计
// swagger:model WeeklyStats
type WeeklyStats struct {
	Days           []DailyStats `json:"days"`
	TotalQuizzes   int          `json:"totalQuizzes"`
	TotalQuestions int          `json:"totalQuestions"`
	CorrectAnswers int          `json:"correctAnswers"`
	TotalTimeMs    int64        `json:"totalTimeMs"`
}

// TopicImprovement 知识点进步幅度（近半段均分与前半段均分之差）
// swagger:model TopicImprovement
type TopicImprovement struct {
	TopicID     string  `json:"topicId"`
	TopicTitle  string  `json:"topicTitle"`
	Attempts    int     `json:"attempts"`
	Improvement float64 `json:"improvement"`
}
