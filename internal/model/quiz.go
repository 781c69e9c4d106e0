package model

import "time"

type QuizMode string

const (
	ModePractice QuizMode = "practice"
	ModeTest     QuizMode = "test"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionAttempt 一次测验会话中单道题的作答记录
// swagger:model QuestionAttempt
type QuestionAttempt struct {
	QuestionID       string  `json:"questionId" binding:"required"`
	SelectedOptionID *string `json:"selectedOptionId,omitempty"`
	CorrectOptionID  string  `json:"correctOptionId" binding:"required"`
	TimeSpentMs      int64   `json:"timeSpentMs"`
	IsSkipped        bool    `json:"isSkipped"`
}

// Correct 判定该作答是否答对
func (a QuestionAttempt) Correct() bool {
	return !a.IsSkipped && a.SelectedOptionID != nil && *a.SelectedOptionID == a.CorrectOptionID
}

// ProcessedQuizResult 一次完成测验的规范记录。创建后不可变，
// 追加到历史列表（最新在前），之后不再修改。
// swagger:model ProcessedQuizResult
type ProcessedQuizResult struct {
	ID             string            `json:"id"`
	SubjectID      string            `json:"subjectId"`
	SubjectTitle   string            `json:"subjectTitle"`
	TopicID        string            `json:"topicId,omitempty"`
	TopicTitle     string            `json:"topicTitle,omitempty"`
	Mode           QuizMode          `json:"mode"`
	Difficulty     Difficulty        `json:"difficulty"`
	Score          float64           `json:"score"`
	CorrectAnswers int               `json:"correctAnswers"`
	TotalQuestions int               `json:"totalQuestions"`
	DurationMs     int64             `json:"durationMs"`
	Attempts       []QuestionAttempt `json:"attempts"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// XPUpdate 一次经验值结算的结果
// swagger:model XPUpdate
type XPUpdate struct {
	OldXP     int  `json:"oldXp"`
	NewXP     int  `json:"newXp"`
	XPGained  int  `json:"xpGained"`
	OldLevel  int  `json:"oldLevel"`
	NewLevel  int  `json:"newLevel"`
	LeveledUp bool `json:"leveledUp"`
}
