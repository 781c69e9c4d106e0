package model

import "time"

// QuestionOption 单个选项
type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question 题库中的一道题目。题库是只读协作方，引擎不会修改它。
// swagger:model Question
type Question struct {
	ID              string           `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SubjectID       string           `gorm:"size:64;index" json:"subjectId"`
	TopicID         string           `gorm:"size:64;index" json:"topicId"`
	Text            string           `gorm:"type:text;not null" json:"text"`
	Options         []QuestionOption `gorm:"serializer:json;type:json" json:"options"`
	CorrectOptionID string           `gorm:"size:64;not null" json:"correctOptionId"`
	Explanation     string           `gorm:"type:text" json:"explanation,omitempty"`
	Difficulty      Difficulty       `gorm:"size:16;default:'medium'" json:"difficulty,omitempty"`
	Tags            []string         `gorm:"serializer:json;type:json" json:"tags,omitempty"`
	CreatedAt       time.Time        `json:"-"`
	UpdatedAt       time.Time        `json:"-"`
}

func (Question) TableName() string {
	return "questions"
}

// KVEntry 键值存储的 MySQL 后端表
type KVEntry struct {
	K         string    `gorm:"primaryKey;type:varchar(255);column:k"`
	V         string    `gorm:"type:longtext;column:v"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
