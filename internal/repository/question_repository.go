package repository

import (
	"quiz_engine_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// FindByTopic 随机抽取某知识点下的题目
func (r *QuestionRepository) FindByTopic(topicID string, limit int) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("topic_id = ?", topicID).Order("RAND()").Limit(limit).Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) FindBySubject(subjectID string, limit int) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("subject_id = ?", subjectID).Order("RAND()").Limit(limit).Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) FindByIDs(ids []string) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}
