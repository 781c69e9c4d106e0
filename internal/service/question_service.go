package service

import (
	"quiz_engine_backend/internal/model"
	"quiz_engine_backend/internal/repository"
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
}

func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{QuestionRepo: questionRepo}
}

// GetQuestions 随机抽取一组题目，优先按主题过滤
func (s *QuestionService) GetQuestions(subjectID, topicID string, limit int) ([]model.Question, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	if topicID != "" {
		return s.QuestionRepo.FindByTopic(topicID, limit)
	}
	return s.QuestionRepo.FindBySubject(subjectID, limit)
}

func (s *QuestionService) GetByIDs(ids []string) ([]model.Question, error) {
	return s.QuestionRepo.FindByIDs(ids)
}
