package database

import (
	"fmt"
	"log"
	"quiz_engine_backend/internal/config"
	"quiz_engine_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Question{},
		&model.KVEntry{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 题库为空时写入默认题目，便于前端联调
	var qCount int64
	db.Model(&model.Question{}).Count(&qCount)
	if qCount == 0 {
		for _, q := range seedQuestions() {
			db.Create(&q)
		}
		log.Printf("Seeded %d default questions", len(seedQuestions()))
	}

	return db, nil
}

func seedQuestions() []model.Question {
	opts := func(texts ...string) []model.QuestionOption {
		out := make([]model.QuestionOption, len(texts))
		for i, t := range texts {
			out[i] = model.QuestionOption{ID: fmt.Sprintf("o%d", i+1), Text: t}
		}
		return out
	}

	return []model.Question{
		{
			ID: "q-math-001", SubjectID: "math", TopicID: "algebra",
			Text:            "2x + 6 = 14，x 等于多少？",
			Options:         opts("2", "4", "6", "8"),
			CorrectOptionID: "o2",
			Explanation:     "两边同减 6 再除以 2。",
			Difficulty:      model.DifficultyEasy,
			Tags:            []string{"equation"},
		},
		{
			ID: "q-math-002", SubjectID: "math", TopicID: "algebra",
			Text:            "(x+1)(x-1) 展开后是？",
			Options:         opts("x²-1", "x²+1", "x²-2x+1", "x²+2x+1"),
			CorrectOptionID: "o1",
			Difficulty:      model.DifficultyMedium,
			Tags:            []string{"factoring"},
		},
		{
			ID: "q-math-003", SubjectID: "math", TopicID: "geometry",
			Text:            "半径为 3 的圆面积是？",
			Options:         opts("6π", "9π", "3π", "12π"),
			CorrectOptionID: "o2",
			Difficulty:      model.DifficultyEasy,
		},
		{
			ID: "q-phys-001", SubjectID: "physics", TopicID: "mechanics",
			Text:            "牛顿第二定律的表达式是？",
			Options:         opts("F=ma", "E=mc²", "F=mv", "P=mv"),
			CorrectOptionID: "o1",
			Difficulty:      model.DifficultyEasy,
			Tags:            []string{"newton"},
		},
		{
			ID: "q-phys-002", SubjectID: "physics", TopicID: "mechanics",
			Text:            "自由落体 2 秒后的速度约为？(g=9.8m/s²)",
			Options:         opts("9.8 m/s", "19.6 m/s", "4.9 m/s", "39.2 m/s"),
			CorrectOptionID: "o2",
			Difficulty:      model.DifficultyMedium,
		},
		{
			ID: "q-cs-001", SubjectID: "cs", TopicID: "data-structures",
			Text:            "二分查找的时间复杂度是？",
			Options:         opts("O(n)", "O(n log n)", "O(log n)", "O(1)"),
			CorrectOptionID: "o3",
			Difficulty:      model.DifficultyMedium,
			Tags:            []string{"search", "complexity"},
		},
		{
			ID: "q-cs-002", SubjectID: "cs", TopicID: "data-structures",
			Text:            "栈的出入顺序是？",
			Options:         opts("先进先出", "后进先出", "随机", "按优先级"),
			CorrectOptionID: "o2",
			Difficulty:      model.DifficultyEasy,
		},
		{
			ID: "q-cs-003", SubjectID: "cs", TopicID: "networking",
			Text:            "HTTPS 默认端口是？",
			Options:         opts("80", "8080", "443", "22"),
			CorrectOptionID: "o3",
			Difficulty:      model.DifficultyEasy,
			Tags:            []string{"http"},
		},
	}
}
