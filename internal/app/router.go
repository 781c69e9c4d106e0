package app

import (
	"quiz_engine_backend/docs"
	"quiz_engine_backend/internal/config"
	"quiz_engine_backend/internal/middleware"
	"quiz_engine_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerAPIRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerAPIRoutes(rg *gin.RouterGroup, c *controllers) {
	// 测验
	rg.POST("/quiz/submit", c.quiz.Submit)
	rg.GET("/quiz/history", c.quiz.History)
	rg.GET("/questions", c.quiz.GetQuestions)
	rg.GET("/questions/batch", c.quiz.GetQuestionsByIDs)

	// 分析
	analytics := rg.Group("/analytics")
	{
		analytics.GET("/subjects/:id", c.analytics.SubjectAnalytics)
		analytics.GET("/topics/improved", c.analytics.MostImprovedTopics)
		analytics.GET("/topics/:id", c.analytics.TopicAnalytics)
		analytics.GET("/questions/difficult", c.analytics.MostDifficultQuestions)
		analytics.GET("/questions/:id", c.analytics.QuestionAnalytics)
		analytics.GET("/daily/:date", c.analytics.DailyStats)
		analytics.GET("/weekly", c.analytics.WeeklyStats)
	}

	// 档案与进度
	rg.GET("/profile", c.user.Profile)
	rg.PUT("/user/name", c.user.UpdateName)
	rg.POST("/user/avatar/upload", c.user.UploadAvatar)
	rg.GET("/streak", c.user.Streak)

	// 成就
	rg.GET("/achievements", c.achievement.List)
	rg.GET("/achievements/leaderboard", c.achievement.Leaderboard)

	// 实时统计推送
	rg.GET("/ws/stats", c.analytics.StatsWebSocket)
}
