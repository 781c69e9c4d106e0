package controller

import (
	"time"

	"quiz_engine_backend/internal/service"
	"quiz_engine_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
	Hub              *service.StatsHub
}

func NewAnalyticsController(analytics *service.AnalyticsService, hub *service.StatsHub) *AnalyticsController {
	return &AnalyticsController{
		AnalyticsService: analytics,
		Hub:              hub,
	}
}

// SubjectAnalytics godoc
// @Summary 学科分析
// @Description 返回某学科的累计分析数据，无记录时返回零值
// @Tags 分析
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "学科 ID"
// @Success 200 {object} util.Response{data=model.SubjectAnalytics} "学科分析"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/analytics/subjects/{id} [get]
func (c *AnalyticsController) SubjectAnalytics(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	data, err := c.AnalyticsService.GetSubjectAnalytics(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// TopicAnalytics godoc
// @Summary 主题分析
// @Tags 分析
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "主题 ID"
// @Success 200 {object} util.Response{data=model.TopicAnalytics} "主题分析"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/analytics/topics/{id} [get]
func (c *AnalyticsController) TopicAnalytics(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	data, err := c.AnalyticsService.GetTopicAnalytics(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// QuestionAnalytics godoc
// @Summary 单题分析
// @Tags 分析
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目 ID"
// @Success 200 {object} util.Response{data=model.QuestionAnalytics} "单题分析"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/analytics/questions/{id} [get]
func (c *AnalyticsController) QuestionAnalytics(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	data, err := c.AnalyticsService.GetQuestionAnalytics(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// DailyStats godoc
// @Summary 单日统计
// @Tags 分析
// @Produce  json
// @Security BearerAuth
// @Param   date path string true "日期 yyyy-mm-dd"
// @Success 200 {object} util.Response{data=model.DailyStats} "当日统计"
// @Failure 400 {object} util.Response "日期格式错误"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/analytics/daily/{date} [get]
func (c *AnalyticsController) DailyStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	date := ctx.Param("date")
	if _, err := time.Parse(util.DateFormat, date); err != nil {
		util.BadRequest(ctx, "invalid date, expected yyyy-mm-dd")
		return
	}

	data, err := c.AnalyticsService.GetDailyStats(ctx.Request.Context(), claims.UserID, date)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// WeeklyStats godoc
// @Summary 近七天统计
// @Description 汇总最近 7 个自然日，缺失日期按零值补齐
// @Tags 分析
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.WeeklyStats} "七天汇总"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/analytics/weekly [get]
func (c *AnalyticsController) WeeklyStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	data, err := c.AnalyticsService.GetWeeklyStats(ctx.Request.Context(), claims.UserID, time.Now().UTC())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// MostDifficultQuestions godoc
// @Summary 最难题目
// @Description 按难度系数降序返回答过的题目
// @Tags 分析
// @Produce  json
// @Security BearerAuth
// @Param   limit query int false "返回数量，默认 10"
// @Success 200 {object} util.Response{data=[]model.QuestionAnalytics} "最难题目列表"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/analytics/questions/difficult [get]
func (c *AnalyticsController) MostDifficultQuestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := 10
	if raw := ctx.Query("limit"); raw != "" {
		limit = int(util.MustParseUint(raw))
	}

	data, err := c.AnalyticsService.GetMostDifficultQuestions(ctx.Request.Context(), claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// MostImprovedTopics godoc
// @Summary 进步最快的主题
// @Description 比较主题近期与早期成绩均值，按提升幅度排序
// @Tags 分析
// @Produce  json
// @Security BearerAuth
// @Param   limit query int false "返回数量，默认 5"
// @Success 200 {object} util.Response{data=[]model.TopicImprovement} "主题进步列表"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/analytics/topics/improved [get]
func (c *AnalyticsController) MostImprovedTopics(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := 5
	if raw := ctx.Query("limit"); raw != "" {
		limit = int(util.MustParseUint(raw))
	}

	data, err := c.AnalyticsService.GetMostImprovedTopics(ctx.Request.Context(), claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// StatsWebSocket godoc
// @Summary 统计推送连接
// @Description 建立 WebSocket 连接，分析数据更新后收到 analytics_updated
// @Tags 分析
// @Security BearerAuth
// @Router /api/ws/stats [get]
func (c *AnalyticsController) StatsWebSocket(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	service.ServeStatsWs(c.Hub, ctx.Writer, ctx.Request, claims.UserID)
}
