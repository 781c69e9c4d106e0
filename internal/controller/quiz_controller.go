package controller

import (
	"errors"
	"strings"

	"quiz_engine_backend/internal/service"
	"quiz_engine_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	ResultService    *service.ResultService
	AnalyticsService *service.AnalyticsService
	QuestionService  *service.QuestionService
}

func NewQuizController(results *service.ResultService, analytics *service.AnalyticsService, questions *service.QuestionService) *QuizController {
	return &QuizController{
		ResultService:    results,
		AnalyticsService: analytics,
		QuestionService:  questions,
	}
}

// Submit godoc
// @Summary 提交测验结果
// @Description 处理一次完成的测验：写入历史并更新统计、经验与成就
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.SubmitQuizRequest true "测验提交"
// @Success 200 {object} util.Response{data=service.SubmitQuizResponse} "处理完成"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未认证"
// @Failure 500 {object} util.Response "历史写入失败"
// @Router /api/quiz/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.ResultService.Process(ctx.Request.Context(), claims.UserID, &req)
	if err != nil {
		if errors.Is(err, util.ErrEmptyAttempts) || errors.Is(err, util.ErrInvalidAttempt) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, resp)
}

// History godoc
// @Summary 测验历史
// @Description 返回用户全部测验记录，最新在前
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.ProcessedQuizResult} "历史列表"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/quiz/history [get]
func (c *QuizController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	history, err := c.AnalyticsService.GetQuizHistory(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, history)
}

// GetQuestions godoc
// @Summary 抽取题目
// @Description 按学科或主题随机抽取一组题目
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   subjectId query string true "学科 ID"
// @Param   topicId query string false "主题 ID"
// @Param   limit query int false "题目数量，默认 10"
// @Success 200 {object} util.Response{data=[]model.Question} "题目列表"
// @Failure 400 {object} util.Response "缺少学科参数"
// @Router /api/questions [get]
func (c *QuizController) GetQuestions(ctx *gin.Context) {
	subjectID := ctx.Query("subjectId")
	topicID := ctx.Query("topicId")
	if subjectID == "" && topicID == "" {
		util.BadRequest(ctx, "subjectId or topicId is required")
		return
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		limit = int(util.MustParseUint(raw))
	}

	questions, err := c.QuestionService.GetQuestions(subjectID, topicID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// GetQuestionsByIDs godoc
// @Summary 按 ID 批量查询题目
// @Description 回顾历史记录时按题目 ID 取回题干与选项
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   ids query string true "逗号分隔的题目 ID"
// @Success 200 {object} util.Response{data=[]model.Question} "题目列表"
// @Failure 400 {object} util.Response "缺少 ids 参数"
// @Router /api/questions/batch [get]
func (c *QuizController) GetQuestionsByIDs(ctx *gin.Context) {
	raw := ctx.Query("ids")
	if raw == "" {
		util.BadRequest(ctx, "ids is required")
		return
	}

	ids := make([]string, 0)
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		util.BadRequest(ctx, "ids is required")
		return
	}

	questions, err := c.QuestionService.GetByIDs(ids)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}
