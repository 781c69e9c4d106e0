package controller

import (
	"quiz_engine_backend/internal/service"
	"quiz_engine_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievements *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievements}
}

// List godoc
// @Summary 成就列表
// @Description 返回全部成就及用户当前进度
// @Tags 成就
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.UserAward} "成就列表"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/achievements [get]
func (c *AchievementController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	awards, err := c.AchievementService.GetUserAchievements(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, awards)
}

// Leaderboard godoc
// @Summary 经验排行榜
// @Tags 成就
// @Produce  json
// @Security BearerAuth
// @Param   limit query int false "返回数量，默认 10，最大 100"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry} "排行榜"
// @Failure 401 {object} util.Response "未认证"
// @Router /api/achievements/leaderboard [get]
func (c *AchievementController) Leaderboard(ctx *gin.Context) {
	limit := 10
	if raw := ctx.Query("limit"); raw != "" {
		limit = int(util.MustParseUint(raw))
	}

	entries, err := c.AchievementService.GetLeaderboard(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
