package controller

import (
	"quiz_agent_backend/internal/service"
	"quiz_agent_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Service *service.AnalyticsService
}

func NewAnalyticsController(svc *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Service: svc}
}

// @Summary 单个试卷分析
// @Tags 数据分析
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response{data=service.QuizAnalytics}
// @Router /analytics/quiz/{id} [get]
func (c *AnalyticsController) QuizAnalytics(ctx *gin.Context) {
	data, err := c.Service.QuizAnalytics(ctx.Request.Context(), util.GetActor(ctx), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// @Summary 教师总览
// @Tags 数据分析
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.TeacherOverview}
// @Router /analytics/teacher [get]
func (c *AnalyticsController) TeacherOverview(ctx *gin.Context) {
	data, err := c.Service.TeacherOverview(ctx.Request.Context(), util.GetActor(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// @Summary 学生成绩排行
// @Tags 数据分析
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.StudentAnalytics}
// @Router /analytics/students [get]
func (c *AnalyticsController) StudentAnalytics(ctx *gin.Context) {
	data, err := c.Service.StudentAnalytics(ctx.Request.Context(), util.GetActor(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// @Summary 用户答题统计
// @Tags 数据分析
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response{data=service.UserQuizStats}
// @Router /analytics/users/{id}/stats [get]
func (c *AnalyticsController) UserStats(ctx *gin.Context) {
	userID := util.MustParseUint(ctx.Param("id"))
	if userID == 0 {
		util.BadRequest(ctx, "invalid user id")
		return
	}
	data, err := c.Service.UserStats(ctx.Request.Context(), util.GetActor(ctx), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, data)
}

// @Summary 学校分析
// @Tags 数据分析
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "学校ID"
// @Success 200 {object} util.Response{data=service.SchoolAnalytics}
// @Router /analytics/schools/{id} [get]
func (c *AnalyticsController) SchoolAnalytics(ctx *gin.Context) {
	schoolID := util.MustParseUint(ctx.Param("id"))
	if schoolID == 0 {
		util.BadRequest(ctx, "invalid school id")
		return
	}
	data, err := c.Service.SchoolAnalytics(ctx.Request.Context(), util.GetActor(ctx), schoolID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, data)
}
