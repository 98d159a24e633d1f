package controller

import (
	"quiz_agent_backend/internal/service"
	"quiz_agent_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	Service *service.QuizService
}

func NewResultController(svc *service.QuizService) *ResultController {
	return &ResultController{Service: svc}
}

// @Summary 成绩列表
// @Description 默认返回本人成绩；试卷创建者传 quizId 可查看该卷全部成绩
// @Tags 成绩
// @Produce json
// @Security ApiKeyAuth
// @Param quizId query string false "试卷ID"
// @Success 200 {object} util.Response
// @Router /results [get]
func (c *ResultController) ListResults(ctx *gin.Context) {
	results, err := c.Service.ListResults(ctx.Request.Context(), util.GetActor(ctx), ctx.Query("quizId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": results, "total": len(results)})
}

// @Summary 成绩详情
// @Tags 成绩
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "成绩ID"
// @Success 200 {object} util.Response{data=model.QuizResult}
// @Router /results/{id} [get]
func (c *ResultController) GetResult(ctx *gin.Context) {
	result, err := c.Service.GetResult(ctx.Request.Context(), util.GetActor(ctx), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
