package controller

import (
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/internal/service"
	"quiz_agent_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service *service.QuizService
	AI      *service.AIService
}

func NewQuizController(svc *service.QuizService, ai *service.AIService) *QuizController {
	return &QuizController{Service: svc, AI: ai}
}

// @Summary 获取可见试卷列表
// @Description 游客只能看到公开试卷
// @Tags 试卷
// @Produce json
// @Param subject query string false "学科"
// @Param difficulty query string false "难度" Enums(easy, medium, hard)
// @Param mine query bool false "只看我创建的"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	page, limit := util.ParsePagination(ctx.DefaultQuery("page", "1"), ctx.DefaultQuery("limit", "20"))
	req := service.ListQuizzesReq{
		Subject:    ctx.Query("subject"),
		Difficulty: model.Difficulty(ctx.Query("difficulty")),
		Mine:       ctx.Query("mine") == "true",
		Page:       page,
		Limit:      limit,
	}

	quizzes, total, err := c.Service.ListQuizzes(ctx.Request.Context(), util.GetActor(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: quizzes, Total: int64(total), Page: page, Limit: limit})
}

// @Summary 获取试卷详情
// @Tags 试卷
// @Produce json
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	quiz, err := c.Service.GetQuiz(ctx.Request.Context(), util.GetActor(ctx), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// @Summary 人工创建试卷
// @Tags 试卷
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateQuizReq true "试卷内容"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response
// @Router /quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.CreateQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.CreateManualQuiz(ctx.Request.Context(), util.GetActor(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// @Summary AI 生成试卷
// @Description AI 服务不可用或返回内容无效时使用本地题库兜底
// @Tags 试卷
// @Accept json
// @Produce json
// @Param body body service.GenerateQuizReq true "生成参数"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /quizzes/generate [post]
func (c *QuizController) GenerateQuiz(ctx *gin.Context) {
	var req service.GenerateQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, result, err := c.Service.GenerateQuiz(ctx.Request.Context(), util.GetActor(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"quiz": quiz, "generation": result})
}

// @Summary 删除试卷
// @Description 同时删除该试卷的全部成绩
// @Tags 试卷
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	if err := c.Service.DeleteQuiz(ctx.Request.Context(), util.GetActor(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary 提交答案
// @Tags 试卷
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Param body body service.SubmitQuizReq true "答案"
// @Success 201 {object} util.Response
// @Router /quizzes/{id}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	var req service.SubmitQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.SubmitQuiz(ctx.Request.Context(), util.GetActor(ctx), ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{
		"result":  result,
		"message": service.ResultMessage(result),
	})
}

// @Summary AI 服务状态
// @Tags 试卷
// @Produce json
// @Success 200 {object} util.Response{data=service.AIStatus}
// @Router /ai/status [get]
func (c *QuizController) AIStatus(ctx *gin.Context) {
	util.Success(ctx, c.AI.Status())
}
