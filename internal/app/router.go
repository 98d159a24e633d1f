package app

import (
	"quiz_agent_backend/docs"
	"quiz_agent_backend/internal/config"
	"quiz_agent_backend/internal/middleware"
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/pkg/monitoring"

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

	// 2. 试卷：浏览允许游客，其余操作需要登录
	a.registerQuizRoutes(router, c, repos, cfg)

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.ActivityMiddleware(repos.user))
	{
		a.registerResultRoutes(authGroup, c)
		a.registerAnalyticsRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/ai/status", c.quiz.AIStatus)
	}
}

func (a *App) registerQuizRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	quizzes := router.Group("/api/quizzes")
	{
		// 可选认证：游客只能看公开试卷，也可以创建
		optional := quizzes.Group("")
		optional.Use(middleware.TryAuthMiddleware(cfg.JWT.Secret))
		{
			optional.GET("", c.quiz.ListQuizzes)
			optional.GET("/:id", c.quiz.GetQuiz)
			optional.POST("", c.quiz.CreateQuiz)
			optional.POST("/generate", c.quiz.GenerateQuiz)
		}

		authorized := quizzes.Group("")
		authorized.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.ActivityMiddleware(repos.user))
		{
			authorized.DELETE("/:id", c.quiz.DeleteQuiz)
			authorized.POST("/:id/submit", c.quiz.SubmitQuiz)
		}
	}
}

func (a *App) registerResultRoutes(group *gin.RouterGroup, c *controllers) {
	results := group.Group("/results")
	{
		results.GET("", c.result.ListResults)
		results.GET("/:id", c.result.GetResult)
	}
}

func (a *App) registerAnalyticsRoutes(group *gin.RouterGroup, c *controllers) {
	analytics := group.Group("/analytics")
	{
		analytics.GET("/quiz/:id", c.analytics.QuizAnalytics)
		analytics.GET("/users/:id/stats", c.analytics.UserStats)
		analytics.GET("/schools/:id", c.analytics.SchoolAnalytics)

		staff := analytics.Group("")
		staff.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
		{
			staff.GET("/teacher", c.analytics.TeacherOverview)
			staff.GET("/students", c.analytics.StudentAnalytics)
		}
	}
}
