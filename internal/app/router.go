package app

import (
	"vunderkids_backend/docs"
	"vunderkids_backend/internal/config"
	"vunderkids_backend/internal/middleware"
	"vunderkids_backend/internal/model"
	"vunderkids_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/plans", c.subscription.ListPlans)
		public.POST("/payments/confirm", c.subscription.ConfirmPayment)
	}

	auth := router.Group("/api")
	auth.Use(middleware.AuthMiddleware(cfg))
	{
		auth.GET("/subscriptions/me", c.subscription.MySubscription)
		auth.POST("/subscriptions/free-trial", c.subscription.StartFreeTrial)
		auth.POST("/payments", c.subscription.InitiatePayment)

		auth.GET("/leaderboard", c.progress.Leaderboard)

		// Listing branches per role inside the handler, so teachers and
		// staff reach it without a learner profile.
		auth.GET("/olympiads", c.olympiad.List)
	}

	// Learning routes require both a learner-capable role and an active
	// subscription.
	learning := router.Group("/api")
	learning.Use(
		middleware.AuthMiddleware(cfg),
		middleware.RoleMiddleware(model.RoleStudent, model.RoleParent),
		middleware.SubscriptionMiddleware(s.subscription),
	)
	{
		learning.GET("/courses", c.content.ListCourses)
		learning.GET("/courses/:id/sections", c.content.ListSections)
		learning.GET("/sections/:id/chapters", c.content.ListChapters)
		learning.GET("/chapters/:id/contents", c.content.ListContents)
		learning.GET("/tasks/:id/questions", c.content.ListTaskQuestions)
		learning.GET("/questions/:id", c.question.GetQuestion)

		learning.POST("/questions/:id/answer", c.question.SubmitAnswer)
		learning.POST("/play-game", c.question.PlayGame)

		learning.GET("/courses/:id/progress", c.progress.CourseProgress)
		learning.GET("/sections/:id/progress", c.progress.SectionProgress)
		learning.GET("/chapters/:id/progress", c.progress.ChapterProgress)
		learning.GET("/tasks/:id/progress", c.progress.TaskProgress)
		learning.GET("/progress/weekly", c.progress.WeeklyProgress)
		learning.GET("/progress/daily", c.progress.DailyProgress)
		learning.GET("/progress/stats", c.progress.Stats)

		learning.GET("/olympiads/:id/questions", c.olympiad.Questions)
		learning.GET("/olympiads/:id/result", c.olympiad.Result)
		learning.POST("/olympiad-questions/:id/answer", c.olympiad.SubmitAnswer)
	}
}
