package controller

import (
	"errors"
	"time"

	"vunderkids_backend/internal/service"
	"vunderkids_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	AggregateService *service.AggregateService
	LearnerService   *service.LearnerService
}

func NewProgressController(aggregateService *service.AggregateService, learnerService *service.LearnerService) *ProgressController {
	return &ProgressController{AggregateService: aggregateService, LearnerService: learnerService}
}

// @Summary Course completion percentage
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param childId query int false "Child ID (parent accounts)"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/progress [get]
func (c *ProgressController) CourseProgress(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	learner, ok := resolveLearner(ctx, c.LearnerService)
	if !ok {
		return
	}

	progress, err := c.AggregateService.CourseProgress(learner, courseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary Section completion percentage
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param childId query int false "Child ID (parent accounts)"
// @Success 200 {object} util.Response
// @Router /api/sections/{id}/progress [get]
func (c *ProgressController) SectionProgress(ctx *gin.Context) {
	sectionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	learner, ok := resolveLearner(ctx, c.LearnerService)
	if !ok {
		return
	}

	progress, err := c.AggregateService.SectionProgress(learner, sectionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary Chapter completion percentage
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Chapter ID"
// @Param childId query int false "Child ID (parent accounts)"
// @Success 200 {object} util.Response
// @Router /api/chapters/{id}/progress [get]
func (c *ProgressController) ChapterProgress(ctx *gin.Context) {
	chapterID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	learner, ok := resolveLearner(ctx, c.LearnerService)
	if !ok {
		return
	}

	progress, err := c.AggregateService.ChapterProgress(learner, chapterID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary Per-task progress
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param childId query int false "Child ID (parent accounts)"
// @Success 200 {object} util.Response
// @Router /api/tasks/{id}/progress [get]
func (c *ProgressController) TaskProgress(ctx *gin.Context) {
	taskID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	learner, ok := resolveLearner(ctx, c.LearnerService)
	if !ok {
		return
	}

	progress, err := c.AggregateService.TaskProgress(learner, taskID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary Completions per day over the last week
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param childId query int false "Child ID (parent accounts)"
// @Success 200 {object} util.Response
// @Router /api/progress/weekly [get]
func (c *ProgressController) WeeklyProgress(ctx *gin.Context) {
	learner, ok := resolveLearner(ctx, c.LearnerService)
	if !ok {
		return
	}

	days, err := c.AggregateService.WeeklyProgress(learner)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, days)
}

// @Summary Cups and completions on one day
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param childId query int false "Child ID (parent accounts)"
// @Success 200 {object} util.Response
// @Router /api/progress/daily [get]
func (c *ProgressController) DailyProgress(ctx *gin.Context) {
	day, err := time.Parse(util.DateFormat, ctx.Query("date"))
	if err != nil {
		util.BadRequest(ctx, "invalid date")
		return
	}
	learner, ok := resolveLearner(ctx, c.LearnerService)
	if !ok {
		return
	}

	progress, err := c.AggregateService.ProgressForDay(learner, day)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary Current learner counters
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param childId query int false "Child ID (parent accounts)"
// @Success 200 {object} util.Response
// @Router /api/progress/stats [get]
func (c *ProgressController) Stats(ctx *gin.Context) {
	learner, ok := resolveLearner(ctx, c.LearnerService)
	if !ok {
		return
	}
	util.Success(ctx, learner.Stats())
}

// @Summary Top learners by cups, with the caller's own standing included
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param scope query string false "class, school or global" default(global)
// @Param childId query int false "Child ID (parent accounts)"
// @Success 200 {object} util.Response
// @Router /api/leaderboard [get]
func (c *ProgressController) Leaderboard(ctx *gin.Context) {
	scope := service.LeaderboardScope(ctx.DefaultQuery("scope", string(service.LeaderboardGlobal)))
	switch scope {
	case service.LeaderboardClass, service.LeaderboardSchool, service.LeaderboardGlobal:
	default:
		util.BadRequest(ctx, "invalid scope, use class, school or global")
		return
	}

	learner, ok := resolveLearner(ctx, c.LearnerService)
	if !ok {
		return
	}

	entries, err := c.AggregateService.Leaderboard(ctx.Request.Context(), learner, scope)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNoClassAssigned), errors.Is(err, util.ErrNoSchoolAssigned):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, entries)
}
