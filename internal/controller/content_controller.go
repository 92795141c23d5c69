package controller

import (
	"errors"

	"vunderkids_backend/internal/service"
	"vunderkids_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
	LearnerService *service.LearnerService
}

func NewContentController(contentService *service.ContentService, learnerService *service.LearnerService) *ContentController {
	return &ContentController{ContentService: contentService, LearnerService: learnerService}
}

// @Summary List courses for the learner's grade and language
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param childId query int false "Child ID (parent accounts)"
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *ContentController) ListCourses(ctx *gin.Context) {
	learner, ok := resolveLearner(ctx, c.LearnerService)
	if !ok {
		return
	}

	courses, err := c.ContentService.CoursesForLearner(learner)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary List sections of a course
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/sections [get]
func (c *ContentController) ListSections(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	sections, err := c.ContentService.Sections(courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "course not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sections)
}

// @Summary List chapters of a section
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} util.Response
// @Router /api/sections/{id}/chapters [get]
func (c *ContentController) ListChapters(ctx *gin.Context) {
	sectionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	chapters, err := c.ContentService.Chapters(sectionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, chapters)
}

// @Summary List lessons and tasks of a chapter
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path int true "Chapter ID"
// @Success 200 {object} util.Response
// @Router /api/chapters/{id}/contents [get]
func (c *ContentController) ListContents(ctx *gin.Context) {
	chapterID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	contents, err := c.ContentService.Contents(chapterID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, contents)
}

// @Summary List questions of a task
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} util.Response
// @Router /api/tasks/{id}/questions [get]
func (c *ContentController) ListTaskQuestions(ctx *gin.Context) {
	taskID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	questions, err := c.ContentService.TaskQuestions(ctx.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, util.ErrTaskNotFound) {
			util.NotFound(ctx, "task not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}
