package controller

import (
	"encoding/json"
	"errors"

	"vunderkids_backend/internal/service"
	"vunderkids_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	ProgressService *service.ProgressService
	ContentService  *service.ContentService
	LearnerService  *service.LearnerService
}

func NewQuestionController(
	progressService *service.ProgressService,
	contentService *service.ContentService,
	learnerService *service.LearnerService,
) *QuestionController {
	return &QuestionController{
		ProgressService: progressService,
		ContentService:  contentService,
		LearnerService:  learnerService,
	}
}

// @Summary Get one question
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	questionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	view, err := c.ContentService.Question(ctx.Request.Context(), questionID)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx, "question not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary Submit an answer to a question
// @Description Records the answer, grades it, and applies rewards. A second
// @Description submission for the same question changes nothing.
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param childId query int false "Child ID (parent accounts)"
// @Param body body object true "answer payload"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/answer [post]
func (c *QuestionController) SubmitAnswer(ctx *gin.Context) {
	questionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	learner, ok := resolveLearner(ctx, c.LearnerService)
	if !ok {
		return
	}

	var body struct {
		Answer json.RawMessage `json:"answer"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if len(body.Answer) == 0 {
		util.BadRequest(ctx, "answer is required")
		return
	}

	result, err := c.ProgressService.SubmitAnswer(learner, questionID, body.Answer)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx, "question not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Spend stars to play a game
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param childId query int false "Child ID (parent accounts)"
// @Success 200 {object} util.Response
// @Router /api/play-game [post]
func (c *QuestionController) PlayGame(ctx *gin.Context) {
	learner, ok := resolveLearner(ctx, c.LearnerService)
	if !ok {
		return
	}

	stats, err := c.ProgressService.SpendStars(learner)
	if err != nil {
		if errors.Is(err, util.ErrNotEnoughStars) {
			util.BadRequest(ctx, "not enough stars")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
