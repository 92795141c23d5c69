package controller

import (
	"encoding/json"
	"errors"

	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/service"
	"vunderkids_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type OlympiadController struct {
	OlympiadService *service.OlympiadService
	LearnerService  *service.LearnerService
}

func NewOlympiadController(olympiadService *service.OlympiadService, learnerService *service.LearnerService) *OlympiadController {
	return &OlympiadController{OlympiadService: olympiadService, LearnerService: learnerService}
}

// @Summary List visible olympiads
// @Description Learners see olympiads for their grade and language; teachers see teacher olympiads; staff see everything displayed.
// @Tags olympiads
// @Produce json
// @Security BearerAuth
// @Param childId query int false "Child ID (parent accounts)"
// @Success 200 {object} util.Response
// @Router /api/olympiads [get]
func (c *OlympiadController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var (
		olympiads []model.Olympiad
		err       error
	)
	switch user.Role {
	case model.RoleStudent, model.RoleParent:
		learner, ok := resolveLearner(ctx, c.LearnerService)
		if !ok {
			return
		}
		olympiads, err = c.OlympiadService.ListForLearner(learner)
	case model.RoleTeacher:
		olympiads, err = c.OlympiadService.ListForTeachers()
	default:
		olympiads, err = c.OlympiadService.List()
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, olympiads)
}

// @Summary List questions of an olympiad
// @Tags olympiads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Olympiad ID"
// @Success 200 {object} util.Response
// @Router /api/olympiads/{id}/questions [get]
func (c *OlympiadController) Questions(ctx *gin.Context) {
	olympiadID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	questions, err := c.OlympiadService.Questions(olympiadID)
	if err != nil {
		if errors.Is(err, util.ErrOlympiadNotFound) {
			util.NotFound(ctx, "olympiad not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// @Summary Submit an olympiad answer
// @Tags olympiads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Olympiad question ID"
// @Param childId query int false "Child ID (parent accounts)"
// @Param body body object true "answer payload"
// @Success 200 {object} util.Response
// @Router /api/olympiad-questions/{id}/answer [post]
func (c *OlympiadController) SubmitAnswer(ctx *gin.Context) {
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

	result, err := c.OlympiadService.SubmitAnswer(learner, questionID, body.Answer)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx, "question not found")
		case errors.Is(err, util.ErrOlympiadClosed):
			util.BadRequest(ctx, "olympiad is not running")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// @Summary Learner standing in one olympiad
// @Tags olympiads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Olympiad ID"
// @Param childId query int false "Child ID (parent accounts)"
// @Success 200 {object} util.Response
// @Router /api/olympiads/{id}/result [get]
func (c *OlympiadController) Result(ctx *gin.Context) {
	olympiadID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	learner, ok := resolveLearner(ctx, c.LearnerService)
	if !ok {
		return
	}

	result, err := c.OlympiadService.Result(learner, olympiadID)
	if err != nil {
		if errors.Is(err, util.ErrOlympiadNotFound) {
			util.NotFound(ctx, "olympiad not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
