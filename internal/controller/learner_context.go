package controller

import (
	"errors"
	"strconv"

	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/service"
	"vunderkids_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// resolveLearner maps the authenticated user (plus the optional childId
// query parameter for parents) to a learner, writing the error response
// itself when resolution fails.
func resolveLearner(ctx *gin.Context, learnerService *service.LearnerService) (model.Learner, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return model.Learner{}, false
	}

	var childID *uint
	if raw := ctx.Query("childId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			util.BadRequest(ctx, "invalid child id")
			return model.Learner{}, false
		}
		v := uint(id)
		childID = &v
	}

	learner, err := learnerService.Resolve(user.UserID, user.Role, childID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAmbiguousLearner):
			util.BadRequest(ctx, "child id is required for parent accounts")
		case errors.Is(err, util.ErrChildNotFound):
			util.NotFound(ctx, "child not found")
		case errors.Is(err, util.ErrStudentNotFound), errors.Is(err, util.ErrUserNotFound):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return model.Learner{}, false
	}
	return learner, true
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
