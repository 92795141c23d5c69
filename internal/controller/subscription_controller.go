package controller

import (
	"errors"

	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/repository"
	"vunderkids_backend/internal/service"
	"vunderkids_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SubscriptionController struct {
	SubscriptionService *service.SubscriptionService
	UserRepo            *repository.UserRepository
}

func NewSubscriptionController(subscriptionService *service.SubscriptionService, userRepo *repository.UserRepository) *SubscriptionController {
	return &SubscriptionController{SubscriptionService: subscriptionService, UserRepo: userRepo}
}

// @Summary List available plans
// @Tags subscriptions
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/plans [get]
func (c *SubscriptionController) ListPlans(ctx *gin.Context) {
	plans, err := c.SubscriptionService.SubscriptionRepo.FindPlans()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, plans)
}

// @Summary Start a free trial
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Router /api/subscriptions/free-trial [post]
func (c *SubscriptionController) StartFreeTrial(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sub, err := c.SubscriptionService.Subscribe(user.UserID, model.PlanFreeTrial)
	if err != nil {
		if errors.Is(err, util.ErrActiveSubscription) {
			util.BadRequest(ctx, "subscription already active")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// @Summary Current subscription status
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/subscriptions/me [get]
func (c *SubscriptionController) MySubscription(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	active, err := c.SubscriptionService.IsActive(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	sub, err := c.SubscriptionService.SubscriptionRepo.FindByUserID(user.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Success(ctx, gin.H{"isActive": false})
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"isActive": active, "subscription": sub})
}

// @Summary Open an invoice for a paid plan
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "{duration}"
// @Success 201 {object} util.Response
// @Router /api/payments [post]
func (c *SubscriptionController) InitiatePayment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var body struct {
		Duration model.PlanDuration `json:"duration"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	account, err := c.UserRepo.FindByID(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	payment, err := c.SubscriptionService.InitiatePayment(account, body.Duration)
	if err != nil {
		if errors.Is(err, util.ErrInvalidPlan) {
			util.BadRequest(ctx, "unknown plan")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, payment)
}

// @Summary Settle an invoice
// @Description Payment provider callback. A successful settlement activates
// @Description the subscription.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param body body object true "{invoiceId, success}"
// @Success 200 {object} util.Response
// @Router /api/payments/confirm [post]
func (c *SubscriptionController) ConfirmPayment(ctx *gin.Context) {
	var body struct {
		InvoiceID string `json:"invoiceId"`
		Success   bool   `json:"success"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	payment, err := c.SubscriptionService.ConfirmPayment(body.InvoiceID, body.Success)
	if err != nil {
		if errors.Is(err, util.ErrPaymentNotFound) {
			util.NotFound(ctx, "payment not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, payment)
}
