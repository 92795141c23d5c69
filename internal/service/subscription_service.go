package service

import (
	"errors"
	"sync"
	"time"

	"vunderkids_backend/internal/config"
	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/repository"
	"vunderkids_backend/internal/util"
	"vunderkids_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubscriptionService decides who has access. A free trial on a parent
// account is gated by child activity, everything else by the end date.
type SubscriptionService struct {
	SubscriptionRepo *repository.SubscriptionRepository
	UserRepo         *repository.UserRepository
	ProgressRepo     *repository.ProgressRepository

	Now func() time.Time

	mu     sync.RWMutex
	reward config.RewardConfig
}

func NewSubscriptionService(
	subscriptionRepo *repository.SubscriptionRepository,
	userRepo *repository.UserRepository,
	progressRepo *repository.ProgressRepository,
	reward config.RewardConfig,
) *SubscriptionService {
	return &SubscriptionService{
		SubscriptionRepo: subscriptionRepo,
		UserRepo:         userRepo,
		ProgressRepo:     progressRepo,
		Now:              time.Now,
		reward:           reward,
	}
}

func (s *SubscriptionService) SetRewardConfig(reward config.RewardConfig) {
	s.mu.Lock()
	s.reward = reward
	s.mu.Unlock()
}

func (s *SubscriptionService) freeTrialTaskLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reward.FreeTrialTaskLimit
}

// CalculateEndDate maps a plan duration to its expiry from the start date.
func CalculateEndDate(duration model.PlanDuration, start time.Time) time.Time {
	switch duration {
	case model.PlanFreeTrial:
		return start.AddDate(0, 0, 2)
	case model.PlanMonthly:
		return start.AddDate(0, 0, 30)
	case model.PlanSixMonth:
		return start.AddDate(0, 0, 180)
	case model.PlanAnnual:
		return start.AddDate(0, 0, 365)
	}
	return start
}

// Subscribe creates a subscription for the user, replacing an expired one.
// An existing subscription that is still active is an error.
func (s *SubscriptionService) Subscribe(userID uint, duration model.PlanDuration) (*model.Subscription, error) {
	plan, err := s.SubscriptionRepo.FindPlanByDuration(duration)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidPlan
		}
		return nil, err
	}

	now := s.Now()

	existing, err := s.SubscriptionRepo.FindByUserID(userID)
	if err == nil {
		if existing.EndDate == nil || existing.EndDate.After(now) {
			return nil, util.ErrActiveSubscription
		}
		if err := s.SubscriptionRepo.DeleteByUserID(userID); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	endDate := CalculateEndDate(duration, now)
	sub := &model.Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		Plan:      *plan,
		StartDate: now,
		EndDate:   &endDate,
	}
	if err := s.SubscriptionRepo.CreateSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// IsActive reports whether the user currently has access. For a parent on a
// free trial the activity rule decides: no children yet keeps the trial
// open, and any child past the task limit closes it, regardless of dates.
func (s *SubscriptionService) IsActive(userID uint) (bool, error) {
	sub, err := s.SubscriptionRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if sub.Plan.Duration == model.PlanFreeTrial {
		if parent, err := s.UserRepo.FindParentByUserID(userID); err == nil {
			return s.freeTrialActive(parent.ID)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
	}

	if sub.EndDate == nil {
		return true, nil
	}
	return sub.EndDate.After(s.Now()), nil
}

func (s *SubscriptionService) freeTrialActive(parentID uint) (bool, error) {
	children, err := s.UserRepo.FindChildrenByParent(parentID)
	if err != nil {
		return false, err
	}
	if len(children) == 0 {
		return true, nil
	}

	limit := int64(s.freeTrialTaskLimit())
	for _, child := range children {
		completed, err := s.ProgressRepo.CountCompletedTasksByChild(child.ID)
		if err != nil {
			return false, err
		}
		if completed >= limit {
			return false, nil
		}
	}
	return true, nil
}

// InitiatePayment opens a pending invoice for the chosen plan.
func (s *SubscriptionService) InitiatePayment(user *model.User, duration model.PlanDuration) (*model.Payment, error) {
	plan, err := s.SubscriptionRepo.FindPlanByDuration(duration)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidPlan
		}
		return nil, err
	}

	payment := &model.Payment{
		InvoiceID: uuid.NewString(),
		UserID:    user.ID,
		Duration:  duration,
		Amount:    plan.Price,
		Phone:     user.PhoneNumber,
		Email:     user.Email,
		Status:    model.PaymentPending,
	}
	if err := s.SubscriptionRepo.CreatePayment(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// ConfirmPayment settles an invoice. A successful settlement activates the
// paid subscription immediately.
func (s *SubscriptionService) ConfirmPayment(invoiceID string, success bool) (*model.Payment, error) {
	payment, err := s.SubscriptionRepo.FindPaymentByInvoiceID(invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPaymentNotFound
		}
		return nil, err
	}

	status := model.PaymentFailed
	if success {
		status = model.PaymentSuccess
	}
	if err := s.SubscriptionRepo.UpdatePaymentStatus(invoiceID, status); err != nil {
		return nil, err
	}
	payment.Status = status

	if success {
		if err := s.SubscriptionRepo.DeleteByUserID(payment.UserID); err != nil {
			return nil, err
		}
		if _, err := s.Subscribe(payment.UserID, payment.Duration); err != nil {
			return nil, err
		}
	}
	return payment, nil
}

// SweepExpired removes subscriptions past their end date. Runs nightly.
func (s *SubscriptionService) SweepExpired() error {
	removed, err := s.SubscriptionRepo.DeleteExpired(s.Now())
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.Log.Info("Removed expired subscriptions", zap.Int64("count", removed))
	}
	return nil
}
