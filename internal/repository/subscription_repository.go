package repository

import (
	"time"

	"vunderkids_backend/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	DB *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

func (r *SubscriptionRepository) WithTx(tx *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: tx}
}

func (r *SubscriptionRepository) FindPlanByDuration(duration model.PlanDuration) (*model.Plan, error) {
	var plan model.Plan
	err := r.DB.Where("duration = ? AND is_enabled = ?", duration, true).First(&plan).Error
	return &plan, err
}

func (r *SubscriptionRepository) FindPlans() ([]model.Plan, error) {
	var plans []model.Plan
	err := r.DB.Where("is_enabled = ?", true).Order("price ASC").Find(&plans).Error
	return plans, err
}

func (r *SubscriptionRepository) CreateSubscription(sub *model.Subscription) error {
	return r.DB.Create(sub).Error
}

func (r *SubscriptionRepository) FindByUserID(userID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.DB.Preload("Plan").Where("user_id = ?", userID).First(&sub).Error
	return &sub, err
}

func (r *SubscriptionRepository) DeleteByUserID(userID uint) error {
	return r.DB.Where("user_id = ?", userID).Delete(&model.Subscription{}).Error
}

// DeleteExpired removes every subscription whose end date has passed. Used by
// the nightly sweep; free trials carry an end date too, so they age out here.
func (r *SubscriptionRepository) DeleteExpired(now time.Time) (int64, error) {
	res := r.DB.Where("end_date IS NOT NULL AND end_date < ?", now).Delete(&model.Subscription{})
	return res.RowsAffected, res.Error
}

func (r *SubscriptionRepository) CreatePayment(payment *model.Payment) error {
	return r.DB.Create(payment).Error
}

func (r *SubscriptionRepository) FindPaymentByInvoiceID(invoiceID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.DB.Where("invoice_id = ?", invoiceID).First(&payment).Error
	return &payment, err
}

func (r *SubscriptionRepository) UpdatePaymentStatus(invoiceID string, status model.PaymentStatus) error {
	return r.DB.Model(&model.Payment{}).
		Where("invoice_id = ?", invoiceID).
		Update("status", status).Error
}
