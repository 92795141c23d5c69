package model

import "time"

type PlanDuration string

const (
	PlanFreeTrial PlanDuration = "free-trial"
	PlanMonthly   PlanDuration = "monthly"
	PlanSixMonth  PlanDuration = "6-month"
	PlanAnnual    PlanDuration = "annual"
)

// swagger:model Plan
type Plan struct {
	BaseModel
	Price     int64        `gorm:"default:0" json:"price"`
	Duration  PlanDuration `gorm:"size:10;uniqueIndex;not null" json:"duration"`
	IsEnabled bool         `gorm:"default:true" json:"isEnabled"`
}

func (Plan) TableName() string {
	return "plans"
}

// Subscription ties a user to a plan. Whether it grants access is decided by
// SubscriptionService.IsActive, not stored here: free trials are gated by
// child activity, everything else by EndDate.
// swagger:model Subscription
type Subscription struct {
	BaseModel
	UserID    uint       `gorm:"uniqueIndex;not null" json:"userId"`
	PlanID    uint       `gorm:"index;not null" json:"planId"`
	Plan      Plan       `json:"plan"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `gorm:"index" json:"endDate,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// swagger:model Payment
type Payment struct {
	BaseModel
	InvoiceID string        `gorm:"size:36;uniqueIndex;not null" json:"invoiceId"`
	UserID    uint          `gorm:"index;not null" json:"userId"`
	Duration  PlanDuration  `gorm:"size:10;not null" json:"duration"`
	Amount    int64         `gorm:"not null" json:"amount"`
	Phone     string        `gorm:"size:17" json:"phone,omitempty"`
	Email     string        `gorm:"size:100" json:"email"`
	Status    PaymentStatus `gorm:"size:10;default:'pending';index" json:"status"`
}

func (Payment) TableName() string {
	return "payments"
}
