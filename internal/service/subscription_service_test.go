package service

import (
	"testing"
	"time"

	"vunderkids_backend/internal/config"
	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/repository"
)

func newSubscriptionEnv(t *testing.T) (*testEnv, *SubscriptionService) {
	t.Helper()
	env := newTestEnv(t)

	for _, plan := range []model.Plan{
		{Duration: model.PlanFreeTrial, Price: 0, IsEnabled: true},
		{Duration: model.PlanMonthly, Price: 1000, IsEnabled: true},
		{Duration: model.PlanSixMonth, Price: 5000, IsEnabled: true},
		{Duration: model.PlanAnnual, Price: 10000, IsEnabled: true},
	} {
		if err := env.db.Create(&plan).Error; err != nil {
			t.Fatal(err)
		}
	}

	svc := NewSubscriptionService(
		repository.NewSubscriptionRepository(env.db),
		env.userRepo,
		repository.NewProgressRepository(env.db),
		config.RewardConfig{QuestionReward: 1, FreeTrialTaskLimit: 10, GameStarCost: 20},
	)
	return env, svc
}

func seedParentWithChildren(t *testing.T, env *testEnv, childCount int) (*model.User, []model.Child) {
	t.Helper()
	user := &model.User{Email: "parent@test.local", Role: model.RoleParent, IsActive: true}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatal(err)
	}
	parent := &model.Parent{UserID: user.ID}
	if err := env.db.Create(parent).Error; err != nil {
		t.Fatal(err)
	}

	children := make([]model.Child, 0, childCount)
	for i := 0; i < childCount; i++ {
		child := model.Child{ParentID: parent.ID, FirstName: "Kid", Grade: 1}
		if err := env.db.Create(&child).Error; err != nil {
			t.Fatal(err)
		}
		children = append(children, child)
	}
	return user, children
}

func completeTasks(t *testing.T, env *testEnv, childID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		tc := model.TaskCompletion{
			ChildID:     &childID,
			TaskID:      uint(1000*int(childID) + i),
			Correct:     1,
			CompletedAt: time.Now(),
		}
		if err := env.db.Create(&tc).Error; err != nil {
			t.Fatal(err)
		}
	}
}

func TestCalculateEndDate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		duration model.PlanDuration
		wantDays int
	}{
		{model.PlanFreeTrial, 2},
		{model.PlanMonthly, 30},
		{model.PlanSixMonth, 180},
		{model.PlanAnnual, 365},
	}
	for _, tt := range tests {
		got := CalculateEndDate(tt.duration, start)
		want := start.AddDate(0, 0, tt.wantDays)
		if !got.Equal(want) {
			t.Errorf("CalculateEndDate(%s) = %v, want %v", tt.duration, got, want)
		}
	}
}

func TestFreeTrialNoChildrenStaysActive(t *testing.T) {
	env, svc := newSubscriptionEnv(t)
	user, _ := seedParentWithChildren(t, env, 0)

	if _, err := svc.Subscribe(user.ID, model.PlanFreeTrial); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// Even far past the trial's end date, a parent with no children keeps
	// access: the activity rule decides for free trials.
	svc.Now = fixedClock(time.Now().AddDate(0, 0, 30))

	active, err := svc.IsActive(user.ID)
	if err != nil {
		t.Fatalf("IsActive: %v", err)
	}
	if !active {
		t.Error("free trial with no children must stay active")
	}
}

func TestFreeTrialChildActivityGate(t *testing.T) {
	env, svc := newSubscriptionEnv(t)
	user, children := seedParentWithChildren(t, env, 2)

	if _, err := svc.Subscribe(user.ID, model.PlanFreeTrial); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	completeTasks(t, env, children[0].ID, 9)

	active, err := svc.IsActive(user.ID)
	if err != nil {
		t.Fatalf("IsActive: %v", err)
	}
	if !active {
		t.Error("9 completed tasks must keep the trial active")
	}

	completeTasks(t, env, children[0].ID, 1)

	active, err = svc.IsActive(user.ID)
	if err != nil {
		t.Fatalf("IsActive: %v", err)
	}
	if active {
		t.Error("10 completed tasks by one child must end the trial")
	}
}

func TestPaidSubscriptionExpiresByDate(t *testing.T) {
	env, svc := newSubscriptionEnv(t)
	user, _ := seedParentWithChildren(t, env, 0)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(start)
	if _, err := svc.Subscribe(user.ID, model.PlanMonthly); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	svc.Now = fixedClock(start.AddDate(0, 0, 29))
	if active, _ := svc.IsActive(user.ID); !active {
		t.Error("monthly plan must be active on day 29")
	}

	svc.Now = fixedClock(start.AddDate(0, 0, 31))
	if active, _ := svc.IsActive(user.ID); active {
		t.Error("monthly plan must be inactive on day 31")
	}
}

func TestSubscribeRejectsActiveSubscription(t *testing.T) {
	env, svc := newSubscriptionEnv(t)
	user, _ := seedParentWithChildren(t, env, 0)

	if _, err := svc.Subscribe(user.ID, model.PlanMonthly); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, err := svc.Subscribe(user.ID, model.PlanAnnual); err == nil {
		t.Error("expected error on double subscription")
	}

	// An expired subscription is replaced, not rejected.
	svc.Now = fixedClock(time.Now().AddDate(1, 0, 0))
	if _, err := svc.Subscribe(user.ID, model.PlanAnnual); err != nil {
		t.Errorf("Subscribe after expiry: %v", err)
	}
}

func TestPaymentFlow(t *testing.T) {
	env, svc := newSubscriptionEnv(t)
	user, _ := seedParentWithChildren(t, env, 0)

	account := &model.User{}
	if err := env.db.First(account, user.ID).Error; err != nil {
		t.Fatal(err)
	}

	payment, err := svc.InitiatePayment(account, model.PlanAnnual)
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}
	if payment.InvoiceID == "" || payment.Status != model.PaymentPending {
		t.Fatalf("unexpected payment: %+v", payment)
	}
	if payment.Amount != 10000 {
		t.Errorf("amount = %d, want plan price 10000", payment.Amount)
	}

	settled, err := svc.ConfirmPayment(payment.InvoiceID, true)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if settled.Status != model.PaymentSuccess {
		t.Errorf("status = %s, want success", settled.Status)
	}

	active, err := svc.IsActive(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !active {
		t.Error("successful payment must activate the subscription")
	}
}

func TestSweepExpired(t *testing.T) {
	env, svc := newSubscriptionEnv(t)
	user, _ := seedParentWithChildren(t, env, 0)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(start)
	if _, err := svc.Subscribe(user.ID, model.PlanMonthly); err != nil {
		t.Fatal(err)
	}

	svc.Now = fixedClock(start.AddDate(0, 0, 60))
	if err := svc.SweepExpired(); err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}

	var count int64
	env.db.Model(&model.Subscription{}).Count(&count)
	if count != 0 {
		t.Errorf("subscriptions remaining = %d, want 0", count)
	}
}
