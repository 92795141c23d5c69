package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrStudentNotFound      = errors.New("student profile not found")
	ErrChildNotFound        = errors.New("child not found for this parent")
	ErrAmbiguousLearner     = errors.New("parent must provide child_id")
	ErrCourseNotFound       = errors.New("course not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrNoClassAssigned      = errors.New("student is not assigned to a class")
	ErrNoSchoolAssigned     = errors.New("student is not assigned to a school")
	ErrOlympiadNotFound     = errors.New("olympiad not found")
	ErrOlympiadClosed       = errors.New("olympiad is not running")
	ErrInvalidPlan          = errors.New("invalid plan name")
	ErrActiveSubscription   = errors.New("user already has an active subscription")
	ErrSubscriptionRequired = errors.New("active subscription required")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrNotEnoughStars       = errors.New("not enough stars")
)
