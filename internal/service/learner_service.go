package service

import (
	"errors"

	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/repository"
	"vunderkids_backend/internal/util"

	"gorm.io/gorm"
)

// LearnerService resolves the submitting identity behind a request: a
// student account maps to its own learner record, a parent account acts on
// behalf of exactly one named child.
type LearnerService struct {
	UserRepo *repository.UserRepository
}

func NewLearnerService(userRepo *repository.UserRepository) *LearnerService {
	return &LearnerService{UserRepo: userRepo}
}

// Resolve maps (user, optional child id) to a learner. A parent request
// without a child id is ambiguous and rejected; a child id naming another
// parent's child resolves to not-found, never to that child.
func (s *LearnerService) Resolve(userID uint, role model.UserRole, childID *uint) (model.Learner, error) {
	switch role {
	case model.RoleStudent:
		student, err := s.UserRepo.FindStudentByUserID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.Learner{}, util.ErrStudentNotFound
			}
			return model.Learner{}, err
		}
		return model.StudentLearner(student), nil

	case model.RoleParent:
		if childID == nil {
			return model.Learner{}, util.ErrAmbiguousLearner
		}
		parent, err := s.UserRepo.FindParentByUserID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.Learner{}, util.ErrUserNotFound
			}
			return model.Learner{}, err
		}
		child, err := s.UserRepo.FindChildOfParent(parent.ID, *childID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.Learner{}, util.ErrChildNotFound
			}
			return model.Learner{}, err
		}
		return model.ChildLearner(child), nil
	}

	return model.Learner{}, util.ErrUserNotFound
}
