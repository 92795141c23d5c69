package repository

import (
	"time"

	"vunderkids_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// WithTx returns a copy bound to the given transaction handle.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) FindStudentByUserID(userID uint) (*model.Student, error) {
	var student model.Student
	err := r.DB.Where("user_id = ?", userID).First(&student).Error
	return &student, err
}

func (r *UserRepository) FindStudentByID(id uint) (*model.Student, error) {
	var student model.Student
	err := r.DB.First(&student, id).Error
	return &student, err
}

func (r *UserRepository) FindParentByUserID(userID uint) (*model.Parent, error) {
	var parent model.Parent
	err := r.DB.Where("user_id = ?", userID).First(&parent).Error
	return &parent, err
}

func (r *UserRepository) FindChildByID(id uint) (*model.Child, error) {
	var child model.Child
	err := r.DB.First(&child, id).Error
	return &child, err
}

// FindChildOfParent resolves a child only when it belongs to the parent.
func (r *UserRepository) FindChildOfParent(parentID, childID uint) (*model.Child, error) {
	var child model.Child
	err := r.DB.Where("id = ? AND parent_id = ?", childID, parentID).First(&child).Error
	return &child, err
}

func (r *UserRepository) FindChildrenByParent(parentID uint) ([]model.Child, error) {
	var children []model.Child
	err := r.DB.Where("parent_id = ?", parentID).Find(&children).Error
	return children, err
}

func (r *UserRepository) CountChildrenByParent(parentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Child{}).Where("parent_id = ?", parentID).Count(&count).Error
	return count, err
}

func (r *UserRepository) CreateStudent(student *model.Student) error {
	return r.DB.Create(student).Error
}

func (r *UserRepository) CreateParent(parent *model.Parent) error {
	return r.DB.Create(parent).Error
}

func (r *UserRepository) CreateChild(child *model.Child) error {
	return r.DB.Create(child).Error
}

// AddReward increments cups and stars by the same unit in one UPDATE so
// concurrent submissions never lose counts.
func (r *UserRepository) AddReward(learner model.Learner, units int) error {
	updates := map[string]interface{}{
		"cups":  gorm.Expr("cups + ?", units),
		"stars": gorm.Expr("stars + ?", units),
	}
	switch learner.Kind {
	case model.LearnerChild:
		return r.DB.Model(&model.Child{}).Where("id = ?", learner.Child.ID).Updates(updates).Error
	default:
		return r.DB.Model(&model.Student{}).Where("id = ?", learner.Student.ID).Updates(updates).Error
	}
}

// SpendStars deducts stars only when the balance covers the cost; it reports
// whether a row was actually updated.
func (r *UserRepository) SpendStars(learner model.Learner, cost int) (bool, error) {
	var res *gorm.DB
	update := map[string]interface{}{"stars": gorm.Expr("stars - ?", cost)}
	switch learner.Kind {
	case model.LearnerChild:
		res = r.DB.Model(&model.Child{}).
			Where("id = ? AND stars >= ?", learner.Child.ID, cost).
			Updates(update)
	default:
		res = r.DB.Model(&model.Student{}).
			Where("id = ? AND stars >= ?", learner.Student.ID, cost).
			Updates(update)
	}
	return res.RowsAffected > 0, res.Error
}

// ReloadStats re-reads the learner's counters, typically inside a transaction
// after an atomic increment.
func (r *UserRepository) ReloadStats(learner model.Learner) (*model.LearnerStats, error) {
	switch learner.Kind {
	case model.LearnerChild:
		var child model.Child
		if err := r.DB.First(&child, learner.Child.ID).Error; err != nil {
			return nil, err
		}
		return &child.LearnerStats, nil
	default:
		var student model.Student
		if err := r.DB.First(&student, learner.Student.ID).Error; err != nil {
			return nil, err
		}
		return &student.LearnerStats, nil
	}
}

func (r *UserRepository) UpdateLevel(learner model.Learner, level uint) error {
	switch learner.Kind {
	case model.LearnerChild:
		return r.DB.Model(&model.Child{}).Where("id = ?", learner.Child.ID).Update("level", level).Error
	default:
		return r.DB.Model(&model.Student{}).Where("id = ?", learner.Student.ID).Update("level", level).Error
	}
}

func (r *UserRepository) UpdateStreak(learner model.Learner, streak uint, lastCompletedAt *time.Time) error {
	updates := map[string]interface{}{
		"streak":                 streak,
		"last_task_completed_at": lastCompletedAt,
	}
	switch learner.Kind {
	case model.LearnerChild:
		return r.DB.Model(&model.Child{}).Where("id = ?", learner.Child.ID).Updates(updates).Error
	default:
		return r.DB.Model(&model.Student{}).Where("id = ?", learner.Student.ID).Updates(updates).Error
	}
}

// ResetLapsedStreaks zeroes the streak of every learner whose last completion
// day is before the given cutoff. Learners with no completions are untouched.
func (r *UserRepository) ResetLapsedStreaks(cutoff time.Time) (int64, error) {
	var total int64

	res := r.DB.Model(&model.Student{}).
		Where("streak > 0 AND last_task_completed_at IS NOT NULL AND last_task_completed_at < ?", cutoff).
		Update("streak", 0)
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	res = r.DB.Model(&model.Child{}).
		Where("streak > 0 AND last_task_completed_at IS NOT NULL AND last_task_completed_at < ?", cutoff).
		Update("streak", 0)
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	return total, nil
}

func (r *UserRepository) TopStudentsByCups(grade, limit int) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.Preload("User").
		Where("grade = ?", grade).
		Order("cups DESC, id ASC").
		Limit(limit).
		Find(&students).Error
	return students, err
}

func (r *UserRepository) TopStudentsInClass(classID uint, limit int) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.Preload("User").
		Where("school_class_id = ?", classID).
		Order("cups DESC, id ASC").
		Limit(limit).
		Find(&students).Error
	return students, err
}

func (r *UserRepository) TopStudentsInSchool(schoolID uint, limit int) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.Preload("User").
		Where("school_id = ?", schoolID).
		Order("cups DESC, id ASC").
		Limit(limit).
		Find(&students).Error
	return students, err
}

func (r *UserRepository) TopChildrenByCups(grade, limit int) ([]model.Child, error) {
	var children []model.Child
	err := r.DB.Where("grade = ?", grade).
		Order("cups DESC, id ASC").
		Limit(limit).
		Find(&children).Error
	return children, err
}
