package repository

import (
	"time"

	"vunderkids_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

// learnerScope narrows a query to the rows owned by the learner, matching the
// exactly-one-of student_id/child_id column layout.
func learnerScope(learner model.Learner) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch learner.Kind {
		case model.LearnerChild:
			return db.Where("child_id = ?", learner.Child.ID)
		default:
			return db.Where("student_id = ?", learner.Student.ID)
		}
	}
}

func (r *ProgressRepository) CreateAnswer(answer *model.Answer) error {
	return r.DB.Create(answer).Error
}

func (r *ProgressRepository) FindAnswer(learner model.Learner, questionID uint) (*model.Answer, error) {
	var answer model.Answer
	err := r.DB.Scopes(learnerScope(learner)).
		Where("question_id = ?", questionID).
		First(&answer).Error
	return &answer, err
}

func (r *ProgressRepository) FindAnswersByTask(learner model.Learner, taskID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.Scopes(learnerScope(learner)).
		Where("task_id = ?", taskID).
		Order("question_id ASC").
		Find(&answers).Error
	return answers, err
}

func (r *ProgressRepository) CountAnswersByTask(learner model.Learner, taskID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Answer{}).
		Scopes(learnerScope(learner)).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count, err
}

// CountCorrectWrongByTask returns the correct/wrong split across the
// learner's answers for one task.
func (r *ProgressRepository) CountCorrectWrongByTask(learner model.Learner, taskID uint) (int, int, error) {
	type split struct {
		Correct int
		Wrong   int
	}
	var s split
	err := r.DB.Model(&model.Answer{}).
		Scopes(learnerScope(learner)).
		Where("task_id = ?", taskID).
		Select("SUM(CASE WHEN is_correct THEN 1 ELSE 0 END) AS correct, SUM(CASE WHEN is_correct THEN 0 ELSE 1 END) AS wrong").
		Scan(&s).Error
	return s.Correct, s.Wrong, err
}

func (r *ProgressRepository) CreateCompletion(completion *model.TaskCompletion) error {
	return r.DB.Create(completion).Error
}

func (r *ProgressRepository) FindCompletion(learner model.Learner, taskID uint) (*model.TaskCompletion, error) {
	var completion model.TaskCompletion
	err := r.DB.Scopes(learnerScope(learner)).
		Where("task_id = ?", taskID).
		First(&completion).Error
	return &completion, err
}

func (r *ProgressRepository) CountCompletedTasks(learner model.Learner) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TaskCompletion{}).
		Scopes(learnerScope(learner)).
		Count(&count).Error
	return count, err
}

// CountCompletedAmong counts the learner's completions within a task set.
// An empty set short-circuits to zero.
func (r *ProgressRepository) CountCompletedAmong(learner model.Learner, taskIDs []uint) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&model.TaskCompletion{}).
		Scopes(learnerScope(learner)).
		Where("task_id IN ?", taskIDs).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CompletionsBetween(learner model.Learner, from, to time.Time) ([]model.TaskCompletion, error) {
	var completions []model.TaskCompletion
	err := r.DB.Scopes(learnerScope(learner)).
		Where("completed_at >= ? AND completed_at < ?", from, to).
		Order("completed_at ASC").
		Find(&completions).Error
	return completions, err
}

// CountCompletedTasksByChild backs the free-trial activity gate.
func (r *ProgressRepository) CountCompletedTasksByChild(childID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TaskCompletion{}).
		Where("child_id = ?", childID).
		Count(&count).Error
	return count, err
}
