package model

import (
	"encoding/json"
	"time"
)

// Answer is the append-only ledger row for one (learner, question) pair.
// Exactly one of StudentID/ChildID is set. The composite unique indexes are
// the at-most-one-reward guarantee: concurrent duplicate submissions collide
// there, not in application code. Rows are created once and never mutated.
// swagger:model Answer
type Answer struct {
	BaseModel
	StudentID *uint           `gorm:"index:idx_answers_student_question,unique" json:"studentId,omitempty"`
	ChildID   *uint           `gorm:"index:idx_answers_child_question,unique" json:"childId,omitempty"`
	QuestionID uint           `gorm:"index:idx_answers_student_question,unique;index:idx_answers_child_question,unique;not null" json:"questionId"`
	TaskID    uint            `gorm:"index;not null" json:"taskId"`
	Value     json.RawMessage `gorm:"type:json" json:"value"`
	IsCorrect bool            `gorm:"not null" json:"isCorrect"`
}

func (Answer) TableName() string {
	return "answers"
}

// TaskCompletion is derived: it exists only once every question of the task
// has an answer, and holds the correct/wrong split at finalization time.
// swagger:model TaskCompletion
type TaskCompletion struct {
	BaseModel
	StudentID   *uint     `gorm:"index:idx_completions_student_task,unique" json:"studentId,omitempty"`
	ChildID     *uint     `gorm:"index:idx_completions_child_task,unique" json:"childId,omitempty"`
	TaskID      uint      `gorm:"index:idx_completions_student_task,unique;index:idx_completions_child_task,unique;not null" json:"taskId"`
	Correct     int       `gorm:"default:0" json:"correct"`
	Wrong       int       `gorm:"default:0" json:"wrong"`
	CompletedAt time.Time `gorm:"index" json:"completedAt"`
}

func (TaskCompletion) TableName() string {
	return "task_completions"
}
