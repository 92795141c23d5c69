package model

import (
	"encoding/json"
	"time"
)

// swagger:model Olympiad
type Olympiad struct {
	BaseModel
	Name          string    `gorm:"size:255;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Language      string    `gorm:"size:10;default:'ru'" json:"language"`
	Price         int64     `gorm:"default:0" json:"price"`
	Grade         *int      `gorm:"index" json:"grade,omitempty"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	IsForTeachers bool      `gorm:"default:false" json:"isForTeachers"`
	IsDisplayed   bool      `gorm:"default:true" json:"isDisplayed"`
}

func (Olympiad) TableName() string {
	return "olympiads"
}

// IsRunning reports whether the olympiad accepts submissions at the instant.
func (o *Olympiad) IsRunning(now time.Time) bool {
	return o.StartDate.Before(now) && now.Before(o.EndDate)
}

// swagger:model OlympiadQuestion
type OlympiadQuestion struct {
	BaseModel
	OlympiadID    uint            `gorm:"index;not null" json:"olympiadId"`
	QuestionText  string          `gorm:"type:text" json:"questionText"`
	QuestionType  QuestionType    `gorm:"size:50;not null" json:"questionType"`
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	CorrectAnswer json.RawMessage `gorm:"type:json" json:"-"`
	Template      string          `gorm:"size:20;default:'1'" json:"template"`
	AudioKey      string          `gorm:"size:255" json:"-"`
}

func (OlympiadQuestion) TableName() string {
	return "olympiad_questions"
}

// OlympiadAnswer follows the same one-row-per-(learner, question) ledger rule
// as task answers, but carries no cups/stars/streak side effects.
// swagger:model OlympiadAnswer
type OlympiadAnswer struct {
	BaseModel
	StudentID  *uint           `gorm:"index:idx_olympiad_answers_student_question,unique" json:"studentId,omitempty"`
	ChildID    *uint           `gorm:"index:idx_olympiad_answers_child_question,unique" json:"childId,omitempty"`
	QuestionID uint            `gorm:"index:idx_olympiad_answers_student_question,unique;index:idx_olympiad_answers_child_question,unique;not null" json:"questionId"`
	OlympiadID uint            `gorm:"index;not null" json:"olympiadId"`
	Value      json.RawMessage `gorm:"type:json" json:"value"`
	IsCorrect  bool            `gorm:"not null" json:"isCorrect"`
}

func (OlympiadAnswer) TableName() string {
	return "olympiad_answers"
}
