package repository

import (
	"vunderkids_backend/internal/model"

	"gorm.io/gorm"
)

type OlympiadRepository struct {
	DB *gorm.DB
}

func NewOlympiadRepository(db *gorm.DB) *OlympiadRepository {
	return &OlympiadRepository{DB: db}
}

func (r *OlympiadRepository) WithTx(tx *gorm.DB) *OlympiadRepository {
	return &OlympiadRepository{DB: tx}
}

func (r *OlympiadRepository) FindByID(id uint) (*model.Olympiad, error) {
	var olympiad model.Olympiad
	err := r.DB.First(&olympiad, id).Error
	return &olympiad, err
}

// FindDisplayed lists every displayed olympiad, newest first. Staff view.
func (r *OlympiadRepository) FindDisplayed() ([]model.Olympiad, error) {
	var olympiads []model.Olympiad
	err := r.DB.Where("is_displayed = ?", true).
		Order("start_date DESC").
		Find(&olympiads).Error
	return olympiads, err
}

// FindDisplayedForLearner lists displayed olympiads matching the learner's
// grade and language, excluding teacher olympiads.
func (r *OlympiadRepository) FindDisplayedForLearner(grade int, language string) ([]model.Olympiad, error) {
	var olympiads []model.Olympiad
	err := r.DB.Where("is_displayed = ? AND is_for_teachers = ? AND grade = ? AND language = ?",
		true, false, grade, language).
		Order("start_date DESC").
		Find(&olympiads).Error
	return olympiads, err
}

func (r *OlympiadRepository) FindDisplayedForTeachers() ([]model.Olympiad, error) {
	var olympiads []model.Olympiad
	err := r.DB.Where("is_displayed = ? AND is_for_teachers = ?", true, true).
		Order("start_date DESC").
		Find(&olympiads).Error
	return olympiads, err
}

func (r *OlympiadRepository) FindQuestionByID(id uint) (*model.OlympiadQuestion, error) {
	var question model.OlympiadQuestion
	err := r.DB.First(&question, id).Error
	return &question, err
}

func (r *OlympiadRepository) FindQuestionsByOlympiad(olympiadID uint) ([]model.OlympiadQuestion, error) {
	var questions []model.OlympiadQuestion
	err := r.DB.Where("olympiad_id = ?", olympiadID).
		Order("id ASC").
		Find(&questions).Error
	return questions, err
}

func (r *OlympiadRepository) CreateAnswer(answer *model.OlympiadAnswer) error {
	return r.DB.Create(answer).Error
}

func (r *OlympiadRepository) FindAnswer(learner model.Learner, questionID uint) (*model.OlympiadAnswer, error) {
	var answer model.OlympiadAnswer
	err := r.DB.Scopes(learnerScope(learner)).
		Where("question_id = ?", questionID).
		First(&answer).Error
	return &answer, err
}

func (r *OlympiadRepository) CountCorrectByOlympiad(learner model.Learner, olympiadID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.OlympiadAnswer{}).
		Scopes(learnerScope(learner)).
		Where("olympiad_id = ? AND is_correct = ?", olympiadID, true).
		Count(&count).Error
	return count, err
}

func (r *OlympiadRepository) CountAnswersByOlympiad(learner model.Learner, olympiadID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.OlympiadAnswer{}).
		Scopes(learnerScope(learner)).
		Where("olympiad_id = ?", olympiadID).
		Count(&count).Error
	return count, err
}

func (r *OlympiadRepository) CreateOlympiad(olympiad *model.Olympiad) error {
	return r.DB.Create(olympiad).Error
}

func (r *OlympiadRepository) CreateQuestion(question *model.OlympiadQuestion) error {
	return r.DB.Create(question).Error
}
