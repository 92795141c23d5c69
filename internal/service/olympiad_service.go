package service

import (
	"encoding/json"
	"errors"
	"time"

	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/repository"
	"vunderkids_backend/internal/util"

	"gorm.io/gorm"
)

// OlympiadResult summarizes a learner's standing in one olympiad.
type OlympiadResult struct {
	OlympiadID     uint `json:"olympiadId"`
	TotalQuestions int  `json:"totalQuestions"`
	Answered       int  `json:"answered"`
	Correct        int  `json:"correct"`
}

// OlympiadService records competition answers. Grading reuses the task
// validator but olympiad answers never touch cups, stars or streaks.
type OlympiadService struct {
	OlympiadRepo *repository.OlympiadRepository

	Now func() time.Time
}

func NewOlympiadService(olympiadRepo *repository.OlympiadRepository) *OlympiadService {
	return &OlympiadService{
		OlympiadRepo: olympiadRepo,
		Now:          time.Now,
	}
}

// List is the staff view: every displayed olympiad regardless of audience.
func (s *OlympiadService) List() ([]model.Olympiad, error) {
	return s.OlympiadRepo.FindDisplayed()
}

// ListForLearner narrows the listing to the learner's grade and language.
func (s *OlympiadService) ListForLearner(learner model.Learner) ([]model.Olympiad, error) {
	return s.OlympiadRepo.FindDisplayedForLearner(learner.Grade(), learner.Language())
}

func (s *OlympiadService) ListForTeachers() ([]model.Olympiad, error) {
	return s.OlympiadRepo.FindDisplayedForTeachers()
}

func (s *OlympiadService) Questions(olympiadID uint) ([]model.OlympiadQuestion, error) {
	if _, err := s.OlympiadRepo.FindByID(olympiadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrOlympiadNotFound
		}
		return nil, err
	}
	return s.OlympiadRepo.FindQuestionsByOlympiad(olympiadID)
}

// SubmitAnswer grades and records one olympiad answer. Submissions outside
// the olympiad window are rejected; duplicates come back already-answered.
func (s *OlympiadService) SubmitAnswer(learner model.Learner, questionID uint, value json.RawMessage) (*SubmitResult, error) {
	question, err := s.OlympiadRepo.FindQuestionByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	olympiad, err := s.OlympiadRepo.FindByID(question.OlympiadID)
	if err != nil {
		return nil, err
	}
	if !olympiad.IsRunning(s.Now()) {
		return nil, util.ErrOlympiadClosed
	}

	if existing, err := s.OlympiadRepo.FindAnswer(learner, questionID); err == nil {
		return &SubmitResult{AlreadyAnswered: true, IsCorrect: existing.IsCorrect}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	isCorrect := NewAnswerValidator().Validate(question.QuestionType, question.CorrectAnswer, value)

	answer := &model.OlympiadAnswer{
		QuestionID: questionID,
		OlympiadID: question.OlympiadID,
		Value:      value,
		IsCorrect:  isCorrect,
	}
	switch learner.Kind {
	case model.LearnerChild:
		answer.ChildID = &learner.Child.ID
	default:
		answer.StudentID = &learner.Student.ID
	}

	if err := s.OlympiadRepo.CreateAnswer(answer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := s.OlympiadRepo.FindAnswer(learner, questionID)
			if ferr != nil {
				return nil, ferr
			}
			return &SubmitResult{AlreadyAnswered: true, IsCorrect: existing.IsCorrect}, nil
		}
		return nil, err
	}

	return &SubmitResult{IsCorrect: isCorrect}, nil
}

func (s *OlympiadService) Result(learner model.Learner, olympiadID uint) (*OlympiadResult, error) {
	questions, err := s.Questions(olympiadID)
	if err != nil {
		return nil, err
	}
	answered, err := s.OlympiadRepo.CountAnswersByOlympiad(learner, olympiadID)
	if err != nil {
		return nil, err
	}
	correct, err := s.OlympiadRepo.CountCorrectByOlympiad(learner, olympiadID)
	if err != nil {
		return nil, err
	}

	return &OlympiadResult{
		OlympiadID:     olympiadID,
		TotalQuestions: len(questions),
		Answered:       int(answered),
		Correct:        int(correct),
	}, nil
}
