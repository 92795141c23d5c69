package service

import (
	"context"
	"encoding/json"
	"errors"

	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/repository"
	"vunderkids_backend/internal/util"

	"gorm.io/gorm"
)

// QuestionView is the learner-facing shape of a question: options and media
// URLs, never the correct answer.
type QuestionView struct {
	ID           uint               `json:"id"`
	TaskID       uint               `json:"taskId"`
	Title        string             `json:"title"`
	QuestionText string             `json:"questionText"`
	QuestionType model.QuestionType `json:"questionType"`
	Options      json.RawMessage    `json:"options,omitempty"`
	Template     string             `json:"template"`
	AudioURL     string             `json:"audioUrl,omitempty"`
	Images       []QuestionImageView `json:"images,omitempty"`
}

type QuestionImageView struct {
	OptionID uint   `json:"optionId"`
	URL      string `json:"url"`
}

// ContentService serves the course tree and question payloads.
type ContentService struct {
	ContentRepo *repository.ContentRepository
	Storage     *StorageService
}

func NewContentService(contentRepo *repository.ContentRepository, storage *StorageService) *ContentService {
	return &ContentService{ContentRepo: contentRepo, Storage: storage}
}

// CoursesForLearner lists the courses matching the learner's grade and
// language.
func (s *ContentService) CoursesForLearner(learner model.Learner) ([]model.Course, error) {
	return s.ContentRepo.FindCoursesByGradeAndLanguage(learner.Grade(), learner.Language())
}

func (s *ContentService) Course(courseID uint) (*model.Course, error) {
	course, err := s.ContentRepo.FindCourseByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *ContentService) Sections(courseID uint) ([]model.Section, error) {
	if _, err := s.Course(courseID); err != nil {
		return nil, err
	}
	return s.ContentRepo.FindSectionsByCourse(courseID)
}

func (s *ContentService) Chapters(sectionID uint) ([]model.Chapter, error) {
	return s.ContentRepo.FindChaptersBySection(sectionID)
}

func (s *ContentService) Contents(chapterID uint) ([]model.Content, error) {
	return s.ContentRepo.FindContentsByChapter(chapterID)
}

// TaskQuestions lists the learner-facing views of one task's questions.
func (s *ContentService) TaskQuestions(ctx context.Context, taskID uint) ([]QuestionView, error) {
	if _, err := s.ContentRepo.FindTaskByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTaskNotFound
		}
		return nil, err
	}

	questions, err := s.ContentRepo.FindQuestionsByTask(taskID)
	if err != nil {
		return nil, err
	}

	views := make([]QuestionView, 0, len(questions))
	for i := range questions {
		views = append(views, s.questionView(ctx, &questions[i]))
	}
	return views, nil
}

func (s *ContentService) Question(ctx context.Context, questionID uint) (*QuestionView, error) {
	question, err := s.ContentRepo.FindQuestionByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	view := s.questionView(ctx, question)
	return &view, nil
}

func (s *ContentService) questionView(ctx context.Context, q *model.Question) QuestionView {
	view := QuestionView{
		ID:           q.ID,
		TaskID:       q.TaskID,
		Title:        q.Title,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Options:      q.Options,
		Template:     q.Template,
	}
	if s.Storage != nil {
		view.AudioURL = s.Storage.PresignedURL(ctx, q.AudioKey)
		for _, img := range q.Images {
			if u := s.Storage.PresignedURL(ctx, img.ObjectKey); u != "" {
				view.Images = append(view.Images, QuestionImageView{OptionID: img.OptionID, URL: u})
			}
		}
	}
	return view
}
