package repository

import (
	"vunderkids_backend/internal/model"

	"gorm.io/gorm"
)

type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) WithTx(tx *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: tx}
}

func (r *ContentRepository) FindCourseByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

func (r *ContentRepository) FindCoursesByGradeAndLanguage(grade int, language string) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("grade = ? AND language = ?", grade, language).
		Order("id ASC").
		Find(&courses).Error
	return courses, err
}

func (r *ContentRepository) FindSectionsByCourse(courseID uint) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.Where("course_id = ?", courseID).
		Order("sort_order ASC, id ASC").
		Find(&sections).Error
	return sections, err
}

func (r *ContentRepository) FindSectionByID(id uint) (*model.Section, error) {
	var section model.Section
	err := r.DB.First(&section, id).Error
	return &section, err
}

func (r *ContentRepository) FindChaptersBySection(sectionID uint) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := r.DB.Where("section_id = ?", sectionID).
		Order("sort_order ASC, id ASC").
		Find(&chapters).Error
	return chapters, err
}

func (r *ContentRepository) FindChapterByID(id uint) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.DB.First(&chapter, id).Error
	return &chapter, err
}

func (r *ContentRepository) FindContentsByChapter(chapterID uint) ([]model.Content, error) {
	var contents []model.Content
	err := r.DB.Where("chapter_id = ?", chapterID).
		Order("sort_order ASC, id ASC").
		Find(&contents).Error
	return contents, err
}

func (r *ContentRepository) FindTaskByID(id uint) (*model.Content, error) {
	var content model.Content
	err := r.DB.Where("id = ? AND content_type = ?", id, model.ContentTask).
		First(&content).Error
	return &content, err
}

func (r *ContentRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var question model.Question
	err := r.DB.Preload("Images").First(&question, id).Error
	return &question, err
}

func (r *ContentRepository) FindQuestionsByTask(taskID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Preload("Images").
		Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&questions).Error
	return questions, err
}

// CountQuestionsByTask is the completion denominator: a task finalizes when
// the learner's answer count reaches this number.
func (r *ContentRepository) CountQuestionsByTask(taskID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("task_id = ?", taskID).Count(&count).Error
	return count, err
}

// TaskIDsUnderChapter lists the task content rows of one chapter.
func (r *ContentRepository) TaskIDsUnderChapter(chapterID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Content{}).
		Where("chapter_id = ? AND content_type = ?", chapterID, model.ContentTask).
		Pluck("id", &ids).Error
	return ids, err
}

// TaskIDsUnderSection lists every task under a section through its chapters.
func (r *ContentRepository) TaskIDsUnderSection(sectionID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Content{}).
		Joins("JOIN chapters ON chapters.id = contents.chapter_id").
		Where("chapters.section_id = ? AND contents.content_type = ? AND chapters.deleted_at IS NULL", sectionID, model.ContentTask).
		Pluck("contents.id", &ids).Error
	return ids, err
}

// TaskIDsUnderCourse lists every task of a course through sections and chapters.
func (r *ContentRepository) TaskIDsUnderCourse(courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Content{}).
		Joins("JOIN chapters ON chapters.id = contents.chapter_id").
		Joins("JOIN sections ON sections.id = chapters.section_id").
		Where("sections.course_id = ? AND contents.content_type = ? AND chapters.deleted_at IS NULL AND sections.deleted_at IS NULL", courseID, model.ContentTask).
		Pluck("contents.id", &ids).Error
	return ids, err
}

func (r *ContentRepository) CreateCourse(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *ContentRepository) CreateSection(section *model.Section) error {
	return r.DB.Create(section).Error
}

func (r *ContentRepository) CreateChapter(chapter *model.Chapter) error {
	return r.DB.Create(chapter).Error
}

func (r *ContentRepository) CreateContent(content *model.Content) error {
	return r.DB.Create(content).Error
}

func (r *ContentRepository) CreateQuestion(question *model.Question) error {
	return r.DB.Create(question).Error
}
