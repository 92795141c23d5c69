package model

import "encoding/json"

type CourseType string

const (
	CourseRegular CourseType = "regular"
)

// ContentType distinguishes the two leaf kinds under a chapter.
type ContentType string

const (
	ContentTask   ContentType = "task"
	ContentLesson ContentType = "lesson"
)

// QuestionType is the closed set of answer schemas the validator understands.
type QuestionType string

const (
	MultipleChoiceText   QuestionType = "multiple_choice_text"
	MultipleChoiceImages QuestionType = "multiple_choice_images"
	DragAndDropText      QuestionType = "drag_and_drop_text"
	DragAndDropImages    QuestionType = "drag_and_drop_images"
	TrueFalse            QuestionType = "true_false"
	MarkAll              QuestionType = "mark_all"
	NumberLine           QuestionType = "number_line"
	DragPosition         QuestionType = "drag_position"
)

// swagger:model Course
type Course struct {
	BaseModel
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	CourseType  CourseType `gorm:"size:50;default:'regular'" json:"courseType"`
	Grade       int        `gorm:"index;not null" json:"grade"`
	Language    string     `gorm:"size:10;default:'ru'" json:"language"`
	CreatedByID uint       `gorm:"index" json:"createdById"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Section
type Section struct {
	BaseModel
	CourseID    uint   `gorm:"index;not null" json:"courseId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Order       int    `gorm:"column:sort_order;default:0" json:"order"`
}

func (Section) TableName() string {
	return "sections"
}

// swagger:model Chapter
type Chapter struct {
	BaseModel
	SectionID   uint   `gorm:"index;not null" json:"sectionId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Order       int    `gorm:"column:sort_order;default:0" json:"order"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// Content is a chapter leaf: a lesson to watch or a task with questions.
// swagger:model Content
type Content struct {
	BaseModel
	ChapterID   uint        `gorm:"index;not null" json:"chapterId"`
	Title       string      `gorm:"size:255;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	Order       int         `gorm:"column:sort_order;default:0" json:"order"`
	ContentType ContentType `gorm:"size:10;not null" json:"contentType"`
	VideoURL    string      `gorm:"size:255" json:"videoUrl,omitempty"`
}

func (Content) TableName() string {
	return "contents"
}

// Question belongs to a task content row. CorrectAnswer and Options are raw
// JSON whose shape depends on QuestionType; the engine never edits them.
// swagger:model Question
type Question struct {
	BaseModel
	TaskID        uint            `gorm:"index;not null" json:"taskId"`
	Title         string          `gorm:"size:100" json:"title"`
	QuestionText  string          `gorm:"type:text" json:"questionText"`
	QuestionType  QuestionType    `gorm:"size:50;not null" json:"questionType"`
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	CorrectAnswer json.RawMessage `gorm:"type:json" json:"-"`
	Template      string          `gorm:"size:20;default:'1'" json:"template"`
	AudioKey      string          `gorm:"size:255" json:"-"`
	Images        []QuestionImage `gorm:"foreignKey:QuestionID" json:"images,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model QuestionImage
type QuestionImage struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	OptionID   uint   `gorm:"default:0" json:"optionId"`
	ObjectKey  string `gorm:"size:255;not null" json:"-"`
}

func (QuestionImage) TableName() string {
	return "question_images"
}
