package model

import (
	"time"
)

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleParent     UserRole = "parent"
	RoleTeacher    UserRole = "teacher"
	RoleSupervisor UserRole = "supervisor"
	RoleAdmin      UserRole = "admin"
)

const (
	LanguageRussian = "ru"
	LanguageKazakh  = "kz"
	LanguageEnglish = "en"
)

// MaxChildrenPerParent is enforced at child creation, outside this engine.
const MaxChildrenPerParent = 3

// swagger:model User
type User struct {
	BaseModel
	Email       string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password    string   `gorm:"size:100" json:"-"`
	FirstName   string   `gorm:"size:30" json:"firstName"`
	LastName    string   `gorm:"size:150" json:"lastName"`
	PhoneNumber string   `gorm:"size:17" json:"phoneNumber,omitempty"`
	Role        UserRole `gorm:"size:20;default:'student';index" json:"role"`
	IsActive    bool     `gorm:"default:false" json:"isActive"`
	IsStaff     bool     `gorm:"default:false" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// swagger:model School
type School struct {
	BaseModel
	Name         string `gorm:"size:150;not null" json:"name"`
	City         string `gorm:"size:150" json:"city"`
	Email        string `gorm:"size:100" json:"email"`
	SupervisorID *uint  `gorm:"uniqueIndex" json:"supervisorId,omitempty"`
}

func (School) TableName() string {
	return "schools"
}

// swagger:model SchoolClass
type SchoolClass struct {
	BaseModel
	SchoolID uint   `gorm:"index;not null" json:"schoolId"`
	Grade    int    `gorm:"not null" json:"grade"`
	Section  string `gorm:"size:1" json:"section"`
	Language string `gorm:"size:10;default:'ru'" json:"language"`
}

func (SchoolClass) TableName() string {
	return "school_classes"
}

// LearnerStats holds the mutable reward counters shared by students and
// children. Level is always recomputed from cups, never set independently.
type LearnerStats struct {
	Cups                uint       `gorm:"default:0" json:"cups"`
	Stars               uint       `gorm:"default:0" json:"stars"`
	Level               uint       `gorm:"default:1" json:"level"`
	Streak              uint       `gorm:"default:0" json:"streak"`
	LastTaskCompletedAt *time.Time `json:"lastTaskCompletedAt,omitempty"`
}

// swagger:model Student
type Student struct {
	BaseModel
	UserID        uint       `gorm:"uniqueIndex;not null" json:"userId"`
	User          *User      `json:"user,omitempty"`
	SchoolID      *uint      `gorm:"index" json:"schoolId,omitempty"`
	SchoolClassID *uint      `gorm:"index" json:"schoolClassId,omitempty"`
	Grade         int        `gorm:"index;not null" json:"grade"`
	Gender        string     `gorm:"size:1;default:'O'" json:"gender"`
	Language      string     `gorm:"size:10;default:'ru'" json:"language"`
	BirthDate     *time.Time `json:"birthDate,omitempty"`
	LearnerStats
}

func (Student) TableName() string {
	return "students"
}

// swagger:model Parent
type Parent struct {
	BaseModel
	UserID uint  `gorm:"uniqueIndex;not null" json:"userId"`
	User   *User `json:"user,omitempty"`
}

func (Parent) TableName() string {
	return "parents"
}

// swagger:model Child
type Child struct {
	BaseModel
	ParentID  uint       `gorm:"index;not null" json:"parentId"`
	FirstName string     `gorm:"size:30;not null" json:"firstName"`
	LastName  string     `gorm:"size:150" json:"lastName"`
	Grade     int        `gorm:"index;not null" json:"grade"`
	Gender    string     `gorm:"size:1;default:'O'" json:"gender"`
	Language  string     `gorm:"size:10;default:'ru'" json:"language"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	LearnerStats
}

func (Child) TableName() string {
	return "children"
}

// LevelRequirement maps a level to the cups needed to reach it. A learner's
// level is the highest level whose cups_required does not exceed their cups.
// swagger:model LevelRequirement
type LevelRequirement struct {
	BaseModel
	Level        uint `gorm:"uniqueIndex;not null" json:"level"`
	CupsRequired uint `gorm:"not null" json:"cupsRequired"`
}

func (LevelRequirement) TableName() string {
	return "level_requirements"
}

// LearnerKind tags the closed set of identities that can submit answers.
type LearnerKind string

const (
	LearnerStudent LearnerKind = "student"
	LearnerChild   LearnerKind = "child"
)

// Learner is the resolved submitting identity: exactly one of Student or
// Child is set, matching Kind. Callers switch on Kind exhaustively.
type Learner struct {
	Kind    LearnerKind
	Student *Student
	Child   *Child
}

func StudentLearner(s *Student) Learner {
	return Learner{Kind: LearnerStudent, Student: s}
}

func ChildLearner(c *Child) Learner {
	return Learner{Kind: LearnerChild, Child: c}
}

// Stats returns the learner's mutable counters, or nil for a malformed value.
func (l Learner) Stats() *LearnerStats {
	switch l.Kind {
	case LearnerStudent:
		return &l.Student.LearnerStats
	case LearnerChild:
		return &l.Child.LearnerStats
	}
	return nil
}

func (l Learner) ID() uint {
	switch l.Kind {
	case LearnerStudent:
		return l.Student.ID
	case LearnerChild:
		return l.Child.ID
	}
	return 0
}

func (l Learner) Grade() int {
	switch l.Kind {
	case LearnerStudent:
		return l.Student.Grade
	case LearnerChild:
		return l.Child.Grade
	}
	return 0
}

func (l Learner) Language() string {
	switch l.Kind {
	case LearnerStudent:
		return l.Student.Language
	case LearnerChild:
		return l.Child.Language
	}
	return ""
}
