package service

import (
	"testing"
	"time"

	"vunderkids_backend/internal/config"
	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/repository"
	"vunderkids_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// A single connection keeps the in-memory database alive and shared
	// across goroutines.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.User{},
		&model.School{},
		&model.SchoolClass{},
		&model.Student{},
		&model.Parent{},
		&model.Child{},
		&model.LevelRequirement{},
		&model.Course{},
		&model.Section{},
		&model.Chapter{},
		&model.Content{},
		&model.Question{},
		&model.QuestionImage{},
		&model.Answer{},
		&model.TaskCompletion{},
		&model.Plan{},
		&model.Subscription{},
		&model.Payment{},
		&model.Olympiad{},
		&model.OlympiadQuestion{},
		&model.OlympiadAnswer{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type testEnv struct {
	db       *gorm.DB
	progress *ProgressService
	userRepo *repository.UserRepository
	reward   config.RewardConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	progressRepo := repository.NewProgressRepository(db)
	contentRepo := repository.NewContentRepository(db)
	userRepo := repository.NewUserRepository(db)
	levelRepo := repository.NewLevelRepository(db)

	reward := config.RewardConfig{
		QuestionReward:     1,
		FreeTrialTaskLimit: 10,
		GameStarCost:       20,
	}

	return &testEnv{
		db:       db,
		progress: NewProgressService(progressRepo, contentRepo, userRepo, levelRepo, reward),
		userRepo: userRepo,
		reward:   reward,
	}
}

func (e *testEnv) seedLevels(t *testing.T, ladder map[uint]uint) {
	t.Helper()
	for level, cups := range ladder {
		if err := e.db.Create(&model.LevelRequirement{Level: level, CupsRequired: cups}).Error; err != nil {
			t.Fatalf("seed level %d: %v", level, err)
		}
	}
}

func (e *testEnv) seedStudent(t *testing.T) *model.Student {
	t.Helper()
	user := &model.User{Email: "student@test.local", Role: model.RoleStudent, IsActive: true}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	student := &model.Student{UserID: user.ID, Grade: 2, Language: model.LanguageRussian}
	student.Level = 1
	if err := e.db.Create(student).Error; err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return student
}

// seedTask creates a task with n single-choice questions whose correct
// answer is always 1. Returns the task id and question ids.
func (e *testEnv) seedTask(t *testing.T, n int) (uint, []uint) {
	t.Helper()
	task := &model.Content{ChapterID: 1, Title: "Counting", ContentType: model.ContentTask}
	if err := e.db.Create(task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		q := &model.Question{
			TaskID:        task.ID,
			QuestionText:  "pick one",
			QuestionType:  model.MultipleChoiceText,
			CorrectAnswer: []byte(`1`),
		}
		if err := e.db.Create(q).Error; err != nil {
			t.Fatalf("seed question: %v", err)
		}
		ids = append(ids, q.ID)
	}
	return task.ID, ids
}

func (e *testEnv) reloadStudent(t *testing.T, id uint) *model.Student {
	t.Helper()
	var student model.Student
	if err := e.db.First(&student, id).Error; err != nil {
		t.Fatalf("reload student: %v", err)
	}
	return &student
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
