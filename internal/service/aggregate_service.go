package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"vunderkids_backend/internal/config"
	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/repository"
	"vunderkids_backend/internal/util"
	"vunderkids_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const leaderboardCacheTTL = 5 * time.Minute

// LeaderboardScope selects the population a student is ranked against.
// Children are always ranked globally within their grade.
type LeaderboardScope string

const (
	LeaderboardClass  LeaderboardScope = "class"
	LeaderboardSchool LeaderboardScope = "school"
	LeaderboardGlobal LeaderboardScope = "global"
)

// NodeProgress is the completion percentage for one tree node.
type NodeProgress struct {
	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
	Percentage     int `json:"percentage"`
}

// TaskProgress describes one task from a learner's point of view. The
// numbers come from the completion snapshot: a task still in progress
// reports zero, not a partial count.
type TaskProgress struct {
	TaskID         uint `json:"taskId"`
	TotalQuestions int  `json:"totalQuestions"`
	Answered       int  `json:"answered"`
	Correct        int  `json:"correct"`
	Wrong          int  `json:"wrong"`
	Percentage     int  `json:"percentage"`
	IsCompleted    bool `json:"isCompleted"`
}

// DayProgress is one day's totals: finished tasks, the correct/wrong split
// across them, and the cups those correct answers earned.
type DayProgress struct {
	Date           string `json:"date"`
	CompletedTasks int    `json:"completedTasks"`
	Correct        int    `json:"correct"`
	Wrong          int    `json:"wrong"`
	Cups           int    `json:"cups"`
}

// LeaderboardEntry is one row of a top-by-cups listing.
type LeaderboardEntry struct {
	LearnerID uint   `json:"learnerId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Cups      uint   `json:"cups"`
	Level     uint   `json:"level"`
	Rank      int    `json:"rank"`
}

// AggregateService computes read-side progress numbers. Everything here is
// derived from the ledgers; nothing writes.
type AggregateService struct {
	ProgressRepo *repository.ProgressRepository
	ContentRepo  *repository.ContentRepository
	UserRepo     *repository.UserRepository
	Redis        *redis.Client

	Now func() time.Time

	mu     sync.RWMutex
	reward config.RewardConfig
}

func NewAggregateService(
	progressRepo *repository.ProgressRepository,
	contentRepo *repository.ContentRepository,
	userRepo *repository.UserRepository,
	redisClient *redis.Client,
	reward config.RewardConfig,
) *AggregateService {
	return &AggregateService{
		ProgressRepo: progressRepo,
		ContentRepo:  contentRepo,
		UserRepo:     userRepo,
		Redis:        redisClient,
		Now:          time.Now,
		reward:       reward,
	}
}

// SetRewardConfig swaps the gamification constants at runtime. The config
// watcher calls this on file change.
func (s *AggregateService) SetRewardConfig(reward config.RewardConfig) {
	s.mu.Lock()
	s.reward = reward
	s.mu.Unlock()
}

func (s *AggregateService) rewardUnit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reward.QuestionReward
}

// nodeProgress turns a task set into a percentage. An empty set is 0, never
// a division error and never 100.
func (s *AggregateService) nodeProgress(learner model.Learner, taskIDs []uint) (*NodeProgress, error) {
	progress := &NodeProgress{TotalTasks: len(taskIDs)}
	if len(taskIDs) == 0 {
		return progress, nil
	}

	completed, err := s.ProgressRepo.CountCompletedAmong(learner, taskIDs)
	if err != nil {
		return nil, err
	}
	progress.CompletedTasks = int(completed)
	progress.Percentage = int(completed) * 100 / len(taskIDs)
	return progress, nil
}

func (s *AggregateService) ChapterProgress(learner model.Learner, chapterID uint) (*NodeProgress, error) {
	taskIDs, err := s.ContentRepo.TaskIDsUnderChapter(chapterID)
	if err != nil {
		return nil, err
	}
	return s.nodeProgress(learner, taskIDs)
}

func (s *AggregateService) SectionProgress(learner model.Learner, sectionID uint) (*NodeProgress, error) {
	taskIDs, err := s.ContentRepo.TaskIDsUnderSection(sectionID)
	if err != nil {
		return nil, err
	}
	return s.nodeProgress(learner, taskIDs)
}

func (s *AggregateService) CourseProgress(learner model.Learner, courseID uint) (*NodeProgress, error) {
	taskIDs, err := s.ContentRepo.TaskIDsUnderCourse(courseID)
	if err != nil {
		return nil, err
	}
	return s.nodeProgress(learner, taskIDs)
}

func (s *AggregateService) TaskProgress(learner model.Learner, taskID uint) (*TaskProgress, error) {
	total, err := s.ContentRepo.CountQuestionsByTask(taskID)
	if err != nil {
		return nil, err
	}

	progress := &TaskProgress{TaskID: taskID, TotalQuestions: int(total)}

	completion, err := s.ProgressRepo.FindCompletion(learner, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return progress, nil
		}
		return nil, err
	}

	progress.Correct = completion.Correct
	progress.Wrong = completion.Wrong
	progress.Answered = completion.Correct + completion.Wrong
	progress.IsCompleted = true
	if total > 0 {
		progress.Percentage = progress.Answered * 100 / int(total)
	}
	return progress, nil
}

// addCompletion folds one completion into a day bucket. Cups are derived from
// the correct count and the reward unit, mirroring how they were granted.
func (s *AggregateService) addCompletion(day *DayProgress, c *model.TaskCompletion, unit int) {
	day.CompletedTasks++
	day.Correct += c.Correct
	day.Wrong += c.Wrong
	day.Cups += c.Correct * unit
}

// WeeklyProgress reports the last seven days including today, oldest first.
func (s *AggregateService) WeeklyProgress(learner model.Learner) ([]DayProgress, error) {
	now := s.Now()
	today := truncateToDay(now)
	start := today.AddDate(0, 0, -6)

	completions, err := s.ProgressRepo.CompletionsBetween(learner, start, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	unit := s.rewardUnit()
	perDay := make(map[string]*DayProgress, 7)
	days := make([]DayProgress, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		days[i] = DayProgress{Date: day.Format(util.DateFormat)}
		perDay[days[i].Date] = &days[i]
	}
	for i := range completions {
		if day, ok := perDay[completions[i].CompletedAt.Format(util.DateFormat)]; ok {
			s.addCompletion(day, &completions[i], unit)
		}
	}
	return days, nil
}

// ProgressForDay totals the completions of one calendar day.
func (s *AggregateService) ProgressForDay(learner model.Learner, day time.Time) (*DayProgress, error) {
	from := truncateToDay(day)
	completions, err := s.ProgressRepo.CompletionsBetween(learner, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	unit := s.rewardUnit()
	progress := &DayProgress{Date: from.Format(util.DateFormat)}
	for i := range completions {
		s.addCompletion(progress, &completions[i], unit)
	}
	return progress, nil
}

// Leaderboard ranks the learner's population for the requested scope and
// splices the requesting learner into the listing when they fall outside
// the top rows, so every caller sees their own standing.
func (s *AggregateService) Leaderboard(ctx context.Context, learner model.Learner, scope LeaderboardScope) ([]LeaderboardEntry, error) {
	var (
		entries []LeaderboardEntry
		err     error
	)
	if learner.Kind == model.LearnerChild {
		entries, err = s.TopChildren(ctx, learner.Grade())
	} else {
		entries, err = s.topStudentsForScope(ctx, learner.Student, scope)
	}
	if err != nil {
		return nil, err
	}
	return s.spliceLearner(entries, learner)
}

func (s *AggregateService) topStudentsForScope(ctx context.Context, student *model.Student, scope LeaderboardScope) ([]LeaderboardEntry, error) {
	switch scope {
	case LeaderboardClass:
		if student.SchoolClassID == nil {
			return nil, util.ErrNoClassAssigned
		}
		classID := *student.SchoolClassID
		return s.topStudents(ctx, fmt.Sprintf("leaderboard:students:class:%d", classID), func() ([]model.Student, error) {
			return s.UserRepo.TopStudentsInClass(classID, util.LeaderboardSize)
		})
	case LeaderboardSchool:
		if student.SchoolID == nil {
			return nil, util.ErrNoSchoolAssigned
		}
		schoolID := *student.SchoolID
		return s.topStudents(ctx, fmt.Sprintf("leaderboard:students:school:%d", schoolID), func() ([]model.Student, error) {
			return s.UserRepo.TopStudentsInSchool(schoolID, util.LeaderboardSize)
		})
	default:
		return s.TopStudents(ctx, student.Grade)
	}
}

// TopStudents returns the grade leaderboard, served from redis when fresh.
func (s *AggregateService) TopStudents(ctx context.Context, grade int) ([]LeaderboardEntry, error) {
	return s.topStudents(ctx, fmt.Sprintf("leaderboard:students:%d", grade), func() ([]model.Student, error) {
		return s.UserRepo.TopStudentsByCups(grade, util.LeaderboardSize)
	})
}

func (s *AggregateService) topStudents(ctx context.Context, cacheKey string, fetch func() ([]model.Student, error)) ([]LeaderboardEntry, error) {
	if entries, ok := s.cachedLeaderboard(ctx, cacheKey); ok {
		return entries, nil
	}

	students, err := fetch()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(students))
	for i, student := range students {
		entry := LeaderboardEntry{
			LearnerID: student.ID,
			Cups:      student.Cups,
			Level:     student.Level,
			Rank:      i + 1,
		}
		if student.User != nil {
			entry.FirstName = student.User.FirstName
			entry.LastName = student.User.LastName
		}
		entries = append(entries, entry)
	}

	s.cacheLeaderboard(ctx, cacheKey, entries)
	return entries, nil
}

// TopChildren returns the grade leaderboard across children accounts.
func (s *AggregateService) TopChildren(ctx context.Context, grade int) ([]LeaderboardEntry, error) {
	cacheKey := fmt.Sprintf("leaderboard:children:%d", grade)
	if entries, ok := s.cachedLeaderboard(ctx, cacheKey); ok {
		return entries, nil
	}

	children, err := s.UserRepo.TopChildrenByCups(grade, util.LeaderboardSize)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(children))
	for i, child := range children {
		entries = append(entries, LeaderboardEntry{
			LearnerID: child.ID,
			FirstName: child.FirstName,
			LastName:  child.LastName,
			Cups:      child.Cups,
			Level:     child.Level,
			Rank:      i + 1,
		})
	}

	s.cacheLeaderboard(ctx, cacheKey, entries)
	return entries, nil
}

// spliceLearner appends the requester when absent, re-sorts by cups and
// trims back to the listing size, then renumbers the ranks.
func (s *AggregateService) spliceLearner(entries []LeaderboardEntry, learner model.Learner) ([]LeaderboardEntry, error) {
	for _, entry := range entries {
		if entry.LearnerID == learner.ID() {
			return entries, nil
		}
	}

	self, err := s.learnerEntry(learner)
	if err != nil {
		return nil, err
	}
	entries = append(entries, *self)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Cups > entries[j].Cups })
	if len(entries) > util.LeaderboardSize {
		// The requester takes the last slot when they rank below it.
		for i := util.LeaderboardSize; i < len(entries); i++ {
			if entries[i].LearnerID == self.LearnerID {
				entries[util.LeaderboardSize-1] = entries[i]
				break
			}
		}
		entries = entries[:util.LeaderboardSize]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *AggregateService) learnerEntry(learner model.Learner) (*LeaderboardEntry, error) {
	stats := learner.Stats()
	entry := &LeaderboardEntry{
		LearnerID: learner.ID(),
		Cups:      stats.Cups,
		Level:     stats.Level,
	}
	switch learner.Kind {
	case model.LearnerChild:
		entry.FirstName = learner.Child.FirstName
		entry.LastName = learner.Child.LastName
	default:
		user := learner.Student.User
		if user == nil {
			var err error
			user, err = s.UserRepo.FindByID(learner.Student.UserID)
			if err != nil {
				return nil, err
			}
		}
		entry.FirstName = user.FirstName
		entry.LastName = user.LastName
	}
	return entry, nil
}

func (s *AggregateService) cachedLeaderboard(ctx context.Context, key string) ([]LeaderboardEntry, bool) {
	if s.Redis == nil {
		return nil, false
	}
	raw, err := s.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *AggregateService) cacheLeaderboard(ctx context.Context, key string, entries []LeaderboardEntry) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, raw, leaderboardCacheTTL).Err(); err != nil {
		logger.Log.Warn("Failed to cache leaderboard", zap.String("key", key), zap.Error(err))
	}
}
