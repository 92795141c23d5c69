package service

import (
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"vunderkids_backend/internal/config"
	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/repository"
	"vunderkids_backend/internal/util"
	"vunderkids_backend/pkg/logger"
	"vunderkids_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubmitResult reports what one answer submission did. A resubmission comes
// back with AlreadyAnswered set and every side-effect field zero.
type SubmitResult struct {
	IsCorrect       bool                `json:"isCorrect"`
	AlreadyAnswered bool                `json:"alreadyAnswered"`
	RewardGranted   int                 `json:"rewardGranted"`
	TaskCompleted   bool                `json:"taskCompleted"`
	Stats           *model.LearnerStats `json:"stats,omitempty"`
}

// ProgressService owns the answer ledger and every reward side effect:
// cups, stars, level and streak. All writes for one submission happen in a
// single transaction.
type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	ContentRepo  *repository.ContentRepository
	UserRepo     *repository.UserRepository
	LevelRepo    *repository.LevelRepository

	// Now is swappable so streak day-boundary logic is testable.
	Now func() time.Time

	mu     sync.RWMutex
	reward config.RewardConfig
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	contentRepo *repository.ContentRepository,
	userRepo *repository.UserRepository,
	levelRepo *repository.LevelRepository,
	reward config.RewardConfig,
) *ProgressService {
	return &ProgressService{
		ProgressRepo: progressRepo,
		ContentRepo:  contentRepo,
		UserRepo:     userRepo,
		LevelRepo:    levelRepo,
		Now:          time.Now,
		reward:       reward,
	}
}

// SetRewardConfig swaps the gamification constants at runtime. The config
// watcher calls this on file change.
func (s *ProgressService) SetRewardConfig(reward config.RewardConfig) {
	s.mu.Lock()
	s.reward = reward
	s.mu.Unlock()
}

func (s *ProgressService) rewardConfig() config.RewardConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reward
}

// SubmitAnswer validates and records one answer, then applies rewards, task
// completion and streak updates atomically. Duplicate submissions are
// absorbed by the ledger's unique indexes: the first writer wins and every
// later one gets the already-answered result.
func (s *ProgressService) SubmitAnswer(learner model.Learner, questionID uint, value json.RawMessage) (*SubmitResult, error) {
	validator := NewAnswerValidator()
	reward := s.rewardConfig()
	result := &SubmitResult{}

	err := s.ProgressRepo.DB.Transaction(func(tx *gorm.DB) error {
		progressRepo := s.ProgressRepo.WithTx(tx)
		contentRepo := s.ContentRepo.WithTx(tx)
		userRepo := s.UserRepo.WithTx(tx)
		levelRepo := s.LevelRepo.WithTx(tx)

		question, err := contentRepo.FindQuestionByID(questionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrQuestionNotFound
			}
			return err
		}

		if existing, err := progressRepo.FindAnswer(learner, questionID); err == nil {
			result.AlreadyAnswered = true
			result.IsCorrect = existing.IsCorrect
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		isCorrect := validator.Validate(question.QuestionType, question.CorrectAnswer, value)

		answer := &model.Answer{
			QuestionID: questionID,
			TaskID:     question.TaskID,
			Value:      value,
			IsCorrect:  isCorrect,
		}
		switch learner.Kind {
		case model.LearnerChild:
			answer.ChildID = &learner.Child.ID
		default:
			answer.StudentID = &learner.Student.ID
		}

		if err := progressRepo.CreateAnswer(answer); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				existing, ferr := progressRepo.FindAnswer(learner, questionID)
				if ferr != nil {
					return ferr
				}
				result.AlreadyAnswered = true
				result.IsCorrect = existing.IsCorrect
				return nil
			}
			return err
		}

		result.IsCorrect = isCorrect

		if isCorrect {
			if err := userRepo.AddReward(learner, reward.QuestionReward); err != nil {
				return err
			}
			result.RewardGranted = reward.QuestionReward

			stats, err := userRepo.ReloadStats(learner)
			if err != nil {
				return err
			}
			level, err := s.computeLevel(levelRepo, stats.Cups)
			if err != nil {
				return err
			}
			if level != stats.Level {
				if err := userRepo.UpdateLevel(learner, level); err != nil {
					return err
				}
				stats.Level = level
			}
			result.Stats = stats
		}

		answered, err := progressRepo.CountAnswersByTask(learner, question.TaskID)
		if err != nil {
			return err
		}
		total, err := contentRepo.CountQuestionsByTask(question.TaskID)
		if err != nil {
			return err
		}
		if total == 0 || answered < total {
			return nil
		}

		completed, err := s.finalizeTask(progressRepo, userRepo, learner, question.TaskID)
		if err != nil {
			return err
		}
		result.TaskCompleted = completed

		if completed {
			stats, err := userRepo.ReloadStats(learner)
			if err != nil {
				return err
			}
			result.Stats = stats
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	if !result.AlreadyAnswered {
		monitoring.AnswersSubmitted.WithLabelValues(strconv.FormatBool(result.IsCorrect)).Inc()
		if result.RewardGranted > 0 {
			monitoring.RewardsGranted.Add(float64(result.RewardGranted))
		}
		if result.TaskCompleted {
			monitoring.TasksCompleted.Inc()
		}
	}

	return result, nil
}

// finalizeTask records a task completion exactly once and advances the
// streak. A concurrent finalize loses the insert race, finds identical
// counts and becomes a no-op.
func (s *ProgressService) finalizeTask(
	progressRepo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
	learner model.Learner,
	taskID uint,
) (bool, error) {
	correct, wrong, err := progressRepo.CountCorrectWrongByTask(learner, taskID)
	if err != nil {
		return false, err
	}

	now := s.Now()

	completion := &model.TaskCompletion{
		TaskID:      taskID,
		Correct:     correct,
		Wrong:       wrong,
		CompletedAt: now,
	}
	switch learner.Kind {
	case model.LearnerChild:
		completion.ChildID = &learner.Child.ID
	default:
		completion.StudentID = &learner.Student.ID
	}

	if err := progressRepo.CreateCompletion(completion); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, err
		}
		existing, ferr := progressRepo.FindCompletion(learner, taskID)
		if ferr != nil {
			return false, ferr
		}
		// Identical counts mean another submission already finalized this
		// task; granting the streak again would double it.
		if existing.Correct == correct && existing.Wrong == wrong {
			return false, nil
		}
		existing.Correct = correct
		existing.Wrong = wrong
		if err := progressRepo.DB.Save(existing).Error; err != nil {
			return false, err
		}
	}

	if err := s.updateStreak(userRepo, learner, now); err != nil {
		return false, err
	}
	return true, nil
}

// updateStreak applies the day-based streak rule: second completion the same
// day changes nothing, a completion on the day after the last one extends
// the streak, anything else restarts it at one.
func (s *ProgressService) updateStreak(userRepo *repository.UserRepository, learner model.Learner, now time.Time) error {
	stats, err := userRepo.ReloadStats(learner)
	if err != nil {
		return err
	}

	today := truncateToDay(now)
	streak := uint(1)

	if stats.LastTaskCompletedAt != nil {
		last := truncateToDay(*stats.LastTaskCompletedAt)
		switch {
		case last.Equal(today):
			return nil
		case last.AddDate(0, 0, 1).Equal(today):
			streak = stats.Streak + 1
		}
	}

	return userRepo.UpdateStreak(learner, streak, &now)
}

// computeLevel walks the ladder ascending and keeps the highest level whose
// threshold the cup count meets.
func (s *ProgressService) computeLevel(levelRepo *repository.LevelRepository, cups uint) (uint, error) {
	requirements, err := levelRepo.FindAllAscending()
	if err != nil {
		return 0, err
	}

	level := uint(1)
	for _, req := range requirements {
		if cups >= req.CupsRequired {
			level = req.Level
		} else {
			break
		}
	}
	return level, nil
}

// SpendStars deducts the play-game cost from the learner's balance.
func (s *ProgressService) SpendStars(learner model.Learner) (*model.LearnerStats, error) {
	cost := s.rewardConfig().GameStarCost

	ok, err := s.UserRepo.SpendStars(learner, cost)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrNotEnoughStars
	}
	return s.UserRepo.ReloadStats(learner)
}

// SweepLapsedStreaks zeroes every streak whose last completion day is before
// yesterday. Runs nightly; a learner who completed a task yesterday still has
// today to keep the streak alive.
func (s *ProgressService) SweepLapsedStreaks() error {
	now := s.Now()
	cutoff := truncateToDay(now).AddDate(0, 0, -1)

	reset, err := s.UserRepo.ResetLapsedStreaks(cutoff)
	if err != nil {
		return err
	}
	if reset > 0 {
		logger.Log.Info("Reset lapsed streaks", zap.Int64("count", reset))
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
