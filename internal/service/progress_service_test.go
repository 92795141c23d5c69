package service

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"vunderkids_backend/internal/model"
)

func TestSubmitAnswerRewardsCorrect(t *testing.T) {
	env := newTestEnv(t)
	env.seedLevels(t, map[uint]uint{1: 0, 2: 10, 3: 25})
	student := env.seedStudent(t)
	_, questions := env.seedTask(t, 2)

	learner := model.StudentLearner(student)

	result, err := env.progress.SubmitAnswer(learner, questions[0], json.RawMessage(`1`))
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !result.IsCorrect {
		t.Error("expected correct answer")
	}
	if result.RewardGranted != 1 {
		t.Errorf("RewardGranted = %d, want 1", result.RewardGranted)
	}

	reloaded := env.reloadStudent(t, student.ID)
	if reloaded.Cups != 1 || reloaded.Stars != 1 {
		t.Errorf("cups/stars = %d/%d, want 1/1", reloaded.Cups, reloaded.Stars)
	}
}

func TestSubmitAnswerWrongNoReward(t *testing.T) {
	env := newTestEnv(t)
	env.seedLevels(t, map[uint]uint{1: 0})
	student := env.seedStudent(t)
	_, questions := env.seedTask(t, 2)

	result, err := env.progress.SubmitAnswer(model.StudentLearner(student), questions[0], json.RawMessage(`9`))
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if result.IsCorrect {
		t.Error("expected incorrect answer")
	}
	if result.RewardGranted != 0 {
		t.Errorf("RewardGranted = %d, want 0", result.RewardGranted)
	}

	reloaded := env.reloadStudent(t, student.ID)
	if reloaded.Cups != 0 || reloaded.Stars != 0 {
		t.Errorf("cups/stars = %d/%d, want 0/0", reloaded.Cups, reloaded.Stars)
	}
}

func TestSubmitAnswerIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedLevels(t, map[uint]uint{1: 0})
	student := env.seedStudent(t)
	_, questions := env.seedTask(t, 2)
	learner := model.StudentLearner(student)

	if _, err := env.progress.SubmitAnswer(learner, questions[0], json.RawMessage(`1`)); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// A later submission, even with a different value, changes nothing.
	second, err := env.progress.SubmitAnswer(learner, questions[0], json.RawMessage(`9`))
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if !second.AlreadyAnswered {
		t.Error("expected AlreadyAnswered on resubmission")
	}
	if !second.IsCorrect {
		t.Error("resubmission must report the recorded verdict, not regrade")
	}
	if second.RewardGranted != 0 {
		t.Error("resubmission must not grant a reward")
	}

	reloaded := env.reloadStudent(t, student.ID)
	if reloaded.Cups != 1 {
		t.Errorf("cups = %d, want 1", reloaded.Cups)
	}
}

func TestSubmitAnswerConcurrentDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.seedLevels(t, map[uint]uint{1: 0})
	student := env.seedStudent(t)
	_, questions := env.seedTask(t, 2)
	learner := model.StudentLearner(student)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*SubmitResult, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.progress.SubmitAnswer(learner, questions[0], json.RawMessage(`1`))
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if !results[i].AlreadyAnswered {
			fresh++
		}
	}
	if fresh != 1 {
		t.Errorf("fresh submissions = %d, want exactly 1", fresh)
	}

	var answerCount int64
	env.db.Model(&model.Answer{}).Count(&answerCount)
	if answerCount != 1 {
		t.Errorf("answer rows = %d, want 1", answerCount)
	}

	reloaded := env.reloadStudent(t, student.ID)
	if reloaded.Cups != 1 {
		t.Errorf("cups = %d, want 1 (reward granted once)", reloaded.Cups)
	}
}

func TestTaskCompletionOnLastAnswer(t *testing.T) {
	env := newTestEnv(t)
	env.seedLevels(t, map[uint]uint{1: 0})
	student := env.seedStudent(t)
	taskID, questions := env.seedTask(t, 3)
	learner := model.StudentLearner(student)

	day := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	env.progress.Now = fixedClock(day)

	answers := []json.RawMessage{
		json.RawMessage(`1`), // correct
		json.RawMessage(`9`), // wrong
		json.RawMessage(`1`), // correct
	}
	for i, q := range questions {
		result, err := env.progress.SubmitAnswer(learner, q, answers[i])
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		wantCompleted := i == len(questions)-1
		if result.TaskCompleted != wantCompleted {
			t.Errorf("submit %d: TaskCompleted = %v, want %v", i, result.TaskCompleted, wantCompleted)
		}
	}

	var completion model.TaskCompletion
	if err := env.db.Where("task_id = ?", taskID).First(&completion).Error; err != nil {
		t.Fatalf("completion row: %v", err)
	}
	if completion.Correct != 2 || completion.Wrong != 1 {
		t.Errorf("completion split = %d/%d, want 2/1", completion.Correct, completion.Wrong)
	}

	reloaded := env.reloadStudent(t, student.ID)
	if reloaded.Streak != 1 {
		t.Errorf("streak = %d, want 1", reloaded.Streak)
	}
	if reloaded.LastTaskCompletedAt == nil {
		t.Fatal("LastTaskCompletedAt not set")
	}
}

func TestStreakWalk(t *testing.T) {
	env := newTestEnv(t)
	env.seedLevels(t, map[uint]uint{1: 0})
	student := env.seedStudent(t)
	learner := model.StudentLearner(student)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	completeTask := func(at time.Time) {
		t.Helper()
		env.progress.Now = fixedClock(at)
		_, questions := env.seedTask(t, 1)
		if _, err := env.progress.SubmitAnswer(learner, questions[0], json.RawMessage(`1`)); err != nil {
			t.Fatalf("submit at %v: %v", at, err)
		}
	}

	steps := []struct {
		at         time.Time
		wantStreak uint
	}{
		{base, 1},                               // first completion
		{base.Add(2 * time.Hour), 1},            // same day, unchanged
		{base.AddDate(0, 0, 1), 2},              // next day extends
		{base.AddDate(0, 0, 1).Add(time.Hour), 2}, // still same next day
		{base.AddDate(0, 0, 4), 1},              // gap restarts
	}

	for i, step := range steps {
		completeTask(step.at)
		reloaded := env.reloadStudent(t, student.ID)
		if reloaded.Streak != step.wantStreak {
			t.Errorf("step %d: streak = %d, want %d", i, reloaded.Streak, step.wantStreak)
		}
	}
}

func TestStreakSameDayKeepsTimestamp(t *testing.T) {
	env := newTestEnv(t)
	env.seedLevels(t, map[uint]uint{1: 0})
	student := env.seedStudent(t)
	learner := model.StudentLearner(student)

	morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	env.progress.Now = fixedClock(morning)
	_, q1 := env.seedTask(t, 1)
	if _, err := env.progress.SubmitAnswer(learner, q1[0], json.RawMessage(`1`)); err != nil {
		t.Fatal(err)
	}
	first := env.reloadStudent(t, student.ID).LastTaskCompletedAt

	env.progress.Now = fixedClock(morning.Add(5 * time.Hour))
	_, q2 := env.seedTask(t, 1)
	if _, err := env.progress.SubmitAnswer(learner, q2[0], json.RawMessage(`1`)); err != nil {
		t.Fatal(err)
	}
	second := env.reloadStudent(t, student.ID).LastTaskCompletedAt

	if !first.Equal(*second) {
		t.Errorf("same-day completion moved the timestamp: %v -> %v", first, second)
	}
}

func TestLevelAdvancesWithCups(t *testing.T) {
	env := newTestEnv(t)
	env.seedLevels(t, map[uint]uint{1: 0, 2: 10, 3: 25})
	student := env.seedStudent(t)
	learner := model.StudentLearner(student)

	// One cup short of level 2.
	env.db.Model(&model.Student{}).Where("id = ?", student.ID).Update("cups", 9)

	_, questions := env.seedTask(t, 2)
	result, err := env.progress.SubmitAnswer(learner, questions[0], json.RawMessage(`1`))
	if err != nil {
		t.Fatal(err)
	}
	if result.Stats == nil || result.Stats.Level != 2 {
		t.Fatalf("expected level 2 after reaching 10 cups, got %+v", result.Stats)
	}

	// A wrong answer never moves the level.
	if _, err := env.progress.SubmitAnswer(learner, questions[1], json.RawMessage(`9`)); err != nil {
		t.Fatal(err)
	}
	reloaded := env.reloadStudent(t, student.ID)
	if reloaded.Level != 2 {
		t.Errorf("level = %d, want 2", reloaded.Level)
	}
}

func TestLevelMonotonicUnderGrowingCups(t *testing.T) {
	env := newTestEnv(t)
	env.seedLevels(t, map[uint]uint{1: 0, 2: 10, 3: 25, 4: 50})

	levelRepo := env.progress.LevelRepo
	prev := uint(0)
	for cups := uint(0); cups <= 60; cups += 3 {
		level, err := env.progress.computeLevel(levelRepo, cups)
		if err != nil {
			t.Fatalf("computeLevel(%d): %v", cups, err)
		}
		if level < prev {
			t.Fatalf("level decreased from %d to %d at %d cups", prev, level, cups)
		}
		prev = level
	}
	if prev != 4 {
		t.Errorf("final level = %d, want 4", prev)
	}
}

func TestCompletionNotRetriggeredByResubmission(t *testing.T) {
	env := newTestEnv(t)
	env.seedLevels(t, map[uint]uint{1: 0})
	student := env.seedStudent(t)
	learner := model.StudentLearner(student)
	_, questions := env.seedTask(t, 3)

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	env.progress.Now = fixedClock(day)

	for _, q := range questions {
		if _, err := env.progress.SubmitAnswer(learner, q, json.RawMessage(`1`)); err != nil {
			t.Fatal(err)
		}
	}

	// Resubmitting the last question must not finalize again.
	result, err := env.progress.SubmitAnswer(learner, questions[2], json.RawMessage(`1`))
	if err != nil {
		t.Fatal(err)
	}
	if result.TaskCompleted {
		t.Error("resubmission retriggered task completion")
	}

	var completions int64
	env.db.Model(&model.TaskCompletion{}).Count(&completions)
	if completions != 1 {
		t.Errorf("completion rows = %d, want 1", completions)
	}

	reloaded := env.reloadStudent(t, student.ID)
	if reloaded.Streak != 1 {
		t.Errorf("streak = %d, want 1 (no double count)", reloaded.Streak)
	}
}

func TestSpendStars(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedStudent(t)
	learner := model.StudentLearner(student)

	env.db.Model(&model.Student{}).Where("id = ?", student.ID).Update("stars", 25)

	stats, err := env.progress.SpendStars(learner)
	if err != nil {
		t.Fatalf("SpendStars: %v", err)
	}
	if stats.Stars != 5 {
		t.Errorf("stars = %d, want 5", stats.Stars)
	}

	if _, err := env.progress.SpendStars(learner); err == nil {
		t.Error("expected error when balance is below the cost")
	}
}

func TestSweepLapsedStreaks(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	env.progress.Now = fixedClock(now)

	mkStudent := func(email string, streak uint, last *time.Time) uint {
		t.Helper()
		user := &model.User{Email: email, Role: model.RoleStudent}
		if err := env.db.Create(user).Error; err != nil {
			t.Fatal(err)
		}
		student := &model.Student{UserID: user.ID, Grade: 2}
		student.Streak = streak
		student.LastTaskCompletedAt = last
		if err := env.db.Create(student).Error; err != nil {
			t.Fatal(err)
		}
		return student.ID
	}

	today := now.Add(-1 * time.Hour)
	yesterday := now.AddDate(0, 0, -1)
	lapsed := now.AddDate(0, 0, -3)

	active := mkStudent("a@test.local", 5, &today)
	graced := mkStudent("b@test.local", 3, &yesterday)
	stale := mkStudent("c@test.local", 7, &lapsed)
	never := mkStudent("d@test.local", 0, nil)

	if err := env.progress.SweepLapsedStreaks(); err != nil {
		t.Fatalf("SweepLapsedStreaks: %v", err)
	}

	wantStreaks := map[uint]uint{active: 5, graced: 3, stale: 0, never: 0}
	for id, want := range wantStreaks {
		got := env.reloadStudent(t, id).Streak
		if got != want {
			t.Errorf("student %d: streak = %d, want %d", id, got, want)
		}
	}
}
