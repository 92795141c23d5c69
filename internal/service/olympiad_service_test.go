package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/repository"
	"vunderkids_backend/internal/util"
)

func seedOlympiad(t *testing.T, env *testEnv, start, end time.Time, questions int) (*model.Olympiad, []uint) {
	t.Helper()
	olympiad := &model.Olympiad{Name: "Spring Olympiad", StartDate: start, EndDate: end, IsDisplayed: true}
	if err := env.db.Create(olympiad).Error; err != nil {
		t.Fatal(err)
	}
	ids := make([]uint, 0, questions)
	for i := 0; i < questions; i++ {
		q := &model.OlympiadQuestion{
			OlympiadID:    olympiad.ID,
			QuestionType:  model.MultipleChoiceText,
			CorrectAnswer: []byte(`1`),
		}
		if err := env.db.Create(q).Error; err != nil {
			t.Fatal(err)
		}
		ids = append(ids, q.ID)
	}
	return olympiad, ids
}

func TestOlympiadListFiltersByLearner(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedStudent(t) // grade 2, russian

	svc := NewOlympiadService(repository.NewOlympiadRepository(env.db))

	grade2, grade5 := 2, 5
	seeds := []model.Olympiad{
		{Name: "Grade 2 RU", Grade: &grade2, Language: model.LanguageRussian, IsDisplayed: true},
		{Name: "Grade 5 KZ", Grade: &grade5, Language: model.LanguageKazakh, IsDisplayed: true},
		{Name: "Teachers", Grade: &grade2, Language: model.LanguageRussian, IsForTeachers: true, IsDisplayed: true},
		{Name: "Hidden", Grade: &grade2, Language: model.LanguageRussian, IsDisplayed: false},
	}
	for i := range seeds {
		if err := env.db.Create(&seeds[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	olympiads, err := svc.ListForLearner(model.StudentLearner(student))
	if err != nil {
		t.Fatalf("ListForLearner: %v", err)
	}
	if len(olympiads) != 1 || olympiads[0].Name != "Grade 2 RU" {
		t.Errorf("learner listing = %+v, want only the grade-2 russian olympiad", olympiads)
	}

	forTeachers, err := svc.ListForTeachers()
	if err != nil {
		t.Fatalf("ListForTeachers: %v", err)
	}
	if len(forTeachers) != 1 || forTeachers[0].Name != "Teachers" {
		t.Errorf("teacher listing = %+v, want only the teacher olympiad", forTeachers)
	}
}

func TestOlympiadSubmitGradesWithoutRewards(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedStudent(t)
	learner := model.StudentLearner(student)

	svc := NewOlympiadService(repository.NewOlympiadRepository(env.db))
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(now)

	_, questions := seedOlympiad(t, env, now.Add(-time.Hour), now.Add(time.Hour), 2)

	result, err := svc.SubmitAnswer(learner, questions[0], json.RawMessage(`1`))
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !result.IsCorrect {
		t.Error("expected correct answer")
	}

	// Competition answers never touch the reward counters.
	reloaded := env.reloadStudent(t, student.ID)
	if reloaded.Cups != 0 || reloaded.Stars != 0 || reloaded.Streak != 0 {
		t.Errorf("counters changed: %+v", reloaded.LearnerStats)
	}

	// Duplicate submission is absorbed.
	second, err := svc.SubmitAnswer(learner, questions[0], json.RawMessage(`2`))
	if err != nil {
		t.Fatal(err)
	}
	if !second.AlreadyAnswered || !second.IsCorrect {
		t.Errorf("resubmission = %+v, want already answered with recorded verdict", second)
	}
}

func TestOlympiadRejectsOutsideWindow(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedStudent(t)

	svc := NewOlympiadService(repository.NewOlympiadRepository(env.db))
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(now)

	_, questions := seedOlympiad(t, env, now.Add(time.Hour), now.Add(2*time.Hour), 1)

	_, err := svc.SubmitAnswer(model.StudentLearner(student), questions[0], json.RawMessage(`1`))
	if !errors.Is(err, util.ErrOlympiadClosed) {
		t.Errorf("err = %v, want ErrOlympiadClosed", err)
	}
}

func TestOlympiadResult(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedStudent(t)
	learner := model.StudentLearner(student)

	svc := NewOlympiadService(repository.NewOlympiadRepository(env.db))
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(now)

	olympiad, questions := seedOlympiad(t, env, now.Add(-time.Hour), now.Add(time.Hour), 3)

	if _, err := svc.SubmitAnswer(learner, questions[0], json.RawMessage(`1`)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitAnswer(learner, questions[1], json.RawMessage(`9`)); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Result(learner, olympiad.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if result.TotalQuestions != 3 || result.Answered != 2 || result.Correct != 1 {
		t.Errorf("result = %+v, want 3 total / 2 answered / 1 correct", result)
	}
}
