package service

import (
	"errors"
	"testing"

	"vunderkids_backend/internal/model"
	"vunderkids_backend/internal/util"
)

func TestResolveStudent(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedStudent(t)
	svc := NewLearnerService(env.userRepo)

	learner, err := svc.Resolve(student.UserID, model.RoleStudent, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if learner.Kind != model.LearnerStudent || learner.Student.ID != student.ID {
		t.Errorf("resolved %+v, want student %d", learner, student.ID)
	}
}

func TestResolveParentRequiresChildID(t *testing.T) {
	env := newTestEnv(t)
	user, children := seedParentWithChildren(t, env, 1)
	svc := NewLearnerService(env.userRepo)

	if _, err := svc.Resolve(user.ID, model.RoleParent, nil); !errors.Is(err, util.ErrAmbiguousLearner) {
		t.Errorf("err = %v, want ErrAmbiguousLearner", err)
	}

	learner, err := svc.Resolve(user.ID, model.RoleParent, &children[0].ID)
	if err != nil {
		t.Fatalf("Resolve with child id: %v", err)
	}
	if learner.Kind != model.LearnerChild || learner.Child.ID != children[0].ID {
		t.Errorf("resolved %+v, want child %d", learner, children[0].ID)
	}
}

func TestResolveRejectsForeignChild(t *testing.T) {
	env := newTestEnv(t)
	user, _ := seedParentWithChildren(t, env, 1)
	svc := NewLearnerService(env.userRepo)

	// A child belonging to a different parent.
	otherUser := &model.User{Email: "other@test.local", Role: model.RoleParent}
	if err := env.db.Create(otherUser).Error; err != nil {
		t.Fatal(err)
	}
	otherParent := &model.Parent{UserID: otherUser.ID}
	if err := env.db.Create(otherParent).Error; err != nil {
		t.Fatal(err)
	}
	foreign := &model.Child{ParentID: otherParent.ID, FirstName: "Other", Grade: 1}
	if err := env.db.Create(foreign).Error; err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Resolve(user.ID, model.RoleParent, &foreign.ID); !errors.Is(err, util.ErrChildNotFound) {
		t.Errorf("err = %v, want ErrChildNotFound", err)
	}
}

func TestResolveRejectsNonLearnerRoles(t *testing.T) {
	env := newTestEnv(t)
	svc := NewLearnerService(env.userRepo)

	if _, err := svc.Resolve(1, model.RoleTeacher, nil); err == nil {
		t.Error("teacher role must not resolve to a learner")
	}
}
