package service

import (
	"quiz_agent_backend/internal/model"
	"testing"
)

const (
	teacherA = uint(10)
	teacherB = uint(20)
	adminID  = uint(30)
	rootID   = uint(40)
)

var (
	actorTeacherA = model.Actor{ID: teacherA, Role: model.Teacher, SchoolID: 1}
	actorTeacherB = model.Actor{ID: teacherB, Role: model.Teacher, SchoolID: 1}
	actorStudentA = model.Actor{ID: 101, Role: model.Student, CreatedByTeacherID: teacherA}
	actorStudentB = model.Actor{ID: 201, Role: model.Student, CreatedByTeacherID: teacherB}
	actorAdmin    = model.Actor{ID: adminID, Role: model.Admin}
	actorRoot     = model.Actor{ID: rootID, Role: model.SuperAdmin}
	actorGuest    = model.GuestActor()
)

func privateQuizBy(creator uint) *model.Quiz {
	return &model.Quiz{CreatorID: creator, LegacyUserID: creator}
}

func TestPrivateTeacherQuizHiddenFromOtherTeachersStudents(t *testing.T) {
	quiz := privateQuizBy(teacherA)

	visible := FilterVisibleQuizzes(actorStudentB, []model.Quiz{*quiz})
	if len(visible) != 0 {
		t.Fatal("private quiz leaked to a student managed by another teacher")
	}
	if !CanViewQuiz(actorStudentA, quiz) {
		t.Error("managed student should see their teacher's quiz")
	}
}

func TestCanViewQuiz(t *testing.T) {
	public := &model.Quiz{CreatorID: teacherB, IsPublic: true}
	byStudentA := &model.Quiz{CreatorID: actorStudentA.ID, CreatedByTeacherID: teacherA}
	byAdmin := privateQuizBy(adminID)
	legacy := &model.Quiz{LegacyUserID: teacherA}

	tests := []struct {
		name  string
		actor model.Actor
		quiz  *model.Quiz
		want  bool
	}{
		{"guest sees public", actorGuest, public, true},
		{"guest cannot see private", actorGuest, privateQuizBy(teacherA), false},
		{"guest cannot see guest-created private", actorGuest, privateQuizBy(0), false},
		{"teacher sees own", actorTeacherA, privateQuizBy(teacherA), true},
		{"teacher sees own legacy quiz", actorTeacherA, legacy, true},
		{"teacher sees managed student's quiz", actorTeacherA, byStudentA, true},
		{"teacher cannot see other teacher's private", actorTeacherA, privateQuizBy(teacherB), false},
		{"teacher cannot see other teacher's student", actorTeacherB, byStudentA, false},
		{"student sees own", actorStudentA, byStudentA, true},
		{"student cannot see peer's private", actorStudentB, byStudentA, false},
		{"admin sees public", actorAdmin, public, true},
		{"admin sees own", actorAdmin, byAdmin, true},
		{"admin cannot see teacher private", actorAdmin, privateQuizBy(teacherA), false},
		{"super admin sees everything", actorRoot, privateQuizBy(teacherA), true},
		{"unknown role sees public only", model.Actor{ID: 5, Role: "auditor"}, privateQuizBy(5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanViewQuiz(tt.actor, tt.quiz); got != tt.want {
				t.Errorf("CanViewQuiz() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanDeleteQuiz(t *testing.T) {
	own := privateQuizBy(teacherA)
	tests := []struct {
		name  string
		actor model.Actor
		quiz  *model.Quiz
		want  bool
	}{
		{"creator teacher", actorTeacherA, own, true},
		{"other teacher", actorTeacherB, own, false},
		{"legacy owner", actorTeacherA, &model.Quiz{LegacyUserID: teacherA}, true},
		{"admin not owner", actorAdmin, own, false},
		{"admin owner", actorAdmin, privateQuizBy(adminID), true},
		{"super admin", actorRoot, own, true},
		{"student creator", actorStudentA, privateQuizBy(actorStudentA.ID), false},
		{"guest", actorGuest, privateQuizBy(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanDeleteQuiz(tt.actor, tt.quiz); got != tt.want {
				t.Errorf("CanDeleteQuiz() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanCreateQuiz(t *testing.T) {
	for _, role := range []model.UserRole{model.Guest, model.Student, model.Teacher, model.Admin, model.SuperAdmin} {
		if !CanCreateQuiz(model.Actor{Role: role}) {
			t.Errorf("%s should be able to create quizzes", role)
		}
	}
	if CanCreateQuiz(model.Actor{ID: 1, Role: "auditor"}) {
		t.Error("unknown role should be rejected")
	}
}

func TestStampCreator(t *testing.T) {
	quiz := &model.Quiz{}
	StampCreator(actorAdmin, quiz)
	if !quiz.IsPublic || quiz.CreatorID != adminID || quiz.CreatorRole != model.Admin {
		t.Errorf("admin quiz = %+v", quiz)
	}

	quiz = &model.Quiz{}
	StampCreator(actorStudentA, quiz)
	if quiz.IsPublic || quiz.CreatedByTeacherID != teacherA || quiz.LegacyUserID != actorStudentA.ID {
		t.Errorf("student quiz = %+v", quiz)
	}

	quiz = &model.Quiz{IsPublic: true}
	StampCreator(actorGuest, quiz)
	if quiz.CreatorID != 0 || quiz.CreatorRole != model.Guest {
		t.Errorf("guest quiz = %+v", quiz)
	}
}

func TestCanSeeAnswerKey(t *testing.T) {
	quiz := &model.Quiz{CreatorID: teacherA, IsPublic: true}
	if !CanSeeAnswerKey(actorTeacherA, quiz) || !CanSeeAnswerKey(actorRoot, quiz) {
		t.Error("creator and super admin should see the answer key")
	}
	if CanSeeAnswerKey(actorStudentA, quiz) || CanSeeAnswerKey(actorGuest, &model.Quiz{IsPublic: true}) {
		t.Error("answer key leaked")
	}
}

func TestCanViewResult(t *testing.T) {
	result := &model.QuizResult{StudentID: actorStudentA.ID, QuizCreatorID: teacherA}
	if !CanViewResult(actorStudentA, result) || !CanViewResult(actorTeacherA, result) || !CanViewResult(actorRoot, result) {
		t.Error("student, quiz creator and super admin should see the result")
	}
	if CanViewResult(actorStudentB, result) || CanViewResult(actorTeacherB, result) || CanViewResult(actorGuest, result) {
		t.Error("result leaked")
	}
}
