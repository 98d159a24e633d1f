package service

import (
	"quiz_agent_backend/internal/model"
)

// creatableRoles 允许创建试卷的角色
var creatableRoles = map[model.UserRole]bool{
	model.Teacher:    true,
	model.Admin:      true,
	model.SuperAdmin: true,
	model.Student:    true,
	model.Guest:      true,
}

// ownsQuiz 兼容旧数据的 user_id 字段；匿名操作者不拥有任何试卷
func ownsQuiz(actor model.Actor, quiz *model.Quiz) bool {
	if actor.IsAnonymous() {
		return false
	}
	return quiz.CreatorID == actor.ID || quiz.LegacyUserID == actor.ID
}

// CanViewQuiz 判断试卷是否出现在该操作者的列表中、能否打开
func CanViewQuiz(actor model.Actor, quiz *model.Quiz) bool {
	switch actor.Role {
	case model.SuperAdmin:
		return true
	case model.Admin:
		return quiz.IsPublic || ownsQuiz(actor, quiz)
	case model.Teacher:
		if quiz.IsPublic || ownsQuiz(actor, quiz) {
			return true
		}
		// 所带学生创建的试卷
		return !actor.IsAnonymous() && quiz.CreatedByTeacherID == actor.ID
	case model.Student:
		if quiz.IsPublic || ownsQuiz(actor, quiz) {
			return true
		}
		return actor.CreatedByTeacherID != 0 && quiz.CreatorID == actor.CreatedByTeacherID
	default:
		return quiz.IsPublic
	}
}

func CanCreateQuiz(actor model.Actor) bool {
	return creatableRoles[actor.Role]
}

// CanDeleteQuiz super_admin 可删除任意试卷，教师和管理员只能删除自己的
func CanDeleteQuiz(actor model.Actor, quiz *model.Quiz) bool {
	switch actor.Role {
	case model.SuperAdmin:
		return true
	case model.Admin, model.Teacher:
		return ownsQuiz(actor, quiz)
	default:
		return false
	}
}

// CanSeeAnswerKey 创建者和 super_admin 能看到答案与解析
func CanSeeAnswerKey(actor model.Actor, quiz *model.Quiz) bool {
	return actor.Role == model.SuperAdmin || ownsQuiz(actor, quiz)
}

// ForcesPublic 管理员创建的试卷一律公开
func ForcesPublic(actor model.Actor) bool {
	return actor.Role == model.Admin || actor.Role == model.SuperAdmin
}

// StampCreator 写入创建者归属信息
func StampCreator(actor model.Actor, quiz *model.Quiz) {
	quiz.CreatorID = actor.ID
	quiz.LegacyUserID = actor.ID
	quiz.CreatorRole = actor.Role
	quiz.SchoolID = actor.SchoolID
	if actor.Role == model.Student {
		quiz.CreatedByTeacherID = actor.CreatedByTeacherID
	}
	if ForcesPublic(actor) {
		quiz.IsPublic = true
	}
}

// FilterVisibleQuizzes 保持原有顺序
func FilterVisibleQuizzes(actor model.Actor, quizzes []model.Quiz) []model.Quiz {
	visible := make([]model.Quiz, 0, len(quizzes))
	for i := range quizzes {
		if CanViewQuiz(actor, &quizzes[i]) {
			visible = append(visible, quizzes[i])
		}
	}
	return visible
}

// CanViewResult 学生看自己的成绩；试卷创建者和 super_admin 看该卷全部成绩
func CanViewResult(actor model.Actor, result *model.QuizResult) bool {
	if actor.IsAnonymous() {
		return false
	}
	if actor.Role == model.SuperAdmin || result.StudentID == actor.ID {
		return true
	}
	return (actor.Role == model.Teacher || actor.Role == model.Admin) && result.QuizCreatorID == actor.ID
}
