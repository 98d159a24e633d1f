package repository

import (
	"context"
	"errors"
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/internal/util"

	"gorm.io/gorm"
)

type QuizFilter struct {
	Subject    string
	Difficulty model.Difficulty
	CreatorID  uint
	SchoolID   uint
	// VisibleTo 非空时在 SQL 层预筛选，最终可见性仍由服务层判断
	VisibleTo *model.Actor
}

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) CreateQuiz(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Create(quiz).Error
}

func (r *QuizRepository) FindQuizByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&quiz, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) ListQuizzes(ctx context.Context, f QuizFilter) ([]model.Quiz, error) {
	query := r.DB.WithContext(ctx).Model(&model.Quiz{})
	if f.Subject != "" {
		query = query.Where("subject = ?", f.Subject)
	}
	if f.Difficulty != "" {
		query = query.Where("difficulty = ?", f.Difficulty)
	}
	if f.CreatorID != 0 {
		query = query.Where("creator_id = ?", f.CreatorID)
	}
	if f.SchoolID != 0 {
		query = query.Where("school_id = ?", f.SchoolID)
	}
	if f.VisibleTo != nil {
		query = query.Scopes(visibleCandidates(*f.VisibleTo))
	}

	var quizzes []model.Quiz
	err := query.Order("created_at DESC").Find(&quizzes).Error
	return quizzes, err
}

// DeleteQuiz 连同题目和成绩一起删除
func (r *QuizRepository) DeleteQuiz(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&model.QuizResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Quiz{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrQuizNotFound
		}
		return nil
	})
}

// visibleCandidates 可见集合的超集：公开、本人创建、所带学生创建、所属教师创建
func visibleCandidates(actor model.Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.Role == model.SuperAdmin {
			return db
		}
		cond := db.Session(&gorm.Session{NewDB: true}).Where("is_public = ?", true)
		if actor.ID != 0 {
			cond = cond.Or("creator_id = ? OR user_id = ?", actor.ID, actor.ID)
			if actor.Role == model.Teacher {
				cond = cond.Or("created_by_teacher_id = ?", actor.ID)
			}
		}
		if actor.Role == model.Student && actor.CreatedByTeacherID != 0 {
			cond = cond.Or("creator_id = ?", actor.CreatedByTeacherID)
		}
		return db.Where(cond)
	}
}
