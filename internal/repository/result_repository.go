package repository

import (
	"context"
	"errors"
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/internal/util"

	"gorm.io/gorm"
)

// ResultFilter 零值字段不参与过滤；StudentIDs 非 nil 但为空时结果为空
type ResultFilter struct {
	QuizID        string
	StudentID     uint
	StudentIDs    []uint
	QuizCreatorID uint
}

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) AppendResult(ctx context.Context, result *model.QuizResult) error {
	return r.DB.WithContext(ctx).Create(result).Error
}

func (r *ResultRepository) FindResultByID(ctx context.Context, id string) (*model.QuizResult, error) {
	var result model.QuizResult
	err := r.DB.WithContext(ctx).First(&result, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// QueryResults 按提交时间倒序
func (r *ResultRepository) QueryResults(ctx context.Context, f ResultFilter) ([]model.QuizResult, error) {
	query := r.DB.WithContext(ctx).Model(&model.QuizResult{})
	if f.QuizID != "" {
		query = query.Where("quiz_id = ?", f.QuizID)
	}
	if f.StudentID != 0 {
		query = query.Where("student_id = ?", f.StudentID)
	}
	if f.QuizCreatorID != 0 {
		query = query.Where("quiz_creator_id = ?", f.QuizCreatorID)
	}
	if f.StudentIDs != nil {
		if len(f.StudentIDs) == 0 {
			return nil, nil
		}
		query = query.Where("student_id IN ?", f.StudentIDs)
	}

	var results []model.QuizResult
	err := query.Order("submitted_at DESC").Find(&results).Error
	return results, err
}
