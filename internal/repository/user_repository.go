package repository

import (
	"context"
	"errors"
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/internal/util"

	"gorm.io/gorm"
)

type UserFilter struct {
	Role               model.UserRole
	SchoolID           uint
	CreatedByTeacherID uint
}

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) ListUsers(ctx context.Context, f UserFilter) ([]model.User, error) {
	query := r.DB.WithContext(ctx).Model(&model.User{}).Where("disabled = ?", false)
	if f.Role != "" {
		query = query.Where("role = ?", f.Role)
	}
	if f.SchoolID != 0 {
		query = query.Where("school_id = ?", f.SchoolID)
	}
	if f.CreatedByTeacherID != 0 {
		query = query.Where("created_by_teacher_id = ?", f.CreatedByTeacherID)
	}
	var users []model.User
	err := query.Order("id ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateLastSeen(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_seen", gorm.Expr("CURRENT_TIMESTAMP(3)")).Error
}
