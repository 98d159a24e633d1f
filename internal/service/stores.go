package service

import (
	"context"
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/internal/repository"
)

// QuizStore 试卷持久化；查不到时返回 util.ErrQuizNotFound
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz *model.Quiz) error
	FindQuizByID(ctx context.Context, id string) (*model.Quiz, error)
	ListQuizzes(ctx context.Context, f repository.QuizFilter) ([]model.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
}

// ResultStore 成绩只追加不修改
type ResultStore interface {
	AppendResult(ctx context.Context, result *model.QuizResult) error
	FindResultByID(ctx context.Context, id string) (*model.QuizResult, error)
	QueryResults(ctx context.Context, f repository.ResultFilter) ([]model.QuizResult, error)
}

type UserDirectory interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.User, error)
	ListUsers(ctx context.Context, f repository.UserFilter) ([]model.User, error)
}

var (
	_ QuizStore     = (*repository.QuizRepository)(nil)
	_ ResultStore   = (*repository.ResultRepository)(nil)
	_ UserDirectory = (*repository.UserRepository)(nil)
)
