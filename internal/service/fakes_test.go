package service

import (
	"context"
	"errors"
	"fmt"
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/internal/repository"
	"quiz_agent_backend/internal/util"
	"sync"
)

type memQuizStore struct {
	mu      sync.Mutex
	quizzes []*model.Quiz
}

func (s *memQuizStore) CreateQuiz(_ context.Context, quiz *model.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quiz.ID == "" {
		quiz.ID = model.GenerateUUID()
	}
	s.quizzes = append(s.quizzes, quiz)
	return nil
}

func (s *memQuizStore) FindQuizByID(_ context.Context, id string) (*model.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.quizzes {
		if q.ID == id {
			cp := *q
			return &cp, nil
		}
	}
	return nil, util.ErrQuizNotFound
}

func (s *memQuizStore) ListQuizzes(_ context.Context, f repository.QuizFilter) ([]model.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Quiz
	for _, q := range s.quizzes {
		if f.Subject != "" && q.Subject != f.Subject {
			continue
		}
		if f.Difficulty != "" && q.Difficulty != f.Difficulty {
			continue
		}
		if f.CreatorID != 0 && q.CreatorID != f.CreatorID {
			continue
		}
		if f.SchoolID != 0 && q.SchoolID != f.SchoolID {
			continue
		}
		out = append(out, *q)
	}
	return out, nil
}

func (s *memQuizStore) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.quizzes {
		if q.ID == id {
			s.quizzes = append(s.quizzes[:i], s.quizzes[i+1:]...)
			return nil
		}
	}
	return util.ErrQuizNotFound
}

type memResultStore struct {
	mu      sync.Mutex
	results []*model.QuizResult
	seq     int
}

func (s *memResultStore) AppendResult(_ context.Context, r *model.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		s.seq++
		r.ID = fmt.Sprintf("r-%d", s.seq)
	}
	s.results = append(s.results, r)
	return nil
}

func (s *memResultStore) FindResultByID(_ context.Context, id string) (*model.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.results {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, util.ErrResultNotFound
}

func (s *memResultStore) QueryResults(_ context.Context, f repository.ResultFilter) ([]model.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.StudentIDs != nil && len(f.StudentIDs) == 0 {
		return nil, nil
	}
	allowed := make(map[uint]bool, len(f.StudentIDs))
	for _, id := range f.StudentIDs {
		allowed[id] = true
	}
	var out []model.QuizResult
	for _, r := range s.results {
		if f.QuizID != "" && r.QuizID != f.QuizID {
			continue
		}
		if f.StudentID != 0 && r.StudentID != f.StudentID {
			continue
		}
		if f.QuizCreatorID != 0 && r.QuizCreatorID != f.QuizCreatorID {
			continue
		}
		if f.StudentIDs != nil && !allowed[r.StudentID] {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

type memUserDirectory struct {
	users []model.User
}

func (d *memUserDirectory) FindByID(_ context.Context, id uint) (*model.User, error) {
	for i := range d.users {
		if d.users[i].ID == id {
			u := d.users[i]
			return &u, nil
		}
	}
	return nil, util.ErrUserNotFound
}

func (d *memUserDirectory) FindByIDs(_ context.Context, ids []uint) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		for _, u := range d.users {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (d *memUserDirectory) ListUsers(_ context.Context, f repository.UserFilter) ([]model.User, error) {
	var out []model.User
	for _, u := range d.users {
		if u.Disabled {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.SchoolID != 0 && u.SchoolID != f.SchoolID {
			continue
		}
		if f.CreatedByTeacherID != 0 && u.CreatedByTeacherID != f.CreatedByTeacherID {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// memCache 记录写入和清理的 key
type memCache struct {
	mu          sync.Mutex
	entries     map[string]interface{}
	invalidated []string
	failGet     bool
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]interface{})}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return false, errors.New("cache down")
	}
	v, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	switch d := dest.(type) {
	case *UserQuizStats:
		*d = *(v.(*UserQuizStats))
	case *QuizAnalytics:
		*d = *(v.(*QuizAnalytics))
	default:
		return false, nil
	}
	return true, nil
}

func (c *memCache) Set(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.invalidated = append(c.invalidated, k)
	}
	return nil
}

// stubGenerator 返回固定文本或错误
type stubGenerator struct {
	text  string
	err   error
	block bool
	calls int
}

func (g *stubGenerator) Generate(ctx context.Context, _ string) (string, error) {
	g.calls++
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.text, g.err
}

func mcQuestion(text, answer string, options ...string) model.Question {
	return model.Question{
		Text:          text,
		Type:          model.MultipleChoice,
		Options:       options,
		CorrectAnswer: answer,
		Difficulty:    model.Easy,
		Points:        1,
	}
}
