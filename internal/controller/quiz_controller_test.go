package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"quiz_agent_backend/internal/config"
	"quiz_agent_backend/internal/middleware"
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/internal/repository"
	"quiz_agent_backend/internal/service"
	"quiz_agent_backend/internal/util"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const secret = "0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

type quizStore struct {
	mu      sync.Mutex
	quizzes map[string]*model.Quiz
	order   []string
}

func (s *quizStore) CreateQuiz(_ context.Context, q *model.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[q.ID] = q
	s.order = append(s.order, q.ID)
	return nil
}

func (s *quizStore) FindQuizByID(_ context.Context, id string) (*model.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return nil, util.ErrQuizNotFound
	}
	cp := *q
	return &cp, nil
}

func (s *quizStore) ListQuizzes(_ context.Context, _ repository.QuizFilter) ([]model.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Quiz
	for _, id := range s.order {
		if q, ok := s.quizzes[id]; ok {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (s *quizStore) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return util.ErrQuizNotFound
	}
	delete(s.quizzes, id)
	return nil
}

type resultStore struct {
	mu      sync.Mutex
	results []model.QuizResult
}

func (s *resultStore) AppendResult(_ context.Context, r *model.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = model.GenerateUUID()
	s.results = append(s.results, *r)
	return nil
}

func (s *resultStore) FindResultByID(_ context.Context, id string) (*model.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.results {
		if s.results[i].ID == id {
			r := s.results[i]
			return &r, nil
		}
	}
	return nil, util.ErrResultNotFound
}

func (s *resultStore) QueryResults(_ context.Context, f repository.ResultFilter) ([]model.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.QuizResult
	for _, r := range s.results {
		if f.StudentID != 0 && r.StudentID != f.StudentID {
			continue
		}
		if f.QuizID != "" && r.QuizID != f.QuizID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// 未配置 API key 的 AI 服务，生成请求总是走本地模板
func newTestRouter() *gin.Engine {
	ai := service.NewAIService(config.AIConfig{})
	orchestrator := service.NewGenerationOrchestrator(ai, service.NewTemplateFallback(), time.Second)
	quizzes := service.NewQuizService(&quizStore{quizzes: map[string]*model.Quiz{}}, &resultStore{}, nil, orchestrator, nil, 100, 30)

	qc := NewQuizController(quizzes, ai)
	rc := NewResultController(quizzes)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/ai/status", qc.AIStatus)
	optional := api.Group("/quizzes", middleware.TryAuthMiddleware(secret))
	optional.GET("", qc.ListQuizzes)
	optional.GET("/:id", qc.GetQuiz)
	optional.POST("", qc.CreateQuiz)
	optional.POST("/generate", qc.GenerateQuiz)
	authed := api.Group("", middleware.AuthMiddleware(secret))
	authed.DELETE("/quizzes/:id", qc.DeleteQuiz)
	authed.POST("/quizzes/:id/submit", qc.SubmitQuiz)
	authed.GET("/results", rc.ListResults)
	authed.GET("/results/:id", rc.GetResult)
	return r
}

func token(t *testing.T, id uint, role model.UserRole, teacherID uint) string {
	t.Helper()
	user := &model.User{Role: role, CreatedByTeacherID: teacherID}
	user.ID = id
	tok, err := util.GenerateJWT(user, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func do(r *gin.Engine, method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data %s: %v", env.Data, err)
		}
	}
	return env
}

func TestGenerateSubmitFlow(t *testing.T) {
	r := newTestRouter()
	teacher := token(t, 10, model.Teacher, 0)
	student := token(t, 101, model.Student, 10)

	w := do(r, http.MethodPost, "/api/quizzes/generate", teacher, gin.H{
		"subject": "Python", "difficulty": "easy", "numQuestions": 3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("generate status = %d body = %s", w.Code, w.Body.String())
	}
	var generated struct {
		Quiz       model.Quiz `json:"quiz"`
		Generation struct {
			Status string `json:"status"`
			Source string `json:"source"`
		} `json:"generation"`
	}
	decode(t, w, &generated)
	if generated.Generation.Source != "fallback" || len(generated.Quiz.Questions) != 3 {
		t.Fatalf("generated = %+v", generated.Generation)
	}
	quizID := generated.Quiz.ID

	// 学生看不到答案
	w = do(r, http.MethodGet, "/api/quizzes/"+quizID, student, nil)
	var seen model.Quiz
	decode(t, w, &seen)
	if w.Code != http.StatusOK || seen.Questions[0].CorrectAnswer != "" {
		t.Fatalf("student view: %d answer=%q", w.Code, seen.Questions[0].CorrectAnswer)
	}

	answers := make([]gin.H, 0, 3)
	for _, q := range generated.Quiz.Questions {
		answers = append(answers, gin.H{"questionId": q.ID, "answer": q.CorrectAnswer})
	}
	w = do(r, http.MethodPost, "/api/quizzes/"+quizID+"/submit", student, gin.H{"answers": answers})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit status = %d body = %s", w.Code, w.Body.String())
	}
	var submitted struct {
		Result  model.QuizResult `json:"result"`
		Message string           `json:"message"`
	}
	decode(t, w, &submitted)
	if submitted.Result.Percentage != 100 || submitted.Result.GradeLetter != "A+" || submitted.Message == "" {
		t.Errorf("result = %+v, message = %q", submitted.Result, submitted.Message)
	}

	w = do(r, http.MethodGet, "/api/results?quizId="+quizID, teacher, nil)
	var listed struct {
		Total int `json:"total"`
	}
	decode(t, w, &listed)
	if w.Code != http.StatusOK || listed.Total != 1 {
		t.Errorf("results list: %d total=%d", w.Code, listed.Total)
	}

	w = do(r, http.MethodGet, "/api/results/"+submitted.Result.ID, token(t, 102, model.Student, 10), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("peer result status = %d", w.Code)
	}
}

func TestGuestAccess(t *testing.T) {
	r := newTestRouter()
	teacher := token(t, 10, model.Teacher, 0)

	w := do(r, http.MethodPost, "/api/quizzes", teacher, gin.H{
		"title":    "Capitals",
		"isPublic": true,
		"questions": []gin.H{{
			"text": "Capital of France?", "options": []string{"Paris", "Rome", "Oslo", "Bern"}, "correctAnswer": "Paris",
		}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body.String())
	}
	var created model.Quiz
	decode(t, w, &created)

	w = do(r, http.MethodGet, "/api/quizzes", "", nil)
	var page util.PageResponse
	decode(t, w, &page)
	if w.Code != http.StatusOK || page.Total != 1 {
		t.Errorf("guest list: %d total=%d", w.Code, page.Total)
	}

	w = do(r, http.MethodPost, "/api/quizzes/"+created.ID+"/submit", "", gin.H{"answers": []gin.H{}})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("guest submit status = %d", w.Code)
	}

	w = do(r, http.MethodDelete, "/api/quizzes/"+created.ID, token(t, 11, model.Teacher, 0), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("other teacher delete status = %d", w.Code)
	}
	w = do(r, http.MethodDelete, "/api/quizzes/"+created.ID, teacher, nil)
	if w.Code != http.StatusOK {
		t.Errorf("creator delete status = %d", w.Code)
	}
	w = do(r, http.MethodGet, "/api/quizzes/"+created.ID, "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted quiz status = %d", w.Code)
	}
}

func TestValidationErrors(t *testing.T) {
	r := newTestRouter()
	teacher := token(t, 10, model.Teacher, 0)

	w := do(r, http.MethodPost, "/api/quizzes/generate", teacher, gin.H{
		"subject": "Python", "difficulty": "impossible", "numQuestions": 3,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad difficulty status = %d", w.Code)
	}

	w = do(r, http.MethodPost, "/api/quizzes/generate", teacher, gin.H{
		"subject": "Python", "difficulty": "easy", "numQuestions": 101,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("too many questions status = %d", w.Code)
	}

	w = do(r, http.MethodPost, "/api/quizzes", teacher, gin.H{"title": "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing questions status = %d", w.Code)
	}
}

func TestAIStatus(t *testing.T) {
	r := newTestRouter()
	w := do(r, http.MethodGet, "/api/ai/status", "", nil)
	var st service.AIStatus
	decode(t, w, &st)
	if w.Code != http.StatusOK || st.Configured {
		t.Errorf("status: %d %+v", w.Code, st)
	}
}
