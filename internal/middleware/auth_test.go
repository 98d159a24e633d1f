package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"quiz_agent_backend/internal/model"
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

func tokenFor(t *testing.T, id uint, role model.UserRole) string {
	t.Helper()
	user := &model.User{Role: role}
	user.ID = id
	token, err := util.GenerateJWT(user, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func actorEcho(c *gin.Context) {
	a := util.GetActor(c)
	c.JSON(http.StatusOK, gin.H{"id": a.ID, "role": a.Role})
}

func serve(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), actorEcho)

	if w := serve(r, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", w.Code)
	}
	if w := serve(r, "/me", "garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d", w.Code)
	}
	if w := serve(r, "/me", tokenFor(t, 1, "wizard")); w.Code != http.StatusUnauthorized {
		t.Errorf("unknown role: status = %d", w.Code)
	}
	if w := serve(r, "/me", tokenFor(t, 1, model.Teacher)); w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d", w.Code)
	}
	if w := serve(r, "/me?token="+tokenFor(t, 1, model.Student), ""); w.Code != http.StatusOK {
		t.Errorf("query token: status = %d", w.Code)
	}
}

func TestTryAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/quizzes", TryAuthMiddleware(secret), actorEcho)

	w := serve(r, "/quizzes", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"id":0,"role":"guest"}` {
		t.Errorf("guest: %d %s", w.Code, w.Body.String())
	}
	w = serve(r, "/quizzes", tokenFor(t, 7, model.Student))
	if w.Code != http.StatusOK || w.Body.String() != `{"id":7,"role":"student"}` {
		t.Errorf("student: %d %s", w.Code, w.Body.String())
	}
	if w := serve(r, "/quizzes", "garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("invalid token should be rejected, got %d", w.Code)
	}
}

func TestRoleMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/staff", AuthMiddleware(secret), RoleMiddleware(model.Teacher, model.Admin), actorEcho)

	cases := map[model.UserRole]int{
		model.Teacher:    http.StatusOK,
		model.Admin:      http.StatusOK,
		model.SuperAdmin: http.StatusOK,
		model.Student:    http.StatusForbidden,
		model.Guest:      http.StatusForbidden,
	}
	for role, want := range cases {
		if w := serve(r, "/staff", tokenFor(t, 3, role)); w.Code != want {
			t.Errorf("%s: status = %d, want %d", role, w.Code, want)
		}
	}
}

type recordingActivity struct {
	mu   sync.Mutex
	ids  []uint
	done chan struct{}
}

func (r *recordingActivity) UpdateLastSeen(_ context.Context, id uint) error {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
	close(r.done)
	return nil
}

func TestActivityMiddleware(t *testing.T) {
	repo := &recordingActivity{done: make(chan struct{})}
	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), ActivityMiddleware(repo), actorEcho)

	if w := serve(r, "/me", tokenFor(t, 12, model.Student)); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatal("last seen was not updated")
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.ids) != 1 || repo.ids[0] != 12 {
		t.Errorf("ids = %v", repo.ids)
	}
}
