package util

import (
	"net/http"
	"net/http/httptest"
	"quiz_agent_backend/internal/model"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "a@example.com", Role: model.Student, SchoolID: 3, CreatedByTeacherID: 9}
	user.ID = 42

	token, err := GenerateJWT(user, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}
	claims, err := ParseJWT(token, testSecret)
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}

	actor := claims.Actor()
	want := model.Actor{ID: 42, Role: model.Student, SchoolID: 3, CreatedByTeacherID: 9}
	if actor != want {
		t.Errorf("actor = %+v, want %+v", actor, want)
	}
}

func TestParseJWTRejects(t *testing.T) {
	user := &model.User{Role: model.Teacher}
	user.ID = 1

	expired, _ := GenerateJWT(user, testSecret, -time.Minute)
	if _, err := ParseJWT(expired, testSecret); err == nil {
		t.Error("expired token accepted")
	}

	valid, _ := GenerateJWT(user, testSecret, time.Hour)
	if _, err := ParseJWT(valid, "another-secret"); err == nil {
		t.Error("token signed with another secret accepted")
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, Role: model.SuperAdmin}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := ParseJWT(none, testSecret); err == nil {
		t.Error("unsigned token accepted")
	}
}

func TestGetActorDefaultsToGuest(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if got := GetActor(c); got != model.GuestActor() {
		t.Errorf("GetActor() = %+v, want guest", got)
	}

	c.Set(ContextUserKey, &Claims{UserID: 5, Role: model.Teacher})
	if got := GetActor(c); got.ID != 5 || got.Role != model.Teacher {
		t.Errorf("GetActor() = %+v", got)
	}
}
