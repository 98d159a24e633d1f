package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := Tracer
	Tracer = tp.Tracer(ServiceName)
	t.Cleanup(func() { Tracer = prev })
	return sr
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestGinMiddlewareTagsQuizRoutes(t *testing.T) {
	sr := recordSpans(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/quizzes/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/results/:id", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/api/quizzes/abc", "/api/results/r-1"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("spans = %d", len(spans))
	}
	quiz := attrs(spans[0])
	if spans[0].Name() != "GET /api/quizzes/:id" || quiz[QuizIDKey].AsString() != "abc" {
		t.Errorf("quiz span = %s %v", spans[0].Name(), quiz)
	}
	result := attrs(spans[1])
	if _, ok := result[QuizIDKey]; ok {
		t.Error("result route should not carry quiz.id")
	}
	if result["http.status_code"].AsInt64() != http.StatusInternalServerError {
		t.Errorf("status attribute = %v", result["http.status_code"])
	}
}

func TestStartQuizSpan(t *testing.T) {
	sr := recordSpans(t)
	_, span := StartQuizSpan(context.Background(), "quiz.grade", "quiz-9", GradePassedKey.Bool(true))
	span.End()

	got := attrs(sr.Ended()[0])
	if got[QuizIDKey].AsString() != "quiz-9" || !got[GradePassedKey].AsBool() {
		t.Errorf("attributes = %v", got)
	}
}
