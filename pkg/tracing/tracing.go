package tracing

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const ServiceName = "quiz-agent"

// 试卷相关的 span 属性
const (
	QuizIDKey          = attribute.Key("quiz.id")
	QuizSubjectKey     = attribute.Key("quiz.subject")
	QuizDifficultyKey  = attribute.Key("quiz.difficulty")
	QuestionCountKey   = attribute.Key("quiz.question_count")
	GenerationSrcKey   = attribute.Key("generation.source")
	GenerationStageKey = attribute.Key("generation.stage")
	GradePercentKey    = attribute.Key("grading.percentage")
	GradePassedKey     = attribute.Key("grading.passed")
)

// Tracer 未初始化 provider 时为 no-op
var Tracer = otel.Tracer(ServiceName)

func InitTracer(serviceName, collectorEndpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(collectorEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("create jaeger exporter for %s: %w", collectorEndpoint, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp, nil
}

// StartQuizSpan 业务操作的 span；quizID 为空时不打该属性
func StartQuizSpan(ctx context.Context, name, quizID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if quizID != "" {
		attrs = append(attrs, QuizIDKey.String(quizID))
	}
	return Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Fail 记录错误并标记 span 失败
func Fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		// 只有试卷路由的 :id 是试卷 ID
		quizID := ""
		if strings.Contains(route, "/quiz") {
			quizID = c.Param("id")
		}

		ctx, span := StartQuizSpan(ctx, fmt.Sprintf("%s %s", c.Request.Method, route), quizID,
			semconv.HTTPMethodKey.String(c.Request.Method),
			semconv.HTTPRouteKey.String(route),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCodeKey.Int(status))
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}
	}
}
