package service

import (
	"context"
	"errors"
	"fmt"
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/pkg/logger"
	"quiz_agent_backend/pkg/monitoring"
	"quiz_agent_backend/pkg/tracing"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type GenerationStatus string

const (
	GenerationGenerated GenerationStatus = "generated"
	GenerationFailed    GenerationStatus = "failed"
)

type GenerationStage string

const (
	StageBuildingPrompt GenerationStage = "BUILDING_PROMPT"
	StageCallingService GenerationStage = "CALLING_SERVICE"
	StageParsing        GenerationStage = "PARSING"
	StageValidating     GenerationStage = "VALIDATING"
	StageSuccess        GenerationStage = "SUCCESS"
	StageFallback       GenerationStage = "FALLBACK"
)

type GenerationSource string

const (
	SourceAI       GenerationSource = "ai"
	SourceFallback GenerationSource = "fallback"
)

// TextGenerator 外部文本生成服务
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FallbackProvider 本地兜底出题
type FallbackProvider interface {
	Questions(req GenerationRequest) []model.Question
}

type GenerationResult struct {
	Status GenerationStatus `json:"status"`
	Stage  GenerationStage  `json:"stage"`
	Source GenerationSource `json:"source,omitempty"`
	// QualityScore 通过校验的候选题占比，兜底时为 0
	QualityScore float64          `json:"qualityScore"`
	Candidates   int              `json:"candidates"`
	Questions    []model.Question `json:"-"`
	Issues       []string         `json:"issues,omitempty"`
}

// GenerationOrchestrator 串联 prompt 构建、外部调用、解析、校验，失败时走模板兜底。
// Generate 从不返回 error，结果状态见 GenerationResult.Status。
type GenerationOrchestrator struct {
	Generator TextGenerator
	Fallback  FallbackProvider

	mu      sync.RWMutex
	timeout time.Duration
}

func NewGenerationOrchestrator(generator TextGenerator, fallback FallbackProvider, timeout time.Duration) *GenerationOrchestrator {
	return &GenerationOrchestrator{
		Generator: generator,
		Fallback:  fallback,
		timeout:   timeout,
	}
}

// SetTimeout 配置热更新时调用
func (o *GenerationOrchestrator) SetTimeout(timeout time.Duration) {
	o.mu.Lock()
	o.timeout = timeout
	o.mu.Unlock()
}

func (o *GenerationOrchestrator) Timeout() time.Duration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.timeout
}

func (o *GenerationOrchestrator) Generate(ctx context.Context, req GenerationRequest) *GenerationResult {
	ctx, span := tracing.StartQuizSpan(ctx, "quiz.generate", "",
		tracing.QuizSubjectKey.String(req.Subject),
		tracing.QuizDifficultyKey.String(string(req.Difficulty)),
		tracing.QuestionCountKey.Int(req.NumQuestions),
	)
	defer span.End()

	start := time.Now()
	result := o.run(ctx, req)

	source := string(result.Source)
	if result.Status == GenerationFailed {
		source = string(GenerationFailed)
		span.SetStatus(codes.Error, strings.Join(result.Issues, "; "))
	}
	span.SetAttributes(
		tracing.GenerationSrcKey.String(source),
		tracing.GenerationStageKey.String(string(result.Stage)),
	)
	monitoring.ObserveGeneration(source, time.Since(start))
	return result
}

func (o *GenerationOrchestrator) run(ctx context.Context, req GenerationRequest) *GenerationResult {
	result := &GenerationResult{Stage: StageBuildingPrompt}
	if req.NumQuestions <= 0 {
		result.Status = GenerationFailed
		result.Issues = []string{"numQuestions must be a positive integer"}
		return result
	}
	if req.NumQuestions > MaxQuestionsPerRequest {
		req.NumQuestions = MaxQuestionsPerRequest
	}
	prompt := BuildQuizPrompt(req)

	o.enter(result, StageCallingService, req)
	raw, err := o.call(ctx, prompt)
	if err != nil {
		result.Issues = append(result.Issues, fmt.Sprintf("text generation failed: %v", err))
		return o.fallback(result, req)
	}
	if strings.TrimSpace(raw) == "" {
		result.Issues = append(result.Issues, "text generation returned an empty response")
		return o.fallback(result, req)
	}

	o.enter(result, StageParsing, req)
	candidates, err := ParseQuizResponse(raw)
	if err != nil {
		result.Issues = append(result.Issues, err.Error())
		return o.fallback(result, req)
	}

	o.enter(result, StageValidating, req)
	result.Candidates = len(candidates)
	valid := make([]model.Question, 0, len(candidates))
	for i, c := range candidates {
		if err := ValidateQuestion(c); err != nil {
			result.Issues = append(result.Issues, fmt.Sprintf("question %d: %v", i+1, err))
			continue
		}
		valid = append(valid, toQuestion(c, req.Difficulty))
	}
	if len(valid) == 0 {
		result.Issues = append(result.Issues, "no valid questions in the generated response")
		return o.fallback(result, req)
	}
	if len(candidates) > 0 {
		result.QualityScore = roundTo2(float64(len(valid)) / float64(len(candidates)))
	}
	// 多余的截断；不足时不补齐
	if len(valid) > req.NumQuestions {
		valid = valid[:req.NumQuestions]
	}
	for i := range valid {
		valid[i].ID = model.QuestionID(i)
		valid[i].Position = i
	}

	result.Stage = StageSuccess
	result.Status = GenerationGenerated
	result.Source = SourceAI
	result.Questions = valid
	genLog(req).Info("Quiz questions generated",
		zap.Int("accepted", len(valid)),
		zap.Float64("quality", result.QualityScore),
	)
	return result
}

// call 外部调用放在单独协程里，保证调用方超时一定生效
func (o *GenerationOrchestrator) call(ctx context.Context, prompt string) (string, error) {
	if o.Generator == nil {
		return "", errors.New("no text generation service configured")
	}

	if timeout := o.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		text, err := o.Generator.Generate(ctx, prompt)
		done <- reply{text, err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (o *GenerationOrchestrator) fallback(result *GenerationResult, req GenerationRequest) *GenerationResult {
	o.enter(result, StageFallback, req)
	result.QualityScore = 0

	var questions []model.Question
	if o.Fallback != nil {
		questions = o.Fallback.Questions(req)
	}
	if len(questions) == 0 {
		result.Status = GenerationFailed
		result.Issues = append(result.Issues, "fallback templates produced no questions")
		genLog(req).Error("Quiz generation failed", zap.Strings("issues", result.Issues))
		return result
	}

	result.Status = GenerationGenerated
	result.Source = SourceFallback
	result.Questions = questions
	genLog(req).Warn("Quiz generation fell back to templates",
		zap.Int("count", len(questions)),
		zap.Strings("issues", result.Issues),
	)
	return result
}

func (o *GenerationOrchestrator) enter(result *GenerationResult, stage GenerationStage, req GenerationRequest) {
	genLog(req).Debug("Quiz generation stage",
		zap.String("from", string(result.Stage)),
		zap.String("to", string(stage)),
	)
	result.Stage = stage
}

func genLog(req GenerationRequest) *zap.Logger {
	return logger.Generation(req.Subject, string(req.Difficulty), req.NumQuestions)
}
