package service

import (
	"fmt"
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/internal/util"
	"strings"
)

// MaxQuestionsPerRequest 单次生成的题目上限
const MaxQuestionsPerRequest = 100

// GenerationRequest AI 出题请求
type GenerationRequest struct {
	Subject      string           `json:"subject" binding:"required"`
	Difficulty   model.Difficulty `json:"difficulty" binding:"required"`
	NumQuestions int              `json:"numQuestions" binding:"required"`
	Topic        string           `json:"topic"`
}

// Validate 校验请求；maxQuestions<=0 时使用默认上限
func (r GenerationRequest) Validate(maxQuestions int) error {
	if maxQuestions <= 0 || maxQuestions > MaxQuestionsPerRequest {
		maxQuestions = MaxQuestionsPerRequest
	}
	if strings.TrimSpace(r.Subject) == "" {
		return util.NewValidationError("subject", "subject is required")
	}
	if !r.Difficulty.Valid() {
		return util.NewValidationError("difficulty", "unknown difficulty %q, expected easy, medium or hard", r.Difficulty)
	}
	if r.NumQuestions <= 0 {
		return util.NewValidationError("numQuestions", "must be a positive integer")
	}
	if r.NumQuestions > maxQuestions {
		return util.NewValidationError("numQuestions", "at most %d questions per request", maxQuestions)
	}
	return nil
}

// BuildQuizPrompt 纯字符串模板，不访问网络
func BuildQuizPrompt(req GenerationRequest) string {
	subject := strings.TrimSpace(req.Subject)
	topic := strings.TrimSpace(req.Topic)

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d high-quality multiple-choice quiz questions for %s at %s level",
		req.NumQuestions, subject, req.Difficulty)
	if topic != "" {
		fmt.Fprintf(&b, " on the topic: %s", topic)
	}
	b.WriteString(".\n\n")

	b.WriteString("Requirements:\n")
	b.WriteString("- Each question must have exactly 4 distinct answer options.\n")
	b.WriteString("- Exactly one option is correct, and correct_answer must repeat that option's text verbatim.\n")
	b.WriteString("- Every question needs a short explanation of why the correct answer is right.\n")
	fmt.Fprintf(&b, "- Questions must be clear, unambiguous and appropriate for %s level.\n\n", req.Difficulty)

	b.WriteString("Return ONLY a JSON array, with no commentary, using this schema:\n")
	b.WriteString(`[
  {
    "question_text": "The question text",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correct_answer": "Option A",
    "explanation": "Why Option A is correct"
  }
]`)
	fmt.Fprintf(&b, "\n\nGenerate exactly %d questions.", req.NumQuestions)
	return b.String()
}
