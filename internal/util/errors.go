package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrResultNotFound   = errors.New("quiz result not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrGenerationFailed = errors.New("AI generation failed")
	ErrAIUnavailable    = errors.New("AI service not configured")
	ErrEmptyCompletion  = errors.New("AI service returned an empty response")
	ErrParse            = errors.New("could not parse AI response")
	ErrInvalidQuestion  = errors.New("invalid question")
)

// ValidationError 请求参数不合法
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

// AuthorizationError 可见性或删除规则不允许当前操作
type AuthorizationError struct {
	Action string
	Reason string
}

func NewAuthorizationError(action, reason string) *AuthorizationError {
	return &AuthorizationError{Action: action, Reason: reason}
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not allowed to %s: %s", e.Action, e.Reason)
}

func (e *AuthorizationError) Unwrap() error { return ErrPermissionDenied }

// GenerationError AI 生成和兜底模板都没有产出题目
type GenerationError struct {
	Issues []string
}

func (e *GenerationError) Error() string {
	msg := ErrGenerationFailed.Error()
	if len(e.Issues) > 0 {
		msg += ": " + strings.Join(e.Issues, "; ")
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return ErrGenerationFailed }

func (e *GenerationError) Remediation() string {
	return "retry later, reduce the number of questions, or create the quiz manually"
}
