package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"quiz_agent_backend/internal/config"
	"quiz_agent_backend/internal/util"
	"quiz_agent_backend/pkg/tracing"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
)

const quizSystemPrompt = "You are an experienced teacher who writes accurate, well-formed multiple-choice quiz questions. " +
	"Always answer with raw JSON only."

// AIService OpenAI 兼容的 /chat/completions 客户端，实现 TextGenerator
type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{config: cfg, client: &http.Client{}}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []AIChatMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type AIStatus struct {
	Configured bool   `json:"configured"`
	Model      string `json:"model"`
	BaseURL    string `json:"baseUrl"`
}

// UpdateConfig 配置热更新
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
}

func (s *AIService) currentConfig() config.AIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *AIService) Status() AIStatus {
	cfg := s.currentConfig()
	return AIStatus{
		Configured: cfg.APIKey != "",
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
	}
}

// Generate 单轮补全；超时由调用方 ctx 控制
func (s *AIService) Generate(ctx context.Context, prompt string) (string, error) {
	cfg := s.currentConfig()

	ctx, span := tracing.Tracer.Start(ctx, "ai.chat_completion")
	defer span.End()
	span.SetAttributes(attribute.String("ai.model", cfg.Model))

	text, err := s.complete(ctx, cfg, prompt)
	if err != nil {
		tracing.Fail(span, err)
		return "", err
	}
	span.SetAttributes(attribute.Int("ai.response_length", len(text)))
	return text, nil
}

func (s *AIService) complete(ctx context.Context, cfg config.AIConfig, prompt string) (string, error) {
	if cfg.APIKey == "" {
		return "", util.ErrAIUnavailable
	}

	reqBody := ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: quizSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode AI response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("AI API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", util.ErrEmptyCompletion
	}
	return chatResp.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
