package service

import (
	"encoding/json"
	"fmt"
	"quiz_agent_backend/internal/util"
	"strings"
)

// CandidateQuestion 模型返回的未校验题目
type CandidateQuestion map[string]interface{}

const codeFence = "```"

// ParseQuizResponse 去掉 markdown 代码块标记后按 JSON 数组解析
func ParseQuizResponse(raw string) ([]CandidateQuestion, error) {
	body := stripCodeFence(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty body", util.ErrParse)
	}

	var candidates []CandidateQuestion
	if err := json.Unmarshal([]byte(body), &candidates); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrParse, err)
	}
	if candidates == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", util.ErrParse)
	}
	return candidates, nil
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, codeFence) {
		s = strings.TrimPrefix(s, codeFence)
		// 跳过语言标记，如 ```json
		i := 0
		for i < len(s) && isLangTagByte(s[i]) {
			i++
		}
		s = s[i:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, codeFence)
	return strings.TrimSpace(s)
}

func isLangTagByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_' || c == '+'
}
