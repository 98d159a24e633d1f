package service

import (
	"fmt"
	"quiz_agent_backend/internal/model"
	"quiz_agent_backend/internal/util"
	"strings"
)

const optionsPerQuestion = 4

var requiredQuestionFields = []string{"question_text", "options", "correct_answer", "explanation"}

// ValidateQuestion 校验单道候选题的结构，不修改输入
func ValidateQuestion(c CandidateQuestion) error {
	for _, field := range requiredQuestionFields {
		if _, ok := c[field]; !ok {
			return invalidQuestion("missing field %q", field)
		}
	}

	for _, field := range []string{"question_text", "correct_answer", "explanation"} {
		s, ok := c[field].(string)
		if !ok {
			return invalidQuestion("field %q must be a string", field)
		}
		if strings.TrimSpace(s) == "" {
			return invalidQuestion("field %q is empty", field)
		}
	}

	options, err := candidateOptions(c)
	if err != nil {
		return err
	}

	answer := strings.TrimSpace(c["correct_answer"].(string))
	for _, opt := range options {
		if opt == answer {
			return nil
		}
	}
	return invalidQuestion("correct_answer %q is not one of the options", answer)
}

func candidateOptions(c CandidateQuestion) ([]string, error) {
	raw, ok := c["options"].([]interface{})
	if !ok {
		return nil, invalidQuestion("options must be an array")
	}
	if len(raw) != optionsPerQuestion {
		return nil, invalidQuestion("expected %d options, got %d", optionsPerQuestion, len(raw))
	}

	options := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, invalidQuestion("option %d is not a string", i+1)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, invalidQuestion("option %d is empty", i+1)
		}
		if seen[s] {
			return nil, invalidQuestion("duplicate option %q", s)
		}
		seen[s] = true
		options = append(options, s)
	}
	return options, nil
}

func invalidQuestion(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", util.ErrInvalidQuestion, fmt.Sprintf(format, args...))
}

// toQuestion 仅用于已通过 ValidateQuestion 的候选题
func toQuestion(c CandidateQuestion, difficulty model.Difficulty) model.Question {
	options, _ := candidateOptions(c)
	return model.Question{
		Text:          strings.TrimSpace(c["question_text"].(string)),
		Type:          model.MultipleChoice,
		Options:       options,
		CorrectAnswer: strings.TrimSpace(c["correct_answer"].(string)),
		Explanation:   strings.TrimSpace(c["explanation"].(string)),
		Difficulty:    difficulty,
		Points:        difficulty.DefaultPoints(),
	}
}
