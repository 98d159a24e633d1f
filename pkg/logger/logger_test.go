package logger

import (
	"quiz_agent_backend/internal/config"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		mode, level string
		want        zapcore.Level
	}{
		{"debug", "", zap.DebugLevel},
		{"release", "", zap.InfoLevel},
		{"debug", "warn", zap.WarnLevel},
		{"release", "bogus", zap.InfoLevel},
	}
	for _, tt := range tests {
		cfg := &config.Config{Server: config.ServerConfig{Mode: tt.mode}, Log: config.LogConfig{Level: tt.level}}
		if got := levelFor(cfg); got != tt.want {
			t.Errorf("levelFor(%s, %q) = %v, want %v", tt.mode, tt.level, got, tt.want)
		}
	}
}

func TestDomainLoggers(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := Log
	Log = zap.New(core)
	t.Cleanup(func() { Log = prev })

	Quiz("quiz-1").Info("graded")
	Generation("python", "easy", 5).Warn("fallback")

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].LoggerName != "quiz" || entries[0].ContextMap()["quizId"] != "quiz-1" {
		t.Errorf("quiz entry = %+v", entries[0])
	}
	fields := entries[1].ContextMap()
	if entries[1].LoggerName != "generation" || fields["subject"] != "python" || fields["numQuestions"] != int64(5) {
		t.Errorf("generation entry = %+v", entries[1])
	}
}
