// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("default level = %q, want info", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("default format = %q, want json", cfg.Format)
	}
	if cfg.Caller {
		t.Error("caller should default to false")
	}
	if !cfg.Timestamp {
		t.Error("timestamp should default to true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("component", "test").Msg("hello")

	output := buf.String()
	if !strings.Contains(output, "hello") {
		t.Errorf("output missing message: %s", output)
	}
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("output missing level field: %s", output)
	}
	if !strings.Contains(output, `"component":"test"`) {
		t.Errorf("output missing component field: %s", output)
	}
}

func TestInitRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Debug().Msg("suppressed")
	Warn().Msg("emitted")

	output := buf.String()
	if strings.Contains(output, "suppressed") {
		t.Errorf("debug entry emitted at warn level: %s", output)
	}
	if !strings.Contains(output, "emitted") {
		t.Errorf("warn entry missing: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer Init(DefaultConfig())

	l := WithComponent("engine")
	l.Info().Msg("component test")

	if !strings.Contains(buf.String(), `"component":"engine"`) {
		t.Errorf("output missing component field: %s", buf.String())
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	SetLevelString("error")
	if GetLevel() != zerolog.ErrorLevel {
		t.Errorf("level = %v, want error", GetLevel())
	}
	if IsLevelEnabled(zerolog.InfoLevel) {
		t.Error("info should be disabled at error level")
	}
	if !IsLevelEnabled(zerolog.ErrorLevel) {
		t.Error("error should remain enabled")
	}
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer Init(DefaultConfig())

	t.Run("with request id", func(t *testing.T) {
		buf.Reset()
		ctx := ContextWithRequestID(context.Background(), "req-123")
		Ctx(ctx).Info().Msg("handled")

		if !strings.Contains(buf.String(), `"request_id":"req-123"`) {
			t.Errorf("output missing request id: %s", buf.String())
		}
	})

	t.Run("without request id", func(t *testing.T) {
		buf.Reset()
		Ctx(context.Background()).Info().Msg("handled")

		if strings.Contains(buf.String(), "request_id") {
			t.Errorf("unexpected request id field: %s", buf.String())
		}
	})

	t.Run("logger from context wins", func(t *testing.T) {
		var own bytes.Buffer
		ctx := ContextWithLogger(context.Background(), NewTestLogger(&own))
		Ctx(ctx).Info().Msg("routed")

		if !strings.Contains(own.String(), "routed") {
			t.Errorf("context logger not used: %s", own.String())
		}
	})
}

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if a == "" || a == b {
		t.Errorf("request ids should be unique and non-empty: %q, %q", a, b)
	}
}
