package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactHandler_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{
			name:     "cookie attribute is masked",
			key:      "cookie",
			value:    "letterboxd.signed.in.as=abc123",
			wantMask: true,
		},
		{
			name:     "authorization header is masked",
			key:      "Authorization",
			value:    "Bearer abcdef",
			wantMask: true,
		},
		{
			name:     "api key variants are masked",
			key:      "x-api-key",
			value:    "k-12345",
			wantMask: true,
		},
		{
			name:     "keyword substring in key is masked",
			key:      "source_auth_header",
			value:    "whatever",
			wantMask: true,
		},
		{
			name:     "jwt value is masked regardless of key",
			key:      "note",
			value:    "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig",
			wantMask: true,
		},
		{
			name:     "session cookie value is masked regardless of key",
			key:      "header_value",
			value:    "letterboxd.signed.in.as=xyz",
			wantMask: true,
		},
		{
			name:     "plain url passes through",
			key:      "url",
			value:    "https://letterboxd.com/films/",
			wantMask: false,
		},
		{
			name:     "film title passes through",
			key:      "title",
			value:    "The Substance",
			wantMask: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewRedactHandler(slog.NewTextHandler(&buf, nil)))

			logger.Info("test", tt.key, tt.value)

			got := buf.String()
			if tt.wantMask {
				if strings.Contains(got, tt.value) {
					t.Errorf("value %q leaked into output:\n%s", tt.value, got)
				}
				if !strings.Contains(got, MaskValue) {
					t.Errorf("output missing mask %q:\n%s", MaskValue, got)
				}
			} else {
				if !strings.Contains(got, tt.value) {
					t.Errorf("value %q should pass through:\n%s", tt.value, got)
				}
			}
		})
	}
}

func TestRedactHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewRedactHandler(slog.NewTextHandler(&buf, nil)))

	logger.With("cookie", "session=abc").Info("request")

	got := buf.String()
	if strings.Contains(got, "session=abc") {
		t.Errorf("WithAttrs leaked credential:\n%s", got)
	}
	if !strings.Contains(got, MaskValue) {
		t.Errorf("output missing mask:\n%s", got)
	}
}

func TestRedactHandler_Group(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewRedactHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("request", slog.Group("headers",
		slog.String("cookie", "session=abc"),
		slog.String("user-agent", "Mozilla/5.0"),
	))

	got := buf.String()
	if strings.Contains(got, "session=abc") {
		t.Errorf("group attribute leaked credential:\n%s", got)
	}
	if !strings.Contains(got, "Mozilla/5.0") {
		t.Errorf("non-sensitive group attribute should pass through:\n%s", got)
	}
}

func TestRedactHandler_NilHandler(t *testing.T) {
	t.Parallel()

	h := NewRedactHandler(nil)
	if h.handler == nil {
		t.Fatal("nil inner handler should fall back to slog default")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(LevelError) = false, want true")
	}
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	t.Run("default level is warn", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Info("hidden")
		logger.Warn("shown")

		got := buf.String()
		if strings.Contains(got, "hidden") {
			t.Errorf("info record logged at warn level:\n%s", got)
		}
		if !strings.Contains(got, "shown") {
			t.Errorf("warn record missing:\n%s", got)
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Debug("detail")

		if !strings.Contains(buf.String(), "detail") {
			t.Errorf("debug record missing in verbose mode:\n%s", buf.String())
		}
	})
}

func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)

	logger.Info("request", "cookie", "session=abc", "url", "https://example.com")

	got := buf.String()
	if !strings.HasPrefix(got, "{") {
		t.Errorf("expected JSON output, got:\n%s", got)
	}
	if strings.Contains(got, "session=abc") {
		t.Errorf("JSON output leaked credential:\n%s", got)
	}
}
