package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/magpielabs/magpie/pkg/utils/logging"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level       string
		expectDebug bool
		expectInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"warning", false, false},
		{"error", false, false},
		{"DEBUG", true, true},   // case-insensitive
		{"invalid", false, true}, // falls back to info
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.New(tc.level, buf)
			gt.V(t, logger).NotNil()

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Error("error message")

			output := buf.String()
			gt.Equal(t, tc.expectDebug, bytes.Contains(buf.Bytes(), []byte("debug message")))
			gt.Equal(t, tc.expectInfo, bytes.Contains(buf.Bytes(), []byte("info message")))
			gt.S(t, output).Contains("error message")
		})
	}
}

func TestContextCarriedLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("debug", buf).With("component", "pipeline")

	ctx := logging.With(context.Background(), logger)
	gt.Equal(t, logging.From(ctx), logger)

	logging.From(ctx).Info("context message")
	output := buf.String()
	gt.S(t, output).Contains("context message")
	gt.S(t, output).Contains("pipeline")
}

func TestFromFallsBackToDefault(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	custom := logging.New("warn", buf)
	logging.SetDefault(custom)

	retrieved := logging.From(context.Background())
	gt.Equal(t, retrieved, custom)

	retrieved.Warn("warning from default")
	gt.S(t, buf.String()).Contains("warning from default")
}
