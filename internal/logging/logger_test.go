package logging_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fivetwenty-io/identity-console/internal/logging"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

var _ ops.Logger = (*logging.Logger)(nil)

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer

	logger := logging.New(&quiet, false)
	logger.Debug("hidden", nil)
	logger.Info("hidden too", nil)
	logger.Warn("shown", map[string]interface{}{"key": "GET:/ops/alerts"})

	assert.NotContains(t, quiet.String(), "hidden")
	assert.Contains(t, quiet.String(), "shown")
	assert.Contains(t, quiet.String(), "GET:/ops/alerts")

	var verbose bytes.Buffer

	logger = logging.New(&verbose, true)
	logger.Debug("HTTP Request", map[string]interface{}{"method": "GET"})
	assert.Contains(t, verbose.String(), "HTTP Request")
}

func TestLogger_Fields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	logger := logging.Wrap(zap.New(core))

	logger.Error("API Response Error", map[string]interface{}{
		"status": 500,
		"path":   "/ops/alerts",
		"error":  errors.New("boom"),
		"took":   1.5,
	})

	entries := logs.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, int64(500), fields["status"])
	assert.Equal(t, "/ops/alerts", fields["path"])
	assert.Equal(t, "boom", fields["error"])
	assert.InDelta(t, 1.5, fields["took"], 0.0001)
}

func TestNop(t *testing.T) {
	t.Parallel()

	logger := logging.Nop()
	logger.Info("ignored", nil)
	require.NotNil(t, logger.Zap())
}
