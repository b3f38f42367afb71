// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSLogger(t *testing.T) {
	logger := DefaultSLogger()
	assert.NotNil(t, logger)

	// Should be able to call Debug, Info, and Warn without panic (discards output).
	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "key", "value")
	logger.Warn("warn message", "key", "value")
}

func TestDiscardSLogger(t *testing.T) {
	logger := discardSLogger{}

	var _ SLogger = logger

	logger.Debug("debug message", "key1", "value1", "key2", 42)
	logger.Info("info message", "key1", "value1", "key2", 42)
	logger.Warn("warn message", "key1", "value1", "key2", 42)
}
