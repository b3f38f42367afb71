// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "", cfg.ErrClassifier.Classify(nil))
	assert.NotNil(t, cfg.Logger)
	assert.Equal(t, uint64(0), cfg.ClockStart)
	assert.Nil(t, cfg.ModuleSearch)

	now := cfg.TimeNow()
	assert.False(t, now.IsZero())
}
