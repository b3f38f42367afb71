// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import "time"

// Config holds common configuration for the engine.
//
// All fields have sensible defaults set by [NewConfig]. No constructor in
// this package reads a Config: [NewVFS], [NewEvaluator] and [NewNode] take
// their logger, classifier and clock as separate arguments.
type Config struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use (configurable for testing or custom logging).
	//
	// Set by [NewConfig] to [DefaultSLogger].
	Logger SLogger

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time

	// ClockStart is the initial value of the engine's [Clock]. Non-zero
	// values are useful for deterministic-replay tests that resume a
	// recorded event script mid-stream.
	//
	// Set by [NewConfig] to 0.
	ClockStart uint64

	// ModuleSearch lists directories for `.bn` module sources. [VFS] does
	// not search them: it loads the entry file from the directory given to
	// [NewVFS].
	//
	// Set by [NewConfig] to nil.
	ModuleSearch []string
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		ErrClassifier: DefaultErrClassifier,
		Logger:        DefaultSLogger(),
		TimeNow:       time.Now,
	}
}
