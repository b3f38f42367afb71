// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultErrClassifier(t *testing.T) {
	assert.Equal(t, "", DefaultErrClassifier.Classify(nil))
	assert.Equal(t, "", DefaultErrClassifier.Classify(errors.New("boom")))
}

func TestErrClassifierFunc(t *testing.T) {
	cl := ErrClassifierFunc(func(err error) string {
		if err == nil {
			return ""
		}
		return "custom"
	})
	assert.Equal(t, "custom", cl.Classify(errors.New("boom")))
}

func TestClassifyEngineError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"lex", &LexError{Message: "bad token"}, "lex-error"},
		{"parse", &ParseError{Expected: "ident", Found: "number"}, "parse-error"},
		{"resolve", &ResolveError{Message: "undefined"}, "resolve-error"},
		{"match", &MatchError{Value: "Foo"}, "match-error"},
		{"invariant", &InvariantError{Invariant: "x", Detail: "y"}, "invariant-error"},
		{"generic", errors.New("boom"), ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ClassifyEngineError(c.err))
		})
	}
}

func TestAs(t *testing.T) {
	var err error = &ParseError{Expected: "ident", Found: "number"}
	assert.True(t, As[*ParseError](err))
	assert.False(t, As[*LexError](err))
}
