// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMapPreservesOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	results, err := ParallelMap(context.Background(), 2, items, func(n int) (int, error) {
		return n * n, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9, 16, 25}, results)
}

func TestParallelMapBoundsConcurrency(t *testing.T) {
	var current, max int64
	items := make([]int, 20)
	_, err := ParallelMap(context.Background(), 3, items, func(int) (int, error) {
		n := atomic.AddInt64(&current, 1)
		for {
			m := atomic.LoadInt64(&max)
			if n <= m || atomic.CompareAndSwapInt64(&max, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		return 0, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt64(&max), int64(3))
}

func TestParallelMapPropagatesFirstError(t *testing.T) {
	wantErr := errors.New("boom")
	_, err := ParallelMap(context.Background(), 4, []int{1, 2, 3}, func(n int) (int, error) {
		if n == 2 {
			return 0, wantErr
		}
		return n, nil
	})
	require.ErrorIs(t, err, wantErr)
}

func TestParallelMapEmptyInput(t *testing.T) {
	results, err := ParallelMap(context.Background(), 4, []int{}, func(int) (int, error) {
		t.Fatal("f should not be called")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}
