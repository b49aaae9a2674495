package compiler

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessFilesCollectsAllOutcomes(t *testing.T) {
	paths := []string{"a.trb", "b.trb", "c.trb", "d.trb"}
	outcomes := ProcessFiles(context.Background(), paths, 2, func(_ context.Context, path string) (string, error) {
		return strings.ToUpper(path), nil
	})

	require.Len(t, outcomes, len(paths))
	for _, path := range paths {
		out := outcomes[path]
		require.NoError(t, out.Err)
		assert.Equal(t, strings.ToUpper(path), out.Value)
	}
}

func TestProcessFilesPartialFailure(t *testing.T) {
	paths := []string{"good.trb", "bad.trb", "also-good.trb"}
	outcomes := ProcessFiles(context.Background(), paths, 2, func(_ context.Context, path string) (int, error) {
		if path == "bad.trb" {
			return 0, errors.New("boom")
		}
		return len(path), nil
	})

	// one failure never stops the rest of the batch
	require.Len(t, outcomes, 3)
	assert.Error(t, outcomes["bad.trb"].Err)
	assert.NoError(t, outcomes["good.trb"].Err)
	assert.Equal(t, len("also-good.trb"), outcomes["also-good.trb"].Value)
}

func TestProcessFilesBoundsConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	paths := make([]string, 16)
	for i := range paths {
		paths[i] = strings.Repeat("x", i+1)
	}

	ProcessFiles(context.Background(), paths, 3, func(_ context.Context, path string) (struct{}, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer active.Add(-1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestProcessFilesDefaultWorkerCount(t *testing.T) {
	outcomes := ProcessFiles(context.Background(), []string{"one.trb"}, 0, func(_ context.Context, path string) (bool, error) {
		return true, nil
	})
	assert.True(t, outcomes["one.trb"].Value)
}
