package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherTriggersOnStatsFile(t *testing.T) {
	chainsRoot := t.TempDir()
	chainDir := filepath.Join(chainsRoot, "v5d0", "GSM_FgOnly_-1e-3pp")
	require.NoError(t, os.MkdirAll(chainDir, 0755))

	triggered := make(chan []string, 1)
	cw, err := NewChainsWatcher(chainsRoot, func(ctx context.Context, dirs []string) {
		select {
		case triggered <- dirs:
		default:
		}
	})
	require.NoError(t, err)
	cw.debounceDur = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, cw.Start(ctx))
	defer cw.Stop()

	// Settle time for the initial watch set
	time.Sleep(100 * time.Millisecond)

	statsPath := filepath.Join(chainDir, "data-stats.dat")
	require.NoError(t, os.WriteFile(statsPath, []byte("Global Log-Evidence : -115.4 +/- 0.1\n"), 0644))

	select {
	case dirs := <-triggered:
		require.Len(t, dirs, 1)
		assert.Equal(t, chainDir, dirs[0])
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never triggered")
	}

	stats := cw.Snapshot()
	assert.GreaterOrEqual(t, stats.Events, 1)
	assert.GreaterOrEqual(t, stats.Triggered, 1)
	assert.Equal(t, statsPath, stats.LastEventPath)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	chainsRoot := t.TempDir()

	triggered := make(chan []string, 1)
	cw, err := NewChainsWatcher(chainsRoot, func(ctx context.Context, dirs []string) {
		select {
		case triggered <- dirs:
		default:
		}
	})
	require.NoError(t, err)
	cw.debounceDur = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, cw.Start(ctx))
	defer cw.Stop()

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(chainsRoot, "notes.txt"), []byte("not a stats file"), 0644))

	select {
	case dirs := <-triggered:
		t.Fatalf("unexpected trigger for %v", dirs)
	case <-time.After(600 * time.Millisecond):
	}

	assert.Equal(t, 0, cw.Snapshot().Events)
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	chainsRoot := t.TempDir()

	triggered := make(chan []string, 1)
	cw, err := NewChainsWatcher(chainsRoot, func(ctx context.Context, dirs []string) {
		select {
		case triggered <- dirs:
		default:
		}
	})
	require.NoError(t, err)
	cw.debounceDur = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, cw.Start(ctx))
	defer cw.Stop()

	time.Sleep(100 * time.Millisecond)

	// A chain directory created after Start must enter the watch set
	chainDir := filepath.Join(chainsRoot, "new-run")
	require.NoError(t, os.Mkdir(chainDir, 0755))
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(chainDir, "data-.stats"), []byte("log(Z) = -115.2 +/- 0.1\n"), 0644))

	select {
	case dirs := <-triggered:
		require.Len(t, dirs, 1)
		assert.Equal(t, chainDir, dirs[0])
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never triggered for new directory")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	cw, err := NewChainsWatcher(t.TempDir(), nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cw.Start(ctx))

	cw.Stop()
	cw.Stop()
}

func TestIsStatsFile(t *testing.T) {
	assert.True(t, isStatsFile("/chains/run/data-stats.dat"))
	assert.True(t, isStatsFile("/chains/run/data-.stats"))
	assert.False(t, isStatsFile("/chains/run/data-post_equal_weights.dat"))
	assert.False(t, isStatsFile("/chains/run/notes.txt"))
}
