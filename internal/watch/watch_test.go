package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/defectgen/internal/testutil"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()

	w, err := New([]string{filepath.Join(dir, "POSCAR"), "", filepath.Join(dir, "defectgen.yaml")}, nil)
	require.NoError(t, err)
	assert.Len(t, w.files, 2)
	assert.Len(t, w.dirs, 1)

	_, err = New([]string{""}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to watch")
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	watched := testutil.WriteFile(t, dir, "POSCAR", "before")
	other := filepath.Join(dir, "notes.txt")

	w, err := New([]string{watched}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	w.Delay = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, path string) { changes <- path })
	}()

	// the watch is registered asynchronously; keep writing until it is seen
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	var got string
wait:
	for {
		select {
		case got = <-changes:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(other, []byte("ignored"), 0600))
			require.NoError(t, os.WriteFile(watched, []byte("after"), 0600))
		case <-deadline:
			t.Fatal("no change reported")
		}
	}

	assert.Equal(t, filepath.Base(watched), filepath.Base(got))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_RunMissingDirectory(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "gone", "POSCAR")}, nil)
	require.NoError(t, err)

	err = w.Run(context.Background(), func(context.Context, string) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch")
}
