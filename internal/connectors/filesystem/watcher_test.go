package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 50 * time.Millisecond

func startWatcher(t *testing.T, root string, opts WalkOptions) <-chan Batch {
	t.Helper()
	w, err := NewWatcher(root, opts, testDebounce)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan Batch, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(_ context.Context, b Batch) { batches <- b })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return batches
}

func waitBatch(t *testing.T, batches <-chan Batch) Batch {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change batch")
		return Batch{}
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root, WalkOptions{Accept: acceptExt(".txt")})

	path := filepath.Join(root, "a.txt")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.bin"), []byte("x"), 0644))

	b := waitBatch(t, batches)
	assert.Equal(t, []string{path}, b.Changed)
	assert.Empty(t, b.Removed)
}

func TestWatcher_Removal(t *testing.T) {
	root := makeTree(t, "gone.txt")
	batches := startWatcher(t, root, WalkOptions{Accept: acceptExt(".txt")})

	require.NoError(t, os.Remove(filepath.Join(root, "gone.txt")))

	b := waitBatch(t, batches)
	assert.Equal(t, []string{filepath.Join(root, "gone.txt")}, b.Removed)
}

func TestWatcher_NewSubdirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root, WalkOptions{Accept: acceptExt(".txt")})

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(testDebounce)
	path := filepath.Join(sub, "new.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	b := waitBatch(t, batches)
	assert.Contains(t, b.Changed, path)
}

func TestWatcher_MissingRoot(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope"), WalkOptions{}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root path error")
}

func TestWatcher_Handle(t *testing.T) {
	root := makeTree(t, "doc.txt", ".hidden.txt", "bin.exe")
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0755))
	w := &Watcher{root: root, opts: WalkOptions{Accept: acceptExt(".txt")}}

	tests := []struct {
		name        string
		file        string
		op          fsnotify.Op
		wantCounted bool
		wantChanged bool
		wantRemoved bool
	}{
		{name: "write", file: "doc.txt", op: fsnotify.Write, wantCounted: true, wantChanged: true},
		{name: "create", file: "doc.txt", op: fsnotify.Create, wantCounted: true, wantChanged: true},
		{name: "remove", file: "old.txt", op: fsnotify.Remove, wantCounted: true, wantRemoved: true},
		{name: "rename", file: "moved.txt", op: fsnotify.Rename, wantCounted: true, wantRemoved: true},
		{name: "chmod ignored", file: "doc.txt", op: fsnotify.Chmod},
		{name: "hidden ignored", file: ".hidden.txt", op: fsnotify.Write},
		{name: "unaccepted ignored", file: "bin.exe", op: fsnotify.Write},
		{name: "directory write ignored", file: "dir", op: fsnotify.Write},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := map[string]bool{}
			removed := map[string]bool{}
			path := filepath.Join(root, tt.file)

			counted := w.handle(fsnotify.Event{Name: path, Op: tt.op}, changed, removed)
			assert.Equal(t, tt.wantCounted, counted)
			assert.Equal(t, tt.wantChanged, changed[path])
			assert.Equal(t, tt.wantRemoved, removed[path])
		})
	}
}

func TestBatch_Empty(t *testing.T) {
	assert.True(t, Batch{}.Empty())
	assert.False(t, Batch{Removed: []string{"x"}}.Empty())
}
