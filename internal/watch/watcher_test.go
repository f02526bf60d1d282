// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string) <-chan struct{} {
	t.Helper()
	fired := make(chan struct{}, 16)
	w, err := New(root, 30*time.Millisecond, func() { fired <- struct{}{} })
	require.NoError(t, err)
	require.NoError(t, w.Watch())
	t.Cleanup(func() { w.Close() })
	return fired
}

func waitFired(t *testing.T, fired <-chan struct{}) {
	t.Helper()
	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("Expected a change notification")
	}
}

func TestWatcher_NotifiesOnWrite(t *testing.T) {
	root := t.TempDir()
	fired := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0644))
	waitFired(t, fired)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	fired := startWatcher(t, root)

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte{byte(i)}, 0644))
	}
	waitFired(t, fired)

	select {
	case <-fired:
		t.Error("Expected a single notification for one burst")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_LimitsRefreshRate(t *testing.T) {
	root := t.TempDir()
	fired := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("1"), 0644))
	waitFired(t, fired)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("2"), 0644))

	select {
	case <-fired:
		t.Fatal("Expected the second change to wait for the refresh interval")
	case <-time.After(300 * time.Millisecond):
	}
	waitFired(t, fired)
}

func TestWatcher_WatchesNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	fired := startWatcher(t, root)

	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(sub, 0755))
	waitFired(t, fired)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.go"), []byte("package pkg"), 0644))
	waitFired(t, fired)
}

func TestRelevant(t *testing.T) {
	w := &Watcher{root: "/repo"}

	tests := []struct {
		path     string
		expected bool
	}{
		{"/repo/main.go", true},
		{"/repo/pkg/a.go", true},
		{"/repo/.git/index", true},
		{"/repo/.git/HEAD", true},
		{"/repo/.git/index.lock", false},
		{"/repo/.git/objects/ab/cdef", false},
		{"/repo/.git/FETCH_HEAD", false},
	}

	for _, tt := range tests {
		if got := w.relevant(tt.path); got != tt.expected {
			t.Errorf("relevant(%q): expected %v, got %v", tt.path, tt.expected, got)
		}
	}
}

func TestShouldIgnore(t *testing.T) {
	for _, name := range []string{".git", ".idea", "node_modules", "vendor"} {
		if !shouldIgnore(name) {
			t.Errorf("Expected %q to be ignored", name)
		}
	}
	for _, name := range []string{"internal", "cmd", "."} {
		if shouldIgnore(name) {
			t.Errorf("Expected %q to be watched", name)
		}
	}
}
