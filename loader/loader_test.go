package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "page.html", "<h1>hi</h1>")
	writeFile(t, dir, "partials/nav.html", "<nav/>")

	fs, err := New(dir)
	require.NoError(t, err)

	source, err := fs.Load("page.html")
	require.NoError(t, err)
	assert.Equal(t, "<h1>hi</h1>", source)

	source, err = fs.Load("partials/nav.html")
	require.NoError(t, err)
	assert.Equal(t, "<nav/>", source)
}

func TestLoadMissingFile(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = fs.Load("ghost.html")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestNewRejectsBadRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = New(file)
	require.Error(t, err)
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "page.html", "v1")

	fs, err := New(dir)
	require.NoError(t, err)

	source, err := fs.Load("page.html")
	require.NoError(t, err)
	assert.Equal(t, "v1", source)

	// the cache serves the old copy until invalidated
	writeFile(t, dir, "page.html", "v2")
	source, err = fs.Load("page.html")
	require.NoError(t, err)
	assert.Equal(t, "v1", source)

	fs.Invalidate("page.html")
	source, err = fs.Load("page.html")
	require.NoError(t, err)
	assert.Equal(t, "v2", source)
}

func TestInvalidateHook(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "page.html", "x")

	fs, err := New(dir)
	require.NoError(t, err)

	var dropped []string
	fs.OnInvalidate(func(name string) {
		dropped = append(dropped, name)
	})

	_, err = fs.Load("page.html")
	require.NoError(t, err)
	fs.Invalidate("page.html")
	assert.Equal(t, []string{"page.html"}, dropped)
}

func TestTraversalRejected(t *testing.T) {
	dir := t.TempDir()
	fs, err := New(dir)
	require.NoError(t, err)

	for _, name := range []string{"../secret", "../../etc/passwd", ".."} {
		_, err := fs.Load(name)
		require.Error(t, err, "path %q must be rejected", name)
		assert.True(t, errors.Is(err, ErrOutsideRoot))
	}

	// dot segments that stay inside the root are fine
	writeFile(t, dir, "a.html", "ok")
	source, err := fs.Load("sub/../a.html")
	require.NoError(t, err)
	assert.Equal(t, "ok", source)
}

func TestWatchInvalidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "page.html", "v1")

	fs, err := New(dir)
	require.NoError(t, err)

	invalidated := make(chan string, 16)
	fs.OnInvalidate(func(name string) {
		invalidated <- name
	})

	require.NoError(t, fs.Watch())
	defer fs.Close()

	_, err = fs.Load("page.html")
	require.NoError(t, err)

	writeFile(t, dir, "page.html", "v2")

	select {
	case name := <-invalidated:
		assert.Equal(t, "page.html", name)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reported the change")
	}

	// eventually the reload sees the new content
	deadline := time.Now().Add(5 * time.Second)
	for {
		source, err := fs.Load("page.html")
		require.NoError(t, err)
		if source == "v2" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("still reading stale content %q", source)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCloseWithoutWatch(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, fs.Close())
}
