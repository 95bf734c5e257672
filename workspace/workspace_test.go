package workspace

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/wat/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.wat"), "(module (export))")
	writeFile(t, filepath.Join(dir, "sub", "a.wast"), "(module)")
	writeFile(t, filepath.Join(dir, "notes.txt"), "(module")
	writeFile(t, filepath.Join(dir, ".hidden", "c.wat"), "(module")

	ws := New(dir)
	require.NoError(t, ws.ScanAll())

	var paths []string
	for _, f := range ws.AllFiles() {
		paths = append(paths, f.Path)
		assert.False(t, f.Open)
	}
	assert.Equal(t, []string{
		filepath.Join(dir, "b.wat"),
		filepath.Join(dir, "sub", "a.wast"),
	}, paths)
	assert.Equal(t, 2, ws.ErrorCount())
}

func TestUpdateFileTakesPrecedenceOverDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wat")
	writeFile(t, path, "(module)")

	ws := New(dir)
	require.NoError(t, ws.ScanFile(path))
	assert.Empty(t, ws.GetFile(path).Doc.Errors)

	f := ws.UpdateFile(path, "(module (global))", 3)
	assert.True(t, f.Open)
	assert.Equal(t, int32(3), f.Version)
	assert.Len(t, f.Doc.Errors, 1)

	// Disk content is ignored while the editor owns the file.
	require.NoError(t, ws.ScanFile(path))
	assert.Same(t, f, ws.GetFile(path))

	closed := ws.CloseFile(path)
	require.NotNil(t, closed)
	assert.False(t, closed.Open)
	assert.Empty(t, closed.Doc.Errors)
	assert.True(t, f.Open, "closing must not mutate the previous snapshot")
}

func TestDiskScanDoesNotReplaceOpenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wat")
	writeFile(t, path, "(module)")

	ws := New(dir)
	// A disk scan that read the file before the editor opened it stores
	// its result afterwards.
	editor := ws.UpdateFile(path, "(module (global))", 1)
	got := ws.store(path, "(module)", 0, false)

	assert.Same(t, editor, got)
	assert.Same(t, editor, ws.GetFile(path))
	assert.True(t, ws.GetFile(path).Open)
	assert.Equal(t, "(module (global))", ws.GetFile(path).Doc.Source)

	// Editor updates still replace each other.
	next := ws.UpdateFile(path, "(module)", 2)
	assert.Same(t, next, ws.GetFile(path))
}

func TestScanAllReportsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.wat"), "(module)")
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "dangling.wat")))

	ws := New(dir)
	err := ws.ScanAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangling.wat")
	assert.NotNil(t, ws.GetFile(filepath.Join(dir, "ok.wat")))
	assert.Len(t, ws.AllFiles(), 1)
}

func TestCloseFileWithoutDiskCopy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scratch.wat")

	ws := New(dir)
	ws.UpdateFile(path, "(module", 1)
	assert.Nil(t, ws.CloseFile(path))
	assert.Nil(t, ws.GetFile(path))
	assert.Empty(t, ws.AllFiles())
}

func TestScanFileMissing(t *testing.T) {
	ws := New(t.TempDir())
	assert.Error(t, ws.ScanFile(filepath.Join(ws.RootDir(), "missing.wat")))
}

func TestIsSource(t *testing.T) {
	assert.True(t, IsSource("a.wat"))
	assert.True(t, IsSource("dir/a.wast"))
	assert.False(t, IsSource("a.wasm"))
	assert.False(t, IsSource("wat"))
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	ws := New(dir)
	fw, err := NewFileWatcher(ws)
	require.NoError(t, err)

	changes := make(chan string, 16)
	fw.OnChange = func(path string, f *File) {
		if f != nil {
			changes <- path
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Run(ctx)

	path := filepath.Join(dir, "a.wat")
	writeFile(t, path, "(module (func))")

	select {
	case got := <-changes:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
	require.NotNil(t, ws.GetFile(path))
}

func TestFileWatcherRescan(t *testing.T) {
	dir := t.TempDir()
	kept := filepath.Join(dir, "kept.wat")
	gone := filepath.Join(dir, "gone.wat")
	open := filepath.Join(dir, "open.wat")
	writeFile(t, kept, "(module)")
	writeFile(t, gone, "(module)")

	ws := New(dir)
	require.NoError(t, ws.ScanAll())
	ws.UpdateFile(open, "(module", 1)
	fw, err := NewFileWatcher(ws)
	require.NoError(t, err)
	defer fw.watcher.Close()

	writeFile(t, kept, "(module (export))")
	require.NoError(t, os.Remove(gone))
	added := filepath.Join(dir, "added.wat")
	writeFile(t, added, "(module)")

	changes := map[string]*File{}
	fw.OnChange = func(path string, f *File) {
		changes[path] = f
	}
	fw.rescan(context.Background())

	require.Len(t, changes, 3)
	assert.Contains(t, changes, gone)
	assert.Nil(t, changes[gone])
	require.NotNil(t, changes[kept])
	assert.Len(t, changes[kept].Doc.Errors, 2)
	assert.NotNil(t, changes[added])
	assert.NotContains(t, changes, open)

	assert.Nil(t, ws.GetFile(gone))
	assert.True(t, ws.GetFile(open).Open)
}

func TestFileWatcherLogsEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wat")
	writeFile(t, path, "(module)")

	ws := New(dir)
	fw, err := NewFileWatcher(ws)
	require.NoError(t, err)
	defer fw.watcher.Close()

	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.NewWithWriter(&buf, "debug"))
	fw.handle(ctx, fsnotify.Event{Name: path, Op: fsnotify.Write})

	assert.Contains(t, buf.String(), "file parsed")
	assert.Contains(t, buf.String(), "event=WRITE")
	assert.NotNil(t, ws.GetFile(path))
}
