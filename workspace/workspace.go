package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dhamidi/wat/format"
	"github.com/dhamidi/wat/parser"
)

// Workspace holds the parsed .wat files below a root directory plus any
// documents opened by an editor.
type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	opts    []parser.Option
	files   map[string]*File
}

type File struct {
	Path    string
	Version int32
	Doc     *format.Document

	// Open is set while an editor owns the content. Disk scans leave open
	// files alone.
	Open bool
}

func New(rootDir string, opts ...parser.Option) *Workspace {
	return &Workspace{
		rootDir: rootDir,
		opts:    opts,
		files:   make(map[string]*File),
	}
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

// IsSource reports whether path names a WebAssembly text file.
func IsSource(path string) bool {
	switch filepath.Ext(path) {
	case ".wat", ".wast":
		return true
	}
	return false
}

// ScanAll parses every source file below the root directory. Hidden
// directories are skipped. Unreadable entries do not stop the walk; their
// errors are joined into the result.
func (w *Workspace) ScanAll() error {
	var errs []error
	walkErr := filepath.WalkDir(w.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if d.IsDir() {
			if path != w.rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSource(path) {
			if err := w.ScanFile(path); err != nil {
				errs = append(errs, err)
			}
		}
		return nil
	})
	return errors.Join(append(errs, walkErr)...)
}

// ScanFile parses path from disk unless an editor has it open.
func (w *Workspace) ScanFile(path string) error {
	if f := w.GetFile(path); f != nil && f.Open {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	w.store(path, string(content), 0, false)
	return nil
}

// UpdateFile reparses path with content owned by an editor and returns the
// stored file.
func (w *Workspace) UpdateFile(path, content string, version int32) *File {
	return w.store(path, content, version, true)
}

// CloseFile hands path back to the disk: it is rescanned, or dropped when
// it cannot be read.
func (w *Workspace) CloseFile(path string) *File {
	w.mu.Lock()
	if f := w.files[path]; f != nil {
		closed := *f
		closed.Open = false
		w.files[path] = &closed
	}
	w.mu.Unlock()

	if err := w.ScanFile(path); err != nil {
		w.mu.Lock()
		if f := w.files[path]; f != nil && !f.Open {
			delete(w.files, path)
		}
		w.mu.Unlock()
		return nil
	}
	return w.GetFile(path)
}

func (w *Workspace) store(path, content string, version int32, open bool) *File {
	doc := format.NewDocument(path, content, w.opts...)
	f := &File{Path: path, Version: version, Doc: doc, Open: open}

	w.mu.Lock()
	defer w.mu.Unlock()
	// An editor may have opened the file while the disk copy was parsed.
	if cur := w.files[path]; !open && cur != nil && cur.Open {
		return cur
	}
	w.files[path] = f
	return f
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
}

func (w *Workspace) GetFile(path string) *File {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

// AllFiles returns the stored files sorted by path.
func (w *Workspace) AllFiles() []*File {
	w.mu.RLock()
	files := make([]*File, 0, len(w.files))
	for _, f := range w.files {
		files = append(files, f)
	}
	w.mu.RUnlock()

	slices.SortFunc(files, func(a, b *File) int { return strings.Compare(a.Path, b.Path) })
	return files
}

// ErrorCount is the number of syntax errors over all files.
func (w *Workspace) ErrorCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for _, f := range w.files {
		n += len(f.Doc.Errors)
	}
	return n
}
