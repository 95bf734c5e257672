package workspace

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/dhamidi/wat/logging"
)

// FileWatcher keeps a Workspace in sync with the source files below its
// root directory.
type FileWatcher struct {
	workspace *Workspace
	watcher   *fsnotify.Watcher

	// OnChange is called after a file was reparsed or removed. A removed
	// file is reported with a nil *File.
	OnChange func(path string, f *File)
}

func NewFileWatcher(w *Workspace) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &FileWatcher{workspace: w, watcher: watcher}
	if err := fw.addTree(w.RootDir()); err != nil {
		watcher.Close()
		return nil, err
	}
	return fw, nil
}

// addTree watches dir and every non-hidden directory below it.
func (fw *FileWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.watcher.Add(path)
	})
}

// Run processes file system events until ctx is done.
func (fw *FileWatcher) Run(ctx context.Context) error {
	defer fw.watcher.Close()
	log := logging.FromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			fw.handle(ctx, event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				log.Warn("watch events dropped, rescanning", logging.FieldError, err)
				fw.rescan(ctx)
				continue
			}
			log.Error("watch failed", logging.FieldError, err)
		}
	}
}

// rescan rereads the whole tree and reports every file not owned by an
// editor. Files gone from disk are removed.
func (fw *FileWatcher) rescan(ctx context.Context) {
	log := logging.FromContext(ctx)
	if err := fw.workspace.ScanAll(); err != nil {
		log.Warn("rescan incomplete", logging.FieldError, err)
	}
	for _, f := range fw.workspace.AllFiles() {
		if f.Open {
			continue
		}
		if _, err := os.Stat(f.Path); err != nil {
			fw.workspace.RemoveFile(f.Path)
			fw.notify(f.Path, nil)
			continue
		}
		fw.notify(f.Path, f)
	}
	log.Debug("rescan done", logging.FieldFiles, len(fw.workspace.AllFiles()))
}

func (fw *FileWatcher) handle(ctx context.Context, event fsnotify.Event) {
	log := logging.FromContext(ctx).With(logging.FieldEvent, event.Op.String())
	path := event.Name

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if f := fw.workspace.GetFile(path); f == nil || f.Open {
			return
		}
		fw.workspace.RemoveFile(path)
		log.Debug("file removed", logging.FieldPath, path)
		fw.notify(path, nil)

	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		if event.Has(fsnotify.Create) {
			if err := fw.addTree(path); err != nil {
				log.Warn("cannot watch directory", logging.FieldPath, path, logging.FieldError, err)
			}
		}
		if !IsSource(path) {
			return
		}
		if f := fw.workspace.GetFile(path); f != nil && f.Open {
			return
		}
		if err := fw.workspace.ScanFile(path); err != nil {
			log.Warn("cannot read file", logging.FieldPath, path, logging.FieldError, err)
			return
		}
		f := fw.workspace.GetFile(path)
		log.Debug("file parsed", logging.FieldPath, path, logging.FieldErrors, len(f.Doc.Errors))
		fw.notify(path, f)
	}
}

func (fw *FileWatcher) notify(path string, f *File) {
	if fw.OnChange != nil {
		fw.OnChange(path, f)
	}
}
