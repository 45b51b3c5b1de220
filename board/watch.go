package board

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/taskwell/taskwell/internal/logger"
)

// Watcher reloads the service when the backing data file is rewritten by
// another process. This is a best-effort convenience for long-running
// views; last writer still wins, exactly as with two browser tabs on one
// storage key.
type Watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}
}

// NewWatcher watches the file at path and calls svc.Reload on writes.
func NewWatcher(path string, svc *Service, log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.NewNoOp()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors and atomic renames replace the file
	// inode, which would silently detach a direct file watch.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{fw: fw, done: make(chan struct{})}
	name := filepath.Base(path)
	go func() {
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				log.Debug("data file changed externally, reloading", "event", event.Op.String())
				if err := svc.Reload(); err != nil {
					log.Warn("reload after external change failed", "error", err)
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				log.Warn("file watcher error", "error", err)
			case <-w.done:
				return
			}
		}
	}()
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
