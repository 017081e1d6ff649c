package settings

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch invokes fn with freshly loaded settings whenever the file at path is
// written or replaced externally. It blocks until ctx is cancelled. Editors
// and atomic saves replace the file via rename, so the parent directory is
// watched rather than the file itself. Watcher errors are non-fatal.
func Watch(ctx context.Context, path string, fn func(*Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			s, err := Load(path)
			if err != nil {
				log.Printf("WARNING: failed to reload settings: %v", err)
				continue
			}
			fn(s)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("WARNING: settings watcher error: %v", err)
		}
	}
}
