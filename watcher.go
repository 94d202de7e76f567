package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pipe01/jsxcheck/internal/workspace"
	"github.com/tliron/commonlog"
)

var watchLog = commonlog.GetLogger("jsxcheck.watch")

type Watcher struct {
	// Guards the maps and serializes checks
	mu sync.Mutex

	watchingDirs, watchingFiles map[string]struct{}

	watcher *fsnotify.Watcher
	out     io.Writer
	opts    *options
}

func NewWatcher(out io.Writer, opts *options) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watchingDirs:  make(map[string]struct{}),
		watchingFiles: make(map[string]struct{}),
		watcher:       watcher,
		out:           out,
		opts:          opts,
	}
	go w.eventLoop()

	return w, nil
}

// WatchFile checks the file once and again every time it is written to.
func (w *Watcher) WatchFile(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	fullPath, _ := filepath.Abs(path)
	w.watchingFiles[fullPath] = struct{}{}

	w.fileModified(fullPath)

	dir := filepath.Dir(fullPath)
	if _, ok := w.watchingDirs[dir]; ok {
		return nil
	}

	err := w.watcher.Add(dir)
	if err != nil {
		return err
	}

	w.watchingDirs[dir] = struct{}{}

	return nil
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			fname, _ := filepath.Abs(event.Name)

			w.mu.Lock()
			if _, ok := w.watchingFiles[fname]; ok {
				w.fileModified(fname)
			}
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			watchLog.Errorf("watcher error: %s", err)
		}
	}
}

func (w *Watcher) fileModified(fullPath string) {
	name := filepath.Base(fullPath)

	watchLog.Noticef("checking %q", name)

	ws := workspace.New(filepath.Dir(fullPath), w.opts.check)

	_, err := checkFile(w.out, ws, name, w.opts)
	if err != nil {
		watchLog.Errorf("failed to check file %q: %s", fullPath, err)
	}
}
