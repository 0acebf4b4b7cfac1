// Package watch reloads the catalog when files in a library directory change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/utils"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher observes a library root and its category directories and calls
// OnChange once per burst of markdown changes.
type Watcher struct {
	root     string
	dirs     []string
	debounce time.Duration
	onChange func(ctx context.Context) error

	fsw  *fsnotify.Watcher
	done chan struct{}
}

// New creates a watcher for root and the named category directories.
func New(root string, categories []string, debounce time.Duration, onChange func(ctx context.Context) error) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		root:     root,
		dirs:     categories,
		debounce: debounce,
		onChange: onChange,
		done:     make(chan struct{}),
	}
}

// Start installs the watches and processes events in the background until
// ctx is cancelled. Missing category directories are picked up when they
// are created.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return err
	}
	for _, dir := range w.dirs {
		p := filepath.Join(w.root, dir)
		if err := fsw.Add(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				utils.Debug("watch: %s does not exist yet", p)
				continue
			}
			fsw.Close()
			return err
		}
	}
	w.fsw = fsw
	go w.loop(ctx)
	return nil
}

// Done is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			utils.Debug("watch: %s %s", ev.Op, ev.Name)
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			utils.Warn("watch error: %v", err)
		case <-timer.C:
			if err := w.onChange(ctx); err != nil {
				utils.Error("reload after change failed: %v", err)
			}
		}
	}
}

// relevant filters events to markdown files and newly created category
// directories, which are added to the watch list.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) && filepath.Dir(ev.Name) == filepath.Clean(w.root) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(ev.Name); err != nil {
				utils.Warn("watch: cannot add %s: %v", ev.Name, err)
			}
			return true
		}
	}
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return strings.EqualFold(filepath.Ext(ev.Name), constants.MarkdownExtension)
}
