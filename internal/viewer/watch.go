package viewer

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/engine/importer"
	"github.com/Faultbox/meshview/internal/logger"
)

// Watcher queues model files for reload when they, or files next to them,
// change on disk. Its goroutine only fills the queue; the render loop drains
// it with Drain and does the reloading on the context thread.
type Watcher struct {
	fs   *fsnotify.Watcher
	dirs map[string][]string // directory -> watched model files in it

	mu      sync.Mutex
	pending map[string]struct{}

	done chan struct{}
	wg   sync.WaitGroup
	log  *zap.Logger
}

// NewWatcher watches the directories holding paths. Directories are watched
// rather than files so editors that save by rename are still seen.
func NewWatcher(paths []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fs:      fsw,
		dirs:    make(map[string][]string),
		pending: make(map[string]struct{}),
		done:    make(chan struct{}),
		log:     logger.Named("watch"),
	}

	for _, p := range paths {
		p = cleanPath(p)
		dir := filepath.Dir(p)
		if _, ok := w.dirs[dir]; !ok {
			if err := fsw.Add(dir); err != nil {
				w.log.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
				continue
			}
		}
		w.dirs[dir] = appendUnique(w.dirs[dir], p)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.handle(cleanPath(event.Name))
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// handle queues the model that changed, or every model in the directory when
// a material or texture changed.
func (w *Watcher) handle(name string) {
	models := w.dirs[filepath.Dir(name)]
	if len(models) == 0 {
		return
	}

	var hit []string
	for _, m := range models {
		if m == name {
			hit = []string{m}
			break
		}
	}
	if hit == nil {
		if importer.Supported(name) {
			// Another model file in the same directory.
			return
		}
		hit = models
	}

	w.mu.Lock()
	for _, m := range hit {
		w.pending[m] = struct{}{}
	}
	w.mu.Unlock()
	w.log.Debug("change queued", zap.String("file", name), zap.Strings("models", hit))
}

// Drain returns and clears the queued model paths, sorted.
func (w *Watcher) Drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	out := make([]string, 0, len(w.pending))
	for p := range w.pending {
		out = append(out, p)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(out)
	return out
}

// Close stops watching and waits for the goroutine to exit.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
