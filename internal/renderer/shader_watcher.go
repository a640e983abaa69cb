package renderer

import (
	"sort"
	"sync"

	"Winter3D/internal/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// =============================================================================
// SHADER HOT-RELOAD WATCHER
// =============================================================================

// ShaderWatcher watches a shader directory and queues the names of programs
// whose sources changed. GL calls stay on the render thread: the loop drains
// Pending and reloads there.
type ShaderWatcher struct {
	watcher *fsnotify.Watcher
	pending map[string]struct{}
	mu      sync.Mutex
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	err     error
}

func NewShaderWatcher(dir string) (*ShaderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	sw := &ShaderWatcher{
		watcher: watcher,
		pending: make(map[string]struct{}),
		done:    make(chan struct{}),
	}
	sw.wg.Add(1)
	go sw.watchLoop()

	logger.Log.Info("Watching shaders", zap.String("dir", dir))
	return sw, nil
}

func (sw *ShaderWatcher) watchLoop() {
	defer sw.wg.Done()
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if name, ok := programNameFromPath(event.Name); ok {
				sw.queue(name)
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("Shader watcher error", zap.Error(err))
		}
	}
}

func (sw *ShaderWatcher) queue(name string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.pending[name] = struct{}{}
}

// Pending returns and clears the queued program names, sorted.
func (sw *ShaderWatcher) Pending() []string {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if len(sw.pending) == 0 {
		return nil
	}
	names := make([]string, 0, len(sw.pending))
	for name := range sw.pending {
		names = append(names, name)
	}
	sw.pending = make(map[string]struct{})
	sort.Strings(names)
	return names
}

// Close stops the shader watcher. Later calls return the first result.
func (sw *ShaderWatcher) Close() error {
	sw.once.Do(func() {
		close(sw.done)
		sw.err = sw.watcher.Close()
		sw.wg.Wait()
	})
	return sw.err
}
