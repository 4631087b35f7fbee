package responder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

// PromptWatcher caches the system prompt and reloads it whenever the file
// is written, created, renamed or removed.
type PromptWatcher struct {
	path    string
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	content string
}

func NewPromptWatcher(path string) (*PromptWatcher, error) {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create prompt directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors replace files on save, so watch the directory, not the file.
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &PromptWatcher{
		path:    path,
		watcher: w,
		content: loadPrompt(path),
	}, nil
}

func (p *PromptWatcher) Build() []core.Message {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return []core.Message{{Role: core.RoleSystem, Content: p.content}}
}

// Start runs the watch loop until Shutdown closes the watcher.
func (p *PromptWatcher) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Str("path", p.path).Msg("watching system prompt")

	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			p.reload()
			logger.Info().Str("op", event.Op.String()).Msg("system prompt reloaded")
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("prompt watcher error")
		}
	}
}

func (p *PromptWatcher) Shutdown(ctx context.Context) error {
	return p.watcher.Close()
}

func (p *PromptWatcher) reload() {
	content := loadPrompt(p.path)

	p.mu.Lock()
	p.content = content
	p.mu.Unlock()
}
