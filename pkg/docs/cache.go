package docs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// CachedSource serves records loaded once from a FileSource and reloads them
// whenever the file changes on disk. A failed reload keeps the previous records.
type CachedSource struct {
	file    *FileSource
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	records []Record

	done      chan struct{}
	closeOnce sync.Once
}

// NewCachedSource performs the initial load and starts watching the file.
func NewCachedSource(ctx context.Context, file *FileSource, logger *zap.Logger) (*CachedSource, error) {
	records, err := file.Load(ctx)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create document watcher: %w", err)
	}

	// Watch the directory so editors that replace the file by rename are seen.
	if err := watcher.Add(filepath.Dir(file.Path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", file.Path, err)
	}

	c := &CachedSource{
		file:    file,
		logger:  logger,
		watcher: watcher,
		records: records,
		done:    make(chan struct{}),
	}
	go c.watch()

	logger.Info("document cache loaded",
		zap.String("path", file.Path),
		zap.Int("records", len(records)),
	)
	return c, nil
}

// Load returns the cached records.
func (c *CachedSource) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.records, nil
}

// Close stops the watcher.
func (c *CachedSource) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.watcher.Close()
	})
	return err
}

func (c *CachedSource) watch() {
	target := filepath.Clean(c.file.Path)
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			c.reload()
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("document watcher error", zap.Error(err))
		}
	}
}

func (c *CachedSource) reload() {
	records, err := c.file.Load(context.Background())
	if err != nil {
		c.logger.Warn("document reload failed, keeping previous records",
			zap.String("path", c.file.Path),
			zap.Error(err),
		)
		return
	}

	c.mu.Lock()
	c.records = records
	c.mu.Unlock()

	c.logger.Info("documents reloaded", zap.Int("records", len(records)))
}
