// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package watcher feeds log files dropped into an inbox directory to a sink.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wingedpig/vibetable/internal/events"
)

// DefaultPattern matches the files picked up from the inbox.
const DefaultPattern = "*.txt"

// Sink receives the content of a settled inbox file.
type Sink func(ctx context.Context, name string, content []byte) error

// InboxConfig configures an InboxWatcher.
type InboxConfig struct {
	Dir      string
	Pattern  string
	Debounce time.Duration
}

// fileStamp identifies one version of a file.
type fileStamp struct {
	size    int64
	modTime time.Time
}

// InboxWatcher watches a directory and hands each new or rewritten file that
// matches the pattern to the sink once writes to it have settled.
type InboxWatcher struct {
	mu        sync.Mutex
	dir       string
	pattern   string
	sink      Sink
	bus       events.Publisher
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	seen      map[string]fileStamp
	closed    bool
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// NewInboxWatcher creates the inbox directory if needed and starts watching
// it. Events are not processed until Run is called.
func NewInboxWatcher(cfg InboxConfig, sink Sink, bus events.Publisher) (*InboxWatcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("inbox dir is required")
	}
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultPattern
	}
	if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid inbox pattern %q: %w", cfg.Pattern, err)
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		dir = cfg.Dir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create inbox dir: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &InboxWatcher{
		dir:       dir,
		pattern:   cfg.Pattern,
		sink:      sink,
		bus:       bus,
		watcher:   fsWatcher,
		debouncer: NewDebouncer(cfg.Debounce),
		seen:      make(map[string]fileStamp),
		closeCh:   make(chan struct{}),
	}, nil
}

// Dir returns the absolute inbox directory.
func (w *InboxWatcher) Dir() string {
	return w.dir
}

// Run processes filesystem events until ctx is done or Close is called.
func (w *InboxWatcher) Run(ctx context.Context) error {
	log.Printf("Inbox: watching %s for %s", w.dir, w.pattern)
	for {
		select {
		case <-ctx.Done():
			w.Close()
			return nil

		case <-w.closeCh:
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Inbox: watcher error: %v", err)
		}
	}
}

// Matches reports whether a file name is picked up by the inbox.
func (w *InboxWatcher) Matches(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ok, _ := filepath.Match(w.pattern, base)
	return ok
}

func (w *InboxWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !w.Matches(event.Name) {
		return
	}
	path := event.Name
	w.debouncer.Debounce(path, func() {
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.wg.Add(1)
		w.mu.Unlock()
		defer w.wg.Done()

		if err := w.Ingest(ctx, path); err != nil {
			log.Printf("Inbox: %v", err)
		}
	})
}

// Ingest reads path and passes it to the sink. A file whose size and
// modification time are unchanged since its last ingest is skipped.
func (w *InboxWatcher) Ingest(ctx context.Context, path string) error {
	name := filepath.Base(path)
	source := "inbox:" + name

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return w.fail(ctx, source, name, err)
	}
	if info.IsDir() {
		return nil
	}
	stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}

	w.mu.Lock()
	prev, ok := w.seen[path]
	w.mu.Unlock()
	if ok && prev == stamp {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return w.fail(ctx, source, name, err)
	}
	if err := w.sink(ctx, name, content); err != nil {
		return w.fail(ctx, source, name, err)
	}

	w.mu.Lock()
	w.seen[path] = stamp
	w.mu.Unlock()

	log.Printf("Inbox: ingested %s (%d bytes)", name, len(content))
	events.Emit(ctx, w.bus, events.EventInboxIngested, source, map[string]interface{}{
		"file": name,
		"size": len(content),
	})
	return nil
}

func (w *InboxWatcher) fail(ctx context.Context, source, name string, err error) error {
	events.Emit(ctx, w.bus, events.EventInboxFailed, source, map[string]interface{}{
		"file":  name,
		"error": err.Error(),
	})
	return fmt.Errorf("ingesting %s: %w", name, err)
}

// Close stops the watcher and waits for in-flight ingests.
func (w *InboxWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debouncer.Stop()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
