// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedpig/vibetable/internal/events"
)

type captureSink struct {
	mu    sync.Mutex
	files map[string]string
	calls int
	err   error
}

func (c *captureSink) sink(ctx context.Context, name string, content []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return c.err
	}
	if c.files == nil {
		c.files = make(map[string]string)
	}
	c.files[name] = string(content)
	return nil
}

func (c *captureSink) get(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.files[name]
	return s, ok
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestNewInboxWatcher(t *testing.T) {
	_, err := NewInboxWatcher(InboxConfig{}, nil, nil)
	assert.Error(t, err)

	_, err = NewInboxWatcher(InboxConfig{Dir: t.TempDir(), Pattern: "[bad"}, nil, nil)
	assert.Error(t, err)

	dir := filepath.Join(t.TempDir(), "nested", "inbox")
	w, err := NewInboxWatcher(InboxConfig{Dir: dir}, (&captureSink{}).sink, nil)
	require.NoError(t, err)
	defer w.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInboxWatcher_Matches(t *testing.T) {
	w, err := NewInboxWatcher(InboxConfig{Dir: t.TempDir()}, (&captureSink{}).sink, nil)
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.Matches("/x/pump.txt"))
	assert.False(t, w.Matches("/x/pump.csv"))
	assert.False(t, w.Matches("/x/.pump.txt"))
}

func TestInboxWatcher_Ingest(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewMemoryEventBus(events.MemoryBusConfig{})
	defer bus.Close()
	sink := &captureSink{}

	w, err := NewInboxWatcher(InboxConfig{Dir: dir}, sink.sink, bus)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	ctx := context.Background()
	require.NoError(t, w.Ingest(ctx, path))
	got, ok := sink.get("a.txt")
	require.True(t, ok)
	assert.Equal(t, "hello", got)

	// Unchanged file is skipped.
	require.NoError(t, w.Ingest(ctx, path))
	assert.Equal(t, 1, sink.count())

	// Missing files are ignored.
	assert.NoError(t, w.Ingest(ctx, filepath.Join(dir, "gone.txt")))

	history, err := bus.History(events.EventFilter{Types: []string{"inbox.*"}})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, events.EventInboxIngested, history[0].Type)
	assert.Equal(t, "inbox:a.txt", history[0].Source)
}

func TestInboxWatcher_IngestSinkError(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewMemoryEventBus(events.MemoryBusConfig{})
	defer bus.Close()
	sink := &captureSink{err: errors.New("store full")}

	w, err := NewInboxWatcher(InboxConfig{Dir: dir}, sink.sink, bus)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	err = w.Ingest(context.Background(), path)
	assert.ErrorContains(t, err, "store full")

	history, err := bus.History(events.EventFilter{Types: []string{events.EventInboxFailed}})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "b.txt", history[0].Payload["file"])

	// A failed file is retried on the next attempt.
	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()
	require.NoError(t, w.Ingest(context.Background(), path))
	_, ok := sink.get("b.txt")
	assert.True(t, ok)
}

func TestInboxWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	sink := &captureSink{}

	w, err := NewInboxWatcher(InboxConfig{Dir: dir, Debounce: 20 * time.Millisecond}, sink.sink, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.csv"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pump.txt"), []byte("log text"), 0644))

	assert.Eventually(t, func() bool {
		got, ok := sink.get("pump.txt")
		return ok && got == "log text"
	}, 2*time.Second, 10*time.Millisecond)

	_, ok := sink.get("ignored.csv")
	assert.False(t, ok)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.NoError(t, w.Close())
}
