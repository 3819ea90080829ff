package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go-markdown-view/internal/store"
)

// fileBinding is the content binding of a Markdown file. Changes on disk are
// picked up by poll; document edits are written back when writeBack is set.
type fileBinding struct {
	*store.Value
	path      string
	writeBack bool

	// mu orders file reads and writes with the Value updates they cause, so
	// a poll cannot revert a concurrent document edit.
	mu sync.Mutex
	// disk is the file content last read or written by us. poll only
	// publishes when the file differs from it, so an unsaved document edit
	// survives.
	disk string
}

func newFileBinding(path string, writeBack bool) (*fileBinding, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	return &fileBinding{
		Value:     store.NewValue(string(data)),
		path:      path,
		writeBack: writeBack,
		disk:      string(data),
	}, nil
}

// Set records a document edit.
func (b *fileBinding) Set(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Value.Get() == text {
		return
	}
	if b.writeBack {
		if err := os.WriteFile(b.path, []byte(text), 0o644); err != nil { // #nosec G306 -- same mode as an editor save
			tracer().Errorf("writing %s: %v", b.path, err)
			return
		}
		b.disk = text
	}
	b.Value.Set(text)
}

// poll re-reads the file and publishes it if it changed on disk.
func (b *fileBinding) poll() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, err := os.ReadFile(b.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	if string(data) == b.disk {
		return nil
	}
	b.disk = string(data)
	b.Value.Set(b.disk)
	return nil
}

// watch polls every interval until ctx is done. A zero interval disables it.
func (b *fileBinding) watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.poll(); err != nil {
				tracer().Debugf("polling: %v", err)
			}
		}
	}
}
