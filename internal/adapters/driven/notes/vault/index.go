package vault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
	"github.com/custodia-labs/sheaf/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.NoteReader = (*Index)(nil)

// Index caches the vault's note listing and keeps it fresh with a
// filesystem watcher. Reads go straight to the Reader.
type Index struct {
	reader *Reader
	list   func(context.Context) ([]domain.NoteRef, error)

	mu    sync.RWMutex
	notes []domain.NoteRef
	stale bool
	// gen counts invalidations; a rebuild only clears stale if none
	// happened while it walked the vault.
	gen uint64

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewIndex creates an index over reader. The listing is built on first use.
func NewIndex(reader *Reader) *Index {
	return &Index{reader: reader, list: reader.ListNotes, stale: true}
}

// ReadNote delegates to the underlying reader.
func (x *Index) ReadNote(ctx context.Context, identifier string) (*domain.Note, error) {
	return x.reader.ReadNote(ctx, identifier)
}

// ListNotes returns the cached listing, rebuilding it if the vault changed.
func (x *Index) ListNotes(ctx context.Context) ([]domain.NoteRef, error) {
	x.mu.RLock()
	if !x.stale {
		out := make([]domain.NoteRef, len(x.notes))
		copy(out, x.notes)
		x.mu.RUnlock()
		return out, nil
	}
	gen := x.gen
	x.mu.RUnlock()

	notes, err := x.list(ctx)
	if err != nil {
		return nil, err
	}

	x.mu.Lock()
	x.notes = notes
	if x.gen == gen {
		x.stale = false
	}
	x.mu.Unlock()

	out := make([]domain.NoteRef, len(notes))
	copy(out, notes)
	return out, nil
}

// Watch starts watching the vault. The watcher runs until ctx is cancelled
// or Close is called. Calling Watch twice is an error.
func (x *Index) Watch(ctx context.Context) error {
	x.mu.Lock()
	if x.watcher != nil {
		x.mu.Unlock()
		return fmt.Errorf("%w: vault is already watched", domain.ErrInvalidInput)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		x.mu.Unlock()
		return fmt.Errorf("create watcher: %w", err)
	}
	x.watcher = watcher
	x.done = make(chan struct{})
	x.mu.Unlock()

	if err := x.addDirs(x.reader.Root()); err != nil {
		_ = x.Close()
		return err
	}

	go x.loop(ctx, watcher, x.done)
	logger.Debug("Watching vault %s", x.reader.Root())
	return nil
}

// Close stops the watcher, if running.
func (x *Index) Close() error {
	x.mu.Lock()
	watcher := x.watcher
	x.watcher = nil
	x.mu.Unlock()

	if watcher == nil {
		return nil
	}
	return watcher.Close()
}

// Done is closed when the watch loop exits.
func (x *Index) Done() <-chan struct{} {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.done
}

func (x *Index) loop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			_ = x.Close()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if x.handleFsEvent(event) {
				x.invalidate()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Vault watcher: %v", err)
			x.invalidate()
		}
	}
}

// handleFsEvent reports whether event can change the note listing.
// New directories are added to the watch list.
func (x *Index) handleFsEvent(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if isHidden(name) {
		return false
	}

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if err := x.addDirs(event.Name); err != nil {
				logger.Warn("Vault watcher: %v", err)
			}
			return true
		}
		return isNote(name)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A removed directory cannot be stat'ed; treat anything without
		// an extension as a possible directory.
		return isNote(name) || filepath.Ext(name) == ""
	default:
		return false
	}
}

func (x *Index) invalidate() {
	x.mu.Lock()
	x.stale = true
	x.gen++
	x.mu.Unlock()
}

func (x *Index) addDirs(root string) error {
	x.mu.RLock()
	watcher := x.watcher
	x.mu.RUnlock()
	if watcher == nil {
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
