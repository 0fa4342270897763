package profile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/stash/pkg/constants"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/logging"
)

// FileSource reads snapshots from a YAML or JSON file.
type FileSource struct {
	path     string
	debounce time.Duration
}

// Compile-time interface check.
var _ Source = (*FileSource)(nil)

// NewFileSource returns a source reading the snapshot file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, debounce: constants.WatchDebounce}
}

// Path returns the snapshot file path.
func (f *FileSource) Path() string {
	return f.path
}

// Fetch reads and decodes the snapshot file. FetchedAt defaults to the file's
// modification time when the file does not set it.
func (f *FileSource) Fetch(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return nil, errors.WrapIO("stat", f.path, err)
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.WrapIO("read", f.path, err)
	}
	snapshot, err := ParseSnapshot(f.path, data)
	if err != nil {
		return nil, err
	}
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = info.ModTime().UTC()
	}
	return snapshot, nil
}

// ParseSnapshot decodes snapshot data. The name is only used in errors.
func ParseSnapshot(name string, data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	return &s, nil
}

// WriteSnapshot encodes s as YAML to path.
func WriteSnapshot(path string, s *Snapshot) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Watch calls onChange after the snapshot file is written, created or
// renamed into place. Bursts of events within the debounce window collapse
// into one call. Watch blocks until ctx is done.
func (f *FileSource) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapResource("create", "watcher", f.path, err)
	}
	defer watcher.Close() //nolint:errcheck

	// Watch the directory: editors and atomic writers replace the file.
	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return errors.WrapIO("watch", dir, err)
	}

	logger := logging.FromContext(ctx).With().Str("path", f.path).Logger()
	logger.Debug().Msg("Watching snapshot file")

	target := filepath.Clean(f.path)
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(f.debounce, func() {
				if ctx.Err() == nil {
					onChange()
				}
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Snapshot watcher error")
		}
	}
}
