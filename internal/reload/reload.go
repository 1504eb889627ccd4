// Package reload hot-swaps the engine's catalog, schedule, and policy
// when their files change on disk. Readers never see a partial update:
// each file is parsed fully, then swapped wholesale into the engine.
package reload

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ormund/safescreen/internal/catalog"
	"github.com/ormund/safescreen/internal/engine"
	"github.com/ormund/safescreen/internal/policy"
	"github.com/ormund/safescreen/internal/schedule"
)

// debounce interval: wait for writes to settle before reloading.
const debounce = 500 * time.Millisecond

// Paths names the watched configuration files. Empty entries are not
// watched.
type Paths struct {
	Catalog  string
	Schedule string
	Policy   string
}

// Reloader watches the config files and pushes fresh snapshots into
// the engine.
type Reloader struct {
	watcher *fsnotify.Watcher
	engine  *engine.Engine
	paths   Paths
}

// New creates a file watcher over the given paths. Missing files are
// skipped; they can still be loaded manually on restart.
func New(e *engine.Engine, paths Paths) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("reload: create watcher: %w", err)
	}

	for _, p := range []string{paths.Catalog, paths.Schedule, paths.Policy} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := watcher.Add(p); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("reload: watch %q: %w", p, err)
		}
	}

	return &Reloader{watcher: watcher, engine: e, paths: paths}, nil
}

// Run watches for changes and reloads. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, r.reloadAll)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "reload: watcher: %v\n", err)
		}
	}
}

// reloadAll re-reads every configured file. A file that fails to parse
// leaves its previous snapshot in place.
func (r *Reloader) reloadAll() {
	if r.paths.Catalog != "" {
		if c, err := catalog.Load(r.paths.Catalog); err != nil {
			fmt.Fprintf(os.Stderr, "reload: catalog: %v\n", err)
		} else {
			r.engine.SetCatalog(c)
			fmt.Fprintf(os.Stderr, "reload: catalog reloaded (%d entries)\n", c.Size())
		}
	}
	if r.paths.Schedule != "" {
		if rules, err := schedule.Load(r.paths.Schedule); err != nil {
			fmt.Fprintf(os.Stderr, "reload: schedule: %v\n", err)
		} else {
			r.engine.SetRules(rules)
			fmt.Fprintf(os.Stderr, "reload: schedule reloaded (%d rules)\n", len(rules))
		}
	}
	if r.paths.Policy != "" {
		if p, err := policy.Load(r.paths.Policy); err != nil {
			fmt.Fprintf(os.Stderr, "reload: policy: %v\n", err)
		} else {
			r.engine.SetPolicy(p)
			fmt.Fprintf(os.Stderr, "reload: policy reloaded\n")
		}
	}
}
