package cli

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// watchQuietPeriod is how long the scene file must stay unchanged before planning again. Saving a
// file usually produces a burst of events.
const watchQuietPeriod = 100 * time.Millisecond

// WatchAction plans the scene, then plans it again every time the file is written, until the
// context is cancelled. A failed run is logged and the next change is awaited.
func WatchAction(c *cli.Context) error {
	file, err := sceneArg(c)
	if err != nil {
		return err
	}
	logger := loggerFrom(c)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	//nolint:errcheck
	defer watcher.Close()
	// Editors usually replace the file rather than write it, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		return errors.Wrapf(err, "watching %q", file)
	}

	target := filepath.Clean(file)
	r := newReplanner(watchQuietPeriod, func() {
		if c.Context.Err() != nil {
			return
		}
		if err := runPlan(c, file); err != nil {
			logger.Errorw("planning failed", "scene", file, "error", err)
		}
	})
	// A debounced run must not outlive the command; the globals it writes through are closed after.
	defer r.stop()
	r.run()
	for {
		select {
		case <-c.Context.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debugw("scene changed", "scene", file, "op", event.Op.String())
			r.schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return errors.Wrap(err, "watching scene")
		}
	}
}

// replanner serializes planning runs and debounces scheduled ones.
type replanner struct {
	mu        sync.Mutex
	stopped   bool
	plan      func()
	debounced func(f func())
}

func newReplanner(quiet time.Duration, plan func()) *replanner {
	return &replanner{plan: plan, debounced: debounce.New(quiet)}
}

// run plans now unless the replanner is stopped.
func (r *replanner) run() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.plan()
}

// schedule plans once the quiet period passes without another call.
func (r *replanner) schedule() {
	r.debounced(r.run)
}

// stop cancels any pending run and waits for one in progress. Later runs do nothing.
func (r *replanner) stop() {
	r.debounced(func() {})
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
}
