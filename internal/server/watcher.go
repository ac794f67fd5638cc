package server

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/duckworks/imgdex/internal/metadata"
)

// watcher regenerates the metadata index when the set of filenames in
// the image directory changes. fsnotify events are the fast path,
// debounced so a burst of renames triggers one regeneration; a ticker at
// the poll interval covers filesystems where events are unreliable.
// Either trigger only regenerates when the name set actually differs
// from the previous snapshot.
type watcher struct {
	gen      *metadata.Generator
	poll     time.Duration
	debounce time.Duration
	log      zerolog.Logger
	prev     map[string]struct{}
}

func newWatcher(gen *metadata.Generator, poll, debounce time.Duration, log zerolog.Logger) *watcher {
	return &watcher{gen: gen, poll: poll, debounce: debounce, log: log}
}

func (w *watcher) run(ctx context.Context) {
	w.prev = w.nameSet()

	var events chan fsnotify.Event
	var fsErrs chan error
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Warn().Err(err).Msg("fsnotify unavailable, polling only")
	} else {
		defer fsw.Close()
		if err := fsw.Add(w.gen.Dir()); err != nil {
			w.log.Warn().Err(err).Str("dir", w.gen.Dir()).Msg("cannot watch image dir, polling only")
		} else {
			events = fsw.Events
			fsErrs = fsw.Errors
		}
	}

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) != 0 {
				timer.Reset(w.debounce)
			}
		case err, ok := <-fsErrs:
			if !ok {
				fsErrs = nil
				continue
			}
			w.log.Warn().Err(err).Msg("watcher error")
		case <-timer.C:
			w.sync()
		case <-ticker.C:
			w.sync()
		}
	}
}

// sync compares the current name set against the previous snapshot and
// regenerates the index when they differ. An unreadable directory leaves
// the snapshot untouched, so a directory that disappears and returns
// unchanged does not trigger a regeneration.
func (w *watcher) sync() {
	now := w.nameSet()
	if now == nil {
		return
	}
	if sameNames(now, w.prev) {
		return
	}
	if _, err := w.gen.Generate(); err != nil {
		w.log.Error().Err(err).Msg("metadata regeneration failed")
		return
	}
	w.prev = now
}

func (w *watcher) nameSet() map[string]struct{} {
	des, err := os.ReadDir(w.gen.Dir())
	if err != nil {
		return nil
	}
	set := make(map[string]struct{}, len(des))
	for _, d := range des {
		set[d.Name()] = struct{}{}
	}
	return set
}

func sameNames(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for name := range a {
		if _, ok := b[name]; !ok {
			return false
		}
	}
	return true
}
