package server

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/etherdfs/ethersrv/internal/fsdb"
	"github.com/etherdfs/ethersrv/internal/logger"
)

// watcher drops a cached directory snapshot whenever a
// write/create/remove/rename event lands under its directory, so the next
// FINDNEXT on that slot re-scans instead of serving stale entries (FINDFIRST
// always builds a fresh snapshot). A watch failure
// (inotify instance limit, unsupported platform) degrades silently to the
// baseline behavior: the snapshot is kept until the slot is evicted,
// reopened, or rewound.
type watcher struct {
	fsw     *fsnotify.Watcher
	handles *fsdb.Arena
	watched map[string]struct{}
}

func newWatcher(handles *fsdb.Arena) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &watcher{fsw: fsw, handles: handles, watched: make(map[string]struct{})}, nil
}

// watch starts watching dir if it isn't already. Called lazily from
// dispatch's FINDFIRST path via the server, rather than eagerly for every
// slot, since most interned paths are files, not directories.
func (w *watcher) watch(dir string) {
	if w == nil {
		return
	}
	if _, ok := w.watched[dir]; ok {
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		logger.Debug("server: watch %s: %v", dir, err)
		return
	}
	w.watched[dir] = struct{}{}
}

// drainEvents processes any pending fsnotify events without blocking,
// clearing the cached snapshot on the FSDB slot for any watched directory
// that changed. Called once per event-loop iteration, keeping invalidation
// on the same goroutine as the handlers.
func (w *watcher) drainEvents() {
	if w == nil {
		return
	}
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handles.ClearSnapshotForPath(filepath.Dir(ev.Name))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Debug("server: fsnotify error: %v", err)
		default:
			return
		}
	}
}

func (w *watcher) Close() error {
	if w == nil {
		return nil
	}
	return w.fsw.Close()
}
