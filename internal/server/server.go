// Package server wires the process-scoped singletons (socket, caches,
// drive table, and the optional handle journal) together and runs the
// single-threaded event loop: wait for readiness, receive one frame,
// dispatch it to completion, send the reply, and return to waiting. There
// is no concurrency between handlers, so none of the singletons need
// locking.
package server

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/etherdfs/ethersrv/internal/answercache"
	"github.com/etherdfs/ethersrv/internal/dispatch"
	"github.com/etherdfs/ethersrv/internal/drivetable"
	"github.com/etherdfs/ethersrv/internal/fsdb"
	"github.com/etherdfs/ethersrv/internal/journal"
	"github.com/etherdfs/ethersrv/internal/logger"
	"github.com/etherdfs/ethersrv/internal/rawsock"
	"github.com/etherdfs/ethersrv/internal/wire"
)

// Server owns the singletons and runs the event loop. Construct with New,
// then call Run once; Run blocks until ctx is cancelled or the socket
// reports an unrecoverable error.
type Server struct {
	socket  rawsock.Socket
	dispatc *dispatch.Context
	cache   *answercache.Cache
	journal *journal.Store
	watcher *watcher

	localMAC [6]byte
}

// Options configures a Server. Journal and Watch are optional; either may
// be left at its zero value to disable the corresponding feature.
type Options struct {
	Socket  rawsock.Socket
	FS      afero.Fs
	Drives  *drivetable.Table
	Journal *journal.Store
	Watch   bool
}

// New constructs a Server from opts. The FSDB arena and answer cache are
// created fresh; if opts.Journal is non-nil, the arena is seeded from it
// and wired to record future assignments/evictions back into it.
func New(opts Options) (*Server, error) {
	if opts.Socket == nil {
		return nil, fmt.Errorf("server: socket is required")
	}
	if opts.Drives == nil {
		return nil, fmt.Errorf("server: drive table is required")
	}

	handles := fsdb.New(nil)

	if opts.Journal != nil {
		seed, err := opts.Journal.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("server: load handle journal: %w", err)
		}
		handles.Seed(seed)
		handles.SetPersistence(
			func(id fsdb.SlotID, path string) { opts.Journal.Record(uint16(id), path) },
			func(id fsdb.SlotID) { opts.Journal.Forget(uint16(id)) },
		)
		logger.Info("server: seeded %d handle(s) from journal", len(seed))
	}

	var w *watcher
	if opts.Watch {
		var err error
		w, err = newWatcher(handles)
		if err != nil {
			logger.Warn("server: fsnotify unavailable, snapshot invalidation disabled: %v", err)
			w = nil
		}
	}

	s := &Server{
		socket:   opts.Socket,
		localMAC: opts.Socket.LocalMAC(),
		cache:    answercache.New(nil),
		journal:  opts.Journal,
		watcher:  w,
		dispatc: &dispatch.Context{
			Drives:  opts.Drives,
			FS:      opts.FS,
			Handles: handles,
		},
	}
	if s.watcher != nil {
		s.dispatc.OnSnapshot = s.watcher.watch
	}
	return s, nil
}

// Run executes the event loop until ctx is cancelled. A cancelled context
// closes the socket to unblock a pending WaitReadable; Run then returns
// nil. Any other socket error is returned to the caller.
func (s *Server) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.socket.Close()
		case <-done:
		}
	}()

	if s.watcher != nil {
		defer s.watcher.Close()
	}

	var buf [rawsock.MaxFrameLen]byte
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if s.watcher != nil {
			s.watcher.drainEvents()
		}

		if err := s.socket.WaitReadable(); err != nil {
			if err == rawsock.ErrInterrupted {
				continue
			}
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("server: wait readable: %w", err)
			}
		}

		n, ok, err := s.socket.Receive(buf[:])
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("server: receive: %w", err)
			}
		}
		if !ok {
			continue
		}

		s.handleFrame(buf[:n])
	}
}

// broadcastMAC is the all-ones Ethernet broadcast address; clients probe
// for a server by broadcasting before they know its MAC.
var broadcastMAC = [6]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// handleFrame decodes, answers, or silently drops one inbound link frame.
// The promiscuous socket sees every 0xEDF5 frame on the segment, so frames
// addressed to neither this server nor broadcast are dropped first.
func (s *Server) handleFrame(link []byte) {
	f, err := wire.Decode(link)
	if err != nil {
		logger.Debug("server: dropping malformed frame: %v", err)
		return
	}

	if f.DstMAC != s.localMAC && f.DstMAC != broadcastMAC {
		return
	}

	logger.DumpFrame("recv", link)

	if cached, hit := s.cache.Lookup(f.SrcMAC, f.Seq); hit {
		logger.Debug("server: cache hit (seq 0x%02X), resending", f.Seq)
		if err := s.socket.Send(cached); err != nil {
			logger.Warn("server: resend cached reply: %v", err)
		}
		return
	}

	ax, payload, ignore := dispatch.Dispatch(s.dispatc, f)
	if ignore {
		// Zero this client's cache entry so a stale earlier reply can
		// never match a later retransmit.
		s.cache.Store(f.SrcMAC, f.Seq, nil)
		return
	}

	reply := wire.BuildReply(f, s.localMAC, ax, payload)
	s.cache.Store(f.SrcMAC, f.Seq, reply)

	logger.DumpFrame("send", reply)
	if err := s.socket.Send(reply); err != nil {
		logger.Warn("server: send reply: %v", err)
	}
}
