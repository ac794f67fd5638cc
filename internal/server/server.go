// Package server exposes the gallery directory over HTTP and keeps its
// metadata index fresh: requests for the index regenerate it before
// serving (read-through refresh), and a background watcher regenerates
// it whenever the set of filenames in the directory changes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/duckworks/imgdex/internal/metadata"
)

// ShutdownTimeout is the maximum time to wait for in-flight requests on
// graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Options configures a Server. Zero durations fall back to defaults.
type Options struct {
	ListenAddr    string
	PollInterval  time.Duration
	DebounceDelay time.Duration
	HTTPTimeout   time.Duration
}

// Server serves the gallery directory as static files.
type Server struct {
	opts Options
	gen  *metadata.Generator
	log  zerolog.Logger
}

// New creates a server over the generator's image directory.
func New(opts Options, gen *metadata.Generator, log zerolog.Logger) *Server {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = 200 * time.Millisecond
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 15 * time.Second
	}
	return &Server{opts: opts, gen: gen, log: log}
}

// Handler returns the HTTP handler: a static file server with a
// read-through refresh of the metadata index. Regeneration failures are
// logged and the previously written index is served as-is.
func (s *Server) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.gen.Dir()))
	metaName := path.Base(s.gen.OutputPath())
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path.Base(r.URL.Path) == metaName {
			if _, err := s.gen.Generate(); err != nil {
				s.log.Error().Err(err).Msg("metadata refresh failed, serving stale index")
			}
		}
		files.ServeHTTP(w, r)
	})
}

// Run generates the index once, starts the change watcher and serves
// until ctx is cancelled. It returns nil on graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.gen.Generate(); err != nil {
		return fmt.Errorf("initial metadata: %w", err)
	}

	w := newWatcher(s.gen, s.opts.PollInterval, s.opts.DebounceDelay, s.log)
	watchCtx, stopWatcher := context.WithCancel(ctx)
	defer stopWatcher()
	go w.run(watchCtx)

	srv := &http.Server{
		Addr:              s.opts.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.opts.HTTPTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info().Str("listen", s.opts.ListenAddr).Str("dir", s.gen.Dir()).Msg("serving gallery")

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}
