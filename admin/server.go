package admin

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const _readHeaderTimeout = 5 * time.Second

type Server struct {
	srv    *http.Server
	logger  *zap.Logger
	errc    chan error
	started bool
}

func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: _readHeaderTimeout,
		},
		logger: logger,
		errc:   make(chan error, 1),
	}
}

// Start binds the listener and serves in the background. The returned
// address is the one actually bound, which matters for ":0".
func (s *Server) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, err
	}

	s.started = true
	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.errc <- err
	}()

	s.logger.Info("admin server listening", zap.Stringer("addr", ln.Addr()))
	return ln.Addr(), nil
}

// Shutdown stops the server and returns any error from both the shutdown
// and the serving goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if !s.started {
		return err
	}
	select {
	case serveErr := <-s.errc:
		err = multierr.Append(err, serveErr)
	case <-ctx.Done():
		err = multierr.Append(err, ctx.Err())
	}
	return err
}
