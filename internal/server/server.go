// Package server contains the connection acceptance and dispatch pipeline:
// a serial accept loop that hands every connection to a shared FIFO queue,
// and a fixed pool of workers that each process one request at a time.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/arianaariaei/PyThreadServe/internal/accesslog"
	"github.com/arianaariaei/PyThreadServe/internal/admission"
	"github.com/arianaariaei/PyThreadServe/internal/files"
	"github.com/arianaariaei/PyThreadServe/internal/logger"
	"github.com/arianaariaei/PyThreadServe/internal/ratelimiter"
	"github.com/arianaariaei/PyThreadServe/pkg/metrics"
)

// Config holds the pipeline's sizing knobs.
type Config struct {
	// Host and Port form the listen address.
	Host string
	Port int

	// Workers is the number of long-lived worker goroutines.
	Workers int

	// QueueDepth bounds the ingress queue between the acceptor and the
	// workers.
	QueueDepth int
}

// Server accepts connections and dispatches them to the worker pool.
//
// Workers share no per-request state; the only state crossing worker
// boundaries is the admission limiter, the access log and the metrics.
type Server struct {
	config    Config
	files     *files.Service
	admission *admission.Limiter
	accessLog *accesslog.Log
	metrics   metrics.HTTPMetrics

	connLimiter *ratelimiter.ConnLimiter

	listener net.Listener
	queue    chan net.Conn
	wg       sync.WaitGroup
}

// New creates a Server. metrics may be a no-op implementation but must not
// be nil.
func New(config Config, svc *files.Service, limiter *admission.Limiter, log *accesslog.Log, m metrics.HTTPMetrics) *Server {
	if config.Workers <= 0 {
		config.Workers = 5
	}
	if config.QueueDepth <= 0 {
		config.QueueDepth = 64
	}

	return &Server{
		config:    config,
		files:     svc,
		admission: limiter,
		accessLog: log,
		metrics:   m,
		queue:     make(chan net.Conn, config.QueueDepth),
	}
}

// SetConnLimiter installs an optional accept-rate limiter. Connections
// arriving while the bucket is empty are closed without a response.
func (s *Server) SetConnLimiter(cl *ratelimiter.ConnLimiter) {
	s.connLimiter = cl
}

// Listen binds the listen socket. Called implicitly by Serve; exposed so
// callers can learn the bound address before serving (port 0 in tests).
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.config.Host, s.config.Port))
	if err != nil {
		return fmt.Errorf("start listener: %w", err)
	}
	s.listener = listener
	return nil
}

// Serve listens and runs the accept loop until ctx is cancelled or the
// listener is closed, then drains the queue, joins the workers and returns.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	logger.Info("Server listening on %s with %d workers", s.listener.Addr(), s.config.Workers)

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.acceptLoop(ctx)

	// Stop feeding the workers; they drain what was already queued.
	close(s.queue)
	s.wg.Wait()
	logger.Info("All workers stopped")
	return nil
}

// acceptLoop is strictly serial: it never processes a request itself, only
// hands connections to the queue. It returns when the listener is closed,
// whether by ctx cancellation or by Stop.
func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
				logger.Debug("Error accepting connection: %v", err)
				continue
			}
		}

		if s.connLimiter != nil && !s.connLimiter.Allow() {
			logger.Warn("Connection from %s dropped by rate limiter", conn.RemoteAddr())
			s.metrics.RecordConnectionDropped()
			_ = conn.Close()
			continue
		}

		select {
		case s.queue <- conn:
			s.metrics.RecordConnectionAccepted()
		case <-ctx.Done():
			_ = conn.Close()
			return
		}
	}
}

// Addr returns the bound listen address, for tests using port 0.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener. The accept loop exits on the closed listener and
// Serve drains and returns, so Stop alone shuts the server down.
func (s *Server) Stop() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
