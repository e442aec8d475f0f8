package server

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/arianaariaei/PyThreadServe/internal/accesslog"
	"github.com/arianaariaei/PyThreadServe/internal/files"
	"github.com/arianaariaei/PyThreadServe/internal/logger"
	httpproto "github.com/arianaariaei/PyThreadServe/internal/protocol/http"
	"github.com/arianaariaei/PyThreadServe/pkg/store/content"
)

// worker pulls connections off the shared queue and runs each request to
// completion before taking the next one. It lives for the whole server
// lifetime; request failures are converted to responses, never propagated.
func (s *Server) worker(ctx context.Context, id int) {
	defer s.wg.Done()
	logger.Debug("Worker %d started", id)

	// Shutdown closes the queue, never in-flight work: connections already
	// queued when ctx is cancelled are still served to completion, so
	// request handling runs on a detached context.
	reqCtx := context.WithoutCancel(ctx)

	for conn := range s.queue {
		s.handleConn(reqCtx, id, conn)
	}

	logger.Debug("Worker %d shutting down", id)
}

// handleConn frames one request off the connection, serves it, writes the
// response and closes the connection. One request per connection, no
// keep-alive.
func (s *Server) handleConn(ctx context.Context, workerID int, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	start := time.Now()

	req, err := httpproto.ReadRequest(conn)
	if err != nil {
		if errors.Is(err, httpproto.ErrEmptyRequest) {
			// Connection produced nothing; drop it silently.
			return
		}
		logger.Debug("Worker %d: framing error: %v", workerID, err)
		s.writeResponse(conn, httpproto.NewResponse(400, framingErrorBody(err)))
		return
	}

	logger.Debug("Worker %d: %s %s", workerID, req.Method, req.Path)

	resp := s.serve(ctx, workerID, req)
	s.writeResponse(conn, resp)

	s.metrics.RecordRequest(req.Method, resp.Status, time.Since(start))
	s.logRequest(workerID, req, resp.Status)
}

// serve routes a framed request. A panic anywhere below is caught here and
// mapped to a 500 so the worker survives.
func (s *Server) serve(ctx context.Context, workerID int, req *httpproto.Request) (resp *httpproto.Response) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Worker %d: panic serving %s %s: %v", workerID, req.Method, req.Path, r)
			resp = httpproto.NewResponse(500, "Internal server error")
		}
	}()

	switch req.Method {
	case "GET":
		return s.handleGet(ctx, workerID, req)
	case "POST":
		return s.handlePost(ctx, workerID, req)
	default:
		return httpproto.NewResponse(405, "Method not allowed")
	}
}

func (s *Server) handleGet(ctx context.Context, workerID int, req *httpproto.Request) *httpproto.Response {
	data, contentType, err := s.files.Fetch(ctx, req.Path)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrPathOutsideRoot), errors.Is(err, content.ErrEscapesBase):
			// Same response as a genuinely missing file; the client
			// learns nothing about what lies outside the root.
			return httpproto.NewResponse(404, "File not found")
		case errors.Is(err, content.ErrNotFound):
			return httpproto.NewResponse(404, "File not found")
		default:
			logger.Error("Worker %d: GET %s: %v", workerID, req.Path, err)
			return httpproto.NewResponse(500, "Internal server error")
		}
	}

	resp := &httpproto.Response{Status: 200, Body: data}
	resp.AddHeader("Content-Type", contentType)
	resp.AddHeader("Content-Length", strconv.Itoa(len(data)))
	return resp
}

func (s *Server) handlePost(ctx context.Context, workerID int, req *httpproto.Request) *httpproto.Response {
	if !s.admission.TryAcquire() {
		logger.Warn("Worker %d: rejecting POST, admission limit reached (%d/%d)",
			workerID, s.admission.InFlight(), s.admission.Limit())
		s.metrics.RecordAdmissionRejected()
		return httpproto.NewResponse(503, "Server is handling maximum number of concurrent POST requests")
	}
	defer func() {
		s.admission.Release()
		s.metrics.SetPostsInFlight(s.admission.InFlight())
	}()
	s.metrics.SetPostsInFlight(s.admission.InFlight())

	filename, err := s.files.Save(ctx, req.Path, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrEmptyBody):
			return httpproto.NewResponse(400, "Empty request body")
		case errors.Is(err, files.ErrPathOutsideRoot), errors.Is(err, content.ErrEscapesBase):
			return httpproto.NewResponse(404, "File not found")
		default:
			logger.Error("Worker %d: POST %s: %v", workerID, req.Path, err)
			return httpproto.NewResponse(500, "Internal server error")
		}
	}

	logger.Info("Worker %d: created file %s", workerID, filename)
	return httpproto.NewResponse(201, "File created successfully: "+filename)
}

func (s *Server) writeResponse(conn net.Conn, resp *httpproto.Response) {
	if err := resp.Write(conn); err != nil {
		logger.Debug("Error writing response: %v", err)
	}
}

// logRequest appends the access log line. Log failures are diagnosed but
// never affect the response already sent.
func (s *Server) logRequest(workerID int, req *httpproto.Request, status int) {
	err := s.accessLog.Append(accesslog.Entry{
		Timestamp: time.Now(),
		WorkerID:  workerID,
		Method:    req.Method,
		Path:      req.Path,
		Status:    status,
	})
	if err != nil {
		logger.Error("Worker %d: access log append failed: %v", workerID, err)
	}
}

func framingErrorBody(err error) string {
	switch {
	case errors.Is(err, httpproto.ErrLengthRequired):
		return "Missing or invalid request body"
	default:
		return "Invalid request format"
	}
}
