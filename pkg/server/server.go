// Package server exposes a candidate browser over HTTP and websockets.
//
// One [Session] holds the browser, its surfaces and the generation
// controller. Every HTTP request and websocket intent is turned into a call on
// the session, which serializes them on its own goroutine, so clients share
// one view: selecting a candidate in one tab moves every other tab with it.
//
// # Routes
//
//	GET  /                              viewer page
//	GET  /api/state                     current Snapshot
//	POST /api/generate                  start a generation request (202)
//	POST /api/select/{index}            show candidate index (0-based)
//	GET  /api/frame.{svg|png|json}      the candidate on display
//	GET  /api/candidates/{index}.{fmt}  any candidate, cached per layout
//	GET  /ws                            live snapshots and intents
//
// Websocket clients send {"type":"select","payload":{"index":n}} or
// {"type":"generate"} and receive {"type":"snapshot","payload":{...}} after
// every state change.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/siteview/pkg/browser"
	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/layout"
	"github.com/matzehuels/siteview/pkg/pipeline"
)

//go:embed static
var static embed.FS

const (
	hubBuffer       = 32
	shutdownTimeout = 5 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRunner sets the artifact runner used for SVG and PNG downloads.
func WithRunner(r *pipeline.Runner) Option {
	return func(s *Server) { s.runner = r }
}

// WithRenderOptions sets the locale, scale and font options for downloads.
// Formats and Title are chosen per request.
func WithRenderOptions(opts pipeline.Options) Option {
	return func(s *Server) { s.render = opts }
}

// WithOriginPatterns allows websocket connections from other origins.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Server) { s.origins = patterns }
}

// Server is the HTTP viewer.
type Server struct {
	session *Session
	runner  *pipeline.Runner
	hub     *Hub
	logger  *log.Logger
	render  pipeline.Options
	origins []string
	router  chi.Router
}

// New creates a server for session. The session must not be started yet;
// Start or ListenAndServe starts it.
func New(session *Session, opts ...Option) *Server {
	s := &Server{
		session: session,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	s.hub = NewHub(hubBuffer, s.logger)
	session.OnChange(func(snap Snapshot) {
		msg, err := encodeMessage(MsgSnapshot, snap)
		if err != nil {
			s.logger.Error("encode snapshot", "err", err)
			return
		}
		s.hub.Publish(msg)
	})
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	sub, _ := fs.Sub(static, "static")
	r.Handle("/*", http.FileServer(http.FS(sub)))

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/generate", s.handleGenerate)
		r.Post("/select/{index}", s.handleSelect)
		r.Get("/frame.{format}", s.handleFrame)
		r.Get("/candidates/{index}.{format}", s.handleCandidate)
	})
	r.Get("/ws", s.handleWS)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the session and the websocket hub until ctx is canceled.
func (s *Server) Start(ctx context.Context) {
	s.session.Start(ctx)
	go s.hub.Run(ctx)
}

// ListenAndServe starts the server on addr and blocks until ctx is canceled
// or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.Start(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving", "addr", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, r, http.StatusOK)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Generate(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSnapshot(w, r, http.StatusAccepted)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.session.Select(r.Context(), index); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSnapshot(w, r, http.StatusOK)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format == pipeline.FormatJSON {
		snap, err := s.session.Snapshot(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", pipeline.ContentTypes[pipeline.FormatJSON])
		w.Write(snap.Frame)
		return
	}

	l, i, err := s.session.Selected(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeArtifact(w, r, &l, format, l.Title(i))
}

func (s *Server) handleCandidate(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	l, err := s.session.Candidate(r.Context(), index)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeArtifact(w, r, &l, chi.URLParam(r, "format"), l.Title(index))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		s.logger.Debug("websocket accept failed", "err", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	ctx := r.Context()

	snap, err := s.session.Snapshot(ctx)
	if err != nil {
		return
	}
	if err := s.send(ctx, conn, MsgSnapshot, snap); err != nil {
		return
	}
	s.hub.Add(conn)
	defer s.hub.Remove(conn)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if err := s.handleIntent(ctx, data); err != nil {
			if s.send(ctx, conn, MsgError, errorBody(err)) != nil {
				return
			}
		}
	}
}

func (s *Server) handleIntent(ctx context.Context, data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPayload, err, "malformed message")
	}
	switch msg.Type {
	case MsgSelect:
		var in browser.SelectIntent
		if err := json.Unmarshal(msg.Payload, &in); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPayload, err, "malformed select payload")
		}
		return s.session.Select(ctx, in.Index)
	case MsgGenerate:
		return s.session.Generate(ctx)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", msg.Type)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) send(ctx context.Context, conn *websocket.Conn, typ string, payload any) error {
	msg, err := encodeMessage(typ, payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}

func (s *Server) writeArtifact(w http.ResponseWriter, r *http.Request, l *layout.Layout, format, title string) {
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	opts := s.render
	opts.Title = title
	data, err := s.runner.RenderOne(r.Context(), l, format, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Write(data)
}

func (s *Server) writeSnapshot(w http.ResponseWriter, r *http.Request, status int) {
	snap, err := s.session.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, snap)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]any{"error": errorBody(err)})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "elapsed", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPayload, errors.ErrCodeInvalidID:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNetwork, errors.ErrCodeUpstreamStatus:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func indexParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid candidate index %q", raw)
	}
	return index, nil
}
