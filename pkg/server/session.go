package server

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/matzehuels/siteview/pkg/browser"
	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/generate"
	"github.com/matzehuels/siteview/pkg/layout"
	"github.com/matzehuels/siteview/pkg/render"
	"github.com/matzehuels/siteview/pkg/store"
)

var errClosed = errors.New(errors.ErrCodeInternal, "session closed")

// Snapshot is the viewer state sent to HTTP and websocket clients.
type Snapshot struct {
	State    browser.State     `json:"state"`
	Count    int               `json:"candidates"`
	Selected int               `json:"selected"`
	Title    string            `json:"title,omitempty"`
	Controls []browser.Control `json:"controls"`
	Stats    *render.Stats     `json:"stats,omitempty"`
	Loading  bool              `json:"loading"`
	Error    *ErrorBody        `json:"error,omitempty"`
	Source   string            `json:"source"`
	SetID    string            `json:"set_id,omitempty"`
	Frame    json.RawMessage   `json:"frame"`
}

// ErrorBody is the JSON form of a failed operation.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func errorBody(err error) *ErrorBody {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return &ErrorBody{Code: code, Message: errors.UserMessage(err)}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRecorder saves every generation result to st.
func WithRecorder(st store.Store) SessionOption {
	return func(s *Session) { s.recorder = st }
}

// WithLocale sets the stats panel locale.
func WithLocale(tag language.Tag) SessionOption {
	return func(s *Session) { s.locale = tag }
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(l *log.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// Session owns one browser and its surfaces. All state lives on a single
// goroutine started by Start; the exported methods post work to it and wait.
type Session struct {
	ops  chan func()
	done chan struct{}
	ctx  context.Context
	wg   sync.WaitGroup

	recorder store.Store
	locale   language.Tag
	logger   *log.Logger

	// Loop-owned state.
	browser   *browser.Browser
	frame     *render.Recorder
	board     *render.StatsBoard
	ctrl      *generate.Controller
	lastErr   error
	lastSet   string
	listeners []func(Snapshot)
}

// NewSession creates a session that generates from client.
func NewSession(client generate.Client, opts ...SessionOption) *Session {
	s := &Session{
		ops:    make(chan func()),
		done:   make(chan struct{}),
		locale: render.DefaultLocale,
		logger: log.New(io.Discard),
		frame:  render.NewRecorder(),
		board:  render.NewStatsBoard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.browser = browser.New(render.New(s.frame, s.board, render.WithLocale(s.locale)))
	ctrlOpts := []generate.Option{
		generate.WithLogger(s.logger),
		generate.WithNotifier(generate.NotifierFunc(func(err error) { s.lastErr = err })),
	}
	if s.recorder != nil {
		ctrlOpts = append(ctrlOpts, generate.WithRecorder(s.recorder))
	}
	s.ctrl = generate.NewController(client, s.browser, ctrlOpts...)
	return s
}

// OnChange registers fn to receive a snapshot after every state change.
// fn runs on the session goroutine and must not block. Register listeners
// before Start.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.listeners = append(s.listeners, fn)
}

// Start runs the session goroutine until ctx is canceled. In-flight
// generation requests use ctx as well.
func (s *Session) Start(ctx context.Context) {
	s.ctx = ctx
	go s.loop(ctx)
}

func (s *Session) loop(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case op := <-s.ops:
			op()
		case <-ctx.Done():
			return
		}
	}
}

// do runs f on the session goroutine and waits for it.
func (s *Session) do(ctx context.Context, f func()) error {
	ran := make(chan struct{})
	select {
	case s.ops <- func() { f(); close(ran) }:
	case <-s.done:
		return errClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-ran
	return nil
}

// Wait blocks until every generation started so far has been applied.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Generate starts a generation request and returns once the session has
// entered the loading state. The result is applied asynchronously.
func (s *Session) Generate(ctx context.Context) error {
	var fetch generate.Fetch
	err := s.do(ctx, func() {
		s.lastErr = nil
		fetch = s.ctrl.Begin()
		s.changed()
	})
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		res := fetch(s.ctx)
		err := s.do(context.Background(), func() {
			s.ctrl.Finish(res)
			if res.SetID != "" {
				s.lastSet = res.SetID
			}
			s.changed()
		})
		if err != nil {
			s.logger.Debug("dropped generation result", "err", err)
		}
	}()
	return nil
}

// Select shows the candidate at index (0-based).
func (s *Session) Select(ctx context.Context, index int) error {
	var err error
	if derr := s.do(ctx, func() {
		err = s.browser.Dispatch(browser.SelectIntent{Index: index})
		if err == nil {
			s.changed()
		}
	}); derr != nil {
		return derr
	}
	return err
}

// Snapshot returns the current state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.do(ctx, func() { snap = s.snapshot() })
	return snap, err
}

// Selected returns a copy of the layout on display.
func (s *Session) Selected(ctx context.Context) (layout.Layout, int, error) {
	var (
		l  layout.Layout
		i  int
		ok bool
	)
	if err := s.do(ctx, func() { l, i, ok = s.browser.Selected() }); err != nil {
		return layout.Layout{}, -1, err
	}
	if !ok {
		return layout.Layout{}, -1, errors.New(errors.ErrCodeNotFound, "no layout on display")
	}
	return l, i, nil
}

// Candidate returns a copy of the candidate at index (0-based).
func (s *Session) Candidate(ctx context.Context, index int) (layout.Layout, error) {
	var list []layout.Layout
	if err := s.do(ctx, func() { list = s.browser.Candidates() }); err != nil {
		return layout.Layout{}, err
	}
	if index < 0 || index >= len(list) {
		return layout.Layout{}, errors.New(errors.ErrCodeNotFound, "no layout at position %d (have %d)", index, len(list))
	}
	return list[index], nil
}

func (s *Session) snapshot() Snapshot {
	frame, err := json.Marshal(s.frame)
	if err != nil {
		frame = []byte("null")
	}
	snap := Snapshot{
		State:    s.browser.State(),
		Count:    s.browser.Len(),
		Selected: -1,
		Controls: s.browser.Controls(),
		Loading:  s.ctrl.Loading(),
		Source:   s.ctrl.Source(),
		SetID:    s.lastSet,
		Frame:    frame,
	}
	if l, i, ok := s.browser.Selected(); ok {
		snap.Selected = i
		snap.Title = l.Title(i)
	}
	if stats, ok := s.board.Stats(); ok {
		snap.Stats = &stats
	}
	if s.lastErr != nil {
		snap.Error = errorBody(s.lastErr)
	}
	if snap.Controls == nil {
		snap.Controls = []browser.Control{}
	}
	return snap
}

func (s *Session) changed() {
	if len(s.listeners) == 0 {
		return
	}
	snap := s.snapshot()
	for _, fn := range s.listeners {
		fn(snap)
	}
}
