// Package generate requests candidate layouts from the generation service and
// hands them to the browser.
//
// # Request lifecycle
//
// [Controller.RequestGeneration] runs one request end to end:
//
//  1. Enter the loading state
//  2. Issue a single request through the [Client]
//  3. Forward a non-empty result to the browser; ignore an empty one
//  4. On failure, notify the operator; the browser is left untouched
//  5. Clear the loading state
//
// There is no retry, timeout or cancellation beyond the caller's context.
//
// # Event loops
//
// Browser and surfaces belong to a single goroutine. Event loops split a
// request into [Controller.Begin], which runs on the loop and returns the
// fetch, and [Controller.Finish], which applies the result back on the loop:
//
//	fetch := ctrl.Begin()
//	go func() {
//	    res := fetch(ctx)
//	    loop.Post(func() { ctrl.Finish(res) })
//	}()
//
// Overlapping requests are not prevented. Each Finish applies its own
// result, so the last response to arrive is what the browser shows, and the
// first Finish clears the loading state.
package generate

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/siteview/pkg/layout"
	"github.com/matzehuels/siteview/pkg/observability"
	"github.com/matzehuels/siteview/pkg/store"
)

// Candidates receives a generation result. *browser.Browser satisfies it.
type Candidates interface {
	SetCandidates(list []layout.Layout) bool
}

// Indicator shows or hides the loading state.
type Indicator interface {
	SetLoading(loading bool)
}

// IndicatorFunc adapts a function to Indicator.
type IndicatorFunc func(bool)

// SetLoading implements Indicator.
func (f IndicatorFunc) SetLoading(loading bool) { f(loading) }

// Notifier surfaces a failed request to the operator.
type Notifier interface {
	Notify(err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(error)

// Notify implements Notifier.
func (f NotifierFunc) Notify(err error) { f(err) }

// Result is the outcome of one fetch.
type Result struct {
	Source   string
	Layouts  []layout.Layout
	Err      error
	Duration time.Duration
	// SetID is the stored candidate set ID, when a recorder saved the result.
	SetID string
}

// Fetch performs the request half of a generation. It does not touch the
// browser and may run on any goroutine.
type Fetch func(ctx context.Context) Result

// Option configures a Controller.
type Option func(*Controller)

// WithIndicator sets the loading indicator.
func WithIndicator(i Indicator) Option { return func(c *Controller) { c.indicator = i } }

// WithNotifier sets the error notifier.
func WithNotifier(n Notifier) Option { return func(c *Controller) { c.notifier = n } }

// WithRecorder saves every non-empty result to s. Save failures are logged
// and never turn a successful generation into a failure.
func WithRecorder(s store.Store) Option { return func(c *Controller) { c.recorder = s } }

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option { return func(c *Controller) { c.logger = l } }

// Controller owns the loading state and drives the browser from generation
// results. Begin, Finish and Loading must be called from the goroutine that
// owns the browser.
type Controller struct {
	client    Client
	browser   Candidates
	indicator Indicator
	notifier  Notifier
	recorder  store.Store
	logger    *log.Logger
	loading   bool
}

// NewController creates a controller that fetches from client and forwards
// results to browser.
func NewController(client Client, browser Candidates, opts ...Option) *Controller {
	c := &Controller{
		client:  client,
		browser: browser,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Loading reports whether a request is in flight.
func (c *Controller) Loading() bool {
	return c.loading
}

// Source returns the client's source description.
func (c *Controller) Source() string {
	return c.client.Source()
}

// RequestGeneration runs one request to completion on the calling goroutine.
// The returned error is the one passed to the notifier, if any.
func (c *Controller) RequestGeneration(ctx context.Context) error {
	fetch := c.Begin()
	return c.Finish(fetch(ctx))
}

// Begin enters the loading state and returns the fetch to run.
func (c *Controller) Begin() Fetch {
	c.setLoading(true)
	client, recorder, logger := c.client, c.recorder, c.logger
	return func(ctx context.Context) Result {
		return fetch(ctx, client, recorder, logger)
	}
}

// Finish applies a fetch result and leaves the loading state. A failed
// result is passed to the notifier and returned; the browser is untouched.
func (c *Controller) Finish(res Result) error {
	defer c.setLoading(false)

	if res.Err != nil {
		c.logger.Error("generation failed", "source", res.Source, "err", res.Err)
		if c.notifier != nil {
			c.notifier.Notify(res.Err)
		}
		return res.Err
	}
	if !c.browser.SetCandidates(res.Layouts) {
		c.logger.Warn("generation returned no layouts", "source", res.Source)
		return nil
	}
	c.logger.Info("received layouts", "count", len(res.Layouts), "elapsed", res.Duration.Round(time.Millisecond))
	return nil
}

func (c *Controller) setLoading(v bool) {
	c.loading = v
	if c.indicator != nil {
		c.indicator.SetLoading(v)
	}
}

func fetch(ctx context.Context, client Client, recorder store.Store, logger *log.Logger) Result {
	source := client.Source()
	hooks := observability.Generate()
	hooks.OnGenerateStart(ctx, source)
	logger.Debug("requesting layouts", "source", source)

	start := time.Now()
	layouts, err := client.Generate(ctx)
	res := Result{Source: source, Layouts: layouts, Err: err, Duration: time.Since(start)}
	hooks.OnGenerateComplete(ctx, source, len(layouts), res.Duration, err)

	if err == nil && len(layouts) > 0 && recorder != nil {
		set := store.NewCandidateSet(source, layouts)
		if serr := recorder.Save(ctx, set); serr != nil {
			logger.Warn("could not record candidate set", "err", serr)
		} else {
			res.SetID = set.ID
			logger.Debug("recorded candidate set", "id", set.ID)
		}
	}
	return res
}
