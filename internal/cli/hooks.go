package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/siteview/pkg/observability"
)

// logHooks forwards observability events to the CLI logger at debug level.
type logHooks struct {
	logger *log.Logger
}

// installHooks registers logHooks for every event family.
func installHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetRenderHooks(h)
	observability.SetGenerateHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnRender(layoutID, buildings int, d time.Duration) {
	h.logger.Debug("render", "layout", layoutID, "buildings", buildings, "elapsed", d)
}

func (h logHooks) OnGenerateStart(_ context.Context, source string) {
	h.logger.Debug("generate start", "source", source)
}

func (h logHooks) OnGenerateComplete(_ context.Context, source string, n int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("generate failed", "source", source, "elapsed", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("generate done", "source", source, "candidates", n, "elapsed", d.Round(time.Millisecond))
}

func (h logHooks) OnCacheHit(_ context.Context, kind string) {
	h.logger.Debug("cache hit", "kind", kind)
}

func (h logHooks) OnCacheMiss(_ context.Context, kind string) {
	h.logger.Debug("cache miss", "kind", kind)
}

func (h logHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.logger.Debug("cache set", "kind", kind, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "elapsed", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ observability.RenderHooks   = logHooks{}
	_ observability.GenerateHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
	_ observability.HTTPHooks     = logHooks{}
)
