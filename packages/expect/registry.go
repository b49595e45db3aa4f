package expect

import (
	"context"
	"errors"
	"io"
	"maps"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/pagexpect/packages/assertions"
	"github.com/abdul-hamid-achik/pagexpect/packages/core/config"
	"github.com/abdul-hamid-achik/pagexpect/packages/core/retry"
	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
	"github.com/abdul-hamid-achik/pagexpect/packages/imgcmp"
	"github.com/abdul-hamid-achik/pagexpect/packages/metrics"
	"github.com/abdul-hamid-achik/pagexpect/packages/output"
	"github.com/abdul-hamid-achik/pagexpect/packages/recorder"
	"github.com/abdul-hamid-achik/pagexpect/packages/snapshot"
)

// Registry holds named matchers and everything they share: retry policy,
// formatter, image tool, baselines and statistics.
type Registry struct {
	cfg       config.Config
	policy    retry.Policy
	logger    logrus.FieldLogger
	format    *output.Formatter
	images    assertions.ImageComparer
	baselines *snapshot.Manager
	metrics   *metrics.Collector
	now       func() time.Time

	mu       sync.RWMutex
	matchers map[string]assertions.Definition
}

type Option func(*Registry)

func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithImageComparer replaces the image tool found on disk.
func WithImageComparer(c assertions.ImageComparer) Option {
	return func(r *Registry) { r.images = c }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(r *Registry) { r.metrics = c }
}

func WithFormatter(f *output.Formatter) Option {
	return func(r *Registry) { r.format = f }
}

// WithClock sets the clock used to timestamp events and check recency.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New builds a registry holding the built-in matchers. Unset fields of cfg
// take their defaults.
func New(cfg config.Config, opts ...Option) *Registry {
	cfg = config.DefaultConfig().Apply(cfg)
	r := &Registry{
		cfg:       cfg,
		baselines: snapshot.NewManager(cfg.BaselineDir(), cfg.UpdateBaselines.Bool),
		now:       time.Now,
		matchers:  maps.Clone(assertions.Builtin),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = config.NewLogger(cfg)
	}
	if r.format == nil {
		r.format = output.NewFormatter(output.WithNoColor(cfg.NoColor.Bool))
	}
	if r.metrics == nil {
		r.metrics = metrics.NewCollector()
	}
	if r.images == nil {
		path, err := imgcmp.Locate(cfg.ImgCmpPath.String)
		switch {
		case err == nil:
			r.images = imgcmp.NewTool(path, r.logger)
		case errors.Is(err, imgcmp.ErrToolNotFound):
			r.logger.Debug("image comparison tool not found, screenshot matchers will fail")
		default:
			r.logger.WithError(err).Warn("looking up image comparison tool")
		}
	}
	r.policy = cfg.Policy()
	r.policy.Logger = r.logger
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns a registry configured from the config file in the working
// directory and the process environment, built on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		cfg, err := config.Load("", "")
		if err != nil {
			cfg = config.DefaultConfig()
			config.NewLogger(cfg).WithError(err).Warn("invalid configuration, using defaults")
		}
		defaultRegistry = New(cfg)
	})
	return defaultRegistry
}

// Expect starts an assertion on target using the default registry.
func Expect(t testing.TB, target any) *Expectation {
	t.Helper()
	return Default().Expect(t, target)
}

// Extend installs or replaces named matchers.
func (r *Registry) Extend(matchers map[string]assertions.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	maps.Copy(r.matchers, matchers)
}

func (r *Registry) lookup(name string) (assertions.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.matchers[name]
	return def, ok && def.Check != nil
}

// Config returns the effective configuration.
func (r *Registry) Config() config.Config {
	return r.cfg
}

func (r *Registry) Metrics() *metrics.Collector {
	return r.metrics
}

// WriteSummary prints per-matcher statistics gathered so far.
func (r *Registry) WriteSummary(w io.Writer) {
	r.format.WriteSummary(w, r.metrics.Snapshot())
}

func (r *Registry) matcherContext(name string, isNot bool) *assertions.Context {
	return &assertions.Context{
		Name:       name,
		IsNot:      isNot,
		Now:        r.now,
		Window:     r.cfg.Window(),
		Format:     r.format,
		Images:     r.images,
		Baselines:  r.baselines,
		ScratchDir: r.cfg.BaselineDir(),
		Mode:       imgcmp.Mode(r.cfg.ScreenshotMode.String),
		Logger:     r.logger.WithField("matcher", name),
	}
}

func (r *Registry) recorderOptions(t testing.TB) []recorder.Option {
	return []recorder.Option{
		recorder.WithLogger(r.logger),
		recorder.WithClock(r.now),
		recorder.WithPolicy(r.policy),
		recorder.WithMaxEvents(int(r.cfg.MaxEvents.Int64)),
		recorder.WithFatalHandler(func(err error) {
			t.Errorf("%v", err)
		}),
	}
}

// Page instruments p for the duration of the test. Dialog errors fail the
// test and the page is closed on cleanup.
func (r *Registry) Page(t testing.TB, p driver.Page) *recorder.Page {
	t.Helper()
	rp := recorder.Extend(p, r.recorderOptions(t)...)
	t.Cleanup(func() {
		if err := rp.Close(context.Background()); err != nil {
			t.Logf("closing page: %v", err)
		}
	})
	return rp
}

// IsolatedPage opens an instrumented page in a fresh browser context, closed
// with the test.
func (r *Registry) IsolatedPage(t testing.TB, browser driver.Browser) *recorder.Page {
	t.Helper()
	rp, err := recorder.CreateIsolatedPage(context.Background(), browser, r.recorderOptions(t)...)
	if err != nil {
		t.Fatalf("creating isolated page: %v", err)
		return nil
	}
	t.Cleanup(func() {
		if err := rp.Close(context.Background()); err != nil {
			t.Logf("closing isolated page: %v", err)
		}
	})
	return rp
}
