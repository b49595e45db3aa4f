package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/pagexpect/packages/capture"
	"github.com/abdul-hamid-achik/pagexpect/packages/core/retry"
	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
)

type options struct {
	logger    logrus.FieldLogger
	now       func() time.Time
	policy    retry.Policy
	maxEvents int
	onFatal   []func(error)
	ctx       context.Context
	fatal     *fatalHandlers
}

// fatalHandlers is shared by a page and every popup it opens.
type fatalHandlers struct {
	mu  sync.Mutex
	fns []func(error)
}

func (h *fatalHandlers) add(fns ...func(error)) {
	h.mu.Lock()
	h.fns = append(h.fns, fns...)
	h.mu.Unlock()
}

func (h *fatalHandlers) call(err error) {
	h.mu.Lock()
	fns := slices.Clone(h.fns)
	h.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

type Option func(*options)

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the clock used to timestamp events.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithPolicy sets the polling budget of GetPopup.
func WithPolicy(p retry.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithMaxEvents bounds each event log; 0 keeps everything.
func WithMaxEvents(n int) Option {
	return func(o *options) { o.maxEvents = n }
}

// WithFatalHandler is called with every dialog error, on the driver's
// goroutine. Handlers accumulate; all of them are called.
func WithFatalHandler(fn func(error)) Option {
	return func(o *options) {
		if fn != nil {
			o.onFatal = append(o.onFatal, fn)
		}
	}
}

// WithContext sets the context used to answer dialogs.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

func defaultOptions() options {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return options{
		logger: l,
		now:    time.Now,
		policy: retry.DefaultPolicy(),
		ctx:    context.Background(),
	}
}

// Page is an instrumented driver.Page.
type Page struct {
	driver.Page

	opts    options
	log     logrus.FieldLogger
	context driver.BrowserContext // closed with the page when owned

	mu        sync.Mutex
	requests  eventLog[RequestRecord]
	responses eventLog[ResponseRecord]
	downloads eventLog[DownloadRecord]
	dialogs   []DialogExpectation
	popups    []*Page
	children  map[driver.Page]*Page
	errs      []error
}

// Extend instruments p. Extending an already instrumented page returns the
// same wrapper: fatal handlers passed again are added to it (and its popups),
// every other option is ignored.
func Extend(p driver.Page, opts ...Option) *Page {
	if rp, ok := p.(*Page); ok {
		var o options
		for _, opt := range opts {
			opt(&o)
		}
		rp.opts.fatal.add(o.onFatal...)
		return rp
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.fatal = &fatalHandlers{fns: o.onFatal}
	return extend(p, o)
}

func extend(p driver.Page, o options) *Page {
	rp := &Page{
		Page:      p,
		opts:      o,
		log:       o.logger.WithField("page", p.URL()),
		requests:  eventLog[RequestRecord]{max: o.maxEvents},
		responses: eventLog[ResponseRecord]{max: o.maxEvents},
		downloads: eventLog[DownloadRecord]{max: o.maxEvents},
	}

	p.OnRequest(rp.onRequest)
	p.OnResponse(rp.onResponse)
	p.OnDownload(rp.onDownload)
	p.OnDialog(rp.handleDialog)
	p.OnPopup(rp.onPopup)
	return rp
}

// Unwrap returns the underlying driver page.
func (p *Page) Unwrap() driver.Page {
	return p.Page
}

func (p *Page) onRequest(r driver.Request) {
	rec := RequestRecord{URL: r.URL(), Method: r.Method(), Time: p.opts.now()}
	if from := r.RedirectedFrom(); from != nil {
		rec.RedirectedFrom = from.URL()
	}
	p.mu.Lock()
	p.requests.add(rec)
	p.mu.Unlock()
}

func (p *Page) onResponse(r driver.Response) {
	rec := ResponseRecord{URL: r.URL(), Status: r.Status(), Time: p.opts.now()}
	p.mu.Lock()
	p.responses.add(rec)
	p.mu.Unlock()
}

func (p *Page) onDownload(d driver.Download) {
	rec := DownloadRecord{SuggestedFilename: d.SuggestedFilename(), Time: p.opts.now()}
	p.mu.Lock()
	p.downloads.add(rec)
	p.mu.Unlock()
	p.log.WithField("file", rec.SuggestedFilename).Debug("download recorded")
}

func (p *Page) onPopup(pg driver.Page) {
	p.wrapPopup(pg)
	p.log.WithField("popup", pg.URL()).Debug("popup opened")
}

// Requests returns a copy of the request log.
func (p *Page) Requests() []RequestRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests.snapshot()
}

// Responses returns a copy of the response log.
func (p *Page) Responses() []ResponseRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.responses.snapshot()
}

// Downloads returns a copy of the download log.
func (p *Page) Downloads() []DownloadRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.downloads.snapshot()
}

// Popups returns the instrumented popups opened so far.
func (p *Page) Popups() []*Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Page(nil), p.popups...)
}

// GetPopup waits for a page in the same browser context whose opener is p.
// It returns nil, nil when none shows up within the polling budget.
func (p *Page) GetPopup(ctx context.Context) (*Page, error) {
	var found driver.Page
	_, err := retry.Poll(ctx, p.opts.policy, func(ctx context.Context) (bool, error) {
		for _, cand := range p.Context().Pages() {
			opener, err := cand.Opener(ctx)
			if err != nil {
				return false, err
			}
			if opener != nil && opener == p.Page {
				found = cand
				return true, nil
			}
		}
		return false, nil
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if found == nil {
		if err != nil {
			p.log.WithError(err).Debug("no popup found")
		}
		return nil, nil
	}
	return p.wrapPopup(found), nil
}

// wrapPopup returns the one wrapper of pg, creating it on first sight. Both
// the popup listener and GetPopup go through here, in either order.
func (p *Page) wrapPopup(pg driver.Page) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	if child, ok := p.children[pg]; ok {
		return child
	}
	child := extend(pg, p.opts)
	if p.children == nil {
		p.children = make(map[driver.Page]*Page)
	}
	p.children[pg] = child
	p.popups = append(p.popups, child)
	return child
}

// pickScript reads a form control's value, falling back to its text.
const pickScript = `el => el.value || el.textContent`

// PickValue reads the value or text of the element at selector and extracts
// a value from it.
func (p *Page) PickValue(ctx context.Context, selector string, opts capture.Options) (string, error) {
	el, err := p.Locator(selector).ElementHandle(ctx)
	if err != nil {
		return "", err
	}
	if el == nil {
		return "", fmt.Errorf("no element matches selector %q", selector)
	}
	v, err := el.Evaluate(ctx, pickScript)
	if err != nil {
		return "", err
	}
	return capture.Extract(stringify(v), opts)
}

// Close closes the page, and its browser context when the page owns it.
func (p *Page) Close(ctx context.Context) error {
	err := p.Page.Close(ctx)
	if p.context != nil {
		err = errors.Join(err, p.context.Close(ctx))
	}
	return err
}

// CreateIsolatedPage opens an instrumented page in a fresh browser context.
// Closing the page closes the context.
func CreateIsolatedPage(ctx context.Context, browser driver.Browser, opts ...Option) (*Page, error) {
	bc, err := browser.NewContext(ctx)
	if err != nil {
		return nil, err
	}
	pg, err := bc.NewPage(ctx)
	if err != nil {
		_ = bc.Close(ctx)
		return nil, err
	}
	rp := Extend(pg, opts...)
	rp.context = bc
	return rp, nil
}

// stringify turns an evaluation result into text: strings pass through, null
// is empty, anything else is rendered as JSON.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
