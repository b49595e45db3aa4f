// Package drivertest provides an in-memory driver for testing code written
// against package driver.
//
// Elements are registered per selector on a frame; events are emitted
// synchronously through the Emit helpers; page behaviour (what a click or a
// navigation does) is scripted with hooks.
package drivertest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
)

// Compile-time interface satisfaction checks.
var (
	_ driver.Browser        = (*Browser)(nil)
	_ driver.BrowserContext = (*Context)(nil)
	_ driver.Page           = (*Page)(nil)
	_ driver.Frame          = (*Frame)(nil)
	_ driver.ElementHandle  = (*Element)(nil)
	_ driver.Locator        = (*Locator)(nil)
	_ driver.Dialog         = (*Dialog)(nil)
	_ driver.Download       = (*Download)(nil)
	_ driver.Request        = (*Request)(nil)
	_ driver.Response       = (*Response)(nil)
)

// Browser hands out fresh contexts.
type Browser struct {
	mu       sync.Mutex
	contexts []*Context
}

func NewBrowser() *Browser {
	return &Browser{}
}

func (b *Browser) NewContext(_ context.Context) (driver.BrowserContext, error) {
	c := NewContext()
	b.mu.Lock()
	b.contexts = append(b.contexts, c)
	b.mu.Unlock()
	return c, nil
}

// Contexts returns every context created so far.
func (b *Browser) Contexts() []*Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Context(nil), b.contexts...)
}

// Context owns pages.
type Context struct {
	mu     sync.Mutex
	pages  []*Page
	closed bool
}

func NewContext() *Context {
	return &Context{}
}

// NewTestPage creates a page in the context without an opener.
func (c *Context) NewTestPage() *Page {
	return c.addPage(nil)
}

func (c *Context) addPage(opener *Page) *Page {
	p := &Page{
		browserCtx: c,
		opener:     opener,
		clickHooks: make(map[string]func(*Page)),
		routes:     make(map[string]func(*Page)),
	}
	p.frame = NewFrame("about:blank")
	c.mu.Lock()
	c.pages = append(c.pages, p)
	c.mu.Unlock()
	return p
}

func (c *Context) removePage(p *Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, q := range c.pages {
		if q == p {
			c.pages = append(c.pages[:i], c.pages[i+1:]...)
			return
		}
	}
}

func (c *Context) Pages() []driver.Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	pages := make([]driver.Page, len(c.pages))
	for i, p := range c.pages {
		pages[i] = p
	}
	return pages
}

func (c *Context) NewPage(_ context.Context) (driver.Page, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, errors.New("browser context is closed")
	}
	return c.addPage(nil), nil
}

func (c *Context) Close(_ context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.pages = nil
	c.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Page is a fake tab. Its main frame holds the registered elements.
type Page struct {
	mu         sync.Mutex
	browserCtx *Context
	opener     *Page
	frame      *Frame
	closed     bool
	image      []byte
	calls      []string
	clickHooks map[string]func(*Page)
	routes     map[string]func(*Page)

	onRequest  []func(driver.Request)
	onResponse []func(driver.Response)
	onDownload []func(driver.Download)
	onDialog   []func(driver.Dialog)
	onPopup    []func(driver.Page)
}

// NewPage returns a page living in a fresh context.
func NewPage() *Page {
	return NewContext().NewTestPage()
}

// Set registers an element under selector in the main frame.
func (p *Page) Set(selector string, el *Element) *Page {
	p.frame.Set(selector, el)
	return p
}

// SetAfter registers an element that only appears after misses failed lookups.
func (p *Page) SetAfter(selector string, el *Element, misses int) *Page {
	p.frame.SetAfter(selector, el, misses)
	return p
}

// Element returns the element registered under selector, or nil.
func (p *Page) Element(selector string) *Element {
	return p.frame.Element(selector)
}

// SetScreenshot sets the bytes returned by Screenshot.
func (p *Page) SetScreenshot(img []byte) {
	p.mu.Lock()
	p.image = img
	p.mu.Unlock()
}

// HandleClick runs fn when selector is clicked.
func (p *Page) HandleClick(selector string, fn func(*Page)) {
	p.mu.Lock()
	p.clickHooks[selector] = fn
	p.mu.Unlock()
}

// Route runs fn when the page navigates to url.
func (p *Page) Route(url string, fn func(*Page)) {
	p.mu.Lock()
	p.routes[url] = fn
	p.mu.Unlock()
}

// Calls returns the actions performed on the page, in order.
func (p *Page) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// Closed reports whether Close was called.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Frame returns the fake main frame.
func (p *Page) Frame() *Frame {
	return p.frame
}

func (p *Page) record(format string, args ...any) {
	p.mu.Lock()
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
	p.mu.Unlock()
}

func (p *Page) URL() string {
	return p.frame.URL()
}

func (p *Page) WaitForSelector(ctx context.Context, selector string, opts driver.WaitOptions) (driver.ElementHandle, error) {
	return p.frame.WaitForSelector(ctx, selector, opts)
}

func (p *Page) MainFrame() driver.Frame {
	return p.frame
}

func (p *Page) Goto(_ context.Context, url string) error {
	p.record("goto %s", url)
	p.frame.SetURL(url)
	p.mu.Lock()
	route := p.routes[url]
	p.mu.Unlock()
	if route != nil {
		route(p)
	}
	return nil
}

func (p *Page) mustElement(selector string) (*Element, error) {
	el := p.frame.Element(selector)
	if el == nil {
		return nil, fmt.Errorf("no element matches selector %q", selector)
	}
	return el, nil
}

func (p *Page) Fill(_ context.Context, selector, value string) error {
	el, err := p.mustElement(selector)
	if err != nil {
		return err
	}
	p.record("fill %s", selector)
	el.SetValue(value)
	return nil
}

func (p *Page) Focus(_ context.Context, selector string) error {
	if _, err := p.mustElement(selector); err != nil {
		return err
	}
	p.record("focus %s", selector)
	return nil
}

func (p *Page) Click(_ context.Context, selector string) error {
	if _, err := p.mustElement(selector); err != nil {
		return err
	}
	p.record("click %s", selector)
	p.mu.Lock()
	hook := p.clickHooks[selector]
	p.mu.Unlock()
	if hook != nil {
		hook(p)
	}
	return nil
}

func (p *Page) Check(_ context.Context, selector string) error {
	el, err := p.mustElement(selector)
	if err != nil {
		return err
	}
	p.record("check %s", selector)
	el.SetChecked(true)
	return nil
}

func (p *Page) SelectOption(_ context.Context, selector string, values ...string) error {
	el, err := p.mustElement(selector)
	if err != nil {
		return err
	}
	p.record("select %s %v", selector, values)
	el.SetSelected(values...)
	return nil
}

func (p *Page) SetInputFiles(_ context.Context, selector string, files ...string) error {
	if _, err := p.mustElement(selector); err != nil {
		return err
	}
	p.record("files %s %v", selector, files)
	return nil
}

func (p *Page) Screenshot(_ context.Context, opts driver.ScreenshotOptions) ([]byte, error) {
	p.mu.Lock()
	img := append([]byte(nil), p.image...)
	p.calls = append(p.calls, fmt.Sprintf("screenshot fullPage=%t", opts.FullPage))
	p.mu.Unlock()
	return writeShot(img, opts)
}

func (p *Page) Locator(selector string) driver.Locator {
	return &Locator{frame: p.frame, selector: selector}
}

func (p *Page) Context() driver.BrowserContext {
	return p.browserCtx
}

func (p *Page) Opener(_ context.Context) (driver.Page, error) {
	if p.opener == nil {
		return nil, nil
	}
	return p.opener, nil
}

func (p *Page) Close(_ context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.browserCtx.removePage(p)
	return nil
}

func (p *Page) OnRequest(fn func(driver.Request)) {
	p.mu.Lock()
	p.onRequest = append(p.onRequest, fn)
	p.mu.Unlock()
}

func (p *Page) OnResponse(fn func(driver.Response)) {
	p.mu.Lock()
	p.onResponse = append(p.onResponse, fn)
	p.mu.Unlock()
}

func (p *Page) OnDownload(fn func(driver.Download)) {
	p.mu.Lock()
	p.onDownload = append(p.onDownload, fn)
	p.mu.Unlock()
}

func (p *Page) OnDialog(fn func(driver.Dialog)) {
	p.mu.Lock()
	p.onDialog = append(p.onDialog, fn)
	p.mu.Unlock()
}

func (p *Page) OnPopup(fn func(driver.Page)) {
	p.mu.Lock()
	p.onPopup = append(p.onPopup, fn)
	p.mu.Unlock()
}

// EmitRequest delivers r to the request listeners.
func (p *Page) EmitRequest(r *Request) {
	p.mu.Lock()
	handlers := slices.Clone(p.onRequest)
	p.mu.Unlock()
	for _, fn := range handlers {
		fn(r)
	}
}

// EmitResponse delivers r to the response listeners.
func (p *Page) EmitResponse(r *Response) {
	p.mu.Lock()
	handlers := slices.Clone(p.onResponse)
	p.mu.Unlock()
	for _, fn := range handlers {
		fn(r)
	}
}

// EmitDownload delivers d to the download listeners.
func (p *Page) EmitDownload(d *Download) {
	p.mu.Lock()
	handlers := slices.Clone(p.onDownload)
	p.mu.Unlock()
	for _, fn := range handlers {
		fn(d)
	}
}

// EmitDialog delivers d to the dialog listeners. A dialog nobody handles is
// dismissed, matching browser drivers.
func (p *Page) EmitDialog(d *Dialog) {
	p.mu.Lock()
	handlers := slices.Clone(p.onDialog)
	p.mu.Unlock()
	if len(handlers) == 0 {
		_ = d.Dismiss(context.Background())
		return
	}
	for _, fn := range handlers {
		fn(d)
	}
}

// OpenPopup creates a page opened by p and notifies the popup listeners.
func (p *Page) OpenPopup(url string) *Page {
	popup := p.browserCtx.addPage(p)
	popup.frame.SetURL(url)
	p.mu.Lock()
	handlers := slices.Clone(p.onPopup)
	p.mu.Unlock()
	for _, fn := range handlers {
		fn(popup)
	}
	return popup
}

func writeShot(img []byte, opts driver.ScreenshotOptions) ([]byte, error) {
	if opts.Path != "" {
		if err := os.WriteFile(opts.Path, img, 0o644); err != nil {
			return nil, err
		}
	}
	return img, nil
}
