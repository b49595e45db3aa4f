package pwdriver

import (
	"context"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
)

var _ driver.Page = (*Page)(nil)

var registry = struct {
	sync.Mutex
	pages map[playwright.Page]*Page
}{pages: make(map[playwright.Page]*Page)}

// Page adapts a playwright.Page.
type Page struct {
	p playwright.Page
}

// WrapPage returns the wrapper of p, creating it on first use.
func WrapPage(p playwright.Page) *Page {
	registry.Lock()
	defer registry.Unlock()
	if w, ok := registry.pages[p]; ok {
		return w
	}
	w := &Page{p: p}
	registry.pages[p] = w
	p.OnClose(func(playwright.Page) {
		registry.Lock()
		delete(registry.pages, p)
		registry.Unlock()
	})
	return w
}

// Playwright returns the wrapped page.
func (p *Page) Playwright() playwright.Page {
	return p.p
}

func (p *Page) URL() string {
	return p.p.URL()
}

func (p *Page) WaitForSelector(ctx context.Context, selector string, opts driver.WaitOptions) (driver.ElementHandle, error) {
	el, err := p.p.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   waitState(opts.State),
		Timeout: timeout(ctx, opts.Timeout),
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	if el == nil {
		return nil, nil
	}
	return &element{el: el}, nil
}

func (p *Page) MainFrame() driver.Frame {
	return &frame{f: p.p.MainFrame()}
}

func (p *Page) Goto(ctx context.Context, url string) error {
	_, err := p.p.Goto(url, playwright.PageGotoOptions{Timeout: timeout(ctx, 0)})
	return wrapErr(err)
}

func (p *Page) Fill(ctx context.Context, selector, value string) error {
	return wrapErr(p.p.Fill(selector, value, playwright.PageFillOptions{Timeout: timeout(ctx, 0)}))
}

func (p *Page) Focus(ctx context.Context, selector string) error {
	return wrapErr(p.p.Focus(selector, playwright.PageFocusOptions{Timeout: timeout(ctx, 0)}))
}

func (p *Page) Click(ctx context.Context, selector string) error {
	return wrapErr(p.p.Click(selector, playwright.PageClickOptions{Timeout: timeout(ctx, 0)}))
}

func (p *Page) Check(ctx context.Context, selector string) error {
	return wrapErr(p.p.Check(selector, playwright.PageCheckOptions{Timeout: timeout(ctx, 0)}))
}

func (p *Page) SelectOption(ctx context.Context, selector string, values ...string) error {
	_, err := p.p.SelectOption(selector, playwright.SelectOptionValues{Values: &values},
		playwright.PageSelectOptionOptions{Timeout: timeout(ctx, 0)})
	return wrapErr(err)
}

func (p *Page) SetInputFiles(ctx context.Context, selector string, files ...string) error {
	return wrapErr(p.p.SetInputFiles(selector, files, playwright.PageSetInputFilesOptions{Timeout: timeout(ctx, 0)}))
}

func (p *Page) Screenshot(ctx context.Context, opts driver.ScreenshotOptions) ([]byte, error) {
	o := playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(opts.FullPage),
		Timeout:  timeout(ctx, 0),
	}
	if opts.Path != "" {
		o.Path = playwright.String(opts.Path)
	}
	img, err := p.p.Screenshot(o)
	return img, wrapErr(err)
}

func (p *Page) Locator(selector string) driver.Locator {
	return &locator{l: p.p.Locator(selector)}
}

func (p *Page) Context() driver.BrowserContext {
	return &browserContext{c: p.p.Context()}
}

func (p *Page) Opener(_ context.Context) (driver.Page, error) {
	op, err := p.p.Opener()
	if err != nil {
		return nil, wrapErr(err)
	}
	if op == nil {
		return nil, nil
	}
	return WrapPage(op), nil
}

func (p *Page) Close(_ context.Context) error {
	return p.p.Close()
}

func (p *Page) OnRequest(fn func(driver.Request)) {
	p.p.OnRequest(func(r playwright.Request) { fn(&request{r: r}) })
}

func (p *Page) OnResponse(fn func(driver.Response)) {
	p.p.OnResponse(func(r playwright.Response) { fn(r) })
}

func (p *Page) OnDownload(fn func(driver.Download)) {
	p.p.OnDownload(func(d playwright.Download) { fn(d) })
}

func (p *Page) OnDialog(fn func(driver.Dialog)) {
	p.p.OnDialog(func(d playwright.Dialog) { fn(&dialog{d: d}) })
}

func (p *Page) OnPopup(fn func(driver.Page)) {
	p.p.OnPopup(func(popup playwright.Page) { fn(WrapPage(popup)) })
}
