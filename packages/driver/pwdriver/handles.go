package pwdriver

import (
	"context"

	"github.com/playwright-community/playwright-go"

	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
)

type frame struct {
	f playwright.Frame
}

func (f *frame) URL() string {
	return f.f.URL()
}

func (f *frame) WaitForSelector(ctx context.Context, selector string, opts driver.WaitOptions) (driver.ElementHandle, error) {
	el, err := f.f.WaitForSelector(selector, playwright.FrameWaitForSelectorOptions{
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

type element struct {
	el playwright.ElementHandle
}

func (e *element) ContentFrame(_ context.Context) (driver.Frame, error) {
	f, err := e.el.ContentFrame()
	if err != nil {
		return nil, wrapErr(err)
	}
	if f == nil {
		return nil, nil
	}
	return &frame{f: f}, nil
}

func (e *element) IsChecked(_ context.Context) (bool, error) {
	ok, err := e.el.IsChecked()
	return ok, wrapErr(err)
}

func (e *element) InnerText(_ context.Context) (string, error) {
	s, err := e.el.InnerText()
	return s, wrapErr(err)
}

func (e *element) TextContent(_ context.Context) (string, error) {
	s, err := e.el.TextContent()
	return s, wrapErr(err)
}

func (e *element) Evaluate(_ context.Context, expression string) (any, error) {
	v, err := e.el.Evaluate(expression)
	return v, wrapErr(err)
}

func (e *element) Screenshot(ctx context.Context, opts driver.ScreenshotOptions) ([]byte, error) {
	o := playwright.ElementHandleScreenshotOptions{Timeout: timeout(ctx, 0)}
	if opts.Path != "" {
		o.Path = playwright.String(opts.Path)
	}
	img, err := e.el.Screenshot(o)
	return img, wrapErr(err)
}

type locator struct {
	l playwright.Locator
}

func (l *locator) ElementHandle(ctx context.Context) (driver.ElementHandle, error) {
	el, err := l.l.ElementHandle(playwright.LocatorElementHandleOptions{Timeout: timeout(ctx, 0)})
	if err != nil {
		return nil, wrapErr(err)
	}
	return &element{el: el}, nil
}

type browserContext struct {
	c playwright.BrowserContext
}

func (c *browserContext) Pages() []driver.Page {
	pages := c.c.Pages()
	out := make([]driver.Page, len(pages))
	for i, p := range pages {
		out[i] = WrapPage(p)
	}
	return out
}

func (c *browserContext) NewPage(_ context.Context) (driver.Page, error) {
	p, err := c.c.NewPage()
	if err != nil {
		return nil, wrapErr(err)
	}
	return WrapPage(p), nil
}

func (c *browserContext) Close(_ context.Context) error {
	return c.c.Close()
}

type dialog struct {
	d playwright.Dialog
}

func (d *dialog) Type() string         { return d.d.Type() }
func (d *dialog) Message() string      { return d.d.Message() }
func (d *dialog) DefaultValue() string { return d.d.DefaultValue() }

func (d *dialog) Accept(_ context.Context, promptText string) error {
	if promptText == "" {
		return d.d.Accept()
	}
	return d.d.Accept(promptText)
}

func (d *dialog) Dismiss(_ context.Context) error {
	return d.d.Dismiss()
}

type request struct {
	r playwright.Request
}

func (r *request) URL() string    { return r.r.URL() }
func (r *request) Method() string { return r.r.Method() }

func (r *request) RedirectedFrom() driver.Request {
	from := r.r.RedirectedFrom()
	if from == nil {
		return nil
	}
	return &request{r: from}
}
