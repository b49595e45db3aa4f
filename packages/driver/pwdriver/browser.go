package pwdriver

import (
	"context"
	"errors"

	"github.com/playwright-community/playwright-go"

	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
)

var _ driver.Browser = (*Browser)(nil)

// Browser adapts a playwright.Browser. Browsers started with Launch also
// own the Playwright driver process.
type Browser struct {
	b  playwright.Browser
	pw *playwright.Playwright
}

func WrapBrowser(b playwright.Browser) *Browser {
	return &Browser{b: b}
}

// Launch starts Playwright and a Chromium instance.
func Launch(opts ...playwright.BrowserTypeLaunchOptions) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}
	b, err := pw.Chromium.Launch(opts...)
	if err != nil {
		return nil, errors.Join(err, pw.Stop())
	}
	return &Browser{b: b, pw: pw}, nil
}

func (b *Browser) NewContext(_ context.Context) (driver.BrowserContext, error) {
	c, err := b.b.NewContext()
	if err != nil {
		return nil, wrapErr(err)
	}
	return &browserContext{c: c}, nil
}

// NewPage opens a page in a fresh context.
func (b *Browser) NewPage(ctx context.Context) (*Page, error) {
	c, err := b.NewContext(ctx)
	if err != nil {
		return nil, err
	}
	p, err := c.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	return p.(*Page), nil
}

// Close closes the browser and, when launched here, stops Playwright.
func (b *Browser) Close() error {
	err := b.b.Close()
	if b.pw != nil {
		err = errors.Join(err, b.pw.Stop())
	}
	return err
}
