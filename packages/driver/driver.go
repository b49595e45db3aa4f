package driver

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is wrapped by adapters when a wait expires.
var ErrTimeout = errors.New("timeout")

// WaitState is the element state WaitForSelector waits for.
type WaitState string

const (
	StateAttached WaitState = "attached"
	StateDetached WaitState = "detached"
	StateVisible  WaitState = "visible"
	StateHidden   WaitState = "hidden"
)

// WaitOptions configure WaitForSelector. Zero values mean "driver default".
type WaitOptions struct {
	State   WaitState
	Timeout time.Duration
}

// ScreenshotOptions configure a screenshot. When Path is set the image is
// also written there.
type ScreenshotOptions struct {
	Path     string
	FullPage bool
}

// Dialog types as reported by Dialog.Type.
const (
	DialogAlert        = "alert"
	DialogConfirm      = "confirm"
	DialogPrompt       = "prompt"
	DialogBeforeUnload = "beforeunload"
)

// Container is anything selectors can be evaluated in: a page or a frame.
type Container interface {
	URL() string
	WaitForSelector(ctx context.Context, selector string, opts WaitOptions) (ElementHandle, error)
}

// Frame is a document inside a page.
type Frame interface {
	Container
}

// Page is a browser tab.
type Page interface {
	Container

	MainFrame() Frame
	Goto(ctx context.Context, url string) error
	Fill(ctx context.Context, selector, value string) error
	Focus(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	Check(ctx context.Context, selector string) error
	SelectOption(ctx context.Context, selector string, values ...string) error
	SetInputFiles(ctx context.Context, selector string, files ...string) error
	Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error)
	Locator(selector string) Locator
	Context() BrowserContext
	// Opener returns the page that opened this one, or nil.
	Opener(ctx context.Context) (Page, error)
	Close(ctx context.Context) error

	OnRequest(func(Request))
	OnResponse(func(Response))
	OnDownload(func(Download))
	OnDialog(func(Dialog))
	OnPopup(func(Page))
}

// ElementHandle is a concrete reference to a DOM element.
type ElementHandle interface {
	// ContentFrame returns the frame of an iframe element, or nil.
	ContentFrame(ctx context.Context) (Frame, error)
	IsChecked(ctx context.Context) (bool, error)
	InnerText(ctx context.Context) (string, error)
	TextContent(ctx context.Context) (string, error)
	// Evaluate calls the JavaScript function expression with the element
	// as its first argument and returns the JSON-decoded result.
	Evaluate(ctx context.Context, expression string) (any, error)
	Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error)
}

// Locator is a deferred element reference, resolved on demand.
type Locator interface {
	ElementHandle(ctx context.Context) (ElementHandle, error)
}

// BrowserContext is an isolated browsing session owning pages.
type BrowserContext interface {
	Pages() []Page
	NewPage(ctx context.Context) (Page, error)
	Close(ctx context.Context) error
}

// Browser creates browsing contexts.
type Browser interface {
	NewContext(ctx context.Context) (BrowserContext, error)
}

// Dialog is a native alert, confirm, prompt or beforeunload dialog.
type Dialog interface {
	Type() string
	Message() string
	DefaultValue() string
	Accept(ctx context.Context, promptText string) error
	Dismiss(ctx context.Context) error
}

// Download is a file download started by a page.
type Download interface {
	SuggestedFilename() string
}

// Request is an outgoing network request.
type Request interface {
	URL() string
	Method() string
	// RedirectedFrom returns the request that was redirected to this one, or nil.
	RedirectedFrom() Request
}

// Response is an incoming network response.
type Response interface {
	URL() string
	Status() int
}
