package target

import (
	"context"
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
)

// DefaultSelector is waited for when a page or frame is given without one.
const DefaultSelector = "body"

// Request is the parsed argument tuple of one matcher call.
type Request struct {
	Target   driver.Handle
	Selector string
	Expected []any
	Options  driver.WaitOptions
}

// FromArgs splits the positional tail (selector, expected values, options)
// that follows the target. A trailing driver.WaitOptions is taken as the
// options, the last valueCount remaining arguments (all of them if fewer)
// become the expected values, and a leading string left over is the
// selector. args is not modified.
func FromArgs(h driver.Handle, valueCount int, args ...any) Request {
	rest := append([]any(nil), args...)
	req := Request{Target: h}

	if n := len(rest); n > 0 {
		switch o := rest[n-1].(type) {
		case driver.WaitOptions:
			req.Options = o
			rest = rest[:n-1]
		case *driver.WaitOptions:
			if o != nil {
				req.Options = *o
			}
			rest = rest[:n-1]
		}
	}

	if valueCount < 0 {
		valueCount = 0
	}
	cut := len(rest) - valueCount
	if cut < 0 {
		cut = 0
	}
	req.Expected = rest[cut:]
	rest = rest[:cut]

	if len(rest) > 0 {
		if s, ok := rest[0].(string); ok {
			req.Selector = s
		}
	}
	return req
}

// Value returns expected value i, or nil when it was not supplied.
func (r Request) Value(i int) any {
	if i < 0 || i >= len(r.Expected) {
		return nil
	}
	return r.Expected[i]
}

// TimeoutError reports a selector that never appeared.
type TimeoutError struct {
	Selector string
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout exceeded for element '%s'", e.Selector)
}

// Unwrap exposes driver.ErrTimeout along with the underlying driver error.
func (e *TimeoutError) Unwrap() []error {
	return []error{driver.ErrTimeout, e.Err}
}

// Resolve returns the element handle req points at.
func Resolve(ctx context.Context, req Request) (driver.ElementHandle, error) {
	h, err := req.Target.Await(ctx)
	if err != nil {
		return nil, err
	}

	var container driver.Container
	switch h.Kind() {
	case driver.KindElement:
		el, _ := h.Element()
		frame, err := el.ContentFrame(ctx)
		if err != nil {
			return nil, err
		}
		if frame == nil {
			return el, nil
		}
		container = frame
	case driver.KindLocator:
		loc, _ := h.Locator()
		el, err := loc.ElementHandle(ctx)
		if err != nil {
			return nil, err
		}
		if el == nil {
			return nil, errors.New("locator resolved to no element")
		}
		return el, nil
	default:
		c, ok := h.Container()
		if !ok {
			return nil, fmt.Errorf("cannot resolve a %s handle", h.Kind())
		}
		container = c
	}

	selector := req.Selector
	if selector == "" {
		selector = DefaultSelector
	}
	el, err := container.WaitForSelector(ctx, selector, req.Options)
	if err != nil {
		return nil, &TimeoutError{Selector: selector, Err: err}
	}
	if el == nil {
		return nil, &TimeoutError{Selector: selector, Err: driver.ErrTimeout}
	}
	return el, nil
}

// ResolveValues is Resolve plus exactly valueCount expected values, padded
// with nil.
func ResolveValues(ctx context.Context, req Request, valueCount int) (driver.ElementHandle, []any, error) {
	el, err := Resolve(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	values := make([]any, valueCount)
	for i := range values {
		values[i] = req.Value(i)
	}
	return el, values, nil
}

// Frame returns the document behind h: a page or frame itself, or the
// content frame of an element or located element.
func Frame(ctx context.Context, h driver.Handle) (driver.Container, error) {
	h, err := h.Await(ctx)
	if err != nil {
		return nil, err
	}
	if c, ok := h.Container(); ok {
		return c, nil
	}

	var el driver.ElementHandle
	switch h.Kind() {
	case driver.KindElement:
		el, _ = h.Element()
	case driver.KindLocator:
		loc, _ := h.Locator()
		if el, err = loc.ElementHandle(ctx); err != nil {
			return nil, err
		}
	}
	if el == nil {
		return nil, fmt.Errorf("cannot get a frame from a %s handle", h.Kind())
	}
	frame, err := el.ContentFrame(ctx)
	if err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, errors.New("element has no content frame")
	}
	return frame, nil
}

// Page returns the page behind h.
func Page(ctx context.Context, h driver.Handle) (driver.Page, error) {
	h, err := h.Await(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := h.Page()
	if !ok {
		return nil, fmt.Errorf("expected a page, got a %s handle", h.Kind())
	}
	return p, nil
}
