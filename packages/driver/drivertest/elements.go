package drivertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
)

type entry struct {
	el     *Element
	misses int
}

// Frame is a fake document. Lookups never block: a selector that is not
// registered (or has not appeared yet) fails at once with driver.ErrTimeout.
type Frame struct {
	mu       sync.Mutex
	url      string
	elements map[string]*entry
	waits    []driver.WaitOptions
}

func NewFrame(url string) *Frame {
	return &Frame{url: url, elements: make(map[string]*entry)}
}

func (f *Frame) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}

func (f *Frame) SetURL(url string) {
	f.mu.Lock()
	f.url = url
	f.mu.Unlock()
}

// Set registers el under selector.
func (f *Frame) Set(selector string, el *Element) *Frame {
	return f.SetAfter(selector, el, 0)
}

// SetAfter registers el under selector; the first misses lookups fail.
func (f *Frame) SetAfter(selector string, el *Element, misses int) *Frame {
	f.mu.Lock()
	f.elements[selector] = &entry{el: el, misses: misses}
	f.mu.Unlock()
	return f
}

// Remove unregisters selector.
func (f *Frame) Remove(selector string) {
	f.mu.Lock()
	delete(f.elements, selector)
	f.mu.Unlock()
}

// Element returns the element registered under selector, or nil. It does not
// count as a lookup.
func (f *Frame) Element(selector string) *Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.elements[selector]; ok {
		return e.el
	}
	return nil
}

// Waits returns the options passed to WaitForSelector, in call order.
func (f *Frame) Waits() []driver.WaitOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]driver.WaitOptions(nil), f.waits...)
}

func (f *Frame) lookup(selector string) (*Element, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.elements[selector]
	if !ok {
		return nil, false
	}
	if e.misses > 0 {
		e.misses--
		return nil, false
	}
	return e.el, true
}

func (f *Frame) WaitForSelector(ctx context.Context, selector string, opts driver.WaitOptions) (driver.ElementHandle, error) {
	f.mu.Lock()
	f.waits = append(f.waits, opts)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	el, ok := f.lookup(selector)
	if !ok {
		return nil, fmt.Errorf("waiting for selector %q: %w", selector, driver.ErrTimeout)
	}
	return el, nil
}

// Element is a fake DOM element.
type Element struct {
	mu       sync.Mutex
	tag      string
	checked  bool
	text     string
	content  *string
	value    string
	selected []string
	frame    *Frame
	image    []byte
	err      error

	// EvaluateFunc, when set, replaces the default Evaluate behaviour.
	EvaluateFunc func(expression string) (any, error)
}

// NewElement returns an element with the given tag name.
func NewElement(tag string) *Element {
	return &Element{tag: tag}
}

// Text returns a div whose inner text and text content are s.
func Text(s string) *Element {
	return NewElement("div").WithText(s)
}

// Input returns an input element holding value.
func Input(value string) *Element {
	return NewElement("input").WithValue(value)
}

// Checkbox returns a checkbox in the given state.
func Checkbox(checked bool) *Element {
	e := NewElement("input")
	e.checked = checked
	return e
}

// Select returns a select element with the given options selected.
func Select(selected ...string) *Element {
	return NewElement("select").WithSelected(selected...)
}

// IFrame returns an iframe element whose content frame is f.
func IFrame(f *Frame) *Element {
	e := NewElement("iframe")
	e.frame = f
	return e
}

func (e *Element) WithText(s string) *Element {
	e.SetText(s)
	return e
}

// WithTextContent sets a text content that differs from the inner text.
func (e *Element) WithTextContent(s string) *Element {
	e.mu.Lock()
	e.content = &s
	e.mu.Unlock()
	return e
}

func (e *Element) WithValue(v string) *Element {
	e.SetValue(v)
	return e
}

func (e *Element) WithSelected(values ...string) *Element {
	e.SetSelected(values...)
	return e
}

func (e *Element) WithImage(img []byte) *Element {
	e.mu.Lock()
	e.image = img
	e.mu.Unlock()
	return e
}

// WithError makes every read on the element fail with err.
func (e *Element) WithError(err error) *Element {
	e.mu.Lock()
	e.err = err
	e.mu.Unlock()
	return e
}

func (e *Element) SetText(s string) {
	e.mu.Lock()
	e.text = s
	e.mu.Unlock()
}

func (e *Element) SetValue(v string) {
	e.mu.Lock()
	e.value = v
	e.mu.Unlock()
}

func (e *Element) SetChecked(v bool) {
	e.mu.Lock()
	e.checked = v
	e.mu.Unlock()
}

func (e *Element) SetSelected(values ...string) {
	e.mu.Lock()
	e.selected = append([]string(nil), values...)
	e.mu.Unlock()
}

// Value returns the current value.
func (e *Element) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

func (e *Element) ContentFrame(_ context.Context) (driver.Frame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	if e.frame == nil {
		return nil, nil
	}
	return e.frame, nil
}

func (e *Element) IsChecked(_ context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.checked, e.err
}

func (e *Element) InnerText(_ context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text, e.err
}

func (e *Element) TextContent(_ context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.content != nil {
		return *e.content, e.err
	}
	return e.text, e.err
}

// Evaluate ignores the expression unless EvaluateFunc is set. A select
// yields its selected values, an input or textarea its value, anything else
// its value when set and its text content otherwise.
func (e *Element) Evaluate(_ context.Context, expression string) (any, error) {
	e.mu.Lock()
	fn := e.EvaluateFunc
	e.mu.Unlock()
	if fn != nil {
		return fn(expression)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	switch e.tag {
	case "select":
		out := make([]any, len(e.selected))
		for i, v := range e.selected {
			out[i] = v
		}
		return out, nil
	case "input", "textarea":
		return e.value, nil
	}
	if e.value != "" {
		return e.value, nil
	}
	if e.content != nil {
		return *e.content, nil
	}
	return e.text, nil
}

func (e *Element) Screenshot(_ context.Context, opts driver.ScreenshotOptions) ([]byte, error) {
	e.mu.Lock()
	img, err := append([]byte(nil), e.image...), e.err
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return writeShot(img, opts)
}

// Locator resolves a selector in a frame on every call.
type Locator struct {
	frame    *Frame
	selector string
}

func (l *Locator) ElementHandle(_ context.Context) (driver.ElementHandle, error) {
	el, ok := l.frame.lookup(l.selector)
	if !ok {
		return nil, fmt.Errorf("locator %q resolved to no element: %w", l.selector, driver.ErrTimeout)
	}
	return el, nil
}

// Dialog is a fake native dialog. It records how it was closed.
type Dialog struct {
	mu        sync.Mutex
	kind      string
	message   string
	defValue  string
	accepted  bool
	dismissed bool
	input     string
}

func NewDialog(kind, message, defaultValue string) *Dialog {
	return &Dialog{kind: kind, message: message, defValue: defaultValue}
}

func (d *Dialog) Type() string         { return d.kind }
func (d *Dialog) Message() string      { return d.message }
func (d *Dialog) DefaultValue() string { return d.defValue }

func (d *Dialog) Accept(_ context.Context, promptText string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.accepted || d.dismissed {
		return fmt.Errorf("%s dialog already handled", d.kind)
	}
	d.accepted = true
	d.input = promptText
	return nil
}

func (d *Dialog) Dismiss(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.accepted || d.dismissed {
		return fmt.Errorf("%s dialog already handled", d.kind)
	}
	d.dismissed = true
	return nil
}

// Accepted reports whether Accept was called and with which prompt text.
func (d *Dialog) Accepted() (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accepted, d.input
}

func (d *Dialog) Dismissed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dismissed
}

type Download struct {
	Filename string
}

func (d *Download) SuggestedFilename() string { return d.Filename }

type Request struct {
	RawURL string
	Verb   string
	From   *Request
}

func (r *Request) URL() string    { return r.RawURL }
func (r *Request) Method() string { return r.Verb }

func (r *Request) RedirectedFrom() driver.Request {
	if r.From == nil {
		return nil
	}
	return r.From
}

type Response struct {
	RawURL string
	Code   int
}

func (r *Response) URL() string { return r.RawURL }
func (r *Response) Status() int { return r.Code }
