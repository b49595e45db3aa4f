package driver

import (
	"context"
	"errors"
	"fmt"
)

// Kind tags the variant held by a Handle.
type Kind int

const (
	KindInvalid Kind = iota
	KindPage
	KindFrame
	KindElement
	KindLocator
	KindPending
)

func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindFrame:
		return "frame"
	case KindElement:
		return "element"
	case KindLocator:
		return "locator"
	case KindPending:
		return "pending"
	default:
		return "invalid"
	}
}

// Handle is a tagged union over the things an assertion can target. The tag
// is fixed when the Handle is built.
type Handle struct {
	kind    Kind
	page    Page
	frame   Frame
	element ElementHandle
	locator Locator
	pending func(context.Context) (Handle, error)
}

func PageHandle(p Page) Handle { return Handle{kind: KindPage, page: p} }

func FrameHandle(f Frame) Handle { return Handle{kind: KindFrame, frame: f} }

func ElementHandleOf(e ElementHandle) Handle { return Handle{kind: KindElement, element: e} }

func LocatorHandle(l Locator) Handle { return Handle{kind: KindLocator, locator: l} }

// Pending wraps a computation that yields a Handle once awaited.
func Pending(fn func(context.Context) (Handle, error)) Handle {
	return Handle{kind: KindPending, pending: fn}
}

// HandleOf converts a driver value into a Handle. Variants are told apart by
// capabilities only one of them has: pages have Opener, locators have
// ElementHandle, elements have IsChecked, and any other container is a frame.
func HandleOf(v any) (Handle, error) {
	switch x := v.(type) {
	case Handle:
		return x, nil
	case *Handle:
		if x == nil {
			return Handle{}, errors.New("nil handle")
		}
		return *x, nil
	case Page:
		return PageHandle(x), nil
	case Locator:
		return LocatorHandle(x), nil
	case ElementHandle:
		return ElementHandleOf(x), nil
	case Container:
		return FrameHandle(x), nil
	case func(context.Context) (Handle, error):
		return Pending(x), nil
	case nil:
		return Handle{}, errors.New("nil target")
	default:
		return Handle{}, fmt.Errorf("unsupported target type %T", v)
	}
}

func (h Handle) Kind() Kind { return h.kind }

// IsValid reports whether the Handle was built by one of the constructors.
func (h Handle) IsValid() bool { return h.kind != KindInvalid }

func (h Handle) Page() (Page, bool)             { return h.page, h.kind == KindPage }
func (h Handle) Frame() (Frame, bool)           { return h.frame, h.kind == KindFrame }
func (h Handle) Element() (ElementHandle, bool) { return h.element, h.kind == KindElement }
func (h Handle) Locator() (Locator, bool)       { return h.locator, h.kind == KindLocator }

// Container returns the page or frame behind the Handle.
func (h Handle) Container() (Container, bool) {
	switch h.kind {
	case KindPage:
		return h.page, true
	case KindFrame:
		return h.frame, true
	default:
		return nil, false
	}
}

// Await resolves pending handles until a concrete variant is reached.
func (h Handle) Await(ctx context.Context) (Handle, error) {
	for h.kind == KindPending {
		if err := ctx.Err(); err != nil {
			return Handle{}, err
		}
		next, err := h.pending(ctx)
		if err != nil {
			return Handle{}, err
		}
		h = next
	}
	if h.kind == KindInvalid {
		return Handle{}, errors.New("invalid handle")
	}
	return h, nil
}
