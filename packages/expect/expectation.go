package expect

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/pagexpect/packages/assertions"
	"github.com/abdul-hamid-achik/pagexpect/packages/core/retry"
	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
	"github.com/abdul-hamid-achik/pagexpect/packages/target"
)

// Expectation is one pending assertion on a target: a page, frame, element
// handle, locator, driver.Handle or func(context.Context) (driver.Handle, error).
type Expectation struct {
	r       *Registry
	t       testing.TB
	target  any
	ctx     context.Context
	isNot   bool
	require bool
}

func (r *Registry) Expect(t testing.TB, target any) *Expectation {
	return &Expectation{r: r, t: t, target: target, ctx: context.Background()}
}

// Not negates the assertion.
func (e *Expectation) Not() *Expectation {
	c := *e
	c.isNot = !e.isNot
	return &c
}

// Context bounds the assertion by ctx.
func (e *Expectation) Context(ctx context.Context) *Expectation {
	c := *e
	c.ctx = ctx
	return &c
}

// Require stops the test on failure.
func (e *Expectation) Require() *Expectation {
	c := *e
	c.require = true
	return &c
}

// verdict applies negation to an outcome.
type verdict struct {
	assertions.Outcome
	isNot bool
}

func (v verdict) Passed() bool {
	return v.Outcome.Passed() != v.isNot
}

// To runs the matcher registered as name and reports whether it passed.
// args are the optional selector, the expected values and an optional
// driver.WaitOptions, in that order.
func (e *Expectation) To(name string, args ...any) bool {
	e.t.Helper()
	def, ok := e.r.lookup(name)
	if !ok {
		e.fail(fmt.Sprintf("unknown matcher %q", name))
		return false
	}
	h, err := driver.HandleOf(e.target)
	if err != nil {
		e.fail(fmt.Sprintf("%s: %v", name, err))
		return false
	}

	req := target.FromArgs(h, def.Values, args...)
	mc := e.r.matcherContext(name, e.isNot)
	attempts := 0
	start := time.Now()
	result := retry.Loop(e.ctx, e.r.policy, func(ctx context.Context) verdict {
		attempts++
		return verdict{Outcome: def.Check(ctx, mc, req), isNot: e.isNot}
	})
	e.r.metrics.Observe(name, attempts, time.Since(start), result.Passed())

	if !result.Passed() {
		e.fail(result.Message())
		return false
	}
	return true
}

func (e *Expectation) fail(msg string) {
	e.t.Helper()
	if e.require {
		e.t.Fatalf("%s", msg)
		return
	}
	e.t.Errorf("%s", msg)
}

func (e *Expectation) ToBeChecked(args ...any) bool {
	e.t.Helper()
	return e.To(assertions.NameChecked, args...)
}

func (e *Expectation) ToContainText(args ...any) bool {
	e.t.Helper()
	return e.To(assertions.NameContainsText, args...)
}

func (e *Expectation) ToMatchText(args ...any) bool {
	e.t.Helper()
	return e.To(assertions.NameMatchText, args...)
}

func (e *Expectation) ToMatchValue(args ...any) bool {
	e.t.Helper()
	return e.To(assertions.NameMatchValue, args...)
}

func (e *Expectation) ToMatchURL(args ...any) bool {
	e.t.Helper()
	return e.To(assertions.NameMatchURL, args...)
}

// ToMatchScreenshot takes the baseline name, the minimum similarity and
// the comparison mode. The mode may only be omitted when no selector is
// given.
func (e *Expectation) ToMatchScreenshot(args ...any) bool {
	e.t.Helper()
	return e.To(assertions.NameMatchScreenshot, args...)
}

func (e *Expectation) ToDownload(args ...any) bool {
	e.t.Helper()
	return e.To(assertions.NameDownloaded, args...)
}

func (e *Expectation) ToBeRedirectedTo(args ...any) bool {
	e.t.Helper()
	return e.To(assertions.NameRedirectedTo, args...)
}

func (e *Expectation) ToSubmitFormTo(args ...any) bool {
	e.t.Helper()
	return e.To(assertions.NameSubmittedFormTo, args...)
}
