package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
)

// wrapErr marks Playwright timeouts with driver.ErrTimeout.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", driver.ErrTimeout, err)
	}
	return err
}

// timeout returns the Playwright timeout in milliseconds for a call bounded
// by ctx and an explicit limit; the tighter one wins. nil keeps the
// Playwright default.
func timeout(ctx context.Context, limit time.Duration) *float64 {
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left < time.Millisecond {
			left = time.Millisecond
		}
		if limit <= 0 || left < limit {
			limit = left
		}
	}
	if limit <= 0 {
		return nil
	}
	return playwright.Float(float64(limit.Milliseconds()))
}

func waitState(s driver.WaitState) *playwright.WaitForSelectorState {
	switch s {
	case driver.StateAttached:
		return playwright.WaitForSelectorStateAttached
	case driver.StateDetached:
		return playwright.WaitForSelectorStateDetached
	case driver.StateVisible:
		return playwright.WaitForSelectorStateVisible
	case driver.StateHidden:
		return playwright.WaitForSelectorStateHidden
	}
	return nil
}
