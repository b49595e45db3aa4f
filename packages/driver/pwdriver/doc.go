// Package pwdriver implements package driver on top of playwright-go.
//
// Each playwright page has exactly one wrapper, so wrappers obtained from
// events, Opener and BrowserContext.Pages compare equal to the page they
// stand for. Playwright timeouts are reported as driver.ErrTimeout, and a
// context deadline becomes the Playwright timeout of the call it bounds.
package pwdriver
