// Package driver describes the browser-automation capabilities pagexpect
// consumes.
//
// Nothing in here talks to a browser. Adapters implement the interfaces:
//   - pwdriver: playwright-go
//   - drivertest: a scriptable in-memory fake for unit tests
//
// A Handle is the thing an assertion is made against: a page, a frame, an
// element, a locator, or a pending computation yielding one of those.
package driver
