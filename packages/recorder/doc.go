// Package recorder instruments a page so assertions can look at events that
// already happened.
//
// Extend wraps a driver.Page and subscribes to its events. Requests,
// responses and downloads are appended to per-page logs with the time they
// were seen; dialogs are answered from a FIFO queue of expectations; popups
// are wrapped the same way as their opener.
//
// Driver callbacks arrive on the driver's goroutines, so all state is
// guarded by a mutex and log reads return copies.
package recorder
