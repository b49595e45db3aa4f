// Package assertions implements one-shot page matchers.
//
// A Matcher inspects the page once and returns an Outcome; retrying is left
// to the caller. Supported checks:
//   - Checked: checkbox or radio state
//   - ContainsText / MatchText: rendered text and text content
//   - MatchValue: form control value, or the selected options of a select
//   - MatchURL: the address of a page or frame
//   - MatchScreenshot: visual similarity against a baseline image
//   - Downloaded / RedirectedTo / SubmittedFormTo: recently recorded events
//
// Matchers never return errors. Anything that goes wrong while resolving
// or reading the target becomes a failing Outcome carrying the error text,
// so a retry loop can keep polling a page that is still settling.
package assertions
