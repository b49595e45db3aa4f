// Package output renders assertion failures and run summaries for the
// terminal.
//
// A failure message is a matcher hint line followed by either the negated
// expectation or an expected/received comparison. Multi-line strings are
// compared as a unified diff.
package output
