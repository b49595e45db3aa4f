// Package capture extracts a value from text read off a page element.
//
// Three extraction modes are supported:
//   - regExp: first match of a pattern, returning one capture group
//   - json: a gjson path applied to the text
//   - plain: the text itself, optionally trimmed on either side
package capture
