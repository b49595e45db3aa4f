// Package compare holds the pure comparison functions behind the matchers.
//
// Expected values are either literal (compared after fmt.Sprint) or a
// *regexp.Regexp, which always means "pattern test" whatever the mode.
package compare
