package compare

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// StringMode selects how TextEx compares strings.
type StringMode int

const (
	// StringUnset falls back to Text.
	StringUnset StringMode = iota
	StringEqual
	StringContain
	StringWildcard
)

func (m StringMode) String() string {
	switch m {
	case StringEqual:
		return "equal"
	case StringContain:
		return "contain"
	case StringWildcard:
		return "wildcard"
	default:
		return "unset"
	}
}

// ParseStringMode accepts "", "equal", "contain" and "wildcard", case-insensitively.
func ParseStringMode(s string) (StringMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unset":
		return StringUnset, nil
	case "equal":
		return StringEqual, nil
	case "contain", "contains":
		return StringContain, nil
	case "wildcard":
		return StringWildcard, nil
	}
	return StringUnset, fmt.Errorf("unknown string mode %q", s)
}

// URLMode selects how URL compares addresses.
type URLMode int

const (
	// URLDefault compares scheme, host, port and path only.
	URLDefault URLMode = iota
	URLIdentical
)

func (m URLMode) String() string {
	if m == URLIdentical {
		return "identical"
	}
	return "default"
}

// ParseURLMode accepts "", "default" and "identical", case-insensitively.
func ParseURLMode(s string) (URLMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return URLDefault, nil
	case "identical":
		return URLIdentical, nil
	}
	return URLDefault, fmt.Errorf("unknown url mode %q", s)
}

// Text reports whether actual matches expected: a pattern test for a
// *regexp.Regexp, exact equality of the rendered value otherwise.
func Text(expected any, actual string) bool {
	if re, ok := expected.(*regexp.Regexp); ok {
		return re != nil && re.MatchString(actual)
	}
	return render(expected) == actual
}

// Array reports element-wise equality.
func Array(expected, actual []string) bool {
	if len(expected) != len(actual) {
		return false
	}
	for i := range expected {
		if expected[i] != actual[i] {
			return false
		}
	}
	return true
}

// URL compares two addresses under mode. Unparsable input never matches in
// URLDefault mode.
func URL(expected any, actual string, mode URLMode) bool {
	if re, ok := expected.(*regexp.Regexp); ok {
		return re != nil && re.MatchString(actual)
	}
	want := render(expected)
	if mode == URLIdentical {
		return want == actual
	}

	a, err := parseURL(want)
	if err != nil {
		return false
	}
	b, err := parseURL(actual)
	if err != nil {
		return false
	}
	return a == b
}

// TextEx compares strings under mode.
func TextEx(expected any, actual string, mode StringMode) bool {
	if re, ok := expected.(*regexp.Regexp); ok {
		return re != nil && re.MatchString(actual)
	}
	want := render(expected)
	switch mode {
	case StringEqual:
		return want == actual
	case StringContain:
		return actual != "" && strings.Contains(actual, want)
	case StringWildcard:
		re, err := WildcardToRegexp(want)
		if err != nil {
			return false
		}
		return re.MatchString(actual)
	default:
		return Text(expected, actual)
	}
}

// WildcardToRegexp turns a wildcard pattern into an unanchored regexp:
// '*' matches any run, '?' at most one character, '.' is literal. Every other
// character is copied as is.
func WildcardToRegexp(s string) (*regexp.Regexp, error) {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".?")
		case '.':
			b.WriteString(`\.`)
		default:
			b.WriteRune(r)
		}
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("invalid wildcard %q: %w", s, err)
	}
	return re, nil
}

func render(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

type urlKey struct {
	scheme, host, port, path string
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

func parseURL(raw string) (urlKey, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return urlKey{}, err
	}
	if u.Scheme == "" {
		return urlKey{}, fmt.Errorf("url %q has no scheme", raw)
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == defaultPorts[scheme] {
		port = ""
	}
	p := cleanPath(u.EscapedPath())
	if p == "" && u.Host != "" {
		p = "/"
	}
	if u.Opaque != "" {
		p = u.Opaque
	}
	return urlKey{scheme: scheme, host: host, port: port, path: p}, nil
}

// cleanPath removes dot segments the way a browser does: a path that ends in
// a slash or a dot segment keeps its trailing slash.
func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	trailing := strings.HasSuffix(p, "/") || strings.HasSuffix(p, "/.") || strings.HasSuffix(p, "/..")
	p = path.Clean(p)
	if trailing && p != "/" {
		p += "/"
	}
	return p
}
