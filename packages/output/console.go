package output

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

const maxValueLen = 200

// formatValue formats a value for display, truncating long values
func formatValue(v any, maxLen int) string {
	var str string
	switch val := v.(type) {
	case nil:
		str = "null"
	case string:
		str = fmt.Sprintf("%q", val)
	case *regexp.Regexp:
		str = "/" + val.String() + "/"
	case []string:
		parts := make([]string, len(val))
		for i, s := range val {
			parts[i] = fmt.Sprintf("%q", s)
		}
		str = "[" + strings.Join(parts, ", ") + "]"
	case fmt.Stringer:
		str = val.String()
	default:
		str = fmt.Sprintf("%v", v)
	}
	if maxLen > 0 && len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type Formatter struct {
	noColor bool
	expand  bool
}

type Option func(*Formatter)

func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func WithNoColor(nc bool) Option {
	return func(f *Formatter) {
		f.noColor = nc
	}
}

// WithExpand disables truncation of long values.
func WithExpand(e bool) Option {
	return func(f *Formatter) {
		f.expand = e
	}
}

func (f *Formatter) paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if f.noColor {
		c.DisableColor()
	}
	return c.Sprint(s)
}

func (f *Formatter) format(v any) string {
	if f.expand {
		return formatValue(v, 0)
	}
	return formatValue(v, maxValueLen)
}

// MatcherHint renders the call being asserted, e.g.
// expect(received).not.toMatchText(expected).
func (f *Formatter) MatcherHint(name string, isNot bool, expectedHint string) string {
	if expectedHint == "" {
		expectedHint = "expected"
	}
	var b strings.Builder
	b.WriteString(f.paint("expect(", color.Faint))
	b.WriteString(f.paint("received", color.FgRed))
	b.WriteString(f.paint(")", color.Faint))
	if isNot {
		b.WriteString(".not")
	}
	b.WriteString("." + name)
	b.WriteString(f.paint("(", color.Faint))
	b.WriteString(f.paint(expectedHint, color.FgGreen))
	b.WriteString(f.paint(")", color.Faint))
	return b.String()
}

func (f *Formatter) PrintExpected(v any) string {
	return f.paint(f.format(v), color.FgGreen)
}

func (f *Formatter) PrintReceived(v any) string {
	return f.paint(f.format(v), color.FgRed)
}

// DiffOrStringify compares two values: multi-line strings as a unified
// diff, anything else as an Expected/Received pair.
func (f *Formatter) DiffOrStringify(expected, received any) string {
	es, eok := expected.(string)
	rs, rok := received.(string)
	if eok && rok && (strings.Contains(es, "\n") || strings.Contains(rs, "\n")) {
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(es),
			B:        difflib.SplitLines(rs),
			FromFile: "Expected",
			ToFile:   "Received",
			Context:  3,
		})
		if err == nil && diff != "" {
			return f.colorDiff(diff)
		}
	}
	return fmt.Sprintf("Expected: %s\nReceived: %s", f.PrintExpected(expected), f.PrintReceived(received))
}

func (f *Formatter) colorDiff(diff string) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		case strings.HasPrefix(line, "-"):
			lines[i] = f.paint(line, color.FgGreen)
		case strings.HasPrefix(line, "+"):
			lines[i] = f.paint(line, color.FgRed)
		case strings.HasPrefix(line, "@@"):
			lines[i] = f.paint(line, color.FgYellow)
		}
	}
	return strings.Join(lines, "\n")
}

// Message builds a complete failure message for matcher name.
func (f *Formatter) Message(name string, isNot bool, expected, received any, expectedHint string) string {
	var body string
	if isNot {
		body = "Expected: not " + f.PrintExpected(expected)
	} else {
		body = f.DiffOrStringify(expected, received)
	}
	return f.MatcherHint(name, isNot, expectedHint) + "\n\n" + body
}
