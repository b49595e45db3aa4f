package capture

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

const (
	DataTypeText   = ""
	DataTypeRegExp = "regExp"
	DataTypeJSON   = "json"
)

// ErrNoMatch is returned when a pattern or path finds nothing.
var ErrNoMatch = errors.New("no match")

// Options select how a value is extracted.
type Options struct {
	DataType   string `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	RegExp     string `json:"regExp,omitempty" yaml:"regExp,omitempty"`
	IgnoreCase bool   `json:"ignoreCase,omitempty" yaml:"ignoreCase,omitempty"`
	MultiLine  bool   `json:"multiLine,omitempty" yaml:"multiLine,omitempty"`
	MatchIndex int    `json:"matchIndex,omitempty" yaml:"matchIndex,omitempty"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	TrimLeft   bool   `json:"trimLeft,omitempty" yaml:"trimLeft,omitempty"`
	TrimRight  bool   `json:"trimRight,omitempty" yaml:"trimRight,omitempty"`
}

// Extract applies opts to text.
func Extract(text string, opts Options) (string, error) {
	switch opts.DataType {
	case DataTypeRegExp:
		return extractRegExp(text, opts)
	case DataTypeJSON:
		return extractJSON(text, opts.Path)
	case DataTypeText:
		if opts.TrimLeft {
			text = strings.TrimLeftFunc(text, unicode.IsSpace)
		}
		if opts.TrimRight {
			text = strings.TrimRightFunc(text, unicode.IsSpace)
		}
		return text, nil
	default:
		return "", fmt.Errorf("unknown data type %q", opts.DataType)
	}
}

// compilePattern builds the pattern with its i and m flags set independently.
func compilePattern(opts Options) (*regexp.Regexp, error) {
	var flags string
	if opts.IgnoreCase {
		flags += "i"
	}
	if opts.MultiLine {
		flags += "m"
	}
	expr := opts.RegExp
	if flags != "" {
		expr = "(?" + flags + ")" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", opts.RegExp, err)
	}
	return re, nil
}

func extractRegExp(text string, opts Options) (string, error) {
	re, err := compilePattern(opts)
	if err != nil {
		return "", err
	}
	match := re.FindStringSubmatch(text)
	if match == nil {
		return "", fmt.Errorf("pattern %q: %w", opts.RegExp, ErrNoMatch)
	}
	if opts.MatchIndex < 0 || opts.MatchIndex >= len(match) {
		return "", fmt.Errorf("pattern %q has no group %d", opts.RegExp, opts.MatchIndex)
	}
	return match[opts.MatchIndex], nil
}

func extractJSON(text, path string) (string, error) {
	if !gjson.Valid(text) {
		return "", errors.New("text is not valid JSON")
	}
	if path == "" {
		return text, nil
	}
	result := gjson.Get(text, path)
	if !result.Exists() {
		return "", fmt.Errorf("path %q: %w", path, ErrNoMatch)
	}
	return result.String(), nil
}
