package assertions

import (
	"context"
	"fmt"
	"regexp"

	"github.com/abdul-hamid-achik/pagexpect/packages/compare"
	"github.com/abdul-hamid-achik/pagexpect/packages/target"
)

// ValueScript reads a form control's value. A select yields the values of
// its selected options.
const ValueScript = `el => {
  if (el.tagName.toLowerCase() === 'select') {
    return Array.from(el.selectedOptions).map(o => o.value)
  }
  return el.value
}`

func Checked(ctx context.Context, mc *Context, req target.Request) Outcome {
	el, err := target.Resolve(ctx, req)
	if err != nil {
		return failure(err)
	}
	checked, err := el.IsChecked(ctx)
	if err != nil {
		return failure(err)
	}
	return NewOutcome(checked, mc.message(NameChecked, true, checked, ""))
}

// ContainsText checks that the element's rendered text contains the expected
// string, or matches the expected pattern.
func ContainsText(ctx context.Context, mc *Context, req target.Request) Outcome {
	el, values, err := target.ResolveValues(ctx, req, 1)
	if err != nil {
		return failure(err)
	}
	actual, err := el.InnerText(ctx)
	if err != nil {
		return failure(err)
	}
	pass := compare.TextEx(values[0], actual, compare.StringContain)
	return NewOutcome(pass, mc.message(NameContainsText, values[0], actual, ""))
}

// MatchText compares the element's text content with the expected string or
// pattern.
func MatchText(ctx context.Context, mc *Context, req target.Request) Outcome {
	el, values, err := target.ResolveValues(ctx, req, 1)
	if err != nil {
		return failure(err)
	}
	actual, err := el.TextContent(ctx)
	if err != nil {
		return failure(err)
	}
	pass := compare.Text(values[0], actual)
	return NewOutcome(pass, mc.message(NameMatchText, values[0], actual, ""))
}

// MatchValue compares a control's value. Against a select the expected
// value may be a list of option values; a single string or pattern must
// then match the one selected option.
func MatchValue(ctx context.Context, mc *Context, req target.Request) Outcome {
	el, values, err := target.ResolveValues(ctx, req, 1)
	if err != nil {
		return failure(err)
	}
	raw, err := el.Evaluate(ctx, ValueScript)
	if err != nil {
		return failure(err)
	}

	expected := values[0]
	var (
		pass     bool
		received any
	)
	if list, ok := asStrings(raw); ok {
		received = list
		pass = matchValues(expected, list)
	} else {
		actual := renderValue(raw)
		received = actual
		if want, ok := expected.([]string); ok {
			pass = len(want) == 1 && want[0] == actual
		} else {
			pass = compare.Text(expected, actual)
		}
	}
	return NewOutcome(pass, mc.message(NameMatchValue, expected, received, ""))
}

func matchValues(expected any, actual []string) bool {
	switch want := expected.(type) {
	case []string:
		return compare.Array(want, actual)
	case *regexp.Regexp:
		return len(actual) == 1 && compare.Text(want, actual[0])
	default:
		return compare.Array([]string{renderValue(expected)}, actual)
	}
}

// MatchURL compares the URL of the page or frame behind the target.
func MatchURL(ctx context.Context, mc *Context, req target.Request) Outcome {
	frame, err := target.Frame(ctx, req.Target)
	if err != nil {
		return failure(err)
	}
	mode, err := urlMode(req.Value(1))
	if err != nil {
		return failure(err)
	}
	expected := req.Value(0)
	actual := frame.URL()
	return NewOutcome(compare.URL(expected, actual, mode), mc.message(NameMatchURL, expected, actual, ""))
}

// asStrings converts a decoded JSON array into strings.
func asStrings(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return x, true
	case []any:
		out := make([]string, len(x))
		for i, item := range x {
			out[i] = renderValue(item)
		}
		return out, true
	}
	return nil, false
}

func renderValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
