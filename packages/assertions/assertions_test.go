package assertions

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/pagexpect/packages/compare"
	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
	"github.com/abdul-hamid-achik/pagexpect/packages/driver/drivertest"
	"github.com/abdul-hamid-achik/pagexpect/packages/output"
	"github.com/abdul-hamid-achik/pagexpect/packages/recorder"
	"github.com/abdul-hamid-achik/pagexpect/packages/target"
)

func newContext() *Context {
	return &Context{
		Format: output.NewFormatter(output.WithNoColor(true)),
		Window: time.Second,
	}
}

func run(m Matcher, mc *Context, h any, valueCount int, args ...any) Outcome {
	handle, err := driver.HandleOf(h)
	if err != nil {
		panic(err)
	}
	return m(context.Background(), mc, target.FromArgs(handle, valueCount, args...))
}

func TestOutcome(t *testing.T) {
	calls := 0
	o := NewOutcome(true, func() string {
		calls++
		return "msg"
	})
	assert.True(t, o.Passed())
	assert.Equal(t, 0, calls)
	assert.Equal(t, "msg", o.Message())
	assert.Equal(t, 1, calls)

	assert.Empty(t, Outcome{}.Message())
	assert.Equal(t, "boom", failure(errors.New("boom")).Message())
}

func TestChecked(t *testing.T) {
	page := drivertest.NewPage()
	page.Set("#on", drivertest.Checkbox(true))
	page.Set("#off", drivertest.Checkbox(false))
	mc := newContext()

	assert.True(t, run(Checked, mc, page, 0, "#on").Passed())

	o := run(Checked, mc, page, 0, "#off")
	assert.False(t, o.Passed())
	assert.Contains(t, o.Message(), "toBeChecked")
	assert.Contains(t, o.Message(), "Expected: true\nReceived: false")

	// an element handle is used directly
	assert.True(t, run(Checked, mc, page.Element("#on"), 0).Passed())
}

func TestChecked_MissingElement(t *testing.T) {
	o := run(Checked, newContext(), drivertest.NewPage(), 0, "#nope")
	assert.False(t, o.Passed())
	assert.Equal(t, "timeout exceeded for element '#nope'", o.Message())
}

func TestContainsText(t *testing.T) {
	page := drivertest.NewPage()
	page.Set("h1", drivertest.Text("Welcome back, Ada"))
	mc := newContext()

	assert.True(t, run(ContainsText, mc, page, 1, "h1", "back").Passed())
	assert.True(t, run(ContainsText, mc, page, 1, "h1", regexp.MustCompile(`Ada$`)).Passed())

	o := run(ContainsText, mc, page, 1, "h1", "Grace")
	assert.False(t, o.Passed())
	assert.Contains(t, o.Message(), `Received: "Welcome back, Ada"`)
}

func TestMatchText(t *testing.T) {
	page := drivertest.NewPage()
	page.Set("#msg", drivertest.Text("Saved").WithTextContent(" Saved "))
	mc := newContext()

	assert.True(t, run(MatchText, mc, page, 1, "#msg", " Saved ").Passed())
	assert.False(t, run(MatchText, mc, page, 1, "#msg", "Saved").Passed())
	assert.True(t, run(MatchText, mc, page, 1, "#msg", regexp.MustCompile(`^\s*Saved\s*$`)).Passed())
}

func TestMatchText_DefaultSelector(t *testing.T) {
	page := drivertest.NewPage()
	page.Set(target.DefaultSelector, drivertest.Text("whole page"))

	assert.True(t, run(MatchText, newContext(), page, 1, "whole page").Passed())
}

func TestMatchText_Locator(t *testing.T) {
	page := drivertest.NewPage()
	page.Set("p", drivertest.Text("hello"))

	assert.True(t, run(MatchText, newContext(), page.Locator("p"), 1, "hello").Passed())
}

func TestMatchValue(t *testing.T) {
	page := drivertest.NewPage()
	page.Set("#name", drivertest.Input("Ada"))
	page.Set("#one", drivertest.Select("red"))
	page.Set("#many", drivertest.Select("red", "blue"))
	page.Set("#none", drivertest.NewElement("div"))
	mc := newContext()

	tests := []struct {
		name     string
		selector string
		expected any
		want     bool
	}{
		{"input equal", "#name", "Ada", true},
		{"input differs", "#name", "Grace", false},
		{"input pattern", "#name", regexp.MustCompile(`^A`), true},
		{"input single list", "#name", []string{"Ada"}, true},
		{"input longer list", "#name", []string{"Ada", "x"}, false},
		{"select string", "#one", "red", true},
		{"select pattern", "#one", regexp.MustCompile(`re`), true},
		{"select list", "#many", []string{"red", "blue"}, true},
		{"select order matters", "#many", []string{"blue", "red"}, false},
		{"select string vs many", "#many", "red", false},
		{"select pattern vs many", "#many", regexp.MustCompile(`.`), false},
		{"missing value is empty", "#none", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(MatchValue, mc, page, 1, tt.selector, tt.expected).Passed())
		})
	}
}

func TestMatchValue_EvaluateError(t *testing.T) {
	page := drivertest.NewPage()
	page.Set("#x", drivertest.Input("v").WithError(errors.New("element detached")))

	o := run(MatchValue, newContext(), page, 1, "#x", "v")
	assert.False(t, o.Passed())
	assert.Equal(t, "element detached", o.Message())
}

func TestMatchURL(t *testing.T) {
	page := drivertest.NewPage()
	require.NoError(t, page.Goto(context.Background(), "https://example.com/account?tab=1"))
	mc := newContext()

	assert.True(t, run(MatchURL, mc, page, 2, "https://example.com/account?tab=2").Passed())
	assert.False(t, run(MatchURL, mc, page, 2, "https://example.com/account?tab=2", compare.URLIdentical).Passed())
	assert.True(t, run(MatchURL, mc, page, 2, "https://example.com/account?tab=1", "identical").Passed())
	assert.True(t, run(MatchURL, mc, page, 2, regexp.MustCompile(`/account`)).Passed())

	o := run(MatchURL, mc, page, 2, "https://example.com/", "sideways")
	assert.False(t, o.Passed())
	assert.Contains(t, o.Message(), "sideways")
}

func TestMatchURL_IFrame(t *testing.T) {
	page := drivertest.NewPage()
	inner := drivertest.NewFrame("https://widgets.example.com/embed")
	page.Set("iframe", drivertest.IFrame(inner))

	assert.True(t, run(MatchURL, newContext(), page.Element("iframe"), 2, "https://widgets.example.com/embed").Passed())
}

func TestEventMatchers_RequireRecorder(t *testing.T) {
	o := run(Downloaded, newContext(), drivertest.NewPage(), 2, "a.txt")
	assert.False(t, o.Passed())
	assert.Contains(t, o.Message(), "recorder.Extend")
}

func TestDownloaded(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := now.Add(-500 * time.Millisecond)
	fake := drivertest.NewPage()
	page := recorder.Extend(fake, recorder.WithClock(func() time.Time { return clock }))
	fake.EmitDownload(&drivertest.Download{Filename: "report-2024.csv"})

	mc := newContext()
	mc.Now = func() time.Time { return now }

	assert.True(t, run(Downloaded, mc, page, 2, "report-2024.csv").Passed())
	assert.True(t, run(Downloaded, mc, page, 2, "report", compare.StringContain).Passed())
	assert.True(t, run(Downloaded, mc, page, 2, "report-*.csv", "wildcard").Passed())
	assert.False(t, run(Downloaded, mc, page, 2, "report", compare.StringEqual).Passed())

	o := run(Downloaded, mc, page, 2, "other.csv")
	assert.False(t, o.Passed())
	assert.Contains(t, o.Message(), `Received: "not found"`)
}

func TestDownloaded_Window(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"inside", 500 * time.Millisecond, true},
		{"at the edge", time.Second, true},
		{"outside", 1500 * time.Millisecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := drivertest.NewPage()
			at := now.Add(-tt.age)
			page := recorder.Extend(fake, recorder.WithClock(func() time.Time { return at }))
			fake.EmitDownload(&drivertest.Download{Filename: "a.txt"})

			mc := newContext()
			mc.Now = func() time.Time { return now }
			assert.Equal(t, tt.want, run(Downloaded, mc, page, 2, "a.txt").Passed())
		})
	}
}

func TestRedirectedTo(t *testing.T) {
	fake := drivertest.NewPage()
	page := recorder.Extend(fake)
	login := &drivertest.Request{RawURL: "https://example.com/login", Verb: "POST"}
	fake.EmitRequest(login)
	fake.EmitRequest(&drivertest.Request{RawURL: "https://example.com/home", Verb: "GET", From: login})

	mc := newContext()
	assert.True(t, run(RedirectedTo, mc, page, 2, "https://example.com/home").Passed())
	// the login request itself was not a redirect
	assert.False(t, run(RedirectedTo, mc, page, 2, "https://example.com/login").Passed())
}

func TestSubmittedFormTo(t *testing.T) {
	fake := drivertest.NewPage()
	page := recorder.Extend(fake)
	fake.EmitRequest(&drivertest.Request{RawURL: "https://example.com/login?next=/", Verb: "POST"})

	mc := newContext()
	assert.True(t, run(SubmittedFormTo, mc, page, 2, "https://example.com/login").Passed())
	assert.False(t, run(SubmittedFormTo, mc, page, 2, "https://example.com/login?next=/x", compare.URLIdentical).Passed())
	assert.False(t, run(SubmittedFormTo, mc, page, 2, "https://example.com/signup").Passed())
}

func TestRecent(t *testing.T) {
	now := time.Now()
	assert.True(t, recent(now.Add(-time.Second), now, time.Second))
	assert.False(t, recent(now.Add(-time.Second-time.Nanosecond), now, time.Second))
	assert.True(t, recent(now, now, 0))
}

func TestBuiltinValueCounts(t *testing.T) {
	want := map[string]int{
		NameChecked:         0,
		NameContainsText:    1,
		NameMatchText:       1,
		NameMatchValue:      1,
		NameMatchURL:        2,
		NameMatchScreenshot: 3,
		NameDownloaded:      2,
		NameRedirectedTo:    2,
		NameSubmittedFormTo: 2,
	}
	require.Len(t, Builtin, len(want))
	for name, n := range want {
		def, ok := Builtin[name]
		require.True(t, ok, name)
		assert.Equal(t, n, def.Values, name)
		assert.NotNil(t, def.Check, name)
	}
}

func TestContextName(t *testing.T) {
	mc := newContext()
	assert.Equal(t, NameMatchText, mc.name(NameMatchText))
	mc.Name = "toShowText"
	assert.Equal(t, "toShowText", mc.name(NameMatchText))
}

func TestMessages_Negated(t *testing.T) {
	page := drivertest.NewPage()
	page.Set("#msg", drivertest.Text("Saved"))
	mc := newContext()
	mc.IsNot = true

	o := run(MatchText, mc, page, 1, "#msg", "Saved")
	assert.True(t, o.Passed())
	assert.Contains(t, o.Message(), ".not.toMatchText")
	assert.Contains(t, o.Message(), `Expected: not "Saved"`)
}
