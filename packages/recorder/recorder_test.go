package recorder_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abdul-hamid-achik/pagexpect/packages/capture"
	"github.com/abdul-hamid-achik/pagexpect/packages/core/retry"
	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
	"github.com/abdul-hamid-achik/pagexpect/packages/driver/drivertest"
	"github.com/abdul-hamid-achik/pagexpect/packages/recorder"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func quickPolicy() retry.Policy {
	return retry.Policy{Attempts: 3, Interval: time.Millisecond}
}

func TestExtend_RecordsEvents(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	fake := drivertest.NewPage()
	page := recorder.Extend(fake, recorder.WithClock(clock.Now))

	first := &drivertest.Request{RawURL: "https://example.com/old", Verb: "GET"}
	fake.EmitRequest(first)
	clock.now = clock.now.Add(time.Second)
	fake.EmitRequest(&drivertest.Request{RawURL: "https://example.com/new", Verb: "GET", From: first})
	fake.EmitResponse(&drivertest.Response{RawURL: "https://example.com/new", Code: 200})
	fake.EmitDownload(&drivertest.Download{Filename: "report.csv"})

	reqs := page.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "https://example.com/old", reqs[0].URL)
	assert.Empty(t, reqs[0].RedirectedFrom)
	assert.Equal(t, "https://example.com/old", reqs[1].RedirectedFrom)
	assert.True(t, reqs[1].Time.After(reqs[0].Time))

	resps := page.Responses()
	require.Len(t, resps, 1)
	assert.Equal(t, 200, resps[0].Status)

	downloads := page.Downloads()
	require.Len(t, downloads, 1)
	assert.Equal(t, "report.csv", downloads[0].SuggestedFilename)
	assert.Equal(t, clock.now, downloads[0].Time)
}

func TestExtend_ReadsAreCopies(t *testing.T) {
	fake := drivertest.NewPage()
	page := recorder.Extend(fake)
	fake.EmitDownload(&drivertest.Download{Filename: "a.txt"})

	got := page.Downloads()
	got[0].SuggestedFilename = "changed"
	assert.Equal(t, "a.txt", page.Downloads()[0].SuggestedFilename)
}

func TestExtend_MaxEvents(t *testing.T) {
	fake := drivertest.NewPage()
	page := recorder.Extend(fake, recorder.WithMaxEvents(2))

	for _, u := range []string{"/1", "/2", "/3"} {
		fake.EmitRequest(&drivertest.Request{RawURL: u, Verb: "GET"})
	}

	reqs := page.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/2", reqs[0].URL)
	assert.Equal(t, "/3", reqs[1].URL)
}

func TestExtend_Idempotent(t *testing.T) {
	page := recorder.Extend(drivertest.NewPage())
	assert.Same(t, page, recorder.Extend(page))
}

func TestExtend_AgainAddsFatalHandler(t *testing.T) {
	fake := drivertest.NewPage()
	var first, second []error
	page := recorder.Extend(fake, recorder.WithFatalHandler(func(err error) { first = append(first, err) }))
	again := recorder.Extend(page, recorder.WithFatalHandler(func(err error) { second = append(second, err) }))
	require.Same(t, page, again)

	fake.EmitDialog(drivertest.NewDialog("alert", "boom", ""))
	popupFake := fake.OpenPopup("https://example.com/popup")
	popupFake.EmitDialog(drivertest.NewDialog("confirm", "boom", ""))

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.ErrorIs(t, second[0], recorder.ErrUnexpectedDialog)
	assert.ErrorIs(t, second[1], recorder.ErrUnexpectedDialog)
}

func TestPopups(t *testing.T) {
	fake := drivertest.NewPage()
	page := recorder.Extend(fake, recorder.WithPolicy(quickPolicy()))

	popupFake := fake.OpenPopup("https://example.com/popup")
	require.Len(t, page.Popups(), 1)

	popup, err := page.GetPopup(context.Background())
	require.NoError(t, err)
	require.NotNil(t, popup)
	assert.Same(t, page.Popups()[0], popup)
	assert.Equal(t, "https://example.com/popup", popup.URL())

	// popups are instrumented too
	popupFake.EmitDownload(&drivertest.Download{Filename: "inner.pdf"})
	require.Len(t, popup.Downloads(), 1)
	assert.Empty(t, page.Downloads())
}

func TestGetPopup_BeforePopupListener(t *testing.T) {
	fake := drivertest.NewPage()
	var page, early *recorder.Page
	var fatals []error
	// registered first, so it runs before the recorder's own listener
	fake.OnPopup(func(driver.Page) {
		var err error
		early, err = page.GetPopup(context.Background())
		require.NoError(t, err)
	})
	page = recorder.Extend(fake,
		recorder.WithPolicy(quickPolicy()),
		recorder.WithFatalHandler(func(err error) { fatals = append(fatals, err) }),
	)

	popupFake := fake.OpenPopup("https://example.com/popup")

	require.NotNil(t, early)
	require.Len(t, page.Popups(), 1)
	assert.Same(t, early, page.Popups()[0])

	early.MakeDialogHandler([]recorder.DialogExpectation{{Type: "alert"}})
	d := drivertest.NewDialog("alert", "hello", "")
	popupFake.EmitDialog(d)

	accepted, _ := d.Accepted()
	assert.True(t, accepted)
	assert.Empty(t, fatals)
	assert.NoError(t, early.Err())
}

func TestGetPopup_NoneReturnsNil(t *testing.T) {
	page := recorder.Extend(drivertest.NewPage(), recorder.WithPolicy(quickPolicy()))

	popup, err := page.GetPopup(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, popup)
}

func TestGetPopup_IgnoresOtherOpeners(t *testing.T) {
	ctx := drivertest.NewContext()
	a := ctx.NewTestPage()
	b := ctx.NewTestPage()
	page := recorder.Extend(a, recorder.WithPolicy(quickPolicy()))
	b.OpenPopup("https://example.com/b")

	popup, err := page.GetPopup(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, popup)
}

func TestGetPopup_Cancelled(t *testing.T) {
	page := recorder.Extend(drivertest.NewPage(), recorder.WithPolicy(retry.Policy{Attempts: 100, Interval: time.Hour}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := page.GetPopup(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPickValue(t *testing.T) {
	fake := drivertest.NewPage()
	fake.Set("#token", drivertest.Input("  abc-123  "))
	fake.Set("#out", drivertest.Text(`{"user":{"id":42}}`))
	fake.Set("#msg", drivertest.Text("Order #9876 confirmed"))
	page := recorder.Extend(fake)
	ctx := context.Background()

	v, err := page.PickValue(ctx, "#token", capture.Options{TrimLeft: true, TrimRight: true})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", v)

	v, err = page.PickValue(ctx, "#out", capture.Options{DataType: capture.DataTypeJSON, Path: "user.id"})
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	v, err = page.PickValue(ctx, "#msg", capture.Options{DataType: capture.DataTypeRegExp, RegExp: `#(\d+)`, MatchIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, "9876", v)

	_, err = page.PickValue(ctx, "#missing", capture.Options{})
	assert.ErrorIs(t, err, driver.ErrTimeout)
}

func TestCreateIsolatedPage(t *testing.T) {
	browser := drivertest.NewBrowser()
	ctx := context.Background()

	page, err := recorder.CreateIsolatedPage(ctx, browser)
	require.NoError(t, err)
	require.Len(t, browser.Contexts(), 1)
	assert.Len(t, browser.Contexts()[0].Pages(), 1)

	require.NoError(t, page.Close(ctx))
	assert.True(t, browser.Contexts()[0].Closed())
}

func TestLoadDialogExpectations(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "dialogs.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
- type: confirm
  message: Delete?
  action: accept
  messageValidation: true
- type: prompt
  input: Bob
  action: accept
`), 0o644))

	got, err := recorder.LoadDialogExpectations(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, []recorder.DialogExpectation{
		{Type: "confirm", Message: "Delete?", Action: "accept", MessageValidation: true},
		{Type: "prompt", Input: "Bob", Action: "accept"},
	}, got)

	jsonPath := filepath.Join(dir, "dialogs.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"type":"alert"}]`), 0o644))
	got, err = recorder.LoadDialogExpectations(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, []recorder.DialogExpectation{{Type: "alert"}}, got)
}

func TestLoadDialogExpectations_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown type", "- type: toast\n"},
		{"missing type", "- message: hi\n"},
		{"unknown field", "- type: alert\n  color: red\n"},
		{"bad action", "- type: confirm\n  action: maybe\n"},
		{"not a list", "type: alert\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := recorder.ParseDialogExpectations([]byte(tt.body), ".yaml")
			assert.Error(t, err)
		})
	}

	_, err := recorder.LoadDialogExpectations(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestErr_JoinsFatalErrors(t *testing.T) {
	fake := drivertest.NewPage()
	page := recorder.Extend(fake)
	assert.NoError(t, page.Err())

	fake.EmitDialog(drivertest.NewDialog("alert", "one", ""))
	fake.EmitDialog(drivertest.NewDialog("confirm", "two", ""))

	err := page.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, recorder.ErrUnexpectedDialog))
	assert.Contains(t, err.Error(), "alert dialog is shown")
	assert.Contains(t, err.Error(), "confirm dialog is shown")
}
