package assertions

import (
	"context"
	"errors"
	"time"

	"github.com/abdul-hamid-achik/pagexpect/packages/compare"
	"github.com/abdul-hamid-achik/pagexpect/packages/recorder"
	"github.com/abdul-hamid-achik/pagexpect/packages/target"
)

// notFound is reported as the received value when no event matched.
const notFound = "not found"

var errNotInstrumented = errors.New("page does not record events; wrap it with recorder.Extend")

// EventSource is a page that records its requests and downloads.
type EventSource interface {
	Requests() []recorder.RequestRecord
	Downloads() []recorder.DownloadRecord
}

func eventSource(ctx context.Context, req target.Request) (EventSource, error) {
	p, err := target.Page(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	src, ok := p.(EventSource)
	if !ok {
		return nil, errNotInstrumented
	}
	return src, nil
}

// recent reports whether an event at t lies within window of now. The
// window edge itself counts.
func recent(t, now time.Time, window time.Duration) bool {
	return !t.Add(window).Before(now)
}

// Downloaded looks for a recent download whose suggested file name matches.
func Downloaded(ctx context.Context, mc *Context, req target.Request) Outcome {
	src, err := eventSource(ctx, req)
	if err != nil {
		return failure(err)
	}
	mode, err := stringMode(req.Value(1))
	if err != nil {
		return failure(err)
	}
	expected := req.Value(0)
	now := mc.now()
	for _, d := range src.Downloads() {
		if recent(d.Time, now, mc.Window) && compare.TextEx(expected, d.SuggestedFilename, mode) {
			return NewOutcome(true, mc.message(NameDownloaded, expected, d.SuggestedFilename, ""))
		}
	}
	return NewOutcome(false, mc.message(NameDownloaded, expected, notFound, ""))
}

// RedirectedTo looks for a recent request that was the target of a redirect.
func RedirectedTo(ctx context.Context, mc *Context, req target.Request) Outcome {
	return matchRequest(ctx, mc, req, NameRedirectedTo, func(r recorder.RequestRecord) bool {
		return r.RedirectedFrom != ""
	})
}

// SubmittedFormTo looks for any recent request to the expected URL.
func SubmittedFormTo(ctx context.Context, mc *Context, req target.Request) Outcome {
	return matchRequest(ctx, mc, req, NameSubmittedFormTo, nil)
}

func matchRequest(ctx context.Context, mc *Context, req target.Request, name string, filter func(recorder.RequestRecord) bool) Outcome {
	src, err := eventSource(ctx, req)
	if err != nil {
		return failure(err)
	}
	mode, err := urlMode(req.Value(1))
	if err != nil {
		return failure(err)
	}
	expected := req.Value(0)
	now := mc.now()
	for _, r := range src.Requests() {
		if !recent(r.Time, now, mc.Window) {
			continue
		}
		if filter != nil && !filter(r) {
			continue
		}
		if compare.URL(expected, r.URL, mode) {
			return NewOutcome(true, mc.message(name, expected, r.URL, ""))
		}
	}
	return NewOutcome(false, mc.message(name, expected, notFound, ""))
}
