package assertions

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/pagexpect/packages/imgcmp"
	"github.com/abdul-hamid-achik/pagexpect/packages/output"
	"github.com/abdul-hamid-achik/pagexpect/packages/snapshot"
	"github.com/abdul-hamid-achik/pagexpect/packages/target"
)

// Outcome is the verdict of one check. The message is built only when
// asked for.
type Outcome struct {
	pass    bool
	message func() string
}

func NewOutcome(pass bool, message func() string) Outcome {
	return Outcome{pass: pass, message: message}
}

func (o Outcome) Passed() bool {
	return o.pass
}

func (o Outcome) Message() string {
	if o.message == nil {
		return ""
	}
	return o.message()
}

func failure(err error) Outcome {
	return Outcome{message: err.Error}
}

// ImageComparer scores the similarity of two image files from 0 to 100.
type ImageComparer interface {
	Compare(ctx context.Context, file1, file2 string, mode imgcmp.Mode) (float64, error)
}

// Context carries what a matcher needs besides its arguments.
type Context struct {
	// Name is the registered matcher name used in messages.
	Name  string
	IsNot bool

	Now    func() time.Time
	Window time.Duration // recency window of event matchers

	Format     *output.Formatter
	Images     ImageComparer
	Baselines  *snapshot.Manager
	ScratchDir string
	Mode       imgcmp.Mode // default screenshot comparison mode
	Logger     logrus.FieldLogger
}

func (mc *Context) name(def string) string {
	if mc.Name != "" {
		return mc.Name
	}
	return def
}

func (mc *Context) now() time.Time {
	if mc.Now != nil {
		return mc.Now()
	}
	return time.Now()
}

func (mc *Context) format() *output.Formatter {
	if mc.Format != nil {
		return mc.Format
	}
	return output.NewFormatter()
}

func (mc *Context) log() logrus.FieldLogger {
	if mc.Logger != nil {
		return mc.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// message returns a lazy expected/received failure message.
func (mc *Context) message(def string, expected, received any, hint string) func() string {
	return func() string {
		return mc.format().Message(mc.name(def), mc.IsNot, expected, received, hint)
	}
}

// Matcher is a single, non-retrying check.
type Matcher func(ctx context.Context, mc *Context, req target.Request) Outcome

// Definition pairs a matcher with the number of expected values it takes
// from the end of its argument list.
type Definition struct {
	Check  Matcher
	Values int
}

const (
	NameChecked         = "toBeChecked"
	NameContainsText    = "toContainText"
	NameMatchText       = "toMatchText"
	NameMatchValue      = "toMatchValue"
	NameMatchURL        = "toMatchURL"
	NameMatchScreenshot = "toMatchScreenshot"
	NameDownloaded      = "toDownload"
	NameRedirectedTo    = "toBeRedirectedTo"
	NameSubmittedFormTo = "toSubmitFormTo"
)

// Builtin lists the matchers shipped with the package under their
// registration names.
var Builtin = map[string]Definition{
	NameChecked:         {Check: Checked, Values: 0},
	NameContainsText:    {Check: ContainsText, Values: 1},
	NameMatchText:       {Check: MatchText, Values: 1},
	NameMatchValue:      {Check: MatchValue, Values: 1},
	NameMatchURL:        {Check: MatchURL, Values: 2},
	NameMatchScreenshot: {Check: MatchScreenshot, Values: 3},
	NameDownloaded:      {Check: Downloaded, Values: 2},
	NameRedirectedTo:    {Check: RedirectedTo, Values: 2},
	NameSubmittedFormTo: {Check: SubmittedFormTo, Values: 2},
}
