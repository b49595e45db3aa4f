package assertions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/pagexpect/packages/builtin"
	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
	"github.com/abdul-hamid-achik/pagexpect/packages/imgcmp"
	"github.com/abdul-hamid-achik/pagexpect/packages/target"
)

// MatchScreenshot takes a fresh screenshot and scores it against a
// baseline. Expected values are the baseline name, the minimum similarity
// (0-100) and an optional comparison mode.
//
// The outcome passes when the images are similar enough, negated or not;
// only the message changes with polarity.
func MatchScreenshot(ctx context.Context, mc *Context, req target.Request) Outcome {
	name := mc.name(NameMatchScreenshot)

	baselineName := renderValue(req.Value(0))
	if baselineName == "" {
		return failure(errors.New("baseline name is required"))
	}
	threshold, ok := toFloat64(req.Value(1))
	if !ok {
		return failure(fmt.Errorf("similarity threshold must be a number, got %v", req.Value(1)))
	}
	mode, err := imageMode(req.Value(2), mc.Mode)
	if err != nil {
		return failure(err)
	}
	if mc.Images == nil {
		return failure(imgcmp.ErrToolNotFound)
	}

	dir := mc.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failure(fmt.Errorf("failed to create scratch directory: %w", err))
	}
	scratch := filepath.Join(dir, builtin.RandomID()+".png")
	defer os.Remove(scratch)

	if err := screenshot(ctx, req, scratch); err != nil {
		return failure(err)
	}

	baseline := baselineName
	if mc.Baselines != nil {
		baseline = mc.Baselines.Path(baselineName)
		created, err := mc.Baselines.Prepare(baseline, scratch)
		if err != nil {
			return failure(err)
		}
		if created {
			mc.log().WithField("baseline", baseline).Info("baseline created")
		}
	}

	log := mc.log().WithFields(logrus.Fields{"baseline": baseline, "mode": mode})
	score, err := mc.Images.Compare(ctx, scratch, baseline, mode)
	if err != nil {
		return failure(err)
	}
	similar := score >= threshold
	log.WithFields(logrus.Fields{"score": score, "threshold": threshold}).Debug("screenshot compared")

	if !similar && !mc.IsNot && mc.Baselines != nil {
		updated, err := mc.Baselines.Update(baseline, scratch)
		if err != nil {
			return failure(err)
		}
		if updated {
			log.Info("baseline updated")
			similar = true
		}
	}

	isNot := mc.IsNot
	return NewOutcome(similar, func() string {
		var detail string
		if isNot {
			detail = fmt.Sprintf("similarity ratio %.2f greater than or equal to threshold %.2f", score, threshold)
		} else {
			detail = fmt.Sprintf("similarity ratio %.2f less than threshold %.2f", score, threshold)
		}
		return mc.format().MatcherHint(name, isNot, "baseline") + "\n\n" + detail
	})
}

// screenshot writes the target to path: the whole page for a page without
// a selector, the resolved element otherwise.
func screenshot(ctx context.Context, req target.Request, path string) error {
	opts := driver.ScreenshotOptions{Path: path}

	h, err := req.Target.Await(ctx)
	if err != nil {
		return err
	}
	if p, ok := h.Page(); ok && req.Selector == "" {
		opts.FullPage = true
		_, err := p.Screenshot(ctx, opts)
		return err
	}

	req.Target = h
	el, err := target.Resolve(ctx, req)
	if err != nil {
		return err
	}
	_, err = el.Screenshot(ctx, opts)
	return err
}
