package recorder

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/pagexpect/packages/driver"
)

// ActionAccept accepts a confirm, prompt or beforeunload dialog. Any other
// action dismisses it.
const ActionAccept = "accept"

var (
	ErrUnexpectedDialog = errors.New("unexpected dialog")
	ErrDialogMismatch   = errors.New("dialog does not match expectation")
)

//go:embed dialogs.schema.json
var dialogSchema []byte

// DialogExpectation describes how to answer the next dialog.
type DialogExpectation struct {
	Type              string `json:"type" yaml:"type"`
	Message           string `json:"message,omitempty" yaml:"message,omitempty"`
	Action            string `json:"action,omitempty" yaml:"action,omitempty"`
	Default           string `json:"default,omitempty" yaml:"default,omitempty"`
	Input             string `json:"input,omitempty" yaml:"input,omitempty"`
	MessageValidation bool   `json:"messageValidation,omitempty" yaml:"messageValidation,omitempty"`
	DefaultValidation bool   `json:"defaultValidation,omitempty" yaml:"defaultValidation,omitempty"`
}

// MakeDialogHandler replaces the queue of dialog expectations. Dialogs
// consume it in order, one entry each.
func (p *Page) MakeDialogHandler(expectations []DialogExpectation) {
	p.mu.Lock()
	p.dialogs = append([]DialogExpectation(nil), expectations...)
	p.mu.Unlock()
}

// DialogData returns the expectations not consumed yet, or nil.
func (p *Page) DialogData() []DialogExpectation {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.dialogs) == 0 {
		return nil
	}
	return append([]DialogExpectation(nil), p.dialogs...)
}

// Err joins every dialog error seen so far.
func (p *Page) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.errs...)
}

func (p *Page) nextDialog() (DialogExpectation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.dialogs) == 0 {
		return DialogExpectation{}, false
	}
	next := p.dialogs[0]
	p.dialogs = p.dialogs[1:]
	return next, true
}

func (p *Page) handleDialog(d driver.Dialog) {
	ctx := p.opts.ctx
	log := p.log.WithField("dialog", d.Type())

	exp, ok := p.nextDialog()
	if !ok {
		if err := d.Dismiss(ctx); err != nil {
			log.WithError(err).Warn("dismissing dialog")
		}
		p.fatal(fmt.Errorf("%w: %s dialog is shown", ErrUnexpectedDialog, d.Type()))
		return
	}

	if err := checkDialog(d, exp); err != nil {
		if derr := d.Dismiss(ctx); derr != nil {
			log.WithError(derr).Warn("dismissing dialog")
		}
		p.fatal(err)
		return
	}

	var err error
	switch {
	case d.Type() == driver.DialogAlert:
		err = d.Accept(ctx, "")
	case exp.Action == ActionAccept:
		input := ""
		if d.Type() == driver.DialogPrompt {
			input = exp.Input
		}
		err = d.Accept(ctx, input)
	default:
		err = d.Dismiss(ctx)
	}
	if err != nil {
		p.fatal(fmt.Errorf("answering %s dialog: %w", d.Type(), err))
		return
	}
	log.WithField("action", exp.Action).Debug("dialog answered")
}

func checkDialog(d driver.Dialog, exp DialogExpectation) error {
	if d.Type() != exp.Type {
		return fmt.Errorf("%w: expecting type %q but found %q", ErrDialogMismatch, exp.Type, d.Type())
	}
	switch d.Type() {
	case driver.DialogAlert, driver.DialogConfirm, driver.DialogPrompt:
		if exp.MessageValidation && d.Message() != exp.Message {
			return fmt.Errorf("%w: expecting message %q but found %q", ErrDialogMismatch, exp.Message, d.Message())
		}
	}
	if d.Type() == driver.DialogPrompt && exp.DefaultValidation && d.DefaultValue() != exp.Default {
		return fmt.Errorf("%w: expecting default value %q but found %q", ErrDialogMismatch, exp.Default, d.DefaultValue())
	}
	return nil
}

func (p *Page) fatal(err error) {
	p.mu.Lock()
	p.errs = append(p.errs, err)
	p.mu.Unlock()

	p.log.WithError(err).Error("dialog handling failed")
	p.opts.fatal.call(err)
}

// LoadDialogExpectations reads a list of expectations from a YAML or JSON
// file.
func LoadDialogExpectations(path string) ([]DialogExpectation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialog file: %w", err)
	}
	return ParseDialogExpectations(data, filepath.Ext(path))
}

// ParseDialogExpectations decodes and validates expectations. ext selects
// the format: ".json" is JSON, anything else YAML.
func ParseDialogExpectations(data []byte, ext string) ([]DialogExpectation, error) {
	var doc any
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse dialog file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse dialog file: %w", err)
		}
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize dialog file: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(dialogSchema),
		gojsonschema.NewBytesLoader(normalized),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return nil, fmt.Errorf("invalid dialog file: %s", strings.Join(errs, "; "))
	}

	var out []DialogExpectation
	if err := json.Unmarshal(normalized, &out); err != nil {
		return nil, fmt.Errorf("failed to decode dialog file: %w", err)
	}
	return out, nil
}
