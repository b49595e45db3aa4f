// Package snapshot manages screenshot baselines for pagexpect.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// BaselineDir is the directory, under the resource dir, holding baselines
	BaselineDir = "screenshots"
	// BaselineExt is appended to baseline names without an extension
	BaselineExt = ".png"
)

// ErrNoBaseline is returned when a baseline is missing outside update mode.
var ErrNoBaseline = errors.New("baseline does not exist")

// Manager resolves baseline images and creates or refreshes them in update mode.
type Manager struct {
	baseDir    string
	updateMode bool
}

// NewManager creates a new baseline manager rooted at baseDir.
func NewManager(baseDir string, updateMode bool) *Manager {
	return &Manager{
		baseDir:    baseDir,
		updateMode: updateMode,
	}
}

// UpdateMode reports whether missing or mismatched baselines are rewritten.
func (m *Manager) UpdateMode() bool {
	return m.updateMode
}

// Path resolves a baseline name. Absolute paths are kept; relative names
// live under the manager's directory.
func (m *Manager) Path(name string) string {
	if filepath.Ext(name) == "" {
		name += BaselineExt
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(m.baseDir, name)
}

// Prepare makes sure baseline exists before a comparison. In update mode a
// missing baseline is created from captured and created is true.
func (m *Manager) Prepare(baseline, captured string) (created bool, err error) {
	_, err = os.Stat(baseline)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, err
	}
	if !m.updateMode {
		return false, fmt.Errorf("%s: %w (run with UPDATE_BASELINES=true to create it)", baseline, ErrNoBaseline)
	}
	if err := copyFile(captured, baseline); err != nil {
		return false, fmt.Errorf("failed to create baseline: %w", err)
	}
	return true, nil
}

// Update overwrites baseline with captured after a mismatch. It does nothing
// outside update mode.
func (m *Manager) Update(baseline, captured string) (bool, error) {
	if !m.updateMode {
		return false, nil
	}
	if err := copyFile(captured, baseline); err != nil {
		return false, fmt.Errorf("failed to update baseline: %w", err)
	}
	return true, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
