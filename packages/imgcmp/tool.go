package imgcmp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ToolName is the executable looked up on $PATH and in .bin directories.
const ToolName = "imgcmp"

var ErrToolNotFound = errors.New("image comparison tool not found")

// Locate finds the imgcmp executable. An explicit path wins, then $PATH, then
// the topmost node_modules/.bin or .bin directory above the working
// directory that contains it.
func Locate(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", ErrToolNotFound, explicit)
		}
		return explicit, nil
	}
	if p, err := exec.LookPath(ToolName); err == nil {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return locateFrom(wd)
}

func locateFrom(dir string) (string, error) {
	var found string
	for {
		for _, bin := range []string{filepath.Join("node_modules", ".bin"), ".bin"} {
			candidate := filepath.Join(dir, bin, ToolName)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				found = candidate
				break
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if found == "" {
		return "", ErrToolNotFound
	}
	return found, nil
}

// Tool runs an external image comparison executable.
type Tool struct {
	Path   string
	Logger logrus.FieldLogger
}

func NewTool(path string, logger logrus.FieldLogger) *Tool {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Tool{Path: path, Logger: logger}
}

// Compare runs `imgcmp --compare file1 file2 --<mode>` and returns the
// printed similarity. A non-zero exit is an error; a low score is not.
func (t *Tool) Compare(ctx context.Context, file1, file2 string, mode Mode) (float64, error) {
	if t.Path == "" {
		return 0, ErrToolNotFound
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Path, "--compare", file1, file2, "--"+string(mode))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t.Logger.WithFields(logrus.Fields{"tool": t.Path, "mode": mode}).Debug("comparing images")
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return 0, fmt.Errorf("imgcmp failed: %w", err)
		}
		return 0, fmt.Errorf("imgcmp failed: %w: %s", err, msg)
	}

	out := strings.TrimSpace(stdout.String())
	if fields := strings.Fields(out); len(fields) > 0 {
		out = fields[0]
	}
	score, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0, fmt.Errorf("imgcmp printed %q, not a similarity score", stdout.String())
	}
	return score, nil
}
