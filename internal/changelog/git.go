package changelog

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

var gitBinary = "git"

// FromTag returns the trimmed annotation of tag as stored in the git repository at dir.
// A failing git invocation is not fatal: whatever it printed is used, usually nothing.
func FromTag(ctx context.Context, log logrus.FieldLogger, dir, tag string) (string, error) {
	cmd := exec.CommandContext(ctx, gitBinary, "tag", "-l", "--format=%(contents)", tag, "-l")
	cmd.Dir = dir
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		log.WithField("tag", tag).Warnf("git exited with code %d, using captured output as changelog: %s",
			exitErr.ExitCode(), strings.TrimSpace(string(exitErr.Stderr)))
	case err != nil:
		return "", fmt.Errorf("failed to run git: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
