package utils

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// RunCommand runs a shell command with a generous timeout. Encoding a long
// source video can take a while, so the ceiling is deliberately high.
func RunCommand(command string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()
	return RunCommandContext(ctx, command)
}

// RunCommandContext runs a shell command under the caller's context, so a
// cancelled job tears down its ffmpeg children with it.
func RunCommandContext(ctx context.Context, command string) (string, error) {
	Logf("run: %s", command)

	cmd := exec.CommandContext(ctx, "bash", "-lc", command)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if Verbose && output.Len() > 0 {
			out := output.String()
			Logf("output (error):\n%s", strings.TrimRight(out, "\n"))
		}
		return output.String(), fmt.Errorf("command failed: %w", err)
	}
	if Verbose && output.Len() > 0 {
		out := output.String()
		Logf("output:\n%s", strings.TrimRight(out, "\n"))
	}
	return output.String(), nil
}

// ShellEscape single-quotes a value for safe interpolation into the command
// strings above. Media titles routinely carry quotes and spaces.
func ShellEscape(value string) string {
	if value == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
