package tts

import (
	"context"
	"fmt"

	"clipforge/pipeline-go/internal/utils"
)

// Command pipes the text into a locally installed synthesizer, e.g.
// "piper --model /opt/voices/en.onnx -c /opt/voices/en.json".
// The output path is appended as the tool's --output_file argument.
type Command struct {
	Command string
}

func (c *Command) Name() string { return "command" }

func (c *Command) Synthesize(ctx context.Context, text, outputPath string) error {
	if c.Command == "" {
		return fmt.Errorf("no local synthesizer command configured")
	}
	cmd := fmt.Sprintf("echo %s | %s --output_file %s",
		utils.ShellEscape(text),
		c.Command,
		utils.ShellEscape(outputPath),
	)
	_, err := utils.RunCommandContext(ctx, cmd)
	return err
}
