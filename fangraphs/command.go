package fangraphs

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/dugout/errors"
)

// Placeholders substituted into each CommandTrigger argument.
const (
	PlaceholderURL     = "{url}"
	PlaceholderElement = "{element}"
	PlaceholderDir     = "{dir}"
)

// maxCommandOutput bounds how much of a failing command's output is kept in
// the error.
const maxCommandOutput = 2048

// CommandTrigger runs a user-configured automation command that opens the
// page, clicks the export element and saves the download. The command line is
// split the way a shell would, then {url}, {element} and {dir} are replaced in
// every argument. The same values are exported as DUGOUT_EXPORT_URL,
// DUGOUT_EXPORT_ELEMENT and DUGOUT_EXPORT_DIR.
type CommandTrigger struct {
	Command string
}

// ParseCommand splits a command line and rejects empty or unbalanced input.
func ParseCommand(command string) ([]string, error) {
	args, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parse command %q", command), errors.ErrInvalidArgument)
	}
	if len(args) == 0 {
		return nil, errors.NewInvalidArgumentError("command is empty")
	}
	return args, nil
}

func (c *CommandTrigger) Trigger(ctx context.Context, pageURL, elementID, downloadDir string) error {
	args, err := ParseCommand(c.Command)
	if err != nil {
		return err
	}
	replacer := strings.NewReplacer(
		PlaceholderURL, pageURL,
		PlaceholderElement, elementID,
		PlaceholderDir, downloadDir,
	)
	for i, arg := range args {
		args[i] = replacer.Replace(arg)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = append(os.Environ(),
		"DUGOUT_EXPORT_URL="+pageURL,
		"DUGOUT_EXPORT_ELEMENT="+elementID,
		"DUGOUT_EXPORT_DIR="+downloadDir,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return errors.Wrapf(ctx.Err(), "export command %s", args[0])
		}
		output := strings.TrimSpace(out.String())
		if len(output) > maxCommandOutput {
			output = output[len(output)-maxCommandOutput:]
		}
		if output != "" {
			err = errors.WithDetail(err, output)
		}
		return errors.Wrapf(err, "export command %s", args[0])
	}
	return nil
}
