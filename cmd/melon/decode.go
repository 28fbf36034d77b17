package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/melon/internal/logger"
	"github.com/samcharles93/melon/internal/viewer"
	"github.com/samcharles93/melon/pkg/melon"
)

func sourceArg(cmd *cli.Command) (string, error) {
	switch cmd.Args().Len() {
	case 0:
		return "", errors.New("missing <sourcefile>")
	case 1:
		return cmd.Args().First(), nil
	default:
		return "", fmt.Errorf("expected one <sourcefile>, got %d arguments", cmd.Args().Len())
	}
}

func decodeAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return cli.ShowAppHelp(cmd)
	}
	source, err := sourceArg(cmd)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)

	runner := viewer.New(viewerConfig(), log)
	if err := runner.Preflight(source); err != nil {
		if errors.Is(err, viewer.ErrMissingExecutable) {
			return fmt.Errorf("%w; install the Melonbooks viewer or pass its path with -m", err)
		}
		return err
	}

	c, res, err := loadAndPatch(log, source)
	if err != nil {
		return err
	}

	def, err := decodedOutputPath(source, c.FileType)
	if err != nil {
		return err
	}
	output, err := resolveOutput(outputPath, def)
	if err != nil {
		return err
	}

	log.Info("running viewer", "executable", runner.Config().Executable, "timeout", runner.Config().Timeout)
	if err := runner.Decode(ctx, res.Data, output); err != nil {
		return fmt.Errorf("decode %s: %w", source, err)
	}

	log.Info("decoded", "output", output)
	_, _ = fmt.Fprintln(os.Stderr, "Done! You can close the Melonbooks Viewer and/or PDF viewer now.")
	return nil
}

// loadAndPatch parses source, logs what it found and patches it in memory.
func loadAndPatch(log logger.Logger, source string) (*melon.Container, *melon.Result, error) {
	st, err := os.Stat(source)
	if err != nil {
		return nil, nil, err
	}
	log.Info("source file", "path", source, "size", st.Size())

	c, err := melon.ReadFile(source)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", source, err)
	}
	log.Info("container",
		"declared_size", c.Header.Size,
		"form_type", c.Header.FormTypeString(),
		"meta_size", c.Header.MetaSize,
	)
	log.Debug("raw metadata", "xml", string(c.Meta))
	log.Info("metadata", "title", c.Title, "file_type", c.FileType)

	res, err := c.Patch(melon.TargetFileType)
	if err != nil {
		return nil, nil, fmt.Errorf("patch %s: %w", source, err)
	}
	log.Debug("patched", "summary", res.String())
	return c, res, nil
}
