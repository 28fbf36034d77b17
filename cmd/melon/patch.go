package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/melon/internal/logger"
	"github.com/samcharles93/melon/internal/metadiff"
)

func patchCmd() *cli.Command {
	var (
		showDiff bool
		dryRun   bool
	)

	return &cli.Command{
		Name:      "patch",
		Usage:     "Write the patched container without running the viewer",
		ArgsUsage: "<sourcefile>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "diff", Usage: "print a diff of the metadata before and after", Destination: &showDiff},
			&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "do not write the patched container", Destination: &dryRun},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			source, err := sourceArg(cmd)
			if err != nil {
				return err
			}
			log := logger.FromContext(ctx)

			c, res, err := loadAndPatch(log, source)
			if err != nil {
				return err
			}

			if showDiff {
				before, after := string(c.Meta), string(res.Container.Meta)
				if before == after {
					log.Info("metadata already names the target file type")
				}
				fmt.Print(metadiff.Lines(before, after))
			}
			if dryRun {
				return nil
			}

			output, err := resolveOutput(outputPath, patchedOutputPath(source))
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, res.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			log.Info("wrote patched container", "path", output, "bytes", len(res.Data))
			return nil
		},
	}
}
