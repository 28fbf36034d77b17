package main

import (
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/melon/pkg/melon"
)

func inspectCmd() *cli.Command {
	var (
		asJSON   bool
		withMeta bool
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the container header and metadata",
		ArgsUsage: "<sourcefile>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print as JSON", Destination: &asJSON},
			&cli.BoolFlag{Name: "metadata", Usage: "include the raw metadata XML", Destination: &withMeta},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			source, err := sourceArg(cmd)
			if err != nil {
				return err
			}
			c, err := melon.ReadFile(source)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", source, err)
			}
			info := c.Info(withMeta)
			if asJSON {
				return printInfoJSON(os.Stdout, info)
			}
			printInfo(os.Stdout, source, info)
			return nil
		},
	}
}

func printInfoJSON(w io.Writer, info melon.Info) error {
	b, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

func printInfo(w io.Writer, source string, info melon.Info) {
	_, _ = fmt.Fprintf(w, "source:        %s\n", source)
	_, _ = fmt.Fprintf(w, "file size:     %d\n", info.FileSize)
	_, _ = fmt.Fprintf(w, "declared size: %d\n", info.DeclaredSize)
	_, _ = fmt.Fprintf(w, "form type:     %s\n", info.FormType)
	_, _ = fmt.Fprintf(w, "meta size:     %d (padded: %v)\n", info.MetaSize, info.Padded)
	_, _ = fmt.Fprintf(w, "payload size:  %d\n", info.PayloadSize)
	_, _ = fmt.Fprintf(w, "title:         %s\n", info.Title)
	_, _ = fmt.Fprintf(w, "file type:     %s\n", info.FileType)
	if info.Metadata != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", info.Metadata)
	}
}
