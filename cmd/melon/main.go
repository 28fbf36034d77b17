package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "melon",
		Usage:     "Decode melon containers through the vendor viewer",
		ArgsUsage: "<sourcefile>",
		Flags:     append(decodeFlags(), append(settingsFlags(), loggingFlags()...)...),
		Before:    setup,
		Action:    decodeAction,
		Commands: []*cli.Command{
			patchCmd(),
			inspectCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}
