// Command retrograde runs a libretro core with a piece of content, in a
// window or headless.
//
//	retrograde [flags] <core library> <content>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/config"
)

func main() {
	fs := flag.CommandLine
	flags := registerFlags(fs)
	cfg, args, err := config.ParseConfig(afero.NewOsFs(), fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse flags: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flags.get(), args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "usage: %s [flags] <core library> <content>\n", os.Args[0])
			fs.PrintDefaults()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "retrograde: %v\n", err)
		os.Exit(1)
	}
}
