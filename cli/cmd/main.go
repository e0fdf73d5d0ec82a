// Package main provides the conf_checksum CLI that prints
// the semantic fingerprint of configuration files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/byte4ever/confsum/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)

	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
