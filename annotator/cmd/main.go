// Package main provides the configmap annotator CLI that
// reads multi-document YAML, stamps a fingerprint
// annotation on every ConfigMap data key and writes the
// result.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/byte4ever/confsum/annotator"
)

func run() error {
	const errCtx = "configmap_annotator"

	var (
		inFile  string
		outFile string
		prefix  string
	)

	flag.StringVar(
		&inFile, "infile", "",
		"input YAML file path (default: stdin)",
	)

	flag.StringVar(
		&outFile, "outfile", "",
		"output YAML file path (default: stdout)",
	)

	flag.StringVar(
		&prefix, "prefix", annotator.DefaultPrefix,
		"annotation prefix",
	)

	flag.Parse()

	inReader := os.Stdin

	if inFile != "" {
		fi, err := os.Open(inFile) //nolint:gosec // path from CLI flag
		if err != nil {
			return fmt.Errorf(
				"%s: opening input: %w",
				errCtx, err,
			)
		}

		defer fi.Close() //nolint:errcheck // best-effort close

		inReader = fi
	}

	outWriter := os.Stdout

	if outFile != "" {
		fo, err := os.Create(outFile) //nolint:gosec // path from CLI flag
		if err != nil {
			return fmt.Errorf(
				"%s: creating output: %w",
				errCtx, err,
			)
		}

		defer fo.Close() //nolint:errcheck // best-effort close

		outWriter = fo
	}

	if err := annotator.Annotate(
		inReader, outWriter, prefix,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
