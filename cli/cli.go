package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/byte4ever/confsum/config"
	"github.com/byte4ever/confsum/digester"
	"github.com/byte4ever/confsum/fingerprint"
	"github.com/byte4ever/confsum/report"
	"github.com/byte4ever/confsum/source"
	"github.com/byte4ever/confsum/source/bitbucket"
	"github.com/byte4ever/confsum/source/configmap"
	"github.com/byte4ever/confsum/source/github"
	"github.com/byte4ever/confsum/source/gitlab"
)

// Version is printed by --version.
const Version = "1.0.0"

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitChanged = 3
)

// ErrUsage reports invalid command line arguments.
var ErrUsage = errors.New("usage")

type options struct {
	version    bool
	configPath string
	sourceName string
	ref        string
	save       bool
	check      bool
	digestFile string
	jsonOut    bool
	format     string
	verbose    bool
	paths      []string
}

// Run executes conf_checksum with args (without the program
// name) and returns the process exit code. Reports go to
// stdout, diagnostics to stderr.
func Run(
	ctx context.Context,
	args []string,
	stdout io.Writer,
	stderr io.Writer,
) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}

	if err != nil {
		return ExitUsage
	}

	if opts.version {
		if _, err := fmt.Fprintln(stdout, Version); err != nil {
			return ExitFailure
		}

		return ExitOK
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	)

	err = run(ctx, opts, stdout, logger)

	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, digester.ErrChanged):
		logger.Warn(err.Error())

		return ExitChanged
	case errors.Is(err, ErrUsage):
		logger.Error(err.Error())

		return ExitUsage
	default:
		logger.Error(err.Error())

		return ExitFailure
	}
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	var opts options

	fs := flag.NewFlagSet("conf_checksum", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.BoolVar(
		&opts.version, "version", false,
		"print the version and exit",
	)

	fs.StringVar(
		&opts.configPath, "config", "",
		"TOML configuration file",
	)

	fs.StringVar(
		&opts.sourceName, "source", "file",
		"where paths are read from: file, github, gitlab, "+
			"bitbucket or configmap",
	)

	fs.StringVar(
		&opts.ref, "ref", "",
		"git ref for remote sources (overrides the config)",
	)

	fs.BoolVar(
		&opts.save, "save", false,
		"store each fingerprint in its sidecar file",
	)

	fs.BoolVar(
		&opts.check, "check", false,
		"compare each fingerprint with its sidecar file",
	)

	fs.StringVar(
		&opts.digestFile, "digest-file", "",
		"sidecar file path (default: PATH plus the digest suffix)",
	)

	fs.BoolVar(
		&opts.jsonOut, "json", false,
		"write one JSON object per input",
	)

	fs.StringVar(
		&opts.format, "format", "",
		"output template with {fingerprint}, {path}, {source}, "+
			"{kept}, {dropped} and {status}",
	)

	fs.BoolVar(
		&opts.verbose, "verbose", false,
		"log every dropped line",
	)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.paths = fs.Args()

	return &opts, nil
}

func (o *options) validate() error {
	if len(o.paths) == 0 {
		return fmt.Errorf("%w: at least one path is required", ErrUsage)
	}

	if o.save && o.check {
		return fmt.Errorf(
			"%w: only one of --save or --check may be specified",
			ErrUsage,
		)
	}

	if o.digestFile != "" && len(o.paths) > 1 {
		return fmt.Errorf(
			"%w: --digest-file requires a single path", ErrUsage,
		)
	}

	if (o.save || o.check) &&
		o.sourceName != "file" && o.digestFile == "" {
		return fmt.Errorf(
			"%w: --digest-file is required with --source %s",
			ErrUsage, o.sourceName,
		)
	}

	return nil
}

func run(
	ctx context.Context,
	opts *options,
	stdout io.Writer,
	logger *slog.Logger,
) error {
	const errCtx = "conf_checksum"

	if err := opts.validate(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	src, err := newSource(opts.sourceName, opts.ref, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	entries := make([]report.Entry, 0, len(opts.paths))
	changed := 0

	for _, pa := range opts.paths {
		en, err := fingerprintPath(ctx, src, pa, opts, cfg, logger)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		if en.Status == report.StatusChanged {
			changed++
		}

		entries = append(entries, en)
	}

	ro := cfg.ReportOptions()
	if opts.format != "" {
		ro.Format = opts.format
	}

	ro.JSON = ro.JSON || opts.jsonOut

	if err := report.Render(stdout, entries, ro); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if changed > 0 {
		return fmt.Errorf(
			"%s: %d of %d inputs: %w",
			errCtx, changed, len(entries), digester.ErrChanged,
		)
	}

	return nil
}

// fingerprintPath reads one input, fingerprints it and
// applies the requested sidecar operation.
func fingerprintPath(
	ctx context.Context,
	src source.Source,
	path string,
	opts *options,
	cfg *config.Config,
	logger *slog.Logger,
) (report.Entry, error) {
	text, err := source.ReadText(ctx, src, path)
	if err != nil {
		return report.Entry{}, err
	}

	res := fingerprint.Analyze(text)

	for _, ln := range res.Lines {
		if ln.Reason == fingerprint.Kept {
			continue
		}

		// Line text is never logged: it may be a secret.
		logger.Debug(
			"dropped line",
			"path", path,
			"line", ln.Index+1,
			"reason", ln.Reason.String(),
		)
	}

	en := report.Entry{
		Path:        path,
		Source:      opts.sourceName,
		Fingerprint: res.Fingerprint,
		Kept:        res.Kept(),
		Dropped:     res.Dropped(),
	}

	sidecar := opts.digestFile
	if sidecar == "" {
		sidecar = digester.SidecarPath(path, cfg.Digest.Suffix)
	}

	switch {
	case opts.save:
		if err := digester.SaveDigest(sidecar, en.Fingerprint); err != nil {
			return report.Entry{}, err
		}

		en.Status = report.StatusSaved
	case opts.check:
		ok, err := digester.VerifyDigest(sidecar, en.Fingerprint)
		if err != nil {
			return report.Entry{}, err
		}

		en.Status = report.StatusUnchanged
		if !ok {
			en.Status = report.StatusChanged

			logger.Info(
				"fingerprint differs from sidecar",
				"path", path,
				"sidecar", sidecar,
			)
		}
	}

	return en, nil
}

// newSource builds the Source named by name.
func newSource(
	name string,
	ref string,
	cfg *config.Config,
) (source.Source, error) {
	switch name {
	case "file":
		return source.File, nil
	case "github":
		return github.NewProvider(cfg.GitHubConfig(ref))
	case "gitlab":
		return gitlab.NewProvider(cfg.GitLabConfig(ref))
	case "bitbucket":
		return bitbucket.NewProvider(cfg.BitbucketConfig(ref))
	case "configmap":
		return configmap.NewProvider(cfg.ConfigMapConfig())
	default:
		return nil, fmt.Errorf(
			"%w: unknown source %q", ErrUsage, name,
		)
	}
}
