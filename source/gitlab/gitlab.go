package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/byte4ever/confsum/source"
)

// Config holds the settings needed to read files from a
// GitLab project.
type Config struct {
	// Host is the base URL of the GitLab instance
	// (e.g. "https://gitlab.com").
	Host string
	// Repo is the full project path
	// (e.g. "org/project").
	Repo string
	// Ref is the branch, tag or commit to read from.
	// Empty means the project default branch.
	Ref string
	// AccessToken is a personal or project access
	// token used for authentication.
	AccessToken string
}

// Provider reads configuration files through the GitLab
// repository files API.
//
// Pattern: Strategy -- implements source.Source.
type Provider struct {
	client *gl.Client
	repo   string
	ref    string
}

// NewProvider validates cfg and returns a Provider ready to
// fetch files.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating gitlab source"

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	host := cfg.Host
	if host == "" {
		host = "https://gitlab.com"
	}

	client, err := gl.NewClient(
		cfg.AccessToken,
		gl.WithBaseURL(host),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	return &Provider{
		client: client,
		repo:   cfg.Repo,
		ref:    cfg.Ref,
	}, nil
}

// Fetch returns the raw content of the file at path. A 404
// response wraps source.ErrNotFound.
func (p *Provider) Fetch(
	ctx context.Context,
	path string,
) ([]byte, error) {
	const errCtx = "fetching gitlab file"

	opts := &gl.GetRawFileOptions{}
	if p.ref != "" {
		opts.Ref = gl.Ptr(p.ref)
	}

	raw, resp, err := p.client.RepositoryFiles.GetRawFile(
		p.repo, path, opts, gl.WithContext(ctx),
	)
	if err == nil {
		return raw, nil
	}

	if resp != nil &&
		resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf(
			"%s %s: %w", errCtx, path, source.ErrNotFound,
		)
	}

	slog.Warn(
		"gitlab raw file request failed",
		"path", path,
		"error", err,
	)

	return nil, fmt.Errorf("%s %s: %w", errCtx, path, err)
}
