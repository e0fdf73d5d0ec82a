package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	gh "github.com/google/go-github/v68/github"

	"github.com/byte4ever/confsum/source"
)

// Config holds the settings needed to read files from a
// GitHub repository.
type Config struct {
	// RepoOwner is the GitHub user or organisation
	// that owns the repository.
	RepoOwner string
	// Repo is the repository name (without owner).
	Repo string
	// Ref is the branch, tag or commit to read from.
	// Empty means the repository default branch.
	Ref string
	// AccessToken is an optional personal access token.
	// Public repositories can be read anonymously.
	AccessToken string
	// EnterpriseHost is an optional GitHub Enterprise
	// hostname (e.g. "git.corp.example.com"). Leave
	// empty for github.com.
	EnterpriseHost string
	// BaseURL overrides the API root entirely. It takes
	// precedence over EnterpriseHost.
	BaseURL string
}

// Provider reads configuration files through the GitHub
// contents API.
//
// Pattern: Strategy -- implements source.Source.
type Provider struct {
	client    *gh.Client
	repoOwner string
	repo      string
	ref       string
}

// NewProvider validates cfg and returns a Provider ready to
// fetch files.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating github source"

	if cfg.RepoOwner == "" {
		return nil, fmt.Errorf(
			"%s: repo owner must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	client := gh.NewClient(nil)
	if cfg.AccessToken != "" {
		client = client.WithAuthToken(cfg.AccessToken)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" && cfg.EnterpriseHost != "" {
		baseURL = "https://" + cfg.EnterpriseHost
	}

	if baseURL != "" {
		var err error

		client, err = client.WithEnterpriseURLs(
			baseURL, baseURL,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: enterprise urls: %w",
				errCtx, err,
			)
		}
	}

	return &Provider{
		client:    client,
		repoOwner: cfg.RepoOwner,
		repo:      cfg.Repo,
		ref:       cfg.Ref,
	}, nil
}

// Fetch returns the content of the file at path. A 404
// response or a path naming a directory wraps
// source.ErrNotFound.
func (p *Provider) Fetch(
	ctx context.Context,
	path string,
) ([]byte, error) {
	const errCtx = "fetching github file"

	opts := &gh.RepositoryContentGetOptions{Ref: p.ref}

	file, _, resp, err := p.client.Repositories.GetContents(
		ctx, p.repoOwner, p.repo, path, opts,
	)
	if err != nil {
		if resp != nil &&
			resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf(
				"%s %s: %w", errCtx, path, source.ErrNotFound,
			)
		}

		slog.Warn(
			"github contents request failed",
			"path", path,
			"error", err,
		)

		return nil, fmt.Errorf("%s %s: %w", errCtx, path, err)
	}

	if file == nil {
		return nil, fmt.Errorf(
			"%s %s: %w: is a directory",
			errCtx, path, source.ErrNotFound,
		)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf(
			"%s %s: decoding content: %w", errCtx, path, err,
		)
	}

	return []byte(content), nil
}
