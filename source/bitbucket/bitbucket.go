package bitbucket

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/confsum/source"
)

// Config holds the settings needed to read files from a
// Bitbucket Server repository.
type Config struct {
	// APIEndpoint is the Bitbucket Server REST API URL
	// of the repository (e.g.
	// "https://bb.example.com/rest/api/1.0/
	// projects/PROJ/repos/repo").
	APIEndpoint string
	// Ref is the branch, tag or commit to read from.
	// Empty means the repository default branch.
	Ref string
	// User is the Bitbucket API username.
	User string
	// Password is the Bitbucket API password (or
	// personal access token).
	Password string
}

// Provider reads configuration files through the
// Bitbucket Server browse API.
//
// Pattern: Strategy -- implements source.Source.
type Provider struct {
	endpoint string
	ref      string
	user     string
	password string
	client   *http.Client
}

type line struct {
	Text string `json:"text"`
}

type browsePage struct {
	Lines         []line `json:"lines"`
	Start         int    `json:"start"`
	Size          int    `json:"size"`
	IsLastPage    bool   `json:"isLastPage"`
	NextPageStart int    `json:"nextPageStart"`

	// Children is only present when path is a directory.
	Children json.RawMessage `json:"children"`
}

// NewProvider validates cfg and returns a Provider ready to
// fetch files.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating bitbucket source"

	if cfg.APIEndpoint == "" {
		return nil, fmt.Errorf(
			"%s: api endpoint must be set",
			errCtx,
		)
	}

	if cfg.User == "" {
		return nil, fmt.Errorf(
			"%s: user must be set", errCtx,
		)
	}

	if cfg.Password == "" {
		return nil, fmt.Errorf(
			"%s: password must be set", errCtx,
		)
	}

	return &Provider{
		endpoint: strings.TrimSuffix(cfg.APIEndpoint, "/"),
		ref:      cfg.Ref,
		user:     cfg.User,
		password: cfg.Password,
		client:   http.DefaultClient,
	}, nil
}

// Fetch pages through the browse API for path and rejoins
// the returned lines with '\n'. A 404 response wraps
// source.ErrNotFound.
func (p *Provider) Fetch(
	ctx context.Context,
	path string,
) ([]byte, error) {
	const errCtx = "fetching bitbucket file"

	var (
		lines []string
		start int
	)

	for {
		page, err := p.browse(ctx, path, start)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", errCtx, path, err)
		}

		if page.Children != nil {
			return nil, fmt.Errorf(
				"%s %s: %w: is a directory",
				errCtx, path, source.ErrNotFound,
			)
		}

		for _, ln := range page.Lines {
			lines = append(lines, ln.Text)
		}

		if page.IsLastPage || page.NextPageStart <= start {
			break
		}

		start = page.NextPageStart
	}

	return []byte(strings.Join(lines, "\n")), nil
}

// browse requests one page of file lines starting at start.
func (p *Provider) browse(
	ctx context.Context,
	path string,
	start int,
) (*browsePage, error) {
	q := url.Values{}
	q.Set("start", strconv.Itoa(start))

	if p.ref != "" {
		q.Set("at", p.ref)
	}

	endpoint := p.endpoint + "/browse/" +
		strings.TrimPrefix(path, "/") + "?" + q.Encode()

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, endpoint, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(p.user, p.password)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, source.ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn(
			"bitbucket response",
			"status", resp.Status,
			"body", string(rb),
		)

		return nil, fmt.Errorf(
			"unexpected status %d", resp.StatusCode,
		)
	}

	var page browsePage
	if err := json.Unmarshal(rb, &page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &page, nil
}
