package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/byte4ever/confsum/digester"
	"github.com/byte4ever/confsum/report"
	"github.com/byte4ever/confsum/source/bitbucket"
	"github.com/byte4ever/confsum/source/configmap"
	"github.com/byte4ever/confsum/source/github"
	"github.com/byte4ever/confsum/source/gitlab"
)

// Output holds report defaults.
type Output struct {
	Format string `toml:"format"`
	JSON   bool   `toml:"json"`
}

// Digest holds sidecar settings.
type Digest struct {
	Suffix string `toml:"suffix"`
}

// GitHub holds the GitHub source settings.
type GitHub struct {
	Owner          string `toml:"owner"`
	Repo           string `toml:"repo"`
	Ref            string `toml:"ref"`
	Token          string `toml:"token"`
	EnterpriseHost string `toml:"enterprise_host"`
}

// GitLab holds the GitLab source settings.
type GitLab struct {
	Host  string `toml:"host"`
	Repo  string `toml:"repo"`
	Ref   string `toml:"ref"`
	Token string `toml:"token"`
}

// Bitbucket holds the Bitbucket Server source settings.
type Bitbucket struct {
	Endpoint string `toml:"endpoint"`
	Ref      string `toml:"ref"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// Kubernetes holds the ConfigMap source settings.
type Kubernetes struct {
	Kubeconfig string `toml:"kubeconfig"`
	Namespace  string `toml:"namespace"`
}

// Config is the full CLI configuration.
type Config struct {
	Output     Output     `toml:"output"`
	Digest     Digest     `toml:"digest"`
	GitHub     GitHub     `toml:"github"`
	GitLab     GitLab     `toml:"gitlab"`
	Bitbucket  Bitbucket  `toml:"bitbucket"`
	Kubernetes Kubernetes `toml:"kubernetes"`
}

// Default returns the configuration used when no file is
// given.
func Default() Config {
	return Config{
		Digest: Digest{Suffix: digester.DefaultSuffix},
		Kubernetes: Kubernetes{
			Kubeconfig: os.Getenv("KUBECONFIG"),
			Namespace:  configmap.DefaultNamespace,
		},
	}
}

// Load parses the TOML file at path over the defaults. An
// empty path returns the defaults; a missing file is an
// error. Unknown keys are rejected and ${VAR} references in
// credentials are expanded from the environment.
func Load(path string) (*Config, error) {
	const errCtx = "loading config"

	cfg := Default()

	if path == "" {
		return &cfg, nil
	}

	file, err := os.Open(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	defer file.Close() //nolint:errcheck // read-only

	decoder := toml.NewDecoder(file).DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf(
				"%s: %s", errCtx, strings.TrimSpace(strict.String()),
			)
		}

		return nil, fmt.Errorf("%s: parse: %w", errCtx, err)
	}

	cfg.expandEnv()

	if cfg.Digest.Suffix == "" {
		cfg.Digest.Suffix = digester.DefaultSuffix
	}

	return &cfg, nil
}

func (c *Config) expandEnv() {
	c.GitHub.Token = os.ExpandEnv(c.GitHub.Token)
	c.GitLab.Token = os.ExpandEnv(c.GitLab.Token)
	c.Bitbucket.User = os.ExpandEnv(c.Bitbucket.User)
	c.Bitbucket.Password = os.ExpandEnv(c.Bitbucket.Password)
	c.Kubernetes.Kubeconfig = os.ExpandEnv(c.Kubernetes.Kubeconfig)
}

// ReportOptions returns the report defaults.
func (c *Config) ReportOptions() report.Options {
	return report.Options{
		Format: c.Output.Format,
		JSON:   c.Output.JSON,
	}
}

// GitHubConfig returns the GitHub source settings. A
// non-empty ref overrides the configured one.
func (c *Config) GitHubConfig(ref string) github.Config {
	return github.Config{
		RepoOwner:      c.GitHub.Owner,
		Repo:           c.GitHub.Repo,
		Ref:            firstNonEmpty(ref, c.GitHub.Ref),
		AccessToken:    c.GitHub.Token,
		EnterpriseHost: c.GitHub.EnterpriseHost,
	}
}

// GitLabConfig returns the GitLab source settings. A
// non-empty ref overrides the configured one.
func (c *Config) GitLabConfig(ref string) gitlab.Config {
	return gitlab.Config{
		Host:        c.GitLab.Host,
		Repo:        c.GitLab.Repo,
		Ref:         firstNonEmpty(ref, c.GitLab.Ref),
		AccessToken: c.GitLab.Token,
	}
}

// BitbucketConfig returns the Bitbucket source settings. A
// non-empty ref overrides the configured one.
func (c *Config) BitbucketConfig(ref string) bitbucket.Config {
	return bitbucket.Config{
		APIEndpoint: c.Bitbucket.Endpoint,
		Ref:         firstNonEmpty(ref, c.Bitbucket.Ref),
		User:        c.Bitbucket.User,
		Password:    c.Bitbucket.Password,
	}
}

// ConfigMapConfig returns the ConfigMap source settings.
func (c *Config) ConfigMapConfig() configmap.Config {
	return configmap.Config{
		Kubeconfig: c.Kubernetes.Kubeconfig,
		Namespace:  c.Kubernetes.Namespace,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}
