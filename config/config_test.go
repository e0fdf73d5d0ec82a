package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/confsum/config"
	"github.com/byte4ever/confsum/report"
)

func writeTemp(
	tb testing.TB,
	content string,
) string {
	tb.Helper()

	pa := filepath.Join(tb.TempDir(), "confsum.toml")
	require.NoError(tb, os.WriteFile(pa, []byte(content), 0o600))

	return pa
}

func TestLoad_empty_path_returns_defaults(t *testing.T) {
	t.Setenv("KUBECONFIG", "/tmp/kube")

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, ".digest", cfg.Digest.Suffix)
	assert.Equal(t, "default", cfg.Kubernetes.Namespace)
	assert.Equal(t, "/tmp/kube", cfg.Kubernetes.Kubeconfig)
	assert.Equal(t, report.Options{}, cfg.ReportOptions())
}

func TestLoad_full_file(t *testing.T) {
	t.Setenv("CONFSUM_TEST_TOKEN", "s3cret")

	pa := writeTemp(t, `
[output]
format = "{path} {fingerprint}"
json = true

[digest]
suffix = ".md5"

[github]
owner = "org"
repo = "repo"
ref = "main"
token = "${CONFSUM_TEST_TOKEN}"
enterprise_host = "git.example.com"

[gitlab]
host = "https://gitlab.example.com"
repo = "org/project"
ref = "develop"
token = "plain"

[bitbucket]
endpoint = "https://bb.example.com/rest/api/1.0/projects/P/repos/r"
ref = "refs/heads/main"
user = "admin"
password = "$CONFSUM_TEST_TOKEN"

[kubernetes]
kubeconfig = "/etc/kube/config"
namespace = "prod"
`)

	cfg, err := config.Load(pa)
	require.NoError(t, err)

	assert.Equal(t, report.Options{
		Format: "{path} {fingerprint}",
		JSON:   true,
	}, cfg.ReportOptions())
	assert.Equal(t, ".md5", cfg.Digest.Suffix)

	gh := cfg.GitHubConfig("")
	assert.Equal(t, "org", gh.RepoOwner)
	assert.Equal(t, "repo", gh.Repo)
	assert.Equal(t, "main", gh.Ref)
	assert.Equal(t, "s3cret", gh.AccessToken)
	assert.Equal(t, "git.example.com", gh.EnterpriseHost)

	gl := cfg.GitLabConfig("")
	assert.Equal(t, "https://gitlab.example.com", gl.Host)
	assert.Equal(t, "develop", gl.Ref)
	assert.Equal(t, "plain", gl.AccessToken)

	bb := cfg.BitbucketConfig("")
	assert.Equal(t, "s3cret", bb.Password)
	assert.Equal(t, "refs/heads/main", bb.Ref)

	cm := cfg.ConfigMapConfig()
	assert.Equal(t, "/etc/kube/config", cm.Kubeconfig)
	assert.Equal(t, "prod", cm.Namespace)
}

func TestLoad_ref_override(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, "[github]\nref = \"main\"\n[gitlab]\nref = \"main\"\n")

	cfg, err := config.Load(pa)
	require.NoError(t, err)

	assert.Equal(t, "v1.2.0", cfg.GitHubConfig("v1.2.0").Ref)
	assert.Equal(t, "v1.2.0", cfg.GitLabConfig("v1.2.0").Ref)
	assert.Equal(t, "v1.2.0", cfg.BitbucketConfig("v1.2.0").Ref)
	assert.Equal(t, "main", cfg.GitHubConfig("").Ref)
}

func TestLoad_partial_file_keeps_defaults(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, "[output]\njson = true\n")

	cfg, err := config.Load(pa)

	require.NoError(t, err)
	assert.True(t, cfg.Output.JSON)
	assert.Equal(t, ".digest", cfg.Digest.Suffix)
	assert.Equal(t, "default", cfg.Kubernetes.Namespace)
}

func TestLoad_empty_suffix_falls_back(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, "[digest]\nsuffix = \"\"\n")

	cfg, err := config.Load(pa)

	require.NoError(t, err)
	assert.Equal(t, ".digest", cfg.Digest.Suffix)
}

func TestLoad_unknown_key(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, "[output]\ncolour = \"red\"\n")

	cfg, err := config.Load(pa)

	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "loading config")
	assert.ErrorContains(t, err, "colour")
}

func TestLoad_malformed(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, "[output\n")

	cfg, err := config.Load(pa)

	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "parse")
}

func TestLoad_missing_file(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.toml"))

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
