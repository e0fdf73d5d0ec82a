package digester_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/confsum/digester"
)

const fp = "0b2c6ed2b2a3e0b3c0a8fbd6dc0f3f7e"

func TestSidecarPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "app.conf.digest", digester.SidecarPath("app.conf", ""))
	assert.Equal(t, "app.conf.md5", digester.SidecarPath("app.conf", ".md5"))
}

func TestGetDigest_missing_sidecar(t *testing.T) {
	t.Parallel()

	got, err := digester.GetDigest(
		filepath.Join(t.TempDir(), "app.conf.digest"),
	)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveDigest_and_GetDigest_roundtrip(t *testing.T) {
	t.Parallel()

	sc := filepath.Join(t.TempDir(), "app.conf.digest")

	require.NoError(t, digester.SaveDigest(sc, fp))

	got, err := digester.GetDigest(sc)
	require.NoError(t, err)
	assert.Equal(t, fp, got)

	raw, err := os.ReadFile(sc) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, fp+"\n", string(raw))
}

func TestGetDigest_trims_whitespace(t *testing.T) {
	t.Parallel()

	sc := filepath.Join(t.TempDir(), "app.conf.digest")
	require.NoError(t, os.WriteFile(sc, []byte("  "+fp+"\r\n"), 0o600))

	got, err := digester.GetDigest(sc)

	require.NoError(t, err)
	assert.Equal(t, fp, got)
}

func TestGetDigest_unreadable(t *testing.T) {
	t.Parallel()

	// A directory cannot be read as a file.
	_, err := digester.GetDigest(t.TempDir())

	assert.ErrorContains(t, err, "getting stored digest")
}

func TestVerifyDigest_valid(t *testing.T) {
	t.Parallel()

	sc := filepath.Join(t.TempDir(), "app.conf.digest")
	require.NoError(t, digester.SaveDigest(sc, fp))

	ok, err := digester.VerifyDigest(sc, fp)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyDigest_changed(t *testing.T) {
	t.Parallel()

	sc := filepath.Join(t.TempDir(), "app.conf.digest")
	require.NoError(t, digester.SaveDigest(sc, fp))

	ok, err := digester.VerifyDigest(sc, "d41d8cd98f00b204e9800998ecf8427e")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyDigest_missing_sidecar(t *testing.T) {
	t.Parallel()

	ok, err := digester.VerifyDigest(
		filepath.Join(t.TempDir(), "none.digest"), fp,
	)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveDigest_concurrent_writers(t *testing.T) {
	t.Parallel()

	sc := filepath.Join(t.TempDir(), "app.conf.digest")

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			assert.NoError(t, digester.SaveDigest(sc, fp))
		}()
	}

	wg.Wait()

	got, err := digester.GetDigest(sc)
	require.NoError(t, err)
	assert.Equal(t, fp, got)
}

func TestSaveDigest_missing_directory(t *testing.T) {
	t.Parallel()

	err := digester.SaveDigest(
		filepath.Join(t.TempDir(), "nope", "app.conf.digest"), fp,
	)

	assert.ErrorContains(t, err, "saving digest")
}
