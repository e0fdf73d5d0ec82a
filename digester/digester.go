package digester

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gofrs/flock"
)

// DefaultSuffix is appended to a configuration path to name
// its sidecar file.
const DefaultSuffix = ".digest"

// ErrChanged reports a fingerprint that differs from the
// stored one.
var ErrChanged = errors.New("fingerprint changed")

// SidecarPath returns the sidecar file name for path. An
// empty suffix means DefaultSuffix.
func SidecarPath(path string, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}

	return path + suffix
}

// GetDigest reads a stored fingerprint from a sidecar
// file. Returns empty string with no error if the sidecar
// file does not exist.
func GetDigest(sidecar string) (string, error) {
	const errCtx = "getting stored digest"

	digest, err := os.ReadFile(sidecar) //nolint:gosec // path is caller-provided by design
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return strings.TrimSpace(string(digest)), nil
}

// VerifyDigest compares fingerprint against the one stored
// in sidecar. A missing sidecar never verifies.
func VerifyDigest(sidecar string, fingerprint string) (bool, error) {
	const errCtx = "verifying digest"

	stored, err := GetDigest(sidecar)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return stored != "" && stored == fingerprint, nil
}

// SaveDigest writes fingerprint to sidecar followed by a
// newline. Concurrent writers are serialised through a
// lock file next to the sidecar.
func SaveDigest(sidecar string, fingerprint string) (retErr error) {
	const errCtx = "saving digest"

	lk := flock.New(sidecar + ".lock")
	if err := lk.Lock(); err != nil {
		return fmt.Errorf("%s: locking: %w", errCtx, err)
	}

	defer func() {
		if err := lk.Unlock(); err != nil && retErr == nil {
			retErr = fmt.Errorf("%s: unlocking: %w", errCtx, err)
		}
	}()

	if err := os.WriteFile(
		sidecar, []byte(fingerprint+"\n"), 0o600,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
