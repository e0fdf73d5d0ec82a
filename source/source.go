package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Pattern: Strategy -- swap where configuration comes
// from without changing how it is fingerprinted.

var (
	// ErrNotFound reports a path that does not resolve to
	// a readable resource.
	ErrNotFound = errors.New("not found")
	// ErrDecode reports content that is not valid UTF-8.
	ErrDecode = errors.New("invalid utf-8 content")
)

// Source fetches the raw bytes stored at path.
type Source interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// SourceFunc adapts a plain function to the Source
// interface.
type SourceFunc func(
	ctx context.Context,
	path string,
) ([]byte, error)

// Fetch delegates to the wrapped function.
func (f SourceFunc) Fetch(
	ctx context.Context,
	path string,
) ([]byte, error) {
	return f(ctx, path)
}

// File reads configuration from the local file system.
// Missing paths, directories and unreadable files all wrap
// ErrNotFound.
var File Source = SourceFunc(readFile)

func readFile(_ context.Context, path string) ([]byte, error) {
	const errCtx = "reading file"

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf(
			"%s %s: %w: %w", errCtx, path, ErrNotFound, err,
		)
	}

	if fi.IsDir() {
		return nil, fmt.Errorf(
			"%s %s: %w: is a directory",
			errCtx, path, ErrNotFound,
		)
	}

	raw, err := os.ReadFile(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return nil, fmt.Errorf(
			"%s %s: %w: %w", errCtx, path, ErrNotFound, err,
		)
	}

	return raw, nil
}

// Decode interprets raw as UTF-8 text. Invalid byte
// sequences are rejected as a whole; no partial text is
// returned. A byte order mark is kept as content.
func Decode(raw []byte) (string, error) {
	const errCtx = "decoding content"

	rd := transform.NewReader(
		bytes.NewReader(raw), encoding.UTF8Validator,
	)

	text, err := io.ReadAll(rd)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", errCtx, ErrDecode, err)
	}

	return string(text), nil
}

// ReadText fetches path from src and decodes it.
func ReadText(
	ctx context.Context,
	src Source,
	path string,
) (string, error) {
	raw, err := src.Fetch(ctx, path)
	if err != nil {
		return "", err
	}

	return Decode(raw)
}
