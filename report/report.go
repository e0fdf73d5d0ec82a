package report

import (
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasttemplate"
)

const (
	// SingleFormat is the default template for one input.
	SingleFormat = "{fingerprint}"
	// MultiFormat is the default template for several
	// inputs.
	MultiFormat = "{fingerprint}  {path}"
)

// Status values reported for sidecar operations.
const (
	StatusSaved     = "saved"
	StatusUnchanged = "unchanged"
	StatusChanged   = "changed"
)

// Entry is the result for one input.
type Entry struct {
	Path        string `json:"path"`
	Source      string `json:"source"`
	Fingerprint string `json:"fingerprint"`
	Kept        int    `json:"kept"`
	Dropped     int    `json:"dropped"`
	Status      string `json:"status,omitempty"`
}

// Options selects the output style.
type Options struct {
	// Format is a template with {fingerprint}, {path},
	// {source}, {kept}, {dropped} and {status}
	// placeholders. Empty picks SingleFormat or
	// MultiFormat from the number of entries.
	Format string
	// JSON writes one JSON object per entry instead.
	JSON bool
}

// Render writes entries to w.
func Render(w io.Writer, entries []Entry, opts Options) error {
	const errCtx = "rendering report"

	if opts.JSON {
		enc := json.NewEncoder(w)

		for _, en := range entries {
			if err := enc.Encode(en); err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}
		}

		return nil
	}

	format := opts.Format
	if format == "" {
		format = SingleFormat
		if len(entries) > 1 {
			format = MultiFormat
		}
	}

	for _, en := range entries {
		line := fasttemplate.ExecuteStringStd(
			format, "{", "}", en.vars(),
		)

		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	return nil
}

func (en Entry) vars() map[string]interface{} {
	return map[string]interface{}{
		"fingerprint": en.Fingerprint,
		"path":        en.Path,
		"source":      en.Source,
		"kept":        strconv.Itoa(en.Kept),
		"dropped":     strconv.Itoa(en.Dropped),
		"status":      en.Status,
	}
}
