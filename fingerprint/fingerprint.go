package fingerprint

import (
	"crypto/md5" //nolint:gosec // md5 is the fingerprint format, not a security boundary
	"encoding/hex"
	"strings"
	"unicode"
)

// RedactionMarker drops any line containing it, wherever it
// appears in the line.
const RedactionMarker = "api-key ENC"

// Reason records why a line was kept or dropped.
type Reason int

const (
	// Kept lines take part in the fingerprint.
	Kept Reason = iota
	// Blank lines are empty after trimming.
	Blank
	// Comment lines start with '#'.
	Comment
	// AltComment lines start with ';'.
	AltComment
	// Disabled lines start with '!'.
	Disabled
	// Redacted lines contain RedactionMarker.
	Redacted
)

// String returns the lowercase name of the reason.
func (r Reason) String() string {
	switch r {
	case Kept:
		return "kept"
	case Blank:
		return "blank"
	case Comment:
		return "comment"
	case AltComment:
		return "alt-comment"
	case Disabled:
		return "disabled"
	case Redacted:
		return "redacted"
	default:
		return "unknown"
	}
}

// Line is one candidate line of raw content. Index is
// zero-based and only used for diagnostics.
type Line struct {
	Index  int
	Text   string
	Reason Reason
}

// Result is the full breakdown of one content analysis.
type Result struct {
	Lines       []Line
	Significant string
	Fingerprint string
}

// Kept returns the number of lines that survived filtering.
func (r Result) Kept() int {
	var n int

	for _, ln := range r.Lines {
		if ln.Reason == Kept {
			n++
		}
	}

	return n
}

// Dropped returns the number of filtered out lines.
func (r Result) Dropped() int {
	return len(r.Lines) - r.Kept()
}

// Fingerprint returns the hex MD5 digest of the significant
// content of content.
func Fingerprint(content string) string {
	return Digest(Significant(content))
}

// Significant returns the trimmed surviving lines of content
// joined with '\n', without a trailing separator.
func Significant(content string) string {
	var kept []string

	for _, line := range splitLines(content) {
		if trimmed, reason := Classify(line); reason == Kept {
			kept = append(kept, trimmed)
		}
	}

	return strings.Join(kept, "\n")
}

// Analyze classifies every line of content and computes the
// fingerprint in the same pass.
func Analyze(content string) Result {
	var (
		lines []Line
		kept  []string
	)

	for idx, line := range splitLines(content) {
		trimmed, reason := Classify(line)
		lines = append(lines, Line{
			Index:  idx,
			Text:   trimmed,
			Reason: reason,
		})

		if reason == Kept {
			kept = append(kept, trimmed)
		}
	}

	sig := strings.Join(kept, "\n")

	return Result{
		Lines:       lines,
		Significant: sig,
		Fingerprint: Digest(sig),
	}
}

// Classify trims line and decides whether it is kept. The
// checks run in a fixed order and the first match wins.
func Classify(line string) (string, Reason) {
	trimmed := strings.TrimFunc(line, isBlank)

	switch {
	case trimmed == "":
		return trimmed, Blank
	case strings.HasPrefix(trimmed, "#"):
		return trimmed, Comment
	case strings.HasPrefix(trimmed, ";"):
		return trimmed, AltComment
	case strings.HasPrefix(trimmed, "!"):
		return trimmed, Disabled
	case strings.Contains(trimmed, RedactionMarker):
		return trimmed, Redacted
	default:
		return trimmed, Kept
	}
}

// Digest returns the lowercase hex MD5 of s.
func Digest(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec // see import

	return hex.EncodeToString(sum[:])
}

// isBlank matches unicode white space and the ASCII file,
// group, record and unit separators.
func isBlank(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// splitLines breaks content on "\r\n", "\r" and "\n". A
// trailing separator does not produce an extra line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.TrimSuffix(content, "\n")

	return strings.Split(content, "\n")
}
