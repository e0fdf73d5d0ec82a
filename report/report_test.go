package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/confsum/report"
)

var entry = report.Entry{
	Path:        "app.conf",
	Source:      "file",
	Fingerprint: "d41d8cd98f00b204e9800998ecf8427e",
	Kept:        0,
	Dropped:     3,
}

func TestRender_single_default_format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := report.Render(&buf, []report.Entry{entry}, report.Options{})

	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e\n", buf.String())
}

func TestRender_multi_default_format(t *testing.T) {
	t.Parallel()

	other := entry
	other.Path = "other.conf"

	var buf bytes.Buffer

	err := report.Render(
		&buf, []report.Entry{entry, other}, report.Options{},
	)

	require.NoError(t, err)
	assert.Equal(
		t,
		"d41d8cd98f00b204e9800998ecf8427e  app.conf\n"+
			"d41d8cd98f00b204e9800998ecf8427e  other.conf\n",
		buf.String(),
	)
}

func TestRender_custom_format(t *testing.T) {
	t.Parallel()

	en := entry
	en.Status = report.StatusChanged

	var buf bytes.Buffer

	err := report.Render(&buf, []report.Entry{en}, report.Options{
		Format: "{source}:{path} {kept}/{dropped} {status} {unknown}",
	})

	require.NoError(t, err)
	assert.Equal(t, "file:app.conf 0/3 changed {unknown}\n", buf.String())
}

func TestRender_json_lines(t *testing.T) {
	t.Parallel()

	en := entry
	en.Status = report.StatusSaved

	var buf bytes.Buffer

	err := report.Render(
		&buf, []report.Entry{en, entry}, report.Options{JSON: true},
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var got report.Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, en, got)

	assert.NotContains(t, lines[1], "status")
}

func TestRender_empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.Render(&buf, nil, report.Options{}))
	assert.Empty(t, buf.String())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRender_write_error(t *testing.T) {
	t.Parallel()

	err := report.Render(failWriter{}, []report.Entry{entry}, report.Options{})

	assert.ErrorContains(t, err, "rendering report")

	err = report.Render(
		failWriter{}, []report.Entry{entry}, report.Options{JSON: true},
	)

	assert.ErrorContains(t, err, "rendering report")
}
