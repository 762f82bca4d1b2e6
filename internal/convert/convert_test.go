// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf2bib/pkg/types"
)

// fakeExecutor implements command.Executor for testing. It resolves the
// binaries listed in bins and answers Run with canned output.
type fakeExecutor struct {
	bins    map[string]bool
	runs    map[string]bool // "bin args..." for non-piped checks (container runtime)
	output  string
	err     error
	gotName string
	gotArgs []string
	gotIn   string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.bins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (f *fakeExecutor) Run(_ context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	if stdout == nil {
		if f.runs[name+" "+strings.Join(args, " ")] {
			return nil
		}
		return errors.New("command failed")
	}
	f.gotName, f.gotArgs = name, args
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		f.gotIn = string(data)
	}
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4 fake"), 0o644))
	return p
}

func extractionConfig(backend types.ExtractionBackend, pages int) types.ExtractionConfig {
	return types.ExtractionConfig{Backend: backend, Pages: pages, Timeout: time.Minute}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		backend  types.ExtractionBackend
		bins     map[string]bool
		wantName string
		wantErr  error
	}{
		{"auto prefers pdftotext", types.BackendAuto, map[string]bool{"pdftotext": true, "pdftohtml": true}, "pdftotext", nil},
		{"auto falls back to pdftohtml", types.BackendAuto, map[string]bool{"pdftohtml": true}, "pdftohtml", nil},
		{"auto with nothing installed", types.BackendAuto, nil, "", ErrToolMissing},
		{"explicit pdftohtml", types.BackendPdftohtml, map[string]bool{"pdftotext": true, "pdftohtml": true}, "pdftohtml", nil},
		{"explicit tool missing", types.BackendPdftotext, map[string]bool{"pdftohtml": true}, "", ErrToolMissing},
		{"markitdown without runtime", types.BackendMarkitdown, nil, "", ErrToolMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Detect(context.Background(), extractionConfig(tt.backend, 1), &fakeExecutor{bins: tt.bins})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, c.Name())
		})
	}
}

func TestDetect_UnknownBackend(t *testing.T) {
	_, err := Detect(context.Background(), extractionConfig("ocr", 1), &fakeExecutor{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extraction backend")
}

func TestToolConverter_Pdftotext(t *testing.T) {
	pdf := writePDF(t, "paper.pdf")
	exec := &fakeExecutor{bins: map[string]bool{"pdftotext": true}, output: "Title\ndoi:10.1000/xyz123\n"}

	c, err := Detect(context.Background(), extractionConfig(types.BackendPdftotext, 1), exec)
	require.NoError(t, err)

	text, err := c.Convert(context.Background(), pdf)
	require.NoError(t, err)
	assert.Equal(t, "Title\ndoi:10.1000/xyz123\n", text)
	assert.Equal(t, "/usr/bin/pdftotext", exec.gotName)
	assert.Equal(t, []string{"-q", "-enc", "UTF-8", "-f", "1", "-l", "1", pdf, "-"}, exec.gotArgs)
}

func TestToolConverter_AllPages(t *testing.T) {
	pdf := writePDF(t, "paper.pdf")
	exec := &fakeExecutor{bins: map[string]bool{"pdftotext": true}}

	c, err := Detect(context.Background(), extractionConfig(types.BackendPdftotext, 0), exec)
	require.NoError(t, err)
	_, err = c.Convert(context.Background(), pdf)
	require.NoError(t, err)
	assert.NotContains(t, exec.gotArgs, "-l")
}

func TestToolConverter_PdftohtmlStripsMarkup(t *testing.T) {
	pdf := writePDF(t, "paper.pdf")
	exec := &fakeExecutor{
		bins:   map[string]bool{"pdftohtml": true},
		output: "<html><body><b>Smith &amp; Doe</b><br/>doi:10.1000/abc</body></html>",
	}

	c, err := Detect(context.Background(), extractionConfig(types.BackendPdftohtml, 2), exec)
	require.NoError(t, err)

	text, err := c.Convert(context.Background(), pdf)
	require.NoError(t, err)
	assert.Contains(t, text, "Smith & Doe")
	assert.Contains(t, text, "doi:10.1000/abc ")
	assert.NotContains(t, text, "<")
	assert.Equal(t, []string{"-stdout", "-i", "-q", "-noframes", "-f", "1", "-l", "2", pdf}, exec.gotArgs)
}

func TestToolConverter_Failures(t *testing.T) {
	exec := &fakeExecutor{bins: map[string]bool{"pdftotext": true}, err: errors.New("exit status 1: Syntax Error")}
	c, err := Detect(context.Background(), extractionConfig(types.BackendPdftotext, 1), exec)
	require.NoError(t, err)

	t.Run("tool exits non-zero", func(t *testing.T) {
		_, err := c.Convert(context.Background(), writePDF(t, "broken.pdf"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Syntax Error")
	})

	t.Run("missing input file", func(t *testing.T) {
		_, err := c.Convert(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestToolConverter_DashPrefixedPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.WriteFile("-odd.pdf", []byte("%PDF"), 0o644))

	exec := &fakeExecutor{bins: map[string]bool{"pdftotext": true}}
	c, err := Detect(context.Background(), extractionConfig(types.BackendPdftotext, 1), exec)
	require.NoError(t, err)
	_, err = c.Convert(context.Background(), "-odd.pdf")
	require.NoError(t, err)
	assert.Contains(t, exec.gotArgs, "./-odd.pdf")
}

func TestMarkitdownConverter(t *testing.T) {
	pdf := writePDF(t, "paper.pdf")
	exec := &fakeExecutor{
		bins: map[string]bool{"docker": true},
		runs: map[string]bool{
			"docker info":                            true,
			"docker image inspect markitdown:latest": true,
		},
		output: "# Title\n\nhttps://doi.org/10.1000/md",
	}

	c, err := Detect(context.Background(), extractionConfig(types.BackendMarkitdown, 1), exec)
	require.NoError(t, err)
	assert.Equal(t, "markitdown", c.Name())

	text, err := c.Convert(context.Background(), pdf)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nhttps://doi.org/10.1000/md", text)
	assert.Equal(t, "docker", exec.gotName)
	assert.Equal(t, "%PDF-1.4 fake", exec.gotIn)
}

func TestMarkitdownConverter_ImageMissing(t *testing.T) {
	exec := &fakeExecutor{
		bins: map[string]bool{"podman": true},
		runs: map[string]bool{"podman info": true},
	}
	_, err := Detect(context.Background(), extractionConfig(types.BackendMarkitdown, 1), exec)
	assert.ErrorIs(t, err, ErrToolMissing)
}
