package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimdesk/internal/upload"
)

func TestPrintViewError(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, printView(&sb, upload.View{Error: "HTTP error! status: 500"}))

	assert.Equal(t, "Error: HTTP error! status: 500\n", sb.String())
}

func TestPrintViewResult(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, printView(&sb, upload.View{Result: &upload.ResultView{
		Message:        "Processed",
		Classification: "auto",
		StoragePath:    "/s/claim.pdf",
		ExtractedText:  "Policy 123",
		Metrics:        "{\n  \"pages\": 3\n}",
	}}))

	want := `Processing Result:
Message: Processed
Classification: auto
Storage Path: /s/claim.pdf

Extracted Text:
Policy 123

Summary:

Metrics:
{
  "pages": 3
}
`
	assert.Equal(t, want, sb.String())
}

func TestPrintViewEmpty(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, printView(&sb, upload.View{}))
	assert.Empty(t, sb.String())
}

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "claim.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	doc, err := readDocument(path, "")
	require.NoError(t, err)
	assert.Equal(t, "claim.pdf", doc.Name)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, []byte("%PDF"), doc.Data)

	doc, err = readDocument(path, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", doc.ContentType)

	_, err = readDocument(filepath.Join(dir, "missing.pdf"), "")
	assert.Error(t, err)
}
