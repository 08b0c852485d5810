package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph split across runs.</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`

func TestParseDocumentXML(t *testing.T) {
	text, err := parseDocumentXML([]byte(sampleDocumentXML))
	require.NoError(t, err)

	assert.Equal(t, "First paragraph.\nSecond paragraph split across runs.\n", text)
}

func TestParseDocumentXMLMalformed(t *testing.T) {
	_, err := parseDocumentXML([]byte("<w:document><unclosed"))
	assert.Error(t, err)
}

func TestExtractDOCX(t *testing.T) {
	path := writeDOCX(t, sampleDocumentXML)

	text, err := extractDOCX(path)
	require.NoError(t, err)
	assert.Contains(t, text, "First paragraph.")
	assert.Contains(t, text, "Second paragraph split across runs.")
}

func TestExtractDOCXWithoutDocumentXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	text, err := extractDOCX(path)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func writeDOCX(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}
