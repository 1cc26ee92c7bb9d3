package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/poiesic/docvault/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range parts {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Value</w:t></w:r><w:r><w:br/><w:t>next line</w:t></w:r></w:p>
  </w:body>
</w:document>`

const docxCore = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title>Team Handbook</dc:title>
</cp:coreProperties>`

func TestDOCXExtractor(t *testing.T) {
	data := buildDocx(t, map[string]string{
		docxBodyPart: docxBody,
		docxCorePart: docxCore,
	})

	docs, err := DOCXExtractor{}.Extract(context.Background(), "handbook.docx", data)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "First paragraph.\nName\tValue\nnext line", docs[0].PageContent)
	assert.Equal(t, "Team Handbook", docs[0].Metadata[core.MetaTitle])
}

func TestDOCXExtractor_TitleOverridesRegistryDefault(t *testing.T) {
	data := buildDocx(t, map[string]string{
		docxBodyPart: docxBody,
		docxCorePart: docxCore,
	})

	docs, err := NewRegistry().Load(context.Background(), "/vault/unprocessed/handbook.docx", data)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Team Handbook", docs[0].Metadata[core.MetaTitle])
}

func TestDOCXExtractor_EmptyBody(t *testing.T) {
	data := buildDocx(t, map[string]string{
		docxBodyPart: `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p/></w:body></w:document>`,
	})

	docs, err := DOCXExtractor{}.Extract(context.Background(), "empty.docx", data)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDOCXExtractor_Malformed(t *testing.T) {
	_, err := DOCXExtractor{}.Extract(context.Background(), "x.docx", []byte("PK not really"))
	assert.ErrorIs(t, err, ErrExtraction)

	data := buildDocx(t, map[string]string{"other.xml": "<a/>"})
	_, err = DOCXExtractor{}.Extract(context.Background(), "x.docx", data)
	assert.ErrorIs(t, err, ErrExtraction)
}
