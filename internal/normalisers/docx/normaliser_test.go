package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// createTestDOCX creates a minimal DOCX file in memory.
func createTestDOCX(t *testing.T, documentXML, coreXML string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	write := func(name, body string) {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	write("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`)
	if documentXML != "" {
		write("word/document.xml", documentXML)
	}
	if coreXML != "" {
		write("docProps/core.xml", coreXML)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func wrapBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>` + body + `</w:body>
</w:document>`
}

const coreWithTitle = `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title> Org Profile </dc:title>
</cp:coreProperties>`

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, []string{docxMIME}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
	var _ driven.Normaliser = n
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		FileName: "org-profile.docx",
		MIMEType: docxMIME,
		Content:  createTestDOCX(t, wrapBody(`<w:p><w:r><w:t>Hello World</w:t></w:r></w:p>`), coreWithTitle),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Org Profile", result.Title)
	assert.Equal(t, "Hello World", result.Content)
}

func TestNormalise_ParagraphsRunsAndTables(t *testing.T) {
	body := wrapBody(`
<w:p><w:r><w:t>First</w:t></w:r><w:r><w:t xml:space="preserve"> paragraph</w:t></w:r></w:p>
<w:p><w:r><w:t>Line</w:t><w:br/><w:t>break</w:t></w:r></w:p>
<w:p></w:p>
<w:tbl><w:tr>
  <w:tc><w:p><w:r><w:t>Cell A</w:t></w:r></w:p></w:tc>
  <w:tc><w:p><w:r><w:t>Cell B</w:t></w:r></w:p></w:tc>
</w:tr></w:tbl>
<w:p><w:r><w:t>Last</w:t></w:r></w:p>`)

	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		FileName: "report.docx",
		Content:  createTestDOCX(t, body, ""),
	})
	require.NoError(t, err)
	assert.Equal(t, "First paragraph\nLine\nbreak\nCell A\nCell B\nLast", result.Content)
}

func TestNormalise_TitleFallbacks(t *testing.T) {
	content := createTestDOCX(t, wrapBody(`<w:p><w:r><w:t>x</w:t></w:r></w:p>`), "")

	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		FileName: "access_control-policy.docx",
		Content:  content,
	})
	require.NoError(t, err)
	assert.Equal(t, "access control policy", result.Title)

	result, err = New().Normalise(context.Background(), &domain.RawDocument{
		FileName: "upload.docx",
		Content:  content,
		Metadata: map[string]any{"title": "Given Title"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Given Title", result.Title)
}

func TestNormalise_Failures(t *testing.T) {
	n := New()
	ctx := context.Background()

	_, err := n.Normalise(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	tests := []struct {
		name    string
		content []byte
	}{
		{"not a zip", []byte("plain text")},
		{"missing document part", createTestDOCX(t, "", coreWithTitle)},
		{"empty body", createTestDOCX(t, wrapBody(`<w:p></w:p>`), "")},
		{"broken xml", createTestDOCX(t, `<w:document><w:body><w:p>`, "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalise(ctx, &domain.RawDocument{FileName: "bad.docx", Content: tt.content})
			assert.ErrorIs(t, err, domain.ErrExtraction)
		})
	}
}
