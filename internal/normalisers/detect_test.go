package normalisers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  []byte
		want     string
	}{
		{"markdown", "Policy.MD", nil, "text/markdown"},
		{"plain text", "notes.txt", nil, "text/plain"},
		{"docx", "report.docx", nil, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"html", "index.htm", nil, "text/html"},
		{"sniffed text", "README", []byte("hello world"), "text/plain"},
		{"sniffed html", "page", []byte("<!DOCTYPE html><html><body>x</body></html>"), "text/html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMIMEType(tt.fileName, tt.content))
		})
	}
}
