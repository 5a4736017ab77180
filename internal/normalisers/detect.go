package normalisers

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// extensionTypes covers the extensions whose system MIME mapping is
// missing or differs between platforms.
var extensionTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".csv":      "text/csv",
	".tsv":      "text/tab-separated-values",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
	".xhtml":    "application/xhtml+xml",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// DetectMIMEType guesses a file's MIME type from its extension, falling
// back to content sniffing. Parameters such as charset are dropped.
func DetectMIMEType(fileName string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if mt, ok := extensionTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return baseMIMEType(mt)
	}
	return baseMIMEType(http.DetectContentType(content))
}
