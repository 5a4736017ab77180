// Package docx extracts paragraph text from Office Open XML documents.
package docx
