package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPath(t *testing.T) {
	assert.Equal(t, "tenant/org-1/uploads/policy.pdf", CanonicalPath("org-1", "policy.pdf"))
}

func TestCandidatePaths(t *testing.T) {
	doc := &Document{TenantID: "org-1", FileName: "policy.pdf", StoragePath: "/legacy/org-1/policy.pdf"}

	paths := CandidatePaths(doc)

	assert.Equal(t, "tenant/org-1/uploads/policy.pdf", paths[0])
	assert.Contains(t, paths, "org-1/policy.pdf")
	assert.Contains(t, paths, "uploads/org-1/policy.pdf")
	assert.Contains(t, paths, "documents/org-1/policy.pdf")
	assert.Contains(t, paths, "legacy/org-1/policy.pdf")
}

func TestCandidatePaths_Deduplicated(t *testing.T) {
	doc := &Document{TenantID: "org-1", FileName: "a.txt", StoragePath: "tenant/org-1/uploads/a.txt"}

	paths := CandidatePaths(doc)

	seen := map[string]int{}
	for _, p := range paths {
		seen[p]++
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, p)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\doc.docx`, "doc.docx"},
		{"a:b?.txt", "a_b_.txt"},
		{"..", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFileName(tt.in), "input %q", tt.in)
	}
}

func TestTitleFromFileName(t *testing.T) {
	tests := map[string]string{
		"org_profile-2024.pdf":     "org profile 2024",
		"uploads/Risk Register.md": "Risk Register",
		`C:\docs\policy.docx`:      "policy",
		"":                         "",
		"README":                   "README",
	}
	for in, want := range tests {
		assert.Equal(t, want, TitleFromFileName(in), in)
	}
}
