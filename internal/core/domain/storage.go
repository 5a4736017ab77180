package domain

import (
	"path"
	"strings"
)

// CanonicalPath is where new uploads for a tenant are stored.
func CanonicalPath(tenantID, fileName string) string {
	return path.Join("tenant", tenantID, "uploads", fileName)
}

// CandidatePaths returns the locations where a document's file may live, the
// canonical path first. Legacy layouts are only read by path repair.
func CandidatePaths(doc *Document) []string {
	canonical := CanonicalPath(doc.TenantID, doc.FileName)
	candidates := []string{
		canonical,
		path.Join(doc.TenantID, doc.FileName),
		path.Join("uploads", doc.TenantID, doc.FileName),
		path.Join("documents", doc.TenantID, doc.FileName),
		doc.FileName,
	}
	if p := strings.TrimPrefix(doc.StoragePath, "/"); p != "" {
		candidates = append(candidates, p)
	}

	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// SanitizeFileName strips directory components and characters that do not
// belong in an object key.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case strings.ContainsRune(`:*?"<>|`, r):
			return '_'
		default:
			return r
		}
	}, name)
}

// TitleFromFileName derives a readable title from a file name by dropping
// the extension and turning separators into spaces.
func TitleFromFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}

// PathRepairOutcome records what path repair did.
type PathRepairOutcome string

// Path repair outcomes.
const (
	// RepairCanonical means the file was already at the canonical path.
	RepairCanonical PathRepairOutcome = "canonical"

	// RepairMoved means the file was copied to the canonical path and the old copy removed.
	RepairMoved PathRepairOutcome = "moved"

	// RepairMovedStale means the file was copied but the old copy could not be removed.
	RepairMovedStale PathRepairOutcome = "moved_stale_copy"

	// RepairMissing means no candidate path held the file.
	RepairMissing PathRepairOutcome = "missing"

	// RepairFailed means the file was found but could not be copied.
	RepairFailed PathRepairOutcome = "failed"
)
