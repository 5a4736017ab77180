package domain

import (
	"net/url"
	"strings"
	"time"
)

// DefaultRecrawlHours is the recrawl interval for new registrations.
const DefaultRecrawlHours = 24

// DefaultCrawlDepth is the link depth for new registrations.
const DefaultCrawlDepth = 2

// DomainRegistration is one allow-listed crawl target for a tenant.
// (TenantID, Domain) is unique.
type DomainRegistration struct {
	// ID is the unique identifier for the registration.
	ID string

	// TenantID is the owning organisation.
	TenantID string

	// Domain is the normalised host, e.g. "example.org".
	Domain string

	// Enabled controls whether the scheduler selects the registration.
	Enabled bool

	// CrawlDepth bounds how many links deep the crawl follows.
	CrawlDepth int

	// RecrawlHours is the minimum interval between crawls of this domain.
	RecrawlHours int

	// LastCrawledAt is when the domain was last crawled. Zero if never.
	LastCrawledAt time.Time

	// CreatedAt is when the registration was created.
	CreatedAt time.Time

	// UpdatedAt is when the registration was last updated.
	UpdatedAt time.Time
}

// DueForCrawl applies the recrawl gate.
func (r *DomainRegistration) DueForCrawl(now time.Time) bool {
	if !r.Enabled {
		return false
	}
	if r.LastCrawledAt.IsZero() {
		return true
	}
	hours := r.RecrawlHours
	if hours <= 0 {
		hours = DefaultRecrawlHours
	}
	return !now.Before(r.LastCrawledAt.Add(time.Duration(hours) * time.Hour))
}

// NormalizeDomain reduces a domain or URL to a lower-case host.
// Returns an empty string when nothing usable remains.
func NormalizeDomain(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Hostname(), ".")
}

// PageFileName derives a stable markdown file name from a page URL:
// "https://example.org/about/team" becomes "example.org_about_team.md".
func PageFileName(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}
	name := strings.ToLower(u.Hostname())
	if p := strings.Trim(u.EscapedPath(), "/"); p != "" {
		name += "_" + strings.ReplaceAll(p, "/", "_")
	}
	if u.RawQuery != "" {
		name += "_" + strings.NewReplacer("&", "_", "=", "-").Replace(u.RawQuery)
	}
	name = strings.TrimSuffix(name, ".html")
	name = strings.TrimSuffix(name, ".htm")
	return SanitizeFileName(name + ".md")
}

// CrawlPage is one page fetched by a crawler.
type CrawlPage struct {
	// URL is the final URL after redirects.
	URL string

	// Title is the page title.
	Title string

	// Markdown is the page body converted to markdown.
	Markdown string

	// ContentHash is the sha256 of the raw body.
	ContentHash string

	// Depth is the link distance from the domain root.
	Depth int
}

// CrawlState is the derived state of a tenant's crawling.
type CrawlState string

// Crawl states.
const (
	CrawlIdle    CrawlState = "idle"
	CrawlRunning CrawlState = "running"
	CrawlSuccess CrawlState = "success"
	CrawlFailed  CrawlState = "failed"
)

// CrawlStatus summarises a tenant's crawl activity.
// It is derived from jobs and documents, not stored.
type CrawlStatus struct {
	State   CrawlState
	Domains int
	Pages   int
	Chunks  int
	Message string

	// LastJob is the most recent crawl job, nil if none.
	LastJob *IngestJob
}
