package web

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/ratelimit"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/normalisers/html"
)

// Ensure Crawler implements the interface.
var _ driven.Crawler = (*Crawler)(nil)

// Default configuration values.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 5 << 20
	DefaultUserAgent    = "forge-crawler/1.0"
	maxRedirects        = 5
)

// Config configures the crawler.
type Config struct {
	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds a single page fetch.
	Timeout time.Duration

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64

	// RequestsPerSecond paces requests within one domain. Zero disables pacing.
	RequestsPerSecond float64

	// StartURL maps a registered domain to the first URL fetched.
	// Defaults to "https://<domain>/".
	StartURL func(domainName string) string
}

func (c *Config) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.StartURL == nil {
		c.StartURL = func(d string) string { return "https://" + d + "/" }
	}
}

// Crawler fetches pages of registered domains.
type Crawler struct {
	client    *http.Client
	config    Config
	extractor *html.Normaliser
}

// New creates a crawler.
func New(cfg Config) *Crawler {
	cfg.defaults()
	return &Crawler{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		},
		config:    cfg,
		extractor: html.New(),
	}
}

type queued struct {
	url   string
	depth int
}

// Crawl walks reg's domain breadth-first up to reg.CrawlDepth links from the
// start page and returns at most maxPages pages.
func (c *Crawler) Crawl(ctx context.Context, reg domain.DomainRegistration, maxPages int) ([]domain.CrawlPage, error) {
	if reg.Domain == "" || maxPages <= 0 {
		return nil, domain.ErrInvalidInput
	}
	depthLimit := reg.CrawlDepth
	if depthLimit <= 0 {
		depthLimit = domain.DefaultCrawlDepth
	}

	start, err := url.Parse(c.config.StartURL(reg.Domain))
	if err != nil || start.Host == "" {
		return nil, fmt.Errorf("start url for %s: %w", reg.Domain, domain.ErrInvalidInput)
	}
	host := strings.ToLower(start.Host)

	limiter := ratelimit.New(ratelimit.Config{RequestsPerSecond: c.config.RequestsPerSecond, BurstSize: 1})
	visited := map[string]bool{canonicalURL(start): true}
	fetched := make(map[string]bool)
	queue := []queued{{url: start.String()}}

	var (
		pages    []domain.CrawlPage
		firstErr error
	)
	for len(queue) > 0 && len(pages) < maxPages {
		if err := ctx.Err(); err != nil {
			if len(pages) == 0 {
				return nil, err
			}
			break
		}
		next := queue[0]
		queue = queue[1:]

		if err := limiter.Wait(ctx); err != nil {
			if len(pages) == 0 {
				return nil, err
			}
			break
		}

		page, links, err := c.fetch(ctx, next.url, host)
		if err != nil {
			logger.Debug("crawl %s: %v", next.url, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		// Redirects can land two queued URLs on the same page.
		finalKey := canonicalURL(mustParse(page.URL))
		if fetched[finalKey] {
			continue
		}
		fetched[finalKey] = true
		visited[finalKey] = true
		page.Depth = next.depth
		pages = append(pages, *page)

		if next.depth >= depthLimit {
			continue
		}
		for _, link := range links {
			u, err := url.Parse(link)
			if err != nil || strings.ToLower(u.Host) != host {
				continue
			}
			key := canonicalURL(u)
			if visited[key] {
				continue
			}
			visited[key] = true
			queue = append(queue, queued{url: link, depth: next.depth + 1})
		}
	}

	if len(pages) == 0 {
		if firstErr == nil {
			firstErr = errors.New("no pages found")
		}
		return nil, fmt.Errorf("crawl %s: %w", reg.Domain, firstErr)
	}
	return pages, nil
}

var errOffHost = errors.New("redirected off host")

// fetch retrieves one page and returns it with its outgoing links.
func (c *Crawler) fetch(ctx context.Context, pageURL, host string) (*domain.CrawlPage, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, nil, fmt.Errorf("http %d", resp.StatusCode)
	}
	finalURL := resp.Request.URL
	if strings.ToLower(finalURL.Host) != host {
		return nil, nil, fmt.Errorf("%s: %w", finalURL, errOffHost)
	}
	if !isHTML(resp.Header.Get("Content-Type")) {
		return nil, nil, fmt.Errorf("content type %q: %w", resp.Header.Get("Content-Type"), domain.ErrUnsupportedType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}
	sum := sha256.Sum256(body)

	extracted, err := c.extractor.Extract(body, finalURL.String())
	if err != nil {
		return nil, nil, err
	}
	if extracted.Markdown == "" {
		return nil, nil, fmt.Errorf("%s has no text: %w", finalURL, domain.ErrExtraction)
	}

	title := extracted.Title
	if title == "" {
		title = finalURL.Host + finalURL.Path
	}
	return &domain.CrawlPage{
		URL:         finalURL.String(),
		Title:       title,
		Markdown:    extracted.Markdown,
		ContentHash: hex.EncodeToString(sum[:]),
	}, extracted.Links, nil
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// canonicalURL is the visited-set key: host lower-cased, no fragment and no
// trailing slash.
func canonicalURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	c.Fragment = ""
	c.Host = strings.ToLower(c.Host)
	c.Path = strings.TrimSuffix(c.Path, "/")
	return c.String()
}

func mustParse(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return u
}
