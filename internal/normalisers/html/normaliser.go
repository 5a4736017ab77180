package html

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct {
	conv *converter.Converter
}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{conv: newConverter()}
}

func newConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts an HTML document to markdown text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	sourceURL, _ := raw.Metadata[domain.MetaSourceURL].(string)

	page, err := n.Extract(raw.Content, sourceURL)
	if err != nil {
		return nil, err
	}
	if page.Markdown == "" {
		return nil, fmt.Errorf("%s has no text: %w", raw.FileName, domain.ErrExtraction)
	}

	title := page.Title
	if title == "" {
		title = domain.TitleFromFileName(raw.FileName)
	}
	return &driven.NormaliseResult{Title: title, Content: page.Markdown}, nil
}

// Page is the readable part of an HTML document.
type Page struct {
	// Title is the <title>, or the first <h1> when the title is empty.
	Title string

	// Markdown is the body converted to markdown.
	Markdown string

	// Links are the absolute http(s) targets of <a href>, in document order,
	// without fragments and without duplicates.
	Links []string
}

// Extract parses body and returns its title, markdown and links. Relative
// links are resolved against pageURL when it is set.
func (n *Normaliser) Extract(body []byte, pageURL string) (*Page, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w: %w", domain.ErrExtraction, err)
	}

	var base *url.URL
	if pageURL != "" {
		base, _ = url.Parse(pageURL)
	}

	page := &Page{}
	var h1 string
	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch node.DataAtom {
			case atom.Title:
				if page.Title == "" {
					page.Title = collapse(textOf(node))
				}
			case atom.H1:
				if h1 == "" {
					h1 = collapse(textOf(node))
				}
			case atom.Base:
				if href := attr(node, "href"); href != "" && base != nil {
					if u, err := base.Parse(href); err == nil {
						base = u
					}
				}
			case atom.A:
				if link := resolveLink(base, attr(node, "href")); link != "" && !seen[link] {
					seen[link] = true
					page.Links = append(page.Links, link)
				}
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if page.Title == "" {
		page.Title = h1
	}

	var opts []converter.ConvertOptionFunc
	if base != nil {
		opts = append(opts, converter.WithDomain(base.Scheme+"://"+base.Host))
	}
	markdown, err := n.conv.ConvertString(string(body), opts...)
	if err != nil {
		return nil, fmt.Errorf("convert html: %w: %w", domain.ErrExtraction, err)
	}
	page.Markdown = strings.TrimSpace(markdown)
	return page, nil
}

// resolveLink returns an absolute http(s) URL without fragment, or "".
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

func attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textOf(node *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return sb.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
