package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, 50, n.Priority())
	assert.Equal(t, []string{"text/markdown", "text/x-markdown"}, n.SupportedMIMETypes())
}

func TestNormalise_TitleFromHeading(t *testing.T) {
	raw := &domain.RawDocument{
		FileName: "profile.md",
		Content:  []byte("Intro line\n\n# Organisation Profile\n\nWe **build** things."),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Organisation Profile", result.Title)
	assert.Contains(t, result.Content, "We build things.")
	assert.NotContains(t, result.Content, "#")
}

func TestNormalise_TitleFallbacks(t *testing.T) {
	n := New()
	ctx := context.Background()

	result, err := n.Normalise(ctx, &domain.RawDocument{
		FileName: "page.md",
		Content:  []byte("no heading"),
		Metadata: map[string]any{"title": "Crawled Page"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Crawled Page", result.Title)

	result, err = n.Normalise(ctx, &domain.RawDocument{FileName: "security_policy.md", Content: []byte("text")})
	require.NoError(t, err)
	assert.Equal(t, "security policy", result.Title)
}

func TestNormalise_StripsSyntaxKeepsText(t *testing.T) {
	md := "## Controls\n\n" +
		"- [Access review](https://example.org/access)\n" +
		"- ![diagram](img.png)\n\n" +
		"> quoted *emphasis*\n\n" +
		"---\n\n" +
		"```go\nfmt.Println(\"kept\")\n```\n\n" +
		"| a | b |\n|---|---|\n| 1 | 2 |\n" +
		"<!-- hidden -->"

	result, err := New().Normalise(context.Background(), &domain.RawDocument{FileName: "c.md", Content: []byte(md)})
	require.NoError(t, err)

	assert.Contains(t, result.Content, "Controls")
	assert.Contains(t, result.Content, "Access review")
	assert.NotContains(t, result.Content, "https://example.org")
	assert.Contains(t, result.Content, "diagram")
	assert.Contains(t, result.Content, "quoted emphasis")
	assert.Contains(t, result.Content, `fmt.Println("kept")`)
	assert.NotContains(t, result.Content, "```")
	assert.NotContains(t, result.Content, "hidden")
	assert.NotContains(t, result.Content, "---")
}

func TestNormalise_EmptyIsExtractionFailure(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawDocument{FileName: "e.md", Content: []byte("<!-- only -->\n")})
	assert.ErrorIs(t, err, domain.ErrExtraction)

	_, err = New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
