// Package content turns article sources into HTML and derives the small
// bits of text the rest of the system needs: slugs, titles, excerpts.
package content

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// highlightClass matches the class names emitted by the code highlighter
var highlightClass = regexp.MustCompile(`^(chroma|line|cl|language-[a-zA-Z0-9+#_-]+|[a-z][a-z0-9]{0,3})$`)

// Renderer converts Markdown to HTML. A Renderer is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewArticleRenderer renders stored articles: CommonMark with tables and
// highlighted fenced code, sanitized for untrusted authors
func NewArticleRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(highlightClass).OnElements("pre", "code", "span")

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.NewTable(extension.WithTableCellAlignMethod(extension.TableCellAlignAttribute)),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
				renderer.WithNodeRenderers(util.Prioritized(newCodeBlockRenderer(), 100)),
			),
		),
		policy: policy,
	}
}

// NewLegacyRenderer renders trusted flat files with plain CommonMark and no sanitizing
func NewLegacyRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts Markdown source to HTML
func (r *Renderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	if r.policy == nil {
		return buf.String(), nil
	}
	return r.policy.Sanitize(buf.String()), nil
}
