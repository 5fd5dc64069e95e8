package content_test

import (
	"strings"
	"testing"

	"github.com/newsroom-api/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Hello,   World!  ", "hello-world"},
		{"Go 1.22 Released", "go-1-22-released"},
		{"新闻 发布", "新闻-发布"},
		{"Go语言入门", "go语言入门"},
		{"㐀新 闻", "新-闻"},
		{"𠀀 news", "news"},
		{"---", ""},
		{"Ünïcödé café", "n-c-d-caf"},
		{"already-a-slug", "already-a-slug"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, content.Slugify(tt.in))
		})
	}
}

func TestMarkdownTitle(t *testing.T) {
	title, ok := content.MarkdownTitle("intro\n# Hello Markdown\n\n## Sub")
	assert.True(t, ok)
	assert.Equal(t, "Hello Markdown", title)

	title, ok = content.MarkdownTitle("# Closed heading ##\r\nbody")
	assert.True(t, ok)
	assert.Equal(t, "Closed heading", title)

	title, ok = content.MarkdownTitle("# C#")
	assert.True(t, ok)
	assert.Equal(t, "C#", title)

	_, ok = content.MarkdownTitle("## only second level\n#nospace")
	assert.False(t, ok)
}

func TestHTMLTitle(t *testing.T) {
	title, ok := content.HTMLTitle([]byte("<html><head>\n<TITLE> Tom &amp; Jerry </TITLE></head></html>"))
	assert.True(t, ok)
	assert.Equal(t, "Tom & Jerry", title)

	_, ok = content.HTMLTitle([]byte("<html><body>no title</body></html>"))
	assert.False(t, ok)
}

func TestArticleRenderer(t *testing.T) {
	r := content.NewArticleRenderer()

	t.Run("tables", func(t *testing.T) {
		out, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
		require.NoError(t, err)
		assert.Contains(t, out, "<table>")
		assert.Contains(t, out, "<td>1</td>")
	})

	t.Run("fenced code with known language is highlighted", func(t *testing.T) {
		out, err := r.Render("```go\nfunc main() {}\n```\n")
		require.NoError(t, err)
		assert.Contains(t, out, `class="chroma"`)
		assert.Contains(t, out, "main")
	})

	t.Run("fenced code without language", func(t *testing.T) {
		out, err := r.Render("```\n<b>x</b>\n```\n")
		require.NoError(t, err)
		assert.Contains(t, out, "<pre><code>&lt;b&gt;x&lt;/b&gt;")
	})

	t.Run("scripts are stripped", func(t *testing.T) {
		out, err := r.Render("# Hi\n\n<script>alert(1)</script>\n\n<a href=\"javascript:alert(1)\">x</a>")
		require.NoError(t, err)
		assert.NotContains(t, out, "<script")
		assert.NotContains(t, out, "javascript:")
		assert.Contains(t, out, "<h1>Hi</h1>")
	})
}

func TestLegacyRenderer(t *testing.T) {
	out, err := content.NewLegacyRenderer().Render("# Hello Markdown\n\nThis is a test.")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Hello Markdown</h1>")
	assert.Contains(t, out, "<p>This is a test.</p>")
}

func TestExcerpt(t *testing.T) {
	html := "<h1>Title</h1>\n<p>Some <strong>bold</strong> &amp; plain\ntext.</p>"
	assert.Equal(t, "Title Some bold & plain text.", content.Excerpt(html, 200))
	assert.Equal(t, "Title", content.Excerpt(html, 6))

	long := "<p>" + strings.Repeat("新", 300) + "</p>"
	assert.Equal(t, 200, len([]rune(content.Excerpt(long, content.ExcerptLength))))
}

func TestSplitFrontMatter(t *testing.T) {
	fm, body, ok := content.SplitFrontMatter("---\ntitle: Hi\ncategory: tech\n---\n# Body\n")
	assert.True(t, ok)
	assert.Equal(t, "title: Hi\ncategory: tech", fm)
	assert.Equal(t, "# Body\n", body)

	_, body, ok = content.SplitFrontMatter("# No front matter")
	assert.False(t, ok)
	assert.Equal(t, "# No front matter", body)

	_, _, ok = content.SplitFrontMatter("---\nnever closed")
	assert.False(t, ok)
}

func TestETag(t *testing.T) {
	a := content.ETag([]byte("hello"))
	assert.Equal(t, a, content.ETag([]byte("hello")))
	assert.NotEqual(t, a, content.ETag([]byte("hello!")))
	assert.True(t, strings.HasPrefix(a, `"`) && strings.HasSuffix(a, `"`))
}

func TestHighlightCSS(t *testing.T) {
	assert.Contains(t, content.HighlightCSS(), ".chroma")
}
