package content

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/microcosm-cc/bluemonday"
)

// ExcerptLength is the default excerpt size in runes
const ExcerptLength = 200

var (
	markdownTitle = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)
	closingHashes = regexp.MustCompile(`[ \t]+#+$`)
	htmlTitle     = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	plainText     = bluemonday.StrictPolicy()
)

// Slugify lowercases s and keeps ASCII letters, digits and CJK Unified
// Ideographs (U+4E00 to U+9FFF).
// Every other run of characters becomes one hyphen; leading and trailing
// hyphens are dropped.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || (r >= 0x4E00 && r <= 0x9FFF) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// MarkdownTitle returns the text of the first "# " heading
func MarkdownTitle(source string) (string, bool) {
	m := markdownTitle.FindStringSubmatch(source)
	if m == nil {
		return "", false
	}
	title := strings.TrimSpace(closingHashes.ReplaceAllString(strings.TrimSpace(m[1]), ""))
	return title, title != ""
}

// HTMLTitle returns the unescaped contents of the <title> element
func HTMLTitle(source []byte) (string, bool) {
	m := htmlTitle.FindSubmatch(source)
	if m == nil {
		return "", false
	}
	title := strings.TrimSpace(html.UnescapeString(string(m[1])))
	return title, title != ""
}

// PlainText strips all markup from rendered HTML and collapses whitespace
func PlainText(renderedHTML string) string {
	text := html.UnescapeString(plainText.Sanitize(renderedHTML))
	return strings.Join(strings.Fields(text), " ")
}

// Excerpt returns at most max runes of plain text from rendered HTML
func Excerpt(renderedHTML string, max int) string {
	text := PlainText(renderedHTML)
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max]))
}

// SplitFrontMatter separates a leading "---" delimited YAML block from the body
func SplitFrontMatter(source string) (frontMatter, body string, ok bool) {
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return "", source, false
	}
	lines := strings.Split(normalized, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), true
		}
	}
	return "", source, false
}

// ETag returns a strong entity tag for a response body
func ETag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
}
