package content

import (
	"bytes"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

const highlightStyle = "github"

// codeBlockRenderer replaces goldmark's fenced code output with chroma
// highlighting when the info string names a known language
type codeBlockRenderer struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

func newCodeBlockRenderer() *codeBlockRenderer {
	return &codeBlockRenderer{
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
		style:     styles.Get(highlightStyle),
	}
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	lang := ""
	if n.Info != nil {
		lang = strings.ToLower(string(n.Language(source)))
	}

	if lexer := lexers.Get(lang); lang != "" && lexer != nil {
		iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code.String())
		if err == nil {
			if err := r.formatter.Format(w, r.style, iterator); err == nil {
				return ast.WalkSkipChildren, nil
			}
		}
	}

	_, _ = w.WriteString("<pre><code")
	if lang != "" {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML([]byte(lang)))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	_, _ = w.Write(util.EscapeHTML(code.Bytes()))
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}

var (
	cssOnce sync.Once
	cssText string
)

// HighlightCSS returns the stylesheet for highlighted code blocks
func HighlightCSS() string {
	cssOnce.Do(func() {
		var buf bytes.Buffer
		if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, styles.Get(highlightStyle)); err == nil {
			cssText = buf.String()
		}
	})
	return cssText
}
