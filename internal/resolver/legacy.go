package resolver

import (
	"context"
	"errors"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/newsroom-api/internal/content"
	"github.com/newsroom-api/internal/models"
)

// Legacy file extensions
const (
	MarkdownExt = ".md"
	HTMLExt     = ".html"
)

// LegacyDir is the read-only directory of flat-file articles. The file stem
// is the article identifier.
type LegacyDir struct {
	root string
}

// NewLegacyDir creates a LegacyDir rooted at root
func NewLegacyDir(root string) *LegacyDir {
	return &LegacyDir{root: root}
}

// Root returns the directory path
func (d *LegacyDir) Root() string { return d.root }

// validIdentifier rejects identifiers that could escape the directory
func validIdentifier(id string) bool {
	if id == "" || strings.HasPrefix(id, ".") {
		return false
	}
	if strings.ContainsAny(id, `/\`+"\x00") || strings.Contains(id, "..") {
		return false
	}
	return true
}

// Read returns the file <identifier><ext>, or (nil, nil) if it does not exist
func (d *LegacyDir) Read(identifier, ext string) ([]byte, error) {
	if d == nil || d.root == "" || !validIdentifier(identifier) {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Join(d.root, identifier+ext))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Entry describes one legacy article
type Entry struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Format     Source `json:"format"`
	Path       string `json:"-"`
}

// List enumerates legacy articles sorted by identifier. When both formats
// exist for a stem the Markdown file wins, matching resolution order.
func (d *LegacyDir) List() ([]Entry, error) {
	if d == nil || d.root == "" {
		return nil, nil
	}
	files, err := os.ReadDir(d.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Entry)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := filepath.Ext(f.Name())
		id := strings.TrimSuffix(f.Name(), ext)
		if !validIdentifier(id) {
			continue
		}

		var format Source
		switch ext {
		case MarkdownExt:
			format = SourceMarkdown
		case HTMLExt:
			format = SourceHTML
			if _, ok := byID[id]; ok {
				continue
			}
		default:
			continue
		}

		path := filepath.Join(d.root, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		title := id
		if format == SourceMarkdown {
			if t, ok := content.MarkdownTitle(string(data)); ok {
				title = t
			}
		} else if t, ok := content.HTMLTitle(data); ok {
			title = t
		}
		byID[id] = Entry{Identifier: id, Title: title, Format: format, Path: path}
	}

	entries := make([]Entry, 0, len(byID))
	for _, e := range byID {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Identifier < entries[j].Identifier })
	return entries, nil
}

// MarkdownBackend renders <identifier>.md files
type MarkdownBackend struct {
	dir      *LegacyDir
	renderer *content.Renderer
}

// NewMarkdownBackend creates a MarkdownBackend
func NewMarkdownBackend(dir *LegacyDir, renderer *content.Renderer) *MarkdownBackend {
	return &MarkdownBackend{dir: dir, renderer: renderer}
}

func (b *MarkdownBackend) Name() string { return string(SourceMarkdown) }

// TryResolve renders the Markdown file. The title comes from the first
// "# " heading, falling back to the identifier, and the output always
// contains an <h1>.
func (b *MarkdownBackend) TryResolve(ctx context.Context, identifier string, _ *models.User) (*Content, error) {
	data, err := b.dir.Read(identifier, MarkdownExt)
	if err != nil || data == nil {
		return nil, err
	}

	rendered, err := b.renderer.Render(string(data))
	if err != nil {
		return nil, err
	}

	title, ok := content.MarkdownTitle(string(data))
	if !ok {
		title = identifier
	}
	if !strings.Contains(rendered, "<h1") {
		rendered = "<h1>" + html.EscapeString(title) + "</h1>\n" + rendered
	}

	return &Content{
		Identifier: identifier,
		Title:      title,
		Source:     SourceMarkdown,
		HTML:       []byte(rendered),
	}, nil
}

// HTMLBackend serves <identifier>.html files unmodified
type HTMLBackend struct {
	dir *LegacyDir
}

// NewHTMLBackend creates an HTMLBackend
func NewHTMLBackend(dir *LegacyDir) *HTMLBackend {
	return &HTMLBackend{dir: dir}
}

func (b *HTMLBackend) Name() string { return string(SourceHTML) }

func (b *HTMLBackend) TryResolve(ctx context.Context, identifier string, _ *models.User) (*Content, error) {
	data, err := b.dir.Read(identifier, HTMLExt)
	if err != nil || data == nil {
		return nil, err
	}

	title, ok := content.HTMLTitle(data)
	if !ok {
		title = identifier
	}
	return &Content{
		Identifier: identifier,
		Title:      title,
		Source:     SourceHTML,
		HTML:       data,
	}, nil
}
