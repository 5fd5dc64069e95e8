package resolver_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newsroom-api/internal/apperr"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/content"
	"github.com/newsroom-api/internal/mocks"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/resolver"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	articles *mocks.MockArticleRepository
	dir      string
	resolver *resolver.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	articles := mocks.NewMockArticleRepository()
	dir := t.TempDir()
	legacy := resolver.NewLegacyDir(dir)

	return &fixture{
		articles: articles,
		dir:      dir,
		resolver: resolver.New(zerolog.Nop(),
			resolver.NewDatabaseBackend(articles),
			resolver.NewMarkdownBackend(legacy, content.NewLegacyRenderer()),
			resolver.NewHTMLBackend(legacy),
		),
	}
}

func (f *fixture) writeFile(t *testing.T, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, name), []byte(body), 0o644))
}

func (f *fixture) addArticle(t *testing.T, slug, status string, owner int64) *models.Article {
	t.Helper()
	a := &models.Article{
		Title:       "DB " + slug,
		Slug:        slug,
		Content:     "# DB",
		HTMLContent: "<h1>DB</h1>",
		Status:      status,
		UserID:      owner,
	}
	if status == models.StatusPublished {
		now := time.Now()
		a.PublishedAt = &now
	}
	require.NoError(t, f.articles.Create(context.Background(), a))
	return a
}

func TestResolve_PublishedDatabaseArticle(t *testing.T) {
	f := newFixture(t)
	a := f.addArticle(t, "hello-world", models.StatusPublished, 2)
	f.writeFile(t, "hello-world.md", "# From disk")

	c, err := f.resolver.Resolve(context.Background(), "hello-world", nil)
	require.NoError(t, err)

	assert.Equal(t, resolver.SourceDatabase, c.Source)
	assert.Equal(t, "<h1>DB</h1>", string(c.HTML))
	assert.Equal(t, int64(1), c.Article.ViewCount)

	stored, _ := f.articles.GetByID(context.Background(), a.ID)
	assert.Equal(t, int64(1), stored.ViewCount)

	_, err = f.resolver.Resolve(context.Background(), "hello-world", nil)
	require.NoError(t, err)
	stored, _ = f.articles.GetByID(context.Background(), a.ID)
	assert.Equal(t, int64(2), stored.ViewCount)
}

func TestResolve_UnpublishedVisibility(t *testing.T) {
	f := newFixture(t)
	f.addArticle(t, "secret", models.StatusDraft, 2)
	// a legacy file with the same name must never leak through
	f.writeFile(t, "secret.md", "# Public copy")

	owner := &models.User{ID: 2, Role: models.RoleUser, Active: true}
	stranger := &models.User{ID: 3, Role: models.RoleUser, Active: true}
	admin := &models.User{ID: 1, Role: models.RoleAdmin, Active: true}

	tests := []struct {
		name       string
		viewer     *models.User
		wantStatus int
		wantCode   string
	}{
		{"anonymous", nil, http.StatusUnauthorized, apperr.CodeMissingToken},
		{"stranger", stranger, http.StatusForbidden, apperr.CodeAdminRequired},
		{"owner", owner, http.StatusOK, ""},
		{"admin", admin, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := f.resolver.Resolve(context.Background(), "secret", tt.viewer)
			if tt.wantStatus == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, resolver.SourceDatabase, c.Source)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, apperr.Status(err))
			e, _ := apperr.As(err)
			assert.Equal(t, tt.wantCode, e.Code)
		})
	}

	// only the two successful reads counted
	assert.Equal(t, 2, f.articles.IncrementCalls)
}

func TestResolve_RejectedTokenKeepsReason(t *testing.T) {
	f := newFixture(t)
	f.addArticle(t, "secret", models.StatusDraft, 2)

	rejected := apperr.Unauthorized(apperr.CodeInvalidTokenType, "wrong token type")
	ctx := auth.WithAuthError(context.Background(), rejected)

	_, err := f.resolver.Resolve(ctx, "secret", nil)
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeInvalidTokenType, e.Code)
	assert.Equal(t, 0, f.articles.IncrementCalls)
}

func TestResolve_LegacyMarkdown(t *testing.T) {
	f := newFixture(t)
	f.writeFile(t, "test-md.md", "# Hello Markdown\n\nThis is a test.")

	c, err := f.resolver.Resolve(context.Background(), "test-md", nil)
	require.NoError(t, err)

	assert.Equal(t, resolver.SourceMarkdown, c.Source)
	assert.Equal(t, "Hello Markdown", c.Title)
	assert.Contains(t, string(c.HTML), "<h1>Hello Markdown</h1>")
	assert.Contains(t, string(c.HTML), "<p>This is a test.</p>")
	assert.False(t, c.Raw())
}

func TestResolve_LegacyMarkdownWithoutHeading(t *testing.T) {
	f := newFixture(t)
	f.writeFile(t, "notes-<1>.md", "Just a paragraph.")

	c, err := f.resolver.Resolve(context.Background(), "notes-<1>", nil)
	require.NoError(t, err)

	assert.Equal(t, "notes-<1>", c.Title)
	assert.Contains(t, string(c.HTML), "<h1>notes-&lt;1&gt;</h1>")
	assert.Contains(t, string(c.HTML), "<p>Just a paragraph.</p>")
}

func TestResolve_LegacyHTMLIsRaw(t *testing.T) {
	f := newFixture(t)
	raw := "<html><head><title>Old</title></head><body><h1>Old page</h1></body></html>"
	f.writeFile(t, "test-html.html", raw)

	c, err := f.resolver.Resolve(context.Background(), "test-html", nil)
	require.NoError(t, err)

	assert.Equal(t, resolver.SourceHTML, c.Source)
	assert.Equal(t, raw, string(c.HTML))
	assert.Equal(t, "Old", c.Title)
	assert.True(t, c.Raw())
}

func TestResolve_MarkdownBeatsHTML(t *testing.T) {
	f := newFixture(t)
	f.writeFile(t, "both.md", "# Markdown wins")
	f.writeFile(t, "both.html", "<p>html</p>")

	c, err := f.resolver.Resolve(context.Background(), "both", nil)
	require.NoError(t, err)
	assert.Equal(t, resolver.SourceMarkdown, c.Source)
}

func TestResolve_NotFound(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{"nonexistent", "../etc/passwd", "a/b", "..", ".hidden", ""} {
		_, err := f.resolver.Resolve(context.Background(), id, nil)
		assert.Equal(t, http.StatusNotFound, apperr.Status(err), id)
	}
}

type failingBackend struct{}

func (failingBackend) Name() string { return "failing" }

func (failingBackend) TryResolve(context.Context, string, *models.User) (*resolver.Content, error) {
	return nil, errors.New("disk on fire")
}

func TestResolve_BackendErrorStops(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.html"), []byte("x"), 0o644))

	r := resolver.New(zerolog.Nop(), failingBackend{}, resolver.NewHTMLBackend(resolver.NewLegacyDir(dir)))
	_, err := r.Resolve(context.Background(), "x", nil)
	assert.Equal(t, http.StatusInternalServerError, apperr.Status(err))
}

func TestLegacyDir_List(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"alpha.md":    "# Alpha Title\n\nbody",
		"beta.html":   "<title>Beta Title</title>",
		"gamma.md":    "no heading",
		"dup.md":      "# Dup from md",
		"dup.html":    "<title>Dup from html</title>",
		"ignored.txt": "nope",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))

	entries, err := resolver.NewLegacyDir(dir).List()
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, resolver.Entry{Identifier: "alpha", Title: "Alpha Title", Format: resolver.SourceMarkdown, Path: filepath.Join(dir, "alpha.md")}, entries[0])
	assert.Equal(t, "Beta Title", entries[1].Title)
	assert.Equal(t, resolver.SourceHTML, entries[1].Format)
	assert.Equal(t, "Dup from md", entries[2].Title)
	assert.Equal(t, "gamma", entries[3].Title)
}

func TestLegacyDir_MissingDirectory(t *testing.T) {
	entries, err := resolver.NewLegacyDir(filepath.Join(t.TempDir(), "missing")).List()
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
