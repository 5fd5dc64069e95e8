package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/newsroom-api/internal/apperr"
	"github.com/newsroom-api/internal/content"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/resolver"
	"github.com/newsroom-api/internal/validation"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// importService is the concrete implementation of ImportService
type importService struct {
	repos    *repository.Repositories
	legacy   *resolver.LegacyDir
	renderer *content.Renderer
	now      func() time.Time
	log      zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(
	repos *repository.Repositories,
	legacy *resolver.LegacyDir,
	renderer *content.Renderer,
	now func() time.Time,
	log zerolog.Logger,
) *importService {
	return &importService{
		repos:    repos,
		legacy:   legacy,
		renderer: renderer,
		now:      now,
		log:      log.With().Str("service", "import").Logger(),
	}
}

// legacyDocument is a parsed legacy file ready to become an article
type legacyDocument struct {
	title       string
	body        string
	category    string
	excerpt     string
	status      string
	publishedAt *time.Time
}

// ImportLegacy copies every legacy file whose slug is not yet in the
// database into the articles table, owned by ownerID. Problems with a single
// file are reported and do not stop the run.
func (s *importService) ImportLegacy(ctx context.Context, ownerID int64) (*models.ImportReport, error) {
	owner, err := s.repos.User.GetByID(ctx, ownerID)
	if err != nil {
		return nil, internal(err)
	}
	if owner == nil {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "import owner does not exist")
	}

	entries, err := s.legacy.List()
	if err != nil {
		return nil, internal(err)
	}

	startTime := time.Now()
	report := &models.ImportReport{}
	s.log.Info().
		Str("dir", s.legacy.Root()).
		Int("files", len(entries)).
		Int64("owner_id", ownerID).
		Msg("Starting legacy import")

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		fail := func(field, msg string) {
			report.Failed++
			report.Errors = append(report.Errors, models.ValidationError{
				File:    entry.Identifier + extensionFor(entry.Format),
				Field:   field,
				Message: msg,
			})
		}

		slug := content.Slugify(entry.Identifier)
		if slug == "" {
			fail("slug", "cannot derive a slug from the file name")
			continue
		}
		taken, err := s.repos.Article.SlugTaken(ctx, slug, 0)
		if err != nil {
			return report, internal(err)
		}
		if taken {
			report.Skipped++
			continue
		}

		doc, field, err := s.parse(entry)
		if err != nil {
			fail(field, err.Error())
			continue
		}

		article, warning, err := s.buildArticle(ctx, owner, slug, doc)
		if err != nil {
			return report, err
		}
		if errs := validation.ValidateImportedArticle(article); len(errs) > 0 {
			first := errs.First()
			fail(first.Field, first.Message)
			continue
		}
		if warning != "" {
			report.Errors = append(report.Errors, models.ValidationError{
				File:    entry.Identifier + extensionFor(entry.Format),
				Field:   "category",
				Message: warning,
			})
		}

		if err := s.repos.Article.Create(ctx, article); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				report.Skipped++
				continue
			}
			return report, internal(err)
		}
		report.Imported++
	}

	s.log.Info().
		Int("scanned", report.Scanned).
		Int("imported", report.Imported).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Msg("Legacy import completed")

	return report, nil
}

// parse reads a legacy file. On failure it also names the offending field.
func (s *importService) parse(entry resolver.Entry) (*legacyDocument, string, error) {
	ext := extensionFor(entry.Format)
	data, err := s.legacy.Read(entry.Identifier, ext)
	if err != nil {
		return nil, "file", err
	}
	if data == nil {
		return nil, "file", errors.New("file disappeared during import")
	}

	if entry.Format == resolver.SourceHTML {
		title, ok := content.HTMLTitle(data)
		if !ok {
			title = entry.Identifier
		}
		return &legacyDocument{title: title, body: string(data)}, "", nil
	}

	doc := &legacyDocument{body: string(data)}
	if header, body, ok := content.SplitFrontMatter(string(data)); ok {
		var fm models.FrontMatter
		if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
			return nil, "front_matter", errors.New("invalid front matter: " + err.Error())
		}
		if errs := validation.ValidateFrontMatter(&fm); len(errs) > 0 {
			first := errs.First()
			return nil, first.Field, errors.New(first.Message)
		}
		doc.body = strings.TrimLeft(body, "\n")
		doc.title = strings.TrimSpace(fm.Title)
		doc.category = strings.TrimSpace(fm.Category)
		doc.excerpt = strings.TrimSpace(fm.Excerpt)
		doc.status = fm.Status
		if fm.Date != "" {
			t, _ := validation.ParseDate(fm.Date)
			doc.publishedAt = &t
		}
	}
	if doc.title == "" {
		if title, ok := content.MarkdownTitle(doc.body); ok {
			doc.title = title
		} else {
			doc.title = entry.Identifier
		}
	}
	return doc, "", nil
}

// buildArticle turns a parsed document into an article. An unknown category
// is not fatal; it is returned as a warning and the article is uncategorized.
func (s *importService) buildArticle(ctx context.Context, owner *models.User, slug string, doc *legacyDocument) (*models.Article, string, error) {
	html, err := s.renderer.Render(doc.body)
	if err != nil {
		return nil, "", internal(err)
	}

	status := doc.status
	if status == "" {
		status = models.StatusPublished
	}

	article := &models.Article{
		Title:       doc.title,
		Slug:        slug,
		Content:     doc.body,
		HTMLContent: html,
		Excerpt:     excerptOrDefault(doc.excerpt, html),
		Status:      status,
		UserID:      owner.ID,
		AuthorName:  owner.Username,
		PublishedAt: doc.publishedAt,
	}
	if status == models.StatusPublished && article.PublishedAt == nil {
		now := s.now()
		article.PublishedAt = &now
	}

	var warning string
	if doc.category != "" {
		category, err := s.repos.Category.GetByNameOrSlug(ctx, doc.category)
		if err != nil {
			return nil, "", internal(err)
		}
		if category == nil {
			warning = "unknown category " + doc.category + "; imported without one"
		} else {
			article.CategoryID = &category.ID
			article.CategoryName = category.Name
		}
	}
	return article, warning, nil
}

func extensionFor(format resolver.Source) string {
	if format == resolver.SourceHTML {
		return resolver.HTMLExt
	}
	return resolver.MarkdownExt
}
