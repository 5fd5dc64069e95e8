// Package resolver finds the content behind an article identifier by asking
// an ordered list of backends: the database first, then legacy flat files.
package resolver

import (
	"context"
	"fmt"

	"github.com/newsroom-api/internal/apperr"
	"github.com/newsroom-api/internal/models"
	"github.com/rs/zerolog"
)

// Source identifies which backend produced a Content
type Source string

const (
	SourceDatabase Source = "database"
	SourceMarkdown Source = "markdown"
	SourceHTML     Source = "html"
)

// Content is a resolved article ready to be served
type Content struct {
	Identifier string
	Title      string
	Source     Source
	// HTML is rendered markup for database and Markdown sources, and the
	// untouched file bytes for the HTML source
	HTML []byte
	// Article is set only for database content
	Article *models.Article
}

// Raw reports whether HTML must be served byte for byte without templating
func (c *Content) Raw() bool {
	return c.Source == SourceHTML
}

// Backend is one place an article may live. TryResolve returns (nil, nil)
// when the identifier is unknown to it; any error stops resolution.
type Backend interface {
	Name() string
	TryResolve(ctx context.Context, identifier string, viewer *models.User) (*Content, error)
}

// Resolver asks backends in order and returns the first hit
type Resolver struct {
	backends []Backend
	log      zerolog.Logger
}

// New creates a Resolver over backends in priority order
func New(log zerolog.Logger, backends ...Backend) *Resolver {
	return &Resolver{
		backends: backends,
		log:      log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns the content for identifier. viewer may be nil.
func (r *Resolver) Resolve(ctx context.Context, identifier string, viewer *models.User) (*Content, error) {
	for _, b := range r.backends {
		c, err := b.TryResolve(ctx, identifier, viewer)
		if err != nil {
			if _, ok := apperr.As(err); ok {
				return nil, err
			}
			return nil, apperr.Internal(fmt.Errorf("%s backend: %w", b.Name(), err))
		}
		if c != nil {
			r.log.Debug().
				Str("identifier", identifier).
				Str("source", string(c.Source)).
				Msg("Article resolved")
			return c, nil
		}
	}
	return nil, apperr.NotFound("article not found")
}
