package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/models"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.-]+$`)
)

// Field length limits, mirroring the column sizes
const (
	MaxUsernameLength     = 80
	MaxEmailLength        = 120
	MaxTitleLength        = 200
	MaxSlugLength         = 200
	MaxExcerptLength      = 500
	MaxCoverImageLength   = 255
	MaxCategoryNameLength = 50
)

// dateLayouts are accepted for front matter dates
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors is a list of validation errors
type Errors []ValidationError

// First returns the first error or nil
func (e Errors) First() *ValidationError {
	if len(e) == 0 {
		return nil
	}
	return &e[0]
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

// ValidateRegistration checks a registration payload
func ValidateRegistration(req *models.RegisterRequest) Errors {
	var errs Errors

	username := strings.TrimSpace(req.Username)
	switch {
	case username == "":
		errs = append(errs, ValidationError{Field: "username", Message: "username is required"})
	case tooLong(username, MaxUsernameLength):
		errs = append(errs, ValidationError{Field: "username", Message: fmt.Sprintf("username must be at most %d characters", MaxUsernameLength)})
	case !usernameRegex.MatchString(username):
		errs = append(errs, ValidationError{Field: "username", Message: "username may contain letters, digits, '_', '.' and '-' only", Value: username})
	}

	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		errs = append(errs, ValidationError{Field: "email", Message: "email is required"})
	case tooLong(email, MaxEmailLength):
		errs = append(errs, ValidationError{Field: "email", Message: fmt.Sprintf("email must be at most %d characters", MaxEmailLength)})
	case !emailRegex.MatchString(email):
		errs = append(errs, ValidationError{Field: "email", Message: "invalid email format", Value: email})
	}

	if req.Password == "" {
		errs = append(errs, ValidationError{Field: "password", Message: "password is required"})
	} else if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		errs = append(errs, ValidationError{Field: "password", Message: err.Error()})
	}

	return errs
}

// ValidateArticleCreate checks a new article payload
func ValidateArticleCreate(req *models.CreateArticleRequest) Errors {
	var errs Errors

	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, ValidationError{Field: "title", Message: "title is required"})
	} else if tooLong(req.Title, MaxTitleLength) {
		errs = append(errs, ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLength)})
	}

	if strings.TrimSpace(req.Content) == "" {
		errs = append(errs, ValidationError{Field: "content", Message: "content is required"})
	}

	errs = append(errs, validateArticleCommon(req.Slug, req.Excerpt, req.CoverImage, req.Status)...)
	return errs
}

// ValidateArticleUpdate checks the fields present in a partial update
func ValidateArticleUpdate(req *models.UpdateArticleRequest) Errors {
	var errs Errors

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			errs = append(errs, ValidationError{Field: "title", Message: "title cannot be empty"})
		} else if tooLong(*req.Title, MaxTitleLength) {
			errs = append(errs, ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLength)})
		}
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) == "" {
		errs = append(errs, ValidationError{Field: "content", Message: "content cannot be empty"})
	}

	errs = append(errs, validateArticleCommon(
		deref(req.Slug), deref(req.Excerpt), deref(req.CoverImage), deref(req.Status),
	)...)
	return errs
}

func validateArticleCommon(slug, excerpt, coverImage, status string) Errors {
	var errs Errors
	if tooLong(slug, MaxSlugLength) {
		errs = append(errs, ValidationError{Field: "slug", Message: fmt.Sprintf("slug must be at most %d characters", MaxSlugLength)})
	}
	if tooLong(excerpt, MaxExcerptLength) {
		errs = append(errs, ValidationError{Field: "excerpt", Message: fmt.Sprintf("excerpt must be at most %d characters", MaxExcerptLength)})
	}
	if tooLong(coverImage, MaxCoverImageLength) {
		errs = append(errs, ValidationError{Field: "cover_image", Message: fmt.Sprintf("cover_image must be at most %d characters", MaxCoverImageLength)})
	}
	if status != "" && !models.ValidStatuses[status] {
		errs = append(errs, ValidationError{
			Field:   "status",
			Message: "invalid status, must be one of: draft, published, archived",
			Value:   status,
		})
	}
	return errs
}

// ValidateCategory checks a category payload. On create, name is required.
func ValidateCategory(req *models.CategoryRequest, create bool) Errors {
	var errs Errors

	if req.Name == nil {
		if create {
			errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
		}
	} else if strings.TrimSpace(*req.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name cannot be empty"})
	} else if tooLong(*req.Name, MaxCategoryNameLength) {
		errs = append(errs, ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", MaxCategoryNameLength)})
	}

	if req.Slug != nil && tooLong(*req.Slug, MaxCategoryNameLength) {
		errs = append(errs, ValidationError{Field: "slug", Message: fmt.Sprintf("slug must be at most %d characters", MaxCategoryNameLength)})
	}
	return errs
}

// ValidateUserUpdate checks an admin user update
func ValidateUserUpdate(req *models.UpdateUserRequest) Errors {
	var errs Errors
	if req.Role != nil && !models.ValidRoles[*req.Role] {
		errs = append(errs, ValidationError{
			Field:   "role",
			Message: "invalid role, must be one of: admin, user",
			Value:   *req.Role,
		})
	}
	return errs
}

// ValidateFrontMatter checks the header of a legacy Markdown file
func ValidateFrontMatter(fm *models.FrontMatter) Errors {
	var errs Errors
	if tooLong(fm.Title, MaxTitleLength) {
		errs = append(errs, ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLength)})
	}
	if tooLong(fm.Excerpt, MaxExcerptLength) {
		errs = append(errs, ValidationError{Field: "excerpt", Message: fmt.Sprintf("excerpt must be at most %d characters", MaxExcerptLength)})
	}
	if fm.Status != "" && !models.ValidStatuses[fm.Status] {
		errs = append(errs, ValidationError{Field: "status", Message: "invalid status", Value: fm.Status})
	}
	if fm.Date != "" {
		if _, err := ParseDate(fm.Date); err != nil {
			errs = append(errs, ValidationError{Field: "date", Message: "unrecognized date format", Value: fm.Date})
		}
	}
	return errs
}

// ValidateImportedArticle checks the fields an import derives from a legacy
// file (heading, <title>, file name) against the column limits
func ValidateImportedArticle(a *models.Article) Errors {
	var errs Errors
	if tooLong(a.Title, MaxTitleLength) {
		errs = append(errs, ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLength)})
	}
	if tooLong(a.Slug, MaxSlugLength) {
		errs = append(errs, ValidationError{Field: "slug", Message: fmt.Sprintf("slug must be at most %d characters", MaxSlugLength)})
	}
	if tooLong(a.Excerpt, MaxExcerptLength) {
		errs = append(errs, ValidationError{Field: "excerpt", Message: fmt.Sprintf("excerpt must be at most %d characters", MaxExcerptLength)})
	}
	return errs
}

// ParseDate accepts RFC 3339 and a few common date layouts
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
