package mocks

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/repository"
)

// NewRepositories returns a repository set backed by in-memory mocks
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		User:     NewMockUserRepository(),
		Article:  NewMockArticleRepository(),
		Category: NewMockCategoryRepository(),
		Setting:  NewMockSettingRepository(),
	}
}

// MockUserRepository is an in-memory UserRepository. Stored values are
// copied on the way in and out so callers cannot mutate them by accident.
type MockUserRepository struct {
	Users      map[int64]*models.User
	NextID     int64
	CreateFunc func(ctx context.Context, user *models.User) error
	GetErr     error
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[int64]*models.User), NextID: 1}
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	for _, u := range m.Users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = m.NextID
	m.NextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.Users[user.ID] = copyUser(user)
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	if _, ok := m.Users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	m.Users[user.ID] = copyUser(user)
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.Users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Users, id)
	return nil
}

func (m *MockUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, u := range m.Users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Username == username })
}

func (m *MockUserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	if u, err := m.GetByUsername(ctx, login); u != nil || err != nil {
		return u, err
	}
	return m.find(func(u *models.User) bool { return u.Email == login })
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	u, err := m.GetByUsername(ctx, username)
	return u != nil, err
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.find(func(u *models.User) bool { return u.Email == email })
	return u != nil, err
}

func (m *MockUserRepository) sorted() []*models.User {
	users := make([]*models.User, 0, len(m.Users))
	for _, u := range m.Users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return paginate(m.sorted(), limit, offset), nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	return len(m.Users), nil
}

func (m *MockUserRepository) StreamAll(ctx context.Context, callback func(*models.User) error) error {
	for _, u := range m.sorted() {
		if err := callback(u); err != nil {
			return err
		}
	}
	return nil
}

// MockArticleRepository is an in-memory ArticleRepository
type MockArticleRepository struct {
	Articles map[int64]*models.Article
	NextID   int64
	// IncrementCalls counts view count increments
	IncrementCalls int
}

var _ repository.ArticleRepository = (*MockArticleRepository)(nil)

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{Articles: make(map[int64]*models.Article), NextID: 1}
}

func copyArticle(a *models.Article) *models.Article {
	if a == nil {
		return nil
	}
	c := *a
	if a.PublishedAt != nil {
		t := *a.PublishedAt
		c.PublishedAt = &t
	}
	if a.CategoryID != nil {
		id := *a.CategoryID
		c.CategoryID = &id
	}
	return &c
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	for _, a := range m.Articles {
		if a.Slug == article.Slug {
			return repository.ErrDuplicate
		}
	}
	article.ID = m.NextID
	m.NextID++
	article.CreatedAt = time.Now()
	article.UpdatedAt = article.CreatedAt
	m.Articles[article.ID] = copyArticle(article)
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	stored, ok := m.Articles[article.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, a := range m.Articles {
		if a.ID != article.ID && a.Slug == article.Slug {
			return repository.ErrDuplicate
		}
	}
	article.UpdatedAt = time.Now()
	updated := copyArticle(article)
	updated.ViewCount = stored.ViewCount
	m.Articles[article.ID] = updated
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.Articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	return copyArticle(m.Articles[id]), nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	for _, a := range m.Articles {
		if a.Slug == slug {
			return copyArticle(a), nil
		}
	}
	return nil, nil
}

func (m *MockArticleRepository) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	for _, a := range m.Articles {
		if a.Slug == slug && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockArticleRepository) IncrementViewCount(ctx context.Context, id int64) (int64, error) {
	a, ok := m.Articles[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	m.IncrementCalls++
	a.ViewCount++
	return a.ViewCount, nil
}

func (m *MockArticleRepository) matching(filter models.ArticleFilter) []*models.Article {
	search := strings.ToLower(filter.Search)
	var out []*models.Article
	for _, a := range m.Articles {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.CategoryID != nil && (a.CategoryID == nil || *a.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.Title), search) &&
			!strings.Contains(strings.ToLower(a.Content), search) {
			continue
		}
		out = append(out, copyArticle(a))
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].PublishedAt, out[j].PublishedAt
		switch {
		case pi != nil && pj != nil && !pi.Equal(*pj):
			return pi.After(*pj)
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *MockArticleRepository) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, int, error) {
	all := m.matching(filter)
	return paginate(all, filter.Limit, filter.Offset), len(all), nil
}

func (m *MockArticleRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, a := range m.Articles {
		counts[a.Status]++
	}
	return counts, nil
}

func (m *MockArticleRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	return len(m.matching(models.ArticleFilter{CategoryID: &categoryID})), nil
}

func (m *MockArticleRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	return len(m.matching(models.ArticleFilter{UserID: &userID})), nil
}

func (m *MockArticleRepository) Recent(ctx context.Context, limit int) ([]*models.Article, error) {
	all := m.matching(models.ArticleFilter{})
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return paginate(all, limit, 0), nil
}

func (m *MockArticleRepository) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	all := m.matching(models.ArticleFilter{})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	for _, a := range all {
		if err := callback(a); err != nil {
			return err
		}
	}
	return nil
}

// MockCategoryRepository is an in-memory CategoryRepository
type MockCategoryRepository struct {
	Categories map[int64]*models.Category
	NextID     int64
}

var _ repository.CategoryRepository = (*MockCategoryRepository)(nil)

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[int64]*models.Category), NextID: 1}
}

func copyCategory(c *models.Category) *models.Category {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	for _, existing := range m.Categories {
		if existing.Name == c.Name || existing.Slug == c.Slug {
			return repository.ErrDuplicate
		}
	}
	c.ID = m.NextID
	m.NextID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.Categories[c.ID] = copyCategory(c)
	return nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	if _, ok := m.Categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	m.Categories[c.ID] = copyCategory(c)
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.Categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Categories, id)
	return nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	return copyCategory(m.Categories[id]), nil
}

func (m *MockCategoryRepository) GetByNameOrSlug(ctx context.Context, value string) (*models.Category, error) {
	for _, c := range m.Categories {
		if c.Name == value || c.Slug == value {
			return copyCategory(c), nil
		}
	}
	return nil, nil
}

func (m *MockCategoryRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	for _, c := range m.Categories {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCategoryRepository) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	for _, c := range m.Categories {
		if c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	out := make([]*models.Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		out = append(out, copyCategory(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// MockSettingRepository is an in-memory SettingRepository
type MockSettingRepository struct {
	Settings map[string]*models.Setting
	NextID   int64
}

var _ repository.SettingRepository = (*MockSettingRepository)(nil)

func NewMockSettingRepository() *MockSettingRepository {
	return &MockSettingRepository{Settings: make(map[string]*models.Setting), NextID: 1}
}

func (m *MockSettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	s, ok := m.Settings[key]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MockSettingRepository) Set(ctx context.Context, key, value string) (*models.Setting, error) {
	now := time.Now()
	s, ok := m.Settings[key]
	if !ok {
		s = &models.Setting{ID: m.NextID, Key: key, CreatedAt: now}
		m.NextID++
		m.Settings[key] = s
	}
	s.Value = value
	s.UpdatedAt = now
	cp := *s
	return &cp, nil
}

func (m *MockSettingRepository) List(ctx context.Context) ([]*models.Setting, error) {
	out := make([]*models.Setting, 0, len(m.Settings))
	for _, s := range m.Settings {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
