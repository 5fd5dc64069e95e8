package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/api"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/mocks"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testPassword = "Passw0rd!"
)

type testServer struct {
	router     *gin.Engine
	legacyDir  string
	mockImport *mocks.MockImportService
	mockExport *mocks.MockExportService
}

func setupTestRouter(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Auth: config.AuthConfig{
			JWTSecret:  testSecret,
			AccessTTL:  2 * time.Hour,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Legacy: config.LegacyConfig{Dir: t.TempDir()},
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     cfg.Auth.JWTSecret,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	services := service.NewServices(mocks.NewRepositories(), tokens, cfg, zerolog.Nop())
	mockImport := mocks.NewMockImportService()
	mockExport := mocks.NewMockExportService()
	services.Import = mockImport
	services.Export = mockExport

	return &testServer{
		router:     api.NewRouter(services, cfg, zerolog.Nop()),
		legacyDir:  cfg.Legacy.Dir,
		mockImport: mockImport,
		mockExport: mockExport,
	}
}

func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type authBody struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

func (s *testServer) register(t *testing.T, username string) authBody {
	t.Helper()
	w := s.do("POST", "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, w.Code, w.Body.String())
	}
	var res authBody
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return res
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body, got %q", w.Body.String())
	}
	if body.Error == "" {
		t.Errorf("error message should not be empty")
	}
	return body.Code
}

func TestHealthEndpoint(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do("GET", "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if w.Header().Get(api.RequestIDHeader) == "" {
		t.Error("Expected a request id header")
	}
}

func TestRegisterSetsCookies(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do("POST", "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": testPassword,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password_hash") {
		t.Error("password hash must not be serialized")
	}

	cookies := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c
	}
	for _, name := range []string{auth.AccessCookie, auth.RefreshCookie} {
		c, ok := cookies[name]
		if !ok {
			t.Fatalf("missing cookie %s", name)
		}
		if !c.HttpOnly {
			t.Errorf("cookie %s should be HttpOnly", name)
		}
		if c.SameSite != http.SameSiteLaxMode {
			t.Errorf("cookie %s should be SameSite=Lax", name)
		}
	}
}

func TestRegisterDuplicate(t *testing.T) {
	s := setupTestRouter(t)
	s.register(t, "alice")

	w := s.do("POST", "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "again@example.com",
		"password": testPassword,
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "DUPLICATE" {
		t.Errorf("Expected DUPLICATE, got %s", code)
	}
}

func TestLoginAndMe(t *testing.T) {
	s := setupTestRouter(t)
	s.register(t, "alice")

	w := s.do("POST", "/api/auth/login", map[string]interface{}{
		"username": "alice",
		"password": testPassword,
		"remember": true,
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var login authBody
	json.Unmarshal(w.Body.Bytes(), &login)

	for _, c := range w.Result().Cookies() {
		if c.Name == auth.RefreshCookie && c.MaxAge != int((7*24*time.Hour)/time.Second) {
			t.Errorf("remembered refresh cookie should last 7 days, got max-age %d", c.MaxAge)
		}
	}

	w = s.do("GET", "/api/auth/me", nil, login.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var me models.User
	json.Unmarshal(w.Body.Bytes(), &me)
	if me.Username != "alice" || me.Role != models.RoleAdmin {
		t.Errorf("unexpected user %+v", me)
	}

	w = s.do("POST", "/api/auth/login", map[string]string{"username": "alice", "password": "Wrong123!"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad password, got %d", w.Code)
	}
}

func TestMeWithCookie(t *testing.T) {
	s := setupTestRouter(t)
	alice := s.register(t, "alice")

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: alice.AccessToken})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with cookie auth, got %d", w.Code)
	}
}

func TestGuards(t *testing.T) {
	s := setupTestRouter(t)
	s.register(t, "alice")
	bob := s.register(t, "bob")
	carol := s.register(t, "carol")

	w := s.do("POST", "/api/articles", map[string]string{"title": "Secret", "content": "draft"}, bob.AccessToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create draft: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	tests := []struct {
		name           string
		path           string
		token          string
		expectedStatus int
		expectedCode   string
	}{
		{"no token", "/api/auth/me", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"garbage token", "/api/auth/me", "abc.def.ghi", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"refresh as access", "/api/auth/me", bob.RefreshToken, http.StatusUnauthorized, "INVALID_TOKEN_TYPE"},
		{"admin route as user", "/api/admin/dashboard", bob.AccessToken, http.StatusForbidden, "ADMIN_REQUIRED"},
		{"admin route anonymous", "/api/admin/dashboard", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"draft anonymous", "/api/articles/secret", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"draft garbage token", "/api/articles/secret", "abc.def.ghi", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"draft refresh as access", "/api/articles/secret", bob.RefreshToken, http.StatusUnauthorized, "INVALID_TOKEN_TYPE"},
		{"draft other user", "/api/articles/secret", carol.AccessToken, http.StatusForbidden, "ADMIN_REQUIRED"},
		{"news page garbage token", "/news/secret", "abc.def.ghi", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"news page refresh as access", "/news/secret", bob.RefreshToken, http.StatusUnauthorized, "INVALID_TOKEN_TYPE"},
		{"list drafts garbage token", "/api/articles?status=draft", "abc.def.ghi", http.StatusUnauthorized, "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do("GET", tt.path, nil, tt.token)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if code := errorCode(t, w); code != tt.expectedCode {
				t.Errorf("Expected code %s, got %s", tt.expectedCode, code)
			}
		})
	}
}

func TestArticleFlow(t *testing.T) {
	s := setupTestRouter(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	w := s.do("POST", "/api/articles", map[string]string{"title": "Hello World", "content": "# Hi"}, bob.AccessToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.Article
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.Slug != "hello-world" || created.Status != models.StatusDraft {
		t.Fatalf("unexpected article %+v", created)
	}

	w = s.do("GET", "/api/articles/hello-world", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("draft should need a token, got %d", w.Code)
	}

	w = s.do("GET", "/api/articles/hello-world", nil, alice.AccessToken)
	if w.Code != http.StatusOK {
		t.Errorf("admin should see drafts, got %d", w.Code)
	}

	w = s.do("POST", "/api/articles/hello-world/publish", nil, alice.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("publish: expected 200, got %d", w.Code)
	}

	w = s.do("GET", "/api/articles/hello-world", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var got map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &got)
	if got["source"] != "database" {
		t.Errorf("Expected database source, got %v", got["source"])
	}
	if got["view_count"].(float64) != 2 {
		t.Errorf("Expected view_count 2 after two reads, got %v", got["view_count"])
	}

	w = s.do("GET", "/api/articles", nil, "")
	var page models.ArticlePage
	json.Unmarshal(w.Body.Bytes(), &page)
	if page.Total != 1 {
		t.Errorf("Expected 1 published article, got %d", page.Total)
	}

	w = s.do("POST", "/api/articles", map[string]string{"title": "Hello world!", "content": "again"}, bob.AccessToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("slug collision: expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "SLUG_CONFLICT" {
		t.Errorf("Expected SLUG_CONFLICT, got %s", code)
	}

	w = s.do("DELETE", "/api/articles/hello-world", nil, bob.AccessToken)
	if w.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", w.Code)
	}
	w = s.do("GET", "/api/articles/hello-world", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestLegacyHTMLIsServedRaw(t *testing.T) {
	s := setupTestRouter(t)
	raw := "<html><body><p>old &amp; untouched</p></body></html>\n"
	if err := os.WriteFile(filepath.Join(s.legacyDir, "old.html"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	w := s.do("GET", "/api/articles/old", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Body.String() != raw {
		t.Errorf("legacy HTML must be byte-identical, got %q", w.Body.String())
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Expected text/html, got %s", w.Header().Get("Content-Type"))
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("Expected an ETag")
	}
	req := httptest.NewRequest("GET", "/api/articles/old", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("Expected 304, got %d", w.Code)
	}
}

func TestNewsPage(t *testing.T) {
	s := setupTestRouter(t)
	if err := os.WriteFile(filepath.Join(s.legacyDir, "notes.md"), []byte("plain paragraph"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := s.do("GET", "/news/notes", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<h1>notes</h1>") {
		t.Errorf("page should contain the fallback heading, got %s", body)
	}
	if !strings.Contains(body, "<title>notes</title>") {
		t.Errorf("page should carry the title, got %s", body)
	}

	w = s.do("GET", "/api/legacy", nil, "")
	if !strings.Contains(w.Body.String(), `"identifier":"notes"`) {
		t.Errorf("legacy index should list notes, got %s", w.Body.String())
	}

	w = s.do("GET", "/news/..%2Fetc%2Fpasswd", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for traversal attempt, got %d", w.Code)
	}
}

func TestCategoryDeleteBlocked(t *testing.T) {
	s := setupTestRouter(t)
	alice := s.register(t, "alice")

	w := s.do("POST", "/api/categories", map[string]string{"name": "World"}, alice.AccessToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var category models.Category
	json.Unmarshal(w.Body.Bytes(), &category)

	w = s.do("POST", "/api/articles", map[string]interface{}{
		"title": "Filed", "content": "x", "category_id": category.ID,
	}, alice.AccessToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = s.do("DELETE", "/api/categories/1", nil, alice.AccessToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "CATEGORY_IN_USE" {
		t.Errorf("Expected CATEGORY_IN_USE, got %s", code)
	}
}

func TestAdminSelfDelete(t *testing.T) {
	s := setupTestRouter(t)
	alice := s.register(t, "alice")

	w := s.do("DELETE", "/api/admin/users/1", nil, alice.AccessToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}

	w = s.do("POST", "/api/admin/users/1/toggle-active", nil, alice.AccessToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	s := setupTestRouter(t)
	alice := s.register(t, "alice")

	req := httptest.NewRequest("POST", "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookie, Value: alice.RefreshToken})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = s.do("POST", "/api/auth/refresh", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without refresh token, got %d", w.Code)
	}

	w = s.do("POST", "/api/auth/refresh", map[string]string{"refresh_token": alice.RefreshToken}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a body token without the cookie, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "MISSING_TOKEN" {
		t.Errorf("Expected MISSING_TOKEN, got %s", code)
	}

	w = s.do("POST", "/api/auth/logout", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Errorf("cookie %s should be expired on logout", c.Name)
		}
	}
}

func TestExportStream_ValidationErrors(t *testing.T) {
	s := setupTestRouter(t)
	alice := s.register(t, "alice")

	tests := []struct {
		name           string
		url            string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "missing resource",
			url:            "/api/admin/export",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "resource parameter is required",
		},
		{
			name:           "invalid resource",
			url:            "/api/admin/export?resource=comments",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "resource must be one of",
		},
		{
			name:           "invalid format",
			url:            "/api/admin/export?resource=users&format=xml",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "format must be one of",
		},
		{
			name:           "csv not supported for articles",
			url:            "/api/admin/export?resource=articles&format=csv",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "CSV format only supported for users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do("GET", tt.url, nil, alice.AccessToken)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedError != "" && !bytes.Contains(w.Body.Bytes(), []byte(tt.expectedError)) {
				t.Errorf("Expected error '%s' in response, got: %s", tt.expectedError, w.Body.String())
			}
		})
	}
}

func TestExportStream_CallsService(t *testing.T) {
	s := setupTestRouter(t)
	alice := s.register(t, "alice")

	var gotFormat string
	s.mockExport.Counts["users"] = 1
	s.mockExport.StreamUsersFunc = func(ctx context.Context, w http.ResponseWriter, format string) error {
		gotFormat = format
		w.Header().Set("Content-Type", "text/csv")
		_, err := w.Write([]byte("id,username\n1,alice\n"))
		return err
	}

	w := s.do("GET", "/api/admin/export?resource=users&format=csv", nil, alice.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotFormat != "csv" {
		t.Errorf("Expected csv format, got %s", gotFormat)
	}
	if got := w.Header().Get(api.TotalCountHeader); got != "1" {
		t.Errorf("Expected %s 1, got %q", api.TotalCountHeader, got)
	}
	if !strings.Contains(w.Body.String(), "1,alice") {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestImportLegacyEndpoint(t *testing.T) {
	s := setupTestRouter(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	s.mockImport.ImportFunc = func(ctx context.Context, ownerID int64) (*models.ImportReport, error) {
		return &models.ImportReport{Scanned: 3, Imported: 2, Skipped: 1}, nil
	}

	w := s.do("POST", "/api/admin/legacy/import", nil, bob.AccessToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-admin, got %d", w.Code)
	}

	w = s.do("POST", "/api/admin/legacy/import", nil, alice.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var report models.ImportReport
	json.Unmarshal(w.Body.Bytes(), &report)
	if report.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", report.Imported)
	}
	if len(s.mockImport.Owners) != 1 || s.mockImport.Owners[0] != alice.User.ID {
		t.Errorf("import should be owned by the caller, got %v", s.mockImport.Owners)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do("OPTIONS", "/api/articles", nil, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Error("CORS should allow the Authorization header")
	}
}
