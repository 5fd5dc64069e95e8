package mocks

import (
	"context"
	"net/http"

	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/service"
)

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	ImportFunc func(ctx context.Context, ownerID int64) (*models.ImportReport, error)
	// Owners records the owner id of every call
	Owners []int64
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{}
}

func (m *MockImportService) ImportLegacy(ctx context.Context, ownerID int64) (*models.ImportReport, error) {
	m.Owners = append(m.Owners, ownerID)
	if m.ImportFunc != nil {
		return m.ImportFunc(ctx, ownerID)
	}
	return &models.ImportReport{}, nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamUsersFunc    func(ctx context.Context, w http.ResponseWriter, format string) error
	StreamArticlesFunc func(ctx context.Context, w http.ResponseWriter, format string) error
	Counts             map[string]int
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: map[string]int{
			"users":    0,
			"articles": 0,
		},
	}
}

func (m *MockExportService) StreamUsers(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamUsersFunc != nil {
		return m.StreamUsersFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamArticlesFunc != nil {
		return m.StreamArticlesFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	return m.Counts[resource], nil
}
