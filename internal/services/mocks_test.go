package services

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/motopark/api/internal/models"
	"github.com/stwalsh4118/motopark/api/internal/storage"
)

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user models.NewUser) (*models.User, error) {
	args := m.Called(ctx, user)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

// MockTokenIssuer is a mock implementation of TokenIssuer for testing
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(id, email string, isAnonymous, isAdmin bool) (string, error) {
	args := m.Called(id, email, isAnonymous, isAdmin)
	return args.String(0), args.Error(1)
}

// MockZoneRepository is a mock implementation of ZoneRepository for testing
type MockZoneRepository struct {
	mock.Mock
}

func (m *MockZoneRepository) FindByID(ctx context.Context, id string) (*models.ParkingZone, error) {
	args := m.Called(ctx, id)
	z, _ := args.Get(0).(*models.ParkingZone)
	return z, args.Error(1)
}

func (m *MockZoneRepository) Create(ctx context.Context, zone models.NewZone) (*models.ParkingZone, error) {
	args := m.Called(ctx, zone)
	z, _ := args.Get(0).(*models.ParkingZone)
	return z, args.Error(1)
}

func (m *MockZoneRepository) Update(ctx context.Context, id string, update models.ZoneUpdate) (*models.ParkingZone, error) {
	args := m.Called(ctx, id, update)
	z, _ := args.Get(0).(*models.ParkingZone)
	return z, args.Error(1)
}

// MockSpatialIndex is a mock implementation of SpatialIndex for testing
type MockSpatialIndex struct {
	mock.Mock
}

func (m *MockSpatialIndex) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]models.ZoneWithDistance, error) {
	args := m.Called(ctx, lat, lng, radiusKm, limit)
	zones, _ := args.Get(0).([]models.ZoneWithDistance)
	return zones, args.Error(1)
}

// MockReportAggregator is a mock implementation of ReportAggregator for testing
type MockReportAggregator struct {
	mock.Mock
}

func (m *MockReportAggregator) Aggregate(ctx context.Context, report models.NewReport) (string, error) {
	args := m.Called(ctx, report)
	return args.String(0), args.Error(1)
}

// MockReportRepository is a mock implementation of ReportRepository for testing
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) FindByID(ctx context.Context, id string) (*models.UserReport, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.UserReport)
	return r, args.Error(1)
}

func (m *MockReportRepository) FindOwned(ctx context.Context, id, userID string) (*models.UserReport, error) {
	args := m.Called(ctx, id, userID)
	r, _ := args.Get(0).(*models.UserReport)
	return r, args.Error(1)
}

func (m *MockReportRepository) ListByZone(ctx context.Context, spotID string, hours int) ([]models.ZoneReport, error) {
	args := m.Called(ctx, spotID, hours)
	r, _ := args.Get(0).([]models.ZoneReport)
	return r, args.Error(1)
}

func (m *MockReportRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.ReportWithZone, error) {
	args := m.Called(ctx, userID, limit, offset)
	r, _ := args.Get(0).([]models.ReportWithZone)
	return r, args.Error(1)
}

// MockImageRepository is a mock implementation of ImageRepository for testing
type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Create(ctx context.Context, reportID, imageURL, filePath string) (*models.ReportImage, error) {
	args := m.Called(ctx, reportID, imageURL, filePath)
	img, _ := args.Get(0).(*models.ReportImage)
	return img, args.Error(1)
}

// MockFileStore is a mock implementation of FileStore for testing
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(r io.Reader, originalName string) (*storage.StoredFile, error) {
	args := m.Called(r, originalName)
	f, _ := args.Get(0).(*storage.StoredFile)
	return f, args.Error(1)
}

func (m *MockFileStore) Remove(filename string) error {
	return m.Called(filename).Error(0)
}
