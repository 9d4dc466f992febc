package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/motopark/api/internal/auth"
	apierrors "github.com/stwalsh4118/motopark/api/internal/errors"
	"github.com/stwalsh4118/motopark/api/internal/logger"
	"github.com/stwalsh4118/motopark/api/internal/middleware"
	"github.com/stwalsh4118/motopark/api/internal/models"
	"github.com/stwalsh4118/motopark/api/internal/services"
	"github.com/stwalsh4118/motopark/api/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			panic(err)
		}
	}
}

const (
	testUserID = "7d0c6a51-3f5e-4c5b-9d0e-2b8f4e1a9c11"
	testZoneID = "0b6f1c2e-8a47-4c1d-9f3e-5a2b7c8d9e10"
)

// newTestRouter builds an engine with the error translator. When claims is
// non-nil every request is treated as authenticated with them.
func newTestRouter(claims *auth.Claims) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Nop()))
	router.Use(apierrors.Handler("test"))
	if claims != nil {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ClaimsKey, claims)
			c.Next()
		})
	}
	return router
}

func userClaims() *auth.Claims {
	return &auth.Claims{UserID: testUserID, Email: "rider@example.com"}
}

func doJSON(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorDetail {
	t.Helper()
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

// MockAuthService is a mock implementation of AuthService for testing
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, email, password)
	r, _ := args.Get(0).(*services.AuthResult)
	return r, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, email, password)
	r, _ := args.Get(0).(*services.AuthResult)
	return r, args.Error(1)
}

func (m *MockAuthService) LoginAnonymous(ctx context.Context) (*services.AuthResult, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*services.AuthResult)
	return r, args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAuthService) CreateAdmin(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

// MockParkingService is a mock implementation of ParkingService for testing
type MockParkingService struct {
	mock.Mock
}

func (m *MockParkingService) Nearby(ctx context.Context, q services.NearbyQuery) ([]models.ZoneWithDistance, error) {
	args := m.Called(ctx, q)
	z, _ := args.Get(0).([]models.ZoneWithDistance)
	return z, args.Error(1)
}

func (m *MockParkingService) GetZone(ctx context.Context, id string) (*models.ParkingZone, error) {
	args := m.Called(ctx, id)
	z, _ := args.Get(0).(*models.ParkingZone)
	return z, args.Error(1)
}

func (m *MockParkingService) CreateZone(ctx context.Context, zone models.NewZone) (*models.ParkingZone, error) {
	args := m.Called(ctx, zone)
	z, _ := args.Get(0).(*models.ParkingZone)
	return z, args.Error(1)
}

func (m *MockParkingService) UpdateZone(ctx context.Context, id string, update models.ZoneUpdate) (*models.ParkingZone, error) {
	args := m.Called(ctx, id, update)
	z, _ := args.Get(0).(*models.ParkingZone)
	return z, args.Error(1)
}

// MockReportService is a mock implementation of ReportService for testing
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) CreateReport(ctx context.Context, report models.NewReport) (*models.UserReport, error) {
	args := m.Called(ctx, report)
	r, _ := args.Get(0).(*models.UserReport)
	return r, args.Error(1)
}

func (m *MockReportService) ZoneReports(ctx context.Context, spotID string, hours *int) ([]models.ZoneReport, error) {
	args := m.Called(ctx, spotID, hours)
	r, _ := args.Get(0).([]models.ZoneReport)
	return r, args.Error(1)
}

func (m *MockReportService) MyReports(ctx context.Context, userID string, limit *int, offset int) ([]models.ReportWithZone, error) {
	args := m.Called(ctx, userID, limit, offset)
	r, _ := args.Get(0).([]models.ReportWithZone)
	return r, args.Error(1)
}

func (m *MockReportService) AttachImage(ctx context.Context, reportID, userID string, upload services.Upload) (*models.ReportImage, error) {
	args := m.Called(ctx, reportID, userID, upload)
	img, _ := args.Get(0).(*models.ReportImage)
	return img, args.Error(1)
}
