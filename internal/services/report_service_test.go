package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apierrors "github.com/stwalsh4118/motopark/api/internal/errors"
	"github.com/stwalsh4118/motopark/api/internal/logger"
	"github.com/stwalsh4118/motopark/api/internal/metrics"
	"github.com/stwalsh4118/motopark/api/internal/models"
	"github.com/stwalsh4118/motopark/api/internal/storage"
)

type reportMocks struct {
	aggregator *MockReportAggregator
	reports    *MockReportRepository
	images     *MockImageRepository
	files      *MockFileStore
}

func newTestReportService() (ReportService, reportMocks) {
	m := reportMocks{
		aggregator: new(MockReportAggregator),
		reports:    new(MockReportRepository),
		images:     new(MockImageRepository),
		files:      new(MockFileStore),
	}
	return NewReportService(m.aggregator, m.reports, m.images, m.files, logger.Nop()), m
}

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }

func TestCreateReport_Success(t *testing.T) {
	svc, m := newTestReportService()
	ctx := context.Background()

	input := models.NewReport{
		SpotID:        "z1",
		UserID:        "u1",
		ReportedCount: 4,
		UserLatitude:  floatPtr(10.7),
		UserLongitude: floatPtr(106.6),
	}
	stored := &models.UserReport{ID: "r1", SpotID: "z1", UserID: "u1", ReportedCount: 4, Timestamp: time.Now()}
	m.aggregator.On("Aggregate", ctx, input).Return("r1", nil)
	m.reports.On("FindByID", ctx, "r1").Return(stored, nil)

	before := testutil.ToFloat64(metrics.ReportsCreated)
	report, err := svc.CreateReport(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, stored, report)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ReportsCreated))
	m.aggregator.AssertExpectations(t)
}

func TestCreateReport_UnknownZone(t *testing.T) {
	svc, m := newTestReportService()
	ctx := context.Background()
	input := models.NewReport{SpotID: "missing", UserID: "u1", ReportedCount: 1}
	m.aggregator.On("Aggregate", ctx, input).Return("", &pgconn.PgError{Code: "P0002"})

	_, err := svc.CreateReport(ctx, input)

	assert.Equal(t, apierrors.KindNotFound, apierrors.Classify(err).Kind)
	m.reports.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestCreateReport_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input models.NewReport
	}{
		{name: "negative count", input: models.NewReport{SpotID: "z1", UserID: "u1", ReportedCount: -1}},
		{name: "latitude without longitude", input: models.NewReport{SpotID: "z1", UserID: "u1", UserLatitude: floatPtr(1)}},
		{name: "location out of range", input: models.NewReport{SpotID: "z1", UserID: "u1", UserLatitude: floatPtr(95), UserLongitude: floatPtr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestReportService()

			_, err := svc.CreateReport(context.Background(), tt.input)

			requireKind(t, err, apierrors.KindBadRequest)
			m.aggregator.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
		})
	}
}

func TestZoneReports(t *testing.T) {
	ctx := context.Background()

	t.Run("default window", func(t *testing.T) {
		svc, m := newTestReportService()
		m.reports.On("ListByZone", ctx, "z1", DefaultReportHours).Return([]models.ZoneReport{{Email: "a@b.c"}}, nil)

		reports, err := svc.ZoneReports(ctx, "z1", nil)

		require.NoError(t, err)
		assert.Len(t, reports, 1)
	})

	t.Run("explicit window", func(t *testing.T) {
		svc, m := newTestReportService()
		m.reports.On("ListByZone", ctx, "z1", 6).Return([]models.ZoneReport{}, nil)

		_, err := svc.ZoneReports(ctx, "z1", intPtr(6))

		require.NoError(t, err)
		m.reports.AssertExpectations(t)
	})

	for _, hours := range []int{0, -1, MaxReportHours + 1} {
		t.Run(fmt.Sprintf("window %d rejected", hours), func(t *testing.T) {
			svc, m := newTestReportService()

			_, err := svc.ZoneReports(ctx, "z1", intPtr(hours))

			requireKind(t, err, apierrors.KindBadRequest)
			m.reports.AssertNotCalled(t, "ListByZone", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestMyReports(t *testing.T) {
	ctx := context.Background()

	t.Run("default page", func(t *testing.T) {
		svc, m := newTestReportService()
		m.reports.On("ListByUser", ctx, "u1", DefaultReportLimit, 0).Return([]models.ReportWithZone{}, nil)

		reports, err := svc.MyReports(ctx, "u1", nil, 0)

		require.NoError(t, err)
		assert.Empty(t, reports)
		m.reports.AssertExpectations(t)
	})

	t.Run("explicit page", func(t *testing.T) {
		svc, m := newTestReportService()
		m.reports.On("ListByUser", ctx, "u1", 10, 20).Return([]models.ReportWithZone{}, nil)

		_, err := svc.MyReports(ctx, "u1", intPtr(10), 20)

		require.NoError(t, err)
		m.reports.AssertExpectations(t)
	})

	t.Run("negative offset", func(t *testing.T) {
		svc, _ := newTestReportService()
		_, err := svc.MyReports(ctx, "u1", intPtr(10), -1)
		requireKind(t, err, apierrors.KindBadRequest)
	})

	t.Run("limit too large", func(t *testing.T) {
		svc, _ := newTestReportService()
		_, err := svc.MyReports(ctx, "u1", intPtr(MaxReportLimit+1), 0)
		requireKind(t, err, apierrors.KindBadRequest)
	})

	t.Run("zero limit", func(t *testing.T) {
		svc, m := newTestReportService()
		_, err := svc.MyReports(ctx, "u1", intPtr(0), 0)
		requireKind(t, err, apierrors.KindBadRequest)
		m.reports.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAttachImage_Success(t *testing.T) {
	svc, m := newTestReportService()
	ctx := context.Background()
	body := strings.NewReader("png bytes")

	stored := &storage.StoredFile{
		Filename:    "abc.png",
		Path:        "/srv/uploads/abc.png",
		URL:         "/uploads/abc.png",
		ContentType: "image/png",
		Size:        9,
	}
	image := &models.ReportImage{ID: "i1", ReportID: "r1", ImageURL: stored.URL}

	m.reports.On("FindOwned", ctx, "r1", "u1").Return(&models.UserReport{ID: "r1"}, nil)
	m.files.On("Save", body, "photo.png").Return(stored, nil)
	m.images.On("Create", ctx, "r1", "/uploads/abc.png", "/srv/uploads/abc.png").Return(image, nil)

	before := testutil.ToFloat64(metrics.ImagesUploaded)
	got, err := svc.AttachImage(ctx, "r1", "u1", Upload{Body: body, Filename: "photo.png"})

	require.NoError(t, err)
	assert.Equal(t, image, got)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ImagesUploaded))
	m.files.AssertNotCalled(t, "Remove", mock.Anything)
}

func TestAttachImage_NotOwned(t *testing.T) {
	svc, m := newTestReportService()
	ctx := context.Background()
	m.reports.On("FindOwned", ctx, "r1", "intruder").Return(nil, nil)

	_, err := svc.AttachImage(ctx, "r1", "intruder", Upload{Body: strings.NewReader("x"), Filename: "a.png"})

	requireKind(t, err, apierrors.KindNotFound)
	assert.Equal(t, ErrReportNotFound.Message, err.Error())
	m.files.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAttachImage_StorageErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "not an image", err: storage.ErrNotImage, message: "Only image files are allowed"},
		{name: "empty file", err: storage.ErrEmpty, message: "No image file provided"},
		{name: "too large", err: &storage.SizeError{Limit: 5 * 1024 * 1024}, message: "File too large. Maximum size is 5 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestReportService()
			ctx := context.Background()
			m.reports.On("FindOwned", ctx, "r1", "u1").Return(&models.UserReport{ID: "r1"}, nil)
			m.files.On("Save", mock.Anything, "a.bin").Return(nil, tt.err)

			_, err := svc.AttachImage(ctx, "r1", "u1", Upload{Body: strings.NewReader("x"), Filename: "a.bin"})

			requireKind(t, err, apierrors.KindUpload)
			var appErr *apierrors.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.message, appErr.Message)
			m.images.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAttachImage_RemovesFileWhenInsertFails(t *testing.T) {
	svc, m := newTestReportService()
	ctx := context.Background()
	stored := &storage.StoredFile{Filename: "abc.png", Path: "/srv/uploads/abc.png", URL: "/uploads/abc.png"}

	m.reports.On("FindOwned", ctx, "r1", "u1").Return(&models.UserReport{ID: "r1"}, nil)
	m.files.On("Save", mock.Anything, "a.png").Return(stored, nil)
	m.images.On("Create", ctx, "r1", stored.URL, stored.Path).Return(nil, errors.New("insert failed"))
	m.files.On("Remove", "abc.png").Return(nil)

	_, err := svc.AttachImage(ctx, "r1", "u1", Upload{Body: strings.NewReader("x"), Filename: "a.png"})

	assert.EqualError(t, err, "insert failed")
	m.files.AssertExpectations(t)
}
