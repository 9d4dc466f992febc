package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	apierrors "github.com/stwalsh4118/motopark/api/internal/errors"
	"github.com/stwalsh4118/motopark/api/internal/logger"
	"github.com/stwalsh4118/motopark/api/internal/metrics"
	"github.com/stwalsh4118/motopark/api/internal/models"
	"github.com/stwalsh4118/motopark/api/internal/repository"
	"github.com/stwalsh4118/motopark/api/internal/storage"
)

// Report listing bounds
const (
	DefaultReportHours = 24
	MaxReportHours     = 720
	DefaultReportLimit = 50
	MaxReportLimit     = 100
)

// Service-level errors
var (
	ErrReportNotFound = apierrors.New(apierrors.KindNotFound,
		"Report not found or you do not have permission to add images to this report")
	ErrNotImage = apierrors.New(apierrors.KindUpload, "Only image files are allowed")
)

// FileStore persists uploaded files.
type FileStore interface {
	Save(r io.Reader, originalName string) (*storage.StoredFile, error)
	Remove(filename string) error
}


// Upload is an image file received for a report.
type Upload struct {
	Body     io.Reader
	Filename string
}

// ReportService defines occupancy report operations.
type ReportService interface {
	// CreateReport runs the report through the aggregator and returns the
	// stored row.
	CreateReport(ctx context.Context, report models.NewReport) (*models.UserReport, error)

	// ZoneReports lists the zone's reports from the last hours hours,
	// newest first. Nil hours means the default window.
	ZoneReports(ctx context.Context, spotID string, hours *int) ([]models.ZoneReport, error)

	// MyReports pages through the user's report history, newest first.
	// Nil limit means the default page size.
	MyReports(ctx context.Context, userID string, limit *int, offset int) ([]models.ReportWithZone, error)

	// AttachImage stores an image for a report the user owns. Ownership is
	// checked before anything is written.
	AttachImage(ctx context.Context, reportID, userID string, upload Upload) (*models.ReportImage, error)
}

type reportService struct {
	aggregator repository.ReportAggregator
	reports    repository.ReportRepository
	images     repository.ImageRepository
	files      FileStore
	log        *logger.Logger
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	aggregator repository.ReportAggregator,
	reports repository.ReportRepository,
	images repository.ImageRepository,
	files FileStore,
	log *logger.Logger,
) ReportService {
	return &reportService{
		aggregator: aggregator,
		reports:    reports,
		images:     images,
		files:      files,
		log:        log,
	}
}

func (s *reportService) CreateReport(ctx context.Context, report models.NewReport) (*models.UserReport, error) {
	if report.ReportedCount < 0 {
		return nil, apierrors.New(apierrors.KindBadRequest, "reportedCount must be non-negative")
	}
	if report.UserLatitude != nil || report.UserLongitude != nil {
		if report.UserLatitude == nil || report.UserLongitude == nil {
			return nil, apierrors.New(apierrors.KindBadRequest, "userLatitude and userLongitude must be provided together")
		}
		if err := (models.Coordinate{Lat: *report.UserLatitude, Lng: *report.UserLongitude}).Validate(); err != nil {
			return nil, badRequest(err)
		}
	}

	id, err := s.aggregator.Aggregate(ctx, report)
	if err != nil {
		return nil, err
	}

	created, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("report %s missing after aggregation", id)
	}

	metrics.ReportsCreated.Inc()
	s.log.Info("Report created", map[string]interface{}{
		"report_id":      created.ID,
		"spot_id":        created.SpotID,
		"user_id":        created.UserID,
		"reported_count": created.ReportedCount,
	})
	return created, nil
}

func (s *reportService) ZoneReports(ctx context.Context, spotID string, hours *int) ([]models.ZoneReport, error) {
	window := DefaultReportHours
	if hours != nil {
		window = *hours
	}
	if window < 1 || window > MaxReportHours {
		return nil, apierrors.New(apierrors.KindBadRequest,
			fmt.Sprintf("hours must be between 1 and %d", MaxReportHours))
	}
	return s.reports.ListByZone(ctx, spotID, window)
}

func (s *reportService) MyReports(ctx context.Context, userID string, limit *int, offset int) ([]models.ReportWithZone, error) {
	pageSize := DefaultReportLimit
	if limit != nil {
		pageSize = *limit
	}
	if pageSize < 1 || pageSize > MaxReportLimit {
		return nil, apierrors.New(apierrors.KindBadRequest,
			fmt.Sprintf("limit must be between 1 and %d", MaxReportLimit))
	}
	if offset < 0 {
		return nil, apierrors.New(apierrors.KindBadRequest, "offset must be non-negative")
	}
	return s.reports.ListByUser(ctx, userID, pageSize, offset)
}

func (s *reportService) AttachImage(ctx context.Context, reportID, userID string, upload Upload) (*models.ReportImage, error) {
	owned, err := s.reports.FindOwned(ctx, reportID, userID)
	if err != nil {
		return nil, err
	}
	if owned == nil {
		return nil, ErrReportNotFound
	}

	stored, err := s.files.Save(upload.Body, upload.Filename)
	if err != nil {
		var sizeErr *storage.SizeError
		switch {
		case errors.As(err, &sizeErr):
			return nil, apierrors.FileTooLarge(sizeErr.Limit, err)
		case errors.Is(err, storage.ErrNotImage):
			return nil, ErrNotImage
		case errors.Is(err, storage.ErrEmpty):
			return nil, apierrors.New(apierrors.KindUpload, "No image file provided")
		}
		return nil, err
	}

	image, err := s.images.Create(ctx, reportID, stored.URL, stored.Path)
	if err != nil {
		if rmErr := s.files.Remove(stored.Filename); rmErr != nil {
			s.log.Error("Failed to remove orphaned upload", rmErr, map[string]interface{}{
				"filename": stored.Filename,
			})
		}
		return nil, err
	}

	metrics.ImagesUploaded.Inc()
	metrics.ImageUploadBytes.Observe(float64(stored.Size))
	s.log.Info("Report image uploaded", map[string]interface{}{
		"report_id":    reportID,
		"filename":     stored.Filename,
		"content_type": stored.ContentType,
		"size":         stored.Size,
	})
	return image, nil
}
