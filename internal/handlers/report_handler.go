package handlers

import (
	"errors"
	"io"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/motopark/api/internal/auth"
	apierrors "github.com/stwalsh4118/motopark/api/internal/errors"
	"github.com/stwalsh4118/motopark/api/internal/models"
	"github.com/stwalsh4118/motopark/api/internal/services"
)

// ImageField is the multipart field carrying a report image.
const ImageField = "image"

// multipartSlack allows for part headers and boundaries around the file.
const multipartSlack = 64 * 1024

// ReportHandler handles occupancy report requests.
type ReportHandler struct {
	service   services.ReportService
	maxUpload int64
}

// NewReportHandler creates a new ReportHandler instance. maxUpload is the
// largest accepted image in bytes.
func NewReportHandler(service services.ReportService, maxUpload int64) *ReportHandler {
	return &ReportHandler{
		service:   service,
		maxUpload: maxUpload,
	}
}

// CreateReportRequest is the body of POST /api/reports.
type CreateReportRequest struct {
	UserLatitude  *float64 `json:"userLatitude" binding:"omitnil,latitude"`
	UserLongitude *float64 `json:"userLongitude" binding:"omitnil,longitude"`
	ReportedCount *int     `json:"reportedCount" binding:"required,min=0"`
	SpotID        string   `json:"spotId" binding:"required,uuid"`
}

// ZoneReportsRequest represents the query parameters of GET /api/reports.
type ZoneReportsRequest struct {
	SpotID string `form:"spotId" binding:"omitempty,uuid"`
	Hours  *int   `form:"hours" binding:"omitnil,min=1,max=720"`
}

// MyReportsRequest represents the query parameters of GET /api/reports/me.
type MyReportsRequest struct {
	Limit  *int `form:"limit" binding:"omitnil,min=1,max=100"`
	Offset int  `form:"offset" binding:"min=0"`
}

// ReportResponse wraps a single report.
type ReportResponse struct {
	Report  *models.UserReport `json:"report"`
	Message string             `json:"message"`
}

// ZoneReportsResponse lists a zone's recent reports.
type ZoneReportsResponse struct {
	Reports []models.ZoneReport `json:"reports"`
	Count   int                 `json:"count"`
}

// MyReportsResponse lists the caller's reports.
type MyReportsResponse struct {
	Reports []models.ReportWithZone `json:"reports"`
	Count   int                     `json:"count"`
}

// UploadResponse describes a stored report image.
type UploadResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
	Filename string `json:"filename"`
}

// Create handles POST /api/reports.
func (h *ReportHandler) Create(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	report, err := h.service.CreateReport(c.Request.Context(), models.NewReport{
		SpotID:        req.SpotID,
		UserID:        auth.UserID(c),
		ReportedCount: *req.ReportedCount,
		UserLatitude:  req.UserLatitude,
		UserLongitude: req.UserLongitude,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, ReportResponse{Message: "Report created successfully", Report: report})
}

// ZoneReports handles GET /api/reports.
func (h *ReportHandler) ZoneReports(c *gin.Context) {
	var req ZoneReportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, err)
		return
	}
	if req.SpotID == "" {
		fail(c, badRequest("spotId is required"))
		return
	}

	reports, err := h.service.ZoneReports(c.Request.Context(), req.SpotID, req.Hours)
	if err != nil {
		fail(c, err)
		return
	}

	if reports == nil {
		reports = []models.ZoneReport{}
	}
	c.JSON(http.StatusOK, ZoneReportsResponse{Reports: reports, Count: len(reports)})
}

// MyReports handles GET /api/reports/me.
func (h *ReportHandler) MyReports(c *gin.Context) {
	var req MyReportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, err)
		return
	}

	reports, err := h.service.MyReports(c.Request.Context(), auth.UserID(c), req.Limit, req.Offset)
	if err != nil {
		fail(c, err)
		return
	}

	if reports == nil {
		reports = []models.ReportWithZone{}
	}
	c.JSON(http.StatusOK, MyReportsResponse{Reports: reports, Count: len(reports)})
}

// UploadImage handles POST /api/reports/:reportId/images. The image part is
// streamed to storage after the report's ownership has been checked.
func (h *ReportHandler) UploadImage(c *gin.Context) {
	reportID := c.Param("reportId")
	if !validID(reportID) {
		fail(c, services.ErrReportNotFound)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartSlack)

	part, err := h.imagePart(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer part.Close()

	image, err := h.service.AttachImage(c.Request.Context(), reportID, auth.UserID(c), services.Upload{
		Body:     part,
		Filename: part.FileName(),
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, UploadResponse{
		Message:  "Image uploaded successfully",
		ImageURL: image.ImageURL,
		Filename: path.Base(image.ImageURL),
	})
}

type filePart interface {
	io.ReadCloser
	FileName() string
}

// imagePart advances the multipart stream to the image file part.
func (h *ReportHandler) imagePart(c *gin.Context) (filePart, error) {
	missing := apierrors.New(apierrors.KindBadRequest, "No image file provided")

	reader, err := c.Request.MultipartReader()
	if err != nil {
		return nil, missing
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, missing
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, h.tooLarge(err)
			}
			return nil, apierrors.Wrap(apierrors.KindBadRequest, "Invalid multipart body", err)
		}
		if part.FormName() == ImageField && part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}

func (h *ReportHandler) tooLarge(err error) *apierrors.Error {
	return apierrors.FileTooLarge(h.maxUpload, err)
}
