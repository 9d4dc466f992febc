package repository

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/motopark/api/internal/database"
	"github.com/stwalsh4118/motopark/api/internal/models"
)

// ImageRepository stores report image records.
type ImageRepository interface {
	Create(ctx context.Context, reportID, imageURL, filePath string) (*models.ReportImage, error)
}

type imageRepository struct {
	db *database.Database
}

// NewImageRepository creates a new instance of ImageRepository.
func NewImageRepository(db *database.Database) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, reportID, imageURL, filePath string) (*models.ReportImage, error) {
	query := `
		INSERT INTO report_images (report_id, image_url, file_path, uploaded_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, report_id, image_url, file_path, uploaded_at`

	var img models.ReportImage
	err := r.db.Pool.QueryRow(ctx, query, reportID, imageURL, filePath).Scan(
		&img.ID,
		&img.ReportID,
		&img.ImageURL,
		&img.FilePath,
		&img.UploadedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create image for report %s: %w", reportID, err)
	}
	return &img, nil
}
