package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/motopark/api/internal/database"
	"github.com/stwalsh4118/motopark/api/internal/models"
)

// ReportRepository defines the read operations on occupancy reports.
// Reports are written only through ReportAggregator.
type ReportRepository interface {
	// FindByID returns nil, nil when the report does not exist.
	FindByID(ctx context.Context, id string) (*models.UserReport, error)

	// FindOwned returns the report only if userID created it, else nil, nil.
	FindOwned(ctx context.Context, id, userID string) (*models.UserReport, error)

	// ListByZone returns the zone's reports from the last hours hours,
	// newest first.
	ListByZone(ctx context.Context, spotID string, hours int) ([]models.ZoneReport, error)

	// ListByUser returns a page of the user's reports, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.ReportWithZone, error)
}

type reportRepository struct {
	db *database.Database
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *database.Database) ReportRepository {
	return &reportRepository{db: db}
}

const reportColumns = `ur.id, ur.spot_id, ur.user_id, ur.reported_count, ur.user_latitude, ur.user_longitude, ur."timestamp"`

func reportDest(r *models.UserReport) []interface{} {
	return []interface{}{
		&r.ID,
		&r.SpotID,
		&r.UserID,
		&r.ReportedCount,
		&r.UserLatitude,
		&r.UserLongitude,
		&r.Timestamp,
	}
}

func (r *reportRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.UserReport, error) {
	var report models.UserReport
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(reportDest(&report)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) FindByID(ctx context.Context, id string) (*models.UserReport, error) {
	report, err := r.findOne(ctx, `SELECT `+reportColumns+` FROM user_reports ur WHERE ur.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query report %s: %w", id, err)
	}
	return report, nil
}

func (r *reportRepository) FindOwned(ctx context.Context, id, userID string) (*models.UserReport, error) {
	report, err := r.findOne(ctx,
		`SELECT `+reportColumns+` FROM user_reports ur WHERE ur.id = $1 AND ur.user_id = $2`,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query report %s for user %s: %w", id, userID, err)
	}
	return report, nil
}

func (r *reportRepository) ListByZone(ctx context.Context, spotID string, hours int) ([]models.ZoneReport, error) {
	query := `
		SELECT ` + reportColumns + `, u.email, u.is_anonymous
		FROM user_reports ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.spot_id = $1
			AND ur."timestamp" >= NOW() - make_interval(hours => $2)
		ORDER BY ur."timestamp" DESC`

	rows, err := r.db.Pool.Query(ctx, query, spotID, hours)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports for zone %s: %w", spotID, err)
	}
	defer rows.Close()

	reports := []models.ZoneReport{}
	for rows.Next() {
		var zr models.ZoneReport
		dest := append(reportDest(&zr.UserReport), &zr.Email, &zr.IsAnonymous)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan zone report: %w", err)
		}
		reports = append(reports, zr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating zone reports: %w", err)
	}
	return reports, nil
}

func (r *reportRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.ReportWithZone, error) {
	// id breaks timestamp ties so pages never overlap
	query := `
		SELECT ` + reportColumns + `,
			pz.latitude, pz.longitude, pz.total_capacity, pz.current_occupancy
		FROM user_reports ur
		JOIN parking_zones pz ON pz.id = ur.spot_id
		WHERE ur.user_id = $1
		ORDER BY ur."timestamp" DESC, ur.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports for user %s: %w", userID, err)
	}
	defer rows.Close()

	reports := []models.ReportWithZone{}
	for rows.Next() {
		var rz models.ReportWithZone
		dest := append(reportDest(&rz.UserReport),
			&rz.SpotLatitude,
			&rz.SpotLongitude,
			&rz.TotalCapacity,
			&rz.CurrentOccupancy,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan user report: %w", err)
		}
		reports = append(reports, rz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user reports: %w", err)
	}
	return reports, nil
}
