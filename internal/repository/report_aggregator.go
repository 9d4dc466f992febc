package repository

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/motopark/api/internal/database"
	"github.com/stwalsh4118/motopark/api/internal/models"
)

// ReportAggregator records an occupancy report and folds it into the zone's
// occupancy and confidence. It returns the id of the new report. An unknown
// zone fails with the database's constraint or no-data error.
type ReportAggregator interface {
	Aggregate(ctx context.Context, report models.NewReport) (string, error)
}

// pgReportAggregator delegates to the create_user_report database
// function, which is provisioned outside this service.
type pgReportAggregator struct {
	db *database.Database
}

// NewReportAggregator creates a ReportAggregator backed by the database.
func NewReportAggregator(db *database.Database) ReportAggregator {
	return &pgReportAggregator{db: db}
}

func (a *pgReportAggregator) Aggregate(ctx context.Context, report models.NewReport) (string, error) {
	var id string
	err := a.db.Pool.QueryRow(ctx,
		`SELECT create_user_report($1, $2, $3, $4, $5)`,
		report.SpotID,
		report.UserID,
		report.ReportedCount,
		report.UserLatitude,
		report.UserLongitude,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to aggregate report for zone %s: %w", report.SpotID, err)
	}
	return id, nil
}
