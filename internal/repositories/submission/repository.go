// Package submission persists client submissions and their matching outcome.
package submission

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/timberline/cedar/pkg/database"
	"github.com/timberline/cedar/pkg/models"
	"github.com/timberline/cedar/pkg/tracing"
)

// Repository handles submission persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new submission repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new submission in status "new".
func (r *Repository) Create(ctx context.Context, record *models.SubmissionRecord) (*models.SubmissionRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "submission.Repository.Create")
	defer span.End()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.Status = models.SubmissionStatusNew
	record.CreatedAt = time.Now().UTC()
	record.UpdatedAt = record.CreatedAt

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("submissions")
	sb.Cols("id", "client_type", "status", "data", "created_by", "created_at", "updated_at")
	sb.Values(record.ID, record.ClientType, record.Status, record.Data, record.CreatedBy, record.CreatedAt, record.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"submission_id": record.ID}).Error("Failed to create submission")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create submission")
	}

	return record, nil
}

// Get retrieves a submission by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.SubmissionRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "submission.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "client_type", "status", "data", "matches", "created_by", "created_at", "updated_at")
	sb.From("submissions")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var record models.SubmissionRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("submission %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get submission")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get submission")
	}

	return &record, nil
}

// ListByStatus retrieves submissions in a given status, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status string, limit int) ([]models.SubmissionRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "submission.Repository.ListByStatus")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "client_type", "status", "data", "matches", "created_by", "created_at", "updated_at")
	sb.From("submissions")
	sb.Where(sb.Equal("status", status))
	sb.OrderBy("created_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var records []models.SubmissionRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list submissions")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list submissions")
	}

	return records, nil
}

// UpdateOutcome records the matching outcome: the new status and, for
// conflicts, the serialized match results.
func (r *Repository) UpdateOutcome(ctx context.Context, id string, status string, matches []byte) error {
	ctx, span := tracing.StartSpan(ctx, "submission.Repository.UpdateOutcome")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("submissions")
	assigns := []string{
		sb.Assign("status", status),
		sb.Assign("updated_at", now),
	}
	if matches != nil {
		assigns = append(assigns, sb.Assign("matches", matches))
	}
	sb.Set(assigns...)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"submission_id": id}).Error("Failed to update submission outcome")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update submission")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("submission %s not found", id))
	}

	return nil
}
