package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"signflow/internal/domain/entity"
	"signflow/internal/domain/repository"
	"signflow/internal/infrastructure/database"
)

const defaultLogLimit = 100

type apiLogRepository struct {
	db     *database.Database
	logger *zap.Logger
}

// NewAPILogRepository creates a new API log repository
func NewAPILogRepository(db *database.Database, logger *zap.Logger) repository.APILogRepository {
	return &apiLogRepository{
		db:     db,
		logger: logger,
	}
}

// Save saves an API log entry to the database
func (r *apiLogRepository) Save(ctx context.Context, log *entity.APILog) error {
	query := `
		INSERT INTO api_logs (endpoint, method, request_body, response_body, status_code, duration_ms, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		log.Endpoint,
		log.Method,
		log.RequestBody,
		log.ResponseBody,
		log.StatusCode,
		log.Duration,
		nullString(log.RequestID),
		log.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to save API log",
			zap.String("endpoint", log.Endpoint),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save API log: %w", err)
	}

	return nil
}

// FindAll returns the most recent API logs
func (r *apiLogRepository) FindAll(ctx context.Context, limit int) ([]entity.APILog, error) {
	query := `
		SELECT id, endpoint, method, request_body, response_body, status_code, duration_ms, request_id, created_at
		FROM api_logs
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.query(ctx, query, normalizeLimit(limit))
}

// FindByRequest returns the API logs recorded for one signature request
func (r *apiLogRepository) FindByRequest(ctx context.Context, requestID string, limit int) ([]entity.APILog, error) {
	query := `
		SELECT id, endpoint, method, request_body, response_body, status_code, duration_ms, request_id, created_at
		FROM api_logs
		WHERE request_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.query(ctx, query, requestID, normalizeLimit(limit))
}

func (r *apiLogRepository) query(ctx context.Context, query string, args ...interface{}) ([]entity.APILog, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query API logs: %w", err)
	}
	defer rows.Close()

	logs := make([]entity.APILog, 0)
	for rows.Next() {
		var log entity.APILog
		var reqBody, respBody, requestID sql.NullString
		if err := rows.Scan(
			&log.ID,
			&log.Endpoint,
			&log.Method,
			&reqBody,
			&respBody,
			&log.StatusCode,
			&log.Duration,
			&requestID,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan API log: %w", err)
		}
		log.RequestBody = reqBody.String
		log.ResponseBody = respBody.String
		log.RequestID = requestID.String
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate API logs: %w", err)
	}
	return logs, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultLogLimit
	}
	return limit
}
