package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"credsped/internal/domain"
	"credsped/internal/port"
)

type analysisRepo struct {
	db *sqlx.DB
}

// NewAnalysisRepo creates a new PostgreSQL-backed AnalysisRepository.
func NewAnalysisRepo(db *sqlx.DB) port.AnalysisRepository {
	return &analysisRepo{db: db}
}

const insertBatchQuery = `INSERT INTO analysis_batches
	(id, status, file_count, credit_line_count, other_credit_count, total_pis, total_cofins, created_at)
	VALUES (:id, :status, :file_count, :credit_line_count, :other_credit_count, :total_pis, :total_cofins, :created_at)`

const insertFileQuery = `INSERT INTO analysis_files
	(id, batch_id, name, storage_key, competence, entity, credit_lines, other_lines, total_pis, total_cofins, error, created_at)
	VALUES (:id, :batch_id, :name, :storage_key, :competence, :entity, :credit_lines, :other_lines, :total_pis, :total_cofins, :error, :created_at)`

func (r *analysisRepo) CreateBatch(ctx context.Context, batch *domain.AnalysisBatch, files []domain.AnalysisFile) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("analysisRepo.CreateBatch begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, insertBatchQuery, batch); err != nil {
		return fmt.Errorf("analysisRepo.CreateBatch batch: %w", err)
	}
	for i := range files {
		if _, err := tx.NamedExecContext(ctx, insertFileQuery, &files[i]); err != nil {
			return fmt.Errorf("analysisRepo.CreateBatch file %s: %w", files[i].Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("analysisRepo.CreateBatch commit: %w", err)
	}
	return nil
}

func (r *analysisRepo) GetBatch(ctx context.Context, id uuid.UUID) (*domain.AnalysisBatch, []domain.AnalysisFile, error) {
	var batch domain.AnalysisBatch
	err := r.db.GetContext(ctx, &batch,
		"SELECT * FROM analysis_batches WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("analysisRepo.GetBatch: %w", err)
	}

	var files []domain.AnalysisFile
	if err := r.db.SelectContext(ctx, &files,
		"SELECT * FROM analysis_files WHERE batch_id = $1 ORDER BY created_at, name", id); err != nil {
		return nil, nil, fmt.Errorf("analysisRepo.GetBatch files: %w", err)
	}
	return &batch, files, nil
}

func (r *analysisRepo) ListBatches(ctx context.Context, offset, limit int) ([]domain.AnalysisBatch, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM analysis_batches"); err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.ListBatches count: %w", err)
	}

	var batches []domain.AnalysisBatch
	if err := r.db.SelectContext(ctx, &batches,
		"SELECT * FROM analysis_batches ORDER BY created_at DESC OFFSET $1 LIMIT $2",
		offset, limit); err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.ListBatches: %w", err)
	}
	return batches, total, nil
}
