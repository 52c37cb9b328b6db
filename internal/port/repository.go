package port

import (
	"context"

	"github.com/google/uuid"

	"credsped/internal/domain"
)

// AnalysisRepository persists batch and per-file analysis summaries.
type AnalysisRepository interface {
	CreateBatch(ctx context.Context, batch *domain.AnalysisBatch, files []domain.AnalysisFile) error
	GetBatch(ctx context.Context, id uuid.UUID) (*domain.AnalysisBatch, []domain.AnalysisFile, error)
	ListBatches(ctx context.Context, offset, limit int) ([]domain.AnalysisBatch, int, error)
}
