package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/google/uuid"

	"credsped/internal/config"
	"credsped/internal/domain"
	"credsped/internal/efd"
	"credsped/internal/efd/layout"
	"credsped/internal/port"
)

// ArtifactInput is one uploaded artifact to analyze.
type ArtifactInput struct {
	Name string
	Data []byte
}

// AnalysisService runs batch analyses and serves persisted batch history.
type AnalysisService interface {
	Analyze(ctx context.Context, inputs []ArtifactInput) (*domain.BatchResult, error)
	GetBatch(ctx context.Context, id uuid.UUID) (*domain.AnalysisBatch, []domain.AnalysisFile, error)
	ListBatches(ctx context.Context, offset, limit int) ([]domain.AnalysisBatch, int, error)
}

type analysisService struct {
	layout  *layout.Layout
	cfg     *config.ParserConfig
	cache   *lru.Cache[string, *domain.ParseResult]
	storage port.ObjectStorage // nil disables archival
	bucket  string
	repo    port.AnalysisRepository // nil disables persistence
}

// NewAnalysisService builds the batch analysis service. storage and repo
// may be nil; archival and history are then disabled (the CLI runs that way).
func NewAnalysisService(
	reg *layout.Registry,
	cfg *config.ParserConfig,
	storage port.ObjectStorage,
	bucket string,
	repo port.AnalysisRepository,
) (AnalysisService, error) {
	lay, err := reg.Get(cfg.LayoutVersion)
	if err != nil {
		return nil, err
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New[string, *domain.ParseResult](size)
	if err != nil {
		return nil, fmt.Errorf("creating parse cache: %w", err)
	}
	return &analysisService{
		layout:  lay,
		cfg:     cfg,
		cache:   cache,
		storage: storage,
		bucket:  bucket,
		repo:    repo,
	}, nil
}

func (s *analysisService) Analyze(ctx context.Context, inputs []ArtifactInput) (*domain.BatchResult, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrNoFiles
	}
	if s.cfg.MaxFiles > 0 && len(inputs) > s.cfg.MaxFiles {
		return nil, domain.ErrTooManyFiles
	}
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if maxBytes > 0 {
		for i := range inputs {
			if int64(len(inputs[i].Data)) > maxBytes {
				return nil, domain.ErrFileTooLarge
			}
		}
	}

	// Each file gets its own correlator and reference maps, so files can be
	// parsed in parallel; results land at their input index to keep order.
	files := make([]domain.FileResult, len(inputs))
	concurrency := s.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			files[i] = s.parseOne(inputs[i])
		}(i)
	}
	wg.Wait()

	res := &domain.BatchResult{
		BatchID: uuid.New(),
		Files:   files,
	}
	failed := 0
	for i := range files {
		if files[i].Result == nil {
			failed++
			continue
		}
		r := files[i].Result
		res.CreditLines = append(res.CreditLines, r.CreditLines...)
		res.OtherCredits = append(res.OtherCredits, r.OtherCredits...)
		res.Apportionments = append(res.Apportionments, r.Apportionments...)
		res.CreditNatures = append(res.CreditNatures, r.CreditNatures...)
	}
	switch {
	case failed == 0:
		res.Status = domain.BatchStatusCompleted
	case failed == len(files):
		res.Status = domain.BatchStatusFailed
	default:
		res.Status = domain.BatchStatusPartial
	}

	s.persist(ctx, res, inputs)
	return res, nil
}

// parseOne runs the full single-file pipeline. A structurally unusable
// artifact yields a FileResult with Error set; the batch carries on.
func (s *analysisService) parseOne(in ArtifactInput) domain.FileResult {
	out := domain.FileResult{Name: in.Name}

	key := cacheKey(in.Name, in.Data)
	if cached, ok := s.cache.Get(key); ok {
		out.Result = cached
		return out
	}

	lines, err := efd.LoadArtifact(in.Name, in.Data)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	result := efd.Parse(lines, s.layout)
	s.cache.Add(key, result)
	out.Result = result
	return out
}

// persist archives artifacts and stores the batch summary. Both are
// best-effort: a down bucket or database must not fail an analysis whose
// results are already in hand.
func (s *analysisService) persist(ctx context.Context, res *domain.BatchResult, inputs []ArtifactInput) {
	now := time.Now().UTC()

	files := make([]domain.AnalysisFile, len(res.Files))
	for i := range res.Files {
		fr := &res.Files[i]
		file := domain.AnalysisFile{
			ID:        uuid.New(),
			BatchID:   res.BatchID,
			Name:      fr.Name,
			Error:     fr.Error,
			CreatedAt: now,
		}
		if fr.Result != nil {
			file.Competence = fr.Result.Metadata.Competence
			file.Entity = fr.Result.Metadata.Entity
			file.CreditLines = len(fr.Result.CreditLines)
			file.OtherLines = len(fr.Result.OtherCredits)
			for j := range fr.Result.CreditLines {
				file.TotalPIS += fr.Result.CreditLines[j].PISValue
				file.TotalCOFINS += fr.Result.CreditLines[j].COFINSValue
			}
			for j := range fr.Result.OtherCredits {
				file.TotalPIS += fr.Result.OtherCredits[j].PISValue
				file.TotalCOFINS += fr.Result.OtherCredits[j].COFINSValue
			}
		}
		if s.storage != nil && fr.Error == "" {
			key := fmt.Sprintf("artifacts/%s/%s", res.BatchID, fr.Name)
			_, err := s.storage.Upload(ctx, port.UploadInput{
				Bucket:      s.bucket,
				Key:         key,
				Body:        bytes.NewReader(inputs[i].Data),
				ContentType: "text/plain; charset=utf-8",
				Size:        int64(len(inputs[i].Data)),
			})
			if err != nil {
				log.Printf("analysisService: archiving %s failed: %v", fr.Name, err)
			} else {
				file.StorageKey = key
			}
		}
		files[i] = file
	}

	if s.repo == nil {
		return
	}
	batch := &domain.AnalysisBatch{
		ID:               res.BatchID,
		Status:           res.Status,
		FileCount:        len(res.Files),
		CreditLineCount:  len(res.CreditLines),
		OtherCreditCount: len(res.OtherCredits),
		CreatedAt:        now,
	}
	for i := range files {
		batch.TotalPIS += files[i].TotalPIS
		batch.TotalCOFINS += files[i].TotalCOFINS
	}
	if err := s.repo.CreateBatch(ctx, batch, files); err != nil {
		log.Printf("analysisService: persisting batch %s failed: %v", res.BatchID, err)
	}
}

func (s *analysisService) GetBatch(ctx context.Context, id uuid.UUID) (*domain.AnalysisBatch, []domain.AnalysisFile, error) {
	if s.repo == nil {
		return nil, nil, domain.ErrNotFound
	}
	return s.repo.GetBatch(ctx, id)
}

func (s *analysisService) ListBatches(ctx context.Context, offset, limit int) ([]domain.AnalysisBatch, int, error) {
	if s.repo == nil {
		return nil, 0, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListBatches(ctx, offset, limit)
}

func cacheKey(name string, data []byte) string {
	sum := sha256.Sum256(data)
	return name + ":" + hex.EncodeToString(sum[:])
}
