package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ratnesh09/sentinel-India/models"
	"github.com/Ratnesh09/sentinel-India/services/auditor"
	"github.com/Ratnesh09/sentinel-India/services/ingest"
	"github.com/Ratnesh09/sentinel-India/services/redactor"
)

// Service runs the fixed ingest -> audit -> redact sequence over a single
// PipelineRecord. There is no branching, no stage skipping, and no retry at
// this level; each stage owns its own failure recovery. Concurrent runs are
// safe because every invocation owns an independent record.
type Service struct {
	selector *ingest.Selector
	auditor  *auditor.Service
	redactor *redactor.Service
	logger   *zap.Logger
}

// NewService creates a new pipeline service
func NewService(selector *ingest.Selector, aud *auditor.Service, red *redactor.Service, logger *zap.Logger) *Service {
	return &Service{
		selector: selector,
		auditor:  aud,
		redactor: red,
		logger:   logger,
	}
}

// Run executes one audit over the given source and returns the completed
// record in the Done stage. The only error surfaced to the caller comes
// from serializing the final report; everything the stages recover from is
// already folded into the record's analysis result.
func (s *Service) Run(ctx context.Context, sourcePath string, src ingest.DocumentSource) (*models.PipelineRecord, error) {
	rec := &models.PipelineRecord{
		RunID:      uuid.New(),
		SourcePath: sourcePath,
		Stage:      models.StageIngest,
	}

	s.logger.Info("starting audit pipeline",
		zap.String("run_id", rec.RunID.String()),
		zap.String("source", sourcePath),
		zap.Int("page_count", src.PageCount()))

	s.logger.Debug("stage 1: ingest", zap.String("run_id", rec.RunID.String()))
	rec.FocusedSection = s.selector.FocusedSection(src)

	rec.Stage = models.StageAudit
	s.logger.Debug("stage 2: audit", zap.String("run_id", rec.RunID.String()))
	rec.Analysis = s.auditor.Audit(ctx, rec.FocusedSection)

	rec.Stage = models.StageRedact
	s.logger.Debug("stage 3: redact", zap.String("run_id", rec.RunID.String()))
	report, err := s.redactor.Redact(rec.Analysis)
	if err != nil {
		return rec, fmt.Errorf("redact analysis result: %w", err)
	}
	rec.RedactedReport = report

	rec.Stage = models.StageDone
	s.logger.Info("audit pipeline complete",
		zap.String("run_id", rec.RunID.String()),
		zap.String("status", string(rec.Analysis.Metadata.Status)))

	return rec, nil
}
