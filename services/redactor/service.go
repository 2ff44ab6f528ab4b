package redactor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"go.uber.org/zap"

	"github.com/Ratnesh09/sentinel-India/internal/pii"
	"github.com/Ratnesh09/sentinel-India/models"
)

// Service turns an AnalysisResult into the sanitized text form that is safe
// to display or export. Redaction runs over the serialized report, so PII
// hiding inside free-form strings (evidence quotes, error text) is masked
// too; occasional false positives are the accepted cost of that.
type Service struct {
	logger *zap.Logger
}

// NewService creates a new redactor service
func NewService(logger *zap.Logger) *Service {
	return &Service{logger: logger}
}

// Redact serializes the result and masks PAN and Aadhaar patterns. The
// input result is not mutated. Zero pattern matches is the expected common
// case, not an error.
func (s *Service) Redact(result *models.AnalysisResult) (string, error) {
	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize analysis result: %w", err)
	}

	// Fingerprint the unredacted report so an exported copy can later be
	// matched back to the run that produced it.
	if digest, err := fingerprint(raw); err != nil {
		s.logger.Warn("failed to fingerprint report", zap.Error(err))
	} else {
		s.logger.Info("analysis report sealed",
			zap.String("jcs_sha256", digest),
			zap.Int("report_len", len(raw)))
	}

	redacted := pii.MaskAll(string(raw))
	if redacted != string(raw) {
		s.logger.Info("PII masked in report")
	}
	return redacted, nil
}

// MaskText applies the PII masks to arbitrary text. Exposed for consumers
// that render report fragments outside the serialized form.
func MaskText(text string) string {
	return pii.MaskAll(text)
}

// fingerprint canonicalizes the report per RFC 8785 and returns a sha256
// hex digest of the canonical form.
func fingerprint(raw []byte) (string, error) {
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize report: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
