package auditor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ratnesh09/sentinel-India/internal/currency"
	"github.com/Ratnesh09/sentinel-India/models"
	"github.com/Ratnesh09/sentinel-India/services/providers"
)

// SystemPrompt fixes the auditor role, regulatory scope, and the JSON shape
// the model must return.
const SystemPrompt = `ROLE: Senior Forensic Auditor (Sentinel-CA).
TASK: Audit the extracted text for SEBI LODR & Companies Act violations.
OUTPUT: JSON format with compliance_score, risk_level, red_flags, financial_exposure.
IMPORTANT: If text is empty or irrelevant, return score 100 and note 'Insufficient Data'.`

const userPromptPrefix = "Analyze this text:\n\n"

// Config holds the auditor stage configuration
type Config struct {
	// Model is the chat-completion model submitted to the provider.
	Model string

	// Temperature for the completion; audits want deterministic output.
	Temperature float64

	// MinSectionLen is the guard threshold: shorter input short-circuits
	// into a Failed result without ever calling the model.
	MinSectionLen int

	// MaxPromptLen further truncates the focused section before submission.
	MaxPromptLen int

	// RequestTimeout bounds the model call. Zero defers to the provider's
	// own transport timeout.
	RequestTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		Model:         "gpt-4o-mini",
		Temperature:   0,
		MinSectionLen: 100,
		MaxPromptLen:  25000,
	}
}

// Service submits the focused section for forensic analysis and turns the
// model's loosely structured reply into a well-formed AnalysisResult.
type Service struct {
	provider providers.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewService creates a new auditor service
func NewService(provider providers.Provider, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// Audit analyzes the focused section and always returns a well-formed
// result: extraction shortfalls, transport faults, and malformed replies
// are all recovered locally into synthetic Failed/Error results. Nothing
// propagates to the caller as an error.
func (s *Service) Audit(ctx context.Context, focused string) *models.AnalysisResult {
	if len(focused) < s.cfg.MinSectionLen {
		s.logger.Warn("focused section below minimum length, skipping model call",
			zap.Int("section_len", len(focused)),
			zap.Int("min_len", s.cfg.MinSectionLen))
		return extractionFailedResult()
	}

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	prompt := focused
	if len(prompt) > s.cfg.MaxPromptLen {
		prompt = prompt[:s.cfg.MaxPromptLen]
	}

	req := &providers.ChatRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		Messages: []providers.Message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: userPromptPrefix + prompt},
		},
	}

	start := time.Now()
	resp, err := s.provider.ChatCompletion(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Error("model call failed",
			zap.Error(err),
			zap.Duration("elapsed", elapsed))
		return s.failureResult(err, elapsed)
	}
	if len(resp.Choices) == 0 {
		return s.failureResult(errors.New("model returned no choices"), elapsed)
	}

	content := unwrapFences(resp.Choices[0].Message.Content)

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		s.logger.Error("model reply is not valid JSON",
			zap.Error(err),
			zap.Int("reply_len", len(content)))
		return s.failureResult(fmt.Errorf("parse model reply: %w", err), elapsed)
	}

	// Shape deviations are advisory: the result already parsed, so log and move on.
	if err := validateShape([]byte(content)); err != nil {
		s.logger.Warn("model reply deviates from the audit schema", zap.Error(err))
	}

	result.Metadata = models.RunMetadata{
		Source:  "OpenAI API",
		Status:  models.StatusSuccess,
		Model:   modelName(resp, s.cfg.Model),
		Latency: formatLatency(elapsed),
	}

	// Normalize any Lakh/Crore amounts in the reported exposure so the log
	// carries comparable absolute figures.
	if !result.FinancialExposure.IsStructured() && result.FinancialExposure.Scalar != "" {
		if amounts := currency.ParseAmounts(result.FinancialExposure.Scalar); len(amounts) > 0 {
			s.logger.Info("financial exposure normalized",
				zap.Float64s("amounts_inr", amounts))
		}
	}

	s.logger.Info("audit analysis complete",
		zap.Int("compliance_score", int(result.ComplianceScore)),
		zap.String("risk_level", result.RiskLevel),
		zap.Int("red_flags", len(result.RedFlags)),
		zap.Duration("elapsed", elapsed))

	return &result
}

// extractionFailedResult is the synthetic result for the guard condition:
// there was not enough text to justify a model call.
func extractionFailedResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		ComplianceScore: 0,
		RiskLevel:       "ERROR",
		RedFlags: []models.RedFlag{{
			Issue:    "Extraction Failed",
			Evidence: "No text found in PDF",
			Severity: "HIGH",
		}},
		Metadata: models.RunMetadata{
			Source: "System",
			Status: models.StatusFailed,
			Model:  "None",
		},
	}
}

// failureResult is the synthetic result for a transport fault or a reply
// that could not be parsed. Both collapse into the same shape; only the
// captured error text differs.
func (s *Service) failureResult(err error, elapsed time.Duration) *models.AnalysisResult {
	return &models.AnalysisResult{
		ComplianceScore: 0,
		RiskLevel:       "API_ERROR",
		RedFlags: []models.RedFlag{{
			Issue:    "AI Generation Failed",
			Evidence: err.Error(),
			Severity: "CRITICAL",
		}},
		FinancialExposure: models.Exposure{Scalar: "Unknown"},
		Metadata: models.RunMetadata{
			Source:       "Fallback",
			Status:       models.StatusError,
			Model:        s.cfg.Model,
			Latency:      formatLatency(elapsed),
			ErrorMessage: err.Error(),
		},
	}
}

// unwrapFences extracts the JSON payload from a reply that may wrap it in a
// fenced code block, with prose around the fence. A block tagged as JSON is
// preferred; otherwise the first fenced block is taken; otherwise the reply
// is assumed to be bare JSON.
func unwrapFences(content string) string {
	if i := strings.Index(content, "```json"); i >= 0 {
		rest := content[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	if i := strings.Index(content, "```"); i >= 0 {
		rest := content[i+len("```"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(content)
}

func modelName(resp *providers.ChatResponse, fallback string) string {
	if resp.Model != "" {
		return resp.Model
	}
	return fallback
}

func formatLatency(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
