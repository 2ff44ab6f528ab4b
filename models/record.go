package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// Stage identifies where a PipelineRecord sits in the audit sequence.
type Stage string

const (
	StageIngest Stage = "Ingest"
	StageAudit  Stage = "Audit"
	StageRedact Stage = "Redact"
	StageDone   Stage = "Done"
)

// Status reflects how the auditor stage concluded.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
	StatusError   Status = "Error"
)

// PipelineRecord is the single record threaded through the audit pipeline.
// It is created once per run, updated in place by each stage, and discarded
// when the run finishes.
type PipelineRecord struct {
	RunID          uuid.UUID       `json:"run_id"`
	SourcePath     string          `json:"source_path"`
	FocusedSection string          `json:"focused_section"`
	Analysis       *AnalysisResult `json:"analysis_result,omitempty"`
	RedactedReport string          `json:"redacted_report,omitempty"`
	Stage          Stage           `json:"stage"`
}

// AnalysisResult is the outcome of the auditor stage. The model controls the
// shape of red_flags and financial_exposure, so those fields tolerate both
// the documented record form and bare scalars.
type AnalysisResult struct {
	ComplianceScore   Score       `json:"compliance_score"`
	RiskLevel         string      `json:"risk_level"`
	RedFlags          []RedFlag   `json:"red_flags"`
	FinancialExposure Exposure    `json:"financial_exposure"`
	Metadata          RunMetadata `json:"metadata"`
}

// RunMetadata records execution provenance for an audit run.
type RunMetadata struct {
	Source       string `json:"source"`
	Status       Status `json:"status"`
	Model        string `json:"model"`
	Latency      string `json:"latency,omitempty"`
	ErrorMessage string `json:"error_msg,omitempty"`
}

// Score is a 0-100 compliance score. Models emit it as 87, 87.0 or "87"
// depending on the day, so unmarshalling tolerates all three.
type Score int

func (s *Score) UnmarshalJSON(b []byte) error {
	t := bytes.TrimSpace(b)
	if string(t) == "null" {
		*s = 0
		return nil
	}
	t = bytes.Trim(t, `"`)
	f, err := strconv.ParseFloat(string(t), 64)
	if err != nil {
		return fmt.Errorf("compliance score %q is not numeric: %w", string(b), err)
	}
	*s = Score(math.Round(f))
	return nil
}

// RedFlag is one identified governance issue. The model either returns the
// structured record form (issue/severity/regulation/evidence) or a bare
// string; the bare form lands in Note. Consumers must check IsStructured
// before reading the structured fields.
type RedFlag struct {
	Issue      string
	Severity   string
	Regulation string
	Evidence   string

	// Note holds the flag text when the model returned a plain string.
	Note string
}

// IsStructured reports whether the flag carries the structured record form.
func (f RedFlag) IsStructured() bool {
	return f.Issue != "" || f.Severity != "" || f.Regulation != "" || f.Evidence != ""
}

type structuredFlag struct {
	Issue      string `json:"issue,omitempty"`
	Severity   string `json:"severity,omitempty"`
	Regulation string `json:"regulation,omitempty"`
	Evidence   string `json:"evidence,omitempty"`
}

func (f RedFlag) MarshalJSON() ([]byte, error) {
	if !f.IsStructured() && f.Note != "" {
		return json.Marshal(f.Note)
	}
	return json.Marshal(structuredFlag{
		Issue:      f.Issue,
		Severity:   f.Severity,
		Regulation: f.Regulation,
		Evidence:   f.Evidence,
	})
}

func (f *RedFlag) UnmarshalJSON(b []byte) error {
	t := bytes.TrimSpace(b)
	if len(t) == 0 {
		return nil
	}
	if t[0] == '"' {
		var note string
		if err := json.Unmarshal(t, &note); err != nil {
			return err
		}
		*f = RedFlag{Note: note}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(t, &m); err != nil {
		// Not an object either; keep the raw text rather than dropping the flag.
		*f = RedFlag{Note: string(t)}
		return nil
	}
	*f = RedFlag{
		Issue:      stringify(m["issue"]),
		Severity:   stringify(m["severity"]),
		Regulation: stringify(m["regulation"]),
		Evidence:   stringify(m["evidence"]),
	}
	return nil
}

// Exposure is the model-reported financial exposure: either a free-form
// scalar or a nested structure, which is retained verbatim.
type Exposure struct {
	Scalar string
	Detail json.RawMessage
}

// IsStructured reports whether the exposure is a nested object or array.
func (e Exposure) IsStructured() bool {
	return len(e.Detail) > 0
}

func (e Exposure) MarshalJSON() ([]byte, error) {
	if e.IsStructured() {
		return e.Detail, nil
	}
	return json.Marshal(e.Scalar)
}

func (e *Exposure) UnmarshalJSON(b []byte) error {
	t := bytes.TrimSpace(b)
	if len(t) == 0 || string(t) == "null" {
		*e = Exposure{}
		return nil
	}
	switch t[0] {
	case '{', '[':
		e.Scalar = ""
		e.Detail = append(json.RawMessage(nil), t...)
	case '"':
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return err
		}
		*e = Exposure{Scalar: s}
	default:
		// Bare number or bool; keep the literal text.
		*e = Exposure{Scalar: string(t)}
	}
	return nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
