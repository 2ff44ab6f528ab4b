package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Ratnesh09/sentinel-India/models"
	"github.com/Ratnesh09/sentinel-India/services/auditor"
	"github.com/Ratnesh09/sentinel-India/services/ingest"
	"github.com/Ratnesh09/sentinel-India/services/providers"
	"github.com/Ratnesh09/sentinel-India/services/redactor"
)

type fakeSource struct {
	pages []string
}

func (f *fakeSource) PageCount() int                 { return len(f.pages) }
func (f *fakeSource) PageText(i int) (string, error) { return f.pages[i], nil }

type fakeProvider struct {
	content string
	calls   int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) ChatCompletion(_ context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	f.calls++
	return &providers.ChatResponse{
		Model: req.Model,
		Choices: []providers.Choice{{
			Message: providers.Message{Role: "assistant", Content: f.content},
		}},
	}, nil
}

func newPipeline(t *testing.T, provider providers.Provider) *Service {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return NewService(
		ingest.NewSelector(ingest.DefaultConfig(), logger),
		auditor.NewService(provider, auditor.DefaultConfig(), logger),
		redactor.NewService(logger),
		logger,
	)
}

func TestRunCompletesSuccessfully(t *testing.T) {
	reply := "```json\n" + `{
		"compliance_score": 81,
		"risk_level": "LOW",
		"red_flags": [],
		"financial_exposure": "None identified"
	}` + "\n```"
	provider := &fakeProvider{content: reply}

	src := &fakeSource{pages: []string{
		"Related Party Disclosures\n" + strings.Repeat("transaction detail ", 20),
	}}

	rec, err := newPipeline(t, provider).Run(context.Background(), "report.pdf", src)
	require.NoError(t, err)

	assert.Equal(t, models.StageDone, rec.Stage)
	assert.NotEqual(t, uuid.Nil, rec.RunID)
	assert.Equal(t, "report.pdf", rec.SourcePath)
	assert.Contains(t, rec.FocusedSection, "--- PAGE 0 ---")

	require.NotNil(t, rec.Analysis)
	assert.Equal(t, models.StatusSuccess, rec.Analysis.Metadata.Status)
	assert.Equal(t, models.Score(81), rec.Analysis.ComplianceScore)

	assert.Contains(t, rec.RedactedReport, `"compliance_score": 81`)
	assert.Equal(t, 1, provider.calls)
}

func TestRunDegradedDocumentFailsWithoutModelCall(t *testing.T) {
	// No primary keywords anywhere and the fallback text is below the
	// auditor guard, so the model must never be invoked.
	provider := &fakeProvider{content: "{}"}
	src := &fakeSource{pages: []string{"short cover page"}}

	rec, err := newPipeline(t, provider).Run(context.Background(), "thin.pdf", src)
	require.NoError(t, err)

	assert.Equal(t, models.StageDone, rec.Stage)
	assert.Zero(t, provider.calls)
	require.NotNil(t, rec.Analysis)
	assert.Equal(t, models.StatusFailed, rec.Analysis.Metadata.Status)
	assert.NotEmpty(t, rec.RedactedReport)
}

func TestRunFallbackDocumentStillAudited(t *testing.T) {
	reply := `{"compliance_score": 40, "risk_level": "MEDIUM", "red_flags": ["thin disclosure"], "financial_exposure": "Unknown"}`
	provider := &fakeProvider{content: reply}

	// No primary keyword, but the fallback prefix is long enough for a
	// degraded analysis.
	src := &fakeSource{pages: []string{strings.Repeat("management discussion ", 30)}}

	rec, err := newPipeline(t, provider).Run(context.Background(), "fallback.pdf", src)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, models.StatusSuccess, rec.Analysis.Metadata.Status)
	require.Len(t, rec.Analysis.RedFlags, 1)
	assert.Equal(t, "thin disclosure", rec.Analysis.RedFlags[0].Note)
}

func TestRunRedactsModelOutput(t *testing.T) {
	reply := `{
		"compliance_score": 20,
		"risk_level": "CRITICAL",
		"red_flags": [{"issue": "Benami holding", "severity": "CRITICAL", "evidence": "Shares held under PAN ABCDE1234F"}],
		"financial_exposure": "Rs. 30 Crores"
	}`
	provider := &fakeProvider{content: reply}
	src := &fakeSource{pages: []string{
		"Note 32 Related Party Disclosures " + strings.Repeat("detail ", 30),
	}}

	rec, err := newPipeline(t, provider).Run(context.Background(), "report.pdf", src)
	require.NoError(t, err)

	assert.NotContains(t, rec.RedactedReport, "ABCDE1234F")
	assert.Contains(t, rec.RedactedReport, "[REDACTED_PAN]")

	// The machine-readable result keeps the original evidence.
	assert.Contains(t, rec.Analysis.RedFlags[0].Evidence, "ABCDE1234F")
}

func TestRunFocusedSectionBounded(t *testing.T) {
	provider := &fakeProvider{content: `{"compliance_score":50,"risk_level":"LOW","red_flags":[],"financial_exposure":""}`}

	pages := make([]string, 5)
	for i := range pages {
		pages[i] = "Related Party Disclosures " + strings.Repeat("x", 20000)
	}
	src := &fakeSource{pages: pages}

	rec, err := newPipeline(t, provider).Run(context.Background(), "big.pdf", src)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(rec.FocusedSection), ingest.DefaultConfig().MaxSectionLen)
}
