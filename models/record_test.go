package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedFlagUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want RedFlag
	}{
		{
			name: "structured flag",
			in:   `{"issue":"Undisclosed loan","severity":"HIGH","regulation":"Section 188","evidence":"Note 32 shows..."}`,
			want: RedFlag{Issue: "Undisclosed loan", Severity: "HIGH", Regulation: "Section 188", Evidence: "Note 32 shows..."},
		},
		{
			name: "bare string flag",
			in:   `"Possible round-tripping via subsidiary"`,
			want: RedFlag{Note: "Possible round-tripping via subsidiary"},
		},
		{
			name: "partial object",
			in:   `{"issue":"Missing approval"}`,
			want: RedFlag{Issue: "Missing approval"},
		},
		{
			name: "non-string severity is coerced",
			in:   `{"issue":"Scale breach","severity":3}`,
			want: RedFlag{Issue: "Scale breach", Severity: "3"},
		},
		{
			name: "unknown keys ignored",
			in:   `{"issue":"x","confidence":0.8}`,
			want: RedFlag{Issue: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got RedFlag
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedFlagIsStructured(t *testing.T) {
	assert.True(t, RedFlag{Issue: "x"}.IsStructured())
	assert.True(t, RedFlag{Evidence: "y"}.IsStructured())
	assert.False(t, RedFlag{Note: "free-form"}.IsStructured())
}

func TestRedFlagMarshal(t *testing.T) {
	structured, err := json.Marshal(RedFlag{Issue: "a", Severity: "LOW"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"issue":"a","severity":"LOW"}`, string(structured))

	note, err := json.Marshal(RedFlag{Note: "just a note"})
	require.NoError(t, err)
	assert.Equal(t, `"just a note"`, string(note))
}

func TestExposureUnmarshal(t *testing.T) {
	t.Run("scalar string", func(t *testing.T) {
		var e Exposure
		require.NoError(t, json.Unmarshal([]byte(`"Rs. 45 Crores"`), &e))
		assert.Equal(t, "Rs. 45 Crores", e.Scalar)
		assert.False(t, e.IsStructured())
	})

	t.Run("bare number", func(t *testing.T) {
		var e Exposure
		require.NoError(t, json.Unmarshal([]byte(`450000000`), &e))
		assert.Equal(t, "450000000", e.Scalar)
	})

	t.Run("nested object retained verbatim", func(t *testing.T) {
		var e Exposure
		require.NoError(t, json.Unmarshal([]byte(`{"total":"45 Crores","currency":"INR"}`), &e))
		assert.True(t, e.IsStructured())
		assert.JSONEq(t, `{"total":"45 Crores","currency":"INR"}`, string(e.Detail))
	})

	t.Run("null", func(t *testing.T) {
		var e Exposure
		require.NoError(t, json.Unmarshal([]byte(`null`), &e))
		assert.False(t, e.IsStructured())
		assert.Empty(t, e.Scalar)
	})
}

func TestExposureMarshalRoundTrip(t *testing.T) {
	out, err := json.Marshal(Exposure{Scalar: "Unknown"})
	require.NoError(t, err)
	assert.Equal(t, `"Unknown"`, string(out))

	nested := Exposure{Detail: json.RawMessage(`{"total":1}`)}
	out, err = json.Marshal(nested)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":1}`, string(out))
}

func TestScoreUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Score
	}{
		{name: "integer", in: `87`, want: 87},
		{name: "float", in: `87.4`, want: 87},
		{name: "quoted", in: `"87"`, want: 87},
		{name: "null", in: `null`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Score
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var s Score
	assert.Error(t, json.Unmarshal([]byte(`"high"`), &s))
}

func TestAnalysisResultUnmarshalModelReply(t *testing.T) {
	reply := `{
		"compliance_score": 62,
		"risk_level": "MEDIUM",
		"red_flags": [
			{"issue": "Loan without board approval", "severity": "HIGH", "regulation": "Section 188", "evidence": "Note 32"},
			"Interest-free advance to KMP"
		],
		"financial_exposure": "Rs. 12.5 Crores"
	}`

	var result AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(reply), &result))

	assert.Equal(t, Score(62), result.ComplianceScore)
	assert.Equal(t, "MEDIUM", result.RiskLevel)
	require.Len(t, result.RedFlags, 2)
	assert.True(t, result.RedFlags[0].IsStructured())
	assert.False(t, result.RedFlags[1].IsStructured())
	assert.Equal(t, "Interest-free advance to KMP", result.RedFlags[1].Note)
	assert.Equal(t, "Rs. 12.5 Crores", result.FinancialExposure.Scalar)
}
