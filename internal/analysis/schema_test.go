package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-resume-saas/internal/llm"
)

func TestDecodeConformingAnalysis(t *testing.T) {
	res, issues, err := decodeAnalysis([]byte(sqlAnalysis))
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, 72.0, res.Score)
	assert.Equal(t, []string{"SQL"}, res.MissingSkills)
	assert.Equal(t, []string{"clear writing"}, res.Strengths)
	assert.Equal(t, []string{"add metrics"}, res.ImprovementTips)
	assert.Equal(t, "ok", res.Summary)
}

func TestDecodeConformingDropsBlankEntries(t *testing.T) {
	raw := `{"score":40,"missingSkills":[" Go ",""],"strengths":[],"improvementTips":[],"summary":" fine "}`

	res, issues, err := decodeAnalysis([]byte(raw))
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, []string{"Go"}, res.MissingSkills)
	assert.Equal(t, "fine", res.Summary)
}

func TestDecodeRepairsReportedViolations(t *testing.T) {
	raw := []byte(`{"score":"85","missingSkills":"Docker","strengths":["APIs", 3, "", " testing "],"summary":42}`)

	res, issues, err := decodeAnalysis(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, issues)
	assert.Equal(t, 85.0, res.Score)
	assert.NotNil(t, res.MissingSkills)
	assert.Empty(t, res.MissingSkills)
	assert.Equal(t, []string{"APIs", "testing"}, res.Strengths)
	assert.Empty(t, res.ImprovementTips)
	assert.Equal(t, "", res.Summary)
}

func TestDecodeClampsOutOfRangeScore(t *testing.T) {
	high, issues, err := decodeAnalysis([]byte(`{"score":150,"missingSkills":[],"strengths":[],"improvementTips":[],"summary":""}`))
	require.NoError(t, err)
	assert.NotEmpty(t, issues, "maximum violation is reported")
	assert.Equal(t, 100.0, high.Score)

	low, _, err := decodeAnalysis([]byte(`{"score":-3.5}`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, low.Score)
}

func TestDecodeRejectsUnusablePayloads(t *testing.T) {
	for name, raw := range map[string]string{
		"array":        `[1,2,3]`,
		"missing":      `{"missingSkills":["Go"]}`,
		"non numeric":  `{"score":"great"}`,
		"boolean":      `{"score":true}`,
		"null payload": `null`,
		"not json":     `Sure! Here is the analysis`,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := decodeAnalysis([]byte(raw))
			require.ErrorIs(t, err, llm.ErrMalformedOutput)
			got, ok := llm.RawOutput(err)
			require.True(t, ok)
			assert.Equal(t, raw, got)
		})
	}
}
