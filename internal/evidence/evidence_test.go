package evidence

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valska/internal/chains"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		logBF float64
		want  string
	}{
		{6, "Very strong evidence for model 1"},
		{5, "Strong evidence for model 1"},
		{4, "Strong evidence for model 1"},
		{3, "Moderate evidence for model 1"},
		{2, "Moderate evidence for model 1"},
		{1, "Weak/inconclusive evidence"},
		{0, "Weak/inconclusive evidence"},
		{-1, "Weak/inconclusive evidence"},
		{-2, "Moderate evidence for model 2"},
		{-3, "Moderate evidence for model 2"},
		{-4, "Strong evidence for model 2"},
		{-5, "Strong evidence for model 2"},
		{-6, "Very strong evidence for model 2"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("logBF=%g", tt.logBF), func(t *testing.T) {
			assert.Equal(t, tt.want, Interpret(tt.logBF))
		})
	}
}

func TestCompare(t *testing.T) {
	dir1 := writeChain(t, -115.4)
	dir2 := writeChain(t, -110.2)

	bf, err := Compare(dir1, dir2, "data-", "FgEoR", "FgOnly")
	require.NoError(t, err)

	assert.Equal(t, "FgEoR", bf.Model1)
	assert.Equal(t, "FgOnly", bf.Model2)
	assert.InDelta(t, -5.2, bf.LogBF, 1e-9)
	assert.Equal(t, "Very strong evidence for model 2", bf.Interpretation)
}

func TestCompareMissingChain(t *testing.T) {
	dir1 := writeChain(t, -115.4)

	_, err := Compare(dir1, t.TempDir(), "data-", "FgEoR", "FgOnly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FgOnly")
}

func TestNullTestVerdict(t *testing.T) {
	assert.Equal(t, VerdictPass, NullTestVerdict(&BayesFactor{LogBF: -3.5}))
	assert.Equal(t, VerdictPass, NullTestVerdict(&BayesFactor{LogBF: -0.001}))

	// Zero and positive both fail: the null test demands the FgEoR model lose
	assert.Equal(t, VerdictFail, NullTestVerdict(&BayesFactor{LogBF: 0}))
	assert.Equal(t, VerdictFail, NullTestVerdict(&BayesFactor{LogBF: 2.1}))

	assert.Equal(t, VerdictError, NullTestVerdict(nil))
}

func TestChainDir(t *testing.T) {
	catalog := chains.Catalog{"GSM_FgEoR_-1e-3pp": "v5d0/GSM_FgEoR_-1e-3pp/MN"}

	dir, err := ChainDir("/chains", catalog, "GSM_FgEoR_-1e-3pp")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/chains", "v5d0/GSM_FgEoR_-1e-3pp/MN"), dir)

	_, err = ChainDir("/chains", catalog, "GSM_FgOnly_-1e-3pp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entry")
}

// writeChain creates a chain directory holding a MultiNest stats file with the
// given log-evidence.
func writeChain(t *testing.T, logZ float64) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(" Nested Sampling Global Log-Evidence           :  %f +/-   0.100000\n", logZ)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data-stats.dat"), []byte(content), 0644))
	return dir
}
