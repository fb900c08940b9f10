package chains

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multinestStats = `
 Nested Sampling Global Log-Evidence           :  -115.500000 +/-   0.120000
 Nested Importance Sampling Global Log-Evidence:  -115.400000 +/-   0.050000

 Total Likelihood Evaluations:        123456
`

const multinestStatsNoINS = `
 Nested Sampling Global Log-Evidence           :  -115.500000 +/-   0.120000
`

const polychordStats = `PolyChord v1.20
log(Z)       =  -115.200000 +/-   0.100000
log(Z_1)     =  -115.900000 +/-   0.200000
`

func TestParseStatsMultiNest(t *testing.T) {
	ev, err := ParseStats(strings.NewReader(multinestStats))
	require.NoError(t, err)

	// INS estimate preferred over the vanilla one
	assert.InDelta(t, -115.4, ev.LogZ, 1e-9)
	assert.InDelta(t, 0.05, ev.Err, 1e-9)
	assert.True(t, ev.ImportanceSampled)
}

func TestParseStatsMultiNestNoINS(t *testing.T) {
	ev, err := ParseStats(strings.NewReader(multinestStatsNoINS))
	require.NoError(t, err)

	assert.InDelta(t, -115.5, ev.LogZ, 1e-9)
	assert.InDelta(t, 0.12, ev.Err, 1e-9)
	assert.False(t, ev.ImportanceSampled)
}

func TestParseStatsINSLineFirst(t *testing.T) {
	reordered := ` Nested Importance Sampling Global Log-Evidence:  -115.400000 +/-   0.050000
 Nested Sampling Global Log-Evidence           :  -115.500000 +/-   0.120000
`
	ev, err := ParseStats(strings.NewReader(reordered))
	require.NoError(t, err)
	assert.InDelta(t, -115.4, ev.LogZ, 1e-9)
	assert.True(t, ev.ImportanceSampled)
}

func TestParseStatsPolyChord(t *testing.T) {
	ev, err := ParseStats(strings.NewReader(polychordStats))
	require.NoError(t, err)

	// Only the global log(Z), not the per-cluster lines
	assert.InDelta(t, -115.2, ev.LogZ, 1e-9)
	assert.InDelta(t, 0.1, ev.Err, 1e-9)
	assert.False(t, ev.ImportanceSampled)
}

func TestParseStatsNoEvidence(t *testing.T) {
	_, err := ParseStats(strings.NewReader("nothing useful here\n"))
	assert.Error(t, err)
}

func TestParseStatsMalformedValue(t *testing.T) {
	_, err := ParseStats(strings.NewReader("Nested Sampling Global Log-Evidence : not-a-number +/- 0.1\n"))
	assert.Error(t, err)
}

func TestStatsFileCandidates(t *testing.T) {
	candidates := StatsFileCandidates("/chains/run1", "data-")
	require.Len(t, candidates, 2)
	assert.Equal(t, filepath.Join("/chains/run1", "data-stats.dat"), candidates[0])
	assert.Equal(t, filepath.Join("/chains/run1", "data-.stats"), candidates[1])
}

func TestReadEvidence(t *testing.T) {
	dir := t.TempDir()
	writeStats(t, dir, "data-stats.dat", multinestStats)

	ev, err := ReadEvidence(dir, "data-")
	require.NoError(t, err)
	assert.InDelta(t, -115.4, ev.LogZ, 1e-9)
}

func TestReadEvidencePolyChordFallback(t *testing.T) {
	dir := t.TempDir()
	writeStats(t, dir, "data-.stats", polychordStats)

	ev, err := ReadEvidence(dir, "data-")
	require.NoError(t, err)
	assert.InDelta(t, -115.2, ev.LogZ, 1e-9)
}

func TestReadEvidenceMissing(t *testing.T) {
	_, err := ReadEvidence(t.TempDir(), "data-")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no stats file found")
}

func writeStats(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}
