package chains

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw       string
		magnitude float64
		negative  bool
	}{
		{"-1e-3pp", 1e-3, true},
		{"-1e-2pp", 1e-2, true},
		{"-1e-1pp", 1e-1, true},
		{"-1e0pp", 1, true},
		{"-5e0pp", 5, true},
		{"+1e-3pp", 1e-3, false},
		{"+1e0pp", 1, false},
		{"+5e0pp", 5, false},
		{"+0.5pp", 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			level, err := ParseLevel(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, level.Raw)
			assert.Equal(t, tt.magnitude, level.Magnitude)
			assert.Equal(t, tt.negative, level.Negative)
		})
	}
}

func TestParseLevelInvalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"pp",
		"1e-3pp", // no sign
		"-1e-3",  // no suffix
		"-abcpp", // no magnitude
		"+pp",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseLevel(raw)
			assert.Error(t, err)
		})
	}
}

func TestLevelKeys(t *testing.T) {
	level, err := ParseLevel("-1e-3pp")
	require.NoError(t, err)

	assert.Equal(t, "GSM_FgEoR_-1e-3pp", level.FgEoRKey())
	assert.Equal(t, "GSM_FgOnly_-1e-3pp", level.FgOnlyKey())
}

func TestSortLevels(t *testing.T) {
	levels := mustLevels(t, "-5e0pp", "-1e-3pp", "-1e0pp", "-1e-1pp", "-1e-2pp")
	SortLevels(levels)

	got := make([]string, len(levels))
	for i, l := range levels {
		got[i] = l.Raw
	}
	want := []string{"-1e-3pp", "-1e-2pp", "-1e-1pp", "-1e0pp", "-5e0pp"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sorted levels mismatch (-want +got):\n%s", diff)
	}
}

func TestAvailableLevels(t *testing.T) {
	catalog := Catalog{
		"GSM_FgEoR_-1e-3pp":  "v5d0/GSM_FgEoR_-1e-3pp/MN",
		"GSM_FgOnly_-1e-3pp": "v5d0/GSM_FgOnly_-1e-3pp/MN",
		"GSM_FgEoR_+1e0pp":   "v5d0/GSM_FgEoR_+1e0pp/MN",
		"GSM_FgOnly_+1e0pp":  "v5d0/GSM_FgOnly_+1e0pp/MN",
		"GSM_FgEoR_-5e0pp":   "v5d0/GSM_FgEoR_-5e0pp/MN",
		"GSM_FgOnly_-5e0pp":  "v5d0/GSM_FgOnly_-5e0pp/MN",

		// FgEoR without its FgOnly twin is not a sweep case
		"GSM_FgEoR_+5e0pp": "v5d0/GSM_FgEoR_+5e0pp/MN",

		// Unperturbed reference entries carry no level
		"GSM_FgEoR":  "v5d0/GSM_FgEoR/MN",
		"GSM_FgOnly": "v5d0/GSM_FgOnly/MN",
	}

	all, negative, positive := AvailableLevels(catalog)

	assert.Len(t, all, 3)
	assert.Len(t, negative, 2)
	assert.Len(t, positive, 1)

	// Negatives by magnitude, then positives
	assert.Equal(t, "-1e-3pp", all[0].Raw)
	assert.Equal(t, "-5e0pp", all[1].Raw)
	assert.Equal(t, "+1e0pp", all[2].Raw)
}

func TestAvailableLevelsEmptyCatalog(t *testing.T) {
	all, negative, positive := AvailableLevels(Catalog{})
	assert.Empty(t, all)
	assert.Empty(t, negative)
	assert.Empty(t, positive)
}

func mustLevels(t *testing.T, raws ...string) []Level {
	t.Helper()
	levels := make([]Level, 0, len(raws))
	for _, raw := range raws {
		level, err := ParseLevel(raw)
		require.NoError(t, err)
		levels = append(levels, level)
	}
	return levels
}
