package chains

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Prefixes of the paired catalog entries a BaNTER null test needs: the
// analysis that models foregrounds plus EoR, and the foreground-only twin.
const (
	FgEoRPrefix  = "GSM_FgEoR_"
	FgOnlyPrefix = "GSM_FgOnly_"
)

// Level is a beam FWHM perturbation level, e.g. "-1e-3pp" for a -0.001
// percentage-point perturbation.
type Level struct {
	// Raw is the level as it appears in catalog keys.
	Raw string

	// Magnitude is the absolute perturbation in percentage points.
	Magnitude float64

	// Negative reports whether the FWHM was shrunk rather than grown.
	Negative bool
}

// String returns the raw level.
func (l Level) String() string { return l.Raw }

// FgEoRKey returns the catalog key of the foreground+EoR analysis.
func (l Level) FgEoRKey() string { return FgEoRPrefix + l.Raw }

// FgOnlyKey returns the catalog key of the foreground-only analysis.
func (l Level) FgOnlyKey() string { return FgOnlyPrefix + l.Raw }

// ParseLevel parses a perturbation level string. Valid levels carry an
// explicit sign, a magnitude in scientific or plain notation, and a "pp"
// suffix: -1e-3pp, +1e0pp, -5e0pp.
func ParseLevel(raw string) (Level, error) {
	if len(raw) < 4 {
		return Level{}, fmt.Errorf("perturbation level too short: %q", raw)
	}
	if raw[0] != '-' && raw[0] != '+' {
		return Level{}, fmt.Errorf("perturbation level %q missing sign", raw)
	}
	if !strings.HasSuffix(raw, "pp") {
		return Level{}, fmt.Errorf("perturbation level %q missing pp suffix", raw)
	}

	mag, err := strconv.ParseFloat(raw[1:len(raw)-2], 64)
	if err != nil {
		return Level{}, fmt.Errorf("invalid perturbation magnitude in %q: %w", raw, err)
	}

	return Level{
		Raw:       raw,
		Magnitude: mag,
		Negative:  raw[0] == '-',
	}, nil
}

// SortLevels orders levels by magnitude, ascending.
func SortLevels(levels []Level) {
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Magnitude < levels[j].Magnitude
	})
}

// AvailableLevels extracts the perturbation levels present in the catalog.
// A level counts only when both the FgEoR and FgOnly entries exist. Returns
// all levels (negatives by magnitude, then positives by magnitude), plus the
// negative and positive subsets.
func AvailableLevels(catalog Catalog) (all, negative, positive []Level) {
	for _, key := range catalog.WithPrefix(FgEoRPrefix) {
		raw := strings.TrimPrefix(key, FgEoRPrefix)
		if _, ok := catalog[FgOnlyPrefix+raw]; !ok {
			continue
		}
		level, err := ParseLevel(raw)
		if err != nil {
			// Catalog keys that don't encode a level are not sweep cases
			continue
		}
		if level.Negative {
			negative = append(negative, level)
		} else {
			positive = append(positive, level)
		}
	}

	SortLevels(negative)
	SortLevels(positive)

	all = append(all, negative...)
	all = append(all, positive...)
	return all, negative, positive
}
