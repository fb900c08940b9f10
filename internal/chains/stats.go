package chains

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"valska/internal/logging"
)

// Evidence is the global log-evidence reported by a nested sampler.
type Evidence struct {
	// LogZ is ln(Z).
	LogZ float64

	// Err is the sampler's 1-sigma uncertainty on LogZ.
	Err float64

	// ImportanceSampled reports whether LogZ came from the importance
	// nested sampling estimate (MultiNest INS runs).
	ImportanceSampled bool
}

// StatsFileCandidates returns the stats files a sampler may have written for
// the given file root, in preference order. MultiNest writes <root>stats.dat,
// PolyChord writes <root>.stats.
func StatsFileCandidates(chainDir, fileRoot string) []string {
	root := strings.TrimSuffix(fileRoot, "/")
	return []string{
		filepath.Join(chainDir, root+"stats.dat"),
		filepath.Join(chainDir, root+".stats"),
	}
}

// ReadEvidence locates and parses the stats file for a chain directory.
func ReadEvidence(chainDir, fileRoot string) (Evidence, error) {
	for _, candidate := range StatsFileCandidates(chainDir, fileRoot) {
		f, err := os.Open(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Evidence{}, fmt.Errorf("failed to open stats file %s: %w", candidate, err)
		}
		ev, err := ParseStats(f)
		f.Close()
		if err != nil {
			return Evidence{}, fmt.Errorf("failed to parse %s: %w", candidate, err)
		}
		logging.ChainsDebug("Read evidence from %s: lnZ=%.6f +/- %.6f (INS=%v)",
			candidate, ev.LogZ, ev.Err, ev.ImportanceSampled)
		return ev, nil
	}
	return Evidence{}, fmt.Errorf("no stats file found in %s for root %q", chainDir, fileRoot)
}

// ParseStats extracts the global log-evidence from a sampler stats file.
// Handles the MultiNest format
//
//	Nested Sampling Global Log-Evidence           :  -115.5 +/- 0.1
//	Nested Importance Sampling Global Log-Evidence:  -115.4 +/- 0.05
//
// preferring the importance-sampled estimate when both are present, and the
// PolyChord format
//
//	log(Z)       =  -115.2 +/- 0.1
func ParseStats(r io.Reader) (Evidence, error) {
	var (
		ev    Evidence
		found bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.Contains(line, "Importance Sampling Global Log-Evidence"):
			logZ, errVal, err := parseValueErr(line, ":")
			if err != nil {
				return Evidence{}, err
			}
			// INS estimate wins regardless of line order
			ev = Evidence{LogZ: logZ, Err: errVal, ImportanceSampled: true}
			found = true

		case strings.Contains(line, "Global Log-Evidence"):
			if found && ev.ImportanceSampled {
				continue
			}
			logZ, errVal, err := parseValueErr(line, ":")
			if err != nil {
				return Evidence{}, err
			}
			ev = Evidence{LogZ: logZ, Err: errVal}
			found = true

		case strings.HasPrefix(strings.TrimSpace(line), "log(Z)"):
			if found {
				continue
			}
			logZ, errVal, err := parseValueErr(line, "=")
			if err != nil {
				return Evidence{}, err
			}
			ev = Evidence{LogZ: logZ, Err: errVal}
			found = true
		}
	}
	if err := scanner.Err(); err != nil {
		return Evidence{}, fmt.Errorf("failed to read stats: %w", err)
	}
	if !found {
		return Evidence{}, fmt.Errorf("no log-evidence line found")
	}
	return ev, nil
}

// parseValueErr parses the "<value> +/- <error>" tail after a separator.
func parseValueErr(line, sep string) (float64, float64, error) {
	idx := strings.Index(line, sep)
	if idx < 0 {
		return 0, 0, fmt.Errorf("malformed evidence line: %q", line)
	}
	tail := line[idx+len(sep):]

	parts := strings.Split(tail, "+/-")
	value, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid evidence value in %q: %w", line, err)
	}

	var errVal float64
	if len(parts) > 1 {
		errVal, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid evidence error in %q: %w", line, err)
		}
	}
	return value, errVal, nil
}
