// Package chains models the sampler output artifacts the validation consumes:
// chain directories, their stats files, the YAML catalog of analysis paths,
// and the perturbation levels encoded in catalog keys.
//
// Nothing here runs inference. Chains are produced by external tools
// (BayesEoR driving MultiNest or PolyChord); valska only reads what they
// leave on disk.
package chains

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// PathManager resolves the chains/data/results layout from a base directory.
// Directories that are not set explicitly default to subdirectories of the
// base and are created on first use.
type PathManager struct {
	baseDir    string
	chainsDir  string
	dataDir    string
	resultsDir string
}

// NewPathManager builds a PathManager. Only baseDir is required; empty
// chains/data/results fall back to baseDir/chains, baseDir/data and
// baseDir/results.
func NewPathManager(baseDir, chainsDir, dataDir, resultsDir string) (*PathManager, error) {
	if baseDir == "" {
		baseDir = "."
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base dir: %w", err)
	}

	pm := &PathManager{baseDir: abs}

	resolve := func(explicit, fallback string) (string, error) {
		if explicit == "" {
			p := filepath.Join(abs, fallback)
			if err := os.MkdirAll(p, 0755); err != nil {
				return "", fmt.Errorf("failed to create %s: %w", p, err)
			}
			return p, nil
		}
		return filepath.Abs(explicit)
	}

	if pm.chainsDir, err = resolve(chainsDir, "chains"); err != nil {
		return nil, err
	}
	if pm.dataDir, err = resolve(dataDir, "data"); err != nil {
		return nil, err
	}
	if pm.resultsDir, err = resolve(resultsDir, "results"); err != nil {
		return nil, err
	}

	return pm, nil
}

// BaseDir returns the resolved base directory.
func (pm *PathManager) BaseDir() string { return pm.baseDir }

// ChainsDir returns the resolved chains directory.
func (pm *PathManager) ChainsDir() string { return pm.chainsDir }

// DataDir returns the resolved data directory.
func (pm *PathManager) DataDir() string { return pm.dataDir }

// ResultsDir returns the resolved results directory.
func (pm *PathManager) ResultsDir() string { return pm.resultsDir }

// Paths returns all managed paths keyed by name.
func (pm *PathManager) Paths() map[string]string {
	return map[string]string{
		"base_dir":    pm.baseDir,
		"chains_dir":  pm.chainsDir,
		"data_dir":    pm.dataDir,
		"results_dir": pm.resultsDir,
	}
}

// Path returns a managed path by name.
func (pm *PathManager) Path(name string) (string, error) {
	paths := pm.Paths()
	p, ok := paths[name]
	if !ok {
		names := make([]string, 0, len(paths))
		for n := range paths {
			names = append(names, n)
		}
		sort.Strings(names)
		return "", fmt.Errorf("path %q not found, valid paths are %v", name, names)
	}
	return p, nil
}

// CreateSubdir creates (if needed) and returns a subdirectory of one of the
// managed directories.
func (pm *PathManager) CreateSubdir(parent, name string) (string, error) {
	parentDir, err := pm.Path(parent)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(parentDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// Find returns files matching a glob pattern under the named managed
// directory, or under the base directory when name is empty.
func (pm *PathManager) Find(pattern, name string) ([]string, error) {
	dir := pm.baseDir
	if name != "" {
		var err error
		dir, err = pm.Path(name)
		if err != nil {
			return nil, err
		}
	}
	return filepath.Glob(filepath.Join(dir, pattern))
}

// Timestamp returns the current time formatted for naming result files and
// directories, e.g. 2026-08-25_143005.
func Timestamp() string {
	return time.Now().Format("2006-01-02_150405")
}
