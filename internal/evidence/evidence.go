// Package evidence evaluates Bayes factors between completed sampler runs and
// applies the BaNTER null test: on a foreground-only dataset the model that
// includes an EoR signal must lose to the foreground-only model, otherwise the
// analysis pipeline is detecting signal that is not there.
package evidence

import (
	"fmt"
	"path/filepath"

	"valska/internal/chains"
	"valska/internal/logging"
)

// Interpretation thresholds for the log Bayes factor (Jeffreys-style scale).
const (
	ThresholdModerate   = 1.0
	ThresholdStrong     = 3.0
	ThresholdVeryStrong = 5.0
)

// Interpret describes the strength of evidence carried by a log Bayes factor
// ln(Z1/Z2).
func Interpret(logBF float64) string {
	switch {
	case logBF > ThresholdVeryStrong:
		return "Very strong evidence for model 1"
	case logBF > ThresholdStrong:
		return "Strong evidence for model 1"
	case logBF > ThresholdModerate:
		return "Moderate evidence for model 1"
	case logBF > -ThresholdModerate:
		return "Weak/inconclusive evidence"
	case logBF > -ThresholdStrong:
		return "Moderate evidence for model 2"
	case logBF > -ThresholdVeryStrong:
		return "Strong evidence for model 2"
	default:
		return "Very strong evidence for model 2"
	}
}

// BayesFactor is the outcome of comparing two models' evidences.
type BayesFactor struct {
	Model1 string
	Model2 string

	Evidence1 chains.Evidence
	Evidence2 chains.Evidence

	// LogBF is ln(Z1/Z2).
	LogBF float64

	Interpretation string
}

// Compare reads both chains' evidences and forms the log Bayes factor
// ln(Z1/Z2). chainDir1 is the numerator model.
func Compare(chainDir1, chainDir2, fileRoot, model1, model2 string) (*BayesFactor, error) {
	logging.EvidenceDebug("Loading %s chain from %s", model1, chainDir1)
	ev1, err := chains.ReadEvidence(chainDir1, fileRoot)
	if err != nil {
		return nil, fmt.Errorf("evidence for %s: %w", model1, err)
	}

	logging.EvidenceDebug("Loading %s chain from %s", model2, chainDir2)
	ev2, err := chains.ReadEvidence(chainDir2, fileRoot)
	if err != nil {
		return nil, fmt.Errorf("evidence for %s: %w", model2, err)
	}

	bf := &BayesFactor{
		Model1:    model1,
		Model2:    model2,
		Evidence1: ev1,
		Evidence2: ev2,
		LogBF:     ev1.LogZ - ev2.LogZ,
	}
	bf.Interpretation = Interpret(bf.LogBF)

	logging.Evidence("ln BF(%s/%s) = %.6f: %s", model1, model2, bf.LogBF, bf.Interpretation)
	return bf, nil
}

// Verdict is the BaNTER outcome for one null-test case.
type Verdict string

const (
	// VerdictPass means the null test correctly favored the
	// foreground-only model.
	VerdictPass Verdict = "PASS"

	// VerdictFail means an EoR signal was detected in foreground-only
	// data.
	VerdictFail Verdict = "FAIL"

	// VerdictError means an evidence could not be read.
	VerdictError Verdict = "ERROR"
)

// NullTestVerdict applies the BaNTER criterion: the FgEoR model must lose,
// so the test passes only for a strictly negative log Bayes factor.
func NullTestVerdict(bf *BayesFactor) Verdict {
	if bf == nil {
		return VerdictError
	}
	if bf.LogBF < 0 {
		return VerdictPass
	}
	return VerdictFail
}

// ChainDir resolves a catalog entry to an absolute chain directory.
func ChainDir(chainsRoot string, catalog chains.Catalog, key string) (string, error) {
	rel, ok := catalog[key]
	if !ok {
		return "", fmt.Errorf("catalog has no entry for %s", key)
	}
	return filepath.Join(chainsRoot, rel), nil
}
