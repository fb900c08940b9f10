package evidence

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"valska/internal/chains"
	"valska/internal/logging"
)

// CaseResult is the null-test outcome for one perturbation level.
type CaseResult struct {
	Level   chains.Level
	Bayes   *BayesFactor
	Verdict Verdict

	// Err explains a VerdictError outcome.
	Err error
}

// Summary aggregates a sweep.
type Summary struct {
	Cases []CaseResult

	Pass  int
	Fail  int
	Error int
}

// Total returns the number of evaluated cases.
func (s *Summary) Total() int { return len(s.Cases) }

// AllPassed reports whether every readable case passed.
func (s *Summary) AllPassed() bool {
	return s.Fail == 0 && s.Pass == s.Total()-s.Error
}

// Analyzer runs BaNTER null tests over the catalog.
type Analyzer struct {
	ChainsRoot string
	Catalog    chains.Catalog

	// FileRoot of the sampler outputs inside each chain directory.
	FileRoot string

	// Concurrency bounds how many cases are evaluated at once.
	// Values below 1 mean sequential.
	Concurrency int
}

// AnalyzeLevel runs the null test for a single perturbation level.
func (a *Analyzer) AnalyzeLevel(level chains.Level) CaseResult {
	timer := logging.StartTimer(logging.CategoryEvidence, "Null test "+level.Raw)
	defer timer.Stop()

	result := CaseResult{Level: level, Verdict: VerdictError}

	fgEoRDir, err := ChainDir(a.ChainsRoot, a.Catalog, level.FgEoRKey())
	if err != nil {
		result.Err = err
		return result
	}
	fgOnlyDir, err := ChainDir(a.ChainsRoot, a.Catalog, level.FgOnlyKey())
	if err != nil {
		result.Err = err
		return result
	}

	bf, err := Compare(fgEoRDir, fgOnlyDir, a.FileRoot, level.FgEoRKey(), level.FgOnlyKey())
	if err != nil {
		logging.EvidenceWarn("Null test %s failed: %v", level.Raw, err)
		result.Err = err
		return result
	}

	result.Bayes = bf
	result.Verdict = NullTestVerdict(bf)
	return result
}

// Sweep evaluates the null test for every given level and aggregates the
// verdicts. Case order in the summary matches the input order. Unreadable
// evidences become ERROR cases rather than aborting the sweep; the returned
// error is non-nil only when the context is canceled.
func (a *Analyzer) Sweep(ctx context.Context, levels []chains.Level) (*Summary, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("no perturbation levels to analyze")
	}

	logging.Evidence("Sweeping %d perturbation levels", len(levels))

	results := make([]CaseResult, len(levels))

	g, ctx := errgroup.WithContext(ctx)
	limit := a.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, level := range levels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.AnalyzeLevel(level)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{Cases: results}
	for _, r := range results {
		switch r.Verdict {
		case VerdictPass:
			summary.Pass++
		case VerdictFail:
			summary.Fail++
		default:
			summary.Error++
		}
	}

	logging.Evidence("Sweep complete: %d PASS, %d FAIL, %d ERROR",
		summary.Pass, summary.Fail, summary.Error)
	return summary, nil
}

// SelectLevels picks the sweep cases from the catalog. onlyNegative and
// onlyPositive are mutually exclusive; with neither set, all paired levels
// are returned (negatives first, by magnitude).
func SelectLevels(catalog chains.Catalog, onlyNegative, onlyPositive bool) ([]chains.Level, error) {
	if onlyNegative && onlyPositive {
		return nil, fmt.Errorf("only-negative and only-positive are mutually exclusive")
	}

	all, negative, positive := chains.AvailableLevels(catalog)
	switch {
	case onlyNegative:
		return negative, nil
	case onlyPositive:
		return positive, nil
	default:
		return all, nil
	}
}
