package evaluation

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/Maanisha27/MediTriage/internal/mcda"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

// TopK is the size of the head of the queue compared between rankers.
const TopK = 3

// MetricRecorder persists summary numbers. The SQLite client satisfies it.
type MetricRecorder interface {
	RecordMetric(name string, value float64, tags map[string]string) error
}

type Evaluator struct {
	recorder MetricRecorder
}

// Report summarizes how well the TOPSIS order agrees with the PROMETHEE cross
// check and how often the fuzzy label matches the assigned priority band.
type Report struct {
	Alternatives   int     `json:"alternatives"`
	SpearmanRho    float64 `json:"spearman_rho"`
	TopRankMatch   bool    `json:"top_rank_match"`
	TopKOverlap    float64 `json:"top_k_overlap"`
	LabelAgreement float64 `json:"label_agreement"`
	Disagreements  []int   `json:"disagreements,omitempty"`
}

func NewEvaluator(recorder MetricRecorder) *Evaluator {
	return &Evaluator{recorder: recorder}
}

// Evaluate compares two score vectors over the same alternatives. priorities
// and labels may be nil, in which case label agreement is reported as 0.
func (e *Evaluator) Evaluate(topsis, promethee []float64, priorities, labels []string) (*Report, error) {
	if len(topsis) != len(promethee) {
		return nil, fmt.Errorf("score vectors differ in length: %d vs %d: %w", len(topsis), len(promethee), mcda.ErrDimensionMismatch)
	}

	report := &Report{Alternatives: len(topsis)}
	if len(topsis) == 0 {
		return report, nil
	}

	_, topsisRanks := mcda.RankLikeScores(topsis)
	_, prometheeRanks := mcda.RankLikeScores(promethee)

	report.SpearmanRho = SpearmanRho(topsisRanks, prometheeRanks)
	report.TopRankMatch = indexOfRank(topsisRanks, 1) == indexOfRank(prometheeRanks, 1)
	report.TopKOverlap = topKOverlap(topsisRanks, prometheeRanks, TopK)

	for i := range topsisRanks {
		if topsisRanks[i] != prometheeRanks[i] {
			report.Disagreements = append(report.Disagreements, i)
		}
	}

	if priorities != nil && labels != nil {
		agreement, err := LabelAgreement(priorities, labels)
		if err != nil {
			return nil, err
		}
		report.LabelAgreement = agreement
	}

	if e.recorder != nil {
		tags := map[string]string{"alternatives": fmt.Sprint(report.Alternatives)}
		if err := e.recorder.RecordMetric("triage_spearman_rho", report.SpearmanRho, tags); err != nil {
			logger.Warn("Failed to record agreement metric", zap.Error(err))
		}
	}

	logger.Debug("Triage rankings compared",
		zap.Int("alternatives", report.Alternatives),
		zap.Float64("spearman_rho", report.SpearmanRho),
		zap.Bool("top_rank_match", report.TopRankMatch),
	)

	return report, nil
}

// SpearmanRho is the Pearson correlation of two ordinal rank vectors. A single
// alternative, or a degenerate ranking with no variance, counts as perfect
// agreement.
func SpearmanRho(a, b []int) float64 {
	if len(a) < 2 {
		return 1
	}
	x := make([]float64, len(a))
	y := make([]float64, len(b))
	for i := range a {
		x[i] = float64(a[i])
		y[i] = float64(b[i])
	}
	rho := stat.Correlation(x, y, nil)
	if math.IsNaN(rho) {
		return 1
	}
	return rho
}

var priorityForLabel = map[string]string{
	string(mcda.LabelEmergency):  "Critical",
	string(mcda.LabelUrgent):     "High",
	string(mcda.LabelSemiUrgent): "Medium",
	string(mcda.LabelRoutine):    "Low",
}

// LabelAgreement is the fraction of alternatives whose fuzzy label maps to the
// same band as their TOPSIS priority.
func LabelAgreement(priorities, labels []string) (float64, error) {
	if len(priorities) != len(labels) {
		return 0, fmt.Errorf("%d priorities for %d labels: %w", len(priorities), len(labels), mcda.ErrDimensionMismatch)
	}
	if len(labels) == 0 {
		return 0, nil
	}

	matched := 0
	for i, label := range labels {
		if priorityForLabel[label] == priorities[i] {
			matched++
		}
	}
	return float64(matched) / float64(len(labels)), nil
}

func indexOfRank(ranks []int, rank int) int {
	for i, r := range ranks {
		if r == rank {
			return i
		}
	}
	return -1
}

func topKOverlap(a, b []int, k int) float64 {
	if k > len(a) {
		k = len(a)
	}
	if k == 0 {
		return 0
	}

	shared := 0
	for i := range a {
		if a[i] <= k && b[i] <= k {
			shared++
		}
	}
	return float64(shared) / float64(k)
}

func (e *Evaluator) GenerateReport(report *Report) string {
	return fmt.Sprintf(`
Triage Agreement Report
=======================

Patients Ranked: %d

TOPSIS vs PROMETHEE:
- Spearman rho: %.3f
- Same top patient: %t
- Top-%d overlap: %.1f%%
- Rank disagreements: %d

Fuzzy label vs priority band: %.1f%%
`,
		report.Alternatives,
		report.SpearmanRho,
		report.TopRankMatch,
		TopK, report.TopKOverlap*100,
		len(report.Disagreements),
		report.LabelAgreement*100,
	)
}

type multiRecorder []MetricRecorder

// Recorders fans a metric out to several recorders. Every recorder is tried;
// the first error is returned.
func Recorders(rs ...MetricRecorder) MetricRecorder {
	return multiRecorder(rs)
}

func (m multiRecorder) RecordMetric(name string, value float64, tags map[string]string) error {
	var first error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.RecordMetric(name, value, tags); err != nil && first == nil {
			first = err
		}
	}
	return first
}
