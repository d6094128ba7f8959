// Package scoring ranks renewals by a deterministic, five-factor
// priority score. Each factor is min-max normalized against fixed
// historical bounds and weighted; the weights sum to 1.0 so the score
// lands in [0,100].
package scoring

import (
	"math"
	"sort"

	"github.com/brokeriq/renewal-monitor/internal/domain"
)

// factor is one scored attribute of a renewal with its historical
// normalization bounds and optimized weight.
type factor struct {
	name   string
	min    float64
	max    float64
	weight float64
	value  func(domain.Renewal) float64
}

// Bounds come from the historical placement book; weights from the
// offline optimization run. Shipped as constants, never derived at
// runtime.
var factors = []factor{
	{"premium", 0, 1.016666e7, 0.0500, func(r domain.Renewal) float64 { return r.Premium }},
	{"coveragePremium", 0, 9.497513e6, 0.0500, func(r domain.Renewal) float64 { return r.CoveragePremium }},
	{"commissionAmount", 0, 1.595200e6, 0.0500, func(r domain.Renewal) float64 { return r.CommissionAmount }},
	{"policyLimit", 0, 3.857328e8, 0.2178, func(r domain.Renewal) float64 { return r.PolicyLimit }},
	{"commissionPercent", 1, 20, 0.6322, func(r domain.Renewal) float64 { return r.CommissionPercent }},
}

// Result is a computed priority score. Breakdown holds, for each factor,
// the weighted contribution under the factor name and the pre-weight
// normalized value under "<name>_normalized".
type Result struct {
	Value     float64            `json:"value"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// Score computes the priority score for one renewal. Pure and
// deterministic: no I/O, no clock, no mutation of the input.
func Score(r domain.Renewal) Result {
	breakdown := make(map[string]float64, len(factors)*2)
	var weighted float64

	for _, f := range factors {
		raw := f.value(r)

		var normalized float64
		if f.max != f.min {
			normalized = (raw - f.min) / (f.max - f.min)
		}
		normalized = clamp01(normalized)

		contribution := normalized * f.weight
		weighted += contribution

		breakdown[f.name] = contribution
		breakdown[f.name+"_normalized"] = normalized
	}

	return Result{
		Value:     round3(weighted * 100),
		Breakdown: breakdown,
	}
}

// RankAll returns a new slice with every renewal's PriorityScore and
// ScoreBreakdown populated, ordered by score descending. Ties keep the
// input's relative order.
func RankAll(renewals []domain.Renewal) []domain.Renewal {
	ranked := make([]domain.Renewal, len(renewals))
	for i, r := range renewals {
		res := Score(r)
		r.PriorityScore = res.Value
		r.ScoreBreakdown = res.Breakdown
		ranked[i] = r
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PriorityScore > ranked[j].PriorityScore
	})
	return ranked
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
