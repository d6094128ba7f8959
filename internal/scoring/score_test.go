package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokeriq/renewal-monitor/internal/domain"
)

func TestScore_AllZeroFactors(t *testing.T) {
	// commissionPercent at its historical min (1) normalizes to 0
	r := domain.Renewal{CommissionPercent: 1}
	res := Score(r)

	assert.Equal(t, 0.0, res.Value)
	assert.Equal(t, 0.0, res.Breakdown["premium"])
	assert.Equal(t, 0.0, res.Breakdown["commissionPercent_normalized"])
}

func TestScore_AllFactorsAtMax(t *testing.T) {
	r := domain.Renewal{
		Premium:           1.016666e7,
		CoveragePremium:   9.497513e6,
		CommissionAmount:  1.595200e6,
		PolicyLimit:       3.857328e8,
		CommissionPercent: 20,
	}
	res := Score(r)

	assert.InDelta(t, 100.0, res.Value, 0.001)
	for _, name := range []string{"premium", "coveragePremium", "commissionAmount", "policyLimit", "commissionPercent"} {
		assert.InDelta(t, 1.0, res.Breakdown[name+"_normalized"], 1e-9, "factor %s should normalize to 1", name)
	}
}

func TestScore_Bounds(t *testing.T) {
	tests := []struct {
		name string
		r    domain.Renewal
	}{
		{"empty renewal", domain.Renewal{}},
		{"mid-range", domain.Renewal{Premium: 5e6, CoveragePremium: 4e6, CommissionAmount: 8e5, PolicyLimit: 1e8, CommissionPercent: 10}},
		{"beyond historical max", domain.Renewal{Premium: 1e9, CoveragePremium: 1e9, CommissionAmount: 1e9, PolicyLimit: 1e12, CommissionPercent: 95}},
		{"commission percent below min", domain.Renewal{CommissionPercent: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Score(tt.r)
			assert.GreaterOrEqual(t, res.Value, 0.0)
			assert.LessOrEqual(t, res.Value, 100.0)
		})
	}
}

func TestScore_Monotonicity(t *testing.T) {
	base := domain.Renewal{
		Premium:           1e6,
		CoveragePremium:   1e6,
		CommissionAmount:  1e5,
		PolicyLimit:       1e7,
		CommissionPercent: 5,
	}
	baseline := Score(base).Value

	bumps := []struct {
		name string
		mod  func(domain.Renewal) domain.Renewal
	}{
		{"premium", func(r domain.Renewal) domain.Renewal { r.Premium *= 2; return r }},
		{"coveragePremium", func(r domain.Renewal) domain.Renewal { r.CoveragePremium *= 2; return r }},
		{"commissionAmount", func(r domain.Renewal) domain.Renewal { r.CommissionAmount *= 2; return r }},
		{"policyLimit", func(r domain.Renewal) domain.Renewal { r.PolicyLimit *= 2; return r }},
		{"commissionPercent", func(r domain.Renewal) domain.Renewal { r.CommissionPercent += 5; return r }},
	}
	for _, b := range bumps {
		t.Run(b.name, func(t *testing.T) {
			assert.GreaterOrEqual(t, Score(b.mod(base)).Value, baseline)
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	r := domain.Renewal{Premium: 123456, PolicyLimit: 7.5e7, CommissionPercent: 12.5}
	first := Score(r)
	second := Score(r)
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, first.Breakdown, second.Breakdown)
}

func TestScore_BreakdownContributionsSum(t *testing.T) {
	r := domain.Renewal{
		Premium:           2e6,
		CoveragePremium:   1e6,
		CommissionAmount:  3e5,
		PolicyLimit:       5e7,
		CommissionPercent: 8,
	}
	res := Score(r)

	var sum float64
	for _, name := range []string{"premium", "coveragePremium", "commissionAmount", "policyLimit", "commissionPercent"} {
		sum += res.Breakdown[name]
	}
	assert.InDelta(t, res.Value, sum*100, 0.001)
}

func TestRankAll_OrdersDescending(t *testing.T) {
	renewals := []domain.Renewal{
		{ID: "R-low", CommissionPercent: 2},
		{ID: "R-high", CommissionPercent: 20, PolicyLimit: 3.857328e8},
		{ID: "R-mid", CommissionPercent: 10},
	}
	ranked := RankAll(renewals)

	require.Len(t, ranked, 3)
	assert.Equal(t, "R-high", ranked[0].ID)
	assert.Equal(t, "R-mid", ranked[1].ID)
	assert.Equal(t, "R-low", ranked[2].ID)
	for _, r := range ranked {
		assert.NotNil(t, r.ScoreBreakdown)
	}
}

func TestRankAll_StableOnTies(t *testing.T) {
	renewals := []domain.Renewal{
		{ID: "R-a", CommissionPercent: 10},
		{ID: "R-b", CommissionPercent: 10},
		{ID: "R-c", CommissionPercent: 10},
	}
	ranked := RankAll(renewals)

	require.Len(t, ranked, 3)
	assert.Equal(t, "R-a", ranked[0].ID)
	assert.Equal(t, "R-b", ranked[1].ID)
	assert.Equal(t, "R-c", ranked[2].ID)
}

func TestRankAll_DoesNotMutateInput(t *testing.T) {
	renewals := []domain.Renewal{
		{ID: "R-1", CommissionPercent: 5},
		{ID: "R-2", CommissionPercent: 15},
	}
	RankAll(renewals)

	assert.Equal(t, "R-1", renewals[0].ID)
	assert.Zero(t, renewals[0].PriorityScore)
	assert.Nil(t, renewals[0].ScoreBreakdown)
}
