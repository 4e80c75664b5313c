package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// FutarchyMetrics is the sync.Once-guarded Prometheus registry every
// keeper reports into, the same singleton shape as the teacher's
// observability/metrics.Potso().
type FutarchyMetrics struct {
	swaps             *prometheus.CounterVec
	swapVolume        *prometheus.CounterVec
	twapCranks        *prometheus.CounterVec
	vaultSplits       *prometheus.CounterVec
	vaultRedemptions  *prometheus.CounterVec
	proposalsFinal    *prometheus.CounterVec
	proposalLiquidity *prometheus.GaugeVec
}

var (
	futarchyOnce     sync.Once
	futarchyRegistry *FutarchyMetrics
)

// Metrics returns the process-wide metrics singleton, constructing it
// on first use.
func Metrics() *FutarchyMetrics {
	futarchyOnce.Do(func() {
		futarchyRegistry = &FutarchyMetrics{
			swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "futarchy_amm_swaps_total",
				Help: "Count of swaps executed, by pool and direction.",
			}, []string{"pool", "direction"}),
			swapVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "futarchy_amm_swap_volume_total",
				Help: "Cumulative input volume swapped, by pool.",
			}, []string{"pool"}),
			twapCranks: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "futarchy_amm_twap_cranks_total",
				Help: "Count of oracle cranks, partitioned by whether they were rate-limited.",
			}, []string{"pool", "applied"}),
			vaultSplits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "futarchy_vault_splits_total",
				Help: "Count of deposit (collateral split) operations, by vault and side.",
			}, []string{"vault", "side"}),
			vaultRedemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "futarchy_vault_redemptions_total",
				Help: "Count of redeem_winnings operations, by vault and side.",
			}, []string{"vault", "side"}),
			proposalsFinal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "futarchy_proposals_finalized_total",
				Help: "Count of finalized proposals, partitioned by whether the status quo held.",
			}, []string{"outcome"}),
			proposalLiquidity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "futarchy_proposal_liquidity",
				Help: "Quote-denominated liquidity seeded into a proposal's pools at launch.",
			}, []string{"proposal"}),
		}
		prometheus.MustRegister(
			futarchyRegistry.swaps,
			futarchyRegistry.swapVolume,
			futarchyRegistry.twapCranks,
			futarchyRegistry.vaultSplits,
			futarchyRegistry.vaultRedemptions,
			futarchyRegistry.proposalsFinal,
			futarchyRegistry.proposalLiquidity,
		)
	})
	return futarchyRegistry
}

// ObserveSwap records a completed swap.
func (m *FutarchyMetrics) ObserveSwap(pool, direction string, input uint64) {
	m.swaps.WithLabelValues(pool, direction).Inc()
	m.swapVolume.WithLabelValues(pool).Add(float64(input))
}

// ObserveCrank records an oracle crank attempt; applied is false when
// the crank's own rate limit skipped the update.
func (m *FutarchyMetrics) ObserveCrank(pool string, applied bool) {
	label := "false"
	if applied {
		label = "true"
	}
	m.twapCranks.WithLabelValues(pool, label).Inc()
}

// ObserveSplit records a vault deposit (collateral split).
func (m *FutarchyMetrics) ObserveSplit(vault, side string) {
	m.vaultSplits.WithLabelValues(vault, side).Inc()
}

// ObserveRedemption records a vault redeem_winnings call.
func (m *FutarchyMetrics) ObserveRedemption(vault, side string) {
	m.vaultRedemptions.WithLabelValues(vault, side).Inc()
}

// ObserveFinalize records a proposal's resolution outcome. winnerIdx
// zero means the status quo held.
func (m *FutarchyMetrics) ObserveFinalize(winnerIdx uint32) {
	outcome := "status_quo"
	if winnerIdx != 0 {
		outcome = "challenger"
	}
	m.proposalsFinal.WithLabelValues(outcome).Inc()
}

// SetProposalLiquidity records the quote-denominated liquidity seeded
// at launch_proposal time.
func (m *FutarchyMetrics) SetProposalLiquidity(proposal string, quoteAmount uint64) {
	m.proposalLiquidity.WithLabelValues(proposal).Set(float64(quoteAmount))
}
