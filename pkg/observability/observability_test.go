package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsSingletonRecordsSwapsAndCranks(t *testing.T) {
	m := Metrics()
	m.ObserveSwap("pool-1", "a_to_b", 1_000)
	m.ObserveCrank("pool-1", true)
	m.ObserveCrank("pool-1", false)
	m.ObserveFinalize(1)
	m.SetProposalLiquidity("proposal-1", 50_000)

	if got := testutil.ToFloat64(m.swaps.WithLabelValues("pool-1", "a_to_b")); got != 1 {
		t.Fatalf("expected 1 swap recorded, got %v", got)
	}
	if got := testutil.ToFloat64(m.swapVolume.WithLabelValues("pool-1")); got != 1_000 {
		t.Fatalf("expected swap volume 1000, got %v", got)
	}
	if got := testutil.ToFloat64(m.proposalsFinal.WithLabelValues("challenger")); got != 1 {
		t.Fatalf("expected one challenger outcome recorded, got %v", got)
	}
	if got := testutil.ToFloat64(m.proposalLiquidity.WithLabelValues("proposal-1")); got != 50_000 {
		t.Fatalf("expected proposal liquidity gauge 50000, got %v", got)
	}
}

func TestCorrelationIDIsUnique(t *testing.T) {
	a, b := CorrelationID(), CorrelationID()
	if a == b {
		t.Fatal("expected distinct correlation ids")
	}
	if len(a) == 0 {
		t.Fatal("expected non-empty correlation id")
	}
}
