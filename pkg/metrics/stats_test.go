package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueryStatsSnapshot(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stats := NewQueryStats(start)
	stats.Record(OutcomeSemanticConfident, 10*time.Millisecond)
	stats.Record(OutcomeLexicalUncertain, 30*time.Millisecond)
	stats.Record(OutcomeError, 2*time.Millisecond)
	stats.Record(OutcomeSemanticConfident, 2*time.Millisecond)

	snap := stats.Snapshot(start.Add(90 * time.Second))
	require.Equal(t, int64(4), snap.Total)
	require.Equal(t, int64(1), snap.Errors)
	require.InDelta(t, 0.75, snap.SuccessRate, 1e-9)
	require.InDelta(t, 11.0, snap.AvgLatencyMs, 1e-9)
	require.Equal(t, int64(30), snap.MaxLatencyMs)
	require.Equal(t, int64(90), snap.UptimeSeconds)
	require.Equal(t, []OutcomeCount{
		{Outcome: OutcomeError, Count: 1},
		{Outcome: OutcomeLexicalUncertain, Count: 1},
		{Outcome: OutcomeSemanticConfident, Count: 2},
	}, snap.Outcomes)
}

func TestQueryStatsEmpty(t *testing.T) {
	start := time.Now()
	snap := NewQueryStats(start).Snapshot(start)
	require.Zero(t, snap.Total)
	require.Zero(t, snap.SuccessRate)
	require.Empty(t, snap.Outcomes)
}

func TestNilStatsRecordIsNoop(t *testing.T) {
	var stats *QueryStats
	require.NotPanics(t, func() { stats.Record(OutcomeSimilar, time.Millisecond) })
}
